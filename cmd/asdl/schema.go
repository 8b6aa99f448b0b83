package main

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"asdl/internal/ast"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON Schema for the ASDL YAML document shape",
	Args:  cobra.NoArgs,
	RunE:  runSchema,
}

func init() {
	schemaCmd.Flags().String("out", "", "write schema.json into this directory instead of stdout")
}

func runSchema(cmd *cobra.Command, _ []string) error {
	outDir, err := cmd.Flags().GetString("out")
	if err != nil {
		return err
	}

	payload, err := json.MarshalIndent(ast.Schema(), "", "  ")
	if err != nil {
		return err
	}

	if outDir == "" {
		_, err = os.Stdout.Write(payload)
		return err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(outDir, "schema.json"), payload, 0o644)
}
