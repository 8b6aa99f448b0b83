package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"asdl/internal/version"
)

var versionFormat string

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the asdl compiler version",
	Args:  cobra.NoArgs,
	RunE:  runVersion,
}

func init() {
	versionCmd.Flags().StringVar(&versionFormat, "format", "pretty", "output format (pretty|json)")
}

type versionPayload struct {
	Tool      string `json:"tool"`
	Version   string `json:"version"`
	GitCommit string `json:"git_commit,omitempty"`
	BuildDate string `json:"build_date,omitempty"`
}

func runVersion(cmd *cobra.Command, _ []string) error {
	payload := versionPayload{
		Tool:      "asdl",
		Version:   version.Version,
		GitCommit: version.GitCommit,
		BuildDate: version.BuildDate,
	}

	if versionFormat == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(payload)
	}

	versionColor := color.New(color.FgCyan, color.Bold)
	if !colorEnabled(cmd) {
		versionColor.DisableColor()
	}
	fmt.Printf("asdl %s\n", versionColor.Sprint(payload.Version))
	if payload.GitCommit != "" {
		fmt.Printf("commit: %s\n", payload.GitCommit)
	}
	if payload.BuildDate != "" {
		fmt.Printf("built:  %s\n", payload.BuildDate)
	}
	return nil
}
