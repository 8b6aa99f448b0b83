package main

import (
	"os"

	"github.com/spf13/cobra"

	"asdl/internal/netlist"
	"asdl/internal/pipeline"
	"asdl/internal/source"
)

var netlistCmd = &cobra.Command{
	Use:   "netlist <file>",
	Short: "Compile an ASDL design down to a SPICE netlist",
	Args:  cobra.ExactArgs(1),
	RunE:  runNetlist,
}

func init() {
	netlistCmd.Flags().StringP("out", "o", "", "output file (default: stdout)")
	netlistCmd.Flags().String("top", "", "top module name (defaults to file_info.top_module)")
	netlistCmd.Flags().String("top-style", "subckt", "how the top module is wrapped (subckt|flat)")
}

func runNetlist(cmd *cobra.Command, args []string) error {
	entryPath := args[0]
	out, err := cmd.Flags().GetString("out")
	if err != nil {
		return err
	}
	top, err := cmd.Flags().GetString("top")
	if err != nil {
		return err
	}
	topStyle, err := cmd.Flags().GetString("top-style")
	if err != nil {
		return err
	}

	if compilerCtx != nil {
		compilerCtx.Logger.WithField("entry", entryPath).Debug("compiling design")
	}

	reg := source.NewRegistry()
	design, bag, err := pipeline.Compile(cmd.Context(), entryPath, pipeline.Options{
		TopModule: top,
		TopStyle:  netlist.TopStyle(topStyle),
		Cache:     designCache,
		Registry:  reg,
	})
	if err != nil {
		return fail(cmd, bag, reg, err)
	}
	if design == nil || bag.HasErrors() {
		return fail(cmd, bag, reg, nil)
	}

	if out == "" {
		_, err = os.Stdout.WriteString(design.Text)
	} else {
		err = os.WriteFile(out, []byte(design.Text), 0o644)
	}
	if err != nil {
		return fail(cmd, bag, reg, err)
	}

	return fail(cmd, bag, reg, nil)
}
