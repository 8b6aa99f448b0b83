package main

import (
	"github.com/spf13/cobra"

	"asdl/internal/diag"
	"asdl/internal/resolve"
	"asdl/internal/source"
	"asdl/internal/validate"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Resolve imports, run the structural validator, and report diagnostics",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func init() {
	validateCmd.Flags().String("top", "", "top module name (defaults to file_info.top_module)")
}

func runValidate(cmd *cobra.Command, args []string) error {
	entryPath := args[0]
	top, err := cmd.Flags().GetString("top")
	if err != nil {
		return err
	}

	reg := source.NewRegistry()
	bag := diag.NewBag()
	reporter := diag.NewBagReporter(bag)

	graph, ok := resolve.Resolve(entryPath, nil, reg, reporter)
	if !ok || bag.HasErrors() {
		return fail(cmd, bag, reg, nil)
	}

	topModule := top
	if topModule == "" {
		topModule = inferTopModuleFromGraph(graph)
	}

	validate.Run(graph, topModule, reporter)
	return fail(cmd, bag, reg, nil)
}

func inferTopModuleFromGraph(g *resolve.ImportGraph) string {
	doc := g.Documents[g.EntryFileID]
	if doc == nil || doc.FileInfo == nil {
		return ""
	}
	return doc.FileInfo.TopModule
}
