package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"asdl/internal/air"
	"asdl/internal/diag"
	"asdl/internal/pir"
	"asdl/internal/resolve"
	"asdl/internal/source"
)

var elaborateCmd = &cobra.Command{
	Use:   "elaborate <file>",
	Short: "Expand pattern groups and write the elaborated design",
	Args:  cobra.ExactArgs(1),
	RunE:  runElaborate,
}

func init() {
	elaborateCmd.Flags().StringP("out", "o", "", "output file (default: stdout)")
	elaborateCmd.Flags().String("format", "yaml", "output format (yaml|json)")
	elaborateCmd.Flags().String("top", "", "top module name (defaults to file_info.top_module)")
}

func runElaborate(cmd *cobra.Command, args []string) error {
	entryPath := args[0]
	out, err := cmd.Flags().GetString("out")
	if err != nil {
		return err
	}
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
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

	pg, ok := pir.Lower(graph, topModule, reporter)
	if !ok || bag.HasErrors() {
		return fail(cmd, bag, reg, nil)
	}

	var payload []byte
	switch format {
	case "json":
		// Pre-atomization dump: the PatternedGraph, patterns intact.
		modules := make(map[string]*pir.ModuleGraph, len(pg.Modules))
		for key, mg := range pg.Modules {
			modules[key.FileID+"#"+key.Name] = mg
		}
		payload, err = json.MarshalIndent(modules, "", "  ")
	default:
		ag, aok := air.Atomize(pg, reporter)
		if !aok || bag.HasErrors() {
			return fail(cmd, bag, reg, nil)
		}
		modules := make(map[string]*air.AtomizedModule, len(ag.Modules))
		for key, am := range ag.Modules {
			modules[key.FileID+"#"+key.Name] = am
		}
		payload, err = yaml.Marshal(modules)
	}
	if err != nil {
		return fail(cmd, bag, reg, err)
	}

	if out == "" {
		_, err = os.Stdout.Write(payload)
		return err
	}
	return os.WriteFile(out, payload, 0o644)
}
