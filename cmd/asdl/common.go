package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"asdl/internal/diag"
	"asdl/internal/diagfmt"
	"asdl/internal/source"
)

// Exit codes per the CLI surface's documented contract.
const (
	exitOK             = 0
	exitDiagnosticsErr = 1
	exitCLIMisuse      = 2
	exitInternal       = 3
)

func colorEnabled(cmd *cobra.Command) bool {
	mode, _ := cmd.Root().PersistentFlags().GetString("color")
	switch mode {
	case "on":
		return true
	case "off":
		return false
	default:
		return term.IsTerminal(int(os.Stdout.Fd()))
	}
}

func printDiagnostics(cmd *cobra.Command, bag *diag.Bag, reg *source.Registry) error {
	asJSON, _ := cmd.Root().PersistentFlags().GetBool("json")
	maxDiag, _ := cmd.Root().PersistentFlags().GetInt("max-diagnostics")

	if asJSON {
		return diagfmt.JSON(os.Stdout, bag, diagfmt.JSONOpts{Ordered: true, Max: maxDiag})
	}

	shown := bag
	if maxDiag > 0 && bag.Len() > maxDiag {
		trimmed := diag.NewBag()
		for i, d := range bag.ToList(true) {
			if i >= maxDiag {
				break
			}
			trimmed.Emit(d)
		}
		shown = trimmed
	}
	diagfmt.Pretty(os.Stdout, shown, reg, diagfmt.PrettyOpts{
		Color:       colorEnabled(cmd),
		Context:     2,
		ShowNotes:   true,
		ShowFixits:  true,
		ShowPreview: true,
	})
	return nil
}

// exitCodeFor maps a completed run's outcome to the documented exit
// code: 0 clean, 1 diagnostics included an error, 3 internal failure.
func exitCodeFor(bag *diag.Bag, err error) int {
	if err != nil {
		return exitInternal
	}
	if bag != nil && bag.HasErrors() {
		return exitDiagnosticsErr
	}
	return exitOK
}

func fail(cmd *cobra.Command, bag *diag.Bag, reg *source.Registry, err error) error {
	if bag != nil {
		if perr := printDiagnostics(cmd, bag, reg); perr != nil {
			return perr
		}
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "asdl:", err)
	}
	os.Exit(exitCodeFor(bag, err))
	return nil
}
