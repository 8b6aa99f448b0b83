// Package pipeline drives the compiler's stages A-H end to end: parse,
// resolve imports, validate, lower to PatternedGraph, atomize, and emit
// SPICE. It owns the diagnostic bag and refuses to hand a
// downstream stage an artifact produced alongside an error-severity
// diagnostic.
package pipeline

import (
	"context"
	"crypto/sha256"
	"fmt"
	"os"

	"asdl/internal/air"
	"asdl/internal/cache"
	"asdl/internal/diag"
	"asdl/internal/netlist"
	"asdl/internal/pir"
	"asdl/internal/resolve"
	"asdl/internal/source"
	"asdl/internal/validate"
)

// Options configures one Compile invocation.
type Options struct {
	LibRoots  []string
	TopModule string
	TopStyle  netlist.TopStyle

	// Cache, if set, is consulted before running the pipeline and
	// populated after a successful run, keyed by the entry file's
	// content hash and revalidated against every transitively
	// imported file's content hash.
	Cache *cache.Store

	// Registry, if set, receives every file Compile loads, so a caller
	// can render diagnostics with source context afterward. A fresh
	// one is used internally if left nil.
	Registry *source.Registry
}

// Compile runs the full pipeline against entryPath and returns the
// emitted design (nil on unrecoverable failure) plus every diagnostic
// collected along the way.
func Compile(ctx context.Context, entryPath string, opts Options) (design *netlist.Design, bag *diag.Bag, err error) {
	bag = diag.NewBag()
	reporter := diag.NewBagReporter(bag)

	defer func() {
		if r := recover(); r != nil {
			bag.Emit(diag.Fatalf(diag.CodeInternal, diag.StageTool,
				fmt.Sprintf("internal error: %v", r)).MustBuild())
			design = nil
		}
	}()

	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		bag.Emit(diag.Fatalf(diag.CodeInternal, diag.StageTool, err.Error()).MustBuild())
		return nil, bag, nil
	}

	var entryHash [32]byte
	if opts.Cache != nil {
		if raw, rerr := os.ReadFile(entryPath); rerr == nil {
			entryHash = sha256.Sum256(raw)
			if rec, hit, _ := opts.Cache.Get(entryHash); hit && inputsUnchanged(rec.Inputs) {
				for _, d := range rec.Diagnostics {
					bag.Emit(d)
				}
				return &netlist.Design{Name: rec.Design.Name, TopModule: rec.Design.TopModule, Text: rec.Design.Text}, bag, nil
			}
		}
	}

	reg := opts.Registry
	if reg == nil {
		reg = source.NewRegistry()
	}

	graph, ok := resolve.Resolve(entryPath, opts.LibRoots, reg, reporter)
	if !ok || bag.HasErrors() {
		return nil, bag, nil
	}

	topModule := opts.TopModule
	if topModule == "" {
		topModule = inferTopModule(graph)
	}

	validate.Run(graph, topModule, reporter)
	if bag.HasErrors() {
		return nil, bag, nil
	}

	pg, ok := pir.Lower(graph, topModule, reporter)
	if !ok || bag.HasErrors() {
		return nil, bag, nil
	}

	ag, ok := air.Atomize(pg, reporter)
	if !ok || bag.HasErrors() {
		return nil, bag, nil
	}

	topStyle := opts.TopStyle
	if topStyle == "" {
		topStyle = netlist.TopStyleSubckt
	}
	design, ok = netlist.Emit(pg, ag, netlist.Options{TopModule: topModule, TopStyle: topStyle}, reporter)
	if !ok || bag.HasErrors() {
		return nil, bag, nil
	}

	netlist.Lint(design, reporter)

	if opts.Cache != nil && !bag.HasErrors() {
		rec := &cache.Record{
			Design:      cache.DesignRecord{Name: design.Name, TopModule: design.TopModule, Text: design.Text},
			Diagnostics: bag.Items(),
			Inputs:      inputHashes(reg, graph),
		}
		_ = opts.Cache.Put(entryHash, rec)
	}

	return design, bag, nil
}

func inferTopModule(g *resolve.ImportGraph) string {
	doc := g.Documents[g.EntryFileID]
	if doc == nil || doc.FileInfo == nil {
		return ""
	}
	return doc.FileInfo.TopModule
}

func inputHashes(reg *source.Registry, g *resolve.ImportGraph) []cache.InputHash {
	hashes := make([]cache.InputHash, 0, len(g.Documents))
	for fileID := range g.Documents {
		f, ok := reg.Get(fileID)
		if !ok {
			continue
		}
		hashes = append(hashes, cache.InputHash{Path: fileID, Hash: f.Hash})
	}
	return hashes
}

func inputsUnchanged(inputs []cache.InputHash) bool {
	for _, in := range inputs {
		raw, err := os.ReadFile(in.Path)
		if err != nil {
			return false
		}
		if sha256.Sum256(raw) != in.Hash {
			return false
		}
	}
	return true
}
