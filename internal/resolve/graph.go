// Package resolve walks a document's import graph (spec.md §4.D),
// loading every transitively imported file, detecting cycles, and
// building the NameEnv/ProgramDB symbol tables later lowering stages
// use to resolve qualified and unqualified model references.
package resolve

import (
	"fmt"
	"path/filepath"
	"strings"

	"asdl/internal/ast"
	"asdl/internal/diag"
	"asdl/internal/source"
)

// SymbolKind distinguishes a module symbol from a device symbol, so
// ambiguous references (present as both) can be detected during
// lowering (spec.md §4.E step 2).
type SymbolKind uint8

const (
	SymbolModule SymbolKind = iota
	SymbolDevice
)

// NameEnv maps a file's local import alias to the resolved file-id of
// the imported document.
type NameEnv map[string]string

// ProgramDB maps a file-id to the set of module/device symbols it
// declares, tagged with their kind for ambiguity detection.
type ProgramDB map[string]map[string]SymbolKind

// ImportGraph is the resolver's output: every loaded document keyed by
// file-id, each file's NameEnv, the combined ProgramDB, and the entry
// file-id.
type ImportGraph struct {
	Documents   map[string]*ast.AsdlDocument
	NameEnvs    map[string]NameEnv
	Symbols     ProgramDB
	EntryFileID string
}

// LookupQualified resolves "alias.name" from the perspective of
// fromFileID, reporting IR-010 on any failure.
func (g *ImportGraph) LookupQualified(fromFileID, ref string, span source.Span, reporter diag.Reporter) (string, SymbolKind, bool) {
	dot := strings.Index(ref, ".")
	if dot < 0 {
		return "", 0, false
	}
	alias, name := ref[:dot], ref[dot+1:]
	env := g.NameEnvs[fromFileID]
	targetID, ok := env[alias]
	if !ok {
		reporter.Report(diag.Errorf(diag.CodeUnresolvedQualifiedModel, diag.StageResolve,
			fmt.Sprintf("unresolved import alias %q in model reference %q", alias, ref)).
			At(span).MustBuild())
		return "", 0, false
	}
	kind, ok := g.Symbols[targetID][name]
	if !ok {
		reporter.Report(diag.Errorf(diag.CodeUnresolvedQualifiedModel, diag.StageResolve,
			fmt.Sprintf("no module or device %q in imported file for alias %q", name, alias)).
			At(span).MustBuild())
		return "", 0, false
	}
	return targetID, kind, true
}

// LookupUnqualified resolves name within fileID's own symbol table,
// reporting IR-011 on failure (spec.md §4.E step 2). It reports no
// ambiguity diagnostic itself: a file's ProgramDB entry holds a single
// kind per name, and a name declared as both a module and a device is
// reported earlier, at symbol-table construction time, by
// buildSymbolTable.
func (g *ImportGraph) LookupUnqualified(fileID, name string, span source.Span, reporter diag.Reporter) (SymbolKind, bool) {
	kind, ok := g.Symbols[fileID][name]
	if !ok {
		reporter.Report(diag.Errorf(diag.CodeUnresolvedUnqualifiedModel, diag.StageResolve,
			fmt.Sprintf("unresolved model reference %q", name)).At(span).MustBuild())
		return 0, false
	}
	return kind, true
}

type resolver struct {
	reg      *source.Registry
	libRoots []string
	reporter diag.Reporter

	documents map[string]*ast.AsdlDocument
	nameEnvs  map[string]NameEnv
	symbols   ProgramDB

	onStack map[string]bool
	stack   []string
}

// Resolve loads entryPath and every file it transitively imports,
// probing libRoots (in order) for each import not found relative to
// the importing file, and returns the combined ImportGraph.
func Resolve(entryPath string, libRoots []string, reg *source.Registry, reporter diag.Reporter) (*ImportGraph, bool) {
	r := &resolver{
		reg:       reg,
		libRoots:  libRoots,
		reporter:  reporter,
		documents: map[string]*ast.AsdlDocument{},
		nameEnvs:  map[string]NameEnv{},
		symbols:   ProgramDB{},
		onStack:   map[string]bool{},
	}

	entryID, ok := r.load(entryPath)
	if !ok {
		return nil, false
	}

	g := &ImportGraph{
		Documents:   r.documents,
		NameEnvs:    r.nameEnvs,
		Symbols:     r.symbols,
		EntryFileID: entryID,
	}
	r.reportUnusedImports(g)
	return g, true
}

// load parses path (if not already visited), recursing into its
// imports, and returns its file-id. ok is false on a cycle or a fatal
// parse error. The file-id is canonicalized before parsing so an
// already-visited file is never re-parsed (and never re-reports its
// diagnostics).
func (r *resolver) load(path string) (string, bool) {
	fileID, cerr := canonicalize(path)
	if cerr != nil {
		r.reporter.Report(diag.Errorf(diag.CodeInternal, diag.StageResolve, cerr.Error()).MustBuild())
		return "", false
	}

	if r.onStack[fileID] {
		r.reportCycle(fileID)
		return fileID, false
	}
	if _, seen := r.documents[fileID]; seen {
		return fileID, true
	}

	doc, ok := ast.Load(path, r.reg, r.reporter)
	if doc == nil {
		return fileID, ok
	}

	r.documents[fileID] = doc
	r.onStack[fileID] = true
	r.stack = append(r.stack, fileID)

	resolvedPaths := make(map[string]string, len(doc.Imports))
	var toPrefetch []string
	for alias, relPath := range doc.Imports {
		resolved, found := r.probe(filepath.Dir(fileID), relPath)
		if !found {
			continue
		}
		resolvedPaths[alias] = resolved
		toPrefetch = append(toPrefetch, resolved)
	}
	r.prefetch(toPrefetch)

	env := NameEnv{}
	allOK := true
	for alias, relPath := range doc.Imports {
		resolved, found := resolvedPaths[alias]
		if !found {
			r.reporter.Report(diag.Errorf(diag.CodeImportFileNotFound, diag.StageResolve,
				fmt.Sprintf("import %q: could not locate %q relative to importer or library roots", alias, relPath)).
				MustBuild())
			allOK = false
			continue
		}
		importedID, iok := r.load(resolved)
		if !iok {
			allOK = false
		}
		env[alias] = importedID
	}
	r.nameEnvs[fileID] = env

	r.symbols[fileID] = buildSymbolTable(doc, r.reporter)

	r.stack = r.stack[:len(r.stack)-1]
	r.onStack[fileID] = false
	return fileID, allOK
}

// probe implements spec.md §4.D step 2: relative to the importer first,
// then each library root in declaration order.
func (r *resolver) probe(importerDir, relPath string) (string, bool) {
	candidate := filepath.Join(importerDir, relPath)
	if r.exists(candidate) {
		return candidate, true
	}
	for _, root := range r.libRoots {
		candidate = filepath.Join(root, relPath)
		if r.exists(candidate) {
			return candidate, true
		}
	}
	return "", false
}

func (r *resolver) reportCycle(closingID string) {
	start := 0
	for i, id := range r.stack {
		if id == closingID {
			start = i
			break
		}
	}
	edge := append(append([]string{}, r.stack[start:]...), closingID)
	r.reporter.Report(diag.Errorf(diag.CodeImportCycle, diag.StageResolve,
		fmt.Sprintf("import cycle: %s", strings.Join(edge, " -> "))).MustBuild())
}

func buildSymbolTable(doc *ast.AsdlDocument, reporter diag.Reporter) map[string]SymbolKind {
	table := map[string]SymbolKind{}
	for name := range doc.Modules {
		table[name] = SymbolModule
	}
	for name := range doc.Devices {
		if _, clash := table[name]; clash {
			reporter.Report(diag.Errorf(diag.CodeAmbiguousModelRef, diag.StageResolve,
				fmt.Sprintf("%q is declared as both a module and a device", name)).MustBuild())
			continue
		}
		table[name] = SymbolDevice
	}
	return table
}

// reportUnusedImports emits LINT-001 for every import alias never
// referenced by a model reference or model_alias entry anywhere in its
// importing file.
func (r *resolver) reportUnusedImports(g *ImportGraph) {
	for fileID, doc := range g.Documents {
		used := map[string]bool{}
		for _, target := range doc.ModelAlias {
			if dot := strings.Index(target, "."); dot >= 0 {
				used[target[:dot]] = true
			}
		}
		for _, mod := range doc.Modules {
			for _, inst := range mod.Instances {
				if dot := strings.Index(inst.Model, "."); dot >= 0 {
					used[inst.Model[:dot]] = true
				}
			}
		}
		for alias := range g.NameEnvs[fileID] {
			if !used[alias] {
				r.reporter.Report(diag.Warningf(diag.CodeUnusedImport, diag.StageResolve,
					fmt.Sprintf("import alias %q is never referenced", alias)).MustBuild())
			}
		}
	}
}
