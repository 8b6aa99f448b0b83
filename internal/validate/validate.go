// Package validate runs the AST-level checks of spec.md §4.H: pure,
// stateless checks over the raw AST plus the import graph's symbol
// tables, run before IR lowering. It only emits diagnostics — it never
// rewrites the AST.
package validate

import (
	"fmt"
	"strings"

	"asdl/internal/ast"
	"asdl/internal/diag"
	"asdl/internal/resolve"
)

// Run validates every module of every document in g, reporting findings
// to reporter. topModule names the entry document's top module, which
// is exempt from the V0601 "never instantiated" check.
func Run(g *resolve.ImportGraph, topModule string, reporter diag.Reporter) {
	instantiated := collectInstantiatedModules(g)

	for fileID, doc := range g.Documents {
		for name, mod := range doc.Modules {
			checkModule(g, fileID, doc, mod, reporter)
			if mod.IsPrimitive {
				continue
			}
			if name == topModule && fileID == g.EntryFileID {
				continue
			}
			if !instantiated[fileID+"#"+name] {
				reporter.Report(diag.Warningf(diag.CodeModuleNeverInstantiated, diag.StageValidate,
					fmt.Sprintf("module %q is never instantiated", name)).At(mod.Span).MustBuild())
			}
		}
	}
}

func checkModule(g *resolve.ImportGraph, fileID string, doc *ast.AsdlDocument, mod *ast.ModuleDecl, reporter diag.Reporter) {
	if !mod.IsPrimitive && len(mod.Parameters) > 0 {
		reporter.Report(diag.Errorf(diag.CodeHierModuleHasParameters, diag.StageValidate,
			fmt.Sprintf("hierarchical module %q declares parameters; only primitives may", mod.Name)).
			At(mod.Span).MustBuild())
	}

	portNames := make(map[string]bool, len(mod.Ports))
	for _, p := range mod.Ports {
		portNames[p.Name] = true
	}
	internalNetNames := make(map[string]bool, len(mod.InternalNets))
	for _, n := range mod.InternalNets {
		internalNetNames[n] = true
	}

	for _, inst := range mod.Instances {
		target, ok := resolveTarget(g, fileID, inst.Model)
		if !ok {
			continue
		}
		checkInstance(inst, target, portNames, internalNetNames, reporter)
	}
}

func checkInstance(inst *ast.Instance, target *ast.ModuleDecl, callerPorts, callerInternalNets map[string]bool, reporter diag.Reporter) {
	targetPorts := make(map[string]bool, len(target.Ports))
	for _, p := range target.Ports {
		targetPorts[p.Name] = true
	}

	if len(inst.Mappings) > 0 && len(target.Ports) == 0 {
		reporter.Report(diag.Errorf(diag.CodeInstanceMappingOnPortless, diag.StageValidate,
			fmt.Sprintf("instance %q provides mappings but target %q has no ports", inst.Name, target.Name)).
			At(inst.Span).MustBuild())
	}

	for port, netExpr := range inst.Mappings {
		if !targetPorts[port] {
			reporter.Report(diag.Errorf(diag.CodeInstanceMappingUnknownPort, diag.StageValidate,
				fmt.Sprintf("instance %q maps port %q, not declared on %q", inst.Name, port, target.Name)).
				At(inst.Span).MustBuild())
		}
		if !callerPorts[portLiteralPrefix(netExpr)] && !callerInternalNets[portLiteralPrefix(netExpr)] {
			reporter.Report(diag.Warningf(diag.CodeMappingUnknownNet, diag.StageValidate,
				fmt.Sprintf("instance %q maps port %q to %q, neither a port nor an internal net", inst.Name, port, netExpr)).
				At(inst.Span).MustBuild())
		}
	}

	if len(inst.Parameters) == 0 {
		return
	}
	if !target.IsPrimitive {
		reporter.Report(diag.Errorf(diag.CodeInstanceParamOnHierTarget, diag.StageValidate,
			fmt.Sprintf("instance %q overrides parameters on hierarchical target %q", inst.Name, target.Name)).
			At(inst.Span).MustBuild())
		return
	}
	for key := range inst.Parameters {
		if _, isVar := target.Variables[key]; isVar {
			reporter.Report(diag.Errorf(diag.CodeInstanceParamShadowsVar, diag.StageValidate,
				fmt.Sprintf("instance %q parameter %q shadows a variable of %q", inst.Name, key, target.Name)).
				At(inst.Span).MustBuild())
			continue
		}
		if _, declared := target.Parameters[key]; !declared {
			reporter.Report(diag.Errorf(diag.CodeInstanceParamUnknown, diag.StageValidate,
				fmt.Sprintf("instance %q sets unknown parameter %q on %q", inst.Name, key, target.Name)).
				At(inst.Span).MustBuild())
		}
	}
}

// portLiteralPrefix strips a pattern group suffix so a net-mapping
// value like "vdd" or "bus[0:3]" can be compared against a plain
// port/internal-net name. It is a best-effort literal check: no later
// stage verifies mapping nets, and atomization creates any net a
// mapping names that is not already declared.
func portLiteralPrefix(netExpr string) string {
	if i := strings.IndexAny(netExpr, "[<;"); i >= 0 {
		return netExpr[:i]
	}
	return netExpr
}

// resolveTarget finds the ModuleDecl a model reference names, without
// reporting (resolution failures are IR-010/IR-011 territory, owned by
// lowering).
func resolveTarget(g *resolve.ImportGraph, fromFileID, ref string) (*ast.ModuleDecl, bool) {
	if dot := strings.Index(ref, "."); dot >= 0 {
		alias, name := ref[:dot], ref[dot+1:]
		targetID, ok := g.NameEnvs[fromFileID][alias]
		if !ok {
			return nil, false
		}
		mod, ok := g.Documents[targetID].Modules[name]
		return mod, ok
	}
	mod, ok := g.Documents[fromFileID].Modules[ref]
	return mod, ok
}

func collectInstantiatedModules(g *resolve.ImportGraph) map[string]bool {
	out := map[string]bool{}
	for fileID, doc := range g.Documents {
		for _, mod := range doc.Modules {
			for _, inst := range mod.Instances {
				if dot := strings.Index(inst.Model, "."); dot >= 0 {
					alias, name := inst.Model[:dot], inst.Model[dot+1:]
					if targetID, ok := g.NameEnvs[fileID][alias]; ok {
						out[targetID+"#"+name] = true
					}
					continue
				}
				out[fileID+"#"+inst.Model] = true
			}
		}
	}
	return out
}
