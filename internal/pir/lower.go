package pir

import (
	"fmt"
	"strings"

	"asdl/internal/ast"
	"asdl/internal/diag"
	"asdl/internal/pattern"
	"asdl/internal/resolve"
)

// Lower builds a ProgramGraph from g, parsing every pattern expression
// in declaration order (spec.md §4.E). Entity ids are allocated
// monotonically per module as entities are created.
func Lower(g *resolve.ImportGraph, topModule string, reporter diag.Reporter) (*ProgramGraph, bool) {
	pg := &ProgramGraph{
		Modules:     map[ModuleKey]*ModuleGraph{},
		Registry:    NewRegistry(),
		EntryFileID: g.EntryFileID,
		TopModule:   topModule,
		Import:      g,
	}
	ok := true
	for fileID, doc := range g.Documents {
		for _, name := range doc.ModuleOrder {
			mod := doc.Modules[name]
			mg, mok := lowerModule(pg, g, fileID, name, mod, reporter)
			if !mok {
				ok = false
			}
			pg.Modules[ModuleKey{FileID: fileID, Name: name}] = mg
		}
	}
	return pg, ok
}

func lowerModule(pg *ProgramGraph, g *resolve.ImportGraph, fileID, name string, mod *ast.ModuleDecl, reporter diag.Reporter) (*ModuleGraph, bool) {
	ok := true
	mg := &ModuleGraph{
		FileID:           fileID,
		Name:             name,
		IsPrimitive:      mod.IsPrimitive,
		SpiceTemplate:    mod.SpiceTemplate,
		Ports:            mod.Ports,
		Parameters:       mod.Parameters,
		Variables:        mod.Variables,
		InstanceByName:   map[string]*InstanceBundle{},
		InstanceDefaults: mod.InstanceDefaults,
		PDK:              mod.PDK,
		Span:             mod.Span,
		registry:         pg.Registry,
	}

	mg.NamedPatterns = make(map[string]string, len(mod.Patterns))
	for alias, raw := range mod.Patterns {
		token, valid := pattern.ValidateNamedDef(raw)
		if !valid {
			reporter.Report(diag.Errorf(diag.CodeInvalidPatternDef, diag.StagePattern,
				fmt.Sprintf("named pattern %q is not a single well-formed group token", alias)).
				At(mod.Span).MustBuild())
			ok = false
			continue
		}
		mg.NamedPatterns[alias] = token
	}

	for _, portName := range mod.PortOrder {
		expr, pok := pattern.Parse(portName, mg.NamedPatterns, mod.Span, reporter)
		if !pok {
			ok = false
			continue
		}
		mg.PortOrderExprs = append(mg.PortOrderExprs, pg.Registry.Intern(expr))
	}

	for _, instName := range mod.InstanceOrder {
		inst := mod.Instances[instName]
		ib, iok := lowerInstance(pg, g, fileID, mg, inst, reporter)
		if !iok {
			ok = false
		}
		if ib != nil {
			ib.ID = len(mg.Instances)
			mg.Instances = append(mg.Instances, ib)
			mg.InstanceByName[instName] = ib
		}
	}

	for _, nameExpr := range mod.NetOrder {
		net := mod.Nets[nameExpr]
		nb, nok := lowerNet(pg, mg, net, reporter)
		if !nok {
			ok = false
		}
		if nb != nil {
			nb.ID = len(mg.Nets)
			mg.Nets = append(mg.Nets, nb)
		}
	}

	applyInstanceDefaults(mg, reporter)

	return mg, ok
}

func lowerInstance(pg *ProgramGraph, g *resolve.ImportGraph, fileID string, mg *ModuleGraph, inst *ast.Instance, reporter diag.Reporter) (*InstanceBundle, bool) {
	ok := true
	nameExpr, nok := pattern.Parse(inst.Name, mg.NamedPatterns, inst.Span, reporter)
	if !nok {
		ok = false
	}

	ib := &InstanceBundle{
		Name:       inst.Name,
		ModelRef:   inst.Model,
		Mappings:   map[string]ExprID{},
		Parameters: map[string]ExprID{},
		Span:       inst.Span,
	}
	if nameExpr != nil {
		ib.NameExpr = pg.Registry.Intern(nameExpr)
	}

	if targetFile, targetName, resolved := resolveModel(g, fileID, inst.Model, reporter); resolved {
		ib.TargetFile, ib.TargetName, ib.Resolved = targetFile, targetName, true
	} else {
		ok = false
	}

	for port, netToken := range inst.Mappings {
		expr, mok := pattern.Parse(netToken, mg.NamedPatterns, inst.Span, reporter)
		if !mok {
			ok = false
			continue
		}
		ib.Mappings[port] = pg.Registry.Intern(expr)
	}

	for param, valueToken := range inst.Parameters {
		expr, mok := pattern.Parse(valueToken, mg.NamedPatterns, inst.Span, reporter)
		if !mok {
			ok = false
			continue
		}
		ib.Parameters[param] = pg.Registry.Intern(expr)
	}

	return ib, ok
}

// resolveModel resolves a model reference the way spec.md §4.E step 2
// describes: qualified references split at the dot and look through the
// importing file's NameEnv; unqualified references resolve within the
// current file's own symbols.
func resolveModel(g *resolve.ImportGraph, fileID, ref string, reporter diag.Reporter) (string, string, bool) {
	if dot := strings.Index(ref, "."); dot >= 0 {
		alias, name := ref[:dot], ref[dot+1:]
		targetID, ok := g.NameEnvs[fileID][alias]
		if !ok {
			reporter.Report(diag.Errorf(diag.CodeUnresolvedQualifiedModel, diag.StageResolve,
				fmt.Sprintf("unresolved import alias %q in model reference %q", alias, ref)).MustBuild())
			return "", "", false
		}
		if _, ok := g.Symbols[targetID][name]; !ok {
			reporter.Report(diag.Errorf(diag.CodeUnresolvedQualifiedModel, diag.StageResolve,
				fmt.Sprintf("no module or device %q for alias %q", name, alias)).MustBuild())
			return "", "", false
		}
		return targetID, name, true
	}
	if _, ok := g.Symbols[fileID][ref]; !ok {
		reporter.Report(diag.Errorf(diag.CodeUnresolvedUnqualifiedModel, diag.StageResolve,
			fmt.Sprintf("unresolved model reference %q", ref)).MustBuild())
		return "", "", false
	}
	return fileID, ref, true
}

func lowerNet(pg *ProgramGraph, mg *ModuleGraph, net *ast.Net, reporter diag.Reporter) (*NetBundle, bool) {
	ok := true
	nameExpr, nok := pattern.Parse(net.NameExpr, mg.NamedPatterns, net.Span, reporter)
	if !nok {
		return nil, false
	}
	if len(nameExpr.Segments) > 1 {
		reporter.Report(diag.Errorf(diag.CodeMalformedDelimiter, diag.StagePattern,
			fmt.Sprintf("net name %q may not use splice segments", net.NameExpr)).At(net.Span).MustBuild())
		ok = false
	}

	nb := &NetBundle{
		NameExpr:    pg.Registry.Intern(nameExpr),
		IsPortNet:   net.IsPortNet,
		GroupSlices: net.GroupSlices,
		Span:        net.Span,
	}

	for _, ep := range net.Endpoints {
		dot := strings.Index(ep.Raw, ".")
		if dot < 0 {
			reporter.Report(diag.Errorf(diag.CodeMalformedDelimiter, diag.StagePattern,
				fmt.Sprintf("endpoint %q must contain exactly one '.'", ep.Raw)).At(ep.Span).MustBuild())
			ok = false
			continue
		}
		instToken, pinToken := ep.Raw[:dot], ep.Raw[dot+1:]
		if strings.Contains(pinToken, ".") {
			reporter.Report(diag.Errorf(diag.CodeMalformedDelimiter, diag.StagePattern,
				fmt.Sprintf("endpoint %q must contain exactly one '.'", ep.Raw)).At(ep.Span).MustBuild())
			ok = false
			continue
		}
		instExpr, iok := pattern.Parse(instToken, mg.NamedPatterns, ep.Span, reporter)
		pinExpr, pok := pattern.Parse(pinToken, mg.NamedPatterns, ep.Span, reporter)
		if !iok || !pok {
			ok = false
			continue
		}
		eb := &EndpointBundle{
			Raw:        ep.Raw,
			InstExpr:   pg.Registry.Intern(instExpr),
			PinExpr:    pg.Registry.Intern(pinExpr),
			Suppressed: ep.Suppressed,
			Span:       ep.Span,
		}
		eb.ID = len(mg.Endpoints)
		mg.Endpoints = append(mg.Endpoints, eb)
		nb.Endpoints = append(nb.Endpoints, eb.ID)
	}

	return nb, ok
}

// applyInstanceDefaults implements spec.md §4.E step 6: for each
// instance whose as-written name equals an instance_defaults key
// (keys are not matched as patterns, and a key naming no declared
// instance is ignored), add a default
// (port, net) binding to inst.Mappings for any port not already bound
// explicitly, and warn with LINT-002 when an explicit binding
// conflicts. The atomization stage's mappings pass turns every
// resulting (port, net) binding into real connectivity.
func applyInstanceDefaults(mg *ModuleGraph, reporter diag.Reporter) {
	if len(mg.InstanceDefaults) == 0 {
		return
	}
	for instPattern, bindings := range mg.InstanceDefaults {
		inst, ok := mg.InstanceByName[instPattern]
		if !ok {
			continue
		}
		for port, netToken := range bindings {
			if existing, has := inst.Mappings[port]; has {
				existingExpr := mg.namedExprRaw(existing)
				if existingExpr != netToken {
					reporter.Report(diag.Warningf(diag.CodeDefaultBindingOverride, diag.StageLower,
						fmt.Sprintf("instance %q explicit binding %q=%q overrides default %q", inst.Name, port, existingExpr, netToken)).
						At(inst.Span).MustBuild())
				}
				continue
			}
			inst.Mappings[port] = mg.internLiteral(netToken)
		}
	}
}
