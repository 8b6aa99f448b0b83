package air

import (
	"fmt"
	"sort"

	"asdl/internal/diag"
	"asdl/internal/pattern"
	"asdl/internal/pir"
)

// DefaultExpansionCap mirrors pattern.DefaultExpansionCap; it bounds
// every expansion performed while atomizing a ProgramGraph.
const DefaultExpansionCap = pattern.DefaultExpansionCap

// Atomize expands every module of pg into literal atoms.
func Atomize(pg *pir.ProgramGraph, reporter diag.Reporter) (*AtomizedGraph, bool) {
	ag := &AtomizedGraph{
		Modules:     map[ModuleKey]*AtomizedModule{},
		EntryFileID: pg.EntryFileID,
		TopModule:   pg.TopModule,
	}
	ok := true
	for key, mg := range pg.Modules {
		am, mok := atomizeModule(pg, mg, reporter)
		if !mok {
			ok = false
		}
		ag.Modules[key] = am
	}
	return ag, ok
}

func atomizeModule(pg *pir.ProgramGraph, mg *pir.ModuleGraph, reporter diag.Reporter) (*AtomizedModule, bool) {
	ok := true
	am := &AtomizedModule{
		FileID:        mg.FileID,
		Name:          mg.Name,
		IsPrimitive:   mg.IsPrimitive,
		SpiceTemplate: mg.SpiceTemplate,
		Parameters:    mg.Parameters,
		Variables:     mg.Variables,
		PDK:           mg.PDK,
		instanceIndex: map[string][]int{},
		netIndex:      map[string]int{},
	}

	for _, exprID := range mg.PortOrderExprs {
		atoms, aok := pattern.Expand(pg.Registry.Get(exprID), DefaultExpansionCap, reporter)
		if !aok {
			ok = false
			continue
		}
		am.Ports = append(am.Ports, atoms...)
	}

	if !atomizeInstances(pg, mg, am, reporter) {
		ok = false
	}
	if !atomizeNets(pg, mg, am, reporter) {
		ok = false
	}
	if !atomizeEndpoints(pg, mg, am, reporter) {
		ok = false
	}
	if !atomizeMappings(pg, mg, am, reporter) {
		ok = false
	}

	return am, ok
}

func atomizeInstances(pg *pir.ProgramGraph, mg *pir.ModuleGraph, am *AtomizedModule, reporter diag.Reporter) bool {
	ok := true
	for _, inst := range mg.Instances {
		nameExpr := pg.Registry.Get(inst.NameExpr)
		atoms, eok := pattern.Expand(nameExpr, DefaultExpansionCap, reporter)
		if !eok {
			ok = false
			continue
		}
		if idx, dup := pattern.FirstDuplicate(atoms); dup {
			reporter.Report(diag.Errorf(diag.CodeDuplicateAtom, diag.StagePattern,
				fmt.Sprintf("instance atom %q collides with another instance in the same module", atoms[idx])).
				At(inst.Span).MustBuild())
		}

		resolvedParams := make([]map[string]string, len(atoms))
		for i := range resolvedParams {
			resolvedParams[i] = map[string]string{}
		}
		for param, exprID := range inst.Parameters {
			valExpr := pg.Registry.Get(exprID)
			valAtoms, vok := pattern.Expand(valExpr, DefaultExpansionCap, reporter)
			if !vok {
				ok = false
				continue
			}
			switch {
			case len(valAtoms) == 1:
				for i := range atoms {
					resolvedParams[i][param] = valAtoms[0]
				}
			case len(valAtoms) == len(atoms):
				for i := range atoms {
					resolvedParams[i][param] = valAtoms[i]
				}
			default:
				reporter.Report(diag.Errorf(diag.CodeParamLengthMismatch, diag.StagePattern,
					fmt.Sprintf("parameter %q has %d values but instance expands to %d atoms", param, len(valAtoms), len(atoms))).
					At(inst.Span).MustBuild())
				ok = false
			}
		}

		for i, literal := range atoms {
			ai := &AtomizedInstance{
				ID:         len(am.Instances),
				Literal:    literal,
				Origin:     PatternOrigin{ExprID: inst.NameExpr, AtomIdx: i},
				TargetFile: inst.TargetFile,
				TargetName: inst.TargetName,
				Resolved:   inst.Resolved,
				Parameters: resolvedParams[i],
				Span:       inst.Span,
			}
			am.Instances = append(am.Instances, ai)
			am.instanceIndex[literal] = append(am.instanceIndex[literal], ai.ID)
		}
	}
	return ok
}

func atomizeNets(pg *pir.ProgramGraph, mg *pir.ModuleGraph, am *AtomizedModule, reporter diag.Reporter) bool {
	ok := true
	for _, net := range mg.Nets {
		nameExpr := pg.Registry.Get(net.NameExpr)
		atoms, eok := pattern.Expand(nameExpr, DefaultExpansionCap, reporter)
		if !eok {
			ok = false
			continue
		}
		for _, literal := range atoms {
			if _, dup := am.netIndex[literal]; dup {
				reporter.Report(diag.Errorf(diag.CodeDuplicateAtom, diag.StagePattern,
					fmt.Sprintf("net atom %q collides with another net in the same module", literal)).
					At(net.Span).MustBuild())
				continue
			}
			n := &AtomizedNet{ID: len(am.Nets), Literal: literal, Origin: PatternOrigin{ExprID: net.NameExpr}}
			am.Nets = append(am.Nets, n)
			am.netIndex[literal] = n.ID
		}
	}
	return ok
}

// atomizeMappings binds instance `mappings:` connectivity (spec.md §3/§6,
// the canonical port-to-net wiring mechanism): each mapped port's net-token
// expression is broadcast against the instance's own atoms exactly like an
// instance parameter (spec.md §4.F step 2) — one value applies to every
// atom, or the net expands to the same atom count and binds positionally.
// A referenced net that has no explicit `nets:` entry is created on demand,
// since mappings are free to name module ports or other bare literals that
// never appear under a `nets:` block (see original's
// elaborator/pattern_expander.py _expand_mappings).
func atomizeMappings(pg *pir.ProgramGraph, mg *pir.ModuleGraph, am *AtomizedModule, reporter diag.Reporter) bool {
	ok := true
	for _, inst := range mg.Instances {
		if len(inst.Mappings) == 0 {
			continue
		}
		nameExpr := pg.Registry.Get(inst.NameExpr)
		instAtoms, iok := pattern.Expand(nameExpr, DefaultExpansionCap, reporter)
		if !iok {
			ok = false
			continue
		}

		ports := make([]string, 0, len(inst.Mappings))
		for port := range inst.Mappings {
			ports = append(ports, port)
		}
		sort.Strings(ports)

		for _, port := range ports {
			exprID := inst.Mappings[port]
			netExpr := pg.Registry.Get(exprID)
			netAtoms, nok := pattern.Expand(netExpr, DefaultExpansionCap, reporter)
			if !nok {
				ok = false
				continue
			}
			if len(netAtoms) != 1 && len(netAtoms) != len(instAtoms) {
				reporter.Report(diag.Errorf(diag.CodeParamLengthMismatch, diag.StagePattern,
					fmt.Sprintf("mapping %q=%q has %d values but instance %q expands to %d atoms",
						port, netExpr.Raw, len(netAtoms), nameExpr.Raw, len(instAtoms))).
					At(inst.Span).MustBuild())
				ok = false
				continue
			}

			for i, instLiteral := range instAtoms {
				instAtom, found := am.InstanceByLiteral(instLiteral)
				if !found {
					continue
				}
				netLiteral := netAtoms[0]
				if len(netAtoms) > 1 {
					netLiteral = netAtoms[i]
				}
				netID, exists := am.netIndex[netLiteral]
				if !exists {
					n := &AtomizedNet{ID: len(am.Nets), Literal: netLiteral, Origin: PatternOrigin{ExprID: exprID, AtomIdx: i}}
					am.Nets = append(am.Nets, n)
					am.netIndex[netLiteral] = n.ID
					netID = n.ID
				}
				am.Nets[netID].Endpoints = append(am.Nets[netID].Endpoints, AtomizedEndpoint{
					NetID:  netID,
					InstID: instAtom.ID,
					Port:   port,
				})
			}
		}
	}
	return ok
}

func atomizeEndpoints(pg *pir.ProgramGraph, mg *pir.ModuleGraph, am *AtomizedModule, reporter diag.Reporter) bool {
	ok := true
	for _, net := range mg.Nets {
		netExpr := pg.Registry.Get(net.NameExpr)
		netAtoms, _ := pattern.Expand(netExpr, DefaultExpansionCap, reporter)

		for _, epID := range net.Endpoints {
			ep := mg.Endpoints[epID]
			if ep.Suppressed {
				continue
			}
			instExpr := pg.Registry.Get(ep.InstExpr)
			pinExpr := pg.Registry.Get(ep.PinExpr)

			instAtoms, iok := pattern.Expand(instExpr, DefaultExpansionCap, reporter)
			pinAtoms, pok := pattern.Expand(pinExpr, DefaultExpansionCap, reporter)
			if !iok || !pok {
				ok = false
				continue
			}

			// The combined endpoint expression is instExpr's groups
			// followed by pinExpr's groups (spec.md §4.E step 4 "parse
			// inst and pin tokens as a combined endpoint expression");
			// binding compares this combined group sequence against
			// the net's.
			combined := &pattern.Expr{
				Raw:      instExpr.Raw + "." + pinExpr.Raw,
				Span:     ep.Span,
				Segments: append(append([]pattern.Segment{}, instExpr.Segments...), pinExpr.Segments...),
			}
			plan, bok := pattern.Bind(netExpr, combined, reporter)
			if !bok {
				ok = false
				continue
			}

			for instIdx, instLiteral := range instAtoms {
				inst, found := am.InstanceByLiteral(instLiteral)
				if !found {
					reporter.Report(diag.Errorf(diag.CodeUnresolvedEndpointInstance, diag.StageAtomize,
						fmt.Sprintf("endpoint references unresolved or non-unique instance %q", instLiteral)).
						At(ep.Span).MustBuild())
					ok = false
					continue
				}
				for pinIdx, pinLiteral := range pinAtoms {
					combinedIdx := instIdx*len(pinAtoms) + pinIdx
					netAtomIdx := plan.MapIndex(combinedIdx)
					if netAtomIdx < 0 || netAtomIdx >= len(netAtoms) {
						continue
					}
					netID, found := am.netIndex[netAtoms[netAtomIdx]]
					if !found {
						continue
					}
					targetNet := am.Nets[netID]
					targetNet.Endpoints = append(targetNet.Endpoints, AtomizedEndpoint{
						NetID:  netID,
						InstID: inst.ID,
						Port:   pinLiteral,
					})
				}
			}
		}
	}
	return ok
}
