package netlist

import (
	"fmt"
	"sort"
	"strings"

	"asdl/internal/air"
	"asdl/internal/diag"
	"asdl/internal/pir"
)

// Emit converts ag into a Design, consuming pg only for file-info
// header fields (author/date/revision) and the entry document's name.
func Emit(pg *pir.ProgramGraph, ag *air.AtomizedGraph, opts Options, reporter diag.Reporter) (*Design, bool) {
	ok := true
	var b strings.Builder

	entryDoc := pg.Import.Documents[ag.EntryFileID]
	author, date, revision := headerFileInfo(entryDoc.FileInfo)
	designName := ag.EntryFileID
	if entryDoc.FileInfo != nil && entryDoc.FileInfo.TopModule != "" {
		designName = entryDoc.FileInfo.TopModule
	}

	topName := opts.TopModule
	if topName == "" && entryDoc.FileInfo != nil {
		topName = entryDoc.FileInfo.TopModule
	}
	topKey := air.ModuleKey{FileID: ag.EntryFileID, Name: topName}
	_, hasTop := ag.Modules[topKey]
	if topName == "" || !hasTop {
		reporter.Report(diag.Errorf(diag.CodeMissingTopModule, diag.StageEmit,
			fmt.Sprintf("top module %q not found", topName)).MustBuild())
		ok = false
		hasTop = false
	}

	fmt.Fprintf(&b, "* design: %s\n", designName)
	fmt.Fprintf(&b, "* top: %s\n", topName)
	if author != "" {
		fmt.Fprintf(&b, "* author: %s\n", author)
	}
	if date != "" {
		fmt.Fprintf(&b, "* date: %s\n", date)
	}
	if revision != "" {
		fmt.Fprintf(&b, "* revision: %s\n", revision)
	}
	b.WriteByte('\n')

	emitPDKIncludes(&b, ag)

	order := dependencyOrder(ag, topKey, hasTop)
	for _, key := range order {
		mod := ag.Modules[key]
		isTop := hasTop && key == topKey
		if isTop && opts.TopStyle == TopStyleFlat {
			if !emitFlatTop(&b, ag, mod, reporter) {
				ok = false
			}
			continue
		}
		if !emitHierarchicalModule(&b, ag, mod, reporter) {
			ok = false
		}
	}

	b.WriteString(".end\n")

	return &Design{Name: designName, TopModule: topName, Text: b.String()}, ok
}

func emitPDKIncludes(b *strings.Builder, ag *air.AtomizedGraph) {
	seen := map[string]bool{}
	var pdks []string
	for _, mod := range ag.Modules {
		if mod.PDK == "" || seen[mod.PDK] {
			continue
		}
		seen[mod.PDK] = true
		pdks = append(pdks, mod.PDK)
	}
	sort.Strings(pdks)
	for _, pdk := range pdks {
		if path, ok := pdkIncludes[pdk]; ok {
			fmt.Fprintf(b, ".include \"%s\"\n", path)
		} else {
			fmt.Fprintf(b, "* unknown pdk %q, no include table entry\n", pdk)
		}
	}
	if len(pdks) > 0 {
		b.WriteByte('\n')
	}
}

func emitHierarchicalModule(b *strings.Builder, ag *air.AtomizedGraph, mod *air.AtomizedModule, reporter diag.Reporter) bool {
	if mod.IsPrimitive {
		return true
	}
	ok := true
	fmt.Fprintf(b, ".subckt %s %s\n", mod.Name, strings.Join(mod.Ports, " "))
	portMap := instancePortMap(mod)
	for _, inst := range mod.Instances {
		if !emitInstanceCall(b, ag, inst, portMap[inst.ID], "  ", reporter) {
			ok = false
		}
	}
	b.WriteString(".ends\n\n")
	return ok
}

// emitFlatTop emits the top module's instances inline (no enclosing
// .subckt/.ends), with the wrapper commented out, per the `top_style
// flat` toggle.
func emitFlatTop(b *strings.Builder, ag *air.AtomizedGraph, mod *air.AtomizedModule, reporter diag.Reporter) bool {
	ok := true
	fmt.Fprintf(b, "* .subckt %s %s\n", mod.Name, strings.Join(mod.Ports, " "))
	portMap := instancePortMap(mod)
	for _, inst := range mod.Instances {
		if !emitInstanceCall(b, ag, inst, portMap[inst.ID], "", reporter) {
			ok = false
		}
	}
	b.WriteString("* .ends\n\n")
	return ok
}

func emitInstanceCall(b *strings.Builder, ag *air.AtomizedGraph, inst *air.AtomizedInstance, ports map[string]string, indent string, reporter diag.Reporter) bool {
	if !inst.Resolved {
		fmt.Fprintf(b, "%s* unknown model reference for instance %s\n", indent, inst.Literal)
		reporter.Report(diag.Errorf(diag.CodeUnknownModelRef, diag.StageEmit,
			fmt.Sprintf("instance %q references an unresolved model", inst.Literal)).
			At(inst.Span).MustBuild())
		return false
	}

	target, ok := ag.Modules[air.ModuleKey{FileID: inst.TargetFile, Name: inst.TargetName}]
	if !ok {
		fmt.Fprintf(b, "%s* invalid module reference for instance %s\n", indent, inst.Literal)
		reporter.Report(diag.Errorf(diag.CodeInvalidModuleKind, diag.StageEmit,
			fmt.Sprintf("instance %q targets a module that is neither primitive nor hierarchical", inst.Literal)).
			At(inst.Span).MustBuild())
		return false
	}

	// A hierarchical target's .subckt call needs every port positioned;
	// a primitive's template may reference only a subset of its declared
	// ports (bulk/substrate pins are often left off the template), so
	// completeness there is enforced by template substitution instead.
	if !target.IsPrimitive {
		for _, port := range target.Ports {
			if _, bound := ports[port]; !bound {
				fmt.Fprintf(b, "%s* unconnected port %q on instance %s, omitted\n", indent, port, inst.Literal)
				reporter.Report(diag.Errorf(diag.CodeUnconnectedPort, diag.StageEmit,
					fmt.Sprintf("instance %q has no mapping for port %q", inst.Literal, port)).
					At(inst.Span).MustBuild())
				return false
			}
		}
	}

	if target.IsPrimitive {
		ns := mergedNamespace(inst.Literal, ports, target.Parameters, target.Variables, inst.Parameters)
		rendered, missing, sok := substitute(target.SpiceTemplate, ns)
		if !sok {
			fmt.Fprintf(b, "%s* template placeholder {%s} unresolved for instance %s\n", indent, missing, inst.Literal)
			reporter.Report(diag.Errorf(diag.CodeTemplatePlaceholderMissing, diag.StageEmit,
				fmt.Sprintf("instance %q: template references undefined placeholder %q", inst.Literal, missing)).
				At(inst.Span).MustBuild())
			return false
		}
		fmt.Fprintf(b, "%s%s\n", indent, rendered)
		return true
	}

	netArgs := make([]string, len(target.Ports))
	for i, port := range target.Ports {
		netArgs[i] = ports[port]
	}
	params := mergedNamespace("", nil, nil, nil, inst.Parameters)
	delete(params, "name")
	paramKeys := make([]string, 0, len(params))
	for k := range params {
		paramKeys = append(paramKeys, k)
	}
	sort.Strings(paramKeys)
	var kv []string
	for _, k := range paramKeys {
		kv = append(kv, fmt.Sprintf("%s=%s", k, params[k]))
	}

	parts := []string{fmt.Sprintf("X_%s", inst.Literal)}
	parts = append(parts, netArgs...)
	parts = append(parts, target.Name)
	parts = append(parts, kv...)
	fmt.Fprintf(b, "%s%s\n", indent, strings.Join(parts, " "))
	return true
}

// instancePortMap scans mod's nets for endpoints and groups them by
// instance id into a port->net-literal map, the connectivity view
// emission needs per instance call.
func instancePortMap(mod *air.AtomizedModule) map[int]map[string]string {
	out := make(map[int]map[string]string, len(mod.Instances))
	for _, n := range mod.Nets {
		for _, ep := range n.Endpoints {
			m, ok := out[ep.InstID]
			if !ok {
				m = map[string]string{}
				out[ep.InstID] = m
			}
			m[ep.Port] = n.Literal
		}
	}
	return out
}
