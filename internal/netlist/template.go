package netlist

import "strings"

// substitute replaces every `{key}` occurrence in tmpl using ns. It
// returns the first key with no entry in ns, if any (spec.md §4.G
// G0501: "fails when {name} references a key not in the merged
// namespace").
func substitute(tmpl string, ns map[string]string) (string, string, bool) {
	var out strings.Builder
	i := 0
	for i < len(tmpl) {
		if tmpl[i] == '{' {
			end := strings.IndexByte(tmpl[i:], '}')
			if end < 0 {
				out.WriteString(tmpl[i:])
				break
			}
			key := tmpl[i+1 : i+end]
			val, ok := ns[key]
			if !ok {
				return "", key, false
			}
			out.WriteString(val)
			i += end + 1
			continue
		}
		out.WriteByte(tmpl[i])
		i++
	}
	return out.String(), "", true
}

// mergedNamespace builds the `{ports ∪ parameters ∪ variables ∪
// {name}}` substitution namespace for one instance call, with the
// three-tier precedence of spec.md §4.G: instance override shadows
// variable, variable shadows module parameter default.
func mergedNamespace(instName string, ports map[string]string, moduleParams, moduleVars, instOverrides map[string]string) map[string]string {
	ns := make(map[string]string, len(ports)+len(moduleParams)+len(moduleVars)+1)
	ns["name"] = instName
	for k, v := range ports {
		ns[k] = v
	}
	for k, v := range moduleParams {
		ns[k] = v
	}
	for k, v := range moduleVars {
		ns[k] = v
	}
	for k, v := range instOverrides {
		ns[k] = v
	}
	return ns
}
