package netlist

import (
	"sort"

	"asdl/internal/air"
)

// moduleOrder returns every module key in a stable base order: by
// file-id, then by name. It anchors both the dependency-order DFS's
// root iteration and its tie-breaking (spec.md §4.G "break ties by
// declaration order"); cross-file declaration order isn't preserved by
// the resolver, so file-id provides the next best stable tiebreak.
func moduleOrder(ag *air.AtomizedGraph) []air.ModuleKey {
	keys := make([]air.ModuleKey, 0, len(ag.Modules))
	for k := range ag.Modules {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].FileID != keys[j].FileID {
			return keys[i].FileID < keys[j].FileID
		}
		return keys[i].Name < keys[j].Name
	})
	return keys
}

// dependencyOrder returns hierarchical modules in emission order: a
// module comes after every hierarchical module it instantiates,
// directly or transitively, and the top module (if known) is moved
// last (spec.md §4.G).
func dependencyOrder(ag *air.AtomizedGraph, topKey air.ModuleKey, hasTop bool) []air.ModuleKey {
	base := moduleOrder(ag)
	visited := map[air.ModuleKey]bool{}
	var order []air.ModuleKey

	var visit func(key air.ModuleKey)
	visit = func(key air.ModuleKey) {
		if visited[key] {
			return
		}
		mod, ok := ag.Modules[key]
		if !ok || mod.IsPrimitive {
			return
		}
		visited[key] = true
		for _, inst := range mod.Instances {
			if !inst.Resolved {
				continue
			}
			dep := air.ModuleKey{FileID: inst.TargetFile, Name: inst.TargetName}
			visit(dep)
		}
		order = append(order, key)
	}

	for _, key := range base {
		visit(key)
	}

	if hasTop {
		for i, key := range order {
			if key == topKey {
				order = append(order[:i], order[i+1:]...)
				order = append(order, topKey)
				break
			}
		}
	}
	return order
}
