package rubric

import "sort"

// topologicalLevels partitions a requirement graph into root-first
// layers via Kahn-style BFS by in-degree: each pass emits every
// currently zero-in-degree node as one layer, then decrements the
// in-degree of its children. Ties within a layer are broken by sorting
// names, so parallel-execution logs are reproducible (spec.md §4.1).
//
// graph maps a requirement name to the names it unlocks (its flattened
// dependency values). Every name reachable from graph, including pure
// leaves with no outgoing edges, must appear as a key.
func topologicalLevels(graph map[string][]string) ([][]string, error) {
	inDegree := make(map[string]int, len(graph))
	children := make(map[string][]string, len(graph))

	for name := range graph {
		if _, ok := inDegree[name]; !ok {
			inDegree[name] = 0
		}
	}
	for parent, unlocks := range graph {
		for _, child := range unlocks {
			inDegree[child]++
			children[parent] = append(children[parent], child)
		}
	}

	var levels [][]string
	layer := zeroInDegreeNodes(graph, inDegree)
	visited := 0

	for len(layer) > 0 {
		sort.Strings(layer)
		levels = append(levels, layer)
		visited += len(layer)

		seen := make(map[string]bool)
		var next []string
		for _, name := range layer {
			for _, child := range children[name] {
				inDegree[child]--
				if inDegree[child] == 0 && !seen[child] {
					seen[child] = true
					next = append(next, child)
				}
			}
		}
		layer = next
	}

	if visited != len(graph) {
		return nil, &ConfigError{Reason: "cycle_detected: requirement graph contains a cycle"}
	}

	return levels, nil
}

func zeroInDegreeNodes(graph map[string][]string, inDegree map[string]int) []string {
	var out []string
	for name := range graph {
		if inDegree[name] == 0 {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}
