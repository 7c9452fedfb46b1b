package graph

import (
	"fmt"
	"sort"
)

// Order returns node ids upstream-before-downstream. When a cycle blocks
// the ordering, the lowest id on the most upstream cycle is placed first and
// its remaining inputs become back edges. Nodes merely downstream of a cycle
// still follow their upstream. The result is cached until the topology
// changes and must not be modified.
func (g *Graph) Order() []string {
	if !g.dirty && g.order != nil {
		return g.order
	}

	deps := g.dependentSets()
	indegree := make(map[string]int, len(g.nodes))
	for id := range g.nodes {
		indegree[id] = 0
	}
	for _, dependents := range deps {
		for d := range dependents {
			indegree[d]++
		}
	}

	var ready []string
	for id, deg := range indegree {
		if deg == 0 {
			ready = append(ready, id)
		}
	}
	sort.Strings(ready)

	order := make([]string, 0, len(g.nodes))
	placed := make(map[string]bool, len(g.nodes))
	for len(order) < len(g.nodes) {
		if len(ready) == 0 {
			id := breakCycle(g.sortedIDs(), deps, placed)
			indegree[id] = 0
			ready = append(ready, id)
		}
		id := ready[0]
		ready = ready[1:]
		order = append(order, id)
		placed[id] = true

		for _, d := range sortedSet(deps[id]) {
			if placed[d] {
				continue
			}
			indegree[d]--
			if indegree[d] == 0 {
				ready = insertSorted(ready, d)
			}
		}
	}

	g.order = order
	g.dirty = false
	return order
}

// dependentSets maps each node to the set of distinct nodes it feeds.
func (g *Graph) dependentSets() map[string]map[string]bool {
	out := make(map[string]map[string]bool, len(g.downstream))
	for from, edges := range g.downstream {
		for to := range edges {
			if out[from] == nil {
				out[from] = make(map[string]bool)
			}
			out[from][to.Node] = true
		}
	}
	return out
}

// breakCycle picks where to cut a stalled ordering: the lowest unplaced id
// on a cycle whose strongly connected component is fed by no other unplaced
// node. Kahn's pass only stalls when such a component exists.
func breakCycle(ids []string, deps map[string]map[string]bool, placed map[string]bool) string {
	preds := make(map[string][]string)
	for from, dependents := range deps {
		if placed[from] {
			continue
		}
		for to := range dependents {
			preds[to] = append(preds[to], from)
		}
	}

	for _, id := range ids {
		if placed[id] || !reaches(id, id, deps, placed) {
			continue
		}
		if isSourceComponent(id, ids, deps, preds, placed) {
			return id
		}
	}
	for _, id := range ids {
		if !placed[id] {
			return id
		}
	}
	return ""
}

// isSourceComponent reports whether every unplaced predecessor of id's
// strongly connected component lies inside that component.
func isSourceComponent(id string, ids []string, deps map[string]map[string]bool, preds map[string][]string, placed map[string]bool) bool {
	component := map[string]bool{id: true}
	for _, other := range ids {
		if placed[other] || other == id {
			continue
		}
		if reaches(id, other, deps, placed) && reaches(other, id, deps, placed) {
			component[other] = true
		}
	}
	for member := range component {
		for _, p := range preds[member] {
			if !component[p] {
				return false
			}
		}
	}
	return true
}

// reaches reports whether target is reachable from the dependents of start
// without passing through placed nodes.
func reaches(start, target string, deps map[string]map[string]bool, placed map[string]bool) bool {
	seen := make(map[string]bool)
	stack := sortedSet(deps[start])
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if id == target {
			return true
		}
		if placed[id] || seen[id] {
			continue
		}
		seen[id] = true
		for d := range deps[id] {
			stack = append(stack, d)
		}
	}
	return false
}

func insertSorted(ids []string, id string) []string {
	i := sort.SearchStrings(ids, id)
	ids = append(ids, "")
	copy(ids[i+1:], ids[i:])
	ids[i] = id
	return ids
}

// DetectCycles returns an error naming a node on a cycle, or nil when the
// graph is acyclic.
func (g *Graph) DetectCycles() error {
	deps := g.dependentSets()
	permanent := make(map[string]bool)
	temporary := make(map[string]bool)

	var visit func(id string) error
	visit = func(id string) error {
		if permanent[id] {
			return nil
		}
		if temporary[id] {
			return fmt.Errorf("cycle detected involving node '%s'", id)
		}
		temporary[id] = true
		for _, d := range sortedSet(deps[id]) {
			if err := visit(d); err != nil {
				return err
			}
		}
		delete(temporary, id)
		permanent[id] = true
		return nil
	}

	for _, id := range g.sortedIDs() {
		if err := visit(id); err != nil {
			return err
		}
	}
	return nil
}
