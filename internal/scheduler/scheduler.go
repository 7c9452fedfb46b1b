package scheduler

import "sort"

// DirtySet tracks the nodes that need evaluation.
type DirtySet struct {
	ids map[string]struct{}
}

// NewDirtySet creates an empty set.
func NewDirtySet() *DirtySet {
	return &DirtySet{ids: make(map[string]struct{})}
}

func (d *DirtySet) Mark(id string) {
	d.ids[id] = struct{}{}
}

func (d *DirtySet) Has(id string) bool {
	_, ok := d.ids[id]
	return ok
}

func (d *DirtySet) Clear(id string) {
	delete(d.ids, id)
}

func (d *DirtySet) Len() int {
	return len(d.ids)
}

// IDs returns the dirty ids in sorted order.
func (d *DirtySet) IDs() []string {
	out := make([]string, 0, len(d.ids))
	for id := range d.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Reset empties the set.
func (d *DirtySet) Reset() {
	clear(d.ids)
}

// Visit walks order once and calls fn for every node that is dirty when its
// turn comes, clearing it first. fn may mark further nodes.
func Visit(order []string, dirty *DirtySet, fn func(id string)) int {
	visited := 0
	for _, id := range order {
		if !dirty.Has(id) {
			continue
		}
		dirty.Clear(id)
		fn(id)
		visited++
	}
	return visited
}
