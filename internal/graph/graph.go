package graph

import (
	"errors"
	"fmt"
	"sort"

	"github.com/specialistvlad/stitchgrid/internal/node"
)

var (
	ErrNodeNotFound  = errors.New("node not found")
	ErrDuplicateNode = errors.New("node already exists")
	ErrPortNotFound  = errors.New("port not found")
	ErrSelfReference = errors.New("self-referential edge not allowed")
)

// Endpoint addresses a port on a node.
type Endpoint struct {
	Node string
	Port string
}

func (e Endpoint) String() string {
	return e.Node + "." + e.Port
}

// Edge feeds the output From into the input To.
type Edge struct {
	From Endpoint
	To   Endpoint
}

// Graph is a set of nodes and the edges between their ports.
type Graph struct {
	nodes map[string]*node.Node
	// upstream maps an input endpoint to the output feeding it.
	upstream map[Endpoint]Endpoint
	// downstream maps a node id to the edges leaving it.
	downstream map[string]map[Endpoint]Endpoint

	order []string
	dirty bool
}

// New creates and returns an initialized, empty Graph.
func New() *Graph {
	return &Graph{
		nodes:      make(map[string]*node.Node),
		upstream:   make(map[Endpoint]Endpoint),
		downstream: make(map[string]map[Endpoint]Endpoint),
	}
}

// AddNode inserts n. Node ids must be unique.
func (g *Graph) AddNode(n *node.Node) error {
	if _, ok := g.nodes[n.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateNode, n.ID)
	}
	g.nodes[n.ID] = n
	g.dirty = true
	return nil
}

// RemoveNode deletes a node together with every edge touching it.
func (g *Graph) RemoveNode(id string) error {
	if _, ok := g.nodes[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	for _, e := range g.Edges() {
		if e.From.Node == id || e.To.Node == id {
			g.removeEdge(e.To)
		}
	}
	delete(g.nodes, id)
	delete(g.downstream, id)
	g.dirty = true
	return nil
}

// Node returns the node with the given id.
func (g *Graph) Node(id string) (*node.Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Len is the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Nodes returns every node sorted by id.
func (g *Graph) Nodes() []*node.Node {
	ids := g.sortedIDs()
	out := make([]*node.Node, len(ids))
	for i, id := range ids {
		out[i] = g.nodes[id]
	}
	return out
}

func (g *Graph) sortedIDs() []string {
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Connect creates an edge from an output port to an input port, replacing
// any edge already feeding that input.
func (g *Graph) Connect(from, to Endpoint) error {
	if from.Node == to.Node {
		return fmt.Errorf("%w: %s -> %s", ErrSelfReference, from, to)
	}
	src, ok := g.nodes[from.Node]
	if !ok {
		return fmt.Errorf("source %w: %s", ErrNodeNotFound, from.Node)
	}
	dst, ok := g.nodes[to.Node]
	if !ok {
		return fmt.Errorf("destination %w: %s", ErrNodeNotFound, to.Node)
	}
	if _, ok := src.Output(from.Port); !ok {
		return fmt.Errorf("output %w: %s", ErrPortNotFound, from)
	}
	if _, ok := dst.Input(to.Port); !ok {
		return fmt.Errorf("input %w: %s", ErrPortNotFound, to)
	}

	g.removeEdge(to)
	g.upstream[to] = from
	if g.downstream[from.Node] == nil {
		g.downstream[from.Node] = make(map[Endpoint]Endpoint)
	}
	g.downstream[from.Node][to] = from
	g.dirty = true
	return nil
}

// Disconnect removes the edge feeding the input to. It reports whether an
// edge was removed.
func (g *Graph) Disconnect(to Endpoint) bool {
	if _, ok := g.upstream[to]; !ok {
		return false
	}
	g.removeEdge(to)
	g.dirty = true
	return true
}

func (g *Graph) removeEdge(to Endpoint) {
	from, ok := g.upstream[to]
	if !ok {
		return
	}
	delete(g.upstream, to)
	if out := g.downstream[from.Node]; out != nil {
		delete(out, to)
		if len(out) == 0 {
			delete(g.downstream, from.Node)
		}
	}
}

// Upstream returns the output feeding the input to.
func (g *Graph) Upstream(to Endpoint) (Endpoint, bool) {
	from, ok := g.upstream[to]
	return from, ok
}

// Downstream returns the edges leaving node id, sorted by destination.
func (g *Graph) Downstream(id string) []Edge {
	out := g.downstream[id]
	edges := make([]Edge, 0, len(out))
	for to, from := range out {
		edges = append(edges, Edge{From: from, To: to})
	}
	sortEdges(edges)
	return edges
}

// Edges returns every edge, sorted.
func (g *Graph) Edges() []Edge {
	edges := make([]Edge, 0, len(g.upstream))
	for to, from := range g.upstream {
		edges = append(edges, Edge{From: from, To: to})
	}
	sortEdges(edges)
	return edges
}

func sortEdges(edges []Edge) {
	sort.Slice(edges, func(i, j int) bool {
		a, b := edges[i], edges[j]
		if a.To.Node != b.To.Node {
			return a.To.Node < b.To.Node
		}
		if a.To.Port != b.To.Port {
			return a.To.Port < b.To.Port
		}
		if a.From.Node != b.From.Node {
			return a.From.Node < b.From.Node
		}
		return a.From.Port < b.From.Port
	})
}

// Dependencies returns the ids of the nodes feeding id, sorted.
func (g *Graph) Dependencies(id string) ([]string, error) {
	if _, ok := g.nodes[id]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	set := make(map[string]bool)
	for to, from := range g.upstream {
		if to.Node == id {
			set[from.Node] = true
		}
	}
	return sortedSet(set), nil
}

// Dependents returns the ids of the nodes fed by id, sorted.
func (g *Graph) Dependents(id string) ([]string, error) {
	if _, ok := g.nodes[id]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	set := make(map[string]bool)
	for to := range g.downstream[id] {
		set[to.Node] = true
	}
	return sortedSet(set), nil
}

func sortedSet(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// PruneDangling drops edges whose ports no longer exist on their nodes, as
// happens after a node changes type. It returns the removed edges.
func (g *Graph) PruneDangling(id string) []Edge {
	var removed []Edge
	for _, e := range g.Edges() {
		if e.From.Node != id && e.To.Node != id {
			continue
		}
		src := g.nodes[e.From.Node]
		dst := g.nodes[e.To.Node]
		_, okOut := src.Output(e.From.Port)
		_, okIn := dst.Input(e.To.Port)
		if !okOut || !okIn {
			g.removeEdge(e.To)
			removed = append(removed, e)
		}
	}
	if len(removed) > 0 {
		g.dirty = true
	}
	return removed
}
