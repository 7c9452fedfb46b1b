// Package node holds the runtime representation of a graph node: its ports
// with their current loops and its ephemeral state.
package node

import (
	"github.com/google/uuid"

	"github.com/specialistvlad/stitchgrid/internal/ephemeral"
	"github.com/specialistvlad/stitchgrid/internal/portvalue"
	"github.com/specialistvlad/stitchgrid/internal/registry"
)

// Port is a named slot holding one loop.
type Port struct {
	Name   string
	Kind   portvalue.Kind
	Values portvalue.Values
}

// Node is a single vertex of the evaluation graph.
type Node struct {
	ID   string
	Kind string
	// Type is the user visible type the ports were built for.
	Type    portvalue.Kind
	Inputs  []*Port
	Outputs []*Port
	// State is nil for stateless kinds.
	State ephemeral.State

	def *registry.Definition
}

// NewID returns a fresh random node id.
func NewID() string {
	return uuid.NewString()
}

// New creates a node of def's kind with ports for type t. KindNone selects
// the definition's default type.
func New(id string, def *registry.Definition, t portvalue.Kind) *Node {
	if t == portvalue.KindNone {
		t = def.DefaultType()
	}
	n := &Node{
		ID:   id,
		Kind: def.Kind,
		Type: t,
		def:  def,
	}
	n.Inputs = buildPorts(def.Inputs(t))
	n.Outputs = buildPorts(def.Outputs(t))
	if def.NewState != nil {
		n.State = def.NewState()
	}
	return n
}

func buildPorts(decls []registry.Port) []*Port {
	ports := make([]*Port, len(decls))
	for i, d := range decls {
		ports[i] = &Port{Name: d.Name, Kind: d.Kind, Values: d.InitialValues()}
	}
	return ports
}

// Definition returns the definition the node was created from.
func (n *Node) Definition() *registry.Definition {
	return n.def
}

// Retype rebuilds the ports for type t. Inputs that keep their name and kind
// keep their values; everything else starts from its default. Ephemeral
// state is reset.
func (n *Node) Retype(t portvalue.Kind) {
	if t == portvalue.KindNone {
		t = n.def.DefaultType()
	}
	old := make(map[string]*Port, len(n.Inputs))
	for _, p := range n.Inputs {
		old[p.Name] = p
	}
	n.Type = t
	n.Inputs = buildPorts(n.def.Inputs(t))
	for _, p := range n.Inputs {
		if prev, ok := old[p.Name]; ok && prev.Kind == p.Kind {
			p.Values = prev.Values
		}
	}
	n.Outputs = buildPorts(n.def.Outputs(t))
	n.ResetState()
}

// ResetState clears the node's ephemeral state, if any.
func (n *Node) ResetState() {
	if n.State != nil {
		n.State.Reset()
	}
}

// ResetOutputs puts every output back to its declared initial loop.
func (n *Node) ResetOutputs() {
	n.Outputs = buildPorts(n.def.Outputs(n.Type))
}

// Input returns the input port with the given name.
func (n *Node) Input(name string) (*Port, bool) {
	return findPort(n.Inputs, name)
}

// Output returns the output port with the given name.
func (n *Node) Output(name string) (*Port, bool) {
	return findPort(n.Outputs, name)
}

func findPort(ports []*Port, name string) (*Port, bool) {
	for _, p := range ports {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}

// InputValues copies the input loops into a list.
func (n *Node) InputValues() portvalue.List {
	return valuesOf(n.Inputs)
}

// OutputValues copies the output loops into a list.
func (n *Node) OutputValues() portvalue.List {
	return valuesOf(n.Outputs)
}

func valuesOf(ports []*Port) portvalue.List {
	list := make(portvalue.List, len(ports))
	for i, p := range ports {
		list[i] = append(portvalue.Values(nil), p.Values...)
	}
	return list
}

// SetOutputs replaces the output loops. Extra loops are ignored and missing
// ones leave the port untouched.
func (n *Node) SetOutputs(list portvalue.List) {
	for i, p := range n.Outputs {
		if i < len(list) {
			p.Values = list[i]
		}
	}
}
