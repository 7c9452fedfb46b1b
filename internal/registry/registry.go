package registry

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/specialistvlad/stitchgrid/internal/ephemeral"
	"github.com/specialistvlad/stitchgrid/internal/eval"
	"github.com/specialistvlad/stitchgrid/internal/portvalue"
)

// Module is the interface that all node modules implement to be registered.
type Module interface {
	Register(r *Registry)
}

// Port declares one input or output port.
type Port struct {
	Name string
	Kind portvalue.Kind
	// Default is the initial loop of an input port. Nil means a single
	// default value of Kind.
	Default portvalue.Values
}

// InitialValues is the loop a freshly created port holds.
func (p Port) InitialValues() portvalue.Values {
	if p.Default != nil {
		return append(portvalue.Values(nil), p.Default...)
	}
	return portvalue.Values{portvalue.Default(p.Kind)}
}

// PortsFunc returns the ports of a node for a user visible type.
type PortsFunc func(t portvalue.Kind) []Port

// Static is a PortsFunc for kinds whose ports do not depend on the type.
func Static(ports ...Port) PortsFunc {
	return func(portvalue.Kind) []Port { return ports }
}

// Definition describes a node kind.
type Definition struct {
	Kind string
	// Types lists the supported user visible types, default first. Empty
	// means the kind has no selectable type.
	Types    []portvalue.Kind
	Inputs   PortsFunc
	Outputs  PortsFunc
	Eval     eval.Func
	NewState ephemeral.Factory
	// AlwaysEval kinds are evaluated on every tick whether or not their
	// inputs changed.
	AlwaysEval bool
}

// DefaultType is the type a node gets when none is requested.
func (d *Definition) DefaultType() portvalue.Kind {
	if len(d.Types) == 0 {
		return portvalue.KindNone
	}
	return d.Types[0]
}

// Supports reports whether t is a valid user visible type for the kind.
// KindNone is always accepted and stands for the default type.
func (d *Definition) Supports(t portvalue.Kind) bool {
	if t == portvalue.KindNone {
		return true
	}
	for _, s := range d.Types {
		if s == t {
			return true
		}
	}
	return false
}

// Registry holds the node definitions of a single application instance.
type Registry struct {
	definitions map[string]*Definition
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{definitions: make(map[string]*Definition)}
}

// NewWith creates a Registry and registers every module into it.
func NewWith(modules ...Module) *Registry {
	r := New()
	for _, m := range modules {
		m.Register(r)
	}
	return r
}

// RegisterNode adds a node kind. Registering the same kind twice is a
// programming error and panics.
func (r *Registry) RegisterNode(def *Definition) {
	if _, exists := r.definitions[def.Kind]; exists {
		panic(fmt.Sprintf("node kind '%s' already registered", def.Kind))
	}
	slog.Debug("Registering node kind.", "kind", def.Kind)
	r.definitions[def.Kind] = def
}

// Lookup returns the definition of kind.
func (r *Registry) Lookup(kind string) (*Definition, bool) {
	def, ok := r.definitions[kind]
	return def, ok
}

// Kinds returns all registered kinds in sorted order.
func (r *Registry) Kinds() []string {
	kinds := make([]string, 0, len(r.definitions))
	for k := range r.definitions {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}
