package document

import (
	"context"
	"fmt"

	"github.com/specialistvlad/stitchgrid/internal/ctxlog"
	"github.com/specialistvlad/stitchgrid/internal/engine"
	"github.com/specialistvlad/stitchgrid/internal/graph"
	"github.com/specialistvlad/stitchgrid/internal/portvalue"
)

// Build adds every node, literal and edge of the document to eng. Nodes are
// created first so references may point forward.
func (d *Document) Build(ctx context.Context, eng *engine.Engine) error {
	logger := ctxlog.FromContext(ctx)

	for _, n := range d.Nodes {
		t := portvalue.KindNone
		if n.Type != "" {
			k, err := portvalue.ParseKind(n.Type)
			if err != nil {
				return fmt.Errorf("%w: %s: %v", ErrInvalidDocument, n.Range, err)
			}
			t = k
		}
		if _, err := eng.AddNode(n.Kind, n.Name, t); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidDocument, n.Range, err)
		}
	}

	edges := 0
	for _, n := range d.Nodes {
		for _, in := range n.Inputs {
			to := graph.Endpoint{Node: n.Name, Port: in.Port}
			if in.Ref != nil {
				from := graph.Endpoint{Node: in.Ref.Node, Port: in.Ref.Port}
				if err := eng.Connect(from, to); err != nil {
					return fmt.Errorf("%w: %s: %v", ErrInvalidDocument, in.Range, err)
				}
				edges++
				continue
			}
			if err := setLiteral(eng, to, in); err != nil {
				return fmt.Errorf("%w: %s: %v", ErrInvalidDocument, in.Range, err)
			}
		}
	}

	logger.Debug("Graph built from document.", "nodes", len(d.Nodes), "edges", edges)
	return nil
}

func setLiteral(eng *engine.Engine, to graph.Endpoint, in *Input) error {
	n, _ := eng.Node(to.Node)
	port, ok := n.Input(to.Port)
	if !ok {
		return fmt.Errorf("%w: %s", graph.ErrPortNotFound, to)
	}
	vs, err := portvalue.FromCty(in.Literal, port.Kind)
	if err != nil {
		return fmt.Errorf("input %s: %w", to, err)
	}
	return eng.SetInput(to, vs)
}
