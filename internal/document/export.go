package document

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"

	"github.com/specialistvlad/stitchgrid/internal/engine"
	"github.com/specialistvlad/stitchgrid/internal/graph"
	"github.com/specialistvlad/stitchgrid/internal/node"
	"github.com/specialistvlad/stitchgrid/internal/portvalue"
)

// Export writes the graph held by eng as a document. Edges are written as
// references. Unconnected inputs are written when they differ from their
// declared default and hold only numbers, bools or strings; other literals
// are left out.
func Export(eng *engine.Engine) []byte {
	f := hclwrite.NewEmptyFile()
	body := f.Body()

	for i, n := range eng.Graph().Nodes() {
		if i > 0 {
			body.AppendNewline()
		}
		block := body.AppendNewBlock("node", []string{n.Kind, n.ID})
		nb := block.Body()
		if n.Type != portvalue.KindNone && n.Type != n.Definition().DefaultType() {
			nb.SetAttributeValue("type", cty.StringVal(n.Type.String()))
		}

		var inputs *hclwrite.Body
		inputsBody := func() *hclwrite.Body {
			if inputs == nil {
				inputs = nb.AppendNewBlock("inputs", nil).Body()
			}
			return inputs
		}
		defaults := declaredDefaults(n)
		for _, in := range n.Inputs {
			to := graph.Endpoint{Node: n.ID, Port: in.Name}
			if from, ok := eng.Graph().Upstream(to); ok {
				inputsBody().SetAttributeTraversal(in.Name, hcl.Traversal{
					hcl.TraverseRoot{Name: referenceRoot},
					hcl.TraverseAttr{Name: from.Node},
					hcl.TraverseAttr{Name: from.Port},
				})
				continue
			}
			if portvalue.EqualValues(in.Values, defaults[in.Name]) {
				continue
			}
			if val, ok := literalFor(in.Values); ok {
				inputsBody().SetAttributeValue(in.Name, val)
			}
		}
	}
	return f.Bytes()
}

func declaredDefaults(n *node.Node) map[string]portvalue.Values {
	out := make(map[string]portvalue.Values)
	for _, p := range n.Definition().Inputs(n.Type) {
		out[p.Name] = p.InitialValues()
	}
	return out
}

// literalFor converts a loop of scalars into a cty literal. A loop of one is
// written as a plain value, longer loops as tuples.
func literalFor(vs portvalue.Values) (cty.Value, bool) {
	elems := make([]cty.Value, 0, len(vs))
	for _, v := range vs {
		if c, ok := v.(portvalue.Comparable); ok {
			v = c.Inner
		}
		switch t := v.(type) {
		case portvalue.Number:
			elems = append(elems, cty.NumberFloatVal(float64(t)))
		case portvalue.Bool:
			elems = append(elems, cty.BoolVal(bool(t)))
		case portvalue.String:
			elems = append(elems, cty.StringVal(string(t)))
		default:
			return cty.NilVal, false
		}
	}
	switch len(elems) {
	case 0:
		return cty.NilVal, false
	case 1:
		return elems[0], true
	}
	return cty.TupleVal(elems), true
}
