// Package document loads graph documents written in HCL and builds them into
// an engine.
//
//	node "repeatingPulse" "tick" {
//	  inputs {
//	    frequency = 1
//	  }
//	}
//
//	node "counter" "count" {
//	  inputs {
//	    increase      = node.tick.pulse
//	    maximum_count = 3
//	  }
//	}
//
// The block labels are the node kind and its unique name. An input set to a
// node.<name>.<output> traversal becomes an edge; anything else must be a
// literal and becomes the input's loop (tuples are multi-value loops).
package document

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/specialistvlad/stitchgrid/internal/ctxlog"
	"github.com/specialistvlad/stitchgrid/internal/fsutil"
)

// ErrInvalidDocument wraps every problem found while loading or building a
// document.
var ErrInvalidDocument = errors.New("invalid graph document")

// FileExtension is the extension of graph documents inside a directory.
const FileExtension = ".hcl"

// referenceRoot is the first traversal step of an edge reference.
const referenceRoot = "node"

// Document is a parsed graph.
type Document struct {
	Nodes []*Node
}

// Node is one node block.
type Node struct {
	Kind string
	Name string
	// Type is the user visible type name, empty for the kind's default.
	Type   string
	Inputs []*Input
	Range  hcl.Range
}

// Input is one attribute of a node's inputs block. Exactly one of Ref and
// Literal is set.
type Input struct {
	Port    string
	Ref     *Reference
	Literal cty.Value
	Range   hcl.Range
}

// Reference points at an output port of another node.
type Reference struct {
	Node string
	Port string
}

type fileRoot struct {
	Nodes  []*nodeBlock `hcl:"node,block"`
	Remain hcl.Body     `hcl:",remain"`
}

type nodeBlock struct {
	Kind     string       `hcl:"kind,label"`
	Name     string       `hcl:"name,label"`
	Type     string       `hcl:"type,optional"`
	Inputs   *inputsBlock `hcl:"inputs,block"`
	DefRange hcl.Range    `hcl:",def_range"`
}

type inputsBlock struct {
	Body hcl.Body `hcl:",remain"`
}

// Load parses every document found at paths. A directory contributes all of
// its .hcl files, recursively.
func Load(ctx context.Context, paths ...string) (*Document, error) {
	logger := ctxlog.FromContext(ctx)

	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}
		if !info.IsDir() {
			files = append(files, path)
			continue
		}
		found, err := fsutil.FindFilesByExtension(path, FileExtension)
		if err != nil {
			return nil, fmt.Errorf("failed to search %s: %w", path, err)
		}
		files = append(files, found...)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no %s files found in %v", ErrInvalidDocument, FileExtension, paths)
	}
	logger.Debug("Discovered graph documents.", "count", len(files))

	parser := hclparse.NewParser()
	doc := &Document{}
	for _, file := range files {
		f, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("%w: %s", ErrInvalidDocument, diags.Error())
		}
		if err := doc.decode(f.Body); err != nil {
			return nil, err
		}
	}
	if err := doc.checkNames(); err != nil {
		return nil, err
	}
	logger.Debug("Graph documents loaded.", "files", len(files), "nodes", len(doc.Nodes))
	return doc, nil
}

// Parse parses a single document held in memory.
func Parse(filename string, src []byte) (*Document, error) {
	f, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDocument, diags.Error())
	}
	doc := &Document{}
	if err := doc.decode(f.Body); err != nil {
		return nil, err
	}
	if err := doc.checkNames(); err != nil {
		return nil, err
	}
	return doc, nil
}

func (d *Document) decode(body hcl.Body) error {
	var root fileRoot
	if diags := gohcl.DecodeBody(body, nil, &root); diags.HasErrors() {
		return fmt.Errorf("%w: %s", ErrInvalidDocument, diags.Error())
	}
	attrs, diags := root.Remain.JustAttributes()
	if diags.HasErrors() {
		return fmt.Errorf("%w: %s", ErrInvalidDocument, diags.Error())
	}
	for _, attr := range attrs {
		return fmt.Errorf("%w: %s: unexpected top-level attribute %q", ErrInvalidDocument, attr.Range, attr.Name)
	}

	for _, b := range root.Nodes {
		n := &Node{Kind: b.Kind, Name: b.Name, Type: b.Type, Range: b.DefRange}
		if b.Inputs != nil {
			inputs, err := decodeInputs(b.Inputs.Body)
			if err != nil {
				return err
			}
			n.Inputs = inputs
		}
		d.Nodes = append(d.Nodes, n)
	}
	return nil
}

func decodeInputs(body hcl.Body) ([]*Input, error) {
	attrs, diags := body.JustAttributes()
	if diags.HasErrors() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDocument, diags.Error())
	}

	inputs := make([]*Input, 0, len(attrs))
	for name, attr := range attrs {
		in := &Input{Port: name, Range: attr.Range}
		if ref, ok := referenceFor(attr.Expr); ok {
			in.Ref = ref
		} else {
			val, diags := attr.Expr.Value(nil)
			if diags.HasErrors() {
				return nil, fmt.Errorf("%w: input %q must be a literal or a node.<name>.<output> reference: %s", ErrInvalidDocument, name, diags.Error())
			}
			in.Literal = val
		}
		inputs = append(inputs, in)
	}
	sort.Slice(inputs, func(i, j int) bool { return inputs[i].Port < inputs[j].Port })
	return inputs, nil
}

// referenceFor recognizes node.<name>.<output> traversals.
func referenceFor(expr hcl.Expression) (*Reference, bool) {
	traversal, diags := hcl.AbsTraversalForExpr(expr)
	if diags.HasErrors() || len(traversal) != 3 || traversal.RootName() != referenceRoot {
		return nil, false
	}
	name, ok1 := traversal[1].(hcl.TraverseAttr)
	port, ok2 := traversal[2].(hcl.TraverseAttr)
	if !ok1 || !ok2 {
		return nil, false
	}
	return &Reference{Node: name.Name, Port: port.Name}, true
}

func (d *Document) checkNames() error {
	seen := make(map[string]hcl.Range, len(d.Nodes))
	for _, n := range d.Nodes {
		if prev, ok := seen[n.Name]; ok {
			return fmt.Errorf("%w: %s: duplicate node name %q, first defined at %s", ErrInvalidDocument, n.Range, n.Name, prev)
		}
		seen[n.Name] = n.Range
	}
	return nil
}
