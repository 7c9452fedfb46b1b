// Package nodestore defines where the latest published outputs of every node
// are kept for readers outside the session loop.
//
// The engine's graph is owned by the session goroutine and must not be read
// concurrently. After each tick the session copies the outputs of changed
// nodes into a Store as Snapshots, which the HTTP handlers and the preview
// relay can read at any time.
package nodestore

import (
	"context"

	"github.com/specialistvlad/stitchgrid/internal/node"
	"github.com/specialistvlad/stitchgrid/internal/portvalue"
)

// Snapshot is the published state of one node.
type Snapshot struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`
	Type string `json:"type,omitempty"`
	// Frame and GraphTime identify the tick the outputs were captured in.
	Frame     int     `json:"frame"`
	GraphTime float64 `json:"time"`
	// Outputs maps each output port to its encoded loop.
	Outputs map[string][]any `json:"outputs"`
}

// Capture encodes the current outputs of n.
func Capture(n *node.Node, frame int, graphTime float64) Snapshot {
	s := Snapshot{
		ID:        n.ID,
		Kind:      n.Kind,
		Frame:     frame,
		GraphTime: graphTime,
		Outputs:   make(map[string][]any, len(n.Outputs)),
	}
	if n.Type != portvalue.KindNone {
		s.Type = n.Type.String()
	}
	for _, p := range n.Outputs {
		s.Outputs[p.Name] = portvalue.EncodeValues(p.Values)
	}
	return s
}

// Store holds the latest Snapshot per node.
//
// Implementations must be safe for concurrent use: the session writes while
// HTTP handlers and the preview relay read.
type Store interface {
	// Put replaces the snapshot of snap.ID.
	Put(ctx context.Context, snap Snapshot) error
	// Get returns the snapshot of a node, if one was published.
	Get(ctx context.Context, id string) (Snapshot, bool, error)
	// Delete forgets a node, typically after it was removed from the graph.
	Delete(ctx context.Context, id string) error
	// List returns every snapshot ordered by node id.
	List(ctx context.Context) ([]Snapshot, error)
	// Reset forgets every node.
	Reset(ctx context.Context) error
}
