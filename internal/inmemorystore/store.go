// Package inmemorystore provides an ephemeral, thread-safe, in-memory
// implementation of the nodestore.Store interface.
//
// Snapshots are kept in a sync.Map: the key space (node ids) is stable for
// the lifetime of a session while values are rewritten on most ticks, and
// readers never block the session goroutine.
package inmemorystore

import (
	"context"
	"sort"
	"sync"

	"github.com/specialistvlad/stitchgrid/internal/nodestore"
)

// Store is an in-memory nodestore.Store.
type Store struct {
	snapshots sync.Map // Key: node id, Value: nodestore.Snapshot
}

// New creates a new, empty in-memory store.
func New() nodestore.Store {
	return &Store{}
}

func (s *Store) Put(_ context.Context, snap nodestore.Snapshot) error {
	s.snapshots.Store(snap.ID, snap)
	return nil
}

func (s *Store) Get(_ context.Context, id string) (nodestore.Snapshot, bool, error) {
	v, ok := s.snapshots.Load(id)
	if !ok {
		return nodestore.Snapshot{}, false, nil
	}
	return v.(nodestore.Snapshot), true, nil
}

func (s *Store) Delete(_ context.Context, id string) error {
	s.snapshots.Delete(id)
	return nil
}

func (s *Store) List(_ context.Context) ([]nodestore.Snapshot, error) {
	var out []nodestore.Snapshot
	s.snapshots.Range(func(_, v any) bool {
		out = append(out, v.(nodestore.Snapshot))
		return true
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) Reset(_ context.Context) error {
	s.snapshots.Range(func(k, _ any) bool {
		s.snapshots.Delete(k)
		return true
	})
	return nil
}
