package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"flowgraph-backend/domain/core/aggregates"
	apperrors "flowgraph-backend/pkg/errors"
)

// GraphStore is the in-memory keyed store of designer graphs. Each graph
// carries its own writer mutex, held for the full duration of a Mutate
// call, so a mutation's intermediate states are never observable. The
// registry itself is guarded by an RWMutex.
type GraphStore struct {
	mu     sync.RWMutex
	graphs map[uuid.UUID]*graphEntry
	logger *zap.Logger
}

type graphEntry struct {
	mu   sync.Mutex
	info *aggregates.GraphInfo
}

// NewGraphStore creates an empty in-memory graph store.
func NewGraphStore(logger *zap.Logger) *GraphStore {
	return &GraphStore{
		graphs: make(map[uuid.UUID]*graphEntry),
		logger: logger,
	}
}

// Get retrieves a deep copy of the graph entry by ID.
func (s *GraphStore) Get(ctx context.Context, id uuid.UUID) (*aggregates.GraphInfo, error) {
	entry, err := s.entry(id)
	if err != nil {
		return nil, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.info.Clone(), nil
}

// List retrieves deep copies of all graph entries, ordered by name.
func (s *GraphStore) List(ctx context.Context) ([]*aggregates.GraphInfo, error) {
	s.mu.RLock()
	entries := make([]*graphEntry, 0, len(s.graphs))
	for _, entry := range s.graphs {
		entries = append(entries, entry)
	}
	s.mu.RUnlock()

	infos := make([]*aggregates.GraphInfo, 0, len(entries))
	for _, entry := range entries {
		entry.mu.Lock()
		infos = append(infos, entry.info.Clone())
		entry.mu.Unlock()
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

// Put registers or replaces a graph entry. The stored entry is a deep
// copy, so the caller keeps no handle into the authoritative state.
func (s *GraphStore) Put(ctx context.Context, info *aggregates.GraphInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, exists := s.graphs[info.ID]; exists {
		entry.mu.Lock()
		entry.info = info.Clone()
		entry.mu.Unlock()
		return nil
	}
	s.graphs[info.ID] = &graphEntry{info: info.Clone()}
	return nil
}

// Mutate runs fn against the live graph entry with its writer lock held
// for the entire call.
func (s *GraphStore) Mutate(ctx context.Context, id uuid.UUID, fn func(*aggregates.GraphInfo) error) error {
	entry, err := s.entry(id)
	if err != nil {
		return err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return fn(entry.info)
}

func (s *GraphStore) entry(id uuid.UUID) (*graphEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, exists := s.graphs[id]
	if !exists {
		return nil, apperrors.NewNotFoundError("graph")
	}
	return entry, nil
}
