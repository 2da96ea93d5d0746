package ports

import (
	"context"

	"github.com/google/uuid"

	"flowgraph-backend/domain/core/aggregates"
	"flowgraph-backend/domain/events"
)

// GraphStore is the keyed store of designer graphs.
//
// Get and List return defensive copies, so a caller can never mutate the
// authoritative graph outside Mutate. Mutate runs fn with the graph held
// under its exclusive writer lock for the entire call, so no other
// operation can observe an intermediate state of an in-flight mutation.
// If fn returns an error the store keeps whatever state fn left behind;
// restoring a consistent state on failure is fn's job.
type GraphStore interface {
	// Get retrieves a copy of the graph entry by ID.
	Get(ctx context.Context, id uuid.UUID) (*aggregates.GraphInfo, error)

	// List retrieves copies of all graph entries.
	List(ctx context.Context) ([]*aggregates.GraphInfo, error)

	// Put registers or replaces a graph entry.
	Put(ctx context.Context, info *aggregates.GraphInfo) error

	// Mutate runs fn against the live graph entry under its writer lock.
	Mutate(ctx context.Context, id uuid.UUID, fn func(*aggregates.GraphInfo) error) error
}

// GraphValidator is the structural-validation capability the mutating
// graph operations depend on. Implementations may normalize the graph in
// place on success.
type GraphValidator interface {
	Validate(ctx context.Context, g *aggregates.Graph) error
}

// PropertySync persists a graph's property document after an in-memory
// mutation has committed. A sync failure is a caller-level error: it
// never re-triggers an in-memory rollback, it only signals that the
// follow-on persistence failed.
type PropertySync interface {
	SyncGraph(ctx context.Context, info *aggregates.GraphInfo) error
}

// EventBus publishes domain events to in-process subscribers.
type EventBus interface {
	Publish(ctx context.Context, event events.DomainEvent) error
	Subscribe(eventType string, handler func(context.Context, events.DomainEvent))
}
