package memory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"flowgraph-backend/domain/events"
)

func TestEventBus_DeliversToMatchingSubscribers(t *testing.T) {
	bus := NewEventBus(zap.NewNop())

	var deleted, added int
	bus.Subscribe("graph.node_deleted", func(context.Context, events.DomainEvent) { deleted++ })
	bus.Subscribe("graph.node_deleted", func(context.Context, events.DomainEvent) { deleted++ })
	bus.Subscribe("graph.node_added", func(context.Context, events.DomainEvent) { added++ })

	require.NoError(t, bus.Publish(context.Background(), events.NewNodeDeleted(uuid.New(), "a", "addon1")))

	assert.Equal(t, 2, deleted)
	assert.Zero(t, added, "subscribers of other event types must not fire")
}

func TestEventBus_RecoversFromPanickingHandler(t *testing.T) {
	bus := NewEventBus(zap.NewNop())

	var delivered int
	bus.Subscribe("graph.updated", func(context.Context, events.DomainEvent) { panic("boom") })
	bus.Subscribe("graph.updated", func(context.Context, events.DomainEvent) { delivered++ })

	require.NoError(t, bus.Publish(context.Background(), events.NewGraphUpdated(uuid.New())))

	assert.Equal(t, 1, delivered, "later subscribers still run after a panic")
}

func TestEventBus_NoSubscribersIsFine(t *testing.T) {
	bus := NewEventBus(zap.NewNop())

	assert.NoError(t, bus.Publish(context.Background(), events.NewNodeAdded(uuid.New(), "a", "addon1")))
}
