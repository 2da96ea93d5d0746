package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"flowgraph-backend/domain/core/aggregates"
	"flowgraph-backend/domain/core/entities"
	"flowgraph-backend/domain/core/valueobjects"
	apperrors "flowgraph-backend/pkg/errors"
)

func testInfo(name string) *aggregates.GraphInfo {
	node := entities.NewExtensionNode(valueobjects.ExtensionIdentity{Name: "a", Addon: "addon1"})
	return aggregates.NewGraphInfo(name, &aggregates.Graph{
		Nodes: []entities.GraphNode{node},
	})
}

func TestGraphStore_GetUnknownIsNotFound(t *testing.T) {
	store := NewGraphStore(zap.NewNop())

	_, err := store.Get(context.Background(), uuid.New())

	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestGraphStore_PutAndGetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	store := NewGraphStore(zap.NewNop())
	info := testInfo("default")
	require.NoError(t, store.Put(ctx, info))

	got, err := store.Get(ctx, info.ID)
	require.NoError(t, err)
	assert.Equal(t, info, got)

	// Mutating the returned copy must not touch the stored state.
	got.Graph.Nodes[0].Name = "changed"
	again, err := store.Get(ctx, info.ID)
	require.NoError(t, err)
	assert.Equal(t, "a", again.Graph.Nodes[0].Name)
}

func TestGraphStore_ListOrdersByName(t *testing.T) {
	ctx := context.Background()
	store := NewGraphStore(zap.NewNop())
	require.NoError(t, store.Put(ctx, testInfo("zeta")))
	require.NoError(t, store.Put(ctx, testInfo("alpha")))

	infos, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "alpha", infos[0].Name)
	assert.Equal(t, "zeta", infos[1].Name)
}

func TestGraphStore_MutateAppliesInPlace(t *testing.T) {
	ctx := context.Background()
	store := NewGraphStore(zap.NewNop())
	info := testInfo("default")
	require.NoError(t, store.Put(ctx, info))

	err := store.Mutate(ctx, info.ID, func(live *aggregates.GraphInfo) error {
		live.Graph.Nodes = nil
		return nil
	})
	require.NoError(t, err)

	got, err := store.Get(ctx, info.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Graph.Nodes)
}

func TestGraphStore_MutateErrorPropagates(t *testing.T) {
	ctx := context.Background()
	store := NewGraphStore(zap.NewNop())
	info := testInfo("default")
	require.NoError(t, store.Put(ctx, info))

	boom := apperrors.NewConflictError("boom")
	err := store.Mutate(ctx, info.ID, func(*aggregates.GraphInfo) error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestGraphStore_MutateSerializesWriters(t *testing.T) {
	ctx := context.Background()
	store := NewGraphStore(zap.NewNop())
	info := testInfo("default")
	info.Graph.Nodes = nil
	require.NoError(t, store.Put(ctx, info))

	// Each mutation does a non-atomic read-modify-write on the node
	// list; without mutual exclusion appends would be lost.
	const writers = 32
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.Mutate(ctx, info.ID, func(live *aggregates.GraphInfo) error {
				nodes := live.Graph.Nodes
				live.Graph.Nodes = append(nodes, entities.GraphNode{
					Type: entities.NodeTypeExtension,
					Name: "n",
				})
				return nil
			})
		}()
	}
	wg.Wait()

	got, err := store.Get(ctx, info.ID)
	require.NoError(t, err)
	assert.Len(t, got.Graph.Nodes, writers)
}
