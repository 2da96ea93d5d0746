package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"flowgraph-backend/application/commands"
	"flowgraph-backend/application/commands/bus"
	commandhandlers "flowgraph-backend/application/commands/handlers"
	"flowgraph-backend/application/queries"
	querybus "flowgraph-backend/application/queries/bus"
	queryhandlers "flowgraph-backend/application/queries/handlers"
	"flowgraph-backend/domain/core/aggregates"
	"flowgraph-backend/domain/core/entities"
	"flowgraph-backend/domain/core/validators"
	"flowgraph-backend/domain/core/valueobjects"
	"flowgraph-backend/infrastructure/config"
	memorystore "flowgraph-backend/infrastructure/persistence/memory"
	"flowgraph-backend/interfaces/http/rest"
)

type testServer struct {
	handler http.Handler
	store   *memorystore.GraphStore
}

// newTestServer wires the API surface against an in-memory store with
// auth and CORS disabled.
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := zap.NewNop()
	store := memorystore.NewGraphStore(logger)
	validator := validators.NewGraphValidator()

	commandBus := bus.NewCommandBus()
	deleteNode := commandhandlers.NewDeleteNodeHandler(store, validator, nil, nil, logger)
	require.NoError(t, commandBus.Register(commands.DeleteNodeCommand{}, bus.CommandHandlerFunc(
		func(ctx context.Context, cmd bus.Command) error {
			return deleteNode.Handle(ctx, cmd.(commands.DeleteNodeCommand))
		},
	)))
	addNode := commandhandlers.NewAddNodeHandler(store, validator, nil, nil, nil, logger)
	require.NoError(t, commandBus.Register(commands.AddNodeCommand{}, bus.CommandHandlerFunc(
		func(ctx context.Context, cmd bus.Command) error {
			return addNode.Handle(ctx, cmd.(commands.AddNodeCommand))
		},
	)))

	queryBus := querybus.NewQueryBus()
	listNodes := queryhandlers.NewListNodesHandler(store, logger)
	require.NoError(t, queryBus.Register(queries.ListNodesQuery{}, querybus.QueryHandlerFunc(
		func(ctx context.Context, q querybus.Query) (interface{}, error) {
			return listNodes.Handle(ctx, q.(queries.ListNodesQuery))
		},
	)))
	listGraphs := queryhandlers.NewListGraphsHandler(store, logger)
	require.NoError(t, queryBus.Register(queries.ListGraphsQuery{}, querybus.QueryHandlerFunc(
		func(ctx context.Context, q querybus.Query) (interface{}, error) {
			return listGraphs.Handle(ctx, q.(queries.ListGraphsQuery))
		},
	)))
	getGraph := queryhandlers.NewGetGraphHandler(store, logger)
	require.NoError(t, queryBus.Register(queries.GetGraphQuery{}, querybus.QueryHandlerFunc(
		func(ctx context.Context, q querybus.Query) (interface{}, error) {
			return getGraph.Handle(ctx, q.(queries.GetGraphQuery))
		},
	)))

	router := rest.NewRouter(&config.Config{}, commandBus, queryBus, logger)
	return &testServer{handler: router.Setup(), store: store}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func extNode(name, addon string) entities.GraphNode {
	return entities.NewExtensionNode(valueobjects.ExtensionIdentity{Name: name, Addon: addon})
}

// seedGraph registers a two-node graph where b sends a data flow to a.
func seedGraph(t *testing.T, s *testServer) *aggregates.GraphInfo {
	t.Helper()
	info := aggregates.NewGraphInfo("default", &aggregates.Graph{
		Nodes: []entities.GraphNode{extNode("a", "addon1"), extNode("b", "addon2")},
		Connections: []aggregates.Connection{{
			Loc: valueobjects.NewLocation("b", nil),
			Data: []aggregates.MessageFlow{{
				Name: "frame",
				Dest: []aggregates.Destination{{Loc: valueobjects.NewLocation("a", nil)}},
			}},
		}},
	})
	require.NoError(t, s.store.Put(context.Background(), info))
	return info
}

func TestDeleteNode_UnknownGraphIs404(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/v1/graphs/"+uuid.New().String()+"/nodes/delete",
		map[string]string{"name": "a", "addon": "addon1"})

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteNode_InvalidBodyIs400(t *testing.T) {
	s := newTestServer(t)
	info := seedGraph(t, s)

	req := httptest.NewRequest(http.MethodPost,
		"/api/v1/graphs/"+info.ID.String()+"/nodes/delete",
		bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteNode_MissingAddonIs400(t *testing.T) {
	s := newTestServer(t)
	info := seedGraph(t, s)

	rec := s.do(t, http.MethodPost, "/api/v1/graphs/"+info.ID.String()+"/nodes/delete",
		map[string]string{"name": "a"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteNode_RemovesNodeAndReferences(t *testing.T) {
	s := newTestServer(t)
	info := seedGraph(t, s)

	rec := s.do(t, http.MethodPost, "/api/v1/graphs/"+info.ID.String()+"/nodes/delete",
		map[string]string{"name": "a", "addon": "addon1"})
	require.Equal(t, http.StatusOK, rec.Code)

	var status struct {
		Success bool `json:"success"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.True(t, status.Success)

	listRec := s.do(t, http.MethodGet, "/api/v1/graphs/"+info.ID.String()+"/nodes", nil)
	require.Equal(t, http.StatusOK, listRec.Code)
	var nodes []entities.GraphNode
	require.NoError(t, json.Unmarshal(listRec.Body.Bytes(), &nodes))
	require.Len(t, nodes, 1)
	assert.Equal(t, "b", nodes[0].Name)

	got, err := s.store.Get(context.Background(), info.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Graph.Connections)
}

func TestDeleteNode_NoMatchIs200NoOp(t *testing.T) {
	s := newTestServer(t)
	info := seedGraph(t, s)

	rec := s.do(t, http.MethodPost, "/api/v1/graphs/"+info.ID.String()+"/nodes/delete",
		map[string]string{"name": "missing", "addon": "addon1"})
	assert.Equal(t, http.StatusOK, rec.Code)

	got, err := s.store.Get(context.Background(), info.ID)
	require.NoError(t, err)
	assert.Len(t, got.Graph.Nodes, 2)
}

func TestDeleteNode_ValidationRejectionIs400AndGraphUnchanged(t *testing.T) {
	s := newTestServer(t)

	// A connection sourced at a nonexistent extension makes any delete
	// that reaches validation fail.
	info := aggregates.NewGraphInfo("broken", &aggregates.Graph{
		Nodes: []entities.GraphNode{extNode("a", "addon1"), extNode("b", "addon2")},
		Connections: []aggregates.Connection{{
			Loc: valueobjects.NewLocation("ghost", nil),
			Cmd: []aggregates.MessageFlow{{
				Name: "ping",
				Dest: []aggregates.Destination{{Loc: valueobjects.NewLocation("b", nil)}},
			}},
		}},
	})
	require.NoError(t, s.store.Put(context.Background(), info))
	before, err := s.store.Get(context.Background(), info.ID)
	require.NoError(t, err)

	rec := s.do(t, http.MethodPost, "/api/v1/graphs/"+info.ID.String()+"/nodes/delete",
		map[string]string{"name": "a", "addon": "addon1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body.Message, `"ghost"`, "the response must say why validation rejected the deletion")

	after, err := s.store.Get(context.Background(), info.ID)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestAddNode_CreatesExtension(t *testing.T) {
	s := newTestServer(t)
	info := seedGraph(t, s)

	rec := s.do(t, http.MethodPost, "/api/v1/graphs/"+info.ID.String()+"/nodes",
		map[string]string{"name": "c", "addon": "addon3"})
	require.Equal(t, http.StatusCreated, rec.Code)

	got, err := s.store.Get(context.Background(), info.ID)
	require.NoError(t, err)
	assert.Len(t, got.Graph.Nodes, 3)
}

func TestAddNode_DuplicateIdentityIs400(t *testing.T) {
	s := newTestServer(t)
	info := seedGraph(t, s)

	rec := s.do(t, http.MethodPost, "/api/v1/graphs/"+info.ID.String()+"/nodes",
		map[string]string{"name": "a", "addon": "addon9"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListGraphs_ReturnsSummaries(t *testing.T) {
	s := newTestServer(t)
	seedGraph(t, s)

	rec := s.do(t, http.MethodGet, "/api/v1/graphs/", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var summaries []queries.GraphSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summaries))
	require.Len(t, summaries, 1)
	assert.Equal(t, "default", summaries[0].Name)
	assert.Equal(t, 2, summaries[0].NodeCount)
}
