package handlers

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"flowgraph-backend/application/ports"
	"flowgraph-backend/application/queries"
	"flowgraph-backend/domain/core/entities"
	apperrors "flowgraph-backend/pkg/errors"
)

// GetGraphHandler handles GetGraphQuery.
type GetGraphHandler struct {
	graphs ports.GraphStore
	logger *zap.Logger
}

// NewGetGraphHandler creates a new get graph handler.
func NewGetGraphHandler(graphs ports.GraphStore, logger *zap.Logger) *GetGraphHandler {
	return &GetGraphHandler{graphs: graphs, logger: logger}
}

// Handle returns a copy of the graph entry.
func (h *GetGraphHandler) Handle(ctx context.Context, q queries.GetGraphQuery) (interface{}, error) {
	id, err := uuid.Parse(q.GraphID)
	if err != nil {
		return nil, apperrors.NewValidationError(fmt.Sprintf("invalid graph ID: %v", err))
	}
	return h.graphs.Get(ctx, id)
}

// ListGraphsHandler handles ListGraphsQuery.
type ListGraphsHandler struct {
	graphs ports.GraphStore
	logger *zap.Logger
}

// NewListGraphsHandler creates a new list graphs handler.
func NewListGraphsHandler(graphs ports.GraphStore, logger *zap.Logger) *ListGraphsHandler {
	return &ListGraphsHandler{graphs: graphs, logger: logger}
}

// Handle returns summaries of all registered graphs.
func (h *ListGraphsHandler) Handle(ctx context.Context, q queries.ListGraphsQuery) (interface{}, error) {
	infos, err := h.graphs.List(ctx)
	if err != nil {
		return nil, err
	}
	summaries := make([]queries.GraphSummary, 0, len(infos))
	for _, info := range infos {
		summaries = append(summaries, queries.GraphSummary{
			ID:              info.ID.String(),
			Name:            info.Name,
			AutoStart:       info.AutoStart,
			NodeCount:       len(info.Graph.Nodes),
			ConnectionCount: len(info.Graph.Connections),
		})
	}
	return summaries, nil
}

// ListNodesHandler handles ListNodesQuery.
type ListNodesHandler struct {
	graphs ports.GraphStore
	logger *zap.Logger
}

// NewListNodesHandler creates a new list nodes handler.
func NewListNodesHandler(graphs ports.GraphStore, logger *zap.Logger) *ListNodesHandler {
	return &ListNodesHandler{graphs: graphs, logger: logger}
}

// Handle returns the nodes of the graph.
func (h *ListNodesHandler) Handle(ctx context.Context, q queries.ListNodesQuery) (interface{}, error) {
	id, err := uuid.Parse(q.GraphID)
	if err != nil {
		return nil, apperrors.NewValidationError(fmt.Sprintf("invalid graph ID: %v", err))
	}
	info, err := h.graphs.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	nodes := info.Graph.Nodes
	if nodes == nil {
		nodes = []entities.GraphNode{}
	}
	return nodes, nil
}
