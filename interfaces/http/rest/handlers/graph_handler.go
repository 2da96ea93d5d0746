package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"flowgraph-backend/application/queries"
	querybus "flowgraph-backend/application/queries/bus"
	apperrors "flowgraph-backend/pkg/errors"
)

// GraphHandler handles graph-level HTTP requests.
type GraphHandler struct {
	queryBus *querybus.QueryBus
	logger   *zap.Logger
}

// NewGraphHandler creates a new graph handler.
func NewGraphHandler(queryBus *querybus.QueryBus, logger *zap.Logger) *GraphHandler {
	return &GraphHandler{queryBus: queryBus, logger: logger}
}

// GetGraph handles GET /graphs/{graphID}.
func (h *GraphHandler) GetGraph(w http.ResponseWriter, r *http.Request) {
	result, err := h.queryBus.Ask(r.Context(), queries.GetGraphQuery{
		GraphID: chi.URLParam(r, "graphID"),
	})
	if err != nil {
		apperrors.RespondWithError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// ListGraphs handles GET /graphs.
func (h *GraphHandler) ListGraphs(w http.ResponseWriter, r *http.Request) {
	result, err := h.queryBus.Ask(r.Context(), queries.ListGraphsQuery{})
	if err != nil {
		apperrors.RespondWithError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// respondJSON writes a JSON success response.
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}
