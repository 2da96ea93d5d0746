package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"flowgraph-backend/application/commands"
	"flowgraph-backend/application/commands/bus"
	"flowgraph-backend/application/queries"
	querybus "flowgraph-backend/application/queries/bus"
	apperrors "flowgraph-backend/pkg/errors"
	"flowgraph-backend/pkg/utils"
)

// NodeHandler handles node-related HTTP requests.
type NodeHandler struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	logger     *zap.Logger
}

// NewNodeHandler creates a new node handler.
func NewNodeHandler(commandBus *bus.CommandBus, queryBus *querybus.QueryBus, logger *zap.Logger) *NodeHandler {
	return &NodeHandler{
		commandBus: commandBus,
		queryBus:   queryBus,
		logger:     logger,
	}
}

// AddNodeRequest is the request body for adding an extension node.
type AddNodeRequest struct {
	Name           string          `json:"name" validate:"required,max=200"`
	Addon          string          `json:"addon" validate:"required,max=200"`
	App            *string         `json:"app,omitempty"`
	ExtensionGroup *string         `json:"extension_group,omitempty"`
	Property       json.RawMessage `json:"property,omitempty"`
}

// DeleteNodeRequest is the request body for deleting an extension node.
// The identity must match exactly: an unset app or extension_group only
// matches nodes where the same field is unset.
type DeleteNodeRequest struct {
	Name           string  `json:"name" validate:"required"`
	Addon          string  `json:"addon" validate:"required"`
	App            *string `json:"app,omitempty"`
	ExtensionGroup *string `json:"extension_group,omitempty"`
}

// StatusResponse is the body returned by mutating node endpoints.
type StatusResponse struct {
	Success bool `json:"success"`
}

// AddNode handles POST /graphs/{graphID}/nodes.
func (h *NodeHandler) AddNode(w http.ResponseWriter, r *http.Request) {
	var req AddNodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperrors.RespondWithError(w, r, h.logger, apperrors.NewValidationError("invalid request body: "+err.Error()))
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		apperrors.RespondWithError(w, r, h.logger, apperrors.NewValidationError(err.Error()))
		return
	}

	cmd := commands.AddNodeCommand{
		GraphID:        chi.URLParam(r, "graphID"),
		Name:           req.Name,
		Addon:          req.Addon,
		App:            req.App,
		ExtensionGroup: req.ExtensionGroup,
		Property:       req.Property,
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		apperrors.RespondWithError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, StatusResponse{Success: true})
}

// DeleteNode handles POST /graphs/{graphID}/nodes/delete.
//
// Deleting an identity that matches no node succeeds with no effect, so
// a repeated delete is indistinguishable from the first at this surface.
// An unknown graph is 404; a graph left invalid by the deletion is 400
// with the validator's message and the graph unchanged.
func (h *NodeHandler) DeleteNode(w http.ResponseWriter, r *http.Request) {
	var req DeleteNodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperrors.RespondWithError(w, r, h.logger, apperrors.NewValidationError("invalid request body: "+err.Error()))
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		apperrors.RespondWithError(w, r, h.logger, apperrors.NewValidationError(err.Error()))
		return
	}

	cmd := commands.DeleteNodeCommand{
		GraphID:        chi.URLParam(r, "graphID"),
		Name:           req.Name,
		Addon:          req.Addon,
		App:            req.App,
		ExtensionGroup: req.ExtensionGroup,
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		apperrors.RespondWithError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, StatusResponse{Success: true})
}

// ListNodes handles GET /graphs/{graphID}/nodes.
func (h *NodeHandler) ListNodes(w http.ResponseWriter, r *http.Request) {
	result, err := h.queryBus.Ask(r.Context(), queries.ListNodesQuery{
		GraphID: chi.URLParam(r, "graphID"),
	})
	if err != nil {
		apperrors.RespondWithError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}
