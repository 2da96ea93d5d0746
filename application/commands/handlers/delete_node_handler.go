package handlers

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"flowgraph-backend/application/commands"
	"flowgraph-backend/application/ports"
	"flowgraph-backend/domain/core/aggregates"
	"flowgraph-backend/domain/core/valueobjects"
	"flowgraph-backend/domain/events"
	apperrors "flowgraph-backend/pkg/errors"
)

// DeleteNodeHandler handles extension-node deletion commands. It holds
// the graph's writer lock for the whole remove/cascade/validate sequence
// and only invokes the property-file sync after the in-memory mutation
// has committed.
type DeleteNodeHandler struct {
	graphs    ports.GraphStore
	validator ports.GraphValidator
	props     ports.PropertySync
	eventBus  ports.EventBus
	logger    *zap.Logger
}

// NewDeleteNodeHandler creates a new delete node handler.
func NewDeleteNodeHandler(
	graphs ports.GraphStore,
	validator ports.GraphValidator,
	props ports.PropertySync,
	eventBus ports.EventBus,
	logger *zap.Logger,
) *DeleteNodeHandler {
	return &DeleteNodeHandler{
		graphs:    graphs,
		validator: validator,
		props:     props,
		eventBus:  eventBus,
		logger:    logger,
	}
}

// Handle executes the delete node command.
func (h *DeleteNodeHandler) Handle(ctx context.Context, cmd commands.DeleteNodeCommand) error {
	if err := cmd.Validate(); err != nil {
		return apperrors.NewValidationError(err.Error())
	}

	graphID, err := uuid.Parse(cmd.GraphID)
	if err != nil {
		return apperrors.NewValidationError(fmt.Sprintf("invalid graph ID: %v", err))
	}

	id, err := valueobjects.NewExtensionIdentity(cmd.Name, cmd.Addon, cmd.App, cmd.ExtensionGroup)
	if err != nil {
		return apperrors.NewValidationError(err.Error())
	}

	var removed bool
	var synced *aggregates.GraphInfo
	err = h.graphs.Mutate(ctx, graphID, func(info *aggregates.GraphInfo) error {
		var err error
		removed, err = info.Graph.DeleteExtensionNode(id, func(g *aggregates.Graph) error {
			return h.validator.Validate(ctx, g)
		})
		if err != nil {
			// The aggregate already restored the pre-mutation state. The
			// validator's detail goes into the message so the API response
			// says what the rejection was about.
			return apperrors.NewValidationError(fmt.Sprintf("node deletion rejected by graph validation: %v", err)).WithCause(err)
		}
		if removed {
			synced = info.Clone()
		}
		return nil
	})
	if err != nil {
		return err
	}

	if !removed {
		h.logger.Info("No matching node to delete",
			zap.String("graphID", cmd.GraphID),
			zap.String("name", cmd.Name),
		)
		return nil
	}

	// Secondary persistence runs outside the graph lock; a failure here
	// leaves the in-memory graph committed and is reported as a distinct
	// error.
	if h.props != nil {
		if err := h.props.SyncGraph(ctx, synced); err != nil {
			h.logger.Error("Failed to sync graph property file",
				zap.String("graphID", cmd.GraphID),
				zap.Error(err),
			)
			return apperrors.NewInternalError("failed to update property file").WithCause(err)
		}
	}

	if h.eventBus != nil {
		event := events.NewNodeDeleted(graphID, cmd.Name, cmd.Addon)
		if err := h.eventBus.Publish(ctx, event); err != nil {
			h.logger.Warn("Failed to publish node deleted event", zap.Error(err))
		}
		if err := h.eventBus.Publish(ctx, events.NewGraphUpdated(graphID)); err != nil {
			h.logger.Warn("Failed to publish graph updated event", zap.Error(err))
		}
	}

	h.logger.Info("Node deleted",
		zap.String("graphID", cmd.GraphID),
		zap.String("name", cmd.Name),
		zap.String("addon", cmd.Addon),
	)
	return nil
}
