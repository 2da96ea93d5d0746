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
	"flowgraph-backend/infrastructure/config"
	apperrors "flowgraph-backend/pkg/errors"
)

// AddNodeHandler handles extension-node addition commands.
type AddNodeHandler struct {
	graphs    ports.GraphStore
	validator ports.GraphValidator
	props     ports.PropertySync
	eventBus  ports.EventBus
	limits    *config.LimitsWatcher
	logger    *zap.Logger
}

// NewAddNodeHandler creates a new add node handler. limits may be nil
// when no limits file is configured.
func NewAddNodeHandler(
	graphs ports.GraphStore,
	validator ports.GraphValidator,
	props ports.PropertySync,
	eventBus ports.EventBus,
	limits *config.LimitsWatcher,
	logger *zap.Logger,
) *AddNodeHandler {
	return &AddNodeHandler{
		graphs:    graphs,
		validator: validator,
		props:     props,
		eventBus:  eventBus,
		limits:    limits,
		logger:    logger,
	}
}

// Handle executes the add node command.
func (h *AddNodeHandler) Handle(ctx context.Context, cmd commands.AddNodeCommand) error {
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

	var synced *aggregates.GraphInfo
	err = h.graphs.Mutate(ctx, graphID, func(info *aggregates.GraphInfo) error {
		if h.limits != nil {
			if max := h.limits.Current().MaxNodesPerGraph; max > 0 && len(info.Graph.Nodes) >= max {
				return apperrors.NewConflictError(fmt.Sprintf("graph already has the maximum of %d nodes", max))
			}
		}
		if err := info.Graph.AddExtensionNode(id, cmd.Property, func(g *aggregates.Graph) error {
			return h.validator.Validate(ctx, g)
		}); err != nil {
			return apperrors.NewValidationError(fmt.Sprintf("node addition rejected by graph validation: %v", err)).WithCause(err)
		}
		synced = info.Clone()
		return nil
	})
	if err != nil {
		return err
	}

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
		event := events.NewNodeAdded(graphID, cmd.Name, cmd.Addon)
		if err := h.eventBus.Publish(ctx, event); err != nil {
			h.logger.Warn("Failed to publish node added event", zap.Error(err))
		}
		if err := h.eventBus.Publish(ctx, events.NewGraphUpdated(graphID)); err != nil {
			h.logger.Warn("Failed to publish graph updated event", zap.Error(err))
		}
	}

	h.logger.Info("Node added",
		zap.String("graphID", cmd.GraphID),
		zap.String("name", cmd.Name),
		zap.String("addon", cmd.Addon),
	)
	return nil
}
