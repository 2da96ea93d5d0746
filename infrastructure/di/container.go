package di

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"

	"flowgraph-backend/application/commands"
	"flowgraph-backend/application/commands/bus"
	commandhandlers "flowgraph-backend/application/commands/handlers"
	"flowgraph-backend/application/ports"
	"flowgraph-backend/application/queries"
	querybus "flowgraph-backend/application/queries/bus"
	queryhandlers "flowgraph-backend/application/queries/handlers"
	"flowgraph-backend/domain/core/validators"
	"flowgraph-backend/domain/events"
	"flowgraph-backend/infrastructure/config"
	dynamostore "flowgraph-backend/infrastructure/persistence/dynamodb"
	filestore "flowgraph-backend/infrastructure/persistence/file"
	memorystore "flowgraph-backend/infrastructure/persistence/memory"

	memorybus "flowgraph-backend/infrastructure/messaging/memory"
)

// Container holds all application dependencies.
type Container struct {
	Config     *config.Config
	Logger     *zap.Logger
	GraphStore ports.GraphStore
	Validator  ports.GraphValidator
	Props      ports.PropertySync
	EventBus   ports.EventBus
	Limits     *config.LimitsWatcher
	CommandBus *bus.CommandBus
	QueryBus   *querybus.QueryBus
}

// InitializeContainer wires the full dependency graph by hand:
// config -> logger -> stores -> validator -> buses -> handlers.
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	logger, err := newLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	c := &Container{
		Config:    cfg,
		Logger:    logger,
		Validator: validators.NewGraphValidator(),
		EventBus:  memorybus.NewEventBus(logger),
	}

	var propertyStore *filestore.PropertyStore
	if cfg.PropertyBaseDir != "" {
		propertyStore = filestore.NewPropertyStore(cfg.PropertyBaseDir, logger)
		c.Props = propertyStore
	}

	if c.GraphStore, err = newGraphStore(ctx, cfg, propertyStore, logger); err != nil {
		return nil, err
	}

	if cfg.LimitsFile != "" {
		limits, err := config.NewLimitsWatcher(cfg.LimitsFile, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to start limits watcher: %w", err)
		}
		c.Limits = limits
	}

	if err := c.registerHandlers(); err != nil {
		return nil, err
	}
	c.subscribeAuditLog()
	return c, nil
}

// Shutdown releases background resources held by the container.
func (c *Container) Shutdown() {
	if c.Limits != nil {
		c.Limits.Stop()
	}
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Environment == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// newGraphStore selects the store backend. The in-memory store is seeded
// from on-disk property documents when a base directory is configured.
func newGraphStore(ctx context.Context, cfg *config.Config, propertyStore *filestore.PropertyStore, logger *zap.Logger) (ports.GraphStore, error) {
	switch cfg.StoreType {
	case "dynamodb":
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		return dynamostore.NewGraphStore(awsdynamodb.NewFromConfig(awsCfg), cfg.DynamoDBTable, logger), nil
	default:
		store := memorystore.NewGraphStore(logger)
		if propertyStore != nil {
			infos, err := propertyStore.LoadAll(ctx)
			if err != nil {
				return nil, fmt.Errorf("failed to load graphs from disk: %w", err)
			}
			for _, info := range infos {
				if err := store.Put(ctx, info); err != nil {
					return nil, err
				}
			}
			logger.Info("Loaded graphs from property files", zap.Int("count", len(infos)))
		}
		return store, nil
	}
}

func (c *Container) registerHandlers() error {
	c.CommandBus = bus.NewCommandBus()
	c.QueryBus = querybus.NewQueryBus()
	logMW := bus.LoggingMiddleware(c.Logger)

	deleteNode := commandhandlers.NewDeleteNodeHandler(c.GraphStore, c.Validator, c.Props, c.EventBus, c.Logger)
	if err := c.CommandBus.Register(commands.DeleteNodeCommand{}, logMW(bus.CommandHandlerFunc(
		func(ctx context.Context, cmd bus.Command) error {
			return deleteNode.Handle(ctx, cmd.(commands.DeleteNodeCommand))
		},
	))); err != nil {
		return err
	}

	addNode := commandhandlers.NewAddNodeHandler(c.GraphStore, c.Validator, c.Props, c.EventBus, c.Limits, c.Logger)
	if err := c.CommandBus.Register(commands.AddNodeCommand{}, logMW(bus.CommandHandlerFunc(
		func(ctx context.Context, cmd bus.Command) error {
			return addNode.Handle(ctx, cmd.(commands.AddNodeCommand))
		},
	))); err != nil {
		return err
	}

	getGraph := queryhandlers.NewGetGraphHandler(c.GraphStore, c.Logger)
	if err := c.QueryBus.Register(queries.GetGraphQuery{}, querybus.QueryHandlerFunc(
		func(ctx context.Context, q querybus.Query) (interface{}, error) {
			return getGraph.Handle(ctx, q.(queries.GetGraphQuery))
		},
	)); err != nil {
		return err
	}

	listGraphs := queryhandlers.NewListGraphsHandler(c.GraphStore, c.Logger)
	if err := c.QueryBus.Register(queries.ListGraphsQuery{}, querybus.QueryHandlerFunc(
		func(ctx context.Context, q querybus.Query) (interface{}, error) {
			return listGraphs.Handle(ctx, q.(queries.ListGraphsQuery))
		},
	)); err != nil {
		return err
	}

	listNodes := queryhandlers.NewListNodesHandler(c.GraphStore, c.Logger)
	return c.QueryBus.Register(queries.ListNodesQuery{}, querybus.QueryHandlerFunc(
		func(ctx context.Context, q querybus.Query) (interface{}, error) {
			return listNodes.Handle(ctx, q.(queries.ListNodesQuery))
		},
	))
}

// subscribeAuditLog records node mutations on the event bus.
func (c *Container) subscribeAuditLog() {
	audit := func(ctx context.Context, event events.DomainEvent) {
		c.Logger.Info("Graph mutation",
			zap.String("eventType", event.GetEventType()),
			zap.String("graphID", event.GetAggregateID()),
		)
	}
	c.EventBus.Subscribe("graph.node_added", audit)
	c.EventBus.Subscribe("graph.node_deleted", audit)
}
