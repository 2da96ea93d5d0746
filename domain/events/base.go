package events

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent is the base interface for all domain events. Events
// represent something that has already happened.
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
}

// BaseEvent provides common event fields.
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }

// NodeAdded is raised when an extension node is added to a graph.
type NodeAdded struct {
	BaseEvent
	GraphID  string `json:"graph_id"`
	NodeName string `json:"node_name"`
	Addon    string `json:"addon"`
}

// NewNodeAdded creates a NodeAdded event.
func NewNodeAdded(graphID uuid.UUID, nodeName, addon string) NodeAdded {
	return NodeAdded{
		BaseEvent: BaseEvent{
			AggregateID: graphID.String(),
			EventType:   "graph.node_added",
			Timestamp:   time.Now(),
		},
		GraphID:  graphID.String(),
		NodeName: nodeName,
		Addon:    addon,
	}
}

// NodeDeleted is raised when an extension node and its connection
// references have been removed from a graph.
type NodeDeleted struct {
	BaseEvent
	GraphID  string `json:"graph_id"`
	NodeName string `json:"node_name"`
	Addon    string `json:"addon"`
}

// NewNodeDeleted creates a NodeDeleted event.
func NewNodeDeleted(graphID uuid.UUID, nodeName, addon string) NodeDeleted {
	return NodeDeleted{
		BaseEvent: BaseEvent{
			AggregateID: graphID.String(),
			EventType:   "graph.node_deleted",
			Timestamp:   time.Now(),
		},
		GraphID:  graphID.String(),
		NodeName: nodeName,
		Addon:    addon,
	}
}

// GraphUpdated is raised after any committed mutation of a graph,
// alongside the mutation-specific event, for subscribers that track
// graph state rather than individual operations.
type GraphUpdated struct {
	BaseEvent
	GraphID string `json:"graph_id"`
}

// NewGraphUpdated creates a GraphUpdated event.
func NewGraphUpdated(graphID uuid.UUID) GraphUpdated {
	return GraphUpdated{
		BaseEvent: BaseEvent{
			AggregateID: graphID.String(),
			EventType:   "graph.updated",
			Timestamp:   time.Now(),
		},
		GraphID: graphID.String(),
	}
}
