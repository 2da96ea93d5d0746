package queries

import "errors"

// GetGraphQuery retrieves one graph entry by ID.
type GetGraphQuery struct {
	GraphID string `json:"graph_id" validate:"required,uuid"`
}

// Validate validates the query.
func (q GetGraphQuery) Validate() error {
	if q.GraphID == "" {
		return errors.New("graph ID is required")
	}
	return nil
}

// ListGraphsQuery retrieves summaries of all registered graphs.
type ListGraphsQuery struct{}

// Validate validates the query.
func (q ListGraphsQuery) Validate() error { return nil }

// ListNodesQuery retrieves the nodes of one graph.
type ListNodesQuery struct {
	GraphID string `json:"graph_id" validate:"required,uuid"`
}

// Validate validates the query.
func (q ListNodesQuery) Validate() error {
	if q.GraphID == "" {
		return errors.New("graph ID is required")
	}
	return nil
}

// GraphSummary is the list-level view of a graph entry.
type GraphSummary struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	AutoStart       bool   `json:"auto_start"`
	NodeCount       int    `json:"node_count"`
	ConnectionCount int    `json:"connection_count"`
}
