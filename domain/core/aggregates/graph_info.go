package aggregates

import "github.com/google/uuid"

// GraphInfo wraps a graph with its designer-level metadata. BaseDir is
// the on-disk location of the app the graph belongs to; it anchors the
// secondary property-file persistence.
type GraphInfo struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	AutoStart bool      `json:"auto_start"`
	BaseDir   string    `json:"base_dir,omitempty"`
	Graph     *Graph    `json:"graph"`
}

// NewGraphInfo creates a registered graph entry with a fresh ID.
func NewGraphInfo(name string, graph *Graph) *GraphInfo {
	if graph == nil {
		graph = &Graph{}
	}
	return &GraphInfo{
		ID:    uuid.New(),
		Name:  name,
		Graph: graph,
	}
}

// Clone returns a deep copy of the entry.
func (gi *GraphInfo) Clone() *GraphInfo {
	clone := *gi
	clone.Graph = gi.Graph.Clone()
	return &clone
}
