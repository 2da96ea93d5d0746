package aggregates

import (
	"encoding/json"

	"flowgraph-backend/domain/core/entities"
	"flowgraph-backend/domain/core/valueobjects"
)

// Graph is the aggregate root for a message-flow graph. It owns an
// ordered node list (order is display order, not semantically required)
// and an optional ordered connection list. A nil Connections slice means
// the graph has no connections; an empty-but-present list is not a valid
// state and mutation passes normalize it away.
type Graph struct {
	Nodes       []entities.GraphNode `json:"nodes"`
	Connections []Connection         `json:"connections,omitempty"`
}

// ValidateFunc is the structural-validation capability required by the
// mutating graph operations. It may normalize the graph in place on
// success; an error means the candidate graph was rejected.
type ValidateFunc func(*Graph) error

// Clone returns a deep copy sharing no mutable sub-structures with the
// receiver, so a retained clone stays valid across later mutations.
func (g *Graph) Clone() *Graph {
	clone := &Graph{}
	if g.Nodes != nil {
		clone.Nodes = make([]entities.GraphNode, len(g.Nodes))
		for i, n := range g.Nodes {
			clone.Nodes[i] = n.Clone()
		}
	}
	if g.Connections != nil {
		clone.Connections = make([]Connection, len(g.Connections))
		for i, c := range g.Connections {
			clone.Connections[i] = c.Clone()
		}
	}
	return clone
}

// HasExtensionNode reports whether an extension node with the given name
// exists under the given app.
func (g *Graph) HasExtensionNode(name string, app *string) bool {
	for _, n := range g.Nodes {
		if n.IsExtension() && n.Name == name && valueobjects.OptStrEqual(n.App, app) {
			return true
		}
	}
	return false
}

// AddExtensionNode appends an extension node with the given identity and
// property payload, then revalidates the graph. On rejection (including
// a duplicate identity, which the validator reports) the graph is
// restored to its pre-call state and the validator's error is returned.
func (g *Graph) AddExtensionNode(id valueobjects.ExtensionIdentity, property json.RawMessage, validate ValidateFunc) error {
	snapshot := g.Clone()

	node := entities.NewExtensionNode(id)
	if property != nil {
		node.Property = append(json.RawMessage(nil), property...)
	}
	g.Nodes = append(g.Nodes, node)

	if err := validate(g); err != nil {
		*g = *snapshot
		return err
	}
	return nil
}
