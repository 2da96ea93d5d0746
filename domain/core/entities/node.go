package entities

import (
	"encoding/json"

	"flowgraph-backend/domain/core/valueobjects"
)

// NodeType tags the variant of a graph node.
type NodeType string

const (
	NodeTypeExtension NodeType = "extension"
	NodeTypeSubgraph  NodeType = "subgraph"
)

// GraphNode is a participant in a message-flow graph. Only the extension
// variant carries the full identity tuple; Addon is optional at the type
// level but required for extension nodes, which the structural validator
// enforces.
type GraphNode struct {
	Type           NodeType        `json:"type"`
	Name           string          `json:"name"`
	Addon          *string         `json:"addon,omitempty"`
	ExtensionGroup *string         `json:"extension_group,omitempty"`
	App            *string         `json:"app,omitempty"`
	Property       json.RawMessage `json:"property,omitempty"`
}

// NewExtensionNode creates an extension node carrying the given identity.
func NewExtensionNode(id valueobjects.ExtensionIdentity) GraphNode {
	addon := id.Addon
	return GraphNode{
		Type:           NodeTypeExtension,
		Name:           id.Name,
		Addon:          &addon,
		ExtensionGroup: valueobjects.CloneOptStr(id.ExtensionGroup),
		App:            valueobjects.CloneOptStr(id.App),
	}
}

// IsExtension reports whether the node is of the extension variant.
func (n GraphNode) IsExtension() bool {
	return n.Type == NodeTypeExtension
}

// MatchesIdentity reports whether this node is the extension identified
// by id. All four identity fields must match: addon is compared against a
// set value, app and extension_group with nil-equals-nil semantics.
func (n GraphNode) MatchesIdentity(id valueobjects.ExtensionIdentity) bool {
	return n.Type == NodeTypeExtension &&
		n.Name == id.Name &&
		n.Addon != nil && *n.Addon == id.Addon &&
		valueobjects.OptStrEqual(n.App, id.App) &&
		valueobjects.OptStrEqual(n.ExtensionGroup, id.ExtensionGroup)
}

// Clone returns a copy sharing no mutable state with the receiver.
func (n GraphNode) Clone() GraphNode {
	clone := n
	clone.Addon = valueobjects.CloneOptStr(n.Addon)
	clone.ExtensionGroup = valueobjects.CloneOptStr(n.ExtensionGroup)
	clone.App = valueobjects.CloneOptStr(n.App)
	if n.Property != nil {
		clone.Property = append(json.RawMessage(nil), n.Property...)
	}
	return clone
}
