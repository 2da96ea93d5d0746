package commands

import (
	"encoding/json"
	"errors"
)

// AddNodeCommand adds an extension node to a graph. Property is the
// node's opaque configuration payload, stored as-is.
type AddNodeCommand struct {
	GraphID        string          `json:"graph_id" validate:"required,uuid"`
	Name           string          `json:"name" validate:"required,max=200"`
	Addon          string          `json:"addon" validate:"required,max=200"`
	App            *string         `json:"app,omitempty"`
	ExtensionGroup *string         `json:"extension_group,omitempty"`
	Property       json.RawMessage `json:"property,omitempty"`
}

// Validate validates the command.
func (cmd AddNodeCommand) Validate() error {
	if cmd.GraphID == "" {
		return errors.New("graph ID is required")
	}
	if cmd.Name == "" {
		return errors.New("node name is required")
	}
	if cmd.Addon == "" {
		return errors.New("addon is required")
	}
	return nil
}
