package commands

import "errors"

// DeleteNodeCommand removes an extension node from a graph and cascades
// the removal through every connection that references it. App and
// ExtensionGroup are matched with nil-equals-nil semantics: an unset app
// only matches nodes with an unset app.
type DeleteNodeCommand struct {
	GraphID        string  `json:"graph_id" validate:"required,uuid"`
	Name           string  `json:"name" validate:"required"`
	Addon          string  `json:"addon" validate:"required"`
	App            *string `json:"app,omitempty"`
	ExtensionGroup *string `json:"extension_group,omitempty"`
}

// Validate validates the command.
func (cmd DeleteNodeCommand) Validate() error {
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
