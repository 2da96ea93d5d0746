package validators

import (
	"context"
	"fmt"

	"flowgraph-backend/domain/core/aggregates"
)

// GraphValidator checks the structural invariants of a message-flow
// graph and normalizes it in place on success. It is the commit/rollback
// trigger for the transactional graph mutations: a returned error means
// the candidate graph was rejected and must not become authoritative.
type GraphValidator struct{}

// NewGraphValidator creates a structural graph validator.
func NewGraphValidator() *GraphValidator {
	return &GraphValidator{}
}

// Validate runs all structural checks and, when they pass, normalizes
// empty containers to absent.
func (v *GraphValidator) Validate(ctx context.Context, g *aggregates.Graph) error {
	if err := v.checkNodes(g); err != nil {
		return err
	}
	if err := v.checkConnections(g); err != nil {
		return err
	}
	v.normalize(g)
	return nil
}

// checkNodes enforces that extension nodes carry an addon and that the
// extension name is unique within its (app, extension_group) scope.
func (v *GraphValidator) checkNodes(g *aggregates.Graph) error {
	seen := make(map[string]struct{}, len(g.Nodes))
	for _, n := range g.Nodes {
		if !n.IsExtension() {
			continue
		}
		if n.Name == "" {
			return fmt.Errorf("extension node with empty name")
		}
		if n.Addon == nil || *n.Addon == "" {
			return fmt.Errorf("extension node %q has no addon", n.Name)
		}
		key := scopeKey(n.Name, n.App, n.ExtensionGroup)
		if _, dup := seen[key]; dup {
			return fmt.Errorf("duplicate extension node %q in the same app and extension group", n.Name)
		}
		seen[key] = struct{}{}
	}
	return nil
}

// checkConnections enforces referential integrity: every connection
// source and every destination must name an existing extension node, and
// flows must carry at least one destination.
func (v *GraphValidator) checkConnections(g *aggregates.Graph) error {
	for _, conn := range g.Connections {
		if conn.Loc.Extension == nil {
			return fmt.Errorf("connection with no source extension")
		}
		if !g.HasExtensionNode(*conn.Loc.Extension, conn.Loc.App) {
			return fmt.Errorf("connection source %q does not match any extension node", *conn.Loc.Extension)
		}
		for category, flows := range map[string][]aggregates.MessageFlow{
			"cmd":         conn.Cmd,
			"data":        conn.Data,
			"audio_frame": conn.AudioFrame,
			"video_frame": conn.VideoFrame,
		} {
			for _, flow := range flows {
				if len(flow.Dest) == 0 {
					return fmt.Errorf("%s flow %q of connection %q has no destinations", category, flow.Name, *conn.Loc.Extension)
				}
				for _, dest := range flow.Dest {
					if dest.Loc.Extension == nil {
						return fmt.Errorf("%s flow %q of connection %q has a destination with no extension", category, flow.Name, *conn.Loc.Extension)
					}
					if !g.HasExtensionNode(*dest.Loc.Extension, dest.Loc.App) {
						return fmt.Errorf("destination %q of %s flow %q does not match any extension node", *dest.Loc.Extension, category, flow.Name)
					}
				}
			}
		}
	}
	return nil
}

// normalize collapses empty-but-present containers to absent so "no
// connections" has exactly one representation.
func (v *GraphValidator) normalize(g *aggregates.Graph) {
	if g.Connections != nil && len(g.Connections) == 0 {
		g.Connections = nil
	}
}

func scopeKey(name string, app, group *string) string {
	const unset = "\x00"
	key := name + "\x1f"
	if app != nil {
		key += *app
	} else {
		key += unset
	}
	key += "\x1f"
	if group != nil {
		key += *group
	} else {
		key += unset
	}
	return key
}
