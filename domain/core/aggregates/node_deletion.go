package aggregates

import "flowgraph-backend/domain/core/valueobjects"

// DeleteExtensionNode removes every extension node matching id, prunes
// all references to it from the connection set, and revalidates the
// graph. The operation is all-or-nothing: on validation failure the
// graph is restored wholesale from a pre-mutation snapshot and the
// validator's error is returned unchanged.
//
// Matching no node is a successful no-op: the graph is left untouched,
// validation is skipped entirely, and removed is false. The identity
// tuple is expected to be unique, but duplicates are removed all the
// same.
func (g *Graph) DeleteExtensionNode(id valueobjects.ExtensionIdentity, validate ValidateFunc) (removed bool, err error) {
	snapshot := g.Clone()

	if !g.removeExtensionNodes(id) {
		return false, nil
	}

	g.cascadeNodeRemoval(id.Name, id.App)
	g.pruneEmptyConnections()

	if err := validate(g); err != nil {
		*g = *snapshot
		return false, err
	}
	return true, nil
}

// removeExtensionNodes deletes all extension nodes matching id and
// reports whether any were removed.
func (g *Graph) removeExtensionNodes(id valueobjects.ExtensionIdentity) bool {
	kept := g.Nodes[:0]
	for _, n := range g.Nodes {
		if !n.MatchesIdentity(id) {
			kept = append(kept, n)
		}
	}
	removed := len(kept) != len(g.Nodes)
	g.Nodes = kept
	return removed
}

// cascadeNodeRemoval strips every reference to the removed extension
// from the connection set. A connection whose own source names the
// extension forfeits the whole connection record, unrelated destinations
// included, because a connection's source identity is fixed at creation.
// Elsewhere the extension is removed from destination lists only,
// category by category, with flows dropped once their destination list
// empties. The four categories are self-contained, so the order of the
// per-category passes does not matter; within one category filtering
// must precede the empty-flow drop.
func (g *Graph) cascadeNodeRemoval(name string, app *string) {
	if g.Connections == nil {
		return
	}

	kept := g.Connections[:0]
	for _, conn := range g.Connections {
		if conn.Loc.NamesExtension(name, app) {
			continue
		}
		kept = append(kept, conn)
	}
	g.Connections = kept

	for i := range g.Connections {
		for _, flows := range g.Connections[i].flowCategories() {
			*flows = pruneFlowDestinations(*flows, name, app)
		}
	}
}

// pruneFlowDestinations removes destinations naming the extension from
// every flow, then drops flows left with no destinations. It returns nil
// when no flow survives, so an emptied category reads as absent rather
// than present-but-empty.
func pruneFlowDestinations(flows []MessageFlow, name string, app *string) []MessageFlow {
	if flows == nil {
		return nil
	}
	var kept []MessageFlow
	for _, flow := range flows {
		var dest []Destination
		for _, d := range flow.Dest {
			if !d.Loc.NamesExtension(name, app) {
				dest = append(dest, d)
			}
		}
		if len(dest) == 0 {
			continue
		}
		flow.Dest = dest
		kept = append(kept, flow)
	}
	return kept
}

// pruneEmptyConnections drops connections with no flows left in any
// category and normalizes an emptied connection list back to absent. It
// also re-normalizes present-but-empty category containers as a final
// sweep, although the cascade already leaves them absent.
func (g *Graph) pruneEmptyConnections() {
	if g.Connections == nil {
		return
	}
	kept := g.Connections[:0]
	for i := range g.Connections {
		conn := &g.Connections[i]
		for _, flows := range conn.flowCategories() {
			if len(*flows) == 0 {
				*flows = nil
			}
		}
		if conn.hasFlows() {
			kept = append(kept, *conn)
		}
	}
	if len(kept) == 0 {
		g.Connections = nil
		return
	}
	g.Connections = kept
}
