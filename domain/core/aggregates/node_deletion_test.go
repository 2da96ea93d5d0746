package aggregates

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowgraph-backend/domain/core/entities"
	"flowgraph-backend/domain/core/valueobjects"
)

func strp(s string) *string { return &s }

func identity(name, addon string, app, group *string) valueobjects.ExtensionIdentity {
	return valueobjects.ExtensionIdentity{Name: name, Addon: addon, App: app, ExtensionGroup: group}
}

func extNode(name, addon string, app, group *string) entities.GraphNode {
	return entities.NewExtensionNode(identity(name, addon, app, group))
}

func flow(name string, destNames ...string) MessageFlow {
	f := MessageFlow{Name: name}
	for _, d := range destNames {
		f.Dest = append(f.Dest, Destination{Loc: valueobjects.NewLocation(d, nil)})
	}
	return f
}

func passValidation(*Graph) error { return nil }

func TestDeleteExtensionNode_NoMatchIsNoOp(t *testing.T) {
	g := &Graph{
		Nodes: []entities.GraphNode{extNode("a", "addon1", nil, nil)},
		Connections: []Connection{{
			Loc: valueobjects.NewLocation("a", nil),
			Cmd: []MessageFlow{flow("hello", "a")},
		}},
	}
	before := g.Clone()

	validatorCalled := false
	removed, err := g.DeleteExtensionNode(identity("missing", "addon1", nil, nil), func(*Graph) error {
		validatorCalled = true
		return errors.New("must not be reached")
	})

	require.NoError(t, err)
	assert.False(t, removed)
	assert.False(t, validatorCalled, "no-op deletion must skip validation")
	assert.Equal(t, before, g)
}

func TestDeleteExtensionNode_NoMatchOnDifferentAddon(t *testing.T) {
	g := &Graph{Nodes: []entities.GraphNode{extNode("a", "addon1", nil, nil)}}

	removed, err := g.DeleteExtensionNode(identity("a", "other_addon", nil, nil), passValidation)

	require.NoError(t, err)
	assert.False(t, removed)
	assert.Len(t, g.Nodes, 1)
}

func TestDeleteExtensionNode_CascadeScenario(t *testing.T) {
	// a -> b carries a cmd flow; b -> a carries a data flow. Deleting a
	// must drop the a -> b connection whole (source match), strip a from
	// the b -> a data flow, drop the emptied flow, then drop the emptied
	// b -> a connection, leaving connections absent.
	g := &Graph{
		Nodes: []entities.GraphNode{
			extNode("a", "addon1", nil, nil),
			extNode("b", "addon2", nil, nil),
		},
		Connections: []Connection{
			{
				Loc: valueobjects.NewLocation("a", nil),
				Cmd: []MessageFlow{flow("ping", "b")},
			},
			{
				Loc:  valueobjects.NewLocation("b", nil),
				Data: []MessageFlow{flow("frame", "a")},
			},
		},
	}

	removed, err := g.DeleteExtensionNode(identity("a", "addon1", nil, nil), passValidation)

	require.NoError(t, err)
	assert.True(t, removed)
	require.Len(t, g.Nodes, 1)
	assert.Equal(t, "b", g.Nodes[0].Name)
	assert.Nil(t, g.Connections, "connection list must be absent, not empty")
}

func TestDeleteExtensionNode_CascadeCoversAllCategories(t *testing.T) {
	g := &Graph{
		Nodes: []entities.GraphNode{
			extNode("a", "addon1", nil, nil),
			extNode("b", "addon2", nil, nil),
			extNode("c", "addon3", nil, nil),
		},
		Connections: []Connection{{
			Loc:        valueobjects.NewLocation("b", nil),
			Cmd:        []MessageFlow{flow("f1", "a", "c")},
			Data:       []MessageFlow{flow("f2", "a")},
			AudioFrame: []MessageFlow{flow("f3", "c", "a")},
			VideoFrame: []MessageFlow{flow("f4", "a")},
		}},
	}

	removed, err := g.DeleteExtensionNode(identity("a", "addon1", nil, nil), passValidation)

	require.NoError(t, err)
	assert.True(t, removed)
	require.Len(t, g.Connections, 1)
	conn := g.Connections[0]

	require.Len(t, conn.Cmd, 1)
	require.Len(t, conn.Cmd[0].Dest, 1)
	assert.Equal(t, "c", *conn.Cmd[0].Dest[0].Loc.Extension)

	assert.Nil(t, conn.Data, "emptied data category must be absent")
	assert.Nil(t, conn.VideoFrame, "emptied video_frame category must be absent")

	require.Len(t, conn.AudioFrame, 1)
	require.Len(t, conn.AudioFrame[0].Dest, 1)
	assert.Equal(t, "c", *conn.AudioFrame[0].Dest[0].Loc.Extension)

	// Nothing anywhere references the deleted node.
	for _, c := range g.Connections {
		assert.False(t, c.Loc.NamesExtension("a", nil))
		for _, flows := range [][]MessageFlow{c.Cmd, c.Data, c.AudioFrame, c.VideoFrame} {
			for _, f := range flows {
				for _, d := range f.Dest {
					assert.False(t, d.Loc.NamesExtension("a", nil))
				}
			}
		}
	}
}

func TestDeleteExtensionNode_SourceMatchDropsWholeConnection(t *testing.T) {
	// The a -> b connection still has an unrelated destination, but a
	// connection whose source matches is forfeited whole.
	g := &Graph{
		Nodes: []entities.GraphNode{
			extNode("a", "addon1", nil, nil),
			extNode("b", "addon2", nil, nil),
		},
		Connections: []Connection{{
			Loc: valueobjects.NewLocation("a", nil),
			Cmd: []MessageFlow{flow("ping", "b")},
		}},
	}

	removed, err := g.DeleteExtensionNode(identity("a", "addon1", nil, nil), passValidation)

	require.NoError(t, err)
	assert.True(t, removed)
	assert.Nil(t, g.Connections)
}

func TestDeleteExtensionNode_NilAppOnlyMatchesNilApp(t *testing.T) {
	appX := strp("app-x")
	g := &Graph{
		Nodes: []entities.GraphNode{
			extNode("a", "addon1", nil, nil),
			extNode("a", "addon1", appX, nil),
			extNode("b", "addon2", nil, nil),
		},
		Connections: []Connection{{
			Loc: valueobjects.NewLocation("b", nil),
			Cmd: []MessageFlow{{
				Name: "ping",
				Dest: []Destination{
					{Loc: valueobjects.NewLocation("a", nil)},
					{Loc: valueobjects.NewLocation("a", appX)},
				},
			}},
		}},
	}

	// Deleting the nil-app node must leave the app-x node and the app-x
	// destination untouched.
	removed, err := g.DeleteExtensionNode(identity("a", "addon1", nil, nil), passValidation)

	require.NoError(t, err)
	assert.True(t, removed)
	require.Len(t, g.Nodes, 2)
	require.Len(t, g.Connections, 1)
	require.Len(t, g.Connections[0].Cmd, 1)
	dest := g.Connections[0].Cmd[0].Dest
	require.Len(t, dest, 1)
	require.NotNil(t, dest[0].Loc.App)
	assert.Equal(t, "app-x", *dest[0].Loc.App)
}

func TestDeleteExtensionNode_SetAppOnlyMatchesSameApp(t *testing.T) {
	appX := strp("app-x")
	g := &Graph{
		Nodes: []entities.GraphNode{
			extNode("a", "addon1", nil, nil),
			extNode("a", "addon1", appX, nil),
			extNode("b", "addon2", nil, nil),
		},
		Connections: []Connection{{
			Loc: valueobjects.NewLocation("b", nil),
			Cmd: []MessageFlow{{
				Name: "ping",
				Dest: []Destination{
					{Loc: valueobjects.NewLocation("a", nil)},
					{Loc: valueobjects.NewLocation("a", appX)},
				},
			}},
		}},
	}

	removed, err := g.DeleteExtensionNode(identity("a", "addon1", appX, nil), passValidation)

	require.NoError(t, err)
	assert.True(t, removed)
	require.Len(t, g.Nodes, 2)
	dest := g.Connections[0].Cmd[0].Dest
	require.Len(t, dest, 1)
	assert.Nil(t, dest[0].Loc.App)
}

func TestDeleteExtensionNode_RemovesAllDuplicates(t *testing.T) {
	g := &Graph{
		Nodes: []entities.GraphNode{
			extNode("a", "addon1", nil, nil),
			extNode("b", "addon2", nil, nil),
			extNode("a", "addon1", nil, nil),
		},
	}

	removed, err := g.DeleteExtensionNode(identity("a", "addon1", nil, nil), passValidation)

	require.NoError(t, err)
	assert.True(t, removed)
	require.Len(t, g.Nodes, 1)
	assert.Equal(t, "b", g.Nodes[0].Name)
}

func TestDeleteExtensionNode_ValidationFailureRollsBack(t *testing.T) {
	g := &Graph{
		Nodes: []entities.GraphNode{
			extNode("a", "addon1", nil, nil),
			extNode("b", "addon2", nil, nil),
		},
		Connections: []Connection{{
			Loc:  valueobjects.NewLocation("b", nil),
			Data: []MessageFlow{flow("frame", "a")},
		}},
	}
	before := g.Clone()

	rejection := errors.New("graph no longer valid")
	removed, err := g.DeleteExtensionNode(identity("a", "addon1", nil, nil), func(*Graph) error {
		return rejection
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, rejection)
	assert.False(t, removed)
	assert.Equal(t, before, g, "graph must be restored field-for-field")
}

func TestDeleteExtensionNode_SecondDeleteIsNoOp(t *testing.T) {
	g := &Graph{
		Nodes: []entities.GraphNode{extNode("a", "addon1", nil, nil)},
	}

	removed, err := g.DeleteExtensionNode(identity("a", "addon1", nil, nil), passValidation)
	require.NoError(t, err)
	assert.True(t, removed)

	after := g.Clone()
	removed, err = g.DeleteExtensionNode(identity("a", "addon1", nil, nil), passValidation)
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Equal(t, after, g)
}

func TestDeleteExtensionNode_SubgraphNodeNotMatched(t *testing.T) {
	addon := strp("addon1")
	g := &Graph{
		Nodes: []entities.GraphNode{
			{Type: entities.NodeTypeSubgraph, Name: "a", Addon: addon},
			extNode("a", "addon1", nil, nil),
		},
	}

	removed, err := g.DeleteExtensionNode(identity("a", "addon1", nil, nil), passValidation)

	require.NoError(t, err)
	assert.True(t, removed)
	require.Len(t, g.Nodes, 1)
	assert.Equal(t, entities.NodeTypeSubgraph, g.Nodes[0].Type)
}

func TestDeleteExtensionNode_KeepsFlowsForOtherNodes(t *testing.T) {
	g := &Graph{
		Nodes: []entities.GraphNode{
			extNode("a", "addon1", nil, nil),
			extNode("b", "addon2", nil, nil),
			extNode("c", "addon3", nil, nil),
		},
		Connections: []Connection{{
			Loc: valueobjects.NewLocation("b", nil),
			Cmd: []MessageFlow{
				flow("to-a", "a"),
				flow("to-c", "c"),
			},
		}},
	}

	removed, err := g.DeleteExtensionNode(identity("a", "addon1", nil, nil), passValidation)

	require.NoError(t, err)
	assert.True(t, removed)
	require.Len(t, g.Connections, 1)
	require.Len(t, g.Connections[0].Cmd, 1)
	assert.Equal(t, "to-c", g.Connections[0].Cmd[0].Name)
}

func TestClone_IsDeep(t *testing.T) {
	g := &Graph{
		Nodes: []entities.GraphNode{extNode("a", "addon1", strp("app"), strp("group"))},
		Connections: []Connection{{
			Loc: valueobjects.NewLocation("a", nil),
			Cmd: []MessageFlow{flow("ping", "a")},
		}},
	}

	clone := g.Clone()
	require.Equal(t, g, clone)

	// Mutating the clone must not leak into the original.
	clone.Nodes[0].Name = "changed"
	*clone.Connections[0].Cmd[0].Dest[0].Loc.Extension = "changed"

	assert.Equal(t, "a", g.Nodes[0].Name)
	assert.Equal(t, "a", *g.Connections[0].Cmd[0].Dest[0].Loc.Extension)
}
