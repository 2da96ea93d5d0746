package aggregates

import "flowgraph-backend/domain/core/valueobjects"

// Destination names the extension that receives a message flow.
type Destination struct {
	Loc valueobjects.Location `json:"loc"`
}

// Clone returns a copy sharing no pointers with the receiver.
func (d Destination) Clone() Destination {
	return Destination{Loc: d.Loc.Clone()}
}

// MessageFlow is a named group of destinations for one message category.
// Dest is never empty on a well-formed graph.
type MessageFlow struct {
	Name string        `json:"name"`
	Dest []Destination `json:"dest"`
}

// Clone returns a deep copy of the flow.
func (f MessageFlow) Clone() MessageFlow {
	clone := MessageFlow{Name: f.Name}
	if f.Dest != nil {
		clone.Dest = make([]Destination, len(f.Dest))
		for i, d := range f.Dest {
			clone.Dest[i] = d.Clone()
		}
	}
	return clone
}

// Connection routes messages from a source location to per-category
// flows. A nil category slice means the category is absent; a present
// slice is never empty on a well-formed graph.
type Connection struct {
	Loc        valueobjects.Location `json:"loc"`
	Cmd        []MessageFlow         `json:"cmd,omitempty"`
	Data       []MessageFlow         `json:"data,omitempty"`
	AudioFrame []MessageFlow         `json:"audio_frame,omitempty"`
	VideoFrame []MessageFlow         `json:"video_frame,omitempty"`
}

// flowCategories returns the four category containers so mutation passes
// can treat them uniformly instead of hand-duplicating per category.
func (c *Connection) flowCategories() []*[]MessageFlow {
	return []*[]MessageFlow{&c.Cmd, &c.Data, &c.AudioFrame, &c.VideoFrame}
}

// hasFlows reports whether any category still carries at least one flow.
func (c *Connection) hasFlows() bool {
	return len(c.Cmd) > 0 || len(c.Data) > 0 || len(c.AudioFrame) > 0 || len(c.VideoFrame) > 0
}

// Clone returns a deep copy of the connection.
func (c Connection) Clone() Connection {
	clone := Connection{Loc: c.Loc.Clone()}
	clone.Cmd = cloneFlows(c.Cmd)
	clone.Data = cloneFlows(c.Data)
	clone.AudioFrame = cloneFlows(c.AudioFrame)
	clone.VideoFrame = cloneFlows(c.VideoFrame)
	return clone
}

func cloneFlows(flows []MessageFlow) []MessageFlow {
	if flows == nil {
		return nil
	}
	clone := make([]MessageFlow, len(flows))
	for i, f := range flows {
		clone[i] = f.Clone()
	}
	return clone
}
