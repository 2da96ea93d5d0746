package valueobjects

// Location identifies a participant in a message-flow graph as an
// (app, extension) pair. Both fields are optional: a nil App means the
// default, unnamed app; a nil Extension means the location does not name
// an extension.
type Location struct {
	App       *string `json:"app,omitempty"`
	Extension *string `json:"extension,omitempty"`
}

// NewLocation creates a location naming an extension within an app.
func NewLocation(extension string, app *string) Location {
	return Location{App: CloneOptStr(app), Extension: &extension}
}

// NamesExtension reports whether the location refers to the given
// extension name under the given app. A nil app only matches a nil app:
// an unset app is the default app, not a wildcard.
func (l Location) NamesExtension(name string, app *string) bool {
	return l.Extension != nil && *l.Extension == name && OptStrEqual(l.App, app)
}

// Clone returns a copy sharing no pointers with the receiver.
func (l Location) Clone() Location {
	return Location{App: CloneOptStr(l.App), Extension: CloneOptStr(l.Extension)}
}

// OptStrEqual compares two optional strings. Two nils are equal; a nil
// never equals a set value.
func OptStrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// CloneOptStr returns an independent copy of an optional string.
func CloneOptStr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
