package valueobjects

import "errors"

// ExtensionIdentity is the full identity of an extension node:
// (name, addon, app, extension_group). Name must be unique among
// extension nodes within the same (app, extension_group) scope. App and
// ExtensionGroup are optional and compared with nil-equals-nil semantics.
type ExtensionIdentity struct {
	Name           string
	Addon          string
	App            *string
	ExtensionGroup *string
}

// NewExtensionIdentity validates and constructs an extension identity.
func NewExtensionIdentity(name, addon string, app, extensionGroup *string) (ExtensionIdentity, error) {
	if name == "" {
		return ExtensionIdentity{}, errors.New("extension name is required")
	}
	if addon == "" {
		return ExtensionIdentity{}, errors.New("addon is required")
	}
	return ExtensionIdentity{
		Name:           name,
		Addon:          addon,
		App:            CloneOptStr(app),
		ExtensionGroup: CloneOptStr(extensionGroup),
	}, nil
}
