package formsync

import "strings"

// Mode is decided once per form instance: Create for new entities, Edit for
// an existing entity identified by id.
type Mode struct {
	id string
}

// Create returns the create-mode variant.
func Create() Mode {
	return Mode{}
}

// Edit returns the edit-mode variant for id. A blank id yields Create, the
// same way a route without an id parameter opens the create form.
func Edit(id string) Mode {
	return Mode{id: strings.TrimSpace(id)}
}

// FromRoute maps an optional route parameter onto a Mode.
func FromRoute(id string, ok bool) Mode {
	if !ok {
		return Create()
	}
	return Edit(id)
}

// IsNew reports whether the form creates a new entity.
func (m Mode) IsNew() bool {
	return m.id == ""
}

// ID returns the edited entity id, or "" in create mode.
func (m Mode) ID() string {
	return m.id
}

func (m Mode) String() string {
	if m.IsNew() {
		return "create"
	}
	return "edit(" + m.id + ")"
}
