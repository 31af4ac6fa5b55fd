// Package view renders the client's screens to a terminal and drives the
// interactive shell on top of the client data store.
package view

// UIState holds client-only presentation state. It is never sent to the
// server and is lost when the client exits.
type UIState struct {
	liked    map[string]bool
	expanded string
}

// NewUIState returns UI state with nothing liked or expanded.
func NewUIState() *UIState {
	return &UIState{liked: make(map[string]bool)}
}

// ToggleLike flips the liked marker of a book and reports the new value.
func (u *UIState) ToggleLike(id string) bool {
	if u.liked[id] {
		delete(u.liked, id)
		return false
	}
	u.liked[id] = true
	return true
}

func (u *UIState) Liked(id string) bool {
	return u.liked[id]
}

// ToggleNotes expands the notes of a book, collapsing any other book's notes.
// Toggling the expanded book collapses it. It reports whether id is expanded.
func (u *UIState) ToggleNotes(id string) bool {
	if u.expanded == id {
		u.expanded = ""
		return false
	}
	u.expanded = id
	return true
}

func (u *UIState) Expanded(id string) bool {
	return id != "" && u.expanded == id
}
