package dto

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/emzola/shelflog/data"
)

// CreateBookRequestBody defines the request body for adding a book.
type CreateBookRequestBody struct {
	Title    string  `json:"title"`
	Author   string  `json:"author"`
	Category *string `json:"category,omitempty"`
	Status   *string `json:"status,omitempty"`
	Notes    Notes   `json:"notes,omitzero"`
}

// UpdateBookRequestBody defines the request body for editing a book. The fields are set
// to a pointer type to allow partial updates based on whether the value is set to nil.
type UpdateBookRequestBody struct {
	Title    *string `json:"title,omitempty"`
	Author   *string `json:"author,omitempty"`
	Category *string `json:"category,omitempty"`
	Status   *string `json:"status,omitempty"`
	Notes    Notes   `json:"notes,omitzero"`
}

// NoteInput is a single note as submitted by a client.
type NoteInput struct {
	ID        string     `json:"id,omitempty"`
	Content   string     `json:"content"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

// Notes is the notes member of a request body. Any JSON value is accepted while
// decoding, null included; Present records that the member was sent and a value
// that is not an array of notes leaves Valid false, so the service can reject
// it with a precise message instead of a decode error. Array elements may be
// note objects or bare strings.
type Notes struct {
	Present bool
	Valid   bool
	Items   []NoteInput
}

// IsZero reports whether the member was absent, so it is omitted when encoding.
func (n Notes) IsZero() bool {
	return !n.Present
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *Notes) UnmarshalJSON(b []byte) error {
	n.Present = true
	n.Valid = false
	n.Items = nil
	b = bytes.TrimSpace(b)
	if len(b) == 0 || b[0] != '[' {
		return nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil
	}
	items := make([]NoteInput, 0, len(raw))
	for _, elem := range raw {
		elem = bytes.TrimSpace(elem)
		switch {
		case len(elem) > 0 && elem[0] == '"':
			var content string
			if err := json.Unmarshal(elem, &content); err != nil {
				return nil
			}
			items = append(items, NoteInput{Content: content})
		case len(elem) > 0 && elem[0] == '{':
			var note NoteInput
			if err := json.Unmarshal(elem, &note); err != nil {
				return nil
			}
			items = append(items, note)
		default:
			return nil
		}
	}
	n.Valid = true
	n.Items = items
	return nil
}

// MarshalJSON implements json.Marshaler.
func (n Notes) MarshalJSON() ([]byte, error) {
	if n.Items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(n.Items)
}

// Notes converts the submitted items into domain notes.
func (n *Notes) Notes() []data.Note {
	notes := make([]data.Note, 0, len(n.Items))
	for _, item := range n.Items {
		note := data.Note{ID: item.ID, Content: item.Content}
		if item.CreatedAt != nil {
			note.CreatedAt = *item.CreatedAt
		}
		notes = append(notes, note)
	}
	return notes
}

// NotesOf builds a notes member for a request body from domain notes.
func NotesOf(notes []data.Note) Notes {
	n := Notes{Present: true, Valid: true, Items: make([]NoteInput, 0, len(notes))}
	for _, note := range notes {
		item := NoteInput{ID: note.ID, Content: note.Content}
		if !note.CreatedAt.IsZero() {
			createdAt := note.CreatedAt
			item.CreatedAt = &createdAt
		}
		n.Items = append(n.Items, item)
	}
	return n
}

// ListBooksResponse is the envelope returned by both listing endpoints.
type ListBooksResponse struct {
	Count int         `json:"count"`
	Books []data.Book `json:"books"`
}

// BookResponse is the envelope returned after adding or editing a book.
type BookResponse struct {
	Message string     `json:"message"`
	Book    *data.Book `json:"book"`
}

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Message string          `json:"message"`
	Error   json.RawMessage `json:"error,omitempty"`
}
