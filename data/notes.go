package data

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewNoteID returns a fresh note identity.
func NewNoteID() string {
	return uuid.NewString()
}

// NewNotes assigns identities to notes submitted with a new book. A submitted
// creation time is kept, otherwise now is used.
func NewNotes(submitted []Note, now time.Time) []Note {
	notes := make([]Note, 0, len(submitted))
	for _, n := range submitted {
		createdAt := n.CreatedAt
		if createdAt.IsZero() {
			createdAt = now
		}
		notes = append(notes, Note{
			ID:        NewNoteID(),
			Content:   strings.TrimSpace(n.Content),
			CreatedAt: createdAt,
		})
	}
	return notes
}

// ReconcileNotes builds the replacement notes sequence for an edit. A submitted
// note keeps its identity and creation time only when it carries the id of a
// note the book already owns; anything else is treated as a new note.
func ReconcileNotes(existing, submitted []Note, now time.Time) []Note {
	owned := make(map[string]Note, len(existing))
	for _, n := range existing {
		owned[n.ID] = n
	}
	notes := make([]Note, 0, len(submitted))
	for _, n := range submitted {
		content := strings.TrimSpace(n.Content)
		if prev, ok := owned[n.ID]; ok && n.ID != "" {
			notes = append(notes, Note{ID: prev.ID, Content: content, CreatedAt: prev.CreatedAt})
			// An id may only be claimed once.
			delete(owned, n.ID)
			continue
		}
		notes = append(notes, Note{ID: NewNoteID(), Content: content, CreatedAt: now})
	}
	return notes
}

// NotesText renders notes as the multi-line text edited in book forms.
func NotesText(notes []Note) string {
	lines := make([]string, len(notes))
	for i, n := range notes {
		lines[i] = n.Content
	}
	return strings.Join(lines, "\n")
}

// NotesFromText splits edited note text into a notes sequence. Blank lines are
// dropped. Each surviving line is paired with the first unused previous note
// of identical content, keeping that note's id and creation time; a line that
// matches nothing is returned without an id so the server assigns a new one.
// Pairing is by content, never by position, so inserting or reordering lines
// does not move identities between notes.
func NotesFromText(text string, previous []Note) []Note {
	used := make([]bool, len(previous))
	notes := []Note{}
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		content := strings.TrimSpace(line)
		if content == "" {
			continue
		}
		note := Note{Content: content}
		for i, prev := range previous {
			if !used[i] && strings.TrimSpace(prev.Content) == content {
				used[i] = true
				note.ID = prev.ID
				note.CreatedAt = prev.CreatedAt
				break
			}
		}
		notes = append(notes, note)
	}
	return notes
}
