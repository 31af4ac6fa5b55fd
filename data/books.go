package data

import (
	"time"
)

// Status is the reading status of a book.
type Status string

const (
	StatusToRead    Status = "to-read"
	StatusReading   Status = "reading"
	StatusCompleted Status = "completed"
)

// Statuses lists every permitted Status in display order.
var Statuses = []Status{StatusToRead, StatusReading, StatusCompleted}

// DefaultCategory is stored when a book is added without a category.
const DefaultCategory = "General"

// Valid reports whether s is one of the permitted statuses.
func (s Status) Valid() bool {
	for _, status := range Statuses {
		if s == status {
			return true
		}
	}
	return false
}

// Book defines a tracked book.
type Book struct {
	ID        string    `json:"id" yaml:"id"`
	Title     string    `json:"title" yaml:"title" validate:"required"`
	Author    string    `json:"author" yaml:"author" validate:"required"`
	Category  string    `json:"category" yaml:"category"`
	Status    Status    `json:"status" yaml:"status" validate:"status"`
	Notes     []Note    `json:"notes" yaml:"notes" validate:"dive"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" yaml:"updatedAt"`
}

// Note is a free-text annotation owned by exactly one book.
type Note struct {
	ID        string    `json:"id,omitempty" yaml:"id,omitempty"`
	Content   string    `json:"content" yaml:"content" validate:"required"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
}

// Clone returns a deep copy of the book so callers may mutate notes freely.
func (b *Book) Clone() *Book {
	if b == nil {
		return nil
	}
	c := *b
	c.Notes = append([]Note(nil), b.Notes...)
	if c.Notes == nil {
		c.Notes = []Note{}
	}
	return &c
}

// BookPatch holds the whitelisted fields of a partial update. A nil field is
// left untouched; Notes, when set, replaces the whole notes sequence.
type BookPatch struct {
	Title    *string `json:"title,omitempty"`
	Author   *string `json:"author,omitempty"`
	Category *string `json:"category,omitempty"`
	Status   *Status `json:"status,omitempty"`
	Notes    *[]Note `json:"notes,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p BookPatch) IsEmpty() bool {
	return p.Title == nil && p.Author == nil && p.Category == nil && p.Status == nil && p.Notes == nil
}

// Apply copies every set field of the patch onto the book.
func (p BookPatch) Apply(book *Book) {
	if p.Title != nil {
		book.Title = *p.Title
	}
	if p.Author != nil {
		book.Author = *p.Author
	}
	if p.Category != nil {
		book.Category = *p.Category
	}
	if p.Status != nil {
		book.Status = *p.Status
	}
	if p.Notes != nil {
		book.Notes = append([]Note{}, *p.Notes...)
	}
}
