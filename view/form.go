package view

import (
	"strings"

	"github.com/emzola/shelflog/data"
	"github.com/emzola/shelflog/data/dto"
)

// BookForm holds the fields of the add and edit forms. Notes are edited as
// multi-line text, one note per line.
type BookForm struct {
	Title     string
	Author    string
	Category  string
	Status    string
	NotesText string

	// previous are the notes of the book being edited.
	previous []data.Note
}

// NewBookForm returns an empty add form with the default status selected.
func NewBookForm() *BookForm {
	return &BookForm{Category: data.DefaultCategory, Status: string(data.StatusToRead)}
}

// FormFromBook returns an edit form pre-filled from book.
func FormFromBook(book *data.Book) *BookForm {
	return &BookForm{
		Title:     book.Title,
		Author:    book.Author,
		Category:  book.Category,
		Status:    string(book.Status),
		NotesText: data.NotesText(book.Notes),
		previous:  append([]data.Note(nil), book.Notes...),
	}
}

// Notes converts the notes text back into notes, keeping the identity of
// every line whose content is unchanged.
func (f *BookForm) Notes() []data.Note {
	return data.NotesFromText(f.NotesText, f.previous)
}

// Validate checks the form the way the server will, so obvious mistakes are
// caught before a request is made.
func (f *BookForm) Validate() map[string]string {
	errs := make(map[string]string)
	if strings.TrimSpace(f.Title) == "" {
		errs["title"] = "must be provided"
	}
	if strings.TrimSpace(f.Author) == "" {
		errs["author"] = "must be provided"
	}
	if f.Status != "" && !data.Status(f.Status).Valid() {
		errs["status"] = "must be one of to-read, reading, completed"
	}
	return errs
}

// CreateBody builds the add request.
func (f *BookForm) CreateBody() dto.CreateBookRequestBody {
	body := dto.CreateBookRequestBody{
		Title:  strings.TrimSpace(f.Title),
		Author: strings.TrimSpace(f.Author),
		Notes:  dto.NotesOf(f.Notes()),
	}
	if category := strings.TrimSpace(f.Category); category != "" {
		body.Category = &category
	}
	if f.Status != "" {
		status := f.Status
		body.Status = &status
	}
	return body
}

// UpdateBody builds the edit request. Every field is sent, like the form
// shows them; notes are rebuilt from the text.
func (f *BookForm) UpdateBody() dto.UpdateBookRequestBody {
	title := strings.TrimSpace(f.Title)
	author := strings.TrimSpace(f.Author)
	category := strings.TrimSpace(f.Category)
	status := f.Status
	return dto.UpdateBookRequestBody{
		Title:    &title,
		Author:   &author,
		Category: &category,
		Status:   &status,
		Notes:    dto.NotesOf(f.Notes()),
	}
}
