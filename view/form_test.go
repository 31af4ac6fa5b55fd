package view

import (
	"testing"
	"time"

	"github.com/emzola/shelflog/data"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormFromBookKeepsNoteIdentityByContent(t *testing.T) {
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	book := &data.Book{
		ID: "7", Title: "Dune", Author: "Herbert", Category: "Sci-Fi", Status: data.StatusReading,
		Notes: []data.Note{
			{ID: "a", Content: "spice", CreatedAt: created},
			{ID: "b", Content: "worms", CreatedAt: created},
		},
	}
	form := FormFromBook(book)
	assert.Equal(t, "spice\nworms", form.NotesText)

	// A line inserted before the existing ones must not shift their ids.
	form.NotesText = "new first\nspice\n\n  worms  \n"
	body := form.UpdateBody()
	require.True(t, body.Notes.Present)
	require.Len(t, body.Notes.Items, 3)
	assert.Equal(t, "", body.Notes.Items[0].ID)
	assert.Nil(t, body.Notes.Items[0].CreatedAt)
	assert.Equal(t, "a", body.Notes.Items[1].ID)
	assert.Equal(t, "b", body.Notes.Items[2].ID)
	assert.Equal(t, "worms", body.Notes.Items[2].Content)
	assert.Equal(t, created, *body.Notes.Items[2].CreatedAt)

	assert.Equal(t, "Dune", *body.Title)
	assert.Equal(t, "Sci-Fi", *body.Category)
	assert.Equal(t, "reading", *body.Status)
}

func TestFormFromBookDoesNotShareNotes(t *testing.T) {
	book := &data.Book{Notes: []data.Note{{ID: "a", Content: "x"}}}
	form := FormFromBook(book)
	book.Notes[0].ID = "changed"
	assert.Equal(t, "a", form.Notes()[0].ID)
}

func TestFormValidate(t *testing.T) {
	form := NewBookForm()
	assert.Equal(t, map[string]string{"title": "must be provided", "author": "must be provided"}, form.Validate())

	form.Title = "Dune"
	form.Author = "Herbert"
	assert.Empty(t, form.Validate())

	form.Status = "done"
	assert.Contains(t, form.Validate(), "status")
}

func TestCreateBody(t *testing.T) {
	form := &BookForm{Title: " Dune ", Author: "Herbert", NotesText: "one\n\ntwo"}
	body := form.CreateBody()
	assert.Equal(t, "Dune", body.Title)
	assert.Nil(t, body.Category)
	assert.Nil(t, body.Status)
	require.Len(t, body.Notes.Items, 2)
	assert.Equal(t, "two", body.Notes.Items[1].Content)

	body = NewBookForm().CreateBody()
	assert.Equal(t, data.DefaultCategory, *body.Category)
	assert.Equal(t, "to-read", *body.Status)
	assert.Empty(t, body.Notes.Items)
}
