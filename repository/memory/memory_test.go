package memory

import (
	"context"
	"testing"
	"time"

	"github.com/emzola/shelflog/data"
	"github.com/emzola/shelflog/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	s := New()
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.SetClock(func() time.Time { return clock })

	book := &data.Book{Title: "Dune", Author: "Herbert", Category: data.DefaultCategory, Status: data.StatusToRead}
	require.NoError(t, s.InsertBook(ctx, book))
	require.NotEmpty(t, book.ID)
	assert.Equal(t, clock, book.CreatedAt)
	assert.Equal(t, []data.Note{}, book.Notes)

	// Mutating the caller's copy must not leak into the store.
	book.Title = "mutated"
	got, err := s.GetBook(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dune", got.Title)

	clock = clock.Add(time.Minute)
	status := data.StatusReading
	updated, err := s.UpdateBook(ctx, book.ID, data.BookPatch{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, data.StatusReading, updated.Status)
	assert.True(t, updated.UpdatedAt.After(updated.CreatedAt))

	empty := ""
	_, err = s.UpdateBook(ctx, book.ID, data.BookPatch{Title: &empty})
	assert.ErrorIs(t, err, repository.ErrFailedValidation)

	require.NoError(t, s.DeleteBook(ctx, book.ID))
	assert.ErrorIs(t, s.DeleteBook(ctx, book.ID), repository.ErrRecordNotFound)
	_, err = s.GetBook(ctx, book.ID)
	assert.ErrorIs(t, err, repository.ErrRecordNotFound)
}

func TestStoreFiltersKeepInsertionOrder(t *testing.T) {
	ctx := context.Background()
	s := New()
	for _, title := range []string{"abc", "xyz", "ABCD", "zabc"} {
		require.NoError(t, s.InsertBook(ctx, &data.Book{Title: title, Author: "a", Category: "General", Status: data.StatusToRead}))
	}
	books, err := s.GetAllBooks(ctx, data.Filters{Title: "abc"})
	require.NoError(t, err)
	var titles []string
	for _, b := range books {
		titles = append(titles, b.Title)
	}
	assert.Equal(t, []string{"abc", "ABCD", "zabc"}, titles)
}

func TestStoreRejectsInvalidInsert(t *testing.T) {
	ctx := context.Background()
	s := New()
	for name, book := range map[string]*data.Book{
		"empty title":  {Author: "Herbert", Category: data.DefaultCategory, Status: data.StatusToRead},
		"empty author": {Title: "Dune", Category: data.DefaultCategory, Status: data.StatusToRead},
		"bad status":   {Title: "Dune", Author: "Herbert", Category: data.DefaultCategory, Status: "done"},
		"empty note":   {Title: "Dune", Author: "Herbert", Category: data.DefaultCategory, Status: data.StatusToRead, Notes: []data.Note{{Content: ""}}},
	} {
		assert.ErrorIs(t, s.InsertBook(ctx, book), repository.ErrFailedValidation, name)
		assert.Empty(t, book.ID, name)
	}
	books, err := s.GetAllBooks(ctx, data.Filters{})
	require.NoError(t, err)
	assert.Empty(t, books)
}

func TestStoreUnavailable(t *testing.T) {
	ctx := context.Background()
	s := New()
	s.SetReady(false)
	assert.False(t, s.Ready())
	_, err := s.GetAllBooks(ctx, data.Filters{})
	assert.ErrorIs(t, err, repository.ErrUnavailable)
	assert.ErrorIs(t, s.InsertBook(ctx, &data.Book{}), repository.ErrUnavailable)
}
