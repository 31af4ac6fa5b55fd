package service

import (
	"context"
	"strings"

	"github.com/emzola/shelflog/data"
	"github.com/emzola/shelflog/data/dto"
)

type books interface {
	AddBook(ctx context.Context, requestBody dto.CreateBookRequestBody) (*data.Book, error)
	GetBook(ctx context.Context, bookID string) (*data.Book, error)
	ListBooks(ctx context.Context, filters data.Filters) ([]*data.Book, error)
	ListAllBooks(ctx context.Context) ([]*data.Book, error)
	UpdateBook(ctx context.Context, bookID string, requestBody dto.UpdateBookRequestBody) (*data.Book, error)
	DeleteBook(ctx context.Context, bookID string) error
}

// AddBook service creates a new book. A missing or empty category and status
// fall back to their defaults.
func (s *service) AddBook(ctx context.Context, requestBody dto.CreateBookRequestBody) (*data.Book, error) {
	if requestBody.Notes.Present && !requestBody.Notes.Valid {
		return nil, ErrInvalidNotes
	}
	book := &data.Book{
		Title:    strings.TrimSpace(requestBody.Title),
		Author:   strings.TrimSpace(requestBody.Author),
		Category: data.DefaultCategory,
		Status:   data.StatusToRead,
		Notes:    []data.Note{},
	}
	if requestBody.Category != nil {
		if category := strings.TrimSpace(*requestBody.Category); category != "" {
			book.Category = category
		}
	}
	if requestBody.Status != nil && *requestBody.Status != "" {
		book.Status = data.Status(*requestBody.Status)
	}
	if requestBody.Notes.Present {
		book.Notes = data.NewNotes(requestBody.Notes.Notes(), s.now())
	}
	if err := s.failedValidation(data.ValidateBook(book)); err != nil {
		return nil, err
	}
	err := s.repo.InsertBook(ctx, book)
	if err != nil {
		return nil, repoError(err)
	}
	return book, nil
}

// GetBook service retrieves the details of a book.
func (s *service) GetBook(ctx context.Context, bookID string) (*data.Book, error) {
	book, err := s.repo.GetBook(ctx, bookID)
	if err != nil {
		return nil, repoError(err)
	}
	return book, nil
}

// ListBooks service retrieves the books matching filters.
func (s *service) ListBooks(ctx context.Context, filters data.Filters) ([]*data.Book, error) {
	if err := s.failedValidation(data.ValidateFilters(filters)); err != nil {
		return nil, err
	}
	books, err := s.repo.GetAllBooks(ctx, filters)
	if err != nil {
		return nil, repoError(err)
	}
	return books, nil
}

// ListAllBooks service retrieves every book.
func (s *service) ListAllBooks(ctx context.Context) ([]*data.Book, error) {
	books, err := s.repo.GetAllBooks(ctx, data.Filters{})
	if err != nil {
		return nil, repoError(err)
	}
	return books, nil
}

// UpdateBook service updates the details of a specific book. Only the fields
// present in the request body are replaced; submitted notes replace the whole
// notes sequence.
func (s *service) UpdateBook(ctx context.Context, bookID string, requestBody dto.UpdateBookRequestBody) (*data.Book, error) {
	if requestBody.Notes.Present && !requestBody.Notes.Valid {
		return nil, ErrInvalidNotes
	}
	// Retrieve the book by its ID
	existing, err := s.repo.GetBook(ctx, bookID)
	if err != nil {
		return nil, repoError(err)
	}
	// Update only fields with new data
	var patch data.BookPatch
	if requestBody.Title != nil {
		title := strings.TrimSpace(*requestBody.Title)
		patch.Title = &title
	}
	if requestBody.Author != nil {
		author := strings.TrimSpace(*requestBody.Author)
		patch.Author = &author
	}
	if requestBody.Category != nil {
		category := strings.TrimSpace(*requestBody.Category)
		if category == "" {
			category = data.DefaultCategory
		}
		patch.Category = &category
	}
	if requestBody.Status != nil {
		status := data.Status(*requestBody.Status)
		patch.Status = &status
	}
	if requestBody.Notes.Present {
		notes := data.ReconcileNotes(existing.Notes, requestBody.Notes.Notes(), s.now())
		patch.Notes = &notes
	}
	candidate := existing.Clone()
	patch.Apply(candidate)
	if err := s.failedValidation(data.ValidateBook(candidate)); err != nil {
		return nil, err
	}
	book, err := s.repo.UpdateBook(ctx, bookID, patch)
	if err != nil {
		return nil, repoError(err)
	}
	if existing.Status != data.StatusCompleted && book.Status == data.StatusCompleted {
		s.notifyCompleted(book)
	}
	return book, nil
}

// DeleteBook service deletes a specific book.
func (s *service) DeleteBook(ctx context.Context, bookID string) error {
	return repoError(s.repo.DeleteBook(ctx, bookID))
}

// notifyCompleted emails the configured recipient about a finished book.
func (s *service) notifyCompleted(book *data.Book) {
	if s.mailer == nil {
		return
	}
	book = book.Clone()
	s.background(func() {
		err := s.mailer.Send(s.config.Smtp.Recipient, "book_completed.tmpl", map[string]interface{}{
			"title":  book.Title,
			"author": book.Author,
			"notes":  len(book.Notes),
		})
		if err != nil {
			s.logger.PrintError(err, map[string]string{"book_id": book.ID})
		}
	})
}
