package repository

import (
	"context"

	"github.com/emzola/shelflog/data"
)

type books interface {
	// InsertBook stores a new book, assigning its ID and timestamps.
	InsertBook(ctx context.Context, book *data.Book) error
	GetBook(ctx context.Context, id string) (*data.Book, error)
	// GetAllBooks returns the books matching filters in storage order.
	GetAllBooks(ctx context.Context, filters data.Filters) ([]*data.Book, error)
	// UpdateBook replaces the fields set in patch, refreshes UpdatedAt and
	// returns the stored result.
	UpdateBook(ctx context.Context, id string, patch data.BookPatch) (*data.Book, error)
	DeleteBook(ctx context.Context, id string) error
}
