// Package memory provides an in-process book store. It backs local development
// (database driver "memory") and the service and handler tests.
package memory

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/emzola/shelflog/data"
	"github.com/emzola/shelflog/repository"
)

// Store holds books in insertion order. Safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	books  []*data.Book
	nextID int64
	ready  atomic.Bool
	now    func() time.Time
}

// New creates an empty store that reports ready.
func New() *Store {
	s := &Store{now: func() time.Time { return time.Now().UTC() }}
	s.ready.Store(true)
	return s
}

// SetReady toggles readiness, simulating a lost or restored connection.
func (s *Store) SetReady(ready bool) {
	s.ready.Store(ready)
}

// SetClock replaces the time source used for timestamps.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Store) Ready() bool {
	return s.ready.Load()
}

func (s *Store) Close(ctx context.Context) error {
	s.ready.Store(false)
	return nil
}

func (s *Store) InsertBook(ctx context.Context, book *data.Book) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	if book.Notes == nil {
		book.Notes = []data.Note{}
	}
	if errs := data.ValidateBook(book); len(errs) > 0 {
		return repository.ErrFailedValidation
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	now := s.now()
	book.ID = strconv.FormatInt(s.nextID, 10)
	book.CreatedAt = now
	book.UpdatedAt = now
	s.books = append(s.books, book.Clone())
	return nil
}

func (s *Store) GetBook(ctx context.Context, id string) (*data.Book, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.index(id)
	if i < 0 {
		return nil, repository.ErrRecordNotFound
	}
	return s.books[i].Clone(), nil
}

func (s *Store) GetAllBooks(ctx context.Context, filters data.Filters) ([]*data.Book, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	books := []*data.Book{}
	for _, b := range s.books {
		if filters.Match(b) {
			books = append(books, b.Clone())
		}
	}
	return books, nil
}

func (s *Store) UpdateBook(ctx context.Context, id string, patch data.BookPatch) (*data.Book, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		return nil, repository.ErrRecordNotFound
	}
	book := s.books[i].Clone()
	patch.Apply(book)
	if errs := data.ValidateBook(book); len(errs) > 0 {
		return nil, repository.ErrFailedValidation
	}
	book.UpdatedAt = s.now()
	// Guarantee a strictly later stamp even on coarse clocks.
	if !book.UpdatedAt.After(s.books[i].UpdatedAt) {
		book.UpdatedAt = s.books[i].UpdatedAt.Add(time.Millisecond)
	}
	s.books[i] = book
	return book.Clone(), nil
}

func (s *Store) DeleteBook(ctx context.Context, id string) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		return repository.ErrRecordNotFound
	}
	s.books = append(s.books[:i], s.books[i+1:]...)
	return nil
}

func (s *Store) index(id string) int {
	for i, b := range s.books {
		if b.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) check(ctx context.Context) error {
	if !s.ready.Load() || ctx.Err() != nil {
		return repository.ErrUnavailable
	}
	return nil
}
