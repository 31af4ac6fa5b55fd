// Package store is the client-side data store: an in-memory copy of the book
// list, the active filters and the selected book, kept in step with the
// ShelfLog API.
package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/emzola/shelflog/data"
	"github.com/emzola/shelflog/data/dto"
)

// API is the subset of the ShelfLog API client the store depends on.
// *clients.API satisfies it.
type API interface {
	ListAll(ctx context.Context) (*dto.ListBooksResponse, error)
	List(ctx context.Context, filters data.Filters) (*dto.ListBooksResponse, error)
	Get(ctx context.Context, id string) (*data.Book, error)
	Add(ctx context.Context, body dto.CreateBookRequestBody) (*dto.BookResponse, error)
	Edit(ctx context.Context, id string, body dto.UpdateBookRequestBody) (*dto.BookResponse, error)
	Delete(ctx context.Context, id string) (string, error)
}

// Error messages recorded in State.Error.
const (
	msgFetchAll      = "Failed to fetch all books"
	msgFetchFiltered = "Failed to fetch books with filters"
	msgFetchBook     = "Failed to fetch book"
	msgAdd           = "Failed to add book"
	msgUpdate        = "Failed to update book"
	msgDelete        = "Failed to delete book"
)

// State is a point-in-time copy of the store.
type State struct {
	Books    []data.Book
	Selected *data.Book
	Filters  data.Filters
	// Loading is true while any request issued by the store is in flight.
	Loading bool
	// Error describes the last failed operation; it is cleared by the next
	// successful one.
	Error string
}

// Store caches books fetched from the API. It is safe for concurrent use.
//
// Every list fetch is tagged with a sequence number and only the response to
// the most recently issued fetch is applied, so a slow response to an older
// filter can never overwrite a newer list. The same holds for FetchByID.
type Store struct {
	api API

	mu        sync.Mutex
	state     State
	listSeq   uint64
	bookSeq   uint64
	pending   int
	subs      map[int]func(State)
	nextSubID int
}

// New creates an empty store backed by api.
func New(api API) *Store {
	return &Store{
		api:   api,
		state: State{Books: []data.Book{}},
		subs:  make(map[int]func(State)),
	}
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() State {
	st := s.state
	st.Books = make([]data.Book, len(s.state.Books))
	for i := range s.state.Books {
		st.Books[i] = *s.state.Books[i].Clone()
	}
	st.Selected = s.state.Selected.Clone()
	return st
}

// Subscribe registers fn to be called with a snapshot after every state
// change. fn runs on the goroutine that caused the change. The returned
// function removes the subscription.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSubID
	s.nextSubID++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// update applies fn to the state under the lock, then notifies subscribers.
func (s *Store) update(fn func(st *State)) {
	s.mu.Lock()
	fn(&s.state)
	snapshot := s.snapshotLocked()
	subs := make([]func(State), 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub)
	}
	s.mu.Unlock()
	for _, sub := range subs {
		sub(snapshot)
	}
}

func (s *Store) begin() {
	s.update(func(st *State) {
		s.pending++
		st.Loading = true
	})
}

// finish ends a request and applies fn to the state.
func (s *Store) finish(fn func(st *State)) {
	s.update(func(st *State) {
		s.pending--
		st.Loading = s.pending > 0
		fn(st)
	})
}

// Refresh re-fetches the list: filtered when any filter is set, otherwise
// unfiltered.
func (s *Store) Refresh(ctx context.Context) error {
	s.mu.Lock()
	filters := s.state.Filters
	s.mu.Unlock()
	return s.fetchList(ctx, filters)
}

// FetchAll replaces the list with every book.
func (s *Store) FetchAll(ctx context.Context) error {
	return s.fetchList(ctx, data.Filters{})
}

// FetchFiltered replaces the list with the books matching the current
// filters, using the filtered listing even when no filter is set.
func (s *Store) FetchFiltered(ctx context.Context) error {
	s.mu.Lock()
	filters := s.state.Filters
	s.mu.Unlock()
	return s.fetch(ctx, filters, false)
}

func (s *Store) fetchList(ctx context.Context, filters data.Filters) error {
	return s.fetch(ctx, filters, filters.IsZero())
}

func (s *Store) fetch(ctx context.Context, filters data.Filters, unfiltered bool) error {
	s.mu.Lock()
	s.listSeq++
	seq := s.listSeq
	s.mu.Unlock()
	s.begin()

	var res *dto.ListBooksResponse
	var err error
	msg := msgFetchFiltered
	if unfiltered {
		msg = msgFetchAll
		res, err = s.api.ListAll(ctx)
	} else {
		res, err = s.api.List(ctx, filters)
	}

	s.finish(func(st *State) {
		if seq != s.listSeq {
			return
		}
		if err != nil {
			st.Error = msg
			return
		}
		st.Error = ""
		st.Books = append([]data.Book{}, res.Books...)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", msg, err)
	}
	return nil
}

// SetFilterStatus sets the status filter and re-fetches the list if it changed.
func (s *Store) SetFilterStatus(ctx context.Context, status data.Status) error {
	return s.setFilters(ctx, func(f *data.Filters) { f.Status = status })
}

// SetFilterCategory sets the category filter and re-fetches the list if it changed.
func (s *Store) SetFilterCategory(ctx context.Context, category string) error {
	return s.setFilters(ctx, func(f *data.Filters) { f.Category = category })
}

// SetFilterTitle sets the title filter and re-fetches the list if it changed.
func (s *Store) SetFilterTitle(ctx context.Context, title string) error {
	return s.setFilters(ctx, func(f *data.Filters) { f.Title = title })
}

// SetFilters replaces all three filters, fetching at most once.
func (s *Store) SetFilters(ctx context.Context, filters data.Filters) error {
	return s.setFilters(ctx, func(f *data.Filters) { *f = filters })
}

// ClearFilters resets every filter and re-fetches the unfiltered list once.
func (s *Store) ClearFilters(ctx context.Context) error {
	return s.SetFilters(ctx, data.Filters{})
}

func (s *Store) setFilters(ctx context.Context, change func(*data.Filters)) error {
	s.mu.Lock()
	filters := s.state.Filters
	change(&filters)
	changed := filters != s.state.Filters
	s.mu.Unlock()
	if !changed {
		return nil
	}
	s.update(func(st *State) { st.Filters = filters })
	return s.fetchList(ctx, filters)
}

// FetchByID loads a single book into Selected.
func (s *Store) FetchByID(ctx context.Context, id string) error {
	s.mu.Lock()
	s.bookSeq++
	seq := s.bookSeq
	s.mu.Unlock()
	s.begin()
	book, err := s.api.Get(ctx, id)
	s.finish(func(st *State) {
		if seq != s.bookSeq {
			return
		}
		if err != nil {
			st.Error = msgFetchBook
			st.Selected = nil
			return
		}
		st.Error = ""
		st.Selected = book
	})
	if err != nil {
		return fmt.Errorf("%s: %w", msgFetchBook, err)
	}
	return nil
}

// Add persists a new book and appends the created book to the list.
func (s *Store) Add(ctx context.Context, body dto.CreateBookRequestBody) (*data.Book, error) {
	s.begin()
	res, err := s.api.Add(ctx, body)
	s.finish(func(st *State) {
		if err != nil {
			st.Error = msgAdd
			return
		}
		st.Error = ""
		if res.Book != nil {
			st.Books = append(st.Books, *res.Book.Clone())
		}
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", msgAdd, err)
	}
	return res.Book, nil
}

// Edit persists the changes in body and merges the server's result into the
// cached copy.
func (s *Store) Edit(ctx context.Context, id string, body dto.UpdateBookRequestBody) (*data.Book, error) {
	s.begin()
	res, err := s.api.Edit(ctx, id, body)
	s.finish(func(st *State) {
		if err != nil {
			st.Error = msgUpdate
			return
		}
		st.Error = ""
		if res.Book != nil {
			merge(st, id, patchOf(res.Book), &res.Book.UpdatedAt)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", msgUpdate, err)
	}
	return res.Book, nil
}

// UpdateLocal merges patch into the cached book with the given id without
// calling the API. Callers must already have persisted the change; use Edit
// to do both.
func (s *Store) UpdateLocal(id string, patch data.BookPatch) {
	s.update(func(st *State) { merge(st, id, patch, nil) })
}

// Delete removes a book on the server and then from the list.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.begin()
	_, err := s.api.Delete(ctx, id)
	s.finish(func(st *State) {
		if err != nil {
			st.Error = msgDelete
			return
		}
		st.Error = ""
		books := st.Books[:0]
		for _, b := range st.Books {
			if b.ID != id {
				books = append(books, b)
			}
		}
		st.Books = books
		if st.Selected != nil && st.Selected.ID == id {
			st.Selected = nil
		}
	})
	if err != nil {
		return fmt.Errorf("%s: %w", msgDelete, err)
	}
	return nil
}

func merge(st *State, id string, patch data.BookPatch, updatedAt *time.Time) {
	apply := func(b *data.Book) {
		patch.Apply(b)
		if updatedAt != nil {
			b.UpdatedAt = *updatedAt
		}
	}
	for i := range st.Books {
		if st.Books[i].ID == id {
			apply(&st.Books[i])
		}
	}
	if st.Selected != nil && st.Selected.ID == id {
		apply(st.Selected)
	}
}

func patchOf(book *data.Book) data.BookPatch {
	notes := append([]data.Note{}, book.Notes...)
	return data.BookPatch{
		Title:    &book.Title,
		Author:   &book.Author,
		Category: &book.Category,
		Status:   &book.Status,
		Notes:    &notes,
	}
}
