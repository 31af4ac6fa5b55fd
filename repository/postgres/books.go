package postgres

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/emzola/shelflog/data"
	"github.com/emzola/shelflog/repository"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

const bookColumns = `id, title, author, category, status, notes, created_at, updated_at`

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanBook(row scanner) (*data.Book, error) {
	var book data.Book
	var notes notesColumn
	err := row.Scan(
		&book.ID,
		&book.Title,
		&book.Author,
		&book.Category,
		&book.Status,
		&notes,
		&book.CreatedAt,
		&book.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	book.Notes = []data.Note(notes)
	book.CreatedAt = book.CreatedAt.UTC()
	book.UpdatedAt = book.UpdatedAt.UTC()
	return &book, nil
}

// InsertBook creates a new book record.
func (r *Repository) InsertBook(ctx context.Context, book *data.Book) error {
	query := `
		INSERT INTO books (id, title, author, category, status, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)`
	id := uuid.NewString()
	now := r.now()
	args := []interface{}{id, book.Title, book.Author, book.Category, string(book.Status), notesColumn(book.Notes), now}
	ctx, cancel := r.context(ctx)
	defer cancel()
	_, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return mapError(err)
	}
	book.ID = id
	book.CreatedAt = now
	book.UpdatedAt = now
	if book.Notes == nil {
		book.Notes = []data.Note{}
	}
	return nil
}

// GetBook retrieves a book record by its ID.
func (r *Repository) GetBook(ctx context.Context, id string) (*data.Book, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, repository.ErrRecordNotFound
	}
	query := `SELECT ` + bookColumns + ` FROM books WHERE id = $1`
	ctx, cancel := r.context(ctx)
	defer cancel()
	book, err := scanBook(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError(err)
	}
	return book, nil
}

// GetAllBooks retrieves every book record matching filters in insertion order.
func (r *Repository) GetAllBooks(ctx context.Context, filters data.Filters) ([]*data.Book, error) {
	where, args := whereClause(filters)
	query := `SELECT ` + bookColumns + ` FROM books ` + where + ` ORDER BY seq ASC`
	ctx, cancel := r.context(ctx)
	defer cancel()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()
	books := []*data.Book{}
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, mapError(err)
		}
		books = append(books, book)
	}
	if err = rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return books, nil
}

// UpdateBook updates the patched columns of a book record.
func (r *Repository) UpdateBook(ctx context.Context, id string, patch data.BookPatch) (*data.Book, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, repository.ErrRecordNotFound
	}
	query := `
		UPDATE books
		SET title = COALESCE($1::text, title),
			author = COALESCE($2::text, author),
			category = COALESCE($3::text, category),
			status = COALESCE($4::text, status),
			notes = COALESCE($5::jsonb, notes),
			updated_at = $6
		WHERE id = $7
		RETURNING ` + bookColumns
	var status, notes interface{}
	if patch.Status != nil {
		status = string(*patch.Status)
	}
	if patch.Notes != nil {
		notes = notesColumn(*patch.Notes)
	}
	args := []interface{}{patch.Title, patch.Author, patch.Category, status, notes, r.now(), id}
	ctx, cancel := r.context(ctx)
	defer cancel()
	book, err := scanBook(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, mapError(err)
	}
	return book, nil
}

// DeleteBook deletes a book record.
func (r *Repository) DeleteBook(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return repository.ErrRecordNotFound
	}
	query := `
		DELETE FROM books
		WHERE id = $1`
	ctx, cancel := r.context(ctx)
	defer cancel()
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return mapError(err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return repository.ErrRecordNotFound
	}
	return nil
}

// whereClause builds the filter condition and its arguments. The title is
// matched as a literal substring: LIKE wildcards in the input are escaped.
func whereClause(filters data.Filters) (string, []interface{}) {
	var conds []string
	var args []interface{}
	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		conds = append(conds, strings.ReplaceAll(cond, "?", "$"+strconv.Itoa(len(args))))
	}
	if filters.Status != "" {
		add("status = ?", string(filters.Status))
	}
	if filters.Category != "" {
		add("category = ?", filters.Category)
	}
	if filters.Title != "" {
		add(`title ILIKE ? ESCAPE '\'`, "%"+likeEscaper.Replace(filters.Title)+"%")
	}
	if len(conds) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func isCheckViolation(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	switch pqErr.Code {
	case "23514", "23502":
		return true
	}
	return false
}
