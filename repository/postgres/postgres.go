// Package postgres stores books in PostgreSQL, keeping each book's notes as a
// JSONB document column.
package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"net"
	"time"

	"github.com/emzola/shelflog/config"
	"github.com/emzola/shelflog/data"
	"github.com/emzola/shelflog/internal/jsonlog"
	"github.com/emzola/shelflog/repository"
	_ "github.com/lib/pq"
)

const schema = `
	CREATE TABLE IF NOT EXISTS books (
		seq bigserial,
		id uuid PRIMARY KEY,
		title text NOT NULL CHECK (title <> ''),
		author text NOT NULL CHECK (author <> ''),
		category text NOT NULL DEFAULT 'General',
		status text NOT NULL DEFAULT 'to-read' CHECK (status IN ('to-read', 'reading', 'completed')),
		notes jsonb NOT NULL DEFAULT '[]'::jsonb CHECK (jsonb_typeof(notes) = 'array'),
		created_at timestamptz NOT NULL DEFAULT now(),
		updated_at timestamptz NOT NULL DEFAULT now()
	)`

// OpenDBConn creates a PostgreSQL database connection pool. The pool is not
// pinged here; readiness is established by the repository's monitor.
func OpenDBConn(cfg config.Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.Database.URI)
	if err != nil {
		return nil, err
	}
	duration, err := time.ParseDuration(cfg.Database.MaxIdleTime)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MinOpenConns)
	db.SetConnMaxIdleTime(duration)
	return db, nil
}

// Repository is the PostgreSQL implementation of repository.Repository.
type Repository struct {
	*repository.Monitor
	db      *sql.DB
	timeout time.Duration
	now     func() time.Time
}

// New wraps db and starts readiness monitoring.
func New(db *sql.DB, cfg config.Config, logger *jsonlog.Logger) *Repository {
	r := &Repository{
		db:      db,
		timeout: cfg.Database.OperationTimeout,
		now:     func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	}
	r.Monitor = repository.NewMonitor("postgres", r, logger, cfg.Database.ReconnectDelay, cfg.Database.Heartbeat, cfg.Database.OperationTimeout)
	r.Monitor.Start()
	return r
}

// Connect checks the pool can reach the server and creates the books table.
func (r *Repository) Connect(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, schema)
	return err
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close stops monitoring and closes the pool.
func (r *Repository) Close(ctx context.Context) error {
	r.Monitor.Stop()
	return r.db.Close()
}

func (r *Repository) context(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

// notesColumn adapts a notes sequence to the JSONB notes column.
type notesColumn []data.Note

func (n notesColumn) Value() (driver.Value, error) {
	if n == nil {
		n = notesColumn{}
	}
	js, err := json.Marshal([]data.Note(n))
	if err != nil {
		return nil, err
	}
	// Sent as text: lib/pq would encode []byte as bytea.
	return string(js), nil
}

func (n *notesColumn) Scan(src interface{}) error {
	var js []byte
	switch v := src.(type) {
	case []byte:
		js = v
	case string:
		js = []byte(v)
	case nil:
		*n = notesColumn{}
		return nil
	default:
		return errors.New("notes: unsupported column type")
	}
	var notes []data.Note
	if err := json.Unmarshal(js, &notes); err != nil {
		return err
	}
	if notes == nil {
		notes = []data.Note{}
	}
	*n = notes
	return nil
}

// mapError converts driver errors into repository errors.
func mapError(err error) error {
	var netErr net.Error
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return repository.ErrRecordNotFound
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, driver.ErrBadConn), errors.As(err, &netErr):
		return errors.Join(repository.ErrUnavailable, err)
	case isCheckViolation(err):
		return errors.Join(repository.ErrFailedValidation, err)
	default:
		return err
	}
}
