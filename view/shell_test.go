package view

import (
	"bytes"
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/emzola/shelflog/clients"
	"github.com/emzola/shelflog/config"
	"github.com/emzola/shelflog/data"
	"github.com/emzola/shelflog/handler"
	"github.com/emzola/shelflog/internal/jsonlog"
	"github.com/emzola/shelflog/repository/memory"
	"github.com/emzola/shelflog/service"
	"github.com/emzola/shelflog/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runShell drives a shell against a real API server backed by memory and
// returns everything it printed.
func runShell(t *testing.T, repo *memory.Store, script ...string) string {
	t.Helper()
	var cfg config.Config
	logger := jsonlog.New(io.Discard, jsonlog.LevelOff)
	svc := service.New(cfg, &sync.WaitGroup{}, logger, repo)
	srv := httptest.NewServer(handler.New(cfg, logger, nil, svc).Routes())
	t.Cleanup(srv.Close)

	s := store.New(clients.NewAPI(srv.URL, srv.Client(), nil))
	var out bytes.Buffer
	sh := NewShell(s, strings.NewReader(strings.Join(script, "\n")+"\n"), &out)
	require.NoError(t, sh.Run(context.Background()))
	return out.String()
}

func TestShellAddEditDelete(t *testing.T) {
	repo := memory.New()
	out := runShell(t, repo,
		"add",
		"Dune", "Herbert", "Sci-Fi", "reading",
		"first note", "second note", ".",
		"filter status reading",
		"edit 1",
		"", "", "", "completed",
		"zeroth note", "first note", "second note", ".",
		"like 1",
		"notes 1",
		"delete 1",
		"exit",
	)

	assert.Contains(t, out, "No books yet.")
	assert.Contains(t, out, "Book added successfully")
	assert.Contains(t, out, "Filters: status=reading")
	assert.Contains(t, out, "Title [Dune]: ")
	assert.Contains(t, out, "Book updated successfully")
	assert.Contains(t, out, "Herbert | Sci-Fi | [completed] | 3 notes")
	assert.Contains(t, out, "#1  Dune  ♥")
	assert.Contains(t, out, "    - zeroth note\n")
	assert.Contains(t, out, "Book deleted successfully")
	assert.Contains(t, out, "Loading...")

	books, err := repo.GetAllBooks(context.Background(), data.Filters{})
	require.NoError(t, err)
	assert.Empty(t, books)
}

func TestShellEditKeepsNoteIdentity(t *testing.T) {
	repo := memory.New()
	runShell(t, repo,
		"add", "Dune", "Herbert", "", "", "spice", "worms", ".",
		"exit",
	)
	before, err := repo.GetBook(context.Background(), "1")
	require.NoError(t, err)
	require.Len(t, before.Notes, 2)

	runShell(t, repo,
		"edit 1", "", "", "", "", "new", "spice", "worms", ".",
		"exit",
	)
	after, err := repo.GetBook(context.Background(), "1")
	require.NoError(t, err)
	require.Len(t, after.Notes, 3)
	assert.NotEqual(t, before.Notes[0].ID, after.Notes[0].ID)
	assert.Equal(t, before.Notes[0].ID, after.Notes[1].ID)
	assert.Equal(t, before.Notes[1].ID, after.Notes[2].ID)
	assert.Equal(t, "General", after.Category)
}

func TestShellErrorsAndRetry(t *testing.T) {
	repo := memory.New()
	out := runShell(t, repo,
		"show 42",
		"retry",
		"filter status finished",
		"frobnicate",
		"add", "", "", "", "", ".",
		"retry",
		"exit",
	)
	assert.Contains(t, out, "Error: Failed to fetch book: 404 Book not found\nType 'retry' to try again.")
	assert.Equal(t, 2, strings.Count(out, "Failed to fetch book"))
	assert.Contains(t, out, "status must be one of to-read, reading, completed")
	assert.Contains(t, out, `unknown command "frobnicate"`)
	assert.Contains(t, out, "Validation failed: author must be provided, title must be provided")
	assert.Contains(t, out, "Nothing to retry.")
}

func TestShellEndOfInputCancelsForm(t *testing.T) {
	out := runShell(t, memory.New(), "add", "Dune")
	assert.Contains(t, out, "Cancelled.")
}
