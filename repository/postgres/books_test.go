package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/emzola/shelflog/data"
	"github.com/emzola/shelflog/repository"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWhereClause(t *testing.T) {
	where, args := whereClause(data.Filters{})
	assert.Empty(t, where)
	assert.Empty(t, args)

	where, args = whereClause(data.Filters{Status: data.StatusReading, Category: "Sci-Fi", Title: "50%_off"})
	assert.Equal(t, `WHERE status = $1 AND category = $2 AND title ILIKE $3 ESCAPE '\'`, where)
	assert.Equal(t, []interface{}{"reading", "Sci-Fi", `%50\%\_off%`}, args)

	where, args = whereClause(data.Filters{Title: "abc"})
	assert.Equal(t, `WHERE title ILIKE $1 ESCAPE '\'`, where)
	assert.Equal(t, []interface{}{"%abc%"}, args)
}

func TestNotesColumn(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	in := notesColumn{{ID: "n1", Content: "first", CreatedAt: created}}

	v, err := in.Value()
	require.NoError(t, err)
	js, ok := v.(string)
	require.True(t, ok)
	assert.JSONEq(t, `[{"id":"n1","content":"first","createdAt":"2024-01-01T00:00:00Z"}]`, js)

	var out notesColumn
	require.NoError(t, out.Scan([]byte(js)))
	assert.Equal(t, in, out)

	v, err = notesColumn(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)

	require.NoError(t, out.Scan(nil))
	assert.Equal(t, notesColumn{}, out)
	assert.Error(t, out.Scan(42))
}

func TestMapError(t *testing.T) {
	assert.NoError(t, mapError(nil))
	assert.ErrorIs(t, mapError(sql.ErrNoRows), repository.ErrRecordNotFound)
	assert.ErrorIs(t, mapError(fmt.Errorf("query: %w", context.DeadlineExceeded)), repository.ErrUnavailable)
	assert.ErrorIs(t, mapError(driver.ErrBadConn), repository.ErrUnavailable)
	assert.ErrorIs(t, mapError(&pq.Error{Code: "23514"}), repository.ErrFailedValidation)
	other := errors.New("boom")
	assert.Equal(t, other, mapError(other))
}
