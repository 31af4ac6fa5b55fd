package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/emzola/shelflog/config"
	"github.com/emzola/shelflog/data"
	"github.com/emzola/shelflog/internal/jsonlog"
	"github.com/emzola/shelflog/repository/memory"
	"github.com/emzola/shelflog/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T, configure func(*config.Config)) (http.Handler, *memory.Store) {
	t.Helper()
	var cfg config.Config
	cfg.Server.Env = "testing"
	if configure != nil {
		configure(&cfg)
	}
	logger := jsonlog.New(io.Discard, jsonlog.LevelOff)
	store := memory.New()
	svc := service.New(cfg, &sync.WaitGroup{}, logger, store)
	return New(cfg, logger, nil, svc).Routes(), store
}

func send(t *testing.T, h http.Handler, r *http.Request) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, r)
	var body map[string]interface{}
	if strings.HasPrefix(rr.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	}
	return rr, body
}

func do(t *testing.T, h http.Handler, method, target, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	return send(t, h, httptest.NewRequest(method, target, reader))
}

func TestBookScenario(t *testing.T) {
	h, _ := newTestHandler(t, nil)

	rr, body := do(t, h, http.MethodPost, "/api/add", `{"title":"Dune","author":"Herbert"}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "Book added successfully", body["message"])
	book := body["book"].(map[string]interface{})
	id := book["id"].(string)
	assert.NotEmpty(t, id)
	assert.Equal(t, "/api/"+id, rr.Header().Get("Location"))
	assert.Equal(t, "General", book["category"])
	assert.Equal(t, "to-read", book["status"])
	assert.Equal(t, []interface{}{}, book["notes"])

	rr, body = do(t, h, http.MethodPut, "/api/edit/"+id, `{"status":"reading"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Book updated successfully", body["message"])
	edited := body["book"].(map[string]interface{})
	assert.Equal(t, "Dune", edited["title"])
	assert.Equal(t, "Herbert", edited["author"])
	assert.Equal(t, "reading", edited["status"])
	assert.NotEqual(t, book["updatedAt"], edited["updatedAt"])

	rr, body = do(t, h, http.MethodGet, "/api/"+id, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, id, body["id"])
	assert.Equal(t, "reading", body["status"])

	rr, body = do(t, h, http.MethodDelete, "/api/delete/"+id, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Book deleted successfully", body["message"])

	rr, body = do(t, h, http.MethodDelete, "/api/delete/"+id, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Book not found", body["message"])

	rr, _ = do(t, h, http.MethodGet, "/api/"+id, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAddBookErrors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		message string
		field   string
	}{
		{"missing title", `{"author":"Herbert"}`, "Validation failed", "title"},
		{"empty author", `{"title":"Dune","author":""}`, "Validation failed", "author"},
		{"invalid status", `{"title":"Dune","author":"Herbert","status":"done"}`, "Validation failed", "status"},
		{"notes not an array", `{"title":"Dune","author":"Herbert","notes":"read it"}`, "Notes must be an array", ""},
		{"notes null", `{"title":"Dune","author":"Herbert","notes":null}`, "Notes must be an array", ""},
		{"notes number", `{"title":"Dune","author":"Herbert","notes":3}`, "Notes must be an array", ""},
		{"notes object", `{"title":"Dune","author":"Herbert","notes":{"content":"a"}}`, "Notes must be an array", ""},
		{"notes element number", `{"title":"Dune","author":"Herbert","notes":[1]}`, "Notes must be an array", ""},
		{"unknown key", `{"title":"Dune","author":"Herbert","isbn":"1"}`, `body contains unknown key "isbn"`, ""},
		{"malformed", `{"title":`, "body contains badly-formed JSON", ""},
		{"empty body", ``, "body must not be empty", ""},
		{"two values", `{"title":"A","author":"B"}{}`, "body must only contain a single JSON value", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, store := newTestHandler(t, nil)
			rr, body := do(t, h, http.MethodPost, "/api/add", tt.body)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Equal(t, tt.message, body["message"])
			if tt.field != "" {
				assert.Contains(t, body["error"], tt.field)
			}
			books, _ := store.GetAllBooks(context.Background(), data.Filters{})
			assert.Empty(t, books)
		})
	}
}

func TestAddBookWithNotes(t *testing.T) {
	h, _ := newTestHandler(t, nil)
	rr, body := do(t, h, http.MethodPost, "/api/add", `{"title":"Dune","author":"Herbert","notes":["first",{"content":"second"}]}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	id := body["book"].(map[string]interface{})["id"].(string)

	_, body = do(t, h, http.MethodGet, "/api/"+id, "")
	notes := body["notes"].([]interface{})
	require.Len(t, notes, 2)
	first := notes[0].(map[string]interface{})
	assert.Equal(t, "first", first["content"])
	assert.NotEmpty(t, first["id"])
	assert.NotEmpty(t, first["createdAt"])
	assert.Equal(t, "second", notes[1].(map[string]interface{})["content"])
}

func TestEditBookErrors(t *testing.T) {
	h, _ := newTestHandler(t, nil)
	_, body := do(t, h, http.MethodPost, "/api/add", `{"title":"Dune","author":"Herbert","notes":["kept"]}`)
	id := body["book"].(map[string]interface{})["id"].(string)

	for _, notes := range []string{`"a raw string"`, `null`, `7`, `{"content":"a"}`, `[true]`} {
		rr, body := do(t, h, http.MethodPut, "/api/edit/"+id, `{"notes":`+notes+`}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code, notes)
		assert.Equal(t, "Notes must be an array", body["message"], notes)
	}
	_, body = do(t, h, http.MethodGet, "/api/"+id, "")
	assert.Equal(t, []interface{}{"kept"}, noteContents(body))

	rr, body := do(t, h, http.MethodPut, "/api/edit/"+id, `{"title":"  "}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Validation failed", body["message"])

	rr, body = do(t, h, http.MethodPut, "/api/edit/"+id, `{"createdAt":"2020-01-01T00:00:00Z"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, `body contains unknown key "createdAt"`, body["message"])

	rr, body = do(t, h, http.MethodPut, "/api/edit/9999", `{"title":"x"}`)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Book not found", body["message"])
}

func TestListBooks(t *testing.T) {
	h, _ := newTestHandler(t, nil)
	for _, b := range []string{
		`{"title":"The ABC Murders","author":"Christie","category":"Crime","status":"reading"}`,
		`{"title":"abcdef","author":"Someone"}`,
		`{"title":"Dune","author":"Herbert","status":"reading"}`,
	} {
		rr, _ := do(t, h, http.MethodPost, "/api/add", b)
		require.Equal(t, http.StatusCreated, rr.Code)
	}

	titles := func(body map[string]interface{}) []string {
		var out []string
		for _, b := range body["books"].([]interface{}) {
			out = append(out, b.(map[string]interface{})["title"].(string))
		}
		return out
	}

	rr, body := do(t, h, http.MethodGet, "/api/all?title=abc", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.EqualValues(t, 2, body["count"])
	assert.Equal(t, []string{"The ABC Murders", "abcdef"}, titles(body))

	_, body = do(t, h, http.MethodGet, "/api/all?status=reading&category=Crime", "")
	assert.Equal(t, []string{"The ABC Murders"}, titles(body))

	_, filtered := do(t, h, http.MethodGet, "/api/all", "")
	_, unfiltered := do(t, h, http.MethodGet, "/api/all-unfiltered", "")
	assert.Equal(t, unfiltered, filtered)
	assert.EqualValues(t, 3, unfiltered["count"])

	_, body = do(t, h, http.MethodGet, "/api/all?title=.*", "")
	assert.EqualValues(t, 0, body["count"])
	assert.Equal(t, []interface{}{}, body["books"])

	rr, body = do(t, h, http.MethodGet, "/api/all?status=finished", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Validation failed", body["message"])
}

func TestStoreNotReady(t *testing.T) {
	h, store := newTestHandler(t, nil)
	store.SetReady(false)
	requests := []struct{ method, target, body string }{
		{http.MethodPost, "/api/add", `{"title":"Dune","author":"Herbert"}`},
		{http.MethodPut, "/api/edit/1", `{"title":"x"}`},
		{http.MethodDelete, "/api/delete/1", ""},
		{http.MethodGet, "/api/all", ""},
		{http.MethodGet, "/api/all-unfiltered", ""},
		{http.MethodGet, "/api/1", ""},
	}
	for _, req := range requests {
		rr, body := do(t, h, req.method, req.target, req.body)
		assert.Equal(t, http.StatusServiceUnavailable, rr.Code, req.target)
		assert.Equal(t, "Database not ready, please try again", body["message"], req.target)
	}

	rr, body := do(t, h, http.MethodGet, "/healthcheck", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, false, body["ready"])
	assert.Equal(t, "degraded", body["status"])
}

func TestStoreTimeout(t *testing.T) {
	h, _ := newTestHandler(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := httptest.NewRequest(http.MethodGet, "/api/all-unfiltered", nil).WithContext(ctx)
	rr, body := send(t, h, r)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Equal(t, "Database connection timed out", body["message"])
	assert.NotEmpty(t, body["error"])
}

func noteContents(book map[string]interface{}) []interface{} {
	out := []interface{}{}
	for _, n := range book["notes"].([]interface{}) {
		out = append(out, n.(map[string]interface{})["content"])
	}
	return out
}
