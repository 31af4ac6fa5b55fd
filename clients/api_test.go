package clients

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/emzola/shelflog/data"
	"github.com/emzola/shelflog/data/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIList(t *testing.T) {
	var gotQuery string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/all", r.URL.Path)
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"count":1,"books":[{"id":"1","title":"Dune","author":"Herbert","category":"General","status":"reading","notes":[]}]}`))
	}))
	defer ts.Close()

	api := NewAPI(ts.URL+"/", ts.Client(), nil)
	res, err := api.List(context.Background(), data.Filters{Status: data.StatusReading, Title: "du ne"})
	require.NoError(t, err)
	assert.Equal(t, "status=reading&title=du+ne", gotQuery)
	require.Equal(t, 1, res.Count)
	assert.Equal(t, "Dune", res.Books[0].Title)
}

func TestAPIAddSendsBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		b, _ := io.ReadAll(r.Body)
		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(b, &body))
		assert.Equal(t, "Dune", body["title"])
		assert.Equal(t, []interface{}{map[string]interface{}{"content": "first"}}, body["notes"])
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"message":"Book added successfully","book":{"id":"7","title":"Dune","author":"Herbert","notes":[]}}`))
	}))
	defer ts.Close()

	api := NewAPI(ts.URL, ts.Client(), nil)
	res, err := api.Add(context.Background(), dto.CreateBookRequestBody{
		Title:  "Dune",
		Author: "Herbert",
		Notes:  dto.NotesOf([]data.Note{{Content: "first"}}),
	})
	require.NoError(t, err)
	assert.Equal(t, "Book added successfully", res.Message)
	require.NotNil(t, res.Book)
	assert.Equal(t, "7", res.Book.ID)
}

func TestAPIErrorResponse(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"Validation failed","error":{"title":"must be provided"}}`))
	}))
	defer ts.Close()

	_, err := NewAPI(ts.URL, ts.Client(), nil).Edit(context.Background(), "1", dto.UpdateBookRequestBody{})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "Validation failed", apiErr.Message)
	assert.JSONEq(t, `{"title":"must be provided"}`, string(apiErr.Detail))
}

func TestAPIErrorWithoutBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/delete/a%2Fb", r.URL.EscapedPath())
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	_, err := NewAPI(ts.URL, ts.Client(), nil).Delete(context.Background(), "a/b")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Not Found", apiErr.Message)
	assert.Equal(t, "404 Not Found", apiErr.Error())
}

func TestRedirectPolicy(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "http://example.com/x", nil)
	assert.NoError(t, redirectPolicyFunc(req, []*http.Request{req}))
	assert.Error(t, redirectPolicyFunc(req, []*http.Request{req, req}))
}
