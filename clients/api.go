package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/emzola/shelflog/data"
	"github.com/emzola/shelflog/data/dto"
	"github.com/emzola/shelflog/internal/jsonlog"
)

// APIError is returned for every non-2xx response of the ShelfLog API.
type APIError struct {
	StatusCode int
	Message    string
	// Detail is the optional "error" member of the response body.
	Detail json.RawMessage
}

func (e *APIError) Error() string {
	if len(e.Detail) > 0 {
		return fmt.Sprintf("%d %s: %s", e.StatusCode, e.Message, e.Detail)
	}
	return fmt.Sprintf("%d %s", e.StatusCode, e.Message)
}

// API is a typed client for the ShelfLog HTTP API.
type API struct {
	baseURL string
	client  *http.Client
	logger  *jsonlog.Logger
}

// NewAPI creates an API client for the server at baseURL. logger may be nil.
func NewAPI(baseURL string, client *http.Client, logger *jsonlog.Logger) *API {
	if client == nil {
		client = NewHTTPClient(0)
	}
	return &API{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		logger:  logger,
	}
}

// ListAll fetches every book.
func (a *API) ListAll(ctx context.Context) (*dto.ListBooksResponse, error) {
	var out dto.ListBooksResponse
	if err := a.do(ctx, http.MethodGet, "/api/all-unfiltered", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// List fetches the books matching filters. Empty filters are not sent.
func (a *API) List(ctx context.Context, filters data.Filters) (*dto.ListBooksResponse, error) {
	qs := url.Values{}
	if filters.Status != "" {
		qs.Set("status", string(filters.Status))
	}
	if filters.Category != "" {
		qs.Set("category", filters.Category)
	}
	if filters.Title != "" {
		qs.Set("title", filters.Title)
	}
	path := "/api/all"
	if len(qs) > 0 {
		path += "?" + qs.Encode()
	}
	var out dto.ListBooksResponse
	if err := a.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Get fetches a single book.
func (a *API) Get(ctx context.Context, id string) (*data.Book, error) {
	var out data.Book
	if err := a.do(ctx, http.MethodGet, "/api/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Add creates a book.
func (a *API) Add(ctx context.Context, body dto.CreateBookRequestBody) (*dto.BookResponse, error) {
	var out dto.BookResponse
	if err := a.do(ctx, http.MethodPost, "/api/add", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Edit updates the fields set in body.
func (a *API) Edit(ctx context.Context, id string, body dto.UpdateBookRequestBody) (*dto.BookResponse, error) {
	var out dto.BookResponse
	if err := a.do(ctx, http.MethodPut, "/api/edit/"+url.PathEscape(id), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes a book and returns the server's confirmation message.
func (a *API) Delete(ctx context.Context, id string) (string, error) {
	var out struct {
		Message string `json:"message"`
	}
	if err := a.do(ctx, http.MethodDelete, "/api/delete/"+url.PathEscape(id), nil, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

func (a *API) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		js, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(js)
	}
	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	res, err := a.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if a.logger != nil {
		a.logger.PrintDebug("api request", map[string]string{
			"method": method,
			"url":    req.URL.String(),
			"status": res.Status,
		})
	}
	if res.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{StatusCode: res.StatusCode, Message: http.StatusText(res.StatusCode)}
		var errBody dto.ErrorResponse
		if err := json.NewDecoder(res.Body).Decode(&errBody); err == nil {
			if errBody.Message != "" {
				apiErr.Message = errBody.Message
			}
			apiErr.Detail = errBody.Error
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s %s response: %w", method, path, err)
	}
	return nil
}
