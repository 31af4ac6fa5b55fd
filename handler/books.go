package handler

import (
	"errors"
	"net/http"

	"github.com/emzola/shelflog/data"
	"github.com/emzola/shelflog/data/dto"
	"github.com/emzola/shelflog/service"
)

func (h *Handler) addBookHandler(w http.ResponseWriter, r *http.Request) {
	var requestBody dto.CreateBookRequestBody
	err := h.decodeJSON(w, r, &requestBody)
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	book, err := h.service.AddBook(r.Context(), requestBody)
	if err != nil {
		var validationErr *service.ValidationError
		switch {
		case errors.As(err, &validationErr):
			h.failedValidationResponse(w, r, validationErr.Errors)
		case errors.Is(err, service.ErrInvalidNotes):
			h.invalidNotesResponse(w, r)
		case errors.Is(err, service.ErrUnavailable):
			h.storeTimeoutResponse(w, r, err)
		default:
			h.operationFailedResponse(w, r, "Error adding book", err)
		}
		return
	}
	headers := make(http.Header)
	headers.Set("Location", "/api/"+book.ID)
	err = h.encodeJSON(w, http.StatusCreated, envelope{"message": "Book added successfully", "book": book}, headers)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// showBookHandler serves GET /api/:id. The reserved ids "all" and
// "all-unfiltered" select the listing endpoints.
func (h *Handler) showBookHandler(w http.ResponseWriter, r *http.Request) {
	bookID := h.readIDParam(r)
	switch bookID {
	case "all":
		h.listBooksHandler(w, r)
		return
	case "all-unfiltered":
		h.listAllBooksHandler(w, r)
		return
	}
	book, err := h.service.GetBook(r.Context(), bookID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRecordNotFound):
			h.bookNotFoundResponse(w, r)
		case errors.Is(err, service.ErrUnavailable):
			h.storeTimeoutResponse(w, r, err)
		default:
			h.operationFailedResponse(w, r, "Error fetching book", err)
		}
		return
	}
	err = h.encodeJSON(w, http.StatusOK, book, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

func (h *Handler) listBooksHandler(w http.ResponseWriter, r *http.Request) {
	qs := r.URL.Query()
	filters := data.Filters{
		Status:   data.Status(h.readString(qs, "status", "")),
		Category: h.readString(qs, "category", ""),
		Title:    h.readString(qs, "title", ""),
	}
	books, err := h.service.ListBooks(r.Context(), filters)
	if err != nil {
		var validationErr *service.ValidationError
		switch {
		case errors.As(err, &validationErr):
			h.failedValidationResponse(w, r, validationErr.Errors)
		case errors.Is(err, service.ErrUnavailable):
			h.storeTimeoutResponse(w, r, err)
		default:
			h.operationFailedResponse(w, r, "Error fetching books", err)
		}
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"count": len(books), "books": books}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

func (h *Handler) listAllBooksHandler(w http.ResponseWriter, r *http.Request) {
	books, err := h.service.ListAllBooks(r.Context())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnavailable):
			h.storeTimeoutResponse(w, r, err)
		default:
			h.operationFailedResponse(w, r, "Error fetching books", err)
		}
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"count": len(books), "books": books}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

func (h *Handler) editBookHandler(w http.ResponseWriter, r *http.Request) {
	bookID := h.readIDParam(r)
	var requestBody dto.UpdateBookRequestBody
	err := h.decodeJSON(w, r, &requestBody)
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	book, err := h.service.UpdateBook(r.Context(), bookID, requestBody)
	if err != nil {
		var validationErr *service.ValidationError
		switch {
		case errors.As(err, &validationErr):
			h.failedValidationResponse(w, r, validationErr.Errors)
		case errors.Is(err, service.ErrInvalidNotes):
			h.invalidNotesResponse(w, r)
		case errors.Is(err, service.ErrRecordNotFound):
			h.bookNotFoundResponse(w, r)
		case errors.Is(err, service.ErrUnavailable):
			h.storeTimeoutResponse(w, r, err)
		default:
			h.operationFailedResponse(w, r, "Error updating book", err)
		}
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"message": "Book updated successfully", "book": book}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

func (h *Handler) deleteBookHandler(w http.ResponseWriter, r *http.Request) {
	bookID := h.readIDParam(r)
	err := h.service.DeleteBook(r.Context(), bookID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRecordNotFound):
			h.bookNotFoundResponse(w, r)
		case errors.Is(err, service.ErrUnavailable):
			h.storeTimeoutResponse(w, r, err)
		default:
			h.operationFailedResponse(w, r, "Error deleting book", err)
		}
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"message": "Book deleted successfully"}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}
