package handler

import (
	"fmt"
	"net/http"
)

func (h *Handler) logError(r *http.Request, err error) {
	properties := map[string]string{
		"request_method": r.Method,
		"request_url":    r.URL.String(),
	}
	if id := h.contextGetRequestID(r); id != "" {
		properties["request_id"] = id
	}
	h.logger.PrintError(err, properties)
}

// errorResponse writes the {"message": ..., "error": ...} error body. detail
// is omitted when nil.
func (h *Handler) errorResponse(w http.ResponseWriter, r *http.Request, status int, message string, detail interface{}) {
	env := envelope{"message": message}
	if detail != nil {
		env["error"] = detail
	}
	err := h.encodeJSON(w, status, env, nil)
	if err != nil {
		h.logError(r, err)
		w.WriteHeader(500)
	}
}

func (h *Handler) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	h.operationFailedResponse(w, r, "the server encountered a problem and could not process your request", err)
}

// operationFailedResponse logs err and sends a 500 carrying a message naming
// the failed operation.
func (h *Handler) operationFailedResponse(w http.ResponseWriter, r *http.Request, message string, err error) {
	h.logError(r, err)
	h.errorResponse(w, r, http.StatusInternalServerError, message, nil)
}

func (h *Handler) notFoundResponse(w http.ResponseWriter, r *http.Request) {
	message := "the requested resource could not be found"
	h.errorResponse(w, r, http.StatusNotFound, message, nil)
}

func (h *Handler) bookNotFoundResponse(w http.ResponseWriter, r *http.Request) {
	h.errorResponse(w, r, http.StatusNotFound, "Book not found", nil)
}

func (h *Handler) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	message := fmt.Sprintf("the %s method is not supported for this resource", r.Method)
	h.errorResponse(w, r, http.StatusMethodNotAllowed, message, nil)
}

func (h *Handler) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	h.errorResponse(w, r, http.StatusBadRequest, err.Error(), nil)
}

func (h *Handler) invalidNotesResponse(w http.ResponseWriter, r *http.Request) {
	h.errorResponse(w, r, http.StatusBadRequest, "Notes must be an array", nil)
}

func (h *Handler) failedValidationResponse(w http.ResponseWriter, r *http.Request, errors map[string]string) {
	h.errorResponse(w, r, http.StatusBadRequest, "Validation failed", errors)
}

func (h *Handler) storeNotReadyResponse(w http.ResponseWriter, r *http.Request) {
	h.errorResponse(w, r, http.StatusServiceUnavailable, "Database not ready, please try again", nil)
}

func (h *Handler) storeTimeoutResponse(w http.ResponseWriter, r *http.Request, err error) {
	h.logError(r, err)
	h.errorResponse(w, r, http.StatusServiceUnavailable, "Database connection timed out", "the database did not respond in time, please try again")
}

func (h *Handler) rateLimitExceededResponse(w http.ResponseWriter, r *http.Request) {
	message := "rate limit exceeded"
	h.errorResponse(w, r, http.StatusTooManyRequests, message, nil)
}

func (h *Handler) invalidCredentialsResponse(w http.ResponseWriter, r *http.Request) {
	message := "invalid authentication credentials"
	h.errorResponse(w, r, http.StatusUnauthorized, message, nil)
}
