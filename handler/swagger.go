package handler

import (
	"net/http"

	"github.com/emzola/shelflog/docs"
)

// handleSwaggerFile serves the embedded OpenAPI document.
func (h *Handler) handleSwaggerFile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write(docs.Swagger)
	}
}
