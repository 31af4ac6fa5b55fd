package handler

import (
	"expvar"
	"net/http"

	"github.com/julienschmidt/httprouter"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

func (h *Handler) Routes() http.Handler {
	router := httprouter.New()

	router.NotFound = http.HandlerFunc(h.notFoundResponse)
	router.MethodNotAllowed = http.HandlerFunc(h.methodNotAllowed)

	router.HandlerFunc(http.MethodGet, "/", h.rootHandler)

	router.HandlerFunc(http.MethodPost, "/api/add", h.requireReadyStore(h.addBookHandler))
	router.HandlerFunc(http.MethodPut, "/api/edit/:id", h.requireReadyStore(h.editBookHandler))
	router.HandlerFunc(http.MethodDelete, "/api/delete/:id", h.requireReadyStore(h.deleteBookHandler))
	// GET /api/all and /api/all-unfiltered share this route with GET /api/:id;
	// showBookHandler dispatches on the parameter.
	router.HandlerFunc(http.MethodGet, "/api/:id", h.requireReadyStore(h.showBookHandler))

	router.HandlerFunc(http.MethodGet, "/healthcheck", h.healthcheckHandler)
	router.HandlerFunc(http.MethodGet, "/debug/vars", h.basicAuth(expvar.Handler().ServeHTTP))

	// Swagger routes
	router.HandlerFunc(http.MethodGet, "/spec", h.handleSwaggerFile())
	router.HandlerFunc(http.MethodGet, "/docs/*any", httpSwagger.Handler(httpSwagger.URL("/spec")))

	return h.metrics(h.requestID(h.recoverPanic(h.enableCORS(h.rateLimit(router)))))
}
