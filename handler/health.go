package handler

import "net/http"

func (h *Handler) rootHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ShelfLog API is up and running!"))
}

func (h *Handler) healthcheckHandler(w http.ResponseWriter, r *http.Request) {
	ready := h.service.Ready()
	status := "available"
	if !ready {
		status = "degraded"
	}
	health := envelope{
		"status": status,
		"ready":  ready,
		"system_info": map[string]string{
			"environment": h.config.Server.Env,
			"version":     Version,
		},
	}
	err := h.encodeJSON(w, http.StatusOK, health, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}
