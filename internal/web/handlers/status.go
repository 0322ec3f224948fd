package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// StatusHandler serves the banner, health check and archive job lookups.
type StatusHandler struct {
	queue *ArchiveQueue
}

func NewStatusHandler(queue *ArchiveQueue) *StatusHandler {
	return &StatusHandler{queue: queue}
}

// Root handles GET /.
func (h *StatusHandler) Root(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Face Attendance API is running",
	})
}

// Health handles GET /healthz.
func (h *StatusHandler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Jobs handles GET /jobs, listing background archive jobs.
func (h *StatusHandler) Jobs(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"jobs": h.queue.Jobs()})
}

// Job handles GET /jobs/{id}.
func (h *StatusHandler) Job(w http.ResponseWriter, r *http.Request) {
	job := h.queue.Job(chi.URLParam(r, "id"))
	if job == nil {
		respondError(w, http.StatusNotFound, "job not found")
		return
	}
	respondJSON(w, http.StatusOK, job)
}
