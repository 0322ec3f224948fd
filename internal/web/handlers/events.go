package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nccpresi/attendance-backend/internal/database"
	"github.com/nccpresi/attendance-backend/internal/reporting"
)

// EventsHandler serves event creation and lifecycle queries.
type EventsHandler struct {
	events     database.EventStore
	attendance database.AttendanceStore
	cadets     database.CadetStore
}

func NewEventsHandler(events database.EventStore, attendance database.AttendanceStore, cadets database.CadetStore) *EventsHandler {
	return &EventsHandler{events: events, attendance: attendance, cadets: cadets}
}

type createEventRequest struct {
	Title string `json:"title"`
	Type  string `json:"type"`
	Date  string `json:"date"`
	Time  string `json:"time"`
}

// Create handles POST /create_event. Event ids are derived from the
// creation time; no uniqueness check against other active events, the
// active-event query resolves by latest created_at.
func (h *EventsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Title == "" {
		respondError(w, http.StatusBadRequest, "title is required")
		return
	}
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		respondError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}
	if _, err := time.Parse("15:04", req.Time); err != nil {
		respondError(w, http.StatusBadRequest, "time must be HH:MM")
		return
	}

	now := time.Now()
	event := database.Event{
		EventID:   fmt.Sprintf("EVT-%d", now.Unix()),
		Title:     req.Title,
		EventType: req.Type,
		Date:      req.Date,
		Time:      req.Time,
		Status:    database.EventStatusActive,
		CreatedAt: now,
	}

	if err := h.events.Create(r.Context(), event); err != nil {
		log.Printf("could not create event: %v", err)
		respondError(w, http.StatusInternalServerError, "could not create event")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message":  "Event created successfully",
		"event_id": event.EventID,
	})
}

// Active handles GET /active_event. Reports the most recently created
// Active event dated today, with live attendance stats.
func (h *EventsHandler) Active(w http.ResponseWriter, r *http.Request) {
	event, err := h.events.CurrentActive(r.Context(), time.Now().Format("2006-01-02"))
	if err != nil {
		log.Printf("could not load active event: %v", err)
		respondError(w, http.StatusInternalServerError, "could not load active event")
		return
	}
	if event == nil {
		respondJSON(w, http.StatusOK, map[string]any{"active": false})
		return
	}

	logs, err := h.attendance.ForEvent(r.Context(), event.EventID)
	if err != nil {
		log.Printf("could not load attendance for %s: %v", event.EventID, err)
		respondError(w, http.StatusInternalServerError, "could not load attendance")
		return
	}
	cadets, err := h.cadets.List(r.Context())
	if err != nil {
		log.Printf("could not load cadets: %v", err)
		respondError(w, http.StatusInternalServerError, "could not load cadets")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"active": true,
		"event":  event,
		"stats":  reporting.ComputeEventStats(logs, cadets),
	})
}

// End handles POST /end_event. Ending with no active event is a normal
// outcome, not an error.
func (h *EventsHandler) End(w http.ResponseWriter, r *http.Request) {
	event, err := h.events.EndCurrent(r.Context(), time.Now().Format("2006-01-02"))
	if err != nil {
		log.Printf("could not end event: %v", err)
		respondError(w, http.StatusInternalServerError, "could not end event")
		return
	}
	if event == nil {
		respondJSON(w, http.StatusOK, map[string]string{"message": "No active event found"})
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Event ended successfully"})
}

// List handles GET /events?limit=. Events come back newest first with
// attendance counts; without a limit the full history is returned.
func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			limit = n
		}
	}

	events, err := h.events.List(r.Context(), limit)
	if err != nil {
		log.Printf("could not list events: %v", err)
		respondError(w, http.StatusInternalServerError, "could not list events")
		return
	}
	if events == nil {
		events = []database.Event{}
	}

	respondJSON(w, http.StatusOK, events)
}

// Details handles GET /events/{id}.
func (h *EventsHandler) Details(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "id")

	event, err := h.events.Get(r.Context(), eventID)
	if err != nil {
		log.Printf("could not load event %s: %v", sanitizeForLog(eventID), err)
		respondError(w, http.StatusInternalServerError, "could not load event")
		return
	}
	if event == nil {
		respondError(w, http.StatusNotFound, "event not found")
		return
	}

	total, err := h.cadets.Count(r.Context())
	if err != nil {
		log.Printf("could not count cadets: %v", err)
		respondError(w, http.StatusInternalServerError, "could not count cadets")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"event":        event,
		"total_cadets": total,
	})
}
