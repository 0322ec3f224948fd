package handlers

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nccpresi/attendance-backend/internal/database"
	"github.com/nccpresi/attendance-backend/internal/reporting"
)

// AttendanceHandler serves the attendance ledger endpoints.
type AttendanceHandler struct {
	attendance database.AttendanceStore
	events     database.EventStore
	cadets     database.CadetStore
}

func NewAttendanceHandler(attendance database.AttendanceStore, events database.EventStore, cadets database.CadetStore) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance, events: events, cadets: cadets}
}

// Log handles POST /log_attendance. A repeated mark for the same cadet
// and event is a normal response with duplicate=true, not an error.
func (h *AttendanceHandler) Log(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondError(w, http.StatusBadRequest, "invalid form")
		return
	}

	name := r.FormValue("name")
	regNo := r.FormValue("reg_no")
	eventID := r.FormValue("event_id")
	status := r.FormValue("status")

	if regNo == "" || eventID == "" {
		respondError(w, http.StatusBadRequest, "reg_no and event_id are required")
		return
	}
	if status == "" {
		status = database.StatusPresent
	}

	created, err := h.attendance.Log(r.Context(), database.AttendanceLog{
		EventID:      eventID,
		EnrollmentID: regNo,
		Status:       status,
		Timestamp:    time.Now(),
	})
	if err != nil {
		log.Printf("could not log attendance for %s at %s: %v",
			sanitizeForLog(regNo), sanitizeForLog(eventID), err)
		respondError(w, http.StatusInternalServerError, "could not log attendance")
		return
	}

	if !created {
		respondJSON(w, http.StatusOK, map[string]any{
			"message":   "Attendance already marked",
			"duplicate": true,
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"message":   fmt.Sprintf("Attendance logged for %s", name),
		"duplicate": false,
	})
}

// attendanceRow is one roster line of the per-event attendance sheet.
type attendanceRow struct {
	EnrollmentID string `json:"enrollment_id"`
	Name         string `json:"name"`
	Year         string `json:"year"`
	Status       string `json:"status"`
	Timestamp    string `json:"timestamp,omitempty"`
}

// ForEvent handles GET /event_attendance/{id}. Every cadet gets a row;
// those without a ledger entry are reported Absent.
func (h *AttendanceHandler) ForEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "id")

	logs, err := h.attendance.ForEvent(r.Context(), eventID)
	if err != nil {
		log.Printf("could not load attendance for %s: %v", sanitizeForLog(eventID), err)
		respondError(w, http.StatusInternalServerError, "could not load attendance")
		return
	}
	cadets, err := h.cadets.List(r.Context())
	if err != nil {
		log.Printf("could not load cadets: %v", err)
		respondError(w, http.StatusInternalServerError, "could not load cadets")
		return
	}

	marked := make(map[string]database.AttendanceLog, len(logs))
	for _, l := range logs {
		marked[l.EnrollmentID] = l
	}

	rows := make([]attendanceRow, 0, len(cadets))
	for _, c := range cadets {
		row := attendanceRow{
			EnrollmentID: c.EnrollmentID,
			Name:         c.Name,
			Year:         c.Year,
			Status:       "Absent",
		}
		if l, ok := marked[c.EnrollmentID]; ok {
			row.Status = l.Status
			row.Timestamp = l.Timestamp.Format(time.RFC3339)
		}
		rows = append(rows, row)
	}

	respondJSON(w, http.StatusOK, rows)
}

// ODs handles GET /event_ods?event_id=. Lists the ledger rows whose
// status is anything but Present.
func (h *AttendanceHandler) ODs(w http.ResponseWriter, r *http.Request) {
	eventID := r.URL.Query().Get("event_id")
	if eventID == "" {
		respondError(w, http.StatusBadRequest, "event_id is required")
		return
	}

	logs, err := h.attendance.NonPresentForEvent(r.Context(), eventID)
	if err != nil {
		log.Printf("could not load OD list for %s: %v", sanitizeForLog(eventID), err)
		respondError(w, http.StatusInternalServerError, "could not load OD list")
		return
	}

	rows := make([]attendanceRow, 0, len(logs))
	for _, l := range logs {
		row := attendanceRow{
			EnrollmentID: l.EnrollmentID,
			Status:       l.Status,
			Timestamp:    l.Timestamp.Format(time.RFC3339),
		}
		if cadet, err := h.cadets.Get(r.Context(), l.EnrollmentID); err == nil && cadet != nil {
			row.Name = cadet.Name
			row.Year = cadet.Year
		}
		rows = append(rows, row)
	}

	respondJSON(w, http.StatusOK, rows)
}

// Summary handles GET /attendance-summary.
func (h *AttendanceHandler) Summary(w http.ResponseWriter, r *http.Request) {
	cadets, err := h.cadets.List(r.Context())
	if err != nil {
		log.Printf("could not load cadets: %v", err)
		respondError(w, http.StatusInternalServerError, "could not load cadets")
		return
	}
	events, err := h.events.List(r.Context(), 0)
	if err != nil {
		log.Printf("could not load events: %v", err)
		respondError(w, http.StatusInternalServerError, "could not load events")
		return
	}
	logs, err := h.attendance.All(r.Context())
	if err != nil {
		log.Printf("could not load attendance logs: %v", err)
		respondError(w, http.StatusInternalServerError, "could not load attendance logs")
		return
	}

	respondJSON(w, http.StatusOK, reporting.Summary(cadets, events, logs))
}
