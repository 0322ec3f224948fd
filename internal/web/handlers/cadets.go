package handlers

import (
	"log"
	"net/http"

	"github.com/nccpresi/attendance-backend/internal/database"
	"github.com/nccpresi/attendance-backend/internal/reporting"
)

// CadetsHandler serves the roster endpoints.
type CadetsHandler struct {
	cadets database.CadetStore
}

func NewCadetsHandler(cadets database.CadetStore) *CadetsHandler {
	return &CadetsHandler{cadets: cadets}
}

// List handles GET /cadets.
func (h *CadetsHandler) List(w http.ResponseWriter, r *http.Request) {
	cadets, err := h.cadets.List(r.Context())
	if err != nil {
		log.Printf("could not load cadets: %v", err)
		respondError(w, http.StatusInternalServerError, "could not load cadets")
		return
	}
	if cadets == nil {
		cadets = []database.Cadet{}
	}

	respondJSON(w, http.StatusOK, cadets)
}

// Strength handles GET /strength. The headcount is computed from the
// roster, split by study year and SD/SW wing.
func (h *CadetsHandler) Strength(w http.ResponseWriter, r *http.Request) {
	cadets, err := h.cadets.List(r.Context())
	if err != nil {
		log.Printf("could not load cadets: %v", err)
		respondError(w, http.StatusInternalServerError, "could not load cadets")
		return
	}

	respondJSON(w, http.StatusOK, reporting.ComputeStrength(cadets))
}
