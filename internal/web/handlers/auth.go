package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/nccpresi/attendance-backend/internal/sheets"
)

// Authenticator checks a username/password pair against the credentials
// backend. A nil credential with a nil error means no match.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (*sheets.Credential, error)
}

// AuthHandler serves the staff login endpoint.
type AuthHandler struct {
	auth Authenticator
}

// NewAuthHandler creates the handler. auth may be nil when the
// credentials backend is not configured; logins then fail with 500.
func NewAuthHandler(auth Authenticator) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login handles POST /login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	if h.auth == nil {
		respondError(w, http.StatusInternalServerError, "credentials backend not configured")
		return
	}

	cred, err := h.auth.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		log.Printf("could not check credentials for %s: %v", sanitizeForLog(req.Username), err)
		respondError(w, http.StatusInternalServerError, "could not check credentials")
		return
	}
	if cred == nil {
		respondError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"role":     cred.Role,
		"name":     cred.Name,
		"username": cred.Username,
	})
}
