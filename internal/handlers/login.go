package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"gorm.io/gorm"

	applog "bakeshop/internal/log"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	UserID   uint   `json:"user_id"`
	BakeryID uint   `json:"bakery_id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

// Login processes sign-in submissions and establishes a session cookie.
func Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if sessionManager == nil || database == nil {
		applog.Debug(r.Context(), "authentication dependencies unavailable", "hasSession", sessionManager != nil, "hasDatabase", database != nil)
		writeJSONError(w, http.StatusServiceUnavailable, "authentication not available")
		return
	}

	var payload loginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(r.Context(), "invalid login payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	email := strings.TrimSpace(payload.Email)
	if email == "" || payload.Password == "" {
		writeJSONError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	user, err := authenticate(r, email, payload.Password)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSONError(w, http.StatusUnauthorized, "invalid email or password")
			return
		}
		applog.Error(r.Context(), "failed to sign user in", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to sign in")
		return
	}

	applog.Debug(r.Context(), "authentication succeeded", "email", strings.ToLower(email))
	writeJSON(w, http.StatusOK, sessionResponse{
		UserID:   user.ID,
		BakeryID: user.BakeryID,
		Email:    user.Email,
		Name:     user.Name,
		Role:     user.Role,
	})
}
