package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	applog "bakeshop/internal/log"
	"bakeshop/models"
)

type signupRequest struct {
	BakeryName string `json:"bakery_name"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	Password   string `json:"password"`
}

// Signup registers a new bakery together with its owner account and signs the
// owner in.
func Signup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if sessionManager == nil || database == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "registration not available")
		return
	}

	var payload signupRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(r.Context(), "invalid signup payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	bakeryName := strings.TrimSpace(payload.BakeryName)
	email := strings.ToLower(strings.TrimSpace(payload.Email))
	if bakeryName == "" || email == "" || len(payload.Password) < 8 {
		writeJSONError(w, http.StatusBadRequest, "bakery name, email and a password of at least 8 characters are required")
		return
	}

	var existing int64
	if err := database.WithContext(r.Context()).Model(&models.User{}).Where("lower(email) = ?", email).Count(&existing).Error; err != nil {
		applog.Error(r.Context(), "failed to check email availability", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to register")
		return
	}
	if existing > 0 {
		writeJSONError(w, http.StatusConflict, "an account with this email already exists")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		applog.Error(r.Context(), "failed to hash password", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to register")
		return
	}

	user := &models.User{
		Email:        email,
		Name:         strings.TrimSpace(payload.Name),
		PasswordHash: string(hashed),
		Role:         models.RoleOwner,
	}

	err = database.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		bakery := &models.Bakery{Name: bakeryName}
		if err := tx.Create(bakery).Error; err != nil {
			return err
		}
		user.BakeryID = bakery.ID
		return tx.Create(user).Error
	})
	if err != nil {
		applog.Error(r.Context(), "failed to register bakery", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to register")
		return
	}

	if err := establishSession(r, user); err != nil {
		applog.Error(r.Context(), "failed to establish session after signup", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to sign in")
		return
	}

	writeJSON(w, http.StatusCreated, sessionResponse{
		UserID:   user.ID,
		BakeryID: user.BakeryID,
		Email:    user.Email,
		Name:     user.Name,
		Role:     user.Role,
	})
}
