package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"bakeshop/models"
)

func TestLoginSuccess(t *testing.T) {
	sm, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)
	_, cleanupDB := withTestDatabase(t)
	t.Cleanup(cleanupDB)

	seedReq := httptest.NewRequest(http.MethodPost, "/signup", nil)
	if _, err := createUser(seedReq, 5, "owner@example.com", "Owner", "croissant-crumbs", "owner"); err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}

	body, _ := json.Marshal(loginRequest{Email: "owner@example.com", Password: "croissant-crumbs"})
	req := sessionRequest(t, sm, http.MethodPost, "/login")
	req.Body = httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(body)).Body

	w := httptest.NewRecorder()
	Login(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var response sessionResponse
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.BakeryID != 5 || response.Email != "owner@example.com" {
		t.Fatalf("unexpected session payload: %+v", response)
	}
	if got := sm.GetInt(req.Context(), sessionBakeryIDKey); got != 5 {
		t.Fatalf("expected session bakery id 5, got %d", got)
	}
}

func TestLoginBadCredentials(t *testing.T) {
	sm, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)
	_, cleanupDB := withTestDatabase(t)
	t.Cleanup(cleanupDB)

	seedReq := httptest.NewRequest(http.MethodPost, "/signup", nil)
	if _, err := createUser(seedReq, 1, "owner@example.com", "Owner", "croissant-crumbs", "owner"); err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}

	body, _ := json.Marshal(loginRequest{Email: "owner@example.com", Password: "wrong"})
	req := sessionRequest(t, sm, http.MethodPost, "/login")
	req.Body = httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(body)).Body

	w := httptest.NewRecorder()
	Login(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad password, got %d", w.Code)
	}
}

func TestLoginValidation(t *testing.T) {
	sm, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)
	_, cleanupDB := withTestDatabase(t)
	t.Cleanup(cleanupDB)

	body, _ := json.Marshal(loginRequest{Email: "", Password: ""})
	req := sessionRequest(t, sm, http.MethodPost, "/login")
	req.Body = httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(body)).Body

	w := httptest.NewRecorder()
	Login(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty credentials, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/login", nil)
	w = httptest.NewRecorder()
	Login(w, req)
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 for GET, got %d", w.Code)
	}
}

func TestSignupCreatesBakeryAndOwner(t *testing.T) {
	sm, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)
	db, cleanupDB := withTestDatabase(t)
	t.Cleanup(cleanupDB)

	body, _ := json.Marshal(signupRequest{
		BakeryName: "Hearthside",
		Email:      "Owner@Example.com",
		Name:       "Owner",
		Password:   "croissant-crumbs",
	})
	req := sessionRequest(t, sm, http.MethodPost, "/signup")
	req.Body = httptest.NewRequest(http.MethodPost, "/signup", bytes.NewReader(body)).Body

	w := httptest.NewRecorder()
	Signup(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var response sessionResponse
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Email != "owner@example.com" {
		t.Fatalf("expected lowercased email, got %q", response.Email)
	}
	if response.Role != models.RoleOwner {
		t.Fatalf("expected owner role, got %q", response.Role)
	}
	if response.BakeryID == 0 {
		t.Fatal("expected bakery id to be assigned")
	}

	var bakery models.Bakery
	if err := db.First(&bakery, response.BakeryID).Error; err != nil {
		t.Fatalf("failed to load bakery: %v", err)
	}
	if bakery.Name != "Hearthside" {
		t.Fatalf("unexpected bakery name %q", bakery.Name)
	}

	if !sm.GetBool(req.Context(), sessionAuthenticatedKey) {
		t.Fatal("expected signup to establish a session")
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	sm, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)
	_, cleanupDB := withTestDatabase(t)
	t.Cleanup(cleanupDB)

	seedReq := httptest.NewRequest(http.MethodPost, "/signup", nil)
	if _, err := createUser(seedReq, 1, "owner@example.com", "Owner", "croissant-crumbs", "owner"); err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}

	body, _ := json.Marshal(signupRequest{
		BakeryName: "Second Oven",
		Email:      "owner@example.com",
		Name:       "Copycat",
		Password:   "croissant-crumbs",
	})
	req := sessionRequest(t, sm, http.MethodPost, "/signup")
	req.Body = httptest.NewRequest(http.MethodPost, "/signup", bytes.NewReader(body)).Body

	w := httptest.NewRecorder()
	Signup(w, req)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate email, got %d", w.Code)
	}
}

func TestSignupShortPassword(t *testing.T) {
	sm, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)
	_, cleanupDB := withTestDatabase(t)
	t.Cleanup(cleanupDB)

	body, _ := json.Marshal(signupRequest{
		BakeryName: "Hearthside",
		Email:      "owner@example.com",
		Name:       "Owner",
		Password:   "short",
	})
	req := sessionRequest(t, sm, http.MethodPost, "/signup")
	req.Body = httptest.NewRequest(http.MethodPost, "/signup", bytes.NewReader(body)).Body

	w := httptest.NewRecorder()
	Signup(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for short password, got %d", w.Code)
	}
}
