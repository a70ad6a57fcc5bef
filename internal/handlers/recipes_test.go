package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"bakeshop/internal/recipes"
	"bakeshop/models"
)

func TestRecipeCreateSnapshotsIngredients(t *testing.T) {
	sm, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)
	db, cleanupDB := withTestDatabase(t)
	t.Cleanup(cleanupDB)

	flour := seedTestIngredient(t, db, 1, "Flour", 0.002)

	payload := recipeCreateRequest{
		Name: "Baguette",
		Ingredients: []recipeIngredientPayload{
			{IngredientID: flour.ID, Quantity: 1000},
		},
		Steps:        []string{"mix", "proof", "bake"},
		BakingTemp:   240,
		BakingTime:   25,
		LaborCost:    10,
		OverheadCost: 5,
	}
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, "/app/api/recipes", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = authenticateRequest(t, sm, req, 1)

	w := httptest.NewRecorder()
	RecipeResource(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var created recipeResponse
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if created.Version != 1 {
		t.Fatalf("expected version 1, got %d", created.Version)
	}
	if len(created.Ingredients) != 1 {
		t.Fatalf("expected one composition line, got %d", len(created.Ingredients))
	}
	line := created.Ingredients[0]
	if line.Name != "Flour" || line.CostPerUnit != 0.002 || line.Cost != 2 {
		t.Fatalf("unexpected snapshot line: %+v", line)
	}
	if created.TotalCost != 17 {
		t.Fatalf("expected total cost 17, got %v", created.TotalCost)
	}
}

func TestRecipeCreateUnknownIngredient(t *testing.T) {
	sm, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)
	_, cleanupDB := withTestDatabase(t)
	t.Cleanup(cleanupDB)

	payload := recipeCreateRequest{
		Name: "Baguette",
		Ingredients: []recipeIngredientPayload{
			{IngredientID: 99, Quantity: 1000},
		},
	}
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, "/app/api/recipes", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = authenticateRequest(t, sm, req, 1)

	w := httptest.NewRecorder()
	RecipeResource(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown ingredient, got %d", w.Code)
	}
}

func TestRecipeShowNotFound(t *testing.T) {
	sm, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)
	_, cleanupDB := withTestDatabase(t)
	t.Cleanup(cleanupDB)

	req := httptest.NewRequest(http.MethodGet, "/app/api/recipes/42", nil)
	req = authenticateRequest(t, sm, req, 1)
	w := httptest.NewRecorder()
	RecipeResource(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestRecipeShowTenantIsolation(t *testing.T) {
	sm, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)
	db, cleanupDB := withTestDatabase(t)
	t.Cleanup(cleanupDB)

	flour := seedTestIngredient(t, db, 1, "Flour", 0.002)
	recipe := seedTestRecipe(t, 1, "Baguette", recipes.NewRecipeIngredient{IngredientID: flour.ID, Quantity: 1000})

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/app/api/recipes/%d", recipe.ID), nil)
	req = authenticateRequest(t, sm, req, 2)
	w := httptest.NewRecorder()
	RecipeResource(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for foreign bakery, got %d", w.Code)
	}
}

func TestRecipeUpdateCutsVersionAndHistory(t *testing.T) {
	sm, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)
	db, cleanupDB := withTestDatabase(t)
	t.Cleanup(cleanupDB)

	flour := seedTestIngredient(t, db, 1, "Flour", 0.002)
	sugar := seedTestIngredient(t, db, 1, "Sugar", 0.001)
	recipe := seedTestRecipe(t, 1, "Brioche", recipes.NewRecipeIngredient{IngredientID: flour.ID, Quantity: 1000})

	lines := []recipeIngredientPayload{
		{IngredientID: flour.ID, Name: "Flour", Quantity: 1000, Unit: "g", CostPerUnit: 0.002},
		{IngredientID: sugar.ID, Name: "Sugar", Quantity: 200, Unit: "g", CostPerUnit: 0.001},
	}
	body, _ := json.Marshal(recipeUpdateRequest{Ingredients: &lines})
	req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/app/api/recipes/%d", recipe.ID), bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = authenticateRequest(t, sm, req, 1)

	w := httptest.NewRecorder()
	RecipeResource(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var updated recipeResponse
	if err := json.Unmarshal(w.Body.Bytes(), &updated); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if updated.Version != 2 {
		t.Fatalf("expected version 2, got %d", updated.Version)
	}
	if len(updated.Ingredients) != 2 {
		t.Fatalf("expected two composition lines, got %d", len(updated.Ingredients))
	}

	req = httptest.NewRequest(http.MethodGet, fmt.Sprintf("/app/api/recipes/%d/history", recipe.ID), nil)
	req = authenticateRequest(t, sm, req, 1)
	w = httptest.NewRecorder()
	RecipeResource(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for history, got %d", w.Code)
	}

	var history []recipeVersionResponse
	if err := json.Unmarshal(w.Body.Bytes(), &history); err != nil {
		t.Fatalf("failed to decode history: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected one archived version, got %d", len(history))
	}
	if history[0].Version != 1 {
		t.Fatalf("expected archived version 1, got %d", history[0].Version)
	}
	if len(history[0].Ingredients) != 1 || history[0].Ingredients[0].IngredientID != flour.ID {
		t.Fatalf("history must hold the pre-update composition, got %+v", history[0].Ingredients)
	}
	if history[0].Timestamp.IsZero() {
		t.Fatal("expected history entry timestamp")
	}
}

func TestRecipeUpdateDescriptionOnly(t *testing.T) {
	sm, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)
	db, cleanupDB := withTestDatabase(t)
	t.Cleanup(cleanupDB)

	flour := seedTestIngredient(t, db, 1, "Flour", 0.002)
	recipe := seedTestRecipe(t, 1, "Ciabatta", recipes.NewRecipeIngredient{IngredientID: flour.ID, Quantity: 800})

	description := "High hydration."
	body, _ := json.Marshal(recipeUpdateRequest{Description: &description})
	req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/app/api/recipes/%d", recipe.ID), bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = authenticateRequest(t, sm, req, 1)

	w := httptest.NewRecorder()
	RecipeResource(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var updated recipeResponse
	if err := json.Unmarshal(w.Body.Bytes(), &updated); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if updated.Version != 1 {
		t.Fatalf("description change must not bump version, got %d", updated.Version)
	}
	if updated.Description != description {
		t.Fatalf("expected description applied, got %q", updated.Description)
	}
}

func TestRecipeUpdateInvalidPayload(t *testing.T) {
	sm, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)
	_, cleanupDB := withTestDatabase(t)
	t.Cleanup(cleanupDB)

	req := httptest.NewRequest(http.MethodPut, "/app/api/recipes/1", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	req = authenticateRequest(t, sm, req, 1)
	w := httptest.NewRecorder()
	RecipeResource(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed payload, got %d", w.Code)
	}
}

func TestRecipeDeleteBlockedByProducts(t *testing.T) {
	sm, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)
	db, cleanupDB := withTestDatabase(t)
	t.Cleanup(cleanupDB)

	flour := seedTestIngredient(t, db, 1, "Flour", 0.002)
	recipe := seedTestRecipe(t, 1, "Madeleine", recipes.NewRecipeIngredient{IngredientID: flour.ID, Quantity: 250})

	product := models.Product{BakeryID: 1, Name: "Madeleine Box", Price: 9.5, RecipeID: &recipe.ID, IsActive: true}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("failed to seed product: %v", err)
	}

	req := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/app/api/recipes/%d", recipe.ID), nil)
	req = authenticateRequest(t, sm, req, 1)
	w := httptest.NewRecorder()
	RecipeResource(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 while products reference the recipe, got %d", w.Code)
	}
}

func TestRecipeDeleteKeepsHistory(t *testing.T) {
	sm, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)
	db, cleanupDB := withTestDatabase(t)
	t.Cleanup(cleanupDB)

	flour := seedTestIngredient(t, db, 1, "Flour", 0.002)
	recipe := seedTestRecipe(t, 1, "Financier", recipes.NewRecipeIngredient{IngredientID: flour.ID, Quantity: 150})

	lines := []recipeIngredientPayload{
		{IngredientID: flour.ID, Name: "Flour", Quantity: 180, Unit: "g", CostPerUnit: 0.002},
	}
	body, _ := json.Marshal(recipeUpdateRequest{Ingredients: &lines})
	req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/app/api/recipes/%d", recipe.ID), bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = authenticateRequest(t, sm, req, 1)
	w := httptest.NewRecorder()
	RecipeResource(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for update, got %d: %s", w.Code, w.Body.String())
	}

	req = httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/app/api/recipes/%d", recipe.ID), nil)
	req = authenticateRequest(t, sm, req, 1)
	w = httptest.NewRecorder()
	RecipeResource(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, fmt.Sprintf("/app/api/recipes/%d", recipe.ID), nil)
	req = authenticateRequest(t, sm, req, 1)
	w = httptest.NewRecorder()
	RecipeResource(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", w.Code)
	}

	var versions int64
	if err := db.Model(&models.RecipeVersion{}).Where("recipe_id = ?", recipe.ID).Count(&versions).Error; err != nil || versions != 1 {
		t.Fatalf("expected archived versions to survive deletion, count=%d err=%v", versions, err)
	}
	var refs int64
	if err := db.Model(&models.RecipeRef{}).Where("recipe_id = ?", recipe.ID).Count(&refs).Error; err != nil || refs != 0 {
		t.Fatalf("expected back-references removed, count=%d err=%v", refs, err)
	}
}

func TestRecipeListFilters(t *testing.T) {
	sm, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)
	db, cleanupDB := withTestDatabase(t)
	t.Cleanup(cleanupDB)

	flour := seedTestIngredient(t, db, 1, "Flour", 0.002)
	bread, err := recipeService.CreateRecipe(httptest.NewRequest(http.MethodGet, "/", nil).Context(), 1, recipes.CreateRecipeInput{
		Name:     "Baguette",
		Category: "bread",
		Ingredients: []recipes.NewRecipeIngredient{
			{IngredientID: flour.ID, Quantity: 1000},
		},
	})
	if err != nil {
		t.Fatalf("failed to seed bread recipe: %v", err)
	}
	if _, err := recipeService.CreateRecipe(httptest.NewRequest(http.MethodGet, "/", nil).Context(), 1, recipes.CreateRecipeInput{
		Name:     "Croissant",
		Category: "viennoiserie",
		Ingredients: []recipes.NewRecipeIngredient{
			{IngredientID: flour.ID, Quantity: 500},
		},
	}); err != nil {
		t.Fatalf("failed to seed viennoiserie recipe: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/app/api/recipes?category=bread", nil)
	req = authenticateRequest(t, sm, req, 1)
	w := httptest.NewRecorder()
	RecipeResource(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var listed []recipeResponse
	if err := json.Unmarshal(w.Body.Bytes(), &listed); err != nil {
		t.Fatalf("failed to decode list: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != bread.ID {
		t.Fatalf("expected only the bread recipe, got %+v", listed)
	}
}
