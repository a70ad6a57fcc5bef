package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	applog "bakeshop/internal/log"
	"bakeshop/internal/recipes"
	"bakeshop/models"
)

type ingredientCreateRequest struct {
	Name         string   `json:"name"`
	Unit         string   `json:"unit"`
	CostPerUnit  float64  `json:"cost_per_unit"`
	CurrentStock float64  `json:"current_stock"`
	Allergens    []string `json:"allergens"`
}

type ingredientUpdateRequest struct {
	Name         *string   `json:"name"`
	Unit         *string   `json:"unit"`
	CostPerUnit  *float64  `json:"cost_per_unit"`
	CurrentStock *float64  `json:"current_stock"`
	Allergens    *[]string `json:"allergens"`
}

type ingredientResponse struct {
	ID            uint      `json:"id"`
	Name          string    `json:"name"`
	Unit          string    `json:"unit"`
	CostPerUnit   float64   `json:"cost_per_unit"`
	CurrentStock  float64   `json:"current_stock"`
	Allergens     []string  `json:"allergens"`
	UsedInRecipes []uint    `json:"used_in_recipes"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type propagationOutcome struct {
	RecipeID uint   `json:"recipe_id"`
	Version  int    `json:"version,omitempty"`
	Error    string `json:"error,omitempty"`
}

type ingredientUpdateResponse struct {
	Ingredient ingredientResponse   `json:"ingredient"`
	Repriced   []propagationOutcome `json:"repriced_recipes,omitempty"`
}

// IngredientResource handles REST-style interactions for ingredient records.
func IngredientResource(w http.ResponseWriter, r *http.Request) {
	if database == nil || recipeService == nil {
		applog.Debug(r.Context(), "ingredient request without database")
		writeJSONError(w, http.StatusServiceUnavailable, "service unavailable")
		return
	}

	bakeryID, ok := currentBakeryID(r)
	if !ok {
		applog.Debug(r.Context(), "ingredient request without authenticated user")
		writeJSONError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/app/api/ingredients")
	path = strings.Trim(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			listIngredients(w, r, bakeryID)
		case http.MethodPost:
			createIngredient(w, r, bakeryID)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	idValue, err := strconv.ParseUint(path, 10, 64)
	if err != nil {
		applog.Debug(r.Context(), "invalid ingredient identifier", "identifier", path, "error", err)
		http.NotFound(w, r)
		return
	}
	ingredientID := uint(idValue)

	switch r.Method {
	case http.MethodGet:
		showIngredient(w, r, bakeryID, ingredientID)
	case http.MethodPut:
		updateIngredient(w, r, bakeryID, ingredientID)
	case http.MethodDelete:
		deleteIngredient(w, r, bakeryID, ingredientID)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func listIngredients(w http.ResponseWriter, r *http.Request, bakeryID uint) {
	ctx := r.Context()
	store := recipes.NewIngredientStore(database)

	results, err := store.List(ctx, bakeryID, recipes.IngredientFilter{
		Name: r.URL.Query().Get("name"),
	})
	if err != nil {
		applog.Error(ctx, "failed to list ingredients", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to load ingredients")
		return
	}

	responses := make([]ingredientResponse, 0, len(results))
	for _, ingredient := range results {
		refs, err := store.References(ctx, ingredient.ID)
		if err != nil {
			applog.Error(ctx, "failed to load ingredient references", "error", err, "id", ingredient.ID)
			writeJSONError(w, http.StatusInternalServerError, "unable to load ingredients")
			return
		}
		responses = append(responses, projectIngredient(ingredient, refs))
	}

	writeJSON(w, http.StatusOK, responses)
}

func showIngredient(w http.ResponseWriter, r *http.Request, bakeryID, ingredientID uint) {
	ctx := r.Context()
	store := recipes.NewIngredientStore(database)

	ingredient, err := store.Get(ctx, bakeryID, ingredientID)
	if err != nil {
		writeServiceError(ctx, w, err, "unable to load ingredient")
		return
	}

	refs, err := store.References(ctx, ingredientID)
	if err != nil {
		applog.Error(ctx, "failed to load ingredient references", "error", err, "id", ingredientID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load ingredient")
		return
	}

	writeJSON(w, http.StatusOK, projectIngredient(*ingredient, refs))
}

func createIngredient(w http.ResponseWriter, r *http.Request, bakeryID uint) {
	ctx := r.Context()

	var payload ingredientCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(ctx, "invalid ingredient create payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	ingredient := models.Ingredient{
		BakeryID:     bakeryID,
		Name:         strings.TrimSpace(payload.Name),
		Unit:         normalizedUnit(payload.Unit),
		CostPerUnit:  payload.CostPerUnit,
		CurrentStock: payload.CurrentStock,
		Allergens:    models.StringList(payload.Allergens),
	}

	if err := recipes.NewIngredientStore(database).Create(ctx, &ingredient); err != nil {
		writeServiceError(ctx, w, err, "unable to create ingredient")
		return
	}

	writeJSON(w, http.StatusCreated, projectIngredient(ingredient, nil))
}

func updateIngredient(w http.ResponseWriter, r *http.Request, bakeryID, ingredientID uint) {
	ctx := r.Context()

	var payload ingredientUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(ctx, "invalid ingredient update payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	store := recipes.NewIngredientStore(database)

	// Non-cost fields persist through the store; a cost change routes through
	// the orchestrator so affected recipes are re-priced and versioned.
	patch := recipes.IngredientPatch{
		Name:         payload.Name,
		Unit:         payload.Unit,
		CurrentStock: payload.CurrentStock,
		Allergens:    payload.Allergens,
	}

	ingredient, err := store.Update(ctx, bakeryID, ingredientID, patch)
	if err != nil {
		writeServiceError(ctx, w, err, "unable to update ingredient")
		return
	}

	var outcomes []propagationOutcome
	if payload.CostPerUnit != nil {
		updated, results, err := recipeService.ChangeIngredientCost(ctx, bakeryID, ingredientID, *payload.CostPerUnit)
		if err != nil {
			writeServiceError(ctx, w, err, "unable to update ingredient cost")
			return
		}
		ingredient = updated
		for _, result := range results {
			outcome := propagationOutcome{RecipeID: result.RecipeID, Version: result.Version}
			if result.Err != nil {
				outcome.Error = result.Err.Error()
			}
			outcomes = append(outcomes, outcome)
		}
	}

	refs, err := store.References(ctx, ingredientID)
	if err != nil {
		applog.Error(ctx, "failed to load ingredient references", "error", err, "id", ingredientID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load ingredient")
		return
	}

	writeJSON(w, http.StatusOK, ingredientUpdateResponse{
		Ingredient: projectIngredient(*ingredient, refs),
		Repriced:   outcomes,
	})
}

func deleteIngredient(w http.ResponseWriter, r *http.Request, bakeryID, ingredientID uint) {
	ctx := r.Context()
	store := recipes.NewIngredientStore(database)

	ingredient, err := store.Get(ctx, bakeryID, ingredientID)
	if err != nil {
		writeServiceError(ctx, w, err, "unable to load ingredient")
		return
	}

	refs, err := store.References(ctx, ingredientID)
	if err != nil {
		applog.Error(ctx, "failed to load ingredient references", "error", err, "id", ingredientID)
		writeJSONError(w, http.StatusInternalServerError, "unable to delete ingredient")
		return
	}
	if len(refs) > 0 {
		writeJSONError(w, http.StatusBadRequest, "ingredient is used by recipes")
		return
	}

	if err := database.WithContext(ctx).Delete(ingredient).Error; err != nil {
		applog.Error(ctx, "failed to delete ingredient", "error", err, "id", ingredientID)
		writeJSONError(w, http.StatusInternalServerError, "unable to delete ingredient")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func projectIngredient(ingredient models.Ingredient, refs []models.RecipeRef) ingredientResponse {
	usedIn := make([]uint, 0, len(refs))
	for _, ref := range refs {
		usedIn = append(usedIn, ref.RecipeID)
	}

	return ingredientResponse{
		ID:            ingredient.ID,
		Name:          ingredient.Name,
		Unit:          ingredient.Unit,
		CostPerUnit:   ingredient.CostPerUnit,
		CurrentStock:  ingredient.CurrentStock,
		Allergens:     append([]string{}, ingredient.Allergens...),
		UsedInRecipes: usedIn,
		CreatedAt:     ingredient.CreatedAt,
		UpdatedAt:     ingredient.UpdatedAt,
	}
}

func normalizedUnit(unit string) string {
	trimmed := strings.TrimSpace(unit)
	if trimmed == "" {
		return "g"
	}
	return trimmed
}
