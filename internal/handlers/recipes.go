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

type recipeIngredientPayload struct {
	IngredientID uint     `json:"ingredient_id"`
	Name         string   `json:"name"`
	Quantity     float64  `json:"quantity"`
	BaseQuantity float64  `json:"base_quantity"`
	Unit         string   `json:"unit"`
	CostPerUnit  float64  `json:"cost_per_unit"`
	Notes        string   `json:"notes"`
	Allergens    []string `json:"allergens"`
}

type recipeCreateRequest struct {
	Name            string                    `json:"name"`
	Description     string                    `json:"description"`
	Category        string                    `json:"category"`
	Ingredients     []recipeIngredientPayload `json:"ingredients"`
	Steps           []string                  `json:"steps"`
	BakingTemp      int                       `json:"baking_temp"`
	BakingTime      int                       `json:"baking_time"`
	PreparationTime int                       `json:"preparation_time"`
	LaborCost       float64                   `json:"labor_cost"`
	OverheadCost    float64                   `json:"overhead_cost"`
}

type recipeUpdateRequest struct {
	Name            *string                    `json:"name"`
	Description     *string                    `json:"description"`
	Category        *string                    `json:"category"`
	Ingredients     *[]recipeIngredientPayload `json:"ingredients"`
	Steps           *[]string                  `json:"steps"`
	BakingTemp      *int                       `json:"baking_temp"`
	BakingTime      *int                       `json:"baking_time"`
	PreparationTime *int                       `json:"preparation_time"`
	LaborCost       *float64                   `json:"labor_cost"`
	OverheadCost    *float64                   `json:"overhead_cost"`
	IsActive        *bool                      `json:"is_active"`
}

type recipeIngredientResponse struct {
	IngredientID uint     `json:"ingredient_id"`
	Name         string   `json:"name"`
	Quantity     float64  `json:"quantity"`
	BaseQuantity float64  `json:"base_quantity"`
	Unit         string   `json:"unit"`
	CostPerUnit  float64  `json:"cost_per_unit"`
	Cost         float64  `json:"cost"`
	Notes        string   `json:"notes,omitempty"`
	Allergens    []string `json:"allergens,omitempty"`
}

type recipeResponse struct {
	ID              uint                       `json:"id"`
	Name            string                     `json:"name"`
	Description     string                     `json:"description"`
	Category        string                     `json:"category"`
	Version         int                        `json:"version"`
	Ingredients     []recipeIngredientResponse `json:"ingredients"`
	Steps           []string                   `json:"steps"`
	BakingTemp      int                        `json:"baking_temp"`
	BakingTime      int                        `json:"baking_time"`
	PreparationTime int                        `json:"preparation_time"`
	LaborCost       float64                    `json:"labor_cost"`
	OverheadCost    float64                    `json:"overhead_cost"`
	TotalCost       float64                    `json:"total_cost"`
	IsActive        bool                       `json:"is_active"`
	CreatedAt       time.Time                  `json:"created_at"`
	UpdatedAt       time.Time                  `json:"updated_at"`
}

type recipeVersionResponse struct {
	Version     int                         `json:"version"`
	Ingredients []models.IngredientSnapshot `json:"ingredients"`
	Steps       []string                    `json:"steps"`
	BakingTemp  int                         `json:"baking_temp"`
	BakingTime  int                         `json:"baking_time"`
	Timestamp   time.Time                   `json:"timestamp"`
}

// RecipeResource handles REST-style interactions for recipe records. All
// mutation is routed through the recipe orchestrator.
func RecipeResource(w http.ResponseWriter, r *http.Request) {
	if database == nil || recipeService == nil {
		applog.Debug(r.Context(), "recipe request without database")
		writeJSONError(w, http.StatusServiceUnavailable, "service unavailable")
		return
	}

	bakeryID, ok := currentBakeryID(r)
	if !ok {
		applog.Debug(r.Context(), "recipe request without authenticated user")
		writeJSONError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/app/api/recipes")
	path = strings.Trim(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			listRecipes(w, r, bakeryID)
		case http.MethodPost:
			createRecipe(w, r, bakeryID)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	segments := strings.Split(path, "/")
	idValue, err := strconv.ParseUint(segments[0], 10, 64)
	if err != nil {
		applog.Debug(r.Context(), "invalid recipe identifier", "identifier", segments[0], "error", err)
		http.NotFound(w, r)
		return
	}
	recipeID := uint(idValue)

	if len(segments) > 1 && segments[1] == "history" {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		listRecipeHistory(w, r, bakeryID, recipeID)
		return
	}

	switch r.Method {
	case http.MethodGet:
		showRecipe(w, r, bakeryID, recipeID)
	case http.MethodPut:
		updateRecipe(w, r, bakeryID, recipeID)
	case http.MethodDelete:
		deleteRecipe(w, r, bakeryID, recipeID)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func listRecipes(w http.ResponseWriter, r *http.Request, bakeryID uint) {
	ctx := r.Context()

	filter := recipes.RecipeFilter{
		Category: r.URL.Query().Get("category"),
	}
	if active := strings.TrimSpace(r.URL.Query().Get("active")); active != "" {
		if value, err := strconv.ParseBool(active); err == nil {
			filter.ActiveOnly = value
		}
	}

	results, err := recipes.NewRecipeStore(database).List(ctx, bakeryID, filter)
	if err != nil {
		applog.Error(ctx, "failed to list recipes", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to load recipes")
		return
	}

	responses := make([]recipeResponse, 0, len(results))
	for _, recipe := range results {
		responses = append(responses, projectRecipe(recipe))
	}

	writeJSON(w, http.StatusOK, responses)
}

func showRecipe(w http.ResponseWriter, r *http.Request, bakeryID, recipeID uint) {
	ctx := r.Context()

	recipe, err := recipes.NewRecipeStore(database).Get(ctx, bakeryID, recipeID)
	if err != nil {
		writeServiceError(ctx, w, err, "unable to load recipe")
		return
	}

	writeJSON(w, http.StatusOK, projectRecipe(*recipe))
}

func createRecipe(w http.ResponseWriter, r *http.Request, bakeryID uint) {
	ctx := r.Context()

	var payload recipeCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(ctx, "invalid recipe create payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	input := recipes.CreateRecipeInput{
		Name:            payload.Name,
		Description:     payload.Description,
		Category:        payload.Category,
		Steps:           payload.Steps,
		BakingTemp:      payload.BakingTemp,
		BakingTime:      payload.BakingTime,
		PreparationTime: payload.PreparationTime,
		LaborCost:       payload.LaborCost,
		OverheadCost:    payload.OverheadCost,
	}
	for _, item := range payload.Ingredients {
		input.Ingredients = append(input.Ingredients, recipes.NewRecipeIngredient{
			IngredientID: item.IngredientID,
			Quantity:     item.Quantity,
			Notes:        item.Notes,
		})
	}

	recipe, err := recipeService.CreateRecipe(ctx, bakeryID, input)
	if err != nil {
		writeServiceError(ctx, w, err, "unable to create recipe")
		return
	}

	writeJSON(w, http.StatusCreated, projectRecipe(*recipe))
}

func updateRecipe(w http.ResponseWriter, r *http.Request, bakeryID, recipeID uint) {
	ctx := r.Context()

	var payload recipeUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(ctx, "invalid recipe update payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	patch := recipes.RecipePatch{
		Name:            payload.Name,
		Description:     payload.Description,
		Category:        payload.Category,
		Steps:           payload.Steps,
		BakingTemp:      payload.BakingTemp,
		BakingTime:      payload.BakingTime,
		PreparationTime: payload.PreparationTime,
		LaborCost:       payload.LaborCost,
		OverheadCost:    payload.OverheadCost,
		IsActive:        payload.IsActive,
	}
	if payload.Ingredients != nil {
		lines := make([]recipes.RecipeIngredientInput, 0, len(*payload.Ingredients))
		for _, item := range *payload.Ingredients {
			lines = append(lines, recipes.RecipeIngredientInput{
				IngredientID: item.IngredientID,
				Name:         item.Name,
				Quantity:     item.Quantity,
				BaseQuantity: item.BaseQuantity,
				Unit:         item.Unit,
				CostPerUnit:  item.CostPerUnit,
				Notes:        item.Notes,
				Allergens:    item.Allergens,
			})
		}
		patch.Ingredients = &lines
	}

	recipe, err := recipeService.UpdateRecipe(ctx, bakeryID, recipeID, patch)
	if err != nil {
		writeServiceError(ctx, w, err, "unable to update recipe")
		return
	}

	writeJSON(w, http.StatusOK, projectRecipe(*recipe))
}

func deleteRecipe(w http.ResponseWriter, r *http.Request, bakeryID, recipeID uint) {
	ctx := r.Context()

	if err := recipeService.DeleteRecipe(ctx, bakeryID, recipeID); err != nil {
		writeServiceError(ctx, w, err, "unable to delete recipe")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func listRecipeHistory(w http.ResponseWriter, r *http.Request, bakeryID, recipeID uint) {
	ctx := r.Context()

	// Resolve the recipe first so history for foreign bakeries stays hidden.
	if _, err := recipes.NewRecipeStore(database).Get(ctx, bakeryID, recipeID); err != nil {
		writeServiceError(ctx, w, err, "unable to load recipe")
		return
	}

	entries, err := recipes.NewVersionLog(database).List(ctx, recipeID)
	if err != nil {
		applog.Error(ctx, "failed to list recipe history", "error", err, "id", recipeID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load recipe history")
		return
	}

	responses := make([]recipeVersionResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, recipeVersionResponse{
			Version:     entry.Version,
			Ingredients: entry.Ingredients,
			Steps:       entry.Steps,
			BakingTemp:  entry.BakingTemp,
			BakingTime:  entry.BakingTime,
			Timestamp:   entry.CreatedAt,
		})
	}

	writeJSON(w, http.StatusOK, responses)
}

func projectRecipe(recipe models.Recipe) recipeResponse {
	ingredients := make([]recipeIngredientResponse, 0, len(recipe.Ingredients))
	for _, ingredient := range recipe.Ingredients {
		ingredients = append(ingredients, recipeIngredientResponse{
			IngredientID: ingredient.IngredientID,
			Name:         ingredient.Name,
			Quantity:     ingredient.Quantity,
			BaseQuantity: ingredient.BaseQuantity,
			Unit:         ingredient.Unit,
			CostPerUnit:  ingredient.CostPerUnit,
			Cost:         ingredient.Cost(),
			Notes:        ingredient.Notes,
			Allergens:    ingredient.Allergens,
		})
	}

	return recipeResponse{
		ID:              recipe.ID,
		Name:            recipe.Name,
		Description:     recipe.Description,
		Category:        recipe.Category,
		Version:         recipe.Version,
		Ingredients:     ingredients,
		Steps:           recipe.Steps,
		BakingTemp:      recipe.BakingTemp,
		BakingTime:      recipe.BakingTime,
		PreparationTime: recipe.PreparationTime,
		LaborCost:       recipe.LaborCost,
		OverheadCost:    recipe.OverheadCost,
		TotalCost:       recipe.TotalCost,
		IsActive:        recipe.IsActive,
		CreatedAt:       recipe.CreatedAt,
		UpdatedAt:       recipe.UpdatedAt,
	}
}
