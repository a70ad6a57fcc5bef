package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	applog "bakeshop/internal/log"
	"bakeshop/models"
)

type productRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	RecipeID    *uint   `json:"recipe_id"`
	IsActive    *bool   `json:"is_active"`
}

type productResponse struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Price       float64   `json:"price"`
	RecipeID    *uint     `json:"recipe_id,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProductResource handles CRUD interactions for catalog products. Active
// products that reference a recipe block that recipe's deletion.
func ProductResource(w http.ResponseWriter, r *http.Request) {
	if database == nil {
		applog.Debug(r.Context(), "product request without database")
		writeJSONError(w, http.StatusServiceUnavailable, "service unavailable")
		return
	}

	bakeryID, ok := currentBakeryID(r)
	if !ok {
		applog.Debug(r.Context(), "product request without authenticated user")
		writeJSONError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/app/api/products")
	path = strings.Trim(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			listProducts(w, r, bakeryID)
		case http.MethodPost:
			createProduct(w, r, bakeryID)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	idValue, err := strconv.ParseUint(path, 10, 64)
	if err != nil {
		applog.Debug(r.Context(), "invalid product identifier", "identifier", path, "error", err)
		http.NotFound(w, r)
		return
	}
	productID := uint(idValue)

	switch r.Method {
	case http.MethodGet:
		showProduct(w, r, bakeryID, productID)
	case http.MethodPut:
		updateProduct(w, r, bakeryID, productID)
	case http.MethodDelete:
		deleteProduct(w, r, bakeryID, productID)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func listProducts(w http.ResponseWriter, r *http.Request, bakeryID uint) {
	ctx := r.Context()

	query := database.WithContext(ctx).
		Where("bakery_id = ?", bakeryID).
		Order("name asc")

	if category := strings.TrimSpace(r.URL.Query().Get("category")); category != "" {
		query = query.Where("category = ?", category)
	}

	var results []models.Product
	if err := query.Find(&results).Error; err != nil {
		applog.Error(ctx, "failed to list products", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to load products")
		return
	}

	responses := make([]productResponse, 0, len(results))
	for _, product := range results {
		responses = append(responses, projectProduct(product))
	}

	writeJSON(w, http.StatusOK, responses)
}

func showProduct(w http.ResponseWriter, r *http.Request, bakeryID, productID uint) {
	ctx := r.Context()

	var product models.Product
	err := database.WithContext(ctx).
		Where("bakery_id = ?", bakeryID).
		First(&product, productID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return
		}
		applog.Error(ctx, "failed to load product", "error", err, "id", productID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load product")
		return
	}

	writeJSON(w, http.StatusOK, projectProduct(product))
}

func createProduct(w http.ResponseWriter, r *http.Request, bakeryID uint) {
	ctx := r.Context()

	var payload productRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(ctx, "invalid product create payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	if strings.TrimSpace(payload.Name) == "" {
		writeJSONError(w, http.StatusBadRequest, "product name is required")
		return
	}

	if payload.RecipeID != nil {
		if !recipeExists(r, bakeryID, *payload.RecipeID) {
			writeJSONError(w, http.StatusBadRequest, "referenced recipe does not exist")
			return
		}
	}

	product := models.Product{
		BakeryID:    bakeryID,
		Name:        strings.TrimSpace(payload.Name),
		Description: payload.Description,
		Category:    payload.Category,
		Price:       payload.Price,
		RecipeID:    payload.RecipeID,
		IsActive:    true,
	}
	if payload.IsActive != nil {
		product.IsActive = *payload.IsActive
	}

	if err := database.WithContext(ctx).Create(&product).Error; err != nil {
		applog.Error(ctx, "failed to create product", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to create product")
		return
	}

	writeJSON(w, http.StatusCreated, projectProduct(product))
}

func updateProduct(w http.ResponseWriter, r *http.Request, bakeryID, productID uint) {
	ctx := r.Context()

	var existing models.Product
	err := database.WithContext(ctx).
		Where("bakery_id = ?", bakeryID).
		First(&existing, productID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return
		}
		applog.Error(ctx, "failed to load product for update", "error", err, "id", productID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load product")
		return
	}

	var payload productRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(ctx, "invalid product update payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	if strings.TrimSpace(payload.Name) == "" {
		writeJSONError(w, http.StatusBadRequest, "product name is required")
		return
	}

	if payload.RecipeID != nil {
		if !recipeExists(r, bakeryID, *payload.RecipeID) {
			writeJSONError(w, http.StatusBadRequest, "referenced recipe does not exist")
			return
		}
	}

	updates := map[string]any{
		"name":        strings.TrimSpace(payload.Name),
		"description": payload.Description,
		"category":    payload.Category,
		"price":       payload.Price,
		"recipe_id":   payload.RecipeID,
	}
	if payload.IsActive != nil {
		updates["is_active"] = *payload.IsActive
	}

	if err := database.WithContext(ctx).Model(&existing).Updates(updates).Error; err != nil {
		applog.Error(ctx, "failed to update product", "error", err, "id", productID)
		writeJSONError(w, http.StatusInternalServerError, "unable to update product")
		return
	}

	writeJSON(w, http.StatusOK, projectProduct(existing))
}

func deleteProduct(w http.ResponseWriter, r *http.Request, bakeryID, productID uint) {
	ctx := r.Context()

	result := database.WithContext(ctx).
		Where("bakery_id = ?", bakeryID).
		Delete(&models.Product{}, productID)
	if result.Error != nil {
		applog.Error(ctx, "failed to delete product", "error", result.Error, "id", productID)
		writeJSONError(w, http.StatusInternalServerError, "unable to delete product")
		return
	}
	if result.RowsAffected == 0 {
		http.NotFound(w, r)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func recipeExists(r *http.Request, bakeryID, recipeID uint) bool {
	var count int64
	err := database.WithContext(r.Context()).
		Model(&models.Recipe{}).
		Where("bakery_id = ?", bakeryID).
		Where("id = ?", recipeID).
		Count(&count).Error
	if err != nil {
		applog.Error(r.Context(), "failed to check recipe existence", "error", err, "id", recipeID)
		return false
	}
	return count > 0
}

func projectProduct(product models.Product) productResponse {
	return productResponse{
		ID:          product.ID,
		Name:        product.Name,
		Description: product.Description,
		Category:    product.Category,
		Price:       product.Price,
		RecipeID:    product.RecipeID,
		IsActive:    product.IsActive,
		CreatedAt:   product.CreatedAt,
		UpdatedAt:   product.UpdatedAt,
	}
}
