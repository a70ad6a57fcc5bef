package mock

import (
	"context"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"bakeshop/models"
)

func TestNewSeedsExpectedRecords(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db, err := New(ctx)
	if err != nil {
		t.Fatalf("mock database initialization failed: %v", err)
	}

	var ingredients []models.Ingredient
	if err := db.WithContext(ctx).Find(&ingredients).Error; err != nil {
		t.Fatalf("query ingredients: %v", err)
	}
	if len(ingredients) == 0 {
		t.Fatal("expected seeded ingredients")
	}

	var recipe models.Recipe
	if err := db.WithContext(ctx).Preload("Ingredients").First(&recipe).Error; err != nil {
		t.Fatalf("query recipe: %v", err)
	}
	if recipe.Version != 1 {
		t.Fatalf("expected seeded recipe at version 1, got %d", recipe.Version)
	}
	if len(recipe.Ingredients) == 0 {
		t.Fatal("expected seeded recipe composition")
	}
	if recipe.TotalCost <= 0 {
		t.Fatalf("expected computed total cost, got %v", recipe.TotalCost)
	}

	var refs int64
	if err := db.WithContext(ctx).Model(&models.RecipeRef{}).Where("recipe_id = ?", recipe.ID).Count(&refs).Error; err != nil {
		t.Fatalf("query back-references: %v", err)
	}
	if refs != int64(len(recipe.Ingredients)) {
		t.Fatalf("expected %d back-references, got %d", len(recipe.Ingredients), refs)
	}

	var product models.Product
	if err := db.WithContext(ctx).First(&product).Error; err != nil {
		t.Fatalf("query product: %v", err)
	}
	if product.RecipeID == nil || *product.RecipeID != recipe.ID {
		t.Fatalf("expected product linked to seeded recipe, got %v", product.RecipeID)
	}

	var user models.User
	if err := db.WithContext(ctx).First(&user).Error; err != nil {
		t.Fatalf("query user: %v", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("sourdough")); err != nil {
		t.Fatalf("unexpected password hash: %v", err)
	}
}
