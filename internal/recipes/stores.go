package recipes

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"bakeshop/models"
)

// IngredientStore persists and retrieves ingredient records. It never
// triggers cost propagation itself; when an update changes CostPerUnit the
// orchestrator is responsible for fanning the change out to recipes.
type IngredientStore struct {
	db *gorm.DB
}

func NewIngredientStore(db *gorm.DB) *IngredientStore {
	return &IngredientStore{db: db}
}

// IngredientFilter narrows List results.
type IngredientFilter struct {
	Name string
}

// IngredientPatch carries a partial update. Nil fields are left untouched.
type IngredientPatch struct {
	Name         *string
	Unit         *string
	CostPerUnit  *float64
	CurrentStock *float64
	Allergens    *[]string
}

// find looks an ingredient up by id within a bakery and reports absence as
// (nil, nil) so callers can run existence checks without error plumbing.
func (s *IngredientStore) find(ctx context.Context, bakeryID, id uint) (*models.Ingredient, error) {
	var ingredient models.Ingredient
	err := s.db.WithContext(ctx).
		Where("bakery_id = ?", bakeryID).
		First(&ingredient, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &ingredient, nil
}

// Get returns the ingredient or a NotFoundError.
func (s *IngredientStore) Get(ctx context.Context, bakeryID, id uint) (*models.Ingredient, error) {
	ingredient, err := s.find(ctx, bakeryID, id)
	if err != nil {
		return nil, err
	}
	if ingredient == nil {
		return nil, notFound("ingredient", id)
	}
	return ingredient, nil
}

// List returns the bakery's ingredients, optionally filtered by a name
// fragment, ordered by name.
func (s *IngredientStore) List(ctx context.Context, bakeryID uint, filter IngredientFilter) ([]models.Ingredient, error) {
	query := s.db.WithContext(ctx).
		Where("bakery_id = ?", bakeryID).
		Order("name asc")

	if name := strings.TrimSpace(filter.Name); name != "" {
		query = query.Where("lower(name) LIKE ?", "%"+strings.ToLower(name)+"%")
	}

	var ingredients []models.Ingredient
	if err := query.Find(&ingredients).Error; err != nil {
		return nil, err
	}
	return ingredients, nil
}

// Create persists a new ingredient record.
func (s *IngredientStore) Create(ctx context.Context, ingredient *models.Ingredient) error {
	if strings.TrimSpace(ingredient.Name) == "" {
		return badRequestf("ingredient name is required")
	}
	if ingredient.CostPerUnit < 0 {
		return badRequestf("cost per unit must not be negative")
	}
	return s.db.WithContext(ctx).Create(ingredient).Error
}

// Update applies a partial patch and returns the updated record. The new cost
// value is persisted as-is; propagation to recipes is the caller's concern.
func (s *IngredientStore) Update(ctx context.Context, bakeryID, id uint, patch IngredientPatch) (*models.Ingredient, error) {
	ingredient, err := s.Get(ctx, bakeryID, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if patch.Name != nil {
		if strings.TrimSpace(*patch.Name) == "" {
			return nil, badRequestf("ingredient name is required")
		}
		updates["name"] = strings.TrimSpace(*patch.Name)
	}
	if patch.Unit != nil {
		updates["unit"] = strings.TrimSpace(*patch.Unit)
	}
	if patch.CostPerUnit != nil {
		if *patch.CostPerUnit < 0 {
			return nil, badRequestf("cost per unit must not be negative")
		}
		updates["cost_per_unit"] = *patch.CostPerUnit
	}
	if patch.CurrentStock != nil {
		updates["current_stock"] = *patch.CurrentStock
	}
	if patch.Allergens != nil {
		updates["allergens"] = models.StringList(*patch.Allergens)
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(ingredient).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return ingredient, nil
}

// References returns the back-reference rows recording which recipes use the
// ingredient.
func (s *IngredientStore) References(ctx context.Context, ingredientID uint) ([]models.RecipeRef, error) {
	var refs []models.RecipeRef
	err := s.db.WithContext(ctx).
		Where("ingredient_id = ?", ingredientID).
		Order("recipe_id asc").
		Find(&refs).Error
	if err != nil {
		return nil, err
	}
	return refs, nil
}

// RecipeStore persists and retrieves recipe records with their embedded
// composition. All mutation goes through the orchestrator; the store only
// exposes reads to other packages.
type RecipeStore struct {
	db *gorm.DB
}

func NewRecipeStore(db *gorm.DB) *RecipeStore {
	return &RecipeStore{db: db}
}

// RecipeFilter narrows List results.
type RecipeFilter struct {
	Category   string
	ActiveOnly bool
}

// Get returns the recipe with its composition ordered by position, or a
// NotFoundError.
func (s *RecipeStore) Get(ctx context.Context, bakeryID, id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB {
			return db.Order("position asc")
		}).
		Where("bakery_id = ?", bakeryID).
		First(&recipe, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("recipe", id)
		}
		return nil, err
	}
	return &recipe, nil
}

// List returns the bakery's recipes ordered by name.
func (s *RecipeStore) List(ctx context.Context, bakeryID uint, filter RecipeFilter) ([]models.Recipe, error) {
	query := s.db.WithContext(ctx).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB {
			return db.Order("position asc")
		}).
		Where("bakery_id = ?", bakeryID).
		Order("name asc")

	if category := strings.TrimSpace(filter.Category); category != "" {
		query = query.Where("category = ?", category)
	}
	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}

	var recipes []models.Recipe
	if err := query.Find(&recipes).Error; err != nil {
		return nil, err
	}
	return recipes, nil
}

// VersionLog is the append-only archive of superseded recipe states.
type VersionLog struct {
	db *gorm.DB
}

func NewVersionLog(db *gorm.DB) *VersionLog {
	return &VersionLog{db: db}
}

// Append archives the recipe's pre-update state and returns the version
// number the updated recipe must carry. It must run inside the same
// transaction as the recipe write it accompanies.
func (l *VersionLog) Append(ctx context.Context, recipe *models.Recipe) (int, error) {
	entry := models.RecipeVersion{
		RecipeID:    recipe.ID,
		Version:     recipe.Version,
		Ingredients: models.SnapshotIngredients(recipe.Ingredients),
		Steps:       append(models.StringList(nil), recipe.Steps...),
		BakingTemp:  recipe.BakingTemp,
		BakingTime:  recipe.BakingTime,
	}
	if err := l.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return 0, err
	}
	return recipe.Version + 1, nil
}

// List returns a recipe's archived versions in ascending version order.
func (l *VersionLog) List(ctx context.Context, recipeID uint) ([]models.RecipeVersion, error) {
	var entries []models.RecipeVersion
	err := l.db.WithContext(ctx).
		Where("recipe_id = ?", recipeID).
		Order("version asc").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// ProductChecker reports whether any active product still references a
// recipe. The product catalog implements it; tests substitute fakes.
type ProductChecker interface {
	RecipeInUse(ctx context.Context, bakeryID, recipeID uint) (bool, error)
}

// ProductGuard answers RecipeInUse against the product catalog table.
type ProductGuard struct {
	db *gorm.DB
}

func NewProductGuard(db *gorm.DB) *ProductGuard {
	return &ProductGuard{db: db}
}

func (g *ProductGuard) RecipeInUse(ctx context.Context, bakeryID, recipeID uint) (bool, error) {
	var count int64
	err := g.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("bakery_id = ? AND recipe_id = ? AND is_active = ?", bakeryID, recipeID, true).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
