package recipes

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	applog "bakeshop/internal/log"
	"bakeshop/models"
)

// Service is the single entry point for recipe mutation. Every call does its
// reads and writes inside one transaction: the recipe write, the ingredient
// back-reference fixups and the version-history append either all commit or
// all roll back. Reads are issued before writes within each transaction.
type Service struct {
	db       *gorm.DB
	products ProductChecker
}

// NewService builds a Service over the given database handle and product
// collaborator.
func NewService(db *gorm.DB, products ProductChecker) *Service {
	return &Service{db: db, products: products}
}

// DB exposes the underlying handle for read-only store construction.
func (s *Service) DB() *gorm.DB {
	return s.db
}

// NewRecipeIngredient names an ingredient for recipe creation. Name, unit,
// cost and allergens are snapshotted from the ingredient record at creation
// time.
type NewRecipeIngredient struct {
	IngredientID uint
	Quantity     float64
	Notes        string
}

// CreateRecipeInput carries the full state for a new recipe.
type CreateRecipeInput struct {
	Name            string
	Description     string
	Category        string
	Ingredients     []NewRecipeIngredient
	Steps           []string
	BakingTemp      int
	BakingTime      int
	PreparationTime int
	LaborCost       float64
	OverheadCost    float64
}

// RecipeIngredientInput is one composition line of a recipe update. Unlike
// creation, updates supply the snapshot fields explicitly.
type RecipeIngredientInput struct {
	IngredientID uint
	Name         string
	Quantity     float64
	BaseQuantity float64
	Unit         string
	CostPerUnit  float64
	Notes        string
	Allergens    []string
}

// RecipePatch is a partial recipe update. Nil fields are left untouched; a
// non-nil Ingredients pointer replaces the whole composition.
type RecipePatch struct {
	Name            *string
	Description     *string
	Category        *string
	Ingredients     *[]RecipeIngredientInput
	Steps           *[]string
	BakingTemp      *int
	BakingTime      *int
	PreparationTime *int
	LaborCost       *float64
	OverheadCost    *float64
	IsActive        *bool
}

// CreateRecipe validates every ingredient reference against the ingredient
// store, snapshots name/unit/cost/allergens into the composition, writes the
// recipe at version 1 and records the back-references, all in one
// transaction.
func (s *Service) CreateRecipe(ctx context.Context, bakeryID uint, input CreateRecipeInput) (*models.Recipe, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, badRequestf("recipe name is required")
	}
	for i, item := range input.Ingredients {
		if item.IngredientID == 0 {
			return nil, badRequestf("ingredients[%d]: ingredient id is required", i)
		}
		if item.Quantity <= 0 {
			return nil, badRequestf("ingredients[%d]: quantity must be greater than zero", i)
		}
	}

	var created *models.Recipe
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ingredients := NewIngredientStore(tx)

		// Read phase: resolve every referenced ingredient.
		lines := make([]models.RecipeIngredient, 0, len(input.Ingredients))
		for _, item := range input.Ingredients {
			record, err := ingredients.find(ctx, bakeryID, item.IngredientID)
			if err != nil {
				return err
			}
			if record == nil {
				return badRequestf("ingredient %d not found", item.IngredientID)
			}
			lines = append(lines, models.RecipeIngredient{
				IngredientID: record.ID,
				Name:         record.Name,
				Quantity:     item.Quantity,
				BaseQuantity: item.Quantity,
				Unit:         record.Unit,
				CostPerUnit:  record.CostPerUnit,
				Notes:        item.Notes,
				Allergens:    append(models.StringList(nil), record.Allergens...),
				Position:     len(lines),
			})
		}

		recipe := &models.Recipe{
			BakeryID:        bakeryID,
			Name:            strings.TrimSpace(input.Name),
			Description:     input.Description,
			Category:        input.Category,
			Version:         1,
			Ingredients:     lines,
			Steps:           models.StringList(input.Steps),
			BakingTemp:      input.BakingTemp,
			BakingTime:      input.BakingTime,
			PreparationTime: input.PreparationTime,
			LaborCost:       input.LaborCost,
			OverheadCost:    input.OverheadCost,
			IsActive:        true,
		}
		recipe.RecomputeTotalCost()

		// Write phase.
		if err := tx.Create(recipe).Error; err != nil {
			return err
		}
		for _, id := range recipe.IngredientIDs() {
			ref := models.RecipeRef{IngredientID: id, RecipeID: recipe.ID}
			if err := tx.Create(&ref).Error; err != nil {
				return err
			}
		}

		created = recipe
		return nil
	})
	if err != nil {
		return nil, err
	}

	applog.Debug(ctx, "recipe created", "bakery", bakeryID, "recipe", created.ID, "ingredients", len(created.Ingredients))
	return created, nil
}

// UpdateRecipe merges the patch onto the current state, recomputes the total
// cost, and cuts a new version (archiving the pre-update state) when the
// change affects production. Back-reference rows are adjusted in the same
// transaction whenever the composition's ingredient set changes.
func (s *Service) UpdateRecipe(ctx context.Context, bakeryID, recipeID uint, patch RecipePatch) (*models.Recipe, error) {
	if err := validatePatch(patch); err != nil {
		return nil, err
	}

	var updated *models.Recipe
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		store := NewRecipeStore(tx)

		current, err := store.Get(ctx, bakeryID, recipeID)
		if err != nil {
			return err
		}

		candidate := mergeRecipe(current, patch)
		candidate.RecomputeTotalCost()

		bump := RequiresNewVersion(current, candidate)
		composition := IngredientsChanged(current, candidate)

		// Remaining reads precede any write.
		var toRemove, toAdd []uint
		if bump && composition {
			toRemove, toAdd = diffIngredientIDs(current, candidate)
			ingredients := NewIngredientStore(tx)
			for _, id := range toAdd {
				record, err := ingredients.find(ctx, bakeryID, id)
				if err != nil {
					return err
				}
				if record == nil {
					return badRequestf("ingredient %d not found", id)
				}
			}
		}

		// Write phase.
		if len(toRemove) > 0 {
			err := tx.Where("recipe_id = ? AND ingredient_id IN ?", recipeID, toRemove).
				Delete(&models.RecipeRef{}).Error
			if err != nil {
				return err
			}
		}
		for _, id := range toAdd {
			ref := models.RecipeRef{IngredientID: id, RecipeID: recipeID}
			if err := tx.Create(&ref).Error; err != nil {
				return err
			}
		}

		if bump {
			next, err := NewVersionLog(tx).Append(ctx, current)
			if err != nil {
				return err
			}
			candidate.Version = next
		}

		if patch.Ingredients != nil {
			err := tx.Unscoped().Where("recipe_id = ?", recipeID).
				Delete(&models.RecipeIngredient{}).Error
			if err != nil {
				return err
			}
			if len(candidate.Ingredients) > 0 {
				if err := tx.Create(&candidate.Ingredients).Error; err != nil {
					return err
				}
			}
		}

		if err := tx.Omit(clause.Associations).Save(candidate).Error; err != nil {
			return err
		}

		updated = candidate
		return nil
	})
	if err != nil {
		return nil, err
	}

	applog.Debug(ctx, "recipe updated", "bakery", bakeryID, "recipe", recipeID, "version", updated.Version)
	return updated, nil
}

// DeleteRecipe removes the recipe, its composition rows and its
// back-reference rows in one transaction. Archived versions are immutable and
// stay behind. Deletion is rejected while an active product references the
// recipe.
func (s *Service) DeleteRecipe(ctx context.Context, bakeryID, recipeID uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		store := NewRecipeStore(tx)

		recipe, err := store.Get(ctx, bakeryID, recipeID)
		if err != nil {
			return err
		}

		inUse, err := s.products.RecipeInUse(ctx, bakeryID, recipeID)
		if err != nil {
			return err
		}
		if inUse {
			return badRequestf("recipe %d is used by active products", recipeID)
		}

		if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.RecipeRef{}).Error; err != nil {
			return err
		}
		return tx.Delete(recipe).Error
	})
	if err != nil {
		return err
	}

	applog.Debug(ctx, "recipe deleted", "bakery", bakeryID, "recipe", recipeID)
	return nil
}

func validatePatch(patch RecipePatch) error {
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return badRequestf("recipe name is required")
	}
	if patch.Ingredients == nil {
		return nil
	}
	for i, item := range *patch.Ingredients {
		if item.IngredientID == 0 {
			return badRequestf("ingredients[%d]: ingredient id is required", i)
		}
		if strings.TrimSpace(item.Name) == "" {
			return badRequestf("ingredients[%d]: name is required", i)
		}
		if item.Quantity <= 0 {
			return badRequestf("ingredients[%d]: quantity must be greater than zero", i)
		}
		if item.CostPerUnit < 0 {
			return badRequestf("ingredients[%d]: cost per unit must not be negative", i)
		}
	}
	return nil
}

// mergeRecipe builds the candidate post-update state without touching the
// current one.
func mergeRecipe(current *models.Recipe, patch RecipePatch) *models.Recipe {
	candidate := *current

	if patch.Ingredients != nil {
		lines := make([]models.RecipeIngredient, 0, len(*patch.Ingredients))
		for i, item := range *patch.Ingredients {
			base := item.BaseQuantity
			if base == 0 {
				base = item.Quantity
			}
			lines = append(lines, models.RecipeIngredient{
				RecipeID:     current.ID,
				IngredientID: item.IngredientID,
				Name:         item.Name,
				Quantity:     item.Quantity,
				BaseQuantity: base,
				Unit:         item.Unit,
				CostPerUnit:  item.CostPerUnit,
				Notes:        item.Notes,
				Allergens:    models.StringList(item.Allergens),
				Position:     i,
			})
		}
		candidate.Ingredients = lines
	} else {
		candidate.Ingredients = append([]models.RecipeIngredient(nil), current.Ingredients...)
	}

	if patch.Name != nil {
		candidate.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Description != nil {
		candidate.Description = *patch.Description
	}
	if patch.Category != nil {
		candidate.Category = *patch.Category
	}
	if patch.Steps != nil {
		candidate.Steps = models.StringList(*patch.Steps)
	} else {
		candidate.Steps = append(models.StringList(nil), current.Steps...)
	}
	if patch.BakingTemp != nil {
		candidate.BakingTemp = *patch.BakingTemp
	}
	if patch.BakingTime != nil {
		candidate.BakingTime = *patch.BakingTime
	}
	if patch.PreparationTime != nil {
		candidate.PreparationTime = *patch.PreparationTime
	}
	if patch.LaborCost != nil {
		candidate.LaborCost = *patch.LaborCost
	}
	if patch.OverheadCost != nil {
		candidate.OverheadCost = *patch.OverheadCost
	}
	if patch.IsActive != nil {
		candidate.IsActive = *patch.IsActive
	}

	return &candidate
}
