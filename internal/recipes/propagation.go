package recipes

import (
	"context"

	applog "bakeshop/internal/log"
	"bakeshop/models"
)

// PropagationResult is the outcome of re-pricing one recipe after an
// ingredient cost change.
type PropagationResult struct {
	RecipeID uint
	Version  int
	Err      error
}

// ChangeIngredientCost persists the new unit cost and re-prices every recipe
// whose composition references the ingredient, refreshing the matching
// composition lines and recomputing each recipe's total cost. The recipe
// updates go through UpdateRecipe, so a cost change versions a recipe exactly
// like a manual composition edit.
//
// Each recipe update is its own transaction. A failure in one recipe does not
// abort the others; callers observe the per-recipe outcomes in the returned
// slice. A crash mid-fan-out leaves the ingredient cost updated and only some
// recipes re-priced.
func (s *Service) ChangeIngredientCost(ctx context.Context, bakeryID, ingredientID uint, newCost float64) (*models.Ingredient, []PropagationResult, error) {
	if newCost < 0 {
		return nil, nil, badRequestf("cost per unit must not be negative")
	}

	ingredients := NewIngredientStore(s.db)

	current, err := ingredients.Get(ctx, bakeryID, ingredientID)
	if err != nil {
		return nil, nil, err
	}
	if current.CostPerUnit == newCost {
		return current, nil, nil
	}

	updated, err := ingredients.Update(ctx, bakeryID, ingredientID, IngredientPatch{CostPerUnit: &newCost})
	if err != nil {
		return nil, nil, err
	}

	refs, err := ingredients.References(ctx, ingredientID)
	if err != nil {
		return updated, nil, err
	}

	store := NewRecipeStore(s.db)
	results := make([]PropagationResult, 0, len(refs))
	for _, ref := range refs {
		result := PropagationResult{RecipeID: ref.RecipeID}

		recipe, err := store.Get(ctx, bakeryID, ref.RecipeID)
		if err != nil {
			result.Err = err
			results = append(results, result)
			continue
		}

		repriced, err := s.UpdateRecipe(ctx, bakeryID, ref.RecipeID, repricePatch(recipe, ingredientID, newCost))
		if err != nil {
			result.Err = err
			results = append(results, result)
			continue
		}

		result.Version = repriced.Version
		results = append(results, result)
	}

	failed := 0
	for _, result := range results {
		if result.Err != nil {
			failed++
		}
	}
	applog.Info(ctx, "ingredient cost propagated",
		"bakery", bakeryID,
		"ingredient", ingredientID,
		"cost", newCost,
		"recipes", len(results),
		"failed", failed,
	)

	return updated, results, nil
}

// repricePatch rebuilds the recipe's composition input with the changed
// ingredient's lines refreshed to the new unit cost.
func repricePatch(recipe *models.Recipe, ingredientID uint, newCost float64) RecipePatch {
	lines := make([]RecipeIngredientInput, 0, len(recipe.Ingredients))
	for _, row := range recipe.Ingredients {
		line := RecipeIngredientInput{
			IngredientID: row.IngredientID,
			Name:         row.Name,
			Quantity:     row.Quantity,
			BaseQuantity: row.BaseQuantity,
			Unit:         row.Unit,
			CostPerUnit:  row.CostPerUnit,
			Notes:        row.Notes,
			Allergens:    row.Allergens,
		}
		if row.IngredientID == ingredientID {
			line.CostPerUnit = newCost
		}
		lines = append(lines, line)
	}
	return RecipePatch{Ingredients: &lines}
}
