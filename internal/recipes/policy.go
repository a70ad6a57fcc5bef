package recipes

import (
	"bakeshop/models"
)

// RequiresNewVersion reports whether the transition from old to new changes
// what the bakery actually produces: the composition, the baking temperature
// or time, or the steps. Cosmetic edits (name, description, category, notes,
// preparation time, labor and overhead figures) never cut a version.
func RequiresNewVersion(old, updated *models.Recipe) bool {
	if IngredientsChanged(old, updated) {
		return true
	}
	if old.BakingTemp != updated.BakingTemp {
		return true
	}
	if old.BakingTime != updated.BakingTime {
		return true
	}
	return !old.Steps.Equal(updated.Steps)
}

// IngredientsChanged compares the ordered composition lists by ingredient id,
// quantity and unit cost. The comparison is order-sensitive: reordering lines
// counts as a change even when the composition is otherwise identical.
func IngredientsChanged(old, updated *models.Recipe) bool {
	if len(old.Ingredients) != len(updated.Ingredients) {
		return true
	}
	for i := range old.Ingredients {
		before, after := old.Ingredients[i], updated.Ingredients[i]
		if before.IngredientID != after.IngredientID {
			return true
		}
		if before.Quantity != after.Quantity {
			return true
		}
		if before.CostPerUnit != after.CostPerUnit {
			return true
		}
	}
	return false
}

// diffIngredientIDs returns the ingredient ids referenced only by the old
// composition (toRemove) and only by the new one (toAdd).
func diffIngredientIDs(old, updated *models.Recipe) (toRemove, toAdd []uint) {
	oldIDs := old.IngredientIDs()
	newIDs := updated.IngredientIDs()

	oldSet := make(map[uint]struct{}, len(oldIDs))
	for _, id := range oldIDs {
		oldSet[id] = struct{}{}
	}
	newSet := make(map[uint]struct{}, len(newIDs))
	for _, id := range newIDs {
		newSet[id] = struct{}{}
	}

	for _, id := range oldIDs {
		if _, ok := newSet[id]; !ok {
			toRemove = append(toRemove, id)
		}
	}
	for _, id := range newIDs {
		if _, ok := oldSet[id]; !ok {
			toAdd = append(toAdd, id)
		}
	}
	return toRemove, toAdd
}
