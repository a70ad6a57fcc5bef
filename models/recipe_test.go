package models

import "testing"

func TestRecomputeTotalCost(t *testing.T) {
	t.Parallel()

	recipe := Recipe{
		LaborCost:    10,
		OverheadCost: 5,
		Ingredients: []RecipeIngredient{
			{IngredientID: 1, Name: "Flour", Quantity: 1000, CostPerUnit: 2.5},
		},
	}

	recipe.RecomputeTotalCost()
	if recipe.TotalCost != 2515 {
		t.Fatalf("TotalCost = %v, want 2515", recipe.TotalCost)
	}

	recipe.Ingredients = nil
	recipe.RecomputeTotalCost()
	if recipe.TotalCost != 15 {
		t.Fatalf("TotalCost without ingredients = %v, want 15", recipe.TotalCost)
	}
}

func TestIngredientIDs(t *testing.T) {
	t.Parallel()

	recipe := Recipe{
		Ingredients: []RecipeIngredient{
			{IngredientID: 3},
			{IngredientID: 1},
			{IngredientID: 3},
		},
	}

	ids := recipe.IngredientIDs()
	if len(ids) != 2 || ids[0] != 3 || ids[1] != 1 {
		t.Fatalf("IngredientIDs() = %v, want [3 1]", ids)
	}
}

func TestStringListRoundTrip(t *testing.T) {
	t.Parallel()

	steps := StringList{"mix", "proof", "bake"}
	value, err := steps.Value()
	if err != nil {
		t.Fatalf("Value returned error: %v", err)
	}

	var decoded StringList
	if err := decoded.Scan(value); err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if !decoded.Equal(steps) {
		t.Fatalf("round trip produced %v, want %v", decoded, steps)
	}

	if steps.Equal(StringList{"mix", "bake", "proof"}) {
		t.Fatal("Equal must be order-sensitive")
	}
}

func TestSnapshotIngredients(t *testing.T) {
	t.Parallel()

	rows := []RecipeIngredient{
		{IngredientID: 7, Name: "Butter", Quantity: 250, BaseQuantity: 250, Unit: "g", CostPerUnit: 0.011, Allergens: StringList{"dairy"}},
	}

	snapshots := SnapshotIngredients(rows)
	if len(snapshots) != 1 {
		t.Fatalf("expected one snapshot, got %d", len(snapshots))
	}
	got := snapshots[0]
	if got.IngredientID != 7 || got.Name != "Butter" || got.CostPerUnit != 0.011 {
		t.Fatalf("unexpected snapshot: %+v", got)
	}
	if len(got.Allergens) != 1 || got.Allergens[0] != "dairy" {
		t.Fatalf("unexpected allergens: %v", got.Allergens)
	}
}
