package models

import (
	"time"

	"gorm.io/gorm"
)

// Ingredient is a raw material in a bakery's larder. CostPerUnit is the live
// price; recipes copy it at association time and are re-priced only through
// the cost-propagation workflow.
type Ingredient struct {
	gorm.Model
	BakeryID     uint        `gorm:"not null;index" json:"bakery_id"`
	Name         string      `gorm:"not null;index" json:"name"`
	Unit         string      `gorm:"not null" json:"unit"`
	CostPerUnit  float64     `gorm:"not null" json:"cost_per_unit"`
	CurrentStock float64     `json:"current_stock"`
	Allergens    StringList  `gorm:"type:text" json:"allergens"`
	UsedIn       []RecipeRef `gorm:"foreignKey:IngredientID" json:"used_in,omitempty"`
}

// RecipeRef is a back-reference row recording that a recipe's current
// composition uses an ingredient. Rows are maintained by the recipe
// orchestrator inside its transactions, never by association writes, so the
// set always mirrors the recipes' embedded ingredient lists. Rows are deleted
// outright rather than soft-deleted, keeping the unique pair index honest.
type RecipeRef struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	IngredientID uint      `gorm:"not null;uniqueIndex:idx_recipe_refs_pair" json:"ingredient_id"`
	RecipeID     uint      `gorm:"not null;uniqueIndex:idx_recipe_refs_pair" json:"recipe_id"`
	CreatedAt    time.Time `json:"created_at"`
}
