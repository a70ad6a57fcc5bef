package models

import (
	"gorm.io/gorm"
)

// RecipeIngredient is one line of a recipe's composition.
//
// Name, Unit, CostPerUnit and Allergens are snapshots copied from the
// Ingredient record at association time. They do not track the live record;
// staleness is resolved only by the cost-propagation workflow or an explicit
// recipe update.
type RecipeIngredient struct {
	gorm.Model
	RecipeID     uint       `gorm:"not null;index" json:"recipe_id"` // Parent Recipe
	IngredientID uint       `gorm:"not null" json:"ingredient_id"`
	Name         string     `gorm:"not null" json:"name"`
	Quantity     float64    `gorm:"not null" json:"quantity"`
	BaseQuantity float64    `json:"base_quantity"`
	Unit         string     `json:"unit"`
	CostPerUnit  float64    `json:"cost_per_unit"`
	Notes        string     `gorm:"type:text" json:"notes"`
	Allergens    StringList `gorm:"type:text" json:"allergens"`
	Position     int        `gorm:"not null" json:"position"`
}

// Cost is the line total at the snapshotted unit cost.
func (ri RecipeIngredient) Cost() float64 {
	return ri.Quantity * ri.CostPerUnit
}
