package models

import (
	"gorm.io/gorm"
)

type Recipe struct {
	gorm.Model
	BakeryID        uint               `gorm:"not null;index" json:"bakery_id"`
	Name            string             `gorm:"not null" json:"name"`
	Description     string             `gorm:"type:text" json:"description"`
	Category        string             `json:"category"`
	Version         int                `gorm:"not null;default:1" json:"version"`
	Ingredients     []RecipeIngredient `gorm:"foreignKey:RecipeID" json:"ingredients"`
	Steps           StringList         `gorm:"type:text" json:"steps"`
	BakingTemp      int                `json:"baking_temp"`
	BakingTime      int                `json:"baking_time"`
	PreparationTime int                `json:"preparation_time"`
	LaborCost       float64            `json:"labor_cost"`
	OverheadCost    float64            `json:"overhead_cost"`
	TotalCost       float64            `json:"total_cost"`
	IsActive        bool               `gorm:"not null;default:true" json:"is_active"`
}

// RecomputeTotalCost derives TotalCost from the current composition plus labor
// and overhead. TotalCost is never written independently.
func (r *Recipe) RecomputeTotalCost() {
	total := r.LaborCost + r.OverheadCost
	for _, ingredient := range r.Ingredients {
		total += ingredient.Cost()
	}
	r.TotalCost = total
}

// IngredientIDs returns the distinct ingredient ids referenced by the current
// composition, in first-appearance order.
func (r *Recipe) IngredientIDs() []uint {
	seen := make(map[uint]struct{}, len(r.Ingredients))
	ids := make([]uint, 0, len(r.Ingredients))
	for _, ingredient := range r.Ingredients {
		if _, ok := seen[ingredient.IngredientID]; ok {
			continue
		}
		seen[ingredient.IngredientID] = struct{}{}
		ids = append(ids, ingredient.IngredientID)
	}
	return ids
}
