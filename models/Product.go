package models

import (
	"gorm.io/gorm"
)

// Product is a sellable item in a bakery's catalog. An active product that
// references a recipe blocks that recipe's deletion.
type Product struct {
	gorm.Model
	BakeryID    uint    `gorm:"not null;index" json:"bakery_id"`
	Name        string  `gorm:"not null" json:"name"`
	Description string  `gorm:"type:text" json:"description"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	RecipeID    *uint   `gorm:"index" json:"recipe_id,omitempty"`
	IsActive    bool    `gorm:"not null;default:true" json:"is_active"`
}
