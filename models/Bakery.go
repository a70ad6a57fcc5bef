package models

import "gorm.io/gorm"

// Bakery is the tenant namespace. Every ingredient, recipe, product and user
// is scoped under one bakery.
type Bakery struct {
	gorm.Model
	Name string `gorm:"not null" json:"name"`
}
