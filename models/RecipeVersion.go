package models

import (
	"gorm.io/gorm"
)

// RecipeVersion archives the state a recipe held before a version bump: the
// superseded version number and the composition, steps and baking parameters
// as they stood pre-update. Entries are immutable once written.
type RecipeVersion struct {
	gorm.Model
	RecipeID    uint                `gorm:"not null;index" json:"recipe_id"`
	Version     int                 `gorm:"not null" json:"version"`
	Ingredients IngredientSnapshots `gorm:"type:text" json:"ingredients"`
	Steps       StringList          `gorm:"type:text" json:"steps"`
	BakingTemp  int                 `json:"baking_temp"`
	BakingTime  int                 `json:"baking_time"`
}
