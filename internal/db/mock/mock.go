package mock

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"bakeshop/internal/db"
	applog "bakeshop/internal/log"
	"bakeshop/internal/recipes"
	"bakeshop/models"
)

// New returns an in-memory sqlite database seeded with a representative
// bakery: a user, a larder of priced ingredients and one recipe created
// through the orchestrator so the back-references are consistent.
func New(ctx context.Context) (*gorm.DB, error) {
	applog.Debug(ctx, "initialising mock database")

	database, err := gorm.Open(sqlite.Open("file:bakeshop-mock?mode=memory&cache=shared"), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		PrepareStmt:                              true,
		SkipDefaultTransaction:                   true,
		DisableForeignKeyConstraintWhenMigrating: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(database); err != nil {
		return nil, err
	}

	if err := seed(ctx, database); err != nil {
		return nil, err
	}

	applog.Debug(ctx, "mock database ready")
	return database, nil
}

func seed(ctx context.Context, database *gorm.DB) error {
	applog.Debug(ctx, "seeding mock database")

	bakery := &models.Bakery{Name: "Hearthside Bakery"}
	if err := database.WithContext(ctx).Create(bakery).Error; err != nil {
		return err
	}

	password, err := bcrypt.GenerateFromPassword([]byte("sourdough"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user := &models.User{
		BakeryID:     bakery.ID,
		Name:         "Margot Lane",
		Email:        "margot@hearthside.app",
		PasswordHash: string(password),
		Role:         models.RoleOwner,
	}
	if err := database.WithContext(ctx).Create(user).Error; err != nil {
		return err
	}

	flour := models.Ingredient{
		BakeryID:     bakery.ID,
		Name:         "Bread Flour",
		Unit:         "g",
		CostPerUnit:  0.002,
		CurrentStock: 25000,
		Allergens:    models.StringList{"gluten"},
	}

	butter := models.Ingredient{
		BakeryID:     bakery.ID,
		Name:         "Cultured Butter",
		Unit:         "g",
		CostPerUnit:  0.011,
		CurrentStock: 5000,
		Allergens:    models.StringList{"dairy"},
	}

	yeast := models.Ingredient{
		BakeryID:     bakery.ID,
		Name:         "Fresh Yeast",
		Unit:         "g",
		CostPerUnit:  0.02,
		CurrentStock: 600,
	}

	ingredients := []*models.Ingredient{&flour, &butter, &yeast}
	for _, ingredient := range ingredients {
		if err := database.WithContext(ctx).Create(ingredient).Error; err != nil {
			return err
		}
	}

	service := recipes.NewService(database, recipes.NewProductGuard(database))

	croissant, err := service.CreateRecipe(ctx, bakery.ID, recipes.CreateRecipeInput{
		Name:        "Croissant",
		Description: "Laminated dough with a 27-fold book turn.",
		Category:    "viennoiserie",
		Ingredients: []recipes.NewRecipeIngredient{
			{IngredientID: flour.ID, Quantity: 1000},
			{IngredientID: butter.ID, Quantity: 550},
			{IngredientID: yeast.ID, Quantity: 40},
		},
		Steps: []string{
			"Mix and rest the détrempe overnight.",
			"Laminate with the butter block, three letter folds.",
			"Shape, proof at 26C, egg wash.",
			"Bake at 200C for 18 minutes.",
		},
		BakingTemp:      200,
		BakingTime:      18,
		PreparationTime: 720,
		LaborCost:       12,
		OverheadCost:    4,
	})
	if err != nil {
		return err
	}

	product := &models.Product{
		BakeryID: bakery.ID,
		Name:     "Croissant (single)",
		Category: "pastry",
		Price:    3.8,
		RecipeID: &croissant.ID,
		IsActive: true,
	}
	if err := database.WithContext(ctx).Create(product).Error; err != nil {
		return err
	}

	applog.Debug(ctx, "mock database seeded")
	return nil
}
