package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"
	"gorm.io/gorm"

	"bakeshop/internal/config"
	"bakeshop/internal/db"
	"bakeshop/internal/recipes"
	"bakeshop/models"
)

var (
	cleanWhitespace = regexp.MustCompile(`\s+`)
	priceLine       = regexp.MustCompile(`^(.+?)\s+([-+]?\d*\.?\d+)\s*$`)
)

// priceRow is one supplier price-list entry.
type priceRow struct {
	Name string
	Unit string
	Cost float64
}

func main() {
	if len(os.Args) < 3 {
		fmt.Fprintln(os.Stderr, "usage: import_prices <price-list.(csv|pdf)> <bakery-id>")
		os.Exit(2)
	}

	if err := run(os.Args[1], os.Args[2]); err != nil {
		fmt.Fprintf(os.Stderr, "import failed: %v\n", err)
		os.Exit(1)
	}
}

func run(path, bakeryArg string) error {
	bakeryID, err := strconv.ParseUint(bakeryArg, 10, 64)
	if err != nil || bakeryID == 0 {
		return fmt.Errorf("invalid bakery id %q", bakeryArg)
	}

	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("locate price list: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	database, err := db.Initialize(cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	if err := db.AutoMigrate(database); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	rows, err := readPriceList(path)
	if err != nil {
		return fmt.Errorf("read price list: %w", err)
	}

	service := recipes.NewService(database, recipes.NewProductGuard(database))
	store := recipes.NewIngredientStore(database)
	ctx := context.Background()

	created, repriced, unchanged := 0, 0, 0
	for _, row := range rows {
		ingredient, err := findIngredientByName(ctx, database, uint(bakeryID), row.Name)
		if err != nil {
			return fmt.Errorf("resolve %q: %w", row.Name, err)
		}

		if ingredient == nil {
			record := models.Ingredient{
				BakeryID:    uint(bakeryID),
				Name:        row.Name,
				Unit:        row.Unit,
				CostPerUnit: row.Cost,
			}
			if err := store.Create(ctx, &record); err != nil {
				return fmt.Errorf("create %q: %w", row.Name, err)
			}
			created++
			continue
		}

		if ingredient.CostPerUnit == row.Cost {
			unchanged++
			continue
		}

		_, results, err := service.ChangeIngredientCost(ctx, uint(bakeryID), ingredient.ID, row.Cost)
		if err != nil {
			return fmt.Errorf("update %q: %w", row.Name, err)
		}
		for _, result := range results {
			if result.Err != nil {
				fmt.Fprintf(os.Stderr, "warning: recipe %d not re-priced: %v\n", result.RecipeID, result.Err)
			}
		}
		repriced++
	}

	fmt.Printf("imported %d rows: %d created, %d re-priced, %d unchanged\n", len(rows), created, repriced, unchanged)
	return nil
}

func findIngredientByName(ctx context.Context, database *gorm.DB, bakeryID uint, name string) (*models.Ingredient, error) {
	var ingredient models.Ingredient
	err := database.WithContext(ctx).
		Where("bakery_id = ? AND lower(name) = ?", bakeryID, strings.ToLower(name)).
		First(&ingredient).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &ingredient, nil
}

func readPriceList(path string) ([]priceRow, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return readCSV(path)
	case ".pdf":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		text, err := extractTextFromPDF(data)
		if err != nil {
			return nil, err
		}
		return parsePriceText(text), nil
	default:
		return nil, fmt.Errorf("unsupported price list format %q", filepath.Ext(path))
	}
}

// readCSV expects rows of name,unit,cost with an optional header line.
func readCSV(path string) ([]priceRow, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	rows := make([]priceRow, 0, len(records))
	for _, record := range records {
		if len(record) < 3 {
			continue
		}
		cost, err := strconv.ParseFloat(strings.TrimSpace(record[2]), 64)
		if err != nil {
			// Header or malformed line.
			continue
		}
		name := normalizeName(record[0])
		if name == "" || cost < 0 {
			continue
		}
		unit := strings.TrimSpace(record[1])
		if unit == "" {
			unit = "g"
		}
		rows = append(rows, priceRow{Name: name, Unit: unit, Cost: cost})
	}
	return rows, nil
}

// parsePriceText pulls "name ... price" pairs out of extracted PDF text, one
// entry per line with the unit cost as the trailing number.
func parsePriceText(text string) []priceRow {
	var rows []priceRow
	for _, line := range strings.Split(text, "\n") {
		match := priceLine.FindStringSubmatch(strings.TrimSpace(line))
		if match == nil {
			continue
		}
		cost, err := strconv.ParseFloat(match[2], 64)
		if err != nil || cost < 0 {
			continue
		}
		name := normalizeName(match[1])
		if name == "" {
			continue
		}
		rows = append(rows, priceRow{Name: name, Unit: "g", Cost: cost})
	}
	return rows
}

func normalizeName(value string) string {
	return cleanWhitespace.ReplaceAllString(strings.TrimSpace(value), " ")
}

func extractTextFromPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	var builder strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", err
		}
		builder.WriteString(text)
		builder.WriteString("\n")
	}
	return builder.String(), nil
}
