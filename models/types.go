package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// StringList stores an ordered list of strings in a single text column,
// encoded as JSON.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (l *StringList) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*l = nil
		return nil
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("cannot scan %T into StringList", value)
	}
}

// Equal reports whether both lists hold the same values in the same order.
func (l StringList) Equal(other StringList) bool {
	if len(l) != len(other) {
		return false
	}
	for i := range l {
		if l[i] != other[i] {
			return false
		}
	}
	return true
}

// IngredientSnapshot is one line of an archived recipe composition. Values are
// copies of the RecipeIngredient row as it stood before a version bump.
type IngredientSnapshot struct {
	IngredientID uint     `json:"ingredient_id"`
	Name         string   `json:"name"`
	Quantity     float64  `json:"quantity"`
	BaseQuantity float64  `json:"base_quantity"`
	Unit         string   `json:"unit"`
	CostPerUnit  float64  `json:"cost_per_unit"`
	Notes        string   `json:"notes,omitempty"`
	Allergens    []string `json:"allergens,omitempty"`
}

// IngredientSnapshots stores a full composition snapshot in one text column.
type IngredientSnapshots []IngredientSnapshot

func (s IngredientSnapshots) Value() (driver.Value, error) {
	if s == nil {
		s = IngredientSnapshots{}
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (s *IngredientSnapshots) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*s = nil
		return nil
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("cannot scan %T into IngredientSnapshots", value)
	}
}

// SnapshotIngredients copies the given composition rows into snapshot values.
func SnapshotIngredients(rows []RecipeIngredient) IngredientSnapshots {
	snapshots := make(IngredientSnapshots, 0, len(rows))
	for _, row := range rows {
		snapshots = append(snapshots, IngredientSnapshot{
			IngredientID: row.IngredientID,
			Name:         row.Name,
			Quantity:     row.Quantity,
			BaseQuantity: row.BaseQuantity,
			Unit:         row.Unit,
			CostPerUnit:  row.CostPerUnit,
			Notes:        row.Notes,
			Allergens:    append([]string(nil), row.Allergens...),
		})
	}
	return snapshots
}
