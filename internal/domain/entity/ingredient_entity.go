package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Ingredient struct {
	ID        uuid.UUID
	Name      string
	Unit      MeasurementUnit
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewIngredient(name string, unit MeasurementUnit) (*Ingredient, error) {
	i := &Ingredient{ID: uuid.New()}
	if err := i.Update(name, unit); err != nil {
		return nil, err
	}
	i.CreatedAt = i.UpdatedAt
	return i, nil
}

// Update replaces the mutable fields after validating them.
func (i *Ingredient) Update(name string, unit MeasurementUnit) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return invalid("name", "is required")
	}
	if !unit.IsValid() {
		return invalid("unit", "must be one of kg, g, l, ml, unit, tbsp, tsp, cup")
	}
	i.Name = name
	i.Unit = unit
	i.UpdatedAt = Now()
	return nil
}

// IngredientCost is a price point for one unit of an ingredient starting at
// EffectiveDate. An ingredient accumulates many of these over time.
type IngredientCost struct {
	ID            uuid.UUID
	IngredientID  uuid.UUID
	CostPerUnit   Money
	EffectiveDate time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewIngredientCost defaults a zero effective date to now.
func NewIngredientCost(ingredientID uuid.UUID, cost Money, effective time.Time) (*IngredientCost, error) {
	if ingredientID == uuid.Nil {
		return nil, invalid("ingredient_id", "is required")
	}
	if cost.Currency() == "" {
		return nil, invalid("cost_per_unit", "is required")
	}
	now := Now()
	if effective.IsZero() {
		effective = now
	}
	return &IngredientCost{
		ID:            uuid.New(),
		IngredientID:  ingredientID,
		CostPerUnit:   cost,
		EffectiveDate: effective.UTC().Truncate(time.Microsecond),
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// LatestCost picks the record with the greatest effective date.
func LatestCost(costs []*IngredientCost) *IngredientCost {
	var latest *IngredientCost
	for _, c := range costs {
		if latest == nil || c.EffectiveDate.After(latest.EffectiveDate) {
			latest = c
		}
	}
	return latest
}

// CostAt picks the latest record effective on or before t.
func CostAt(costs []*IngredientCost, t time.Time) *IngredientCost {
	var best *IngredientCost
	for _, c := range costs {
		if c.EffectiveDate.After(t) {
			continue
		}
		if best == nil || c.EffectiveDate.After(best.EffectiveDate) {
			best = c
		}
	}
	return best
}
