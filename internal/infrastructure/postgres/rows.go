package postgres

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/oksasatya/pastryjoy-api/internal/domain/entity"
)

// Row types mirror the table columns. Mapping between rows and entities is
// kept here so the repositories only deal with SQL.

// pgTime normalizes a timestamp to what TIMESTAMPTZ stores and pgx scans
// back: microsecond precision, and UTC instead of the scanner's local zone.
func pgTime(t time.Time) time.Time {
	return t.Truncate(time.Microsecond).UTC()
}

type userRow struct {
	ID                uuid.UUID
	Email             string
	Username          string
	HashedPassword    string
	Role              string
	IsActive          bool
	FullName          string
	PreferredLanguage string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func userToRow(u *entity.User) userRow {
	return userRow{
		ID:                u.ID,
		Email:             u.Email,
		Username:          u.Username,
		HashedPassword:    u.HashedPassword,
		Role:              string(u.Role),
		IsActive:          u.IsActive,
		FullName:          u.FullName,
		PreferredLanguage: u.Settings.PreferredLanguage,
		CreatedAt:         pgTime(u.CreatedAt),
		UpdatedAt:         pgTime(u.UpdatedAt),
	}
}

func (r userRow) toEntity() (*entity.User, error) {
	role, err := entity.ParseUserRole(r.Role)
	if err != nil {
		return nil, fmt.Errorf("user %s: %w", r.ID, err)
	}
	return &entity.User{
		ID:             r.ID,
		Email:          r.Email,
		Username:       r.Username,
		HashedPassword: r.HashedPassword,
		Role:           role,
		IsActive:       r.IsActive,
		FullName:       r.FullName,
		Settings:       entity.SettingsFromLanguage(r.PreferredLanguage),
		CreatedAt:      pgTime(r.CreatedAt),
		UpdatedAt:      pgTime(r.UpdatedAt),
	}, nil
}

type ingredientRow struct {
	ID        uuid.UUID
	Name      string
	Unit      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func ingredientToRow(i *entity.Ingredient) ingredientRow {
	return ingredientRow{ID: i.ID, Name: i.Name, Unit: string(i.Unit), CreatedAt: pgTime(i.CreatedAt), UpdatedAt: pgTime(i.UpdatedAt)}
}

func (r ingredientRow) toEntity() (*entity.Ingredient, error) {
	unit, err := entity.ParseMeasurementUnit(r.Unit)
	if err != nil {
		return nil, fmt.Errorf("ingredient %s: %w", r.ID, err)
	}
	return &entity.Ingredient{ID: r.ID, Name: r.Name, Unit: unit, CreatedAt: pgTime(r.CreatedAt), UpdatedAt: pgTime(r.UpdatedAt)}, nil
}

type ingredientCostRow struct {
	ID            uuid.UUID
	IngredientID  uuid.UUID
	CostAmount    decimal.Decimal
	CostCurrency  string
	EffectiveDate time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func ingredientCostToRow(c *entity.IngredientCost) ingredientCostRow {
	return ingredientCostRow{
		ID:            c.ID,
		IngredientID:  c.IngredientID,
		CostAmount:    c.CostPerUnit.Amount(),
		CostCurrency:  c.CostPerUnit.Currency(),
		EffectiveDate: pgTime(c.EffectiveDate),
		CreatedAt:     pgTime(c.CreatedAt),
		UpdatedAt:     pgTime(c.UpdatedAt),
	}
}

func (r ingredientCostRow) toEntity() (*entity.IngredientCost, error) {
	cost, err := entity.NewMoney(r.CostAmount, r.CostCurrency)
	if err != nil {
		return nil, fmt.Errorf("ingredient cost %s: %w", r.ID, err)
	}
	return &entity.IngredientCost{
		ID:            r.ID,
		IngredientID:  r.IngredientID,
		CostPerUnit:   cost,
		EffectiveDate: pgTime(r.EffectiveDate),
		CreatedAt:     pgTime(r.CreatedAt),
		UpdatedAt:     pgTime(r.UpdatedAt),
	}, nil
}

type recipeRow struct {
	ID           uuid.UUID
	Name         string
	Instructions string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type recipeIngredientRow struct {
	RecipeID     uuid.UUID
	IngredientID uuid.UUID
	Quantity     decimal.Decimal
	Position     int
}

func recipeToRows(r *entity.Recipe) (recipeRow, []recipeIngredientRow) {
	lines := make([]recipeIngredientRow, len(r.Ingredients))
	for i, ri := range r.Ingredients {
		lines[i] = recipeIngredientRow{RecipeID: r.ID, IngredientID: ri.IngredientID, Quantity: ri.Quantity, Position: i}
	}
	return recipeRow{ID: r.ID, Name: r.Name, Instructions: r.Instructions, CreatedAt: pgTime(r.CreatedAt), UpdatedAt: pgTime(r.UpdatedAt)}, lines
}

// lines must already be ordered by position.
func (r recipeRow) toEntity(lines []recipeIngredientRow) *entity.Recipe {
	ings := make([]entity.RecipeIngredient, 0, len(lines))
	for _, l := range lines {
		ings = append(ings, entity.RecipeIngredient{IngredientID: l.IngredientID, Quantity: l.Quantity})
	}
	return &entity.Recipe{
		ID:           r.ID,
		Name:         r.Name,
		Instructions: r.Instructions,
		Ingredients:  ings,
		CreatedAt:    pgTime(r.CreatedAt),
		UpdatedAt:    pgTime(r.UpdatedAt),
	}
}

type productRow struct {
	ID                      uuid.UUID
	Name                    string
	ImageURL                string
	FixedCostsAmount        decimal.Decimal
	FixedCostsCurrency      string
	VariableCostsPercentage decimal.Decimal
	ProfitMarginPercentage  decimal.Decimal
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

type productRecipeRow struct {
	ProductID uuid.UUID
	RecipeID  uuid.UUID
	Quantity  decimal.Decimal
	Position  int
}

func productToRows(p *entity.Product) (productRow, []productRecipeRow) {
	lines := make([]productRecipeRow, len(p.Recipes))
	for i, pr := range p.Recipes {
		lines[i] = productRecipeRow{ProductID: p.ID, RecipeID: pr.RecipeID, Quantity: pr.Quantity, Position: i}
	}
	return productRow{
		ID:                      p.ID,
		Name:                    p.Name,
		ImageURL:                p.ImageURL,
		FixedCostsAmount:        p.FixedCosts.Amount(),
		FixedCostsCurrency:      p.FixedCosts.Currency(),
		VariableCostsPercentage: p.VariableCostsPercentage,
		ProfitMarginPercentage:  p.ProfitMarginPercentage,
		CreatedAt:               pgTime(p.CreatedAt),
		UpdatedAt:               pgTime(p.UpdatedAt),
	}, lines
}

func (r productRow) toEntity(lines []productRecipeRow) (*entity.Product, error) {
	fixed, err := entity.NewMoney(r.FixedCostsAmount, r.FixedCostsCurrency)
	if err != nil {
		return nil, fmt.Errorf("product %s: %w", r.ID, err)
	}
	recipes := make([]entity.ProductRecipe, 0, len(lines))
	for _, l := range lines {
		recipes = append(recipes, entity.ProductRecipe{RecipeID: l.RecipeID, Quantity: l.Quantity})
	}
	return &entity.Product{
		ID:                      r.ID,
		Name:                    r.Name,
		ImageURL:                r.ImageURL,
		Recipes:                 recipes,
		FixedCosts:              fixed,
		VariableCostsPercentage: r.VariableCostsPercentage,
		ProfitMarginPercentage:  r.ProfitMarginPercentage,
		CreatedAt:               pgTime(r.CreatedAt),
		UpdatedAt:               pgTime(r.UpdatedAt),
	}, nil
}

type orderRow struct {
	ID              uuid.UUID
	CustomerName    string
	CustomerEmail   string
	Status          string
	Notes           string
	Currency        string
	CreatedByUserID uuid.NullUUID
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type orderItemRow struct {
	ID                uuid.UUID
	OrderID           uuid.UUID
	ProductID         uuid.UUID
	Quantity          decimal.Decimal
	UnitPriceAmount   decimal.Decimal
	UnitPriceCurrency string
	CreatedAt         time.Time
}

func orderToRows(o *entity.Order) (orderRow, []orderItemRow) {
	items := make([]orderItemRow, len(o.Items))
	for i, it := range o.Items {
		items[i] = orderItemRow{
			ID:                it.ID,
			OrderID:           o.ID,
			ProductID:         it.ProductID,
			Quantity:          it.Quantity,
			UnitPriceAmount:   it.UnitPrice.Amount(),
			UnitPriceCurrency: it.UnitPrice.Currency(),
			CreatedAt:         pgTime(it.CreatedAt),
		}
	}
	return orderRow{
		ID:              o.ID,
		CustomerName:    o.CustomerName,
		CustomerEmail:   o.CustomerEmail,
		Status:          string(o.Status),
		Notes:           o.Notes,
		Currency:        o.Currency,
		CreatedByUserID: uuid.NullUUID{UUID: o.CreatedByUserID, Valid: o.CreatedByUserID != uuid.Nil},
		CreatedAt:       pgTime(o.CreatedAt),
		UpdatedAt:       pgTime(o.UpdatedAt),
	}, items
}

func (r orderRow) toEntity(items []orderItemRow) (*entity.Order, error) {
	status, err := entity.ParseOrderStatus(r.Status)
	if err != nil {
		return nil, fmt.Errorf("order %s: %w", r.ID, err)
	}
	o := &entity.Order{
		ID:            r.ID,
		CustomerName:  r.CustomerName,
		CustomerEmail: r.CustomerEmail,
		Status:        status,
		Notes:         r.Notes,
		Currency:      r.Currency,
		Items:         make([]entity.OrderItem, 0, len(items)),
		CreatedAt:     pgTime(r.CreatedAt),
		UpdatedAt:     pgTime(r.UpdatedAt),
	}
	if r.CreatedByUserID.Valid {
		o.CreatedByUserID = r.CreatedByUserID.UUID
	}
	for _, it := range items {
		price, err := entity.NewMoney(it.UnitPriceAmount, it.UnitPriceCurrency)
		if err != nil {
			return nil, fmt.Errorf("order item %s: %w", it.ID, err)
		}
		o.Items = append(o.Items, entity.OrderItem{
			ID:        it.ID,
			OrderID:   r.ID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: price,
			CreatedAt: pgTime(it.CreatedAt),
		})
	}
	return o, nil
}
