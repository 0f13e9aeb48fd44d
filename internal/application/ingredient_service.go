package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/pastryjoy-api/internal/domain/entity"
	repo "github.com/oksasatya/pastryjoy-api/internal/domain/repository"
)

// Ingredient prices keep four decimal places.
const costPlaces = 4

type IngredientService struct {
	Repo     repo.IngredientRepository
	Costs    repo.IngredientCostRepository
	Currency string
	Logger   *logrus.Logger
}

type CostInput struct {
	CostPerUnit   decimal.Decimal
	Currency      string
	EffectiveDate time.Time
}

func NewIngredientService(r repo.IngredientRepository, costs repo.IngredientCostRepository, currency string, logger *logrus.Logger) *IngredientService {
	return &IngredientService{Repo: r, Costs: costs, Currency: currency, Logger: logger}
}

func (s *IngredientService) Create(ctx context.Context, name, unit string) (*entity.Ingredient, error) {
	u, err := entity.ParseMeasurementUnit(unit)
	if err != nil {
		return nil, err
	}
	ing, err := entity.NewIngredient(name, u)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.Create(ctx, ing); err != nil {
		return nil, err
	}
	return ing, nil
}

func (s *IngredientService) Get(ctx context.Context, id uuid.UUID) (*entity.Ingredient, error) {
	return s.Repo.GetByID(ctx, id)
}

// List pages through ingredients, optionally filtered by a name fragment.
// Filtered listings report the size of the returned page as the total.
func (s *IngredientService) List(ctx context.Context, q string, page repo.Page) ([]*entity.Ingredient, int64, error) {
	if q = strings.TrimSpace(q); q != "" {
		items, err := s.Repo.SearchByName(ctx, q, page)
		return items, int64(len(items)), err
	}
	items, err := s.Repo.GetAll(ctx, page)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.Repo.Count(ctx)
	return items, total, err
}

func (s *IngredientService) Update(ctx context.Context, id uuid.UUID, name, unit string) (*entity.Ingredient, error) {
	ing, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	u, err := entity.ParseMeasurementUnit(unit)
	if err != nil {
		return nil, err
	}
	if err := ing.Update(name, u); err != nil {
		return nil, err
	}
	if err := s.Repo.Update(ctx, ing); err != nil {
		return nil, err
	}
	return ing, nil
}

// Delete removes an ingredient and its price history. Ingredients still used
// by a recipe are kept.
func (s *IngredientService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.Repo.Delete(ctx, id)
	if errors.Is(err, repo.ErrInvalidReference) {
		return fmt.Errorf("%w: ingredient %s is used by a recipe", ErrInUse, id)
	}
	return err
}

// AddCost records a new price point. Prices must be in the base currency.
func (s *IngredientService) AddCost(ctx context.Context, ingredientID uuid.UUID, in CostInput) (*entity.IngredientCost, error) {
	if _, err := s.Repo.GetByID(ctx, ingredientID); err != nil {
		return nil, err
	}
	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = s.Currency
	}
	if currency != s.Currency {
		return nil, fmt.Errorf("%w: cost in %s, base currency %s", entity.ErrCurrencyMismatch, currency, s.Currency)
	}
	amount, err := entity.NewMoney(in.CostPerUnit.Round(costPlaces), currency)
	if err != nil {
		return nil, err
	}
	cost, err := entity.NewIngredientCost(ingredientID, amount, in.EffectiveDate)
	if err != nil {
		return nil, err
	}
	if err := s.Costs.Create(ctx, cost); err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{
			"ingredient_id": ingredientID,
			"cost":          cost.CostPerUnit.String(),
		}).Info("ingredient cost recorded")
	}
	return cost, nil
}

// CostHistory returns the price history, newest effective date first.
func (s *IngredientService) CostHistory(ctx context.Context, ingredientID uuid.UUID) ([]*entity.IngredientCost, error) {
	if _, err := s.Repo.GetByID(ctx, ingredientID); err != nil {
		return nil, err
	}
	return s.Costs.GetByIngredientID(ctx, ingredientID)
}

// CurrentCost returns the price in effect at the given time; a zero time means now.
func (s *IngredientService) CurrentCost(ctx context.Context, ingredientID uuid.UUID, at time.Time) (*entity.IngredientCost, error) {
	if _, err := s.Repo.GetByID(ctx, ingredientID); err != nil {
		return nil, err
	}
	if at.IsZero() {
		return s.Costs.GetCurrentCost(ctx, ingredientID)
	}
	return s.Costs.GetCostAtDate(ctx, ingredientID, at)
}
