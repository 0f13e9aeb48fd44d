package handlers

import (
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/pastryjoy-api/internal/application"
	"github.com/oksasatya/pastryjoy-api/internal/domain/entity"
)

// Amounts are rendered as fixed-point strings so clients never see float
// rounding artefacts.
func money(m entity.Money) string { return m.Amount().StringFixed(2) }

type userResponse struct {
	ID                uuid.UUID `json:"id"`
	Email             string    `json:"email"`
	Username          string    `json:"username"`
	FullName          string    `json:"full_name,omitempty"`
	Role              string    `json:"role"`
	IsActive          bool      `json:"is_active"`
	PreferredLanguage string    `json:"preferred_language"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func toUser(u *entity.User) userResponse {
	return userResponse{
		ID:                u.ID,
		Email:             u.Email,
		Username:          u.Username,
		FullName:          u.FullName,
		Role:              string(u.Role),
		IsActive:          u.IsActive,
		PreferredLanguage: u.Settings.PreferredLanguage,
		CreatedAt:         u.CreatedAt,
		UpdatedAt:         u.UpdatedAt,
	}
}

type settingsResponse struct {
	PreferredLanguage string `json:"preferred_language"`
}

type tokenResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresAt   time.Time    `json:"expires_at"`
	User        userResponse `json:"user"`
}

func toToken(u *entity.User, t application.Token) tokenResponse {
	return tokenResponse{AccessToken: t.AccessToken, TokenType: t.TokenType, ExpiresAt: t.ExpiresAt, User: toUser(u)}
}

type ingredientResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Unit      string    `json:"unit"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toIngredient(i *entity.Ingredient) ingredientResponse {
	return ingredientResponse{ID: i.ID, Name: i.Name, Unit: string(i.Unit), CreatedAt: i.CreatedAt, UpdatedAt: i.UpdatedAt}
}

type ingredientCostResponse struct {
	ID            uuid.UUID `json:"id"`
	IngredientID  uuid.UUID `json:"ingredient_id"`
	CostPerUnit   string    `json:"cost_per_unit"`
	Currency      string    `json:"currency"`
	EffectiveDate time.Time `json:"effective_date"`
	CreatedAt     time.Time `json:"created_at"`
}

func toIngredientCost(c *entity.IngredientCost) ingredientCostResponse {
	return ingredientCostResponse{
		ID:            c.ID,
		IngredientID:  c.IngredientID,
		CostPerUnit:   c.CostPerUnit.Amount().StringFixed(4),
		Currency:      c.CostPerUnit.Currency(),
		EffectiveDate: c.EffectiveDate,
		CreatedAt:     c.CreatedAt,
	}
}

type recipeIngredientResponse struct {
	IngredientID uuid.UUID `json:"ingredient_id"`
	Quantity     string    `json:"quantity"`
}

type recipeResponse struct {
	ID           uuid.UUID                  `json:"id"`
	Name         string                     `json:"name"`
	Instructions string                     `json:"instructions,omitempty"`
	Ingredients  []recipeIngredientResponse `json:"ingredients"`
	CreatedAt    time.Time                  `json:"created_at"`
	UpdatedAt    time.Time                  `json:"updated_at"`
}

func toRecipe(r *entity.Recipe) recipeResponse {
	out := recipeResponse{
		ID:           r.ID,
		Name:         r.Name,
		Instructions: r.Instructions,
		Ingredients:  make([]recipeIngredientResponse, 0, len(r.Ingredients)),
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
	for _, ri := range r.Ingredients {
		out.Ingredients = append(out.Ingredients, recipeIngredientResponse{IngredientID: ri.IngredientID, Quantity: ri.Quantity.String()})
	}
	return out
}

type recipeCostResponse struct {
	RecipeID  uuid.UUID `json:"recipe_id"`
	Name      string    `json:"name"`
	TotalCost string    `json:"total_cost"`
	Currency  string    `json:"currency"`
}

type productRecipeResponse struct {
	RecipeID uuid.UUID `json:"recipe_id"`
	Quantity string    `json:"quantity"`
}

type productResponse struct {
	ID                      uuid.UUID               `json:"id"`
	Name                    string                  `json:"name"`
	ImageURL                string                  `json:"image_url,omitempty"`
	Recipes                 []productRecipeResponse `json:"recipes"`
	FixedCosts              string                  `json:"fixed_costs"`
	Currency                string                  `json:"currency"`
	VariableCostsPercentage string                  `json:"variable_costs_percentage"`
	ProfitMarginPercentage  string                  `json:"profit_margin_percentage"`
	CreatedAt               time.Time               `json:"created_at"`
	UpdatedAt               time.Time               `json:"updated_at"`
}

func toProduct(p *entity.Product) productResponse {
	out := productResponse{
		ID:                      p.ID,
		Name:                    p.Name,
		ImageURL:                p.ImageURL,
		Recipes:                 make([]productRecipeResponse, 0, len(p.Recipes)),
		FixedCosts:              money(p.FixedCosts),
		Currency:                p.FixedCosts.Currency(),
		VariableCostsPercentage: p.VariableCostsPercentage.StringFixed(2),
		ProfitMarginPercentage:  p.ProfitMarginPercentage.StringFixed(2),
		CreatedAt:               p.CreatedAt,
		UpdatedAt:               p.UpdatedAt,
	}
	for _, pr := range p.Recipes {
		out.Recipes = append(out.Recipes, productRecipeResponse{RecipeID: pr.RecipeID, Quantity: pr.Quantity.String()})
	}
	return out
}

func toProducts(ps []*entity.Product) []productResponse {
	out := make([]productResponse, 0, len(ps))
	for _, p := range ps {
		out = append(out, toProduct(p))
	}
	return out
}

type productCostResponse struct {
	ProductID     uuid.UUID `json:"product_id"`
	Name          string    `json:"name"`
	RecipeCosts   string    `json:"recipe_costs"`
	FixedCosts    string    `json:"fixed_costs"`
	VariableCosts string    `json:"variable_costs"`
	ProfitMargin  string    `json:"profit_margin"`
	TotalCost     string    `json:"total_cost"`
	Currency      string    `json:"currency"`
}

func toProductCost(p *entity.Product, pc entity.ProductCost) productCostResponse {
	return productCostResponse{
		ProductID:     p.ID,
		Name:          p.Name,
		RecipeCosts:   money(pc.RecipeCosts),
		FixedCosts:    money(pc.FixedCosts),
		VariableCosts: money(pc.VariableCosts),
		ProfitMargin:  money(pc.ProfitMargin),
		TotalCost:     money(pc.Total),
		Currency:      pc.Total.Currency(),
	}
}

type orderItemResponse struct {
	ID        uuid.UUID `json:"id"`
	ProductID uuid.UUID `json:"product_id"`
	Quantity  string    `json:"quantity"`
	UnitPrice string    `json:"unit_price"`
	Total     string    `json:"total"`
}

type orderResponse struct {
	ID              uuid.UUID           `json:"id"`
	CustomerName    string              `json:"customer_name"`
	CustomerEmail   string              `json:"customer_email"`
	Status          string              `json:"status"`
	Notes           string              `json:"notes,omitempty"`
	Currency        string              `json:"currency"`
	Items           []orderItemResponse `json:"items"`
	Total           string              `json:"total"`
	CreatedByUserID uuid.UUID           `json:"created_by_user_id"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

func toOrder(o *entity.Order) (orderResponse, error) {
	out := orderResponse{
		ID:              o.ID,
		CustomerName:    o.CustomerName,
		CustomerEmail:   o.CustomerEmail,
		Status:          string(o.Status),
		Notes:           o.Notes,
		Currency:        o.Currency,
		Items:           make([]orderItemResponse, 0, len(o.Items)),
		CreatedByUserID: o.CreatedByUserID,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
	for _, it := range o.Items {
		line, err := it.Total()
		if err != nil {
			return orderResponse{}, err
		}
		out.Items = append(out.Items, orderItemResponse{
			ID:        it.ID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity.String(),
			UnitPrice: money(it.UnitPrice),
			Total:     money(line),
		})
	}
	total, err := o.Total()
	if err != nil {
		return orderResponse{}, err
	}
	out.Total = money(total)
	return out, nil
}
