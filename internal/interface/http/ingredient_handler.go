package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/pastryjoy-api/config"
	"github.com/oksasatya/pastryjoy-api/internal/application"
	"github.com/oksasatya/pastryjoy-api/internal/domain/entity"
	"github.com/oksasatya/pastryjoy-api/pkg/response"
)

type IngredientHandler struct {
	Svc    *application.IngredientService
	Cfg    *config.Config
	Logger *logrus.Logger
}

func NewIngredientHandler(svc *application.IngredientService, cfg *config.Config, logger *logrus.Logger) *IngredientHandler {
	return &IngredientHandler{Svc: svc, Cfg: cfg, Logger: logger}
}

type ingredientRequest struct {
	Name string `json:"name" binding:"required,max=255"`
	Unit string `json:"unit" binding:"required,unit"`
}

type ingredientCostRequest struct {
	CostPerUnit   *decimal.Decimal `json:"cost_per_unit" binding:"required,decimal_gte0"`
	Currency      string           `json:"currency" binding:"omitempty,currency"`
	EffectiveDate *time.Time       `json:"effective_date"`
}

func toIngredients(items []*entity.Ingredient) []ingredientResponse {
	out := make([]ingredientResponse, 0, len(items))
	for _, i := range items {
		out = append(out, toIngredient(i))
	}
	return out
}

func (h *IngredientHandler) List(c *gin.Context) {
	p, q, ok := page(c, h.Cfg)
	if !ok {
		return
	}
	items, total, err := h.Svc.List(c.Request.Context(), q, p)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toIngredients(items), "ingredients", pageMeta(p, total))
}

func (h *IngredientHandler) Create(c *gin.Context) {
	var req ingredientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	i, err := h.Svc.Create(c.Request.Context(), req.Name, req.Unit)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, toIngredient(i), "ingredient created", nil)
}

func (h *IngredientHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	i, err := h.Svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toIngredient(i), "ingredient", nil)
}

func (h *IngredientHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req ingredientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	i, err := h.Svc.Update(c.Request.Context(), id, req.Name, req.Unit)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toIngredient(i), "ingredient updated", nil)
}

func (h *IngredientHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.Svc.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.NoContent(c)
}

func (h *IngredientHandler) AddCost(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req ingredientCostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	in := application.CostInput{CostPerUnit: *req.CostPerUnit, Currency: req.Currency}
	if req.EffectiveDate != nil {
		in.EffectiveDate = *req.EffectiveDate
	}
	cost, err := h.Svc.AddCost(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, toIngredientCost(cost), "ingredient cost recorded", nil)
}

func (h *IngredientHandler) CostHistory(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	costs, err := h.Svc.CostHistory(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	out := make([]ingredientCostResponse, 0, len(costs))
	for _, ic := range costs {
		out = append(out, toIngredientCost(ic))
	}
	response.Success(c, http.StatusOK, out, "ingredient costs", nil)
}

// CurrentCost accepts an optional ?at= as RFC 3339 or YYYY-MM-DD.
func (h *IngredientHandler) CurrentCost(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var at time.Time
	if raw := c.Query("at"); raw != "" {
		t, err := parseInstant(raw)
		if err != nil {
			response.Error[any](c, http.StatusUnprocessableEntity, "validation failed", map[string]string{"at": "must be an RFC 3339 timestamp or YYYY-MM-DD date"})
			return
		}
		at = t
	}
	cost, err := h.Svc.CurrentCost(c.Request.Context(), id, at)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toIngredientCost(cost), "current ingredient cost", nil)
}

func parseInstant(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, err
	}
	// end of day, so a cost recorded on that date counts
	return t.Add(24*time.Hour - time.Nanosecond).UTC(), nil
}
