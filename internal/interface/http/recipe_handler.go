package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/pastryjoy-api/config"
	"github.com/oksasatya/pastryjoy-api/internal/application"
	"github.com/oksasatya/pastryjoy-api/pkg/response"
)

type RecipeHandler struct {
	Svc    *application.RecipeService
	Cfg    *config.Config
	Logger *logrus.Logger
}

func NewRecipeHandler(svc *application.RecipeService, cfg *config.Config, logger *logrus.Logger) *RecipeHandler {
	return &RecipeHandler{Svc: svc, Cfg: cfg, Logger: logger}
}

type recipeLineRequest struct {
	IngredientID uuid.UUID       `json:"ingredient_id" binding:"required"`
	Quantity     decimal.Decimal `json:"quantity" binding:"decimal_gt0"`
}

type recipeRequest struct {
	Name         string              `json:"name" binding:"required,max=255"`
	Instructions string              `json:"instructions" binding:"omitempty,max=10000"`
	Ingredients  []recipeLineRequest `json:"ingredients" binding:"omitempty,dive"`
}

func (r recipeRequest) input() application.RecipeInput {
	in := application.RecipeInput{Name: r.Name, Instructions: r.Instructions}
	for _, l := range r.Ingredients {
		in.Ingredients = append(in.Ingredients, application.RecipeLine{IngredientID: l.IngredientID, Quantity: l.Quantity})
	}
	return in
}

func (h *RecipeHandler) List(c *gin.Context) {
	p, q, ok := page(c, h.Cfg)
	if !ok {
		return
	}
	items, total, err := h.Svc.List(c.Request.Context(), q, p)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	out := make([]recipeResponse, 0, len(items))
	for _, r := range items {
		out = append(out, toRecipe(r))
	}
	response.Success(c, http.StatusOK, out, "recipes", pageMeta(p, total))
}

func (h *RecipeHandler) Create(c *gin.Context) {
	var req recipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	r, err := h.Svc.Create(c.Request.Context(), req.input())
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, toRecipe(r), "recipe created", nil)
}

func (h *RecipeHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	r, err := h.Svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toRecipe(r), "recipe", nil)
}

func (h *RecipeHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req recipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	r, err := h.Svc.Update(c.Request.Context(), id, req.input())
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toRecipe(r), "recipe updated", nil)
}

func (h *RecipeHandler) Delete(c *gin.Context) {
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

func (h *RecipeHandler) Cost(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	rc, err := h.Svc.Cost(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, recipeCostResponse{
		RecipeID:  rc.Recipe.ID,
		Name:      rc.Recipe.Name,
		TotalCost: money(rc.Total),
		Currency:  rc.Total.Currency(),
	}, "recipe cost", nil)
}
