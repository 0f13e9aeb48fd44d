package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/pastryjoy-api/config"
	"github.com/oksasatya/pastryjoy-api/internal/application"
	"github.com/oksasatya/pastryjoy-api/pkg/response"
)

const maxImageBytes = 5 << 20

type ProductHandler struct {
	Svc    *application.ProductService
	Cfg    *config.Config
	Logger *logrus.Logger
}

func NewProductHandler(svc *application.ProductService, cfg *config.Config, logger *logrus.Logger) *ProductHandler {
	return &ProductHandler{Svc: svc, Cfg: cfg, Logger: logger}
}

type productRecipeRequest struct {
	RecipeID uuid.UUID       `json:"recipe_id" binding:"required"`
	Quantity decimal.Decimal `json:"quantity" binding:"decimal_gt0"`
}

type productRequest struct {
	Name                    string                 `json:"name" binding:"required,max=255"`
	ImageURL                string                 `json:"image_url" binding:"omitempty,url,max=2048"`
	FixedCosts              *decimal.Decimal       `json:"fixed_costs" binding:"omitempty,decimal_gte0"`
	VariableCostsPercentage *decimal.Decimal       `json:"variable_costs_percentage" binding:"omitempty,decimal_gte0,lte=100"`
	ProfitMarginPercentage  *decimal.Decimal       `json:"profit_margin_percentage" binding:"omitempty,decimal_gte0"`
	Recipes                 []productRecipeRequest `json:"recipes" binding:"omitempty,dive"`
}

func orZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}

func (r productRequest) input() application.ProductInput {
	in := application.ProductInput{
		Name:                    r.Name,
		ImageURL:                r.ImageURL,
		FixedCosts:              orZero(r.FixedCosts),
		VariableCostsPercentage: orZero(r.VariableCostsPercentage),
		ProfitMarginPercentage:  orZero(r.ProfitMarginPercentage),
	}
	for _, l := range r.Recipes {
		in.Recipes = append(in.Recipes, application.ProductRecipeLine{RecipeID: l.RecipeID, Quantity: l.Quantity})
	}
	return in
}

func (h *ProductHandler) List(c *gin.Context) {
	p, q, ok := page(c, h.Cfg)
	if !ok {
		return
	}
	items, total, err := h.Svc.List(c.Request.Context(), q, p)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toProducts(items), "products", pageMeta(p, total))
}

// Search runs the full-text product search. Total reports the page size
// because the index does not return an exact hit count.
func (h *ProductHandler) Search(c *gin.Context) {
	p, q, ok := page(c, h.Cfg)
	if !ok {
		return
	}
	items, err := h.Svc.Search(c.Request.Context(), q, p)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toProducts(items), "products", pageMeta(p, int64(len(items))))
}

func (h *ProductHandler) Create(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	p, err := h.Svc.Create(c.Request.Context(), req.input())
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, toProduct(p), "product created", nil)
}

func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	p, err := h.Svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toProduct(p), "product", nil)
}

func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	p, err := h.Svc.Update(c.Request.Context(), id, req.input())
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toProduct(p), "product updated", nil)
}

func (h *ProductHandler) Delete(c *gin.Context) {
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

func (h *ProductHandler) Cost(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	p, pc, err := h.Svc.Cost(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toProductCost(p, pc), "product cost", nil)
}

// UploadImage expects a multipart form with the image in the "file" field.
func (h *ProductHandler) UploadImage(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImageBytes+1<<10)
	fh, err := c.FormFile("file")
	if err != nil {
		response.Error[any](c, http.StatusUnprocessableEntity, "invalid payload", map[string]string{"file": "is required"})
		return
	}
	if fh.Size > maxImageBytes {
		response.Error[any](c, http.StatusUnprocessableEntity, "invalid payload", map[string]string{"file": "must be at most 5 MB"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	defer f.Close()

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		head := make([]byte, 512)
		n, _ := f.Read(head)
		contentType = http.DetectContentType(head[:n])
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			respondError(c, h.Logger, err)
			return
		}
	}
	p, err := h.Svc.UploadImage(c.Request.Context(), id, fh.Filename, contentType, f)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toProduct(p), "product image uploaded", nil)
}
