package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/pastryjoy-api/config"
	"github.com/oksasatya/pastryjoy-api/internal/application"
	"github.com/oksasatya/pastryjoy-api/internal/domain/entity"
	repo "github.com/oksasatya/pastryjoy-api/internal/domain/repository"
	"github.com/oksasatya/pastryjoy-api/pkg/response"
)

type OrderHandler struct {
	Svc    *application.OrderService
	Cfg    *config.Config
	Logger *logrus.Logger
}

func NewOrderHandler(svc *application.OrderService, cfg *config.Config, logger *logrus.Logger) *OrderHandler {
	return &OrderHandler{Svc: svc, Cfg: cfg, Logger: logger}
}

type orderItemRequest struct {
	ProductID uuid.UUID        `json:"product_id" binding:"required"`
	Quantity  decimal.Decimal  `json:"quantity" binding:"decimal_gt0"`
	UnitPrice *decimal.Decimal `json:"unit_price" binding:"omitempty,decimal_gte0"`
}

type createOrderRequest struct {
	CustomerName  string             `json:"customer_name" binding:"required,max=255"`
	CustomerEmail string             `json:"customer_email" binding:"required,email,max=255"`
	Notes         string             `json:"notes" binding:"omitempty,max=2000"`
	Items         []orderItemRequest `json:"items" binding:"required,min=1,dive"`
}

// Items left out of an update keep the current lines.
type updateOrderRequest struct {
	CustomerName  string             `json:"customer_name" binding:"required,max=255"`
	CustomerEmail string             `json:"customer_email" binding:"required,email,max=255"`
	Notes         string             `json:"notes" binding:"omitempty,max=2000"`
	Items         []orderItemRequest `json:"items" binding:"omitempty,min=1,dive"`
}

type orderStatusRequest struct {
	Status string `json:"status" binding:"required,orderstatus"`
}

type orderListQuery struct {
	Status        string `form:"status" binding:"omitempty,orderstatus"`
	CustomerEmail string `form:"customer_email" binding:"omitempty,email"`
}

func orderItems(items []orderItemRequest) []application.OrderItemInput {
	if items == nil {
		return nil
	}
	out := make([]application.OrderItemInput, 0, len(items))
	for _, it := range items {
		out = append(out, application.OrderItemInput{ProductID: it.ProductID, Quantity: it.Quantity, UnitPrice: it.UnitPrice})
	}
	return out
}

func (h *OrderHandler) respondOrder(c *gin.Context, status int, o *entity.Order, msg string) {
	out, err := toOrder(o)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, status, out, msg, nil)
}

func (h *OrderHandler) List(c *gin.Context) {
	p, _, ok := page(c, h.Cfg)
	if !ok {
		return
	}
	var q orderListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err)
		return
	}
	f := repo.OrderFilter{Status: entity.OrderStatus(q.Status), CustomerEmail: q.CustomerEmail}
	items, total, err := h.Svc.List(c.Request.Context(), currentUser(c), f, p)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	out := make([]orderResponse, 0, len(items))
	for _, o := range items {
		r, err := toOrder(o)
		if err != nil {
			respondError(c, h.Logger, err)
			return
		}
		out = append(out, r)
	}
	response.Success(c, http.StatusOK, out, "orders", pageMeta(p, total))
}

func (h *OrderHandler) Create(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	o, err := h.Svc.Create(c.Request.Context(), currentUser(c), application.OrderInput{
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		Notes:         req.Notes,
		Items:         orderItems(req.Items),
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	h.respondOrder(c, http.StatusCreated, o, "order created")
}

func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	o, err := h.Svc.Get(c.Request.Context(), currentUser(c), id)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	h.respondOrder(c, http.StatusOK, o, "order")
}

func (h *OrderHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req updateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	o, err := h.Svc.Update(c.Request.Context(), currentUser(c), id, application.OrderInput{
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		Notes:         req.Notes,
		Items:         orderItems(req.Items),
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	h.respondOrder(c, http.StatusOK, o, "order updated")
}

func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req orderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	o, err := h.Svc.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	h.respondOrder(c, http.StatusOK, o, "order status updated")
}

func (h *OrderHandler) Delete(c *gin.Context) {
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
