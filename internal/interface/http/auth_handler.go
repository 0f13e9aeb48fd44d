package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/pastryjoy-api/internal/application"
	"github.com/oksasatya/pastryjoy-api/pkg/response"
)

type AuthHandler struct {
	Svc    *application.UserService
	Logger *logrus.Logger
}

func NewAuthHandler(svc *application.UserService, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Svc: svc, Logger: logger}
}

type registerRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Username string `json:"username" binding:"required,min=3,max=50"`
	Password string `json:"password" binding:"required,pwd"`
	FullName string `json:"full_name" binding:"omitempty,max=255"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	u, err := h.Svc.Register(c.Request.Context(), application.RegisterInput{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
		FullName: req.FullName,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, toUser(u), "user registered", nil)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	u, tok, err := h.Svc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toToken(u, tok), "login successful", nil)
}

func (h *AuthHandler) Me(c *gin.Context) {
	u := currentUser(c)
	if u == nil {
		response.Error[any](c, http.StatusUnauthorized, "not authenticated", nil)
		return
	}
	response.Success(c, http.StatusOK, toUser(u), "profile", nil)
}
