package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/pastryjoy-api/config"
	"github.com/oksasatya/pastryjoy-api/internal/application"
	"github.com/oksasatya/pastryjoy-api/pkg/response"
)

type UserHandler struct {
	Svc    *application.UserService
	Cfg    *config.Config
	Logger *logrus.Logger
}

func NewUserHandler(svc *application.UserService, cfg *config.Config, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Cfg: cfg, Logger: logger}
}

type updateSettingsRequest struct {
	PreferredLanguage string `json:"preferred_language" binding:"required,lang"`
}

func (h *UserHandler) GetSettings(c *gin.Context) {
	u := currentUser(c)
	response.Success(c, http.StatusOK, settingsResponse{PreferredLanguage: u.Settings.PreferredLanguage}, "settings", nil)
}

func (h *UserHandler) UpdateSettings(c *gin.Context) {
	var req updateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	u, err := h.Svc.UpdateSettings(c.Request.Context(), currentUser(c).ID, req.PreferredLanguage)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, settingsResponse{PreferredLanguage: u.Settings.PreferredLanguage}, "settings updated", nil)
}

// List is admin only.
func (h *UserHandler) List(c *gin.Context) {
	p, _, ok := page(c, h.Cfg)
	if !ok {
		return
	}
	users, total, err := h.Svc.ListUsers(c.Request.Context(), p)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUser(u))
	}
	response.Success(c, http.StatusOK, out, "users", pageMeta(p, total))
}
