package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/pastryjoy-api/config"
	"github.com/oksasatya/pastryjoy-api/internal/application"
	"github.com/oksasatya/pastryjoy-api/internal/domain/entity"
	repo "github.com/oksasatya/pastryjoy-api/internal/domain/repository"
	"github.com/oksasatya/pastryjoy-api/internal/interface/middleware"
	"github.com/oksasatya/pastryjoy-api/pkg/response"
	"github.com/oksasatya/pastryjoy-api/pkg/validation"
)

// respondError maps service errors to HTTP statuses. Unknown errors are
// logged and answered with a generic 500.
func respondError(c *gin.Context, logger *logrus.Logger, err error) {
	var ve *entity.ValidationError
	switch {
	case errors.As(err, &ve):
		response.Error[any](c, http.StatusUnprocessableEntity, "validation failed", map[string]string{ve.Field: ve.Message})
	case errors.Is(err, application.ErrEmailTaken):
		response.Error[any](c, http.StatusConflict, "email already registered", nil)
	case errors.Is(err, application.ErrUsernameTaken):
		response.Error[any](c, http.StatusConflict, "username already taken", nil)
	case errors.Is(err, repo.ErrDuplicate):
		response.Error[any](c, http.StatusConflict, "record already exists", nil)
	case errors.Is(err, application.ErrInUse):
		response.Error[any](c, http.StatusConflict, "record is still in use", nil)
	case errors.Is(err, entity.ErrInvalidTransition),
		errors.Is(err, entity.ErrCurrencyMismatch),
		errors.Is(err, application.ErrOrderLocked):
		response.Error[any](c, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, repo.ErrInvalidReference):
		response.Error[any](c, http.StatusBadRequest, "referenced record does not exist", nil)
	case errors.Is(err, repo.ErrConstraint):
		response.Error[any](c, http.StatusBadRequest, "value violates a storage constraint", nil)
	case errors.Is(err, application.ErrInactiveUser):
		response.Error[any](c, http.StatusUnauthorized, "user account is inactive", nil)
	case errors.Is(err, application.ErrInvalidCredentials):
		response.Error[any](c, http.StatusUnauthorized, "incorrect username or password", nil)
	case errors.Is(err, application.ErrForbidden):
		response.Error[any](c, http.StatusForbidden, "not enough permissions", nil)
	case errors.Is(err, repo.ErrNotFound), errors.Is(err, application.ErrUserNotFound):
		response.Error[any](c, http.StatusNotFound, "not found", nil)
	case errors.Is(err, application.ErrNotConfigured):
		response.Error[any](c, http.StatusServiceUnavailable, "feature not available", nil)
	default:
		if logger != nil {
			logger.WithError(err).WithFields(logrus.Fields{
				"request_id": c.GetString("request_id"),
				"path":       c.FullPath(),
			}).Error("request failed")
		}
		response.Error[any](c, http.StatusInternalServerError, "internal server error", nil)
	}
}

// bindError answers a failed ShouldBind* call with field-level details.
func bindError(c *gin.Context, err error) {
	response.Error[any](c, http.StatusUnprocessableEntity, "invalid payload", validation.ToDetails(err))
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error[any](c, http.StatusUnprocessableEntity, "validation failed", map[string]string{"id": "must be a valid UUID"})
		return uuid.Nil, false
	}
	return id, true
}

type listQuery struct {
	Skip  int    `form:"skip" binding:"omitempty,min=0"`
	Limit int    `form:"limit" binding:"omitempty,min=1"`
	Q     string `form:"q" binding:"omitempty,max=255"`
}

// page reads skip/limit/q and clamps the limit to the configured maximum.
func page(c *gin.Context, cfg *config.Config) (repo.Page, string, bool) {
	var q listQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err)
		return repo.Page{}, "", false
	}
	def, max := repo.DefaultLimit, repo.MaxLimit
	if cfg != nil {
		def, max = cfg.DefaultPageLimit, cfg.MaxPageLimit
	}
	if q.Limit == 0 {
		q.Limit = def
	}
	if q.Limit > max {
		q.Limit = max
	}
	return repo.Page{Skip: q.Skip, Limit: q.Limit}, q.Q, true
}

func pageMeta(p repo.Page, total int64) response.PageMeta {
	return response.PageMeta{Skip: p.Skip, Limit: p.Limit, Total: total}
}

func currentUser(c *gin.Context) *entity.User {
	return middleware.CurrentUser(c)
}
