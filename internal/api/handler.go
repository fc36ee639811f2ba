package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/kurihiro0119/github-issue-importer/internal/domain"
	apperrors "github.com/kurihiro0119/github-issue-importer/internal/errors"
	"github.com/kurihiro0119/github-issue-importer/internal/registry"
)

// Handler handles API requests
type Handler struct {
	registry registry.Registry
	logger   *logrus.Logger
}

// NewHandler creates a new API handler
func NewHandler(reg registry.Registry, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Handler{
		registry: reg,
		logger:   logger,
	}
}

// CreateRepository registers an imported repository
// POST /api/v1/repositories
func (h *Handler) CreateRepository(c *gin.Context) {
	var repo domain.Repository
	if err := c.ShouldBindJSON(&repo); err != nil {
		h.respondError(c, apperrors.NewBadRequestError("Invalid repository payload"))
		return
	}

	saved, err := h.registry.RegisterRepository(c.Request.Context(), &repo)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"data": saved,
	})
}

// CreateIssue saves an issue under an imported repository
// POST /api/v1/issues
func (h *Handler) CreateIssue(c *gin.Context) {
	var issue domain.Issue
	if err := c.ShouldBindJSON(&issue); err != nil {
		h.respondError(c, apperrors.NewBadRequestError("Invalid issue payload"))
		return
	}

	stored, err := h.registry.AddIssue(c.Request.Context(), &issue)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"data": stored,
	})
}

// GetRepository returns one imported repository
// GET /api/v1/repositories/:id
func (h *Handler) GetRepository(c *gin.Context) {
	repo, err := h.registry.GetRepository(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": repo,
	})
}

// ListIssues returns the imported issues of a repository
// GET /api/v1/repositories/:id/issues
func (h *Handler) ListIssues(c *gin.Context) {
	issues, err := h.registry.ListIssues(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": issues,
	})
}

// ListUserRepositories returns the repositories a user imported
// GET /api/v1/users/:user/repositories
func (h *Handler) ListUserRepositories(c *gin.Context) {
	repos, err := h.registry.ListRepositories(c.Request.Context(), c.Param("user"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": repos,
	})
}

// HealthCheck returns the health status
// GET /health
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// respondError sends an error response. msg carries the user-facing text.
func (h *Handler) respondError(c *gin.Context, err error) {
	if appErr, ok := apperrors.As(err); ok {
		status := statusFor(appErr.Code)
		if status >= http.StatusInternalServerError {
			h.logger.WithError(err).WithField("path", c.FullPath()).Error("request failed")
		}
		c.JSON(status, gin.H{
			"msg": appErr.Message,
			"error": gin.H{
				"code":    appErr.Code,
				"message": appErr.Message,
			},
		})
		return
	}

	h.logger.WithError(err).WithField("path", c.FullPath()).Error("request failed")
	c.JSON(http.StatusInternalServerError, gin.H{
		"msg": "Internal server error",
		"error": gin.H{
			"code":    apperrors.ErrCodeInternal,
			"message": "Internal server error",
		},
	})
}

func statusFor(code apperrors.ErrCode) int {
	switch code {
	case apperrors.ErrCodeNotFound:
		return http.StatusNotFound
	case apperrors.ErrCodeNotAuthenticated:
		return http.StatusUnauthorized
	case apperrors.ErrCodeNotOwner:
		return http.StatusForbidden
	case apperrors.ErrCodeBadRequest:
		return http.StatusBadRequest
	case apperrors.ErrCodeForkNotAllowed:
		return http.StatusUnprocessableEntity
	case apperrors.ErrCodeRemoteFetchFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
