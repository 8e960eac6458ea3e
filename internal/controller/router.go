package controller

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"contentpulse/internal/domain"
	"contentpulse/internal/ports"
	"contentpulse/internal/usecase"
)

// Handler exposes the editorial and analytics use cases over HTTP.
type Handler struct {
	content   *usecase.Content
	analytics *usecase.Analytics
	creds     ports.CredentialStore
	logger    *slog.Logger
}

// NewHandler wires the use cases into the HTTP layer.
func NewHandler(content *usecase.Content, analytics *usecase.Analytics, creds ports.CredentialStore, logger *slog.Logger) *Handler {
	return &Handler{content: content, analytics: analytics, creds: creds, logger: logger}
}

// RegisterRoutes mounts the JSON API under /api.
func RegisterRoutes(r *gin.Engine, h *Handler) {
	api := r.Group("/api")
	{
		api.GET("/domains", h.listDomains)
		api.POST("/domains", h.createDomain)
		api.GET("/domains/:id", h.getDomain)
		api.DELETE("/domains/:id", h.deleteDomain)

		api.GET("/domains/:id/session", h.getTodaySession)
		api.GET("/domains/:id/session/:date", h.getSession)
		api.GET("/domains/:id/sessions", h.listSessions)

		api.POST("/domains/:id/session/articles", h.addArticle)
		api.GET("/domains/:id/session/articles/:aid", h.articleDetail)
		api.PATCH("/domains/:id/session/articles/:aid", h.patchArticle)
		api.PATCH("/domains/:id/session/articles/:aid/indexed", h.markIndexed)
		api.DELETE("/domains/:id/session/articles/:aid", h.deleteArticle)
		api.POST("/domains/:id/session/articles/:aid/check-index", h.checkIndex)
		api.POST("/domains/:id/check-all-index", h.checkAllIndex)

		api.POST("/domains/:id/session/focus-groups", h.createFocusGroup)
		api.POST("/domains/:id/session/focus-groups/:fgid/articles", h.assignArticles)
		api.PATCH("/domains/:id/session/focus-groups/:fgid/push", h.markPushGiven)

		api.GET("/domains/:id/tracking", h.tracking)
		api.GET("/domains/:id/analytics", h.domainAnalytics)
		api.POST("/domains/:id/analytics/refresh", h.refreshAnalytics)

		api.GET("/settings", h.getSettings)
		api.POST("/settings", h.updateSettings)
	}
}

// respondError maps the error taxonomy onto HTTP statuses. A missing
// credential carries the advisory needsApiKey marker the UI keys off.
func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrCredentialMissing):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":       "analytics API key not configured",
			"needsApiKey": true,
		})
	default:
		if h.logger != nil {
			h.logger.Error("request failed", "path", c.FullPath(), "error", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
