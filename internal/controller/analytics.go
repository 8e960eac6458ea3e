package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) domainAnalytics(c *gin.Context) {
	force := c.Query("force") == "true"

	results, cacheInfo, err := h.analytics.DomainAnalytics(c.Request.Context(), c.Param("id"), force)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"analytics": results,
		"cacheInfo": cacheInfo,
	})
}

func (h *Handler) refreshAnalytics(c *gin.Context) {
	results, err := h.analytics.RefreshDomain(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Analytics refreshed",
		"analytics": results,
	})
}
