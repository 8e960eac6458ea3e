package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type createDomainRequest struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

func (h *Handler) listDomains(c *gin.Context) {
	c.JSON(http.StatusOK, h.content.ListDomains())
}

func (h *Handler) createDomain(c *gin.Context) {
	var req createDomainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	d, err := h.content.CreateDomain(req.Name, req.URL)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, d)
}

func (h *Handler) getDomain(c *gin.Context) {
	d, err := h.content.GetDomain(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *Handler) deleteDomain(c *gin.Context) {
	if err := h.content.DeleteDomain(c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type settingsRequest struct {
	PlausibleAPIKey *string `json:"plausibleApiKey"`
}

func (h *Handler) getSettings(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"hasApiKey": h.creds.APIKey() != ""})
}

func (h *Handler) updateSettings(c *gin.Context) {
	var req settingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if req.PlausibleAPIKey != nil {
		h.creds.SetAPIKey(*req.PlausibleAPIKey)
	}

	c.JSON(http.StatusOK, gin.H{
		"hasApiKey": h.creds.APIKey() != "",
		"message":   "Settings updated",
	})
}
