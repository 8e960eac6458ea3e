package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"contentpulse/internal/domain"
)

type addArticleRequest struct {
	URL   string `json:"url"`
	Label string `json:"label"`
	Date  string `json:"date"`
}

type patchArticleRequest struct {
	IsTracking  *bool  `json:"isTracking"`
	IndexStatus string `json:"indexStatus"`
	Date        string `json:"date"`
}

type dateRequest struct {
	Date string `json:"date"`
}

type createFocusGroupRequest struct {
	Name      string `json:"name"`
	StartTime string `json:"startTime"`
	Date      string `json:"date"`
}

type assignArticlesRequest struct {
	ArticleIDs []string `json:"articleIds"`
	Date       string   `json:"date"`
}

type pushGivenRequest struct {
	Given   *bool      `json:"given"`
	GivenAt *time.Time `json:"givenAt"`
	Date    string     `json:"date"`
}

func (h *Handler) getTodaySession(c *gin.Context) {
	h.respondSession(c, "")
}

func (h *Handler) getSession(c *gin.Context) {
	h.respondSession(c, c.Param("date"))
}

func (h *Handler) respondSession(c *gin.Context, date string) {
	session, err := h.content.Session(c.Param("id"), date)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *Handler) listSessions(c *gin.Context) {
	summaries, err := h.content.ListSessions(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summaries)
}

func (h *Handler) addArticle(c *gin.Context) {
	var req addArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	article, err := h.content.AddArticle(c.Request.Context(), c.Param("id"), req.Date, req.URL, req.Label)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, article)
}

func (h *Handler) articleDetail(c *gin.Context) {
	detail, err := h.content.ArticleDetail(c.Param("id"), c.Query("date"), c.Param("aid"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *Handler) patchArticle(c *gin.Context) {
	var req patchArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	article, err := h.content.SetArticleFlags(c.Param("id"), req.Date, c.Param("aid"),
		req.IsTracking, domain.IndexStatus(req.IndexStatus))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, article)
}

func (h *Handler) markIndexed(c *gin.Context) {
	var req dateRequest
	_ = c.ShouldBindJSON(&req)

	article, err := h.content.MarkIndexed(c.Param("id"), req.Date, c.Param("aid"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, article)
}

func (h *Handler) deleteArticle(c *gin.Context) {
	err := h.content.DeleteArticle(c.Param("id"), c.Query("date"), c.Param("aid"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) checkIndex(c *gin.Context) {
	article, err := h.content.CheckIndex(c.Request.Context(), c.Param("id"), c.Query("date"), c.Param("aid"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, article)
}

func (h *Handler) checkAllIndex(c *gin.Context) {
	results, err := h.content.CheckAllIndex(c.Request.Context(), c.Param("id"), c.Query("date"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"checked": len(results), "results": results})
}

func (h *Handler) createFocusGroup(c *gin.Context) {
	var req createFocusGroupRequest
	_ = c.ShouldBindJSON(&req)

	group, err := h.content.CreateFocusGroup(c.Param("id"), req.Date, req.Name, req.StartTime)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, group)
}

func (h *Handler) assignArticles(c *gin.Context) {
	var req assignArticlesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	group, err := h.content.AssignArticles(c.Param("id"), req.Date, c.Param("fgid"), req.ArticleIDs)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, group)
}

func (h *Handler) markPushGiven(c *gin.Context) {
	var req pushGivenRequest
	_ = c.ShouldBindJSON(&req)

	group, err := h.content.MarkPushGiven(c.Param("id"), req.Date, c.Param("fgid"), req.Given, req.GivenAt)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, group)
}

func (h *Handler) tracking(c *gin.Context) {
	view, err := h.content.Tracking(c.Param("id"), c.Query("date"), c.Query("focusGroupId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}
