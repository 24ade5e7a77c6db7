package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"skillshare/middleware"
	"skillshare/models"
	"skillshare/services"
)

type CreateProjectRequest struct {
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description"`
	Category    string   `json:"category,omitempty"`
	PriceCents  int64    `json:"priceCents"`
	Media       []string `json:"media"`
}

func (h *Handler) CreateProject(c *gin.Context) {
	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	p, err := h.Catalog.CreateProject(ctx, c.GetString(middleware.ContextUserID), services.ProjectInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		PriceCents:  req.PriceCents,
		Media:       req.Media,
	})
	if err != nil {
		respondError(c, "Projects", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "project": p})
}

// ListProjects filters by ?creatorId, ?category and ?q, newest first.
func (h *Handler) ListProjects(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	projects, err := h.Catalog.ListProjects(ctx, models.ProjectFilter{
		CreatorID: c.Query("creatorId"),
		Category:  c.Query("category"),
		Query:     c.Query("q"),
		Limit:     queryInt(c, "limit"),
		Offset:    queryInt(c, "offset"),
	})
	if err != nil {
		respondError(c, "Projects", err)
		return
	}
	if projects == nil {
		projects = []models.Project{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "projects": projects})
}

func (h *Handler) GetProject(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	p, err := h.Catalog.GetProject(ctx, c.Param("id"))
	if err != nil {
		respondError(c, "Projects", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "project": p})
}

func (h *Handler) DeleteProject(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.Catalog.DeleteProject(ctx, c.Param("id"), c.GetString(middleware.ContextUserID)); err != nil {
		respondError(c, "Projects", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Project deleted"})
}
