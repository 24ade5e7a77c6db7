package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"skillshare/models"
)

// ListCreators filters by ?skill and ?university.
func (h *Handler) ListCreators(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	creators, err := h.Catalog.ListCreators(ctx, models.CreatorFilter{
		Skill:      c.Query("skill"),
		University: c.Query("university"),
		Limit:      queryInt(c, "limit"),
		Offset:     queryInt(c, "offset"),
	})
	if err != nil {
		respondError(c, "Creators", err)
		return
	}
	if creators == nil {
		creators = []models.User{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "creators": creators})
}

func (h *Handler) GetCreator(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	detail, err := h.Catalog.GetCreator(ctx, c.Param("id"))
	if err != nil {
		respondError(c, "Creators", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "creator": detail.User, "projects": detail.Projects})
}
