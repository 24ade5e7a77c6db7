package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"skillshare/middleware"
	"skillshare/models"
	"skillshare/services"
)

type ProfileRequest struct {
	Name *string `json:"name"`
	Bio  *string `json:"bio"`
}

// Skills accepts either a JSON array or a comma separated string.
type Skills []string

func (s *Skills) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*s = list
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.New("skills must be an array or a comma separated string")
	}
	*s = services.SplitSkills(raw)
	return nil
}

type CreatorData struct {
	University   string `json:"university"`
	Major        string `json:"major"`
	Skills       Skills `json:"skills"`
	Bio          string `json:"bio"`
	PortfolioURL string `json:"portfolioUrl"`
}

type UpgradeRoleRequest struct {
	CreatorData *CreatorData `json:"creatorData" binding:"required"`
}

func (h *Handler) GetMyProfile(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	u, err := h.Users.GetUser(ctx, c.GetString(middleware.ContextUserID))
	if err != nil {
		respondError(c, "Profile", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": u})
}

// UpdateMyProfile takes JSON, or a multipart form whose optional avatar file
// replaces the current avatar.
func (h *Handler) UpdateMyProfile(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)

	ctx, cancel := uploadContext(c)
	defer cancel()

	var upd models.ProfileUpdate
	if c.ContentType() == "application/json" {
		var req ProfileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		upd.Name, upd.Bio = req.Name, req.Bio
	} else {
		if err := c.Request.ParseMultipartForm(maxFormMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Failed to parse form data"})
			return
		}
		if name, ok := c.GetPostForm("name"); ok {
			upd.Name = &name
		}
		if bio, ok := c.GetPostForm("bio"); ok {
			upd.Bio = &bio
		}

		avatarURL, err := h.storeUpload(ctx, c, "avatar", "avatars", userID)
		switch {
		case errors.Is(err, http.ErrMissingFile):
		case err != nil:
			respondError(c, "Profile", err)
			return
		default:
			upd.Avatar = &avatarURL
		}
	}

	u, err := h.Users.UpdateProfile(ctx, userID, upd)
	if err != nil {
		respondError(c, "Profile", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": u})
}

func (h *Handler) GetUserProfile(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	u, err := h.Users.GetUser(ctx, c.Param("id"))
	if err != nil {
		respondError(c, "Profile", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": u})
}

// UpgradeRole turns the caller into a creator and returns a fresh token whose
// role claim says so.
func (h *Handler) UpgradeRole(c *gin.Context) {
	var req UpgradeRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	data := req.CreatorData
	u, err := h.Users.UpgradeToCreator(ctx, c.GetString(middleware.ContextUserID), services.CreatorApplication{
		University:   data.University,
		Major:        data.Major,
		Skills:       []string(data.Skills),
		Bio:          data.Bio,
		PortfolioURL: strings.TrimSpace(data.PortfolioURL),
	})
	if err != nil {
		respondError(c, "Upgrade", err)
		return
	}
	h.sessionResponse(c, http.StatusOK, u)
}
