package handlers

import (
	"errors"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"skillshare/services"
)

const stateCookie = "oauth_state"

type GoogleAuthRequest struct {
	Credential string `json:"credential" binding:"required"`
}

func googleUnavailable(c *gin.Context) {
	c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "Google OAuth not configured"})
}

// GoogleAuthURL starts the code flow. The state is echoed back by Google and
// compared with the cookie in GoogleOAuthCallback.
func (h *Handler) GoogleAuthURL(c *gin.Context) {
	state := uuid.NewString()
	authURL, err := h.Google.AuthCodeURL(state)
	if errors.Is(err, services.ErrGoogleDisabled) {
		googleUnavailable(c)
		return
	}
	if err != nil {
		respondError(c, "Google", err)
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(stateCookie, state, 600, "/", "", c.Request.TLS != nil, true)
	c.JSON(http.StatusOK, gin.H{"success": true, "url": authURL})
}

func (h *Handler) GoogleOAuthCallback(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Authorization code missing"})
		return
	}
	expected, err := c.Cookie(stateCookie)
	if err != nil || expected == "" || expected != c.Query("state") {
		log.Printf("[Google] state mismatch on callback")
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid OAuth state"})
		return
	}
	c.SetCookie(stateCookie, "", -1, "/", "", c.Request.TLS != nil, true)

	ctx, cancel := requestContext(c)
	defer cancel()

	profile, err := h.Google.Exchange(ctx, code)
	if errors.Is(err, services.ErrGoogleDisabled) {
		googleUnavailable(c)
		return
	}
	if err != nil {
		respondError(c, "Google", err)
		return
	}
	u, err := h.Users.SignInWithGoogle(ctx, profile)
	if err != nil {
		respondError(c, "Google", err)
		return
	}
	log.Printf("[Google] signed in %s", profile)

	if h.FrontendURL == "" {
		h.sessionResponse(c, http.StatusOK, u)
		return
	}
	token, err := h.Tokens.Issue(u)
	if err != nil {
		respondError(c, "Google", err)
		return
	}
	target := strings.TrimRight(h.FrontendURL, "/") + "/auth/callback?token=" + url.QueryEscape(token)
	c.Redirect(http.StatusFound, target)
}

// GoogleAuth signs in with an ID token obtained by Google Identity Services
// in the browser.
func (h *Handler) GoogleAuth(c *gin.Context) {
	var req GoogleAuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	profile, err := h.Google.VerifyIDToken(ctx, req.Credential)
	if errors.Is(err, services.ErrGoogleDisabled) {
		googleUnavailable(c)
		return
	}
	if err != nil {
		respondError(c, "Google", err)
		return
	}
	u, err := h.Users.SignInWithGoogle(ctx, profile)
	if err != nil {
		respondError(c, "Google", err)
		return
	}
	h.sessionResponse(c, http.StatusOK, u)
}
