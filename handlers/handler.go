// Package handlers exposes the services over HTTP.
package handlers

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"skillshare/middleware"
	"skillshare/models"
	"skillshare/services"
	"skillshare/storage"
	"skillshare/store"
)

const (
	requestTimeout = 10 * time.Second
	uploadTimeout  = 30 * time.Second
)

// Deps are the collaborators every handler draws from. Google, Uploader and
// Push may be nil when the matching feature is not configured.
type Deps struct {
	Users    *services.UserService
	OTP      *services.OTPService
	Messages *services.MessageService
	Catalog  *services.CatalogService
	Cart     *services.CartService
	Google   *services.GoogleAuth
	Tokens   *middleware.Tokens
	Uploader storage.Uploader
	Push     store.PushStore

	VAPIDPublicKey string
	FrontendURL    string
}

type Handler struct {
	Deps
}

func New(d Deps) *Handler {
	return &Handler{Deps: d}
}

func requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), requestTimeout)
}

// respondError answers with the status of err's kind. Internal details are
// logged and never sent to the client.
func respondError(c *gin.Context, op string, err error) {
	kind := models.KindOf(err)
	if kind == models.KindInternal {
		log.Printf("[%s] %v", op, err)
	}
	c.JSON(kind.Status(), gin.H{
		"success": false,
		"error":   models.PublicMessage(err),
	})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
}

// sessionResponse is what signup, login and the Google flows return.
func (h *Handler) sessionResponse(c *gin.Context, status int, u *models.User) {
	token, err := h.Tokens.Issue(u)
	if err != nil {
		respondError(c, "Auth", models.InternalError("issue token", err))
		return
	}
	c.JSON(status, gin.H{
		"success": true,
		"token":   token,
		"userId":  u.ID,
		"user":    u,
	})
}

func queryInt(c *gin.Context, key string) int {
	n, _ := strconv.Atoi(c.Query(key))
	return n
}
