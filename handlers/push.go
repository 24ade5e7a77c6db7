package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"skillshare/middleware"
	"skillshare/models"
)

type SubscribeRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
	Keys     struct {
		P256dh string `json:"p256dh" binding:"required"`
		Auth   string `json:"auth" binding:"required"`
	} `json:"keys" binding:"required"`
}

func (h *Handler) GetVapidPublicKey(c *gin.Context) {
	if h.VAPIDPublicKey == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "VAPID public key not configured"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "publicKey": h.VAPIDPublicKey})
}

// SubscribePush registers a browser endpoint; subscribing the same endpoint
// again refreshes its keys.
func (h *Handler) SubscribePush(c *gin.Context) {
	if h.Push == nil || h.VAPIDPublicKey == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "Push notifications not configured"})
		return
	}
	var req SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	sub := &models.PushSubscription{
		UserID:   c.GetString(middleware.ContextUserID),
		Endpoint: req.Endpoint,
		P256dh:   req.Keys.P256dh,
		Auth:     req.Keys.Auth,
	}
	if err := h.Push.SavePushSubscription(ctx, sub); err != nil {
		respondError(c, "Push", models.InternalError("save subscription", err))
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Subscribed"})
}
