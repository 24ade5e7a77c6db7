package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"skillshare/middleware"
	"skillshare/services"
)

type SendMessageRequest struct {
	ReceiverID  string   `json:"receiverId" binding:"required"`
	Content     string   `json:"content" binding:"required"`
	Type        string   `json:"type"`
	Attachments []string `json:"attachments"`
}

type MarkReadRequest struct {
	OtherUserID string `json:"otherUserId" binding:"required"`
}

// GetMessages returns the thread with ?otherUserId= and marks the
// counterpart's messages read. Without the parameter it lists conversations.
func (h *Handler) GetMessages(c *gin.Context) {
	otherUserID := c.Query("otherUserId")
	if otherUserID == "" {
		h.ListConversations(c)
		return
	}
	userID := c.GetString(middleware.ContextUserID)

	ctx, cancel := requestContext(c)
	defer cancel()

	messages, err := h.Messages.ListMessagesBetween(ctx, userID, otherUserID)
	if err != nil {
		respondError(c, "Messages", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "messages": messages})
}

func (h *Handler) SendMessage(c *gin.Context) {
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	msg, err := h.Messages.CreateMessage(ctx, services.SendMessageInput{
		SenderID:    c.GetString(middleware.ContextUserID),
		ReceiverID:  req.ReceiverID,
		Content:     req.Content,
		Type:        req.Type,
		Attachments: req.Attachments,
	})
	if err != nil {
		respondError(c, "Messages", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": msg})
}

func (h *Handler) MarkMessagesRead(c *gin.Context) {
	var req MarkReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	n, err := h.Messages.MarkRead(ctx, c.GetString(middleware.ContextUserID), req.OtherUserID)
	if err != nil {
		respondError(c, "Messages", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "updated": n})
}
