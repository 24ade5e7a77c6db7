package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"skillshare/middleware"
	"skillshare/models"
)

// ListConversations answers GET /messages without a counterpart. The list is
// never null so clients can range over it directly.
func (h *Handler) ListConversations(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	convs, err := h.Messages.ListConversations(ctx, c.GetString(middleware.ContextUserID))
	if err != nil {
		respondError(c, "Conversations", err)
		return
	}
	if convs == nil {
		convs = []models.ConversationSummary{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "conversations": convs})
}
