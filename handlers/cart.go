package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"skillshare/middleware"
	"skillshare/models"
)

type AddToCartRequest struct {
	ProjectID string `json:"projectId" binding:"required"`
	Quantity  int    `json:"quantity"`
}

func (h *Handler) GetCart(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	view, err := h.Cart.View(ctx, c.GetString(middleware.ContextUserID))
	if err != nil {
		respondError(c, "Cart", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "cart": view})
}

// AddToCart sets the quantity of a project in the cart; it defaults to 1.
func (h *Handler) AddToCart(c *gin.Context) {
	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	item, err := h.Cart.Add(ctx, c.GetString(middleware.ContextUserID), req.ProjectID, req.Quantity)
	if err != nil {
		respondError(c, "Cart", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "item": item})
}

func (h *Handler) RemoveFromCart(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.Cart.Remove(ctx, c.GetString(middleware.ContextUserID), c.Param("projectId")); err != nil {
		respondError(c, "Cart", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Removed from cart"})
}

func (h *Handler) Checkout(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	order, err := h.Cart.Checkout(ctx, c.GetString(middleware.ContextUserID))
	if err != nil {
		respondError(c, "Checkout", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "order": order})
}

func (h *Handler) ListOrders(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	orders, err := h.Cart.Orders(ctx, c.GetString(middleware.ContextUserID))
	if err != nil {
		respondError(c, "Orders", err)
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "orders": orders})
}
