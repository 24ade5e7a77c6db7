package services

import (
	"context"
	"errors"
	"log"

	"skillshare/models"
	"skillshare/store"
)

const MaxQuantity = 99

type CartLine struct {
	Item          models.CartItem `json:"item"`
	Project       models.Project  `json:"project"`
	SubtotalCents int64           `json:"subtotalCents"`
}

type CartView struct {
	Lines      []CartLine `json:"lines"`
	TotalCents int64      `json:"totalCents"`
}

type CartService struct {
	carts    store.CartStore
	orders   store.OrderStore
	projects store.ProjectStore
}

func NewCartService(carts store.CartStore, orders store.OrderStore, projects store.ProjectStore) *CartService {
	return &CartService{carts: carts, orders: orders, projects: projects}
}

// Add puts a project in the cart; adding it again replaces the quantity.
func (s *CartService) Add(ctx context.Context, userID, projectID string, quantity int) (*models.CartItem, error) {
	if projectID == "" {
		return nil, models.ValidationError("projectId is required")
	}
	if quantity < 1 || quantity > MaxQuantity {
		return nil, models.ValidationError("quantity must be between 1 and %d", MaxQuantity)
	}
	p, err := s.projects.GetProject(ctx, projectID)
	if err != nil {
		return nil, storeError("load project", err, "project not found")
	}
	if p.CreatorID == userID {
		return nil, models.ValidationError("you cannot buy your own project")
	}

	item := &models.CartItem{UserID: userID, ProjectID: projectID, Quantity: quantity}
	if err := s.carts.UpsertCartItem(ctx, item); err != nil {
		return nil, storeError("add to cart", err, "")
	}
	return item, nil
}

func (s *CartService) Remove(ctx context.Context, userID, projectID string) error {
	if err := s.carts.RemoveCartItem(ctx, userID, projectID); err != nil {
		return storeError("remove from cart", err, "item not in cart")
	}
	return nil
}

// View prices the cart at current project prices. Lines whose project was
// deleted are left out.
func (s *CartService) View(ctx context.Context, userID string) (*CartView, error) {
	lines, err := s.lines(ctx, userID, false)
	if err != nil {
		return nil, err
	}
	if lines == nil {
		lines = []CartLine{}
	}
	view := &CartView{Lines: lines}
	for _, l := range lines {
		view.TotalCents += l.SubtotalCents
	}
	return view, nil
}

func (s *CartService) lines(ctx context.Context, userID string, strict bool) ([]CartLine, error) {
	items, err := s.carts.ListCart(ctx, userID)
	if err != nil {
		return nil, storeError("list cart", err, "")
	}
	lines := make([]CartLine, 0, len(items))
	for _, it := range items {
		p, err := s.projects.GetProject(ctx, it.ProjectID)
		if errors.Is(err, store.ErrNotFound) && !strict {
			continue
		}
		if err != nil {
			return nil, storeError("load project", err, "a project in your cart is no longer available")
		}
		lines = append(lines, CartLine{
			Item:          it,
			Project:       *p,
			SubtotalCents: p.PriceCents * int64(it.Quantity),
		})
	}
	return lines, nil
}

// Checkout snapshots the cart into an order and empties it. No payment is taken.
func (s *CartService) Checkout(ctx context.Context, userID string) (*models.Order, error) {
	lines, err := s.lines(ctx, userID, true)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, models.ValidationError("cart is empty")
	}

	order := &models.Order{
		UserID: userID,
		Status: models.OrderStatusPlaced,
		Items:  make([]models.OrderItem, len(lines)),
	}
	for i, l := range lines {
		order.Items[i] = models.OrderItem{
			ProjectID:  l.Project.ID,
			Title:      l.Project.Title,
			PriceCents: l.Project.PriceCents,
			Quantity:   l.Item.Quantity,
		}
		order.TotalCents += l.SubtotalCents
	}

	if err := s.orders.PlaceOrder(ctx, order); err != nil {
		return nil, storeError("place order", err, "")
	}
	log.Printf("[Cart] order %s placed by %s (%d cents)", order.ID, userID, order.TotalCents)
	return order, nil
}

func (s *CartService) Orders(ctx context.Context, userID string) ([]models.Order, error) {
	orders, err := s.orders.ListOrders(ctx, userID)
	if err != nil {
		return nil, storeError("list orders", err, "")
	}
	return orders, nil
}
