package sqlstore

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"skillshare/models"
	"skillshare/store"
)

type cartItemRow struct {
	ID        string `gorm:"primaryKey;size:36"`
	UserID    string `gorm:"size:320;not null;uniqueIndex:idx_cart_user_project,priority:1"`
	ProjectID string `gorm:"size:36;not null;uniqueIndex:idx_cart_user_project,priority:2"`
	Quantity  int    `gorm:"not null"`
	AddedAt   time.Time
}

func (cartItemRow) TableName() string { return "cart_items" }

type orderRow struct {
	ID         string         `gorm:"primaryKey;size:36"`
	UserID     string         `gorm:"size:320;not null;index"`
	TotalCents int64          `gorm:"not null"`
	Status     string         `gorm:"size:16;not null"`
	Items      []orderItemRow `gorm:"foreignKey:OrderID"`
	CreatedAt  time.Time
}

func (orderRow) TableName() string { return "orders" }

type orderItemRow struct {
	ID         uint   `gorm:"primaryKey"`
	OrderID    string `gorm:"size:36;not null;index"`
	ProjectID  string `gorm:"size:36;not null"`
	Title      string `gorm:"size:255"`
	PriceCents int64  `gorm:"not null"`
	Quantity   int    `gorm:"not null"`
}

func (orderItemRow) TableName() string { return "order_items" }

func (s *Store) UpsertCartItem(ctx context.Context, item *models.CartItem) error {
	if item.ID == "" {
		item.ID = store.NewID()
	}
	if item.AddedAt.IsZero() {
		item.AddedAt = store.Now()
	}
	db := s.db.WithContext(ctx)
	row := &cartItemRow{
		ID:        item.ID,
		UserID:    item.UserID,
		ProjectID: item.ProjectID,
		Quantity:  item.Quantity,
		AddedAt:   item.AddedAt,
	}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "project_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"quantity"}),
	}).Create(row).Error
	if err != nil {
		return translate(err)
	}

	// pick up the surviving row's id and timestamp on conflict
	var stored cartItemRow
	if err := db.Where("user_id = ? AND project_id = ?", item.UserID, item.ProjectID).Take(&stored).Error; err != nil {
		return translate(err)
	}
	item.ID = stored.ID
	item.AddedAt = stored.AddedAt.UTC()
	item.Quantity = stored.Quantity
	return nil
}

func (s *Store) RemoveCartItem(ctx context.Context, userID, projectID string) error {
	res := s.db.WithContext(ctx).Where("user_id = ? AND project_id = ?", userID, projectID).Delete(&cartItemRow{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) ListCart(ctx context.Context, userID string) ([]models.CartItem, error) {
	var rows []cartItemRow
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("added_at ASC").Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]models.CartItem, len(rows))
	for i, r := range rows {
		out[i] = models.CartItem{
			ID:        r.ID,
			UserID:    r.UserID,
			ProjectID: r.ProjectID,
			Quantity:  r.Quantity,
			AddedAt:   r.AddedAt.UTC(),
		}
	}
	return out, nil
}

func (s *Store) ClearCart(ctx context.Context, userID string) error {
	return s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&cartItemRow{}).Error
}

func (s *Store) PlaceOrder(ctx context.Context, o *models.Order) error {
	if o.ID == "" {
		o.ID = store.NewID()
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = store.Now()
	}
	row := &orderRow{
		ID:         o.ID,
		UserID:     o.UserID,
		TotalCents: o.TotalCents,
		Status:     o.Status,
		CreatedAt:  o.CreatedAt,
	}
	for _, it := range o.Items {
		row.Items = append(row.Items, orderItemRow{
			OrderID:    o.ID,
			ProjectID:  it.ProjectID,
			Title:      it.Title,
			PriceCents: it.PriceCents,
			Quantity:   it.Quantity,
		})
	}

	return translate(s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(row).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ?", o.UserID).Delete(&cartItemRow{}).Error
	}))
}

func (s *Store) ListOrders(ctx context.Context, userID string) ([]models.Order, error) {
	var rows []orderRow
	err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]models.Order, len(rows))
	for i, r := range rows {
		o := models.Order{
			ID:         r.ID,
			UserID:     r.UserID,
			TotalCents: r.TotalCents,
			Status:     r.Status,
			CreatedAt:  r.CreatedAt.UTC(),
			Items:      make([]models.OrderItem, len(r.Items)),
		}
		for j, it := range r.Items {
			o.Items[j] = models.OrderItem{
				ProjectID:  it.ProjectID,
				Title:      it.Title,
				PriceCents: it.PriceCents,
				Quantity:   it.Quantity,
			}
		}
		out[i] = o
	}
	return out, nil
}
