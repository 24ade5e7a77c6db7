package sqlstore

import (
	"context"
	"time"

	"skillshare/models"
	"skillshare/store"
)

type projectRow struct {
	ID          string   `gorm:"primaryKey;size:36"`
	CreatorID   string   `gorm:"size:320;not null;index"`
	Title       string   `gorm:"size:255;not null"`
	Description string   `gorm:"type:text"`
	Category    string   `gorm:"size:64;index"`
	PriceCents  int64    `gorm:"not null"`
	Media       []string `gorm:"serializer:json;type:text"`
	CreatedAt   time.Time
}

func (projectRow) TableName() string { return "projects" }

func (r *projectRow) toModel() models.Project {
	media := r.Media
	if media == nil {
		media = []string{}
	}
	return models.Project{
		ID:          r.ID,
		CreatorID:   r.CreatorID,
		Title:       r.Title,
		Description: r.Description,
		Category:    r.Category,
		PriceCents:  r.PriceCents,
		Media:       media,
		CreatedAt:   r.CreatedAt.UTC(),
	}
}

func (s *Store) CreateProject(ctx context.Context, p *models.Project) error {
	if p.ID == "" {
		p.ID = store.NewID()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = store.Now()
	}
	row := &projectRow{
		ID:          p.ID,
		CreatorID:   p.CreatorID,
		Title:       p.Title,
		Description: p.Description,
		Category:    p.Category,
		PriceCents:  p.PriceCents,
		Media:       p.Media,
		CreatedAt:   p.CreatedAt,
	}
	return translate(s.db.WithContext(ctx).Create(row).Error)
}

func (s *Store) GetProject(ctx context.Context, id string) (*models.Project, error) {
	var row projectRow
	if err := s.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error; err != nil {
		return nil, translate(err)
	}
	p := row.toModel()
	return &p, nil
}

func (s *Store) ListProjects(ctx context.Context, f models.ProjectFilter) ([]models.Project, error) {
	q := s.db.WithContext(ctx).Model(&projectRow{})
	if f.CreatorID != "" {
		q = q.Where("creator_id = ?", f.CreatorID)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Query != "" {
		pattern := likePattern(f.Query)
		q = q.Where(`(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\')`, pattern, pattern)
	}

	var rows []projectRow
	err := q.Order("created_at DESC").Order("id DESC").
		Limit(store.PageSize(f.Limit)).Offset(f.Offset).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]models.Project, len(rows))
	for i := range rows {
		out[i] = rows[i].toModel()
	}
	return out, nil
}

func (s *Store) DeleteProject(ctx context.Context, id, creatorID string) error {
	res := s.db.WithContext(ctx).Where("id = ? AND creator_id = ?", id, creatorID).Delete(&projectRow{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}
