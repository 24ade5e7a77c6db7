package sqlstore

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"skillshare/models"
	"skillshare/store"
)

type userRow struct {
	ID            string  `gorm:"primaryKey;size:320"`
	Email         string  `gorm:"size:320;not null;uniqueIndex"`
	PasswordHash  *string `gorm:"size:255"`
	AuthProvider  string  `gorm:"size:16;not null"`
	GoogleID      *string `gorm:"size:64;index"`
	Name          string  `gorm:"size:255"`
	Avatar        string  `gorm:"type:text"`
	Bio           string  `gorm:"type:text"`
	Role          string  `gorm:"size:16;not null;index"`
	EmailVerified bool    `gorm:"not null"`
	CreatedAt     time.Time
	LastSeen      time.Time
}

func (userRow) TableName() string { return "users" }

type creatorProfileRow struct {
	UserID       string   `gorm:"primaryKey;size:320"`
	University   string   `gorm:"size:255;not null"`
	Major        string   `gorm:"size:255;not null"`
	Skills       []string `gorm:"serializer:json;type:text"`
	Bio          string   `gorm:"type:text"`
	PortfolioURL string   `gorm:"type:text"`
	Approved     bool     `gorm:"not null"`
	CreatedAt    time.Time
}

func (creatorProfileRow) TableName() string { return "creator_profiles" }

func userToRow(u *models.User) *userRow {
	return &userRow{
		ID:            u.ID,
		Email:         u.Email,
		PasswordHash:  u.PasswordHash,
		AuthProvider:  u.AuthProvider,
		GoogleID:      u.GoogleID,
		Name:          u.Name,
		Avatar:        u.Avatar,
		Bio:           u.Bio,
		Role:          string(u.Role),
		EmailVerified: u.EmailVerified,
		CreatedAt:     u.CreatedAt,
		LastSeen:      u.LastSeen,
	}
}

func (r *userRow) toModel(p *creatorProfileRow) *models.User {
	u := &models.User{
		ID:            r.ID,
		Email:         r.Email,
		PasswordHash:  r.PasswordHash,
		AuthProvider:  r.AuthProvider,
		GoogleID:      r.GoogleID,
		Name:          r.Name,
		Avatar:        r.Avatar,
		Bio:           r.Bio,
		Role:          models.Role(r.Role),
		EmailVerified: r.EmailVerified,
		CreatedAt:     r.CreatedAt.UTC(),
		LastSeen:      r.LastSeen.UTC(),
	}
	if p != nil {
		u.Creator = &models.CreatorProfile{
			University:   p.University,
			Major:        p.Major,
			Skills:       p.Skills,
			Bio:          p.Bio,
			PortfolioURL: p.PortfolioURL,
			Approved:     p.Approved,
			CreatedAt:    p.CreatedAt.UTC(),
		}
	}
	return u
}

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = store.Now()
	}
	if u.LastSeen.IsZero() {
		u.LastSeen = u.CreatedAt
	}
	return translate(s.db.WithContext(ctx).Create(userToRow(u)).Error)
}

func (s *Store) GetUser(ctx context.Context, id string) (*models.User, error) {
	return s.getUser(s.db.WithContext(ctx), id)
}

func (s *Store) getUser(db *gorm.DB, id string) (*models.User, error) {
	var row userRow
	if err := db.Where("id = ?", id).Take(&row).Error; err != nil {
		return nil, translate(err)
	}
	var profile creatorProfileRow
	err := db.Where("user_id = ?", id).Take(&profile).Error
	switch translate(err) {
	case nil:
		return row.toModel(&profile), nil
	case store.ErrNotFound:
		return row.toModel(nil), nil
	default:
		return nil, err
	}
}

func (s *Store) GetUsers(ctx context.Context, ids []string) (map[string]*models.User, error) {
	out := make(map[string]*models.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	db := s.db.WithContext(ctx)

	var rows []userRow
	if err := db.Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	profiles, err := s.profilesFor(db, ids)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		out[rows[i].ID] = rows[i].toModel(profiles[rows[i].ID])
	}
	return out, nil
}

func (s *Store) profilesFor(db *gorm.DB, ids []string) (map[string]*creatorProfileRow, error) {
	var rows []creatorProfileRow
	if err := db.Where("user_id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]*creatorProfileRow, len(rows))
	for i := range rows {
		out[rows[i].UserID] = &rows[i]
	}
	return out, nil
}

func (s *Store) UpdateProfile(ctx context.Context, id string, upd models.ProfileUpdate) (*models.User, error) {
	db := s.db.WithContext(ctx)
	updates := map[string]interface{}{}
	if upd.Name != nil {
		updates["name"] = *upd.Name
	}
	if upd.Bio != nil {
		updates["bio"] = *upd.Bio
	}
	if upd.Avatar != nil {
		updates["avatar"] = *upd.Avatar
	}
	if len(updates) > 0 {
		res := db.Model(&userRow{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, store.ErrNotFound
		}
	}
	return s.getUser(db, id)
}

func (s *Store) MarkEmailVerified(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Model(&userRow{}).Where("id = ?", id).Update("email_verified", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) TouchLastSeen(ctx context.Context, id string, at time.Time) error {
	return s.db.WithContext(ctx).Model(&userRow{}).Where("id = ?", id).Update("last_seen", at.UTC()).Error
}

func (s *Store) UpgradeToCreator(ctx context.Context, id string, profile models.CreatorProfile) (*models.User, error) {
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = store.Now()
	}
	var out *models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&userRow{}).Where("id = ?", id).Update("role", string(models.RoleCreator))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return store.ErrNotFound
		}

		row := &creatorProfileRow{
			UserID:       id,
			University:   profile.University,
			Major:        profile.Major,
			Skills:       profile.Skills,
			Bio:          profile.Bio,
			PortfolioURL: profile.PortfolioURL,
			Approved:     profile.Approved,
			CreatedAt:    profile.CreatedAt,
		}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"university", "major", "skills", "bio", "portfolio_url", "approved"}),
		}).Create(row).Error
		if err != nil {
			return err
		}

		out, err = s.getUser(tx, id)
		return err
	})
	if err != nil {
		return nil, translate(err)
	}
	return out, nil
}

func (s *Store) ListCreators(ctx context.Context, f models.CreatorFilter) ([]models.User, error) {
	db := s.db.WithContext(ctx)
	q := db.Model(&creatorProfileRow{}).
		Select("creator_profiles.*").
		Joins("JOIN users ON users.id = creator_profiles.user_id").
		Where("users.role = ?", string(models.RoleCreator))
	if f.Skill != "" {
		q = q.Where(`LOWER(creator_profiles.skills) LIKE ? ESCAPE '\'`, likePattern(`"`+f.Skill+`"`))
	}
	if f.University != "" {
		q = q.Where(`LOWER(creator_profiles.university) LIKE ? ESCAPE '\'`, likePattern(f.University))
	}

	var profiles []creatorProfileRow
	err := q.Order("creator_profiles.created_at DESC").Order("creator_profiles.user_id").
		Limit(store.PageSize(f.Limit)).Offset(f.Offset).
		Find(&profiles).Error
	if err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return []models.User{}, nil
	}

	ids := make([]string, len(profiles))
	for i := range profiles {
		ids[i] = profiles[i].UserID
	}
	var rows []userRow
	if err := db.Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	byID := make(map[string]*userRow, len(rows))
	for i := range rows {
		byID[rows[i].ID] = &rows[i]
	}

	out := make([]models.User, 0, len(profiles))
	for i := range profiles {
		if r, ok := byID[profiles[i].UserID]; ok {
			out = append(out, *r.toModel(&profiles[i]))
		}
	}
	return out, nil
}
