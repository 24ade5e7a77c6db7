package services

import (
	"context"
	"strings"

	"skillshare/models"
	"skillshare/store"
)

const MaxPriceCents = 100_000_000

type ProjectInput struct {
	Title       string
	Description string
	Category    string
	PriceCents  int64
	Media       []string
}

// CreatorDetail is a creator's public page.
type CreatorDetail struct {
	User     *models.User     `json:"user"`
	Projects []models.Project `json:"projects"`
}

type CatalogService struct {
	projects store.ProjectStore
	users    store.UserStore
}

func NewCatalogService(projects store.ProjectStore, users store.UserStore) *CatalogService {
	return &CatalogService{projects: projects, users: users}
}

// CreateProject requires the stored role to be CREATOR; the token's role
// claim may predate an upgrade.
func (s *CatalogService) CreateProject(ctx context.Context, creatorID string, in ProjectInput) (*models.Project, error) {
	u, err := s.users.GetUser(ctx, creatorID)
	if err != nil {
		return nil, storeError("load creator", err, "user not found")
	}
	if !u.IsCreator() {
		return nil, models.ForbiddenError("only creators can publish projects")
	}

	title := strings.TrimSpace(in.Title)
	switch {
	case title == "":
		return nil, models.ValidationError("title is required")
	case in.PriceCents < 0:
		return nil, models.ValidationError("price cannot be negative")
	case in.PriceCents > MaxPriceCents:
		return nil, models.ValidationError("price is too high")
	}

	p := &models.Project{
		CreatorID:   u.ID,
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Category:    strings.ToLower(strings.TrimSpace(in.Category)),
		PriceCents:  in.PriceCents,
		Media:       trimAll(in.Media),
	}
	if err := s.projects.CreateProject(ctx, p); err != nil {
		return nil, storeError("create project", err, "")
	}
	return p, nil
}

func (s *CatalogService) GetProject(ctx context.Context, id string) (*models.Project, error) {
	p, err := s.projects.GetProject(ctx, id)
	if err != nil {
		return nil, storeError("load project", err, "project not found")
	}
	return p, nil
}

func (s *CatalogService) ListProjects(ctx context.Context, f models.ProjectFilter) ([]models.Project, error) {
	f.Category = strings.ToLower(strings.TrimSpace(f.Category))
	f.Query = strings.TrimSpace(f.Query)
	if f.Offset < 0 {
		f.Offset = 0
	}
	projects, err := s.projects.ListProjects(ctx, f)
	if err != nil {
		return nil, storeError("list projects", err, "")
	}
	return projects, nil
}

func (s *CatalogService) DeleteProject(ctx context.Context, id, creatorID string) error {
	if err := s.projects.DeleteProject(ctx, id, creatorID); err != nil {
		return storeError("delete project", err, "project not found")
	}
	return nil
}

func (s *CatalogService) ListCreators(ctx context.Context, f models.CreatorFilter) ([]models.User, error) {
	f.Skill = strings.TrimSpace(f.Skill)
	f.University = strings.TrimSpace(f.University)
	if f.Offset < 0 {
		f.Offset = 0
	}
	creators, err := s.users.ListCreators(ctx, f)
	if err != nil {
		return nil, storeError("list creators", err, "")
	}
	return creators, nil
}

func (s *CatalogService) GetCreator(ctx context.Context, id string) (*CreatorDetail, error) {
	u, err := s.users.GetUser(ctx, models.NormalizeEmail(id))
	if err != nil {
		return nil, storeError("load creator", err, "creator not found")
	}
	if !u.IsCreator() {
		return nil, models.NotFoundError("creator not found")
	}
	projects, err := s.projects.ListProjects(ctx, models.ProjectFilter{CreatorID: u.ID, Limit: store.MaxPageSize})
	if err != nil {
		return nil, storeError("list projects", err, "")
	}
	return &CreatorDetail{User: u, Projects: projects}, nil
}
