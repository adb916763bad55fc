package providers

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("provider not found")
	ErrDuplicate    = errors.New("provider slug already exists")
)

var slugRe = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type CreateInput struct {
	Slug string
	Name string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Provider, error) {
	slug := strings.ToLower(strings.TrimSpace(in.Slug))
	name := strings.TrimSpace(in.Name)
	if name == "" || !slugRe.MatchString(slug) {
		return Provider{}, ErrInvalidInput
	}

	return s.repo.Create(ctx, Provider{
		Slug:      slug,
		Name:      name,
		CreatedAt: s.now().UTC(),
	})
}

func (s *Service) GetByID(ctx context.Context, id int64) (Provider, error) {
	if id <= 0 {
		return Provider{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetBySlug(ctx context.Context, slug string) (Provider, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if slug == "" {
		return Provider{}, ErrNotFound
	}
	return s.repo.GetBySlug(ctx, slug)
}

func (s *Service) List(ctx context.Context) ([]Provider, error) {
	return s.repo.List(ctx)
}
