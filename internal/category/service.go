// File: internal/category/service.go
package category

import (
	"context"
	"errors"
	"strings"

	"campus_desk_backend/internal/common"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"go.uber.org/zap"
)

// Service defines category lookups used by the complaint workflow and handlers.
type Service interface {
	AdminCreateCategory(ctx context.Context, req AdminCreateCategoryRequest) (*Category, error)
	GetCategoryByName(ctx context.Context, name string) (*Category, error)
	GetAllCategories(ctx context.Context) ([]Category, error)
	// CategoryNames maps ids to names. Ids that do not resolve are absent.
	CategoryNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
	// EnsureDefaults creates the default categories that do not exist yet.
	EnsureDefaults(ctx context.Context) error
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

// NewService creates a new category service.
func NewService(repo Repository, logger *zap.Logger) Service {
	return &service{
		repo:   repo,
		logger: logger.Named("category_service"),
	}
}

func (s *service) AdminCreateCategory(ctx context.Context, req AdminCreateCategoryRequest) (*Category, error) {
	finalSlug := strings.TrimSpace(req.Slug)
	if finalSlug == "" {
		finalSlug = slug.Make(req.Name)
	} else {
		finalSlug = slug.Make(finalSlug)
	}

	category := &Category{
		Name:        strings.TrimSpace(req.Name),
		Slug:        finalSlug,
		Description: req.Description,
	}
	if err := s.repo.CreateCategory(ctx, category); err != nil {
		s.logger.Error("Failed to create category", zap.Error(err), zap.String("name", req.Name))
		return nil, err
	}
	s.logger.Info("Category created", zap.String("id", category.ID.String()), zap.String("name", category.Name))
	return category, nil
}

func (s *service) GetCategoryByName(ctx context.Context, name string) (*Category, error) {
	return s.repo.FindCategoryByName(ctx, name)
}

func (s *service) GetAllCategories(ctx context.Context) ([]Category, error) {
	return s.repo.FindAllCategories(ctx)
}

func (s *service) CategoryNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	categories, err := s.repo.FindCategoriesByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	names := make(map[uuid.UUID]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}
	return names, nil
}

func (s *service) EnsureDefaults(ctx context.Context) error {
	for _, req := range Defaults() {
		_, err := s.repo.FindCategoryByName(ctx, req.Name)
		if err == nil {
			continue
		}
		if !errors.Is(err, common.ErrNotFound) {
			return err
		}
		if _, err := s.AdminCreateCategory(ctx, req); err != nil {
			return err
		}
	}
	return nil
}
