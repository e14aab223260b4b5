// File: internal/category/repository.go
package category

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"campus_desk_backend/internal/common"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines the data operations on categories.
type Repository interface {
	CreateCategory(ctx context.Context, category *Category) error
	FindCategoryByID(ctx context.Context, id uuid.UUID) (*Category, error)
	FindCategoryByName(ctx context.Context, name string) (*Category, error)
	FindAllCategories(ctx context.Context) ([]Category, error)
	FindCategoriesByIDs(ctx context.Context, ids []uuid.UUID) ([]Category, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM category repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) CreateCategory(ctx context.Context, category *Category) error {
	category.Slug = strings.ToLower(strings.TrimSpace(category.Slug))
	err := r.db.WithContext(ctx).Create(category).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "unique constraint") || strings.Contains(err.Error(), "UNIQUE constraint") {
			return common.ErrConflict.WithDetails("Category with this name or slug already exists.")
		}
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

func (r *gormRepository) FindCategoryByID(ctx context.Context, id uuid.UUID) (*Category, error) {
	var category Category
	err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Category not found.")
		}
		return nil, err
	}
	return &category, nil
}

func (r *gormRepository) FindCategoryByName(ctx context.Context, name string) (*Category, error) {
	var category Category
	err := r.db.WithContext(ctx).First(&category, "name = ?", strings.TrimSpace(name)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails(fmt.Sprintf("Category %q not found.", name))
		}
		return nil, err
	}
	return &category, nil
}

func (r *gormRepository) FindAllCategories(ctx context.Context) ([]Category, error) {
	var categories []Category
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *gormRepository) FindCategoriesByIDs(ctx context.Context, ids []uuid.UUID) ([]Category, error) {
	var categories []Category
	if len(ids) == 0 {
		return categories, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}
