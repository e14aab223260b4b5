// File: internal/user/repository.go
package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"campus_desk_backend/internal/common"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines the data operations on students and admins.
type Repository interface {
	CreateUser(ctx context.Context, user *User) error
	FindUserByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindUserByFirebaseUID(ctx context.Context, firebaseUID string) (*User, error)
	FindUsersByIDs(ctx context.Context, ids []uuid.UUID) ([]User, error)
	FindAdminByID(ctx context.Context, id uuid.UUID) (*Admin, error)
	FindAdminByFirebaseUID(ctx context.Context, firebaseUID string) (*Admin, error)
	FindAdminByRole(ctx context.Context, role string) (*Admin, error)
	FindAdminsByIDs(ctx context.Context, ids []uuid.UUID) ([]Admin, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM user repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) CreateUser(ctx context.Context, user *User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "unique constraint") || strings.Contains(err.Error(), "UNIQUE constraint") {
			return common.ErrConflict.WithDetails("User with this email already exists.")
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *gormRepository) FindUserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	var u User
	if err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "User not found.")
	}
	return &u, nil
}

func (r *gormRepository) FindUserByFirebaseUID(ctx context.Context, firebaseUID string) (*User, error) {
	var u User
	if err := r.db.WithContext(ctx).First(&u, "firebase_uid = ?", firebaseUID).Error; err != nil {
		return nil, notFound(err, "User not found.")
	}
	return &u, nil
}

func (r *gormRepository) FindUsersByIDs(ctx context.Context, ids []uuid.UUID) ([]User, error) {
	var users []User
	if len(ids) == 0 {
		return users, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}
	return users, nil
}

func (r *gormRepository) FindAdminByID(ctx context.Context, id uuid.UUID) (*Admin, error) {
	var a Admin
	if err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "Admin not found.")
	}
	return &a, nil
}

func (r *gormRepository) FindAdminByFirebaseUID(ctx context.Context, firebaseUID string) (*Admin, error) {
	var a Admin
	if err := r.db.WithContext(ctx).First(&a, "firebase_uid = ?", firebaseUID).Error; err != nil {
		return nil, notFound(err, "Admin not found.")
	}
	return &a, nil
}

// FindAdminByRole returns the oldest admin holding role.
func (r *gormRepository) FindAdminByRole(ctx context.Context, role string) (*Admin, error) {
	var a Admin
	err := r.db.WithContext(ctx).Where("admin_role = ?", role).Order("created_at ASC").First(&a).Error
	if err != nil {
		return nil, notFound(err, "No admin holds role "+role+".")
	}
	return &a, nil
}

func (r *gormRepository) FindAdminsByIDs(ctx context.Context, ids []uuid.UUID) ([]Admin, error) {
	var admins []Admin
	if len(ids) == 0 {
		return admins, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&admins).Error; err != nil {
		return nil, fmt.Errorf("failed to load admins: %w", err)
	}
	return admins, nil
}

func notFound(err error, details string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return common.ErrNotFound.WithDetails(details)
	}
	return err
}
