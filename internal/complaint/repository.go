package complaint

import (
	"context"
	"errors"
	"fmt"
	"time"

	"campus_desk_backend/internal/common"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines the data operations on complaints. Each method is a single write or
// read; the service orders them.
type Repository interface {
	CreateComplaint(ctx context.Context, c *Complaint) error
	CreateFacilityDetail(ctx context.Context, d *FacilityDetail) error
	CreateAdministrativeDetail(ctx context.Context, d *AdministrativeDetail) error
	CreateAttachment(ctx context.Context, a *Attachment) error
	// DeleteComplaint removes a complaint together with its detail and attachment rows.
	DeleteComplaint(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*Complaint, error)
	// List returns complaints newest first, optionally restricted to a submitter or an admin.
	List(ctx context.Context, filter ListFilter) ([]Complaint, error)
	// Count returns how many complaints match filter.
	Count(ctx context.Context, filter ListFilter) (int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, feedback string) error
}

// ListFilter narrows List. Zero values mean no restriction.
type ListFilter struct {
	SubmitterID uuid.UUID
	AdminID     uuid.UUID
	From        *time.Time
	To          *time.Time
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM complaint repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) CreateComplaint(ctx context.Context, c *Complaint) error {
	if err := r.db.WithContext(ctx).Omit("FacilityDetail", "AdministrativeDetail", "Attachments").Create(c).Error; err != nil {
		return fmt.Errorf("failed to create complaint: %w", err)
	}
	return nil
}

func (r *gormRepository) CreateFacilityDetail(ctx context.Context, d *FacilityDetail) error {
	if err := r.db.WithContext(ctx).Create(d).Error; err != nil {
		return fmt.Errorf("failed to create facility detail: %w", err)
	}
	return nil
}

func (r *gormRepository) CreateAdministrativeDetail(ctx context.Context, d *AdministrativeDetail) error {
	if err := r.db.WithContext(ctx).Create(d).Error; err != nil {
		return fmt.Errorf("failed to create administrative detail: %w", err)
	}
	return nil
}

func (r *gormRepository) CreateAttachment(ctx context.Context, a *Attachment) error {
	if err := r.db.WithContext(ctx).Create(a).Error; err != nil {
		return fmt.Errorf("failed to create complaint attachment: %w", err)
	}
	return nil
}

func (r *gormRepository) DeleteComplaint(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("complaint_id = ?", id).Delete(&Attachment{}).Error; err != nil {
			return fmt.Errorf("failed to delete attachments of complaint %s: %w", id, err)
		}
		if err := tx.Where("complaint_id = ?", id).Delete(&FacilityDetail{}).Error; err != nil {
			return fmt.Errorf("failed to delete facility detail of complaint %s: %w", id, err)
		}
		if err := tx.Where("complaint_id = ?", id).Delete(&AdministrativeDetail{}).Error; err != nil {
			return fmt.Errorf("failed to delete administrative detail of complaint %s: %w", id, err)
		}
		if err := tx.Delete(&Complaint{}, "id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete complaint %s: %w", id, err)
		}
		return nil
	})
}

func (r *gormRepository) FindByID(ctx context.Context, id uuid.UUID) (*Complaint, error) {
	var c Complaint
	err := r.db.WithContext(ctx).
		Preload("FacilityDetail").
		Preload("AdministrativeDetail").
		Preload("Attachments", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		First(&c, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Complaint not found.")
		}
		return nil, fmt.Errorf("failed to load complaint %s: %w", id, err)
	}
	return &c, nil
}

func (r *gormRepository) filtered(ctx context.Context, filter ListFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&Complaint{})
	if filter.SubmitterID != uuid.Nil {
		query = query.Where("submitter_id = ?", filter.SubmitterID)
	}
	if filter.AdminID != uuid.Nil {
		query = query.Where("admin_id = ?", filter.AdminID)
	}
	if filter.From != nil {
		query = query.Where("submitted_date >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("submitted_date < ?", *filter.To)
	}
	return query
}

func (r *gormRepository) List(ctx context.Context, filter ListFilter) ([]Complaint, error) {
	var complaints []Complaint
	if err := r.filtered(ctx, filter).Order("submitted_date DESC").Find(&complaints).Error; err != nil {
		return nil, fmt.Errorf("failed to list complaints: %w", err)
	}
	return complaints, nil
}

func (r *gormRepository) Count(ctx context.Context, filter ListFilter) (int64, error) {
	var total int64
	if err := r.filtered(ctx, filter).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to count complaints: %w", err)
	}
	return total, nil
}

func (r *gormRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string, feedback string) error {
	result := r.db.WithContext(ctx).Model(&Complaint{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "admin_feedback": feedback})
	if result.Error != nil {
		return fmt.Errorf("failed to update complaint %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return common.ErrNotFound.WithDetails("Complaint not found.")
	}
	return nil
}
