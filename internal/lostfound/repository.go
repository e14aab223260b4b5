package lostfound

import (
	"context"
	"errors"
	"fmt"

	"campus_desk_backend/internal/common"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrFoundItemUnavailable is returned by ClaimFoundItem when the found item is no longer
// Unclaimed (or does not exist).
var ErrFoundItemUnavailable = errors.New("found item is not unclaimed")

// Repository defines the data operations on lost and found items.
type Repository interface {
	CreateLostItem(ctx context.Context, item *LostItem) error
	CreateFoundItem(ctx context.Context, item *FoundItem) error
	CreateAttachment(ctx context.Context, a *ItemAttachment) error
	// DeleteLostItem and DeleteFoundItem remove the row and its attachments. They are
	// used to compensate a failed submission; user-facing deletes are soft.
	DeleteLostItem(ctx context.Context, id uuid.UUID) error
	DeleteFoundItem(ctx context.Context, id uuid.UUID) error
	FindLostItem(ctx context.Context, id uuid.UUID) (*LostItem, error)
	FindFoundItem(ctx context.Context, id uuid.UUID) (*FoundItem, error)
	ListLostItems(ctx context.Context, filter ListFilter) ([]LostItem, error)
	ListFoundItems(ctx context.Context, filter ListFilter) ([]FoundItem, error)
	// UpdateLostItem sets status and feedback, and the match when matchedFoundID is non-nil.
	UpdateLostItem(ctx context.Context, id uuid.UUID, status, feedback string, matchedFoundID *uuid.UUID) error
	UpdateFoundItem(ctx context.Context, id uuid.UUID, status, feedback string) error
	// ClaimFoundItem marks an Unclaimed found item Claimed by lostID in one conditional update.
	ClaimFoundItem(ctx context.Context, foundID, lostID uuid.UUID) error
	// ReleaseAndUpdateLostItem updates the lost item like UpdateLostItem and, in the same
	// transaction, hands releasedFoundID back: the found item becomes Unclaimed and both
	// references are cleared unless matchedFoundID sets a new match.
	ReleaseAndUpdateLostItem(ctx context.Context, id, releasedFoundID uuid.UUID, status, feedback string, matchedFoundID *uuid.UUID) error
	// ReleaseFoundItem sets the found item back to Unclaimed and clears both references in
	// one transaction. A lost item still marked Found goes back to Lost.
	ReleaseFoundItem(ctx context.Context, foundID, lostID uuid.UUID, feedback string) error
}

// ListFilter narrows the list queries. Limit 0 means no limit.
type ListFilter struct {
	ReporterID uuid.UUID
	Offset     int
	Limit      int
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM lost and found repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) CreateLostItem(ctx context.Context, item *LostItem) error {
	if err := r.db.WithContext(ctx).Omit("Attachments").Create(item).Error; err != nil {
		return fmt.Errorf("failed to create lost item: %w", err)
	}
	return nil
}

func (r *gormRepository) CreateFoundItem(ctx context.Context, item *FoundItem) error {
	if err := r.db.WithContext(ctx).Omit("Attachments").Create(item).Error; err != nil {
		return fmt.Errorf("failed to create found item: %w", err)
	}
	return nil
}

func (r *gormRepository) CreateAttachment(ctx context.Context, a *ItemAttachment) error {
	if err := r.db.WithContext(ctx).Create(a).Error; err != nil {
		return fmt.Errorf("failed to create item attachment: %w", err)
	}
	return nil
}

func (r *gormRepository) DeleteLostItem(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("lost_item_id = ?", id).Delete(&ItemAttachment{}).Error; err != nil {
			return fmt.Errorf("failed to delete attachments of lost item %s: %w", id, err)
		}
		if err := tx.Delete(&LostItem{}, "id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete lost item %s: %w", id, err)
		}
		return nil
	})
}

func (r *gormRepository) DeleteFoundItem(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("found_item_id = ?", id).Delete(&ItemAttachment{}).Error; err != nil {
			return fmt.Errorf("failed to delete attachments of found item %s: %w", id, err)
		}
		if err := tx.Delete(&FoundItem{}, "id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete found item %s: %w", id, err)
		}
		return nil
	})
}

func attachmentsOldestFirst(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }

func (r *gormRepository) FindLostItem(ctx context.Context, id uuid.UUID) (*LostItem, error) {
	var item LostItem
	err := r.db.WithContext(ctx).Preload("Attachments", attachmentsOldestFirst).First(&item, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Lost item not found.")
		}
		return nil, fmt.Errorf("failed to load lost item %s: %w", id, err)
	}
	return &item, nil
}

func (r *gormRepository) FindFoundItem(ctx context.Context, id uuid.UUID) (*FoundItem, error) {
	var item FoundItem
	err := r.db.WithContext(ctx).Preload("Attachments", attachmentsOldestFirst).First(&item, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Found item not found.")
		}
		return nil, fmt.Errorf("failed to load found item %s: %w", id, err)
	}
	return &item, nil
}

func (r *gormRepository) page(query *gorm.DB, filter ListFilter) *gorm.DB {
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	return query
}

func (r *gormRepository) ListLostItems(ctx context.Context, filter ListFilter) ([]LostItem, error) {
	var items []LostItem
	query := r.db.WithContext(ctx).Model(&LostItem{}).Preload("Attachments", attachmentsOldestFirst)
	if filter.ReporterID != uuid.Nil {
		query = query.Where("reporter_id = ?", filter.ReporterID)
	}
	if err := r.page(query.Order("reported_date DESC").Order("id"), filter).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list lost items: %w", err)
	}
	return items, nil
}

func (r *gormRepository) ListFoundItems(ctx context.Context, filter ListFilter) ([]FoundItem, error) {
	var items []FoundItem
	query := r.db.WithContext(ctx).Model(&FoundItem{}).Preload("Attachments", attachmentsOldestFirst)
	if err := r.page(query.Order("created_at DESC").Order("id"), filter).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list found items: %w", err)
	}
	return items, nil
}

func (r *gormRepository) UpdateLostItem(ctx context.Context, id uuid.UUID, status, feedback string, matchedFoundID *uuid.UUID) error {
	updates := map[string]interface{}{"status": status, "admin_feedback": feedback}
	if matchedFoundID != nil {
		updates["matched_found_item_id"] = *matchedFoundID
	}
	result := r.db.WithContext(ctx).Model(&LostItem{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update lost item %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return common.ErrNotFound.WithDetails("Lost item not found.")
	}
	return nil
}

func (r *gormRepository) UpdateFoundItem(ctx context.Context, id uuid.UUID, status, feedback string) error {
	result := r.db.WithContext(ctx).Model(&FoundItem{}).Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "admin_feedback": feedback})
	if result.Error != nil {
		return fmt.Errorf("failed to update found item %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return common.ErrNotFound.WithDetails("Found item not found.")
	}
	return nil
}

func (r *gormRepository) ClaimFoundItem(ctx context.Context, foundID, lostID uuid.UUID) error {
	result := r.db.WithContext(ctx).Model(&FoundItem{}).
		Where("id = ? AND status = ?", foundID, StatusUnclaimed).
		Updates(map[string]interface{}{"status": StatusClaimed, "matched_lost_item_id": lostID})
	if result.Error != nil {
		return fmt.Errorf("failed to claim found item %s: %w", foundID, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrFoundItemUnavailable
	}
	return nil
}

func (r *gormRepository) ReleaseAndUpdateLostItem(ctx context.Context, id, releasedFoundID uuid.UUID, status, feedback string, matchedFoundID *uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := unclaimFoundItem(tx, releasedFoundID, id); err != nil {
			return err
		}
		updates := map[string]interface{}{"status": status, "admin_feedback": feedback, "matched_found_item_id": nil}
		if matchedFoundID != nil {
			updates["matched_found_item_id"] = *matchedFoundID
		}
		result := tx.Model(&LostItem{}).Where("id = ?", id).Updates(updates)
		if result.Error != nil {
			return fmt.Errorf("failed to update lost item %s: %w", id, result.Error)
		}
		if result.RowsAffected == 0 {
			return common.ErrNotFound.WithDetails("Lost item not found.")
		}
		return nil
	})
}

func (r *gormRepository) ReleaseFoundItem(ctx context.Context, foundID, lostID uuid.UUID, feedback string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&FoundItem{}).Where("id = ?", foundID).
			Updates(map[string]interface{}{"status": StatusUnclaimed, "admin_feedback": feedback, "matched_lost_item_id": nil})
		if result.Error != nil {
			return fmt.Errorf("failed to release found item %s: %w", foundID, result.Error)
		}
		if result.RowsAffected == 0 {
			return common.ErrNotFound.WithDetails("Found item not found.")
		}
		err := tx.Model(&LostItem{}).
			Where("id = ? AND matched_found_item_id = ? AND status = ?", lostID, foundID, StatusFound).
			Update("status", StatusLost).Error
		if err != nil {
			return fmt.Errorf("failed to reopen lost item %s: %w", lostID, err)
		}
		err = tx.Model(&LostItem{}).
			Where("id = ? AND matched_found_item_id = ?", lostID, foundID).
			Update("matched_found_item_id", nil).Error
		if err != nil {
			return fmt.Errorf("failed to unlink lost item %s: %w", lostID, err)
		}
		return nil
	})
}

// unclaimFoundItem only touches the found item while it still points back at lostID.
func unclaimFoundItem(tx *gorm.DB, foundID, lostID uuid.UUID) error {
	err := tx.Model(&FoundItem{}).
		Where("id = ? AND matched_lost_item_id = ?", foundID, lostID).
		Updates(map[string]interface{}{"status": StatusUnclaimed, "matched_lost_item_id": nil}).Error
	if err != nil {
		return fmt.Errorf("failed to release found item %s: %w", foundID, err)
	}
	return nil
}
