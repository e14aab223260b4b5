// File: internal/category/model.go
package category

import (
	"time"

	"campus_desk_backend/internal/common"

	"github.com/google/uuid"
)

// Names of the complaint categories the submission workflow resolves.
const (
	NameFacility       = "Facility"
	NameAdministrative = "Administrative"

	// Uncategorized is shown when a complaint's category cannot be joined.
	Uncategorized = "Uncategorized"
)

// Category represents a complaint category.
type Category struct {
	common.BaseModel
	Name        string  `gorm:"type:varchar(100);not null;uniqueIndex:idx_categories_name,unique"`
	Slug        string  `gorm:"type:varchar(100);not null;uniqueIndex:idx_categories_slug,unique"`
	Description *string `gorm:"type:text"`
}

// TableName specifies the table name for the Category model.
func (Category) TableName() string {
	return "categories"
}

// CategoryResponse defines the structure for category data sent in API responses.
type CategoryResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ToCategoryResponse converts a Category model to a CategoryResponse DTO.
func ToCategoryResponse(category *Category) CategoryResponse {
	return CategoryResponse{
		ID:          category.ID,
		Name:        category.Name,
		Slug:        category.Slug,
		Description: category.Description,
		CreatedAt:   category.CreatedAt,
	}
}

// AdminCreateCategoryRequest for master admins adding categories.
type AdminCreateCategoryRequest struct {
	Name        string  `json:"name" binding:"required,max=100"`
	Slug        string  `json:"slug" binding:"omitempty,max=100"`
	Description *string `json:"description,omitempty"`
}

// Defaults are seeded by the migrate command.
func Defaults() []AdminCreateCategoryRequest {
	facility := "Broken facilities, maintenance and safety issues."
	administrative := "Enrollment, records, staff conduct and other office matters."
	return []AdminCreateCategoryRequest{
		{Name: NameFacility, Description: &facility},
		{Name: NameAdministrative, Description: &administrative},
	}
}
