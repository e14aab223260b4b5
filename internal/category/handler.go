// File: internal/category/handler.go
package category

import (
	"errors"
	"net/http"

	"campus_desk_backend/internal/common"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type routeBinding struct {
	method  string
	path    string
	handler gin.HandlerFunc
}

// Handler struct holds dependencies for category handlers.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler creates a new category handler.
func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes mounts the read routes on signedIn and the create route on masterOnly.
func (h *Handler) RegisterRoutes(signedIn, masterOnly *gin.RouterGroup) {
	for _, b := range []routeBinding{
		{http.MethodGet, "/categories", h.getAllCategories},
	} {
		signedIn.Handle(b.method, b.path, b.handler)
	}
	for _, b := range []routeBinding{
		{http.MethodPost, "/categories", h.adminCreateCategory},
	} {
		masterOnly.Handle(b.method, b.path, b.handler)
	}
}

func (h *Handler) getAllCategories(c *gin.Context) {
	categories, err := h.service.GetAllCategories(c.Request.Context())
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	responses := make([]CategoryResponse, len(categories))
	for i := range categories {
		responses[i] = ToCategoryResponse(&categories[i])
	}
	common.RespondOK(c, "Categories retrieved successfully.", responses)
}

func (h *Handler) adminCreateCategory(c *gin.Context) {
	var req AdminCreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}
	category, err := h.service.AdminCreateCategory(c.Request.Context(), req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Category created successfully.", ToCategoryResponse(category))
}
