package user

import (
	"context"

	"campus_desk_backend/internal/common"
	"campus_desk_backend/internal/session"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HandledCounter counts the complaints an admin handles.
type HandledCounter interface {
	CountHandled(ctx context.Context, sess *session.Session) (int64, error)
}

// Handler serves the admin profile.
type Handler struct {
	service *ServiceImplementation
	handled HandledCounter
	logger  *zap.Logger
}

// NewHandler creates a user handler.
func NewHandler(service *ServiceImplementation, handled HandledCounter, logger *zap.Logger) *Handler {
	return &Handler{service: service, handled: handled, logger: logger}
}

// RegisterRoutes mounts the profile route on the admin group.
func (h *Handler) RegisterRoutes(admins *gin.RouterGroup) {
	admins.GET("/profile", h.getProfile)
}

func (h *Handler) getProfile(c *gin.Context) {
	sess := session.FromGin(c)
	profile, err := h.service.AdminProfile(c.Request.Context(), sess)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	handled, err := h.handled.CountHandled(c.Request.Context(), sess)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	profile.HandledComplaints = handled
	common.RespondOK(c, "Admin profile retrieved successfully.", profile)
}
