package notification

import (
	"net/http"
	"time"

	"campus_desk_backend/internal/common"
	"campus_desk_backend/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type routeBinding struct {
	method  string
	path    string
	handler gin.HandlerFunc
}

type Handler struct {
	service  Service
	timeline *Timeline
	logger   *zap.Logger
}

func NewHandler(service Service, timeline *Timeline, logger *zap.Logger) *Handler {
	return &Handler{
		service:  service,
		timeline: timeline,
		logger:   logger,
	}
}

// RegisterRoutes mounts the notification routes on an authenticated group.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	for _, b := range []routeBinding{
		{http.MethodGet, "", h.getNotifications},
		{http.MethodGet, "/unread-count", h.getUnreadCount},
		{http.MethodPost, "/:notification_id/mark-read", h.markNotificationAsRead},
		{http.MethodPost, "/mark-all-read", h.markAllNotificationsAsRead},
		{http.MethodGet, "/complaints/:id/timeline", h.getComplaintTimeline},
	} {
		router.Handle(b.method, b.path, b.handler)
	}
}

func callerID(c *gin.Context) (uuid.UUID, bool) {
	sess := session.FromGin(c)
	if sess == nil || sess.UserID == uuid.Nil {
		common.RespondWithError(c, common.ErrUnauthorized.WithDetails("No session."))
		return uuid.Nil, false
	}
	return sess.UserID, true
}

func (h *Handler) getNotifications(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	page, pageSize := common.GetPaginationParams(c)

	notifications, pagination, err := h.service.GetNotificationsForUser(c.Request.Context(), userID, page, pageSize)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondPaginated(c, "Notifications retrieved successfully.", notifications, pagination)
}

func (h *Handler) getUnreadCount(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	resp, err := h.service.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Unread count retrieved successfully.", resp)
}

func (h *Handler) markNotificationAsRead(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	notificationID, err := uuid.Parse(c.Param("notification_id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid notification ID format."))
		return
	}
	if err := h.service.MarkNotificationAsRead(c.Request.Context(), notificationID, userID); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Notification marked as read successfully.", nil)
}

func (h *Handler) markAllNotificationsAsRead(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	count, err := h.service.MarkAllUserNotificationsAsRead(c.Request.Context(), userID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "All notifications marked as read successfully.", gin.H{"updated": count})
}

// getComplaintTimeline serves a complaint's status history. The optional "until" query
// (RFC 3339) cuts the history at the notification the caller opened it from.
func (h *Handler) getComplaintTimeline(c *gin.Context) {
	complaintID, ok := common.ParamUUID(c, "id")
	if !ok {
		return
	}
	var until time.Time
	if raw := c.Query("until"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			common.RespondWithError(c, common.ErrBadRequest.WithDetails("until must be an RFC 3339 timestamp."))
			return
		}
		until = parsed
	}
	events, err := h.timeline.ForComplaint(c.Request.Context(), session.FromGin(c), complaintID, until)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Complaint timeline retrieved successfully.", events)
}
