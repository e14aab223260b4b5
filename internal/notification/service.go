package notification

import (
	"context"
	"strings"

	"campus_desk_backend/internal/common"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service defines notification operations.
type Service interface {
	CreateNotification(ctx context.Context, userID uuid.UUID, notifType NotificationType, message string, related Related) (*Notification, error)
	GetNotificationsForUser(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]Notification, *common.Pagination, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (*UnreadCountResponse, error)
	MarkNotificationAsRead(ctx context.Context, notificationID uuid.UUID, userID uuid.UUID) error
	MarkAllUserNotificationsAsRead(ctx context.Context, userID uuid.UUID) (int64, error)
}

type serviceImpl struct {
	repo   Repository
	logger *zap.Logger
}

// NewService creates a new notification service.
func NewService(repo Repository, logger *zap.Logger) Service {
	return &serviceImpl{
		repo:   repo,
		logger: logger.Named("notification_service"),
	}
}

func (s *serviceImpl) CreateNotification(ctx context.Context, userID uuid.UUID, notifType NotificationType, message string, related Related) (*Notification, error) {
	if userID == uuid.Nil || strings.TrimSpace(message) == "" {
		return nil, common.ErrBadRequest.WithDetails("Notification needs a recipient and a message.")
	}
	n := &Notification{
		UserID:             userID,
		Type:               notifType,
		Message:            message,
		RelatedComplaintID: related.ComplaintID,
		RelatedLostItemID:  related.LostItemID,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		s.logger.Error("Failed to create notification",
			zap.Error(err),
			zap.String("userID", userID.String()),
			zap.String("type", string(notifType)),
		)
		return nil, common.ErrInternalServer.WithDetails("Could not create notification.")
	}
	s.logger.Debug("Notification created", zap.String("id", n.ID.String()), zap.String("type", string(notifType)))
	return n, nil
}

func (s *serviceImpl) GetNotificationsForUser(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]Notification, *common.Pagination, error) {
	notifications, pagination, err := s.repo.GetByUserID(ctx, userID, page, pageSize)
	if err != nil {
		s.logger.Error("Failed to get notifications", zap.Error(err), zap.String("userID", userID.String()))
		return nil, nil, common.ErrInternalServer.WithDetails("Could not retrieve notifications.")
	}
	if notifications == nil {
		notifications = []Notification{}
	}
	return notifications, pagination, nil
}

func (s *serviceImpl) UnreadCount(ctx context.Context, userID uuid.UUID) (*UnreadCountResponse, error) {
	count, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to count unread notifications", zap.Error(err), zap.String("userID", userID.String()))
		return nil, common.ErrInternalServer.WithDetails("Could not count notifications.")
	}
	return &UnreadCountResponse{Count: count, Badge: BadgeLabel(count)}, nil
}

func (s *serviceImpl) MarkNotificationAsRead(ctx context.Context, notificationID uuid.UUID, userID uuid.UUID) error {
	if err := s.repo.MarkAsRead(ctx, notificationID, userID); err != nil {
		if _, ok := common.IsAPIError(err); ok {
			return err
		}
		s.logger.Error("Failed to mark notification as read", zap.Error(err), zap.String("notificationID", notificationID.String()))
		return common.ErrInternalServer.WithDetails("Could not mark notification as read.")
	}
	return nil
}

func (s *serviceImpl) MarkAllUserNotificationsAsRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	count, err := s.repo.MarkAllAsRead(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to mark all notifications as read", zap.Error(err), zap.String("userID", userID.String()))
		return 0, common.ErrInternalServer.WithDetails("Could not mark notifications as read.")
	}
	return count, nil
}
