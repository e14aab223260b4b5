package notification

import (
	"context"
	"fmt"
	"strings"
	"time"

	"campus_desk_backend/internal/common"
	"campus_desk_backend/internal/session"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EventSubmitted is the kind of the first timeline entry.
const EventSubmitted = "Submitted"

// Subject is the complaint a timeline is built for.
type Subject struct {
	ComplaintID uuid.UUID
	Title       string
	SubmittedAt time.Time
}

// SubjectSource loads a complaint the caller is allowed to see.
type SubjectSource interface {
	TimelineSubject(ctx context.Context, sess *session.Session, complaintID uuid.UUID) (*Subject, error)
}

// TimelineEvent is one entry of a complaint's status history.
type TimelineEvent struct {
	Kind           string     `json:"kind"`
	Message        string     `json:"message"`
	At             time.Time  `json:"at"`
	NotificationID *uuid.UUID `json:"notification_id,omitempty"`
}

// Timeline builds per-complaint status histories from the notifications sent about them.
type Timeline struct {
	repo     Repository
	subjects SubjectSource
	logger   *zap.Logger
	now      func() time.Time
}

// NewTimeline creates a timeline builder.
func NewTimeline(repo Repository, subjects SubjectSource, logger *zap.Logger) *Timeline {
	return &Timeline{
		repo:     repo,
		subjects: subjects,
		logger:   logger.Named("notification_timeline"),
		now:      time.Now,
	}
}

// ForComplaint returns the submission event followed by the complaint's notifications
// created at or before until, oldest first. A zero until means now.
func (t *Timeline) ForComplaint(ctx context.Context, sess *session.Session, complaintID uuid.UUID, until time.Time) ([]TimelineEvent, error) {
	if sess == nil {
		return nil, common.ErrUnauthorized
	}
	subject, err := t.subjects.TimelineSubject(ctx, sess, complaintID)
	if err != nil {
		return nil, err
	}
	if until.IsZero() {
		until = t.now()
	}
	history, err := t.repo.ListForComplaint(ctx, subject.ComplaintID, until)
	if err != nil {
		t.logger.Error("Failed to load complaint history", zap.Error(err), zap.String("complaintID", complaintID.String()))
		return nil, common.ErrInternalServer.WithDetails("Could not load the complaint history.")
	}

	title := strings.TrimSpace(subject.Title)
	if title == "" {
		title = EventSubmitted
	}
	events := make([]TimelineEvent, 0, len(history)+1)
	events = append(events, TimelineEvent{
		Kind:    EventSubmitted,
		Message: fmt.Sprintf("Complaint \"%s\" was received.", title),
		At:      subject.SubmittedAt,
	})
	for i := range history {
		n := &history[i]
		events = append(events, TimelineEvent{Kind: string(n.Type), Message: n.Message, At: n.CreatedAt, NotificationID: &n.ID})
	}
	return events, nil
}
