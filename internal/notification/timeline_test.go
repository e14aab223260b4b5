package notification

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"campus_desk_backend/internal/common"
	"campus_desk_backend/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockSubjectSource struct {
	mock.Mock
}

func (m *MockSubjectSource) TimelineSubject(ctx context.Context, sess *session.Session, complaintID uuid.UUID) (*Subject, error) {
	args := m.Called(ctx, sess, complaintID)
	s, _ := args.Get(0).(*Subject)
	return s, args.Error(1)
}

type timelineTestSuite struct {
	timeline *Timeline
	repo     *MockNotificationRepository
	subjects *MockSubjectSource
	now      time.Time
}

func setupTimelineTestSuite(t *testing.T) *timelineTestSuite {
	t.Helper()
	ts := &timelineTestSuite{
		repo:     new(MockNotificationRepository),
		subjects: new(MockSubjectSource),
		now:      time.Date(2024, 4, 10, 12, 0, 0, 0, time.UTC),
	}
	ts.timeline = NewTimeline(ts.repo, ts.subjects, zap.NewNop())
	ts.timeline.now = func() time.Time { return ts.now }
	return ts
}

func TestTimeline_ForComplaint(t *testing.T) {
	ts := setupTimelineTestSuite(t)
	ctx := context.Background()
	sess := &session.Session{UserID: uuid.New(), Kind: session.KindStudent}
	complaintID := uuid.New()
	submitted := ts.now.Add(-72 * time.Hour)
	cutoff := ts.now.Add(-time.Hour)
	history := []Notification{
		{ID: uuid.New(), Type: ComplaintUpdate, Message: "Your complaint \"Broken projector\" is now In-Progress. Technician booked", CreatedAt: submitted.Add(time.Hour)},
		{ID: uuid.New(), Type: ComplaintUpdate, Message: "Your complaint \"Broken projector\" is now Resolved. Replaced", CreatedAt: cutoff},
	}

	ts.subjects.On("TimelineSubject", ctx, sess, complaintID).
		Return(&Subject{ComplaintID: complaintID, Title: "Broken projector", SubmittedAt: submitted}, nil).Once()
	ts.repo.On("ListForComplaint", ctx, complaintID, cutoff).Return(history, nil).Once()

	events, err := ts.timeline.ForComplaint(ctx, sess, complaintID, cutoff)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, EventSubmitted, events[0].Kind)
	assert.Equal(t, "Complaint \"Broken projector\" was received.", events[0].Message)
	assert.Equal(t, submitted, events[0].At)
	assert.Nil(t, events[0].NotificationID)
	for i, n := range history {
		e := events[i+1]
		assert.Equal(t, string(ComplaintUpdate), e.Kind)
		assert.Equal(t, n.Message, e.Message)
		assert.Equal(t, n.CreatedAt, e.At)
		require.NotNil(t, e.NotificationID)
		assert.Equal(t, n.ID, *e.NotificationID)
	}
	ts.subjects.AssertExpectations(t)
	ts.repo.AssertExpectations(t)
}

func TestTimeline_DefaultsCutoffAndTitle(t *testing.T) {
	ts := setupTimelineTestSuite(t)
	ctx := context.Background()
	sess := &session.Session{UserID: uuid.New(), Kind: session.KindAdmin, AdminRole: session.RoleMasterAdmin}
	complaintID := uuid.New()

	ts.subjects.On("TimelineSubject", ctx, sess, complaintID).Return(&Subject{ComplaintID: complaintID, SubmittedAt: ts.now}, nil).Once()
	ts.repo.On("ListForComplaint", ctx, complaintID, ts.now).Return(nil, nil).Once()

	events, err := ts.timeline.ForComplaint(ctx, sess, complaintID, time.Time{})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Complaint \"Submitted\" was received.", events[0].Message)
	ts.repo.AssertExpectations(t)
}

func TestTimeline_Errors(t *testing.T) {
	ctx := context.Background()
	sess := &session.Session{UserID: uuid.New(), Kind: session.KindStudent}

	t.Run("no session", func(t *testing.T) {
		ts := setupTimelineTestSuite(t)
		_, err := ts.timeline.ForComplaint(ctx, nil, uuid.New(), time.Time{})
		assert.ErrorIs(t, err, common.ErrUnauthorized)
		ts.subjects.AssertNotCalled(t, "TimelineSubject", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("complaint the caller cannot see", func(t *testing.T) {
		ts := setupTimelineTestSuite(t)
		id := uuid.New()
		ts.subjects.On("TimelineSubject", ctx, sess, id).Return(nil, common.ErrNotFound.WithDetails("Complaint not found.")).Once()

		_, err := ts.timeline.ForComplaint(ctx, sess, id, time.Time{})
		assert.ErrorIs(t, err, common.ErrNotFound)
		ts.repo.AssertNotCalled(t, "ListForComplaint", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("history query fails", func(t *testing.T) {
		ts := setupTimelineTestSuite(t)
		id := uuid.New()
		ts.subjects.On("TimelineSubject", ctx, sess, id).Return(&Subject{ComplaintID: id}, nil).Once()
		ts.repo.On("ListForComplaint", ctx, id, ts.now).Return(nil, errors.New("db down")).Once()

		_, err := ts.timeline.ForComplaint(ctx, sess, id, time.Time{})
		assert.ErrorIs(t, err, common.ErrInternalServer)
	})
}

func newTimelineRouter(ts *timelineTestSuite, sess *session.Session) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	group := r.Group("/notifications", func(c *gin.Context) {
		if sess != nil {
			c.Set(session.GinKey, sess)
		}
	})
	NewHandler(nil, ts.timeline, zap.NewNop()).RegisterRoutes(group)
	return r
}

func TestHandler_ComplaintTimeline(t *testing.T) {
	ts := setupTimelineTestSuite(t)
	sess := &session.Session{UserID: uuid.New(), Kind: session.KindStudent}
	complaintID := uuid.New()
	cutoff := time.Date(2024, 4, 9, 8, 30, 0, 0, time.UTC)
	ts.subjects.On("TimelineSubject", mock.Anything, sess, complaintID).
		Return(&Subject{ComplaintID: complaintID, Title: "Leaking tap", SubmittedAt: cutoff.Add(-time.Hour)}, nil).Once()
	ts.repo.On("ListForComplaint", mock.Anything, complaintID, mock.MatchedBy(func(until time.Time) bool { return until.Equal(cutoff) })).
		Return([]Notification{{ID: uuid.New(), Type: ComplaintUpdate, Message: "now In-Progress", CreatedAt: cutoff}}, nil).Once()

	r := newTimelineRouter(ts, sess)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/notifications/complaints/"+complaintID.String()+"/timeline?until=2024-04-09T08:30:00Z", nil))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var body struct {
		Data []TimelineEvent `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Data, 2)
	assert.Equal(t, EventSubmitted, body.Data[0].Kind)
	assert.Equal(t, "now In-Progress", body.Data[1].Message)
	ts.repo.AssertExpectations(t)
}

func TestHandler_ComplaintTimelineBadInput(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"invalid complaint id", "/notifications/complaints/not-a-uuid/timeline"},
		{"invalid cutoff", "/notifications/complaints/" + uuid.NewString() + "/timeline?until=yesterday"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := setupTimelineTestSuite(t)
			r := newTimelineRouter(ts, &session.Session{UserID: uuid.New(), Kind: session.KindStudent})
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, http.StatusBadRequest, w.Code)
			ts.subjects.AssertNotCalled(t, "TimelineSubject", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}
