package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"campus_desk_backend/internal/analytics"
	"campus_desk_backend/internal/auth"
	"campus_desk_backend/internal/category"
	"campus_desk_backend/internal/complaint"
	"campus_desk_backend/internal/config"
	"campus_desk_backend/internal/lostfound"
	"campus_desk_backend/internal/session"
	"campus_desk_backend/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// tokenVerifier treats the bearer token as the uid.
type tokenVerifier struct{}

func (tokenVerifier) Verify(_ context.Context, token string) (*session.Identity, error) {
	if token == "expired" {
		return nil, errors.New("token expired")
	}
	return &session.Identity{UID: token}, nil
}

func (tokenVerifier) SignOut(context.Context, string) error { return nil }

type sessionTable map[string]*session.Session

func (t sessionTable) ResolveSession(_ context.Context, identity *session.Identity) (*session.Session, error) {
	sess, ok := t[identity.UID]
	if !ok {
		return nil, errors.New("unknown uid")
	}
	return sess, nil
}

type emptyComplaints struct{}

func (emptyComplaints) Rows(context.Context, *time.Time, *time.Time) ([]complaint.Row, error) {
	return nil, nil
}

type emptyRoles struct{}

func (emptyRoles) AdminRoles(context.Context, []uuid.UUID) (map[uuid.UUID]string, error) {
	return map[uuid.UUID]string{}, nil
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	cfg := &config.Config{
		GinMode:          gin.TestMode,
		StorageDriver:    "local",
		StorageLocalPath: t.TempDir(),
		MaxUploadBytes:   5 << 20,
	}
	logger := zap.NewNop()
	handlers := Handlers{
		Auth:      auth.NewHandler(tokenVerifier{}, logger),
		Category:  category.NewHandler(nil, logger),
		Complaint: complaint.NewHandler(nil, logger),
		LostFound: lostfound.NewHandler(nil, logger),
		Analytics: analytics.NewHandler(analytics.NewService(emptyComplaints{}, emptyRoles{}, logger), logger),
		Profile:   user.NewHandler(nil, nil, logger),
	}
	sessions := sessionTable{
		"student":  {UserID: uuid.New(), Kind: session.KindStudent},
		"facility": {UserID: uuid.New(), Kind: session.KindAdmin, AdminRole: session.RoleFacilityAdmin},
		"desk":     {UserID: uuid.New(), Kind: session.KindAdmin, AdminRole: session.RoleLostAndFound},
	}
	return NewRouter(cfg, logger, handlers, tokenVerifier{}, sessions)
}

func TestRouter_Health(t *testing.T) {
	r := newTestRouter(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "UP")
}

func TestRouter_AccessControl(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"missing token", http.MethodGet, "/api/v1/admin/analytics", "", http.StatusUnauthorized},
		{"expired token", http.MethodGet, "/api/v1/admin/analytics", "expired", http.StatusUnauthorized},
		{"unknown user", http.MethodGet, "/api/v1/admin/analytics", "nobody", http.StatusUnauthorized},
		{"student on admin dashboard", http.MethodGet, "/api/v1/admin/complaints", "student", http.StatusForbidden},
		{"admin submitting a complaint", http.MethodPost, "/api/v1/complaints/facility", "facility", http.StatusForbidden},
		{"admin reporting a lost item", http.MethodPost, "/api/v1/lost-items", "desk", http.StatusForbidden},
		{"facility admin on the lost and found desk", http.MethodPost, "/api/v1/admin/found-items", "facility", http.StatusForbidden},
		{"facility admin creating a category", http.MethodPost, "/api/v1/admin/categories", "facility", http.StatusForbidden},
		{"student on admin profile", http.MethodGet, "/api/v1/admin/profile", "student", http.StatusForbidden},
		{"admin analytics", http.MethodGet, "/api/v1/admin/analytics?range=all", "facility", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(t)
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestRouter_SessionEndpointReturnsLandingView(t *testing.T) {
	r := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/session", nil)
	req.Header.Set("Authorization", "Bearer desk")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), session.ViewAdminDashboard)
}
