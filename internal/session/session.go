// Package session carries the authenticated caller through every workflow.
// Handlers resolve it once per request and pass it explicitly; nothing is kept in
// package-level state.
package session

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Kind distinguishes students from desk staff.
type Kind string

const (
	KindStudent Kind = "student"
	KindAdmin   Kind = "admin"
)

// Admin roles. A role decides which complaints an admin handles.
const (
	RoleFacilityAdmin       = "Facility Admin"
	RoleAdministrativeAdmin = "Administrative Admin"
	RoleLostAndFound        = "Lost and Found"
	RoleMasterAdmin         = "Master Admin"
)

// Landing views returned to the client after sign-in.
const (
	ViewAdminDashboard = "admin-dashboard"
	ViewDashboard      = "dashboard"
)

// Session identifies the caller of one request.
type Session struct {
	UserID      uuid.UUID `json:"user_id"`
	FirebaseUID string    `json:"-"`
	Kind        Kind      `json:"kind"`
	AdminRole   string    `json:"admin_role,omitempty"`
	Email       string    `json:"email,omitempty"`
	FirstName   string    `json:"first_name,omitempty"`
	LastName    string    `json:"last_name,omitempty"`
}

func (s *Session) IsAdmin() bool { return s != nil && s.Kind == KindAdmin }

func (s *Session) IsMasterAdmin() bool { return s.IsAdmin() && s.AdminRole == RoleMasterAdmin }

// HasRole reports whether the session is an admin holding one of roles.
// Master admins hold every role.
func (s *Session) HasRole(roles ...string) bool {
	if !s.IsAdmin() {
		return false
	}
	if s.AdminRole == RoleMasterAdmin {
		return true
	}
	for _, r := range roles {
		if s.AdminRole == r {
			return true
		}
	}
	return false
}

// LandingView is where the client should go after signing in.
func (s *Session) LandingView() string {
	if s.IsAdmin() {
		return ViewAdminDashboard
	}
	return ViewDashboard
}

func (s *Session) DisplayName() string {
	name := strings.TrimSpace(s.FirstName + " " + s.LastName)
	if name == "" {
		return s.Email
	}
	return name
}

// Identity is what an identity provider vouches for after verifying a token.
type Identity struct {
	UID   string
	Email string
	Name  string
}

// Verifier checks an opaque bearer token.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
	SignOut(ctx context.Context, uid string) error
}

// Resolver turns a verified identity into a Session.
type Resolver interface {
	ResolveSession(ctx context.Context, identity *Identity) (*Session, error)
}

type ctxKey struct{}

// GinKey is the gin context key holding the *Session.
const GinKey = "session"

// WithSession returns a context carrying s.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session stored by WithSession.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(*Session)
	return s, ok && s != nil
}

// FromGin returns the session set by the auth middleware, or nil.
func FromGin(c *gin.Context) *Session {
	v, exists := c.Get(GinKey)
	if !exists {
		return nil
	}
	s, _ := v.(*Session)
	return s
}
