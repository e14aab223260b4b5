package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"campus_desk_backend/internal/common"
	"campus_desk_backend/internal/session"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ServiceImplementation resolves verified identities into sessions and looks up people.
type ServiceImplementation struct {
	repo   Repository
	logger *zap.Logger
}

var _ session.Resolver = (*ServiceImplementation)(nil)

// NewService creates a new user service.
func NewService(repo Repository, logger *zap.Logger) *ServiceImplementation {
	return &ServiceImplementation{
		repo:   repo,
		logger: logger.Named("user_service"),
	}
}

// ResolveSession maps a verified identity onto an admin session if the uid belongs to
// an admin, otherwise onto a student session. Unknown students are created on first sign-in.
func (s *ServiceImplementation) ResolveSession(ctx context.Context, identity *session.Identity) (*session.Session, error) {
	if identity == nil || identity.UID == "" {
		return nil, common.ErrUnauthorized.WithDetails("Missing identity.")
	}

	admin, err := s.repo.FindAdminByFirebaseUID(ctx, identity.UID)
	if err == nil {
		return &session.Session{
			UserID:      admin.ID,
			FirebaseUID: identity.UID,
			Kind:        session.KindAdmin,
			AdminRole:   admin.AdminRole,
			Email:       admin.Email,
			FirstName:   admin.FirstName,
			LastName:    admin.LastName,
		}, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		s.logger.Error("Admin lookup failed", zap.Error(err), zap.String("firebaseUID", identity.UID))
		return nil, fmt.Errorf("failed to look up admin: %w", err)
	}

	u, err := s.repo.FindUserByFirebaseUID(ctx, identity.UID)
	if errors.Is(err, common.ErrNotFound) {
		u, err = s.createStudent(ctx, identity)
	}
	if err != nil {
		return nil, err
	}

	return &session.Session{
		UserID:      u.ID,
		FirebaseUID: identity.UID,
		Kind:        session.KindStudent,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
	}, nil
}

func (s *ServiceImplementation) createStudent(ctx context.Context, identity *session.Identity) (*User, error) {
	if identity.Email == "" {
		return nil, common.ErrUnauthorized.WithDetails("Token carries no email address.")
	}
	first, last := splitName(identity.Name)
	uid := identity.UID
	u := &User{
		FirebaseUID: &uid,
		Email:       identity.Email,
		FirstName:   first,
		LastName:    last,
	}
	if err := s.repo.CreateUser(ctx, u); err != nil {
		s.logger.Error("Failed to create student on first sign-in", zap.Error(err), zap.String("email", identity.Email))
		if apiErr, ok := common.IsAPIError(err); ok {
			return nil, apiErr
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	s.logger.Info("Created student on first sign-in", zap.String("userID", u.ID.String()))
	return u, nil
}

// GetContact returns the mail contact for a student.
func (s *ServiceImplementation) GetContact(ctx context.Context, userID uuid.UUID) (*Contact, error) {
	u, err := s.repo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Contact{Email: u.Email, FirstName: u.FirstName}, nil
}

// FindAdminByRole returns the admin that handles role.
func (s *ServiceImplementation) FindAdminByRole(ctx context.Context, role string) (*Admin, error) {
	return s.repo.FindAdminByRole(ctx, role)
}

// FindAdminByID returns a single admin.
func (s *ServiceImplementation) FindAdminByID(ctx context.Context, id uuid.UUID) (*Admin, error) {
	return s.repo.FindAdminByID(ctx, id)
}

// AdminProfile is the signed-in admin's profile card.
type AdminProfile struct {
	ID                uuid.UUID `json:"id"`
	Name              string    `json:"name"`
	Email             string    `json:"email"`
	Role              string    `json:"role"`
	Initials          string    `json:"initials"`
	ProfilePicURL     *string   `json:"profile_pic_url,omitempty"`
	HandledComplaints int64     `json:"handled_complaints"`
}

// AdminProfile loads the profile of the admin behind sess. HandledComplaints is left to the caller.
func (s *ServiceImplementation) AdminProfile(ctx context.Context, sess *session.Session) (*AdminProfile, error) {
	if !sess.IsAdmin() {
		return nil, common.ErrForbidden.WithDetails("Admin access required.")
	}
	admin, err := s.repo.FindAdminByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound.WithDetails("Admin profile not found.")
		}
		s.logger.Error("Failed to load admin profile", zap.String("adminID", sess.UserID.String()), zap.Error(err))
		return nil, common.ErrInternalServer.WithDetails("Could not load the profile.")
	}
	summary := ToAdminSummary(admin)
	return &AdminProfile{
		ID:            admin.ID,
		Name:          summary.Name,
		Email:         admin.Email,
		Role:          summary.Role,
		Initials:      summary.Initials,
		ProfilePicURL: admin.ProfilePicURL,
	}, nil
}

// FindUserByID returns a single student.
func (s *ServiceImplementation) FindUserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.FindUserByID(ctx, id)
}

// UserNames returns display names keyed by user id.
func (s *ServiceImplementation) UserNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	users, err := s.repo.FindUsersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	names := make(map[uuid.UUID]string, len(users))
	for _, u := range users {
		name := strings.TrimSpace(u.FirstName + " " + u.LastName)
		if name == "" {
			name = u.Email
		}
		names[u.ID] = name
	}
	return names, nil
}

// AdminRoles returns admin roles keyed by admin id.
func (s *ServiceImplementation) AdminRoles(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	admins, err := s.repo.FindAdminsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	roles := make(map[uuid.UUID]string, len(admins))
	for _, a := range admins {
		roles[a.ID] = a.AdminRole
	}
	return roles, nil
}

func splitName(name string) (string, string) {
	parts := strings.Fields(name)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	default:
		return parts[0], strings.Join(parts[1:], " ")
	}
}
