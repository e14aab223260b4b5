package analytics

import (
	"context"
	"fmt"
	"io"
	"time"

	"campus_desk_backend/internal/common"
	"campus_desk_backend/internal/complaint"
	"campus_desk_backend/internal/session"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ComplaintSource lists complaints submitted in [from, until).
type ComplaintSource interface {
	Rows(ctx context.Context, from, until *time.Time) ([]complaint.Row, error)
}

// RoleDirectory resolves the roles of handling admins.
type RoleDirectory interface {
	AdminRoles(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
}

// Format is an export file format.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatXLSX Format = "xlsx"
)

// ContentType is the response MIME type of the format.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "application/pdf"
}

// Service builds analytics reports.
type Service struct {
	complaints ComplaintSource
	roles      RoleDirectory
	logger     *zap.Logger
	now        func() time.Time
}

// NewService creates an analytics service.
func NewService(complaints ComplaintSource, roles RoleDirectory, logger *zap.Logger) *Service {
	return &Service{
		complaints: complaints,
		roles:      roles,
		logger:     logger.Named("analytics_service"),
		now:        time.Now,
	}
}

// Now is the service clock; handlers resolve presets against it.
func (s *Service) Now() time.Time { return s.now() }

// Report computes the analytics for w. Master admins see every complaint and the
// role and category breakdowns; other admins see the complaints assigned to them.
func (s *Service) Report(ctx context.Context, sess *session.Session, w Window) (*Report, error) {
	if sess == nil {
		return nil, common.ErrUnauthorized
	}
	if !sess.IsAdmin() {
		return nil, common.ErrForbidden.WithDetails("Admin access required.")
	}
	rows, err := s.complaints.Rows(ctx, w.From, w.Until)
	if err != nil {
		return nil, fmt.Errorf("failed to load complaints for analytics: %w", err)
	}

	master := sess.IsMasterAdmin()
	scope := session.RoleMasterAdmin
	if !master {
		scope = sess.AdminRole
		mine := rows[:0:0]
		for _, r := range rows {
			if r.AdminID == sess.UserID {
				mine = append(mine, r)
			}
		}
		rows = mine
	}

	var roles map[uuid.UUID]string
	if master {
		ids := make([]uuid.UUID, 0, len(rows))
		seen := map[uuid.UUID]bool{}
		for _, r := range rows {
			if r.AdminID != uuid.Nil && !seen[r.AdminID] {
				seen[r.AdminID] = true
				ids = append(ids, r.AdminID)
			}
		}
		roles, err = s.roles.AdminRoles(ctx, ids)
		if err != nil {
			// The role chart falls back to "Unknown"; the rest of the report stands.
			s.logger.Warn("Admin role lookup failed", zap.Error(err))
			roles = nil
		}
	}

	report := Build(rows, roles, w, scope, master, s.now())
	s.logger.Debug("Analytics report built", zap.String("range", string(w.Range)), zap.Int("complaints", report.KPIs.Total))
	return report, nil
}

// Export writes the report for w in the given format.
func (s *Service) Export(ctx context.Context, sess *session.Session, w Window, format Format, out io.Writer) error {
	report, err := s.Report(ctx, sess, w)
	if err != nil {
		return err
	}
	switch format {
	case FormatPDF:
		return WritePDF(out, report)
	case FormatXLSX:
		return WriteXLSX(out, report)
	default:
		return common.NewValidationError("Unsupported export format.", map[string]string{"format": "Format must be pdf or xlsx."})
	}
}

// ParseFormat maps a query value onto an export format, defaulting to PDF.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatPDF:
		return FormatPDF, nil
	case FormatXLSX:
		return FormatXLSX, nil
	default:
		return "", common.NewValidationError("Unsupported export format.", map[string]string{"format": "Format must be pdf or xlsx."})
	}
}
