package complaint

import (
	"context"
	"errors"
	"fmt"
	"time"

	"campus_desk_backend/internal/category"
	"campus_desk_backend/internal/common"
	"campus_desk_backend/internal/listing"
	"campus_desk_backend/internal/mailer"
	"campus_desk_backend/internal/notification"
	"campus_desk_backend/internal/platform/cache"
	"campus_desk_backend/internal/platform/storage"
	"campus_desk_backend/internal/session"
	"campus_desk_backend/internal/user"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Directory resolves people referenced by complaints.
type Directory interface {
	FindAdminByRole(ctx context.Context, role string) (*user.Admin, error)
	FindAdminByID(ctx context.Context, id uuid.UUID) (*user.Admin, error)
	GetContact(ctx context.Context, userID uuid.UUID) (*user.Contact, error)
	UserNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
}

// Categories resolves complaint categories.
type Categories interface {
	GetCategoryByName(ctx context.Context, name string) (*category.Category, error)
	CategoryNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
}

// Notifier persists in-app notifications.
type Notifier interface {
	CreateNotification(ctx context.Context, userID uuid.UUID, notifType notification.NotificationType, message string, related notification.Related) (*notification.Notification, error)
}

// Options are the storage and cache settings of the service.
type Options struct {
	Bucket         string
	MaxUploadBytes int64
	CacheTTL       time.Duration
}

// Service implements the complaint workflows.
type Service struct {
	repo       Repository
	directory  Directory
	categories Categories
	store      storage.ObjectStore
	notifier   Notifier
	mail       mailer.Sender
	cache      cache.Store
	opts       Options
	logger     *zap.Logger
	now        func() time.Time
}

// NewService creates a complaint service.
func NewService(
	repo Repository,
	directory Directory,
	categories Categories,
	store storage.ObjectStore,
	notifier Notifier,
	mail mailer.Sender,
	cacheStore cache.Store,
	opts Options,
	logger *zap.Logger,
) *Service {
	return &Service{
		repo:       repo,
		directory:  directory,
		categories: categories,
		store:      store,
		notifier:   notifier,
		mail:       mail,
		cache:      cacheStore,
		opts:       opts,
		logger:     logger.Named("complaint_service"),
		now:        time.Now,
	}
}

// SubmitFacility runs the submission workflow for a facility complaint.
func (s *Service) SubmitFacility(ctx context.Context, sess *session.Session, form FacilityForm) (*Complaint, error) {
	if err := requireStudent(sess); err != nil {
		return nil, err
	}
	now := s.now()
	if err := form.Validate(now, s.opts.MaxUploadBytes); err != nil {
		return nil, err
	}
	c := &Complaint{
		SubmitterID:   sess.UserID,
		Title:         form.Title,
		Description:   form.Description,
		SubmittedDate: now,
		IncidentDate:  form.IncidentDate,
	}
	return s.submit(ctx, c, session.RoleFacilityAdmin, category.NameFacility, form.Uploads, func(id uuid.UUID) error {
		return s.repo.CreateFacilityDetail(ctx, &FacilityDetail{
			ComplaintID:       id,
			FacilityType:      form.FacilityType,
			FacilityIssueType: form.FacilityIssueType,
			Floor:             form.Floor,
			PreviousAttempt:   optional(form.PreviousAttempt),
		})
	})
}

// SubmitAdministrative runs the submission workflow for an administrative complaint.
func (s *Service) SubmitAdministrative(ctx context.Context, sess *session.Session, form AdministrativeForm) (*Complaint, error) {
	if err := requireStudent(sess); err != nil {
		return nil, err
	}
	if err := form.Validate(s.opts.MaxUploadBytes); err != nil {
		return nil, err
	}
	now := s.now()
	c := &Complaint{
		SubmitterID:   sess.UserID,
		Title:         form.Title,
		Description:   form.Description,
		SubmittedDate: now,
		IncidentDate:  now,
	}
	return s.submit(ctx, c, session.RoleAdministrativeAdmin, category.NameAdministrative, form.Uploads, func(id uuid.UUID) error {
		return s.repo.CreateAdministrativeDetail(ctx, &AdministrativeDetail{
			ComplaintID:      id,
			Department:       form.Department,
			StaffInvolved:    splitStaff(form.StaffInvolved),
			PreviousAttempts: optional(form.PreviousAttempts),
			DesiredOutcome:   optional(form.DesiredOutcome),
		})
	})
}

// submit performs lookup, parent insert, detail insert and the attachments, in that order.
// Only an attachment-row failure is compensated.
func (s *Service) submit(ctx context.Context, c *Complaint, adminRole, categoryName string, uploads []Upload, insertDetail func(uuid.UUID) error) (*Complaint, error) {
	admin, err := s.directory.FindAdminByRole(ctx, adminRole)
	if err != nil {
		return nil, common.NewLookupError("resolve_admin", fmt.Sprintf("No %s is available to handle this complaint.", adminRole), err)
	}
	cat, err := s.categories.GetCategoryByName(ctx, categoryName)
	if err != nil {
		return nil, common.NewLookupError("resolve_category", fmt.Sprintf("Category %s does not exist.", categoryName), err)
	}

	c.AdminID = admin.ID
	c.CategoryID = cat.ID
	c.Status = StatusPending
	if err := s.repo.CreateComplaint(ctx, c); err != nil {
		return nil, common.NewWriteError("insert_complaint", "Failed to submit complaint. Please try again.", err)
	}
	log := s.logger.With(zap.String("complaintID", c.ID.String()))

	if err := insertDetail(c.ID); err != nil {
		log.Warn("Detail insert failed; complaint row left in place", zap.Error(err))
		return nil, common.NewWriteError("insert_detail", "Failed to save complaint details. Please try again.", err)
	}

	var stored []string
	for i, u := range uploads {
		// One millisecond apart so two files with the same name never share a key.
		key := fmt.Sprintf("%d_%s", s.now().UnixMilli()+int64(i), u.File.Name)
		if err := s.store.Upload(ctx, s.opts.Bucket, key, u.File); err != nil {
			log.Warn("Attachment upload failed; complaint row left in place", zap.Error(err))
			return nil, common.NewStorageError("upload_attachment", "File upload failed. Please try again.", err)
		}
		stored = append(stored, key)

		a := &Attachment{
			ComplaintID: c.ID,
			FileURL:     s.store.PublicURL(s.opts.Bucket, key),
			ObjectKey:   key,
			FileName:    u.File.Name,
			Description: optional(u.Description),
		}
		if err := s.repo.CreateAttachment(ctx, a); err != nil {
			details := s.rollback(ctx, c.ID, stored)
			log.Error("Attachment insert failed; complaint rolled back", zap.Error(err), zap.Any("rollback", details))
			we := common.NewWriteError("insert_attachment", "Failed to save file info. Please try again.", err)
			we.Details = details
			return nil, we
		}
		c.Attachments = append(c.Attachments, *a)
	}

	s.invalidate(ctx, c)
	log.Info("Complaint submitted", zap.String("adminID", c.AdminID.String()))
	return c, nil
}

// rollback removes the uploaded objects and the complaint. Failures are collected, not returned.
func (s *Service) rollback(ctx context.Context, complaintID uuid.UUID, keys []string) map[string]string {
	details := map[string]string{"step": "insert_attachment"}
	for _, key := range keys {
		if err := s.store.Delete(ctx, s.opts.Bucket, key); err != nil {
			details["delete_object:"+key] = err.Error()
		}
	}
	if err := s.repo.DeleteComplaint(ctx, complaintID); err != nil {
		details["delete_complaint"] = err.Error()
	}
	return details
}

// ListMine lists the caller's own complaints.
func (s *Service) ListMine(ctx context.Context, sess *session.Session, q listing.Query) (listing.Result[Row], error) {
	if err := requireStudent(sess); err != nil {
		return listing.Result[Row]{}, err
	}
	rows, err := s.rows(ctx, userCacheKey(sess.UserID), ListFilter{SubmitterID: sess.UserID})
	if err != nil {
		return listing.Result[Row]{}, err
	}
	return listing.Apply(rows, q), nil
}

// Dashboard is the admin complaint list plus its counters.
type Dashboard struct {
	Stats  Stats               `json:"stats"`
	Result listing.Result[Row] `json:"result"`
	Views  []View              `json:"views"`
}

// AdminList lists complaints for an admin. Master admins see every complaint; other
// admins see the complaints assigned to them. Stats cover the whole scope, not the page.
func (s *Service) AdminList(ctx context.Context, sess *session.Session, q listing.Query) (*Dashboard, error) {
	if !sess.IsAdmin() {
		return nil, common.ErrForbidden.WithDetails("Admin access required.")
	}
	filter, key := ListFilter{AdminID: sess.UserID}, adminCacheKey(sess.UserID)
	if sess.IsMasterAdmin() {
		filter, key = ListFilter{}, allCacheKey
	}
	rows, err := s.rows(ctx, key, filter)
	if err != nil {
		return nil, err
	}
	result := listing.Apply(rows, q)
	views := make([]View, len(result.Items))
	for i, r := range result.Items {
		views[i] = RenderComplaint(r, true)
	}
	return &Dashboard{Stats: CountStatuses(rows), Result: result, Views: views}, nil
}

// Rows returns every complaint joined with category and submitter names. Used by analytics.
func (s *Service) Rows(ctx context.Context, from, to *time.Time) ([]Row, error) {
	complaints, err := s.repo.List(ctx, ListFilter{From: from, To: to})
	if err != nil {
		return nil, err
	}
	return s.join(ctx, complaints)
}

func (s *Service) rows(ctx context.Context, key string, filter ListFilter) ([]Row, error) {
	var cached []Row
	if hit, err := s.cache.GetJSON(ctx, key, &cached); err != nil {
		s.logger.Warn("Complaint cache read failed", zap.String("key", key), zap.Error(err))
	} else if hit {
		return cached, nil
	}

	complaints, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	rows, err := s.join(ctx, complaints)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetJSON(ctx, key, rows, s.opts.CacheTTL); err != nil {
		s.logger.Warn("Complaint cache write failed", zap.String("key", key), zap.Error(err))
	}
	return rows, nil
}

// join attaches category and submitter names. Unknown categories read "Uncategorized".
func (s *Service) join(ctx context.Context, complaints []Complaint) ([]Row, error) {
	categoryIDs := make([]uuid.UUID, 0, len(complaints))
	userIDs := make([]uuid.UUID, 0, len(complaints))
	for _, c := range complaints {
		categoryIDs = append(categoryIDs, c.CategoryID)
		userIDs = append(userIDs, c.SubmitterID)
	}
	categoryNames, err := s.categories.CategoryNames(ctx, uniqueIDs(categoryIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to join category names: %w", err)
	}
	userNames, err := s.directory.UserNames(ctx, uniqueIDs(userIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to join submitter names: %w", err)
	}

	rows := make([]Row, len(complaints))
	for i, c := range complaints {
		name, ok := categoryNames[c.CategoryID]
		if !ok {
			name = category.Uncategorized
		}
		rows[i] = Row{Complaint: c, CategoryName: name, SubmitterName: userNames[c.SubmitterID]}
	}
	return rows, nil
}

// DetailView is a complaint with its detail, attachments and handling admin.
type DetailView struct {
	Complaint    *Complaint         `json:"complaint"`
	CategoryName string             `json:"category_name"`
	Admin        *user.AdminSummary `json:"admin,omitempty"`
	View         View               `json:"view"`
}

// GetByID returns a complaint to its submitter or to an admin allowed to handle it.
func (s *Service) GetByID(ctx context.Context, sess *session.Session, id uuid.UUID) (*DetailView, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := canView(sess, c); err != nil {
		return nil, err
	}
	rows, err := s.join(ctx, []Complaint{*c})
	if err != nil {
		return nil, err
	}
	dv := &DetailView{Complaint: c, CategoryName: rows[0].CategoryName, View: RenderComplaint(rows[0], sess.IsAdmin())}
	if admin, err := s.directory.FindAdminByID(ctx, c.AdminID); err == nil {
		summary := user.ToAdminSummary(admin)
		dv.Admin = &summary
	}
	return dv, nil
}

// ChangeStatus applies an admin status change, then notifies the submitter in-app and by mail.
// Notification and mail failures are logged and do not undo the status change.
func (s *Service) ChangeStatus(ctx context.Context, sess *session.Session, id uuid.UUID, change StatusChange) (*Complaint, error) {
	if !sess.IsAdmin() {
		return nil, common.ErrForbidden.WithDetails("Only admins can change a complaint's status.")
	}
	if err := change.validate(); err != nil {
		return nil, err
	}
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NewLookupError("find_complaint", "Complaint not found.", err)
		}
		return nil, err
	}
	if !sess.IsMasterAdmin() && c.AdminID != sess.UserID {
		return nil, common.ErrForbidden.WithDetails("This complaint is assigned to another admin.")
	}

	if err := s.repo.UpdateStatus(ctx, c.ID, change.Status, change.Reason); err != nil {
		return nil, common.NewWriteError("update_status", "Failed to update complaint status.", err)
	}
	c.Status = change.Status
	c.AdminFeedback = &change.Reason
	s.invalidate(ctx, c)

	message := fmt.Sprintf("Your complaint \"%s\" is now %s. %s", c.Title, change.Status, change.Reason)
	if _, err := s.notifier.CreateNotification(ctx, c.SubmitterID, notification.ComplaintUpdate, message, notification.Related{ComplaintID: &c.ID}); err != nil {
		s.logger.Error("Complaint notification failed", zap.Error(err), zap.String("complaintID", c.ID.String()))
	}
	s.sendMail(ctx, c.SubmitterID, c.Title, change.Status, change.Reason)
	return c, nil
}

// CountHandled counts the complaints the admin handles: every complaint for the master
// admin, the assigned ones otherwise.
func (s *Service) CountHandled(ctx context.Context, sess *session.Session) (int64, error) {
	if !sess.IsAdmin() {
		return 0, common.ErrForbidden.WithDetails("Admin access required.")
	}
	filter := ListFilter{AdminID: sess.UserID}
	if sess.IsMasterAdmin() {
		filter = ListFilter{}
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to count handled complaints", zap.String("adminID", sess.UserID.String()), zap.Error(err))
		return 0, common.ErrInternalServer.WithDetails("Could not count complaints.")
	}
	return total, nil
}

// TimelineSubject returns the complaint a status history starts from, under the same
// visibility rules as GetByID.
func (s *Service) TimelineSubject(ctx context.Context, sess *session.Session, id uuid.UUID) (*notification.Subject, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := canView(sess, c); err != nil {
		return nil, err
	}
	return &notification.Subject{ComplaintID: c.ID, Title: c.Title, SubmittedAt: c.SubmittedDate}, nil
}

func (s *Service) sendMail(ctx context.Context, userID uuid.UUID, title, status, message string) {
	contact, err := s.directory.GetContact(ctx, userID)
	if err != nil {
		s.logger.Warn("No contact for status mail", zap.String("userID", userID.String()), zap.Error(err))
		return
	}
	err = s.mail.SendStatusUpdate(ctx, mailer.StatusUpdate{
		ToName:         contact.FirstName,
		ToEmail:        contact.Email,
		ComplaintTitle: title,
		NewStatus:      status,
		Message:        message,
	})
	if err != nil {
		s.logger.Warn("Status mail failed", zap.String("userID", userID.String()), zap.Error(err))
	}
}

func (s *Service) invalidate(ctx context.Context, c *Complaint) {
	if err := s.cache.Delete(ctx, allCacheKey, userCacheKey(c.SubmitterID), adminCacheKey(c.AdminID)); err != nil {
		s.logger.Warn("Complaint cache invalidation failed", zap.Error(err))
	}
}

const allCacheKey = "complaints:all"

func userCacheKey(id uuid.UUID) string { return "complaints:user:" + id.String() }
func adminCacheKey(id uuid.UUID) string { return "complaints:admin:" + id.String() }

func requireStudent(sess *session.Session) error {
	if sess == nil {
		return common.ErrUnauthorized
	}
	if sess.IsAdmin() {
		return common.ErrForbidden.WithDetails("Complaints are submitted by students.")
	}
	return nil
}

func canView(sess *session.Session, c *Complaint) error {
	switch {
	case sess == nil:
		return common.ErrUnauthorized
	case sess.IsMasterAdmin():
		return nil
	case sess.IsAdmin() && c.AdminID == sess.UserID:
		return nil
	case !sess.IsAdmin() && c.SubmitterID == sess.UserID:
		return nil
	}
	return common.ErrNotFound.WithDetails("Complaint not found.")
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok || id == uuid.Nil {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
