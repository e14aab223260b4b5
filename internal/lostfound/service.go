package lostfound

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

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

// Directory resolves the people lost and found items refer to.
type Directory interface {
	FindAdminByRole(ctx context.Context, role string) (*user.Admin, error)
	FindAdminByID(ctx context.Context, id uuid.UUID) (*user.Admin, error)
	FindUserByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	GetContact(ctx context.Context, userID uuid.UUID) (*user.Contact, error)
	UserNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
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

// searchLimit caps how many hits a full-text search pulls from the index before paging.
const searchLimit = 500

// Service implements the lost and found workflows.
type Service struct {
	repo      Repository
	directory Directory
	store     storage.ObjectStore
	notifier  Notifier
	mail      mailer.Sender
	cache     cache.Store
	index     SearchIndex
	opts      Options
	logger    *zap.Logger
	now       func() time.Time
}

// NewService creates a lost and found service. index may be nil.
func NewService(
	repo Repository,
	directory Directory,
	store storage.ObjectStore,
	notifier Notifier,
	mail mailer.Sender,
	cacheStore cache.Store,
	index SearchIndex,
	opts Options,
	logger *zap.Logger,
) *Service {
	return &Service{
		repo:      repo,
		directory: directory,
		store:     store,
		notifier:  notifier,
		mail:      mail,
		cache:     cacheStore,
		index:     index,
		opts:      opts,
		logger:    logger.Named("lost_found_service"),
		now:       time.Now,
	}
}

// ReportLost runs the submission workflow for a student's lost item report.
func (s *Service) ReportLost(ctx context.Context, sess *session.Session, form ItemForm) (*LostItem, error) {
	if sess == nil {
		return nil, common.ErrUnauthorized
	}
	if sess.IsAdmin() {
		return nil, common.ErrForbidden.WithDetails("Lost items are reported by students.")
	}
	now := s.now()
	if err := form.Validate(now, s.opts.MaxUploadBytes, "lost"); err != nil {
		return nil, err
	}

	admin, err := s.directory.FindAdminByRole(ctx, session.RoleLostAndFound)
	if err != nil {
		return nil, common.NewLookupError("resolve_admin", "Unable to assign admin. Please contact support.", err)
	}

	item := &LostItem{
		ReporterID:   sess.UserID,
		AdminID:      admin.ID,
		ItemDetails:  form.details(),
		LocationLost: form.Location,
		DateLost:     form.Date,
		TimeLost:     optional(form.Time),
		Status:       StatusLost,
		ReportedDate: now,
	}
	if err := s.repo.CreateLostItem(ctx, item); err != nil {
		return nil, common.NewWriteError("insert_lost_item", "Failed to submit report. Please try again.", err)
	}

	if form.Image != nil {
		key := fmt.Sprintf("lost_%s_%d%s", sess.UserID, now.UnixMilli(), form.Image.Ext())
		a := &ItemAttachment{LostItemID: &item.ID}
		if err := s.attach(ctx, key, form.Image, a, func(ctx context.Context) error { return s.repo.DeleteLostItem(ctx, item.ID) }); err != nil {
			return nil, err
		}
		item.Attachments = append(item.Attachments, *a)
	}

	s.invalidate(ctx, item.ReporterID)
	s.reindex(ctx, LostEntry(*item, sess.DisplayName()))
	s.logger.Info("Lost item reported", zap.String("itemID", item.ID.String()), zap.String("adminID", admin.ID.String()))
	return item, nil
}

// ReportFound runs the submission workflow for an item handed in at the desk.
func (s *Service) ReportFound(ctx context.Context, sess *session.Session, form ItemForm) (*FoundItem, error) {
	if err := requireDesk(sess); err != nil {
		return nil, err
	}
	now := s.now()
	if err := form.Validate(now, s.opts.MaxUploadBytes, "found"); err != nil {
		return nil, err
	}

	item := &FoundItem{
		AdminID:       sess.UserID,
		ItemDetails:   form.details(),
		LocationFound: form.Location,
		DateFound:     form.Date,
		TimeFound:     optional(form.Time),
		Status:        StatusUnclaimed,
	}
	if err := s.repo.CreateFoundItem(ctx, item); err != nil {
		return nil, common.NewWriteError("insert_found_item", "Failed to record found item. Please try again.", err)
	}

	if form.Image != nil {
		key := fmt.Sprintf("found_%s_%d%s", sess.UserID, now.UnixMilli(), form.Image.Ext())
		a := &ItemAttachment{FoundItemID: &item.ID}
		if err := s.attach(ctx, key, form.Image, a, func(ctx context.Context) error { return s.repo.DeleteFoundItem(ctx, item.ID) }); err != nil {
			return nil, err
		}
		item.Attachments = append(item.Attachments, *a)
	}

	s.invalidate(ctx, uuid.Nil)
	s.reindex(ctx, FoundEntry(*item))
	s.logger.Info("Found item recorded", zap.String("itemID", item.ID.String()))
	return item, nil
}

// attach uploads file and records it. If the row insert fails, the object and the parent
// item are removed with undo.
func (s *Service) attach(ctx context.Context, key string, file *storage.File, a *ItemAttachment, undo func(context.Context) error) error {
	if err := s.store.Upload(ctx, s.opts.Bucket, key, file); err != nil {
		s.logger.Warn("Image upload failed; item row left in place", zap.String("key", key), zap.Error(err))
		return common.NewStorageError("upload_image", "Image upload failed. Please try again.", err)
	}
	a.FileURL = s.store.PublicURL(s.opts.Bucket, key)
	a.ObjectKey = key
	a.FileName = file.Name
	a.FileType = fileTypeImage
	if err := s.repo.CreateAttachment(ctx, a); err != nil {
		details := map[string]string{"step": "insert_attachment"}
		if derr := s.store.Delete(ctx, s.opts.Bucket, key); derr != nil {
			details["delete_object:"+key] = derr.Error()
		}
		if derr := undo(ctx); derr != nil {
			details["delete_item"] = derr.Error()
		}
		s.logger.Error("Attachment insert failed; item rolled back", zap.Error(err), zap.Any("rollback", details))
		we := common.NewWriteError("insert_attachment", "Failed to save image info. Please try again.", err)
		we.Details = details
		return we
	}
	return nil
}

// Board is one page of the merged lost and found list.
type Board struct {
	Result listing.Result[Entry] `json:"result"`
	Views  []View                `json:"views"`
}

func newBoard(entries []Entry, q listing.Query) *Board {
	result := listing.Apply(entries, q)
	return &Board{Result: result, Views: RenderEntries(result.Items)}
}

// ListMine lists the caller's own lost item reports.
func (s *Service) ListMine(ctx context.Context, sess *session.Session, q listing.Query) (*Board, error) {
	if sess == nil {
		return nil, common.ErrUnauthorized
	}
	entries, err := s.lostEntries(ctx, reporterCacheKey(sess.UserID), ListFilter{ReporterID: sess.UserID})
	if err != nil {
		return nil, err
	}
	return newBoard(entries, q), nil
}

// List merges lost and found items and runs the query over them. Deleted reports are
// hidden unless the query asks for them by status.
func (s *Service) List(ctx context.Context, sess *session.Session, q listing.Query) (*Board, error) {
	if err := requireDesk(sess); err != nil {
		return nil, err
	}
	entries, err := s.merged(ctx, q)
	if err != nil {
		return nil, err
	}
	return newBoard(entries, q), nil
}

// Search resolves q.Text through the search index, then filters and pages the hits like
// List. Without an index, or when the index fails, it falls back to List.
func (s *Service) Search(ctx context.Context, sess *session.Session, q listing.Query) (*Board, error) {
	if err := requireDesk(sess); err != nil {
		return nil, err
	}
	entries, err := s.merged(ctx, q)
	if err != nil {
		return nil, err
	}
	if s.index == nil || strings.TrimSpace(q.Text) == "" {
		return newBoard(entries, q), nil
	}

	keys, err := s.index.Search(ctx, q.Text, searchLimit)
	if err != nil {
		s.logger.Warn("Search index query failed; falling back to in-memory filter", zap.Error(err))
		return newBoard(entries, q), nil
	}
	hits := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		hits[k] = struct{}{}
	}
	matched := make([]Entry, 0, len(keys))
	for _, e := range entries {
		if _, ok := hits[e.ListingKey()]; ok {
			matched = append(matched, e)
		}
	}
	q.Text = ""
	return newBoard(matched, q), nil
}

func (s *Service) merged(ctx context.Context, q listing.Query) ([]Entry, error) {
	lost, err := s.lostEntries(ctx, allLostCacheKey, ListFilter{})
	if err != nil {
		return nil, err
	}
	found, err := s.foundEntries(ctx)
	if err != nil {
		return nil, err
	}

	showDeleted := false
	for _, st := range q.Statuses {
		if strings.EqualFold(st, StatusDeleted) {
			showDeleted = true
		}
	}
	entries := make([]Entry, 0, len(lost)+len(found))
	for _, e := range lost {
		if showDeleted || e.Lost.Status != StatusDeleted {
			entries = append(entries, e)
		}
	}
	return append(entries, found...), nil
}

func (s *Service) lostEntries(ctx context.Context, key string, filter ListFilter) ([]Entry, error) {
	var cached []Entry
	if hit, err := s.cache.GetJSON(ctx, key, &cached); err != nil {
		s.logger.Warn("Lost item cache read failed", zap.String("key", key), zap.Error(err))
	} else if hit {
		return cached, nil
	}

	items, err := s.repo.ListLostItems(ctx, filter)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ReporterID)
	}
	names, err := s.directory.UserNames(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to join reporter names: %w", err)
	}
	entries := make([]Entry, len(items))
	for i, it := range items {
		entries[i] = LostEntry(it, names[it.ReporterID])
	}
	if err := s.cache.SetJSON(ctx, key, entries, s.opts.CacheTTL); err != nil {
		s.logger.Warn("Lost item cache write failed", zap.String("key", key), zap.Error(err))
	}
	return entries, nil
}

func (s *Service) foundEntries(ctx context.Context) ([]Entry, error) {
	var cached []Entry
	if hit, err := s.cache.GetJSON(ctx, foundCacheKey, &cached); err != nil {
		s.logger.Warn("Found item cache read failed", zap.Error(err))
	} else if hit {
		return cached, nil
	}

	items, err := s.repo.ListFoundItems(ctx, ListFilter{})
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, len(items))
	for i, it := range items {
		entries[i] = FoundEntry(it)
	}
	if err := s.cache.SetJSON(ctx, foundCacheKey, entries, s.opts.CacheTTL); err != nil {
		s.logger.Warn("Found item cache write failed", zap.Error(err))
	}
	return entries, nil
}

// PersonSummary is the avatar block for a reporter.
type PersonSummary struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Email    string    `json:"email,omitempty"`
	Initials string    `json:"initials"`
}

// MatchedLostItem is the lost report a claimed found item was matched to.
type MatchedLostItem struct {
	ID           uuid.UUID     `json:"id"`
	ItemName     string        `json:"item_name"`
	ItemType     string        `json:"item_type"`
	LocationLost string        `json:"location_lost"`
	ReportedDate time.Time     `json:"reported_date"`
	Reporter     PersonSummary `json:"reporter"`
}

// FoundItemView is the found-item detail page.
type FoundItemView struct {
	Item        *FoundItem         `json:"item"`
	Admin       *user.AdminSummary `json:"admin,omitempty"`
	AdminLabel  string             `json:"admin_label"`
	MatchedLost *MatchedLostItem   `json:"matched_lost,omitempty"`
	View        View               `json:"view"`
}

// FoundItemDetails loads a found item with its recording admin and, once claimed, the
// matched lost report and its reporter. Missing joins degrade to placeholders.
func (s *Service) FoundItemDetails(ctx context.Context, sess *session.Session, id uuid.UUID) (*FoundItemView, error) {
	if err := requireDesk(sess); err != nil {
		return nil, err
	}
	item, err := s.repo.FindFoundItem(ctx, id)
	if err != nil {
		return nil, err
	}
	fv := &FoundItemView{Item: item, AdminLabel: "Admin Info Unavailable", View: RenderEntry(FoundEntry(*item))}

	if admin, err := s.directory.FindAdminByID(ctx, item.AdminID); err != nil {
		s.logger.Warn("Found item admin lookup failed", zap.String("adminID", item.AdminID.String()), zap.Error(err))
	} else {
		summary := user.ToAdminSummary(admin)
		fv.Admin = &summary
		name := summary.Name
		if name == "" {
			name = "Unknown Admin"
		}
		fv.AdminLabel = fmt.Sprintf("%s (%s)", name, summary.Role)
	}

	if item.Status == StatusClaimed && item.MatchedLostItemID != nil {
		lost, err := s.repo.FindLostItem(ctx, *item.MatchedLostItemID)
		if err != nil {
			s.logger.Warn("Matched lost item lookup failed", zap.String("lostItemID", item.MatchedLostItemID.String()), zap.Error(err))
			return fv, nil
		}
		fv.MatchedLost = &MatchedLostItem{
			ID:           lost.ID,
			ItemName:     lost.ItemName,
			ItemType:     lost.ItemType,
			LocationLost: lost.LocationLost,
			ReportedDate: lost.ReportedDate,
			Reporter:     s.reporterSummary(ctx, lost.ReporterID),
		}
	}
	return fv, nil
}

func (s *Service) reporterSummary(ctx context.Context, id uuid.UUID) PersonSummary {
	p := PersonSummary{ID: id, Name: "Unknown User", Initials: "U"}
	u, err := s.directory.FindUserByID(ctx, id)
	if err != nil {
		return p
	}
	if name := strings.TrimSpace(u.FirstName + " " + u.LastName); name != "" {
		p.Name = name
	}
	p.Email = u.Email
	if initials := user.Initials(u.FirstName, u.LastName); initials != "" {
		p.Initials = initials
	}
	return p
}

// TransitionResult is the outcome of a status change. Warnings list the side effects
// that failed after the primary write succeeded.
type TransitionResult struct {
	Lost                *LostItem                  `json:"lost,omitempty"`
	Found               *FoundItem                 `json:"found,omitempty"`
	ReleasedFoundItemID *uuid.UUID                 `json:"released_found_item_id,omitempty"`
	Notification        *notification.Notification `json:"notification,omitempty"`
	Warnings            []string                   `json:"warnings,omitempty"`
}

func (r *TransitionResult) warn(format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// ChangeStatus applies an admin status change to a lost or found item. Linking a lost
// item to a found item writes the lost item first, then claims the found item with a
// conditional update; a failed claim is reported as a warning and the first write stays.
// A lost item leaving Found, or moving to another found item, releases its old match in
// the same transaction as the first write.
func (s *Service) ChangeStatus(ctx context.Context, sess *session.Session, id uuid.UUID, change StatusChange) (*TransitionResult, error) {
	if err := requireDesk(sess); err != nil {
		return nil, err
	}
	if err := change.validate(); err != nil {
		return nil, err
	}
	if change.Source == listing.SourceFound {
		return s.changeFoundStatus(ctx, id, change)
	}

	lost, err := s.repo.FindLostItem(ctx, id)
	if err != nil {
		return nil, lookupError("find_lost_item", "Lost item not found.", err)
	}

	previous := lost.MatchedFoundItemID
	sameMatch := change.linking() && previous != nil && *previous == *change.FoundItemID
	release := previous != nil && !sameMatch && (change.Status != StatusFound || change.linking())

	var found *FoundItem
	if change.linking() && !sameMatch {
		found, err = s.repo.FindFoundItem(ctx, *change.FoundItemID)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return nil, common.NewLinkError("guard_found_item", "The selected found item does not exist.", err)
			}
			return nil, err
		}
		if found.Status != StatusUnclaimed {
			return nil, common.NewLinkError("guard_found_item",
				fmt.Sprintf("The selected found item is already %s.", found.Status), nil)
		}
	}

	if release {
		err = s.repo.ReleaseAndUpdateLostItem(ctx, lost.ID, *previous, change.Status, change.Reason, change.FoundItemID)
	} else {
		err = s.repo.UpdateLostItem(ctx, lost.ID, change.Status, change.Reason, change.FoundItemID)
	}
	if err != nil {
		return nil, common.NewWriteError("update_lost_item", "Failed to update status.", err)
	}
	lost.Status = change.Status
	lost.AdminFeedback = &change.Reason
	if release {
		lost.MatchedFoundItemID = nil
	}
	if change.linking() {
		lost.MatchedFoundItemID = change.FoundItemID
	}
	result := &TransitionResult{Lost: lost}
	if release {
		result.ReleasedFoundItemID = previous
	}

	if found != nil {
		if err := s.repo.ClaimFoundItem(ctx, found.ID, lost.ID); err != nil {
			s.logger.Error("Found item claim failed after lost item update",
				zap.String("lostItemID", lost.ID.String()), zap.String("foundItemID", found.ID.String()), zap.Error(err))
			result.warn("Lost item updated, but found item %s could not be marked Claimed: %v", found.ID, err)
		} else {
			found.Status = StatusClaimed
			found.MatchedLostItemID = &lost.ID
			result.Found = found
		}
	}

	s.invalidate(ctx, lost.ReporterID)
	s.reindex(ctx, LostEntry(*lost, ""))
	if result.Found != nil {
		s.reindex(ctx, FoundEntry(*result.Found))
	}
	if release {
		s.reindexFound(ctx, *previous)
	}
	s.notify(ctx, result, lost, notification.LostItemUpdate,
		fmt.Sprintf("Status updated to %s. %s", change.Status, change.Reason), change.Status, change.Reason)
	return result, nil
}

// changeFoundStatus updates a found item. Moving a claimed item back to Unclaimed
// releases its lost item, which returns to Lost.
func (s *Service) changeFoundStatus(ctx context.Context, id uuid.UUID, change StatusChange) (*TransitionResult, error) {
	found, err := s.repo.FindFoundItem(ctx, id)
	if err != nil {
		return nil, lookupError("find_found_item", "Found item not found.", err)
	}
	matched := found.MatchedLostItemID
	release := matched != nil && change.Status == StatusUnclaimed
	if release {
		err = s.repo.ReleaseFoundItem(ctx, found.ID, *matched, change.Reason)
	} else {
		err = s.repo.UpdateFoundItem(ctx, found.ID, change.Status, change.Reason)
	}
	if err != nil {
		return nil, common.NewWriteError("update_found_item", "Failed to update status.", err)
	}
	found.Status = change.Status
	found.AdminFeedback = &change.Reason
	if release {
		found.MatchedLostItemID = nil
	}
	result := &TransitionResult{Found: found}

	s.invalidate(ctx, uuid.Nil)
	s.reindex(ctx, FoundEntry(*found))
	if matched == nil {
		return result, nil
	}

	lost, err := s.repo.FindLostItem(ctx, *matched)
	if err != nil {
		result.warn("Matched lost item %s could not be loaded: %v", *matched, err)
		return result, nil
	}
	result.Lost = lost
	status := change.Status
	if release {
		// The reporter hears about their own item, which is open again.
		status = lost.Status
		s.invalidate(ctx, lost.ReporterID)
		s.reindex(ctx, LostEntry(*lost, ""))
	}
	s.notify(ctx, result, lost, notification.LostItemUpdate,
		fmt.Sprintf("Status updated to %s. %s", status, change.Reason), status, change.Reason)
	return result, nil
}

// DeleteLostItem soft-deletes a lost report and tells the reporter why. A matched found
// item is handed back to the desk as Unclaimed.
func (s *Service) DeleteLostItem(ctx context.Context, sess *session.Session, id uuid.UUID, reason string) (*TransitionResult, error) {
	if err := requireDesk(sess); err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, common.NewValidationError("A reason is required.", map[string]string{"reason": "A reason is required."})
	}
	lost, err := s.repo.FindLostItem(ctx, id)
	if err != nil {
		return nil, lookupError("find_lost_item", "Lost item not found.", err)
	}
	previous := lost.MatchedFoundItemID
	if previous != nil {
		err = s.repo.ReleaseAndUpdateLostItem(ctx, lost.ID, *previous, StatusDeleted, reason, nil)
	} else {
		err = s.repo.UpdateLostItem(ctx, lost.ID, StatusDeleted, reason, nil)
	}
	if err != nil {
		return nil, common.NewWriteError("delete_lost_item", "Failed to delete report.", err)
	}
	lost.Status = StatusDeleted
	lost.AdminFeedback = &reason
	lost.MatchedFoundItemID = nil
	result := &TransitionResult{Lost: lost, ReleasedFoundItemID: previous}

	s.invalidate(ctx, lost.ReporterID)
	s.reindex(ctx, LostEntry(*lost, ""))
	if previous != nil {
		s.reindexFound(ctx, *previous)
	}
	s.notify(ctx, result, lost, notification.Deleted,
		fmt.Sprintf("Your report was deleted. Reason: %s", reason), StatusDeleted, reason)
	return result, nil
}

// notify writes the reporter's notification and sends the mail. Neither undoes the
// status change: a failed notification becomes a warning, a failed mail is logged.
func (s *Service) notify(ctx context.Context, result *TransitionResult, lost *LostItem, notifType notification.NotificationType, message, status, reason string) {
	n, err := s.notifier.CreateNotification(ctx, lost.ReporterID, notifType, message, notification.Related{LostItemID: &lost.ID})
	if err != nil {
		s.logger.Error("Lost item notification failed", zap.String("lostItemID", lost.ID.String()), zap.Error(err))
		result.warn("Notification could not be saved: %v", err)
	} else {
		result.Notification = n
	}

	contact, err := s.directory.GetContact(ctx, lost.ReporterID)
	if err != nil {
		s.logger.Warn("No contact for status mail", zap.String("userID", lost.ReporterID.String()), zap.Error(err))
		return
	}
	err = s.mail.SendStatusUpdate(ctx, mailer.StatusUpdate{
		ToName:         contact.FirstName,
		ToEmail:        contact.Email,
		ComplaintTitle: "Lost Item: " + lost.ItemName,
		NewStatus:      status,
		Message:        reason,
	})
	if err != nil {
		s.logger.Warn("Status mail failed", zap.String("userID", lost.ReporterID.String()), zap.Error(err))
	}
}

// SyncReport is the outcome of a full reindex.
type SyncReport struct {
	Batches int `json:"batches"`
	Indexed int `json:"indexed"`
	Failed  int `json:"failed"`
}

// ErrSearchDisabled is returned by SyncIndex when no search index is configured.
var ErrSearchDisabled = errors.New("search index is not configured")

// SyncIndex pushes every lost and found item into the search index in batches.
func (s *Service) SyncIndex(ctx context.Context, batchSize int, refresh string) (SyncReport, error) {
	var report SyncReport
	if s.index == nil {
		return report, ErrSearchDisabled
	}
	if batchSize <= 0 {
		batchSize = 100
	}

	push := func(entries []Entry) {
		br, err := s.index.Sync(ctx, entries, refresh)
		report.Batches++
		report.Indexed += br.Indexed
		report.Failed += br.Failed
		if err != nil {
			s.logger.Error("Search index batch failed", zap.Int("batch", report.Batches), zap.Error(err))
			report.Failed += len(entries) - br.Indexed - br.Failed
		}
	}

	for offset := 0; ; offset += batchSize {
		items, err := s.repo.ListLostItems(ctx, ListFilter{Offset: offset, Limit: batchSize})
		if err != nil {
			return report, fmt.Errorf("failed to fetch lost items at offset %d: %w", offset, err)
		}
		if len(items) == 0 {
			break
		}
		entries := make([]Entry, len(items))
		for i, it := range items {
			entries[i] = LostEntry(it, "")
		}
		push(entries)
	}
	for offset := 0; ; offset += batchSize {
		items, err := s.repo.ListFoundItems(ctx, ListFilter{Offset: offset, Limit: batchSize})
		if err != nil {
			return report, fmt.Errorf("failed to fetch found items at offset %d: %w", offset, err)
		}
		if len(items) == 0 {
			break
		}
		entries := make([]Entry, len(items))
		for i, it := range items {
			entries[i] = FoundEntry(it)
		}
		push(entries)
	}

	s.logger.Info("Search index sync completed", zap.Int("batches", report.Batches), zap.Int("indexed", report.Indexed), zap.Int("failed", report.Failed))
	return report, nil
}

func (s *Service) reindex(ctx context.Context, e Entry) {
	if s.index == nil {
		return
	}
	if err := s.index.Put(ctx, e); err != nil {
		s.logger.Warn("Search index update failed", zap.String("key", e.ListingKey()), zap.Error(err))
	}
}

// reindexFound refreshes a found item that changed as a side effect.
func (s *Service) reindexFound(ctx context.Context, id uuid.UUID) {
	if s.index == nil {
		return
	}
	found, err := s.repo.FindFoundItem(ctx, id)
	if err != nil {
		s.logger.Warn("Released found item could not be reloaded for the search index", zap.String("foundItemID", id.String()), zap.Error(err))
		return
	}
	s.reindex(ctx, FoundEntry(*found))
}

// invalidate drops the collection snapshots. reporterID may be uuid.Nil.
func (s *Service) invalidate(ctx context.Context, reporterID uuid.UUID) {
	keys := []string{allLostCacheKey, foundCacheKey}
	if reporterID != uuid.Nil {
		keys = append(keys, reporterCacheKey(reporterID))
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.logger.Warn("Lost and found cache invalidation failed", zap.Error(err))
	}
}

const (
	allLostCacheKey = "lostfound:lost:all"
	foundCacheKey   = "lostfound:found:all"
)

func reporterCacheKey(id uuid.UUID) string { return "lostfound:lost:user:" + id.String() }

func requireDesk(sess *session.Session) error {
	if sess == nil {
		return common.ErrUnauthorized
	}
	if !sess.HasRole(session.RoleLostAndFound) {
		return common.ErrForbidden.WithDetails("Lost and found access required.")
	}
	return nil
}

func lookupError(op, message string, err error) error {
	if errors.Is(err, common.ErrNotFound) {
		return common.NewLookupError(op, message, err)
	}
	return err
}
