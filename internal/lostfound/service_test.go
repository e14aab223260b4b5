package lostfound

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"campus_desk_backend/internal/common"
	"campus_desk_backend/internal/listing"
	"campus_desk_backend/internal/mailer"
	"campus_desk_backend/internal/notification"
	"campus_desk_backend/internal/platform/cache"
	"campus_desk_backend/internal/platform/elasticsearch"
	"campus_desk_backend/internal/platform/storage"
	"campus_desk_backend/internal/session"
	"campus_desk_backend/internal/user"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockRepository is a mock type for lostfound.Repository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateLostItem(ctx context.Context, item *LostItem) error {
	args := m.Called(ctx, item)
	if args.Error(0) == nil && item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *MockRepository) CreateFoundItem(ctx context.Context, item *FoundItem) error {
	args := m.Called(ctx, item)
	if args.Error(0) == nil && item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *MockRepository) CreateAttachment(ctx context.Context, a *ItemAttachment) error {
	return m.Called(ctx, a).Error(0)
}

func (m *MockRepository) DeleteLostItem(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRepository) DeleteFoundItem(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRepository) FindLostItem(ctx context.Context, id uuid.UUID) (*LostItem, error) {
	args := m.Called(ctx, id)
	item, _ := args.Get(0).(*LostItem)
	return item, args.Error(1)
}

func (m *MockRepository) FindFoundItem(ctx context.Context, id uuid.UUID) (*FoundItem, error) {
	args := m.Called(ctx, id)
	item, _ := args.Get(0).(*FoundItem)
	return item, args.Error(1)
}

func (m *MockRepository) ListLostItems(ctx context.Context, filter ListFilter) ([]LostItem, error) {
	args := m.Called(ctx, filter)
	items, _ := args.Get(0).([]LostItem)
	return items, args.Error(1)
}

func (m *MockRepository) ListFoundItems(ctx context.Context, filter ListFilter) ([]FoundItem, error) {
	args := m.Called(ctx, filter)
	items, _ := args.Get(0).([]FoundItem)
	return items, args.Error(1)
}

func (m *MockRepository) UpdateLostItem(ctx context.Context, id uuid.UUID, status, feedback string, matchedFoundID *uuid.UUID) error {
	return m.Called(ctx, id, status, feedback, matchedFoundID).Error(0)
}

func (m *MockRepository) UpdateFoundItem(ctx context.Context, id uuid.UUID, status, feedback string) error {
	return m.Called(ctx, id, status, feedback).Error(0)
}

func (m *MockRepository) ClaimFoundItem(ctx context.Context, foundID, lostID uuid.UUID) error {
	return m.Called(ctx, foundID, lostID).Error(0)
}

func (m *MockRepository) ReleaseAndUpdateLostItem(ctx context.Context, id, releasedFoundID uuid.UUID, status, feedback string, matchedFoundID *uuid.UUID) error {
	return m.Called(ctx, id, releasedFoundID, status, feedback, matchedFoundID).Error(0)
}

func (m *MockRepository) ReleaseFoundItem(ctx context.Context, foundID, lostID uuid.UUID, feedback string) error {
	return m.Called(ctx, foundID, lostID, feedback).Error(0)
}

type MockDirectory struct {
	mock.Mock
}

func (m *MockDirectory) FindAdminByRole(ctx context.Context, role string) (*user.Admin, error) {
	args := m.Called(ctx, role)
	a, _ := args.Get(0).(*user.Admin)
	return a, args.Error(1)
}

func (m *MockDirectory) FindAdminByID(ctx context.Context, id uuid.UUID) (*user.Admin, error) {
	args := m.Called(ctx, id)
	a, _ := args.Get(0).(*user.Admin)
	return a, args.Error(1)
}

func (m *MockDirectory) FindUserByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*user.User)
	return u, args.Error(1)
}

func (m *MockDirectory) GetContact(ctx context.Context, userID uuid.UUID) (*user.Contact, error) {
	args := m.Called(ctx, userID)
	c, _ := args.Get(0).(*user.Contact)
	return c, args.Error(1)
}

func (m *MockDirectory) UserNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	args := m.Called(ctx, ids)
	names, _ := args.Get(0).(map[uuid.UUID]string)
	return names, args.Error(1)
}

type MockStore struct {
	mock.Mock
}

func (m *MockStore) Upload(ctx context.Context, bucket, key string, f *storage.File) error {
	return m.Called(ctx, bucket, key, f).Error(0)
}

func (m *MockStore) PublicURL(bucket, key string) string {
	return "https://files.test/" + bucket + "/" + key
}

func (m *MockStore) Delete(ctx context.Context, bucket, key string) error {
	return m.Called(ctx, bucket, key).Error(0)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) CreateNotification(ctx context.Context, userID uuid.UUID, notifType notification.NotificationType, message string, related notification.Related) (*notification.Notification, error) {
	args := m.Called(ctx, userID, notifType, message, related)
	n, _ := args.Get(0).(*notification.Notification)
	return n, args.Error(1)
}

type MockSender struct {
	mock.Mock
}

func (m *MockSender) SendStatusUpdate(ctx context.Context, update mailer.StatusUpdate) error {
	return m.Called(ctx, update).Error(0)
}

type MockSearchIndex struct {
	mock.Mock
}

func (m *MockSearchIndex) Put(ctx context.Context, e Entry) error {
	return m.Called(ctx, e).Error(0)
}

func (m *MockSearchIndex) Search(ctx context.Context, text string, size int) ([]string, error) {
	args := m.Called(ctx, text, size)
	keys, _ := args.Get(0).([]string)
	return keys, args.Error(1)
}

func (m *MockSearchIndex) Sync(ctx context.Context, entries []Entry, refresh string) (elasticsearch.BulkReport, error) {
	args := m.Called(ctx, entries, refresh)
	return args.Get(0).(elasticsearch.BulkReport), args.Error(1)
}

type lostFoundTestSuite struct {
	svc       *Service
	repo      *MockRepository
	directory *MockDirectory
	store     *MockStore
	notifier  *MockNotifier
	mail      *MockSender
	index     *MockSearchIndex
	now       time.Time
}

const testBucket = "lost_found_images"

// setupLostFoundTestSuite builds the service. withIndex wires a mock search index.
func setupLostFoundTestSuite(t *testing.T, withIndex bool) *lostFoundTestSuite {
	t.Helper()
	s := &lostFoundTestSuite{
		repo:      new(MockRepository),
		directory: new(MockDirectory),
		store:     new(MockStore),
		notifier:  new(MockNotifier),
		mail:      new(MockSender),
		now:       time.Date(2024, 9, 2, 10, 30, 0, 0, time.UTC),
	}
	var index SearchIndex
	if withIndex {
		s.index = new(MockSearchIndex)
		index = s.index
	}
	s.svc = NewService(s.repo, s.directory, s.store, s.notifier, s.mail, cache.NopStore{}, index,
		Options{Bucket: testBucket, MaxUploadBytes: 1 << 20, CacheTTL: time.Minute}, zap.NewNop())
	s.svc.now = func() time.Time { return s.now }
	return s
}

func (s *lostFoundTestSuite) assertExpectations(t *testing.T) {
	s.repo.AssertExpectations(t)
	s.directory.AssertExpectations(t)
	s.store.AssertExpectations(t)
	s.notifier.AssertExpectations(t)
	s.mail.AssertExpectations(t)
	if s.index != nil {
		s.index.AssertExpectations(t)
	}
}

func studentSession() *session.Session {
	return &session.Session{UserID: uuid.New(), Kind: session.KindStudent, FirstName: "Ada", LastName: "Lovelace"}
}

func deskSession() *session.Session {
	return &session.Session{UserID: uuid.New(), Kind: session.KindAdmin, AdminRole: session.RoleLostAndFound}
}

func validItemForm(now time.Time) ItemForm {
	return ItemForm{ItemName: "Blue backpack", ItemType: "Bags", Location: "Library", Date: now.AddDate(0, 0, -1)}
}

func pngImage() *storage.File {
	return &storage.File{Name: "photo.PNG", ContentType: "image/png", Size: 100, Content: strings.NewReader("png")}
}

func lostItem(reporter uuid.UUID, status string) *LostItem {
	return &LostItem{
		BaseModel:    common.BaseModel{ID: uuid.New()},
		ReporterID:   reporter,
		ItemDetails:  ItemDetails{ItemName: "Laptop", ItemType: "Electronics"},
		LocationLost: "Lab 3",
		Status:       status,
	}
}

func foundItem(status string) *FoundItem {
	return &FoundItem{
		BaseModel:     common.BaseModel{ID: uuid.New()},
		ItemDetails:   ItemDetails{ItemName: "Laptop", ItemType: "Electronics"},
		LocationFound: "Lab 3",
		Status:        status,
	}
}

func (s *lostFoundTestSuite) expectMail(reporter uuid.UUID, title, status, reason string) {
	s.directory.On("GetContact", mock.Anything, reporter).Return(&user.Contact{Email: "ada@campus.edu", FirstName: "Ada"}, nil).Once()
	s.mail.On("SendStatusUpdate", mock.Anything, mailer.StatusUpdate{
		ToName: "Ada", ToEmail: "ada@campus.edu", ComplaintTitle: title, NewStatus: status, Message: reason,
	}).Return(nil).Once()
}

func TestReportLost_SuccessWithImage(t *testing.T) {
	s := setupLostFoundTestSuite(t, false)
	sess := studentSession()
	admin := &user.Admin{BaseModel: common.BaseModel{ID: uuid.New()}, AdminRole: session.RoleLostAndFound}
	key := fmt.Sprintf("lost_%s_%d.png", sess.UserID, s.now.UnixMilli())

	s.directory.On("FindAdminByRole", mock.Anything, session.RoleLostAndFound).Return(admin, nil).Once()
	s.repo.On("CreateLostItem", mock.Anything, mock.MatchedBy(func(it *LostItem) bool {
		return it.ReporterID == sess.UserID && it.AdminID == admin.ID && it.Status == StatusLost && it.ReportedDate.Equal(s.now)
	})).Return(nil).Once()
	s.store.On("Upload", mock.Anything, testBucket, key, mock.Anything).Return(nil).Once()
	s.repo.On("CreateAttachment", mock.Anything, mock.MatchedBy(func(a *ItemAttachment) bool {
		return a.LostItemID != nil && a.FoundItemID == nil && a.FileType == "image" && a.ObjectKey == key
	})).Return(nil).Once()

	form := validItemForm(s.now)
	form.Image = pngImage()
	item, err := s.svc.ReportLost(context.Background(), sess, form)
	require.NoError(t, err)
	require.Len(t, item.Attachments, 1)
	assert.Equal(t, "https://files.test/"+testBucket+"/"+key, item.Attachments[0].FileURL)
	s.assertExpectations(t)
}

func TestReportLost_NoDeskAdminIsLookupError(t *testing.T) {
	s := setupLostFoundTestSuite(t, false)
	s.directory.On("FindAdminByRole", mock.Anything, session.RoleLostAndFound).Return(nil, common.ErrNotFound).Once()

	_, err := s.svc.ReportLost(context.Background(), studentSession(), validItemForm(s.now))
	assert.ErrorIs(t, err, common.ErrLookup)
	s.repo.AssertNotCalled(t, "CreateLostItem", mock.Anything, mock.Anything)
	s.assertExpectations(t)
}

func TestReportLost_AttachmentFailureRollsBack(t *testing.T) {
	s := setupLostFoundTestSuite(t, false)
	sess := studentSession()
	var itemID uuid.UUID
	s.directory.On("FindAdminByRole", mock.Anything, session.RoleLostAndFound).
		Return(&user.Admin{BaseModel: common.BaseModel{ID: uuid.New()}}, nil).Once()
	s.repo.On("CreateLostItem", mock.Anything, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		it := args.Get(1).(*LostItem)
		it.ID = uuid.New()
		itemID = it.ID
	}).Once()
	s.store.On("Upload", mock.Anything, testBucket, mock.Anything, mock.Anything).Return(nil).Once()
	s.repo.On("CreateAttachment", mock.Anything, mock.Anything).Return(errors.New("insert failed")).Once()
	s.store.On("Delete", mock.Anything, testBucket, mock.MatchedBy(func(k string) bool { return strings.HasPrefix(k, "lost_") })).Return(nil).Once()
	s.repo.On("DeleteLostItem", mock.Anything, mock.MatchedBy(func(id uuid.UUID) bool { return id == itemID })).Return(nil).Once()

	form := validItemForm(s.now)
	form.Image = pngImage()
	item, err := s.svc.ReportLost(context.Background(), sess, form)
	assert.Nil(t, item)
	require.ErrorIs(t, err, common.ErrWrite)
	we, _ := common.IsWorkflowError(err)
	assert.Equal(t, "insert_attachment", we.Op)
	s.assertExpectations(t)
}

func TestReportLost_UploadFailureKeepsItem(t *testing.T) {
	s := setupLostFoundTestSuite(t, false)
	s.directory.On("FindAdminByRole", mock.Anything, session.RoleLostAndFound).
		Return(&user.Admin{BaseModel: common.BaseModel{ID: uuid.New()}}, nil).Once()
	s.repo.On("CreateLostItem", mock.Anything, mock.Anything).Return(nil).Once()
	s.store.On("Upload", mock.Anything, testBucket, mock.Anything, mock.Anything).Return(errors.New("denied")).Once()

	form := validItemForm(s.now)
	form.Image = pngImage()
	_, err := s.svc.ReportLost(context.Background(), studentSession(), form)
	assert.ErrorIs(t, err, common.ErrStorage)
	s.repo.AssertNotCalled(t, "DeleteLostItem", mock.Anything, mock.Anything)
	s.assertExpectations(t)
}

func TestReportFound_KeyAndAccess(t *testing.T) {
	s := setupLostFoundTestSuite(t, true)
	sess := deskSession()
	key := fmt.Sprintf("found_%s_%d.png", sess.UserID, s.now.UnixMilli())
	s.repo.On("CreateFoundItem", mock.Anything, mock.MatchedBy(func(it *FoundItem) bool {
		return it.AdminID == sess.UserID && it.Status == StatusUnclaimed
	})).Return(nil).Once()
	s.store.On("Upload", mock.Anything, testBucket, key, mock.Anything).Return(nil).Once()
	s.repo.On("CreateAttachment", mock.Anything, mock.Anything).Return(nil).Once()
	s.index.On("Put", mock.Anything, mock.MatchedBy(func(e Entry) bool { return e.Source == listing.SourceFound })).Return(errors.New("es down")).Once()

	form := validItemForm(s.now)
	form.Image = pngImage()
	item, err := s.svc.ReportFound(context.Background(), sess, form)
	require.NoError(t, err, "index failures are best-effort")
	assert.Equal(t, StatusUnclaimed, item.Status)

	_, err = s.svc.ReportFound(context.Background(), studentSession(), form)
	assert.ErrorIs(t, err, common.ErrForbidden)
	_, err = s.svc.ReportFound(context.Background(), &session.Session{Kind: session.KindAdmin, AdminRole: session.RoleFacilityAdmin}, form)
	assert.ErrorIs(t, err, common.ErrForbidden)
	s.assertExpectations(t)
}

func TestChangeStatus_LinksLostToFound(t *testing.T) {
	s := setupLostFoundTestSuite(t, false)
	reporter := uuid.New()
	lost := lostItem(reporter, StatusLost)
	found := foundItem(StatusUnclaimed)
	reason := "Matched by serial number"

	s.repo.On("FindLostItem", mock.Anything, lost.ID).Return(lost, nil).Once()
	s.repo.On("FindFoundItem", mock.Anything, found.ID).Return(found, nil).Once()
	s.repo.On("UpdateLostItem", mock.Anything, lost.ID, StatusFound, reason, &found.ID).Return(nil).Once()
	s.repo.On("ClaimFoundItem", mock.Anything, found.ID, lost.ID).Return(nil).Once()
	n := &notification.Notification{ID: uuid.New()}
	s.notifier.On("CreateNotification", mock.Anything, reporter, notification.LostItemUpdate,
		"Status updated to Found. "+reason,
		mock.MatchedBy(func(r notification.Related) bool { return r.LostItemID != nil && *r.LostItemID == lost.ID })).
		Return(n, nil).Once()
	s.expectMail(reporter, "Lost Item: Laptop", StatusFound, reason)

	result, err := s.svc.ChangeStatus(context.Background(), deskSession(), lost.ID,
		StatusChange{Source: listing.SourceLost, Status: StatusFound, Reason: reason, FoundItemID: &found.ID})
	require.NoError(t, err)
	assert.Empty(t, result.Warnings)
	assert.Equal(t, StatusFound, result.Lost.Status)
	require.NotNil(t, result.Lost.MatchedFoundItemID)
	assert.Equal(t, found.ID, *result.Lost.MatchedFoundItemID)
	require.NotNil(t, result.Found)
	assert.Equal(t, StatusClaimed, result.Found.Status)
	require.NotNil(t, result.Found.MatchedLostItemID)
	assert.Equal(t, lost.ID, *result.Found.MatchedLostItemID)
	assert.Equal(t, n, result.Notification)
	s.assertExpectations(t)
}

func TestChangeStatus_ClaimedFoundItemIsLinkError(t *testing.T) {
	s := setupLostFoundTestSuite(t, false)
	lost := lostItem(uuid.New(), StatusLost)
	found := foundItem(StatusClaimed)
	s.repo.On("FindLostItem", mock.Anything, lost.ID).Return(lost, nil).Once()
	s.repo.On("FindFoundItem", mock.Anything, found.ID).Return(found, nil).Once()

	_, err := s.svc.ChangeStatus(context.Background(), deskSession(), lost.ID,
		StatusChange{Source: listing.SourceLost, Status: StatusFound, Reason: "match", FoundItemID: &found.ID})
	assert.ErrorIs(t, err, common.ErrLink)
	s.repo.AssertNotCalled(t, "UpdateLostItem", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	s.repo.AssertNotCalled(t, "ClaimFoundItem", mock.Anything, mock.Anything, mock.Anything)
	s.notifier.AssertNotCalled(t, "CreateNotification", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	s.assertExpectations(t)
}

func TestChangeStatus_MissingFoundItemIsLinkError(t *testing.T) {
	s := setupLostFoundTestSuite(t, false)
	lost := lostItem(uuid.New(), StatusLost)
	missing := uuid.New()
	s.repo.On("FindLostItem", mock.Anything, lost.ID).Return(lost, nil).Once()
	s.repo.On("FindFoundItem", mock.Anything, missing).Return(nil, common.ErrNotFound).Once()

	_, err := s.svc.ChangeStatus(context.Background(), deskSession(), lost.ID,
		StatusChange{Source: listing.SourceLost, Status: StatusFound, Reason: "match", FoundItemID: &missing})
	assert.ErrorIs(t, err, common.ErrLink)
	s.assertExpectations(t)
}

func TestChangeStatus_ValidationBeforeAnyRead(t *testing.T) {
	s := setupLostFoundTestSuite(t, false)
	foundID := uuid.New()
	cases := []StatusChange{
		{Source: listing.SourceLost, Status: StatusClaim, Reason: "x", FoundItemID: &foundID},
		{Source: listing.SourceLost, Status: StatusFound, Reason: "   "},
		{Source: listing.SourceLost, Status: StatusClaimed, Reason: "x"},
		{Source: listing.SourceFound, Status: StatusLost, Reason: "x"},
		{Source: listing.SourceAll, Status: StatusLost, Reason: "x"},
	}
	for _, c := range cases {
		_, err := s.svc.ChangeStatus(context.Background(), deskSession(), uuid.New(), c)
		assert.ErrorIs(t, err, common.ErrValidation, "%+v", c)
	}
	s.repo.AssertNotCalled(t, "FindLostItem", mock.Anything, mock.Anything)
	s.assertExpectations(t)
}

func TestChangeStatus_UnknownTargetIsLookupError(t *testing.T) {
	s := setupLostFoundTestSuite(t, false)
	id := uuid.New()
	s.repo.On("FindLostItem", mock.Anything, id).Return(nil, common.ErrNotFound.WithDetails("Lost item not found.")).Once()

	_, err := s.svc.ChangeStatus(context.Background(), deskSession(), id, StatusChange{Source: listing.SourceLost, Status: StatusClaim, Reason: "x"})
	assert.ErrorIs(t, err, common.ErrLookup)
	s.assertExpectations(t)
}

func TestChangeStatus_ClaimFailureIsWarning(t *testing.T) {
	s := setupLostFoundTestSuite(t, false)
	reporter := uuid.New()
	lost := lostItem(reporter, StatusLost)
	found := foundItem(StatusUnclaimed)

	s.repo.On("FindLostItem", mock.Anything, lost.ID).Return(lost, nil).Once()
	s.repo.On("FindFoundItem", mock.Anything, found.ID).Return(found, nil).Once()
	s.repo.On("UpdateLostItem", mock.Anything, lost.ID, StatusFound, "match", &found.ID).Return(nil).Once()
	s.repo.On("ClaimFoundItem", mock.Anything, found.ID, lost.ID).Return(ErrFoundItemUnavailable).Once()
	s.notifier.On("CreateNotification", mock.Anything, reporter, notification.LostItemUpdate, mock.Anything, mock.Anything).
		Return(&notification.Notification{}, nil).Once()
	s.expectMail(reporter, "Lost Item: Laptop", StatusFound, "match")

	result, err := s.svc.ChangeStatus(context.Background(), deskSession(), lost.ID,
		StatusChange{Source: listing.SourceLost, Status: StatusFound, Reason: "match", FoundItemID: &found.ID})
	require.NoError(t, err)
	assert.Equal(t, StatusFound, result.Lost.Status, "first write is not rolled back")
	assert.Nil(t, result.Found)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], found.ID.String())
	s.repo.AssertNotCalled(t, "UpdateLostItem", mock.Anything, lost.ID, StatusLost, mock.Anything, mock.Anything)
	s.assertExpectations(t)
}

func TestChangeStatus_FirstWriteFailure(t *testing.T) {
	s := setupLostFoundTestSuite(t, false)
	lost := lostItem(uuid.New(), StatusLost)
	s.repo.On("FindLostItem", mock.Anything, lost.ID).Return(lost, nil).Once()
	s.repo.On("UpdateLostItem", mock.Anything, lost.ID, StatusClaim, "owner called", (*uuid.UUID)(nil)).Return(errors.New("db down")).Once()

	_, err := s.svc.ChangeStatus(context.Background(), deskSession(), lost.ID, StatusChange{Source: listing.SourceLost, Status: StatusClaim, Reason: "owner called"})
	assert.ErrorIs(t, err, common.ErrWrite)
	s.assertExpectations(t)
}

func TestChangeStatus_NotificationFailureIsWarning(t *testing.T) {
	s := setupLostFoundTestSuite(t, false)
	reporter := uuid.New()
	lost := lostItem(reporter, StatusLost)
	s.repo.On("FindLostItem", mock.Anything, lost.ID).Return(lost, nil).Once()
	s.repo.On("UpdateLostItem", mock.Anything, lost.ID, StatusClaim, "owner called", (*uuid.UUID)(nil)).Return(nil).Once()
	s.notifier.On("CreateNotification", mock.Anything, reporter, notification.LostItemUpdate, mock.Anything, mock.Anything).
		Return(nil, errors.New("insert failed")).Once()
	s.directory.On("GetContact", mock.Anything, reporter).Return(nil, common.ErrNotFound).Once()

	result, err := s.svc.ChangeStatus(context.Background(), deskSession(), lost.ID, StatusChange{Source: listing.SourceLost, Status: StatusClaim, Reason: "owner called"})
	require.NoError(t, err)
	assert.Nil(t, result.Notification)
	assert.Len(t, result.Warnings, 1)
	s.assertExpectations(t)
}

func TestChangeStatus_FoundSourceReleasesMatchedLostItem(t *testing.T) {
	s := setupLostFoundTestSuite(t, false)
	reporter := uuid.New()
	found := foundItem(StatusClaimed)
	// The row as it reads after the release: open again, no match.
	reopened := lostItem(reporter, StatusLost)
	found.MatchedLostItemID = &reopened.ID

	s.repo.On("FindFoundItem", mock.Anything, found.ID).Return(found, nil).Once()
	s.repo.On("ReleaseFoundItem", mock.Anything, found.ID, reopened.ID, "Wrong owner").Return(nil).Once()
	s.repo.On("FindLostItem", mock.Anything, reopened.ID).Return(reopened, nil).Once()
	s.notifier.On("CreateNotification", mock.Anything, reporter, notification.LostItemUpdate,
		"Status updated to Lost. Wrong owner", mock.Anything).Return(&notification.Notification{}, nil).Once()
	s.expectMail(reporter, "Lost Item: Laptop", StatusLost, "Wrong owner")

	result, err := s.svc.ChangeStatus(context.Background(), deskSession(), found.ID,
		StatusChange{Source: listing.SourceFound, Status: StatusUnclaimed, Reason: "Wrong owner"})
	require.NoError(t, err)
	assert.Equal(t, StatusUnclaimed, result.Found.Status)
	assert.Nil(t, result.Found.MatchedLostItemID)
	assert.Equal(t, reopened, result.Lost)
	s.repo.AssertNotCalled(t, "UpdateFoundItem", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	s.assertExpectations(t)
}

func TestChangeStatus_FoundSourceKeepsMatchWhileClaimed(t *testing.T) {
	s := setupLostFoundTestSuite(t, false)
	reporter := uuid.New()
	lost := lostItem(reporter, StatusFound)
	found := foundItem(StatusClaimed)
	found.MatchedLostItemID = &lost.ID
	lost.MatchedFoundItemID = &found.ID

	s.repo.On("FindFoundItem", mock.Anything, found.ID).Return(found, nil).Once()
	s.repo.On("UpdateFoundItem", mock.Anything, found.ID, StatusClaimed, "Picked up").Return(nil).Once()
	s.repo.On("FindLostItem", mock.Anything, lost.ID).Return(lost, nil).Once()
	s.notifier.On("CreateNotification", mock.Anything, reporter, notification.LostItemUpdate,
		"Status updated to Claimed. Picked up", mock.Anything).Return(&notification.Notification{}, nil).Once()
	s.expectMail(reporter, "Lost Item: Laptop", StatusClaimed, "Picked up")

	result, err := s.svc.ChangeStatus(context.Background(), deskSession(), found.ID,
		StatusChange{Source: listing.SourceFound, Status: StatusClaimed, Reason: "Picked up"})
	require.NoError(t, err)
	require.NotNil(t, result.Found.MatchedLostItemID)
	assert.Equal(t, lost.ID, *result.Found.MatchedLostItemID)
	s.repo.AssertNotCalled(t, "ReleaseFoundItem", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	s.assertExpectations(t)
}

func TestChangeStatus_LostSourceReleasesPreviousMatch(t *testing.T) {
	tests := []struct {
		name        string
		status      string
		link        bool // link to a second, unclaimed found item
		relinkSame  bool // link to the found item already matched
		wantRelease bool
	}{
		{name: "found back to lost", status: StatusLost, wantRelease: true},
		{name: "found to claim", status: StatusClaim, wantRelease: true},
		{name: "relinked to another found item", status: StatusFound, link: true, wantRelease: true},
		{name: "relinked to the same found item", status: StatusFound, relinkSame: true},
		{name: "found again without a link", status: StatusFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := setupLostFoundTestSuite(t, false)
			reporter := uuid.New()
			lost := lostItem(reporter, StatusFound)
			previous := uuid.New()
			lost.MatchedFoundItemID = &previous
			change := StatusChange{Source: listing.SourceLost, Status: tt.status, Reason: "desk review"}

			s.repo.On("FindLostItem", mock.Anything, lost.ID).Return(lost, nil).Once()
			var next *FoundItem
			switch {
			case tt.link:
				next = foundItem(StatusUnclaimed)
				change.FoundItemID = &next.ID
				s.repo.On("FindFoundItem", mock.Anything, next.ID).Return(next, nil).Once()
				s.repo.On("ClaimFoundItem", mock.Anything, next.ID, lost.ID).Return(nil).Once()
			case tt.relinkSame:
				same := previous
				change.FoundItemID = &same
			}
			if tt.wantRelease {
				s.repo.On("ReleaseAndUpdateLostItem", mock.Anything, lost.ID, previous, tt.status, "desk review", change.FoundItemID).Return(nil).Once()
			} else {
				s.repo.On("UpdateLostItem", mock.Anything, lost.ID, tt.status, "desk review", change.FoundItemID).Return(nil).Once()
			}
			s.notifier.On("CreateNotification", mock.Anything, reporter, notification.LostItemUpdate, mock.Anything, mock.Anything).
				Return(&notification.Notification{}, nil).Once()
			s.directory.On("GetContact", mock.Anything, reporter).Return(nil, common.ErrNotFound).Once()

			result, err := s.svc.ChangeStatus(context.Background(), deskSession(), lost.ID, change)
			require.NoError(t, err)
			assert.Equal(t, tt.status, result.Lost.Status)
			switch {
			case tt.link:
				require.NotNil(t, result.Lost.MatchedFoundItemID)
				assert.Equal(t, next.ID, *result.Lost.MatchedFoundItemID)
				require.NotNil(t, result.Found)
				assert.Equal(t, lost.ID, *result.Found.MatchedLostItemID)
			case tt.wantRelease:
				assert.Nil(t, result.Lost.MatchedFoundItemID)
			default:
				require.NotNil(t, result.Lost.MatchedFoundItemID)
				assert.Equal(t, previous, *result.Lost.MatchedFoundItemID)
			}
			if tt.wantRelease {
				require.NotNil(t, result.ReleasedFoundItemID)
				assert.Equal(t, previous, *result.ReleasedFoundItemID)
				s.repo.AssertNotCalled(t, "UpdateLostItem", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			} else {
				assert.Nil(t, result.ReleasedFoundItemID)
				s.repo.AssertNotCalled(t, "FindFoundItem", mock.Anything, previous)
				s.repo.AssertNotCalled(t, "ClaimFoundItem", mock.Anything, mock.Anything, mock.Anything)
			}
			s.assertExpectations(t)
		})
	}
}

func TestChangeStatus_ReleaseFailureIsWriteError(t *testing.T) {
	s := setupLostFoundTestSuite(t, false)
	lost := lostItem(uuid.New(), StatusFound)
	previous := uuid.New()
	lost.MatchedFoundItemID = &previous
	s.repo.On("FindLostItem", mock.Anything, lost.ID).Return(lost, nil).Once()
	s.repo.On("ReleaseAndUpdateLostItem", mock.Anything, lost.ID, previous, StatusLost, "undo", (*uuid.UUID)(nil)).
		Return(errors.New("tx aborted")).Once()

	_, err := s.svc.ChangeStatus(context.Background(), deskSession(), lost.ID, StatusChange{Source: listing.SourceLost, Status: StatusLost, Reason: "undo"})
	assert.ErrorIs(t, err, common.ErrWrite)
	s.notifier.AssertNotCalled(t, "CreateNotification", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	s.assertExpectations(t)
}

func TestReporterSummary_MultiByteInitials(t *testing.T) {
	s := setupLostFoundTestSuite(t, false)
	emile, blank := uuid.New(), uuid.New()
	s.directory.On("FindUserByID", mock.Anything, emile).Return(&user.User{FirstName: "émile", LastName: "Zola", Email: "ez@campus.edu"}, nil).Once()
	s.directory.On("FindUserByID", mock.Anything, blank).Return(&user.User{Email: "x@campus.edu"}, nil).Once()

	p := s.svc.reporterSummary(context.Background(), emile)
	assert.Equal(t, "ÉZ", p.Initials)
	assert.Equal(t, "émile Zola", p.Name)

	p = s.svc.reporterSummary(context.Background(), blank)
	assert.Equal(t, "U", p.Initials)
	assert.Equal(t, "Unknown User", p.Name)
	s.assertExpectations(t)
}

func TestDeleteLostItem(t *testing.T) {
	s := setupLostFoundTestSuite(t, false)
	reporter := uuid.New()
	lost := lostItem(reporter, StatusLost)

	_, err := s.svc.DeleteLostItem(context.Background(), deskSession(), lost.ID, " ")
	assert.ErrorIs(t, err, common.ErrValidation)

	s.repo.On("FindLostItem", mock.Anything, lost.ID).Return(lost, nil).Once()
	s.repo.On("UpdateLostItem", mock.Anything, lost.ID, StatusDeleted, "Spam", (*uuid.UUID)(nil)).Return(nil).Once()
	s.notifier.On("CreateNotification", mock.Anything, reporter, notification.Deleted,
		"Your report was deleted. Reason: Spam", mock.Anything).Return(&notification.Notification{}, nil).Once()
	s.expectMail(reporter, "Lost Item: Laptop", StatusDeleted, "Spam")

	result, err := s.svc.DeleteLostItem(context.Background(), deskSession(), lost.ID, "Spam")
	require.NoError(t, err)
	assert.Equal(t, StatusDeleted, result.Lost.Status)
	assert.Nil(t, result.ReleasedFoundItemID)
	s.assertExpectations(t)
}

func TestDeleteLostItem_ReleasesMatchedFoundItem(t *testing.T) {
	s := setupLostFoundTestSuite(t, false)
	reporter := uuid.New()
	lost := lostItem(reporter, StatusFound)
	matched := uuid.New()
	lost.MatchedFoundItemID = &matched

	s.repo.On("FindLostItem", mock.Anything, lost.ID).Return(lost, nil).Once()
	s.repo.On("ReleaseAndUpdateLostItem", mock.Anything, lost.ID, matched, StatusDeleted, "Duplicate", (*uuid.UUID)(nil)).Return(nil).Once()
	s.notifier.On("CreateNotification", mock.Anything, reporter, notification.Deleted, mock.Anything, mock.Anything).
		Return(&notification.Notification{}, nil).Once()
	s.directory.On("GetContact", mock.Anything, reporter).Return(nil, common.ErrNotFound).Once()

	result, err := s.svc.DeleteLostItem(context.Background(), deskSession(), lost.ID, "Duplicate")
	require.NoError(t, err)
	assert.Nil(t, result.Lost.MatchedFoundItemID)
	require.NotNil(t, result.ReleasedFoundItemID)
	assert.Equal(t, matched, *result.ReleasedFoundItemID)
	s.assertExpectations(t)
}

// newStoredLostFoundService runs the service against a real sqlite repository so both
// sides of a match can be read back after each transition.
func newStoredLostFoundService(t *testing.T) (*Service, Repository) {
	t.Helper()
	repo, _ := setupLostFoundRepository(t)
	directory := new(MockDirectory)
	directory.On("GetContact", mock.Anything, mock.Anything).Return(nil, common.ErrNotFound).Maybe()
	notifier := new(MockNotifier)
	notifier.On("CreateNotification", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&notification.Notification{}, nil).Maybe()
	svc := NewService(repo, directory, new(MockStore), notifier, new(MockSender), cache.NopStore{}, nil,
		Options{Bucket: testBucket, MaxUploadBytes: 1 << 20, CacheTTL: time.Minute}, zap.NewNop())
	return svc, repo
}

func assertMatch(t *testing.T, repo Repository, lostID, foundID uuid.UUID) {
	t.Helper()
	lost, err := repo.FindLostItem(context.Background(), lostID)
	require.NoError(t, err)
	found, err := repo.FindFoundItem(context.Background(), foundID)
	require.NoError(t, err)
	require.NotNil(t, lost.MatchedFoundItemID)
	assert.Equal(t, foundID, *lost.MatchedFoundItemID)
	assert.Equal(t, StatusClaimed, found.Status)
	require.NotNil(t, found.MatchedLostItemID)
	assert.Equal(t, lostID, *found.MatchedLostItemID)
}

func assertUnmatched(t *testing.T, repo Repository, lostID, foundID uuid.UUID, lostStatus string) {
	t.Helper()
	lost, err := repo.FindLostItem(context.Background(), lostID)
	require.NoError(t, err)
	found, err := repo.FindFoundItem(context.Background(), foundID)
	require.NoError(t, err)
	assert.Equal(t, lostStatus, lost.Status)
	if lost.MatchedFoundItemID != nil {
		assert.NotEqual(t, foundID, *lost.MatchedFoundItemID, "lost item still points at the found item")
	}
	if found.MatchedLostItemID != nil {
		assert.NotEqual(t, lostID, *found.MatchedLostItemID, "found item still points at the lost item")
	}
}

func TestChangeStatus_MatchReferencesStaySymmetric(t *testing.T) {
	ctx := context.Background()
	desk := deskSession()
	link := func(foundID uuid.UUID) StatusChange {
		return StatusChange{Source: listing.SourceLost, Status: StatusFound, Reason: "matched", FoundItemID: &foundID}
	}

	t.Run("found item reverted then linked to another report", func(t *testing.T) {
		svc, repo := newStoredLostFoundService(t)
		first := seedLost(t, repo, uuid.New(), time.Now().UTC())
		second := seedLost(t, repo, uuid.New(), time.Now().UTC())
		found := seedFound(t, repo)

		_, err := svc.ChangeStatus(ctx, desk, first.ID, link(found.ID))
		require.NoError(t, err)
		assertMatch(t, repo, first.ID, found.ID)

		_, err = svc.ChangeStatus(ctx, desk, found.ID, StatusChange{Source: listing.SourceFound, Status: StatusUnclaimed, Reason: "wrong owner"})
		require.NoError(t, err)
		assertUnmatched(t, repo, first.ID, found.ID, StatusLost)
		reverted, err := repo.FindFoundItem(ctx, found.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusUnclaimed, reverted.Status)
		assert.Nil(t, reverted.MatchedLostItemID)

		_, err = svc.ChangeStatus(ctx, desk, second.ID, link(found.ID))
		require.NoError(t, err)
		assertMatch(t, repo, second.ID, found.ID)
		assertUnmatched(t, repo, first.ID, found.ID, StatusLost)
	})

	t.Run("lost item moved off found", func(t *testing.T) {
		svc, repo := newStoredLostFoundService(t)
		lost := seedLost(t, repo, uuid.New(), time.Now().UTC())
		found := seedFound(t, repo)

		_, err := svc.ChangeStatus(ctx, desk, lost.ID, link(found.ID))
		require.NoError(t, err)
		_, err = svc.ChangeStatus(ctx, desk, lost.ID, StatusChange{Source: listing.SourceLost, Status: StatusLost, Reason: "not theirs"})
		require.NoError(t, err)
		assertUnmatched(t, repo, lost.ID, found.ID, StatusLost)
		released, err := repo.FindFoundItem(ctx, found.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusUnclaimed, released.Status)
		assert.Nil(t, released.MatchedLostItemID)
	})

	t.Run("lost item relinked to a second found item", func(t *testing.T) {
		svc, repo := newStoredLostFoundService(t)
		lost := seedLost(t, repo, uuid.New(), time.Now().UTC())
		firstFound := seedFound(t, repo)
		secondFound := seedFound(t, repo)

		_, err := svc.ChangeStatus(ctx, desk, lost.ID, link(firstFound.ID))
		require.NoError(t, err)
		result, err := svc.ChangeStatus(ctx, desk, lost.ID, link(secondFound.ID))
		require.NoError(t, err)
		assert.Empty(t, result.Warnings)
		assertMatch(t, repo, lost.ID, secondFound.ID)
		assertUnmatched(t, repo, lost.ID, firstFound.ID, StatusFound)
		released, err := repo.FindFoundItem(ctx, firstFound.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusUnclaimed, released.Status)
	})

	t.Run("matched report deleted", func(t *testing.T) {
		svc, repo := newStoredLostFoundService(t)
		lost := seedLost(t, repo, uuid.New(), time.Now().UTC())
		found := seedFound(t, repo)

		_, err := svc.ChangeStatus(ctx, desk, lost.ID, link(found.ID))
		require.NoError(t, err)
		_, err = svc.DeleteLostItem(ctx, desk, lost.ID, "duplicate")
		require.NoError(t, err)
		assertUnmatched(t, repo, lost.ID, found.ID, StatusDeleted)
		released, err := repo.FindFoundItem(ctx, found.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusUnclaimed, released.Status)
	})
}

func electronics(n int, base time.Time) []LostItem {
	items := make([]LostItem, n)
	for i := range items {
		items[i] = LostItem{
			BaseModel:    common.BaseModel{ID: uuid.New()},
			ReporterID:   uuid.New(),
			ItemDetails:  ItemDetails{ItemName: fmt.Sprintf("Phone %d", i+1), ItemType: "Electronics"},
			LocationLost: "Hall",
			Status:       StatusLost,
			ReportedDate: base.Add(-time.Duration(i) * time.Hour),
		}
	}
	return items
}

func TestList_ElectronicsSecondPage(t *testing.T) {
	s := setupLostFoundTestSuite(t, false)
	lost := electronics(15, s.now)
	books := lostItem(uuid.New(), StatusLost)
	books.ItemType = "Books"
	lost = append(lost, *books)

	s.repo.On("ListLostItems", mock.Anything, ListFilter{}).Return(lost, nil).Once()
	s.repo.On("ListFoundItems", mock.Anything, ListFilter{}).Return([]FoundItem{}, nil).Once()
	s.directory.On("UserNames", mock.Anything, mock.Anything).Return(map[uuid.UUID]string{}, nil).Once()

	board, err := s.svc.List(context.Background(), deskSession(), listing.Query{Categories: []string{"electronics"}, Page: 2})
	require.NoError(t, err)
	assert.Equal(t, 15, board.Result.Total)
	assert.Equal(t, 11, board.Result.Start)
	assert.Equal(t, 15, board.Result.End)
	require.Len(t, board.Result.Items, 5)
	assert.Equal(t, "Phone 11", board.Result.Items[0].Lost.ItemName)
	require.Len(t, board.Views, 5)
	s.assertExpectations(t)
}

func TestList_HidesDeletedUnlessRequested(t *testing.T) {
	s := setupLostFoundTestSuite(t, false)
	deleted := lostItem(uuid.New(), StatusDeleted)
	active := lostItem(uuid.New(), StatusLost)
	found := foundItem(StatusUnclaimed)

	s.repo.On("ListLostItems", mock.Anything, ListFilter{}).Return([]LostItem{*deleted, *active}, nil).Twice()
	s.repo.On("ListFoundItems", mock.Anything, ListFilter{}).Return([]FoundItem{*found}, nil).Twice()
	s.directory.On("UserNames", mock.Anything, mock.Anything).Return(map[uuid.UUID]string{}, nil).Twice()

	board, err := s.svc.List(context.Background(), deskSession(), listing.Query{})
	require.NoError(t, err)
	assert.Equal(t, 2, board.Result.Total)

	board, err = s.svc.List(context.Background(), deskSession(), listing.Query{Statuses: []string{"deleted"}})
	require.NoError(t, err)
	require.Equal(t, 1, board.Result.Total)
	assert.Equal(t, deleted.ID, board.Result.Items[0].ID())

	_, err = s.svc.List(context.Background(), studentSession(), listing.Query{})
	assert.ErrorIs(t, err, common.ErrForbidden)
	s.assertExpectations(t)
}

func TestSearch_UsesIndexAndFallsBack(t *testing.T) {
	s := setupLostFoundTestSuite(t, true)
	wallet := lostItem(uuid.New(), StatusLost)
	wallet.ItemName = "Leather wallet"
	umbrella := foundItem(StatusUnclaimed)
	umbrella.ItemName = "Umbrella"

	s.repo.On("ListLostItems", mock.Anything, ListFilter{}).Return([]LostItem{*wallet}, nil)
	s.repo.On("ListFoundItems", mock.Anything, ListFilter{}).Return([]FoundItem{*umbrella}, nil)
	s.directory.On("UserNames", mock.Anything, mock.Anything).Return(map[uuid.UUID]string{}, nil)

	// The index matches on a field the in-memory filter would miss.
	s.index.On("Search", mock.Anything, "walet", searchLimit).Return([]string{"lost:" + wallet.ID.String()}, nil).Once()
	board, err := s.svc.Search(context.Background(), deskSession(), listing.Query{Text: "walet"})
	require.NoError(t, err)
	require.Equal(t, 1, board.Result.Total)
	assert.Equal(t, wallet.ID, board.Result.Items[0].ID())

	s.index.On("Search", mock.Anything, "umbrella", searchLimit).Return(nil, errors.New("es down")).Once()
	board, err = s.svc.Search(context.Background(), deskSession(), listing.Query{Text: "umbrella"})
	require.NoError(t, err)
	require.Equal(t, 1, board.Result.Total)
	assert.Equal(t, umbrella.ID, board.Result.Items[0].ID())
	s.index.AssertExpectations(t)
}

func TestFoundItemDetails_ClaimedWithReporter(t *testing.T) {
	s := setupLostFoundTestSuite(t, false)
	reporter := uuid.New()
	lost := lostItem(reporter, StatusFound)
	found := foundItem(StatusClaimed)
	found.AdminID = uuid.New()
	found.MatchedLostItemID = &lost.ID

	s.repo.On("FindFoundItem", mock.Anything, found.ID).Return(found, nil).Once()
	s.directory.On("FindAdminByID", mock.Anything, found.AdminID).
		Return(&user.Admin{FirstName: "Sam", LastName: "Reed", AdminRole: session.RoleLostAndFound}, nil).Once()
	s.repo.On("FindLostItem", mock.Anything, lost.ID).Return(lost, nil).Once()
	s.directory.On("FindUserByID", mock.Anything, reporter).Return(nil, common.ErrNotFound).Once()

	view, err := s.svc.FoundItemDetails(context.Background(), deskSession(), found.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sam Reed (Lost and Found)", view.AdminLabel)
	require.NotNil(t, view.MatchedLost)
	assert.Equal(t, "Unknown User", view.MatchedLost.Reporter.Name)
	assert.Equal(t, "U", view.MatchedLost.Reporter.Initials)
	assert.Equal(t, reporter, view.MatchedLost.Reporter.ID)
	s.assertExpectations(t)
}

func TestSyncIndex_Batches(t *testing.T) {
	s := setupLostFoundTestSuite(t, true)
	lost := electronics(3, s.now)
	found := foundItem(StatusUnclaimed)

	s.repo.On("ListLostItems", mock.Anything, ListFilter{Offset: 0, Limit: 2}).Return(lost[:2], nil).Once()
	s.repo.On("ListLostItems", mock.Anything, ListFilter{Offset: 2, Limit: 2}).Return(lost[2:], nil).Once()
	s.repo.On("ListLostItems", mock.Anything, ListFilter{Offset: 4, Limit: 2}).Return([]LostItem{}, nil).Once()
	s.repo.On("ListFoundItems", mock.Anything, ListFilter{Offset: 0, Limit: 2}).Return([]FoundItem{*found}, nil).Once()
	s.repo.On("ListFoundItems", mock.Anything, ListFilter{Offset: 2, Limit: 2}).Return([]FoundItem{}, nil).Once()
	s.index.On("Sync", mock.Anything, mock.Anything, "false").Return(elasticsearch.BulkReport{Indexed: 2}, nil).Once()
	s.index.On("Sync", mock.Anything, mock.Anything, "false").Return(elasticsearch.BulkReport{Indexed: 1}, nil).Twice()

	report, err := s.svc.SyncIndex(context.Background(), 2, "false")
	require.NoError(t, err)
	assert.Equal(t, SyncReport{Batches: 3, Indexed: 4}, report)
	s.assertExpectations(t)

	_, err = setupLostFoundTestSuite(t, false).svc.SyncIndex(context.Background(), 2, "false")
	assert.ErrorIs(t, err, ErrSearchDisabled)
}
