package service

import (
	"context"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	bookingserrors "venuebook/internal/bookings/errors"
	bookingvalidator "venuebook/internal/bookings/validator"
	"venuebook/internal/events"
	venueserrors "venuebook/internal/venues/errors"
	"venuebook/pkg/config"
	mongotx "venuebook/pkg/db/mongo"
	apperrors "venuebook/pkg/errors"
	"venuebook/pkg/logger"
	"venuebook/pkg/model"
	"venuebook/pkg/outbox"
)

// Mock repository for testing
type mockBookingRepository struct {
	createFunc     func(ctx context.Context, booking *model.Booking) error
	findByIDFunc   func(ctx context.Context, id string) (*model.Booking, error)
	findFunc       func(ctx context.Context, filter *model.BookingFilter, limit int, offset int64) ([]*model.Booking, error)
	countFunc      func(ctx context.Context, filter *model.BookingFilter) (int64, error)
	findActiveFunc func(ctx context.Context, venueID string, start, end time.Time, excludeID string) ([]*model.Booking, error)
	updateFunc     func(ctx context.Context, id, expectedStatus string, booking *model.Booking) error
	deleteFunc     func(ctx context.Context, id string) error
}

func (m *mockBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, booking)
	}
	booking.ID = "65f000000000000000000099"
	return nil
}

func (m *mockBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, bookingserrors.ErrNotFound
}

func (m *mockBookingRepository) Find(ctx context.Context, filter *model.BookingFilter, limit int, offset int64) ([]*model.Booking, error) {
	if m.findFunc != nil {
		return m.findFunc(ctx, filter, limit, offset)
	}
	return []*model.Booking{}, nil
}

func (m *mockBookingRepository) Count(ctx context.Context, filter *model.BookingFilter) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx, filter)
	}
	return 0, nil
}

func (m *mockBookingRepository) FindActiveForVenueInWindow(ctx context.Context, venueID string, start, end time.Time, excludeID string) ([]*model.Booking, error) {
	if m.findActiveFunc != nil {
		return m.findActiveFunc(ctx, venueID, start, end, excludeID)
	}
	return []*model.Booking{}, nil
}

func (m *mockBookingRepository) Update(ctx context.Context, id, expectedStatus string, booking *model.Booking) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, expectedStatus, booking)
	}
	return nil
}

func (m *mockBookingRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(nil)
}

type mockVenueLockRepository struct {
	acquireFunc func(ctx context.Context, lock *model.VenueLock) error
	released    []string
}

func (m *mockVenueLockRepository) Acquire(ctx context.Context, lock *model.VenueLock) error {
	if m.acquireFunc != nil {
		return m.acquireFunc(ctx, lock)
	}
	return nil
}

func (m *mockVenueLockRepository) Release(ctx context.Context, lockID string) error {
	m.released = append(m.released, lockID)
	return nil
}

type mockVenueReader struct {
	findByIDFunc func(ctx context.Context, id string) (*model.Venue, error)
}

func (m *mockVenueReader) FindByID(ctx context.Context, id string) (*model.Venue, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, venueserrors.ErrNotFound
}

type mockTeamReader struct {
	teamByIDFunc func(id string) (*model.Team, error)
}

func (m *mockTeamReader) TeamByID(id string) (*model.Team, error) {
	if m.teamByIDFunc != nil {
		return m.teamByIDFunc(id)
	}
	return nil, apperrors.NotFoundWithID("Team", id)
}

type mockNotifier struct {
	emitted []*model.Notification
}

func (m *mockNotifier) Emit(ctx context.Context, n *model.Notification) error {
	m.emitted = append(m.emitted, n)
	return nil
}

func (m *mockNotifier) ListForUser(ctx context.Context, principal *model.Principal, unreadOnly bool, limit int, offset int64) ([]*model.Notification, int64, error) {
	return nil, 0, nil
}

func (m *mockNotifier) MarkRead(ctx context.Context, principal *model.Principal, id string) error {
	return nil
}

type mockAuditor struct {
	records []*model.AuditRecord
}

func (m *mockAuditor) Record(ctx context.Context, rec *model.AuditRecord) error {
	m.records = append(m.records, rec)
	return nil
}

type mockPublisher struct {
	published []events.BookingEvent
}

func (m *mockPublisher) Publish(ctx context.Context, evt events.BookingEvent) error {
	m.published = append(m.published, evt)
	return nil
}

// inlineQueue runs side effects synchronously so tests can assert on
// them immediately after the service call returns.
type inlineQueue struct {
	names []string
}

func (q *inlineQueue) Enqueue(job outbox.Job) {
	q.names = append(q.names, job.Name)
	_ = job.Run(context.Background())
}

func (q *inlineQueue) Stop() {}

type testFixture struct {
	service   BookingService
	repo      *mockBookingRepository
	locks     *mockVenueLockRepository
	venues    *mockVenueReader
	teams     *mockTeamReader
	notifier  *mockNotifier
	auditor   *mockAuditor
	publisher *mockPublisher
	queue     *inlineQueue
}

func newTestFixture() *testFixture {
	log := logger.New(logger.Config{
		Level:     "error",
		Format:    logger.JSON,
		AddSource: false,
		Service:   "test",
	})

	cfg := &config.Config{
		Log:                       log,
		ReadTimeout:               5 * time.Second,
		WriteTimeout:              5 * time.Second,
		MaxBookingDuration:        4 * time.Hour,
		MaxBookingDurationEnabled: true,
		VenueLockTTL:              10 * time.Second,
	}

	f := &testFixture{
		repo:      &mockBookingRepository{},
		locks:     &mockVenueLockRepository{},
		venues:    &mockVenueReader{},
		teams:     &mockTeamReader{},
		notifier:  &mockNotifier{},
		auditor:   &mockAuditor{},
		publisher: &mockPublisher{},
		queue:     &inlineQueue{},
	}
	f.service = NewBookingService(cfg, f.repo, f.locks, f.venues, f.teams,
		bookingvalidator.NewBookingValidator(log), f.notifier, f.auditor, f.publisher, f.queue)
	return f
}

func testVenue() *model.Venue {
	return &model.Venue{
		ID:                "65f000000000000000000001",
		Name:              "National Aquatics Centre",
		ManagerID:         "manager-1",
		Capacity:          50,
		WorkingStartTime:  "08:00",
		WorkingEndTime:    "22:00",
		BufferTimeMinutes: 30,
	}
}

func testBookingRequest(start, end time.Time) *model.Booking {
	return &model.Booking{
		VenueID:          "65f000000000000000000001",
		TeamID:           "65f000000000000000000002",
		StartTime:        start,
		EndTime:          end,
		ParticipantCount: 12,
	}
}

// A fixed future slot well inside the venue's working window.
func futureSlot() (time.Time, time.Time) {
	start := time.Date(2027, 3, 10, 10, 0, 0, 0, time.UTC)
	return start, start.Add(2 * time.Hour)
}

var (
	customer   = &model.Principal{ID: "user-1", Role: model.RoleCustomer, CountryCode: "NOR"}
	manager    = &model.Principal{ID: "manager-1", Role: model.RoleManager}
	superadmin = &model.Principal{ID: "admin-1", Role: model.RoleSuperadmin}
)

func TestCreate_Success(t *testing.T) {
	f := newTestFixture()
	f.venues.findByIDFunc = func(ctx context.Context, id string) (*model.Venue, error) {
		return testVenue(), nil
	}

	start, end := futureSlot()
	booking, err := f.service.Create(context.Background(), customer, testBookingRequest(start, end))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if booking.Status != model.StatusRequested {
		t.Errorf("expected status %q, got %q", model.StatusRequested, booking.Status)
	}
	if booking.RequesterID != customer.ID {
		t.Errorf("requester should be forced to the principal, got %q", booking.RequesterID)
	}
	if booking.ID == "" {
		t.Error("expected booking ID to be set after creation")
	}

	// Lock released even on the happy path.
	if len(f.locks.released) != 1 {
		t.Errorf("expected 1 lock release, got %d", len(f.locks.released))
	}

	// Side effects: one audit record, one manager notification, one event.
	if len(f.auditor.records) != 1 || f.auditor.records[0].Action != model.AuditActionCreate {
		t.Errorf("expected one CREATE audit record, got %+v", f.auditor.records)
	}
	if len(f.notifier.emitted) != 1 {
		t.Fatalf("expected exactly 1 notification per accepted mutation, got %d", len(f.notifier.emitted))
	}
	if n := f.notifier.emitted[0]; n.UserID != "manager-1" || n.Type != model.NotifBookingRequested {
		t.Errorf("creation must notify the venue manager, got %+v", n)
	}
	if len(f.publisher.published) != 1 || f.publisher.published[0].Type != events.TypeBookingRequested {
		t.Errorf("expected one booking_requested event, got %+v", f.publisher.published)
	}
}

func TestCreate_ConflictDetected(t *testing.T) {
	f := newTestFixture()
	f.venues.findByIDFunc = func(ctx context.Context, id string) (*model.Venue, error) {
		return testVenue(), nil
	}

	start, end := futureSlot()
	var windowStart, windowEnd time.Time
	var excludedID string
	f.repo.findActiveFunc = func(ctx context.Context, venueID string, ws, we time.Time, excludeID string) ([]*model.Booking, error) {
		windowStart, windowEnd = ws, we
		excludedID = excludeID
		return []*model.Booking{{ID: "65f000000000000000000042", Status: model.StatusApproved}}, nil
	}

	created := false
	f.repo.createFunc = func(ctx context.Context, booking *model.Booking) error {
		created = true
		return nil
	}

	_, err := f.service.Create(context.Background(), customer, testBookingRequest(start, end))
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeConflict {
		t.Fatalf("expected CONFLICT, got %v", err)
	}

	// The conflict window must be expanded by the venue buffer on both sides.
	buffer := 30 * time.Minute
	if !windowStart.Equal(start.Add(-buffer)) || !windowEnd.Equal(end.Add(buffer)) {
		t.Errorf("expected window [%v, %v], got [%v, %v]",
			start.Add(-buffer), end.Add(buffer), windowStart, windowEnd)
	}

	if excludedID != "" {
		t.Errorf("a new booking excludes nothing from the conflict check, got %q", excludedID)
	}

	if created {
		t.Error("booking must not be inserted when a conflict is found")
	}
	if len(f.notifier.emitted) != 0 || len(f.auditor.records) != 0 || len(f.publisher.published) != 0 {
		t.Error("no side effects may run for a rejected creation")
	}
	if len(f.locks.released) != 1 {
		t.Error("lock must be released after a conflict")
	}
}

func TestCreate_NoBufferWindowIsExact(t *testing.T) {
	f := newTestFixture()
	venue := testVenue()
	venue.BufferTimeMinutes = 0
	f.venues.findByIDFunc = func(ctx context.Context, id string) (*model.Venue, error) {
		return venue, nil
	}

	start, end := futureSlot()
	var windowStart, windowEnd time.Time
	f.repo.findActiveFunc = func(ctx context.Context, venueID string, ws, we time.Time, excludeID string) ([]*model.Booking, error) {
		windowStart, windowEnd = ws, we
		return nil, nil
	}

	if _, err := f.service.Create(context.Background(), customer, testBookingRequest(start, end)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !windowStart.Equal(start) || !windowEnd.Equal(end) {
		t.Errorf("zero buffer must not expand the window, got [%v, %v]", windowStart, windowEnd)
	}
}

func TestCreate_VenueLockHeld(t *testing.T) {
	f := newTestFixture()
	f.venues.findByIDFunc = func(ctx context.Context, id string) (*model.Venue, error) {
		return testVenue(), nil
	}
	f.locks.acquireFunc = func(ctx context.Context, lock *model.VenueLock) error {
		return mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000}}}
	}

	start, end := futureSlot()
	_, err := f.service.Create(context.Background(), customer, testBookingRequest(start, end))
	if apperrors.AsAppError(err).Code != apperrors.CodeConflict {
		t.Fatalf("expected CONFLICT when the venue lock is held, got %v", err)
	}
}

func TestCreate_DurationCap(t *testing.T) {
	f := newTestFixture()
	f.venues.findByIDFunc = func(ctx context.Context, id string) (*model.Venue, error) {
		return testVenue(), nil
	}

	conflictChecked := false
	f.repo.findActiveFunc = func(ctx context.Context, venueID string, ws, we time.Time, excludeID string) ([]*model.Booking, error) {
		conflictChecked = true
		return nil, nil
	}

	start, _ := futureSlot()
	_, err := f.service.Create(context.Background(), customer, testBookingRequest(start, start.Add(5*time.Hour)))
	if apperrors.AsAppError(err).Code != apperrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR for over-long booking, got %v", err)
	}
	if conflictChecked {
		t.Error("duration cap must reject before the conflict check runs")
	}
}

func TestCreate_OutsideWorkingHours(t *testing.T) {
	f := newTestFixture()
	f.venues.findByIDFunc = func(ctx context.Context, id string) (*model.Venue, error) {
		return testVenue(), nil
	}

	start := time.Date(2027, 3, 10, 6, 0, 0, 0, time.UTC)
	_, err := f.service.Create(context.Background(), customer, testBookingRequest(start, start.Add(time.Hour)))
	if apperrors.AsAppError(err).Code != apperrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR outside working hours, got %v", err)
	}
}

func TestCreate_CapacityExceeded(t *testing.T) {
	f := newTestFixture()
	f.venues.findByIDFunc = func(ctx context.Context, id string) (*model.Venue, error) {
		return testVenue(), nil
	}

	start, end := futureSlot()
	booking := testBookingRequest(start, end)
	booking.ParticipantCount = 51
	_, err := f.service.Create(context.Background(), customer, booking)
	if apperrors.AsAppError(err).Code != apperrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR over capacity, got %v", err)
	}
}

func TestCreate_VenueNotFound(t *testing.T) {
	f := newTestFixture()

	start, end := futureSlot()
	_, err := f.service.Create(context.Background(), customer, testBookingRequest(start, end))
	if apperrors.AsAppError(err).Code != apperrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND for unknown venue, got %v", err)
	}
}

func TestCreate_FailedInsertEmitsNothing(t *testing.T) {
	f := newTestFixture()
	f.venues.findByIDFunc = func(ctx context.Context, id string) (*model.Venue, error) {
		return testVenue(), nil
	}
	f.repo.createFunc = func(ctx context.Context, booking *model.Booking) error {
		return context.DeadlineExceeded
	}

	start, end := futureSlot()
	_, err := f.service.Create(context.Background(), customer, testBookingRequest(start, end))
	if err == nil {
		t.Fatal("expected error")
	}
	if len(f.notifier.emitted) != 0 || len(f.auditor.records) != 0 || len(f.publisher.published) != 0 {
		t.Error("no side effects may run when the insert fails")
	}
}

func TestGetByID_EffectiveStatusCompleted(t *testing.T) {
	f := newTestFixture()
	f.repo.findByIDFunc = func(ctx context.Context, id string) (*model.Booking, error) {
		return &model.Booking{
			ID:          id,
			RequesterID: customer.ID,
			Status:      model.StatusApproved,
			StartTime:   time.Now().Add(-3 * time.Hour),
			EndTime:     time.Now().Add(-1 * time.Hour),
		}, nil
	}

	booking, err := f.service.GetByID(context.Background(), customer, "65f000000000000000000042")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if booking.Status != model.StatusCompleted {
		t.Errorf("approved booking past its end must read as completed, got %q", booking.Status)
	}
}

func TestGetByID_CustomerUnrelatedForbidden(t *testing.T) {
	f := newTestFixture()
	f.repo.findByIDFunc = func(ctx context.Context, id string) (*model.Booking, error) {
		return &model.Booking{ID: id, RequesterID: "someone-else", TeamID: "team-9", Status: model.StatusRequested}, nil
	}
	f.teams.teamByIDFunc = func(id string) (*model.Team, error) {
		return &model.Team{ID: id, CountryCode: "SWE"}, nil
	}

	_, err := f.service.GetByID(context.Background(), customer, "65f000000000000000000042")
	if apperrors.AsAppError(err).Code != apperrors.CodeForbidden {
		t.Fatalf("expected FORBIDDEN for unrelated booking, got %v", err)
	}
}

func TestGetByID_CustomerSameCountryTeam(t *testing.T) {
	f := newTestFixture()
	f.repo.findByIDFunc = func(ctx context.Context, id string) (*model.Booking, error) {
		return &model.Booking{ID: id, RequesterID: "someone-else", TeamID: "team-9", Status: model.StatusRequested}, nil
	}
	f.teams.teamByIDFunc = func(id string) (*model.Team, error) {
		return &model.Team{ID: id, CountryCode: "NOR"}, nil
	}

	if _, err := f.service.GetByID(context.Background(), customer, "65f000000000000000000042"); err != nil {
		t.Fatalf("same-country team booking must be readable, got %v", err)
	}
}

func TestTransition_ApproveByVenueManager(t *testing.T) {
	f := newTestFixture()
	f.repo.findByIDFunc = func(ctx context.Context, id string) (*model.Booking, error) {
		return &model.Booking{ID: id, VenueID: "65f000000000000000000001", RequesterID: "user-1", Status: model.StatusRequested}, nil
	}
	f.venues.findByIDFunc = func(ctx context.Context, id string) (*model.Venue, error) {
		return testVenue(), nil
	}

	var updated *model.Booking
	var guardedStatus string
	f.repo.updateFunc = func(ctx context.Context, id, expectedStatus string, booking *model.Booking) error {
		updated = booking
		guardedStatus = expectedStatus
		return nil
	}

	booking, err := f.service.Transition(context.Background(), manager, "65f000000000000000000042", model.StatusApproved)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if booking.Status != model.StatusApproved {
		t.Errorf("expected approved, got %q", booking.Status)
	}
	if booking.ApproverID != manager.ID {
		t.Errorf("approver must be stamped, got %q", booking.ApproverID)
	}
	if updated == nil {
		t.Fatal("expected repository update")
	}
	if guardedStatus != model.StatusRequested {
		t.Errorf("update must be guarded by the status that was read, got %q", guardedStatus)
	}

	if len(f.notifier.emitted) != 1 || f.notifier.emitted[0].UserID != "user-1" || f.notifier.emitted[0].Type != model.NotifBookingApproved {
		t.Errorf("expected one approval notification to the requester, got %+v", f.notifier.emitted)
	}
	if len(f.publisher.published) != 1 || f.publisher.published[0].Type != events.TypeBookingApproved {
		t.Errorf("expected booking_approved event, got %+v", f.publisher.published)
	}
	if len(f.auditor.records) != 1 || f.auditor.records[0].Action != model.AuditActionUpdate {
		t.Errorf("expected one UPDATE audit record, got %+v", f.auditor.records)
	}
}

func TestTransition_TerminalRejectedForEveryRole(t *testing.T) {
	f := newTestFixture()
	f.repo.findByIDFunc = func(ctx context.Context, id string) (*model.Booking, error) {
		return &model.Booking{ID: id, VenueID: "65f000000000000000000001", Status: model.StatusCancelled}, nil
	}

	updateCalled := false
	f.repo.updateFunc = func(ctx context.Context, id, expectedStatus string, booking *model.Booking) error {
		updateCalled = true
		return nil
	}

	for _, principal := range []*model.Principal{superadmin, manager, customer} {
		_, err := f.service.Transition(context.Background(), principal, "65f000000000000000000042", model.StatusApproved)
		if apperrors.AsAppError(err).Code != apperrors.CodeInvalidStateTransition {
			t.Errorf("role %s: expected INVALID_STATE_TRANSITION, got %v", principal.Role, err)
		}
	}
	if updateCalled {
		t.Error("terminal booking must never be updated")
	}
}

func TestTransition_ConcurrentTransitionConflicts(t *testing.T) {
	f := newTestFixture()
	// Both requests read the booking as requested; the first one
	// cancelled it, so this stale approval must not overwrite the
	// terminal state.
	f.repo.findByIDFunc = func(ctx context.Context, id string) (*model.Booking, error) {
		return &model.Booking{ID: id, VenueID: "65f000000000000000000001", RequesterID: "user-1", Status: model.StatusRequested}, nil
	}
	f.venues.findByIDFunc = func(ctx context.Context, id string) (*model.Venue, error) {
		return testVenue(), nil
	}
	f.repo.updateFunc = func(ctx context.Context, id, expectedStatus string, booking *model.Booking) error {
		return bookingserrors.ErrStaleStatus
	}

	_, err := f.service.Transition(context.Background(), manager, "65f000000000000000000042", model.StatusApproved)
	if apperrors.AsAppError(err).Code != apperrors.CodeConflict {
		t.Fatalf("expected CONFLICT when the guarded update matches nothing, got %v", err)
	}
	if len(f.notifier.emitted) != 0 || len(f.auditor.records) != 0 || len(f.publisher.published) != 0 {
		t.Error("no side effects may run for a lost transition")
	}
}

func TestTransition_CustomerCannotApproveOwnBooking(t *testing.T) {
	f := newTestFixture()
	f.repo.findByIDFunc = func(ctx context.Context, id string) (*model.Booking, error) {
		return &model.Booking{ID: id, VenueID: "65f000000000000000000001", RequesterID: customer.ID, Status: model.StatusRequested}, nil
	}
	f.venues.findByIDFunc = func(ctx context.Context, id string) (*model.Venue, error) {
		return testVenue(), nil
	}

	_, err := f.service.Transition(context.Background(), customer, "65f000000000000000000042", model.StatusApproved)
	if apperrors.AsAppError(err).Code != apperrors.CodeForbidden {
		t.Fatalf("expected FORBIDDEN, got %v", err)
	}
}

func TestTransition_ManagerOfOtherVenueForbidden(t *testing.T) {
	f := newTestFixture()
	f.repo.findByIDFunc = func(ctx context.Context, id string) (*model.Booking, error) {
		return &model.Booking{ID: id, VenueID: "65f000000000000000000001", RequesterID: "user-1", Status: model.StatusRequested}, nil
	}
	f.venues.findByIDFunc = func(ctx context.Context, id string) (*model.Venue, error) {
		venue := testVenue()
		venue.ManagerID = "somebody-else"
		return venue, nil
	}

	_, err := f.service.Transition(context.Background(), manager, "65f000000000000000000042", model.StatusApproved)
	if apperrors.AsAppError(err).Code != apperrors.CodeForbidden {
		t.Fatalf("expected FORBIDDEN, got %v", err)
	}
}

func TestCancel_ByRequesterNotifiesManager(t *testing.T) {
	f := newTestFixture()
	f.repo.findByIDFunc = func(ctx context.Context, id string) (*model.Booking, error) {
		return &model.Booking{ID: id, VenueID: "65f000000000000000000001", RequesterID: customer.ID, Status: model.StatusApproved}, nil
	}
	f.venues.findByIDFunc = func(ctx context.Context, id string) (*model.Venue, error) {
		return testVenue(), nil
	}

	booking, err := f.service.Cancel(context.Background(), customer, "65f000000000000000000042")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if booking.Status != model.StatusCancelled {
		t.Errorf("expected cancelled, got %q", booking.Status)
	}
	if len(f.notifier.emitted) != 1 || f.notifier.emitted[0].UserID != "manager-1" {
		t.Errorf("self-cancellation must notify the venue manager, got %+v", f.notifier.emitted)
	}
}

func TestDelete_SuperadminOnly(t *testing.T) {
	f := newTestFixture()
	f.repo.findByIDFunc = func(ctx context.Context, id string) (*model.Booking, error) {
		return &model.Booking{ID: id, RequesterID: customer.ID, Status: model.StatusDenied}, nil
	}

	if err := f.service.Delete(context.Background(), customer, "65f000000000000000000042"); apperrors.AsAppError(err).Code != apperrors.CodeForbidden {
		t.Fatalf("customer delete must be FORBIDDEN, got %v", err)
	}
	if err := f.service.Delete(context.Background(), manager, "65f000000000000000000042"); apperrors.AsAppError(err).Code != apperrors.CodeForbidden {
		t.Fatalf("manager delete must be FORBIDDEN, got %v", err)
	}

	if err := f.service.Delete(context.Background(), superadmin, "65f000000000000000000042"); err != nil {
		t.Fatalf("superadmin delete failed: %v", err)
	}
	if len(f.auditor.records) != 1 || f.auditor.records[0].Action != model.AuditActionDelete {
		t.Errorf("expected one DELETE audit record, got %+v", f.auditor.records)
	}
	if len(f.publisher.published) != 1 || f.publisher.published[0].Type != events.TypeBookingDeleted {
		t.Errorf("expected booking_deleted event, got %+v", f.publisher.published)
	}
}

func TestList_CustomerScopedToOwnBookings(t *testing.T) {
	f := newTestFixture()

	var captured *model.BookingFilter
	f.repo.findFunc = func(ctx context.Context, filter *model.BookingFilter, limit int, offset int64) ([]*model.Booking, error) {
		captured = filter
		return []*model.Booking{}, nil
	}

	if _, _, err := f.service.List(context.Background(), customer, &model.BookingFilter{}, 10, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if captured == nil || captured.RequesterID != customer.ID {
		t.Errorf("customer listing must be scoped to the requester, got %+v", captured)
	}
}

func TestList_CustomerForeignTeamFilterForbidden(t *testing.T) {
	f := newTestFixture()
	f.teams.teamByIDFunc = func(id string) (*model.Team, error) {
		return &model.Team{ID: id, CountryCode: "SWE"}, nil
	}

	_, _, err := f.service.List(context.Background(), customer, &model.BookingFilter{TeamID: "team-9"}, 10, 0)
	if apperrors.AsAppError(err).Code != apperrors.CodeForbidden {
		t.Fatalf("expected FORBIDDEN for foreign team filter, got %v", err)
	}
}

func TestList_UnknownStatusRejected(t *testing.T) {
	f := newTestFixture()

	_, _, err := f.service.List(context.Background(), superadmin, &model.BookingFilter{Status: "archived"}, 10, 0)
	if apperrors.AsAppError(err).Code != apperrors.CodeInvalidInput {
		t.Fatalf("expected INVALID_INPUT for unknown status, got %v", err)
	}
}
