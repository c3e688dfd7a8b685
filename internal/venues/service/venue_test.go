package service

import (
	"context"
	"testing"
	"time"

	venueserrors "venuebook/internal/venues/errors"
	venuevalidator "venuebook/internal/venues/validator"
	"venuebook/pkg/config"
	apperrors "venuebook/pkg/errors"
	"venuebook/pkg/logger"
	"venuebook/pkg/model"
	"venuebook/pkg/outbox"
)

type mockVenueRepository struct {
	createFunc   func(ctx context.Context, venue *model.Venue) error
	findByIDFunc func(ctx context.Context, id string) (*model.Venue, error)
	findAllFunc  func(ctx context.Context, limit int, offset int64) ([]*model.Venue, error)
	countFunc    func(ctx context.Context) (int64, error)
	updateFunc   func(ctx context.Context, id string, venue *model.Venue) error
	deleteFunc   func(ctx context.Context, id string) error
}

func (m *mockVenueRepository) Create(ctx context.Context, venue *model.Venue) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, venue)
	}
	venue.ID = "65f000000000000000000001"
	return nil
}

func (m *mockVenueRepository) FindByID(ctx context.Context, id string) (*model.Venue, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, venueserrors.ErrNotFound
}

func (m *mockVenueRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Venue, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx, limit, offset)
	}
	return []*model.Venue{}, nil
}

func (m *mockVenueRepository) Count(ctx context.Context) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx)
	}
	return 0, nil
}

func (m *mockVenueRepository) Update(ctx context.Context, id string, venue *model.Venue) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, venue)
	}
	return nil
}

func (m *mockVenueRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

type mockWindowReader struct {
	findActiveFunc func(ctx context.Context, venueID string, start, end time.Time, excludeID string) ([]*model.Booking, error)
}

func (m *mockWindowReader) FindActiveForVenueInWindow(ctx context.Context, venueID string, start, end time.Time, excludeID string) ([]*model.Booking, error) {
	if m.findActiveFunc != nil {
		return m.findActiveFunc(ctx, venueID, start, end, excludeID)
	}
	return []*model.Booking{}, nil
}

type mockAuditor struct {
	records []*model.AuditRecord
}

func (m *mockAuditor) Record(ctx context.Context, rec *model.AuditRecord) error {
	m.records = append(m.records, rec)
	return nil
}

type inlineQueue struct{}

func (q *inlineQueue) Enqueue(job outbox.Job) { _ = job.Run(context.Background()) }
func (q *inlineQueue) Stop()                  {}

var (
	manager    = &model.Principal{ID: "manager-1", Role: model.RoleManager}
	customer   = &model.Principal{ID: "user-1", Role: model.RoleCustomer, CountryCode: "NOR"}
	superadmin = &model.Principal{ID: "admin-1", Role: model.RoleSuperadmin}
)

func newService(repo *mockVenueRepository, bookings *mockWindowReader, auditor *mockAuditor) VenueService {
	log := logger.New(logger.Config{
		Level:     "error",
		Format:    logger.JSON,
		AddSource: false,
		Service:   "test",
	})
	cfg := &config.Config{
		Log:          log,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
	return NewVenueService(cfg, repo, bookings, venuevalidator.NewVenueValidator(log), auditor, &inlineQueue{})
}

func validVenue(managerID string) *model.Venue {
	return &model.Venue{
		Name:              "Velodrome East",
		ManagerID:         managerID,
		Capacity:          80,
		WorkingStartTime:  "07:00",
		WorkingEndTime:    "21:30",
		BufferTimeMinutes: 15,
	}
}

func TestCreate_ManagerForSelf(t *testing.T) {
	auditor := &mockAuditor{}
	svc := newService(&mockVenueRepository{}, &mockWindowReader{}, auditor)

	venue, err := svc.Create(context.Background(), manager, validVenue(manager.ID))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if venue.ID == "" {
		t.Error("expected venue ID to be set")
	}
	if len(auditor.records) != 1 || auditor.records[0].Action != model.AuditActionCreate {
		t.Errorf("expected one CREATE audit record, got %+v", auditor.records)
	}
}

func TestCreate_ManagerForSomeoneElseForbidden(t *testing.T) {
	svc := newService(&mockVenueRepository{}, &mockWindowReader{}, &mockAuditor{})

	_, err := svc.Create(context.Background(), manager, validVenue("other-manager"))
	if apperrors.AsAppError(err).Code != apperrors.CodeForbidden {
		t.Fatalf("expected FORBIDDEN, got %v", err)
	}
}

func TestCreate_CustomerForbidden(t *testing.T) {
	svc := newService(&mockVenueRepository{}, &mockWindowReader{}, &mockAuditor{})

	_, err := svc.Create(context.Background(), customer, validVenue(""))
	if apperrors.AsAppError(err).Code != apperrors.CodeForbidden {
		t.Fatalf("expected FORBIDDEN, got %v", err)
	}
}

func TestCreate_InvalidWorkingHours(t *testing.T) {
	svc := newService(&mockVenueRepository{}, &mockWindowReader{}, &mockAuditor{})

	venue := validVenue("admin-1")
	venue.WorkingStartTime = "25:00"
	_, err := svc.Create(context.Background(), superadmin, venue)
	if apperrors.AsAppError(err).Code != apperrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestUpdate_ForeignManagerForbidden(t *testing.T) {
	repo := &mockVenueRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Venue, error) {
			venue := validVenue("other-manager")
			venue.ID = id
			return venue, nil
		},
	}
	svc := newService(repo, &mockWindowReader{}, &mockAuditor{})

	capacity := 100
	_, err := svc.Update(context.Background(), manager, "65f000000000000000000001", &model.VenueUpdate{Capacity: &capacity})
	if apperrors.AsAppError(err).Code != apperrors.CodeForbidden {
		t.Fatalf("expected FORBIDDEN, got %v", err)
	}
}

func TestUpdate_AppliesPartialChanges(t *testing.T) {
	var saved *model.Venue
	repo := &mockVenueRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Venue, error) {
			venue := validVenue(manager.ID)
			venue.ID = id
			return venue, nil
		},
		updateFunc: func(ctx context.Context, id string, venue *model.Venue) error {
			saved = venue
			return nil
		},
	}
	auditor := &mockAuditor{}
	svc := newService(repo, &mockWindowReader{}, auditor)

	capacity := 120
	updated, err := svc.Update(context.Background(), manager, "65f000000000000000000001", &model.VenueUpdate{
		Capacity:       &capacity,
		WorkingEndTime: "22:00",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Capacity != 120 || updated.WorkingEndTime != "22:00" {
		t.Errorf("update not applied: %+v", updated)
	}
	if updated.Name != "Velodrome East" {
		t.Errorf("untouched fields must be preserved, got name %q", updated.Name)
	}
	if saved == nil {
		t.Fatal("expected repository update")
	}
	if len(auditor.records) != 1 || auditor.records[0].Action != model.AuditActionUpdate {
		t.Errorf("expected one UPDATE audit record, got %+v", auditor.records)
	}
}

func TestAvailability_BufferWidenedAndClamped(t *testing.T) {
	day := time.Date(2027, 3, 10, 0, 0, 0, 0, time.UTC)

	repo := &mockVenueRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Venue, error) {
			venue := validVenue(manager.ID)
			venue.ID = id
			venue.BufferTimeMinutes = 30
			return venue, nil
		},
	}
	bookings := &mockWindowReader{
		findActiveFunc: func(ctx context.Context, venueID string, start, end time.Time, excludeID string) ([]*model.Booking, error) {
			return []*model.Booking{
				{
					ID:        "b2",
					Status:    model.StatusApproved,
					StartTime: day.Add(14 * time.Hour),
					EndTime:   day.Add(16 * time.Hour),
				},
				{
					// Crosses midnight into the queried day; must be
					// clamped to the day start.
					ID:        "b1",
					Status:    model.StatusRequested,
					StartTime: day.Add(-2 * time.Hour),
					EndTime:   day.Add(1 * time.Hour),
				},
			}, nil
		},
	}
	svc := newService(repo, bookings, &mockAuditor{})

	availability, err := svc.Availability(context.Background(), customer, "65f000000000000000000001", "2027-03-10")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(availability.BusySlots) != 2 {
		t.Fatalf("expected 2 busy slots, got %d", len(availability.BusySlots))
	}

	first := availability.BusySlots[0]
	if !first.Start.Equal(day) {
		t.Errorf("slot crossing midnight must clamp to day start, got %v", first.Start)
	}
	if !first.End.Equal(day.Add(90 * time.Minute)) {
		t.Errorf("expected first slot to end at 01:30 (end + buffer), got %v", first.End)
	}

	second := availability.BusySlots[1]
	if !second.Start.Equal(day.Add(13*time.Hour + 30*time.Minute)) {
		t.Errorf("expected second slot to start at 13:30 (start - buffer), got %v", second.Start)
	}
	if !second.End.Equal(day.Add(16*time.Hour + 30*time.Minute)) {
		t.Errorf("expected second slot to end at 16:30 (end + buffer), got %v", second.End)
	}
}

func TestAvailability_InvalidDate(t *testing.T) {
	svc := newService(&mockVenueRepository{}, &mockWindowReader{}, &mockAuditor{})

	_, err := svc.Availability(context.Background(), customer, "65f000000000000000000001", "10/03/2027")
	if apperrors.AsAppError(err).Code != apperrors.CodeInvalidInput {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}
}

func TestDelete_ManagerOwnVenue(t *testing.T) {
	repo := &mockVenueRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Venue, error) {
			venue := validVenue(manager.ID)
			venue.ID = id
			return venue, nil
		},
	}
	auditor := &mockAuditor{}
	svc := newService(repo, &mockWindowReader{}, auditor)

	if err := svc.Delete(context.Background(), manager, "65f000000000000000000001"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(auditor.records) != 1 || auditor.records[0].Action != model.AuditActionDelete {
		t.Errorf("expected one DELETE audit record, got %+v", auditor.records)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	svc := newService(&mockVenueRepository{}, &mockWindowReader{}, &mockAuditor{})

	_, err := svc.GetByID(context.Background(), customer, "65f000000000000000000001")
	if apperrors.AsAppError(err).Code != apperrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}
