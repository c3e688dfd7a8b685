package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"venuebook/internal/audit"
	venueserrors "venuebook/internal/venues/errors"
	"venuebook/internal/venues/repository"
	venuevalidator "venuebook/internal/venues/validator"
	"venuebook/pkg/config"
	apperrors "venuebook/pkg/errors"
	"venuebook/pkg/logger"
	"venuebook/pkg/middleware"
	"venuebook/pkg/model"
	"venuebook/pkg/outbox"
	"venuebook/pkg/policy"
)

// BookingWindowReader is the slice of the bookings repository needed to
// compute availability: every active booking overlapping a window.
type BookingWindowReader interface {
	FindActiveForVenueInWindow(ctx context.Context, venueID string, start, end time.Time, excludeBookingID string) ([]*model.Booking, error)
}

// BusySlot is an occupied interval on a venue's day schedule, already
// widened by the venue buffer.
type BusySlot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type DayAvailability struct {
	VenueID          string     `json:"venue_id"`
	Date             string     `json:"date"`
	WorkingStartTime string     `json:"working_start_time"`
	WorkingEndTime   string     `json:"working_end_time"`
	BusySlots        []BusySlot `json:"busy_slots"`
}

type VenueService interface {
	Create(ctx context.Context, principal *model.Principal, venue *model.Venue) (*model.Venue, error)
	GetByID(ctx context.Context, principal *model.Principal, id string) (*model.Venue, error)
	List(ctx context.Context, principal *model.Principal, limit int, offset int64) ([]*model.Venue, int64, error)
	Update(ctx context.Context, principal *model.Principal, id string, update *model.VenueUpdate) (*model.Venue, error)
	Delete(ctx context.Context, principal *model.Principal, id string) error
	Availability(ctx context.Context, principal *model.Principal, id string, date string) (*DayAvailability, error)
}

type venueService struct {
	cfg         *config.Config
	repo        repository.VenueRepository
	bookings    BookingWindowReader
	validator   *venuevalidator.VenueValidator
	auditor     audit.Recorder
	sideEffects outbox.Queue
	logger      *logger.Logger
}

func NewVenueService(
	cfg *config.Config,
	repo repository.VenueRepository,
	bookings BookingWindowReader,
	validator *venuevalidator.VenueValidator,
	auditor audit.Recorder,
	sideEffects outbox.Queue,
) VenueService {
	return &venueService{
		cfg:         cfg,
		repo:        repo,
		bookings:    bookings,
		validator:   validator,
		auditor:     auditor,
		sideEffects: sideEffects,
		logger:      cfg.Log,
	}
}

func (s *venueService) Create(ctx context.Context, principal *model.Principal, venue *model.Venue) (*model.Venue, error) {
	if principal == nil {
		return nil, apperrors.Unauthorized("Authentication required")
	}

	// A manager may only create venues assigned to themselves.
	rel := policy.Relation{VenueManager: venue.ManagerID == principal.ID}
	if !policy.Allow(principal.Role, policy.ActionManageVenue, rel) {
		return nil, apperrors.Forbidden("You are not allowed to create venues")
	}

	venue.ID = ""
	if err := s.validator.Validate(venue); err != nil {
		return nil, asValidationError(err)
	}

	if err := s.repo.Create(ctx, venue); err != nil {
		return nil, apperrors.Internal("Failed to create venue", err)
	}

	s.logger.Info("Venue created", "venue_id", venue.ID, "name", venue.Name, "actor_id", principal.ID)
	s.auditVenueChange(ctx, principal, model.AuditActionCreate, venue.ID, nil, venueSnapshot(venue))

	return venue, nil
}

func (s *venueService) GetByID(ctx context.Context, principal *model.Principal, id string) (*model.Venue, error) {
	if principal == nil {
		return nil, apperrors.Unauthorized("Authentication required")
	}
	if !policy.Allow(principal.Role, policy.ActionReadVenue, policy.Relation{}) {
		return nil, apperrors.Forbidden("You are not allowed to view venues")
	}

	venue, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapVenueErr(id, err)
	}
	return venue, nil
}

func (s *venueService) List(ctx context.Context, principal *model.Principal, limit int, offset int64) ([]*model.Venue, int64, error) {
	if principal == nil {
		return nil, 0, apperrors.Unauthorized("Authentication required")
	}
	if !policy.Allow(principal.Role, policy.ActionReadVenue, policy.Relation{}) {
		return nil, 0, apperrors.Forbidden("You are not allowed to view venues")
	}

	venues, err := s.repo.FindAll(ctx, limit, offset)
	if err != nil {
		return nil, 0, apperrors.Internal("Failed to retrieve venues", err)
	}

	count, err := s.repo.Count(ctx)
	if err != nil {
		return nil, 0, apperrors.Internal("Failed to count venues", err)
	}

	return venues, count, nil
}

func (s *venueService) Update(ctx context.Context, principal *model.Principal, id string, update *model.VenueUpdate) (*model.Venue, error) {
	if principal == nil {
		return nil, apperrors.Unauthorized("Authentication required")
	}

	venue, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapVenueErr(id, err)
	}

	rel := policy.Relation{VenueManager: venue.ManagerID == principal.ID}
	if !policy.Allow(principal.Role, policy.ActionManageVenue, rel) {
		return nil, apperrors.Forbidden("You are not allowed to manage this venue")
	}

	if err := s.validator.ValidateUpdate(update); err != nil {
		return nil, asValidationError(err)
	}

	oldSnapshot := venueSnapshot(venue)
	applyUpdate(venue, update)
	if err := s.validator.Validate(venue); err != nil {
		return nil, asValidationError(err)
	}

	if err := s.repo.Update(ctx, id, venue); err != nil {
		return nil, mapVenueErr(id, err)
	}

	s.logger.Info("Venue updated", "venue_id", id, "actor_id", principal.ID)
	s.auditVenueChange(ctx, principal, model.AuditActionUpdate, id, oldSnapshot, venueSnapshot(venue))

	return venue, nil
}

func (s *venueService) Delete(ctx context.Context, principal *model.Principal, id string) error {
	if principal == nil {
		return apperrors.Unauthorized("Authentication required")
	}

	venue, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return mapVenueErr(id, err)
	}

	rel := policy.Relation{VenueManager: venue.ManagerID == principal.ID}
	if !policy.Allow(principal.Role, policy.ActionManageVenue, rel) {
		return apperrors.Forbidden("You are not allowed to manage this venue")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return mapVenueErr(id, err)
	}

	s.logger.Info("Venue deleted", "venue_id", id, "actor_id", principal.ID)
	s.auditVenueChange(ctx, principal, model.AuditActionDelete, id, venueSnapshot(venue), nil)

	return nil
}

// Availability reports the occupied intervals of one venue day. Slots
// are widened by the venue buffer so a client sees exactly the windows
// a new booking would collide with.
func (s *venueService) Availability(ctx context.Context, principal *model.Principal, id string, date string) (*DayAvailability, error) {
	if principal == nil {
		return nil, apperrors.Unauthorized("Authentication required")
	}
	if !policy.Allow(principal.Role, policy.ActionReadVenue, policy.Relation{}) {
		return nil, apperrors.Forbidden("You are not allowed to view venues")
	}

	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil, apperrors.InvalidInput("invalid date, must be YYYY-MM-DD")
	}

	venue, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapVenueErr(id, err)
	}

	dayStart := day.UTC()
	dayEnd := dayStart.Add(24 * time.Hour)

	buffer := venue.Buffer()
	bookings, err := s.bookings.FindActiveForVenueInWindow(ctx, venue.ID, dayStart.Add(-buffer), dayEnd.Add(buffer), "")
	if err != nil {
		return nil, apperrors.Internal("Failed to load bookings for availability", err)
	}

	slots := make([]BusySlot, 0, len(bookings))
	for _, b := range bookings {
		if !model.IsActiveStatus(b.EffectiveStatus(time.Now())) {
			continue
		}
		start := b.StartTime.Add(-buffer)
		end := b.EndTime.Add(buffer)
		if start.Before(dayStart) {
			start = dayStart
		}
		if end.After(dayEnd) {
			end = dayEnd
		}
		if !start.Before(end) {
			continue
		}
		slots = append(slots, BusySlot{Start: start, End: end})
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i].Start.Before(slots[j].Start) })

	return &DayAvailability{
		VenueID:          venue.ID,
		Date:             date,
		WorkingStartTime: venue.WorkingStartTime,
		WorkingEndTime:   venue.WorkingEndTime,
		BusySlots:        slots,
	}, nil
}

func (s *venueService) auditVenueChange(ctx context.Context, principal *model.Principal, action, venueID string, oldValue, newValue bson.M) {
	requestID := middleware.RequestIDFromContext(ctx)
	actorID := principal.ID
	s.sideEffects.Enqueue(outbox.Job{
		Name: "audit_venue_" + action,
		Run: func(jobCtx context.Context) error {
			return s.auditor.Record(jobCtx, &model.AuditRecord{
				ActorID:    actorID,
				Action:     action,
				EntityType: "venue",
				EntityID:   venueID,
				OldValue:   oldValue,
				NewValue:   newValue,
				RequestID:  requestID,
			})
		},
	})
}

func applyUpdate(venue *model.Venue, update *model.VenueUpdate) {
	if update.Name != "" {
		venue.Name = update.Name
	}
	if update.SportID != "" {
		venue.SportID = update.SportID
	}
	if update.ManagerID != "" {
		venue.ManagerID = update.ManagerID
	}
	if update.Capacity != nil {
		venue.Capacity = *update.Capacity
	}
	if update.WorkingStartTime != "" {
		venue.WorkingStartTime = update.WorkingStartTime
	}
	if update.WorkingEndTime != "" {
		venue.WorkingEndTime = update.WorkingEndTime
	}
	if update.BufferTimeMinutes != nil {
		venue.BufferTimeMinutes = *update.BufferTimeMinutes
	}
}

func venueSnapshot(v *model.Venue) bson.M {
	return bson.M{
		"name":                v.Name,
		"sport_id":            v.SportID,
		"manager_id":          v.ManagerID,
		"capacity":            v.Capacity,
		"working_start_time":  v.WorkingStartTime,
		"working_end_time":    v.WorkingEndTime,
		"buffer_time_minutes": v.BufferTimeMinutes,
	}
}

func asValidationError(err error) error {
	var verrs venuevalidator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]any, len(verrs))
		for _, ve := range verrs {
			fields[ve.Field] = ve.Message
		}
		return apperrors.Validation("Venue validation failed", fields)
	}
	return apperrors.Validation(err.Error(), nil)
}

func mapVenueErr(id string, err error) error {
	switch {
	case errors.Is(err, venueserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Venue", id)
	case errors.Is(err, venueserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid venue ID format")
	case apperrors.IsAppError(err):
		return err
	default:
		return apperrors.Internal("Venue storage operation failed", err)
	}
}
