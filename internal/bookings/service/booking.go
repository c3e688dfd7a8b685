package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"venuebook/internal/audit"
	bookingserrors "venuebook/internal/bookings/errors"
	"venuebook/internal/bookings/repository"
	"venuebook/internal/bookings/state"
	bookingvalidator "venuebook/internal/bookings/validator"
	"venuebook/internal/events"
	"venuebook/internal/notifications"
	venueserrors "venuebook/internal/venues/errors"
	"venuebook/pkg/config"
	apperrors "venuebook/pkg/errors"
	"venuebook/pkg/logger"
	"venuebook/pkg/middleware"
	"venuebook/pkg/model"
	"venuebook/pkg/outbox"
	"venuebook/pkg/policy"
	"venuebook/pkg/sanitizer"
)

// VenueReader is the slice of the venues repository the booking core
// needs: current venue attributes at decision time.
type VenueReader interface {
	FindByID(ctx context.Context, id string) (*model.Venue, error)
}

// TeamReader resolves a team to its country for the same-country read
// rule. Satisfied by the reference-data client.
type TeamReader interface {
	TeamByID(id string) (*model.Team, error)
}

type BookingService interface {
	Create(ctx context.Context, principal *model.Principal, booking *model.Booking) (*model.Booking, error)
	GetByID(ctx context.Context, principal *model.Principal, id string) (*model.Booking, error)
	List(ctx context.Context, principal *model.Principal, filter *model.BookingFilter, limit int, offset int64) ([]*model.Booking, int64, error)
	Transition(ctx context.Context, principal *model.Principal, id, target string) (*model.Booking, error)
	Cancel(ctx context.Context, principal *model.Principal, id string) (*model.Booking, error)
	Delete(ctx context.Context, principal *model.Principal, id string) error
}

type bookingService struct {
	cfg         *config.Config
	repo        repository.BookingRepository
	locks       repository.VenueLockRepository
	venues      VenueReader
	teams       TeamReader
	validator   *bookingvalidator.BookingValidator
	notifier    notifications.Service
	auditor     audit.Recorder
	publisher   events.Publisher
	sideEffects outbox.Queue
	logger      *logger.Logger
}

func NewBookingService(
	cfg *config.Config,
	repo repository.BookingRepository,
	locks repository.VenueLockRepository,
	venues VenueReader,
	teams TeamReader,
	validator *bookingvalidator.BookingValidator,
	notifier notifications.Service,
	auditor audit.Recorder,
	publisher events.Publisher,
	sideEffects outbox.Queue,
) BookingService {
	return &bookingService{
		cfg:         cfg,
		repo:        repo,
		locks:       locks,
		venues:      venues,
		teams:       teams,
		validator:   validator,
		notifier:    notifier,
		auditor:     auditor,
		publisher:   publisher,
		sideEffects: sideEffects,
		logger:      cfg.Log,
	}
}

func venueLockID(venueID string) string {
	return "venue_lock_" + venueID
}

func (s *bookingService) Create(ctx context.Context, principal *model.Principal, booking *model.Booking) (*model.Booking, error) {
	if principal == nil {
		return nil, apperrors.Unauthorized("Authentication required")
	}
	if !policy.Allow(principal.Role, policy.ActionCreateBooking, policy.Relation{}) {
		return nil, apperrors.Forbidden("You are not allowed to create bookings")
	}

	// The requester is always the authenticated principal; the payload
	// cannot book on someone else's behalf.
	booking.ID = ""
	booking.RequesterID = principal.ID
	booking.ApproverID = ""
	booking.Status = model.StatusRequested
	booking.SpecialRequirements = sanitizer.SanitizeFreeText(booking.SpecialRequirements)

	if err := s.validator.Validate(booking); err != nil {
		return nil, asValidationError(err)
	}

	if s.cfg.MaxBookingDurationEnabled {
		if booking.EndTime.Sub(booking.StartTime) > s.cfg.MaxBookingDuration {
			return nil, apperrors.Validation("Booking exceeds the maximum allowed duration", map[string]any{
				"max_duration": s.cfg.MaxBookingDuration.String(),
			})
		}
	}

	venue, err := s.venues.FindByID(ctx, booking.VenueID)
	if err != nil {
		return nil, mapVenueErr(booking.VenueID, err)
	}

	if booking.ParticipantCount > venue.Capacity {
		return nil, apperrors.Validation("Participant count exceeds venue capacity", map[string]any{
			"participant_count": booking.ParticipantCount,
			"capacity":          venue.Capacity,
		})
	}

	if !withinWorkingHours(venue, booking.StartTime, booking.EndTime) {
		return nil, apperrors.Validation("Booking falls outside the venue's working hours", map[string]any{
			"working_start_time": venue.WorkingStartTime,
			"working_end_time":   venue.WorkingEndTime,
		})
	}

	lockID := venueLockID(venue.ID)
	if err := s.acquireVenueLock(ctx, lockID); err != nil {
		return nil, err
	}
	defer s.releaseVenueLock(lockID)

	buffer := venue.Buffer()
	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		conflicts, err := s.repo.FindActiveForVenueInWindow(
			sessCtx, venue.ID,
			booking.StartTime.Add(-buffer), booking.EndTime.Add(buffer),
			"",
		)
		if err != nil {
			return apperrors.Internal("Failed to check for conflicting bookings", err)
		}
		if len(conflicts) > 0 {
			ids := make([]string, 0, len(conflicts))
			for _, c := range conflicts {
				ids = append(ids, c.ID)
			}
			return apperrors.Conflict("Requested slot conflicts with an existing booking").
				WithDetails(map[string]any{"conflicting_booking_ids": ids})
		}

		if err := s.repo.Create(sessCtx, booking); err != nil {
			return apperrors.Internal("Failed to create booking", err)
		}
		return nil
	})
	if err != nil {
		if apperrors.IsAppError(err) {
			return nil, err
		}
		return nil, apperrors.Internal("Booking creation transaction failed", err)
	}

	s.logger.Info("Booking created",
		"booking_id", booking.ID,
		"venue_id", booking.VenueID,
		"requester_id", booking.RequesterID,
	)

	s.emitCreationSideEffects(ctx, booking, venue)

	return booking, nil
}

func (s *bookingService) GetByID(ctx context.Context, principal *model.Principal, id string) (*model.Booking, error) {
	if principal == nil {
		return nil, apperrors.Unauthorized("Authentication required")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapBookingErr(id, err)
	}

	rel := s.relationFor(ctx, principal, booking, nil)
	if !policy.Allow(principal.Role, policy.ActionReadBooking, rel) {
		return nil, apperrors.Forbidden("You are not allowed to view this booking")
	}

	booking.Status = booking.EffectiveStatus(time.Now())
	return booking, nil
}

func (s *bookingService) List(ctx context.Context, principal *model.Principal, filter *model.BookingFilter, limit int, offset int64) ([]*model.Booking, int64, error) {
	if principal == nil {
		return nil, 0, apperrors.Unauthorized("Authentication required")
	}
	if filter == nil {
		filter = &model.BookingFilter{}
	}
	if filter.Status != "" && !state.IsStatus(filter.Status) {
		return nil, 0, apperrors.InvalidInput("Unknown booking status: " + filter.Status)
	}

	if err := s.scopeListFilter(principal, filter); err != nil {
		return nil, 0, err
	}

	bookings, err := s.repo.Find(ctx, filter, limit, offset)
	if err != nil {
		return nil, 0, apperrors.Internal("Failed to retrieve bookings", err)
	}

	count, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, 0, apperrors.Internal("Failed to count bookings", err)
	}

	now := time.Now()
	for _, b := range bookings {
		b.Status = b.EffectiveStatus(now)
	}

	return bookings, count, nil
}

// scopeListFilter narrows a customer's listing to what the read rule
// allows, so pagination counts stay exact without post-filtering.
// Superadmins and managers list freely.
func (s *bookingService) scopeListFilter(principal *model.Principal, filter *model.BookingFilter) error {
	if principal.Role != model.RoleCustomer {
		return nil
	}

	if filter.RequesterID != "" && filter.RequesterID != principal.ID {
		return apperrors.Forbidden("You may only list your own bookings")
	}

	if filter.TeamID != "" {
		team, err := s.teams.TeamByID(filter.TeamID)
		if err != nil {
			return err
		}
		if principal.CountryCode == "" || team.CountryCode != principal.CountryCode {
			return apperrors.Forbidden("You may only list bookings of teams from your own country")
		}
		return nil
	}

	filter.RequesterID = principal.ID
	return nil
}

func (s *bookingService) Transition(ctx context.Context, principal *model.Principal, id, target string) (*model.Booking, error) {
	if principal == nil {
		return nil, apperrors.Unauthorized("Authentication required")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapBookingErr(id, err)
	}

	// Lifecycle rules come first: a transition out of a terminal status
	// is rejected the same way for every actor, superadmin included.
	if err := state.Validate(booking.Status, target); err != nil {
		return nil, err
	}

	action, ok := transitionActions[target]
	if !ok {
		return nil, apperrors.InvalidInput("Unknown booking status: " + target)
	}

	venue, venueErr := s.venues.FindByID(ctx, booking.VenueID)
	if venueErr != nil {
		venue = nil
	}

	rel := s.relationFor(ctx, principal, booking, venue)
	if !policy.Allow(principal.Role, action, rel) {
		return nil, apperrors.Forbidden(fmt.Sprintf("You are not allowed to move this booking to %s", target))
	}

	oldStatus := booking.Status
	state.Apply(booking, target, principal.ID, time.Now().UTC().Truncate(time.Millisecond))

	// The write is guarded by the status we read: if another request
	// transitioned the booking in between, the update matches nothing
	// and the caller retries against the fresh state.
	if err := s.repo.Update(ctx, booking.ID, oldStatus, booking); err != nil {
		return nil, mapBookingErr(id, err)
	}

	s.logger.Info("Booking transitioned",
		"booking_id", booking.ID,
		"from", oldStatus,
		"to", booking.Status,
		"actor_id", principal.ID,
	)

	s.emitTransitionSideEffects(ctx, principal, booking, venue, oldStatus)

	return booking, nil
}

func (s *bookingService) Cancel(ctx context.Context, principal *model.Principal, id string) (*model.Booking, error) {
	return s.Transition(ctx, principal, id, model.StatusCancelled)
}

func (s *bookingService) Delete(ctx context.Context, principal *model.Principal, id string) error {
	if principal == nil {
		return apperrors.Unauthorized("Authentication required")
	}
	if !policy.Allow(principal.Role, policy.ActionDeleteBooking, policy.Relation{}) {
		return apperrors.Forbidden("You are not allowed to delete bookings")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return mapBookingErr(id, err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return mapBookingErr(id, err)
	}

	s.logger.Info("Booking deleted", "booking_id", id, "actor_id", principal.ID)

	requestID := middleware.RequestIDFromContext(ctx)
	actorID := principal.ID
	s.sideEffects.Enqueue(outbox.Job{
		Name: "audit_booking_delete",
		Run: func(jobCtx context.Context) error {
			return s.auditor.Record(jobCtx, &model.AuditRecord{
				ActorID:    actorID,
				Action:     model.AuditActionDelete,
				EntityType: "booking",
				EntityID:   booking.ID,
				OldValue:   bookingSnapshot(booking),
				RequestID:  requestID,
			})
		},
	})
	s.sideEffects.Enqueue(outbox.Job{
		Name: "notify_booking_delete",
		Run: func(jobCtx context.Context) error {
			return s.notifier.Emit(jobCtx, &model.Notification{
				UserID:    booking.RequesterID,
				Type:      model.NotifBookingCancelled,
				Title:     "Booking removed",
				Message:   "Your booking was removed by an administrator.",
				BookingID: booking.ID,
			})
		},
	})
	s.sideEffects.Enqueue(outbox.Job{
		Name: "publish_booking_deleted",
		Run: func(jobCtx context.Context) error {
			return s.publisher.Publish(jobCtx, events.FromBooking(events.TypeBookingDeleted, booking, actorID))
		},
	})

	return nil
}

// relationFor resolves the ownership facts for one authorization
// decision. Lookups are best-effort: a failed venue or team fetch
// resolves the corresponding relation to false, which can only deny.
func (s *bookingService) relationFor(ctx context.Context, principal *model.Principal, booking *model.Booking, venue *model.Venue) policy.Relation {
	rel := policy.Relation{
		Requester: booking.RequesterID == principal.ID,
	}

	if principal.Role == model.RoleManager {
		if venue == nil {
			v, err := s.venues.FindByID(ctx, booking.VenueID)
			if err != nil {
				s.logger.Warn("Failed to resolve venue for authorization",
					"venue_id", booking.VenueID, "error", err)
			} else {
				venue = v
			}
		}
		if venue != nil {
			rel.VenueManager = venue.ManagerID == principal.ID
		}
	}

	if principal.Role == model.RoleCustomer && !rel.Requester && principal.CountryCode != "" {
		team, err := s.teams.TeamByID(booking.TeamID)
		if err != nil {
			s.logger.Warn("Failed to resolve team for authorization",
				"team_id", booking.TeamID, "error", err)
		} else {
			rel.SameCountryTeam = team.CountryCode == principal.CountryCode
		}
	}

	return rel
}

func (s *bookingService) acquireVenueLock(ctx context.Context, lockID string) error {
	lock := &model.VenueLock{
		ID:        lockID,
		ExpiresAt: time.Now().Add(s.cfg.VenueLockTTL),
	}

	if err := s.locks.Acquire(ctx, lock); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.Conflict("Another booking request for this venue is in progress, please retry")
		}
		return apperrors.Internal("Failed to acquire venue lock", err)
	}
	return nil
}

// releaseVenueLock uses a fresh context so the lock is freed even when
// the request context has already been cancelled. The TTL index is the
// backstop if this write fails.
func (s *bookingService) releaseVenueLock(lockID string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.WriteTimeout)
	defer cancel()

	if err := s.locks.Release(ctx, lockID); err != nil {
		s.logger.Warn("Failed to release venue lock", "lock_id", lockID, "error", err)
	}
}

func (s *bookingService) emitCreationSideEffects(ctx context.Context, booking *model.Booking, venue *model.Venue) {
	requestID := middleware.RequestIDFromContext(ctx)
	created := *booking

	s.sideEffects.Enqueue(outbox.Job{
		Name: "audit_booking_create",
		Run: func(jobCtx context.Context) error {
			return s.auditor.Record(jobCtx, &model.AuditRecord{
				ActorID:    created.RequesterID,
				Action:     model.AuditActionCreate,
				EntityType: "booking",
				EntityID:   created.ID,
				NewValue:   bookingSnapshot(&created),
				RequestID:  requestID,
			})
		},
	})
	// One notification per accepted mutation: creation addresses the
	// venue's manager, who owns the pending decision.
	if venue.ManagerID != "" {
		managerID := venue.ManagerID
		venueName := venue.Name
		s.sideEffects.Enqueue(outbox.Job{
			Name: "notify_manager_booking_requested",
			Run: func(jobCtx context.Context) error {
				return s.notifier.Emit(jobCtx, &model.Notification{
					UserID:    managerID,
					Type:      model.NotifBookingRequested,
					Title:     "New booking request",
					Message:   fmt.Sprintf("A new booking at %s needs your decision.", venueName),
					BookingID: created.ID,
				})
			},
		})
	}
	s.sideEffects.Enqueue(outbox.Job{
		Name: "publish_booking_requested",
		Run: func(jobCtx context.Context) error {
			return s.publisher.Publish(jobCtx, events.FromBooking(events.TypeBookingRequested, &created, created.RequesterID))
		},
	})
}

func (s *bookingService) emitTransitionSideEffects(ctx context.Context, principal *model.Principal, booking *model.Booking, venue *model.Venue, oldStatus string) {
	requestID := middleware.RequestIDFromContext(ctx)
	actorID := principal.ID
	updated := *booking

	s.sideEffects.Enqueue(outbox.Job{
		Name: "audit_booking_transition",
		Run: func(jobCtx context.Context) error {
			return s.auditor.Record(jobCtx, &model.AuditRecord{
				ActorID:    actorID,
				Action:     model.AuditActionUpdate,
				EntityType: "booking",
				EntityID:   updated.ID,
				OldValue:   bson.M{"status": oldStatus},
				NewValue:   bson.M{"status": updated.Status, "approver_id": updated.ApproverID},
				RequestID:  requestID,
			})
		},
	})

	if notifType, ok := transitionNotifTypes[updated.Status]; ok {
		// Self-cancellations notify the venue manager instead of echoing
		// the requester's own action back at them.
		recipient := updated.RequesterID
		if updated.Status == model.StatusCancelled && actorID == updated.RequesterID {
			recipient = ""
			if venue != nil {
				recipient = venue.ManagerID
			}
		}
		if recipient != "" {
			status := updated.Status
			s.sideEffects.Enqueue(outbox.Job{
				Name: "notify_booking_" + status,
				Run: func(jobCtx context.Context) error {
					return s.notifier.Emit(jobCtx, &model.Notification{
						UserID:    recipient,
						Type:      notifType,
						Title:     "Booking " + status,
						Message:   fmt.Sprintf("Booking %s is now %s.", updated.ID, status),
						BookingID: updated.ID,
					})
				},
			})
		}
	}

	if eventType, ok := transitionEventTypes[updated.Status]; ok {
		s.sideEffects.Enqueue(outbox.Job{
			Name: "publish_" + eventType,
			Run: func(jobCtx context.Context) error {
				return s.publisher.Publish(jobCtx, events.FromBooking(eventType, &updated, actorID))
			},
		})
	}
}

var transitionActions = map[string]policy.Action{
	model.StatusApproved:  policy.ActionApproveBooking,
	model.StatusDenied:    policy.ActionDenyBooking,
	model.StatusCancelled: policy.ActionCancelBooking,
	model.StatusCompleted: policy.ActionCompleteBooking,
}

var transitionNotifTypes = map[string]string{
	model.StatusApproved:  model.NotifBookingApproved,
	model.StatusDenied:    model.NotifBookingDenied,
	model.StatusCancelled: model.NotifBookingCancelled,
}

var transitionEventTypes = map[string]string{
	model.StatusApproved:  events.TypeBookingApproved,
	model.StatusDenied:    events.TypeBookingDenied,
	model.StatusCancelled: events.TypeBookingCancelled,
	model.StatusCompleted: events.TypeBookingCompleted,
}

// withinWorkingHours checks the booking against the venue's daily
// window in UTC. The booking must not span midnight; ending exactly at
// closing time is allowed.
func withinWorkingHours(venue *model.Venue, start, end time.Time) bool {
	open, err := time.Parse("15:04", venue.WorkingStartTime)
	if err != nil {
		return false
	}
	closing, err := time.Parse("15:04", venue.WorkingEndTime)
	if err != nil {
		return false
	}

	start = start.UTC()
	end = end.UTC()

	sy, sm, sd := start.Date()
	ey, em, ed := end.Date()
	if sy != ey || sm != em || sd != ed {
		return false
	}

	openMin := open.Hour()*60 + open.Minute()
	closeMin := closing.Hour()*60 + closing.Minute()
	startMin := start.Hour()*60 + start.Minute()
	endMin := end.Hour()*60 + end.Minute()

	return startMin >= openMin && endMin <= closeMin
}

func bookingSnapshot(b *model.Booking) bson.M {
	return bson.M{
		"venue_id":          b.VenueID,
		"team_id":           b.TeamID,
		"requester_id":      b.RequesterID,
		"approver_id":       b.ApproverID,
		"status":            b.Status,
		"start_time":        b.StartTime,
		"end_time":          b.EndTime,
		"participant_count": b.ParticipantCount,
	}
}

func asValidationError(err error) error {
	var verrs bookingvalidator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]any, len(verrs))
		for _, ve := range verrs {
			fields[ve.Field] = ve.Message
		}
		return apperrors.Validation("Booking validation failed", fields)
	}
	return apperrors.Validation(err.Error(), nil)
}

func mapBookingErr(id string, err error) error {
	switch {
	case errors.Is(err, bookingserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Booking", id)
	case errors.Is(err, bookingserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid booking ID format")
	case errors.Is(err, bookingserrors.ErrStaleStatus):
		return apperrors.Conflict("Booking was modified by another request, please retry")
	case apperrors.IsAppError(err):
		return err
	default:
		return apperrors.Internal("Booking storage operation failed", err)
	}
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
