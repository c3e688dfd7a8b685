// Package events defines the booking lifecycle stream published to
// Kafka after each accepted mutation. Consumers (the notifier worker,
// external integrations) get the full slot coordinates so they never
// need to call back into the core.
package events

import (
	"time"

	"github.com/google/uuid"

	"venuebook/pkg/model"
)

const (
	TypeBookingRequested = "booking_requested"
	TypeBookingApproved  = "booking_approved"
	TypeBookingDenied    = "booking_denied"
	TypeBookingCancelled = "booking_cancelled"
	TypeBookingCompleted = "booking_completed"
	TypeBookingDeleted   = "booking_deleted"
)

type BookingEvent struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	BookingID   string    `json:"booking_id"`
	VenueID     string    `json:"venue_id"`
	TeamID      string    `json:"team_id"`
	RequesterID string    `json:"requester_id"`
	ActorID     string    `json:"actor_id"`
	Status      string    `json:"status"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// FromBooking builds the event for a mutation performed by actorID.
func FromBooking(eventType string, b *model.Booking, actorID string) BookingEvent {
	return BookingEvent{
		ID:          uuid.NewString(),
		Type:        eventType,
		BookingID:   b.ID,
		VenueID:     b.VenueID,
		TeamID:      b.TeamID,
		RequesterID: b.RequesterID,
		ActorID:     actorID,
		Status:      b.Status,
		StartTime:   b.StartTime,
		EndTime:     b.EndTime,
		OccurredAt:  time.Now().UTC(),
	}
}
