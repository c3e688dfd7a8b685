package model

import (
	"time"
)

// Booking statuses. "requested" and "pending" are both pre-decision
// states and are treated identically by the transition rules.
const (
	StatusRequested = "requested"
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusDenied    = "denied"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
)

type Booking struct {
	ID                  string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	VenueID             string    `json:"venue_id" bson:"venue_id" validate:"required,mongodb"`
	TeamID              string    `json:"team_id" bson:"team_id" validate:"required,mongodb"`
	RequesterID         string    `json:"requester_id" bson:"requester_id" validate:"required"`
	ApproverID          string    `json:"approver_id,omitempty" bson:"approver_id,omitempty" validate:"omitempty"`
	StartTime           time.Time `json:"start_time" bson:"start_time" validate:"required"`
	EndTime             time.Time `json:"end_time" bson:"end_time" validate:"required,gtfield=StartTime"`
	ParticipantCount    int       `json:"participant_count" bson:"participant_count" validate:"required,min=1,max=500"`
	SpecialRequirements string    `json:"special_requirements,omitempty" bson:"special_requirements,omitempty" validate:"omitempty,max=500"`
	Status              string    `json:"status" bson:"status" validate:"required,oneof=requested pending approved denied cancelled completed"`
	CreatedAt           time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt           time.Time `json:"updated_at" bson:"updated_at" validate:"omitempty"`
}

// EffectiveStatus is the status read paths must display. An approved
// booking whose slot has already ended counts as completed even before
// the stored status is updated, so listings and availability never
// disagree about whether the slot is free.
func (b *Booking) EffectiveStatus(now time.Time) string {
	if b.Status == StatusApproved && b.EndTime.Before(now) {
		return StatusCompleted
	}
	return b.Status
}

// IsActiveStatus reports whether a booking in the given status occupies
// its time slot for conflict purposes.
func IsActiveStatus(status string) bool {
	switch status {
	case StatusRequested, StatusPending, StatusApproved:
		return true
	}
	return false
}

// BookingFilter combines listing filters with AND semantics. The time
// window matches bookings overlapping [StartTime, EndTime).
type BookingFilter struct {
	VenueID     string
	TeamID      string
	RequesterID string
	Status      string
	StartTime   *time.Time
	EndTime     *time.Time
}
