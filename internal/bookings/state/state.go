// Package state holds the booking status transition rules. Decisions
// here are pure so the whole lifecycle is testable without storage.
package state

import (
	"time"

	apperrors "venuebook/pkg/errors"
	"venuebook/pkg/model"
)

// transitions maps each status to the set of statuses it may move to.
// requested and pending are equivalent pre-decision states; denied,
// cancelled and completed are terminal.
var transitions = map[string]map[string]bool{
	model.StatusRequested: {
		model.StatusApproved:  true,
		model.StatusDenied:    true,
		model.StatusCancelled: true,
	},
	model.StatusPending: {
		model.StatusApproved:  true,
		model.StatusDenied:    true,
		model.StatusCancelled: true,
	},
	model.StatusApproved: {
		model.StatusCancelled: true,
		model.StatusCompleted: true,
	},
	model.StatusDenied:    {},
	model.StatusCancelled: {},
	model.StatusCompleted: {},
}

func IsStatus(status string) bool {
	_, ok := transitions[status]
	return ok
}

func IsTerminal(status string) bool {
	targets, ok := transitions[status]
	return ok && len(targets) == 0
}

func IsPreDecision(status string) bool {
	return status == model.StatusRequested || status == model.StatusPending
}

// Validate checks a requested transition and returns the matching
// AppError when it is not allowed.
func Validate(from, to string) error {
	if !IsStatus(to) {
		return apperrors.InvalidInput("Unknown booking status: " + to)
	}
	targets, ok := transitions[from]
	if !ok {
		return apperrors.InvalidInput("Unknown booking status: " + from)
	}
	if !targets[to] {
		return apperrors.InvalidStateTransition(from, to)
	}
	return nil
}

// Apply mutates the booking for an already-validated transition.
// Approval stamps the deciding actor exactly once, when the booking
// leaves its pre-decision state.
func Apply(b *model.Booking, to string, actorID string, now time.Time) {
	if to == model.StatusApproved && IsPreDecision(b.Status) {
		b.ApproverID = actorID
	}
	b.Status = to
	b.UpdatedAt = now
}

// EffectivelyCompleted reports whether an approved booking's slot has
// already ended. Read paths display such bookings as completed without
// waiting for a persisted status change.
func EffectivelyCompleted(b *model.Booking, now time.Time) bool {
	return b.Status == model.StatusApproved && b.EndTime.Before(now)
}
