// Package policy decides whether a principal may perform an action on
// an entity, given the ownership relations between them. It is a pure
// lookup over (role, action, relation) with no transport or storage
// dependencies, so the whole authorization matrix is unit-testable in
// isolation. Deny by default: an action succeeds only if a rule
// explicitly allows it.
package policy

import "venuebook/pkg/model"

type Action string

const (
	ActionCreateBooking   Action = "booking:create"
	ActionReadBooking     Action = "booking:read"
	ActionApproveBooking  Action = "booking:approve"
	ActionDenyBooking     Action = "booking:deny"
	ActionCancelBooking   Action = "booking:cancel"
	ActionCompleteBooking Action = "booking:complete"
	ActionDeleteBooking   Action = "booking:delete"
	ActionManageVenue     Action = "venue:manage"
	ActionReadVenue       Action = "venue:read"
	ActionReadAudit       Action = "audit:read"
)

// Relation carries the ownership facts relevant to a single decision.
// Callers resolve these against current data per call; nothing here is
// cached on the principal.
type Relation struct {
	// Requester is true when the principal created the booking.
	Requester bool
	// VenueManager is true when the principal manages the booking's
	// venue (venue.ManagerID == principal.ID).
	VenueManager bool
	// SameCountryTeam is true when the booking's team belongs to the
	// principal's country.
	SameCountryTeam bool
}

type rule func(rel Relation) bool

func always(Relation) bool        { return true }
func never(Relation) bool         { return false }
func ifManager(rel Relation) bool { return rel.VenueManager }
func ifOwn(rel Relation) bool     { return rel.Requester }

func ifManagerOrOwn(rel Relation) bool {
	return rel.VenueManager || rel.Requester
}

func ifOwnOrSameCountry(rel Relation) bool {
	return rel.Requester || rel.SameCountryTeam
}

var rules = map[string]map[Action]rule{
	model.RoleSuperadmin: {
		ActionCreateBooking:   always,
		ActionReadBooking:     always,
		ActionApproveBooking:  always,
		ActionDenyBooking:     always,
		ActionCancelBooking:   always,
		ActionCompleteBooking: always,
		ActionDeleteBooking:   always,
		ActionManageVenue:     always,
		ActionReadVenue:       always,
		ActionReadAudit:       always,
	},
	model.RoleManager: {
		ActionCreateBooking:   always,
		ActionReadBooking:     always,
		ActionApproveBooking:  ifManager,
		ActionDenyBooking:     ifManager,
		ActionCancelBooking:   ifManagerOrOwn,
		ActionCompleteBooking: ifManager,
		ActionDeleteBooking:   never,
		ActionManageVenue:     ifManager,
		ActionReadVenue:       always,
		ActionReadAudit:       never,
	},
	model.RoleCustomer: {
		ActionCreateBooking:   always,
		ActionReadBooking:     ifOwnOrSameCountry,
		ActionApproveBooking:  never,
		ActionDenyBooking:     never,
		ActionCancelBooking:   ifOwn,
		ActionCompleteBooking: never,
		ActionDeleteBooking:   never,
		ActionManageVenue:     never,
		ActionReadVenue:       always,
		ActionReadAudit:       never,
	},
}

// Allow reports whether the role may perform the action given the
// resolved ownership relations. Unknown roles and unknown actions are
// denied.
func Allow(role string, action Action, rel Relation) bool {
	actions, ok := rules[role]
	if !ok {
		return false
	}
	r, ok := actions[action]
	if !ok {
		return false
	}
	return r(rel)
}
