package model

import "time"

// Notification types form a closed set; anything else is rejected by
// the emitter.
const (
	NotifBookingRequested = "booking_requested"
	NotifBookingApproved  = "booking_approved"
	NotifBookingDenied    = "booking_denied"
	NotifBookingCancelled = "booking_cancelled"
	NotifBookingReminder  = "booking_reminder"
	NotifSystemAlert      = "system_alert"
)

type Notification struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty"`
	UserID    string    `json:"user_id" bson:"user_id"`
	Type      string    `json:"type" bson:"type"`
	Title     string    `json:"title" bson:"title"`
	Message   string    `json:"message" bson:"message"`
	BookingID string    `json:"booking_id,omitempty" bson:"booking_id,omitempty"`
	IsRead    bool      `json:"is_read" bson:"is_read"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

func IsNotificationType(t string) bool {
	switch t {
	case NotifBookingRequested, NotifBookingApproved, NotifBookingDenied,
		NotifBookingCancelled, NotifBookingReminder, NotifSystemAlert:
		return true
	}
	return false
}
