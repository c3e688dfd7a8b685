package model

import "time"

// VenueLock is an advisory lock serializing check-then-insert per
// venue. The lock document _id is derived from the venue ID, so two
// concurrent creations on the same venue cannot both hold it.
type VenueLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
