package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

const (
	AuditActionCreate = "CREATE"
	AuditActionUpdate = "UPDATE"
	AuditActionDelete = "DELETE"
)

// AuditRecord is an append-only change log entry. Records are written
// once per mutating operation and never updated.
type AuditRecord struct {
	ID         string    `json:"id,omitempty" bson:"_id,omitempty"`
	ActorID    string    `json:"actor_id" bson:"actor_id"`
	Action     string    `json:"action" bson:"action"`
	EntityType string    `json:"entity_type" bson:"entity_type"`
	EntityID   string    `json:"entity_id" bson:"entity_id"`
	OldValue   bson.M    `json:"old_value,omitempty" bson:"old_value,omitempty"`
	NewValue   bson.M    `json:"new_value,omitempty" bson:"new_value,omitempty"`
	RequestID  string    `json:"request_id,omitempty" bson:"request_id,omitempty"`
	RemoteAddr string    `json:"remote_addr,omitempty" bson:"remote_addr,omitempty"`
	Timestamp  time.Time `json:"timestamp" bson:"timestamp"`
}
