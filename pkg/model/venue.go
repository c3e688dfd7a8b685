package model

import "time"

type Venue struct {
	ID                string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name              string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	SportID           string    `json:"sport_id,omitempty" bson:"sport_id,omitempty" validate:"omitempty"`
	ManagerID         string    `json:"manager_id,omitempty" bson:"manager_id,omitempty" validate:"omitempty"`
	Capacity          int       `json:"capacity" bson:"capacity" validate:"required,min=1,max=10000"`
	WorkingStartTime  string    `json:"working_start_time" bson:"working_start_time" validate:"required,working_hour"`
	WorkingEndTime    string    `json:"working_end_time" bson:"working_end_time" validate:"required,working_hour"`
	BufferTimeMinutes int       `json:"buffer_time_minutes" bson:"buffer_time_minutes" validate:"min=0,max=240"`
	CreatedAt         time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt         time.Time `json:"updated_at" bson:"updated_at" validate:"omitempty"`
}

type VenueUpdate struct {
	Name              string `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	SportID           string `json:"sport_id,omitempty" validate:"omitempty"`
	ManagerID         string `json:"manager_id,omitempty" validate:"omitempty"`
	Capacity          *int   `json:"capacity,omitempty" validate:"omitempty,min=1,max=10000"`
	WorkingStartTime  string `json:"working_start_time,omitempty" validate:"omitempty,working_hour"`
	WorkingEndTime    string `json:"working_end_time,omitempty" validate:"omitempty,working_hour"`
	BufferTimeMinutes *int   `json:"buffer_time_minutes,omitempty" validate:"omitempty,min=0,max=240"`
}

// Buffer is the margin added around existing reservations on this venue
// before testing a new request for overlap.
func (v *Venue) Buffer() time.Duration {
	return time.Duration(v.BufferTimeMinutes) * time.Minute
}
