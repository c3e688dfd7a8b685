package validator

import (
	"testing"

	"venuebook/pkg/logger"
	"venuebook/pkg/model"
)

func newValidator() *VenueValidator {
	log := logger.New(logger.Config{
		Level:     "error",
		Format:    logger.JSON,
		AddSource: false,
		Service:   "test",
	})
	return NewVenueValidator(log)
}

func validVenue() *model.Venue {
	return &model.Venue{
		Name:              "Olympic Shooting Range",
		Capacity:          40,
		WorkingStartTime:  "08:00",
		WorkingEndTime:    "20:00",
		BufferTimeMinutes: 15,
	}
}

func TestValidate(t *testing.T) {
	v := newValidator()

	tests := []struct {
		name      string
		mutate    func(venue *model.Venue)
		wantError bool
	}{
		{
			name:      "valid venue",
			mutate:    func(venue *model.Venue) {},
			wantError: false,
		},
		{
			name:      "name too short",
			mutate:    func(venue *model.Venue) { venue.Name = "A" },
			wantError: true,
		},
		{
			name:      "zero capacity",
			mutate:    func(venue *model.Venue) { venue.Capacity = 0 },
			wantError: true,
		},
		{
			name:      "midnight open is valid",
			mutate:    func(venue *model.Venue) { venue.WorkingStartTime = "00:00" },
			wantError: false,
		},
		{
			name:      "last minute close is valid",
			mutate:    func(venue *model.Venue) { venue.WorkingEndTime = "23:59" },
			wantError: false,
		},
		{
			name:      "hour out of range",
			mutate:    func(venue *model.Venue) { venue.WorkingStartTime = "24:00" },
			wantError: true,
		},
		{
			name:      "minute out of range",
			mutate:    func(venue *model.Venue) { venue.WorkingEndTime = "18:60" },
			wantError: true,
		},
		{
			name:      "missing leading zero",
			mutate:    func(venue *model.Venue) { venue.WorkingStartTime = "8:00" },
			wantError: true,
		},
		{
			name:      "not a clock time",
			mutate:    func(venue *model.Venue) { venue.WorkingStartTime = "morning" },
			wantError: true,
		},
		{
			name:      "close before open",
			mutate:    func(venue *model.Venue) { venue.WorkingStartTime = "20:00"; venue.WorkingEndTime = "08:00" },
			wantError: true,
		},
		{
			name:      "close equals open",
			mutate:    func(venue *model.Venue) { venue.WorkingStartTime = "08:00"; venue.WorkingEndTime = "08:00" },
			wantError: true,
		},
		{
			name:      "negative buffer",
			mutate:    func(venue *model.Venue) { venue.BufferTimeMinutes = -5 },
			wantError: true,
		},
		{
			name:      "buffer over four hours",
			mutate:    func(venue *model.Venue) { venue.BufferTimeMinutes = 241 },
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			venue := validVenue()
			tt.mutate(venue)

			err := v.Validate(venue)
			if tt.wantError && err == nil {
				t.Error("expected validation error, got nil")
			}
			if !tt.wantError && err != nil {
				t.Errorf("unexpected validation error: %v", err)
			}
		})
	}
}
