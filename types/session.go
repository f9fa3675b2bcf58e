package types

import "time"

// FishingSession represents a single outing at a location.
//
// Duration is derived from date, start time, and end time; sessions whose end
// time is earlier than their start time span into the next calendar day. The
// stored duration is overwritten whenever any of the three inputs change.
type FishingSession struct {
	// ID is the unique identifier of the session.
	ID string `json:"id" db:"id"`

	// UserID references the owning user.
	UserID string `json:"user_id" db:"user_id"`

	// LocationID references the location the session took place at.
	// The location must belong to the same user.
	LocationID string `json:"location_id" db:"location_id"`

	// LocationName is the name of the referenced location. Populated on
	// reads for client convenience; not a stored column.
	LocationName string `json:"location_name" db:"-"`

	// Date is the calendar day the session started on.
	Date Date `json:"date" db:"date"`

	// StartTime is the clock time the session started at.
	StartTime ClockTime `json:"start_time" db:"start_time"`

	// EndTime is the clock time the session ended at. An end time earlier
	// than the start time means the session ended the next day.
	EndTime ClockTime `json:"end_time" db:"end_time"`

	// DurationMinutes is the derived session length in whole minutes.
	DurationMinutes int `json:"duration_minutes" db:"duration_minutes"`

	// WeatherConditions is an optional description of the weather.
	WeatherConditions *string `json:"weather_conditions" db:"weather_conditions"`

	// TemperatureCelsius is the optional air temperature during the session.
	TemperatureCelsius *float64 `json:"temperature_celsius" db:"temperature_celsius"`

	// Notes is an optional free-form note about the outing.
	Notes *string `json:"notes" db:"notes"`

	// CatchesCount is the number of catches recorded for the session.
	// Populated on reads; not a stored column.
	CatchesCount int `json:"catches_count" db:"-"`

	// CreatedAt is the timestamp when the session was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the session.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
