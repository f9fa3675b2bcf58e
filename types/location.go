package types

import "time"

// Location represents a named fishing spot owned by a user.
type Location struct {
	// ID is the unique identifier of the location.
	ID string `json:"id" db:"id"`

	// UserID references the owning user.
	UserID string `json:"user_id" db:"user_id"`

	// Name is the human-readable name of the spot, unique per user.
	Name string `json:"name" db:"name"`

	// Latitude is the geographic latitude of the spot in decimal degrees.
	Latitude float64 `json:"latitude" db:"latitude"`

	// Longitude is the geographic longitude of the spot in decimal degrees.
	Longitude float64 `json:"longitude" db:"longitude"`

	// Description is an optional free-form note about the spot.
	Description *string `json:"description" db:"description"`

	// CreatedAt is the timestamp when the location was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the location.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
