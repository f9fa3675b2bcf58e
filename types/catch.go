package types

import "time"

// Catch represents one recorded fish within a fishing session.
// Its effective owner is the owning session's user.
type Catch struct {
	// ID is the unique identifier of the catch.
	ID string `json:"id" db:"id"`

	// SessionID references the session the catch was recorded in.
	SessionID string `json:"session_id" db:"session_id"`

	// Species is the fish species. Required.
	Species string `json:"species" db:"species"`

	// WeightKg is the optional weight of the fish in kilograms.
	WeightKg *float64 `json:"weight_kg" db:"weight_kg"`

	// LengthCm is the optional length of the fish in centimeters.
	LengthCm *float64 `json:"length_cm" db:"length_cm"`

	// BaitUsed is the optional bait or lure the fish was caught on.
	BaitUsed *string `json:"bait_used" db:"bait_used"`

	// Released reports whether the fish was released rather than kept.
	Released bool `json:"released" db:"released"`

	// PhotoURL is an optional reference to a photo of the catch. Set to a
	// serving path when a photo is uploaded to object storage.
	PhotoURL *string `json:"photo_url" db:"photo_url"`

	// PhotoKey is the object-storage key of an uploaded photo.
	// Never exposed in API responses.
	PhotoKey *string `json:"-" db:"photo_key"`

	// PhotoContentType is the stored content type of an uploaded photo.
	// Never exposed in API responses.
	PhotoContentType *string `json:"-" db:"photo_content_type"`

	// CreatedAt is the timestamp when the catch was recorded.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the catch.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
