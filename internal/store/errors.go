package store

import "errors"

// ErrNotFound is returned when a record does not exist or is not owned by
// the requesting user.
var ErrNotFound = errors.New("not found")

// ErrDuplicateLocationName is returned when the owning user already has a
// location with the requested name.
var ErrDuplicateLocationName = errors.New("location name already in use")

// ErrLocationHasSessions is returned when deleting a location that still has
// fishing sessions referencing it.
var ErrLocationHasSessions = errors.New("location has fishing sessions")
