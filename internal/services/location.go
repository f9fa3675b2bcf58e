package services

import (
	"context"
	"errors"

	"github.com/EduNet2023/NovoApkPesca/internal/events"
	"github.com/EduNet2023/NovoApkPesca/internal/store"
	"github.com/EduNet2023/NovoApkPesca/types"
	"github.com/google/uuid"
)

// LocationRepository defines persistence operations for locations.
type LocationRepository interface {
	List(ctx context.Context, userID string, offset, limit int) ([]types.Location, int, error)
	Get(ctx context.Context, userID, id string) (types.Location, error)
	GetByName(ctx context.Context, userID, name string) (types.Location, error)
	Create(ctx context.Context, location types.Location) (types.Location, error)
	Update(ctx context.Context, location types.Location) (types.Location, error)
	Delete(ctx context.Context, userID, id string) error
}

// LocationCreate carries the fields of a new location.
type LocationCreate struct {
	Name        string
	Latitude    float64
	Longitude   float64
	Description *string
}

// LocationUpdate carries a partial update. Nil fields keep their value.
type LocationUpdate struct {
	Name        *string
	Latitude    *float64
	Longitude   *float64
	Description *string
}

// LocationService encapsulates location use-cases.
type LocationService struct {
	repo   LocationRepository
	events *events.Publisher
}

func NewLocationService(repo LocationRepository, publisher *events.Publisher) *LocationService {
	return &LocationService{repo: repo, events: publisher}
}

func (s *LocationService) List(ctx context.Context, userID string, offset, limit int) ([]types.Location, int, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}
	return s.repo.List(ctx, userID, offset, limit)
}

func (s *LocationService) Get(ctx context.Context, userID, id string) (types.Location, error) {
	return s.repo.Get(ctx, userID, id)
}

func (s *LocationService) Create(ctx context.Context, userID string, in LocationCreate) (types.Location, error) {
	if _, err := s.repo.GetByName(ctx, userID, in.Name); err == nil {
		return types.Location{}, store.ErrDuplicateLocationName
	} else if !errors.Is(err, store.ErrNotFound) {
		return types.Location{}, err
	}

	created, err := s.repo.Create(ctx, types.Location{
		ID:          uuid.NewString(),
		UserID:      userID,
		Name:        in.Name,
		Latitude:    in.Latitude,
		Longitude:   in.Longitude,
		Description: in.Description,
	})
	if err != nil {
		return types.Location{}, err
	}
	s.events.Emit(ctx, events.LocationCreated, created)
	return created, nil
}

func (s *LocationService) Update(ctx context.Context, userID, id string, in LocationUpdate) (types.Location, error) {
	location, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return types.Location{}, err
	}

	if in.Name != nil && *in.Name != location.Name {
		existing, err := s.repo.GetByName(ctx, userID, *in.Name)
		if err == nil && existing.ID != id {
			return types.Location{}, store.ErrDuplicateLocationName
		}
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return types.Location{}, err
		}
		location.Name = *in.Name
	}
	if in.Latitude != nil {
		location.Latitude = *in.Latitude
	}
	if in.Longitude != nil {
		location.Longitude = *in.Longitude
	}
	if in.Description != nil {
		location.Description = in.Description
	}

	return s.repo.Update(ctx, location)
}

// Delete refuses with store.ErrLocationHasSessions while sessions still
// reference the location.
func (s *LocationService) Delete(ctx context.Context, userID, id string) error {
	return s.repo.Delete(ctx, userID, id)
}
