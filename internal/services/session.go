package services

import (
	"context"

	"github.com/EduNet2023/NovoApkPesca/internal/events"
	"github.com/EduNet2023/NovoApkPesca/types"
	"github.com/google/uuid"
)

// SessionRepository defines persistence operations for fishing sessions.
type SessionRepository interface {
	List(ctx context.Context, userID, locationID string, offset, limit int) ([]types.FishingSession, int, error)
	Get(ctx context.Context, userID, id string) (types.FishingSession, error)
	Create(ctx context.Context, session types.FishingSession) (types.FishingSession, error)
	Update(ctx context.Context, session types.FishingSession) (types.FishingSession, error)
	Delete(ctx context.Context, userID, id string) error
}

// SessionCatchLister lists the catches embedded in a session detail view.
type SessionCatchLister interface {
	ListBySession(ctx context.Context, sessionID string) ([]types.Catch, error)
}

// SessionCreate carries the fields of a new fishing session.
type SessionCreate struct {
	LocationID         string
	Date               types.Date
	StartTime          types.ClockTime
	EndTime            types.ClockTime
	WeatherConditions  *string
	TemperatureCelsius *float64
	Notes              *string
}

// SessionUpdate carries a partial update. Nil fields keep their value.
type SessionUpdate struct {
	LocationID         *string
	Date               *types.Date
	StartTime          *types.ClockTime
	EndTime            *types.ClockTime
	WeatherConditions  *string
	TemperatureCelsius *float64
	Notes              *string
}

// SessionService encapsulates fishing session use-cases.
type SessionService struct {
	repo      SessionRepository
	locations LocationRepository
	catches   SessionCatchLister
	events    *events.Publisher
}

func NewSessionService(repo SessionRepository, locations LocationRepository, catches SessionCatchLister, publisher *events.Publisher) *SessionService {
	return &SessionService{repo: repo, locations: locations, catches: catches, events: publisher}
}

func (s *SessionService) List(ctx context.Context, userID, locationID string, offset, limit int) ([]types.FishingSession, int, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	return s.repo.List(ctx, userID, locationID, offset, limit)
}

func (s *SessionService) Get(ctx context.Context, userID, id string) (types.FishingSession, error) {
	return s.repo.Get(ctx, userID, id)
}

// GetWithCatches returns the session and every catch logged during it.
func (s *SessionService) GetWithCatches(ctx context.Context, userID, id string) (types.FishingSession, []types.Catch, error) {
	session, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return types.FishingSession{}, nil, err
	}
	catches, err := s.catches.ListBySession(ctx, session.ID)
	if err != nil {
		return types.FishingSession{}, nil, err
	}
	return session, catches, nil
}

// Create stores a new session at one of the user's locations. A location id
// the user does not own reports store.ErrNotFound, same as an absent one.
func (s *SessionService) Create(ctx context.Context, userID string, in SessionCreate) (types.FishingSession, error) {
	location, err := s.locations.Get(ctx, userID, in.LocationID)
	if err != nil {
		return types.FishingSession{}, err
	}

	session := types.FishingSession{
		ID:                 uuid.NewString(),
		UserID:             userID,
		LocationID:         location.ID,
		Date:               in.Date,
		StartTime:          in.StartTime,
		EndTime:            in.EndTime,
		DurationMinutes:    sessionDurationMinutes(in.Date, in.StartTime, in.EndTime),
		WeatherConditions:  in.WeatherConditions,
		TemperatureCelsius: in.TemperatureCelsius,
		Notes:              in.Notes,
	}
	created, err := s.repo.Create(ctx, session)
	if err != nil {
		return types.FishingSession{}, err
	}
	created.LocationName = location.Name
	s.events.Emit(ctx, events.SessionCreated, created)
	return created, nil
}

// Update applies a partial update. The duration is recomputed only when the
// date or one of the clock times changes.
func (s *SessionService) Update(ctx context.Context, userID, id string, in SessionUpdate) (types.FishingSession, error) {
	session, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return types.FishingSession{}, err
	}

	if in.LocationID != nil && *in.LocationID != session.LocationID {
		location, err := s.locations.Get(ctx, userID, *in.LocationID)
		if err != nil {
			return types.FishingSession{}, err
		}
		session.LocationID = location.ID
		session.LocationName = location.Name
	}

	if in.Date != nil {
		session.Date = *in.Date
	}
	if in.StartTime != nil {
		session.StartTime = *in.StartTime
	}
	if in.EndTime != nil {
		session.EndTime = *in.EndTime
	}
	if in.Date != nil || in.StartTime != nil || in.EndTime != nil {
		session.DurationMinutes = sessionDurationMinutes(session.Date, session.StartTime, session.EndTime)
	}

	if in.WeatherConditions != nil {
		session.WeatherConditions = in.WeatherConditions
	}
	if in.TemperatureCelsius != nil {
		session.TemperatureCelsius = in.TemperatureCelsius
	}
	if in.Notes != nil {
		session.Notes = in.Notes
	}

	return s.repo.Update(ctx, session)
}

// Delete removes the session and its catches.
func (s *SessionService) Delete(ctx context.Context, userID, id string) error {
	return s.repo.Delete(ctx, userID, id)
}
