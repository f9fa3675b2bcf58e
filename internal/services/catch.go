package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/EduNet2023/NovoApkPesca/internal/events"
	"github.com/EduNet2023/NovoApkPesca/internal/storage"
	"github.com/EduNet2023/NovoApkPesca/internal/store"
	"github.com/EduNet2023/NovoApkPesca/types"
	"github.com/google/uuid"
)

// ErrPhotoStorageDisabled reports that no object-storage backend is
// configured, so photo uploads and downloads cannot be served.
var ErrPhotoStorageDisabled = errors.New("photo storage is not configured")

// CatchRepository defines persistence operations for catches.
type CatchRepository interface {
	List(ctx context.Context, userID string, filter store.CatchFilter, offset, limit int) ([]types.Catch, int, error)
	ListBySession(ctx context.Context, sessionID string) ([]types.Catch, error)
	Get(ctx context.Context, userID, id string) (types.Catch, error)
	Create(ctx context.Context, c types.Catch) (types.Catch, error)
	Update(ctx context.Context, userID string, c types.Catch) (types.Catch, error)
	Delete(ctx context.Context, userID, id string) error
	SetPhoto(ctx context.Context, userID, id, url, key, contentType string) error
}

// CatchSessionStore is the slice of the session store catch operations use
// for ownership checks.
type CatchSessionStore interface {
	Get(ctx context.Context, userID, id string) (types.FishingSession, error)
}

// CatchCreate carries the fields of a new catch.
type CatchCreate struct {
	SessionID string
	Species   string
	WeightKg  *float64
	LengthCm  *float64
	BaitUsed  *string
	Released  bool
	PhotoURL  *string
}

// CatchUpdate carries a partial update. Nil fields keep their value.
type CatchUpdate struct {
	SessionID *string
	Species   *string
	WeightKg  *float64
	LengthCm  *float64
	BaitUsed  *string
	Released  *bool
	PhotoURL  *string
}

// CatchService encapsulates catch use-cases, including photo objects.
type CatchService struct {
	repo     CatchRepository
	sessions CatchSessionStore
	objects  storage.ObjectStorage
	events   *events.Publisher
	logger   *slog.Logger
}

// NewCatchService constructs a CatchService. objects may be nil when no
// object-storage backend is configured; photo operations then report
// ErrPhotoStorageDisabled.
func NewCatchService(repo CatchRepository, sessions CatchSessionStore, objects storage.ObjectStorage, publisher *events.Publisher, logger *slog.Logger) *CatchService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CatchService{repo: repo, sessions: sessions, objects: objects, events: publisher, logger: logger}
}

func (s *CatchService) List(ctx context.Context, userID string, filter store.CatchFilter, offset, limit int) ([]types.Catch, int, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return s.repo.List(ctx, userID, filter, offset, limit)
}

// ListForSession returns one owned session and all of its catches.
func (s *CatchService) ListForSession(ctx context.Context, userID, sessionID string) (types.FishingSession, []types.Catch, error) {
	session, err := s.sessions.Get(ctx, userID, sessionID)
	if err != nil {
		return types.FishingSession{}, nil, err
	}
	catches, err := s.repo.ListBySession(ctx, session.ID)
	if err != nil {
		return types.FishingSession{}, nil, err
	}
	return session, catches, nil
}

func (s *CatchService) Get(ctx context.Context, userID, id string) (types.Catch, error) {
	return s.repo.Get(ctx, userID, id)
}

// Create stores a catch under one of the user's sessions. A session id the
// user does not own reports store.ErrNotFound, same as an absent one.
func (s *CatchService) Create(ctx context.Context, userID string, in CatchCreate) (types.Catch, error) {
	session, err := s.sessions.Get(ctx, userID, in.SessionID)
	if err != nil {
		return types.Catch{}, err
	}

	created, err := s.repo.Create(ctx, types.Catch{
		ID:        uuid.NewString(),
		SessionID: session.ID,
		Species:   in.Species,
		WeightKg:  in.WeightKg,
		LengthCm:  in.LengthCm,
		BaitUsed:  in.BaitUsed,
		Released:  in.Released,
		PhotoURL:  in.PhotoURL,
	})
	if err != nil {
		return types.Catch{}, err
	}
	s.events.Emit(ctx, events.CatchCreated, created)
	return created, nil
}

// Update applies a partial update. Moving the catch to another session
// re-checks ownership of the target session.
func (s *CatchService) Update(ctx context.Context, userID, id string, in CatchUpdate) (types.Catch, error) {
	c, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return types.Catch{}, err
	}

	if in.SessionID != nil && *in.SessionID != c.SessionID {
		session, err := s.sessions.Get(ctx, userID, *in.SessionID)
		if err != nil {
			return types.Catch{}, err
		}
		c.SessionID = session.ID
	}
	if in.Species != nil {
		c.Species = *in.Species
	}
	if in.WeightKg != nil {
		c.WeightKg = in.WeightKg
	}
	if in.LengthCm != nil {
		c.LengthCm = in.LengthCm
	}
	if in.BaitUsed != nil {
		c.BaitUsed = in.BaitUsed
	}
	if in.Released != nil {
		c.Released = *in.Released
	}
	if in.PhotoURL != nil {
		c.PhotoURL = in.PhotoURL
	}

	return s.repo.Update(ctx, userID, c)
}

// Delete removes the catch and, best effort, its stored photo object.
func (s *CatchService) Delete(ctx context.Context, userID, id string) error {
	c, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return err
	}
	if c.PhotoKey != nil && s.objects != nil {
		if err := s.objects.Delete(ctx, *c.PhotoKey); err != nil {
			s.logger.Warn("photo object delete failed", "catch_id", id, "key", *c.PhotoKey, "error", err)
		}
	}
	return nil
}

// UploadPhoto stores the photo bytes and points the catch at them. Any
// previously stored object is removed once the new one is recorded.
func (s *CatchService) UploadPhoto(ctx context.Context, userID, id string, r io.Reader, size int64, contentType string) (types.Catch, error) {
	if s.objects == nil {
		return types.Catch{}, ErrPhotoStorageDisabled
	}

	c, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return types.Catch{}, err
	}

	key := fmt.Sprintf("catches/%s/%s", c.ID, uuid.NewString())
	if err := s.objects.Put(ctx, key, r, size, contentType); err != nil {
		return types.Catch{}, err
	}

	url := "/api/catches/" + c.ID + "/photo"
	if err := s.repo.SetPhoto(ctx, userID, c.ID, url, key, contentType); err != nil {
		if delErr := s.objects.Delete(ctx, key); delErr != nil {
			s.logger.Warn("orphaned photo object delete failed", "catch_id", id, "key", key, "error", delErr)
		}
		return types.Catch{}, err
	}

	if c.PhotoKey != nil && *c.PhotoKey != key {
		if err := s.objects.Delete(ctx, *c.PhotoKey); err != nil {
			s.logger.Warn("stale photo object delete failed", "catch_id", id, "key", *c.PhotoKey, "error", err)
		}
	}

	return s.repo.Get(ctx, userID, c.ID)
}

// OpenPhoto streams the stored photo of a catch with its content type.
func (s *CatchService) OpenPhoto(ctx context.Context, userID, id string) (io.ReadCloser, string, error) {
	if s.objects == nil {
		return nil, "", ErrPhotoStorageDisabled
	}

	c, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return nil, "", err
	}
	if c.PhotoKey == nil {
		return nil, "", store.ErrNotFound
	}

	rc, err := s.objects.Get(ctx, *c.PhotoKey)
	if err != nil {
		return nil, "", err
	}

	contentType := "application/octet-stream"
	if c.PhotoContentType != nil && *c.PhotoContentType != "" {
		contentType = *c.PhotoContentType
	}
	return rc, contentType, nil
}
