package services

import (
	"context"

	"github.com/EduNet2023/NovoApkPesca/internal/events"
	"github.com/EduNet2023/NovoApkPesca/types"
	"github.com/google/uuid"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	GetByUsername(ctx context.Context, username string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	Delete(ctx context.Context, id string) error
}

// UserService encapsulates user use-cases.
type UserService struct {
	repo   UserRepository
	events *events.Publisher
}

func NewUserService(repo UserRepository, publisher *events.Publisher) *UserService {
	return &UserService{repo: repo, events: publisher}
}

func (s *UserService) GetByID(ctx context.Context, id string) (types.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (types.User, error) {
	return s.repo.GetByEmail(ctx, email)
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (types.User, error) {
	return s.repo.GetByUsername(ctx, username)
}

func (s *UserService) Create(ctx context.Context, user types.User) (types.User, error) {
	user.ID = uuid.NewString()
	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return types.User{}, err
	}
	s.events.Emit(ctx, events.UserRegistered, created)
	return created, nil
}

func (s *UserService) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return s.repo.UpdatePassword(ctx, id, passwordHash)
}

// DeleteAccount permanently removes the user and everything they own.
func (s *UserService) DeleteAccount(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
