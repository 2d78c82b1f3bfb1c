package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"dbmodel/internal/cache"
	"dbmodel/internal/model"
	"dbmodel/internal/repository"
)

const userCacheTTL = 5 * time.Minute

// UserService exposes authentication user operations.
type UserService interface {
	// CreateUser builds a new user with default permissions and stores it.
	CreateUser(ctx context.Context, params model.AuthenticationUserParams) (*model.AuthenticationUser, error)
	GetUser(ctx context.Context, email string) (*model.AuthenticationUser, error)
	GetUserBySub(ctx context.Context, sub string) (*model.AuthenticationUser, error)
	ListUsers(ctx context.Context) ([]*model.AuthenticationUser, error)
	// ReplaceUser overwrites every field of an existing user.
	ReplaceUser(ctx context.Context, params model.AuthenticationUserParams) (*model.AuthenticationUser, error)
	// PatchUser overwrites only the named fields of an existing user.
	PatchUser(ctx context.Context, params model.AuthenticationUserParams, fields []string) (*model.AuthenticationUser, error)
	DeleteUser(ctx context.Context, email string) error
}

type userService struct {
	repo  repository.UserRepository
	cache *cache.Client
	log   zerolog.Logger
}

// NewUserService builds a UserService with repository and cache.
func NewUserService(repo repository.UserRepository, cache *cache.Client, log zerolog.Logger) UserService {
	return &userService{repo: repo, cache: cache, log: log.With().Str("component", "users").Logger()}
}

// Redact removes the fields the given roles may not see.
func Redact(user *model.AuthenticationUser, roles []model.Role) model.Entry {
	return model.EntryOf(user).Without(model.AuthenticationUsers.Protected(roles...)...)
}

func (s *userService) cacheKey(email string) string {
	return "user:" + email
}

func (s *userService) CreateUser(ctx context.Context, params model.AuthenticationUserParams) (*model.AuthenticationUser, error) {
	user := model.AuthenticationUsers.FromJSON(params, model.WithDefaults(true))
	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("email", created.Email).Msg("user created")
	return created, nil
}

func (s *userService) GetUser(ctx context.Context, email string) (*model.AuthenticationUser, error) {
	var data json.RawMessage
	if s.cache.Load(ctx, s.cacheKey(email), &data) {
		cached, err := model.AuthenticationUsers.FromJSONString(data, model.WithDefaults(false))
		if err == nil {
			return cached, nil
		}
		s.cache.Delete(ctx, s.cacheKey(email))
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	s.cache.Store(ctx, s.cacheKey(email), model.EntryOf(user), userCacheTTL)
	return user, nil
}

func (s *userService) GetUserBySub(ctx context.Context, sub string) (*model.AuthenticationUser, error) {
	return s.repo.FindBySub(ctx, sub)
}

func (s *userService) ListUsers(ctx context.Context) ([]*model.AuthenticationUser, error) {
	return s.repo.List(ctx)
}

func (s *userService) ReplaceUser(ctx context.Context, params model.AuthenticationUserParams) (*model.AuthenticationUser, error) {
	user := model.AuthenticationUsers.FromJSON(params)
	return s.update(ctx, user, model.UpdateOptions{})
}

func (s *userService) PatchUser(ctx context.Context, params model.AuthenticationUserParams, fields []string) (*model.AuthenticationUser, error) {
	if fields == nil {
		fields = []string{}
	}
	user := model.AuthenticationUsers.FromJSON(params)
	return s.update(ctx, user, model.UpdateOptions{WhiteList: fields})
}

func (s *userService) update(ctx context.Context, user *model.AuthenticationUser, opts model.UpdateOptions) (*model.AuthenticationUser, error) {
	email := user.Email
	updated, err := s.repo.Update(ctx, user, opts)
	if err != nil {
		return nil, err
	}
	s.cache.Delete(ctx, s.cacheKey(email))
	s.log.Info().Str("email", email).Msg("user updated")
	return updated, nil
}

func (s *userService) DeleteUser(ctx context.Context, email string) error {
	if err := s.repo.Delete(ctx, email); err != nil {
		return err
	}
	s.cache.Delete(ctx, s.cacheKey(email))
	s.log.Info().Str("email", email).Msg("user deleted")
	return nil
}
