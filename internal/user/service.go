package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/mkuznetsov/user-service/internal/dispatch"
)

// Service orchestrates repository calls on behalf of the HTTP layer.
// Every store operation is executed through the dispatch pool, so the
// handler goroutine blocks only on submission and on awaiting the
// result, never inside the database driver itself.
type Service interface {
	CreateUser(ctx context.Context, name, email string) (*User, error)
	GetUserByID(ctx context.Context, id int64) (*User, error)
	ListUsers(ctx context.Context) ([]User, error)
	UpdateUser(ctx context.Context, id int64, name, email string) (*User, error)
	DeleteUser(ctx context.Context, id int64) error
}

type service struct {
	repo Repository
	pool *dispatch.Pool
}

func NewService(repo Repository, pool *dispatch.Pool) Service {
	return &service{repo: repo, pool: pool}
}

func (s *service) CreateUser(ctx context.Context, name, email string) (*User, error) {
	created, err := dispatch.Do(ctx, s.pool, func(ctx context.Context) (*User, error) {
		return s.repo.Create(ctx, name, email)
	})
	if err != nil {
		if errors.Is(err, ErrEmailExists) {
			return nil, ErrEmailExists
		}

		log.Error().Err(err).Str("email", email).Msg("service: failed to create user")
		return nil, fmt.Errorf("service: failed to create user: %w", err)
	}

	return created, nil
}

func (s *service) GetUserByID(ctx context.Context, id int64) (*User, error) {
	found, err := dispatch.Do(ctx, s.pool, func(ctx context.Context) (*User, error) {
		return s.repo.GetByID(ctx, id)
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}

		log.Error().Err(err).Int64("user_id", id).Msg("service: failed to get user by id")
		return nil, fmt.Errorf("service: failed to get user by id %d: %w", id, err)
	}

	return found, nil
}

func (s *service) ListUsers(ctx context.Context) ([]User, error) {
	users, err := dispatch.Do(ctx, s.pool, func(ctx context.Context) ([]User, error) {
		return s.repo.List(ctx)
	})
	if err != nil {
		log.Error().Err(err).Msg("service: failed to list users")
		return nil, fmt.Errorf("service: failed to list users: %w", err)
	}

	return users, nil
}

func (s *service) UpdateUser(ctx context.Context, id int64, name, email string) (*User, error) {
	updated, err := dispatch.Do(ctx, s.pool, func(ctx context.Context) (*User, error) {
		return s.repo.Update(ctx, id, name, email)
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		if errors.Is(err, ErrEmailExists) {
			return nil, ErrEmailExists
		}

		log.Error().Err(err).Int64("user_id", id).Msg("service: failed to update user")
		return nil, fmt.Errorf("service: failed to update user %d: %w", id, err)
	}

	return updated, nil
}

func (s *service) DeleteUser(ctx context.Context, id int64) error {
	_, err := dispatch.Do(ctx, s.pool, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.repo.Delete(ctx, id)
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}

		log.Error().Err(err).Int64("user_id", id).Msg("service: failed to delete user")
		return fmt.Errorf("service: failed to delete user %d: %w", id, err)
	}

	return nil
}
