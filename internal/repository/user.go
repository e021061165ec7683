package repository

import (
	"context"

	"chirp/internal/domain"
)

// UserRepository defines persistence operations for User entities.
type UserRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, user *domain.User) (int64, error)
	GetByHandle(ctx context.Context, handle string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	UpdateAvatar(ctx context.Context, id int64, avatarKey string) error
	// Search matches handle or display name containing query, case-insensitive,
	// ordered exact handle, handle prefix, then substring, ties alphabetical.
	Search(ctx context.Context, query string, limit int) ([]domain.User, error)
}
