package service

import (
	"context"
	"fmt"

	"chirp/internal/domain"
	"chirp/internal/repository"
)

// FollowService manages the directed follow graph.
type FollowService interface {
	Follow(ctx context.Context, followerID, followeeID int64) error
	Unfollow(ctx context.Context, followerID, followeeID int64) error
	Followers(ctx context.Context, userID int64) ([]domain.User, error)
}

type followService struct {
	users   repository.UserRepository
	follows repository.FollowRepository
}

func NewFollowService(users repository.UserRepository, follows repository.FollowRepository) FollowService {
	return &followService{
		users:   users,
		follows: follows,
	}
}

func (s *followService) Follow(ctx context.Context, followerID, followeeID int64) error {
	if followerID == followeeID {
		return fmt.Errorf("user %d: %w", followerID, domain.ErrSelfFollow)
	}
	return s.follows.Add(ctx, followerID, followeeID)
}

func (s *followService) Unfollow(ctx context.Context, followerID, followeeID int64) error {
	return s.follows.Remove(ctx, followerID, followeeID)
}

func (s *followService) Followers(ctx context.Context, userID int64) ([]domain.User, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	followers, err := s.follows.Followers(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range followers {
		followers[i].PasswordHash = ""
	}
	return followers, nil
}
