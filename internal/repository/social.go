package repository

import (
	"context"

	"chirp/internal/domain"
)

// FollowRepository manages directed follow edges between users.
type FollowRepository interface {
	Init(ctx context.Context) error
	Add(ctx context.Context, followerID, followeeID int64) error
	Remove(ctx context.Context, followerID, followeeID int64) error
	Followers(ctx context.Context, userID int64) ([]domain.User, error)
	CountFollowers(ctx context.Context, userID int64) (int64, error)
	CountFollowing(ctx context.Context, userID int64) (int64, error)
}

// FavoriteRepository manages (user, post) favorite edges, unique per pair.
type FavoriteRepository interface {
	Init(ctx context.Context) error
	Add(ctx context.Context, userID, postID int64) error
	Remove(ctx context.Context, userID, postID int64) error
	// ListPosts returns the user's favorited posts newest-favorited-first,
	// paginated on the favorite edge.
	ListPosts(ctx context.Context, userID int64, before *domain.Cursor, limit int) ([]domain.FavoritedPost, error)
	CountByUser(ctx context.Context, userID int64) (int64, error)
	CountForPost(ctx context.Context, postID int64) (int64, error)
}

// RepostRepository manages (user, post) repost edges, unique per pair.
type RepostRepository interface {
	Init(ctx context.Context) error
	Add(ctx context.Context, userID, postID int64) error
	Remove(ctx context.Context, userID, postID int64) error
	CountForPost(ctx context.Context, postID int64) (int64, error)
}
