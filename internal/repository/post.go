package repository

import (
	"context"

	"chirp/internal/domain"
)

// PostRepository exposes persistence operations for posts and their
// hashtag mentions.
type PostRepository interface {
	Init(ctx context.Context) error
	// Create validates the author (and parent, for replies) inside the same
	// transaction as the insert, and records hashtag mentions from the body.
	Create(ctx context.Context, post *domain.Post) (int64, error)
	Get(ctx context.Context, id int64) (*domain.Post, error)
	// Delete removes the post only if authorID owns it. Replies survive with
	// a cleared parent reference; favorites and reposts of the post cascade.
	Delete(ctx context.Context, id, authorID int64) error
	ListByAuthor(ctx context.Context, authorID int64, before *domain.Cursor, limit int) ([]domain.Post, error)
	// ListTimeline returns posts authored by users that userID follows,
	// plus userID's own posts when includeSelf is set, newest first.
	ListTimeline(ctx context.Context, userID int64, includeSelf bool, before *domain.Cursor, limit int) ([]domain.Post, error)
	SearchBody(ctx context.Context, query string, limit int) ([]domain.Post, error)
	SearchHashtag(ctx context.Context, term string, limit int) ([]domain.Post, error)
	CountByAuthor(ctx context.Context, authorID int64) (int64, error)
	CountReplies(ctx context.Context, postID int64) (int64, error)
}
