package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"chirp/internal/domain"
	"chirp/internal/repository"
)

// PostService coordinates post lifecycle and per-post reactions.
type PostService interface {
	Create(ctx context.Context, authorID int64, body string, parentPostID *int64) (*domain.Post, error)
	Get(ctx context.Context, id int64) (*domain.Post, error)
	Stats(ctx context.Context, id int64) (*domain.PostStats, error)
	Delete(ctx context.Context, id, authorID int64) error
	Favorite(ctx context.Context, userID, postID int64) error
	Unfavorite(ctx context.Context, userID, postID int64) error
	Repost(ctx context.Context, userID, postID int64) error
	Unrepost(ctx context.Context, userID, postID int64) error
}

type postService struct {
	posts     repository.PostRepository
	favorites repository.FavoriteRepository
	reposts   repository.RepostRepository
}

func NewPostService(posts repository.PostRepository, favorites repository.FavoriteRepository, reposts repository.RepostRepository) PostService {
	return &postService{
		posts:     posts,
		favorites: favorites,
		reposts:   reposts,
	}
}

func (s *postService) Create(ctx context.Context, authorID int64, body string, parentPostID *int64) (*domain.Post, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, fmt.Errorf("post body is required: %w", domain.ErrInvalidInput)
	}
	if utf8.RuneCountInString(body) > domain.MaxPostLength {
		return nil, fmt.Errorf("post body exceeds %d characters: %w", domain.MaxPostLength, domain.ErrInvalidInput)
	}

	post := &domain.Post{
		AuthorID:     authorID,
		Body:         body,
		ParentPostID: parentPostID,
	}
	if _, err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *postService) Get(ctx context.Context, id int64) (*domain.Post, error) {
	return s.posts.Get(ctx, id)
}

func (s *postService) Stats(ctx context.Context, id int64) (*domain.PostStats, error) {
	if _, err := s.posts.Get(ctx, id); err != nil {
		return nil, err
	}

	replies, err := s.posts.CountReplies(ctx, id)
	if err != nil {
		return nil, err
	}
	favorites, err := s.favorites.CountForPost(ctx, id)
	if err != nil {
		return nil, err
	}
	reposts, err := s.reposts.CountForPost(ctx, id)
	if err != nil {
		return nil, err
	}

	return &domain.PostStats{
		Replies:   replies,
		Favorites: favorites,
		Reposts:   reposts,
	}, nil
}

func (s *postService) Delete(ctx context.Context, id, authorID int64) error {
	return s.posts.Delete(ctx, id, authorID)
}

func (s *postService) Favorite(ctx context.Context, userID, postID int64) error {
	return s.favorites.Add(ctx, userID, postID)
}

func (s *postService) Unfavorite(ctx context.Context, userID, postID int64) error {
	return s.favorites.Remove(ctx, userID, postID)
}

func (s *postService) Repost(ctx context.Context, userID, postID int64) error {
	return s.reposts.Add(ctx, userID, postID)
}

func (s *postService) Unrepost(ctx context.Context, userID, postID int64) error {
	return s.reposts.Remove(ctx, userID, postID)
}
