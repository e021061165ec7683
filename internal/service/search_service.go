package service

import (
	"context"
	"fmt"
	"strings"

	"chirp/internal/domain"
	"chirp/internal/repository"
)

const maxSearchResults = 50

// SearchService runs text matching over users and posts. Every call issues a
// fresh bounded query against the store; nothing is memoized.
type SearchService interface {
	SearchUsers(ctx context.Context, query string) ([]domain.User, error)
	// SearchPosts matches body substrings case-insensitively. A query
	// starting with '#' matches the exact hashtag term instead.
	SearchPosts(ctx context.Context, query string) ([]domain.Post, error)
}

type searchService struct {
	users repository.UserRepository
	posts repository.PostRepository
}

func NewSearchService(users repository.UserRepository, posts repository.PostRepository) SearchService {
	return &searchService{
		users: users,
		posts: posts,
	}
}

func (s *searchService) SearchUsers(ctx context.Context, query string) ([]domain.User, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("search query is required: %w", domain.ErrInvalidInput)
	}

	users, err := s.users.Search(ctx, query, maxSearchResults)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, nil
}

func (s *searchService) SearchPosts(ctx context.Context, query string) ([]domain.Post, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("search query is required: %w", domain.ErrInvalidInput)
	}

	if term, ok := strings.CutPrefix(query, "#"); ok {
		term = strings.TrimSpace(term)
		if term == "" {
			return nil, fmt.Errorf("hashtag term is required: %w", domain.ErrInvalidInput)
		}
		return s.posts.SearchHashtag(ctx, term, maxSearchResults)
	}
	return s.posts.SearchBody(ctx, query, maxSearchResults)
}
