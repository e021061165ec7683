package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"chirp/internal/domain"
	"chirp/internal/repository"
	"chirp/internal/storage"
)

const (
	profileRecentPosts = 10
	avatarURLTTL       = 15 * time.Minute
)

// TimelinePage is one page of an ordered post feed plus the token for the next one.
type TimelinePage struct {
	Posts      []domain.Post
	NextCursor string
}

// FavoritesPage is one page of favorited posts, ordered newest-favorited-first.
type FavoritesPage struct {
	Posts      []domain.FavoritedPost
	NextCursor string
}

// FeedService composes repository queries into display-ready result sets.
type FeedService interface {
	Timeline(ctx context.Context, userID int64, cursor string, limit int, includeSelf bool) (*TimelinePage, error)
	Profile(ctx context.Context, userID int64) (*domain.Profile, error)
	Favorites(ctx context.Context, userID int64, cursor string, limit int) (*FavoritesPage, error)
	SetAvatar(ctx context.Context, userID int64, r io.Reader, size int64, contentType string) error
}

type feedService struct {
	users     repository.UserRepository
	posts     repository.PostRepository
	follows   repository.FollowRepository
	favorites repository.FavoriteRepository
	store     storage.Service
}

func NewFeedService(
	users repository.UserRepository,
	posts repository.PostRepository,
	follows repository.FollowRepository,
	favorites repository.FavoriteRepository,
	store storage.Service,
) FeedService {
	return &feedService{
		users:     users,
		posts:     posts,
		follows:   follows,
		favorites: favorites,
		store:     store,
	}
}

func (s *feedService) Timeline(ctx context.Context, userID int64, cursor string, limit int, includeSelf bool) (*TimelinePage, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	before, err := decodeCursor(cursor)
	if err != nil {
		return nil, err
	}
	limit = clampLimit(limit)

	posts, err := s.posts.ListTimeline(ctx, userID, includeSelf, before, limit)
	if err != nil {
		return nil, err
	}

	page := &TimelinePage{Posts: posts}
	if len(posts) == limit {
		last := posts[len(posts)-1]
		page.NextCursor = encodeCursor(domain.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return page, nil
}

func (s *feedService) Profile(ctx context.Context, userID int64) (*domain.Profile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile := &domain.Profile{User: sanitizeUser(user)}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		posts, err := s.posts.ListByAuthor(gctx, userID, nil, profileRecentPosts)
		if err == nil {
			profile.Posts = posts
		}
		return err
	})
	g.Go(func() error {
		n, err := s.posts.CountByAuthor(gctx, userID)
		if err == nil {
			profile.PostsCount = n
		}
		return err
	})
	g.Go(func() error {
		n, err := s.favorites.CountByUser(gctx, userID)
		if err == nil {
			profile.FavoritesCount = n
		}
		return err
	})
	g.Go(func() error {
		n, err := s.follows.CountFollowers(gctx, userID)
		if err == nil {
			profile.FollowersCount = n
		}
		return err
	})
	g.Go(func() error {
		n, err := s.follows.CountFollowing(gctx, userID)
		if err == nil {
			profile.FollowingCount = n
		}
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if s.store != nil && user.AvatarKey != "" {
		url, err := s.store.URL(ctx, user.AvatarKey, avatarURLTTL)
		if err != nil {
			return nil, fmt.Errorf("avatar url: %w", err)
		}
		profile.AvatarURL = url
	}
	return profile, nil
}

func (s *feedService) Favorites(ctx context.Context, userID int64, cursor string, limit int) (*FavoritesPage, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	before, err := decodeCursor(cursor)
	if err != nil {
		return nil, err
	}
	limit = clampLimit(limit)

	favorites, err := s.favorites.ListPosts(ctx, userID, before, limit)
	if err != nil {
		return nil, err
	}

	page := &FavoritesPage{Posts: favorites}
	if len(favorites) == limit {
		last := favorites[len(favorites)-1]
		page.NextCursor = encodeCursor(domain.Cursor{CreatedAt: last.FavoritedAt, ID: last.FavoriteID})
	}
	return page, nil
}

func (s *feedService) SetAvatar(ctx context.Context, userID int64, r io.Reader, size int64, contentType string) error {
	if s.store == nil {
		return fmt.Errorf("avatar storage is not configured")
	}
	if !strings.HasPrefix(contentType, "image/") {
		return fmt.Errorf("avatar must be an image: %w", domain.ErrInvalidInput)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	key := fmt.Sprintf("avatars/%d/%s", userID, uuid.NewString())
	if err := s.store.Put(ctx, key, r, size, contentType); err != nil {
		return fmt.Errorf("store avatar: %w", err)
	}
	if err := s.users.UpdateAvatar(ctx, userID, key); err != nil {
		return err
	}
	if user.AvatarKey != "" {
		// best effort, the new avatar is already live
		_ = s.store.Delete(ctx, user.AvatarKey)
	}
	return nil
}
