package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"chirp/internal/domain"
	"chirp/internal/repository"
	"chirp/internal/repository/sqlite"
	"chirp/internal/storage"
)

const testPassword = "correct horse battery"

type testEnv struct {
	users  repository.UserRepository
	posts  repository.PostRepository
	auth   AuthService
	post   PostService
	follow FollowService
	search SearchService
	feed   FeedService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dir := t.TempDir()
	db, err := sqlite.Open(filepath.Join(dir, "chirp-test.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	users := sqlite.NewUserRepository(db)
	posts := sqlite.NewPostRepository(db)
	follows := sqlite.NewFollowRepository(db)
	favorites := sqlite.NewFavoriteRepository(db)
	reposts := sqlite.NewRepostRepository(db)

	ctx := context.Background()
	inits := []interface {
		Init(context.Context) error
	}{users, posts, follows, favorites, reposts}
	for _, repo := range inits {
		if err := repo.Init(ctx); err != nil {
			t.Fatalf("init repository: %v", err)
		}
	}

	store, err := storage.NewLocalService(filepath.Join(dir, "media"))
	if err != nil {
		t.Fatalf("local storage: %v", err)
	}

	return &testEnv{
		users:  users,
		posts:  posts,
		auth:   NewAuthService(users, "test-secret", time.Hour),
		post:   NewPostService(posts, favorites, reposts),
		follow: NewFollowService(users, follows),
		search: NewSearchService(users, posts),
		feed:   NewFeedService(users, posts, follows, favorites, store),
	}
}

// addUser writes directly through the repository, skipping password hashing.
func addUser(t *testing.T, env *testEnv, handle string) *domain.User {
	t.Helper()
	user := &domain.User{Handle: handle, DisplayName: handle, PasswordHash: "x"}
	if _, err := env.users.Create(context.Background(), user); err != nil {
		t.Fatalf("create user %s: %v", handle, err)
	}
	return user
}

func addPost(t *testing.T, env *testEnv, authorID int64, body string) *domain.Post {
	t.Helper()
	post, err := env.post.Create(context.Background(), authorID, body, nil)
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	return post
}
