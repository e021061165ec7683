package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"chirp/internal/domain"
	"chirp/internal/repository"
)

type testRepos struct {
	users     repository.UserRepository
	posts     repository.PostRepository
	follows   repository.FollowRepository
	favorites repository.FavoriteRepository
	reposts   repository.RepostRepository
}

func newTestRepos(t *testing.T) *testRepos {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "chirp-test.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	r := &testRepos{
		users:     NewUserRepository(db),
		posts:     NewPostRepository(db),
		follows:   NewFollowRepository(db),
		favorites: NewFavoriteRepository(db),
		reposts:   NewRepostRepository(db),
	}

	ctx := context.Background()
	inits := []interface {
		Init(context.Context) error
	}{r.users, r.posts, r.follows, r.favorites, r.reposts}
	for _, repo := range inits {
		if err := repo.Init(ctx); err != nil {
			t.Fatalf("init repository: %v", err)
		}
	}
	return r
}

func createTestUser(t *testing.T, r *testRepos, handle string) *domain.User {
	t.Helper()
	user := &domain.User{
		Handle:       handle,
		DisplayName:  handle,
		PasswordHash: "test-hash",
	}
	if _, err := r.users.Create(context.Background(), user); err != nil {
		t.Fatalf("create user %s: %v", handle, err)
	}
	return user
}

func createTestPost(t *testing.T, r *testRepos, authorID int64, body string) *domain.Post {
	t.Helper()
	post := &domain.Post{AuthorID: authorID, Body: body}
	if _, err := r.posts.Create(context.Background(), post); err != nil {
		t.Fatalf("create post: %v", err)
	}
	return post
}
