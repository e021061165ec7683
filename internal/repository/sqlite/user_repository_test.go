package sqlite

import (
	"context"
	"errors"
	"testing"

	"chirp/internal/domain"
)

func TestUserCreateAndGet(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	created := createTestUser(t, r, "alice")
	if created.ID == 0 {
		t.Fatal("expected user id to be assigned")
	}
	if created.CreatedAt.IsZero() {
		t.Fatal("expected created_at to be set")
	}

	byHandle, err := r.users.GetByHandle(ctx, "alice")
	if err != nil {
		t.Fatalf("get by handle: %v", err)
	}
	if byHandle.ID != created.ID || byHandle.Handle != "alice" {
		t.Fatalf("unexpected user: %+v", byHandle)
	}
	if byHandle.PasswordHash != "test-hash" {
		t.Fatalf("expected password hash to round trip, got %q", byHandle.PasswordHash)
	}

	byID, err := r.users.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if byID.Handle != "alice" {
		t.Fatalf("unexpected handle %q", byID.Handle)
	}
}

func TestUserGetMissing(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	if _, err := r.users.GetByHandle(ctx, "ghost"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := r.users.GetByID(ctx, 12345); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUserDuplicateHandle(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	createTestUser(t, r, "alice")
	_, err := r.users.Create(ctx, &domain.User{Handle: "alice", DisplayName: "Other", PasswordHash: "x"})
	if !errors.Is(err, domain.ErrDuplicateHandle) {
		t.Fatalf("expected ErrDuplicateHandle, got %v", err)
	}
}

func TestUserUpdateAvatar(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	user := createTestUser(t, r, "alice")
	if err := r.users.UpdateAvatar(ctx, user.ID, "avatars/1/pic.png"); err != nil {
		t.Fatalf("update avatar: %v", err)
	}

	got, err := r.users.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if got.AvatarKey != "avatars/1/pic.png" {
		t.Fatalf("unexpected avatar key %q", got.AvatarKey)
	}

	if err := r.users.UpdateAvatar(ctx, 9999, "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUserSearchRanking(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	createTestUser(t, r, "bob")
	createTestUser(t, r, "bobby")
	createTestUser(t, r, "abob")
	if _, err := r.users.Create(ctx, &domain.User{Handle: "carol", DisplayName: "Bob Fan", PasswordHash: "x"}); err != nil {
		t.Fatalf("create carol: %v", err)
	}
	createTestUser(t, r, "dave")

	users, err := r.users.Search(ctx, "bob", 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	var handles []string
	for _, u := range users {
		handles = append(handles, u.Handle)
	}
	want := []string{"bob", "bobby", "abob", "carol"}
	if len(handles) != len(want) {
		t.Fatalf("expected %v, got %v", want, handles)
	}
	for i := range want {
		if handles[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, handles)
		}
	}
}

func TestUserSearchEscapesWildcards(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	createTestUser(t, r, "under_score")
	createTestUser(t, r, "undertow")

	users, err := r.users.Search(ctx, "under_", 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(users) != 1 || users[0].Handle != "under_score" {
		t.Fatalf("expected only under_score, got %+v", users)
	}
}

func TestUserSearchLimit(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	createTestUser(t, r, "sam1")
	createTestUser(t, r, "sam2")
	createTestUser(t, r, "sam3")

	users, err := r.users.Search(ctx, "sam", 2)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 results, got %d", len(users))
	}
}
