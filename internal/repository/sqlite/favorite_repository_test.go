package sqlite

import (
	"context"
	"errors"
	"testing"

	"chirp/internal/domain"
)

func TestFavoriteAddRemove(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	alice := createTestUser(t, r, "alice")
	bob := createTestUser(t, r, "bob")
	post := createTestPost(t, r, bob.ID, "hello world")

	if err := r.favorites.Add(ctx, alice.ID, post.ID); err != nil {
		t.Fatalf("favorite: %v", err)
	}
	if err := r.favorites.Add(ctx, alice.ID, post.ID); !errors.Is(err, domain.ErrAlreadyFavorited) {
		t.Fatalf("expected ErrAlreadyFavorited, got %v", err)
	}

	n, err := r.favorites.CountForPost(ctx, post.ID)
	if err != nil {
		t.Fatalf("count for post: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 favorite, got %d", n)
	}

	if err := r.favorites.Remove(ctx, alice.ID, post.ID); err != nil {
		t.Fatalf("unfavorite: %v", err)
	}
	if err := r.favorites.Remove(ctx, alice.ID, post.ID); !errors.Is(err, domain.ErrNotFavorited) {
		t.Fatalf("expected ErrNotFavorited, got %v", err)
	}
}

func TestFavoriteMissingPost(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	alice := createTestUser(t, r, "alice")
	if err := r.favorites.Add(ctx, alice.ID, 9999); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFavoriteListOrder(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	alice := createTestUser(t, r, "alice")
	bob := createTestUser(t, r, "bob")
	p1 := createTestPost(t, r, bob.ID, "one")
	p2 := createTestPost(t, r, bob.ID, "two")
	p3 := createTestPost(t, r, bob.ID, "three")

	for _, id := range []int64{p1.ID, p2.ID, p3.ID} {
		if err := r.favorites.Add(ctx, alice.ID, id); err != nil {
			t.Fatalf("favorite %d: %v", id, err)
		}
	}

	favs, err := r.favorites.ListPosts(ctx, alice.ID, nil, 10)
	if err != nil {
		t.Fatalf("list favorites: %v", err)
	}
	if len(favs) != 3 {
		t.Fatalf("expected 3 favorites, got %d", len(favs))
	}
	wantOrder := []int64{p3.ID, p2.ID, p1.ID}
	for i, fav := range favs {
		if fav.Post.ID != wantOrder[i] {
			t.Fatalf("expected newest-favorited-first %v, got post %d at index %d", wantOrder, fav.Post.ID, i)
		}
		if fav.FavoritedAt.IsZero() {
			t.Fatal("expected favorited_at to be set")
		}
	}

	n, err := r.favorites.CountByUser(ctx, alice.ID)
	if err != nil {
		t.Fatalf("count by user: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 favorites, got %d", n)
	}
}

func TestFavoriteListPagination(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	alice := createTestUser(t, r, "alice")
	bob := createTestUser(t, r, "bob")
	for i := 0; i < 5; i++ {
		p := createTestPost(t, r, bob.ID, "post")
		if err := r.favorites.Add(ctx, alice.ID, p.ID); err != nil {
			t.Fatalf("favorite: %v", err)
		}
	}

	var total int
	var before *domain.Cursor
	for {
		favs, err := r.favorites.ListPosts(ctx, alice.ID, before, 2)
		if err != nil {
			t.Fatalf("list favorites page: %v", err)
		}
		if len(favs) == 0 {
			break
		}
		total += len(favs)
		last := favs[len(favs)-1]
		before = &domain.Cursor{CreatedAt: last.FavoritedAt, ID: last.FavoriteID}
		if len(favs) < 2 {
			break
		}
	}
	if total != 5 {
		t.Fatalf("expected 5 favorites across pages, got %d", total)
	}
}

func TestFavoriteCascadeOnPostDelete(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	alice := createTestUser(t, r, "alice")
	post := createTestPost(t, r, alice.ID, "transient")
	if err := r.favorites.Add(ctx, alice.ID, post.ID); err != nil {
		t.Fatalf("favorite: %v", err)
	}

	if err := r.posts.Delete(ctx, post.ID, alice.ID); err != nil {
		t.Fatalf("delete post: %v", err)
	}

	n, err := r.favorites.CountByUser(ctx, alice.ID)
	if err != nil {
		t.Fatalf("count by user: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected favorites to cascade, got %d", n)
	}
}
