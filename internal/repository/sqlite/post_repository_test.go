package sqlite

import (
	"context"
	"errors"
	"testing"

	"chirp/internal/domain"
)

func TestPostCreateAndGet(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	alice := createTestUser(t, r, "alice")
	post := createTestPost(t, r, alice.ID, "first post")
	if post.ID == 0 {
		t.Fatal("expected post id to be assigned")
	}

	got, err := r.posts.Get(ctx, post.ID)
	if err != nil {
		t.Fatalf("get post: %v", err)
	}
	if got.Body != "first post" || got.AuthorID != alice.ID {
		t.Fatalf("unexpected post: %+v", got)
	}
	if got.ParentPostID != nil {
		t.Fatalf("expected no parent, got %d", *got.ParentPostID)
	}
}

func TestPostCreateMissingAuthor(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	_, err := r.posts.Create(ctx, &domain.Post{AuthorID: 42, Body: "hi"})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPostReply(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	alice := createTestUser(t, r, "alice")
	parent := createTestPost(t, r, alice.ID, "parent")

	reply := &domain.Post{AuthorID: alice.ID, Body: "reply", ParentPostID: &parent.ID}
	if _, err := r.posts.Create(ctx, reply); err != nil {
		t.Fatalf("create reply: %v", err)
	}

	got, err := r.posts.Get(ctx, reply.ID)
	if err != nil {
		t.Fatalf("get reply: %v", err)
	}
	if got.ParentPostID == nil || *got.ParentPostID != parent.ID {
		t.Fatalf("expected parent %d, got %+v", parent.ID, got.ParentPostID)
	}

	n, err := r.posts.CountReplies(ctx, parent.ID)
	if err != nil {
		t.Fatalf("count replies: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 reply, got %d", n)
	}

	missing := int64(9999)
	_, err = r.posts.Create(ctx, &domain.Post{AuthorID: alice.ID, Body: "orphan", ParentPostID: &missing})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing parent, got %v", err)
	}
}

func TestPostDelete(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	alice := createTestUser(t, r, "alice")
	bob := createTestUser(t, r, "bob")
	post := createTestPost(t, r, alice.ID, "doomed")

	if err := r.posts.Delete(ctx, post.ID, bob.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for non-author delete, got %v", err)
	}

	if err := r.posts.Delete(ctx, post.ID, alice.ID); err != nil {
		t.Fatalf("delete post: %v", err)
	}
	if _, err := r.posts.Get(ctx, post.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestPostDeleteClearsReplyParent(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	alice := createTestUser(t, r, "alice")
	parent := createTestPost(t, r, alice.ID, "parent")
	reply := &domain.Post{AuthorID: alice.ID, Body: "reply", ParentPostID: &parent.ID}
	if _, err := r.posts.Create(ctx, reply); err != nil {
		t.Fatalf("create reply: %v", err)
	}

	if err := r.posts.Delete(ctx, parent.ID, alice.ID); err != nil {
		t.Fatalf("delete parent: %v", err)
	}

	got, err := r.posts.Get(ctx, reply.ID)
	if err != nil {
		t.Fatalf("get reply: %v", err)
	}
	if got.ParentPostID != nil {
		t.Fatalf("expected cleared parent, got %d", *got.ParentPostID)
	}
}

func TestPostTimeline(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	alice := createTestUser(t, r, "alice")
	bob := createTestUser(t, r, "bob")
	carol := createTestUser(t, r, "carol")
	dave := createTestUser(t, r, "dave")

	if err := r.follows.Add(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("follow bob: %v", err)
	}
	if err := r.follows.Add(ctx, alice.ID, carol.ID); err != nil {
		t.Fatalf("follow carol: %v", err)
	}

	p1 := createTestPost(t, r, bob.ID, "from bob")
	p2 := createTestPost(t, r, carol.ID, "from carol")
	createTestPost(t, r, dave.ID, "from dave")
	mine := createTestPost(t, r, alice.ID, "from alice")

	posts, err := r.posts.ListTimeline(ctx, alice.ID, false, nil, 10)
	if err != nil {
		t.Fatalf("timeline: %v", err)
	}
	assertPostIDs(t, posts, p2.ID, p1.ID)

	posts, err = r.posts.ListTimeline(ctx, alice.ID, true, nil, 10)
	if err != nil {
		t.Fatalf("timeline with self: %v", err)
	}
	assertPostIDs(t, posts, mine.ID, p2.ID, p1.ID)
}

func TestPostTimelinePagination(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	alice := createTestUser(t, r, "alice")
	bob := createTestUser(t, r, "bob")
	if err := r.follows.Add(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("follow: %v", err)
	}

	var ids []int64
	for i := 0; i < 5; i++ {
		p := createTestPost(t, r, bob.ID, "post")
		ids = append(ids, p.ID)
	}

	var seen []int64
	var before *domain.Cursor
	for {
		posts, err := r.posts.ListTimeline(ctx, alice.ID, false, before, 2)
		if err != nil {
			t.Fatalf("timeline page: %v", err)
		}
		if len(posts) == 0 {
			break
		}
		for _, p := range posts {
			seen = append(seen, p.ID)
		}
		last := posts[len(posts)-1]
		before = &domain.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}
		if len(posts) < 2 {
			break
		}
	}

	if len(seen) != len(ids) {
		t.Fatalf("expected %d posts across pages, got %d", len(ids), len(seen))
	}
	for i := range seen {
		want := ids[len(ids)-1-i]
		if seen[i] != want {
			t.Fatalf("page walk out of order: got %v, want newest first of %v", seen, ids)
		}
	}
}

func TestPostListByAuthor(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	alice := createTestUser(t, r, "alice")
	bob := createTestUser(t, r, "bob")
	p1 := createTestPost(t, r, alice.ID, "one")
	p2 := createTestPost(t, r, alice.ID, "two")
	createTestPost(t, r, bob.ID, "other")

	posts, err := r.posts.ListByAuthor(ctx, alice.ID, nil, 10)
	if err != nil {
		t.Fatalf("list by author: %v", err)
	}
	assertPostIDs(t, posts, p2.ID, p1.ID)

	n, err := r.posts.CountByAuthor(ctx, alice.ID)
	if err != nil {
		t.Fatalf("count by author: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 posts, got %d", n)
	}
}

func TestPostSearchBody(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	alice := createTestUser(t, r, "alice")
	match := createTestPost(t, r, alice.ID, "Hello World")
	createTestPost(t, r, alice.ID, "unrelated")

	posts, err := r.posts.SearchBody(ctx, "hello", 10)
	if err != nil {
		t.Fatalf("search body: %v", err)
	}
	assertPostIDs(t, posts, match.ID)

	posts, err = r.posts.SearchBody(ctx, "100%", 10)
	if err != nil {
		t.Fatalf("search wildcard: %v", err)
	}
	if len(posts) != 0 {
		t.Fatalf("expected no matches for escaped wildcard, got %d", len(posts))
	}
}

func TestPostSearchHashtag(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	alice := createTestUser(t, r, "alice")
	tagged := createTestPost(t, r, alice.ID, "shipping #GoLang today")
	createTestPost(t, r, alice.ID, "mentions golang but no tag")

	posts, err := r.posts.SearchHashtag(ctx, "golang", 10)
	if err != nil {
		t.Fatalf("search hashtag: %v", err)
	}
	assertPostIDs(t, posts, tagged.ID)
}

func assertPostIDs(t *testing.T, posts []domain.Post, want ...int64) {
	t.Helper()
	var got []int64
	for _, p := range posts {
		got = append(got, p.ID)
	}
	if len(got) != len(want) {
		t.Fatalf("expected post ids %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected post ids %v, got %v", want, got)
		}
	}
}
