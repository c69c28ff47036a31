package storage

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/samvad-hq/samvad-social-ingestor/internal/domain"
)

func newTestStore(t *testing.T) Store {
	t.Helper()
	store, err := NewStore(Options{Type: "bbolt", BBoltPath: filepath.Join(t.TempDir(), "test.db")})
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func samplePost(platformID string) *domain.Post {
	return &domain.Post{
		Platform:    domain.PlatformTwitter,
		PlatformID:  platformID,
		AccountID:   "acct-1",
		ContentType: domain.ContentTypePost,
		URL:         "https://x.com/acct-1/status/" + platformID,
		Content:     domain.Content{Text: "hello from " + platformID},
		CreatedAt:   time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		Engagement:  domain.Engagement{Likes: 10, Comments: 2},
	}
}

func TestCreateAndGetPost(t *testing.T) {
	store := newTestStore(t)
	ctx := t.Context()

	id, err := store.CreatePost(ctx, samplePost("111"))
	if err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}
	if id == "" {
		t.Fatal("expected a generated id")
	}

	got, err := store.GetPost(ctx, id)
	if err != nil {
		t.Fatalf("GetPost failed: %v", err)
	}
	if got.PlatformID != "111" || got.Content.Text != "hello from 111" {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestCreatePostDuplicate(t *testing.T) {
	store := newTestStore(t)
	ctx := t.Context()

	first, err := store.CreatePost(ctx, samplePost("222"))
	if err != nil {
		t.Fatalf("first CreatePost failed: %v", err)
	}

	_, err = store.CreatePost(ctx, samplePost("222"))
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	// The original document is untouched.
	got, err := store.FindPostByPlatformID(ctx, domain.PlatformTwitter, "222")
	if err != nil {
		t.Fatalf("FindPostByPlatformID failed: %v", err)
	}
	if got.ID != first {
		t.Errorf("expected original id %s, got %s", first, got.ID)
	}
}

func TestFindPostByPlatformIDScopedByPlatform(t *testing.T) {
	store := newTestStore(t)
	ctx := t.Context()

	post := samplePost("333")
	if _, err := store.CreatePost(ctx, post); err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}

	if _, err := store.FindPostByPlatformID(ctx, domain.PlatformInstagram, "333"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for other platform, got %v", err)
	}

	other := samplePost("333")
	other.Platform = domain.PlatformInstagram
	if _, err := store.CreatePost(ctx, other); err != nil {
		t.Fatalf("same platform id on another platform should insert, got %v", err)
	}
}

func TestUpdatePostEngagementOnly(t *testing.T) {
	store := newTestStore(t)
	ctx := t.Context()

	id, err := store.CreatePost(ctx, samplePost("444"))
	if err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}

	fresh := domain.Engagement{Likes: 99, Shares: 5, Comments: 7, Views: 1000}
	if err := store.UpdatePostEngagement(ctx, id, fresh); err != nil {
		t.Fatalf("UpdatePostEngagement failed: %v", err)
	}

	got, err := store.GetPost(ctx, id)
	if err != nil {
		t.Fatalf("GetPost failed: %v", err)
	}
	if got.Engagement != fresh {
		t.Errorf("engagement not updated: %+v", got.Engagement)
	}
	if got.Content.Text != "hello from 444" {
		t.Errorf("content must survive an engagement update, got %q", got.Content.Text)
	}

	if err := store.UpdatePostEngagement(ctx, "no-such-id", fresh); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown id, got %v", err)
	}
}

func TestCommentLifecycle(t *testing.T) {
	store := newTestStore(t)
	ctx := t.Context()

	comment := &domain.Comment{
		Platform:   domain.PlatformTikTok,
		PlatformID: "c-1",
		PostID:     "post-1",
		Content:    domain.CommentContent{Text: "nice"},
		CreatedAt:  time.Now().UTC(),
		Engagement: domain.CommentEngagement{Likes: 3},
	}
	id, err := store.CreateComment(ctx, comment)
	if err != nil {
		t.Fatalf("CreateComment failed: %v", err)
	}

	if _, err := store.CreateComment(ctx, &domain.Comment{
		Platform: domain.PlatformTikTok, PlatformID: "c-1", PostID: "post-1",
	}); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	if err := store.UpdateCommentEngagement(ctx, id, domain.CommentEngagement{Likes: 8, Replies: 1}); err != nil {
		t.Fatalf("UpdateCommentEngagement failed: %v", err)
	}
	got, err := store.GetComment(ctx, id)
	if err != nil {
		t.Fatalf("GetComment failed: %v", err)
	}
	if got.Engagement.Likes != 8 || got.Engagement.Replies != 1 {
		t.Errorf("engagement not updated: %+v", got.Engagement)
	}
	if got.Content.Text != "nice" {
		t.Errorf("content must survive an engagement update, got %q", got.Content.Text)
	}
}

func TestNewStoreUnknownType(t *testing.T) {
	if _, err := NewStore(Options{Type: "postgres"}); err == nil {
		t.Fatal("expected error for unknown storage type")
	}
}
