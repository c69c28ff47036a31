package collectors

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/samvad-hq/samvad-social-ingestor/internal/domain"
)

func instagramTestDeps(jobs *fakeJobs, store *memStore) Deps {
	return Deps{
		Jobs:  jobs,
		Store: store,
		Accounts: fakeResolver{
			"acct-2": {ID: "acct-2", Platform: "instagram", Handle: "someorg"},
		},
		Settings: Settings{MaxPosts: 10, MaxComments: 5, DefaultDaysBack: 7},
	}
}

func TestInstagramTransformCarousel(t *testing.T) {
	ig := NewInstagram(testDeps(), "actor-2")

	raw := []byte(`{
		"id": "ig1",
		"caption": "gallery #trip",
		"shortCode": "AbCd123",
		"timestamp": 1754042400000,
		"displayUrl": "https://ig.example/main.jpg",
		"images": ["https://ig.example/1.jpg", "https://ig.example/2.jpg"],
		"likesCount": 10,
		"commentsCount": 2,
		"sidecarChildren": [
			{"id":"c1","shortCode":"AbCd123","displayUrl":"https://ig.example/1.jpg","imageWidth":1080,"imageHeight":1350},
			{"id":"c2","shortCode":"AbCd123","displayUrl":"https://ig.example/2.jpg","isVideo":true}
		]
	}`)

	post, err := ig.TransformPost(raw, "acct-2")
	if err != nil {
		t.Fatalf("TransformPost failed: %v", err)
	}
	// Multiple images without a video means carousel.
	if post.ContentType != domain.ContentTypeCarousel {
		t.Fatalf("expected carousel, got %s", post.ContentType)
	}
	if len(post.ChildPosts) != 2 {
		t.Fatalf("expected 2 child posts, got %d", len(post.ChildPosts))
	}
	if post.ChildPosts[0].ID != "c1" || post.ChildPosts[1].ID != "c2" {
		t.Errorf("child order must match the source payload: %+v", post.ChildPosts)
	}
	if post.ChildPosts[0].Type != "Image" || post.ChildPosts[1].Type != "Video" {
		t.Errorf("unexpected child types: %+v", post.ChildPosts)
	}
	if post.ChildPosts[0].Dimensions == nil || post.ChildPosts[0].Dimensions.Width != 1080 {
		t.Errorf("expected child dimensions from imageWidth/imageHeight: %+v", post.ChildPosts[0].Dimensions)
	}
	if post.ShortCode != "AbCd123" || post.URL != "https://www.instagram.com/p/AbCd123/" {
		t.Errorf("unexpected shortcode/url: %q %q", post.ShortCode, post.URL)
	}
	if want := time.UnixMilli(1754042400000).UTC(); !post.CreatedAt.Equal(want) {
		t.Errorf("expected created_at %v, got %v", want, post.CreatedAt)
	}
}

func TestInstagramTransformVideo(t *testing.T) {
	ig := NewInstagram(testDeps(), "actor-2")

	raw := []byte(`{
		"id": "ig2",
		"caption": "watch",
		"isVideo": true,
		"videoUrl": "https://ig.example/v.mp4",
		"displayUrl": "https://ig.example/thumb.jpg",
		"videoViewCount": 5000,
		"videoDuration": 12.5,
		"likesCount": 100
	}`)

	post, err := ig.TransformPost(raw, "acct-2")
	if err != nil {
		t.Fatalf("TransformPost failed: %v", err)
	}
	if post.ContentType != domain.ContentTypeVideo {
		t.Fatalf("expected video, got %s", post.ContentType)
	}
	if post.Engagement.Views != 5000 {
		t.Errorf("video views must be kept: %+v", post.Engagement)
	}
	if post.Video == nil || post.Video.VideoURL != "https://ig.example/v.mp4" || post.Video.DurationSeconds != 12.5 {
		t.Errorf("unexpected video data: %+v", post.Video)
	}
	if post.Video.ThumbnailURL != "https://ig.example/thumb.jpg" {
		t.Errorf("unexpected thumbnail: %q", post.Video.ThumbnailURL)
	}
}

func TestInstagramTransformMissingTimestamp(t *testing.T) {
	ig := NewInstagram(testDeps(), "actor-2")

	before := time.Now().UTC()
	post, err := ig.TransformPost([]byte(`{"id":"ig3","caption":"no time"}`), "acct-2")
	if err != nil {
		t.Fatalf("TransformPost failed: %v", err)
	}
	if post.CreatedAt.IsZero() {
		t.Fatal("created_at must never be zero")
	}
	if post.CreatedAt.Before(before.Add(-time.Minute)) || post.CreatedAt.After(time.Now().Add(time.Minute)) {
		t.Errorf("expected created_at near now, got %v", post.CreatedAt)
	}
}

func TestInstagramCollectPostsFlattensProfiles(t *testing.T) {
	jobs := &fakeJobs{items: []json.RawMessage{
		json.RawMessage(`{"type":"user","latestPosts":[{"id":"p1","caption":"a"},{"id":"p2","caption":"b"}]}`),
		json.RawMessage(`{"id":"p3","caption":"c"}`),
	}}
	store := newMemStore()
	ig := NewInstagram(instagramTestDeps(jobs, store), "actor-2")

	ids, err := ig.CollectPosts(t.Context(), "acct-2", 0, time.Time{})
	if err != nil {
		t.Fatalf("CollectPosts failed: %v", err)
	}
	if len(ids) != 3 {
		t.Fatalf("expected 3 posts, got %d", len(ids))
	}
	if jobs.lastInput["resultsType"] != "posts" {
		t.Errorf("unexpected resultsType: %v", jobs.lastInput["resultsType"])
	}
}

func TestInstagramCollectComments(t *testing.T) {
	store := newMemStore()
	postID, err := store.CreatePost(t.Context(), &domain.Post{
		Platform: "instagram", PlatformID: "ig9", AccountID: "acct-2", ShortCode: "XyZ",
	})
	if err != nil {
		t.Fatalf("seed post: %v", err)
	}

	jobs := &fakeJobs{items: []json.RawMessage{
		json.RawMessage(`{"type":"post","comments":[{"id":"cm1","text":"nice","ownerUsername":"fan","likesCount":4}]}`),
		json.RawMessage(`{"id":"cm2","ownerUsername":"other","text":"hello"}`),
	}}
	ig := NewInstagram(instagramTestDeps(jobs, store), "actor-2")

	ids, err := ig.CollectComments(t.Context(), postID, 0)
	if err != nil {
		t.Fatalf("CollectComments failed: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 comments, got %d", len(ids))
	}

	urls, ok := jobs.lastInput["directUrls"].([]string)
	if !ok || urls[0] != "https://www.instagram.com/p/XyZ/" {
		t.Errorf("expected url derived from shortcode, got %v", jobs.lastInput["directUrls"])
	}

	c, _ := store.GetComment(t.Context(), ids[0])
	if c.PostURL != "https://www.instagram.com/p/XyZ/" {
		t.Errorf("expected post url backfilled on comment, got %q", c.PostURL)
	}
}

func TestInstagramCommentReplies(t *testing.T) {
	ig := NewInstagram(testDeps(), "actor-2")

	raw := []byte(`{
		"id": "cm5",
		"text": "thread",
		"timestamp": 1754042400000,
		"ownerUsername": "fan",
		"parentCommentId": "",
		"replies": [
			{"id":"r1","text":"reply","ownerUsername":"other","likesCount":1,"timestamp":1754042460000}
		]
	}`)

	comment, err := ig.TransformComment(raw, "post-1")
	if err != nil {
		t.Fatalf("TransformComment failed: %v", err)
	}
	if comment.Engagement.Replies != 1 {
		t.Errorf("replies count must mirror the nested list: %+v", comment.Engagement)
	}
	if len(comment.Replies) != 1 || comment.Replies[0].UserName != "other" {
		t.Errorf("unexpected replies: %+v", comment.Replies)
	}
	if comment.Metadata.IsReply {
		t.Error("comment without parent must not be marked a reply")
	}
}

func TestInstagramTransformProfile(t *testing.T) {
	ig := NewInstagram(testDeps(), "actor-2")

	profile, err := ig.TransformProfile([]byte(`{"id":"u1","username":"someorg","fullName":"Some Org","verified":true,"followersCount":2000,"followsCount":10}`))
	if err != nil {
		t.Fatalf("TransformProfile failed: %v", err)
	}
	if profile.URL != "https://www.instagram.com/someorg/" {
		t.Errorf("unexpected url: %s", profile.URL)
	}
	if profile.FollowerCount != 2000 || profile.FollowingCount != 10 {
		t.Errorf("unexpected counts: %+v", profile)
	}
}
