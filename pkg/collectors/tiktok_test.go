package collectors

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/samvad-hq/samvad-social-ingestor/internal/domain"
)

func tiktokTestDeps(jobs *fakeJobs, store *memStore) Deps {
	return Deps{
		Jobs:  jobs,
		Store: store,
		Accounts: fakeResolver{
			"acct-4": {ID: "acct-4", Platform: "tiktok", Handle: "someorg"},
		},
		Settings: Settings{MaxPosts: 10, MaxComments: 5, DefaultDaysBack: 7},
	}
}

func TestTikTokTransformPost(t *testing.T) {
	tk := NewTikTok(testDeps(), "prof", "post", "cmt")

	raw := []byte(`{
		"id": "tt1",
		"desc": "dance challenge @partner",
		"webVideoUrl": "https://www.tiktok.com/@someorg/video/tt1",
		"createTime": 1754042400,
		"videoUrl": "https://cdn.example/v.mp4",
		"diggCount": 1000,
		"commentCount": 50,
		"shareCount": 20,
		"playCount": 90000,
		"collectCount": 12,
		"hashtags": [{"name":"dance"},{"name":"challenge"}],
		"videoMeta": {"width": 1080, "height": 1920, "duration": 15},
		"authorMeta": {"id":"a1","name":"someorg","nickname":"Some Org","verified":true},
		"covers": ["https://cdn.example/cover.jpg"]
	}`)

	post, err := tk.TransformPost(raw, "acct-4")
	if err != nil {
		t.Fatalf("TransformPost failed: %v", err)
	}
	if post.ContentType != domain.ContentTypeVideo {
		t.Errorf("tiktok posts are always videos, got %s", post.ContentType)
	}
	// createTime is seconds since epoch.
	if want := time.Unix(1754042400, 0).UTC(); !post.CreatedAt.Equal(want) {
		t.Errorf("expected created_at %v, got %v", want, post.CreatedAt)
	}
	if len(post.Content.Hashtags) != 2 || post.Content.Hashtags[0] != "dance" {
		t.Errorf("structured hashtags must win: %v", post.Content.Hashtags)
	}
	if len(post.Content.Mentions) != 1 || post.Content.Mentions[0] != "partner" {
		t.Errorf("unexpected mentions: %v", post.Content.Mentions)
	}
	if post.Engagement.Views != 90000 || post.Engagement.Saves != 12 {
		t.Errorf("unexpected engagement: %+v", post.Engagement)
	}
	if post.Video == nil || post.Video.ThumbnailURL != "https://cdn.example/cover.jpg" || post.Video.DurationSeconds != 15 {
		t.Errorf("unexpected video data: %+v", post.Video)
	}
	if post.Metadata.Owner == nil || post.Metadata.Owner.Username != "someorg" {
		t.Errorf("unexpected owner: %+v", post.Metadata.Owner)
	}
	if post.ShortCode != "tt1" {
		t.Errorf("shortcode mirrors the video id, got %q", post.ShortCode)
	}
}

func TestTikTokHashtagFallback(t *testing.T) {
	tk := NewTikTok(testDeps(), "prof", "post", "cmt")

	post, err := tk.TransformPost([]byte(`{"id":"tt2","desc":"try this #fyp #viral"}`), "acct-4")
	if err != nil {
		t.Fatalf("TransformPost failed: %v", err)
	}
	if len(post.Content.Hashtags) != 2 || post.Content.Hashtags[0] != "fyp" || post.Content.Hashtags[1] != "viral" {
		t.Errorf("expected regex fallback hashtags, got %v", post.Content.Hashtags)
	}
}

func TestTikTokTransformComment(t *testing.T) {
	tk := NewTikTok(testDeps(), "prof", "post", "cmt")

	raw := []byte(`{
		"id": "cm1",
		"text": "so good @someorg",
		"createTime": 1754042400,
		"diggCount": 5,
		"replyCount": 2,
		"user": {"id":"u1","uniqueId":"fan","nickname":"A Fan","verified":false,"privateAccount":true},
		"replies": [
			{"id":"r1","text":"+1","createTime":1754042460,"uniqueId":"other","diggCount":1}
		]
	}`)

	comment, err := tk.TransformComment(raw, "doc-1")
	if err != nil {
		t.Fatalf("TransformComment failed: %v", err)
	}
	if comment.UserName != "fan" || !comment.UserPrivate {
		t.Errorf("unexpected comment user: %+v", comment)
	}
	if comment.PostURL != "https://www.tiktok.com/video/doc-1" {
		t.Errorf("unexpected post url: %q", comment.PostURL)
	}
	if len(comment.Replies) != 1 || comment.Replies[0].UserName != "other" {
		t.Errorf("unexpected replies: %+v", comment.Replies)
	}
	if comment.Engagement.Likes != 5 || comment.Engagement.Replies != 2 {
		t.Errorf("unexpected engagement: %+v", comment.Engagement)
	}
}

func TestTikTokCollectComments(t *testing.T) {
	store := newMemStore()
	postID, err := store.CreatePost(t.Context(), &domain.Post{
		Platform: "tiktok", PlatformID: "tt9", AccountID: "acct-4",
		URL: "https://www.tiktok.com/@someorg/video/tt9",
	})
	if err != nil {
		t.Fatalf("seed post: %v", err)
	}

	jobs := &fakeJobs{items: []json.RawMessage{
		json.RawMessage(`{"comments":[{"id":"cm1","text":"wow"},{"id":"cm2","text":"again"}]}`),
	}}
	tk := NewTikTok(tiktokTestDeps(jobs, store), "prof", "post", "cmt")

	ids, err := tk.CollectComments(t.Context(), postID, 0)
	if err != nil {
		t.Fatalf("CollectComments failed: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 comments, got %d", len(ids))
	}
	if jobs.lastActor != "cmt" {
		t.Errorf("expected comment actor, got %q", jobs.lastActor)
	}
	if jobs.lastInput["videoUrl"] != "https://www.tiktok.com/@someorg/video/tt9" {
		t.Errorf("unexpected videoUrl: %v", jobs.lastInput["videoUrl"])
	}
}

func TestTikTokCollectProfileNested(t *testing.T) {
	jobs := &fakeJobs{items: []json.RawMessage{
		json.RawMessage(`{"userInfo":{"id":"u1","uniqueId":"someorg","nickname":"Some Org","followerCount":500,"videoCount":40,"heartCount":9000}}`),
	}}
	tk := NewTikTok(tiktokTestDeps(jobs, newMemStore()), "prof", "post", "cmt")

	profile, err := tk.CollectProfile(t.Context(), "acct-4")
	if err != nil {
		t.Fatalf("CollectProfile failed: %v", err)
	}
	if profile.Handle != "someorg" || profile.FollowerCount != 500 {
		t.Errorf("unexpected profile: %+v", profile)
	}
	if profile.URL != "https://www.tiktok.com/@someorg" {
		t.Errorf("unexpected url: %s", profile.URL)
	}
	if profile.PostCount != 40 || profile.TotalLikes != 9000 {
		t.Errorf("unexpected counts: %+v", profile)
	}
	if jobs.lastActor != "prof" {
		t.Errorf("expected profile actor, got %q", jobs.lastActor)
	}
}
