package collectors

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/samvad-hq/samvad-social-ingestor/internal/domain"
)

func facebookTestDeps(jobs *fakeJobs, store *memStore) Deps {
	return Deps{
		Jobs:  jobs,
		Store: store,
		Accounts: fakeResolver{
			"acct-3": {ID: "acct-3", Platform: "facebook", Handle: "someorg", URL: "https://www.facebook.com/someorg"},
		},
		Settings: Settings{MaxPosts: 10, MaxComments: 5, DefaultDaysBack: 7},
	}
}

func TestFacebookTransformPostReactions(t *testing.T) {
	fb := NewFacebook(testDeps(), "actor-3")

	raw := []byte(`{
		"postId": "fb1",
		"type": "post",
		"text": "announcement https://example.com/more",
		"postUrl": "https://www.facebook.com/someorg/posts/fb1",
		"timestamp": 1754042400000,
		"reactionsCount": {"like": 10, "love": 5, "care": 2, "angry": 99},
		"sharesCount": 3,
		"commentsCount": 7
	}`)

	post, err := fb.TransformPost(raw, "acct-3")
	if err != nil {
		t.Fatalf("TransformPost failed: %v", err)
	}
	// Only like, love, and care count as likes.
	if post.Engagement.Likes != 17 {
		t.Errorf("expected likes 17, got %d", post.Engagement.Likes)
	}
	if post.Engagement.Shares != 3 || post.Engagement.Comments != 7 {
		t.Errorf("unexpected engagement: %+v", post.Engagement)
	}
	if post.URL != "https://www.facebook.com/someorg/posts/fb1" {
		t.Errorf("unexpected url: %s", post.URL)
	}
	if len(post.Content.Links) != 2 {
		t.Errorf("expected post url plus text link, got %v", post.Content.Links)
	}
}

func TestFacebookTransformShare(t *testing.T) {
	fb := NewFacebook(testDeps(), "actor-3")

	post, err := fb.TransformPost([]byte(`{"id":"fb2","text":"look","sharingPostUrl":"https://fb.example/orig"}`), "acct-3")
	if err != nil {
		t.Fatalf("TransformPost failed: %v", err)
	}
	if post.ContentType != domain.ContentTypeShare {
		t.Errorf("expected share, got %s", post.ContentType)
	}
	if !post.Metadata.IsRepost {
		t.Error("share must set is_repost")
	}
	if post.PlatformID != "fb2" {
		t.Errorf("id fallback failed: %q", post.PlatformID)
	}
}

func TestFacebookCommentReactionShapes(t *testing.T) {
	fb := NewFacebook(testDeps(), "actor-3")

	// Reaction map: all kinds sum into likes.
	c1, err := fb.TransformComment([]byte(`{"commentId":"c1","text":"a","reactionsCount":{"like":2,"love":1,"haha":3}}`), "post-1")
	if err != nil {
		t.Fatalf("TransformComment failed: %v", err)
	}
	if c1.Engagement.Likes != 6 {
		t.Errorf("expected summed reactions 6, got %d", c1.Engagement.Likes)
	}

	// Plain numeric total.
	c2, err := fb.TransformComment([]byte(`{"id":"c2","text":"b","reactionsCount":9}`), "post-1")
	if err != nil {
		t.Fatalf("TransformComment failed: %v", err)
	}
	if c2.Engagement.Likes != 9 {
		t.Errorf("expected numeric reactions 9, got %d", c2.Engagement.Likes)
	}
}

func TestFacebookCollectPostsFiltersNonPosts(t *testing.T) {
	jobs := &fakeJobs{items: []json.RawMessage{
		json.RawMessage(`{"type":"page","name":"Some Org"}`),
		json.RawMessage(`{"type":"post","postId":"fb3","text":"hello"}`),
	}}
	store := newMemStore()
	fb := NewFacebook(facebookTestDeps(jobs, store), "actor-3")

	ids, err := fb.CollectPosts(t.Context(), "acct-3", 0, time.Time{})
	if err != nil {
		t.Fatalf("CollectPosts failed: %v", err)
	}
	if len(ids) != 1 {
		t.Fatalf("expected only the post item, got %d", len(ids))
	}

	startURLs, ok := jobs.lastInput["startUrls"].([]map[string]string)
	if !ok || startURLs[0]["url"] != "https://www.facebook.com/someorg" {
		t.Errorf("unexpected startUrls: %v", jobs.lastInput["startUrls"])
	}
}

func TestFacebookCollectComments(t *testing.T) {
	store := newMemStore()
	postID, err := store.CreatePost(t.Context(), &domain.Post{
		Platform: "facebook", PlatformID: "fb9", AccountID: "acct-3",
		URL: "https://www.facebook.com/someorg/posts/fb9",
	})
	if err != nil {
		t.Fatalf("seed post: %v", err)
	}

	jobs := &fakeJobs{items: []json.RawMessage{
		json.RawMessage(`{"type":"post","comments":[{"commentId":"c1","text":"first","name":"A Fan","authorId":"u1"}]}`),
	}}
	fb := NewFacebook(facebookTestDeps(jobs, store), "actor-3")

	ids, err := fb.CollectComments(t.Context(), postID, 0)
	if err != nil {
		t.Fatalf("CollectComments failed: %v", err)
	}
	if len(ids) != 1 {
		t.Fatalf("expected 1 comment, got %d", len(ids))
	}

	c, _ := store.GetComment(t.Context(), ids[0])
	if c.UserName != "A Fan" || c.UserID != "u1" {
		t.Errorf("unexpected comment author: %+v", c)
	}
	if c.PostURL != "https://www.facebook.com/someorg/posts/fb9" {
		t.Errorf("expected parent post url backfilled, got %q", c.PostURL)
	}
}

func TestFacebookTransformProfileHandle(t *testing.T) {
	fb := NewFacebook(testDeps(), "actor-3")

	p1, err := fb.TransformProfile([]byte(`{"pageId":"pg1","name":"Some Org","url":"https://www.facebook.com/someorg/about","followersCount":4000}`))
	if err != nil {
		t.Fatalf("TransformProfile failed: %v", err)
	}
	if p1.Handle != "someorg" {
		t.Errorf("expected handle from url path, got %q", p1.Handle)
	}

	p2, err := fb.TransformProfile([]byte(`{"id":"pg2","name":"Other Org","likes":123}`))
	if err != nil {
		t.Fatalf("TransformProfile failed: %v", err)
	}
	if p2.Handle != "otherorg" {
		t.Errorf("expected handle from name, got %q", p2.Handle)
	}
	if p2.FollowerCount != 123 {
		t.Errorf("expected likes fallback for followers, got %d", p2.FollowerCount)
	}
}
