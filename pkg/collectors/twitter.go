package collectors

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/samvad-hq/samvad-social-ingestor/internal/domain"
)

// Twitter collects tweets, replies, and profile snapshots via the remote
// Twitter scraper actor.
type Twitter struct {
	base
	actorID string
}

func NewTwitter(deps Deps, actorID string) *Twitter {
	return &Twitter{base: newBase(deps, domain.PlatformTwitter), actorID: actorID}
}

func (t *Twitter) Platform() string { return domain.PlatformTwitter }

func (t *Twitter) CollectPosts(ctx context.Context, accountID string, count int, since time.Time) ([]string, error) {
	acct, err := t.account(accountID)
	if err != nil {
		return nil, err
	}

	max := t.maxPosts(count)
	start := t.startDate(since)

	t.deps.Log.InfoObj("collecting tweets", "collect", map[string]any{
		"handle": acct.Handle,
		"max":    max,
		"since":  start.Format("2006-01-02"),
	})

	items, err := t.deps.Jobs.RunToCompletion(ctx, t.actorID, map[string]any{
		"usernames":       []string{acct.Handle},
		"maxItems":        max,
		"dateFrom":        start.Format("2006-01-02"),
		"includeReplies":  false,
		"includeRetweets": true,
		"includeImages":   true,
		"includeVideos":   true,
	}, max)
	if err != nil {
		return nil, fmt.Errorf("collect tweets for %s: %w", acct.Handle, err)
	}

	return t.savePosts(ctx, items, accountID, t.TransformPost)
}

func (t *Twitter) CollectComments(ctx context.Context, postID string, count int) ([]string, error) {
	post, err := t.parentPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	max := t.maxComments(count)
	items, err := t.deps.Jobs.RunToCompletion(ctx, t.actorID, map[string]any{
		"tweetUrls":      []string{"https://twitter.com/i/status/" + post.PlatformID},
		"maxReplies":     max,
		"maxItems":       1,
		"includeReplies": true,
	}, 0)
	if err != nil {
		return nil, fmt.Errorf("collect replies for tweet %s: %w", post.PlatformID, err)
	}

	// The actor returns the original tweet with its replies nested.
	var replies []json.RawMessage
	for _, item := range items {
		var tweet struct {
			RepliedTo json.RawMessage   `json:"repliedTo"`
			Replies   []json.RawMessage `json:"replies"`
		}
		if err := json.Unmarshal(item, &tweet); err != nil {
			continue
		}
		if tweet.RepliedTo != nil {
			replies = append(replies, tweet.Replies...)
		}
	}

	return t.saveComments(ctx, replies, postID, post.URL, post.AccountID, t.TransformComment)
}

func (t *Twitter) CollectProfile(ctx context.Context, accountID string) (domain.Profile, error) {
	acct, err := t.account(accountID)
	if err != nil {
		return domain.Profile{}, err
	}

	items, err := t.deps.Jobs.RunToCompletion(ctx, t.actorID, map[string]any{
		"usernames":       []string{acct.Handle},
		"maxItems":        1,
		"includeUserInfo": true,
	}, 1)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("collect profile for %s: %w", acct.Handle, err)
	}
	if len(items) == 0 {
		return domain.Profile{}, &NotFoundError{Kind: "twitter profile", ID: acct.Handle}
	}

	// Profile info rides along inside the tweet payload.
	var tweet struct {
		User json.RawMessage `json:"user"`
	}
	if err := json.Unmarshal(items[0], &tweet); err != nil || tweet.User == nil {
		return domain.Profile{}, &NotFoundError{Kind: "twitter profile", ID: acct.Handle}
	}

	return t.TransformProfile(tweet.User)
}

func (t *Twitter) UpdateMetrics(ctx context.Context, accountID string) (domain.Profile, error) {
	return t.CollectProfile(ctx, accountID)
}

func (t *Twitter) TransformPost(raw []byte, accountID string) (domain.Post, error) {
	var p struct {
		ID        string `json:"id"`
		Text      string `json:"text"`
		CreatedAt string `json:"createdAt"`
		Lang      string `json:"lang"`
		Source    string `json:"source"`
		IsRetweet bool   `json:"isRetweet"`
		IsReply   bool   `json:"isReply"`
		Like      int64  `json:"likeCount"`
		Retweet   int64  `json:"retweetCount"`
		Reply     int64  `json:"replyCount"`
		View      int64  `json:"viewCount"`
		Media     []struct {
			URL string `json:"url"`
		} `json:"media"`
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return domain.Post{}, &TransformError{Platform: domain.PlatformTwitter, Kind: "post", Err: err}
	}
	if p.ID == "" {
		return domain.Post{}, &TransformError{Platform: domain.PlatformTwitter, Kind: "post", Err: fmt.Errorf("missing tweet id")}
	}

	var media []string
	for _, m := range p.Media {
		if m.URL != "" {
			media = append(media, m.URL)
		}
	}

	contentType := domain.ContentTypePost
	if p.IsRetweet {
		contentType = domain.ContentTypeRepost
	}

	client := p.Source
	if client == "" {
		client = "Twitter"
	}
	lang := p.Lang
	if lang == "" {
		lang = "unknown"
	}

	return domain.Post{
		Platform:    domain.PlatformTwitter,
		PlatformID:  p.ID,
		AccountID:   accountID,
		ContentType: contentType,
		Content: domain.Content{
			Text:     p.Text,
			Media:    media,
			Links:    ExtractLinks(p.Text),
			Hashtags: ExtractHashtags(p.Text),
			Mentions: ExtractMentions(p.Text),
		},
		CreatedAt: createdAtOrNow(parseAPITimestamp(p.CreatedAt)),
		Metadata: domain.PostMetadata{
			Language: lang,
			Client:   client,
			IsRepost: p.IsRetweet,
			IsReply:  p.IsReply,
		},
		Engagement: domain.Engagement{
			Likes:    p.Like,
			Shares:   p.Retweet,
			Comments: p.Reply,
			Views:    p.View,
		},
	}, nil
}

func (t *Twitter) TransformComment(raw []byte, postID string) (domain.Comment, error) {
	var c struct {
		ID        string `json:"id"`
		Text      string `json:"text"`
		CreatedAt string `json:"createdAt"`
		Lang      string `json:"lang"`
		Like      int64  `json:"likeCount"`
		Reply     int64  `json:"replyCount"`
		User      struct {
			ID       string `json:"id"`
			Username string `json:"username"`
		} `json:"user"`
		Media []struct {
			URL string `json:"url"`
		} `json:"media"`
	}
	if err := json.Unmarshal(raw, &c); err != nil {
		return domain.Comment{}, &TransformError{Platform: domain.PlatformTwitter, Kind: "comment", Err: err}
	}
	if c.ID == "" {
		return domain.Comment{}, &TransformError{Platform: domain.PlatformTwitter, Kind: "comment", Err: fmt.Errorf("missing reply id")}
	}

	var media []string
	for _, m := range c.Media {
		if m.URL != "" {
			media = append(media, m.URL)
		}
	}
	lang := c.Lang
	if lang == "" {
		lang = "unknown"
	}

	return domain.Comment{
		Platform:   domain.PlatformTwitter,
		PlatformID: c.ID,
		PostID:     postID,
		UserID:     c.User.ID,
		UserName:   c.User.Username,
		Content: domain.CommentContent{
			Text:     c.Text,
			Media:    media,
			Mentions: ExtractMentions(c.Text),
		},
		CreatedAt: createdAtOrNow(parseAPITimestamp(c.CreatedAt)),
		Metadata:  domain.CommentMetadata{Language: lang, IsReply: true},
		Engagement: domain.CommentEngagement{
			Likes:   c.Like,
			Replies: c.Reply,
		},
	}, nil
}

func (t *Twitter) TransformProfile(raw []byte) (domain.Profile, error) {
	var p struct {
		ID        string `json:"id"`
		Username  string `json:"username"`
		Display   string `json:"displayName"`
		Verified  bool   `json:"verified"`
		Followers int64  `json:"followersCount"`
		Following int64  `json:"followingCount"`
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return domain.Profile{}, &TransformError{Platform: domain.PlatformTwitter, Kind: "profile", Err: err}
	}

	return domain.Profile{
		PlatformID:     p.ID,
		Handle:         p.Username,
		Name:           p.Display,
		URL:            "https://twitter.com/" + p.Username,
		Verified:       p.Verified,
		FollowerCount:  p.Followers,
		FollowingCount: p.Following,
	}, nil
}
