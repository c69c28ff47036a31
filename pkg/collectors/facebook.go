package collectors

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/samvad-hq/samvad-social-ingestor/internal/domain"
	"github.com/samvad-hq/samvad-social-ingestor/pkg/accounts"
)

// Facebook collects page posts, comments, and page snapshots via the remote
// Facebook scraper actor.
type Facebook struct {
	base
	actorID string
}

func NewFacebook(deps Deps, actorID string) *Facebook {
	return &Facebook{base: newBase(deps, domain.PlatformFacebook), actorID: actorID}
}

func (fb *Facebook) Platform() string { return domain.PlatformFacebook }

// pageTarget prefers the account's full URL over a handle-derived one.
func pageTarget(acct accounts.Account) string {
	if acct.URL != "" {
		return acct.URL
	}
	return "https://www.facebook.com/" + acct.Handle
}

func (fb *Facebook) CollectPosts(ctx context.Context, accountID string, count int, since time.Time) ([]string, error) {
	acct, err := fb.account(accountID)
	if err != nil {
		return nil, err
	}

	max := fb.maxPosts(count)
	start := fb.startDate(since)
	target := pageTarget(acct)

	fb.deps.Log.InfoObj("collecting facebook posts", "collect", map[string]any{
		"target": target,
		"max":    max,
		"since":  start.Format("2006-01-02"),
	})

	items, err := fb.deps.Jobs.RunToCompletion(ctx, fb.actorID, map[string]any{
		"startUrls":             []map[string]string{{"url": target}},
		"maxPosts":              max,
		"startDate":             start.Format("2006-01-02"),
		"maxPostComments":       0,
		"maxPostReactions":      1000,
		"commentsMode":          "NONE",
		"includeNestedComments": false,
		"reactionsMode":         "SUMMARY",
		"addMessageTimestamps":  true,
	}, max)
	if err != nil {
		return nil, fmt.Errorf("collect posts for %s: %w", target, err)
	}

	var posts []json.RawMessage
	for _, item := range items {
		var wrapper struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(item, &wrapper); err == nil && wrapper.Type == "post" {
			posts = append(posts, item)
		}
	}

	return fb.savePosts(ctx, posts, accountID, fb.TransformPost)
}

func (fb *Facebook) CollectComments(ctx context.Context, postID string, count int) ([]string, error) {
	post, err := fb.parentPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	postURL := post.URL
	if postURL == "" && len(post.Content.Links) > 0 {
		postURL = post.Content.Links[0]
	}
	if postURL == "" {
		postURL = "https://www.facebook.com/permalink.php?id=" + post.PlatformID
	}

	max := fb.maxComments(count)
	items, err := fb.deps.Jobs.RunToCompletion(ctx, fb.actorID, map[string]any{
		"startUrls":             []map[string]string{{"url": postURL}},
		"maxPosts":              1,
		"maxPostComments":       max,
		"maxCommentReplies":     10,
		"commentsMode":          "DETAILED",
		"includeNestedComments": true,
	}, 0)
	if err != nil {
		return nil, fmt.Errorf("collect comments for facebook post %s: %w", post.PlatformID, err)
	}

	var comments []json.RawMessage
	for _, item := range items {
		var wrapper struct {
			Type     string            `json:"type"`
			Comments []json.RawMessage `json:"comments"`
		}
		if err := json.Unmarshal(item, &wrapper); err == nil && wrapper.Type == "post" {
			comments = append(comments, wrapper.Comments...)
		}
	}

	return fb.saveComments(ctx, comments, postID, postURL, post.AccountID, fb.TransformComment)
}

func (fb *Facebook) CollectProfile(ctx context.Context, accountID string) (domain.Profile, error) {
	acct, err := fb.account(accountID)
	if err != nil {
		return domain.Profile{}, err
	}
	target := pageTarget(acct)

	items, err := fb.deps.Jobs.RunToCompletion(ctx, fb.actorID, map[string]any{
		"startUrls":           []map[string]string{{"url": target}},
		"maxPosts":            1,
		"includePageMetadata": true,
	}, 2)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("collect profile for %s: %w", target, err)
	}
	if len(items) == 0 {
		return domain.Profile{}, &NotFoundError{Kind: "facebook page", ID: target}
	}

	var pageInfo json.RawMessage
	for _, item := range items {
		var wrapper struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(item, &wrapper); err == nil && (wrapper.Type == "page" || wrapper.Type == "profile") {
			pageInfo = item
			break
		}
	}
	if pageInfo == nil {
		// No dedicated page object; fall back to the page info nested in a post.
		var wrapper struct {
			Page json.RawMessage `json:"page"`
		}
		if err := json.Unmarshal(items[0], &wrapper); err == nil && wrapper.Page != nil {
			pageInfo = wrapper.Page
		}
	}
	if pageInfo == nil {
		return domain.Profile{}, &NotFoundError{Kind: "facebook page", ID: target}
	}

	return fb.TransformProfile(pageInfo)
}

func (fb *Facebook) UpdateMetrics(ctx context.Context, accountID string) (domain.Profile, error) {
	return fb.CollectProfile(ctx, accountID)
}

func (fb *Facebook) TransformPost(raw []byte, accountID string) (domain.Post, error) {
	var p struct {
		PostID    string `json:"postId"`
		ID        string `json:"id"`
		Text      string `json:"text"`
		Timestamp int64  `json:"timestamp"`
		CreatedAt string `json:"createdAt"`
		PostURL   string `json:"postUrl"`
		Type      string `json:"type"`
		Language  string `json:"languageCode"`
		SharesURL string `json:"sharingPostUrl"`
		SharesTxt string `json:"sharingText"`
		Shares    int64  `json:"sharesCount"`
		Comments  int64  `json:"commentsCount"`
		Reactions struct {
			Like int64 `json:"like"`
			Love int64 `json:"love"`
			Care int64 `json:"care"`
		} `json:"reactionsCount"`
		Attachments []struct {
			URL string `json:"url"`
		} `json:"attachments"`
		Location *struct {
			ID      string `json:"id"`
			Name    string `json:"name"`
			Country string `json:"country"`
			State   string `json:"state"`
			City    string `json:"city"`
		} `json:"location"`
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return domain.Post{}, &TransformError{Platform: domain.PlatformFacebook, Kind: "post", Err: err}
	}

	postID := p.PostID
	if postID == "" {
		postID = p.ID
	}
	if postID == "" {
		return domain.Post{}, &TransformError{Platform: domain.PlatformFacebook, Kind: "post", Err: fmt.Errorf("missing post id")}
	}

	createdAt := time.Now().UTC()
	if p.Timestamp > 0 {
		createdAt = timeFromMillis(p.Timestamp)
	} else if t, ok := parseAPITimestamp(p.CreatedAt); ok {
		createdAt = t
	}

	var media []string
	for _, a := range p.Attachments {
		if a.URL != "" {
			media = append(media, a.URL)
		}
	}

	var links []string
	if p.PostURL != "" {
		links = append(links, p.PostURL)
	}
	links = append(links, ExtractLinks(p.Text)...)

	contentType := domain.ContentTypePost
	switch {
	case p.SharesURL != "" || p.SharesTxt != "":
		contentType = domain.ContentTypeShare
	case p.Type == "photo":
		contentType = domain.ContentTypePhoto
	case p.Type == "video":
		contentType = domain.ContentTypeVideo
	case p.Type == "event":
		contentType = domain.ContentTypeEvent
	}

	var location *domain.Location
	if p.Location != nil {
		location = &domain.Location{
			ID:      p.Location.ID,
			Name:    p.Location.Name,
			Country: p.Location.Country,
			State:   p.Location.State,
			City:    p.Location.City,
		}
	}

	lang := p.Language
	if lang == "" {
		lang = "unknown"
	}

	return domain.Post{
		Platform:    domain.PlatformFacebook,
		PlatformID:  postID,
		AccountID:   accountID,
		ContentType: contentType,
		URL:         p.PostURL,
		Content: domain.Content{
			Text:     p.Text,
			Media:    media,
			Links:    links,
			Hashtags: ExtractHashtags(p.Text),
			Mentions: ExtractMentions(p.Text),
		},
		CreatedAt: createdAt,
		Metadata: domain.PostMetadata{
			Language: lang,
			Client:   "Facebook",
			IsRepost: contentType == domain.ContentTypeShare,
			Location: location,
		},
		Engagement: domain.Engagement{
			// Positive reactions collapse into the likes counter.
			Likes:    p.Reactions.Like + p.Reactions.Love + p.Reactions.Care,
			Shares:   p.Shares,
			Comments: p.Comments,
		},
	}, nil
}

func (fb *Facebook) TransformComment(raw []byte, postID string) (domain.Comment, error) {
	var c struct {
		CommentID string          `json:"commentId"`
		ID        string          `json:"id"`
		Text      string          `json:"text"`
		Name      string          `json:"name"`
		AuthorID  string          `json:"authorId"`
		Timestamp int64           `json:"timestamp"`
		Language  string          `json:"languageCode"`
		Reactions json.RawMessage   `json:"reactionsCount"`
		Replies   []json.RawMessage `json:"replies"`
		Attachments []struct {
			URL string `json:"url"`
		} `json:"attachments"`
	}
	if err := json.Unmarshal(raw, &c); err != nil {
		return domain.Comment{}, &TransformError{Platform: domain.PlatformFacebook, Kind: "comment", Err: err}
	}

	commentID := c.CommentID
	if commentID == "" {
		commentID = c.ID
	}
	if commentID == "" {
		return domain.Comment{}, &TransformError{Platform: domain.PlatformFacebook, Kind: "comment", Err: fmt.Errorf("missing comment id")}
	}

	createdAt := time.Now().UTC()
	if c.Timestamp > 0 {
		createdAt = timeFromMillis(c.Timestamp)
	}

	var media []string
	for _, a := range c.Attachments {
		if a.URL != "" {
			media = append(media, a.URL)
		}
	}

	lang := c.Language
	if lang == "" {
		lang = "unknown"
	}

	return domain.Comment{
		Platform:   domain.PlatformFacebook,
		PlatformID: commentID,
		PostID:     postID,
		UserID:     c.AuthorID,
		UserName:   c.Name,
		Content: domain.CommentContent{
			Text:     c.Text,
			Media:    media,
			Mentions: ExtractMentions(c.Text),
		},
		CreatedAt: createdAt,
		Metadata:  domain.CommentMetadata{Language: lang},
		Engagement: domain.CommentEngagement{
			Likes:   sumReactions(c.Reactions),
			Replies: int64(len(c.Replies)),
		},
	}, nil
}

// sumReactions handles the two shapes the actor emits: a per-reaction map or a
// plain total.
func sumReactions(raw json.RawMessage) int64 {
	if len(raw) == 0 {
		return 0
	}
	var byKind map[string]int64
	if err := json.Unmarshal(raw, &byKind); err == nil {
		var total int64
		for _, n := range byKind {
			total += n
		}
		return total
	}
	var total int64
	if err := json.Unmarshal(raw, &total); err == nil {
		return total
	}
	return 0
}

func (fb *Facebook) TransformProfile(raw []byte) (domain.Profile, error) {
	var p struct {
		PageID    string `json:"pageId"`
		ID        string `json:"id"`
		Name      string `json:"name"`
		URL       string `json:"url"`
		Verified  bool   `json:"verified"`
		Followers int64  `json:"followersCount"`
		Likes     int64  `json:"likes"`
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return domain.Profile{}, &TransformError{Platform: domain.PlatformFacebook, Kind: "profile", Err: err}
	}

	pageID := p.PageID
	if pageID == "" {
		pageID = p.ID
	}

	handle := handleFromPageURL(p.URL)
	if handle == "" {
		handle = strings.ReplaceAll(strings.ToLower(p.Name), " ", "")
	}

	followers := p.Followers
	if followers == 0 {
		followers = p.Likes
	}

	return domain.Profile{
		PlatformID:    pageID,
		Handle:        handle,
		Name:          p.Name,
		URL:           p.URL,
		Verified:      p.Verified,
		FollowerCount: followers,
	}, nil
}

func handleFromPageURL(pageURL string) string {
	if pageURL == "" {
		return ""
	}
	u, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}
	path := strings.Trim(u.Path, "/")
	if path == "" {
		return ""
	}
	return strings.Split(path, "/")[0]
}
