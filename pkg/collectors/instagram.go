package collectors

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/samvad-hq/samvad-social-ingestor/internal/domain"
)

// Instagram collects posts, comments, and profile snapshots via the remote
// Instagram scraper actor.
type Instagram struct {
	base
	actorID string
}

func NewInstagram(deps Deps, actorID string) *Instagram {
	return &Instagram{base: newBase(deps, domain.PlatformInstagram), actorID: actorID}
}

func (ig *Instagram) Platform() string { return domain.PlatformInstagram }

func (ig *Instagram) CollectPosts(ctx context.Context, accountID string, count int, since time.Time) ([]string, error) {
	acct, err := ig.account(accountID)
	if err != nil {
		return nil, err
	}

	max := ig.maxPosts(count)
	start := ig.startDate(since)

	ig.deps.Log.InfoObj("collecting instagram posts", "collect", map[string]any{
		"handle": acct.Handle,
		"max":    max,
		"since":  start.Format("2006-01-02"),
	})

	items, err := ig.deps.Jobs.RunToCompletion(ctx, ig.actorID, map[string]any{
		"usernames":            []string{acct.Handle},
		"maxPosts":             max,
		"resultsType":          "posts",
		"addParentData":        true,
		"includeComments":      false,
		"scrapePostsUntilDate": start.Format("2006-01-02"),
	}, max)
	if err != nil {
		return nil, fmt.Errorf("collect posts for %s: %w", acct.Handle, err)
	}

	// The actor sometimes nests posts inside profile objects.
	var posts []json.RawMessage
	for _, item := range items {
		var wrapper struct {
			Type        string            `json:"type"`
			LatestPosts []json.RawMessage `json:"latestPosts"`
		}
		if err := json.Unmarshal(item, &wrapper); err == nil && wrapper.Type == "user" {
			posts = append(posts, wrapper.LatestPosts...)
			continue
		}
		posts = append(posts, item)
	}

	return ig.savePosts(ctx, posts, accountID, ig.TransformPost)
}

func (ig *Instagram) CollectComments(ctx context.Context, postID string, count int) ([]string, error) {
	post, err := ig.parentPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	postURL, err := instagramPostURL(post)
	if err != nil {
		return nil, err
	}

	max := ig.maxComments(count)
	items, err := ig.deps.Jobs.RunToCompletion(ctx, ig.actorID, map[string]any{
		"directUrls":  []string{postURL},
		"resultsType": "comments",
		"maxComments": max,
	}, 0)
	if err != nil {
		return nil, fmt.Errorf("collect comments for instagram post %s: %w", post.PlatformID, err)
	}

	var comments []json.RawMessage
	for _, item := range items {
		var wrapper struct {
			Type          string            `json:"type"`
			ID            string            `json:"id"`
			OwnerUsername string            `json:"ownerUsername"`
			Comments      []json.RawMessage `json:"comments"`
		}
		if err := json.Unmarshal(item, &wrapper); err != nil {
			continue
		}
		switch {
		case wrapper.Type == "post":
			comments = append(comments, wrapper.Comments...)
		case wrapper.ID != "" && wrapper.OwnerUsername != "":
			comments = append(comments, item)
		}
	}

	return ig.saveComments(ctx, comments, postID, postURL, post.AccountID, ig.TransformComment)
}

// instagramPostURL derives the canonical post URL, preferring the stored url,
// then any instagram.com/p/ link, then the shortcode.
func instagramPostURL(post *domain.Post) (string, error) {
	if post.URL != "" {
		return post.URL, nil
	}
	for _, link := range post.Content.Links {
		if strings.Contains(link, "instagram.com/p/") {
			return link, nil
		}
	}
	if post.ShortCode != "" {
		return "https://www.instagram.com/p/" + post.ShortCode + "/", nil
	}
	return "", &NotFoundError{Kind: "instagram post url", ID: post.ID}
}

func (ig *Instagram) CollectProfile(ctx context.Context, accountID string) (domain.Profile, error) {
	acct, err := ig.account(accountID)
	if err != nil {
		return domain.Profile{}, err
	}

	items, err := ig.deps.Jobs.RunToCompletion(ctx, ig.actorID, map[string]any{
		"usernames":   []string{acct.Handle},
		"resultsType": "details",
		"maxPosts":    0,
	}, 1)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("collect profile for %s: %w", acct.Handle, err)
	}

	for _, item := range items {
		var wrapper struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(item, &wrapper); err == nil && wrapper.Type == "user" {
			return ig.TransformProfile(item)
		}
	}
	return domain.Profile{}, &NotFoundError{Kind: "instagram profile", ID: acct.Handle}
}

func (ig *Instagram) UpdateMetrics(ctx context.Context, accountID string) (domain.Profile, error) {
	return ig.CollectProfile(ctx, accountID)
}

func (ig *Instagram) TransformPost(raw []byte, accountID string) (domain.Post, error) {
	var p struct {
		ID            string   `json:"id"`
		Caption       string   `json:"caption"`
		ShortCode     string   `json:"shortCode"`
		Timestamp     int64    `json:"timestamp"`
		CreatedAt     string   `json:"createdAt"`
		DisplayURL    string   `json:"displayUrl"`
		VideoURL      string   `json:"videoUrl"`
		Images        []string `json:"images"`
		IsVideo       bool     `json:"isVideo"`
		TypeName      string   `json:"__typename"`
		Likes         int64    `json:"likesCount"`
		Comments      int64    `json:"commentsCount"`
		VideoViews    int64    `json:"videoViewCount"`
		Saves         int64    `json:"savesCount"`
		VideoDuration float64  `json:"videoDuration"`
		IsMuted       bool     `json:"isMuted"`
		AltText       string   `json:"accessibilityCaption"`
		ProductType   string   `json:"productType"`
		ImageWidth    int      `json:"imageWidth"`
		ImageHeight   int      `json:"imageHeight"`
		Dimensions    *struct {
			Width  int `json:"width"`
			Height int `json:"height"`
		} `json:"dimensions"`
		Location *struct {
			ID      string `json:"id"`
			Name    string `json:"name"`
			Country string `json:"country"`
			State   string `json:"state"`
			City    string `json:"city"`
		} `json:"location"`
		OwnerUsername string `json:"ownerUsername"`
		OwnerID       string `json:"ownerId"`
		OwnerVerified bool   `json:"ownerVerified"`
		TaggedUsers   []struct {
			ID       string `json:"id"`
			Username string `json:"username"`
			FullName string `json:"fullName"`
			Verified bool   `json:"isVerified"`
		} `json:"taggedUsers"`
		SidecarChildren []struct {
			ID          string `json:"id"`
			ShortCode   string `json:"shortCode"`
			DisplayURL  string `json:"displayUrl"`
			IsVideo     bool   `json:"isVideo"`
			AltText     string `json:"accessibilityCaption"`
			ImageWidth  int    `json:"imageWidth"`
			ImageHeight int    `json:"imageHeight"`
			Dimensions  *struct {
				Width  int `json:"width"`
				Height int `json:"height"`
			} `json:"dimensions"`
		} `json:"sidecarChildren"`
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return domain.Post{}, &TransformError{Platform: domain.PlatformInstagram, Kind: "post", Err: err}
	}
	if p.ID == "" {
		return domain.Post{}, &TransformError{Platform: domain.PlatformInstagram, Kind: "post", Err: fmt.Errorf("missing post id")}
	}

	createdAt := time.Now().UTC()
	if p.Timestamp > 0 {
		createdAt = timeFromMillis(p.Timestamp)
	} else if t, ok := parseAPITimestamp(p.CreatedAt); ok {
		createdAt = t
	}

	var media []string
	if p.DisplayURL != "" {
		media = append(media, p.DisplayURL)
	}
	if p.VideoURL != "" {
		media = append(media, p.VideoURL)
	}
	for _, img := range p.Images {
		if img != "" {
			media = append(media, img)
		}
	}

	var postURL string
	var links []string
	if p.ShortCode != "" {
		postURL = "https://www.instagram.com/p/" + p.ShortCode + "/"
		links = append(links, postURL)
	}
	links = append(links, ExtractLinks(p.Caption)...)

	contentType := domain.ContentTypePost
	switch {
	case p.IsVideo || p.VideoURL != "":
		contentType = domain.ContentTypeVideo
	case len(p.Images) > 1:
		contentType = domain.ContentTypeCarousel
	case p.TypeName == "GraphStoryVideo":
		contentType = domain.ContentTypeStory
	}

	engagement := domain.Engagement{
		Likes:    p.Likes,
		Comments: p.Comments,
		Saves:    p.Saves,
	}
	if contentType == domain.ContentTypeVideo {
		engagement.Views = p.VideoViews
	}

	var dimensions *domain.Dimensions
	if p.Dimensions != nil {
		dimensions = &domain.Dimensions{Width: p.Dimensions.Width, Height: p.Dimensions.Height}
	} else if p.ImageWidth > 0 && p.ImageHeight > 0 {
		dimensions = &domain.Dimensions{Width: p.ImageWidth, Height: p.ImageHeight}
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

	var owner *domain.Owner
	if p.OwnerUsername != "" || p.OwnerID != "" {
		owner = &domain.Owner{ID: p.OwnerID, Username: p.OwnerUsername, Verified: p.OwnerVerified}
	}

	var tagged []domain.TaggedUser
	for _, u := range p.TaggedUsers {
		tagged = append(tagged, domain.TaggedUser{
			ID: u.ID, Username: u.Username, FullName: u.FullName, Verified: u.Verified,
		})
	}

	var children []domain.ChildPost
	if contentType == domain.ContentTypeCarousel {
		for _, child := range p.SidecarChildren {
			childType := "Image"
			if child.IsVideo {
				childType = "Video"
			}
			cp := domain.ChildPost{
				ID:         child.ID,
				Type:       childType,
				URL:        "https://www.instagram.com/p/" + child.ShortCode + "/",
				DisplayURL: child.DisplayURL,
				AltText:    child.AltText,
			}
			if child.Dimensions != nil {
				cp.Dimensions = &domain.Dimensions{Width: child.Dimensions.Width, Height: child.Dimensions.Height}
			} else if child.ImageWidth > 0 && child.ImageHeight > 0 {
				cp.Dimensions = &domain.Dimensions{Width: child.ImageWidth, Height: child.ImageHeight}
			}
			children = append(children, cp)
		}
	}

	var video *domain.VideoData
	if contentType == domain.ContentTypeVideo {
		video = &domain.VideoData{
			DurationSeconds: p.VideoDuration,
			VideoURL:        p.VideoURL,
			ThumbnailURL:    p.DisplayURL,
			IsMuted:         p.IsMuted,
		}
	}

	return domain.Post{
		Platform:    domain.PlatformInstagram,
		PlatformID:  p.ID,
		AccountID:   accountID,
		ContentType: contentType,
		ShortCode:   p.ShortCode,
		URL:         postURL,
		Content: domain.Content{
			Text:     p.Caption,
			Media:    media,
			Links:    links,
			Hashtags: ExtractHashtags(p.Caption),
			Mentions: ExtractMentions(p.Caption),
		},
		CreatedAt: createdAt,
		Metadata: domain.PostMetadata{
			Language:    "unknown",
			Client:      "Instagram",
			Location:    location,
			Dimensions:  dimensions,
			AltText:     p.AltText,
			ProductType: p.ProductType,
			Owner:       owner,
			TaggedUsers: tagged,
		},
		Engagement: engagement,
		ChildPosts: children,
		Video:      video,
	}, nil
}

func (ig *Instagram) TransformComment(raw []byte, postID string) (domain.Comment, error) {
	type rawReply struct {
		ID             string `json:"id"`
		Text           string `json:"text"`
		Timestamp      int64  `json:"timestamp"`
		OwnerID        string `json:"ownerId"`
		OwnerUsername  string `json:"ownerUsername"`
		OwnerFullName  string `json:"ownerFullName"`
		OwnerAvatarURL string `json:"ownerProfilePicUrl"`
		OwnerVerified  bool   `json:"ownerVerified"`
		Likes          int64  `json:"likesCount"`
	}
	var c struct {
		ID              string     `json:"id"`
		Text            string     `json:"text"`
		Timestamp       int64      `json:"timestamp"`
		OwnerUsername   string     `json:"ownerUsername"`
		OwnerID         string     `json:"ownerId"`
		OwnerFullName   string     `json:"ownerFullName"`
		OwnerAvatarURL  string     `json:"ownerProfilePicUrl"`
		OwnerVerified   bool       `json:"ownerVerified"`
		OwnerIsPrivate  bool       `json:"ownerIsPrivate"`
		Likes           int64      `json:"likesCount"`
		Replies         []rawReply `json:"replies"`
		ParentCommentID string     `json:"parentCommentId"`
	}
	if err := json.Unmarshal(raw, &c); err != nil {
		return domain.Comment{}, &TransformError{Platform: domain.PlatformInstagram, Kind: "comment", Err: err}
	}
	if c.ID == "" {
		return domain.Comment{}, &TransformError{Platform: domain.PlatformInstagram, Kind: "comment", Err: fmt.Errorf("missing comment id")}
	}

	createdAt := time.Now().UTC()
	if c.Timestamp > 0 {
		createdAt = timeFromMillis(c.Timestamp)
	}

	var replies []domain.Reply
	for _, r := range c.Replies {
		replyCreatedAt := time.Now().UTC()
		if r.Timestamp > 0 {
			replyCreatedAt = timeFromMillis(r.Timestamp)
		}
		replies = append(replies, domain.Reply{
			PlatformID:     r.ID,
			UserID:         r.OwnerID,
			UserName:       r.OwnerUsername,
			UserFullName:   r.OwnerFullName,
			UserProfilePic: r.OwnerAvatarURL,
			UserVerified:   r.OwnerVerified,
			Text:           r.Text,
			CreatedAt:      replyCreatedAt,
			Likes:          r.Likes,
		})
	}

	return domain.Comment{
		Platform:       domain.PlatformInstagram,
		PlatformID:     c.ID,
		PostID:         postID,
		UserID:         c.OwnerID,
		UserName:       c.OwnerUsername,
		UserFullName:   c.OwnerFullName,
		UserProfilePic: c.OwnerAvatarURL,
		UserVerified:   c.OwnerVerified,
		UserPrivate:    c.OwnerIsPrivate,
		Content: domain.CommentContent{
			Text:     c.Text,
			Mentions: ExtractMentions(c.Text),
		},
		CreatedAt: createdAt,
		Metadata: domain.CommentMetadata{
			Language:        "unknown",
			IsReply:         c.ParentCommentID != "",
			ParentCommentID: c.ParentCommentID,
		},
		Engagement: domain.CommentEngagement{
			Likes:   c.Likes,
			Replies: int64(len(c.Replies)),
		},
		Replies: replies,
	}, nil
}

func (ig *Instagram) TransformProfile(raw []byte) (domain.Profile, error) {
	var p struct {
		ID        string `json:"id"`
		Username  string `json:"username"`
		FullName  string `json:"fullName"`
		Verified  bool   `json:"verified"`
		Followers int64  `json:"followersCount"`
		Follows   int64  `json:"followsCount"`
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return domain.Profile{}, &TransformError{Platform: domain.PlatformInstagram, Kind: "profile", Err: err}
	}

	var url string
	if p.Username != "" {
		url = "https://www.instagram.com/" + p.Username + "/"
	}

	return domain.Profile{
		PlatformID:     p.ID,
		Handle:         p.Username,
		Name:           p.FullName,
		URL:            url,
		Verified:       p.Verified,
		FollowerCount:  p.Followers,
		FollowingCount: p.Follows,
	}, nil
}
