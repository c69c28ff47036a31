package collectors

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/samvad-hq/samvad-social-ingestor/internal/domain"
)

var (
	tiktokHashtagPattern = regexp.MustCompile(`#(\w+)`)
	tiktokMentionPattern = regexp.MustCompile(`@(\w+)`)
)

// TikTok collects videos, comments, and profile snapshots. It drives three
// remote actors: one for profiles, one for videos, one for comments.
type TikTok struct {
	base
	profileActorID string
	postActorID    string
	commentActorID string
}

func NewTikTok(deps Deps, profileActorID, postActorID, commentActorID string) *TikTok {
	return &TikTok{
		base:           newBase(deps, domain.PlatformTikTok),
		profileActorID: profileActorID,
		postActorID:    postActorID,
		commentActorID: commentActorID,
	}
}

func (tk *TikTok) Platform() string { return domain.PlatformTikTok }

func (tk *TikTok) CollectPosts(ctx context.Context, accountID string, count int, since time.Time) ([]string, error) {
	acct, err := tk.account(accountID)
	if err != nil {
		return nil, err
	}

	max := tk.maxPosts(count)

	tk.deps.Log.InfoObj("collecting tiktok videos", "collect", map[string]any{
		"handle": acct.Handle,
		"max":    max,
	})

	input := map[string]any{
		"username":           acct.Handle,
		"maxPosts":           max,
		"downloadVideos":     false,
		"proxyConfiguration": map[string]any{"useApifyProxy": true},
	}
	if !since.IsZero() {
		input["dateFrom"] = since.Format("2006-01-02")
	}

	items, err := tk.deps.Jobs.RunToCompletion(ctx, tk.postActorID, input, max)
	if err != nil {
		return nil, fmt.Errorf("collect videos for %s: %w", acct.Handle, err)
	}
	if len(items) == 0 {
		tk.deps.Log.WarnObj("no tiktok videos returned", "collect", map[string]any{"handle": acct.Handle})
		return nil, nil
	}

	return tk.savePosts(ctx, items, accountID, tk.TransformPost)
}

func (tk *TikTok) CollectComments(ctx context.Context, postID string, count int) ([]string, error) {
	post, err := tk.parentPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.URL == "" {
		return nil, &NotFoundError{Kind: "tiktok post url", ID: postID}
	}

	max := tk.maxComments(count)
	items, err := tk.deps.Jobs.RunToCompletion(ctx, tk.commentActorID, map[string]any{
		"videoUrl":           post.URL,
		"maxComments":        max,
		"maxReplies":         10,
		"proxyConfiguration": map[string]any{"useApifyProxy": true},
	}, 0)
	if err != nil {
		return nil, fmt.Errorf("collect comments for tiktok post %s: %w", post.PlatformID, err)
	}

	var comments []json.RawMessage
	for _, item := range items {
		var wrapper struct {
			Comments []json.RawMessage `json:"comments"`
		}
		if err := json.Unmarshal(item, &wrapper); err == nil && len(wrapper.Comments) > 0 {
			comments = append(comments, wrapper.Comments...)
		}
	}

	return tk.saveComments(ctx, comments, postID, post.URL, post.AccountID, tk.TransformComment)
}

func (tk *TikTok) CollectProfile(ctx context.Context, accountID string) (domain.Profile, error) {
	acct, err := tk.account(accountID)
	if err != nil {
		return domain.Profile{}, err
	}

	items, err := tk.deps.Jobs.RunToCompletion(ctx, tk.profileActorID, map[string]any{
		"username":           acct.Handle,
		"proxyConfiguration": map[string]any{"useApifyProxy": true},
	}, 1)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("collect profile for %s: %w", acct.Handle, err)
	}
	if len(items) == 0 {
		return domain.Profile{}, &NotFoundError{Kind: "tiktok profile", ID: acct.Handle}
	}

	// Some actor versions nest the profile under userInfo.
	profile := items[0]
	var wrapper struct {
		UserInfo json.RawMessage `json:"userInfo"`
	}
	if err := json.Unmarshal(items[0], &wrapper); err == nil && wrapper.UserInfo != nil {
		profile = wrapper.UserInfo
	}

	return tk.TransformProfile(profile)
}

func (tk *TikTok) UpdateMetrics(ctx context.Context, accountID string) (domain.Profile, error) {
	return tk.CollectProfile(ctx, accountID)
}

func (tk *TikTok) TransformPost(raw []byte, accountID string) (domain.Post, error) {
	var p struct {
		ID          string `json:"id"`
		Desc        string `json:"desc"`
		WebVideoURL string `json:"webVideoUrl"`
		CreateTime  int64  `json:"createTime"`
		VideoURL    string `json:"videoUrl"`
		Digg        int64  `json:"diggCount"`
		Comment     int64  `json:"commentCount"`
		Share       int64  `json:"shareCount"`
		Play        int64  `json:"playCount"`
		Collect     int64  `json:"collectCount"`
		Hashtags    []struct {
			Name string `json:"name"`
		} `json:"hashtags"`
		VideoMeta *struct {
			Width    int     `json:"width"`
			Height   int     `json:"height"`
			Duration float64 `json:"duration"`
		} `json:"videoMeta"`
		AuthorMeta *struct {
			ID       string `json:"id"`
			Name     string `json:"name"`
			Nickname string `json:"nickname"`
			Verified bool   `json:"verified"`
		} `json:"authorMeta"`
		Covers []string `json:"covers"`
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return domain.Post{}, &TransformError{Platform: domain.PlatformTikTok, Kind: "post", Err: err}
	}
	if p.ID == "" {
		return domain.Post{}, &TransformError{Platform: domain.PlatformTikTok, Kind: "post", Err: fmt.Errorf("missing video id")}
	}

	createdAt := time.Now().UTC()
	if p.CreateTime > 0 {
		createdAt = timeFromSeconds(p.CreateTime)
	}

	var media []string
	if p.VideoURL != "" {
		media = append(media, p.VideoURL)
	}

	var hashtags []string
	if len(p.Hashtags) > 0 {
		for _, tag := range p.Hashtags {
			if tag.Name != "" {
				hashtags = append(hashtags, tag.Name)
			}
		}
	} else {
		for _, m := range tiktokHashtagPattern.FindAllStringSubmatch(p.Desc, -1) {
			hashtags = append(hashtags, m[1])
		}
	}

	var mentions []string
	for _, m := range tiktokMentionPattern.FindAllStringSubmatch(p.Desc, -1) {
		mentions = append(mentions, m[1])
	}

	var dimensions *domain.Dimensions
	var duration float64
	if p.VideoMeta != nil {
		dimensions = &domain.Dimensions{Width: p.VideoMeta.Width, Height: p.VideoMeta.Height}
		duration = p.VideoMeta.Duration
	}

	var owner *domain.Owner
	if p.AuthorMeta != nil {
		owner = &domain.Owner{
			ID:       p.AuthorMeta.ID,
			Username: p.AuthorMeta.Name,
			FullName: p.AuthorMeta.Nickname,
			Verified: p.AuthorMeta.Verified,
		}
	}

	var thumbnail string
	if len(p.Covers) > 0 {
		thumbnail = p.Covers[0]
	}

	return domain.Post{
		Platform:    domain.PlatformTikTok,
		PlatformID:  p.ID,
		AccountID:   accountID,
		ContentType: domain.ContentTypeVideo,
		ShortCode:   p.ID,
		URL:         p.WebVideoURL,
		Content: domain.Content{
			Text:     p.Desc,
			Media:    media,
			Hashtags: hashtags,
			Mentions: mentions,
		},
		CreatedAt: createdAt,
		Metadata: domain.PostMetadata{
			Dimensions: dimensions,
			Owner:      owner,
		},
		Engagement: domain.Engagement{
			Likes:    p.Digg,
			Comments: p.Comment,
			Shares:   p.Share,
			Views:    p.Play,
			Saves:    p.Collect,
		},
		Video: &domain.VideoData{
			DurationSeconds: duration,
			VideoURL:        p.VideoURL,
			ThumbnailURL:    thumbnail,
		},
	}, nil
}

func (tk *TikTok) TransformComment(raw []byte, postID string) (domain.Comment, error) {
	type rawReply struct {
		ID          string `json:"id"`
		Text        string `json:"text"`
		CreateTime  int64  `json:"createTime"`
		UserID      string `json:"userId"`
		UniqueID    string `json:"uniqueId"`
		Nickname    string `json:"nickname"`
		AvatarThumb string `json:"avatarThumb"`
		Verified    bool   `json:"verified"`
		Digg        int64  `json:"diggCount"`
	}
	var c struct {
		ID         string `json:"id"`
		Text       string `json:"text"`
		CreateTime int64  `json:"createTime"`
		IsReply    bool   `json:"isReply"`
		Digg       int64  `json:"diggCount"`
		Reply      int64  `json:"replyCount"`
		User       struct {
			ID             string `json:"id"`
			UniqueID       string `json:"uniqueId"`
			Nickname       string `json:"nickname"`
			AvatarThumb    string `json:"avatarThumb"`
			Verified       bool   `json:"verified"`
			PrivateAccount bool   `json:"privateAccount"`
		} `json:"user"`
		Replies []rawReply `json:"replies"`
	}
	if err := json.Unmarshal(raw, &c); err != nil {
		return domain.Comment{}, &TransformError{Platform: domain.PlatformTikTok, Kind: "comment", Err: err}
	}
	if c.ID == "" {
		return domain.Comment{}, &TransformError{Platform: domain.PlatformTikTok, Kind: "comment", Err: fmt.Errorf("missing comment id")}
	}

	createdAt := time.Now().UTC()
	if c.CreateTime > 0 {
		createdAt = timeFromSeconds(c.CreateTime)
	}

	var mentions []string
	for _, m := range tiktokMentionPattern.FindAllStringSubmatch(c.Text, -1) {
		mentions = append(mentions, m[1])
	}

	var replies []domain.Reply
	for _, r := range c.Replies {
		replyCreatedAt := time.Now().UTC()
		if r.CreateTime > 0 {
			replyCreatedAt = timeFromSeconds(r.CreateTime)
		}
		replies = append(replies, domain.Reply{
			PlatformID:     r.ID,
			UserID:         r.UserID,
			UserName:       r.UniqueID,
			UserFullName:   r.Nickname,
			UserProfilePic: r.AvatarThumb,
			UserVerified:   r.Verified,
			Text:           r.Text,
			CreatedAt:      replyCreatedAt,
			Likes:          r.Digg,
		})
	}

	return domain.Comment{
		Platform:       domain.PlatformTikTok,
		PlatformID:     c.ID,
		PostID:         postID,
		PostURL:        "https://www.tiktok.com/video/" + postID,
		UserID:         c.User.ID,
		UserName:       c.User.UniqueID,
		UserFullName:   c.User.Nickname,
		UserProfilePic: c.User.AvatarThumb,
		UserVerified:   c.User.Verified,
		UserPrivate:    c.User.PrivateAccount,
		Content: domain.CommentContent{
			Text:     c.Text,
			Mentions: mentions,
		},
		CreatedAt: createdAt,
		Metadata:  domain.CommentMetadata{IsReply: c.IsReply},
		Engagement: domain.CommentEngagement{
			Likes:   c.Digg,
			Replies: c.Reply,
		},
		Replies: replies,
	}, nil
}

func (tk *TikTok) TransformProfile(raw []byte) (domain.Profile, error) {
	var p struct {
		ID             string `json:"id"`
		UniqueID       string `json:"uniqueId"`
		Nickname       string `json:"nickname"`
		Signature      string `json:"signature"`
		Verified       bool   `json:"verified"`
		PrivateAccount bool   `json:"privateAccount"`
		Followers      int64  `json:"followerCount"`
		Following      int64  `json:"followingCount"`
		Videos         int64  `json:"videoCount"`
		Hearts         int64  `json:"heartCount"`
		AvatarMedium   string `json:"avatarMedium"`
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return domain.Profile{}, &TransformError{Platform: domain.PlatformTikTok, Kind: "profile", Err: err}
	}

	return domain.Profile{
		PlatformID:     p.ID,
		Handle:         p.UniqueID,
		Name:           p.Nickname,
		Bio:            p.Signature,
		URL:            "https://www.tiktok.com/@" + p.UniqueID,
		Verified:       p.Verified,
		Private:        p.PrivateAccount,
		FollowerCount:  p.Followers,
		FollowingCount: p.Following,
		PostCount:      p.Videos,
		TotalLikes:     p.Hearts,
		ProfilePicURL:  p.AvatarMedium,
	}, nil
}
