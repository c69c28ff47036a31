package domain

import "time"

// Domain contains the canonical, platform-agnostic models produced by ingestion.

// Supported platform keys.
const (
	PlatformTwitter   = "twitter"
	PlatformInstagram = "instagram"
	PlatformFacebook  = "facebook"
	PlatformTikTok    = "tiktok"
)

// Canonical content types. Platforms map their native flags onto these.
const (
	ContentTypePost     = "post"
	ContentTypeRepost   = "repost"
	ContentTypeReply    = "reply"
	ContentTypeShare    = "share"
	ContentTypePhoto    = "photo"
	ContentTypeVideo    = "video"
	ContentTypeCarousel = "carousel"
	ContentTypeStory    = "story"
	ContentTypeEvent    = "event"
)

// Engagement holds the post-level counters that are overwritten on re-ingest.
type Engagement struct {
	Likes    int64 `json:"likes_count"`
	Shares   int64 `json:"shares_count"`
	Comments int64 `json:"comments_count"`
	Views    int64 `json:"views_count"`
	Saves    int64 `json:"saves_count"`
}

// CommentEngagement holds the comment-level counters.
type CommentEngagement struct {
	Likes   int64 `json:"likes_count"`
	Replies int64 `json:"replies_count"`
}

// Content is the extracted body of a post.
type Content struct {
	Text     string   `json:"text"`
	Media    []string `json:"media,omitempty"`
	Links    []string `json:"links,omitempty"`
	Hashtags []string `json:"hashtags,omitempty"`
	Mentions []string `json:"mentions,omitempty"`
}

// CommentContent is the extracted body of a comment.
type CommentContent struct {
	Text     string   `json:"text"`
	Media    []string `json:"media,omitempty"`
	Mentions []string `json:"mentions,omitempty"`
}

// Location describes where a post was published, when the platform exposes it.
type Location struct {
	ID      string `json:"id,omitempty"`
	Name    string `json:"name,omitempty"`
	Country string `json:"country,omitempty"`
	State   string `json:"state,omitempty"`
	City    string `json:"city,omitempty"`
}

// Dimensions describes media dimensions in pixels.
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Owner identifies the platform user that authored a post.
type Owner struct {
	ID       string `json:"id,omitempty"`
	Username string `json:"username,omitempty"`
	FullName string `json:"full_name,omitempty"`
	Verified bool   `json:"verified,omitempty"`
}

// TaggedUser is a user tagged in a post.
type TaggedUser struct {
	ID       string `json:"id,omitempty"`
	Username string `json:"username,omitempty"`
	FullName string `json:"full_name,omitempty"`
	Verified bool   `json:"verified,omitempty"`
}

// PostMetadata carries per-platform descriptive fields that are not content.
type PostMetadata struct {
	Language    string       `json:"language,omitempty"`
	Client      string       `json:"client,omitempty"`
	IsRepost    bool         `json:"is_repost"`
	IsReply     bool         `json:"is_reply"`
	Location    *Location    `json:"location,omitempty"`
	Dimensions  *Dimensions  `json:"dimensions,omitempty"`
	AltText     string       `json:"alt_text,omitempty"`
	ProductType string       `json:"product_type,omitempty"`
	Owner       *Owner       `json:"owner,omitempty"`
	TaggedUsers []TaggedUser `json:"tagged_users,omitempty"`
}

// ChildPost is one entry of a carousel/sidecar post.
type ChildPost struct {
	ID         string      `json:"id"`
	Type       string      `json:"type"`
	URL        string      `json:"url,omitempty"`
	DisplayURL string      `json:"display_url,omitempty"`
	Dimensions *Dimensions `json:"dimensions,omitempty"`
	AltText    string      `json:"alt_text,omitempty"`
}

// VideoData carries video-specific fields for video posts.
type VideoData struct {
	DurationSeconds float64 `json:"duration,omitempty"`
	VideoURL        string  `json:"video_url,omitempty"`
	ThumbnailURL    string  `json:"thumbnail_url,omitempty"`
	IsMuted         bool    `json:"is_muted,omitempty"`
}

// Post is the canonical record for a social media post. (Platform, PlatformID)
// uniquely identifies one record; ID is the store-generated document id.
// ShortCode, ChildPosts, and Video stay zero where a platform has no such
// concept. Analysis and VectorID are owned by downstream pipelines.
type Post struct {
	ID          string         `json:"id"`
	Platform    string         `json:"platform"`
	PlatformID  string         `json:"platform_id"`
	AccountID   string         `json:"account_id"`
	ContentType string         `json:"content_type"`
	ShortCode   string         `json:"short_code,omitempty"`
	URL         string         `json:"url,omitempty"`
	Content     Content        `json:"content"`
	CreatedAt   time.Time      `json:"created_at"`
	Metadata    PostMetadata   `json:"metadata"`
	Engagement  Engagement     `json:"engagement"`
	ChildPosts  []ChildPost    `json:"child_posts,omitempty"`
	Video       *VideoData     `json:"video_data,omitempty"`
	Analysis    map[string]any `json:"analysis,omitempty"`
	VectorID    string         `json:"vector_id,omitempty"`
}

// Reply is a nested reply stored inline on its parent comment.
type Reply struct {
	PlatformID     string    `json:"platform_id"`
	UserID         string    `json:"user_id,omitempty"`
	UserName       string    `json:"user_name,omitempty"`
	UserFullName   string    `json:"user_full_name,omitempty"`
	UserProfilePic string    `json:"user_profile_pic,omitempty"`
	UserVerified   bool      `json:"user_verified,omitempty"`
	Text           string    `json:"text"`
	CreatedAt      time.Time `json:"created_at"`
	Likes          int64     `json:"likes_count"`
}

// CommentMetadata carries descriptive fields for a comment.
type CommentMetadata struct {
	Language        string `json:"language,omitempty"`
	IsReply         bool   `json:"is_reply"`
	ParentCommentID string `json:"parent_comment_id,omitempty"`
}

// Comment is the canonical record for a comment on an ingested post.
// The uniqueness invariant matches Post but is scoped independently.
type Comment struct {
	ID             string            `json:"id"`
	Platform       string            `json:"platform"`
	PlatformID     string            `json:"platform_id"`
	PostID         string            `json:"post_id"`
	PostURL        string            `json:"post_url,omitempty"`
	UserID         string            `json:"user_id,omitempty"`
	UserName       string            `json:"user_name,omitempty"`
	UserFullName   string            `json:"user_full_name,omitempty"`
	UserProfilePic string            `json:"user_profile_pic,omitempty"`
	UserVerified   bool              `json:"user_verified,omitempty"`
	UserPrivate    bool              `json:"user_private,omitempty"`
	Content        CommentContent    `json:"content"`
	CreatedAt      time.Time         `json:"created_at"`
	Metadata       CommentMetadata   `json:"metadata"`
	Engagement     CommentEngagement `json:"engagement"`
	Replies        []Reply           `json:"replies,omitempty"`
	Analysis       map[string]any    `json:"analysis,omitempty"`
}

// Profile is a snapshot of a platform account, returned by profile collection
// and consumed by the account-lookup collaborator.
type Profile struct {
	PlatformID     string `json:"platform_id"`
	Handle         string `json:"handle"`
	Name           string `json:"name,omitempty"`
	Bio            string `json:"bio,omitempty"`
	URL            string `json:"url,omitempty"`
	Verified       bool   `json:"verified,omitempty"`
	Private        bool   `json:"private,omitempty"`
	FollowerCount  int64  `json:"follower_count"`
	FollowingCount int64  `json:"following_count"`
	PostCount      int64  `json:"post_count,omitempty"`
	TotalLikes     int64  `json:"total_likes,omitempty"`
	ProfilePicURL  string `json:"profile_pic_url,omitempty"`
}
