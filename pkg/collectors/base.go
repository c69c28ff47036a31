package collectors

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/samvad-hq/samvad-social-ingestor/internal/domain"
	"github.com/samvad-hq/samvad-social-ingestor/internal/storage"
	"github.com/samvad-hq/samvad-social-ingestor/pkg/accounts"
	"github.com/samvad-hq/samvad-social-ingestor/pkg/publishers"
)

const (
	defaultMaxPosts    = 100
	defaultMaxComments = 50
	defaultDaysBack    = 7
)

// base holds the shared collaborators and the persistence logic common to all
// platform collectors.
type base struct {
	deps     Deps
	platform string
}

func newBase(deps Deps, platform string) base {
	deps.Log = ensureLogger(deps.Log)
	if deps.Settings.MaxPosts <= 0 {
		deps.Settings.MaxPosts = defaultMaxPosts
	}
	if deps.Settings.MaxComments <= 0 {
		deps.Settings.MaxComments = defaultMaxComments
	}
	if deps.Settings.DefaultDaysBack <= 0 {
		deps.Settings.DefaultDaysBack = defaultDaysBack
	}
	return base{deps: deps, platform: platform}
}

func (b *base) maxPosts(count int) int {
	if count > 0 {
		return count
	}
	return b.deps.Settings.MaxPosts
}

func (b *base) maxComments(count int) int {
	if count > 0 {
		return count
	}
	return b.deps.Settings.MaxComments
}

// startDate returns the collection window start: the caller's since time, or
// the configured days-back default when since is zero.
func (b *base) startDate(since time.Time) time.Time {
	if !since.IsZero() {
		return since
	}
	return time.Now().UTC().AddDate(0, 0, -b.deps.Settings.DefaultDaysBack)
}

func (b *base) account(accountID string) (accounts.Account, error) {
	acct, err := b.deps.Accounts.Resolve(accountID)
	if err != nil {
		if errors.Is(err, accounts.ErrNotFound) {
			return accounts.Account{}, &NotFoundError{Kind: "account", ID: accountID}
		}
		return accounts.Account{}, err
	}
	if acct.Handle == "" {
		return accounts.Account{}, &NotFoundError{Kind: "account handle", ID: accountID}
	}
	return acct, nil
}

func (b *base) parentPost(ctx context.Context, postID string) (*domain.Post, error) {
	post, err := b.deps.Store.GetPost(ctx, postID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, &NotFoundError{Kind: "post", ID: postID}
		}
		return nil, err
	}
	if post.PlatformID == "" {
		return nil, &NotFoundError{Kind: "post platform id", ID: postID}
	}
	return post, nil
}

type transformPostFn func(raw []byte, accountID string) (domain.Post, error)
type transformCommentFn func(raw []byte, postID string) (domain.Comment, error)

// savePosts persists a batch idempotently: a record already known by
// (platform, platform id) only gets its engagement counters refreshed. Items
// that fail to transform or persist are logged and skipped; the batch always
// yields the ids of the records that made it through.
func (b *base) savePosts(ctx context.Context, items []json.RawMessage, accountID string, transform transformPostFn) ([]string, error) {
	var ids []string
	var events []publishers.Event

	for _, item := range items {
		post, err := transform(item, accountID)
		if err != nil {
			b.deps.Log.ErrorObj("post transform failed", "save_error", map[string]any{
				"platform": b.platform,
				"account":  accountID,
				"error":    err.Error(),
			})
			continue
		}

		id, created, err := b.upsertPost(ctx, &post)
		if err != nil {
			b.deps.Log.ErrorObj("post save failed", "save_error", map[string]any{
				"platform":    b.platform,
				"account":     accountID,
				"platform_id": post.PlatformID,
				"error":       err.Error(),
			})
			continue
		}

		ids = append(ids, id)
		if created {
			events = append(events, publishers.Event{
				Platform:    b.platform,
				AccountID:   accountID,
				Kind:        publishers.KindPost,
				RecordID:    id,
				PlatformID:  post.PlatformID,
				CollectedAt: time.Now().UTC(),
			})
		}
	}

	b.publish(ctx, events)
	return ids, nil
}

func (b *base) upsertPost(ctx context.Context, post *domain.Post) (string, bool, error) {
	existing, err := b.deps.Store.FindPostByPlatformID(ctx, post.Platform, post.PlatformID)
	if err == nil {
		return existing.ID, false, b.deps.Store.UpdatePostEngagement(ctx, existing.ID, post.Engagement)
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return "", false, err
	}

	id, err := b.deps.Store.CreatePost(ctx, post)
	if errors.Is(err, storage.ErrDuplicate) {
		// Lost a concurrent insert race; fall back to the winner's record.
		existing, ferr := b.deps.Store.FindPostByPlatformID(ctx, post.Platform, post.PlatformID)
		if ferr != nil {
			return "", false, ferr
		}
		return existing.ID, false, b.deps.Store.UpdatePostEngagement(ctx, existing.ID, post.Engagement)
	}
	if err != nil {
		return "", false, err
	}
	return id, true, nil
}

// saveComments mirrors savePosts for comment batches. postURL, when known,
// backfills comments whose transform could not derive it.
func (b *base) saveComments(ctx context.Context, items []json.RawMessage, postID, postURL, accountID string, transform transformCommentFn) ([]string, error) {
	var ids []string
	var events []publishers.Event

	for _, item := range items {
		comment, err := transform(item, postID)
		if err != nil {
			b.deps.Log.ErrorObj("comment transform failed", "save_error", map[string]any{
				"platform": b.platform,
				"post_id":  postID,
				"error":    err.Error(),
			})
			continue
		}
		if comment.PostURL == "" {
			comment.PostURL = postURL
		}

		id, created, err := b.upsertComment(ctx, &comment)
		if err != nil {
			b.deps.Log.ErrorObj("comment save failed", "save_error", map[string]any{
				"platform":    b.platform,
				"post_id":     postID,
				"platform_id": comment.PlatformID,
				"error":       err.Error(),
			})
			continue
		}

		ids = append(ids, id)
		if created {
			events = append(events, publishers.Event{
				Platform:    b.platform,
				AccountID:   accountID,
				Kind:        publishers.KindComment,
				RecordID:    id,
				PlatformID:  comment.PlatformID,
				CollectedAt: time.Now().UTC(),
			})
		}
	}

	b.publish(ctx, events)
	return ids, nil
}

func (b *base) upsertComment(ctx context.Context, comment *domain.Comment) (string, bool, error) {
	existing, err := b.deps.Store.FindCommentByPlatformID(ctx, comment.Platform, comment.PlatformID)
	if err == nil {
		return existing.ID, false, b.deps.Store.UpdateCommentEngagement(ctx, existing.ID, comment.Engagement)
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return "", false, err
	}

	id, err := b.deps.Store.CreateComment(ctx, comment)
	if errors.Is(err, storage.ErrDuplicate) {
		existing, ferr := b.deps.Store.FindCommentByPlatformID(ctx, comment.Platform, comment.PlatformID)
		if ferr != nil {
			return "", false, ferr
		}
		return existing.ID, false, b.deps.Store.UpdateCommentEngagement(ctx, existing.ID, comment.Engagement)
	}
	if err != nil {
		return "", false, err
	}
	return id, true, nil
}

func (b *base) publish(ctx context.Context, events []publishers.Event) {
	if b.deps.Events == nil || len(events) == 0 {
		return
	}
	if err := b.deps.Events.Publish(ctx, events); err != nil {
		b.deps.Log.WarnObj("ingest event publish failed", "publish_error", map[string]any{
			"platform": b.platform,
			"count":    len(events),
			"error":    err.Error(),
		})
	}
}

// parseAPITimestamp handles the ISO-ish strings the scraping actors return:
// fractional seconds and UTC offsets are stripped before parsing. The second
// return reports whether parsing succeeded.
func parseAPITimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if i := strings.IndexAny(s, ".+"); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimSuffix(s, "Z")

	t, err := time.Parse("2006-01-02T15:04:05", s)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

func timeFromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func timeFromSeconds(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}

// createdAtOrNow falls back to the current time so records never carry a zero
// creation time.
func createdAtOrNow(t time.Time, ok bool) time.Time {
	if !ok || t.IsZero() {
		return time.Now().UTC()
	}
	return t
}
