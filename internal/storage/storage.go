package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/samvad-hq/samvad-social-ingestor/internal/domain"
)

// ErrNotFound is returned when a record id or platform id resolves to nothing.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned by Create* when a record with the same
// (platform, platform id) pair already exists.
var ErrDuplicate = errors.New("record already exists")

// Store is the canonical persistence surface for collected records.
type Store interface {
	CreatePost(ctx context.Context, post *domain.Post) (string, error)
	GetPost(ctx context.Context, id string) (*domain.Post, error)
	FindPostByPlatformID(ctx context.Context, platform, platformID string) (*domain.Post, error)
	UpdatePostEngagement(ctx context.Context, id string, eng domain.Engagement) error

	CreateComment(ctx context.Context, comment *domain.Comment) (string, error)
	GetComment(ctx context.Context, id string) (*domain.Comment, error)
	FindCommentByPlatformID(ctx context.Context, platform, platformID string) (*domain.Comment, error)
	UpdateCommentEngagement(ctx context.Context, id string, eng domain.CommentEngagement) error

	Close() error
}

// Options selects and configures a storage backend.
type Options struct {
	Type      string
	BBoltPath string
}

// NewStore builds the configured backend. Supported types are "bbolt" and
// "noop" (discard writes, useful for dry runs).
func NewStore(opts Options) (Store, error) {
	switch opts.Type {
	case "", "bbolt":
		return newBoltStore(opts.BBoltPath)
	case "noop":
		return newNoopStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage type %q", opts.Type)
	}
}
