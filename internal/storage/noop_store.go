package storage

import (
	"context"

	"github.com/google/uuid"
	"github.com/samvad-hq/samvad-social-ingestor/internal/domain"
)

// noopStore discards all writes. Useful for dry runs where only the
// collection pipeline itself is under test.
type noopStore struct{}

func newNoopStore() *noopStore { return &noopStore{} }

func (n *noopStore) CreatePost(_ context.Context, post *domain.Post) (string, error) {
	if post.ID == "" {
		post.ID = uuid.NewString()
	}
	return post.ID, nil
}

func (n *noopStore) GetPost(context.Context, string) (*domain.Post, error) {
	return nil, ErrNotFound
}

func (n *noopStore) FindPostByPlatformID(context.Context, string, string) (*domain.Post, error) {
	return nil, ErrNotFound
}

func (n *noopStore) UpdatePostEngagement(context.Context, string, domain.Engagement) error {
	return nil
}

func (n *noopStore) CreateComment(_ context.Context, comment *domain.Comment) (string, error) {
	if comment.ID == "" {
		comment.ID = uuid.NewString()
	}
	return comment.ID, nil
}

func (n *noopStore) GetComment(context.Context, string) (*domain.Comment, error) {
	return nil, ErrNotFound
}

func (n *noopStore) FindCommentByPlatformID(context.Context, string, string) (*domain.Comment, error) {
	return nil, ErrNotFound
}

func (n *noopStore) UpdateCommentEngagement(context.Context, string, domain.CommentEngagement) error {
	return nil
}

func (n *noopStore) Close() error { return nil }
