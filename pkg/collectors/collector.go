package collectors

import (
	"context"
	"encoding/json"
	"time"

	"github.com/samvad-hq/samvad-social-ingestor/internal/domain"
	"github.com/samvad-hq/samvad-social-ingestor/internal/storage"
	"github.com/samvad-hq/samvad-social-ingestor/pkg/accounts"
	"github.com/samvad-hq/samvad-social-ingestor/pkg/publishers"
)

// Package collectors implements the per-platform ingestion adapters. Each
// collector drives the remote scraping service for one platform and maps its
// raw payloads onto the canonical domain records.

// Collector is the platform adapter contract. Collect* methods run remote
// jobs and persist the results; Transform* methods are pure payload mappers.
type Collector interface {
	Platform() string

	CollectPosts(ctx context.Context, accountID string, count int, since time.Time) ([]string, error)
	CollectComments(ctx context.Context, postID string, count int) ([]string, error)
	CollectProfile(ctx context.Context, accountID string) (domain.Profile, error)
	UpdateMetrics(ctx context.Context, accountID string) (domain.Profile, error)

	TransformPost(raw []byte, accountID string) (domain.Post, error)
	TransformComment(raw []byte, postID string) (domain.Comment, error)
	TransformProfile(raw []byte) (domain.Profile, error)
}

// JobRunner is the slice of the scrape-job client collectors need.
type JobRunner interface {
	RunToCompletion(ctx context.Context, actorID string, input map[string]any, limit int) ([]json.RawMessage, error)
}

// Logger defines the logging surface collectors rely on.
type Logger interface {
	InfoObj(msg, key string, obj interface{})
	DebugObj(msg, key string, obj interface{})
	WarnObj(msg, key string, obj interface{})
	ErrorObj(msg, key string, obj interface{})
}

type noopLogger struct{}

func (noopLogger) InfoObj(string, string, interface{})  {}
func (noopLogger) DebugObj(string, string, interface{}) {}
func (noopLogger) WarnObj(string, string, interface{})  {}
func (noopLogger) ErrorObj(string, string, interface{}) {}

func ensureLogger(log Logger) Logger {
	if log == nil {
		return noopLogger{}
	}
	return log
}

// Settings carries the collection limits shared by all platforms.
type Settings struct {
	MaxPosts        int
	MaxComments     int
	DefaultDaysBack int
}

// Deps bundles the collaborators injected into every collector. Events may be
// nil when no downstream consumer is configured.
type Deps struct {
	Jobs     JobRunner
	Store    storage.Store
	Accounts accounts.Resolver
	Events   publishers.Publisher
	Log      Logger
	Settings Settings
}
