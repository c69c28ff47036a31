package collectors

import (
	"sort"
	"strings"
	"sync"

	"github.com/samvad-hq/samvad-social-ingestor/internal/domain"
)

// Registry maps platform keys to their collectors. Lookups are
// case-insensitive.
type Registry struct {
	mu         sync.RWMutex
	collectors map[string]Collector
}

func NewRegistry() *Registry {
	return &Registry{collectors: make(map[string]Collector)}
}

// Register adds or replaces the collector for a platform.
func (r *Registry) Register(platform string, c Collector) {
	platform = strings.ToLower(strings.TrimSpace(platform))
	if platform == "" || c == nil {
		return
	}
	r.mu.Lock()
	r.collectors[platform] = c
	r.mu.Unlock()
}

// Get returns the collector for a platform, or an UnsupportedPlatformError
// naming the registered platforms.
func (r *Registry) Get(platform string) (Collector, error) {
	key := strings.ToLower(strings.TrimSpace(platform))

	r.mu.RLock()
	c, ok := r.collectors[key]
	r.mu.RUnlock()

	if !ok {
		return nil, &UnsupportedPlatformError{Platform: platform, Supported: r.ListSupported()}
	}
	return c, nil
}

// IsSupported reports whether a collector is registered for the platform.
func (r *Registry) IsSupported(platform string) bool {
	key := strings.ToLower(strings.TrimSpace(platform))
	r.mu.RLock()
	_, ok := r.collectors[key]
	r.mu.RUnlock()
	return ok
}

// ListSupported returns the registered platform keys, sorted.
func (r *Registry) ListSupported() []string {
	r.mu.RLock()
	keys := make([]string, 0, len(r.collectors))
	for k := range r.collectors {
		keys = append(keys, k)
	}
	r.mu.RUnlock()

	sort.Strings(keys)
	return keys
}

// ActorIDs holds the remote actor ids for each platform collector.
type ActorIDs struct {
	Twitter       string
	Instagram     string
	Facebook      string
	TikTok        string
	TikTokPost    string
	TikTokComment string
}

// DefaultRegistry builds a registry with all supported platform collectors.
func DefaultRegistry(deps Deps, actors ActorIDs) *Registry {
	r := NewRegistry()
	r.Register(domain.PlatformTwitter, NewTwitter(deps, actors.Twitter))
	r.Register(domain.PlatformInstagram, NewInstagram(deps, actors.Instagram))
	r.Register(domain.PlatformFacebook, NewFacebook(deps, actors.Facebook))
	r.Register(domain.PlatformTikTok, NewTikTok(deps, actors.TikTok, actors.TikTokPost, actors.TikTokComment))
	return r
}
