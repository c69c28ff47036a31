package collectors

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/samvad-hq/samvad-social-ingestor/internal/domain"
	"github.com/samvad-hq/samvad-social-ingestor/internal/storage"
	"github.com/samvad-hq/samvad-social-ingestor/pkg/accounts"
	"github.com/samvad-hq/samvad-social-ingestor/pkg/publishers"
)

type fakeJobs struct {
	items     []json.RawMessage
	err       error
	lastActor string
	lastInput map[string]any
	lastLimit int
	runs      int
}

func (f *fakeJobs) RunToCompletion(_ context.Context, actorID string, input map[string]any, limit int) ([]json.RawMessage, error) {
	f.runs++
	f.lastActor = actorID
	f.lastInput = input
	f.lastLimit = limit
	return f.items, f.err
}

type memStore struct {
	posts       map[string]*domain.Post
	postIdx     map[string]string
	comments    map[string]*domain.Comment
	commentIdx  map[string]string
	nextID      int
	failCreates bool
}

func newMemStore() *memStore {
	return &memStore{
		posts:      map[string]*domain.Post{},
		postIdx:    map[string]string{},
		comments:   map[string]*domain.Comment{},
		commentIdx: map[string]string{},
	}
}

func (m *memStore) genID() string {
	m.nextID++
	return fmt.Sprintf("doc-%d", m.nextID)
}

func (m *memStore) CreatePost(_ context.Context, post *domain.Post) (string, error) {
	if m.failCreates {
		return "", fmt.Errorf("store unavailable")
	}
	key := post.Platform + "\x00" + post.PlatformID
	if _, ok := m.postIdx[key]; ok {
		return "", storage.ErrDuplicate
	}
	cp := *post
	cp.ID = m.genID()
	m.posts[cp.ID] = &cp
	m.postIdx[key] = cp.ID
	return cp.ID, nil
}

func (m *memStore) GetPost(_ context.Context, id string) (*domain.Post, error) {
	p, ok := m.posts[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memStore) FindPostByPlatformID(_ context.Context, platform, platformID string) (*domain.Post, error) {
	id, ok := m.postIdx[platform+"\x00"+platformID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *m.posts[id]
	return &cp, nil
}

func (m *memStore) UpdatePostEngagement(_ context.Context, id string, eng domain.Engagement) error {
	p, ok := m.posts[id]
	if !ok {
		return storage.ErrNotFound
	}
	p.Engagement = eng
	return nil
}

func (m *memStore) CreateComment(_ context.Context, comment *domain.Comment) (string, error) {
	if m.failCreates {
		return "", fmt.Errorf("store unavailable")
	}
	key := comment.Platform + "\x00" + comment.PlatformID
	if _, ok := m.commentIdx[key]; ok {
		return "", storage.ErrDuplicate
	}
	cp := *comment
	cp.ID = m.genID()
	m.comments[cp.ID] = &cp
	m.commentIdx[key] = cp.ID
	return cp.ID, nil
}

func (m *memStore) GetComment(_ context.Context, id string) (*domain.Comment, error) {
	c, ok := m.comments[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memStore) FindCommentByPlatformID(_ context.Context, platform, platformID string) (*domain.Comment, error) {
	id, ok := m.commentIdx[platform+"\x00"+platformID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *m.comments[id]
	return &cp, nil
}

func (m *memStore) UpdateCommentEngagement(_ context.Context, id string, eng domain.CommentEngagement) error {
	c, ok := m.comments[id]
	if !ok {
		return storage.ErrNotFound
	}
	c.Engagement = eng
	return nil
}

func (m *memStore) Close() error { return nil }

type fakeResolver map[string]accounts.Account

func (f fakeResolver) Resolve(accountID string) (accounts.Account, error) {
	a, ok := f[accountID]
	if !ok {
		return accounts.Account{}, fmt.Errorf("account %q: %w", accountID, accounts.ErrNotFound)
	}
	return a, nil
}

func (f fakeResolver) ByPlatform(platform string) []accounts.Account {
	var out []accounts.Account
	for _, a := range f {
		if a.Platform == platform {
			out = append(out, a)
		}
	}
	return out
}

type fakePublisher struct {
	events []publishers.Event
	err    error
}

func (f *fakePublisher) ID() string   { return "fake" }
func (f *fakePublisher) Type() string { return "fake" }

func (f *fakePublisher) Publish(_ context.Context, events []publishers.Event) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, events...)
	return nil
}

func (f *fakePublisher) Close() error { return nil }
