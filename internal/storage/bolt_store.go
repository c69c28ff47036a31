package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/samvad-hq/samvad-social-ingestor/internal/domain"
	bolt "go.etcd.io/bbolt"
)

var (
	bucketPosts       = []byte("posts")
	bucketComments    = []byte("comments")
	bucketPostsIdx    = []byte("posts_idx")
	bucketCommentsIdx = []byte("comments_idx")
)

// boltStore persists records in a local bbolt file. Documents live in the
// posts/comments buckets keyed by uuid; the *_idx buckets map
// platform"\x00"platformID to the document id and act as a unique index.
type boltStore struct {
	db *bolt.DB
}

func newBoltStore(path string) (*boltStore, error) {
	if path == "" {
		path = "./data/ingest.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}

	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("open bbolt db %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketPosts, bucketComments, bucketPostsIdx, bucketCommentsIdx} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("create bucket %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &boltStore{db: db}, nil
}

func indexKey(platform, platformID string) []byte {
	return []byte(platform + "\x00" + platformID)
}

func (s *boltStore) CreatePost(ctx context.Context, post *domain.Post) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if post.Platform == "" || post.PlatformID == "" {
		return "", fmt.Errorf("post is missing platform or platform id")
	}
	if post.ID == "" {
		post.ID = uuid.NewString()
	}

	err := s.db.Update(func(tx *bolt.Tx) error {
		idx := tx.Bucket(bucketPostsIdx)
		key := indexKey(post.Platform, post.PlatformID)
		if idx.Get(key) != nil {
			return ErrDuplicate
		}

		value, err := json.Marshal(post)
		if err != nil {
			return fmt.Errorf("marshal post: %w", err)
		}
		if err := tx.Bucket(bucketPosts).Put([]byte(post.ID), value); err != nil {
			return err
		}
		return idx.Put(key, []byte(post.ID))
	})
	if err != nil {
		return "", err
	}
	return post.ID, nil
}

func (s *boltStore) GetPost(ctx context.Context, id string) (*domain.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var post domain.Post
	err := s.db.View(func(tx *bolt.Tx) error {
		value := tx.Bucket(bucketPosts).Get([]byte(id))
		if value == nil {
			return ErrNotFound
		}
		return json.Unmarshal(value, &post)
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (s *boltStore) FindPostByPlatformID(ctx context.Context, platform, platformID string) (*domain.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var post domain.Post
	err := s.db.View(func(tx *bolt.Tx) error {
		docID := tx.Bucket(bucketPostsIdx).Get(indexKey(platform, platformID))
		if docID == nil {
			return ErrNotFound
		}
		value := tx.Bucket(bucketPosts).Get(docID)
		if value == nil {
			return fmt.Errorf("post index points to missing document %s", docID)
		}
		return json.Unmarshal(value, &post)
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (s *boltStore) UpdatePostEngagement(ctx context.Context, id string, eng domain.Engagement) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketPosts)
		value := bucket.Get([]byte(id))
		if value == nil {
			return ErrNotFound
		}

		var post domain.Post
		if err := json.Unmarshal(value, &post); err != nil {
			return fmt.Errorf("unmarshal post %s: %w", id, err)
		}
		post.Engagement = eng

		updated, err := json.Marshal(&post)
		if err != nil {
			return fmt.Errorf("marshal post %s: %w", id, err)
		}
		return bucket.Put([]byte(id), updated)
	})
}

func (s *boltStore) CreateComment(ctx context.Context, comment *domain.Comment) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if comment.Platform == "" || comment.PlatformID == "" {
		return "", fmt.Errorf("comment is missing platform or platform id")
	}
	if comment.ID == "" {
		comment.ID = uuid.NewString()
	}

	err := s.db.Update(func(tx *bolt.Tx) error {
		idx := tx.Bucket(bucketCommentsIdx)
		key := indexKey(comment.Platform, comment.PlatformID)
		if idx.Get(key) != nil {
			return ErrDuplicate
		}

		value, err := json.Marshal(comment)
		if err != nil {
			return fmt.Errorf("marshal comment: %w", err)
		}
		if err := tx.Bucket(bucketComments).Put([]byte(comment.ID), value); err != nil {
			return err
		}
		return idx.Put(key, []byte(comment.ID))
	})
	if err != nil {
		return "", err
	}
	return comment.ID, nil
}

func (s *boltStore) GetComment(ctx context.Context, id string) (*domain.Comment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var comment domain.Comment
	err := s.db.View(func(tx *bolt.Tx) error {
		value := tx.Bucket(bucketComments).Get([]byte(id))
		if value == nil {
			return ErrNotFound
		}
		return json.Unmarshal(value, &comment)
	})
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (s *boltStore) FindCommentByPlatformID(ctx context.Context, platform, platformID string) (*domain.Comment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var comment domain.Comment
	err := s.db.View(func(tx *bolt.Tx) error {
		docID := tx.Bucket(bucketCommentsIdx).Get(indexKey(platform, platformID))
		if docID == nil {
			return ErrNotFound
		}
		value := tx.Bucket(bucketComments).Get(docID)
		if value == nil {
			return fmt.Errorf("comment index points to missing document %s", docID)
		}
		return json.Unmarshal(value, &comment)
	})
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (s *boltStore) UpdateCommentEngagement(ctx context.Context, id string, eng domain.CommentEngagement) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketComments)
		value := bucket.Get([]byte(id))
		if value == nil {
			return ErrNotFound
		}

		var comment domain.Comment
		if err := json.Unmarshal(value, &comment); err != nil {
			return fmt.Errorf("unmarshal comment %s: %w", id, err)
		}
		comment.Engagement = eng

		updated, err := json.Marshal(&comment)
		if err != nil {
			return fmt.Errorf("marshal comment %s: %w", id, err)
		}
		return bucket.Put([]byte(id), updated)
	})
}

func (s *boltStore) Close() error {
	return s.db.Close()
}
