package history

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	bolt "go.etcd.io/bbolt"

	apperrors "github.com/rohankatakam/defacto/internal/errors"
)

const bucketName = "commit_history"

// Cache stores parsed histories in a bbolt file.
type Cache struct {
	db *bolt.DB
}

// OpenCache opens (or creates) the cache file at path.
func OpenCache(path string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, apperrors.FileSystemErrorf(err, "create cache directory for %s", path)
	}
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, apperrors.FileSystemErrorf(err, "open history cache %s", path)
	}
	return &Cache{db: db}, nil
}

// Get returns the cached commits for key.
func (c *Cache) Get(key string) ([]Commit, bool, error) {
	var (
		commits []Commit
		found   bool
	)
	err := c.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketName))
		if bucket == nil {
			return nil
		}
		data := bucket.Get([]byte(key))
		if data == nil {
			return nil
		}
		found = true
		return json.Unmarshal(data, &commits)
	})
	if err != nil {
		return nil, false, err
	}
	return commits, found, nil
}

// Put replaces the entry for key.
func (c *Cache) Put(key string, commits []Commit) error {
	return c.db.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		if err != nil {
			return err
		}
		data, err := json.Marshal(commits)
		if err != nil {
			return err
		}
		return bucket.Put([]byte(key), data)
	})
}

// Close releases the file lock.
func (c *Cache) Close() error {
	return c.db.Close()
}

// CachedLoader serves a Loader's results from a Cache while HEAD is unchanged.
type CachedLoader struct {
	loader *Loader
	cache  *Cache
	logger logrus.FieldLogger
}

// NewCachedLoader wraps loader with cache.
func NewCachedLoader(loader *Loader, cache *Cache, logger logrus.FieldLogger) *CachedLoader {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &CachedLoader{loader: loader, cache: cache, logger: logger}
}

// Load returns cached history when available, otherwise loads and stores it.
// Cache failures never fail the load.
func (c *CachedLoader) Load(ctx context.Context) ([]Commit, error) {
	head, err := c.loader.Head(ctx)
	if err != nil {
		c.logger.WithError(err).Debug("cannot resolve HEAD, bypassing history cache")
		return c.loader.Load(ctx)
	}

	key := c.loader.CacheKey(head)
	commits, found, err := c.cache.Get(key)
	switch {
	case err != nil:
		c.logger.WithError(err).Warn("history cache read failed")
	case found:
		c.logger.WithField("head", head).Debug("history cache hit")
		return commits, nil
	}

	commits, err = c.loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.cache.Put(key, commits); err != nil {
		c.logger.WithError(err).Warn("history cache write failed")
	}
	return commits, nil
}
