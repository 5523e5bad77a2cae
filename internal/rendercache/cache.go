// Package rendercache хранит закэшированные артефакты рендера сцен
// (thumbnail, export) в BoltDB. Кэш инвалидируется нотификатором при
// каждом изменении элементов сцены.
package rendercache

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"
)

// ErrArtifactNotFound indicates that no cached artifact exists for the scene
var ErrArtifactNotFound = errors.New("render artifact not found")

var bucketRenders = []byte("renders")

// Cache represents BoltDB-backed render artifact cache
type Cache struct {
	db *bbolt.DB
}

// New creates a new render cache instance
// dbPath is the path to the BoltDB database file
func New(dbPath string) (*Cache, error) {
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open boltdb: %w", err)
	}

	cache := &Cache{db: db}

	if err := cache.initBuckets(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize buckets: %w", err)
	}

	return cache, nil
}

// Close closes the database connection
func (c *Cache) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// initBuckets создает необходимые buckets если они не существуют
func (c *Cache) initBuckets() error {
	return c.db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketRenders); err != nil {
			return fmt.Errorf("failed to create renders bucket: %w", err)
		}
		return nil
	})
}

// artifactKey строит ключ артефакта: "<scene_id>/<kind>".
// Общий префикс сцены позволяет инвалидировать все её артефакты разом.
func artifactKey(sceneID uuid.UUID, kind string) []byte {
	return []byte(sceneID.String() + "/" + kind)
}

// Put stores a rendered artifact for the scene
func (c *Cache) Put(sceneID uuid.UUID, kind string, data []byte) error {
	return c.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketRenders)
		if err := b.Put(artifactKey(sceneID, kind), data); err != nil {
			return fmt.Errorf("failed to put artifact: %w", err)
		}
		return nil
	})
}

// Get retrieves a cached artifact
// Returns ErrArtifactNotFound if no artifact is cached
func (c *Cache) Get(sceneID uuid.UUID, kind string) ([]byte, error) {
	var data []byte

	err := c.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketRenders)
		v := b.Get(artifactKey(sceneID, kind))
		if v == nil {
			return ErrArtifactNotFound
		}
		// Копируем: значение валидно только внутри транзакции
		data = make([]byte, len(v))
		copy(data, v)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return data, nil
}

// Invalidate drops all cached artifacts of the scene
func (c *Cache) Invalidate(sceneID uuid.UUID) error {
	prefix := []byte(sceneID.String() + "/")

	return c.db.Update(func(tx *bbolt.Tx) error {
		cur := tx.Bucket(bucketRenders).Cursor()
		for k, _ := cur.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = cur.Next() {
			if err := cur.Delete(); err != nil {
				return fmt.Errorf("failed to delete artifact: %w", err)
			}
		}
		return nil
	})
}
