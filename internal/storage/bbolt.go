package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

var boltBucket = []byte("sessiongate")

// boltRecord wraps a value with its absolute expiry; bbolt has no TTL.
type boltRecord struct {
	ExpiresAt int64  `json:"expires_at,omitempty"` // Unix milliseconds, 0 = never
	Value     []byte `json:"value"`
}

// BoltEngine implements KVEngine backed by a bbolt database file.
type BoltEngine struct {
	db  *bbolt.DB
	now func() time.Time
}

// NewBoltEngine opens the bbolt database at path.
func NewBoltEngine(path string) (*BoltEngine, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("bbolt: open %s: %w", path, err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(boltBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("bbolt: create bucket: %w", err)
	}
	return &BoltEngine{db: db, now: time.Now}, nil
}

// Get retrieves a value by key, treating expired records as missing.
func (e *BoltEngine) Get(ctx context.Context, key []byte) ([]byte, error) {
	var rec boltRecord
	err := e.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(boltBucket).Get(key)
		if data == nil {
			return ErrKeyNotFound
		}
		return json.Unmarshal(data, &rec)
	})
	if err != nil {
		return nil, err
	}
	if rec.ExpiresAt > 0 && e.now().UnixMilli() >= rec.ExpiresAt {
		return nil, ErrKeyNotFound
	}
	return rec.Value, nil
}

// Set stores a key-value pair with an optional TTL.
func (e *BoltEngine) Set(ctx context.Context, key, value []byte, ttl time.Duration) error {
	rec := boltRecord{Value: value}
	if ttl > 0 {
		rec.ExpiresAt = e.now().Add(ttl).UnixMilli()
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return e.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(boltBucket).Put(key, data)
	})
}

// Delete removes a key.
func (e *BoltEngine) Delete(ctx context.Context, key []byte) error {
	return e.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(boltBucket).Delete(key)
	})
}

// Close closes the database file.
func (e *BoltEngine) Close() error {
	return e.db.Close()
}
