package challenge

import (
	"context"
	"errors"
	"time"

	"github.com/ghuysu/social-media-sub000/kv"
)

// ErrNotFound is returned by Get when no live challenge exists under the
// key. Expired and never-issued challenges are indistinguishable.
var ErrNotFound = errors.New("challenge: not found")

// Store persists challenges in a TTL key-value store under a fixed
// prefix.
type Store struct {
	kv     kv.Store
	prefix string
}

// NewStore returns a Store writing under prefix.
func NewStore(store kv.Store, prefix string) *Store {
	return &Store{kv: store, prefix: prefix}
}

func (s *Store) key(name string) string {
	return s.prefix + ":" + name
}

// Save writes record under name with the given TTL, replacing any
// pending challenge for the same name.
func (s *Store) Save(ctx context.Context, name string, record *Record, ttl time.Duration) error {
	encoded, err := encodeRecord(record)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, s.key(name), encoded, ttl)
}

// Get returns the live challenge under name together with the exact
// stored blob. The blob is what ConsumeExact later compares against, so
// consumption only succeeds while the store still holds this same
// challenge.
func (s *Store) Get(ctx context.Context, name string) (*Record, []byte, error) {
	data, err := s.kv.Get(ctx, s.key(name))
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}

	record, err := decodeRecord(data)
	if err != nil {
		return nil, nil, err
	}

	return record, data, nil
}

// ConsumeExact atomically removes the challenge under name, but only
// while the store still holds exactly raw. It reports whether the
// removal happened; false means the challenge expired or was replaced
// since raw was read.
func (s *Store) ConsumeExact(ctx context.Context, name string, raw []byte) (bool, error) {
	return s.kv.CompareAndDelete(ctx, s.key(name), raw)
}

// Drop removes any pending challenge under name.
func (s *Store) Drop(ctx context.Context, name string) error {
	return s.kv.Delete(ctx, s.key(name))
}
