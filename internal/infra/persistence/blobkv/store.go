// Package blobkv adapts a blob store into a persistent store: each key is one
// JSON object in the bucket.
package blobkv

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"

	"inventorycore/internal/blob"
	"inventorycore/pkg/domain"
)

var _ domain.PersistentStore = (*Store)(nil)

// Store keeps payloads under prefix in a blob.Store.
type Store struct {
	blobs  blob.Store
	prefix string
}

// NewStore wraps blobs. Keys are stored as prefix + key + ".json".
func NewStore(blobs blob.Store, prefix string) *Store {
	return &Store{blobs: blobs, prefix: strings.Trim(prefix, "/")}
}

func (s *Store) objectKey(key string) string {
	if s.prefix == "" {
		return key + ".json"
	}
	return path.Join(s.prefix, key) + ".json"
}

// stagingPrefix returns the key prefix of staged writes for obj. Staged keys
// end in a version 7 UUID, so key order is write order.
func stagingPrefix(obj string) string { return obj + ".tmp-" }

// Save implements domain.PersistentStore. Blob stores are create-only, so the
// payload is first staged under a fresh key; the previous object is replaced
// only once staging succeeded. Should the final write fail, Load serves the
// newest staged payload until the next successful Save clears it.
func (s *Store) Save(ctx context.Context, key string, payload []byte) error {
	if key == "" {
		return fmt.Errorf("blob kv store: key required")
	}
	obj := s.objectKey(key)
	stamp, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("stage %s: %w", obj, err)
	}
	staged := stagingPrefix(obj) + stamp.String()
	opts := blob.PutOptions{ContentType: "application/json"}
	if _, err := s.blobs.Put(ctx, staged, bytes.NewReader(payload), opts); err != nil {
		return fmt.Errorf("stage %s: %w", obj, err)
	}
	if _, err := s.blobs.Delete(ctx, obj); err != nil {
		return fmt.Errorf("replace %s: %w", obj, err)
	}
	if _, err := s.blobs.Put(ctx, obj, bytes.NewReader(payload), opts); err != nil {
		return fmt.Errorf("put %s: %w", obj, err)
	}
	return s.clearStaged(ctx, obj)
}

func (s *Store) clearStaged(ctx context.Context, obj string) error {
	staged, err := s.blobs.List(ctx, stagingPrefix(obj))
	if err != nil {
		return fmt.Errorf("list staged %s: %w", obj, err)
	}
	for _, info := range staged {
		if _, err := s.blobs.Delete(ctx, info.Key); err != nil {
			return fmt.Errorf("clear staged %s: %w", info.Key, err)
		}
	}
	return nil
}

// latestStaged returns the newest staged key for obj, or "" when none exist.
func (s *Store) latestStaged(ctx context.Context, obj string) (string, error) {
	staged, err := s.blobs.List(ctx, stagingPrefix(obj))
	if err != nil {
		return "", fmt.Errorf("list staged %s: %w", obj, err)
	}
	if len(staged) == 0 {
		return "", nil
	}
	return staged[len(staged)-1].Key, nil
}

func (s *Store) read(ctx context.Context, obj string) ([]byte, error) {
	_, rc, err := s.blobs.Get(ctx, obj)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()
	payload, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", obj, err)
	}
	return payload, nil
}

// Load implements domain.PersistentStore. A staged payload newer than the
// object wins, since it is only left behind by a failed final write.
func (s *Store) Load(ctx context.Context, key string) ([]byte, error) {
	obj := s.objectKey(key)
	staged, err := s.latestStaged(ctx, obj)
	if err != nil {
		return nil, err
	}
	target := obj
	if staged != "" {
		target = staged
	}
	payload, err := s.read(ctx, target)
	if errors.Is(err, blob.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", target, err)
	}
	return payload, nil
}

// KeyExists implements domain.PersistentStore.
func (s *Store) KeyExists(ctx context.Context, key string) (bool, error) {
	obj := s.objectKey(key)
	_, err := s.blobs.Head(ctx, obj)
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, blob.ErrNotExist) {
		return false, err
	}
	staged, err := s.latestStaged(ctx, obj)
	if err != nil {
		return false, err
	}
	return staged != "", nil
}

// DeleteKey implements domain.PersistentStore.
func (s *Store) DeleteKey(ctx context.Context, key string) error {
	obj := s.objectKey(key)
	if _, err := s.blobs.Delete(ctx, obj); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return s.clearStaged(ctx, obj)
}

// Driver reports the underlying blob driver.
func (s *Store) Driver() blob.Driver { return s.blobs.Driver() }
