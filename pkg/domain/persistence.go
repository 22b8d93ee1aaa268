package domain

import (
	"context"
	"encoding/json"
	"fmt"
)

// PersistentStore is the opaque blob store the engine saves worlds into. Keys
// are plain strings; payloads are never interpreted by the store.
type PersistentStore interface {
	// Save writes payload at key, replacing any previous value.
	Save(ctx context.Context, key string, payload []byte) error
	// Load returns the payload stored at key or an error wrapping ErrNotFound.
	Load(ctx context.Context, key string) ([]byte, error)
	// KeyExists reports whether a payload is stored at key.
	KeyExists(ctx context.Context, key string) (bool, error)
	// DeleteKey removes key. Deleting a missing key is not an error.
	DeleteKey(ctx context.Context, key string) error
}

// SaveJSON encodes value as JSON and saves it at key.
func SaveJSON(ctx context.Context, store PersistentStore, key string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return store.Save(ctx, key, payload)
}

// LoadJSON loads key and decodes it into a T.
func LoadJSON[T any](ctx context.Context, store PersistentStore, key string) (T, error) {
	var out T
	payload, err := store.Load(ctx, key)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(payload, &out); err != nil {
		return out, fmt.Errorf("decode %s: %w", key, err)
	}
	return out, nil
}
