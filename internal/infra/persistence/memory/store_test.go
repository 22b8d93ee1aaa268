package memory

import (
	"context"
	"errors"
	"testing"

	"inventorycore/pkg/domain"
)

func TestStoreSaveLoadDelete(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	payload := []byte(`{"a":1}`)
	if err := s.Save(ctx, "inventory/world", payload); err != nil {
		t.Fatalf("save: %v", err)
	}
	payload[0] = 'X'
	got, err := s.Load(ctx, "inventory/world")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(got) != `{"a":1}` {
		t.Fatalf("stored payload aliased caller slice: %s", got)
	}
	got[0] = 'Y'
	again, _ := s.Load(ctx, "inventory/world")
	if again[0] != '{' {
		t.Fatalf("loaded payload aliased stored slice")
	}
	ok, err := s.KeyExists(ctx, "inventory/world")
	if err != nil || !ok {
		t.Fatalf("expected key to exist: %v %v", ok, err)
	}
	if err := s.DeleteKey(ctx, "inventory/world"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.DeleteKey(ctx, "inventory/world"); err != nil {
		t.Fatalf("delete missing key should be a no-op: %v", err)
	}
	if _, err := s.Load(ctx, "inventory/world"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStoreRejectsEmptyKeyAndCanceledContext(t *testing.T) {
	s := NewStore()
	if err := s.Save(context.Background(), "", nil); err == nil {
		t.Fatalf("expected empty key error")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Save(ctx, "k", nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestStoreKeysPrefix(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	for _, k := range []string{"b/2", "a/1", "b/1"} {
		if err := s.Save(ctx, k, []byte("x")); err != nil {
			t.Fatalf("save %s: %v", k, err)
		}
	}
	keys := s.Keys("b/")
	if len(keys) != 2 || keys[0] != "b/1" || keys[1] != "b/2" {
		t.Fatalf("unexpected keys: %v", keys)
	}
}
