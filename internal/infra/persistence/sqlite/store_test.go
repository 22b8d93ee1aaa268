package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"inventorycore/pkg/domain"
)

func openTestStore(t *testing.T, path string) *Store {
	t.Helper()
	store, err := NewStore(context.Background(), path)
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStorePersistAndReload(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "inventory.db")
	store := openTestStore(t, path)
	if err := store.Save(ctx, "inventory/world", []byte(`{"version":1}`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Save(ctx, "inventory/world", []byte(`{"version":2}`)); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	reloaded := openTestStore(t, path)
	got, err := reloaded.Load(ctx, "inventory/world")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(got) != `{"version":2}` {
		t.Fatalf("unexpected payload %s", got)
	}
	if reloaded.Path() != path {
		t.Fatalf("unexpected path %s", reloaded.Path())
	}
}

func TestSQLiteStoreMissingAndDelete(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t, filepath.Join(t.TempDir(), "inventory.db"))
	if _, err := store.Load(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := store.Save(ctx, "k", nil); err != nil {
		t.Fatalf("save empty payload: %v", err)
	}
	ok, err := store.KeyExists(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("expected key: %v %v", ok, err)
	}
	if err := store.DeleteKey(ctx, "k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	ok, err = store.KeyExists(ctx, "k")
	if err != nil || ok {
		t.Fatalf("expected key gone: %v %v", ok, err)
	}
	if err := store.Save(ctx, "", []byte("x")); err == nil {
		t.Fatalf("expected empty key error")
	}
}

func TestSQLiteStoreCreatesKVTable(t *testing.T) {
	store := openTestStore(t, filepath.Join(t.TempDir(), "inventory.db"))
	var name string
	if err := store.DB().QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name = ?", "kv").Scan(&name); err != nil {
		t.Fatalf("lookup kv table: %v", err)
	}
	if name != "kv" {
		t.Fatalf("expected kv table, got %s", name)
	}
}
