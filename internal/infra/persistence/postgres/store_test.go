package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"inventorycore/internal/infra/persistence/postgres/testutil"
	"inventorycore/pkg/domain"
)

func openStubStore(t *testing.T) (*Store, *testutil.StubConn) {
	t.Helper()
	db, conn := testutil.NewStubDB()
	var gotDriver, gotDSN string
	restore := OverrideSQLOpen(func(driverName, dsn string) (*sql.DB, error) {
		gotDriver, gotDSN = driverName, dsn
		return db, nil
	})
	t.Cleanup(restore)
	store, err := NewStore(context.Background(), "")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if gotDriver != "pgx" || gotDSN != DefaultDSN {
		t.Fatalf("unexpected open args %s %s", gotDriver, gotDSN)
	}
	return store, conn
}

func TestNewStoreCreatesTable(t *testing.T) {
	_, conn := openStubStore(t)
	var sawDDL bool
	for _, stmt := range conn.Execs {
		if strings.Contains(stmt, "CREATE TABLE IF NOT EXISTS inventory_kv") {
			sawDDL = true
		}
	}
	if !sawDDL {
		t.Fatalf("expected inventory_kv DDL, got %v", conn.Execs)
	}
}

func TestStoreSaveLoadOverwriteDelete(t *testing.T) {
	ctx := context.Background()
	store, conn := openStubStore(t)
	if err := store.Save(ctx, "inventory/world", []byte("one")); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Save(ctx, "inventory/world", []byte("two")); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if err := store.Save(ctx, "other", []byte("x")); err != nil {
		t.Fatalf("save other: %v", err)
	}
	if n := len(conn.Tables["inventory_kv"]); n != 2 {
		t.Fatalf("expected upsert to keep 2 rows, got %d", n)
	}
	got, err := store.Load(ctx, "inventory/world")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(got) != "two" {
		t.Fatalf("unexpected payload %q", got)
	}
	ok, err := store.KeyExists(ctx, "inventory/world")
	if err != nil || !ok {
		t.Fatalf("expected key: %v %v", ok, err)
	}
	if err := store.DeleteKey(ctx, "inventory/world"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Load(ctx, "inventory/world"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	ok, err = store.KeyExists(ctx, "inventory/world")
	if err != nil || ok {
		t.Fatalf("expected key gone: %v %v", ok, err)
	}
}

func TestNewStorePropagatesFailures(t *testing.T) {
	restore := OverrideSQLOpen(func(string, string) (*sql.DB, error) {
		return nil, errors.New("dial refused")
	})
	if _, err := NewStore(context.Background(), "postgres://x"); err == nil || !strings.Contains(err.Error(), "open postgres") {
		t.Fatalf("expected open error, got %v", err)
	}
	restore()

	db, conn := testutil.NewStubDB()
	conn.FailExec = true
	restore = OverrideSQLOpen(func(string, string) (*sql.DB, error) { return db, nil })
	defer restore()
	if _, err := NewStore(context.Background(), "postgres://x"); err == nil || !strings.Contains(err.Error(), "ping postgres") {
		t.Fatalf("expected ping error, got %v", err)
	}
}

func TestStoreSaveErrors(t *testing.T) {
	ctx := context.Background()
	store, conn := openStubStore(t)
	if err := store.Save(ctx, "", []byte("x")); err == nil {
		t.Fatalf("expected empty key error")
	}
	conn.FailTables = map[string]bool{"inventory_kv": true}
	if err := store.Save(ctx, "k", []byte("x")); err == nil {
		t.Fatalf("expected upsert failure")
	}
	if _, err := store.Load(ctx, "k"); err == nil || errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected query failure, got %v", err)
	}
}
