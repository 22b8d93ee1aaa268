package testutil

import (
	"context"
	"database/sql/driver"
	"io"
	"testing"
)

func TestStubDBStoresAndQueriesRows(t *testing.T) {
	ctx := context.Background()
	_, conn := NewStubDB()

	if err := conn.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	insert := "INSERT INTO inventory_kv (store_key, payload) VALUES ($1, $2) ON CONFLICT (store_key) DO UPDATE SET payload = EXCLUDED.payload"
	for _, payload := range []string{"one", "two"} {
		if _, err := conn.ExecContext(ctx, insert, []driver.NamedValue{{Value: "k1"}, {Value: payload}}); err != nil {
			t.Fatalf("ExecContext insert: %v", err)
		}
	}
	if _, err := conn.ExecContext(ctx, insert, []driver.NamedValue{{Value: "k2"}, {Value: "three"}}); err != nil {
		t.Fatalf("ExecContext insert: %v", err)
	}
	if len(conn.Tables["inventory_kv"]) != 2 {
		t.Fatalf("expected upsert to keep two rows, got %v", conn.Tables["inventory_kv"])
	}

	rows, err := conn.QueryContext(ctx, "SELECT payload FROM inventory_kv WHERE store_key = $1", []driver.NamedValue{{Value: "k1"}})
	if err != nil {
		t.Fatalf("QueryContext: %v", err)
	}
	dest := make([]driver.Value, 1)
	if err := rows.Next(dest); err != nil {
		t.Fatalf("Next: %v", err)
	}
	if dest[0] != "two" {
		t.Fatalf("unexpected row values: %v", dest)
	}
	if err := rows.Next(dest); err != io.EOF {
		t.Fatalf("expected a single row, got %v", err)
	}

	if _, err := conn.ExecContext(ctx, "DELETE FROM inventory_kv WHERE store_key = $1", []driver.NamedValue{{Value: "k1"}}); err != nil {
		t.Fatalf("ExecContext delete: %v", err)
	}
	if len(conn.Tables["inventory_kv"]) != 1 {
		t.Fatalf("expected one row after delete, got %v", conn.Tables["inventory_kv"])
	}
}

func TestStubDBParseErrors(t *testing.T) {
	ctx := context.Background()
	_, conn := NewStubDB()
	if _, err := conn.QueryContext(ctx, "UPDATE x SET y = 1", nil); err == nil {
		t.Fatalf("expected select parse error")
	}
	if _, err := conn.ExecContext(ctx, "DELETE FROM inventory_kv", nil); err == nil {
		t.Fatalf("expected delete parse error")
	}
	if _, err := conn.ExecContext(ctx, "INSERT INTO inventory_kv", []driver.NamedValue{{Value: "x"}}); err == nil {
		t.Fatalf("expected insert parse error")
	}
}
