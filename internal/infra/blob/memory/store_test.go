package memory

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"inventorycore/internal/blob/core"
)

func TestStoreCopiesData(t *testing.T) {
	ctx := context.Background()
	s := New()
	meta := map[string]string{"a": "1"}
	if _, err := s.Put(ctx, "k", bytes.NewReader([]byte("abc")), core.PutOptions{Metadata: meta}); err != nil {
		t.Fatalf("put: %v", err)
	}
	meta["a"] = "2"
	info, rc, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if info.Metadata["a"] != "1" {
		t.Fatalf("metadata aliased caller map")
	}
	body, _ := io.ReadAll(rc)
	if string(body) != "abc" {
		t.Fatalf("unexpected body %q", body)
	}
	if _, err := s.Put(ctx, "k", bytes.NewReader(nil), core.PutOptions{}); !errors.Is(err, core.ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}
	if ok, _ := s.Delete(ctx, "k"); !ok {
		t.Fatalf("expected delete to report existing blob")
	}
	if _, _, err := s.Get(ctx, "k"); !errors.Is(err, core.ErrNotExist) {
		t.Fatalf("expected ErrNotExist, got %v", err)
	}
	if s.Driver() != core.DriverMemory {
		t.Fatalf("unexpected driver %s", s.Driver())
	}
}
