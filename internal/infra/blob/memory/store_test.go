package memory

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"soutenancecore/internal/blob/core"
)

func TestStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := New()
	meta := map[string]string{"rows": "2"}
	info, err := store.Put(ctx, "sp/a.json", strings.NewReader("[]"), core.PutOptions{ContentType: "application/json", Metadata: meta})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	meta["rows"] = "mutated"
	if info.Metadata["rows"] != "2" {
		t.Fatalf("metadata aliased caller map")
	}
	if _, err := store.Put(ctx, "sp/a.json", strings.NewReader("[]"), core.PutOptions{}); !errors.Is(err, core.ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}
	got, rc, err := store.Get(ctx, "sp/a.json")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	body, _ := io.ReadAll(rc)
	if string(body) != "[]" || got.Metadata["rows"] != "2" {
		t.Fatalf("unexpected get %q %+v", body, got)
	}
	list, _ := store.List(ctx, "sp/")
	if len(list) != 1 {
		t.Fatalf("expected one listed blob, got %d", len(list))
	}
	if ok, _ := store.Delete(ctx, "sp/a.json"); !ok {
		t.Fatalf("expected delete to report existing key")
	}
	if _, err := store.Head(ctx, "sp/a.json"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, _, err := store.Get(ctx, "sp/a.json"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := store.Put(ctx, "", strings.NewReader(""), core.PutOptions{}); !errors.Is(err, core.ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey, got %v", err)
	}
}
