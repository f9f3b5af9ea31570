package core

import (
	"context"
	"path/filepath"
	"testing"

	"soutenancecore/internal/infra/persistence/memory"
	"soutenancecore/internal/infra/persistence/sqlite"
)

func TestOpenPersistentStoreMemory(t *testing.T) {
	store, err := OpenPersistentStore(context.Background(), StorageConfig{Driver: StorageMemory}, NewDefaultRulesEngine())
	if err != nil {
		t.Fatalf("open memory: %v", err)
	}
	if _, ok := store.(*memory.Store); !ok {
		t.Fatalf("expected memory store, got %T", store)
	}
	if err := CloseStore(store); err != nil {
		t.Fatalf("close memory store: %v", err)
	}
}

func TestOpenPersistentStoreDefaultsToSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "soutenance.db")
	store, err := OpenPersistentStore(context.Background(), StorageConfig{SQLitePath: path}, NewDefaultRulesEngine())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer func() { _ = CloseStore(store) }()
	lite, ok := store.(*sqlite.Store)
	if !ok {
		t.Fatalf("expected sqlite store, got %T", store)
	}
	if lite.Path() != path {
		t.Fatalf("expected path %s, got %s", path, lite.Path())
	}

	svc := NewService(store)
	if _, err := svc.SeedSpecialites(context.Background(), DefaultSpecialites); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := CloseStore(store); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := OpenPersistentStore(context.Background(), StorageConfig{Driver: StorageSQLite, SQLitePath: path}, NewDefaultRulesEngine())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = CloseStore(reopened) }()
	all, err := NewService(reopened).ListSpecialites(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != len(DefaultSpecialites) {
		t.Fatalf("expected persisted specialites, got %d", len(all))
	}
}

func TestOpenPersistentStoreUnknownDriver(t *testing.T) {
	if _, err := OpenPersistentStore(context.Background(), StorageConfig{Driver: "cassandra"}, nil); err == nil {
		t.Fatalf("expected unknown driver error")
	}
}
