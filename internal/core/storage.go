package core

import (
	"context"
	"fmt"
	"os"

	"inventorycore/internal/blob"
	"inventorycore/internal/infra/persistence/blobkv"
	"inventorycore/internal/infra/persistence/memory"
	"inventorycore/internal/infra/persistence/postgres"
	"inventorycore/internal/infra/persistence/sqlite"
	"inventorycore/pkg/domain"
)

// StorageDriver identifies a concrete persistent storage implementation.
type StorageDriver string

const (
	StorageMemory   StorageDriver = "memory"   // in-memory only (tests / ephemeral)
	StorageSQLite   StorageDriver = "sqlite"   // embedded sqlite file
	StoragePostgres StorageDriver = "postgres" // PostgreSQL server
	StorageBlob     StorageDriver = "blob"     // blob store selected by INVENTORYCORE_BLOB_DRIVER
)

// OpenPersistentStore selects a backend using environment variables.
// Defaults to sqlite when unset.
//
//	INVENTORYCORE_STORAGE_DRIVER: memory|sqlite|postgres|blob (default sqlite)
//	INVENTORYCORE_SQLITE_PATH: path to sqlite file (default ./inventorycore.db)
//	INVENTORYCORE_POSTGRES_DSN: postgres DSN when driver=postgres
//	INVENTORYCORE_BLOB_PREFIX: object prefix when driver=blob (default saves)
func OpenPersistentStore(ctx context.Context) (domain.PersistentStore, error) {
	driver := os.Getenv("INVENTORYCORE_STORAGE_DRIVER")
	if driver == "" {
		driver = string(StorageSQLite)
	}
	switch StorageDriver(driver) {
	case StorageMemory:
		return memory.NewStore(), nil
	case StorageSQLite:
		return sqlite.NewStore(ctx, os.Getenv("INVENTORYCORE_SQLITE_PATH"))
	case StoragePostgres:
		return postgres.NewStore(ctx, os.Getenv("INVENTORYCORE_POSTGRES_DSN"))
	case StorageBlob:
		blobs, err := blob.Open(ctx)
		if err != nil {
			return nil, fmt.Errorf("open blob store: %w", err)
		}
		prefix := os.Getenv("INVENTORYCORE_BLOB_PREFIX")
		if prefix == "" {
			prefix = "saves"
		}
		return blobkv.NewStore(blobs, prefix), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %s", driver)
	}
}

// SaveKey returns the world key from INVENTORYCORE_SAVE_KEY, or DefaultSaveKey.
func SaveKey() string {
	if key := os.Getenv("INVENTORYCORE_SAVE_KEY"); key != "" {
		return key
	}
	return DefaultSaveKey
}
