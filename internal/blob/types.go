// Package blob re-exports core blob abstractions and selects a driver from
// the environment.
package blob

import (
	"inventorycore/internal/blob/core"
)

type (
	// Driver identifies a blob backend driver.
	Driver = core.Driver
	// PutOptions configures a blob write.
	PutOptions = core.PutOptions
	// Info describes stored blob metadata.
	Info = core.Info
	// Store is the interface for blob storage backends.
	Store = core.Store
)

const (
	// DriverFilesystem is the local filesystem driver.
	DriverFilesystem = core.DriverFilesystem
	// DriverS3 is the S3-compatible driver.
	DriverS3 = core.DriverS3
	// DriverMemory is the in-memory test driver.
	DriverMemory = core.DriverMemory
)

var (
	// ErrNotExist is wrapped by drivers when a blob is missing.
	ErrNotExist = core.ErrNotExist
	// ErrExists is wrapped by drivers when Put targets a taken key.
	ErrExists = core.ErrExists
)
