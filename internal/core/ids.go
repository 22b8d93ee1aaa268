package core

import "github.com/google/uuid"

// IDGenerator hands out opaque unique identities for items and containers.
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator issues random (v4) UUID strings.
type UUIDGenerator struct{}

// NewID implements IDGenerator.
func (UUIDGenerator) NewID() string { return uuid.NewString() }

// IDGeneratorFunc adapts a function to IDGenerator.
type IDGeneratorFunc func() string

// NewID implements IDGenerator.
func (f IDGeneratorFunc) NewID() string { return f() }
