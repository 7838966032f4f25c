package policies

import "github.com/google/uuid"

// IDGenerator supplies opaque unique identifiers for new aggregates.
type IDGenerator interface {
	NewID() string
}

type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string { return uuid.NewString() }

type IDFunc func() string

func (f IDFunc) NewID() string { return f() }
