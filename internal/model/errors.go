package model

import "errors"

// Sentinel errors shared between the store, pipeline and API layers.
var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrNotOwner indicates the caller is not the owner of the artwork.
	ErrNotOwner = errors.New("not the artwork owner")
)
