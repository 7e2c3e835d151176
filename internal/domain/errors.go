package domain

import "errors"

// Sentinel errors for viewport operations
var (
	// ErrItemNotFound indicates no live item has the requested ID
	ErrItemNotFound = errors.New("item not found")

	// ErrDuplicateID indicates an insert collided with an existing ID
	ErrDuplicateID = errors.New("duplicate item id")

	// ErrInvalidIndex indicates an index outside the store bounds
	ErrInvalidIndex = errors.New("index out of range")

	// ErrLoadFailed indicates a chunk could not be fetched after all retries
	ErrLoadFailed = errors.New("chunk load failed")

	// ErrInvalidConfig indicates malformed construction options
	ErrInvalidConfig = errors.New("invalid viewport configuration")
)
