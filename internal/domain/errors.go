package domain

import "errors"

var (
	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrInvalidSnapshot is returned when a page snapshot has no usable HTML
	ErrInvalidSnapshot = errors.New("invalid page snapshot")

	// ErrPolicyNotFound is returned when a policy URL resolves to 404
	ErrPolicyNotFound = errors.New("policy page not found")

	// ErrFetchFailure is returned when fetching remote policy text fails
	ErrFetchFailure = errors.New("policy fetch failed")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrCollectorUnavailable is returned when the storage collector rejects
	// or cannot receive a banner record
	ErrCollectorUnavailable = errors.New("banner collector unavailable")
)
