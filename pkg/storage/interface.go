package storage

import "errors"

var (
	// ErrInvalidKey is returned for empty keys.
	ErrInvalidKey = errors.New("storage: invalid key")

	// ErrValueTooLarge is returned when a write exceeds the store's quota.
	ErrValueTooLarge = errors.New("storage: value exceeds quota")

	// ErrStoreFull is returned when a new key would exceed the key limit.
	ErrStoreFull = errors.New("storage: key limit reached")
)

// Store is the origin-scoped key/value capability shared by the consent and
// locale components. Implementations can use any backend: in-memory,
// browser cookies, Redis, etc.
//
// Writes are atomic per key. Callers never perform read-modify-write
// sequences across keys, so no locking discipline is required between
// concurrent clients of the same origin.
type Store interface {
	// Get returns the value for key. ok is false if the key is absent.
	Get(key string) (value string, ok bool, err error)

	// Set stores value under key, replacing any previous value.
	Set(key, value string) error

	// Remove deletes key. Removing an absent key is not an error.
	Remove(key string) error

	// Keys lists every key currently visible in the store.
	Keys() ([]string, error)
}
