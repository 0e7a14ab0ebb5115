// Package store defines the key-value contract the directory core is built
// against, plus the in-memory and bbolt-backed implementations.
// Collections are flat namespaces of opaque values; every component accesses
// them through this interface and holds no cross-call state of its own.
package store

import (
	"context"
	"errors"
)

const (
	// CollectionServers holds domain.ServerRecord values keyed by domain.
	CollectionServers = "servers"

	// CollectionChallenges holds domain.VerificationChallenge values keyed by challenge ID.
	CollectionChallenges = "challenges"
)

// ErrKeyNotFound is returned by Get when no value exists for the key.
var ErrKeyNotFound = errors.New("key not found")

// UpdateFunc transforms the current value of a key inside an atomic update.
// current is nil when the key does not exist. The returned bytes replace the
// stored value; returning an error aborts the update without writing.
type UpdateFunc func(current []byte) ([]byte, error)

// Store is the record store contract. Implementations must provide
// read-your-writes consistency per key, and Update must apply the
// read-modify-write atomically with respect to other Update and Set calls
// on the same key.
type Store interface {
	// Get returns the value for key, or ErrKeyNotFound.
	Get(ctx context.Context, collection, key string) ([]byte, error)

	// Set writes the value for key, creating or replacing it.
	Set(ctx context.Context, collection, key string, value []byte) error

	// GetAll returns a snapshot of every key/value pair in the collection.
	GetAll(ctx context.Context, collection string) (map[string][]byte, error)

	// Delete removes the key. Deleting an absent key is not an error.
	Delete(ctx context.Context, collection, key string) error

	// Update applies fn to the current value of key atomically.
	Update(ctx context.Context, collection, key string, fn UpdateFunc) error
}
