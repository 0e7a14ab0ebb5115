package store

import (
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// openStores returns one instance of each Store implementation, keyed by name.
func openStores(t *testing.T) map[string]Store {
	t.Helper()

	bolt, err := OpenBolt(filepath.Join(t.TempDir(), "store.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, bolt.Close())
	})

	return map[string]Store{
		"memory": NewMemory(),
		"bolt":   bolt,
	}
}

func TestStoreGetSet(t *testing.T) {
	t.Parallel()

	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := t.Context()

			_, err := s.Get(ctx, CollectionServers, "example.com")
			require.ErrorIs(t, err, ErrKeyNotFound)

			require.NoError(t, s.Set(ctx, CollectionServers, "example.com", []byte("v1")))

			got, err := s.Get(ctx, CollectionServers, "example.com")
			require.NoError(t, err)
			require.Equal(t, []byte("v1"), got)

			require.NoError(t, s.Set(ctx, CollectionServers, "example.com", []byte("v2")))
			got, err = s.Get(ctx, CollectionServers, "example.com")
			require.NoError(t, err)
			require.Equal(t, []byte("v2"), got)
		})
	}
}

func TestStoreCollectionsAreIsolated(t *testing.T) {
	t.Parallel()

	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := t.Context()

			require.NoError(t, s.Set(ctx, CollectionServers, "key", []byte("server")))

			_, err := s.Get(ctx, CollectionChallenges, "key")
			require.ErrorIs(t, err, ErrKeyNotFound)
		})
	}
}

func TestStoreGetAll(t *testing.T) {
	t.Parallel()

	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := t.Context()

			require.NoError(t, s.Set(ctx, CollectionServers, "a.com", []byte("a")))
			require.NoError(t, s.Set(ctx, CollectionServers, "b.com", []byte("b")))

			snapshot, err := s.GetAll(ctx, CollectionServers)
			require.NoError(t, err)
			require.Equal(t, map[string][]byte{
				"a.com": []byte("a"),
				"b.com": []byte("b"),
			}, snapshot)

			// Mutating the snapshot must not affect the store.
			snapshot["a.com"][0] = 'z'
			got, err := s.Get(ctx, CollectionServers, "a.com")
			require.NoError(t, err)
			require.Equal(t, []byte("a"), got)
		})
	}
}

func TestStoreDelete(t *testing.T) {
	t.Parallel()

	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := t.Context()

			require.NoError(t, s.Set(ctx, CollectionServers, "a.com", []byte("a")))
			require.NoError(t, s.Delete(ctx, CollectionServers, "a.com"))

			_, err := s.Get(ctx, CollectionServers, "a.com")
			require.ErrorIs(t, err, ErrKeyNotFound)

			// Deleting an absent key is not an error.
			require.NoError(t, s.Delete(ctx, CollectionServers, "a.com"))
		})
	}
}

func TestStoreUpdate(t *testing.T) {
	t.Parallel()

	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := t.Context()

			// Update on an absent key sees nil.
			err := s.Update(ctx, CollectionServers, "a.com", func(current []byte) ([]byte, error) {
				require.Nil(t, current)
				return []byte("created"), nil
			})
			require.NoError(t, err)

			got, err := s.Get(ctx, CollectionServers, "a.com")
			require.NoError(t, err)
			require.Equal(t, []byte("created"), got)

			// An erroring update writes nothing.
			wantErr := fmt.Errorf("reject")
			err = s.Update(ctx, CollectionServers, "a.com", func(current []byte) ([]byte, error) {
				require.Equal(t, []byte("created"), current)
				return nil, wantErr
			})
			require.ErrorIs(t, err, wantErr)

			got, err = s.Get(ctx, CollectionServers, "a.com")
			require.NoError(t, err)
			require.Equal(t, []byte("created"), got)
		})
	}
}

func TestStoreUpdateSerializes(t *testing.T) {
	t.Parallel()

	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := t.Context()
			require.NoError(t, s.Set(ctx, CollectionServers, "counter", []byte{0}))

			const workers = 16
			var wg sync.WaitGroup
			wg.Add(workers)
			for range workers {
				go func() {
					defer wg.Done()
					_ = s.Update(ctx, CollectionServers, "counter", func(current []byte) ([]byte, error) {
						return []byte{current[0] + 1}, nil
					})
				}()
			}
			wg.Wait()

			got, err := s.Get(ctx, CollectionServers, "counter")
			require.NoError(t, err)
			require.Equal(t, byte(workers), got[0], "lost update detected")
		})
	}
}
