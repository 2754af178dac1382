// Package storetest holds the behaviour every persistence.ITreeStore backend
// must share. Backend test files call RunStoreTests with a factory.
package storetest

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Layr-Labs/sorted-merkle-go/pkg/merkle"
	"github.com/Layr-Labs/sorted-merkle-go/pkg/persistence"
)

// Factory returns a fresh, empty store for a single sub test.
type Factory func(t *testing.T) persistence.ITreeStore

// NewRecord builds a tree of n leaves and wraps it in a record.
func NewRecord(t *testing.T, name string, n int) *persistence.TreeRecord {
	t.Helper()
	leaves := make([][]byte, n)
	for i := range leaves {
		leaves[i] = []byte(fmt.Sprintf("%s-%d", name, i))
	}
	tree, err := merkle.Build(leaves)
	require.NoError(t, err)
	return persistence.NewTreeRecord(name, tree)
}

// RunStoreTests exercises the ITreeStore contract against newStore.
func RunStoreTests(t *testing.T, newStore Factory) {
	t.Run("SaveAndLoad", func(t *testing.T) {
		store := newStore(t)
		defer func() { _ = store.Close() }()

		record := NewRecord(t, "save-load", 7)
		require.NoError(t, store.SaveTree(record))

		loaded, err := store.LoadTree(record.ID)
		require.NoError(t, err)
		require.NotNil(t, loaded)
		assert.Equal(t, record, loaded)

		tree, err := loaded.Rehydrate()
		require.NoError(t, err)
		assert.Equal(t, record.Root, tree.Root())
	})

	t.Run("LoadNotFound", func(t *testing.T) {
		store := newStore(t)
		defer func() { _ = store.Close() }()

		loaded, err := store.LoadTree("00000000-0000-0000-0000-000000000000")
		require.NoError(t, err)
		assert.Nil(t, loaded)
	})

	t.Run("SaveNil", func(t *testing.T) {
		store := newStore(t)
		defer func() { _ = store.Close() }()

		err := store.SaveTree(nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "nil TreeRecord")
	})

	t.Run("SaveInvalid", func(t *testing.T) {
		store := newStore(t)
		defer func() { _ = store.Close() }()

		record := NewRecord(t, "invalid", 3)
		record.LeafCount = 10
		assert.Error(t, store.SaveTree(record))
	})

	t.Run("Overwrite", func(t *testing.T) {
		store := newStore(t)
		defer func() { _ = store.Close() }()

		record := NewRecord(t, "first", 3)
		require.NoError(t, store.SaveTree(record))

		replacement := NewRecord(t, "second", 5)
		replacement.ID = record.ID
		require.NoError(t, store.SaveTree(replacement))

		loaded, err := store.LoadTree(record.ID)
		require.NoError(t, err)
		require.NotNil(t, loaded)
		assert.Equal(t, "second", loaded.Name)
		assert.Equal(t, 5, loaded.LeafCount)

		all, err := store.ListTrees()
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("ListSorted", func(t *testing.T) {
		store := newStore(t)
		defer func() { _ = store.Close() }()

		empty, err := store.ListTrees()
		require.NoError(t, err)
		assert.NotNil(t, empty)
		assert.Len(t, empty, 0)

		late := NewRecord(t, "late", 2)
		late.CreatedAt = 300
		early := NewRecord(t, "early", 2)
		early.CreatedAt = 100
		middle := NewRecord(t, "middle", 2)
		middle.CreatedAt = 200

		for _, r := range []*persistence.TreeRecord{late, early, middle} {
			require.NoError(t, store.SaveTree(r))
		}

		all, err := store.ListTrees()
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, early.ID, all[0].ID)
		assert.Equal(t, middle.ID, all[1].ID)
		assert.Equal(t, late.ID, all[2].ID)
	})

	t.Run("Delete", func(t *testing.T) {
		store := newStore(t)
		defer func() { _ = store.Close() }()

		record := NewRecord(t, "delete", 4)
		require.NoError(t, store.SaveTree(record))
		require.NoError(t, store.DeleteTree(record.ID))

		loaded, err := store.LoadTree(record.ID)
		require.NoError(t, err)
		assert.Nil(t, loaded)

		// Idempotent
		require.NoError(t, store.DeleteTree(record.ID))

		all, err := store.ListTrees()
		require.NoError(t, err)
		assert.Len(t, all, 0)
	})

	t.Run("NoExternalMutation", func(t *testing.T) {
		store := newStore(t)
		defer func() { _ = store.Close() }()

		record := NewRecord(t, "mutation", 3)
		original := record.Clone()
		require.NoError(t, store.SaveTree(record))

		record.LeafDigests[0][0] ^= 0xff
		record.Name = "changed"

		loaded, err := store.LoadTree(original.ID)
		require.NoError(t, err)
		require.NotNil(t, loaded)
		assert.Equal(t, original, loaded)

		loaded.LeafDigests[1][0] ^= 0xff
		again, err := store.LoadTree(original.ID)
		require.NoError(t, err)
		assert.Equal(t, original, again)
	})

	t.Run("Concurrent", func(t *testing.T) {
		store := newStore(t)
		defer func() { _ = store.Close() }()

		const workers = 8
		var wg sync.WaitGroup
		records := make([]*persistence.TreeRecord, workers)
		for i := range records {
			records[i] = NewRecord(t, fmt.Sprintf("worker-%d", i), i+1)
		}

		errs := make(chan error, workers*2)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(record *persistence.TreeRecord) {
				defer wg.Done()
				if err := store.SaveTree(record); err != nil {
					errs <- err
					return
				}
				if _, err := store.LoadTree(record.ID); err != nil {
					errs <- err
				}
			}(records[i])
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			assert.NoError(t, err)
		}

		all, err := store.ListTrees()
		require.NoError(t, err)
		assert.Len(t, all, workers)
	})

	t.Run("Close", func(t *testing.T) {
		store := newStore(t)

		require.NoError(t, store.HealthCheck())
		require.NoError(t, store.Close())
		require.NoError(t, store.Close())

		assert.Error(t, store.HealthCheck())
		assert.Error(t, store.SaveTree(NewRecord(t, "closed", 2)))
		_, err := store.LoadTree("any")
		assert.Error(t, err)
		_, err = store.ListTrees()
		assert.Error(t, err)
		assert.Error(t, store.DeleteTree("any"))
	})
}
