package deck

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_UpsertReturnsSortedSnapshot(t *testing.T) {
	store := NewStore()

	store.Upsert(Slide{Index: 3, Title: "Three"})
	store.Upsert(Slide{Index: 1, Title: "One"})
	snapshot := store.Upsert(Slide{Index: 2, Title: "Two"})

	require.Len(t, snapshot, 3)
	assert.Equal(t, "One", snapshot[0].Title)
	assert.Equal(t, "Two", snapshot[1].Title)
	assert.Equal(t, "Three", snapshot[2].Title)
}

func TestStore_UpsertReplacesSameIndex(t *testing.T) {
	store := NewStore()

	store.Upsert(Slide{Index: 1, Title: "draft"})
	snapshot := store.Upsert(Slide{Index: 1, Title: "final"})

	require.Len(t, snapshot, 1)
	assert.Equal(t, "final", snapshot[0].Title)
	assert.Equal(t, 1, store.Len())
}

func TestStore_UpsertIsIdempotent(t *testing.T) {
	store := NewStore()
	slide := Slide{Index: 2, Title: "Same", Body: "Same body."}

	first := store.Upsert(slide)
	second := store.Upsert(slide)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, store.Len())
}

func TestStore_UpsertIgnoresNonPositiveIndex(t *testing.T) {
	store := NewStore()

	snapshot := store.Upsert(Slide{Index: 0, Title: "zero"})
	assert.Empty(t, snapshot)

	snapshot = store.Upsert(Slide{Index: -1, Title: "negative"})
	assert.Empty(t, snapshot)
	assert.Equal(t, 0, store.Len())
}

func TestStore_SnapshotIsACopy(t *testing.T) {
	store := NewStore()
	store.Upsert(Slide{Index: 1, Title: "original"})

	snapshot := store.Snapshot()
	snapshot[0].Title = "mutated"

	fresh := store.Snapshot()
	assert.Equal(t, "original", fresh[0].Title)
}

func TestStore_ConcurrentUpsertsNeverDrop(t *testing.T) {
	store := NewStore()

	const n = 50
	var wg sync.WaitGroup
	for i := 1; i <= n; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			store.Upsert(Slide{Index: idx, Title: "t"})
		}(i)
	}
	wg.Wait()

	snapshot := store.Snapshot()
	require.Len(t, snapshot, n)
	for i, s := range snapshot {
		assert.Equal(t, i+1, s.Index)
	}
}
