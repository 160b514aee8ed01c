package memory

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigStore_SeedsAreCopied(t *testing.T) {
	base := map[string]any{"chunker.chunk_size": 400, "ingest.workers": 2}
	override := map[string]any{"ingest.workers": 8}

	store := NewConfigStore(base, override)
	base["chunker.chunk_size"] = 1

	v, _ := store.Get("chunker.chunk_size")
	assert.Equal(t, 400, v)
	v, _ = store.Get("ingest.workers")
	assert.Equal(t, 8, v)
	assert.Equal(t, ":memory:", store.Path())
}

func TestConfigStore_SetGetUnset(t *testing.T) {
	store := NewConfigStore()

	require.NoError(t, store.Set("ingest.pattern", "*.md"))
	require.NoError(t, store.Set("ingest.pattern", "*.txt"))
	v, ok := store.Get("ingest.pattern")
	assert.True(t, ok)
	assert.Equal(t, "*.txt", v)

	require.NoError(t, store.Unset("ingest.pattern"))
	require.NoError(t, store.Unset("ingest.pattern"))
	_, ok = store.Get("ingest.pattern")
	assert.False(t, ok)
}

func TestConfigStore_KeysSorted(t *testing.T) {
	store := NewConfigStore()
	for _, k := range []string{"search.default_limit", "chunker.overlap_size", "corpus.data_dir"} {
		require.NoError(t, store.Set(k, 1))
	}
	assert.Equal(t, []string{"chunker.overlap_size", "corpus.data_dir", "search.default_limit"}, store.Keys())
}

func TestConfigStore_ConcurrentAccess(t *testing.T) {
	store := NewConfigStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("key.%d", i)
			_ = store.Set(key, i)
			store.Get(key)
			store.Keys()
		}(i)
	}
	wg.Wait()

	assert.Len(t, store.Keys(), 50)
}
