package cache

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRUGetSet(t *testing.T) {
	c := NewLRU(10)

	_, ok := c.Get("missing")
	assert.False(t, ok)

	c.Set("كتاب", "book")
	v, ok := c.Get("كتاب")
	require.True(t, ok)
	assert.Equal(t, "book", v)

	// Overwrite keeps a single entry.
	c.Set("كتاب", "ledger")
	v, ok = c.Get("كتاب")
	require.True(t, ok)
	assert.Equal(t, "ledger", v)
	assert.Equal(t, 1, c.Len())
}

func TestLRUEviction(t *testing.T) {
	const capacity = 8
	c := NewLRU(capacity)

	// Inserting capacity+1 distinct keys leaves exactly capacity entries and
	// evicts the first-inserted, never-touched key.
	for i := 0; i <= capacity; i++ {
		c.Set(fmt.Sprintf("word-%d", i), fmt.Sprintf("gloss-%d", i))
	}

	assert.Equal(t, capacity, c.Len())
	_, ok := c.Get("word-0")
	assert.False(t, ok, "oldest untouched entry should be evicted")
	_, ok = c.Get("word-1")
	assert.True(t, ok)
}

func TestLRURecency(t *testing.T) {
	const capacity = 5
	c := NewLRU(capacity)

	for i := 1; i <= capacity; i++ {
		c.Set(fmt.Sprintf("word-%d", i), "v")
	}

	// Touching key 1 protects it; the next insertion must evict key 2.
	_, ok := c.Get("word-1")
	require.True(t, ok)

	c.Set(fmt.Sprintf("word-%d", capacity+1), "v")

	_, ok = c.Get("word-1")
	assert.True(t, ok, "recently read entry must survive")
	_, ok = c.Get("word-2")
	assert.False(t, ok, "least recently used entry must be evicted")
}

func TestLRUDefaultCapacity(t *testing.T) {
	c := NewLRU(0)
	assert.Equal(t, DefaultCapacity, c.Cap())

	c = NewLRU(-3)
	assert.Equal(t, DefaultCapacity, c.Cap())
}
