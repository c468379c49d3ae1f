package embedding

import "sync"

// EmbeddingCache memoizes embeddings keyed by the exact input text. Entries
// live in two generations: inserts and promotions go to the young one, and
// when it fills the old generation is dropped wholesale. Texts used at least
// once between rotations survive; the rest age out without per-entry
// bookkeeping. A capacity of zero or less disables caching.
type EmbeddingCache struct {
	mu       sync.Mutex
	capacity int
	young    map[string][]float32
	old      map[string][]float32
}

// NewEmbeddingCache returns a cache holding up to capacity entries per
// generation, at most twice that overall.
func NewEmbeddingCache(capacity int) *EmbeddingCache {
	return &EmbeddingCache{
		capacity: capacity,
		young:    make(map[string][]float32),
		old:      make(map[string][]float32),
	}
}

// Get returns the cached embedding for text. Hits in the old generation are
// promoted so they survive the next rotation.
func (c *EmbeddingCache) Get(text string) ([]float32, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if vec, ok := c.young[text]; ok {
		return vec, true
	}
	if vec, ok := c.old[text]; ok {
		c.insert(text, vec)
		return vec, true
	}
	return nil, false
}

// Set stores the embedding for text.
func (c *EmbeddingCache) Set(text string, vec []float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.insert(text, vec)
}

// insert adds to the young generation, rotating first when it is full.
// Callers must hold mu.
func (c *EmbeddingCache) insert(text string, vec []float32) {
	if c.capacity <= 0 {
		return
	}
	if len(c.young) >= c.capacity {
		if _, ok := c.young[text]; !ok {
			c.old = c.young
			c.young = make(map[string][]float32, c.capacity)
		}
	}
	c.young[text] = vec
}
