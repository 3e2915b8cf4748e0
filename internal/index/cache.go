package index

import (
	"crypto/sha256"

	"github.com/maypok86/otter"

	"github.com/vitiral/rag/internal/types"
)

// blockCache remembers extraction results by content hash, so files that
// revert to a previously seen state or share content skip extraction.
type blockCache struct {
	cache otter.Cache[contentKey, []types.CodeBlock]
}

// newBlockCache returns nil when size is not positive, which disables caching
func newBlockCache(size int) (*blockCache, error) {
	if size <= 0 {
		return nil, nil
	}
	cache, err := otter.MustBuilder[contentKey, []types.CodeBlock](size).Build()
	if err != nil {
		return nil, err
	}
	return &blockCache{cache: cache}, nil
}

type contentKey = [sha256.Size]byte

func keyOf(content string) contentKey {
	return sha256.Sum256([]byte(content))
}

// get returns the blocks cached for key. Cached blocks have the same offsets
// as a fresh extraction because the content is byte-identical.
func (c *blockCache) get(key contentKey) ([]types.CodeBlock, bool) {
	if c == nil {
		return nil, false
	}
	return c.cache.Get(key)
}

func (c *blockCache) set(key contentKey, blocks []types.CodeBlock) {
	if c == nil {
		return
	}
	c.cache.Set(key, blocks)
}

func (c *blockCache) close() {
	if c == nil {
		return
	}
	c.cache.Close()
}
