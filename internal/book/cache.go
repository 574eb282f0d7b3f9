package book

import (
	"sync"
	"sync/atomic"
)

const cacheShards = 64

// BlockCache is a sharded FIFO cache of decoded blocks keyed by offset.
// Blocks are immutable once decoded, so callers share the cached pointer.
type BlockCache struct {
	shards      [cacheShards]*blockCacheShard
	maxPerShard int
	hits        uint64
	misses      uint64
}

type blockCacheShard struct {
	mu    sync.RWMutex
	cache map[uint64]*Block
	order []uint64 // FIFO order for eviction
}

// NewBlockCache creates a cache holding roughly maxBlocks blocks.
// A non-positive size returns nil, which disables caching.
func NewBlockCache(maxBlocks int) *BlockCache {
	if maxBlocks <= 0 {
		return nil
	}
	maxPerShard := maxBlocks / cacheShards
	if maxPerShard < 1 {
		maxPerShard = 1
	}

	bc := &BlockCache{maxPerShard: maxPerShard}
	for i := range bc.shards {
		bc.shards[i] = &blockCacheShard{
			cache: make(map[uint64]*Block),
			order: make([]uint64, 0, maxPerShard),
		}
	}
	return bc
}

// Blocks start at multiples of 8, so drop those bits before sharding.
func (bc *BlockCache) shard(offset uint64) *blockCacheShard {
	return bc.shards[(offset>>3)%cacheShards]
}

// Get retrieves a block from the cache. Returns nil if not found.
func (bc *BlockCache) Get(offset uint64) *Block {
	shard := bc.shard(offset)

	shard.mu.RLock()
	b, ok := shard.cache[offset]
	shard.mu.RUnlock()

	if ok {
		atomic.AddUint64(&bc.hits, 1)
		return b
	}
	atomic.AddUint64(&bc.misses, 1)
	return nil
}

// Put adds a block to the cache, evicting the oldest entries of its shard.
func (bc *BlockCache) Put(b *Block) {
	shard := bc.shard(b.Offset)

	shard.mu.Lock()
	defer shard.mu.Unlock()

	if _, exists := shard.cache[b.Offset]; exists {
		shard.cache[b.Offset] = b
		return
	}

	for len(shard.cache) >= bc.maxPerShard && len(shard.order) > 0 {
		oldest := shard.order[0]
		shard.order = shard.order[1:]
		delete(shard.cache, oldest)
	}

	shard.cache[b.Offset] = b
	shard.order = append(shard.order, b.Offset)
}

// CacheStats is a snapshot of cache counters.
type CacheStats struct {
	Hits     uint64 `json:"hits"`
	Misses   uint64 `json:"misses"`
	Size     int    `json:"size"`
	Capacity int    `json:"capacity"`
}

// Stats returns cache statistics.
func (bc *BlockCache) Stats() CacheStats {
	if bc == nil {
		return CacheStats{}
	}
	s := CacheStats{
		Hits:     atomic.LoadUint64(&bc.hits),
		Misses:   atomic.LoadUint64(&bc.misses),
		Capacity: bc.maxPerShard * cacheShards,
	}
	for _, shard := range bc.shards {
		shard.mu.RLock()
		s.Size += len(shard.cache)
		shard.mu.RUnlock()
	}
	return s
}
