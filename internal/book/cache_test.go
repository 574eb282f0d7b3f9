package book

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBlockCacheGetPut(t *testing.T) {
	bc := NewBlockCache(cacheShards * 2)
	require.Nil(t, bc.Get(8))

	b := &Block{Offset: 8}
	bc.Put(b)
	require.Same(t, b, bc.Get(8))

	s := bc.Stats()
	require.Equal(t, uint64(1), s.Hits)
	require.Equal(t, uint64(1), s.Misses)
	require.Equal(t, 1, s.Size)
	require.Equal(t, cacheShards*2, s.Capacity)
}

func TestBlockCacheEvictsOldestInShard(t *testing.T) {
	bc := NewBlockCache(cacheShards)   // one block per shard
	stride := uint64(cacheShards * 8) // same shard

	bc.Put(&Block{Offset: 0})
	bc.Put(&Block{Offset: stride})
	require.Nil(t, bc.Get(0))
	require.NotNil(t, bc.Get(stride))
}

func TestBlockCacheDisabled(t *testing.T) {
	bc := NewBlockCache(0)
	require.Nil(t, bc)
	require.Equal(t, CacheStats{}, bc.Stats())
}
