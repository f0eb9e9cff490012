package chained

import (
	"math"
	"math/bits"
	"sync"

	"github.com/pkg/errors"
	"github.com/scottcagno/chmap"
	"github.com/scottcagno/chmap/pkg/hash"
	log "github.com/sirupsen/logrus"
)

// maxShards bounds the shard count of a ShardedHashMap
const maxShards = 1 << 16

type shard[K comparable, V any] struct {
	mu sync.RWMutex
	hm *HashMap[K, V] // chained
}

// ShardedHashMap partitions keys over independent HashMaps, each one
// guarded by its own lock. It is safe for concurrent use.
type ShardedHashMap[K comparable, V any] struct {
	shift  uint
	hash   hash.HashFunc[K]
	shards []*shard[K, V]
}

// NewShardedHashMap returns a new ShardedHashMap with at least count
// shards. Each shard is a HashMap built from conf, with conf.Capacity
// spread over the shards.
func NewShardedHashMap[K comparable, V any](count uint, conf *Config[K]) (*ShardedHashMap[K, V], error) {
	conf, err := checkConfig(conf)
	if err != nil {
		return nil, err
	}
	if count > maxShards {
		return nil, errors.Wrapf(ErrInvalidShardCount, "%d exceeds %d shards", count, maxShards)
	}
	shCount := alignShardCount(count)
	hmSize := alignBucketCount(conf.Capacity / shCount)
	shm := &ShardedHashMap[K, V]{
		shift:  uint(64 - bits.TrailingZeros64(shCount)),
		hash:   conf.Hash,
		shards: make([]*shard[K, V], shCount),
	}
	conf.Logger.WithFields(log.Fields{
		"shards": shCount,
		"slots":  hmSize,
	}).Info("chained: new sharded hashmap")
	for i := range shm.shards {
		shm.shards[i] = &shard[K, V]{
			hm: newHashMap[K, V](hmSize, conf.LoadNumerator, conf.LoadDenominator, conf.Hash, conf.Logger),
		}
	}
	return shm, nil
}

func alignShardCount(size uint) uint64 {
	count := uint64(1)
	for count < uint64(size) {
		count *= 2
	}
	return count
}

// getShard picks a shard from the top bits of the scrambled hash, so
// that the low bits each shard uses for its slots stay independent of
// the shard choice even under the identity hash
func (s *ShardedHashMap[K, V]) getShard(key K) *shard[K, V] {
	return s.shards[(s.hash(key)*0x9E3779B97F4A7C15)>>s.shift]
}

func (s *ShardedHashMap[K, V]) Put(key K, val V) {
	sh := s.getShard(key)
	sh.mu.Lock()
	sh.hm.Put(key, val)
	sh.mu.Unlock()
}

// Get panics like HashMap.Get when the key is absent. The shard lock is
// released before the panic propagates.
func (s *ShardedHashMap[K, V]) Get(key K) V {
	sh := s.getShard(key)
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	return sh.hm.Get(key)
}

func (s *ShardedHashMap[K, V]) Lookup(key K) (V, bool) {
	sh := s.getShard(key)
	sh.mu.RLock()
	val, ok := sh.hm.Lookup(key)
	sh.mu.RUnlock()
	return val, ok
}

// Update calls fn with a pointer to the value for key while holding the
// shard lock. It returns false, without calling fn, if the key is absent.
func (s *ShardedHashMap[K, V]) Update(key K, fn func(val *V)) bool {
	sh := s.getShard(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	ptr, ok := sh.hm.LookupMut(key)
	if ok {
		fn(ptr)
	}
	return ok
}

func (s *ShardedHashMap[K, V]) Del(key K) (V, bool) {
	sh := s.getShard(key)
	sh.mu.Lock()
	val, ok := sh.hm.Del(key)
	sh.mu.Unlock()
	return val, ok
}

// Clear empties every shard. It is not atomic with respect to
// concurrent writers on other shards.
func (s *ShardedHashMap[K, V]) Clear() {
	for _, sh := range s.shards {
		sh.mu.Lock()
		sh.hm.Clear()
		sh.mu.Unlock()
	}
}

func (s *ShardedHashMap[K, V]) Len() int {
	var length int
	for _, sh := range s.shards {
		sh.mu.RLock()
		length += sh.hm.Len()
		sh.mu.RUnlock()
	}
	return length
}

// Stats sums the stats of every shard
func (s *ShardedHashMap[K, V]) Stats() chmap.Stats {
	st := chmap.Stats{Shards: len(s.shards)}
	for _, sh := range s.shards {
		sh.mu.RLock()
		hst := sh.hm.Stats()
		sh.mu.RUnlock()
		st.Len += hst.Len
		st.Slots += hst.Slots
		st.UsedSlots += hst.UsedSlots
		if hst.MaxLoad > math.MaxInt-st.MaxLoad {
			st.MaxLoad = math.MaxInt
		} else {
			st.MaxLoad += hst.MaxLoad
		}
		if hst.LongestChain > st.LongestChain {
			st.LongestChain = hst.LongestChain
		}
	}
	return st
}
