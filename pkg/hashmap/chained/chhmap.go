package chained

import (
	"math"
	"math/bits"

	"github.com/pkg/errors"
	"github.com/scottcagno/chmap"
	"github.com/scottcagno/chmap/pkg/hash"
	log "github.com/sirupsen/logrus"
)

const (
	defaultMapSize         = 32
	defaultLoadNumerator   = 4 // default load factor is 4/5
	defaultLoadDenominator = 5
)

// maxSlots is the largest slot count that may still be doubled. Once
// a table is past it, resize is skipped and the table simply runs at a
// higher load factor. A table at exactly maxSlots still doubles once,
// so slot counts may end up near MaxUint32.
var maxSlots uint64 = math.MaxUint32 / 2

var (
	// ErrKeyNotFound is the panic value (wrapped) of Get and GetMut when
	// they are called with a key that is not in the map
	ErrKeyNotFound = errors.New("chained: key not found")

	ErrInvalidLoadFactor = errors.New("chained: invalid load factor")
	ErrInvalidCapacity   = errors.New("chained: invalid capacity")
	ErrInvalidShardCount = errors.New("chained: invalid shard count")
	ErrNoHashFunc        = errors.New("chained: no hash function for key type")
)

// entry is a key value pair that is found in each bucket
type entry[K comparable, V any] struct {
	key K
	val V
}

// entryNode is a node in part of our linked list
type entryNode[K comparable, V any] struct {
	entry[K, V]
	next *entryNode[K, V]
}

// bucket represents a single slot in the HashMap table. It owns the
// chain of entries hashing to that slot, oldest entry first.
type bucket[K comparable, V any] struct {
	head *entryNode[K, V]
}

// insert updates the value of key if it is already in the chain and
// returns false, otherwise it appends a new entry at the tail and
// returns true
func (b *bucket[K, V]) insert(key K, val V) bool {
	link := &b.head
	for *link != nil {
		if (*link).key == key {
			(*link).val = val
			return false
		}
		link = &(*link).next
	}
	*link = &entryNode[K, V]{
		entry: entry[K, V]{
			key: key,
			val: val,
		},
	}
	return true
}

// search returns a pointer to the value stored for key
func (b *bucket[K, V]) search(key K) (*V, bool) {
	for current := b.head; current != nil; current = current.next {
		if current.key == key {
			return &current.val, true
		}
	}
	return nil, false
}

// delete unlinks the entry for key and returns its value
func (b *bucket[K, V]) delete(key K) (V, bool) {
	for link := &b.head; *link != nil; link = &(*link).next {
		if (*link).key == key {
			val := (*link).val
			*link = (*link).next
			return val, true
		}
	}
	return *new(V), false
}

func (b *bucket[K, V]) scan(it func(key K, val V) bool) {
	for current := b.head; current != nil; current = current.next {
		if !it(current.key, current.val) {
			return
		}
	}
}

func (b *bucket[K, V]) len() int {
	var n int
	for current := b.head; current != nil; current = current.next {
		n++
	}
	return n
}

// HashMap represents a hashtable using separate chaining. It is not
// safe for concurrent use; see ShardedHashMap.
type HashMap[K comparable, V any] struct {
	hash    hash.HashFunc[K]
	logger  log.FieldLogger
	keys    uint64 // live entries
	loadNum uint64
	loadDen uint64
	maxLoad uint64 // resize once keys reaches this
	skipped bool   // ceiling skip already logged
	buckets []bucket[K, V]
}

// NewHashMap returns an empty HashMap keyed by hash.Key, with 32 slots,
// a load factor of 4/5 and the identity hash
func NewHashMap[V any]() *HashMap[hash.Key, V] {
	return NewHashMapWithHash[hash.Key, V](hash.Identity)
}

// NewHashMapWithHash returns an empty HashMap with the default size and
// load factor, hashing keys with fn
func NewHashMapWithHash[K comparable, V any](fn hash.HashFunc[K]) *HashMap[K, V] {
	return newHashMap[K, V](defaultMapSize, defaultLoadNumerator, defaultLoadDenominator, fn, log.StandardLogger())
}

// Open returns an empty HashMap built from conf. A nil conf yields the
// defaults.
func Open[K comparable, V any](conf *Config[K]) (*HashMap[K, V], error) {
	conf, err := checkConfig(conf)
	if err != nil {
		return nil, err
	}
	return newHashMap[K, V](conf.Capacity, conf.LoadNumerator, conf.LoadDenominator, conf.Hash, conf.Logger), nil
}

// newHashMap is the internal constructor. It trusts its arguments.
func newHashMap[K comparable, V any](capacity, num, den uint64, fn hash.HashFunc[K], logger log.FieldLogger) *HashMap[K, V] {
	return &HashMap[K, V]{
		hash:    fn,
		logger:  logger,
		keys:    0,
		loadNum: num,
		loadDen: den,
		maxLoad: loadThreshold(capacity, num, den),
		buckets: make([]bucket[K, V], capacity),
	}
}

// loadThreshold returns floor(slots*num/den) without overflowing the
// product, saturating at math.MaxUint64
func loadThreshold(slots, num, den uint64) uint64 {
	hi, lo := bits.Mul64(slots, num)
	if hi >= den {
		return math.MaxUint64
	}
	quo, _ := bits.Div64(hi, lo, den)
	return quo
}

// index returns the slot key belongs to
func (m *HashMap[K, V]) index(key K) uint64 {
	return m.hash(key) % uint64(len(m.buckets))
}

// Put inserts the key value pair, replacing the value if the key is
// already present. The map doubles in size once the number of entries
// reaches its max load.
func (m *HashMap[K, V]) Put(key K, val V) {
	m.insert(key, val)
	if m.keys >= m.maxLoad {
		m.tryResize()
	}
}

// insert is Put without the resize check
func (m *HashMap[K, V]) insert(key K, val V) {
	if m.buckets[m.index(key)].insert(key, val) {
		m.keys++
	}
}

// tryResize doubles the slot count and moves every entry into the new
// slots, unless the table is already past maxSlots
func (m *HashMap[K, V]) tryResize() {
	oldSlots := uint64(len(m.buckets))
	if oldSlots > maxSlots {
		if !m.skipped {
			m.skipped = true
			m.logger.WithFields(log.Fields{
				"slots": oldSlots,
				"keys":  m.keys,
			}).Debug("chained: slot ceiling reached, skipping resize")
		}
		return
	}
	newHM := newHashMap[K, V](oldSlots*2, m.loadNum, m.loadDen, m.hash, m.logger)
	for i := range m.buckets {
		// detach the chain so the old table never holds an entry twice
		chain := m.buckets[i]
		m.buckets[i] = bucket[K, V]{}
		chain.scan(func(key K, val V) bool {
			newHM.insert(key, val)
			return true
		})
	}
	m.buckets = newHM.buckets
	m.maxLoad = newHM.maxLoad
	m.logger.WithFields(log.Fields{
		"old_slots": oldSlots,
		"new_slots": len(m.buckets),
		"keys":      m.keys,
	}).Debug("chained: resized")
}

// Get returns the value for key. It panics with an error wrapping
// ErrKeyNotFound if the key is absent; use Lookup when absence is
// expected.
func (m *HashMap[K, V]) Get(key K) V {
	return *m.GetMut(key)
}

// GetMut returns a pointer to the value for key. The pointer is valid
// until the next call to Put, Del or Clear. Like Get, it panics if the
// key is absent.
func (m *HashMap[K, V]) GetMut(key K) *V {
	ptr, ok := m.LookupMut(key)
	if !ok {
		panic(errors.Wrapf(ErrKeyNotFound, "key %v", key))
	}
	return ptr
}

// Lookup returns the value for key, or false if none could be found
func (m *HashMap[K, V]) Lookup(key K) (V, bool) {
	ptr, ok := m.LookupMut(key)
	if !ok {
		return *new(V), false
	}
	return *ptr, true
}

// LookupMut returns a pointer to the value for key, or false if none
// could be found
func (m *HashMap[K, V]) LookupMut(key K) (*V, bool) {
	return m.buckets[m.index(key)].search(key)
}

// Del removes the entry for key and returns its value, or false if the
// key was absent
func (m *HashMap[K, V]) Del(key K) (V, bool) {
	val, ok := m.buckets[m.index(key)].delete(key)
	if ok {
		m.keys--
	}
	return val, ok
}

// Clear removes every entry. The slot count and load factor are kept.
func (m *HashMap[K, V]) Clear() {
	for i := range m.buckets {
		m.buckets[i] = bucket[K, V]{}
	}
	m.keys = 0
}

// Len returns the number of entries currently in the HashMap
func (m *HashMap[K, V]) Len() int {
	return int(m.keys)
}

// Cap returns the number of slots
func (m *HashMap[K, V]) Cap() int {
	return len(m.buckets)
}

// MaxLoad returns the entry count that triggers the next resize,
// capped at math.MaxInt
func (m *HashMap[K, V]) MaxLoad() int {
	if m.maxLoad > math.MaxInt {
		return math.MaxInt
	}
	return int(m.maxLoad)
}

// PercentFull returns the current load factor of the HashMap
func (m *HashMap[K, V]) PercentFull() float64 {
	return float64(m.keys) / float64(len(m.buckets))
}

// Stats reports the shape of the table
func (m *HashMap[K, V]) Stats() chmap.Stats {
	st := chmap.Stats{
		Shards:  1,
		Len:     m.Len(),
		Slots:   m.Cap(),
		MaxLoad: m.MaxLoad(),
	}
	for i := range m.buckets {
		n := m.buckets[i].len()
		if n > 0 {
			st.UsedSlots++
		}
		if n > st.LongestChain {
			st.LongestChain = n
		}
	}
	return st
}
