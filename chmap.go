// Package chmap holds the interfaces shared by the hash tables of this
// module. The implementations live under pkg/hashmap.
package chmap

// Table is the operation set every hash table in this module provides
type Table[K comparable, V any] interface {
	Put(key K, val V)
	Get(key K) V
	Lookup(key K) (V, bool)
	Del(key K) (V, bool)
	Clear()
	Len() int
	Stats() Stats
}

// Stats describes the shape of a Table
type Stats struct {
	Shards       int // 1 for an unsharded table
	Len          int // live entries
	Slots        int // bucket count
	UsedSlots    int // buckets holding at least one entry
	MaxLoad      int // entry count at which the (next) resize happens
	LongestChain int
}

// PercentFull returns the load factor the stats were taken at
func (s Stats) PercentFull() float64 {
	if s.Slots == 0 {
		return 0
	}
	return float64(s.Len) / float64(s.Slots)
}
