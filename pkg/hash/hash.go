package hash

import (
	"encoding/binary"
	"sort"

	"github.com/cespare/xxhash/v2"
	"github.com/minio/sha256-simd"
	"github.com/pkg/errors"
	"github.com/spaolacci/murmur3"
	"golang.org/x/crypto/blake2b"
)

// Key is the default key type of the chained hashmap
type Key = uint64

// Hash is the value a HashFunc maps a key to
type Hash = uint64

// HashFunc is a type definition for what a hash function should look like.
// It must be deterministic; it does not need to be uniform or injective.
type HashFunc[K comparable] func(key K) Hash

// ErrUnknownHash is returned by ByName for a name it does not know
var ErrUnknownHash = errors.New("hash: unknown hash function")

// Identity returns the key as its own hash. It is the placeholder hash of
// the default map and produces maximal collisions for keys sharing low bits.
func Identity(key Key) Hash {
	return key
}

// keyBytes encodes a key in little endian order
func keyBytes(key Key) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], key)
	return b[:]
}

// Murmur3 hashes the key using 64-bit murmur3
func Murmur3(key Key) Hash {
	return murmur3.Sum64(keyBytes(key))
}

// XXHash hashes the key using xxhash64
func XXHash(key Key) Hash {
	return xxhash.Sum64(keyBytes(key))
}

// SHA256 returns the first eight bytes of the sha256 digest of the key
func SHA256(key Key) Hash {
	sum := sha256.Sum256(keyBytes(key))
	return binary.LittleEndian.Uint64(sum[:8])
}

// Blake2b returns the first eight bytes of the blake2b-256 digest of the key
func Blake2b(key Key) Hash {
	sum := blake2b.Sum256(keyBytes(key))
	return binary.LittleEndian.Uint64(sum[:8])
}

// String hashes a string key
func String(s string) Hash {
	return xxhash.Sum64String(s)
}

// Bytes hashes a byte slice
func Bytes(b []byte) Hash {
	return xxhash.Sum64(b)
}

var registry = map[string]HashFunc[Key]{
	"identity": Identity,
	"murmur3":  Murmur3,
	"xxhash":   XXHash,
	"sha256":   SHA256,
	"blake2b":  Blake2b,
}

// ByName returns the registered key hash function with the provided name
func ByName(name string) (HashFunc[Key], error) {
	fn, ok := registry[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownHash, "%q", name)
	}
	return fn, nil
}

// Names returns the sorted names of all registered key hash functions
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
