package hash

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/scottcagno/chmap/pkg/util"
)

func TestIdentity(t *testing.T) {
	for _, k := range []Key{0, 1, 128, 1024, 1<<64 - 1} {
		util.AssertExpected(t, k, Identity(k))
	}
}

func TestHashFuncsDeterministic(t *testing.T) {
	for _, name := range Names() {
		fn, err := ByName(name)
		util.AssertNoError(t, err)
		for k := Key(0); k < 64; k++ {
			util.AssertExpected(t, fn(k), fn(k))
		}
	}
}

func TestHashFuncsSpread(t *testing.T) {
	// every hash except the placeholder should spread
	// sequential keys over distinct values
	for _, name := range []string{"murmur3", "xxhash", "sha256", "blake2b"} {
		fn, err := ByName(name)
		util.AssertNoError(t, err)
		set := make(map[Hash]Key, 1000)
		var coll int
		for k := Key(0); k < 1000; k++ {
			h := fn(k)
			if _, ok := set[h]; ok {
				coll++
			}
			set[h] = k
		}
		util.AssertExpected(t, 0, coll)
	}
}

func TestByNameUnknown(t *testing.T) {
	fn, err := ByName("fnv")
	util.AssertNil(t, fn)
	util.AssertExpected(t, ErrUnknownHash, errors.Cause(err))
}

func TestNames(t *testing.T) {
	util.AssertExpected(t, []string{"blake2b", "identity", "murmur3", "sha256", "xxhash"}, Names())
}

func TestStringAndBytes(t *testing.T) {
	util.AssertExpected(t, String("reproducibility"), Bytes([]byte("reproducibility")))
	util.AssertTrue(t, String("eruct") != String("acids"))
}

func BenchmarkHashFuncs(b *testing.B) {
	for _, name := range Names() {
		fn, _ := ByName(name)
		b.Run(name, func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				_ = fn(Key(i))
			}
		})
	}
}
