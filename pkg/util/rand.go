package util

import (
	"math/rand"
	"time"
)

var src = rand.New(rand.NewSource(time.Now().UnixNano()))

func RandIntn(min, max int) int {
	return src.Intn(max-min) + min
}

// RandKeys returns n distinct keys in random order
func RandKeys(n int) []uint64 {
	keys := make([]uint64, n)
	stride := uint64(RandIntn(1, 64))
	for i, j := range src.Perm(n) {
		keys[i] = uint64(j) * stride
	}
	return keys
}
