package chained

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/scottcagno/chmap/pkg/hash"
	log "github.com/sirupsen/logrus"
)

// Config holds configuration settings for a HashMap instance
type Config[K comparable] struct {
	Capacity        uint64           // initial slot count, rounded up to a power of two
	LoadNumerator   uint64           // load factor numerator
	LoadDenominator uint64           // load factor denominator
	Hash            hash.HashFunc[K] // key hash function
	Logger          log.FieldLogger  // logger
}

func (conf *Config[K]) String() string {
	var sb strings.Builder
	sb.WriteString("Capacity: ")
	sb.WriteString(strconv.FormatUint(conf.Capacity, 10))
	sb.WriteString("\n")
	sb.WriteString("LoadFactor: ")
	sb.WriteString(strconv.FormatUint(conf.LoadNumerator, 10))
	sb.WriteString("/")
	sb.WriteString(strconv.FormatUint(conf.LoadDenominator, 10))
	sb.WriteString("\n")
	sb.WriteString("Hash: ")
	if conf.Hash == nil {
		sb.WriteString("unset")
	} else {
		sb.WriteString("set")
	}
	return sb.String()
}

// CheckConfig fills in missing options and validates the rest. It
// returns a copy; the receiver is left untouched.
func (conf *Config[K]) CheckConfig() (*Config[K], error) {
	return checkConfig(conf)
}

// checkConfig is a helper to make sure the configuration
// options are correct and handles any missing options
func checkConfig[K comparable](conf *Config[K]) (*Config[K], error) {
	var c Config[K]
	if conf != nil {
		c = *conf
	}
	if c.Capacity == 0 {
		c.Capacity = defaultMapSize
	}
	if c.Capacity > maxSlots+1 {
		return nil, errors.Wrapf(ErrInvalidCapacity, "%d exceeds %d slots", c.Capacity, maxSlots+1)
	}
	c.Capacity = alignBucketCount(c.Capacity)
	if c.LoadNumerator == 0 && c.LoadDenominator == 0 {
		c.LoadNumerator = defaultLoadNumerator
		c.LoadDenominator = defaultLoadDenominator
	}
	if c.LoadNumerator == 0 || c.LoadDenominator == 0 {
		return nil, errors.Wrapf(ErrInvalidLoadFactor, "%d/%d", c.LoadNumerator, c.LoadDenominator)
	}
	if c.Hash == nil {
		c.Hash = defaultHashFunc[K]()
		if c.Hash == nil {
			return nil, errors.Wrapf(ErrNoHashFunc, "%T", *new(K))
		}
	}
	if c.Logger == nil {
		c.Logger = log.StandardLogger()
	}
	return &c, nil
}

// alignBucketCount aligns buckets to ensure all sizes are powers of two
func alignBucketCount(size uint64) uint64 {
	count := uint64(1)
	for count < size {
		count *= 2
	}
	return count
}

// defaultHashFunc returns the hash used when none is configured. Only
// key types with an obvious hash have one.
func defaultHashFunc[K comparable]() hash.HashFunc[K] {
	var fn interface{}
	switch any(*new(K)).(type) {
	case hash.Key:
		fn = hash.HashFunc[hash.Key](hash.Identity)
	case string:
		fn = hash.HashFunc[string](hash.String)
	default:
		return nil
	}
	return fn.(hash.HashFunc[K])
}
