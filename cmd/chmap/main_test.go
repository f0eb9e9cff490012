package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/scottcagno/chmap/pkg/hash"
	"github.com/scottcagno/chmap/pkg/util"
	log "github.com/sirupsen/logrus"
)

func init() {
	log.SetLevel(log.WarnLevel)
}

func TestRunDemo(t *testing.T) {
	for _, name := range hash.Names() {
		for _, shards := range []uint{0, 4} {
			var buf bytes.Buffer
			err := runDemo(&buf, DemoOptions{Hash: name, Shards: shards})
			util.AssertNoError(t, err)
			util.AssertTrue(t, strings.HasSuffix(buf.String(), "ok, len=3\n"))
		}
	}
}

func TestRunDemoUnknownHash(t *testing.T) {
	err := runDemo(&bytes.Buffer{}, DemoOptions{Hash: "crc32"})
	util.AssertExpected(t, hash.ErrUnknownHash, errors.Cause(err))
}

func TestRunBench(t *testing.T) {
	for _, opts := range []BenchOptions{
		{Count: 5000, Hash: "identity"},
		{Count: 5000, Hash: "murmur3", Shards: 8, Workers: 4},
		{Count: 0, Hash: "xxhash"},
	} {
		var buf bytes.Buffer
		err := runBench(context.Background(), &buf, opts)
		util.AssertNoError(t, err)
		util.AssertTrue(t, strings.Contains(buf.String(), "loaded: len="))
	}
}

func TestRunBenchCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := runBench(ctx, &bytes.Buffer{}, BenchOptions{Count: 10, Hash: "xxhash"})
	util.AssertExpected(t, context.Canceled, err)
}

func TestRunHashes(t *testing.T) {
	var buf bytes.Buffer
	util.AssertNoError(t, runHashes(&buf))
	out := buf.String()
	for _, name := range hash.Names() {
		util.AssertTrue(t, strings.Contains(out, name))
	}
	// identity of 1024
	util.AssertTrue(t, strings.Contains(out, "0000000000000400"))
}
