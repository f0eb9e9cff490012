package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/scottcagno/chmap"
	"github.com/scottcagno/chmap/pkg/hash"
	"github.com/scottcagno/chmap/pkg/hashmap/chained"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var cmdBench = &cobra.Command{
	Use:   "bench [flags]",
	Short: "Load a map with generated keys and report its shape",
	Long: `
The "bench" command inserts --count sequential keys, reads every one of them
back, removes every other key and prints the resulting table stats. With
--shards the keys are written by --workers goroutines in parallel.

EXIT STATUS
===========

Exit status is 0 if every key was read back, and non-zero otherwise.
`,
	DisableAutoGenTag: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBench(cmd.Context(), cmd.OutOrStdout(), benchOptions)
	},
}

// BenchOptions bundles all options for the bench command.
type BenchOptions struct {
	Count   uint64
	Hash    string
	Shards  uint
	Workers int
}

var benchOptions BenchOptions

func init() {
	cmdRoot.AddCommand(cmdBench)

	f := cmdBench.Flags()
	f.Uint64Var(&benchOptions.Count, "count", 1<<20, "insert `n` keys")
	f.StringVar(&benchOptions.Hash, "hash", "xxhash", "key hash `function`")
	f.UintVar(&benchOptions.Shards, "shards", 0, "use a sharded map with `n` shards (0: plain map)")
	f.IntVar(&benchOptions.Workers, "workers", 4, "write with `n` goroutines (sharded map only)")
}

// forEachKey calls fn for every key in [0, count), spread over workers
// goroutines. It stops at the first error or when ctx is done.
func forEachKey(ctx context.Context, count uint64, workers int, fn func(k hash.Key) error) error {
	if workers < 1 {
		workers = 1
	}
	wg, wgCtx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		w := w
		wg.Go(func() error {
			for k := uint64(w); k < count; k += uint64(workers) {
				if k%4096 == 0 {
					if err := wgCtx.Err(); err != nil {
						return err
					}
				}
				if err := fn(k); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return wg.Wait()
}

func runBench(ctx context.Context, w io.Writer, opts BenchOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	fn, err := hash.ByName(opts.Hash)
	if err != nil {
		return err
	}
	conf := &chained.Config[hash.Key]{Hash: fn}

	var table chmap.Table[hash.Key, uint64]
	workers := 1
	if opts.Shards > 0 {
		table, err = chained.NewShardedHashMap[hash.Key, uint64](opts.Shards, conf)
		workers = opts.Workers
	} else {
		table, err = chained.Open[hash.Key, uint64](conf)
	}
	if err != nil {
		return err
	}

	start := time.Now()
	err = forEachKey(ctx, opts.Count, workers, func(k hash.Key) error {
		table.Put(k, k*2)
		return nil
	})
	if err != nil {
		return err
	}
	putTook := time.Since(start)

	start = time.Now()
	err = forEachKey(ctx, opts.Count, workers, func(k hash.Key) error {
		val, ok := table.Lookup(k)
		if !ok {
			return errors.Wrapf(chained.ErrKeyNotFound, "key %d", k)
		}
		if val != k*2 {
			return errors.Errorf("key %d: want %d, got %d", k, k*2, val)
		}
		return nil
	})
	if err != nil {
		return err
	}
	getTook := time.Since(start)

	full := table.Stats()

	err = forEachKey(ctx, opts.Count, workers, func(k hash.Key) error {
		if k%2 == 1 {
			if _, ok := table.Del(k); !ok {
				return errors.Wrapf(chained.ErrKeyNotFound, "del key %d", k)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	if want := int(opts.Count - opts.Count/2); table.Len() != want {
		return errors.Errorf("len after delete: want %d, got %d", want, table.Len())
	}

	log.WithFields(log.Fields{
		"hash":   opts.Hash,
		"count":  opts.Count,
		"shards": full.Shards,
	}).Debug("bench done")

	printStats(w, "loaded", full)
	printStats(w, "halved", table.Stats())
	fmt.Fprintf(w, "put: %v (%.1f ns/op)\n", putTook, perOp(putTook, opts.Count))
	fmt.Fprintf(w, "get: %v (%.1f ns/op)\n", getTook, perOp(getTook, opts.Count))
	return nil
}

func perOp(d time.Duration, n uint64) float64 {
	if n == 0 {
		return 0
	}
	return float64(d.Nanoseconds()) / float64(n)
}

func printStats(w io.Writer, label string, st chmap.Stats) {
	fmt.Fprintf(w, "%s: len=%d shards=%d slots=%d used=%d max_load=%d longest_chain=%d load=%.4f\n",
		label, st.Len, st.Shards, st.Slots, st.UsedSlots, st.MaxLoad, st.LongestChain, st.PercentFull())
}
