package main

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/scottcagno/chmap/pkg/hash"
	"github.com/scottcagno/chmap/pkg/hashmap/chained"
	"github.com/spf13/cobra"
)

var cmdDemo = &cobra.Command{
	Use:   "demo",
	Short: "Replay the reference scenario",
	Long: `
The "demo" command inserts four colliding keys, then reads, mutates and
removes them, checking every intermediate result.

EXIT STATUS
===========

Exit status is 0 if every check passed, and non-zero otherwise.
`,
	DisableAutoGenTag: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDemo(cmd.OutOrStdout(), demoOptions)
	},
}

// DemoOptions bundles all options for the demo command.
type DemoOptions struct {
	Hash   string
	Shards uint
}

var demoOptions DemoOptions

func init() {
	cmdRoot.AddCommand(cmdDemo)

	f := cmdDemo.Flags()
	f.StringVar(&demoOptions.Hash, "hash", "identity", "key hash `function`")
	f.UintVar(&demoOptions.Shards, "shards", 0, "run against a sharded map with `n` shards (0: plain map)")
}

// demoMap is the table interface plus a way to rewrite a stored value
type demoMap interface {
	Put(key hash.Key, val uint64)
	Get(key hash.Key) uint64
	Del(key hash.Key) (uint64, bool)
	Len() int
	update(key hash.Key, val uint64)
}

type plainDemoMap struct {
	*chained.HashMap[hash.Key, uint64]
}

func (m plainDemoMap) update(key hash.Key, val uint64) {
	*m.GetMut(key) = val
}

type shardedDemoMap struct {
	*chained.ShardedHashMap[hash.Key, uint64]
}

func (m shardedDemoMap) update(key hash.Key, val uint64) {
	m.Update(key, func(v *uint64) { *v = val })
}

func openDemoMap(opts DemoOptions) (demoMap, error) {
	fn, err := hash.ByName(opts.Hash)
	if err != nil {
		return nil, err
	}
	conf := &chained.Config[hash.Key]{Hash: fn}
	if opts.Shards > 0 {
		shm, err := chained.NewShardedHashMap[hash.Key, uint64](opts.Shards, conf)
		if err != nil {
			return nil, err
		}
		return shardedDemoMap{shm}, nil
	}
	hm, err := chained.Open[hash.Key, uint64](conf)
	if err != nil {
		return nil, err
	}
	return plainDemoMap{hm}, nil
}

func expect(what string, want, got uint64) error {
	if want != got {
		return errors.Errorf("%s: want %d, got %d", what, want, got)
	}
	return nil
}

func runDemo(w io.Writer, opts DemoOptions) error {
	m, err := openDemoMap(opts)
	if err != nil {
		return err
	}

	m.Put(0, 42)
	m.Put(128, 18)
	m.Put(1024, 138)
	m.Put(1056, 256)
	fmt.Fprintf(w, "inserted 4 keys, len=%d\n", m.Len())

	if err := expect("get 128", 18, m.Get(128)); err != nil {
		return err
	}
	m.update(1024, 56)
	if err := expect("get 1024 after update", 56, m.Get(1024)); err != nil {
		return err
	}
	val, ok := m.Del(1024)
	if !ok {
		return errors.Wrap(chained.ErrKeyNotFound, "del 1024")
	}
	if err := expect("del 1024", 56, val); err != nil {
		return err
	}
	fmt.Fprintf(w, "removed 1024 -> %d\n", val)

	for _, kv := range [][2]uint64{{0, 42}, {128, 18}, {1056, 256}} {
		if err := expect(fmt.Sprintf("get %d", kv[0]), kv[1], m.Get(kv[0])); err != nil {
			return err
		}
		fmt.Fprintf(w, "get %d -> %d\n", kv[0], kv[1])
	}
	if err := expect("len", 3, uint64(m.Len())); err != nil {
		return err
	}
	fmt.Fprintf(w, "ok, len=%d\n", m.Len())
	return nil
}
