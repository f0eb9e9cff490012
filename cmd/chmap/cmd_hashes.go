package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/scottcagno/chmap/pkg/hash"
	"github.com/spf13/cobra"
	"golang.org/x/sys/cpu"
)

var cmdHashes = &cobra.Command{
	Use:   "hashes",
	Short: "List the key hash functions",
	Long: `
The "hashes" command lists the key hash functions accepted by --hash, a few
sample hashes for each, and the CPU features the accelerated ones use.
`,
	DisableAutoGenTag: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runHashes(cmd.OutOrStdout())
	},
}

func init() {
	cmdRoot.AddCommand(cmdHashes)
}

var sampleKeys = []hash.Key{0, 1, 1024}

func runHashes(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprint(tw, "NAME")
	for _, k := range sampleKeys {
		fmt.Fprintf(tw, "\tKEY %d", k)
	}
	fmt.Fprintln(tw)
	for _, name := range hash.Names() {
		fn, err := hash.ByName(name)
		if err != nil {
			return err
		}
		fmt.Fprint(tw, name)
		for _, k := range sampleKeys {
			fmt.Fprintf(tw, "\t%016x", fn(k))
		}
		fmt.Fprintln(tw)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "x86: avx2=%t avx512f=%t sse41=%t\n", cpu.X86.HasAVX2, cpu.X86.HasAVX512F, cpu.X86.HasSSE41)
	fmt.Fprintf(w, "arm64: asimd=%t sha2=%t\n", cpu.ARM64.HasASIMD, cpu.ARM64.HasSHA2)
	return nil
}
