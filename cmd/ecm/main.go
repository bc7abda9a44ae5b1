// Command ecm is a small umbrella over the codec's non-functional tooling;
// today that's only the interactive record-stream browser. Encoding and
// decoding have their own dedicated bin2ecm/ecm2bin binaries, matching the
// two-program split of the format's original reference implementation.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"ecm"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "ecm",
		Short: "Tooling around the ECM disc-image codec",
	}
	root.AddCommand(newInspectCmd())
	return root
}

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file.ecm>",
		Short: "Browse the record stream of an ECM file interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return errors.Wrapf(err, "open %s", args[0])
			}
			defer f.Close()

			var magic [4]byte
			if _, err := io.ReadFull(f, magic[:]); err != nil {
				return errors.Wrapf(err, "read %s", args[0])
			}
			if magic != [4]byte{'E', 'C', 'M', 0x00} {
				return errors.Errorf("%s: not an ECM file", args[0])
			}

			return ecm.Inspect(f)
		},
	}
}
