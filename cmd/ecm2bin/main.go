// Command ecm2bin expands an .ecm file back into the raw CD-ROM image
// bin2ecm produced it from.
package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"ecm"
	"ecm/internal/cmdutil"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ecm2bin <input.ecm> [output]",
		Short: "Decode an ECM file back into a raw CD-ROM image",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			inPath := args[0]
			outPath := cmdutil.DecodedName(inPath)
			if len(args) == 2 {
				outPath = args[1]
			}
			return run(cmd, inPath, outPath)
		},
	}
	return cmd
}

func run(cmd *cobra.Command, inPath, outPath string) error {
	in, err := os.Open(inPath)
	if err != nil {
		return errors.Wrapf(err, "open %s", inPath)
	}
	defer in.Close()

	out, err := cmdutil.CreateOutput(outPath)
	if err != nil {
		return err
	}
	defer out.Close()

	decoder := ecm.NewDecoder(ecm.WithDecodeProgress(func(decoded, total int64) {
		fmt.Fprintf(cmd.ErrOrStderr(), "\rDecode: %d bytes", decoded)
	}))

	stats, err := decoder.Decode(in, out)
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		os.Remove(outPath)
		return err
	}

	cmdutil.PrintStats(cmd.OutOrStdout(), stats)
	return nil
}
