// Command bin2ecm strips the redundant EDC/ECC fields from a raw CD-ROM
// disc image, producing a smaller .ecm file that ecm2bin can losslessly
// expand back to the original.
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
	var queueSize int

	cmd := &cobra.Command{
		Use:   "bin2ecm <input> [output.ecm]",
		Short: "Encode a raw CD-ROM image into ECM format",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			inPath := args[0]
			outPath := cmdutil.EncodedName(inPath)
			if len(args) == 2 {
				outPath = args[1]
			}
			return run(cmd, inPath, outPath, queueSize)
		},
	}
	cmd.Flags().IntVar(&queueSize, "queue-size", 0, "lookahead buffer size in bytes (default: reference size)")
	return cmd
}

func run(cmd *cobra.Command, inPath, outPath string, queueSize int) error {
	in, err := os.Open(inPath)
	if err != nil {
		return errors.Wrapf(err, "open %s", inPath)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return errors.Wrapf(err, "stat %s", inPath)
	}

	out, err := cmdutil.CreateOutput(outPath)
	if err != nil {
		return err
	}
	defer out.Close()

	var opts []ecm.EncoderOption
	if queueSize > 0 {
		opts = append(opts, ecm.WithQueueSize(queueSize))
	}
	opts = append(opts, ecm.WithEncodeProgress(func(analyzed, encoded, total int64) {
		fmt.Fprintf(cmd.ErrOrStderr(), "\rAnalyze(%3d%%) Encode(%3d%%)", pct(analyzed, total), pct(encoded, total))
	}))

	stats, err := ecm.NewEncoder(opts...).Encode(in, info.Size(), out)
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		os.Remove(outPath)
		return err
	}

	cmdutil.PrintStats(cmd.OutOrStdout(), stats)
	return nil
}

func pct(n, total int64) int64 {
	if total == 0 {
		return 100
	}
	return n * 100 / total
}
