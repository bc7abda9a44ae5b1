// Package cmdutil holds the filename derivation, overwrite refusal and
// summary printing shared by the bin2ecm and ecm2bin command-line tools.
// None of it is part of the codec itself; package ecm knows nothing about
// the host file system.
package cmdutil

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"

	"ecm"
)

// ErrExists is returned by CreateOutput when the destination already
// exists; the tools never overwrite a file silently.
var ErrExists = errors.New("cmdutil: output file already exists")

// EncodedName derives the .ecm output filename for in, per the convention
// the reference tool uses: append ".ecm" to whatever name was given.
func EncodedName(in string) string {
	return in + ".ecm"
}

// DecodedName derives the output filename for an .ecm input: strip a
// case-insensitive ".ecm" suffix if present, otherwise append ".unecm".
func DecodedName(in string) string {
	if len(in) > 4 && strings.EqualFold(in[len(in)-4:], ".ecm") {
		return in[:len(in)-4]
	}
	return in + ".unecm"
}

// CreateOutput opens path for writing, refusing to overwrite an existing
// file.
func CreateOutput(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return nil, errors.Wrapf(ErrExists, "%s", path)
		}
		return nil, errors.Wrapf(err, "create %s", path)
	}
	return f, nil
}

// PrintStats writes the reference tool's closing summary report to w.
func PrintStats(w io.Writer, s ecm.Stats) {
	fmt.Fprintf(w, "Literal bytes:    %d\n", s.Literals)
	fmt.Fprintf(w, "Mode 1 sectors:   %d\n", s.Mode1)
	fmt.Fprintf(w, "Mode 2 form 1:    %d\n", s.Mode2Form1)
	fmt.Fprintf(w, "Mode 2 form 2:    %d\n", s.Mode2Form2)
	fmt.Fprintf(w, "%d -> %d bytes\n", s.InputBytes, s.OutputBytes)
}
