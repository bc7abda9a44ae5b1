// Package record implements the variable-length (type, count) wire record
// that prefixes every run's stripped payload in an ECM stream (§4.5).
package record

import (
	"errors"
	"io"

	"ecm/bitfield"
	"ecm/sector"
)

// ErrEnd is returned by Read when it decodes the end-of-stream marker
// (a record whose count-1 value is 0xFFFFFFFF). It is not a failure; the
// decoder pipeline treats it as "stop reading records, read the trailer".
var ErrEnd = errors.New("record: end of stream")

// ErrCorruptLength is returned by Read when a variable-length count
// overflows 32 bits or uses a non-minimal encoding for its final byte.
var ErrCorruptLength = errors.New("record: corrupt sector count")

// Record is a decoded (type, count) pair. Count is always >= 1.
type Record struct {
	Type  sector.Type
	Count uint32
}

// Write encodes (t, count) per §4.5. count must be >= 1; use WriteEnd to
// emit the reserved end-of-stream marker.
func Write(w io.Writer, t sector.Type, count uint32) error {
	if count == 0 {
		panic("record: Write requires count >= 1; use WriteEnd for the terminator")
	}
	return writeRaw(w, t, count-1)
}

// WriteEnd emits the reserved end-of-stream marker: a record whose
// decoded value is 0xFFFFFFFF.
func WriteEnd(w io.Writer) error {
	return writeRaw(w, sector.Literal, 0xFFFFFFFF)
}

func writeRaw(w io.Writer, t sector.Type, n uint32) error {
	first := byte(t) & 0x03
	first |= byte(n&0x1F) << 2
	if n >= 32 {
		first |= 0x80
	}
	if _, err := w.Write([]byte{first}); err != nil {
		return err
	}
	n >>= 5
	for n > 0 {
		b := byte(n & 0x7F)
		if n >= 128 {
			b |= 0x80
		}
		if _, err := w.Write([]byte{b}); err != nil {
			return err
		}
		n >>= 7
	}
	return nil
}

// Read decodes one (type, count) record from r. It returns ErrEnd when
// the decoded record is the end-of-stream marker, and ErrCorruptLength
// when the variable-length count is malformed per §4.5's inverse.
func Read(r io.Reader) (Record, error) {
	var b [1]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return Record{}, err
	}
	c := b[0]

	t := sector.Type(bitfield.Range(c, bitfield.B7, bitfield.B8))
	n := uint32(bitfield.Range(c, bitfield.B2, bitfield.B6))
	bits := uint(5)

	for bitfield.IsSet(c, bitfield.B1) {
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return Record{}, err
		}
		c = b[0]
		if c == 0 || bits > 31 || uint32(c&0x7F) >= (uint32(0x80000000)>>(bits-1)) {
			return Record{}, ErrCorruptLength
		}
		n |= uint32(c&0x7F) << bits
		bits += 7
	}

	if n == 0xFFFFFFFF {
		return Record{}, ErrEnd
	}
	return Record{Type: t, Count: n + 1}, nil
}
