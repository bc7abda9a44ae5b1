// Package sector implements the CD-ROM sector model at the heart of the
// ECM format: the four sector Types, the structural classifier that tells
// them apart in an arbitrary byte stream, and the strip/reconstruct pair
// that removes (and later regenerates) the fields a sector's EDC/ECC
// already make redundant.
package sector

import (
	"encoding/binary"
	"fmt"
	"io"

	"ecm/ecc"
	"ecm/edc"
)

// Type is the wire-visible tag of a classified run. The numeric values are
// part of the ECM format (they're packed into the low 2 bits of a record
// header byte, see package record) and must not be reordered.
type Type int8

const (
	Literal    Type = 0
	Mode1      Type = 1
	Mode2Form1 Type = 2
	Mode2Form2 Type = 3
)

func (t Type) String() string {
	switch t {
	case Literal:
		return "literal"
	case Mode1:
		return "mode1"
	case Mode2Form1:
		return "mode2form1"
	case Mode2Form2:
		return "mode2form2"
	default:
		return fmt.Sprintf("sector.Type(%d)", int8(t))
	}
}

// rawSize is the number of bytes a single unit of each type occupies in
// the original (unencoded) stream.
var rawSize = [4]int{1, 2352, 2336, 2336}

// strippedSize is the number of bytes a single unit of each type occupies
// once its derivable fields have been stripped.
var strippedSize = [4]int{1, 0x803, 0x804, 0x918}

// RawSize returns the raw byte size of one unit of t.
func (t Type) RawSize() int { return rawSize[t] }

// StrippedSize returns the stripped payload size of one unit of t.
func (t Type) StrippedSize() int { return strippedSize[t] }

// sync is the 12-byte pattern that opens every raw CD-ROM sector.
var sync = [12]byte{0x00, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x00}

func hasSync(b []byte) bool {
	return len(b) >= 12 && [12]byte(b[:12]) == sync
}

// Classify inspects up to a sector's worth of bytes at the front of buf
// (which has available valid bytes) and returns the type structurally
// present there, per §4.3. It never reads beyond available.
func Classify(buf []byte, available int) Type {
	if available >= 2352 &&
		hasSync(buf) &&
		buf[0x0F] == 0x01 &&
		isZero(buf[0x814:0x81C]) {
		if ecc.Check(buf[0xC:0x10], buf[0x10:], buf[0x81C:0x81C+0x114]) &&
			edc.Update(0, buf[:0x810]) == binary.LittleEndian.Uint32(buf[0x810:0x814]) {
			return Mode1
		}
	} else if available >= 2336 &&
		buf[0] == buf[4] && buf[1] == buf[5] && buf[2] == buf[6] && buf[3] == buf[7] {
		if ecc.Check(ecc.ZeroAddress[:], buf, buf[0x80C:0x80C+0x114]) &&
			edc.Update(0, buf[:0x808]) == binary.LittleEndian.Uint32(buf[0x808:0x80C]) {
			return Mode2Form1
		}
		if edc.Update(0, buf[:0x91C]) == binary.LittleEndian.Uint32(buf[0x91C:0x920]) {
			return Mode2Form2
		}
	}
	return Literal
}

func isZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}

// looksLikeMode2Sync reports whether buf opens with a sync pattern
// followed by a Mode 2 mode byte, the trigger for the heuristic literal
// skip of §4.4.
func looksLikeMode2Sync(buf []byte, available int) bool {
	return available >= 0x10 && hasSync(buf) && buf[0x0F] == 0x02
}

// Detector wraps Classify with the one piece of classification state that
// isn't pure: the heuristic literal skip of §4.4, which depends on the
// type of the run currently being accumulated and on how many bytes are still
// being force-skipped as literals.
type Detector struct {
	skip int
}

// Detect returns the type the encoder should assign to the byte at the
// front of buf, given that prevType was the type of the run currently
// being accumulated.
func (d *Detector) Detect(prevType Type, buf []byte, available int) Type {
	if d.skip > 0 {
		d.skip--
		return Literal
	}
	if prevType >= Mode2Form1 && looksLikeMode2Sync(buf, available) {
		d.skip = 15
		return Literal
	}
	return Classify(buf, available)
}

// WriteStripped writes the stripped payload for one unit of t, reading
// its raw bytes from raw. For Mode1, raw is the full 2352-byte sector
// (global offsets); for the Mode2 types, raw is the 2336-byte Mode 2 user
// area as read directly from the source (offsets local to that area).
func WriteStripped(w io.Writer, t Type, raw []byte) error {
	switch t {
	case Literal:
		_, err := w.Write(raw[:1])
		return err
	case Mode1:
		if _, err := w.Write(raw[0xC:0xF]); err != nil {
			return err
		}
		_, err := w.Write(raw[0x10:0x810])
		return err
	case Mode2Form1:
		_, err := w.Write(raw[0x4:0x808])
		return err
	case Mode2Form2:
		_, err := w.Write(raw[0x4:0x91C])
		return err
	}
	return fmt.Errorf("sector: invalid type %d", t)
}

// ReadStripped reads the stripped payload for one unit of t from r,
// placing its bytes into sector (a 2352-byte scratch buffer) at the
// global offsets Reconstruct expects: sector[0xC:0xF] (address; the mode
// byte at 0xF is filled in by Reconstruct) and sector[0x10:0x810] for
// Mode1, sector[0x14:0x818] for Mode2Form1, sector[0x14:0x92C] for
// Mode2Form2.
func ReadStripped(r io.Reader, t Type, sector []byte) error {
	switch t {
	case Mode1:
		if _, err := io.ReadFull(r, sector[0xC:0xF]); err != nil {
			return err
		}
		_, err := io.ReadFull(r, sector[0x10:0x810])
		return err
	case Mode2Form1:
		_, err := io.ReadFull(r, sector[0x14:0x818])
		return err
	case Mode2Form2:
		_, err := io.ReadFull(r, sector[0x14:0x92C])
		return err
	}
	return fmt.Errorf("sector: invalid type %d", t)
}

// Reconstruct rebuilds the derivable fields of a raw sector of type t in
// place: the sync pattern, the mode byte, the redundant flag copy for
// Mode 2, and the EDC/ECC fields, per §4.8. sector must be a 2352-byte
// buffer with the stripped payload already placed at the offsets
// ReadStripped uses.
func Reconstruct(t Type, sector []byte) {
	copy(sector[0:12], sync[:])

	switch t {
	case Mode1:
		sector[0x0F] = 0x01
		for i := 0x814; i < 0x81C; i++ {
			sector[i] = 0
		}
	case Mode2Form1, Mode2Form2:
		sector[0x0F] = 0x02
		copy(sector[0x10:0x14], sector[0x14:0x18])
	}

	switch t {
	case Mode1:
		binary.LittleEndian.PutUint32(sector[0x810:0x814], edc.Update(0, sector[:0x810]))
	case Mode2Form1:
		binary.LittleEndian.PutUint32(sector[0x818:0x81C], edc.Update(0, sector[0x10:0x818]))
	case Mode2Form2:
		binary.LittleEndian.PutUint32(sector[0x92C:0x930], edc.Update(0, sector[0x10:0x92C]))
	}

	switch t {
	case Mode1:
		ecc.Write(sector[0xC:0x10], sector[0x10:], sector[0x81C:0x930])
	case Mode2Form1:
		ecc.Write(ecc.ZeroAddress[:], sector[0x10:], sector[0x81C:0x930])
	}
}
