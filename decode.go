package ecm

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"

	"ecm/edc"
	"ecm/record"
	"ecm/sector"
)

// Decode reverses Encode: it reads an ECM stream from r, reconstructs each
// run's original bytes, and writes them to w. It returns ErrBadHeader if r
// doesn't start with the ECM magic, ErrCorruptLength if a record's count
// is malformed, and ErrChecksum if the trailer EDC doesn't match the bytes
// actually written — in every case after everything that could be written
// has been.
func (d *Decoder) Decode(r io.Reader, w io.Writer) (Stats, error) {
	var got [4]byte
	if _, err := io.ReadFull(r, got[:]); err != nil {
		return Stats{}, errors.Wrap(err, "ecm: read header")
	}
	if got != header {
		return Stats{}, ErrBadHeader
	}

	cw := &countingWriter{w: w}
	var (
		stats     Stats
		streamEDC uint32
		sectorBuf = make([]byte, 2352)
		literal   = make([]byte, literalChunk)
		gate      = newProgressGate()
	)

	for {
		rec, err := record.Read(r)
		if err != nil {
			if errors.Is(err, record.ErrEnd) {
				break
			}
			if errors.Is(err, record.ErrCorruptLength) {
				return stats, ErrCorruptLength
			}
			return stats, errors.Wrap(err, "ecm: read record")
		}

		if rec.Type == sector.Literal {
			remaining := int64(rec.Count)
			for remaining > 0 {
				n := int64(len(literal))
				if n > remaining {
					n = remaining
				}
				if _, err := io.ReadFull(r, literal[:n]); err != nil {
					return stats, errors.Wrap(err, "ecm: read record payload")
				}
				streamEDC = edc.Update(streamEDC, literal[:n])
				if _, err := cw.Write(literal[:n]); err != nil {
					return stats, errors.Wrap(err, "ecm: write output")
				}
				remaining -= n
			}
		} else {
			for i := uint32(0); i < rec.Count; i++ {
				if err := sector.ReadStripped(r, rec.Type, sectorBuf); err != nil {
					return stats, errors.Wrap(err, "ecm: read record payload")
				}
				sector.Reconstruct(rec.Type, sectorBuf)

				emit := sectorBuf
				if rec.Type != sector.Mode1 {
					emit = sectorBuf[0x10:0x930]
				}
				streamEDC = edc.Update(streamEDC, emit)
				if _, err := cw.Write(emit); err != nil {
					return stats, errors.Wrap(err, "ecm: write output")
				}
			}
		}

		stats.add(rec.Type, rec.Count)
		if d.progress != nil && gate.fire(cw.n) {
			d.progress(cw.n, d.outputTotal)
		}
	}

	var trailer [4]byte
	if _, err := io.ReadFull(r, trailer[:]); err != nil {
		return stats, errors.Wrap(err, "ecm: read trailer")
	}
	want := binary.LittleEndian.Uint32(trailer[:])
	if want != streamEDC {
		return stats, errors.Wrapf(ErrChecksum, "stream EDC 0x%08X, trailer wants 0x%08X", streamEDC, want)
	}

	stats.OutputBytes = cw.n
	return stats, nil
}
