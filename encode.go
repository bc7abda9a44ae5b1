package ecm

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"

	"ecm/edc"
	"ecm/queue"
	"ecm/record"
	"ecm/sector"
)

// header is the four-byte magic that opens every encoded stream.
var header = [4]byte{'E', 'C', 'M', 0x00}

// literalChunk bounds how many bytes of a long literal run are copied from
// input to output at a time, the same chunk size the reference tool's
// sector_buffer uses.
const literalChunk = 2352

// maxRunCount is the largest count the encoder lets a single run reach; a
// run that would grow past it is flushed and a fresh run of the same type started, per
// §9's overflow cap.
const maxRunCount = 0x7FFFFFFF

// Encode reads size bytes from in, classifies them into runs of literal
// bytes and Mode 1 / Mode 2 sectors, and writes the resulting ECM stream to
// out. in must support random access: the classifier looks ahead inside
// the queue, but flushing a run re-reads its raw bytes directly from in at
// the run's starting offset rather than keeping them buffered.
func (e *Encoder) Encode(in io.ReaderAt, size int64, out io.Writer) (Stats, error) {
	cw := &countingWriter{w: out}

	if _, err := cw.Write(header[:]); err != nil {
		return Stats{}, errors.Wrap(err, "ecm: write header")
	}

	qsize := e.queueSize
	if qsize <= 0 {
		qsize = queue.DefaultSize
	}
	q := queue.New(qsize)

	var (
		stats       Stats
		det         sector.Detector
		streamEDC   uint32
		hasRun      bool
		curType     sector.Type
		curCount    uint32
		curStart    int64
		checked     int64
		queued      int64
		analyzeGate = newProgressGate()
		encodeGate  = newProgressGate()
	)

	flush := func() error {
		if err := flushRun(in, cw, curType, curCount, curStart); err != nil {
			return err
		}
		stats.add(curType, curCount)
		if e.progress != nil && encodeGate.fire(checked) {
			e.progress(queued, checked, size)
		}
		return nil
	}

	for {
		if int64(q.Len()) < 2352 && queued < size {
			room := q.Room()
			want := size - queued
			if int64(room) < want {
				want = int64(room)
			}
			if want > 0 {
				dst := q.WriteSlice()[:want]
				n, err := in.ReadAt(dst, queued)
				if err != nil && !(errors.Is(err, io.EOF) && int64(n) == want) {
					return stats, errors.Wrap(err, "ecm: read input")
				}
				streamEDC = edc.Update(streamEDC, dst[:n])
				q.Append(n)
				queued += int64(n)
				if e.progress != nil && analyzeGate.fire(queued) {
					e.progress(queued, checked, size)
				}
			}
		}

		if q.Len() == 0 {
			if hasRun {
				if err := flush(); err != nil {
					return stats, err
				}
			}
			break
		}

		prev := sector.Literal
		if hasRun {
			prev = curType
		}
		detected := det.Detect(prev, q.Peek(), q.Len())

		if hasRun && detected == curType && curCount < maxRunCount {
			curCount++
		} else {
			if hasRun {
				if err := flush(); err != nil {
					return stats, err
				}
			}
			curType = detected
			curStart = checked
			curCount = 1
			hasRun = true
		}

		checked += int64(curType.RawSize())
		q.Advance(curType.RawSize())
	}

	if err := record.WriteEnd(cw); err != nil {
		return stats, errors.Wrap(err, "ecm: write end marker")
	}

	var trailer [4]byte
	binary.LittleEndian.PutUint32(trailer[:], streamEDC)
	if _, err := cw.Write(trailer[:]); err != nil {
		return stats, errors.Wrap(err, "ecm: write trailer")
	}

	stats.InputBytes = size
	stats.OutputBytes = cw.n
	return stats, nil
}

// flushRun writes one run's record header and stripped payload, re-reading
// the run's raw bytes from in starting at start.
func flushRun(in io.ReaderAt, out io.Writer, t sector.Type, count uint32, start int64) error {
	if err := record.Write(out, t, count); err != nil {
		return errors.Wrap(err, "ecm: write record header")
	}

	if t == sector.Literal {
		buf := make([]byte, literalChunk)
		remaining := int64(count)
		offset := start
		for remaining > 0 {
			n := int64(len(buf))
			if n > remaining {
				n = remaining
			}
			if _, err := in.ReadAt(buf[:n], offset); err != nil {
				return errors.Wrap(err, "ecm: read input")
			}
			if _, err := out.Write(buf[:n]); err != nil {
				return errors.Wrap(err, "ecm: write output")
			}
			offset += n
			remaining -= n
		}
		return nil
	}

	raw := make([]byte, t.RawSize())
	offset := start
	for i := uint32(0); i < count; i++ {
		if _, err := in.ReadAt(raw, offset); err != nil {
			return errors.Wrap(err, "ecm: read input")
		}
		if err := sector.WriteStripped(out, t, raw); err != nil {
			return errors.Wrap(err, "ecm: write output")
		}
		offset += int64(len(raw))
	}
	return nil
}
