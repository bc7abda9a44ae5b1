package ecm

import "io"

// EncodeProgressFunc is invoked periodically during Encode with the number
// of input bytes analyzed (read into the lookahead queue) and encoded
// (classified into runs) so far, and the total input size. Each of the two
// counts triggers at most one call per megabyte it advances, the same
// throttling the reference tool applies to its "Analyze(NN%) Encode(NN%)"
// status line.
type EncodeProgressFunc func(analyzed, encoded, total int64)

// DecodeProgressFunc is invoked periodically during Decode with the number
// of bytes decoded so far and, if known, the total output size (0 if the
// caller did not provide one via WithDecodeTotal).
type DecodeProgressFunc func(decoded, total int64)

// Encoder strips the deterministic EDC/ECC fields from raw sectors in an
// input stream, per the wire format Decoder reverses.
type Encoder struct {
	queueSize int
	progress  EncodeProgressFunc
}

// EncoderOption configures an Encoder constructed by NewEncoder.
type EncoderOption func(*Encoder)

// NewEncoder builds an Encoder with the given options applied over the
// defaults (queue capacity queue.DefaultSize, no progress callback).
func NewEncoder(opts ...EncoderOption) *Encoder {
	e := &Encoder{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WithQueueSize overrides the encoder's lookahead buffer capacity. Larger
// values read the input in bigger chunks at the cost of memory; the
// classifier never looks more than one sector ahead. The reference default
// is queue.DefaultSize.
func WithQueueSize(n int) EncoderOption {
	return func(e *Encoder) { e.queueSize = n }
}

// WithEncodeProgress installs a callback invoked as Encode makes progress.
func WithEncodeProgress(fn EncodeProgressFunc) EncoderOption {
	return func(e *Encoder) { e.progress = fn }
}

// Decoder reconstructs the sectors an Encoder stripped, verifying the
// stream-wide checksum trailer before reporting success.
type Decoder struct {
	progress    DecodeProgressFunc
	outputTotal int64
}

// DecoderOption configures a Decoder constructed by NewDecoder.
type DecoderOption func(*Decoder)

// NewDecoder builds a Decoder with the given options applied.
func NewDecoder(opts ...DecoderOption) *Decoder {
	d := &Decoder{}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// WithDecodeProgress installs a callback invoked as Decode makes progress.
func WithDecodeProgress(fn DecodeProgressFunc) DecoderOption {
	return func(d *Decoder) { d.progress = fn }
}

// WithDecodeTotal tells the decoder the expected output size up front, so
// the progress callback can report it; Decode works without it, it just
// reports 0 for total.
func WithDecodeTotal(n int64) DecoderOption {
	return func(d *Decoder) { d.outputTotal = n }
}

// progressGate mirrors the reference tool's "only print once per megabyte"
// throttle: fire reports true the first time it's called and again every
// time the high bits of n (above bit 20) change.
type progressGate struct {
	last int64
}

func newProgressGate() *progressGate {
	return &progressGate{last: -1}
}

func (g *progressGate) fire(n int64) bool {
	changed := n>>20 != g.last>>20
	g.last = n
	return changed
}

// countingWriter tracks the number of bytes written through it, so Encode
// and Decode can report OutputBytes without requiring an io.Seeker.
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
