// Package queue implements the bounded lookahead buffer the encoder reads
// sectors from: a flat byte slice with a start offset and count of valid
// bytes, refilled by the caller through WriteSlice and Append. It plays the
// same role for the encoder that mem.Bus plays for a CPU core: the one
// piece of mutable shared state everything else reads through.
package queue

// DefaultSize is the reference queue capacity (§3, "Queue").
const DefaultSize = 0x40000

// Queue is a sliding window over an input stream. Bytes available is
// always <= the queue's capacity.
type Queue struct {
	buf       []byte
	start     int
	available int
}

// New allocates a queue with the given capacity.
func New(size int) *Queue {
	if size <= 0 {
		size = DefaultSize
	}
	return &Queue{buf: make([]byte, size)}
}

// Len reports the number of valid bytes currently available.
func (q *Queue) Len() int { return q.available }

// Cap reports the queue's capacity.
func (q *Queue) Cap() int { return len(q.buf) }

// Peek returns the valid bytes at the front of the queue, without
// consuming them. The returned slice aliases the queue's backing array
// and is invalidated by the next Room or Advance call.
func (q *Queue) Peek() []byte {
	return q.buf[q.start : q.start+q.available]
}

// Advance discards n bytes from the front of the queue.
func (q *Queue) Advance(n int) {
	if n > q.available {
		panic("queue: advance past available bytes")
	}
	q.start += n
	q.available -= n
}

// Room reports how many more bytes can be read into the queue before it
// is full, compacting the backing array first if doing so would help.
func (q *Queue) Room() int {
	if q.start > 0 {
		copy(q.buf, q.buf[q.start:q.start+q.available])
		q.start = 0
	}
	return len(q.buf) - q.available
}

// Append marks n freshly-written bytes (written by the caller into the
// slice returned by WriteSlice) as valid.
func (q *Queue) Append(n int) {
	q.available += n
}

// WriteSlice returns the free region at the end of the queue's valid
// bytes, for a caller to read data into directly before calling Append.
// Call Room first to ensure the free region has been compacted to the
// front.
func (q *Queue) WriteSlice() []byte {
	return q.buf[q.start+q.available:]
}
