package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultsSize(t *testing.T) {
	q := New(0)
	assert.Equal(t, DefaultSize, q.Cap())
}

func TestAppendAndPeek(t *testing.T) {
	q := New(16)
	n := copy(q.WriteSlice(), []byte("hello"))
	q.Append(n)
	assert.Equal(t, 5, q.Len())
	assert.Equal(t, []byte("hello"), q.Peek())
}

func TestAdvanceConsumesFromFront(t *testing.T) {
	q := New(16)
	n := copy(q.WriteSlice(), []byte("hello"))
	q.Append(n)
	q.Advance(2)
	assert.Equal(t, 3, q.Len())
	assert.Equal(t, []byte("llo"), q.Peek())
}

func TestAdvancePastAvailablePanics(t *testing.T) {
	q := New(16)
	q.Append(copy(q.WriteSlice(), []byte("hi")))
	assert.Panics(t, func() {
		q.Advance(3)
	})
}

func TestRoomCompactsAfterAdvance(t *testing.T) {
	q := New(8)
	q.Append(copy(q.WriteSlice(), []byte("abcdef")))
	q.Advance(4)
	require.Equal(t, 2, q.Len())

	room := q.Room()
	assert.Equal(t, 6, room)
	assert.Equal(t, []byte("ef"), q.Peek())

	n := copy(q.WriteSlice(), []byte("ghijkl"))
	assert.Equal(t, 6, n)
	q.Append(n)
	assert.Equal(t, 8, q.Len())
	assert.Equal(t, []byte("efghijkl"), q.Peek())
}

func TestRoomWithoutPendingAdvanceDoesNotMove(t *testing.T) {
	q := New(8)
	q.Append(copy(q.WriteSlice(), []byte("ab")))
	before := q.Peek()
	room := q.Room()
	assert.Equal(t, 6, room)
	assert.Equal(t, before, q.Peek())
}

func TestRefillsAfterCompactionAcrossMultipleRounds(t *testing.T) {
	q := New(4)
	q.Append(copy(q.WriteSlice(), []byte("ab")))
	q.Advance(1)
	q.Room()
	q.Append(copy(q.WriteSlice(), []byte("cd")))
	assert.Equal(t, 3, q.Len())
	assert.Equal(t, []byte("bcd"), q.Peek())
}
