package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueue_Push(t *testing.T) {
	assert := assert.New(t)

	q := &Queue{}
	assert.True(q.Empty())

	q.Push(0x12345678)
	assert.False(q.Empty())
	assert.Equal(1, q.Len())
	assert.Equal(int64(0x12345678), q.Data[0])

	q.Push(1, 2, 3)
	assert.Equal(4, q.Len())
}

func TestQueue_Pop(t *testing.T) {
	assert := assert.New(t)

	q := NewQueue(0x12345678, -1)

	val, ok := q.Pop()
	assert.True(ok)
	assert.Equal(int64(0x12345678), val)
	assert.Equal(1, q.Len())

	val, ok = q.Pop()
	assert.True(ok)
	assert.Equal(int64(-1), val)
	assert.Equal(0, q.Len())
}

func TestQueue_Pop_Empty(t *testing.T) {
	assert := assert.New(t)

	q := &Queue{}
	val, ok := q.Pop()
	assert.False(ok)
	assert.Equal(int64(0), val)
}

func TestQueue_Peek(t *testing.T) {
	assert := assert.New(t)

	q := NewQueue(7, 8)

	val, ok := q.Peek()
	assert.True(ok)
	assert.Equal(int64(7), val)
	assert.Equal(2, q.Len())
}

func TestQueue_Peek_Empty(t *testing.T) {
	assert := assert.New(t)

	q := &Queue{}
	val, ok := q.Peek()
	assert.False(ok)
	assert.Equal(int64(0), val)
}

func TestQueue_Reset(t *testing.T) {
	assert := assert.New(t)

	q := NewQueue(1, 2)
	q.Reset()
	assert.True(q.Empty())
	assert.Equal(0, q.Len())

	q = &Queue{}
	q.Reset()
	assert.True(q.Empty())
}
