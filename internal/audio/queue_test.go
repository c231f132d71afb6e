package audio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testChunk(marker int16) *Chunk {
	return &Chunk{
		Samples:    []int16{marker},
		SampleRate: 16000,
		Channels:   1,
		Timestamp:  time.Now(),
	}
}

func TestChunkQueue_FIFOOrder(t *testing.T) {
	q := newChunkQueue(8)

	for i := int16(0); i < 5; i++ {
		assert.False(t, q.push(testChunk(i)))
	}
	assert.Equal(t, 5, q.len())

	for i := int16(0); i < 5; i++ {
		chunk := q.pop()
		require.NotNil(t, chunk)
		assert.Equal(t, i, chunk.Samples[0])
	}
	assert.Nil(t, q.pop(), "empty queue pops nil without blocking")
}

func TestChunkQueue_DropOldestAtCapacity(t *testing.T) {
	q := newChunkQueue(3)

	assert.False(t, q.push(testChunk(0)))
	assert.False(t, q.push(testChunk(1)))
	assert.False(t, q.push(testChunk(2)))

	// Capacity reached, oldest entry is evicted to admit the new one.
	assert.True(t, q.push(testChunk(3)))
	assert.Equal(t, 3, q.len())
	assert.Equal(t, uint64(1), q.droppedCount())

	chunk := q.pop()
	require.NotNil(t, chunk)
	assert.Equal(t, int16(1), chunk.Samples[0], "chunk 0 was evicted")
}

func TestChunkQueue_Reset(t *testing.T) {
	q := newChunkQueue(4)
	q.push(testChunk(0))
	q.push(testChunk(1))

	q.reset()
	assert.Zero(t, q.len())
	assert.Nil(t, q.pop())
}

func TestChunkQueue_DefaultCapacity(t *testing.T) {
	q := newChunkQueue(0)
	for i := 0; i < defaultQueueCapacity; i++ {
		assert.False(t, q.push(testChunk(int16(i%100))))
	}
	assert.True(t, q.push(testChunk(0)), "capacity defaults when zero is given")
}
