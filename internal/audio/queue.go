package audio

import "sync"

// defaultQueueCapacity bounds the chunk FIFO. At the default chunk size
// this is roughly twelve seconds of buffered audio; a consumer that far
// behind is dropping frames anyway.
const defaultQueueCapacity = 256

// chunkQueue is a bounded FIFO of chunks shared between one producer and
// one consumer context. The lock is held only for the append/pop itself,
// never across decoding or processing. When the queue is full the oldest
// chunk is dropped so latency stays bounded instead of growing without
// limit.
type chunkQueue struct {
	mu       sync.Mutex
	chunks   []*Chunk
	capacity int
	dropped  uint64
}

func newChunkQueue(capacity int) *chunkQueue {
	if capacity <= 0 {
		capacity = defaultQueueCapacity
	}
	return &chunkQueue{capacity: capacity}
}

// push appends a chunk, dropping the oldest entry when full. It reports
// whether a chunk was dropped so the caller can log outside the lock.
func (q *chunkQueue) push(c *Chunk) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	var droppedOne bool
	if len(q.chunks) >= q.capacity {
		copy(q.chunks, q.chunks[1:])
		q.chunks = q.chunks[:len(q.chunks)-1]
		q.dropped++
		droppedOne = true
	}
	q.chunks = append(q.chunks, c)
	return droppedOne
}

// pop removes and returns the oldest chunk, or nil when empty.
func (q *chunkQueue) pop() *Chunk {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.chunks) == 0 {
		return nil
	}
	c := q.chunks[0]
	q.chunks[0] = nil
	q.chunks = q.chunks[1:]
	return c
}

// len returns the number of buffered chunks.
func (q *chunkQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.chunks)
}

// droppedCount returns how many chunks have been dropped since creation.
func (q *chunkQueue) droppedCount() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropped
}

// reset discards all buffered chunks.
func (q *chunkQueue) reset() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.chunks = nil
}
