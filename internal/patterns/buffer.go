// internal/patterns/buffer.go

package patterns

import "sync"

// DefaultBufferCapacity is the number of interactions and success patterns
// retained in memory.
const DefaultBufferCapacity = 1000

// RingBuffer is a fixed-size FIFO. Once full, every Add overwrites the oldest
// item. It is safe for concurrent use; reads return a copy.
type RingBuffer[T any] struct {
	mu    sync.RWMutex
	items []T
	pos   int
	count int
}

func NewRingBuffer[T any](capacity int) *RingBuffer[T] {
	if capacity <= 0 {
		capacity = DefaultBufferCapacity
	}
	return &RingBuffer[T]{items: make([]T, capacity)}
}

// Add appends an item, evicting the oldest when the buffer is full.
func (b *RingBuffer[T]) Add(item T) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.items[b.pos] = item
	b.pos = (b.pos + 1) % len(b.items)
	if b.count < len(b.items) {
		b.count++
	}
}

// Snapshot returns the buffered items oldest first.
func (b *RingBuffer[T]) Snapshot() []T {
	b.mu.RLock()
	defer b.mu.RUnlock()

	size := len(b.items)
	out := make([]T, b.count)
	start := (b.pos - b.count + size) % size
	for i := 0; i < b.count; i++ {
		out[i] = b.items[(start+i)%size]
	}
	return out
}

func (b *RingBuffer[T]) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.count
}

func (b *RingBuffer[T]) Cap() int {
	return len(b.items)
}
