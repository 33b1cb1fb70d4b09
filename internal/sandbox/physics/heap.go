package physics

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrOutOfMemory is returned when the native heap cannot satisfy an allocation.
	ErrOutOfMemory = errors.New("native heap exhausted")
	// ErrInvalidFree is returned when freeing a pointer that is not live.
	ErrInvalidFree = errors.New("free of unallocated pointer")
)

// Ptr addresses a block in the engine's native heap. Zero is never valid.
type Ptr uint64

// Heap is the engine-side address space that height-field shapes read
// their samples from. Blocks are float32 arrays that must be released
// explicitly with Free.
type Heap struct {
	mu       sync.Mutex
	capacity int // in floats, 0 = unbounded
	used     int
	next     Ptr
	blocks   map[Ptr][]float32

	allocs int
	frees  int
}

// HeapStats is a snapshot of heap bookkeeping.
type HeapStats struct {
	Capacity int // floats, 0 = unbounded
	Used     int // floats currently allocated
	Live     int // live blocks
	Allocs   int // lifetime Malloc count
	Frees    int // lifetime Free count
}

// NewHeap creates a heap holding at most capacity floats (0 = unbounded).
func NewHeap(capacity int) *Heap {
	return &Heap{
		capacity: capacity,
		next:     1,
		blocks:   make(map[Ptr][]float32),
	}
}

// Malloc allocates a zeroed block of n floats.
func (h *Heap) Malloc(n int) (Ptr, error) {
	if n <= 0 {
		return 0, fmt.Errorf("malloc %d floats: invalid size", n)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.capacity > 0 && h.used+n > h.capacity {
		return 0, fmt.Errorf("malloc %d floats (%d/%d used): %w", n, h.used, h.capacity, ErrOutOfMemory)
	}

	p := h.next
	h.next++
	h.blocks[p] = make([]float32, n)
	h.used += n
	h.allocs++
	return p, nil
}

// Free releases a block.
func (h *Heap) Free(p Ptr) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	b, ok := h.blocks[p]
	if !ok {
		return fmt.Errorf("free %#x: %w", uint64(p), ErrInvalidFree)
	}
	delete(h.blocks, p)
	h.used -= len(b)
	h.frees++
	return nil
}

// Floats returns the live block at p. The slice aliases heap memory.
func (h *Heap) Floats(p Ptr) ([]float32, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	b, ok := h.blocks[p]
	if !ok {
		return nil, fmt.Errorf("read %#x: %w", uint64(p), ErrInvalidFree)
	}
	return b, nil
}

// Grow raises the capacity by n floats, the way an engine heap is enlarged
// after running out. It does nothing on an unbounded heap.
func (h *Heap) Grow(n int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.capacity > 0 && n > 0 {
		h.capacity += n
	}
}

// Stats returns current heap bookkeeping.
func (h *Heap) Stats() HeapStats {
	h.mu.Lock()
	defer h.mu.Unlock()
	return HeapStats{
		Capacity: h.capacity,
		Used:     h.used,
		Live:     len(h.blocks),
		Allocs:   h.allocs,
		Frees:    h.frees,
	}
}
