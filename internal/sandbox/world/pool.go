package world

import (
	"errors"
	"fmt"
	"sync"

	"github.com/OCharnyshevich/flightsim/internal/sandbox/physics"
)

// ErrAllocation is returned when a height-field buffer cannot be obtained.
var ErrAllocation = errors.New("height-field buffer allocation failed")

// Buffer is a block of floats in the physics heap.
type Buffer struct {
	Ptr physics.Ptr
	Len int
}

// BufferPool hands out fixed-size heap buffers and keeps released ones for
// reuse instead of freeing them. The heap only grows while the pool has no
// idle buffer of the requested size; nothing is freed until Close.
type BufferPool struct {
	mu   sync.Mutex
	heap *physics.Heap
	idle map[int][]Buffer

	inUse     int
	allocated int
	reused    int
}

// PoolStats is a snapshot of pool bookkeeping.
type PoolStats struct {
	Idle      int // buffers waiting for reuse
	InUse     int // buffers handed out and not yet released
	Allocated int // heap allocations made by the pool
	Reused    int // acquisitions served from the idle list
}

// NewBufferPool creates a pool over heap.
func NewBufferPool(heap *physics.Heap) *BufferPool {
	return &BufferPool{
		heap: heap,
		idle: make(map[int][]Buffer),
	}
}

// Acquire returns a buffer of n floats, recycling an idle one if possible.
// The contents of a recycled buffer are stale; callers overwrite them.
func (p *BufferPool) Acquire(n int) (Buffer, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if list := p.idle[n]; len(list) > 0 {
		b := list[len(list)-1]
		p.idle[n] = list[:len(list)-1]
		p.inUse++
		p.reused++
		return b, nil
	}

	ptr, err := p.heap.Malloc(n)
	if err != nil {
		return Buffer{}, fmt.Errorf("%w: %w", ErrAllocation, err)
	}
	p.inUse++
	p.allocated++
	return Buffer{Ptr: ptr, Len: n}, nil
}

// Release returns b to the pool. The zero Buffer is ignored.
func (p *BufferPool) Release(b Buffer) {
	if b.Ptr == 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.idle[b.Len] = append(p.idle[b.Len], b)
	p.inUse--
}

// Floats returns the heap memory behind b.
func (p *BufferPool) Floats(b Buffer) ([]float32, error) {
	return p.heap.Floats(b.Ptr)
}

// Close frees every idle buffer back to the heap. Buffers still in use are
// left alone.
func (p *BufferPool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var errs []error
	for n, list := range p.idle {
		for _, b := range list {
			if err := p.heap.Free(b.Ptr); err != nil {
				errs = append(errs, err)
			}
		}
		delete(p.idle, n)
	}
	return errors.Join(errs...)
}

// Stats returns current pool bookkeeping.
func (p *BufferPool) Stats() PoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()

	idle := 0
	for _, list := range p.idle {
		idle += len(list)
	}
	return PoolStats{
		Idle:      idle,
		InUse:     p.inUse,
		Allocated: p.allocated,
		Reused:    p.reused,
	}
}
