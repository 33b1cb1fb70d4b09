package world

import (
	"io"
	"log/slog"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OCharnyshevich/flightsim/internal/sandbox/physics"
	"github.com/OCharnyshevich/flightsim/internal/sandbox/render"
)

const testSeed = 69420

type testEnv struct {
	world   *World
	heap    *physics.Heap
	physics *physics.DiscreteWorld
	scene   *render.Graph
}

func newTestEnv(t *testing.T, heapFloats int) *testEnv {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	heap := physics.NewHeap(heapFloats)
	phys := physics.NewDiscreteWorld(heap, mgl32.Vec3{0, -10, 0}, log)
	scene := render.NewGraph()
	return &testEnv{
		world:   NewWorld(scene, phys, testSeed, log),
		heap:    heap,
		physics: phys,
		scene:   scene,
	}
}

func TestBufferPoolRecycles(t *testing.T) {
	env := newTestEnv(t, 0)
	pool := env.world.Buffers

	a, err := pool.Acquire(9)
	require.NoError(t, err)
	b, err := pool.Acquire(9)
	require.NoError(t, err)
	assert.NotEqual(t, a.Ptr, b.Ptr)

	pool.Release(a)
	c, err := pool.Acquire(9)
	require.NoError(t, err)
	assert.Equal(t, a, c, "released buffer should be handed out again")

	d, err := pool.Acquire(16)
	require.NoError(t, err)
	assert.NotEqual(t, a.Ptr, d.Ptr, "sizes are pooled separately")

	s := pool.Stats()
	assert.Equal(t, PoolStats{Idle: 0, InUse: 3, Allocated: 3, Reused: 1}, s)
	assert.Equal(t, 3, env.heap.Stats().Live)

	pool.Release(Buffer{})
	assert.Equal(t, 3, pool.Stats().InUse, "zero buffer is ignored")
}

func TestBufferPoolClose(t *testing.T) {
	env := newTestEnv(t, 0)
	pool := env.world.Buffers

	a, err := pool.Acquire(9)
	require.NoError(t, err)
	b, err := pool.Acquire(9)
	require.NoError(t, err)
	pool.Release(a)

	require.NoError(t, pool.Close())
	assert.Equal(t, 1, env.heap.Stats().Live, "only the in-use buffer stays live")
	assert.Zero(t, pool.Stats().Idle)

	_, err = pool.Floats(b)
	assert.NoError(t, err)
	_, err = pool.Floats(a)
	assert.ErrorIs(t, err, physics.ErrInvalidFree)
}

func TestBufferPoolAllocationFailure(t *testing.T) {
	env := newTestEnv(t, 8)

	_, err := env.world.Buffers.Acquire(9)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAllocation)
	assert.ErrorIs(t, err, physics.ErrOutOfMemory)
	assert.Zero(t, env.world.Buffers.Stats().InUse)
}
