package world

import (
	"log/slog"

	"github.com/OCharnyshevich/flightsim/internal/sandbox/physics"
	"github.com/OCharnyshevich/flightsim/internal/sandbox/render"
)

// Water describes the optional translucent plane added to every chunk.
type Water struct {
	Enabled bool
	Level   float32
	Color   uint32
	Opacity float32
}

// World bundles the collaborators terrain chunks need: where meshes go,
// where collision bodies go, and where height-field memory comes from.
// It is built once at startup and shared by reference.
type World struct {
	Scene   render.Scene
	Physics physics.World
	Buffers *BufferPool
	Log     *slog.Logger

	// Seed drives cosmetic per-chunk variation.
	Seed  int64
	Water Water
}

// NewWorld creates a World whose buffer pool draws from the physics heap.
func NewWorld(scene render.Scene, phys physics.World, seed int64, log *slog.Logger) *World {
	return &World{
		Scene:   scene,
		Physics: phys,
		Buffers: NewBufferPool(phys.Heap()),
		Log:     log,
		Seed:    seed,
		Water:   Water{Color: 0x0000ff, Opacity: 0.5},
	}
}
