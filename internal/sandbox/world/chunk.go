package world

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/OCharnyshevich/flightsim/internal/sandbox/physics"
	"github.com/OCharnyshevich/flightsim/internal/sandbox/render"
	"github.com/OCharnyshevich/flightsim/internal/sandbox/world/gen"
)

// terrainColor is the base green every tile is tinted around.
const terrainColor = 0x004000

// Coord identifies a chunk slot on the infinite grid.
type Coord struct {
	X int `json:"x"`
	Z int `json:"z"`
}

func (c Coord) String() string { return fmt.Sprintf("(%d,%d)", c.X, c.Z) }

// Origin returns the min corner of the chunk at c. Chunk c is centred on
// (c.X*size, c.Z*size).
func (c Coord) Origin(size float64) (x, z float64) {
	return (float64(c.X) - 0.5) * size, (float64(c.Z) - 0.5) * size
}

// Chunk is one terrain tile: a render mesh, an optional water plane, and a
// static height-field body, all created and torn down together.
type Chunk struct {
	w        *World
	coord    Coord
	originX  float64
	originZ  float64
	size     float64
	segments int
	minY     float32
	maxY     float32

	terrain *render.Mesh
	water   *render.Mesh
	body    *physics.Body
	buffer  Buffer

	destroyed bool
}

// NewChunk builds a chunk at coord from hm. The collision body is
// registered before any mesh reaches the scene; if it cannot be, nothing
// is left behind and the error is returned.
func NewChunk(w *World, coord Coord, hm *gen.Heightmap) (*Chunk, error) {
	c := &Chunk{
		w:        w,
		coord:    coord,
		originX:  hm.OriginX(),
		originZ:  hm.OriginZ(),
		size:     hm.Size(),
		segments: hm.Segments(),
	}
	c.minY, c.maxY = hm.MinMax()

	if err := c.buildCollision(hm); err != nil {
		return nil, fmt.Errorf("create chunk %v: %w", coord, err)
	}
	if err := c.buildMeshes(hm); err != nil {
		c.releaseCollision()
		return nil, fmt.Errorf("create chunk %v: %w", coord, err)
	}

	w.Scene.Add(c.terrain)
	if c.water != nil {
		w.Scene.Add(c.water)
	}
	return c, nil
}

func (c *Chunk) buildCollision(hm *gen.Heightmap) error {
	buf, err := c.w.Buffers.Acquire(hm.Len())
	if err != nil {
		return err
	}
	dst, err := c.w.Buffers.Floats(buf)
	if err != nil {
		c.w.Buffers.Release(buf)
		return fmt.Errorf("map height-field buffer: %w", err)
	}
	hm.CopyTo(dst)

	shape, err := physics.HeightField{
		Columns:   hm.Stride(),
		Rows:      hm.Stride(),
		CellSize:  float32(c.size / float64(c.segments)),
		MinHeight: c.minY,
		MaxHeight: c.maxY,
		Data:      buf.Ptr,
	}.ToCollisionShape(c.w.Physics.Heap())
	if err != nil {
		c.w.Buffers.Release(buf)
		return err
	}

	half := c.size / 2
	body := physics.NewRigidBody(shape, 0, mgl32.Vec3{float32(c.originX + half), 0, float32(c.originZ + half)})
	if err := c.w.Physics.AddRigidBody(body, physics.CategoryTerrain, physics.MaskFor(physics.CategoryTerrain)); err != nil {
		c.w.Buffers.Release(buf)
		return err
	}

	c.body = body
	c.buffer = buf
	return nil
}

func (c *Chunk) buildMeshes(hm *gen.Heightmap) error {
	origin := mgl32.Vec3{float32(c.originX), 0, float32(c.originZ)}
	name := fmt.Sprintf("terrain%v", c.coord)

	terrain, err := render.NewGridMesh(name, origin, float32(c.size), c.segments, hm.Values(), render.Material{
		Color:   c.tint(),
		Opacity: 1,
	})
	if err != nil {
		return err
	}
	c.terrain = terrain

	if !c.w.Water.Enabled {
		return nil
	}
	waterOrigin := mgl32.Vec3{origin.X(), c.w.Water.Level, origin.Z()}
	water, err := render.NewGridMesh(fmt.Sprintf("water%v", c.coord), waterOrigin, float32(c.size), 1, nil, render.Material{
		Color:       c.w.Water.Color,
		Opacity:     c.w.Water.Opacity,
		Transparent: c.w.Water.Opacity < 1,
	})
	if err != nil {
		c.terrain.Dispose()
		c.terrain = nil
		return err
	}
	c.water = water
	return nil
}

// tint varies the green channel of the base terrain colour per chunk.
func (c *Chunk) tint() uint32 {
	seq := gen.ChunkSequence(c.w.Seed, c.coord.X, c.coord.Z)
	g := int(terrainColor>>8&0xff) + int(seq.Range(-16, 16))
	return uint32(g&0xff) << 8
}

// releaseCollision removes the body, then hands its buffer back to the
// pool. The order matters: the engine may read the buffer for as long as
// the body is registered.
func (c *Chunk) releaseCollision() {
	if c.body != nil {
		if err := c.w.Physics.RemoveRigidBody(c.body); err != nil {
			c.w.Log.Warn("remove terrain body", "chunk", c.coord.String(), "error", err)
		}
		c.body = nil
	}
	c.w.Buffers.Release(c.buffer)
	c.buffer = Buffer{}
}

// Destroy tears the chunk down. Calls after the first are no-ops.
func (c *Chunk) Destroy() {
	if c.destroyed {
		return
	}
	c.destroyed = true

	c.releaseCollision()
	for _, m := range []*render.Mesh{c.terrain, c.water} {
		if m == nil {
			continue
		}
		c.w.Scene.Remove(m)
		m.Dispose()
	}
	c.terrain = nil
	c.water = nil
}

// Coord returns the chunk's grid coordinate.
func (c *Chunk) Coord() Coord { return c.coord }

// Origin returns the world x/z of the chunk's min corner.
func (c *Chunk) Origin() (x, z float64) { return c.originX, c.originZ }

// Size returns the chunk edge length.
func (c *Chunk) Size() float64 { return c.size }

// Segments returns the number of cells along one edge.
func (c *Chunk) Segments() int { return c.segments }

// HeightRange returns the lowest and highest sample of the chunk.
func (c *Chunk) HeightRange() (lo, hi float32) { return c.minY, c.maxY }

// Destroyed reports whether Destroy has run.
func (c *Chunk) Destroyed() bool { return c.destroyed }
