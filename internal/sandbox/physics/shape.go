package physics

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// ShapeKind identifies the concrete collision shape.
type ShapeKind int

const (
	ShapeBox ShapeKind = iota
	ShapeCylinder
	ShapeHeightField
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeBox:
		return "box"
	case ShapeCylinder:
		return "cylinder"
	case ShapeHeightField:
		return "heightfield"
	default:
		return fmt.Sprintf("shape(%d)", int(k))
	}
}

// Shape is a collision shape description. The set of implementations is
// closed: Box, Cylinder and HeightField.
type Shape interface {
	// ToCollisionShape builds the engine-side shape. Height fields resolve
	// their sample buffer through heap.
	ToCollisionShape(heap *Heap) (*CollisionShape, error)
	sealed()
}

// Box is an axis-aligned box centred on its body.
type Box struct {
	HalfExtents mgl32.Vec3
}

// Cylinder is a Y-aligned cylinder centred on its body.
type Cylinder struct {
	Radius     float32
	HalfHeight float32
}

// HeightField is a static grid of heights stored in a native heap block.
// Samples are row-major with Columns samples along x and Rows along z,
// centred on the owning body in x and z. Heights are relative to the
// body's y.
type HeightField struct {
	Columns, Rows        int
	CellSize             float32
	MinHeight, MaxHeight float32
	Data                 Ptr
}

func (Box) sealed()         {}
func (Cylinder) sealed()    {}
func (HeightField) sealed() {}

// ToCollisionShape implements Shape.
func (s Box) ToCollisionShape(_ *Heap) (*CollisionShape, error) {
	if s.HalfExtents.X() <= 0 || s.HalfExtents.Y() <= 0 || s.HalfExtents.Z() <= 0 {
		return nil, fmt.Errorf("box shape: non-positive half extents %v", s.HalfExtents)
	}
	return &CollisionShape{Kind: ShapeBox, HalfExtents: s.HalfExtents}, nil
}

// ToCollisionShape implements Shape.
func (s Cylinder) ToCollisionShape(_ *Heap) (*CollisionShape, error) {
	if s.Radius <= 0 || s.HalfHeight <= 0 {
		return nil, fmt.Errorf("cylinder shape: radius %v half height %v", s.Radius, s.HalfHeight)
	}
	return &CollisionShape{
		Kind:        ShapeCylinder,
		HalfExtents: mgl32.Vec3{s.Radius, s.HalfHeight, s.Radius},
	}, nil
}

// ToCollisionShape implements Shape. The heap block at Data must hold at
// least Columns×Rows floats and stay allocated for the shape's lifetime.
func (s HeightField) ToCollisionShape(heap *Heap) (*CollisionShape, error) {
	if s.Columns < 2 || s.Rows < 2 {
		return nil, fmt.Errorf("heightfield shape: grid %dx%d too small", s.Columns, s.Rows)
	}
	if s.CellSize <= 0 {
		return nil, fmt.Errorf("heightfield shape: cell size %v", s.CellSize)
	}
	if heap == nil {
		return nil, fmt.Errorf("heightfield shape: no heap")
	}
	buf, err := heap.Floats(s.Data)
	if err != nil {
		return nil, fmt.Errorf("heightfield shape: %w", err)
	}
	if len(buf) < s.Columns*s.Rows {
		return nil, fmt.Errorf("heightfield shape: buffer holds %d floats, need %d", len(buf), s.Columns*s.Rows)
	}

	halfX := float32(s.Columns-1) * s.CellSize / 2
	halfZ := float32(s.Rows-1) * s.CellSize / 2
	halfY := float32(math.Max(math.Abs(float64(s.MinHeight)), math.Abs(float64(s.MaxHeight))))
	return &CollisionShape{
		Kind:        ShapeHeightField,
		HalfExtents: mgl32.Vec3{halfX, halfY, halfZ},
		field:       &fieldRef{heap: heap, shape: s},
	}, nil
}

// CollisionShape is the engine-side shape attached to a body.
type CollisionShape struct {
	Kind        ShapeKind
	HalfExtents mgl32.Vec3
	field       *fieldRef
}

type fieldRef struct {
	heap  *Heap
	shape HeightField
}

// HeightAt returns the interpolated height-field height at local (x, z).
// ok is false outside the grid or for non height-field shapes.
func (s *CollisionShape) HeightAt(x, z float32) (h float32, ok bool) {
	if s.field == nil {
		return 0, false
	}
	f := s.field.shape
	gx := (x + s.HalfExtents.X()) / f.CellSize
	gz := (z + s.HalfExtents.Z()) / f.CellSize
	maxX := float32(f.Columns - 1)
	maxZ := float32(f.Rows - 1)
	if gx < 0 || gz < 0 || gx > maxX || gz > maxZ {
		return 0, false
	}

	buf, err := s.field.heap.Floats(f.Data)
	if err != nil {
		return 0, false
	}

	i0 := int(gx)
	j0 := int(gz)
	if i0 == f.Columns-1 {
		i0--
	}
	if j0 == f.Rows-1 {
		j0--
	}
	tx := gx - float32(i0)
	tz := gz - float32(j0)

	at := func(i, j int) float32 { return buf[j*f.Columns+i] }
	h0 := at(i0, j0) + (at(i0+1, j0)-at(i0, j0))*tx
	h1 := at(i0, j0+1) + (at(i0+1, j0+1)-at(i0, j0+1))*tx
	return h0 + (h1-h0)*tz, true
}
