package render

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Material is the flat-shaded surface description of a mesh.
type Material struct {
	Color       uint32 // 0xRRGGBB
	Opacity     float32
	Transparent bool
}

// Mesh is an indexed triangle mesh with a model transform.
type Mesh struct {
	name      string
	Transform mgl32.Mat4
	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3
	Indices   []uint32
	Material  Material

	disposed bool
}

// Name implements Renderable.
func (m *Mesh) Name() string { return m.name }

// Dispose drops the vertex data.
func (m *Mesh) Dispose() {
	if m.disposed {
		return
	}
	m.Positions = nil
	m.Normals = nil
	m.Indices = nil
	m.disposed = true
}

// Disposed reports whether Dispose has run.
func (m *Mesh) Disposed() bool { return m.disposed }

// Origin returns the translation part of the model transform.
func (m *Mesh) Origin() mgl32.Vec3 {
	return m.Transform.Col(3).Vec3()
}

// NewGridMesh builds a (segments+1)² vertex grid lying in the XZ plane,
// spanning [0, size] on both axes in local space and translated to origin.
// heights holds one Y value per vertex in row-major order (row = z); nil
// means flat.
func NewGridMesh(name string, origin mgl32.Vec3, size float32, segments int, heights []float32, mat Material) (*Mesh, error) {
	if segments < 1 {
		return nil, fmt.Errorf("grid mesh %s: segments %d < 1", name, segments)
	}
	stride := segments + 1
	if heights != nil && len(heights) != stride*stride {
		return nil, fmt.Errorf("grid mesh %s: %d heights for %d vertices", name, len(heights), stride*stride)
	}

	step := size / float32(segments)
	positions := make([]mgl32.Vec3, stride*stride)
	for j := 0; j < stride; j++ {
		for i := 0; i < stride; i++ {
			var y float32
			if heights != nil {
				y = heights[j*stride+i]
			}
			positions[j*stride+i] = mgl32.Vec3{float32(i) * step, y, float32(j) * step}
		}
	}

	indices := make([]uint32, 0, segments*segments*6)
	for j := 0; j < segments; j++ {
		for i := 0; i < segments; i++ {
			a := uint32(j*stride + i)
			b := a + 1
			c := a + uint32(stride)
			d := c + 1
			// Counter-clockwise seen from +Y.
			indices = append(indices, a, c, b, b, c, d)
		}
	}

	m := &Mesh{
		name:      name,
		Transform: mgl32.Translate3D(origin.X(), origin.Y(), origin.Z()),
		Positions: positions,
		Indices:   indices,
		Material:  mat,
	}
	m.computeVertexNormals()
	return m, nil
}

// computeVertexNormals averages face normals into per-vertex normals.
func (m *Mesh) computeVertexNormals() {
	normals := make([]mgl32.Vec3, len(m.Positions))
	for k := 0; k+2 < len(m.Indices); k += 3 {
		ia, ib, ic := m.Indices[k], m.Indices[k+1], m.Indices[k+2]
		pa, pb, pc := m.Positions[ia], m.Positions[ib], m.Positions[ic]
		n := pb.Sub(pa).Cross(pc.Sub(pa))
		normals[ia] = normals[ia].Add(n)
		normals[ib] = normals[ib].Add(n)
		normals[ic] = normals[ic].Add(n)
	}
	for i, n := range normals {
		if n.LenSqr() > 0 {
			normals[i] = n.Normalize()
		} else {
			normals[i] = mgl32.Vec3{0, 1, 0}
		}
	}
	m.Normals = normals
}
