package render

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestGridMeshLayout(t *testing.T) {
	heights := []float32{0, 1, 2, 3, 4, 5, 6, 7, 8}
	m, err := NewGridMesh("tile", mgl32.Vec3{-15, 0, 30}, 30, 2, heights, Material{Color: 0x004000, Opacity: 1})
	if err != nil {
		t.Fatal(err)
	}

	if len(m.Positions) != 9 {
		t.Errorf("len(Positions) = %d, want 9", len(m.Positions))
	}
	if len(m.Indices) != 2*2*6 {
		t.Errorf("len(Indices) = %d, want 24", len(m.Indices))
	}
	if len(m.Normals) != len(m.Positions) {
		t.Errorf("len(Normals) = %d, want %d", len(m.Normals), len(m.Positions))
	}
	for i, h := range heights {
		if got := m.Positions[i].Y(); got != h {
			t.Errorf("Positions[%d].Y = %v, want %v", i, got, h)
		}
	}
	if got := m.Positions[8]; got != (mgl32.Vec3{30, 8, 30}) {
		t.Errorf("far corner = %v, want [30 8 30]", got)
	}
	if got := m.Origin(); got != (mgl32.Vec3{-15, 0, 30}) {
		t.Errorf("Origin = %v", got)
	}
}

func TestGridMeshFlatNormalsPointUp(t *testing.T) {
	m, err := NewGridMesh("water", mgl32.Vec3{}, 10, 3, nil, Material{})
	if err != nil {
		t.Fatal(err)
	}
	up := mgl32.Vec3{0, 1, 0}
	for i, n := range m.Normals {
		if !n.ApproxEqual(up) {
			t.Fatalf("Normals[%d] = %v, want %v", i, n, up)
		}
	}
}

func TestGridMeshRejectsBadInput(t *testing.T) {
	if _, err := NewGridMesh("x", mgl32.Vec3{}, 10, 0, nil, Material{}); err == nil {
		t.Error("segments 0 should fail")
	}
	if _, err := NewGridMesh("x", mgl32.Vec3{}, 10, 2, make([]float32, 4), Material{}); err == nil {
		t.Error("wrong height count should fail")
	}
}

func TestMeshDisposeIdempotent(t *testing.T) {
	m, _ := NewGridMesh("tile", mgl32.Vec3{}, 10, 1, nil, Material{})
	m.Dispose()
	m.Dispose()
	if !m.Disposed() || m.Positions != nil {
		t.Error("mesh should be disposed")
	}
}

func TestGraphAddRemove(t *testing.T) {
	g := NewGraph()
	m, _ := NewGridMesh("tile", mgl32.Vec3{}, 10, 1, nil, Material{})

	g.Add(m)
	g.Add(m)
	if g.Len() != 1 || !g.Contains(m) {
		t.Errorf("Len = %d, want 1", g.Len())
	}
	g.Remove(m)
	g.Remove(m)
	if g.Len() != 0 || g.Contains(m) {
		t.Errorf("Len after remove = %d, want 0", g.Len())
	}
}
