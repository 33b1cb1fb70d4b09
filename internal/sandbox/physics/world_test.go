package physics

import (
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// flatField allocates a cols×rows height field filled with h.
func flatField(t *testing.T, heap *Heap, cols, rows int, cell, h float32) *CollisionShape {
	t.Helper()
	p, err := heap.Malloc(cols * rows)
	if err != nil {
		t.Fatal(err)
	}
	buf, _ := heap.Floats(p)
	for i := range buf {
		buf[i] = h
	}
	shape, err := HeightField{Columns: cols, Rows: rows, CellSize: cell, MinHeight: h, MaxHeight: h, Data: p}.ToCollisionShape(heap)
	if err != nil {
		t.Fatal(err)
	}
	return shape
}

func TestAddRemoveRigidBody(t *testing.T) {
	heap := NewHeap(0)
	w := NewDiscreteWorld(heap, mgl32.Vec3{0, -10, 0}, testLogger())

	shape, _ := Box{HalfExtents: mgl32.Vec3{1, 1, 1}}.ToCollisionShape(heap)
	b := NewRigidBody(shape, 1, mgl32.Vec3{})

	if err := w.AddRigidBody(b, CategoryVehicle, MaskFor(CategoryVehicle)); err != nil {
		t.Fatal(err)
	}
	if !b.InWorld() || !w.Contains(b) {
		t.Error("body should be in world after add")
	}
	if b.Group() != CategoryVehicle || b.Mask() != MaskFor(CategoryVehicle) {
		t.Errorf("group/mask = %v/%v", b.Group(), b.Mask())
	}
	if err := w.AddRigidBody(b, CategoryVehicle, 0); !errors.Is(err, ErrAlreadyInWorld) {
		t.Errorf("second add err = %v, want ErrAlreadyInWorld", err)
	}

	if err := w.RemoveRigidBody(b); err != nil {
		t.Fatal(err)
	}
	if err := w.RemoveRigidBody(b); !errors.Is(err, ErrNotInWorld) {
		t.Errorf("second remove err = %v, want ErrNotInWorld", err)
	}
	if w.NumBodies() != 0 {
		t.Errorf("NumBodies = %d, want 0", w.NumBodies())
	}
}

func TestBodyRestsOnHeightField(t *testing.T) {
	heap := NewHeap(0)
	w := NewDiscreteWorld(heap, mgl32.Vec3{0, -10, 0}, testLogger())

	ground := NewRigidBody(flatField(t, heap, 3, 3, 15, 5), 0, mgl32.Vec3{0, 0, 0})
	if err := w.AddRigidBody(ground, CategoryTerrain, MaskFor(CategoryTerrain)); err != nil {
		t.Fatal(err)
	}

	boxShape, _ := Box{HalfExtents: mgl32.Vec3{1, 1, 1}}.ToCollisionShape(heap)
	box := NewRigidBody(boxShape, 1, mgl32.Vec3{2, 10, -3})
	if err := w.AddRigidBody(box, CategoryVehicle, MaskFor(CategoryVehicle)); err != nil {
		t.Fatal(err)
	}

	for range 180 {
		w.Step(1.0/60, 10)
	}
	if !box.OnGround() {
		t.Fatalf("box not on ground, at %v", box.Position)
	}
	if y := box.Position.Y(); math.Abs(float64(y-6)) > 1e-4 {
		t.Errorf("box y = %v, want 6", y)
	}
	if ground.Position != (mgl32.Vec3{}) {
		t.Errorf("static body moved to %v", ground.Position)
	}
}

func TestProjectileIgnoresVehicle(t *testing.T) {
	heap := NewHeap(0)
	w := NewDiscreteWorld(heap, mgl32.Vec3{0, -10, 0}, testLogger())

	// A static vehicle-category platform: projectiles must fall through it.
	platShape, _ := Box{HalfExtents: mgl32.Vec3{5, 1, 5}}.ToCollisionShape(heap)
	plat := NewRigidBody(platShape, 0, mgl32.Vec3{0, 0, 0})
	if err := w.AddRigidBody(plat, CategoryVehicle, MaskFor(CategoryVehicle)); err != nil {
		t.Fatal(err)
	}

	shotShape, _ := Cylinder{Radius: 0.2, HalfHeight: 0.5}.ToCollisionShape(heap)
	shot := NewRigidBody(shotShape, 0.1, mgl32.Vec3{0, 3, 0})
	if err := w.AddRigidBody(shot, CategoryProjectile, MaskFor(CategoryProjectile)); err != nil {
		t.Fatal(err)
	}

	for range 120 {
		w.Step(1.0/60, 10)
	}
	if shot.OnGround() || shot.Position.Y() > 0 {
		t.Errorf("projectile should pass through vehicle, at %v", shot.Position)
	}
}

func TestHeightAtInterpolates(t *testing.T) {
	heap := NewHeap(0)
	p, _ := heap.Malloc(4)
	buf, _ := heap.Floats(p)
	copy(buf, []float32{0, 2, 4, 6}) // row 0: 0,2  row 1: 4,6

	shape, err := HeightField{Columns: 2, Rows: 2, CellSize: 10, MinHeight: 0, MaxHeight: 6, Data: p}.ToCollisionShape(heap)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		x, z float32
		want float32
		ok   bool
	}{
		{-5, -5, 0, true},
		{5, -5, 2, true},
		{-5, 5, 4, true},
		{5, 5, 6, true},
		{0, 0, 3, true},
		{6, 0, 0, false},
	}
	for _, tt := range tests {
		got, ok := shape.HeightAt(tt.x, tt.z)
		if ok != tt.ok || (ok && math.Abs(float64(got-tt.want)) > 1e-5) {
			t.Errorf("HeightAt(%v,%v) = %v,%v want %v,%v", tt.x, tt.z, got, ok, tt.want, tt.ok)
		}
	}

	// Freed backing memory makes the field unreadable.
	_ = heap.Free(p)
	if _, ok := shape.HeightAt(0, 0); ok {
		t.Error("HeightAt should fail after the buffer is freed")
	}
}

func TestGroundHeight(t *testing.T) {
	heap := NewHeap(0)
	w := NewDiscreteWorld(heap, mgl32.Vec3{0, -10, 0}, testLogger())

	tile := NewRigidBody(flatField(t, heap, 3, 3, 15, -2), 0, mgl32.Vec3{30, 1, 0})
	if err := w.AddRigidBody(tile, CategoryTerrain, MaskFor(CategoryTerrain)); err != nil {
		t.Fatal(err)
	}

	if h, ok := w.GroundHeight(35, 4, CategoryVehicle, MaskFor(CategoryVehicle)); !ok || h != -1 {
		t.Errorf("GroundHeight over tile = %v,%v want -1,true", h, ok)
	}
	if _, ok := w.GroundHeight(0, 0, CategoryVehicle, MaskFor(CategoryVehicle)); ok {
		t.Error("GroundHeight off tile should report no ground")
	}
	if _, ok := w.GroundHeight(35, 4, CategoryTerrain, MaskFor(CategoryTerrain)); ok {
		t.Error("terrain should not see other terrain")
	}
}
