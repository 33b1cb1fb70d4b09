package physics

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestCollisionPolicy(t *testing.T) {
	tests := []struct {
		a, b Category
		want bool
	}{
		{CategoryTerrain, CategoryTerrain, false},
		{CategoryTerrain, CategoryVehicle, true},
		{CategoryTerrain, CategoryProjectile, true},
		{CategoryVehicle, CategoryVehicle, true},
		{CategoryVehicle, CategoryProjectile, false},
		{CategoryProp, CategoryProjectile, true},
		{CategoryProp, CategoryProp, true},
	}
	for _, tt := range tests {
		got := Collides(tt.a, MaskFor(tt.a), tt.b, MaskFor(tt.b))
		if got != tt.want {
			t.Errorf("Collides(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
		if rev := Collides(tt.b, MaskFor(tt.b), tt.a, MaskFor(tt.a)); rev != got {
			t.Errorf("Collides not symmetric for %v/%v", tt.a, tt.b)
		}
	}
}

func TestPolicyTableSymmetric(t *testing.T) {
	for a, maskA := range collisionPolicy {
		for b, maskB := range collisionPolicy {
			if (maskA&b != 0) != (maskB&a != 0) {
				t.Errorf("policy asymmetric between %v and %v", a, b)
			}
		}
	}
}

func TestCategoryString(t *testing.T) {
	tests := []struct {
		c    Category
		want string
	}{
		{CategoryNone, "none"},
		{CategoryTerrain, "terrain"},
		{CategoryTerrain | CategoryProp, "terrain|prop"},
	}
	for _, tt := range tests {
		if got := tt.c.String(); got != tt.want {
			t.Errorf("Category(%d).String() = %q, want %q", tt.c, got, tt.want)
		}
	}
}

func TestShapeValidation(t *testing.T) {
	heap := NewHeap(0)
	p, _ := heap.Malloc(4)

	shapes := []struct {
		name string
		s    Shape
		ok   bool
	}{
		{"box", Box{HalfExtents: mgl32.Vec3{1, 2, 3}}, true},
		{"flat box", Box{HalfExtents: mgl32.Vec3{1, 0, 3}}, false},
		{"cylinder", Cylinder{Radius: 1, HalfHeight: 0.5}, true},
		{"zero cylinder", Cylinder{}, false},
		{"heightfield", HeightField{Columns: 2, Rows: 2, CellSize: 1, Data: p}, true},
		{"short buffer", HeightField{Columns: 3, Rows: 3, CellSize: 1, Data: p}, false},
		{"dangling", HeightField{Columns: 2, Rows: 2, CellSize: 1, Data: p + 100}, false},
	}
	for _, tt := range shapes {
		cs, err := tt.s.ToCollisionShape(heap)
		if (err == nil) != tt.ok {
			t.Errorf("%s: err = %v, want ok=%v", tt.name, err, tt.ok)
			continue
		}
		if tt.ok && cs == nil {
			t.Errorf("%s: nil collision shape", tt.name)
		}
	}
}
