package gen

import (
	"math"
	"testing"
)

func TestBuildDimensions(t *testing.T) {
	b := NewBuilder(NewField(69420, 600, 40))

	tests := []struct {
		segments int
		want     int
	}{
		{1, 4},
		{2, 9},
		{16, 289},
	}
	for _, tt := range tests {
		hm, err := b.Build(0, 0, 30, tt.segments)
		if err != nil {
			t.Fatalf("Build(segments=%d): %v", tt.segments, err)
		}
		if hm.Len() != tt.want {
			t.Errorf("Build(segments=%d).Len() = %d, want %d", tt.segments, hm.Len(), tt.want)
		}
		if hm.Stride() != tt.segments+1 {
			t.Errorf("Build(segments=%d).Stride() = %d, want %d", tt.segments, hm.Stride(), tt.segments+1)
		}
	}
}

func TestBuildRejectsBadInput(t *testing.T) {
	b := NewBuilder(NewField(1, 600, 40))

	if _, err := b.Build(0, 0, 30, 0); err == nil {
		t.Error("Build with 0 segments should fail")
	}
	if _, err := b.Build(0, 0, 0, 4); err == nil {
		t.Error("Build with size 0 should fail")
	}
	if _, err := b.Build(0, 0, math.NaN(), 4); err == nil {
		t.Error("Build with NaN size should fail")
	}
}

func TestBuildMatchesField(t *testing.T) {
	f := NewField(5, 200, 25)
	b := NewBuilder(f)

	hm, err := b.Build(-45, 15, 30, 3)
	if err != nil {
		t.Fatal(err)
	}
	for j := 0; j < hm.Stride(); j++ {
		for i := 0; i < hm.Stride(); i++ {
			x := -45 + float64(i)*10
			z := 15 + float64(j)*10
			want := float32(f.Height(x, z))
			if got := hm.At(i, j); got != want {
				t.Errorf("At(%d,%d) = %v, want %v", i, j, got, want)
			}
		}
	}
}

func TestSeamContinuity(t *testing.T) {
	const size = 30.0
	b := NewBuilder(NewField(69420, 600, 40))

	for _, segments := range []int{2, 7, 16} {
		left, err := b.Build(0, 0, size, segments)
		if err != nil {
			t.Fatal(err)
		}
		right, err := b.Build(size, 0, size, segments)
		if err != nil {
			t.Fatal(err)
		}
		below, err := b.Build(0, size, size, segments)
		if err != nil {
			t.Fatal(err)
		}

		for k := 0; k <= segments; k++ {
			// Shared x = size edge.
			a, c := left.At(segments, k), right.At(0, k)
			if math.Abs(float64(a-c)) > 1e-6 {
				t.Errorf("segments=%d row %d: x-edge %v vs %v", segments, k, a, c)
			}
			// Shared z = size edge.
			a, c = left.At(k, segments), below.At(k, 0)
			if math.Abs(float64(a-c)) > 1e-6 {
				t.Errorf("segments=%d col %d: z-edge %v vs %v", segments, k, a, c)
			}
		}
	}
}

func TestSeamContinuityNegativeOrigins(t *testing.T) {
	const size = 30.0
	b := NewBuilder(NewField(3, 90, 12))

	// Chunks centred on coordinates -1 and 0.
	a, err := b.Build(-1.5*size, -0.5*size, size, 5)
	if err != nil {
		t.Fatal(err)
	}
	c, err := b.Build(-0.5*size, -0.5*size, size, 5)
	if err != nil {
		t.Fatal(err)
	}
	for k := 0; k <= 5; k++ {
		if d := math.Abs(float64(a.At(5, k) - c.At(0, k))); d > 1e-6 {
			t.Errorf("row %d differs by %v", k, d)
		}
	}
}

func TestHeightmapValuesIsCopy(t *testing.T) {
	hm, err := NewBuilder(NewField(1, 600, 40)).Build(100, 100, 30, 2)
	if err != nil {
		t.Fatal(err)
	}
	v := hm.Values()
	v[0] = 12345
	if hm.At(0, 0) == 12345 {
		t.Error("Values should return a copy")
	}

	dst := make([]float32, hm.Len())
	if n := hm.CopyTo(dst); n != hm.Len() {
		t.Errorf("CopyTo copied %d, want %d", n, hm.Len())
	}
	lo, hi := hm.MinMax()
	if lo > hi {
		t.Errorf("MinMax = (%v, %v), lo > hi", lo, hi)
	}
}
