package gen

import "math"

// Gradient noise over an integer lattice. Every lattice point gets a unit
// gradient derived only from its integer coordinates and the field seed, so
// a point evaluates to the same height no matter which chunk asks for it.

// Field is a deterministic 2D height function.
type Field struct {
	seed      uint32
	scale     float64
	amplitude float64
}

// NewField creates a Field. scale is the lattice wavelength in world units,
// amplitude multiplies the raw noise value.
func NewField(seed int64, scale, amplitude float64) *Field {
	if scale <= 0 {
		scale = 1
	}
	return &Field{
		seed:      uint32(seed) ^ uint32(seed>>32),
		scale:     scale,
		amplitude: amplitude,
	}
}

// Scale returns the lattice wavelength.
func (f *Field) Scale() float64 { return f.scale }

// Amplitude returns the height multiplier.
func (f *Field) Amplitude() float64 { return f.amplitude }

// Height returns the terrain elevation at world coordinates (x, z).
func (f *Field) Height(x, z float64) float64 {
	x /= f.scale
	z /= f.scale

	x0 := math.Floor(x)
	z0 := math.Floor(z)
	ix := int32(int64(x0))
	iz := int32(int64(z0))

	// Offsets from the lower corner.
	dx := x - x0
	dz := z - z0

	n00 := f.corner(ix, iz, dx, dz)
	n10 := f.corner(ix+1, iz, dx-1, dz)
	n01 := f.corner(ix, iz+1, dx, dz-1)
	n11 := f.corner(ix+1, iz+1, dx-1, dz-1)

	u := smootherstep(dx)
	v := smootherstep(dz)

	nx0 := lerp(n00, n10, u)
	nx1 := lerp(n01, n11, u)
	return lerp(nx0, nx1, v) * f.amplitude
}

// corner returns the dot product of the lattice gradient at (ix, iz) with
// the offset (dx, dz) from that lattice point to the query point.
func (f *Field) corner(ix, iz int32, dx, dz float64) float64 {
	gx, gz := f.gradient(ix, iz)
	return gx*dx + gz*dz
}

// gradient maps a lattice point to a unit vector.
func (f *Field) gradient(ix, iz int32) (float64, float64) {
	h := hash2(f.seed, ix, iz)
	angle := float64(h) / (1 << 32) * 2 * math.Pi
	return math.Cos(angle), math.Sin(angle)
}

// hash2 mixes a seed and two lattice coordinates into a well distributed
// 32-bit value.
func hash2(seed uint32, x, z int32) uint32 {
	h := seed
	h ^= uint32(x) * 0x9e3779b1
	h ^= uint32(z) * 0x85ebca6b
	return mix32(h)
}

// hash3 is hash2 with a third coordinate, used for per-chunk variation.
func hash3(seed uint32, x, y, z int32) uint32 {
	h := seed
	h ^= uint32(x) * 0x9e3779b1
	h ^= uint32(y) * 0xc2b2ae35
	h ^= uint32(z) * 0x85ebca6b
	return mix32(h)
}

func mix32(x uint32) uint32 {
	x ^= x >> 16
	x *= 0x7feb352d
	x ^= x >> 15
	x *= 0x846ca68b
	x ^= x >> 16
	return x
}

// smootherstep is 6w^5 - 15w^4 + 10w^3.
func smootherstep(w float64) float64 {
	return w * w * w * (w*(w*6-15) + 10)
}

func lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}
