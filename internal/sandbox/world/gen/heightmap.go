package gen

import "fmt"

// Heightmap is a (segments+1)×(segments+1) grid of elevation samples covering
// one chunk footprint. Samples are row-major: row index walks z, column index
// walks x. A Heightmap is never modified after Build returns it.
type Heightmap struct {
	originX, originZ float64
	size             float64
	segments         int
	samples          []float32
}

// OriginX returns the world x of the chunk's min corner.
func (h *Heightmap) OriginX() float64 { return h.originX }

// OriginZ returns the world z of the chunk's min corner.
func (h *Heightmap) OriginZ() float64 { return h.originZ }

// Size returns the edge length of the covered square.
func (h *Heightmap) Size() float64 { return h.size }

// Segments returns the number of cells along one edge.
func (h *Heightmap) Segments() int { return h.segments }

// Stride returns the number of samples along one edge (segments+1).
func (h *Heightmap) Stride() int { return h.segments + 1 }

// Len returns the total number of samples.
func (h *Heightmap) Len() int { return len(h.samples) }

// At returns the sample at column i (x) and row j (z).
func (h *Heightmap) At(i, j int) float32 {
	return h.samples[j*h.Stride()+i]
}

// CopyTo copies all samples into dst and returns the number copied.
func (h *Heightmap) CopyTo(dst []float32) int {
	return copy(dst, h.samples)
}

// Values returns a copy of the samples.
func (h *Heightmap) Values() []float32 {
	out := make([]float32, len(h.samples))
	copy(out, h.samples)
	return out
}

// MinMax returns the lowest and highest sample.
func (h *Heightmap) MinMax() (lo, hi float32) {
	if len(h.samples) == 0 {
		return 0, 0
	}
	lo, hi = h.samples[0], h.samples[0]
	for _, v := range h.samples[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

// Builder samples a Field over chunk footprints.
type Builder struct {
	field *Field
}

// NewBuilder creates a Builder over field.
func NewBuilder(field *Field) *Builder {
	return &Builder{field: field}
}

// Field returns the underlying height function.
func (b *Builder) Field() *Field { return b.field }

// Build samples the square [originX, originX+size] × [originZ, originZ+size]
// on a (segments+1)² grid. The far edge is pinned to origin+size so two
// chunks sharing an edge sample the same world coordinates on it.
func (b *Builder) Build(originX, originZ, size float64, segments int) (*Heightmap, error) {
	if segments < 1 {
		return nil, fmt.Errorf("build heightmap: segments %d < 1", segments)
	}
	if !(size > 0) {
		return nil, fmt.Errorf("build heightmap: size %v must be positive", size)
	}

	stride := segments + 1
	hm := &Heightmap{
		originX:  originX,
		originZ:  originZ,
		size:     size,
		segments: segments,
		samples:  make([]float32, stride*stride),
	}

	xs := make([]float64, stride)
	for i := range xs {
		xs[i] = sampleCoord(originX, size, i, segments)
	}

	for j := 0; j < stride; j++ {
		z := sampleCoord(originZ, size, j, segments)
		row := hm.samples[j*stride : (j+1)*stride]
		for i, x := range xs {
			row[i] = float32(b.field.Height(x, z))
		}
	}
	return hm, nil
}

func sampleCoord(origin, size float64, index, segments int) float64 {
	if index == segments {
		return origin + size
	}
	return origin + float64(index)*size/float64(segments)
}
