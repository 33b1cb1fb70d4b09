package gen

const (
	lehmerModulus    = 0x7fffffff // 2^31 - 1
	lehmerMultiplier = 48271
)

// Sequence is a Lehmer (MINSTD) generator producing values in [0, 1).
// It is only used for cosmetic variation; terrain heights come from Field.
type Sequence struct {
	state uint64
}

// NewSequence seeds a Sequence. Seeds congruent to zero modulo 2^31-1 would
// lock the generator at zero, so they are replaced with 1.
func NewSequence(seed int64) *Sequence {
	s := uint64(uint32(seed)) % lehmerModulus
	if s == 0 {
		s = 1
	}
	return &Sequence{state: s}
}

// ChunkSequence returns a Sequence seeded from the world seed and a chunk
// coordinate, so a chunk's variation does not depend on creation order.
func ChunkSequence(seed int64, cx, cz int) *Sequence {
	h := hash3(uint32(seed)^uint32(seed>>32), int32(cx), 0x5eed, int32(cz))
	return NewSequence(int64(h))
}

// Next advances the generator.
func (s *Sequence) Next() float64 {
	s.state = s.state * lehmerMultiplier % lehmerModulus
	return float64(s.state) / (lehmerModulus + 1)
}

// Range returns a value in [lo, hi).
func (s *Sequence) Range(lo, hi float64) float64 {
	return lo + s.Next()*(hi-lo)
}
