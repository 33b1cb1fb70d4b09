package world

import (
	"fmt"
	"log/slog"
	"math"
	"slices"
	"sync"

	"github.com/OCharnyshevich/flightsim/internal/sandbox/world/gen"
)

// Neighborhood selects which coordinates around the centre are resident.
type Neighborhood int

const (
	// Square keeps every chunk within Chebyshev distance radius.
	Square Neighborhood = iota
	// Diamond keeps every chunk within Manhattan distance radius.
	Diamond
)

func (n Neighborhood) String() string {
	switch n {
	case Square:
		return "square"
	case Diamond:
		return "diamond"
	default:
		return fmt.Sprintf("neighborhood(%d)", int(n))
	}
}

// ParseNeighborhood maps a config name to a Neighborhood. Empty means Square.
func ParseNeighborhood(s string) (Neighborhood, error) {
	switch s {
	case "", "square":
		return Square, nil
	case "diamond":
		return Diamond, nil
	default:
		return Square, fmt.Errorf("unknown neighborhood %q", s)
	}
}

// contains reports whether offset (dx, dz) lies inside the neighborhood.
func (n Neighborhood) contains(dx, dz, radius int) bool {
	if dx < 0 {
		dx = -dx
	}
	if dz < 0 {
		dz = -dz
	}
	if n == Diamond {
		return dx+dz <= radius
	}
	return dx <= radius && dz <= radius
}

// Options configures a Manager.
type Options struct {
	ChunkSize    float64
	Segments     int
	ViewDistance float64
	Neighborhood Neighborhood
}

// UpdateStats summarises one Update call.
type UpdateStats struct {
	Center    Coord
	Required  int
	Created   int
	Destroyed int
	Failed    int
}

// Manager owns the active chunk set and reconciles it against the
// tracked position. Update is expected to run on one goroutine; the read
// accessors may be called from others.
type Manager struct {
	mu      sync.RWMutex
	world   *World
	builder *gen.Builder
	opts    Options
	radius  int
	chunks  map[Coord]*Chunk
	log     *slog.Logger

	observers []Observer
}

// NewManager creates a Manager generating terrain from field.
func NewManager(w *World, field *gen.Field, opts Options) *Manager {
	radius := 0
	if opts.ViewDistance > 0 && opts.ChunkSize > 0 {
		radius = int(math.Ceil(opts.ViewDistance / opts.ChunkSize))
	}
	return &Manager{
		world:   w,
		builder: gen.NewBuilder(field),
		opts:    opts,
		radius:  radius,
		chunks:  make(map[Coord]*Chunk),
		log:     w.Log.With("component", "chunks"),
	}
}

// Observe registers fn to receive chunk lifecycle events. Observers run
// synchronously inside Update and must not block.
func (m *Manager) Observe(fn Observer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observers = append(m.observers, fn)
}

// Radius returns the neighborhood radius in chunks.
func (m *Manager) Radius() int { return m.radius }

// Options returns the options the manager was created with.
func (m *Manager) Options() Options { return m.opts }

// CenterOf returns the chunk coordinate containing world position (x, z).
func (m *Manager) CenterOf(x, z float64) Coord {
	return Coord{
		X: int(math.Round(x / m.opts.ChunkSize)),
		Z: int(math.Round(z / m.opts.ChunkSize)),
	}
}

// Required returns the coordinates that must be resident around center,
// row by row (z outer, x inner).
func (m *Manager) Required(center Coord) []Coord {
	r := m.radius
	out := make([]Coord, 0, (2*r+1)*(2*r+1))
	for dz := -r; dz <= r; dz++ {
		for dx := -r; dx <= r; dx++ {
			if !m.opts.Neighborhood.contains(dx, dz, r) {
				continue
			}
			out = append(out, Coord{X: center.X + dx, Z: center.Z + dz})
		}
	}
	return out
}

// Update reconciles the active set with the position (x, z). Stale chunks
// are destroyed before missing ones are created, so every buffer handed
// back to the pool has already left the physics world when it is reused.
// A chunk that fails to build stays absent and is retried next call.
func (m *Manager) Update(x, z float64) UpdateStats {
	center := m.CenterOf(x, z)
	required := m.Required(center)
	want := make(map[Coord]struct{}, len(required))
	for _, c := range required {
		want[c] = struct{}{}
	}

	stats := UpdateStats{Center: center, Required: len(required)}
	var events []Event

	m.mu.Lock()

	stale := make([]Coord, 0)
	for c := range m.chunks {
		if _, ok := want[c]; !ok {
			stale = append(stale, c)
		}
	}
	slices.SortFunc(stale, compareCoord)
	for _, c := range stale {
		m.chunks[c].Destroy()
		delete(m.chunks, c)
		stats.Destroyed++
		events = append(events, Event{Kind: EventDestroyed, Coord: c})
	}

	for _, c := range required {
		if _, ok := m.chunks[c]; ok {
			continue
		}
		ch, err := m.create(c)
		if err != nil {
			m.log.Error("create chunk", "x", c.X, "z", c.Z, "error", err)
			stats.Failed++
			events = append(events, Event{Kind: EventFailed, Coord: c, Err: err})
			continue
		}
		m.chunks[c] = ch
		stats.Created++
		events = append(events, Event{Kind: EventCreated, Coord: c, MinHeight: ch.minY, MaxHeight: ch.maxY})
	}

	observers := m.observers
	m.mu.Unlock()

	if stats.Created > 0 || stats.Destroyed > 0 {
		m.log.Debug("chunks reconciled",
			"center", center.String(),
			"created", stats.Created,
			"destroyed", stats.Destroyed,
			"failed", stats.Failed,
			"active", stats.Required-stats.Failed,
		)
	}
	for _, e := range events {
		for _, fn := range observers {
			fn(e)
		}
	}
	return stats
}

func (m *Manager) create(c Coord) (*Chunk, error) {
	originX, originZ := c.Origin(m.opts.ChunkSize)
	hm, err := m.builder.Build(originX, originZ, m.opts.ChunkSize, m.opts.Segments)
	if err != nil {
		return nil, fmt.Errorf("build heightmap %v: %w", c, err)
	}
	return NewChunk(m.world, c, hm)
}

// Len returns the number of active chunks.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.chunks)
}

// Has reports whether c is resident.
func (m *Manager) Has(c Coord) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.chunks[c]
	return ok
}

// Chunk returns the resident chunk at c.
func (m *Manager) Chunk(c Coord) (*Chunk, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ch, ok := m.chunks[c]
	return ch, ok
}

// Coords returns the resident coordinates in row-major order.
func (m *Manager) Coords() []Coord {
	m.mu.RLock()
	out := make([]Coord, 0, len(m.chunks))
	for c := range m.chunks {
		out = append(out, c)
	}
	m.mu.RUnlock()

	slices.SortFunc(out, compareCoord)
	return out
}

// HeightAt returns the terrain height at world (x, z). It reads the noise
// field directly, so it answers for positions outside the active set too.
func (m *Manager) HeightAt(x, z float64) float64 {
	return m.builder.Field().Height(x, z)
}

// Close destroys every resident chunk.
func (m *Manager) Close() {
	m.mu.Lock()
	coords := make([]Coord, 0, len(m.chunks))
	for c := range m.chunks {
		coords = append(coords, c)
	}
	slices.SortFunc(coords, compareCoord)
	for _, c := range coords {
		m.chunks[c].Destroy()
		delete(m.chunks, c)
	}
	m.mu.Unlock()

	m.log.Info("chunks closed", "destroyed", len(coords))
}

func compareCoord(a, b Coord) int {
	if a.Z != b.Z {
		return a.Z - b.Z
	}
	return a.X - b.X
}
