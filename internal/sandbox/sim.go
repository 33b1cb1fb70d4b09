package sandbox

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/OCharnyshevich/flightsim/internal/sandbox/config"
	"github.com/OCharnyshevich/flightsim/internal/sandbox/physics"
	"github.com/OCharnyshevich/flightsim/internal/sandbox/render"
	"github.com/OCharnyshevich/flightsim/internal/sandbox/world"
	"github.com/OCharnyshevich/flightsim/internal/sandbox/world/gen"
)

const (
	maxSubSteps    = 10
	probeHalfSize  = 1
	probeClearance = 5
)

// Sim owns the simulation loop: it moves the tracker, streams terrain
// around it and steps physics, in that order, once per tick.
type Sim struct {
	cfg     *config.Config
	log     *slog.Logger
	heap    *physics.Heap
	physics *physics.DiscreteWorld
	scene   *render.Graph
	world   *world.World
	field   *gen.Field
	chunks  *world.Manager
	tracker Tracker
	probe   *physics.Body

	ticks  int
	closed bool
}

// New creates a Sim with the given config and logger.
func New(cfg *config.Config, log *slog.Logger) (*Sim, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	hood, err := world.ParseNeighborhood(cfg.Neighborhood)
	if err != nil {
		return nil, err
	}

	heap := physics.NewHeap(cfg.HeapFloats)
	phys := physics.NewDiscreteWorld(heap, mgl32.Vec3{0, float32(cfg.Gravity), 0}, log)
	scene := render.NewGraph()

	w := world.NewWorld(scene, phys, cfg.Seed, log)
	w.Water.Enabled = cfg.Water
	w.Water.Level = float32(cfg.WaterLevel)

	field := gen.NewField(cfg.Seed, cfg.NoiseScale, cfg.Amplitude)
	chunks := world.NewManager(w, field, world.Options{
		ChunkSize:    cfg.ChunkSize,
		Segments:     cfg.Segments,
		ViewDistance: cfg.ViewDistance,
		Neighborhood: hood,
	})

	shape, err := physics.Box{HalfExtents: mgl32.Vec3{probeHalfSize, probeHalfSize, probeHalfSize}}.ToCollisionShape(heap)
	if err != nil {
		return nil, fmt.Errorf("create probe shape: %w", err)
	}
	probe := physics.NewRigidBody(shape, 1, mgl32.Vec3{})
	probe.Damping = 0.1

	return &Sim{
		cfg:     cfg,
		log:     log,
		heap:    heap,
		physics: phys,
		scene:   scene,
		world:   w,
		field:   field,
		chunks:  chunks,
		tracker: DefaultRoute(cfg.FlightSpeed),
		probe:   probe,
	}, nil
}

// SetTracker replaces the position source.
func (s *Sim) SetTracker(t Tracker) { s.tracker = t }

// Chunks returns the chunk manager.
func (s *Sim) Chunks() *world.Manager { return s.chunks }

// Physics returns the physics world.
func (s *Sim) Physics() *physics.DiscreteWorld { return s.physics }

// Scene returns the scenegraph.
func (s *Sim) Scene() *render.Graph { return s.scene }

// Heap returns the physics heap.
func (s *Sim) Heap() *physics.Heap { return s.heap }

// Probe returns the dynamic test body.
func (s *Sim) Probe() *physics.Body { return s.probe }

// Ticks returns the number of ticks run.
func (s *Sim) Ticks() int { return s.ticks }

// Aircraft returns where the tracked aircraft is: the tracker's x/z at
// the configured height above the terrain.
func (s *Sim) Aircraft() mgl32.Vec3 {
	x, z := s.tracker.Position()
	y := s.field.Height(x, z) + s.cfg.FlightAltitude
	return mgl32.Vec3{float32(x), float32(y), float32(z)}
}

// DropProbe places the probe a little above the terrain at (x, z) and
// lets it fall.
func (s *Sim) DropProbe(x, z float64) error {
	y := s.field.Height(x, z) + probeClearance + probeHalfSize
	s.probe.Position = mgl32.Vec3{float32(x), float32(y), float32(z)}
	s.probe.Velocity = mgl32.Vec3{}
	if s.probe.InWorld() {
		return nil
	}
	if err := s.physics.AddRigidBody(s.probe, physics.CategoryVehicle, physics.MaskFor(physics.CategoryVehicle)); err != nil {
		return fmt.Errorf("drop probe: %w", err)
	}
	return nil
}

// Tick advances the simulation by dt seconds.
func (s *Sim) Tick(dt float64) world.UpdateStats {
	s.tracker.Advance(dt)
	x, z := s.tracker.Position()
	stats := s.chunks.Update(x, z)
	s.physics.Step(float32(dt), maxSubSteps)
	s.ticks++
	return stats
}

// Start runs the tick loop and blocks until the context is cancelled.
func (s *Sim) Start(ctx context.Context) error {
	dt := 1 / float64(s.cfg.TickRate)

	x, z := s.tracker.Position()
	stats := s.chunks.Update(x, z)
	if err := s.DropProbe(x, z); err != nil {
		return err
	}

	s.log.Info("sim started",
		"seed", s.cfg.Seed,
		"chunkSize", s.cfg.ChunkSize,
		"segments", s.cfg.Segments,
		"radius", s.chunks.Radius(),
		"neighborhood", s.cfg.Neighborhood,
		"chunks", stats.Created,
		"failed", stats.Failed,
	)

	ticker := time.NewTicker(time.Duration(dt * float64(time.Second)))
	defer ticker.Stop()

	statusEvery := s.cfg.TickRate * 10
	for {
		select {
		case <-ctx.Done():
			s.log.Info("sim shutting down", "ticks", s.ticks)
			return s.Close()
		case <-ticker.C:
			stats := s.Tick(dt)
			if stats.Failed > 0 {
				s.log.Warn("chunks missing", "failed", stats.Failed, "center", stats.Center.String())
			}
			if s.ticks%statusEvery == 0 {
				pos := s.Aircraft()
				hs := s.heap.Stats()
				s.log.Info("status",
					"ticks", s.ticks,
					"x", pos.X(),
					"y", pos.Y(),
					"z", pos.Z(),
					"chunks", s.chunks.Len(),
					"bodies", s.physics.NumBodies(),
					"heapFloats", hs.Used,
					"probeOnGround", s.probe.OnGround(),
				)
			}
		}
	}
}

// Close tears down every chunk and releases pooled buffers. It is safe to
// call more than once.
func (s *Sim) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	if s.probe.InWorld() {
		if err := s.physics.RemoveRigidBody(s.probe); err != nil {
			s.log.Warn("remove probe", "error", err)
		}
	}
	s.chunks.Close()
	if err := s.world.Buffers.Close(); err != nil {
		return fmt.Errorf("release terrain buffers: %w", err)
	}
	return nil
}
