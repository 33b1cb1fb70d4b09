package physics

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

var (
	// ErrAlreadyInWorld is returned when adding a registered body.
	ErrAlreadyInWorld = errors.New("body already in world")
	// ErrNotInWorld is returned when removing an unregistered body.
	ErrNotInWorld = errors.New("body not in world")
)

// World is the subset of a physics engine the terrain layer talks to.
type World interface {
	AddRigidBody(b *Body, group, mask Category) error
	RemoveRigidBody(b *Body) error
	Heap() *Heap
}

// DiscreteWorld is a small fixed-step engine: dynamic bodies fall under
// gravity and come to rest on static boxes and height fields. All mutation
// goes through one mutex, so a single writer at a time touches the world.
type DiscreteWorld struct {
	mu       sync.Mutex
	heap     *Heap
	gravity  mgl32.Vec3
	fixed    float32
	bodies   map[uuid.UUID]*Body
	statics  map[uuid.UUID]*Body
	dynamics map[uuid.UUID]*Body
	log      *slog.Logger

	steps int
}

// NewDiscreteWorld creates a world stepping at 60 Hz internally.
func NewDiscreteWorld(heap *Heap, gravity mgl32.Vec3, log *slog.Logger) *DiscreteWorld {
	return &DiscreteWorld{
		heap:     heap,
		gravity:  gravity,
		fixed:    1.0 / 60,
		bodies:   make(map[uuid.UUID]*Body),
		statics:  make(map[uuid.UUID]*Body),
		dynamics: make(map[uuid.UUID]*Body),
		log:      log.With("component", "physics"),
	}
}

// Heap returns the native heap shapes read from.
func (w *DiscreteWorld) Heap() *Heap { return w.heap }

// AddRigidBody registers b under group with the given mask.
func (w *DiscreteWorld) AddRigidBody(b *Body, group, mask Category) error {
	if b == nil || b.Shape == nil {
		return fmt.Errorf("add rigid body: missing shape")
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.bodies[b.ID]; ok {
		return fmt.Errorf("add rigid body %s: %w", b.ID, ErrAlreadyInWorld)
	}
	b.group = group
	b.mask = mask
	b.inWorld = true
	w.bodies[b.ID] = b
	if b.Static() {
		w.statics[b.ID] = b
	} else {
		w.dynamics[b.ID] = b
	}
	return nil
}

// RemoveRigidBody unregisters b.
func (w *DiscreteWorld) RemoveRigidBody(b *Body) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if b == nil {
		return fmt.Errorf("remove rigid body: nil body")
	}
	if _, ok := w.bodies[b.ID]; !ok {
		return fmt.Errorf("remove rigid body %s: %w", b.ID, ErrNotInWorld)
	}
	delete(w.bodies, b.ID)
	delete(w.statics, b.ID)
	delete(w.dynamics, b.ID)
	b.inWorld = false
	b.onGround = false
	return nil
}

// NumBodies returns the number of registered bodies.
func (w *DiscreteWorld) NumBodies() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.bodies)
}

// CountGroup returns how many registered bodies belong to group.
func (w *DiscreteWorld) CountGroup(group Category) int {
	w.mu.Lock()
	defer w.mu.Unlock()

	n := 0
	for _, b := range w.bodies {
		if b.group == group {
			n++
		}
	}
	return n
}

// Contains reports whether b is registered.
func (w *DiscreteWorld) Contains(b *Body) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.bodies[b.ID]
	return ok
}

// Steps returns the number of internal fixed steps taken.
func (w *DiscreteWorld) Steps() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.steps
}

// Step advances the simulation by dt seconds using at most maxSubSteps
// fixed steps.
func (w *DiscreteWorld) Step(dt float32, maxSubSteps int) {
	if dt <= 0 {
		return
	}
	if maxSubSteps < 1 {
		maxSubSteps = 1
	}

	n := int(math.Ceil(float64(dt / w.fixed)))
	if n > maxSubSteps {
		w.log.Debug("step clamped", "dt", dt, "wanted", n, "max", maxSubSteps)
		n = maxSubSteps
	}
	if n < 1 {
		n = 1
	}
	h := dt / float32(n)

	w.mu.Lock()
	defer w.mu.Unlock()

	for range n {
		for _, b := range w.dynamics {
			w.integrate(b, h)
		}
		w.steps++
	}
}

func (w *DiscreteWorld) integrate(b *Body, h float32) {
	b.Velocity = b.Velocity.Add(w.gravity.Mul(h))
	if b.Damping > 0 {
		k := 1 - b.Damping*h
		if k < 0 {
			k = 0
		}
		b.Velocity = b.Velocity.Mul(k)
	}
	b.Position = b.Position.Add(b.Velocity.Mul(h))
	b.onGround = false

	ground, ok := w.groundBelow(b)
	if !ok {
		return
	}
	bottom := b.Position.Y() - b.Shape.HalfExtents.Y()
	if bottom < ground {
		b.Position[1] = ground + b.Shape.HalfExtents.Y()
		if b.Velocity.Y() < 0 {
			b.Velocity[1] = 0
		}
		b.onGround = true
	}
}

// groundBelow returns the highest static surface under b that b collides with.
func (w *DiscreteWorld) groundBelow(b *Body) (float32, bool) {
	var (
		best  float32
		found bool
	)
	x, z := b.Position.X(), b.Position.Z()
	for _, s := range w.statics {
		if !Collides(b.group, b.mask, s.group, s.mask) {
			continue
		}
		top, ok := surfaceAt(s, x, z)
		if !ok {
			continue
		}
		if !found || top > best {
			best, found = top, true
		}
	}
	return best, found
}

// surfaceAt returns the world-space top of static body s at (x, z).
func surfaceAt(s *Body, x, z float32) (float32, bool) {
	lx := x - s.Position.X()
	lz := z - s.Position.Z()
	he := s.Shape.HalfExtents
	switch s.Shape.Kind {
	case ShapeHeightField:
		h, ok := s.Shape.HeightAt(lx, lz)
		if !ok {
			return 0, false
		}
		return s.Position.Y() + h, true
	case ShapeBox, ShapeCylinder:
		if lx < -he.X() || lx > he.X() || lz < -he.Z() || lz > he.Z() {
			return 0, false
		}
		return s.Position.Y() + he.Y(), true
	default:
		return 0, false
	}
}

// GroundHeight returns the top of the highest static surface at (x, z)
// visible to a body with the given group and mask.
func (w *DiscreteWorld) GroundHeight(x, z float32, group, mask Category) (float32, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	probe := &Body{group: group, mask: mask, Position: mgl32.Vec3{x, 0, z}}
	return w.groundBelow(probe)
}
