package physics

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// Body is a rigid body. Mass 0 makes it static.
type Body struct {
	ID       uuid.UUID
	Shape    *CollisionShape
	Mass     float32
	Position mgl32.Vec3
	Velocity mgl32.Vec3
	Damping  float32

	group    Category
	mask     Category
	inWorld  bool
	onGround bool
}

// NewRigidBody creates a body at pos with a fresh ID.
func NewRigidBody(shape *CollisionShape, mass float32, pos mgl32.Vec3) *Body {
	return &Body{
		ID:       uuid.New(),
		Shape:    shape,
		Mass:     mass,
		Position: pos,
	}
}

// Static reports whether the body never moves.
func (b *Body) Static() bool { return b.Mass == 0 }

// Group returns the body's collision category.
func (b *Body) Group() Category { return b.group }

// Mask returns the categories the body collides with.
func (b *Body) Mask() Category { return b.mask }

// InWorld reports whether the body is registered with a world.
func (b *Body) InWorld() bool { return b.inWorld }

// OnGround reports whether the body rested on a static body last step.
func (b *Body) OnGround() bool { return b.onGround }

// ApplyCentralImpulse changes velocity by impulse/mass.
func (b *Body) ApplyCentralImpulse(impulse mgl32.Vec3) {
	if b.Static() {
		return
	}
	b.Velocity = b.Velocity.Add(impulse.Mul(1 / b.Mass))
}
