package sandbox

import "math"

// Tracker supplies the position chunks are streamed around.
type Tracker interface {
	Advance(dt float64)
	Position() (x, z float64)
}

// Route flies a closed loop of waypoints at constant ground speed.
type Route struct {
	points    [][2]float64
	speed     float64
	perimeter float64

	leg   int     // index of the waypoint being left
	along float64 // distance covered on the current leg
}

// NewRoute creates a Route starting at the first waypoint. With fewer than
// two distinct waypoints, or a non-positive speed, it never moves.
func NewRoute(speed float64, points ...[2]float64) *Route {
	r := &Route{points: points, speed: speed}
	for i := range points {
		r.perimeter += r.legLength(i)
	}
	return r
}

// DefaultRoute is a large rectangular circuit through the origin.
func DefaultRoute(speed float64) *Route {
	return NewRoute(speed,
		[2]float64{0, 0},
		[2]float64{1500, 0},
		[2]float64{1500, 1500},
		[2]float64{-1500, 1500},
		[2]float64{-1500, -1500},
		[2]float64{0, -1500},
	)
}

func (r *Route) legLength(i int) float64 {
	a := r.points[i]
	b := r.points[(i+1)%len(r.points)]
	return math.Hypot(b[0]-a[0], b[1]-a[1])
}

// Advance moves dt seconds along the loop.
func (r *Route) Advance(dt float64) {
	if r.perimeter == 0 || r.speed <= 0 || dt <= 0 {
		return
	}
	remaining := math.Mod(r.speed*dt, r.perimeter)
	for remaining > 0 {
		left := r.legLength(r.leg) - r.along
		if remaining < left {
			r.along += remaining
			return
		}
		remaining -= left
		r.leg = (r.leg + 1) % len(r.points)
		r.along = 0
	}
}

// Position returns the current x/z.
func (r *Route) Position() (x, z float64) {
	switch len(r.points) {
	case 0:
		return 0, 0
	case 1:
		return r.points[0][0], r.points[0][1]
	}
	a := r.points[r.leg]
	b := r.points[(r.leg+1)%len(r.points)]
	length := r.legLength(r.leg)
	if length == 0 {
		return a[0], a[1]
	}
	t := r.along / length
	return a[0] + (b[0]-a[0])*t, a[1] + (b[1]-a[1])*t
}
