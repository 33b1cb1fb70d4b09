package world

// EventKind names a chunk lifecycle transition.
type EventKind string

const (
	EventCreated   EventKind = "created"
	EventDestroyed EventKind = "destroyed"
	EventFailed    EventKind = "failed"
)

// Event is emitted by Manager.Update for every chunk it touched.
type Event struct {
	Kind      EventKind `json:"kind"`
	Coord     Coord     `json:"coord"`
	MinHeight float32   `json:"min_height,omitempty"`
	MaxHeight float32   `json:"max_height,omitempty"`
	Err       error     `json:"-"`
}

// Observer receives lifecycle events.
type Observer func(Event)
