package event

import "github.com/skyraid/server/internal/core/ecs"

// Simulation events. Emitted during a tick, delivered at the start of the
// next tick (double-buffered bus), so subscribers never observe a
// half-updated world.

// BirdKilled fires once per bird destroyed by a hazard or hazard fragment.
type BirdKilled struct {
	EntityID ecs.EntityID
	X, Y     float64
	Carrying bool // bird held a stolen resource when it died
}

// HazardDestroyed fires when a hazard is fully destroyed (not merely shrunk).
type HazardDestroyed struct {
	X, Y  float64
	Size  float64
	Kills int // lifetime kill counter, drives the combo announcement
}

// ResourceStolen fires when a bird picks a resource off its slot.
type ResourceStolen struct {
	Slot int
	Bird ecs.EntityID
}

// ResourceDelivered fires when a carrying bird completes a delivery past
// the top boundary. Triggers the burst spawn and the slot respawn timer.
type ResourceDelivered struct {
	Slot int
}

// ResourceRestored fires when a falling resource lands back on its slot
// or a slot respawn timer completes.
type ResourceRestored struct {
	Slot int
}

// ResourceLost fires when a stolen resource is gone for good this wave
// (delivered or dropped out of bounds). Breaks the combo.
type ResourceLost struct {
	Slot int
}

// WaveStarted fires when the scheduler begins spawning a new wave.
type WaveStarted struct {
	Index int
}

// WaveCompleted fires once per finished wave. Perfect reports that no
// resource was lost while the wave ran.
type WaveCompleted struct {
	Index   int
	Perfect bool
}
