package world

import "github.com/skyraid/server/internal/vmath"

// Resource is one glowing point on the defended baseline. Exactly one
// lifecycle loop: available → stolen → restored or consumed.
type Resource struct {
	Slot   int
	Pos    vmath.Vec2 // fixed slot position on the baseline
	Hue    float64
	Stolen bool

	// RespawnTicks counts down to restoring a consumed slot. Only
	// meaningful while Stolen is true and nothing carries or drops the
	// resource anymore.
	RespawnTicks int
}

// FallingGravity is the downward acceleration of a dropped resource,
// units per second squared. The descent is intentionally slow so birds
// get a window to re-catch it.
const FallingGravity = 90.0

// FallingResource is the transient entity spawned when a carrying bird
// dies mid-flight. It references the original slot, which stays stolen
// until the fall resolves.
type FallingResource struct {
	Slot int
	Pos  vmath.Vec2
	Vel  vmath.Vec2
	Done bool
}
