package world

import "github.com/skyraid/server/internal/vmath"

// Projectile is a short-lived pellet fired by ranged birds at hazards.
type Projectile struct {
	Pos  vmath.Vec2
	Vel  vmath.Vec2
	TTL  int // remaining ticks
	Dead bool
}

// ProjectileRadius is the pellet's collision radius.
const ProjectileRadius = 2.5

// Disruptor is a slow mine dropped by layer birds. Hazards interact with
// it through the size-ratio tolerance band in the collision pipeline.
type Disruptor struct {
	Pos  vmath.Vec2
	Vel  vmath.Vec2
	Size float64
	Dead bool
}
