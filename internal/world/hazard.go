package world

import (
	"math"
	"math/rand"

	"github.com/skyraid/server/internal/vmath"
)

// Hazard is a player-launched destructible obstacle. Size only ever
// shrinks; the outline is regenerated at each new scale so fragments and
// shrunk hazards never look like scaled copies.
type Hazard struct {
	ID        int64
	Pos       vmath.Vec2
	Vel       vmath.Vec2
	Size      float64
	BaseSize  float64 // immutable, set at creation
	Outline   []vmath.Vec2
	Kills     int  // lifetime kill counter across bird and disruptor impacts
	Destroyed bool // guards against double-destruction within a tick
}

const (
	polygonMinVerts = 3
	polygonMaxVerts = 13
)

// NewHazard creates a hazard with a fresh procedural outline. The ID is
// assigned by State.AddHazard when the hazard enters the world.
func NewHazard(rng *rand.Rand, pos, vel vmath.Vec2, size float64) *Hazard {
	return &Hazard{
		Pos:      pos,
		Vel:      vel,
		Size:     size,
		BaseSize: size,
		Outline:  GenerateOutline(rng, size),
	}
}

// GenerateOutline produces a simple (non-self-intersecting) polygon with
// 3-13 vertices. Vertex angles around the origin are strictly increasing,
// which makes self-intersection impossible by construction.
func GenerateOutline(rng *rand.Rand, size float64) []vmath.Vec2 {
	n := polygonMinVerts + rng.Intn(polygonMaxVerts-polygonMinVerts+1)

	// Draw n positive angular steps and normalize them to sum to 2π.
	steps := make([]float64, n)
	total := 0.0
	for i := range steps {
		steps[i] = 0.25 + rng.Float64()
		total += steps[i]
	}

	start := rng.Float64() * 2 * math.Pi
	verts := make([]vmath.Vec2, n)
	angle := start
	for i := 0; i < n; i++ {
		radius := size * (0.65 + 0.35*rng.Float64())
		verts[i] = vmath.V(math.Cos(angle)*radius, math.Sin(angle)*radius)
		angle += steps[i] / total * 2 * math.Pi
	}
	return verts
}

// Shrink reduces the hazard by the given factor and regenerates the
// outline at the new scale. Size stays monotonically non-increasing.
func (h *Hazard) Shrink(rng *rand.Rand, factor float64) {
	if factor >= 1 || factor <= 0 {
		return
	}
	h.Size *= factor
	h.Outline = GenerateOutline(rng, h.Size)
}

// Area approximates the hazard's visual area from its size.
func (h *Hazard) Area() float64 { return math.Pi * h.Size * h.Size }
