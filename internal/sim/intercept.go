package sim

import (
	"math"

	"github.com/skyraid/server/internal/vmath"
)

// SolveIntercept answers the quadratic lead-angle problem: where must a
// chaser moving at speed aim to meet a target moving at constant
// velocity. ok is false when no positive-time solution exists (the
// target outruns the chaser); callers then aim at the current position.
func SolveIntercept(from, targetPos, targetVel vmath.Vec2, speed float64) (point vmath.Vec2, ok bool) {
	rel := targetPos.Sub(from)
	a := targetVel.LenSq() - speed*speed
	b := 2 * rel.Dot(targetVel)
	c := rel.LenSq()

	var t float64
	if math.Abs(a) < 1e-9 {
		// Degenerate: chaser and target speeds match.
		if math.Abs(b) < 1e-9 {
			return targetPos, false
		}
		t = -c / b
	} else {
		disc := b*b - 4*a*c
		if disc < 0 {
			return targetPos, false
		}
		sq := math.Sqrt(disc)
		t1 := (-b - sq) / (2 * a)
		t2 := (-b + sq) / (2 * a)
		t = smallestPositive(t1, t2)
	}
	if t <= 0 {
		return targetPos, false
	}
	return targetPos.Add(targetVel.Scale(t)), true
}

func smallestPositive(a, b float64) float64 {
	switch {
	case a > 0 && b > 0:
		return math.Min(a, b)
	case a > 0:
		return a
	case b > 0:
		return b
	default:
		return -1
	}
}

// hazardDanger scores how threatened a point is by every live hazard.
// Inverse-square falloff weighted by hazard bulk; a point inside a
// hazard outline is effectively lethal.
func hazardDanger(hazards []*hazardRef, p vmath.Vec2) float64 {
	danger := 0.0
	for _, h := range hazards {
		d2 := vmath.DistSq(p, h.pos) + 1
		r := h.size + 12
		danger += (r * r) / d2
	}
	return danger
}

// hazardRef is the minimal hazard view steering code needs; keeps the
// danger math independent from entity bookkeeping for tests.
type hazardRef struct {
	pos  vmath.Vec2
	vel  vmath.Vec2
	size float64
}
