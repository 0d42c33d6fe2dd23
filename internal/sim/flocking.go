package sim

import (
	"time"

	"go.uber.org/zap"

	"github.com/skyraid/server/internal/vmath"
	"github.com/skyraid/server/internal/world"
)

// FlockingSystem steers every non-elite bird with classic boid forces:
// separation, alignment, cohesion, goal seek and hazard avoidance. Each
// term is normalized to the bird's max speed, weighted by the configured
// weight times the bird's personality multiplier, then summed; the sum is
// clamped to max force and integrated.
type FlockingSystem struct {
	st  *world.State
	log *zap.Logger
}

func NewFlockingSystem(st *world.State, log *zap.Logger) *FlockingSystem {
	return &FlockingSystem{st: st, log: log}
}

func (s *FlockingSystem) Phase() Phase { return PhaseSteering }

func (s *FlockingSystem) Update(dt time.Duration) {
	dts := dt.Seconds()
	for _, b := range s.st.Birds {
		if !b.Alive || b.Kind == world.BirdElite {
			continue
		}
		retarget(s.st, b)
		force := FlockForce(s.st, b)
		integrate(b, force, dts)
	}
}

// retarget keeps the bird's goal slot valid. Carrying birds head for the
// top exit and need no slot; others drop a target that got stolen from
// under them and pick a fresh available slot at random.
func retarget(st *world.State, b *world.Bird) {
	if b.Carrying() {
		b.TargetSlot = -1
		return
	}
	if r := st.Resource(b.TargetSlot); r != nil && !r.Stolen {
		return
	}
	b.TargetSlot = -1
	avail := st.AvailableSlots()
	if len(avail) > 0 {
		b.TargetSlot = avail[st.Rng.Intn(len(avail))]
	}
}

// FlockForce computes the combined steering force for one bird. Pure
// with respect to state: no mutation, so tests can probe terms directly.
func FlockForce(st *world.State, b *world.Bird) vmath.Vec2 {
	fc := &st.Cfg.Flocking
	viewSq := fc.ViewRadius * fc.ViewRadius
	sepSq := fc.SeparationRadius * fc.SeparationRadius

	var sep, align, coh vmath.Vec2
	neighbors := 0
	for _, o := range st.Birds {
		if o == b || !o.Alive {
			continue
		}
		d2 := vmath.DistSq(b.Pos, o.Pos)
		if d2 > viewSq {
			continue
		}
		neighbors++
		align = align.Add(o.Vel)
		coh = coh.Add(o.Pos)
		if d2 < sepSq && d2 > 0 {
			// Push scales with proximity inside the protected range.
			away := b.Pos.Sub(o.Pos).Scale(1 / d2)
			sep = sep.Add(away)
		}
	}
	if neighbors > 0 {
		align = align.Scale(1 / float64(neighbors)).Sub(b.Vel)
		coh = coh.Scale(1 / float64(neighbors)).Sub(b.Pos)
	}

	seek := seekForce(st, b)
	avoid := avoidForce(st, b.Pos, fc.AvoidMargin)

	p := b.Persona
	force := vmath.Vec2{}
	force = force.Add(term(sep, b.MaxSpeed, fc.WeightSeparation*p.Separation))
	force = force.Add(term(align, b.MaxSpeed, fc.WeightAlignment*p.Alignment))
	force = force.Add(term(coh, b.MaxSpeed, fc.WeightCohesion*p.Cohesion))
	force = force.Add(term(seek, b.MaxSpeed, fc.WeightSeek*p.Seek))
	force = force.Add(term(avoid, b.MaxSpeed, fc.WeightAvoid*p.Avoid))
	return force.ClampLen(b.MaxForce)
}

// term normalizes a raw steering vector to max speed and applies the
// combined weight. Zero vectors stay zero.
func term(v vmath.Vec2, maxSpeed, weight float64) vmath.Vec2 {
	if v.LenSq() == 0 {
		return v
	}
	return v.WithLen(maxSpeed).Scale(weight)
}

// seekForce points at the bird's current goal: the top exit when
// carrying, otherwise the nearest catchable falling resource, otherwise
// the targeted slot.
func seekForce(st *world.State, b *world.Bird) vmath.Vec2 {
	if b.Carrying() {
		return vmath.V(0, -1)
	}
	if f := nearestFalling(st, b.Pos); f != nil {
		return f.Pos.Sub(b.Pos)
	}
	if r := st.Resource(b.TargetSlot); r != nil && !r.Stolen {
		return r.Pos.Sub(b.Pos)
	}
	return vmath.Vec2{}
}

// nearestFalling returns the closest in-flight resource still inside the
// field, nil when none is catchable.
func nearestFalling(st *world.State, from vmath.Vec2) *world.FallingResource {
	var best *world.FallingResource
	bestD := 0.0
	for _, f := range st.Falling {
		if f.Done || !st.InBounds(f.Pos, 0) {
			continue
		}
		d := vmath.DistSq(from, f.Pos)
		if best == nil || d < bestD {
			best, bestD = f, d
		}
	}
	return best
}

// avoidForce sums inverse-distance repulsion from every hazard whose
// influence circle (size plus margin) contains the point.
func avoidForce(st *world.State, p vmath.Vec2, margin float64) vmath.Vec2 {
	var out vmath.Vec2
	for _, h := range st.Hazards {
		if h.Destroyed {
			continue
		}
		reach := h.Size + margin
		diff := p.Sub(h.Pos)
		d := diff.Len()
		if d >= reach || d == 0 {
			continue
		}
		// Strength ramps from 0 at the rim to full at the surface.
		out = out.Add(diff.WithLen((reach - d) / reach))
	}
	return out
}

// integrate applies a steering force over dt and moves the bird.
func integrate(b *world.Bird, force vmath.Vec2, dts float64) {
	b.Vel = b.Vel.Add(force.Scale(dts)).ClampLen(b.MaxSpeed)
	b.Pos = b.Pos.Add(b.Vel.Scale(dts))
	if !b.Pos.Finite() || !b.Vel.Finite() {
		// A corrupted bird never propagates NaN into the flock.
		b.Pos = vmath.V(0, -world.BirdRadius*2)
		b.Vel = vmath.V(0, 1)
	}
}
