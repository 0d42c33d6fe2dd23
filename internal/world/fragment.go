package world

import (
	"math"
	"math/rand"

	"github.com/skyraid/server/internal/vmath"
)

const maxFragments = 4

// FragmentHazard splits a hazard into 0-4 children whose combined visual
// area is smaller than the parent's. Velocities radiate outward; when
// pushAway is non-nil they are biased away from that anchor point. The
// global hazard ceiling is honored: once reached, no fragments spawn.
// Children get freshly generated outlines, never scaled copies.
func FragmentHazard(rng *rand.Rand, parent *Hazard, totalHazards, ceiling int, minSize float64, pushAway *vmath.Vec2) []*Hazard {
	room := ceiling - totalHazards
	if room <= 0 {
		return nil
	}

	want := 2 + rng.Intn(maxFragments-1) // 2..4 before clamping
	if want > room {
		want = room
	}

	// Child sizes: random shares of the parent, then rescaled so the
	// summed area stays strictly below the parent's.
	sizes := make([]float64, 0, want)
	areaSum := 0.0
	for i := 0; i < want; i++ {
		s := parent.Size * (0.35 + 0.25*rng.Float64())
		if s < minSize {
			continue
		}
		sizes = append(sizes, s)
		areaSum += s * s
	}
	if len(sizes) == 0 {
		return nil
	}
	parentArea := parent.Size * parent.Size
	if areaSum >= parentArea {
		scale := math.Sqrt(parentArea / areaSum * 0.8)
		for i := range sizes {
			sizes[i] *= scale
		}
	}

	baseAngle := rng.Float64() * 2 * math.Pi
	var bias vmath.Vec2
	if pushAway != nil {
		bias = parent.Pos.Sub(*pushAway).Normalized()
	}

	children := make([]*Hazard, 0, len(sizes))
	for i, s := range sizes {
		if s < minSize {
			continue
		}
		angle := baseAngle + float64(i)*2*math.Pi/float64(len(sizes)) + (rng.Float64()-0.5)*0.5
		speed := 40 + rng.Float64()*60
		dir := vmath.V(math.Cos(angle), math.Sin(angle))
		if pushAway != nil {
			dir = dir.Add(bias.Scale(1.5)).Normalized()
		}
		vel := parent.Vel.Scale(0.3).Add(dir.Scale(speed))
		offset := dir.Scale(parent.Size * 0.4)
		children = append(children, NewHazard(rng, parent.Pos.Add(offset), vel, s))
	}
	return children
}
