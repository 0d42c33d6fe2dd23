package sim

import (
	"math"
	"math/rand"

	"github.com/skyraid/server/internal/data"
	"github.com/skyraid/server/internal/vmath"
)

// PatternKind enumerates the decorative motion curves elite birds follow.
type PatternKind int

const (
	PatternLissajous PatternKind = iota
	PatternSpiral
	PatternFigureEight
	PatternSine
	PatternGoldenSpiral
	PatternRose
	PatternButterfly

	patternCount
)

func (k PatternKind) String() string {
	switch k {
	case PatternLissajous:
		return "lissajous"
	case PatternSpiral:
		return "spiral"
	case PatternFigureEight:
		return "figure_eight"
	case PatternSine:
		return "sine"
	case PatternGoldenSpiral:
		return "golden_spiral"
	case PatternRose:
		return "rose"
	case PatternButterfly:
		return "butterfly"
	default:
		return "unknown"
	}
}

// RollPattern picks a curve for a freshly created elite memory.
func RollPattern(rng *rand.Rand) PatternKind {
	return PatternKind(rng.Intn(int(patternCount)))
}

// PatternPoint evaluates the curve offset at phase t. The offset is
// relative to the curve's anchor (the elite's live target area).
func PatternPoint(kind PatternKind, t float64, p data.PatternParams) vmath.Vec2 {
	switch kind {
	case PatternLissajous:
		return vmath.V(
			p.Scale*math.Sin(p.FreqA*t),
			p.Scale*math.Sin(p.FreqB*t+math.Pi/2),
		)
	case PatternSpiral:
		// Expanding spiral, rewound once it reaches full extent.
		r := math.Mod(t*12, p.Scale)
		return vmath.V(r*math.Cos(p.FreqA*t), r*math.Sin(p.FreqA*t))
	case PatternFigureEight:
		return vmath.V(
			p.Scale*math.Sin(p.FreqA*t),
			p.Scale*math.Sin(p.FreqA*t)*math.Cos(p.FreqA*t),
		)
	case PatternSine:
		// Traveling sine wave: drifts sideways while oscillating.
		x := math.Mod(t*20, p.Scale*2) - p.Scale
		return vmath.V(x, p.Scale*0.5*math.Sin(p.FreqA*t))
	case PatternGoldenSpiral:
		// Logarithmic spiral with the golden-ratio growth factor.
		const phi = 1.618033988749895
		theta := p.FreqA * t
		r := math.Mod(2*math.Pow(phi, theta*2/math.Pi), p.Scale)
		return vmath.V(r*math.Cos(theta), r*math.Sin(theta))
	case PatternRose:
		theta := p.FreqA * t
		r := p.Scale * math.Cos(p.FreqB*theta)
		return vmath.V(r*math.Cos(theta), r*math.Sin(theta))
	case PatternButterfly:
		// Temple Fay's butterfly curve.
		theta := p.FreqA * t
		r := math.Exp(math.Sin(theta)) - 2*math.Cos(4*theta) +
			math.Pow(math.Sin((2*theta-math.Pi)/24), 5)
		return vmath.V(p.Scale*r*math.Sin(theta), -p.Scale*r*math.Cos(theta))
	default:
		return vmath.Vec2{}
	}
}
