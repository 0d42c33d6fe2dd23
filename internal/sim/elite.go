package sim

import (
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/skyraid/server/internal/core/ecs"
	"github.com/skyraid/server/internal/data"
	"github.com/skyraid/server/internal/vmath"
	"github.com/skyraid/server/internal/world"
)

// EliteMemory is the per-elite AI state, stored in a component store
// parallel to the bird slice so destroying the entity evicts it
// automatically through the registry.
type EliteMemory struct {
	Pattern      PatternKind
	PatternPhase float64
	Independence float64        // [IndependenceMin, 1): damping on leader pull
	Leader       ecs.EntityID   // packmate followed, zero when flying solo
	LeapCooldown int            // ticks until the next emergency leap roll
	Anchor       vmath.Vec2     // smoothed curve anchor near the live target
}

// EliteSystem drives elite birds with layered steering: a decorative
// pattern curve, a sampled-trajectory predictive term, closed-form
// target interception, leader coordination damped by independence,
// threat evasion, and a rare emergency leap out of concentrated danger.
type EliteSystem struct {
	st       *world.State
	patterns *data.PatternTable
	memory   *ecs.PtrComponentStore[EliteMemory]
	log      *zap.Logger
}

func NewEliteSystem(st *world.State, patterns *data.PatternTable, log *zap.Logger) *EliteSystem {
	mem := ecs.NewPtrComponentStore[EliteMemory]()
	st.ECS.Registry().Register(mem)
	return &EliteSystem{st: st, patterns: patterns, memory: mem, log: log}
}

func (s *EliteSystem) Phase() Phase { return PhaseSteering }

// Memory exposes the component store for lifecycle tests.
func (s *EliteSystem) Memory() *ecs.PtrComponentStore[EliteMemory] { return s.memory }

const (
	eliteFanArcs     = 5    // sampled headings in the trajectory fan
	eliteFanSpread   = 0.6  // radians either side of the goal bearing
	eliteFanSteps    = 6    // integration substeps per sampled heading
	eliteFanStepTime = 0.12 // seconds per substep
	eliteLeapRadius  = 64.0
	eliteLeapProbes  = 8
	dodgeHorizon     = 1.2 // seconds of closest-approach lookahead
)

func (s *EliteSystem) Update(dt time.Duration) {
	dts := dt.Seconds()
	hazards := s.hazardRefs()

	for _, b := range s.st.Birds {
		if !b.Alive || b.Kind != world.BirdElite {
			continue
		}
		m := s.memoryFor(b)
		m.PatternPhase += dts
		if m.LeapCooldown > 0 {
			m.LeapCooldown--
		}
		retarget(s.st, b)

		if s.tryLeap(b, m, hazards) {
			continue
		}

		goal := s.goalPoint(b)
		force := s.patternForce(b, m, goal).Scale(2.2)
		force = force.Add(s.predictiveForce(b, goal, hazards).Scale(1.0))
		force = force.Add(s.interceptForce(b, goal).Scale(0.8))
		force = force.Add(s.leaderForce(b, m).Scale(0.2 * (1 - m.Independence)))
		force = force.Add(s.evadeForce(b, hazards).Scale(2.5))

		boost := s.st.Cfg.Elite.Boost
		integrate(b, force.ClampLen(b.MaxForce*boost), dts)
	}
}

func (s *EliteSystem) memoryFor(b *world.Bird) *EliteMemory {
	if m, ok := s.memory.Get(b.ID); ok {
		return m
	}
	rng := s.st.Rng
	cfg := &s.st.Cfg.Elite
	m := &EliteMemory{
		Pattern:      RollPattern(rng),
		PatternPhase: rng.Float64() * 10,
		Independence: cfg.IndependenceMin + rng.Float64()*(1-cfg.IndependenceMin),
		Anchor:       b.Pos,
	}
	s.memory.Set(b.ID, m)
	return m
}

func (s *EliteSystem) hazardRefs() []*hazardRef {
	refs := make([]*hazardRef, 0, len(s.st.Hazards))
	for _, h := range s.st.Hazards {
		if h.Destroyed {
			continue
		}
		refs = append(refs, &hazardRef{pos: h.Pos, vel: h.Vel, size: h.Size})
	}
	return refs
}

// goalPoint is where the elite ultimately wants to be this tick.
func (s *EliteSystem) goalPoint(b *world.Bird) vmath.Vec2 {
	if b.Carrying() {
		return vmath.V(b.Pos.X, -world.BirdRadius*4)
	}
	if f := nearestFalling(s.st, b.Pos); f != nil {
		return f.Pos
	}
	if r := s.st.Resource(b.TargetSlot); r != nil && !r.Stolen {
		return r.Pos
	}
	// Nothing worth stealing: hold the mid-field.
	return vmath.V(s.st.Cfg.Sim.Width/2, s.st.Cfg.Sim.Height/3)
}

// patternForce pulls the elite toward a point on its curve, anchored at
// a slow-chasing anchor so the decorative motion survives retargeting.
func (s *EliteSystem) patternForce(b *world.Bird, m *EliteMemory, goal vmath.Vec2) vmath.Vec2 {
	m.Anchor = vmath.Lerp(m.Anchor, goal, 0.02)
	params := s.patterns.Get(m.Pattern.String())
	want := m.Anchor.Add(PatternPoint(m.Pattern, m.PatternPhase, params))
	return want.Sub(b.Pos)
}

// predictiveForce samples a fan of candidate headings around the goal
// bearing, rolls each forward through the hazard field, and steers along
// the cheapest. Cost is distance to the goal plus an exponential danger
// penalty, so a slightly longer safe arc beats a direct lethal one.
func (s *EliteSystem) predictiveForce(b *world.Bird, goal vmath.Vec2, hazards []*hazardRef) vmath.Vec2 {
	bearing := goal.Sub(b.Pos)
	if bearing.LenSq() == 0 {
		return vmath.Vec2{}
	}
	base := bearing.Angle()

	bestCost := math.Inf(1)
	var bestDir vmath.Vec2
	for i := 0; i < eliteFanArcs; i++ {
		frac := 0.0
		if eliteFanArcs > 1 {
			frac = float64(i)/float64(eliteFanArcs-1)*2 - 1
		}
		dir := vmath.V(math.Cos(base+frac*eliteFanSpread), math.Sin(base+frac*eliteFanSpread))

		pos := b.Pos
		cost := 0.0
		for step := 0; step < eliteFanSteps; step++ {
			pos = pos.Add(dir.Scale(b.MaxSpeed * eliteFanStepTime))
			cost += vmath.Dist(pos, goal)
			cost += 40 * math.Expm1(hazardDanger(hazards, pos))
		}
		if cost < bestCost {
			bestCost, bestDir = cost, dir
		}
	}
	return bestDir
}

// interceptForce aims at the lead point of the nearest falling resource.
func (s *EliteSystem) interceptForce(b *world.Bird, goal vmath.Vec2) vmath.Vec2 {
	f := nearestFalling(s.st, b.Pos)
	if f == nil {
		return goal.Sub(b.Pos)
	}
	point, _ := SolveIntercept(b.Pos, f.Pos, f.Vel, b.MaxSpeed)
	return point.Sub(b.Pos)
}

// leaderForce tracks the packmate closest to this elite's goal. The
// leader link is remembered across ticks and dropped once it goes stale.
func (s *EliteSystem) leaderForce(b *world.Bird, m *EliteMemory) vmath.Vec2 {
	if leader := s.st.BirdByID(m.Leader); leader != nil && leader.Alive && leader != b {
		return leader.Pos.Sub(b.Pos)
	}
	m.Leader = 0

	goal := s.goalPoint(b)
	var best *world.Bird
	bestD := 0.0
	for _, o := range s.st.Birds {
		if o == b || !o.Alive {
			continue
		}
		d := vmath.DistSq(o.Pos, goal)
		if best == nil || d < bestD {
			best, bestD = o, d
		}
	}
	if best == nil {
		return vmath.Vec2{}
	}
	m.Leader = best.ID
	return best.Pos.Sub(b.Pos)
}

// evadeForce combines surface repulsion with a closest-approach dodge:
// when a hazard's predicted pass comes inside its influence circle within
// the horizon, push perpendicular to the relative velocity.
func (s *EliteSystem) evadeForce(b *world.Bird, hazards []*hazardRef) vmath.Vec2 {
	margin := s.st.Cfg.Flocking.AvoidMargin
	var out vmath.Vec2
	for _, h := range hazards {
		reach := h.size + margin
		diff := b.Pos.Sub(h.pos)
		if d := diff.Len(); d < reach && d > 0 {
			out = out.Add(diff.WithLen((reach - d) / reach))
		}

		relPos := h.pos.Sub(b.Pos)
		relVel := h.vel.Sub(b.Vel)
		v2 := relVel.LenSq()
		if v2 < 1e-9 {
			continue
		}
		tca := -relPos.Dot(relVel) / v2
		if tca <= 0 || tca > dodgeHorizon {
			continue
		}
		closest := relPos.Add(relVel.Scale(tca))
		if closest.Len() < reach {
			dodge := relVel.Perp().Normalized()
			if dodge.Dot(closest) > 0 {
				dodge = dodge.Scale(-1)
			}
			out = out.Add(dodge.Scale(1 - tca/dodgeHorizon))
		}
	}
	return out
}

// tryLeap teleports the elite's heading out of concentrated danger. The
// roll only happens off cooldown and above the danger threshold; the
// first of eight compass probes that lands somewhere calm wins.
func (s *EliteSystem) tryLeap(b *world.Bird, m *EliteMemory, hazards []*hazardRef) bool {
	cfg := &s.st.Cfg.Elite
	if m.LeapCooldown > 0 || s.st.Rng.Float64() >= cfg.LeapChance {
		return false
	}
	if hazardDanger(hazards, b.Pos) < cfg.DangerHigh {
		return false
	}
	start := s.st.Rng.Float64() * 2 * math.Pi
	for i := 0; i < eliteLeapProbes; i++ {
		angle := start + float64(i)*2*math.Pi/eliteLeapProbes
		dest := b.Pos.Add(vmath.V(math.Cos(angle), math.Sin(angle)).Scale(eliteLeapRadius))
		if !s.st.InBounds(dest, 0) || hazardDanger(hazards, dest) > cfg.DangerSafe {
			continue
		}
		b.Vel = dest.Sub(b.Pos).WithLen(b.MaxSpeed)
		m.LeapCooldown = cfg.LeapCooldown
		s.log.Debug("elite leap",
			zap.Uint64("bird", uint64(b.ID)),
			zap.Float64("x", dest.X), zap.Float64("y", dest.Y))
		return true
	}
	return false
}
