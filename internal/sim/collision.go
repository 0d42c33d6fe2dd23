package sim

import (
	"time"

	"go.uber.org/zap"

	"github.com/skyraid/server/internal/core/event"
	"github.com/skyraid/server/internal/score"
	"github.com/skyraid/server/internal/vmath"
	"github.com/skyraid/server/internal/world"
)

// CollisionHooks let the orchestrator veto or observe impacts. OnBirdHit
// returning true vetoes the kill (the boss absorb). OnHazardHit returning
// true forces immediate destruction regardless of remaining size. A panic
// inside a hook is contained and treated as "hazard destroyed", so a
// faulty hook degrades the hazard instead of corrupting the tick.
type CollisionHooks struct {
	OnBirdHit   func(b *world.Bird, h *world.Hazard) bool
	OnHazardHit func(h *world.Hazard) bool
}

// CollisionSystem runs the three-phase contact pipeline: detect every
// contact against an unchanging world, process them, then splice removals
// in strictly descending index order. Nothing mutates collections during
// detection, so contact indices stay valid throughout.
type CollisionSystem struct {
	st     *world.State
	bus    *event.Bus
	ledger *score.Ledger
	hooks  CollisionHooks
	log    *zap.Logger

	degraded bool // budget overflow latch, for logging once per episode
}

func NewCollisionSystem(st *world.State, bus *event.Bus, ledger *score.Ledger, hooks CollisionHooks, log *zap.Logger) *CollisionSystem {
	return &CollisionSystem{st: st, bus: bus, ledger: ledger, hooks: hooks, log: log}
}

func (s *CollisionSystem) Phase() Phase { return PhaseCollision }

type birdContact struct{ bi, hi int }
type projContact struct{ pi, hi int }
type disrContact struct{ di, hi int }

// Disruptor band: a hazard and disruptor annihilate only when their
// sizes are within this ratio of each other. A far bigger hazard plows
// through (and merely shrinks); a far smaller one dies alone.
const disruptorBand = 3.0

func (s *CollisionSystem) Update(time.Duration) {
	birdHits, projHits, disrHits := s.detect()
	s.process(birdHits, projHits, disrHits)
	s.remove()
}

func (s *CollisionSystem) detect() ([]birdContact, []projContact, []disrContact) {
	var birdHits []birdContact
	var projHits []projContact
	var disrHits []disrContact

	pairs := len(s.st.Hazards) * len(s.st.Birds)
	if pairs > s.st.Cfg.Limits.MaxCollisionChecks {
		// Graceful degrade: skip bird-hazard checks this tick rather than
		// blowing the frame budget. Pellets and mines still resolve.
		if !s.degraded {
			s.log.Warn("collision budget exceeded, skipping bird checks",
				zap.Int("pairs", pairs))
			s.degraded = true
		}
	} else {
		s.degraded = false
		for hi, h := range s.st.Hazards {
			if h.Destroyed {
				continue
			}
			reach := h.Size + world.BirdRadius
			for bi, b := range s.st.Birds {
				if !b.Alive || !b.Pos.Finite() {
					continue
				}
				if vmath.DistSq(h.Pos, b.Pos) < reach*reach {
					birdHits = append(birdHits, birdContact{bi: bi, hi: hi})
				}
			}
		}
	}

	for pi, p := range s.st.Projectiles {
		if p.Dead {
			continue
		}
		for hi, h := range s.st.Hazards {
			if h.Destroyed {
				continue
			}
			reach := h.Size + world.ProjectileRadius
			if vmath.DistSq(p.Pos, h.Pos) < reach*reach {
				projHits = append(projHits, projContact{pi: pi, hi: hi})
				break
			}
		}
	}

	for di, d := range s.st.Disruptors {
		if d.Dead {
			continue
		}
		for hi, h := range s.st.Hazards {
			if h.Destroyed {
				continue
			}
			reach := h.Size + d.Size
			if vmath.DistSq(d.Pos, h.Pos) < reach*reach {
				disrHits = append(disrHits, disrContact{di: di, hi: hi})
				break
			}
		}
	}
	return birdHits, projHits, disrHits
}

func (s *CollisionSystem) process(birdHits []birdContact, projHits []projContact, disrHits []disrContact) {
	hitBirds := make(map[int]bool, len(birdHits))
	for _, c := range birdHits {
		if hitBirds[c.bi] {
			continue // each bird resolves at most one impact per tick
		}
		b, h := s.st.Birds[c.bi], s.st.Hazards[c.hi]
		if !b.Alive || h.Destroyed {
			continue
		}
		hitBirds[c.bi] = true

		if s.birdHitVetoed(b, h) {
			continue
		}
		s.killBird(c.bi, b, h)
		h.Shrink(s.st.Rng, s.st.Cfg.Hazard.ShrinkFactor)
		if h.Size < s.st.Cfg.Hazard.MinSize {
			s.destroyHazard(h, b.Pos)
		}
	}

	for _, c := range projHits {
		p, h := s.st.Projectiles[c.pi], s.st.Hazards[c.hi]
		if p.Dead || h.Destroyed {
			continue
		}
		p.Dead = true
		if s.hazardHitDestroys(h) {
			s.destroyHazard(h, p.Pos)
			continue
		}
		h.Shrink(s.st.Rng, s.st.Cfg.Hazard.ShrinkFactor)
		if h.Size < s.st.Cfg.Hazard.MinSize {
			s.destroyHazard(h, p.Pos)
		}
	}

	for _, c := range disrHits {
		d, h := s.st.Disruptors[c.di], s.st.Hazards[c.hi]
		if d.Dead || h.Destroyed {
			continue
		}
		ratio := h.Size / d.Size
		switch {
		case ratio > disruptorBand:
			// Hazard shrugs the mine off.
			d.Dead = true
			h.Shrink(s.st.Rng, s.st.Cfg.Hazard.ShrinkFactor)
		case ratio < 1/disruptorBand:
			s.destroyHazard(h, d.Pos)
		default:
			// Comparable sizes annihilate each other.
			d.Dead = true
			h.Kills++
			s.destroyHazard(h, d.Pos)
		}
	}
}

// birdHitVetoed runs the hook under recover. The built-in veto is the
// boss absorb: a boss spends one health point to survive the impact.
func (s *CollisionSystem) birdHitVetoed(b *world.Bird, h *world.Hazard) (veto bool) {
	if b.Kind == world.BirdBoss && b.Health > 1 {
		b.Health--
		return true
	}
	if s.hooks.OnBirdHit == nil {
		return false
	}
	defer func() {
		if rec := recover(); rec != nil {
			s.log.Error("bird hit hook panicked", zap.Any("panic", rec))
			veto = false
		}
	}()
	return s.hooks.OnBirdHit(b, h)
}

// hazardHitDestroys runs the hook under recover; a hook fault counts as
// "destroyed", the conservative outcome.
func (s *CollisionSystem) hazardHitDestroys(h *world.Hazard) (destroyed bool) {
	if s.hooks.OnHazardHit == nil {
		return false
	}
	defer func() {
		if rec := recover(); rec != nil {
			s.log.Error("hazard hit hook panicked", zap.Any("panic", rec))
			destroyed = true
		}
	}()
	return s.hooks.OnHazardHit(h)
}

func (s *CollisionSystem) killBird(bi int, b *world.Bird, h *world.Hazard) {
	carrying := b.Carrying()
	if carrying {
		// The resource tumbles free; its slot stays stolen until the
		// fall resolves one way or the other.
		s.st.Falling = append(s.st.Falling, &world.FallingResource{
			Slot: b.CarrySlot,
			Pos:  b.Pos,
			Vel:  b.Vel.Scale(0.3),
		})
		b.CarrySlot = -1
	}
	h.Kills++
	s.ledger.Apply(score.Event{Kind: score.Kill})
	event.Emit(s.bus, event.BirdKilled{
		EntityID: b.ID,
		X:        b.Pos.X,
		Y:        b.Pos.Y,
		Carrying: carrying,
	})
	s.st.DestroyBirdAt(bi)
}

// destroyHazard retires a hazard: fragments radiate away from the impact
// anchor, a 3+ kill career pays the multi-kill bonus, and the event goes
// out for presentation layers.
func (s *CollisionSystem) destroyHazard(h *world.Hazard, anchor vmath.Vec2) {
	if h.Destroyed {
		return
	}
	h.Destroyed = true

	children := world.FragmentHazard(s.st.Rng, h, len(s.st.Hazards),
		s.st.Cfg.Limits.MaxHazards, s.st.Cfg.Hazard.MinSize, &anchor)
	for _, c := range children {
		if !s.st.AddHazard(c) {
			break
		}
	}

	if h.Kills >= 3 {
		s.ledger.Apply(score.Event{Kind: score.MultiKill})
	}
	event.Emit(s.bus, event.HazardDestroyed{
		X: h.Pos.X, Y: h.Pos.Y, Size: h.Size, Kills: h.Kills,
	})
}

// remove splices out everything retired this tick, descending.
func (s *CollisionSystem) remove() {
	for i := len(s.st.Hazards) - 1; i >= 0; i-- {
		if s.st.Hazards[i].Destroyed {
			s.st.RemoveHazardAt(i)
		}
	}
	for i := len(s.st.Projectiles) - 1; i >= 0; i-- {
		if s.st.Projectiles[i].Dead {
			s.st.Projectiles = append(s.st.Projectiles[:i], s.st.Projectiles[i+1:]...)
		}
	}
	for i := len(s.st.Disruptors) - 1; i >= 0; i-- {
		if s.st.Disruptors[i].Dead {
			s.st.Disruptors = append(s.st.Disruptors[:i], s.st.Disruptors[i+1:]...)
		}
	}
}
