package sim

import (
	"time"

	"go.uber.org/zap"

	"github.com/skyraid/server/internal/core/event"
	"github.com/skyraid/server/internal/score"
	"github.com/skyraid/server/internal/vmath"
	"github.com/skyraid/server/internal/world"
)

// BirdLifecycleSystem resolves everything a bird does besides flying:
// stealing a resource off its slot, catching one mid-fall, completing a
// delivery past the top boundary, firing at hazards (ranged kind),
// dropping disruptors (layer kind), and leaving the field. Registered
// after the steering systems so it sees post-move positions.
type BirdLifecycleSystem struct {
	st     *world.State
	bus    *event.Bus
	ledger *score.Ledger
	log    *zap.Logger
}

func NewBirdLifecycleSystem(st *world.State, bus *event.Bus, ledger *score.Ledger, log *zap.Logger) *BirdLifecycleSystem {
	return &BirdLifecycleSystem{st: st, bus: bus, ledger: ledger, log: log}
}

func (s *BirdLifecycleSystem) Phase() Phase { return PhaseSteering }

const (
	pickupRadius    = world.BirdRadius + 8
	exitMargin      = world.BirdRadius * 4
	sideMargin      = 60.0 // birds may wander this far past left/right/bottom
	fireRange       = 220.0
	fireCooldown    = 150 // ticks
	projectileSpeed = 240.0
	projectileTTL   = 120 // ticks
	layCooldown     = 240 // ticks
	disruptorSize   = 9.0
)

func (s *BirdLifecycleSystem) Update(dt time.Duration) {
	for i := len(s.st.Birds) - 1; i >= 0; i-- {
		b := s.st.Birds[i]
		if !b.Alive {
			continue
		}
		s.tryPickup(b)
		s.tryCatch(b)
		switch b.Kind {
		case world.BirdRanged:
			s.tryFire(b)
		case world.BirdLayer:
			s.tryLay(b)
		}
		s.resolveExit(i, b)
	}
}

// tryPickup steals the targeted slot resource on contact.
func (s *BirdLifecycleSystem) tryPickup(b *world.Bird) {
	if b.Carrying() {
		return
	}
	r := s.st.Resource(b.TargetSlot)
	if r == nil || r.Stolen {
		return
	}
	if vmath.DistSq(b.Pos, r.Pos) > pickupRadius*pickupRadius {
		return
	}
	r.Stolen = true
	r.RespawnTicks = 0
	b.CarrySlot = r.Slot
	b.TargetSlot = -1
	event.Emit(s.bus, event.ResourceStolen{Slot: r.Slot, Bird: b.ID})
	s.log.Debug("resource stolen",
		zap.Int("slot", r.Slot), zap.Uint64("bird", uint64(b.ID)))
}

// tryCatch grabs a falling resource on contact. The catcher becomes the
// carrier; the original slot stays stolen.
func (s *BirdLifecycleSystem) tryCatch(b *world.Bird) {
	if b.Carrying() {
		return
	}
	for _, f := range s.st.Falling {
		if f.Done {
			continue
		}
		if vmath.DistSq(b.Pos, f.Pos) > pickupRadius*pickupRadius {
			continue
		}
		f.Done = true
		b.CarrySlot = f.Slot
		b.TargetSlot = -1
		return
	}
}

// tryFire launches a pellet at the nearest hazard in range, leading the
// target. Pellets are capped by the projectile ceiling.
func (s *BirdLifecycleSystem) tryFire(b *world.Bird) {
	if b.FireCooldown > 0 {
		b.FireCooldown--
		return
	}
	if len(s.st.Projectiles) >= s.st.Cfg.Limits.MaxProjectiles {
		return
	}
	var target *world.Hazard
	bestD := fireRange * fireRange
	for _, h := range s.st.Hazards {
		if h.Destroyed {
			continue
		}
		if d := vmath.DistSq(b.Pos, h.Pos); d < bestD {
			target, bestD = h, d
		}
	}
	if target == nil {
		return
	}
	aim, _ := SolveIntercept(b.Pos, target.Pos, target.Vel, projectileSpeed)
	dir := aim.Sub(b.Pos)
	if dir.LenSq() == 0 {
		return
	}
	s.st.Projectiles = append(s.st.Projectiles, &world.Projectile{
		Pos: b.Pos,
		Vel: dir.WithLen(projectileSpeed),
		TTL: projectileTTL,
	})
	b.FireCooldown = fireCooldown
}

// tryLay drops a slow drifting disruptor mine below the bird.
func (s *BirdLifecycleSystem) tryLay(b *world.Bird) {
	if b.LayCooldown > 0 {
		b.LayCooldown--
		return
	}
	s.st.Disruptors = append(s.st.Disruptors, &world.Disruptor{
		Pos:  b.Pos.Add(vmath.V(0, world.BirdRadius*2)),
		Vel:  vmath.V(0, 18),
		Size: disruptorSize,
	})
	b.LayCooldown = layCooldown
}

// resolveExit handles birds leaving the field. A carrier crossing the top
// boundary completes its delivery: the resource is consumed, the slot
// respawn timer arms, the score takes the delivery penalty (combo break)
// and a reinforcement burst is queued. Any other exit removes the bird;
// a carrier drops its resource first so the slot can resolve to restored
// or respawning instead of staying stolen forever.
func (s *BirdLifecycleSystem) resolveExit(i int, b *world.Bird) {
	if b.Carrying() && b.Pos.Y < -exitMargin {
		s.completeDelivery(b)
		s.st.DestroyBirdAt(i)
		return
	}
	if !s.st.InBounds(b.Pos, sideMargin) {
		if b.Carrying() {
			s.st.Falling = append(s.st.Falling, &world.FallingResource{
				Slot: b.CarrySlot,
				Pos:  b.Pos,
				Vel:  b.Vel.Scale(0.3),
			})
			b.CarrySlot = -1
		}
		s.st.DestroyBirdAt(i)
	}
}

func (s *BirdLifecycleSystem) completeDelivery(b *world.Bird) {
	slot := b.CarrySlot
	b.CarrySlot = -1
	if r := s.st.Resource(slot); r != nil {
		r.RespawnTicks = int(s.st.Cfg.Sim.ResourceRespawn / s.st.Cfg.Sim.TickRate)
	}
	s.st.LostThisWave++
	s.ledger.Apply(score.Event{Kind: score.ResourceLost})
	event.Emit(s.bus, event.ResourceDelivered{Slot: slot})
	event.Emit(s.bus, event.ResourceLost{Slot: slot})

	for n := 0; n < s.st.Cfg.Wave.BurstSize; n++ {
		if !s.st.QueueBurst(world.BirdSeed{SpeedMult: 1.1}) {
			break
		}
	}
	s.log.Info("resource delivered",
		zap.Int("slot", slot), zap.Int("burst", s.st.Cfg.Wave.BurstSize))
}
