package sim

import (
	"time"

	"go.uber.org/zap"

	"github.com/skyraid/server/internal/core/event"
	"github.com/skyraid/server/internal/score"
	"github.com/skyraid/server/internal/vmath"
	"github.com/skyraid/server/internal/world"
)

// ResourceSystem resolves falling resources and slot respawn timers, and
// decays the combo window. A falling resource that reaches the baseline
// restores its slot; one that drifts out of the field is gone for the
// wave and its slot re-arms on the respawn timer.
type ResourceSystem struct {
	st     *world.State
	bus    *event.Bus
	ledger *score.Ledger
	log    *zap.Logger
}

func NewResourceSystem(st *world.State, bus *event.Bus, ledger *score.Ledger, log *zap.Logger) *ResourceSystem {
	return &ResourceSystem{st: st, bus: bus, ledger: ledger, log: log}
}

func (s *ResourceSystem) Phase() Phase { return PhaseResolve }

const fallExitMargin = 40.0

func (s *ResourceSystem) Update(dt time.Duration) {
	dts := dt.Seconds()
	baseline := s.st.Cfg.Sim.Height - 24

	for i := len(s.st.Falling) - 1; i >= 0; i-- {
		f := s.st.Falling[i]
		if f.Done {
			s.st.Falling = append(s.st.Falling[:i], s.st.Falling[i+1:]...)
			continue
		}
		f.Vel = f.Vel.Add(vmath.V(0, world.FallingGravity*dts))
		f.Pos = f.Pos.Add(f.Vel.Scale(dts))

		if f.Pos.Y >= baseline {
			s.land(f)
		} else if !s.st.InBounds(f.Pos, fallExitMargin) {
			s.lose(f)
		}
		if f.Done {
			s.st.Falling = append(s.st.Falling[:i], s.st.Falling[i+1:]...)
		}
	}

	s.tickRespawns()
	s.ledger.TickDown(dt)
}

// land snaps the resource back onto its slot and pays the recovery.
func (s *ResourceSystem) land(f *world.FallingResource) {
	f.Done = true
	r := s.st.Resource(f.Slot)
	if r == nil {
		return
	}
	r.Stolen = false
	r.RespawnTicks = 0
	s.ledger.Apply(score.Event{Kind: score.Recovery})
	event.Emit(s.bus, event.ResourceRestored{Slot: r.Slot})
	s.log.Debug("resource landed", zap.Int("slot", r.Slot))
}

// lose drops the resource out of play. The slot re-arms on the respawn
// timer; unlike a delivery this costs no points and spares the combo.
func (s *ResourceSystem) lose(f *world.FallingResource) {
	f.Done = true
	s.st.LostThisWave++
	if r := s.st.Resource(f.Slot); r != nil {
		r.RespawnTicks = int(s.st.Cfg.Sim.ResourceRespawn / s.st.Cfg.Sim.TickRate)
	}
	event.Emit(s.bus, event.ResourceLost{Slot: f.Slot})
	s.log.Debug("resource fell out of bounds", zap.Int("slot", f.Slot))
}

// tickRespawns counts down consumed slots. Slots with a live falling
// resource keep RespawnTicks at zero and are skipped.
func (s *ResourceSystem) tickRespawns() {
	inFlight := make(map[int]bool, len(s.st.Falling))
	for _, f := range s.st.Falling {
		if !f.Done {
			inFlight[f.Slot] = true
		}
	}
	carried := make(map[int]bool)
	for _, b := range s.st.Birds {
		if b.Alive && b.Carrying() {
			carried[b.CarrySlot] = true
		}
	}
	for _, r := range s.st.Resources {
		if !r.Stolen || r.RespawnTicks <= 0 || inFlight[r.Slot] || carried[r.Slot] {
			continue
		}
		r.RespawnTicks--
		if r.RespawnTicks == 0 {
			r.Stolen = false
			event.Emit(s.bus, event.ResourceRestored{Slot: r.Slot})
			s.log.Debug("resource respawned", zap.Int("slot", r.Slot))
		}
	}
}
