package sim

import (
	"time"

	"go.uber.org/zap"

	"github.com/skyraid/server/internal/world"
)

// MotionSystem integrates hazards, projectiles and disruptors. Hazards
// wrap horizontally and shrink a little on each wrap, so an untouched
// hazard still decays instead of orbiting forever; they are culled once
// they fall below the minimum size or leave the field vertically.
type MotionSystem struct {
	st  *world.State
	log *zap.Logger
}

func NewMotionSystem(st *world.State, log *zap.Logger) *MotionSystem {
	return &MotionSystem{st: st, log: log}
}

func (s *MotionSystem) Phase() Phase { return PhaseMotion }

const verticalExitMargin = 80.0

func (s *MotionSystem) Update(dt time.Duration) {
	dts := dt.Seconds()
	s.moveHazards(dts)
	s.moveProjectiles(dts)
	s.moveDisruptors(dts)
}

func (s *MotionSystem) moveHazards(dts float64) {
	w := s.st.Cfg.Sim.Width
	for i := len(s.st.Hazards) - 1; i >= 0; i-- {
		h := s.st.Hazards[i]
		h.Pos = h.Pos.Add(h.Vel.Scale(dts))

		if h.Pos.X < -h.Size {
			h.Pos.X = w + h.Size
			h.Shrink(s.st.Rng, s.st.Cfg.Hazard.WrapShrink)
		} else if h.Pos.X > w+h.Size {
			h.Pos.X = -h.Size
			h.Shrink(s.st.Rng, s.st.Cfg.Hazard.WrapShrink)
		}

		gone := h.Pos.Y < -verticalExitMargin ||
			h.Pos.Y > s.st.Cfg.Sim.Height+verticalExitMargin
		if gone || h.Size < s.st.Cfg.Hazard.MinSize || !h.Pos.Finite() {
			s.st.RemoveHazardAt(i)
		}
	}
}

func (s *MotionSystem) moveProjectiles(dts float64) {
	for i := len(s.st.Projectiles) - 1; i >= 0; i-- {
		p := s.st.Projectiles[i]
		p.Pos = p.Pos.Add(p.Vel.Scale(dts))
		p.TTL--
		if p.Dead || p.TTL <= 0 || !s.st.InBounds(p.Pos, world.ProjectileRadius) {
			s.st.Projectiles = append(s.st.Projectiles[:i], s.st.Projectiles[i+1:]...)
		}
	}
}

func (s *MotionSystem) moveDisruptors(dts float64) {
	for i := len(s.st.Disruptors) - 1; i >= 0; i-- {
		d := s.st.Disruptors[i]
		d.Pos = d.Pos.Add(d.Vel.Scale(dts))
		if d.Dead || !s.st.InBounds(d.Pos, d.Size) {
			s.st.Disruptors = append(s.st.Disruptors[:i], s.st.Disruptors[i+1:]...)
		}
	}
}
