package sim

import (
	"time"

	"go.uber.org/zap"

	"github.com/skyraid/server/internal/world"
)

// BurstSpawnSystem flushes deferred spawn seeds queued during the
// steering phase. At most BurstPerFrame seeds materialize per tick; the
// rest stay queued, so a flood of deliveries trickles in instead of
// spiking one frame.
type BurstSpawnSystem struct {
	st  *world.State
	log *zap.Logger
}

func NewBurstSpawnSystem(st *world.State, log *zap.Logger) *BurstSpawnSystem {
	return &BurstSpawnSystem{st: st, log: log}
}

func (s *BurstSpawnSystem) Phase() Phase { return PhaseFlush }

func (s *BurstSpawnSystem) Update(time.Duration) {
	seeds := s.st.DrainDeferred(s.st.Cfg.Limits.BurstPerFrame)
	for _, seed := range seeds {
		s.st.SpawnBird(seed)
	}
	if len(seeds) > 0 {
		s.log.Debug("burst spawned", zap.Int("count", len(seeds)))
	}
}
