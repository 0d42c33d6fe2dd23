package sim

import (
	"time"

	"github.com/skyraid/server/internal/world"
)

// CleanupSystem is the last phase of every tick: dead birds compact out
// of the slice and the entity destroy queue flushes, which also evicts
// any component data (elite AI memory) registered for those entities.
type CleanupSystem struct {
	st *world.State
}

func NewCleanupSystem(st *world.State) *CleanupSystem {
	return &CleanupSystem{st: st}
}

func (s *CleanupSystem) Phase() Phase { return PhaseCleanup }

func (s *CleanupSystem) Update(time.Duration) {
	s.st.CompactBirds()
	s.st.ECS.FlushDestroyQueue()
}
