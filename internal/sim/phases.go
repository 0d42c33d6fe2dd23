package sim

import "github.com/skyraid/server/internal/core/system"

// Phase aliases keep the system implementations in this package short.
type Phase = system.Phase

const (
	PhaseSpawn     = system.PhaseSpawn
	PhaseSteering  = system.PhaseSteering
	PhaseFlush     = system.PhaseFlush
	PhaseMotion    = system.PhaseMotion
	PhaseCollision = system.PhaseCollision
	PhaseResolve   = system.PhaseResolve
	PhasePersist   = system.PhasePersist
	PhaseCleanup   = system.PhaseCleanup
)
