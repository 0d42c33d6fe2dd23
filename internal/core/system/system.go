package system

import "time"

// Phase defines execution ordering within a single simulation tick.
type Phase int

const (
	PhaseSpawn     Phase = iota // 0: wave scheduler emits new birds
	PhaseSteering               // 1: per-bird force computation + integration
	PhaseFlush                  // 2: deferred burst spawns join the world
	PhaseMotion                 // 3: hazards, projectiles, disruptors move
	PhaseCollision              // 4: detect/process/remove contacts
	PhaseResolve                // 5: falling resources, combo decay, wave bookkeeping
	PhasePersist                // 6: snapshot flush
	PhaseCleanup                // 7: destroy queued entities, evict AI memory
)

// System is the interface every per-tick simulation system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
