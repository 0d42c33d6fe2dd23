package system

import (
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
)

// Runner executes systems in phase order each tick. A panic inside one
// system is contained: the tick continues with that system's partial
// results discarded, and the fault count is reported so the orchestrator
// can escalate on consecutive failures.
type Runner struct {
	systems []System
	sorted  bool
	log     *zap.Logger
}

func NewRunner(log *zap.Logger) *Runner {
	return &Runner{
		systems: make([]System, 0, 16),
		log:     log,
	}
}

func (r *Runner) Register(s System) {
	r.systems = append(r.systems, s)
	r.sorted = false
}

// Tick runs every system once and returns the number of contained faults.
func (r *Runner) Tick(dt time.Duration) int {
	r.ensureSorted()
	faults := 0
	for _, s := range r.systems {
		if err := r.runContained(s, dt); err != nil {
			faults++
			r.log.Error("system fault contained",
				zap.String("system", fmt.Sprintf("%T", s)),
				zap.Error(err))
		}
	}
	return faults
}

func (r *Runner) runContained(s System, dt time.Duration) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	s.Update(dt)
	return nil
}

func (r *Runner) ensureSorted() {
	if !r.sorted {
		// Stable sort: registration order is the tiebreak within a phase.
		sort.SliceStable(r.systems, func(i, j int) bool {
			return r.systems[i].Phase() < r.systems[j].Phase()
		})
		r.sorted = true
	}
}
