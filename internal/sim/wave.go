package sim

import (
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/skyraid/server/internal/core/event"
	"github.com/skyraid/server/internal/data"
	"github.com/skyraid/server/internal/score"
	"github.com/skyraid/server/internal/world"
)

// WavePhase is the scheduler's state machine position.
type WavePhase int

const (
	WaveIdle     WavePhase = iota // between waves
	WaveSpawning                  // quota remains, birds trickle in
	WaveDraining                  // quota spent, waiting for the field to clear
)

// WavePlan is one wave's resolved parameters after table lookup and any
// script override.
type WavePlan struct {
	Quota int
	Speed float64
}

// WavePlanner lets scripts adjust the plan for a wave. Nil means the
// table values stand.
type WavePlanner interface {
	PlanWave(index int, fallback WavePlan) WavePlan
}

// WaveSystem schedules bird spawns. Quotas come from the wave table
// (scripts may override), speed grows exponentially per wave, and every
// boss-th wave leads with a boss bird. A wave completes only when its
// quota is spent and no bird remains; a perfect run pays the bonus once.
type WaveSystem struct {
	st      *world.State
	bus     *event.Bus
	ledger  *score.Ledger
	table   *data.WaveTable
	planner WavePlanner
	log     *zap.Logger

	phase      WavePhase
	index      int // zero-based wave counter
	quota      int
	plan       WavePlan
	untilSpawn time.Duration
	spawned    int
}

func NewWaveSystem(st *world.State, bus *event.Bus, ledger *score.Ledger, table *data.WaveTable, planner WavePlanner, log *zap.Logger) *WaveSystem {
	return &WaveSystem{
		st: st, bus: bus, ledger: ledger,
		table: table, planner: planner, log: log,
	}
}

func (s *WaveSystem) Phase() Phase { return PhaseSpawn }

// WaveIndex reports the zero-based index of the current (or next) wave.
func (s *WaveSystem) WaveIndex() int { return s.index }

// WaveState reports the scheduler position, mostly for tests.
func (s *WaveSystem) WaveState() WavePhase { return s.phase }

// SetWaveIndex jumps the scheduler, used when restoring a snapshot.
// Only legal between waves.
func (s *WaveSystem) SetWaveIndex(index int) {
	if s.phase == WaveIdle && index >= 0 {
		s.index = index
	}
}

func (s *WaveSystem) Update(dt time.Duration) {
	switch s.phase {
	case WaveIdle:
		s.start()
	case WaveSpawning:
		s.untilSpawn -= dt
		for s.untilSpawn <= 0 && s.quota > 0 {
			s.spawnOne()
			s.untilSpawn += s.st.Cfg.Wave.SpawnInterval
		}
		if s.quota <= 0 {
			s.phase = WaveDraining
		}
	case WaveDraining:
		if s.st.LivingBirds() == 0 && s.st.PendingDeferred() == 0 {
			s.complete()
		}
	}
}

func (s *WaveSystem) start() {
	plan := WavePlan{
		Quota: s.table.Quota(s.index),
		Speed: math.Pow(s.st.Cfg.Wave.SpeedGrowth, float64(s.index)),
	}
	if s.planner != nil {
		plan = s.planner.PlanWave(s.index, plan)
	}
	// A zero quota is legal: the wave spawns nothing and completes as
	// soon as the field is clear.
	if plan.Quota < 0 {
		plan.Quota = 0
	}
	if plan.Speed <= 0 {
		plan.Speed = 1
	}

	s.plan = plan
	s.quota = plan.Quota
	s.spawned = 0
	s.untilSpawn = 0
	s.st.LostThisWave = 0
	s.phase = WaveSpawning

	event.Emit(s.bus, event.WaveStarted{Index: s.index})
	s.log.Info("wave started",
		zap.Int("wave", s.index),
		zap.Int("quota", plan.Quota),
		zap.Float64("speed", plan.Speed))
}

func (s *WaveSystem) spawnOne() {
	every := s.st.Cfg.Wave.BossEvery
	boss := every > 0 && (s.index+1)%every == 0 && s.spawned == 0
	s.st.SpawnBird(world.BirdSeed{SpeedMult: s.plan.Speed, ForceBoss: boss})
	s.spawned++
	s.quota--
}

func (s *WaveSystem) complete() {
	perfect := s.st.LostThisWave == 0
	s.ledger.Apply(score.Event{Kind: score.WaveClear})
	if perfect {
		s.ledger.Apply(score.Event{Kind: score.PerfectWave})
	}
	event.Emit(s.bus, event.WaveCompleted{Index: s.index, Perfect: perfect})
	s.log.Info("wave completed",
		zap.Int("wave", s.index), zap.Bool("perfect", perfect))

	s.index++
	s.phase = WaveIdle
}
