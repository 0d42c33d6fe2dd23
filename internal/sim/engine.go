package sim

import (
	"time"

	"go.uber.org/zap"

	"github.com/skyraid/server/internal/config"
	"github.com/skyraid/server/internal/core/event"
	"github.com/skyraid/server/internal/core/system"
	"github.com/skyraid/server/internal/data"
	"github.com/skyraid/server/internal/persist"
	"github.com/skyraid/server/internal/score"
	"github.com/skyraid/server/internal/vmath"
	"github.com/skyraid/server/internal/world"
)

// Callbacks notify the embedding layer (renderer, network gateway, test
// harness) of observable changes. All fire synchronously from Tick on the
// game loop goroutine; nil members are skipped.
type Callbacks struct {
	OnScoreUpdate  func(scoreValue, combo, multiplier int)
	OnWaveUpdate   func(index int)
	OnEnergyStatus func(critical bool) // edge-triggered; critical = zero live resources
	OnGameOver     func()
}

// EngineOptions bundles the optional collaborators. Zero value works:
// built-in tables, no scripts, no persistence.
type EngineOptions struct {
	Waves        *data.WaveTable
	Patterns     *data.PatternTable
	Planner      WavePlanner
	LaunchCostFn func(size float64, base int) int
	Snapshots    SnapshotSaver
	Hooks        CollisionHooks
	Callbacks    Callbacks
}

// Engine is the frame orchestrator: it owns the world state, the score
// ledger, the event bus and the phase-ordered system runner, and exposes
// the two player verbs (spawn debug bird, launch hazard) plus snapshot
// save/restore. Single-goroutine: every method must be called from the
// same goroutine that calls Tick.
type Engine struct {
	cfg    *config.Config
	log    *zap.Logger
	st     *world.State
	ledger *score.Ledger
	bus    *event.Bus
	runner *system.Runner
	waves  *WaveSystem
	opts   EngineOptions

	consecFaults int
	gameOver     bool
	lastCritical bool
}

const (
	launchSpeedBase = 300.0
	launchSpeedMin  = 40.0
	launchSpeedMax  = 400.0
)

func NewEngine(cfg *config.Config, log *zap.Logger, opts EngineOptions) *Engine {
	if opts.Waves == nil {
		opts.Waves = data.DefaultWaveTable()
	}
	if opts.Patterns == nil {
		opts.Patterns = data.DefaultPatternTable()
	}

	st := world.NewState(cfg)
	ledger := score.NewLedger(cfg.Scoring, cfg.Hazard)
	bus := event.NewBus()
	runner := system.NewRunner(log)

	e := &Engine{
		cfg:    cfg,
		log:    log,
		st:     st,
		ledger: ledger,
		bus:    bus,
		runner: runner,
		opts:   opts,
	}

	e.waves = NewWaveSystem(st, bus, ledger, opts.Waves, opts.Planner, log)
	runner.Register(e.waves)
	runner.Register(NewFlockingSystem(st, log))
	runner.Register(NewEliteSystem(st, opts.Patterns, log))
	runner.Register(NewBirdLifecycleSystem(st, bus, ledger, log))
	runner.Register(NewBurstSpawnSystem(st, log))
	runner.Register(NewMotionSystem(st, log))
	runner.Register(NewCollisionSystem(st, bus, ledger, opts.Hooks, log))
	runner.Register(NewResourceSystem(st, bus, ledger, log))
	if opts.Snapshots != nil {
		runner.Register(NewPersistenceSystem(st, opts.Snapshots, e.Snapshot, log))
	}
	runner.Register(NewCleanupSystem(st))

	event.Subscribe(bus, func(ev event.WaveStarted) {
		if cb := e.opts.Callbacks.OnWaveUpdate; cb != nil {
			cb(ev.Index)
		}
	})
	return e
}

// State exposes the world for read-only presentation and tests.
func (e *Engine) State() *world.State { return e.st }

// Ledger exposes the score ledger read surface.
func (e *Engine) Ledger() *score.Ledger { return e.ledger }

// Bus exposes the event bus so embedders can subscribe.
func (e *Engine) Bus() *event.Bus { return e.bus }

// GameOver reports whether the run has ended.
func (e *Engine) GameOver() bool { return e.gameOver }

// WaveIndex reports the current wave.
func (e *Engine) WaveIndex() int { return e.waves.WaveIndex() }

// Tick advances the simulation one frame. Events emitted last tick are
// delivered first, then every system runs in phase order. Faults are
// contained per system; FaultThreshold consecutive faulty ticks force a
// game over rather than letting a broken subsystem loop forever.
func (e *Engine) Tick(dt time.Duration) {
	if e.gameOver {
		return
	}
	e.bus.SwapBuffers()
	e.bus.DispatchAll()

	faults := e.runner.Tick(dt)
	if faults > 0 {
		e.consecFaults++
		if e.consecFaults >= e.cfg.Sim.FaultThreshold {
			e.log.Error("fault threshold reached, ending run",
				zap.Int("consecutive", e.consecFaults))
			e.endGame()
			return
		}
	} else {
		e.consecFaults = 0
	}

	e.st.Tick++
	e.notifyScore()
	e.notifyEnergy()

	if avail, carried, falling := e.st.LiveDots(); avail+carried+falling == 0 {
		e.endGame()
	}
}

func (e *Engine) notifyScore() {
	if !e.ledger.TakeDirty() {
		return
	}
	if cb := e.opts.Callbacks.OnScoreUpdate; cb != nil {
		cb(e.ledger.Score(), e.ledger.Combo(), e.ledger.Multiplier())
	}
}

// notifyEnergy fires only on state crossings: critical means no resource
// exists in any live state (available, carried or falling). It runs
// before the game-over check so embedders hear the status first.
func (e *Engine) notifyEnergy() {
	avail, carried, falling := e.st.LiveDots()
	critical := avail+carried+falling == 0
	if critical == e.lastCritical {
		return
	}
	e.lastCritical = critical
	if cb := e.opts.Callbacks.OnEnergyStatus; cb != nil {
		cb(critical)
	}
}

func (e *Engine) endGame() {
	if e.gameOver {
		return
	}
	e.gameOver = true
	e.log.Info("game over",
		zap.Int("score", e.ledger.Score()),
		zap.Int("wave", e.waves.WaveIndex()),
		zap.Uint64("tick", e.st.Tick))
	if cb := e.opts.Callbacks.OnGameOver; cb != nil {
		cb()
	}
}

// SpawnBird injects one bird at the given position, mainly a debugging
// and demo verb. Non-finite input is rejected silently.
func (e *Engine) SpawnBird(x, y float64) bool {
	if e.gameOver || !vmath.V(x, y).Finite() {
		return false
	}
	e.st.SpawnBird(world.BirdSeed{Pos: vmath.V(x, y)})
	return true
}

// LaunchHazard is the player's throw. The size clamps into the legal
// launch band, the drag vector must be long enough to define a
// direction, and the (negative, size-scaled) cost must be affordable;
// a zero score can never launch. Invalid input is rejected without side
// effects; the bool reports acceptance.
func (e *Engine) LaunchHazard(startX, startY, targetX, targetY, size, slowness float64) bool {
	if e.gameOver {
		return false
	}
	start := vmath.V(startX, startY)
	target := vmath.V(targetX, targetY)
	if !start.Finite() || !target.Finite() ||
		!vmath.V(size, slowness).Finite() || slowness <= 0 {
		return false
	}

	hc := &e.cfg.Hazard
	if size < hc.MinLaunchSize {
		size = hc.MinLaunchSize
	}
	if size > hc.MaxLaunchSize {
		size = hc.MaxLaunchSize
	}

	drag := target.Sub(start)
	if drag.Len() < hc.MinLaunchDist {
		return false
	}
	if len(e.st.Hazards) >= e.cfg.Limits.MaxHazards {
		return false
	}

	cost := e.ledger.LaunchCost(size)
	if fn := e.opts.LaunchCostFn; fn != nil {
		cost = fn(size, cost)
		if cost > 0 {
			cost = -cost
		}
	}
	if !e.ledger.CanAfford(cost) {
		return false
	}

	speed := launchSpeedBase / slowness
	if speed < launchSpeedMin {
		speed = launchSpeedMin
	}
	if speed > launchSpeedMax {
		speed = launchSpeedMax
	}

	h := world.NewHazard(e.st.Rng, start, drag.WithLen(speed), size)
	if !e.st.AddHazard(h) {
		return false
	}
	e.ledger.Charge(cost)
	e.log.Debug("hazard launched",
		zap.Float64("size", size), zap.Int("cost", cost))
	return true
}

// Snapshot captures the persistent slice of the run: score, wave and
// which slots are currently consumed. Live entities are deliberately
// transient and reset on restore.
func (e *Engine) Snapshot() *persist.Snapshot {
	var stolen []int32
	for _, r := range e.st.Resources {
		if r.Stolen {
			stolen = append(stolen, int32(r.Slot))
		}
	}
	return &persist.Snapshot{
		Profile:     e.cfg.Server.Profile,
		Score:       int64(e.ledger.Score()),
		Wave:        e.waves.WaveIndex(),
		StolenSlots: stolen,
	}
}

// Restore applies a saved snapshot. Must be called before the first Tick.
func (e *Engine) Restore(snap *persist.Snapshot) {
	if snap == nil {
		return
	}
	e.ledger.SetScore(int(snap.Score))
	e.waves.SetWaveIndex(snap.Wave)
	respawn := int(e.cfg.Sim.ResourceRespawn / e.cfg.Sim.TickRate)
	stolen := snap.StolenSlots
	if len(stolen) >= len(e.st.Resources) && len(stolen) > 0 {
		// Carriers don't survive a restore, so leave one slot live
		// instead of resuming straight into a lost game.
		stolen = stolen[:len(e.st.Resources)-1]
	}
	for _, slot := range stolen {
		if r := e.st.Resource(int(slot)); r != nil {
			r.Stolen = true
			r.RespawnTicks = respawn
		}
	}
	e.log.Info("snapshot restored",
		zap.Int64("score", snap.Score), zap.Int("wave", snap.Wave))
}
