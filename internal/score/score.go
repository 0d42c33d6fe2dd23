// Package score implements the event-sourced point ledger with the combo
// state machine. It is pure simulation state with no globals and no
// callbacks; the orchestrator owns a Ledger value and passes it into
// subsystems, so parallel test instances never interfere.
package score

import (
	"time"

	"github.com/skyraid/server/internal/config"
)

// Kind enumerates scoring events.
type Kind int

const (
	Kill         Kind = iota // bird destroyed by a hazard
	MultiKill                // hazard retired after 3+ lifetime kills
	Recovery                 // falling resource landed or was reclaimed
	WaveClear                // wave completed
	PerfectWave              // wave completed with zero resources lost
	Launch                   // hazard launch cost, negative and size-scaled
	ResourceLost             // resource delivered past the top boundary; breaks the combo
)

// Event carries one scoring occurrence. Size is only read for Launch.
type Event struct {
	Kind Kind
	Size float64
}

// comboThresholds maps a combo count floor to its multiplier. Checked
// from the highest floor down.
var comboThresholds = []struct {
	count, mult int
}{
	{20, 20},
	{10, 10},
	{5, 5},
	{3, 3},
	{2, 2},
}

// MultiplierFor maps a combo count to its step-function multiplier.
func MultiplierFor(combo int) int {
	for _, t := range comboThresholds {
		if combo >= t.count {
			return t.mult
		}
	}
	return 1
}

// Ledger holds the score and combo state. Score never goes below zero no
// matter how large a negative event is; the actually-applied delta is
// reported back so callers can reconcile.
type Ledger struct {
	cfg    config.ScoringConfig
	hazard config.HazardConfig

	score     int
	combo     int
	remaining time.Duration

	dirty bool
}

func NewLedger(scoring config.ScoringConfig, hazard config.HazardConfig) *Ledger {
	return &Ledger{cfg: scoring, hazard: hazard}
}

func (l *Ledger) Score() int      { return l.score }
func (l *Ledger) Combo() int      { return l.combo }
func (l *Ledger) Multiplier() int { return MultiplierFor(l.combo) }

// SetScore overwrites the score when restoring a snapshot.
func (l *Ledger) SetScore(s int) {
	if s < 0 {
		s = 0
	}
	l.score = s
	l.dirty = true
}

// TakeDirty reports and clears the "changed since last read" flag.
func (l *Ledger) TakeDirty() bool {
	d := l.dirty
	l.dirty = false
	return d
}

// Apply processes one event and returns the delta actually applied after
// multiplication and zero-clamping.
func (l *Ledger) Apply(ev Event) int {
	base := l.baseValue(ev)

	switch {
	case base > 0:
		if ev.Kind == Kill {
			// Strictly increasing kill streak drives the combo.
			l.combo++
			l.remaining = l.cfg.ComboWindow
		}
		base *= MultiplierFor(l.combo)
	case ev.Kind == ResourceLost:
		// Designated break event: combo dies immediately.
		l.resetCombo()
	}

	applied := base
	if l.score+applied < 0 {
		applied = -l.score
	}
	if applied != 0 {
		l.score += applied
		l.dirty = true
	}
	return applied
}

// Charge applies a pre-computed non-positive cost (e.g. a script-adjusted
// launch cost) with the usual zero clamp. Returns the delta applied.
func (l *Ledger) Charge(cost int) int {
	if cost > 0 {
		cost = -cost
	}
	if l.score+cost < 0 {
		cost = -l.score
	}
	if cost != 0 {
		l.score += cost
		l.dirty = true
	}
	return cost
}

// TickDown advances the combo countdown; at zero the combo resets.
func (l *Ledger) TickDown(dt time.Duration) {
	if l.combo == 0 {
		return
	}
	l.remaining -= dt
	if l.remaining <= 0 {
		l.resetCombo()
	}
}

func (l *Ledger) resetCombo() {
	if l.combo != 0 {
		l.combo = 0
		l.remaining = 0
		l.dirty = true
	}
}

func (l *Ledger) baseValue(ev Event) int {
	switch ev.Kind {
	case Kill:
		return l.cfg.KillPoints
	case MultiKill:
		return l.cfg.MultiKillPoints
	case Recovery:
		return l.cfg.KillPoints / 2
	case WaveClear:
		return l.cfg.WaveBonus
	case PerfectWave:
		return l.cfg.PerfectWaveBonus
	case Launch:
		return l.LaunchCost(ev.Size)
	case ResourceLost:
		return l.cfg.DeliveryPenalty
	default:
		return 0
	}
}

// LaunchCost interpolates the (negative) launch cost linearly in hazard
// size between the configured min and max bounds.
func (l *Ledger) LaunchCost(size float64) int {
	minS, maxS := l.hazard.MinLaunchSize, l.hazard.MaxLaunchSize
	t := 0.0
	if maxS > minS {
		t = (size - minS) / (maxS - minS)
	}
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	minC, maxC := float64(l.cfg.MinLaunchCost), float64(l.cfg.MaxLaunchCost)
	return int(minC + (maxC-minC)*t)
}

// CanAfford reports whether a negative cost is payable from the current
// score. A zero score can afford nothing.
func (l *Ledger) CanAfford(cost int) bool {
	return l.score >= -cost
}
