package world

import (
	"math/rand"

	"github.com/skyraid/server/internal/config"
	"github.com/skyraid/server/internal/core/ecs"
	"github.com/skyraid/server/internal/vmath"
)

// BirdKind is a tagged variant instead of subclassing: free functions
// dispatch on the tag and the record layout stays uniform.
type BirdKind int

const (
	BirdPlain BirdKind = iota
	BirdElite
	BirdRanged
	BirdLayer
	BirdBoss
)

func (k BirdKind) String() string {
	switch k {
	case BirdElite:
		return "elite"
	case BirdRanged:
		return "ranged"
	case BirdLayer:
		return "layer"
	case BirdBoss:
		return "boss"
	default:
		return "plain"
	}
}

// BirdRadius is the collision radius shared by all bird kinds.
const BirdRadius = 6.0

// Personality is a small set of per-bird force-weight multipliers plus a
// preferred hue, rolled once at spawn and immutable afterwards.
type Personality struct {
	Separation float64
	Alignment  float64
	Cohesion   float64
	Seek       float64
	Avoid      float64
	Hue        float64 // degrees, presentation hint only
}

// Bird is one adversarial flocking agent. Accessed only from the game
// loop goroutine, no locks.
type Bird struct {
	ID       ecs.EntityID
	Pos      vmath.Vec2
	Vel      vmath.Vec2
	MaxSpeed float64
	MaxForce float64
	Kind     BirdKind
	Health   int // > 1 only for BirdBoss
	Persona  Personality

	Alive      bool
	CarrySlot  int // resource slot being carried, -1 = none
	TargetSlot int // resource slot currently sought, -1 = none

	FireCooldown int // ticks until a ranged bird may fire again
	LayCooldown  int // ticks until a layer bird may drop a disruptor
}

// Carrying reports whether the bird holds a stolen resource.
func (b *Bird) Carrying() bool { return b.CarrySlot >= 0 }

// RollBirdKind assigns a role probabilistically at spawn. forceBoss wins
// over the dice; the remaining rolls are checked in priority order.
func RollBirdKind(rng *rand.Rand, cfg *config.EliteConfig, forceBoss bool) BirdKind {
	if forceBoss {
		return BirdBoss
	}
	r := rng.Float64()
	switch {
	case r < cfg.Chance:
		return BirdElite
	case r < cfg.Chance+cfg.RangedChance:
		return BirdRanged
	case r < cfg.Chance+cfg.RangedChance+cfg.LayerChance:
		return BirdLayer
	default:
		return BirdPlain
	}
}

// RollPersonality draws the per-bird force-weight multipliers.
func RollPersonality(rng *rand.Rand) Personality {
	jitter := func() float64 { return 0.8 + rng.Float64()*0.4 } // [0.8, 1.2)
	return Personality{
		Separation: jitter(),
		Alignment:  jitter(),
		Cohesion:   jitter(),
		Seek:       jitter(),
		Avoid:      jitter(),
		Hue:        rng.Float64() * 360,
	}
}
