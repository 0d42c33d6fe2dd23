package world

import (
	"math/rand"
	"time"

	"github.com/skyraid/server/internal/config"
	"github.com/skyraid/server/internal/core/ecs"
	"github.com/skyraid/server/internal/vmath"
)

// BirdSeed is a queued spawn request. Spawns requested mid-iteration
// (delivery bursts) are buffered here and flushed strictly after the
// per-bird loop of the tick.
type BirdSeed struct {
	Pos       vmath.Vec2
	SpeedMult float64
	ForceBoss bool
}

// State owns every live entity collection. Single writer: the game loop
// goroutine. Mutating a collection while iterating it is forbidden;
// removal always runs in descending index order within the same tick.
type State struct {
	Cfg *config.Config
	Rng *rand.Rand
	ECS *ecs.World

	Birds       []*Bird
	Hazards     []*Hazard
	Resources   []*Resource
	Falling     []*FallingResource
	Projectiles []*Projectile
	Disruptors  []*Disruptor

	Tick         uint64
	LostThisWave int // resources lost while the current wave ran

	deferred     []BirdSeed
	nextHazardID int64
}

func NewState(cfg *config.Config) *State {
	seed := cfg.Sim.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	s := &State{
		Cfg:         cfg,
		Rng:         rand.New(rand.NewSource(seed)),
		ECS:         ecs.NewWorld(),
		Birds:       make([]*Bird, 0, cfg.Limits.MaxBirds),
		Hazards:     make([]*Hazard, 0, cfg.Limits.MaxHazards),
		Falling:     make([]*FallingResource, 0, 8),
		Projectiles: make([]*Projectile, 0, cfg.Limits.MaxProjectiles),
		Disruptors:  make([]*Disruptor, 0, 8),
		deferred:    make([]BirdSeed, 0, cfg.Limits.MaxDeferredSpawns),
	}
	s.Resources = makeSlots(cfg)
	return s
}

func makeSlots(cfg *config.Config) []*Resource {
	n := cfg.Sim.ResourceSlots
	slots := make([]*Resource, n)
	gap := cfg.Sim.Width / float64(n+1)
	for i := 0; i < n; i++ {
		slots[i] = &Resource{
			Slot: i,
			Pos:  vmath.V(gap*float64(i+1), cfg.Sim.Height-24),
			Hue:  float64(i) * 360 / float64(n),
		}
	}
	return slots
}

// SpawnBird creates a bird at the seed position (default: random along
// the top edge). At the bird ceiling the oldest bird is evicted first:
// deterministic backpressure instead of failure.
func (s *State) SpawnBird(seed BirdSeed) *Bird {
	if len(s.Birds) >= s.Cfg.Limits.MaxBirds {
		s.DestroyBirdAt(0)
		s.CompactBirds()
	}

	pos := seed.Pos
	if pos == (vmath.Vec2{}) {
		pos = vmath.V(s.Rng.Float64()*s.Cfg.Sim.Width, -BirdRadius*2)
	}
	mult := seed.SpeedMult
	if mult <= 0 {
		mult = 1
	}

	kind := RollBirdKind(s.Rng, &s.Cfg.Elite, seed.ForceBoss)
	health := 1
	if kind == BirdBoss {
		health = 2
	}

	angle := s.Rng.Float64()*2 - 1 // small sideways drift
	b := &Bird{
		ID:         s.ECS.CreateEntity(),
		Pos:        pos,
		Vel:        vmath.V(angle*20, s.Cfg.Flocking.MaxSpeed*0.4*mult),
		MaxSpeed:   s.Cfg.Flocking.MaxSpeed * mult,
		MaxForce:   s.Cfg.Flocking.MaxForce * mult,
		Kind:       kind,
		Health:     health,
		Persona:    RollPersonality(s.Rng),
		Alive:      true,
		CarrySlot:  -1,
		TargetSlot: -1,
	}
	s.Birds = append(s.Birds, b)
	return b
}

// DestroyBirdAt marks the bird dead and queues its entity (and any
// parallel component data, e.g. elite AI memory) for end-of-tick
// destruction. The slice entry survives until CompactBirds.
func (s *State) DestroyBirdAt(i int) {
	b := s.Birds[i]
	if !b.Alive {
		return
	}
	b.Alive = false
	s.ECS.MarkForDestruction(b.ID)
}

// CompactBirds removes dead birds, walking indices in descending order.
func (s *State) CompactBirds() {
	for i := len(s.Birds) - 1; i >= 0; i-- {
		if !s.Birds[i].Alive {
			s.Birds = append(s.Birds[:i], s.Birds[i+1:]...)
		}
	}
}

// BirdByID resolves a generational ID to a live bird, nil if stale.
func (s *State) BirdByID(id ecs.EntityID) *Bird {
	if !s.ECS.Alive(id) {
		return nil
	}
	for _, b := range s.Birds {
		if b.ID == id {
			return b
		}
	}
	return nil
}

// QueueBurst buffers a deferred spawn. Returns false once the per-tick
// deferred cap is reached (excess requests are dropped, not queued).
func (s *State) QueueBurst(seed BirdSeed) bool {
	if len(s.deferred) >= s.Cfg.Limits.MaxDeferredSpawns {
		return false
	}
	s.deferred = append(s.deferred, seed)
	return true
}

// DrainDeferred pops up to max queued seeds for flushing.
func (s *State) DrainDeferred(max int) []BirdSeed {
	if len(s.deferred) == 0 {
		return nil
	}
	n := len(s.deferred)
	if max > 0 && n > max {
		n = max
	}
	out := make([]BirdSeed, n)
	copy(out, s.deferred[:n])
	s.deferred = append(s.deferred[:0], s.deferred[n:]...)
	return out
}

// PendingDeferred reports how many burst seeds await flushing.
func (s *State) PendingDeferred() int { return len(s.deferred) }

// AddHazard inserts a hazard, honoring the global ceiling. IDs are
// assigned from a per-State counter so parallel worlds never share one.
func (s *State) AddHazard(h *Hazard) bool {
	if len(s.Hazards) >= s.Cfg.Limits.MaxHazards {
		return false
	}
	s.nextHazardID++
	h.ID = s.nextHazardID
	s.Hazards = append(s.Hazards, h)
	return true
}

// RemoveHazardAt splices one hazard out. Callers iterate descending.
func (s *State) RemoveHazardAt(i int) {
	s.Hazards = append(s.Hazards[:i], s.Hazards[i+1:]...)
}

// Resource returns the slot record, nil when out of range.
func (s *State) Resource(slot int) *Resource {
	if slot < 0 || slot >= len(s.Resources) {
		return nil
	}
	return s.Resources[slot]
}

// AvailableSlots lists resources a bird could steal right now.
func (s *State) AvailableSlots() []int {
	var out []int
	for _, r := range s.Resources {
		if !r.Stolen {
			out = append(out, r.Slot)
		}
	}
	return out
}

// LiveDots counts resources in each live state: sitting on the baseline,
// carried by a living bird, and falling. The game is over exactly when
// all three are zero.
func (s *State) LiveDots() (available, carried, falling int) {
	for _, r := range s.Resources {
		if !r.Stolen {
			available++
		}
	}
	for _, b := range s.Birds {
		if b.Alive && b.Carrying() {
			carried++
		}
	}
	for _, f := range s.Falling {
		if !f.Done {
			falling++
		}
	}
	return
}

// LivingBirds counts birds still alive this tick.
func (s *State) LivingBirds() int {
	n := 0
	for _, b := range s.Birds {
		if b.Alive {
			n++
		}
	}
	return n
}

// InBounds reports whether a point is inside the play field with the
// given margin beyond every edge.
func (s *State) InBounds(p vmath.Vec2, margin float64) bool {
	return p.X >= -margin && p.X <= s.Cfg.Sim.Width+margin &&
		p.Y >= -margin && p.Y <= s.Cfg.Sim.Height+margin
}
