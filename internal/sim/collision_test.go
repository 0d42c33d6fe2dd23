package sim

import (
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/skyraid/server/internal/config"
	"github.com/skyraid/server/internal/core/event"
	"github.com/skyraid/server/internal/score"
	"github.com/skyraid/server/internal/vmath"
	"github.com/skyraid/server/internal/world"
)

const testDT = 16 * time.Millisecond

type collisionFixture struct {
	st     *world.State
	bus    *event.Bus
	ledger *score.Ledger
	sys    *CollisionSystem
}

func newCollisionFixture(t *testing.T, hooks CollisionHooks) *collisionFixture {
	t.Helper()
	cfg := config.Defaults()
	cfg.Sim.Seed = 11
	st := world.NewState(cfg)
	bus := event.NewBus()
	ledger := score.NewLedger(cfg.Scoring, cfg.Hazard)
	return &collisionFixture{
		st:     st,
		bus:    bus,
		ledger: ledger,
		sys:    NewCollisionSystem(st, bus, ledger, hooks, zap.NewNop()),
	}
}

func (f *collisionFixture) addBird(pos vmath.Vec2, kind world.BirdKind) *world.Bird {
	b := f.st.SpawnBird(world.BirdSeed{Pos: pos})
	b.Kind = kind
	b.Health = 1
	if kind == world.BirdBoss {
		b.Health = 2
	}
	return b
}

func (f *collisionFixture) addHazard(pos vmath.Vec2, size float64) *world.Hazard {
	h := world.NewHazard(f.st.Rng, pos, vmath.Vec2{}, size)
	f.st.AddHazard(h)
	return h
}

func TestBirdHazardImpactKills(t *testing.T) {
	f := newCollisionFixture(t, CollisionHooks{})
	b := f.addBird(vmath.V(100, 100), world.BirdPlain)
	h := f.addHazard(vmath.V(102, 100), 20)

	f.sys.Update(testDT)

	if b.Alive {
		t.Fatal("bird survived a direct impact")
	}
	if f.ledger.Score() != 10 {
		t.Errorf("score = %d, want 10", f.ledger.Score())
	}
	if h.Kills != 1 {
		t.Errorf("hazard kill count = %d, want 1", h.Kills)
	}
	if h.Size >= 20 {
		t.Errorf("hazard did not shrink on impact: %v", h.Size)
	}
}

func TestBossAbsorbsOneHit(t *testing.T) {
	f := newCollisionFixture(t, CollisionHooks{})
	b := f.addBird(vmath.V(100, 100), world.BirdBoss)
	f.addHazard(vmath.V(102, 100), 20)

	f.sys.Update(testDT)
	if !b.Alive || b.Health != 1 {
		t.Fatalf("boss should absorb the first hit: alive=%v health=%d", b.Alive, b.Health)
	}
	f.sys.Update(testDT)
	if b.Alive {
		t.Fatal("boss survived the second hit")
	}
}

func TestCarrierDeathDropsResource(t *testing.T) {
	f := newCollisionFixture(t, CollisionHooks{})
	b := f.addBird(vmath.V(100, 100), world.BirdPlain)
	f.st.Resources[3].Stolen = true
	b.CarrySlot = 3
	f.addHazard(vmath.V(102, 100), 20)

	f.sys.Update(testDT)

	if len(f.st.Falling) != 1 || f.st.Falling[0].Slot != 3 {
		t.Fatal("no falling resource spawned at the death site")
	}
	if !f.st.Resources[3].Stolen {
		t.Error("slot restored while the resource is still in flight")
	}
}

func TestEachBirdHitOncePerTick(t *testing.T) {
	f := newCollisionFixture(t, CollisionHooks{})
	b := f.addBird(vmath.V(100, 100), world.BirdPlain)
	// Two overlapping hazards; only one may claim the kill.
	h1 := f.addHazard(vmath.V(101, 100), 18)
	h2 := f.addHazard(vmath.V(99, 100), 18)

	f.sys.Update(testDT)

	if b.Alive {
		t.Fatal("bird survived")
	}
	if h1.Kills+h2.Kills != 1 {
		t.Errorf("kill counted %d times", h1.Kills+h2.Kills)
	}
	if f.ledger.Score() != 10 {
		t.Errorf("score = %d, want a single kill's 10", f.ledger.Score())
	}
}

func TestProjectileShrinksAndDestroysHazard(t *testing.T) {
	f := newCollisionFixture(t, CollisionHooks{})
	h := f.addHazard(vmath.V(200, 200), 8)
	f.st.Projectiles = append(f.st.Projectiles, &world.Projectile{
		Pos: vmath.V(200, 200), TTL: 100,
	})

	f.sys.Update(testDT)

	// 8 * 0.8 = 6.4 >= MinSize 6: shrunk, still alive.
	if len(f.st.Hazards) != 1 || h.Size >= 8 {
		t.Fatalf("first pellet should only shrink: n=%d size=%v", len(f.st.Hazards), h.Size)
	}
	if len(f.st.Projectiles) != 0 {
		t.Fatal("pellet survived its impact")
	}

	f.st.Projectiles = append(f.st.Projectiles, &world.Projectile{
		Pos: h.Pos, TTL: 100,
	})
	f.sys.Update(testDT)

	// 6.4 * 0.8 = 5.12 < 6: destroyed, too small to fragment.
	if len(f.st.Hazards) != 0 {
		t.Fatalf("hazard survived the killing pellet: %d left", len(f.st.Hazards))
	}
}

func TestDestroyedHazardFragments(t *testing.T) {
	f := newCollisionFixture(t, CollisionHooks{
		OnHazardHit: func(*world.Hazard) bool { return true },
	})
	parent := f.addHazard(vmath.V(200, 200), 36)
	f.st.Projectiles = append(f.st.Projectiles, &world.Projectile{
		Pos: vmath.V(200, 200), TTL: 100,
	})

	f.sys.Update(testDT)

	if len(f.st.Hazards) < 2 {
		t.Fatalf("expected fragments, got %d hazards", len(f.st.Hazards))
	}
	for _, c := range f.st.Hazards {
		if c.Size >= parent.BaseSize {
			t.Errorf("fragment %v not smaller than parent %v", c.Size, parent.BaseSize)
		}
	}
}

func TestMultiKillBonus(t *testing.T) {
	f := newCollisionFixture(t, CollisionHooks{
		OnHazardHit: func(*world.Hazard) bool { return true },
	})
	h := f.addHazard(vmath.V(200, 200), 7)
	h.Kills = 3
	f.st.Projectiles = append(f.st.Projectiles, &world.Projectile{
		Pos: vmath.V(200, 200), TTL: 100,
	})

	var destroyed []event.HazardDestroyed
	event.Subscribe(f.bus, func(ev event.HazardDestroyed) { destroyed = append(destroyed, ev) })

	f.sys.Update(testDT)
	f.bus.SwapBuffers()
	f.bus.DispatchAll()

	if f.ledger.Score() != 30 {
		t.Errorf("score = %d, want the 30 point multi-kill bonus", f.ledger.Score())
	}
	if len(destroyed) != 1 || destroyed[0].Kills != 3 {
		t.Fatalf("destruction event wrong: %+v", destroyed)
	}
}

func TestFaultyHookTreatedAsDestroyed(t *testing.T) {
	f := newCollisionFixture(t, CollisionHooks{
		OnHazardHit: func(*world.Hazard) bool { panic("boom") },
	})
	f.addHazard(vmath.V(200, 200), 30)
	f.st.Projectiles = append(f.st.Projectiles, &world.Projectile{
		Pos: vmath.V(200, 200), TTL: 100,
	})

	f.sys.Update(testDT)

	for _, h := range f.st.Hazards {
		if h.BaseSize == 30 {
			t.Fatal("original hazard survived a faulting hook")
		}
	}
}

func TestDisruptorToleranceBand(t *testing.T) {
	f := newCollisionFixture(t, CollisionHooks{})

	// Comparable sizes: mutual destruction.
	f.addHazard(vmath.V(100, 100), 10)
	f.st.Disruptors = append(f.st.Disruptors, &world.Disruptor{Pos: vmath.V(100, 100), Size: 9})
	f.sys.Update(testDT)
	if len(f.st.Disruptors) != 0 {
		t.Fatal("disruptor survived a matched collision")
	}
	for _, h := range f.st.Hazards {
		if h.BaseSize == 10 {
			t.Fatal("hazard survived a matched collision")
		}
	}

	// Dominant hazard: the mine dies, the hazard only shrinks.
	f.st.Hazards = f.st.Hazards[:0]
	big := f.addHazard(vmath.V(300, 300), 40)
	f.st.Disruptors = append(f.st.Disruptors, &world.Disruptor{Pos: vmath.V(300, 300), Size: 9})
	f.sys.Update(testDT)
	if len(f.st.Disruptors) != 0 {
		t.Fatal("disruptor survived a dominant hazard")
	}
	if big.Destroyed || big.Size >= 40 {
		t.Fatalf("dominant hazard wrong state: destroyed=%v size=%v", big.Destroyed, big.Size)
	}
}

func TestCollisionBudgetSkipsBirdChecks(t *testing.T) {
	f := newCollisionFixture(t, CollisionHooks{})
	f.st.Cfg.Limits.MaxCollisionChecks = 0
	b := f.addBird(vmath.V(100, 100), world.BirdPlain)
	f.addHazard(vmath.V(100, 100), 20)

	f.sys.Update(testDT)

	if !b.Alive {
		t.Fatal("bird check ran past the budget")
	}
}
