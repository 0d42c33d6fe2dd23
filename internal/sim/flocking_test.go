package sim

import (
	"testing"

	"go.uber.org/zap"

	"github.com/skyraid/server/internal/config"
	"github.com/skyraid/server/internal/vmath"
	"github.com/skyraid/server/internal/world"
)

func newFlockFixture(t *testing.T, seed int64) (*world.State, *FlockingSystem) {
	t.Helper()
	cfg := config.Defaults()
	cfg.Sim.Seed = seed
	st := world.NewState(cfg)
	return st, NewFlockingSystem(st, zap.NewNop())
}

func TestFlockDeterministicUnderSameSeed(t *testing.T) {
	run := func() []vmath.Vec2 {
		st, sys := newFlockFixture(t, 77)
		for i := 0; i < 10; i++ {
			st.SpawnBird(world.BirdSeed{})
		}
		for i := 0; i < 100; i++ {
			sys.Update(testDT)
		}
		out := make([]vmath.Vec2, len(st.Birds))
		for i, b := range st.Birds {
			out[i] = b.Pos
		}
		return out
	}
	a, b := run(), run()
	if len(a) != len(b) {
		t.Fatalf("bird counts diverged: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("bird %d diverged: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestSeparationPushesApart(t *testing.T) {
	st, _ := newFlockFixture(t, 78)
	a := st.SpawnBird(world.BirdSeed{Pos: vmath.V(400, 200)})
	b := st.SpawnBird(world.BirdSeed{Pos: vmath.V(404, 200)})
	a.TargetSlot, b.TargetSlot = -1, -1
	a.Vel, b.Vel = vmath.Vec2{}, vmath.Vec2{}

	fa := FlockForce(st, a)
	if fa.X >= 0 {
		t.Fatalf("left bird pushed right: %v", fa)
	}
	fb := FlockForce(st, b)
	if fb.X <= 0 {
		t.Fatalf("right bird pushed left: %v", fb)
	}
}

func TestSeekPointsAtTargetSlot(t *testing.T) {
	st, _ := newFlockFixture(t, 79)
	b := st.SpawnBird(world.BirdSeed{Pos: vmath.V(100, 100)})
	b.Vel = vmath.Vec2{}
	b.TargetSlot = 7 // far right slot

	force := FlockForce(st, b)
	if force.X <= 0 || force.Y <= 0 {
		t.Fatalf("force %v does not point down-right at the slot", force)
	}
}

func TestCarrierSeeksTopExit(t *testing.T) {
	st, _ := newFlockFixture(t, 80)
	b := st.SpawnBird(world.BirdSeed{Pos: vmath.V(400, 300)})
	b.Vel = vmath.Vec2{}
	b.CarrySlot = 0

	force := FlockForce(st, b)
	if force.Y >= 0 {
		t.Fatalf("carrier not heading up: %v", force)
	}
}

func TestAvoidancePushesAwayFromHazard(t *testing.T) {
	st, _ := newFlockFixture(t, 81)
	st.AddHazard(world.NewHazard(st.Rng, vmath.V(400, 300), vmath.Vec2{}, 24))

	// Inside the influence circle: repelled straight left.
	force := avoidForce(st, vmath.V(380, 300), st.Cfg.Flocking.AvoidMargin)
	if force.X >= 0 {
		t.Fatalf("avoidance points into the hazard: %v", force)
	}
	// Outside: no influence.
	if f := avoidForce(st, vmath.V(100, 100), st.Cfg.Flocking.AvoidMargin); f.LenSq() != 0 {
		t.Fatalf("avoidance active out of range: %v", f)
	}
}

func TestRetargetDropsStolenSlot(t *testing.T) {
	st, _ := newFlockFixture(t, 82)
	b := st.SpawnBird(world.BirdSeed{Pos: vmath.V(400, 300)})
	b.TargetSlot = 3
	st.Resources[3].Stolen = true

	retarget(st, b)
	if b.TargetSlot == 3 {
		t.Fatal("bird kept a stolen target")
	}
	if r := st.Resource(b.TargetSlot); r == nil || r.Stolen {
		t.Fatalf("retarget picked an unavailable slot: %d", b.TargetSlot)
	}
}

func TestIntegrationClampsSpeed(t *testing.T) {
	st, sys := newFlockFixture(t, 83)
	for i := 0; i < 20; i++ {
		st.SpawnBird(world.BirdSeed{})
	}
	for i := 0; i < 200; i++ {
		sys.Update(testDT)
	}
	for _, b := range st.Birds {
		if b.Vel.Len() > b.MaxSpeed+1e-6 {
			t.Fatalf("bird over speed cap: %v > %v", b.Vel.Len(), b.MaxSpeed)
		}
		if !b.Pos.Finite() {
			t.Fatal("non-finite position escaped integration")
		}
	}
}

func TestFlockingSkipsElites(t *testing.T) {
	st, sys := newFlockFixture(t, 84)
	b := st.SpawnBird(world.BirdSeed{Pos: vmath.V(400, 300)})
	b.Kind = world.BirdElite
	before := b.Pos
	sys.Update(testDT)
	if b.Pos != before {
		t.Fatal("flocking moved an elite bird")
	}
}
