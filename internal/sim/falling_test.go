package sim

import (
	"testing"

	"go.uber.org/zap"

	"github.com/skyraid/server/internal/config"
	"github.com/skyraid/server/internal/core/event"
	"github.com/skyraid/server/internal/score"
	"github.com/skyraid/server/internal/vmath"
	"github.com/skyraid/server/internal/world"
)

type fallingFixture struct {
	st     *world.State
	bus    *event.Bus
	ledger *score.Ledger
	sys    *ResourceSystem
}

func newFallingFixture(t *testing.T) *fallingFixture {
	t.Helper()
	cfg := config.Defaults()
	cfg.Sim.Seed = 31
	st := world.NewState(cfg)
	bus := event.NewBus()
	ledger := score.NewLedger(cfg.Scoring, cfg.Hazard)
	return &fallingFixture{
		st:     st,
		bus:    bus,
		ledger: ledger,
		sys:    NewResourceSystem(st, bus, ledger, zap.NewNop()),
	}
}

func TestFallingResourceLandsAndRestores(t *testing.T) {
	f := newFallingFixture(t)
	r := f.st.Resources[2]
	r.Stolen = true
	f.st.Falling = append(f.st.Falling, &world.FallingResource{
		Slot: 2,
		Pos:  vmath.V(r.Pos.X, r.Pos.Y-5),
		Vel:  vmath.V(0, 40),
	})

	for i := 0; i < 30 && len(f.st.Falling) > 0; i++ {
		f.sys.Update(testDT)
	}

	if r.Stolen {
		t.Fatal("slot not restored after landing")
	}
	if f.ledger.Score() != 5 {
		t.Errorf("score = %d, want the 5 point recovery", f.ledger.Score())
	}
	if len(f.st.Falling) != 0 {
		t.Fatal("falling entity not removed")
	}
}

func TestFallingResourceLostOffField(t *testing.T) {
	f := newFallingFixture(t)
	r := f.st.Resources[4]
	r.Stolen = true
	f.st.Falling = append(f.st.Falling, &world.FallingResource{
		Slot: 4,
		Pos:  vmath.V(-100, 100), // well past the left edge
		Vel:  vmath.V(-50, 0),
	})

	f.sys.Update(testDT)

	if len(f.st.Falling) != 0 {
		t.Fatal("lost resource not removed")
	}
	if !r.Stolen {
		t.Fatal("slot restored without a landing")
	}
	if r.RespawnTicks <= 0 {
		t.Fatal("respawn timer not armed")
	}
	if f.st.LostThisWave != 1 {
		t.Errorf("LostThisWave = %d, want 1", f.st.LostThisWave)
	}
	// Falling out of play costs nothing; only deliveries do.
	if f.ledger.Score() != 0 {
		t.Errorf("score = %d, want 0", f.ledger.Score())
	}
}

func TestSlotRespawnCountdown(t *testing.T) {
	f := newFallingFixture(t)
	r := f.st.Resources[0]
	r.Stolen = true
	r.RespawnTicks = 3

	var restored []event.ResourceRestored
	event.Subscribe(f.bus, func(ev event.ResourceRestored) { restored = append(restored, ev) })

	for i := 0; i < 3; i++ {
		if !r.Stolen {
			t.Fatalf("slot restored early at tick %d", i)
		}
		f.sys.Update(testDT)
	}
	f.bus.SwapBuffers()
	f.bus.DispatchAll()

	if r.Stolen {
		t.Fatal("slot not restored after the countdown")
	}
	if len(restored) != 1 || restored[0].Slot != 0 {
		t.Fatalf("restore events: %+v", restored)
	}
}

func TestRespawnPausedWhileCarried(t *testing.T) {
	f := newFallingFixture(t)
	r := f.st.Resources[1]
	r.Stolen = true
	r.RespawnTicks = 1
	b := f.st.SpawnBird(world.BirdSeed{Pos: vmath.V(100, 100)})
	b.CarrySlot = 1

	f.sys.Update(testDT)
	if !r.Stolen {
		t.Fatal("slot respawned while its resource is carried")
	}
	if r.RespawnTicks != 1 {
		t.Fatalf("timer ran while carried: %d", r.RespawnTicks)
	}
}

func TestRespawnPausedWhileFalling(t *testing.T) {
	f := newFallingFixture(t)
	r := f.st.Resources[5]
	r.Stolen = true
	r.RespawnTicks = 1
	f.st.Falling = append(f.st.Falling, &world.FallingResource{
		Slot: 5,
		Pos:  vmath.V(400, 100),
	})

	f.sys.Update(testDT)
	if !r.Stolen && r.RespawnTicks == 0 {
		t.Fatal("timer ran while the resource was mid-fall")
	}
}
