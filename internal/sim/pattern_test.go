package sim

import (
	"math/rand"
	"testing"

	"github.com/skyraid/server/internal/data"
)

func TestEveryPatternHasTableTuning(t *testing.T) {
	tbl := data.DefaultPatternTable()
	for k := PatternKind(0); k < patternCount; k++ {
		name := k.String()
		if name == "unknown" {
			t.Fatalf("kind %d has no name", k)
		}
		p := tbl.Get(name)
		if p.Scale <= 0 || p.FreqA <= 0 {
			t.Errorf("curve %q missing table tuning: %+v", name, p)
		}
	}
}

func TestPatternPointsStayFinite(t *testing.T) {
	tbl := data.DefaultPatternTable()
	for k := PatternKind(0); k < patternCount; k++ {
		p := tbl.Get(k.String())
		for phase := 0.0; phase < 60; phase += 0.37 {
			pt := PatternPoint(k, phase, p)
			if !pt.Finite() {
				t.Fatalf("curve %v produced non-finite point at phase %v", k, phase)
			}
		}
	}
}

func TestRollPatternCoversAllKinds(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	seen := map[PatternKind]bool{}
	for i := 0; i < 1000; i++ {
		k := RollPattern(rng)
		if k < 0 || k >= patternCount {
			t.Fatalf("rolled out-of-range kind %d", k)
		}
		seen[k] = true
	}
	if len(seen) != int(patternCount) {
		t.Fatalf("only %d of %d kinds rolled", len(seen), patternCount)
	}
}
