package data

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWaveQuotaExtrapolation(t *testing.T) {
	tbl := DefaultWaveTable()
	if tbl.Quota(0) != 5 || tbl.Quota(7) != 28 {
		t.Fatalf("table quotas wrong: %d, %d", tbl.Quota(0), tbl.Quota(7))
	}
	// Beyond the table the curve continues at the last slope (28-24=4).
	if got := tbl.Quota(8); got != 32 {
		t.Errorf("Quota(8) = %d, want 32", got)
	}
	if got := tbl.Quota(10); got != 40 {
		t.Errorf("Quota(10) = %d, want 40", got)
	}
	if tbl.Quota(-3) != 5 {
		t.Errorf("negative index not clamped")
	}
}

func TestWaveQuotaMonotone(t *testing.T) {
	tbl := DefaultWaveTable()
	prev := 0
	for i := 0; i < 30; i++ {
		q := tbl.Quota(i)
		if q <= prev {
			t.Fatalf("quota not increasing at wave %d: %d <= %d", i, q, prev)
		}
		prev = q
	}
}

func TestLoadWaveTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "waves.yaml")
	body := "waves:\n  - quota: 3\n  - quota: 6\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	tbl, err := LoadWaveTable(path)
	if err != nil {
		t.Fatal(err)
	}
	if tbl.Count() != 2 || tbl.Quota(1) != 6 {
		t.Fatalf("loaded table wrong: count %d", tbl.Count())
	}
	if tbl.Quota(2) != 9 {
		t.Errorf("extrapolation from loaded table = %d, want 9", tbl.Quota(2))
	}
}

func TestLoadWaveTableRejectsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "waves.yaml")
	if err := os.WriteFile(path, []byte("waves: []\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadWaveTable(path); err == nil {
		t.Fatal("empty table accepted")
	}
}

func TestPatternTableFallback(t *testing.T) {
	tbl := DefaultPatternTable()
	if tbl.Count() != 7 {
		t.Fatalf("default table has %d curves, want 7", tbl.Count())
	}
	p := tbl.Get("rose")
	if p.Scale != 58 || p.FreqB != 3 {
		t.Errorf("rose tuning wrong: %+v", p)
	}
	fb := tbl.Get("no_such_curve")
	if fb.Scale == 0 || fb.FreqA == 0 {
		t.Errorf("fallback tuning unusable: %+v", fb)
	}
}

func TestLoadPatternTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patterns.yaml")
	body := "patterns:\n  - name: sine\n    scale: 99\n    freq_a: 1.5\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	tbl, err := LoadPatternTable(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := tbl.Get("sine"); got.Scale != 99 {
		t.Errorf("loaded tuning lost: %+v", got)
	}
}
