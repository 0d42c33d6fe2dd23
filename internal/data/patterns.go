package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// PatternParams tunes one decorative elite motion curve.
type PatternParams struct {
	Name  string  `yaml:"name"`
	Scale float64 `yaml:"scale"`  // curve extent in world units
	FreqA float64 `yaml:"freq_a"` // primary angular frequency
	FreqB float64 `yaml:"freq_b"` // secondary frequency (lissajous, rose)
}

type patternListFile struct {
	Patterns []PatternParams `yaml:"patterns"`
}

// PatternTable holds tuning for the elite decorative patterns, keyed by
// curve name.
type PatternTable struct {
	params map[string]PatternParams
}

// LoadPatternTable loads pattern tuning from a YAML file.
func LoadPatternTable(path string) (*PatternTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pattern table: %w", err)
	}
	var f patternListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse pattern table: %w", err)
	}
	t := &PatternTable{params: make(map[string]PatternParams, len(f.Patterns))}
	for _, p := range f.Patterns {
		t.params[p.Name] = p
	}
	return t, nil
}

// DefaultPatternTable returns built-in tuning for every curve.
func DefaultPatternTable() *PatternTable {
	defs := []PatternParams{
		{Name: "lissajous", Scale: 60, FreqA: 3, FreqB: 2},
		{Name: "spiral", Scale: 50, FreqA: 2.2},
		{Name: "figure_eight", Scale: 55, FreqA: 2},
		{Name: "sine", Scale: 45, FreqA: 2.5},
		{Name: "golden_spiral", Scale: 40, FreqA: 1.8},
		{Name: "rose", Scale: 58, FreqA: 2, FreqB: 3},
		{Name: "butterfly", Scale: 30, FreqA: 1.6},
	}
	t := &PatternTable{params: make(map[string]PatternParams, len(defs))}
	for _, p := range defs {
		t.params[p.Name] = p
	}
	return t
}

func (t *PatternTable) Count() int { return len(t.params) }

// Get returns tuning for a curve name, falling back to a neutral default.
func (t *PatternTable) Get(name string) PatternParams {
	if p, ok := t.params[name]; ok {
		return p
	}
	return PatternParams{Name: name, Scale: 50, FreqA: 2, FreqB: 3}
}
