package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// WaveEntry defines the bird quota for one wave index.
type WaveEntry struct {
	Quota int `yaml:"quota"`
}

type waveListFile struct {
	Waves []WaveEntry `yaml:"waves"`
}

// WaveTable holds the per-wave bird quotas. Indices beyond the table are
// extrapolated linearly from the last two entries.
type WaveTable struct {
	entries []WaveEntry
}

// LoadWaveTable loads wave quotas from a YAML file.
func LoadWaveTable(path string) (*WaveTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read wave table: %w", err)
	}
	var f waveListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse wave table: %w", err)
	}
	if len(f.Waves) == 0 {
		return nil, fmt.Errorf("wave table %s: no entries", path)
	}
	return &WaveTable{entries: f.Waves}, nil
}

// DefaultWaveTable returns the built-in quota curve, used when no data
// file is supplied (tests, embedded runs).
func DefaultWaveTable() *WaveTable {
	return &WaveTable{entries: []WaveEntry{
		{Quota: 5}, {Quota: 7}, {Quota: 10}, {Quota: 13},
		{Quota: 16}, {Quota: 20}, {Quota: 24}, {Quota: 28},
	}}
}

func (t *WaveTable) Count() int { return len(t.entries) }

// Quota returns the bird quota for a zero-based wave index.
func (t *WaveTable) Quota(index int) int {
	if index < 0 {
		index = 0
	}
	n := len(t.entries)
	if index < n {
		return t.entries[index].Quota
	}
	// Linear extrapolation from the last two entries (slope 1 table).
	last := t.entries[n-1].Quota
	slope := last
	if n >= 2 {
		slope = last - t.entries[n-2].Quota
	}
	if slope < 1 {
		slope = 1
	}
	return last + slope*(index-n+1)
}
