package models

import (
	"slices"
	"strings"
	"time"
)

// SourceInfo describes one input file that fed a dataset.
type SourceInfo struct {
	ModTime   time.Time
	Path      string
	Kind      string // "accidents" or "municipalities"
	Size      int64
	Rows      int
	FromCache bool
	// Options fingerprints the parser settings the file was read with.
	Options   string
}

// LoadReport summarizes what the loader kept and what it could not use.
type LoadReport struct {
	AccidentRows            int
	MunicipalityRows        int
	NullCoordinates         int
	MissingMunicipalityCode int
	Duration                time.Duration
}

// Dataset is an immutable snapshot of both input tables. A reload builds
// a new Dataset; existing snapshots are never modified.
type Dataset struct {
	LoadedAt       time.Time
	ID             string
	Accidents      []AccidentRecord
	Municipalities []Municipality
	Sources        []SourceInfo
	Report         LoadReport
}

// Empty reports whether either table has no rows.
func (d *Dataset) Empty() bool {
	return d == nil || len(d.Accidents) == 0 || len(d.Municipalities) == 0
}

// States returns the sorted unique state codes present in the accidents
// table.
func (d *Dataset) States() []string {
	if d == nil {
		return nil
	}
	seen := make(map[string]struct{})
	var states []string
	for i := range d.Accidents {
		uf := strings.ToUpper(strings.TrimSpace(d.Accidents[i].State))
		if uf == "" {
			continue
		}
		if _, ok := seen[uf]; ok {
			continue
		}
		seen[uf] = struct{}{}
		states = append(states, uf)
	}
	slices.Sort(states)
	return states
}

// LoadHistoryEntry records one dataset load attempt.
type LoadHistoryEntry struct {
	LoadedAt         time.Time
	ID               int64
	LoadID           string
	Trigger          string // "startup", "reload" or "import"
	Error            string
	AccidentRows     int
	MunicipalityRows int
	NullCoordinates  int
	Duration         time.Duration
	FromCache        bool
}

// Succeeded reports whether the load produced a dataset.
func (e *LoadHistoryEntry) Succeeded() bool {
	return e.Error == ""
}
