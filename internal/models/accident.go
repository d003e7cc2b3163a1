// Package models defines data structures and domain types.
package models

import "strings"

// AccidentRecord is a single accident row from the accidents table.
//
// Date and Time keep the raw strings from the source file. They are parsed
// by the aggregator so that unparseable values can be counted instead of
// silently disappearing at load time.
type AccidentRecord struct {
	State            string
	MunicipalityCode string
	Date             string
	Time             string
	Latitude         float64
	Longitude        float64
	HasCoordinates   bool
}

// HasMunicipality reports whether the record carries an IBGE code.
func (a *AccidentRecord) HasMunicipality() bool {
	return a.MunicipalityCode != ""
}

// StateFilter selects the rows of a single state, or every state when it
// equals AllStates.
type StateFilter string

// AllStates is the sentinel filter that keeps every row.
const AllStates StateFilter = "ALL"

// NewStateFilter normalizes a UF code ("sp", " SP ") into a filter. An empty
// value or "all" (any case) yields AllStates.
func NewStateFilter(uf string) StateFilter {
	uf = strings.ToUpper(strings.TrimSpace(uf))
	if uf == "" || uf == string(AllStates) {
		return AllStates
	}
	return StateFilter(uf)
}

// IsAll reports whether the filter keeps every state.
func (f StateFilter) IsAll() bool {
	return f == AllStates || f == ""
}

// Matches reports whether a row with the given state code passes the filter.
func (f StateFilter) Matches(state string) bool {
	if f.IsAll() {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(state), string(f))
}

// String returns the display name of the filter.
func (f StateFilter) String() string {
	if f.IsAll() {
		return "All states"
	}
	return string(f)
}
