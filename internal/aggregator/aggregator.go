// Package aggregator turns accident rows and municipality metadata into the
// ranked, bucketed and correlated views shown by the dashboard.
//
// Every function here is a pure transformation: inputs are never modified
// and repeated calls with the same arguments return equal results.
package aggregator

import (
	"fmt"
	"strings"

	"github.com/j-veylop/accidents-dashboard-tui/internal/models"
)

// JoinMode selects how unmatched municipality codes are handled.
type JoinMode int

const (
	// JoinInner drops codes with no metadata row.
	JoinInner JoinMode = iota
	// JoinLeft keeps them with HasInfo set to false.
	JoinLeft
)

// FilterByState returns the rows of both tables that belong to the filter's
// state. For AllStates the inputs are returned as copies.
func FilterByState(
	accidents []models.AccidentRecord,
	municipalities []models.Municipality,
	filter models.StateFilter,
) ([]models.AccidentRecord, []models.Municipality) {
	if filter.IsAll() {
		return append([]models.AccidentRecord(nil), accidents...),
			append([]models.Municipality(nil), municipalities...)
	}

	var outAcc []models.AccidentRecord
	for i := range accidents {
		if filter.Matches(accidents[i].State) {
			outAcc = append(outAcc, accidents[i])
		}
	}

	var outMun []models.Municipality
	for i := range municipalities {
		if filter.Matches(municipalities[i].State) {
			outMun = append(outMun, municipalities[i])
		}
	}

	return outAcc, outMun
}

// MunicipalityCounts maps municipality codes to accident counts. Codes keeps
// first-seen order so later stable sorts break ties reproducibly.
type MunicipalityCounts struct {
	Codes  []string
	Counts map[string]int

	// Missing counts rows that carried no municipality code.
	Missing int
}

// Total returns the number of rows that were counted under a code.
func (c MunicipalityCounts) Total() int {
	total := 0
	for _, n := range c.Counts {
		total += n
	}
	return total
}

// Len returns the number of distinct codes.
func (c MunicipalityCounts) Len() int {
	return len(c.Codes)
}

// CountByMunicipality groups accidents by IBGE code. Only codes with at
// least one accident appear in the result. Rows with a blank code are
// tallied in Missing, so Total()+Missing always equals len(accidents).
func CountByMunicipality(accidents []models.AccidentRecord) MunicipalityCounts {
	counts := MunicipalityCounts{Counts: make(map[string]int)}
	for i := range accidents {
		code := normalizeCode(accidents[i].MunicipalityCode)
		if code == "" {
			counts.Missing++
			continue
		}
		if _, ok := counts.Counts[code]; !ok {
			counts.Codes = append(counts.Codes, code)
		}
		counts.Counts[code]++
	}
	return counts
}

// JoinResult is the outcome of JoinWithMunicipalityInfo.
type JoinResult struct {
	Stats []models.MunicipalityStat

	// Unmatched is the number of distinct codes with no metadata row and
	// UnmatchedAccidents the accidents they carried.
	Unmatched          int
	UnmatchedAccidents int

	// Duplicates counts metadata rows ignored because their code was seen
	// earlier in the table.
	Duplicates int
}

// Err returns an ErrJoinMismatch describing the unmatched codes, or nil.
func (r JoinResult) Err() error {
	if r.Unmatched == 0 {
		return nil
	}
	return fmt.Errorf("%w: %d codes, %d accidents", ErrJoinMismatch, r.Unmatched, r.UnmatchedAccidents)
}

// JoinWithMunicipalityInfo attaches municipality metadata to the counts.
// Metadata is deduplicated by code with the first occurrence winning.
// Output rows follow the first-seen order of counts.Codes.
func JoinWithMunicipalityInfo(
	counts MunicipalityCounts,
	municipalities []models.Municipality,
	mode JoinMode,
) JoinResult {
	var result JoinResult

	index := make(map[string]models.Municipality, len(municipalities))
	for _, m := range municipalities {
		code := normalizeCode(m.Code)
		if _, ok := index[code]; ok {
			result.Duplicates++
			continue
		}
		index[code] = m
	}

	result.Stats = make([]models.MunicipalityStat, 0, len(counts.Codes))
	for _, code := range counts.Codes {
		n := counts.Counts[code]
		info, ok := index[code]
		if !ok {
			result.Unmatched++
			result.UnmatchedAccidents += n
			if mode == JoinInner {
				continue
			}
			result.Stats = append(result.Stats, models.MunicipalityStat{
				Code:      code,
				Accidents: n,
			})
			continue
		}
		result.Stats = append(result.Stats, models.MunicipalityStat{
			Code:       code,
			Name:       info.Name,
			State:      strings.ToUpper(strings.TrimSpace(info.State)),
			Accidents:  n,
			Population: info.Population,
			Fleet:      info.Fleet,
			HasInfo:    true,
		})
	}

	return result
}

// normalizeCode trims whitespace and a trailing ".0" that spreadsheet
// exports add to integer codes.
func normalizeCode(code string) string {
	code = strings.TrimSpace(code)
	return strings.TrimSuffix(code, ".0")
}
