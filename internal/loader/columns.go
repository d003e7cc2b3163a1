package loader

import (
	"strings"

	"github.com/j-veylop/accidents-dashboard-tui/internal/aggregator"
	"github.com/j-veylop/accidents-dashboard-tui/internal/textfold"
)

// column identifies a logical input column independent of its header text.
type column string

const (
	colState      column = "state"
	colCode       column = "code"
	colName       column = "name"
	colDate       column = "date"
	colTime       column = "time"
	colLatitude   column = "latitude"
	colLongitude  column = "longitude"
	colPopulation column = "population"
	colFleet      column = "fleet"
)

// aliases lists accepted header spellings after normalization. RENAEST and
// DENATRAN exports are not consistent between years.
var aliases = map[column][]string{
	colState:      {"uf_acidente", "uf", "sigla_uf", "estado", "state"},
	colCode:       {"codigo_ibge", "cod_ibge", "cod_municipio", "codigo_municipio", "cd_mun", "ibge"},
	colName:       {"municipio", "nome_municipio", "nm_mun", "cidade", "name"},
	colDate:       {"data_acidente", "data", "data_hora", "dt_acidente", "date"},
	colTime:       {"hora_acidente", "hora", "horario", "time"},
	colLatitude:   {"latitude", "lat"},
	colLongitude:  {"longitude", "lon", "long", "lng"},
	colPopulation: {"populacao", "pop", "populacao_estimada", "population"},
	colFleet:      {"frota_total", "frota", "total_veiculos", "fleet"},
}

// normalizeHeader lowercases a header, removes accents and a UTF-8 BOM, and
// joins words with underscores so "População" and "populacao" match.
func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	h = textfold.Fold(strings.TrimSpace(h))
	return strings.Join(strings.FieldsFunc(h, func(r rune) bool {
		return r == ' ' || r == '-' || r == '.' || r == '_'
	}), "_")
}

// columnIndex maps logical columns to header positions.
type columnIndex map[column]int

func indexColumns(header []string) columnIndex {
	positions := make(map[string]int, len(header))
	for i, h := range header {
		name := normalizeHeader(h)
		if _, ok := positions[name]; !ok {
			positions[name] = i
		}
	}

	idx := make(columnIndex)
	for col, names := range aliases {
		for _, name := range names {
			if pos, ok := positions[name]; ok {
				idx[col] = pos
				break
			}
		}
	}
	return idx
}

// require returns a SchemaError naming the first missing column.
func (idx columnIndex) require(table string, cols ...column) error {
	for _, c := range cols {
		if _, ok := idx[c]; !ok {
			return &aggregator.SchemaError{
				Field:  string(c),
				Reason: "missing from " + table + " (accepted headers: " + strings.Join(aliases[c], ", ") + ")",
			}
		}
	}
	return nil
}

// get returns the trimmed cell for a column, or "" when absent.
func (idx columnIndex) get(row []string, c column) string {
	pos, ok := idx[c]
	if !ok || pos >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[pos])
}
