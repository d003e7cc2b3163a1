package loader

import (
	"math"
	"strconv"
	"strings"
)

// parseDecimal reads numbers written with either a decimal point or a
// decimal comma ("-23,5505"). Thousands separators are not expected here.
func parseDecimal(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "nan") || strings.EqualFold(s, "null") {
		return 0, false
	}
	if !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// parseCount reads a non-negative integer that may use "." or "," as a
// thousands separator ("1.234.567") or carry a spreadsheet ".0" suffix.
// Negative or unparseable values report false.
func parseCount(s string) (int64, bool) {
	s = strings.TrimSpace(strings.ReplaceAll(s, " ", ""))
	if s == "" {
		return 0, false
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n < 0 {
			return 0, false
		}
		return n, true
	}

	dots, commas := strings.Count(s, "."), strings.Count(s, ",")
	switch {
	case dots > 1 || commas > 1:
		// 1.234.567
		s = strings.NewReplacer(".", "", ",", "").Replace(s)
	case dots == 1 && commas == 1:
		// 1.234,0 or 1,234.0
		if strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case dots == 0 && commas == 0:
		return 0, false
	default:
		// A single separator followed by exactly three digits groups
		// thousands; anything else is a decimal point.
		sep := strings.LastIndexAny(s, ".,")
		if len(s)-sep-1 == 3 {
			s = s[:sep] + s[sep+1:]
		} else {
			s = s[:sep] + "." + s[sep+1:]
		}
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return int64(math.Round(v)), true
}

// validCoordinates rejects missing points and the 0,0 placeholder some
// exports write for unknown locations.
func validCoordinates(lat, lon float64) bool {
	if lat == 0 && lon == 0 {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
