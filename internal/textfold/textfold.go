// Package textfold normalizes Portuguese text for matching and sorting.
package textfold

import (
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold lowercases s and strips diacritics, so "São Paulo" and "sao paulo"
// compare equal.
func Fold(s string) string {
	// transform chains keep state and cannot be shared between goroutines.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}

// Contains reports whether needle occurs in haystack ignoring case and
// accents. An empty needle matches everything.
func Contains(haystack, needle string) bool {
	return strings.Contains(Fold(haystack), Fold(strings.TrimSpace(needle)))
}

// SortFunc sorts items by key using Brazilian Portuguese collation, so
// "Águas" sorts next to "Aguas" rather than after "Z". The sort is stable.
func SortFunc[T any](items []T, key func(T) string) {
	c := collate.New(language.BrazilianPortuguese, collate.IgnoreCase)
	slices.SortStableFunc(items, func(a, b T) int {
		return c.CompareString(key(a), key(b))
	})
}
