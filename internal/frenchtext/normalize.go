// Package frenchtext normalizes and tokenizes French business text for
// matching and scoring. All comparisons elsewhere in the application run on
// the normalized form produced here.
package frenchtext

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldPool hands out fold chains that decompose characters and strip
// combining marks, turning "Société Générale" into "societe generale" after
// lowering. transform.Chain carries per-link buffers, so a chain must never
// be shared between goroutines.
var foldPool = sync.Pool{
	New: func() any {
		return transform.Chain(
			norm.NFD,
			runes.Remove(runes.In(unicode.Mn)),
			norm.NFC,
		)
	},
}

// Normalize lowercases the input, strips diacritics and collapses whitespace.
func Normalize(s string) string {
	folder := foldPool.Get().(transform.Transformer)
	folded, _, err := transform.String(folder, strings.ToLower(s))
	foldPool.Put(folder)
	if err != nil {
		// Transform failure leaves the lowered input usable for matching.
		folded = strings.ToLower(s)
	}
	return strings.Join(strings.Fields(folded), " ")
}

// Tokenize splits normalized text on non-alphanumeric runes.
func Tokenize(s string) []string {
	return strings.FieldsFunc(Normalize(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Contains reports whether needle occurs in haystack after normalization.
func Contains(haystack, needle string) bool {
	if needle == "" {
		return false
	}
	return strings.Contains(Normalize(haystack), Normalize(needle))
}
