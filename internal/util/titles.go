package util

import (
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var folder = cases.Fold()

// NormalizeTitle folds case, strips diacritics and punctuation and collapses
// whitespace, so "Amélie!" and "amelie" compare equal.
func NormalizeTitle(title string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, title)
	if err != nil {
		stripped = title
	}
	stripped = folder.String(stripped)

	var b strings.Builder
	space := false
	for _, r := range stripped {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
		case r == '\'':
			// "Schindler's" and "Schindlers" should match.
		default:
			space = true
		}
	}
	return b.String()
}

// TitleDistance is the edit distance between two normalized titles.
func TitleDistance(a, b string) int {
	return levenshtein.ComputeDistance(NormalizeTitle(a), NormalizeTitle(b))
}

// TitlesMatch reports whether two titles are equal after normalization or
// differ by at most a fifth of the longer title's length.
func TitlesMatch(a, b string) bool {
	na, nb := NormalizeTitle(a), NormalizeTitle(b)
	if na == "" || nb == "" {
		return false
	}
	if na == nb {
		return true
	}
	longest := len([]rune(na))
	if n := len([]rune(nb)); n > longest {
		longest = n
	}
	return levenshtein.ComputeDistance(na, nb)*5 <= longest
}
