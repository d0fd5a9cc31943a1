package selector

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// NormalizeField folds a record field to NFKC, strips a leading BOM and drops
// control characters. Identifiers pasted from spreadsheets often carry
// full-width digits or stray tabs; after folding they match their ASCII form.
func NormalizeField(s string) string {
	s = strings.TrimPrefix(s, "\ufeff")
	s = norm.NFKC.String(s)
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}

// NormalizeStructure prepares a SMILES string for the scaffold extractor.
// Only the first whitespace-separated token is kept; the rest is a title.
func NormalizeStructure(s string) string {
	fields := strings.Fields(norm.NFKC.String(strings.TrimPrefix(s, "\ufeff")))
	if len(fields) == 0 {
		return ""
	}
	return NormalizeField(fields[0])
}
