package directory

import "strings"

// NormalizeName canonicalizes a legal company name for index keys and fuzzy
// comparison: uppercase, punctuation commonly dropped in filings removed,
// whitespace collapsed.
func NormalizeName(name string) string {
	upper := strings.ToUpper(name)
	var b strings.Builder
	b.Grow(len(upper))
	for _, r := range upper {
		switch r {
		case '.', ',', '\'':
			// "Meta Platforms, Inc." and "META PLATFORMS INC" must key
			// identically.
		default:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
