package filings

import (
	"regexp"
	"strings"
)

// Section names a 10-K region the extractor knows how to locate.
type Section string

const (
	SectionBusiness      Section = "business"
	SectionRiskFactors   Section = "risk_factors"
	SectionCybersecurity Section = "cybersecurity"
	SectionCompetition   Section = "competition"
)

// Sections lists every extractable section.
func Sections() []Section {
	return []Section{SectionBusiness, SectionRiskFactors, SectionCybersecurity, SectionCompetition}
}

// ParseSection validates a section name from a request path.
func ParseSection(raw string) (Section, bool) {
	for _, s := range Sections() {
		if string(s) == raw {
			return s, true
		}
	}
	return "", false
}

var (
	styleRe    = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	scriptRe   = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	blockTagRe = regexp.MustCompile(`(?i)<(?:p|div|br|tr|h[1-6])[^>]*>`)
	anyTagRe   = regexp.MustCompile(`<[^>]+>`)
	entityRe   = regexp.MustCompile(`&#\d+;`)
	spacesRe   = regexp.MustCompile(`[ \t]+`)
	lineLeadRe = regexp.MustCompile(`\n[ \t]+`)
	blanksRe   = regexp.MustCompile(`\n{3,}`)

	businessStartRe = regexp.MustCompile(`(?i)Item\s*1\.?\s*Business`)
	riskStartRe     = regexp.MustCompile(`(?i)Item\s*1A\.?\s*Risk\s*Factors`)
	cyberStartRe    = regexp.MustCompile(`(?i)Item\s*1C\.?\s*Cybersecurity`)
	competitionRe   = regexp.MustCompile(`(?i)Competition\s+The market for`)
)

const (
	// riskFactorsCap bounds the risk section when no Item 1B boundary is
	// found; risk factors can run a hundred pages.
	riskFactorsCap = 150_000
	// competitionCap bounds the competition subsection when no closing
	// heading is found.
	competitionCap = 5_000

	// boundary searches skip past the section heading itself so a table of
	// contents entry doesn't close the section immediately
	headingSkip = 100
)

// HTMLToText flattens filing HTML into plain text with block tags as line
// breaks, the way section boundaries expect to see it.
func HTMLToText(html string) string {
	text := styleRe.ReplaceAllString(html, "")
	text = scriptRe.ReplaceAllString(text, "")
	text = blockTagRe.ReplaceAllString(text, "\n")
	text = anyTagRe.ReplaceAllString(text, " ")
	text = strings.ReplaceAll(text, "&nbsp;", " ")
	text = strings.ReplaceAll(text, "&amp;", "&")
	text = entityRe.ReplaceAllString(text, " ")
	text = spacesRe.ReplaceAllString(text, " ")
	text = lineLeadRe.ReplaceAllString(text, "\n")
	text = blanksRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// ExtractSections splits a 10-K document into its known sections. Sections
// that cannot be located are simply absent from the result.
func ExtractSections(html string) map[Section]string {
	text := HTMLToText(html)
	sections := make(map[Section]string)

	if start := matchStart(businessStartRe, text); start >= 0 {
		if end := indexFrom(text, "Item 1A", start+headingSkip); end > start {
			sections[SectionBusiness] = strings.TrimSpace(text[start:end])
		}
	}

	if start := matchStart(riskStartRe, text); start >= 0 {
		end := indexFrom(text, "Item 1B", start+headingSkip)
		if end < 0 {
			end = min(start+riskFactorsCap, len(text))
		}
		sections[SectionRiskFactors] = strings.TrimSpace(text[start:end])
	}

	if start := matchStart(cyberStartRe, text); start >= 0 {
		if end := indexFrom(text, "Item 2", start+headingSkip); end > start {
			sections[SectionCybersecurity] = strings.TrimSpace(text[start:end])
		}
	}

	if loc := competitionRe.FindStringIndex(text); loc != nil {
		start := loc[0]
		end := indexFrom(text, "Patents and Proprietary", start)
		if end < 0 {
			end = min(start+competitionCap, len(text))
		}
		sections[SectionCompetition] = strings.TrimSpace(text[start:end])
	}

	return sections
}

// matchStart returns the offset of the first match past the table of
// contents: the first occurrence is usually the ToC entry, so prefer the
// second when one exists.
func matchStart(re *regexp.Regexp, text string) int {
	locs := re.FindAllStringIndex(text, 2)
	if len(locs) == 0 {
		return -1
	}
	return locs[len(locs)-1][0]
}

func indexFrom(text, substr string, from int) int {
	if from >= len(text) {
		return -1
	}
	i := strings.Index(text[from:], substr)
	if i < 0 {
		return -1
	}
	return from + i
}
