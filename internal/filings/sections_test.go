package filings

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"
)

// A miniature 10-K: a table of contents repeating the item headings, then the
// real sections. Boundary detection must skip the ToC entries.
const fixture10K = `<html><head><style>p { margin: 0; }</style></head><body>
<script>var tracking = true;</script>
<div>TABLE OF CONTENTS</div>
<div>Item 1. Business</div>
<div>Item 1A. Risk Factors</div>
<div>Item 1B. Unresolved Staff Comments</div>
<div>Item 1C. Cybersecurity</div>
<div>Item 2. Properties</div>
<h1>Item 1. Business</h1>
<p>Our Company</p>
<p>We design accelerated computing platforms serving datacenter, gaming and
automotive markets, and we sell our products to a broad base of customers
around the world through direct and channel relationships.</p>
<p>Competition</p>
<p>The market for our products is intensely competitive and is characterized
by rapid technological change and evolving industry standards. We compete with
suppliers of discrete and integrated processors.</p>
<p>Patents and Proprietary Rights</p>
<p>We rely on a combination of patents and trade secrets.</p>
<h1>Item 1A. Risk Factors</h1>
<p>Our business faces significant risks. Demand for our products may fluctuate
and long manufacturing lead times could leave us with mismatched supply, and
we depend on third-party foundries for all of our semiconductor wafers.</p>
<h1>Item 1B. Unresolved Staff Comments</h1>
<p>None.</p>
<h1>Item 1C. Cybersecurity</h1>
<p>We maintain a risk-based cybersecurity program overseen by the Audit
Committee of our Board of Directors, with incident response procedures and
third-party assessments performed on a recurring basis.</p>
<h1>Item 2. Properties</h1>
<p>Our headquarters is in Santa Clara, California.</p>
</body></html>`

type SectionsSuite struct {
	suite.Suite
	sections map[Section]string
}

func TestSectionsSuite(t *testing.T) {
	suite.Run(t, new(SectionsSuite))
}

func (s *SectionsSuite) SetupSuite() {
	s.sections = ExtractSections(fixture10K)
}

func (s *SectionsSuite) TestAllSectionsFound() {
	for _, section := range Sections() {
		s.Containsf(s.sections, section, "section %s missing", section)
	}
}

func (s *SectionsSuite) TestBusinessBoundaries() {
	business := s.sections[SectionBusiness]
	s.Contains(business, "accelerated computing platforms")
	s.NotContains(business, "faces significant risks")
	s.NotContains(business, "TABLE OF CONTENTS")
}

func (s *SectionsSuite) TestRiskFactorsBoundaries() {
	risks := s.sections[SectionRiskFactors]
	s.Contains(risks, "third-party foundries")
	s.NotContains(risks, "cybersecurity program")
}

func (s *SectionsSuite) TestCybersecurityBoundaries() {
	cyber := s.sections[SectionCybersecurity]
	s.Contains(cyber, "Audit")
	s.NotContains(cyber, "Santa Clara")
}

func (s *SectionsSuite) TestCompetitionSubsection() {
	competition := s.sections[SectionCompetition]
	s.True(strings.HasPrefix(competition, "Competition"))
	s.Contains(competition, "intensely competitive")
	s.NotContains(competition, "trade secrets")
}

func (s *SectionsSuite) TestUnrecognizedDocumentYieldsNothing() {
	s.Empty(ExtractSections("<html><body><p>Quarterly update.</p></body></html>"))
}

func (s *SectionsSuite) TestHTMLToTextStripsMarkup() {
	text := HTMLToText("<p>Research &amp; Development&nbsp;costs&#8217;</p><style>p{}</style>")
	s.Equal("Research & Development costs", text)
	s.NotContains(text, "<")
}

func (s *SectionsSuite) TestParseSection() {
	got, ok := ParseSection("risk_factors")
	s.True(ok)
	s.Equal(SectionRiskFactors, got)

	_, ok = ParseSection("financials")
	s.False(ok)
}
