package extraction

import (
	"sectracker/internal/filings"
)

// sectionSpec pairs a filing section with the schema sketch and instructions
// sent to the model, plus a cap on how much section text to send.
type sectionSpec struct {
	schema       string
	instructions string
	maxChars     int
}

var sectionSpecs = map[filings.Section]sectionSpec{
	filings.SectionCompetition: {
		instructions: "Extract competitors and competitive factors from this Competition section of an SEC 10-K filing.",
		schema: `{
  "competitors": [
    {
      "name": "string - company name",
      "categories": ["string - GPU, CPU, Cloud, Networking, Automotive, or SoC"]
    }
  ],
  "competitive_factors": ["string - key competitive factors mentioned"]
}`,
	},
	filings.SectionCybersecurity: {
		instructions: "Extract cybersecurity governance and risk management information from this SEC 10-K filing section.",
		schema: `{
  "frameworks": ["string - security frameworks mentioned"],
  "has_cso": "boolean",
  "cso_reports_to": "string or null",
  "cso_experience_years": "integer or null",
  "board_oversight": "string - which committee oversees cybersecurity",
  "has_incident_response_team": "boolean",
  "has_vendor_risk_process": "boolean",
  "key_practices": ["string - key cybersecurity practices mentioned"]
}`,
	},
	filings.SectionRiskFactors: {
		instructions: "Extract the risk categories and individual risks from this Risk Factors section of an SEC 10-K filing.",
		// Risk factors run long; only the opening summary is worth the spend.
		maxChars: 15_000,
		schema: `{
  "risk_categories": ["string - high-level categories"],
  "risks": [{"title": "string - brief risk title", "category": "string - which category"}]
}`,
	},
	filings.SectionBusiness: {
		instructions: "Extract business overview information from this SEC 10-K Business section.",
		maxChars:     8_000,
		schema: `{
  "company_description": "string - one sentence description",
  "business_segments": [{"name": "string", "description": "string - brief description"}],
  "markets": ["string - market names"],
  "employee_count": "integer or null",
  "headquarters": "string",
  "key_technologies": ["string - core technologies mentioned"]
}`,
	},
}

func (s sectionSpec) clip(text string) string {
	if s.maxChars > 0 && len(text) > s.maxChars {
		return text[:s.maxChars]
	}
	return text
}
