// Package filings fetches SEC EDGAR company submissions and filing documents
// and splits annual reports into their major sections.
package filings

import (
	id "sectracker/pkg/domain"
)

// CompanyInfo is the EDGAR submissions header for one company.
type CompanyInfo struct {
	CIK                  id.CIK    `json:"cik"`
	Name                 string    `json:"name"`
	Ticker               id.Ticker `json:"ticker"`
	SIC                  string    `json:"sic"`
	SICDescription       string    `json:"sic_description"`
	FiscalYearEnd        string    `json:"fiscal_year_end"`
	StateOfIncorporation string    `json:"state_of_incorporation"`
	RecentFilingsCount   int       `json:"recent_filings_count"`
}

// Filing is one entry from a company's recent-filings list.
type Filing struct {
	Form            string `json:"form"`
	AccessionNumber string `json:"accession_number"`
	PrimaryDocument string `json:"primary_document"`
	FilingDate      string `json:"filing_date"` // YYYY-MM-DD
	ReportDate      string `json:"report_date"` // YYYY-MM-DD, period covered
}

// FiscalYear derives the fiscal year from the period-of-report date, falling
// back to the filing date.
func (f Filing) FiscalYear() string {
	for _, date := range []string{f.ReportDate, f.FilingDate} {
		if len(date) >= 4 {
			return date[:4]
		}
	}
	return ""
}

// Document is a fetched filing with its metadata.
type Document struct {
	Filing Filing
	HTML   string
}
