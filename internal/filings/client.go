package filings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"sectracker/internal/directory"
	dErrors "sectracker/pkg/domain-errors"
	id "sectracker/pkg/domain"
)

// TickerResolver maps a ticker to its directory entry.
type TickerResolver interface {
	ResolveTicker(ctx context.Context, ticker id.Ticker) (directory.Entry, error)
}

// Client talks to EDGAR: company submissions from the data host, filing
// documents from the archive host.
type Client struct {
	dataURL    string
	archiveURL string
	userAgent  string
	resolver   TickerResolver
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// NewClient builds an EDGAR client. EDGAR requires a descriptive User-Agent
// on every request.
func NewClient(dataURL, archiveURL, userAgent string, resolver TickerResolver, opts ...Option) *Client {
	c := &Client{
		dataURL:    strings.TrimRight(dataURL, "/"),
		archiveURL: strings.TrimRight(archiveURL, "/"),
		userAgent:  userAgent,
		resolver:   resolver,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// submissionsDoc is the EDGAR submissions payload. Recent filings arrive as
// parallel arrays.
type submissionsDoc struct {
	CIK                  string   `json:"cik"`
	Name                 string   `json:"name"`
	Tickers              []string `json:"tickers"`
	SIC                  string   `json:"sic"`
	SICDescription       string   `json:"sicDescription"`
	FiscalYearEnd        string   `json:"fiscalYearEnd"`
	StateOfIncorporation string   `json:"stateOfIncorporation"`
	Filings              struct {
		Recent struct {
			Form            []string `json:"form"`
			AccessionNumber []string `json:"accessionNumber"`
			PrimaryDocument []string `json:"primaryDocument"`
			FilingDate      []string `json:"filingDate"`
			ReportDate      []string `json:"reportDate"`
		} `json:"recent"`
	} `json:"filings"`
}

func (d *submissionsDoc) recentFilings() []Filing {
	recent := d.Filings.Recent
	out := make([]Filing, 0, len(recent.Form))
	for i, form := range recent.Form {
		f := Filing{Form: form}
		if i < len(recent.AccessionNumber) {
			f.AccessionNumber = recent.AccessionNumber[i]
		}
		if i < len(recent.PrimaryDocument) {
			f.PrimaryDocument = recent.PrimaryDocument[i]
		}
		if i < len(recent.FilingDate) {
			f.FilingDate = recent.FilingDate[i]
		}
		if i < len(recent.ReportDate) {
			f.ReportDate = recent.ReportDate[i]
		}
		out = append(out, f)
	}
	return out
}

func (c *Client) submissions(ctx context.Context, ticker id.Ticker) (id.CIK, *submissionsDoc, error) {
	entry, err := c.resolver.ResolveTicker(ctx, ticker)
	if err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			return "", nil, dErrors.New(dErrors.CodeNotFound, fmt.Sprintf("company not found: %s", ticker))
		}
		return "", nil, err
	}

	endpoint := fmt.Sprintf("%s/submissions/CIK%s.json", c.dataURL, entry.CIK)
	var doc submissionsDoc
	if err := c.getJSON(ctx, endpoint, &doc); err != nil {
		return "", nil, err
	}
	return entry.CIK, &doc, nil
}

// CompanyInfo returns the EDGAR submissions header for a ticker.
func (c *Client) CompanyInfo(ctx context.Context, ticker id.Ticker) (*CompanyInfo, error) {
	cik, doc, err := c.submissions(ctx, ticker)
	if err != nil {
		return nil, err
	}

	info := &CompanyInfo{
		CIK:                  cik,
		Name:                 doc.Name,
		Ticker:               ticker,
		SIC:                  doc.SIC,
		SICDescription:       doc.SICDescription,
		FiscalYearEnd:        doc.FiscalYearEnd,
		StateOfIncorporation: doc.StateOfIncorporation,
		RecentFilingsCount:   len(doc.Filings.Recent.Form),
	}
	if len(doc.Tickers) > 0 {
		if primary, err := id.ParseTicker(doc.Tickers[0]); err == nil {
			info.Ticker = primary
		}
	}
	return info, nil
}

// RecentFilings lists a company's filings of the given form type, most recent
// first, up to limit. A limit <= 0 means all.
func (c *Client) RecentFilings(ctx context.Context, ticker id.Ticker, formType string, limit int) ([]Filing, error) {
	_, doc, err := c.submissions(ctx, ticker)
	if err != nil {
		return nil, err
	}

	var out []Filing
	for _, f := range doc.recentFilings() {
		if f.Form != formType {
			continue
		}
		out = append(out, f)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// LatestDocument fetches the primary document of the most recent filing of
// the given form type. A company with no such filing is a not-found error.
func (c *Client) LatestDocument(ctx context.Context, ticker id.Ticker, formType string) (*Document, error) {
	cik, doc, err := c.submissions(ctx, ticker)
	if err != nil {
		return nil, err
	}
	for _, f := range doc.recentFilings() {
		if f.Form == formType {
			return c.fetchDocument(ctx, cik, f)
		}
	}
	return nil, dErrors.New(dErrors.CodeNotFound,
		fmt.Sprintf("no %s filing on record for %s", formType, ticker))
}

// FetchDocument fetches the primary document of a specific filing.
func (c *Client) FetchDocument(ctx context.Context, ticker id.Ticker, filing Filing) (*Document, error) {
	entry, err := c.resolver.ResolveTicker(ctx, ticker)
	if err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, fmt.Sprintf("company not found: %s", ticker))
		}
		return nil, err
	}
	return c.fetchDocument(ctx, entry.CIK, filing)
}

func (c *Client) fetchDocument(ctx context.Context, cik id.CIK, filing Filing) (*Document, error) {
	// Archive paths use the unpadded CIK and the accession number without
	// dashes.
	endpoint := fmt.Sprintf("%s/Archives/edgar/data/%s/%s/%s",
		c.archiveURL,
		strings.TrimLeft(cik.String(), "0"),
		strings.ReplaceAll(filing.AccessionNumber, "-", ""),
		filing.PrimaryDocument,
	)

	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	c.logger.InfoContext(ctx, "filing document fetched",
		"cik", cik,
		"form", filing.Form,
		"accession", filing.AccessionNumber,
		"bytes", len(body),
	)
	return &Document{Filing: filing, HTML: string(body)}, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	body, err := c.get(ctx, endpoint)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "decode EDGAR response")
	}
	return nil
}

func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "build EDGAR request")
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "EDGAR request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, dErrors.New(dErrors.CodeUnavailable,
			fmt.Sprintf("EDGAR returned status %d", resp.StatusCode))
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "read EDGAR response")
	}
	return body, nil
}
