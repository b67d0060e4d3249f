package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"

	id "sectracker/pkg/domain"
)

// Provider supplies the bulk ticker listing. Implementations fetch it once;
// caching is the Registry's concern.
type Provider interface {
	Fetch(ctx context.Context) ([]Entry, error)
}

// HTTPProvider fetches the SEC's company_tickers.json bulk file.
type HTTPProvider struct {
	baseURL   string
	userAgent string
	http      *http.Client
}

// NewHTTPProvider builds a directory provider against the given SEC base URL.
func NewHTTPProvider(baseURL, userAgent string, client *http.Client) *HTTPProvider {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPProvider{baseURL: baseURL, userAgent: userAgent, http: client}
}

// bulkEntry mirrors one value of the company_tickers.json object.
type bulkEntry struct {
	CIK    int    `json:"cik_str"`
	Ticker string `json:"ticker"`
	Title  string `json:"title"`
}

// Fetch downloads and decodes the full listing. The upstream file is a JSON
// object keyed by numeric position; order is restored by sorting the keys so
// downstream tie-breaks stay deterministic across loads.
func (p *HTTPProvider) Fetch(ctx context.Context) ([]Entry, error) {
	url := p.baseURL + "/files/company_tickers.json"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build directory request: %w", err)
	}
	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch ticker directory: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch ticker directory: unexpected status %d", resp.StatusCode)
	}

	var raw map[string]bulkEntry
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode ticker directory: %w", err)
	}

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, _ := strconv.Atoi(keys[i])
		b, _ := strconv.Atoi(keys[j])
		return a < b
	})

	entries := make([]Entry, 0, len(keys))
	for _, k := range keys {
		be := raw[k]
		ticker, err := id.ParseTicker(be.Ticker)
		if err != nil {
			// The bulk file occasionally carries units and warrants with
			// symbols outside the plain-equity shape; skip them.
			continue
		}
		cik, err := id.ParseCIK(strconv.Itoa(be.CIK))
		if err != nil {
			continue
		}
		entries = append(entries, Entry{Ticker: ticker, Name: be.Title, CIK: cik})
	}
	return entries, nil
}
