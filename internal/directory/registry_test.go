package directory

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/suite"

	id "sectracker/pkg/domain"
	dErrors "sectracker/pkg/domain-errors"
)

// =============================================================================
// Registry Test Suite
// =============================================================================
// Justification for unit tests: the registry is the load-bearing cache under
// every lookup stage; its once-only population and dual-share-class indexing
// cannot be exercised precisely through the HTTP API.

type fakeProvider struct {
	entries []Entry
	err     error
	calls   atomic.Int64
}

func (p *fakeProvider) Fetch(context.Context) ([]Entry, error) {
	p.calls.Add(1)
	if p.err != nil {
		return nil, p.err
	}
	return p.entries, nil
}

func sampleEntries() []Entry {
	return []Entry{
		{Ticker: "NVDA", Name: "NVIDIA CORP", CIK: "0001045810"},
		{Ticker: "META", Name: "Meta Platforms, Inc.", CIK: "0001326801"},
		{Ticker: "GOOGL", Name: "Alphabet Inc.", CIK: "0001652044"},
		{Ticker: "GOOG", Name: "Alphabet Inc.", CIK: "0001652044"},
	}
}

type RegistrySuite struct {
	suite.Suite
	provider *fakeProvider
	registry *Registry
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistrySuite))
}

func (s *RegistrySuite) SetupTest() {
	s.provider = &fakeProvider{entries: sampleEntries()}
	s.registry = NewRegistry(s.provider)
}

// =============================================================================
// Lazy Load Tests
// =============================================================================

func (s *RegistrySuite) TestLoadsOnce() {
	ctx := context.Background()

	_, err := s.registry.ResolveTicker(ctx, "META")
	s.Require().NoError(err)
	_, err = s.registry.Names(ctx)
	s.Require().NoError(err)
	_, err = s.registry.EntriesForName(ctx, "ALPHABET INC")
	s.Require().NoError(err)

	s.Equal(int64(1), s.provider.calls.Load())
}

func (s *RegistrySuite) TestConcurrentFirstAccessLoadsOnce() {
	ctx := context.Background()

	var wg sync.WaitGroup
	for range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.registry.Names(ctx)
			s.NoError(err)
		}()
	}
	wg.Wait()

	s.Equal(int64(1), s.provider.calls.Load())
}

func (s *RegistrySuite) TestFailedLoadPropagatesAndRetries() {
	ctx := context.Background()
	s.provider.err = errors.New("dial tcp: refused")

	_, err := s.registry.Names(ctx)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))

	// The failure must not be cached: a later call retries the provider.
	s.provider.err = nil
	names, err := s.registry.Names(ctx)
	s.Require().NoError(err)
	s.NotEmpty(names)
	s.Equal(int64(2), s.provider.calls.Load())
}

// =============================================================================
// Index Tests
// =============================================================================

func (s *RegistrySuite) TestResolveTicker() {
	ctx := context.Background()

	s.Run("known ticker", func() {
		entry, err := s.registry.ResolveTicker(ctx, "NVDA")
		s.Require().NoError(err)
		s.Equal("NVIDIA CORP", entry.Name)
		s.Equal(id.CIK("0001045810"), entry.CIK)
	})

	s.Run("unknown ticker returns ErrNotFound", func() {
		_, err := s.registry.ResolveTicker(ctx, "ZZZZ")
		s.ErrorIs(err, ErrNotFound)
	})
}

func (s *RegistrySuite) TestNamesAreNormalizedAndOrdered() {
	ctx := context.Background()

	names, err := s.registry.Names(ctx)
	s.Require().NoError(err)
	// Alphabet appears once despite two share classes, and order follows
	// first directory appearance.
	s.Equal([]string{"NVIDIA CORP", "META PLATFORMS INC", "ALPHABET INC"}, names)
}

func (s *RegistrySuite) TestDualShareClassName() {
	ctx := context.Background()

	entries, err := s.registry.EntriesForName(ctx, "ALPHABET INC")
	s.Require().NoError(err)
	s.Require().Len(entries, 2)
	s.Equal(id.Ticker("GOOGL"), entries[0].Ticker)
	s.Equal(id.Ticker("GOOG"), entries[1].Ticker)
}

// =============================================================================
// HTTP Provider Tests
// =============================================================================

func TestHTTPProviderFetch(t *testing.T) {
	const bulk = `{
		"1": {"cik_str": 1326801, "ticker": "META", "title": "Meta Platforms, Inc."},
		"0": {"cik_str": 1045810, "ticker": "NVDA", "title": "NVIDIA CORP"},
		"2": {"cik_str": 99999, "ticker": "BAD TICKER", "title": "Broken Row"}
	}`

	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		if r.URL.Path != "/files/company_tickers.json" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(bulk))
	}))
	defer srv.Close()

	provider := NewHTTPProvider(srv.URL, "sectracker test@example.com", srv.Client())
	entries, err := provider.Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if gotUA != "sectracker test@example.com" {
		t.Fatalf("expected SEC user agent to be sent, got %q", gotUA)
	}
	if len(entries) != 2 {
		t.Fatalf("expected malformed row skipped, got %d entries", len(entries))
	}
	// Numeric key order, not JSON map order.
	if entries[0].Ticker != "NVDA" || entries[1].Ticker != "META" {
		t.Fatalf("unexpected order: %+v", entries)
	}
	if entries[0].CIK != "0001045810" {
		t.Fatalf("expected zero-padded CIK, got %s", entries[0].CIK)
	}
}

func TestHTTPProviderUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	provider := NewHTTPProvider(srv.URL, "ua", srv.Client())
	_, err := provider.Fetch(context.Background())
	if err == nil {
		t.Fatal("expected error on upstream 503")
	}
}
