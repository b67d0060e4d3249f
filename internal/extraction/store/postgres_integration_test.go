//go:build integration

package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"sectracker/internal/extraction"
	"sectracker/internal/filings"
	"sectracker/pkg/testutil/containers"
)

type PostgresSuite struct {
	suite.Suite
	store *Postgres
}

func TestPostgresSuite(t *testing.T) {
	pc := containers.NewPostgresContainer(t)
	s := &PostgresSuite{store: NewPostgres(pc.Pool)}
	suite.Run(t, s)
}

func (s *PostgresSuite) SetupSuite() {
	s.Require().NoError(s.store.EnsureSchema(context.Background()))
}

func (s *PostgresSuite) SetupTest() {
	_, err := s.store.pool.Exec(context.Background(), "TRUNCATE extractions")
	s.Require().NoError(err)
}

func record(fiscalYear string) extraction.Record {
	return extraction.Record{
		Ticker:      "NVDA",
		Section:     filings.SectionCompetition,
		FiscalYear:  fiscalYear,
		FilingDate:  fiscalYear + "-02-21",
		Data:        json.RawMessage(`{"competitors": [{"name": "AMD"}]}`),
		Model:       "test-model",
		CostUSD:     0.001,
		TotalTokens: 200,
		LatencyMS:   12,
		ExtractedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
}

func (s *PostgresSuite) TestUpsertAndFind() {
	ctx := context.Background()
	want := record("2024")
	s.Require().NoError(s.store.Upsert(ctx, want))

	got, err := s.store.Find(ctx, "NVDA", filings.SectionCompetition, "2024")
	s.Require().NoError(err)
	s.Equal(want.Ticker, got.Ticker)
	s.Equal(want.FiscalYear, got.FiscalYear)
	s.JSONEq(string(want.Data), string(got.Data))
	s.Equal(want.Model, got.Model)
	s.InDelta(want.CostUSD, got.CostUSD, 1e-9)
}

func (s *PostgresSuite) TestUpsertReplacesSameFiscalYear() {
	ctx := context.Background()
	s.Require().NoError(s.store.Upsert(ctx, record("2024")))

	updated := record("2024")
	updated.Data = json.RawMessage(`{"competitors": [{"name": "Intel"}]}`)
	s.Require().NoError(s.store.Upsert(ctx, updated))

	got, err := s.store.Find(ctx, "NVDA", filings.SectionCompetition, "2024")
	s.Require().NoError(err)
	s.JSONEq(string(updated.Data), string(got.Data))

	all, err := s.store.ListByTicker(ctx, "NVDA")
	s.Require().NoError(err)
	s.Len(all, 1, "one row per ticker, section and fiscal year")
}

func (s *PostgresSuite) TestFindMissingIsNotFound() {
	_, err := s.store.Find(context.Background(), "NVDA", filings.SectionCompetition, "1999")
	s.Require().ErrorIs(err, ErrNotFound)
}

func (s *PostgresSuite) TestListByTickerOrdersByYearDescending() {
	ctx := context.Background()
	for _, year := range []string{"2022", "2024", "2023"} {
		s.Require().NoError(s.store.Upsert(ctx, record(year)))
	}

	all, err := s.store.ListByTicker(ctx, "NVDA")
	s.Require().NoError(err)
	s.Require().Len(all, 3)
	s.Equal("2024", all[0].FiscalYear)
	s.Equal("2023", all[1].FiscalYear)
	s.Equal("2022", all[2].FiscalYear)
}
