package extraction

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"sectracker/internal/filings"
	"sectracker/internal/llm"
	dErrors "sectracker/pkg/domain-errors"
	id "sectracker/pkg/domain"
	"sectracker/pkg/requestcontext"
)

const (
	annualForm = "10-K"

	// historyConcurrency bounds how many per-period pipelines run at once;
	// each one holds a filing document in memory and a model call in flight.
	historyConcurrency = 3

	maxHistoryYears = 10
)

// FilingSource provides EDGAR submissions and documents.
type FilingSource interface {
	RecentFilings(ctx context.Context, ticker id.Ticker, formType string, limit int) ([]filings.Filing, error)
	FetchDocument(ctx context.Context, ticker id.Ticker, filing filings.Filing) (*filings.Document, error)
}

// Extractor turns section text into schema-shaped JSON.
type Extractor interface {
	ExtractJSON(ctx context.Context, text, schema, instructions string, metadata map[string]string) (json.RawMessage, *llm.Response, error)
}

// Store is interface-driven so the extraction service can run against
// in-memory, postgres, or no persistence at all.
type Store interface {
	Upsert(ctx context.Context, record Record) error
	Find(ctx context.Context, ticker id.Ticker, section filings.Section, fiscalYear string) (Record, error)
	ListByTicker(ctx context.Context, ticker id.Ticker) ([]Record, error)
}

// Service runs section extractions over the latest or historical annual
// filings, persisting results per fiscal year.
type Service struct {
	filings FilingSource
	model   Extractor
	store   Store
	logger  *slog.Logger
}

// Option configures optional Service dependencies.
type Option func(*Service)

// WithStore enables persistence and read-through caching of results.
func WithStore(st Store) Option {
	return func(s *Service) { s.store = st }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// New creates an extraction service.
func New(filingSource FilingSource, model Extractor, opts ...Option) (*Service, error) {
	if filingSource == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "filing source is required")
	}
	if model == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "extractor is required")
	}
	s := &Service{
		filings: filingSource,
		model:   model,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Extract runs one section extraction against the company's most recent
// annual filing. A stored result for the same fiscal year is returned without
// a model call.
func (s *Service) Extract(ctx context.Context, ticker id.Ticker, section filings.Section) (Record, error) {
	spec, ok := sectionSpecs[section]
	if !ok {
		return Record{}, dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("unknown section: %s", section))
	}

	recent, err := s.filings.RecentFilings(ctx, ticker, annualForm, 1)
	if err != nil {
		return Record{}, err
	}
	if len(recent) == 0 {
		return Record{}, dErrors.New(dErrors.CodeNotFound,
			fmt.Sprintf("no %s filing on record for %s", annualForm, ticker))
	}
	filing := recent[0]

	if s.store != nil {
		if cached, err := s.store.Find(ctx, ticker, section, filing.FiscalYear()); err == nil {
			s.logger.InfoContext(ctx, "extraction served from store",
				"ticker", ticker,
				"section", section,
				"fiscal_year", filing.FiscalYear(),
			)
			return cached, nil
		}
	}

	record, err := s.extractFiling(ctx, ticker, section, spec, filing)
	if err != nil {
		return Record{}, err
	}

	if s.store != nil {
		if err := s.store.Upsert(ctx, record); err != nil {
			s.logger.ErrorContext(ctx, "extraction persist failed",
				"ticker", ticker,
				"section", section,
				"error", err,
			)
		}
	}
	return record, nil
}

func (s *Service) extractFiling(ctx context.Context, ticker id.Ticker, section filings.Section, spec sectionSpec, filing filings.Filing) (Record, error) {
	doc, err := s.filings.FetchDocument(ctx, ticker, filing)
	if err != nil {
		return Record{}, err
	}

	text, ok := filings.ExtractSections(doc.HTML)[section]
	if !ok {
		return Record{}, dErrors.New(dErrors.CodeNotFound,
			fmt.Sprintf("%s section not found in %s filing", section, annualForm))
	}

	data, response, err := s.model.ExtractJSON(ctx, spec.clip(text), spec.schema, spec.instructions,
		map[string]string{
			"ticker":  ticker.String(),
			"section": string(section),
		})
	if err != nil {
		return Record{}, err
	}

	return Record{
		Ticker:      ticker,
		Section:     section,
		FiscalYear:  filing.FiscalYear(),
		FilingDate:  filing.FilingDate,
		Data:        data,
		Model:       response.Model,
		CostUSD:     response.CostUSD,
		TotalTokens: response.TotalTokens,
		LatencyMS:   response.LatencyMS,
		ExtractedAt: requestcontext.Now(ctx).UTC(),
	}, nil
}

// History runs the same section extraction over up to years of annual
// filings. Periods are independent pipelines sharing no mutable state, so
// they run concurrently; a period that fails reports its error in place
// without sinking the others.
func (s *Service) History(ctx context.Context, ticker id.Ticker, section filings.Section, years int) (History, error) {
	spec, ok := sectionSpecs[section]
	if !ok {
		return History{}, dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("unknown section: %s", section))
	}
	if years <= 0 || years > maxHistoryYears {
		years = maxHistoryYears
	}

	recent, err := s.filings.RecentFilings(ctx, ticker, annualForm, years)
	if err != nil {
		return History{}, err
	}

	results := make([]YearResult, len(recent))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(historyConcurrency)
	for i, filing := range recent {
		g.Go(func() error {
			results[i] = s.historicalYear(gctx, ticker, section, spec, filing)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return History{}, err
	}

	history := History{
		Ticker:         ticker,
		Section:        section,
		YearsRequested: years,
		Years:          results,
	}
	for _, year := range results {
		history.TotalCostUSD += year.CostUSD
		if year.Error == "" {
			history.YearsFound++
		}
	}

	if s.store != nil {
		for i, year := range results {
			if year.Error != "" || year.Data == nil {
				continue
			}
			record := Record{
				Ticker:      ticker,
				Section:     section,
				FiscalYear:  year.FiscalYear,
				FilingDate:  year.FilingDate,
				Data:        year.Data,
				CostUSD:     year.CostUSD,
				ExtractedAt: requestcontext.Now(ctx).UTC(),
			}
			if err := s.store.Upsert(ctx, record); err != nil {
				s.logger.ErrorContext(ctx, "historical extraction persist failed",
					"ticker", ticker,
					"fiscal_year", results[i].FiscalYear,
					"error", err,
				)
			}
		}
	}
	return history, nil
}

func (s *Service) historicalYear(ctx context.Context, ticker id.Ticker, section filings.Section, spec sectionSpec, filing filings.Filing) YearResult {
	year := YearResult{
		FiscalYear: filing.FiscalYear(),
		FilingDate: filing.FilingDate,
	}

	if s.store != nil {
		if cached, err := s.store.Find(ctx, ticker, section, year.FiscalYear); err == nil {
			year.Data = cached.Data
			return year
		}
	}

	record, err := s.extractFiling(ctx, ticker, section, spec, filing)
	if err != nil {
		if year.Error = dErrors.Message(err); year.Error == "" {
			year.Error = err.Error()
		}
		return year
	}
	year.Data = record.Data
	year.CostUSD = record.CostUSD
	return year
}
