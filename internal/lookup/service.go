package lookup

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"sectracker/internal/audit"
	"sectracker/internal/directory"
	"sectracker/internal/kgraph"
	"sectracker/internal/lookup/metrics"
	"sectracker/internal/match"
	dErrors "sectracker/pkg/domain-errors"
	id "sectracker/pkg/domain"
	"sectracker/pkg/requestcontext"
)

const (
	directMatchLimit = 5
	verifyMatchLimit = 3

	tracerName = "sectracker/internal/lookup"
)

// Matcher scores a query against the ticker directory.
type Matcher interface {
	Match(ctx context.Context, query string, limit int) ([]match.Candidate, error)
}

// Graph resolves a query to a publicly traded parent via ownership edges.
type Graph interface {
	LookupSubsidiary(ctx context.Context, query string) (*kgraph.SubsidiaryResult, error)
}

// Generative names the official filing entity for a query, or misses.
type Generative interface {
	IdentifyCompany(ctx context.Context, query string) (string, error)
}

// TickerResolver looks a ticker up in the directory.
type TickerResolver interface {
	ResolveTicker(ctx context.Context, ticker id.Ticker) (directory.Entry, error)
}

// Service runs the resolution pipeline. Stages are tried in strict priority
// order and short-circuit on the first success.
type Service struct {
	matcher    Matcher
	resolver   TickerResolver
	graph      Graph
	generative Generative
	publisher  audit.Publisher
	stages     []stage
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

// Option configures optional Service dependencies.
type Option func(*Service)

// WithGraph enables the knowledge-graph stage.
func WithGraph(graph Graph) Option {
	return func(s *Service) { s.graph = graph }
}

// WithGenerative enables the generative stage.
func WithGenerative(generative Generative) Option {
	return func(s *Service) { s.generative = generative }
}

// WithAudit publishes one event per resolution.
func WithAudit(publisher audit.Publisher) Option {
	return func(s *Service) { s.publisher = publisher }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// New creates a lookup service. The matcher and resolver are required; the
// graph and generative stages are skipped when their dependency is absent.
func New(matcher Matcher, resolver TickerResolver, opts ...Option) (*Service, error) {
	if matcher == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "matcher is required")
	}
	if resolver == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "ticker resolver is required")
	}
	s := &Service{
		matcher:  matcher,
		resolver: resolver,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.stages = []stage{
		{method: MethodDirect, run: s.directStage},
		{method: MethodKnowledgeGraph, run: s.graphStage},
		{method: MethodGenerative, run: s.generativeStage},
		{method: MethodFallback, run: s.fallbackStage},
	}
	return s, nil
}

// stage is one pipeline step. run returns nil when the stage misses, which
// advances the pipeline; errors abort it.
type stage struct {
	method Method
	run    func(ctx context.Context, st *resolutionState) (*Result, error)
}

// resolutionState carries intermediate work between stages: the direct
// candidates are computed once and reused by the fallback stage.
type resolutionState struct {
	query  string
	direct []match.Candidate
}

// Lookup resolves a query to a single result. An unresolvable query yields a
// well-formed result with a nil ticker and zero confidence, never an error;
// only provider outages are errors.
func (s *Service) Lookup(ctx context.Context, query string) (Result, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "lookup.Service.Lookup")
	span.SetAttributes(attribute.String("lookup.query", query))
	defer span.End()

	start := time.Now()
	query = strings.TrimSpace(query)
	if query == "" {
		return s.finish(ctx, start, Result{Query: query, Method: MethodFallback}), nil
	}

	st := &resolutionState{query: query}
	for _, stg := range s.stages {
		result, err := stg.run(ctx, st)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return Result{}, err
		}
		if result != nil {
			span.SetAttributes(
				attribute.String("lookup.method", string(result.Method)),
				attribute.Bool("lookup.resolved", result.Resolved()),
			)
			return s.finish(ctx, start, *result), nil
		}
	}

	// The fallback stage always returns a result.
	return s.finish(ctx, start, Result{Query: query, Method: MethodFallback}), nil
}

func (s *Service) finish(ctx context.Context, start time.Time, result Result) Result {
	s.metrics.IncrementResolution(string(result.Method), result.Resolved())
	s.metrics.ObserveLatency(time.Since(start))
	s.logger.InfoContext(ctx, "query resolved",
		"query", result.Query,
		"method", result.Method,
		"resolved", result.Resolved(),
		"confidence", result.Confidence,
	)
	if s.publisher != nil {
		event := audit.Event{
			RequestID:  requestcontext.RequestID(ctx),
			Query:      result.Query,
			Method:     string(result.Method),
			Confidence: result.Confidence,
			Chain:      result.Chain,
			At:         requestcontext.Now(ctx).UTC(),
		}
		if result.Ticker != nil {
			event.Ticker = result.Ticker.String()
		}
		s.publisher.Publish(ctx, event)
	}
	return result
}

// directStage resolves the query as a ticker symbol outright, then
// fuzzy-matches it against directory names. Its candidates are kept on the
// state for the fallback stage even when the top score misses the threshold.
func (s *Service) directStage(ctx context.Context, st *resolutionState) (*Result, error) {
	if ticker, err := id.ParseTicker(st.query); err == nil {
		entry, err := s.resolver.ResolveTicker(ctx, ticker)
		if err == nil {
			return &Result{
				Query:       st.query,
				Ticker:      &entry.Ticker,
				CompanyName: entry.Name,
				Method:      MethodDirect,
				Confidence:  1.0,
			}, nil
		}
		if !errors.Is(err, directory.ErrNotFound) {
			return nil, err
		}
	}

	candidates, err := s.matcher.Match(ctx, st.query, directMatchLimit)
	if err != nil {
		return nil, err
	}
	st.direct = candidates
	if len(candidates) == 0 || candidates[0].Score < DirectThreshold {
		return nil, nil
	}
	best := candidates[0]
	ticker := best.Ticker
	return &Result{
		Query:       st.query,
		Ticker:      &ticker,
		CompanyName: best.Name,
		Method:      MethodDirect,
		Confidence:  best.Score,
	}, nil
}

// graphStage walks ownership edges to a public parent and verifies the
// parent's label against the directory. When the parent label itself scores
// below the threshold, intermediate chain labels are retried from the parent
// end toward the query, keeping the best alternative.
func (s *Service) graphStage(ctx context.Context, st *resolutionState) (*Result, error) {
	if s.graph == nil {
		return nil, nil
	}
	sub, err := s.graph.LookupSubsidiary(ctx, st.query)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, nil
	}

	best, err := s.bestMatch(ctx, sub.Parent.Label)
	if err != nil {
		return nil, err
	}
	if (best == nil || best.Score < GraphThreshold) && len(sub.Chain) > 1 {
		for i := len(sub.Chain) - 2; i >= 0; i-- {
			alt, err := s.bestMatch(ctx, sub.Chain[i])
			if err != nil {
				return nil, err
			}
			if alt != nil && (best == nil || alt.Score > best.Score) {
				best = alt
			}
		}
	}
	if best == nil || best.Score < GraphThreshold {
		return nil, nil
	}

	// The graph entity may claim a ticker of its own. It is only trusted when
	// the directory confirms it names the verified company, which picks the
	// claimed share class over the fuzzy match's first one; anything else
	// keeps the directory-verified ticker.
	ticker := best.Ticker
	if sub.Parent.Ticker != "" {
		if claimed, err := id.ParseTicker(sub.Parent.Ticker); err == nil {
			if entry, err := s.resolver.ResolveTicker(ctx, claimed); err == nil && entry.Name == best.Name {
				ticker = claimed
			}
		}
	}
	return &Result{
		Query:       st.query,
		Ticker:      &ticker,
		CompanyName: best.Name,
		Method:      MethodKnowledgeGraph,
		Confidence:  GraphConfidence,
		Chain:       sub.Chain,
	}, nil
}

// generativeStage asks the text model for a filing name and verifies it
// against the directory. The model's answer is never trusted directly.
func (s *Service) generativeStage(ctx context.Context, st *resolutionState) (*Result, error) {
	if s.generative == nil {
		return nil, nil
	}
	guess, err := s.generative.IdentifyCompany(ctx, st.query)
	if err != nil {
		return nil, err
	}
	if guess == "" {
		return nil, nil
	}

	best, err := s.bestMatch(ctx, guess)
	if err != nil {
		return nil, err
	}
	if best == nil || best.Score < GraphThreshold {
		return nil, nil
	}
	ticker := best.Ticker
	return &Result{
		Query:       st.query,
		Ticker:      &ticker,
		CompanyName: best.Name,
		Method:      MethodGenerative,
		Confidence:  GenerativeConfidence,
	}, nil
}

// fallbackStage returns the best below-threshold direct candidate with its
// raw score, or an unresolved result when the direct stage found nothing.
func (s *Service) fallbackStage(_ context.Context, st *resolutionState) (*Result, error) {
	if len(st.direct) == 0 {
		return &Result{Query: st.query, Method: MethodFallback}, nil
	}
	best := st.direct[0]
	ticker := best.Ticker
	return &Result{
		Query:       st.query,
		Ticker:      &ticker,
		CompanyName: best.Name,
		Method:      MethodFallback,
		Confidence:  best.Score,
	}, nil
}

func (s *Service) bestMatch(ctx context.Context, name string) (*match.Candidate, error) {
	candidates, err := s.matcher.Match(ctx, name, verifyMatchLimit)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	return &candidates[0], nil
}

// Search returns up to limit ranked candidates. A knowledge-graph or
// generative resolution leads the list; the remainder is filled with direct
// candidates in match order, deduplicated by ticker.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]SearchEntry, error) {
	s.metrics.IncrementSearch()
	if limit <= 0 {
		return nil, nil
	}

	result, err := s.Lookup(ctx, query)
	if err != nil {
		return nil, err
	}

	var out []SearchEntry
	seen := make(map[id.Ticker]bool)
	if result.Resolved() && (result.Method == MethodKnowledgeGraph || result.Method == MethodGenerative) {
		entry := SearchEntry{
			Ticker:     *result.Ticker,
			Name:       result.CompanyName,
			Method:     result.Method,
			Confidence: result.Confidence,
			Chain:      result.Chain,
		}
		if dirEntry, err := s.resolver.ResolveTicker(ctx, entry.Ticker); err == nil {
			entry.CIK = dirEntry.CIK
		}
		out = append(out, entry)
		seen[entry.Ticker] = true
	}

	candidates, err := s.matcher.Match(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	for _, c := range candidates {
		if len(out) >= limit {
			break
		}
		if seen[c.Ticker] {
			continue
		}
		seen[c.Ticker] = true
		out = append(out, SearchEntry{
			Ticker:     c.Ticker,
			Name:       c.Name,
			CIK:        c.CIK,
			Method:     MethodDirect,
			Confidence: c.Score,
		})
	}
	return out, nil
}
