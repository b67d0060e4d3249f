// Package match scores free-text company queries against the ticker
// directory.
package match

import (
	"context"
	"sort"

	"sectracker/internal/directory"
	id "sectracker/pkg/domain"
)

// Candidate is one scored directory match. Transient, produced per call.
type Candidate struct {
	Ticker id.Ticker
	Name   string
	CIK    id.CIK
	Score  float64
}

// minCandidateScore filters out residual character overlap between unrelated
// names; below it a name is noise, not a candidate.
const minCandidateScore = 0.40

// Matcher runs token-set matching over every normalized directory name.
type Matcher struct {
	registry *directory.Registry
}

// New builds a matcher over the shared registry.
func New(registry *directory.Registry) *Matcher {
	return &Matcher{registry: registry}
}

// Match scores query against every directory name and returns candidates in
// descending score order. The limit applies to distinct names; a qualifying
// name that maps to several tickers (dual share classes) fans out into one
// candidate per ticker, all sharing the name's score, so the result may be
// longer than limit. Ties keep first-directory-appearance order. Output is
// exactly reproducible for a fixed registry state.
func (m *Matcher) Match(ctx context.Context, query string, limit int) ([]Candidate, error) {
	if limit <= 0 {
		return nil, nil
	}
	normalized := directory.NormalizeName(query)
	if normalized == "" {
		return nil, nil
	}

	names, err := m.registry.Names(ctx)
	if err != nil {
		return nil, err
	}

	type scored struct {
		name  string
		order int
		score float64
	}
	ranked := make([]scored, 0, len(names))
	for i, name := range names {
		if s := TokenSetRatio(normalized, name); s >= minCandidateScore {
			ranked = append(ranked, scored{name: name, order: i, score: s})
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].order < ranked[j].order
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	var out []Candidate
	for _, r := range ranked {
		entries, err := m.registry.EntriesForName(ctx, r.name)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			out = append(out, Candidate{
				Ticker: e.Ticker,
				Name:   e.Name,
				CIK:    e.CIK,
				Score:  r.score,
			})
		}
	}
	return out, nil
}
