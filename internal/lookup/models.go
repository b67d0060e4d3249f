// Package lookup resolves free-text company queries to tickers by chaining
// the ticker directory, the knowledge graph, and the generative fallback
// under a fixed-priority threshold policy.
package lookup

import (
	id "sectracker/pkg/domain"
)

// Method identifies which pipeline stage produced a result.
type Method string

const (
	// MethodDirect: the query fuzzy-matched a directory name outright.
	MethodDirect Method = "direct"
	// MethodKnowledgeGraph: an ownership-edge traversal found a public
	// parent that verified against the directory.
	MethodKnowledgeGraph Method = "knowledge_graph"
	// MethodGenerative: the text model named a filing entity that verified
	// against the directory.
	MethodGenerative Method = "generative"
	// MethodFallback: a below-threshold direct candidate, or nothing at all.
	MethodFallback Method = "fallback"
)

// Thresholds and fixed stage confidences.
const (
	// DirectThreshold is the minimum fuzzy score for the direct stage to
	// short-circuit the pipeline.
	DirectThreshold = 0.85
	// GraphThreshold is the minimum fuzzy score for a graph or generative
	// answer to count as verified against the directory.
	GraphThreshold = 0.70

	// GraphConfidence is emitted for knowledge-graph resolutions regardless
	// of the verifying match score.
	GraphConfidence = 0.90
	// GenerativeConfidence is emitted for generative resolutions regardless
	// of the verifying match score.
	GenerativeConfidence = 0.85
)

// Result is the outcome of one resolution. Immutable once returned. A nil
// Ticker means the query went unresolved, in which case Confidence is 0.0
// and Method is MethodFallback.
type Result struct {
	Query       string     `json:"query"`
	Ticker      *id.Ticker `json:"ticker"`
	CompanyName string     `json:"company_name,omitempty"`
	Method      Method     `json:"method"`
	Confidence  float64    `json:"confidence"`

	// Chain is the traversed ownership chain, queried node to public parent
	// inclusive. Present exactly when Method is MethodKnowledgeGraph.
	Chain []string `json:"chain,omitempty"`
}

// Resolved reports whether the result carries a ticker.
func (r Result) Resolved() bool {
	return r.Ticker != nil
}

// SearchEntry is one ranked candidate from the multi-result search.
type SearchEntry struct {
	Ticker     id.Ticker `json:"ticker"`
	Name       string    `json:"name"`
	CIK        id.CIK    `json:"cik,omitempty"`
	Method     Method    `json:"method"`
	Confidence float64   `json:"confidence"`
	Chain      []string  `json:"chain,omitempty"`
}
