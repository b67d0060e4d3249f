package kgraph

import (
	id "sectracker/pkg/domain"
)

// SearchHit is one entity returned by the graph's text search. No traversal
// data, just enough to decide whether to walk from it.
type SearchHit struct {
	ID          id.EntityID `json:"id"`
	Label       string      `json:"label"`
	Description string      `json:"description"`
}

// Entity is a fetched graph node with its ownership claims. Transient,
// fetched per traversal step.
type Entity struct {
	ID    id.EntityID `json:"id"`
	Label string      `json:"label"`

	// Ownership edges in priority order: owned-by is preferred over
	// parent-organization when choosing the next traversal step.
	Owners  []id.EntityID `json:"owners"`
	Parents []id.EntityID `json:"parents"`

	// Exchanges holds stock-exchange claims; non-empty means the entity is
	// publicly traded.
	Exchanges []id.EntityID `json:"exchanges"`

	Ticker     string `json:"ticker,omitempty"`
	SecurityID string `json:"security_id,omitempty"`
}

// PubliclyTraded reports whether the entity carries a stock-exchange claim.
func (e *Entity) PubliclyTraded() bool {
	return len(e.Exchanges) > 0
}

// nextHop returns the next node to visit, owned-by before parent-org, first
// edge target only.
func (e *Entity) nextHop() (id.EntityID, bool) {
	if len(e.Owners) > 0 {
		return e.Owners[0], true
	}
	if len(e.Parents) > 0 {
		return e.Parents[0], true
	}
	return "", false
}

// ParentResult is a successful traversal: the publicly traded node plus the
// full label chain from the starting node to it, inclusive. The chain is
// provenance and is never mutated after being returned.
type ParentResult struct {
	Entity Entity
	Chain  []string
}

// SubsidiaryResult is a full query-to-parent resolution.
type SubsidiaryResult struct {
	Matched SearchHit
	Parent  Entity
	Chain   []string
}
