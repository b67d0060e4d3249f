// Package kgraph resolves company queries against a Wikidata-shaped knowledge
// graph: entity text search plus a bounded walk up ownership edges until a
// publicly traded parent appears.
package kgraph

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	id "sectracker/pkg/domain"
	dErrors "sectracker/pkg/domain-errors"
)

// Wikidata property IDs.
const (
	propOwnedBy       = "P127"
	propParentOrg     = "P749"
	propStockExchange = "P414"
	propTicker        = "P249"
	propISIN          = "P946"
)

// DefaultMaxDepth bounds ownership traversal. Ownership graphs contain long
// and occasionally cyclic chains; the walk must always terminate.
const DefaultMaxDepth = 5

// searchCandidates is how many search hits LookupSubsidiary will attempt to
// walk before giving up. Text search is ambiguous (several entities can share
// a label); trying candidates in rank order compensates.
const searchCandidates = 3

// EntityCache is an optional read-through cache for fetched entities.
// Implementations must treat failures as misses.
type EntityCache interface {
	Get(ctx context.Context, entityID id.EntityID) (*Entity, bool)
	Set(ctx context.Context, entity *Entity)
}

// Client talks to the knowledge-graph provider. Safe for concurrent use.
type Client struct {
	baseURL   string
	userAgent string
	http      *http.Client
	cache     EntityCache
}

// Option configures a Client.
type Option func(*Client)

// WithCache installs an entity cache in front of entity-by-id fetches.
func WithCache(cache EntityCache) Option {
	return func(c *Client) {
		c.cache = cache
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// New builds a knowledge-graph client against the given base URL.
func New(baseURL, userAgent string, opts ...Option) *Client {
	c := &Client{
		baseURL:   baseURL,
		userAgent: userAgent,
		http:      http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search runs the graph's entity text search. No traversal is performed.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]SearchHit, error) {
	params := url.Values{
		"action":   {"wbsearchentities"},
		"search":   {query},
		"language": {"en"},
		"format":   {"json"},
		"limit":    {strconv.Itoa(limit)},
	}

	var body struct {
		Search []struct {
			ID          string `json:"id"`
			Label       string `json:"label"`
			Description string `json:"description"`
		} `json:"search"`
	}
	if err := c.getJSON(ctx, c.baseURL+"/w/api.php?"+params.Encode(), &body); err != nil {
		return nil, err
	}

	hits := make([]SearchHit, 0, len(body.Search))
	for _, item := range body.Search {
		entityID, err := id.ParseEntityID(item.ID)
		if err != nil {
			continue
		}
		hits = append(hits, SearchHit{
			ID:          entityID,
			Label:       item.Label,
			Description: item.Description,
		})
	}
	return hits, nil
}

// GetEntity fetches a single entity with its ownership claims. A missing or
// malformed entity returns (nil, nil): absence drives normal traversal
// termination and is not an error. Only transport failures are errors.
func (c *Client) GetEntity(ctx context.Context, entityID id.EntityID) (*Entity, error) {
	if c.cache != nil {
		if entity, ok := c.cache.Get(ctx, entityID); ok {
			return entity, nil
		}
	}

	endpoint := fmt.Sprintf("%s/wiki/Special:EntityData/%s.json", c.baseURL, entityID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build entity request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "knowledge graph unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil
	}

	var doc entityDataDoc
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, nil
	}
	raw, ok := doc.Entities[entityID.String()]
	if !ok {
		return nil, nil
	}

	entity := &Entity{
		ID:         entityID,
		Label:      raw.label(),
		Owners:     raw.claimIDs(propOwnedBy),
		Parents:    raw.claimIDs(propParentOrg),
		Exchanges:  raw.claimIDs(propStockExchange),
		Ticker:     raw.claimString(propTicker),
		SecurityID: raw.claimString(propISIN),
	}

	if c.cache != nil {
		c.cache.Set(ctx, entity)
	}
	return entity, nil
}

// FindPublicParent walks ownership edges from startID until it reaches a
// publicly traded node. The walk is iterative with an explicit visited set
// and step counter; it terminates on success, on exhausting maxDepth steps,
// on revisiting a node (cycle guard), or on a node with no outgoing edge.
// Not-found is (nil, nil). Re-running against the same graph state returns
// an identical chain.
func (c *Client) FindPublicParent(ctx context.Context, startID id.EntityID, maxDepth int) (*ParentResult, error) {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	visited := make(map[id.EntityID]struct{}, maxDepth)
	current := startID
	var chain []string

	for step := 0; step < maxDepth; step++ {
		if _, seen := visited[current]; seen {
			return nil, nil
		}
		visited[current] = struct{}{}

		entity, err := c.GetEntity(ctx, current)
		if err != nil {
			return nil, err
		}
		if entity == nil {
			return nil, nil
		}

		chain = append(chain, entity.Label)

		if entity.PubliclyTraded() {
			return &ParentResult{Entity: *entity, Chain: chain}, nil
		}

		next, ok := entity.nextHop()
		if !ok {
			return nil, nil
		}
		current = next
	}
	return nil, nil
}

// LookupSubsidiary resolves a free-text query to a publicly traded parent:
// search the graph, then attempt a traversal from each of the top hits in
// rank order, returning the first success. Not-found is (nil, nil).
func (c *Client) LookupSubsidiary(ctx context.Context, query string) (*SubsidiaryResult, error) {
	hits, err := c.Search(ctx, query, searchCandidates)
	if err != nil {
		return nil, err
	}

	for _, hit := range hits {
		parent, err := c.FindPublicParent(ctx, hit.ID, DefaultMaxDepth)
		if err != nil {
			return nil, err
		}
		if parent != nil {
			return &SubsidiaryResult{
				Matched: hit,
				Parent:  parent.Entity,
				Chain:   parent.Chain,
			}, nil
		}
	}
	return nil, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build graph request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "knowledge graph unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return dErrors.New(dErrors.CodeUnavailable,
			fmt.Sprintf("knowledge graph returned status %d", resp.StatusCode))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "knowledge graph returned malformed response")
	}
	return nil
}

// entityDataDoc mirrors the Special:EntityData payload shape.
type entityDataDoc struct {
	Entities map[string]entityDoc `json:"entities"`
}

type entityDoc struct {
	Labels map[string]struct {
		Value string `json:"value"`
	} `json:"labels"`
	Claims map[string][]claim `json:"claims"`
}

type claim struct {
	MainSnak struct {
		DataValue *struct {
			Value json.RawMessage `json:"value"`
		} `json:"datavalue"`
	} `json:"mainsnak"`
}

func (d entityDoc) label() string {
	if en, ok := d.Labels["en"]; ok && en.Value != "" {
		return en.Value
	}
	return "Unknown"
}

// claimIDs extracts entity-id values from a claim property.
func (d entityDoc) claimIDs(prop string) []id.EntityID {
	var ids []id.EntityID
	for _, cl := range d.Claims[prop] {
		if cl.MainSnak.DataValue == nil {
			continue
		}
		var v struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(cl.MainSnak.DataValue.Value, &v); err != nil || v.ID == "" {
			continue
		}
		entityID, err := id.ParseEntityID(v.ID)
		if err != nil {
			continue
		}
		ids = append(ids, entityID)
	}
	return ids
}

// claimString extracts the first plain-string value from a claim property.
func (d entityDoc) claimString(prop string) string {
	for _, cl := range d.Claims[prop] {
		if cl.MainSnak.DataValue == nil {
			continue
		}
		var v string
		if err := json.Unmarshal(cl.MainSnak.DataValue.Value, &v); err == nil && v != "" {
			return v
		}
	}
	return ""
}
