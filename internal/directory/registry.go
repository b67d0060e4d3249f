// Package directory loads and indexes the authoritative list of publicly
// tradable tickers.
//
// The registry is populated lazily on first use and never invalidated within
// a process lifetime; a refresh requires a restart. Concurrent first access
// is collapsed into a single provider fetch, and a failed load is propagated
// to every waiting caller without being cached, so the next caller retries.
package directory

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/singleflight"

	id "sectracker/pkg/domain"
	dErrors "sectracker/pkg/domain-errors"
)

// ErrNotFound signals a ticker absent from the directory.
var ErrNotFound = errors.New("directory: ticker not found")

// Registry is the process-wide ticker index. Safe for concurrent use; reads
// are lock-free after the first successful load.
type Registry struct {
	provider Provider

	group singleflight.Group

	mu       sync.RWMutex
	loaded   bool
	byTicker map[id.Ticker]Entry
	// A legal name may map to several tickers (dual share classes), so the
	// name index holds slices in directory order.
	byName map[string][]Entry
	names  []string
}

// NewRegistry builds an unloaded registry over the given provider.
func NewRegistry(provider Provider) *Registry {
	return &Registry{provider: provider}
}

// ensure populates the indexes exactly once across concurrent callers.
func (r *Registry) ensure(ctx context.Context) error {
	r.mu.RLock()
	loaded := r.loaded
	r.mu.RUnlock()
	if loaded {
		return nil
	}

	_, err, _ := r.group.Do("load", func() (any, error) {
		r.mu.RLock()
		loaded := r.loaded
		r.mu.RUnlock()
		if loaded {
			return nil, nil
		}

		entries, err := r.provider.Fetch(ctx)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "ticker directory load failed")
		}

		byTicker := make(map[id.Ticker]Entry, len(entries))
		byName := make(map[string][]Entry)
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			if _, dup := byTicker[e.Ticker]; dup {
				continue
			}
			byTicker[e.Ticker] = e
			key := NormalizeName(e.Name)
			if _, seen := byName[key]; !seen {
				names = append(names, key)
			}
			byName[key] = append(byName[key], e)
		}

		r.mu.Lock()
		r.byTicker = byTicker
		r.byName = byName
		r.names = names
		r.loaded = true
		r.mu.Unlock()
		return nil, nil
	})
	return err
}

// ResolveTicker returns the directory entry for a ticker symbol.
func (r *Registry) ResolveTicker(ctx context.Context, ticker id.Ticker) (Entry, error) {
	if err := r.ensure(ctx); err != nil {
		return Entry{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.byTicker[ticker]
	if !ok {
		return Entry{}, ErrNotFound
	}
	return entry, nil
}

// Names returns every normalized legal name in directory order. The slice is
// shared and must not be mutated by callers.
func (r *Registry) Names(ctx context.Context) ([]string, error) {
	if err := r.ensure(ctx); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.names, nil
}

// EntriesForName returns every entry whose normalized legal name equals key,
// in directory order. Dual share classes yield more than one entry.
func (r *Registry) EntriesForName(ctx context.Context, key string) ([]Entry, error) {
	if err := r.ensure(ctx); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byName[key], nil
}
