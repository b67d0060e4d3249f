package store

import (
	"context"
	"sort"
	"sync"

	"sectracker/internal/extraction"
	"sectracker/internal/filings"
	id "sectracker/pkg/domain"
)

type memoryKey struct {
	ticker     id.Ticker
	section    filings.Section
	fiscalYear string
}

// Memory keeps extraction records in a map. Suitable for tests and for
// running without a database.
type Memory struct {
	mu      sync.RWMutex
	records map[memoryKey]extraction.Record
}

// NewMemory builds an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{records: make(map[memoryKey]extraction.Record)}
}

func (s *Memory) Upsert(_ context.Context, record extraction.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[memoryKey{record.Ticker, record.Section, record.FiscalYear}] = record
	return nil
}

func (s *Memory) Find(_ context.Context, ticker id.Ticker, section filings.Section, fiscalYear string) (extraction.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if record, ok := s.records[memoryKey{ticker, section, fiscalYear}]; ok {
		return record, nil
	}
	return extraction.Record{}, ErrNotFound
}

func (s *Memory) ListByTicker(_ context.Context, ticker id.Ticker) ([]extraction.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []extraction.Record
	for key, record := range s.records {
		if key.ticker == ticker {
			out = append(out, record)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FiscalYear != out[j].FiscalYear {
			return out[i].FiscalYear > out[j].FiscalYear
		}
		return out[i].Section < out[j].Section
	})
	return out, nil
}
