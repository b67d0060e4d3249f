package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"sectracker/internal/extraction"
	"sectracker/internal/filings"
	id "sectracker/pkg/domain"
)

// Schema creates the extractions table. Idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS extractions (
	ticker        TEXT        NOT NULL,
	section       TEXT        NOT NULL,
	fiscal_year   TEXT        NOT NULL,
	filing_date   TEXT        NOT NULL DEFAULT '',
	data          JSONB       NOT NULL,
	llm_model     TEXT        NOT NULL DEFAULT '',
	cost_usd      DOUBLE PRECISION NOT NULL DEFAULT 0,
	total_tokens  INTEGER     NOT NULL DEFAULT 0,
	latency_ms    DOUBLE PRECISION NOT NULL DEFAULT 0,
	extracted_at  TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (ticker, section, fiscal_year)
);`

// Postgres persists extraction records with one row per ticker, section and
// fiscal year.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres constructs a postgres-backed store.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// EnsureSchema creates the table if missing.
func (s *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("create extractions table: %w", err)
	}
	return nil
}

func (s *Postgres) Upsert(ctx context.Context, record extraction.Record) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO extractions
			(ticker, section, fiscal_year, filing_date, data, llm_model, cost_usd, total_tokens, latency_ms, extracted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (ticker, section, fiscal_year) DO UPDATE SET
			filing_date = EXCLUDED.filing_date,
			data = EXCLUDED.data,
			llm_model = EXCLUDED.llm_model,
			cost_usd = EXCLUDED.cost_usd,
			total_tokens = EXCLUDED.total_tokens,
			latency_ms = EXCLUDED.latency_ms,
			extracted_at = EXCLUDED.extracted_at`,
		record.Ticker.String(), string(record.Section), record.FiscalYear,
		record.FilingDate, []byte(record.Data), record.Model,
		record.CostUSD, record.TotalTokens, record.LatencyMS, record.ExtractedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert extraction: %w", err)
	}
	return nil
}

func (s *Postgres) Find(ctx context.Context, ticker id.Ticker, section filings.Section, fiscalYear string) (extraction.Record, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT ticker, section, fiscal_year, filing_date, data, llm_model, cost_usd, total_tokens, latency_ms, extracted_at
		FROM extractions
		WHERE ticker = $1 AND section = $2 AND fiscal_year = $3`,
		ticker.String(), string(section), fiscalYear,
	)
	record, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return extraction.Record{}, ErrNotFound
		}
		return extraction.Record{}, fmt.Errorf("find extraction: %w", err)
	}
	return record, nil
}

func (s *Postgres) ListByTicker(ctx context.Context, ticker id.Ticker) ([]extraction.Record, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT ticker, section, fiscal_year, filing_date, data, llm_model, cost_usd, total_tokens, latency_ms, extracted_at
		FROM extractions
		WHERE ticker = $1
		ORDER BY fiscal_year DESC, section ASC`,
		ticker.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("list extractions: %w", err)
	}
	defer rows.Close()

	var out []extraction.Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan extraction: %w", err)
		}
		out = append(out, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list extractions: %w", err)
	}
	return out, nil
}

func scanRecord(row pgx.Row) (extraction.Record, error) {
	var (
		record  extraction.Record
		ticker  string
		section string
		data    []byte
	)
	err := row.Scan(&ticker, &section, &record.FiscalYear, &record.FilingDate,
		&data, &record.Model, &record.CostUSD, &record.TotalTokens,
		&record.LatencyMS, &record.ExtractedAt)
	if err != nil {
		return extraction.Record{}, err
	}
	record.Ticker = id.Ticker(ticker)
	record.Section = filings.Section(section)
	record.Data = data
	return record, nil
}
