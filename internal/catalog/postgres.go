package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/corraldata/rustlers/internal/quote"
	_ "github.com/lib/pq"
)

// PostgresReader reads the catalog from a Postgres database. It issues
// read-only queries only; schema migrations and catalog writes live
// outside this package.
type PostgresReader struct {
	db *sql.DB
}

// NewPostgresReader wraps an existing *sql.DB. It does not own the
// connection's lifecycle; call db.Close() independently.
func NewPostgresReader(db *sql.DB) *PostgresReader {
	return &PostgresReader{db: db}
}

func (r *PostgresReader) AllMarketsWithTickers(ctx context.Context) ([]MarketTickers, error) {
	marketRows, err := r.db.QueryContext(ctx, `
		SELECT id, short_name, pub_name, open_time, close_time,
		       opens_from, opens_till, pre_market_offset, post_market_offset, time_zone_offset
		FROM markets
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("catalog: querying markets: %w", err)
	}
	defer marketRows.Close()

	var markets []quote.Market
	for marketRows.Next() {
		var (
			m                    quote.Market
			pubName              sql.NullString
			openTime, closeTime  sql.NullString
			opensFrom, opensTill sql.NullInt64
			preOffset, postOffset sql.NullInt64
			tzOffset             sql.NullInt64
		)

		if err := marketRows.Scan(
			&m.ID, &m.ShortName, &pubName, &openTime, &closeTime,
			&opensFrom, &opensTill, &preOffset, &postOffset, &tzOffset,
		); err != nil {
			return nil, fmt.Errorf("catalog: scanning market row: %w", err)
		}

		if pubName.Valid {
			m.PubName = pubName.String
		}
		if openTime.Valid {
			m.OpenTime = openTime.String
		}
		if closeTime.Valid {
			m.CloseTime = closeTime.String
		}
		if opensFrom.Valid {
			v := int(opensFrom.Int64)
			m.OpensFrom = &v
		}
		if opensTill.Valid {
			v := int(opensTill.Int64)
			m.OpensTill = &v
		}
		if preOffset.Valid {
			v := uint(preOffset.Int64)
			m.PreMarketOffset = &v
		}
		if postOffset.Valid {
			v := uint(postOffset.Int64)
			m.PostMarketOffset = &v
		}
		if tzOffset.Valid {
			v := int(tzOffset.Int64)
			m.TimeZoneOffset = &v
		}

		markets = append(markets, m)
	}
	if err := marketRows.Err(); err != nil {
		return nil, fmt.Errorf("catalog: iterating market rows: %w", err)
	}

	result := make([]MarketTickers, 0, len(markets))
	for _, m := range markets {
		tickers, err := r.tickersFor(ctx, m)
		if err != nil {
			return nil, err
		}
		result = append(result, MarketTickers{Market: m, Tickers: tickers})
	}

	return result, nil
}

func (r *PostgresReader) tickersFor(ctx context.Context, m quote.Market) ([]quote.Ticker, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT symbol, quote_symbol FROM tickers WHERE market_id = $1",
		m.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("catalog: querying tickers for market %q: %w", m.ShortName, err)
	}
	defer rows.Close()

	var tickers []quote.Ticker
	for rows.Next() {
		var symbol string
		var quoteAsset sql.NullString
		if err := rows.Scan(&symbol, &quoteAsset); err != nil {
			return nil, fmt.Errorf("catalog: scanning ticker row: %w", err)
		}
		tickers = append(tickers, quote.FromCatalog(symbol, quoteAsset.String, m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog: iterating ticker rows: %w", err)
	}

	return tickers, nil
}
