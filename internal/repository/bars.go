package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"marketreplay/types"
)

// GetBars retrieves bars for a symbol within [start, end), ordered by
// timestamp.
func (db *Database) GetBars(ctx context.Context, symbol string, start, end time.Time) ([]types.Bar, error) {
	bars, err := db.bars.SelectBars(ctx, symbol, start, end)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("symbol %s: %w", symbol, ErrSymbolNotFound)
		}
		return nil, err
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("symbol %s: %w", symbol, ErrNoBars)
	}
	return bars, nil
}

const selectBarsSQL = `
SELECT b.timestamp, b.open, b.high, b.low, b.close, b.volume
FROM bars b
JOIN assets a ON a.id = b.asset_id
WHERE a.ticker = $1 AND b.timestamp >= $2 AND b.timestamp < $3
ORDER BY b.timestamp`

type pgxBarStore struct {
	conn querier
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (s *pgxBarStore) SelectBars(ctx context.Context, symbol string, start, end time.Time) ([]types.Bar, error) {
	rows, err := s.conn.Query(ctx, selectBarsSQL, symbol, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bars []types.Bar
	for rows.Next() {
		bar := types.Bar{Symbol: symbol}
		if err := rows.Scan(&bar.Timestamp, &bar.Open, &bar.High, &bar.Low, &bar.Close, &bar.Volume); err != nil {
			return nil, err
		}
		bars = append(bars, bar)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return bars, nil
}
