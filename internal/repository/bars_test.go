package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketreplay/types"
)

type stubBarStore struct {
	bars []types.Bar
	err  error

	gotSymbol string
	gotStart  time.Time
	gotEnd    time.Time
}

func (s *stubBarStore) SelectBars(_ context.Context, symbol string, start, end time.Time) ([]types.Bar, error) {
	s.gotSymbol = symbol
	s.gotStart = start
	s.gotEnd = end
	return s.bars, s.err
}

func testBars(n int) []types.Bar {
	t0 := time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC)
	bars := make([]types.Bar, n)
	for i := range bars {
		p := decimal.NewFromInt(int64(150 + i))
		bars[i] = types.Bar{
			Symbol: "AAPL", Open: p, High: p, Low: p, Close: p,
			Volume: decimal.NewFromInt(100000), Timestamp: t0.Add(time.Duration(i) * time.Minute),
		}
	}
	return bars
}

func TestGetBars(t *testing.T) {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 1)

	t.Run("passes the window through and returns rows", func(t *testing.T) {
		store := &stubBarStore{bars: testBars(3)}
		db := Database{bars: store}

		bars, err := db.GetBars(context.Background(), "AAPL", start, end)
		require.NoError(t, err)
		assert.Len(t, bars, 3)
		assert.Equal(t, "AAPL", store.gotSymbol)
		assert.Equal(t, start, store.gotStart)
		assert.Equal(t, end, store.gotEnd)
	})

	t.Run("no rows for the symbol", func(t *testing.T) {
		db := Database{bars: &stubBarStore{err: pgx.ErrNoRows}}

		_, err := db.GetBars(context.Background(), "NOPE", start, end)
		assert.ErrorIs(t, err, ErrSymbolNotFound)
		assert.ErrorContains(t, err, "NOPE")
	})

	t.Run("symbol exists but window is empty", func(t *testing.T) {
		db := Database{bars: &stubBarStore{}}

		_, err := db.GetBars(context.Background(), "AAPL", start, end)
		assert.ErrorIs(t, err, ErrNoBars)
	})

	t.Run("other errors pass through unwrapped", func(t *testing.T) {
		boom := errors.New("connection reset")
		db := Database{bars: &stubBarStore{err: boom}}

		_, err := db.GetBars(context.Background(), "AAPL", start, end)
		assert.ErrorIs(t, err, boom)
		assert.NotErrorIs(t, err, ErrNoBars)
	})
}
