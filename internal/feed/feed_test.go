package feed

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketreplay/types"
)

var t0 = time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC)

// recordingQueue captures pushed events in order.
type recordingQueue struct {
	events []types.Event
}

func (q *recordingQueue) Push(e types.Event) { q.events = append(q.events, e) }

func (q *recordingQueue) markets() []types.Market {
	var out []types.Market
	for _, e := range q.events {
		out = append(out, e.(types.Market))
	}
	return out
}

func bar(symbol string, price int64, ts time.Time) types.Bar {
	p := decimal.NewFromInt(price)
	return types.Bar{
		Symbol: symbol, Open: p, High: p, Low: p, Close: p,
		Volume: decimal.NewFromInt(100000), Timestamp: ts,
	}
}

func TestFeed_MergedTimelineAndForwardFill(t *testing.T) {
	queue := &recordingQueue{}
	// AAPL trades at t0 and t0+2m, MSFT only at t0+1m. The merged timeline
	// has three steps; each symbol forward-fills once it has data.
	f := New(queue, []types.Bar{
		bar("AAPL", 150, t0),
		bar("AAPL", 152, t0.Add(2*time.Minute)),
		bar("MSFT", 300, t0.Add(time.Minute)),
	})

	require.True(t, f.Advance())
	require.True(t, f.Advance())
	require.True(t, f.Advance())
	require.False(t, f.Advance())

	markets := queue.markets()
	require.Len(t, markets, 5, "AAPL 3 steps + MSFT 2 steps (no fill before first observation)")

	// Step 1: only AAPL exists yet.
	assert.Equal(t, "AAPL", markets[0].Symbol())
	assert.Equal(t, t0, markets[0].Time())

	// Step 2: AAPL forward-filled at MSFT's timestamp, then MSFT fresh.
	assert.Equal(t, "AAPL", markets[1].Symbol())
	assert.True(t, markets[1].Bar.Close.Equal(decimal.NewFromInt(150)), "forward-filled price")
	assert.Equal(t, t0.Add(time.Minute), markets[1].Time(), "filled bar carries the step timestamp")
	assert.Equal(t, "MSFT", markets[2].Symbol())

	// Step 3: AAPL fresh, MSFT forward-filled.
	assert.True(t, markets[3].Bar.Close.Equal(decimal.NewFromInt(152)))
	assert.Equal(t, "MSFT", markets[4].Symbol())
	assert.True(t, markets[4].Bar.Close.Equal(decimal.NewFromInt(300)))
	assert.Equal(t, t0.Add(2*time.Minute), markets[4].Time())
}

func TestFeed_SharedTimestampLexicographicOrder(t *testing.T) {
	queue := &recordingQueue{}
	f := New(queue, []types.Bar{
		bar("MSFT", 300, t0),
		bar("AAPL", 150, t0),
		bar("GOOG", 140, t0),
	})

	require.True(t, f.Advance())

	markets := queue.markets()
	require.Len(t, markets, 3)
	assert.Equal(t, "AAPL", markets[0].Symbol())
	assert.Equal(t, "GOOG", markets[1].Symbol())
	assert.Equal(t, "MSFT", markets[2].Symbol())
	assert.Equal(t, []string{"AAPL", "GOOG", "MSFT"}, f.Symbols())
}

func TestFeed_LatestBars(t *testing.T) {
	queue := &recordingQueue{}
	f := New(queue, []types.Bar{
		bar("AAPL", 150, t0),
		bar("AAPL", 151, t0.Add(time.Minute)),
		bar("AAPL", 152, t0.Add(2*time.Minute)),
	})
	for f.Advance() {
	}

	last2 := f.LatestBars("AAPL", 2)
	require.Len(t, last2, 2)
	assert.True(t, last2[0].Close.Equal(decimal.NewFromInt(151)), "oldest first")
	assert.True(t, last2[1].Close.Equal(decimal.NewFromInt(152)))

	assert.Len(t, f.LatestBars("AAPL", 10), 3, "capped at history length")
	assert.Nil(t, f.LatestBars("AAPL", 0))
	assert.Nil(t, f.LatestBars("TSLA", 5))

	latest, ok := f.LatestBar("AAPL")
	require.True(t, ok)
	assert.True(t, latest.Close.Equal(decimal.NewFromInt(152)))

	_, ok = f.LatestBar("TSLA")
	assert.False(t, ok)
}

func TestFeed_ExhaustionAndReset(t *testing.T) {
	queue := &recordingQueue{}
	f := New(queue, []types.Bar{bar("AAPL", 150, t0)})

	assert.False(t, f.Exhausted())
	require.True(t, f.Advance())
	assert.False(t, f.Exhausted(), "exhaustion is only reported after a failed advance")
	require.False(t, f.Advance())
	assert.True(t, f.Exhausted())

	f.Reset()
	assert.False(t, f.Exhausted())
	_, ok := f.LatestBar("AAPL")
	assert.False(t, ok, "reset clears observed history")
	require.True(t, f.Advance())
	require.Len(t, queue.events, 2, "replay pushes the bar again")
}

func TestNewFromCSV(t *testing.T) {
	dir := t.TempDir()
	csv := "datetime,open,high,low,close,volume\n" +
		"2024-01-02 09:30:00,150,151,149,150.5,100000\n" +
		"not-a-timestamp,1,1,1,1,1\n" +
		"2024-01-02 09:31:00,150.5,152,150,151.5,120000\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "AAPL.csv"), []byte(csv), 0o644))

	queue := &recordingQueue{}
	f, err := NewFromCSV(queue, dir, []string{"AAPL"})
	require.NoError(t, err)

	require.True(t, f.Advance())
	require.True(t, f.Advance())
	require.False(t, f.Advance(), "malformed row is skipped, not replayed")

	markets := queue.markets()
	require.Len(t, markets, 2)
	assert.True(t, markets[0].Bar.Close.Equal(decimal.RequireFromString("150.5")))
	assert.Equal(t, t0, markets[0].Time())
	assert.True(t, markets[1].Bar.Volume.Equal(decimal.NewFromInt(120000)))
}

func TestNewFromCSV_MissingFile(t *testing.T) {
	_, err := NewFromCSV(&recordingQueue{}, t.TempDir(), []string{"AAPL"})
	assert.Error(t, err)
}
