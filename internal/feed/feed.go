package feed

import (
	"sort"
	"time"

	log "github.com/sirupsen/logrus"

	"marketreplay/types"
)

// EventQueue is the sink new market events are pushed into. The composition
// root owns the queue and hands it to the feed at construction.
type EventQueue interface {
	Push(types.Event)
}

// Feed replays bars for multiple symbols over one combined, monotonically
// non-decreasing timeline. Symbols with no new observation at a given
// timestamp are forward-filled from their previous bar. Symbols that share
// a timestamp are emitted in lexicographic order so a replay is always
// deterministic.
type Feed struct {
	queue   EventQueue
	symbols []string

	timeline []time.Time
	bars     map[string]map[int64]types.Bar
	latest   map[string][]types.Bar

	cursor    int
	exhausted bool
}

// New builds a feed from pre-loaded bars. Bars may arrive in any order;
// the merged timeline is derived from the union of their timestamps.
func New(queue EventQueue, bars []types.Bar) *Feed {
	f := &Feed{
		queue:  queue,
		bars:   make(map[string]map[int64]types.Bar),
		latest: make(map[string][]types.Bar),
	}

	seen := make(map[int64]time.Time)
	for _, b := range bars {
		byTime, ok := f.bars[b.Symbol]
		if !ok {
			byTime = make(map[int64]types.Bar)
			f.bars[b.Symbol] = byTime
			f.symbols = append(f.symbols, b.Symbol)
		}
		byTime[b.Timestamp.UnixNano()] = b
		seen[b.Timestamp.UnixNano()] = b.Timestamp
	}

	sort.Strings(f.symbols)
	for _, ts := range seen {
		f.timeline = append(f.timeline, ts)
	}
	sort.Slice(f.timeline, func(i, j int) bool { return f.timeline[i].Before(f.timeline[j]) })

	return f
}

// Advance moves the feed to the next timestamp on the merged timeline and
// pushes one market event per symbol that has data, forward-filling symbols
// without a fresh observation. It reports whether any new data was produced;
// false marks exhaustion.
func (f *Feed) Advance() bool {
	if f.cursor >= len(f.timeline) {
		f.exhausted = true
		return false
	}

	ts := f.timeline[f.cursor]
	f.cursor++

	produced := false
	for _, sym := range f.symbols {
		bar, ok := f.bars[sym][ts.UnixNano()]
		if !ok {
			prev, hasPrev := f.LatestBar(sym)
			if !hasPrev {
				// No observation yet for this symbol; nothing to fill from.
				continue
			}
			bar = prev
			bar.Timestamp = ts
		}
		f.latest[sym] = append(f.latest[sym], bar)
		f.queue.Push(types.NewMarket(bar))
		produced = true
	}

	if !produced {
		log.WithField("timestamp", ts).Debug("feed produced no bars for timeline step")
	}
	return produced
}

// LatestBar returns the most recent bar observed for the symbol.
func (f *Feed) LatestBar(symbol string) (types.Bar, bool) {
	bars := f.latest[symbol]
	if len(bars) == 0 {
		return types.Bar{}, false
	}
	return bars[len(bars)-1], true
}

// LatestBars returns up to n of the most recent bars for the symbol, oldest
// first.
func (f *Feed) LatestBars(symbol string, n int) []types.Bar {
	bars := f.latest[symbol]
	if n <= 0 || len(bars) == 0 {
		return nil
	}
	if n > len(bars) {
		n = len(bars)
	}
	return bars[len(bars)-n:]
}

// Exhausted reports whether the timeline has been fully replayed.
func (f *Feed) Exhausted() bool {
	return f.exhausted
}

// Symbols lists the symbols on the feed in emission order.
func (f *Feed) Symbols() []string {
	return f.symbols
}

// Reset rewinds the feed to the start of the timeline for an independent run.
func (f *Feed) Reset() {
	f.cursor = 0
	f.exhausted = false
	f.latest = make(map[string][]types.Bar)
}
