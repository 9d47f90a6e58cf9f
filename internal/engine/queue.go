package engine

import (
	"marketreplay/types"
)

// Queue is the FIFO event queue at the heart of the backtest. Insertion
// order is preserved; an empty poll is the normal way to detect the end of
// an iteration's work, not an error.
type Queue struct {
	events []types.Event
}

func NewQueue() *Queue {
	return &Queue{}
}

func (q *Queue) Push(e types.Event) {
	q.events = append(q.events, e)
}

func (q *Queue) Pop() (types.Event, bool) {
	if len(q.events) == 0 {
		return nil, false
	}
	e := q.events[0]
	q.events = q.events[1:]
	return e, true
}

func (q *Queue) Len() int {
	return len(q.events)
}

func (q *Queue) Reset() {
	q.events = nil
}
