package relay

import (
	"errors"
	"time"
)

var errQueueFull = errors.New("queue full")

// A Queue is a bounded FIFO of events. Any number of goroutines may put
// events; one consumer drains it without blocking.
type Queue struct {
	ch chan Event
}

// NewQueue returns a queue holding at most n events.
func NewQueue(n int) *Queue {
	if n < 1 {
		n = 1
	}
	return &Queue{ch: make(chan Event, n)}
}

// Put appends e, waiting up to timeout for space.
// A timeout of zero or less does not wait.
func (q *Queue) Put(e Event, timeout time.Duration) error {
	select {
	case q.ch <- e:
		return nil
	default:
	}
	if timeout <= 0 {
		return errQueueFull
	}
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case q.ch <- e:
		return nil
	case <-t.C:
		return errQueueFull
	}
}

// Push appends e, preferring the freshest state over completeness: if
// the queue stays full for timeout, the oldest event is discarded and
// the put is retried once. dropped reports whether an event was
// discarded. ErrBusy is returned if the retry fails as well.
func (q *Queue) Push(e Event, timeout time.Duration) (dropped bool, err error) {
	if err := q.Put(e, timeout); err == nil {
		return false, nil
	}
	_, dropped = q.Get()
	if err := q.Put(e, timeout); err != nil {
		return dropped, ErrBusy
	}
	return dropped, nil
}

// Get removes and returns the oldest event without waiting.
func (q *Queue) Get() (Event, bool) {
	select {
	case e := <-q.ch:
		return e, true
	default:
		return Event{}, false
	}
}

// Len returns the number of queued events.
func (q *Queue) Len() int { return len(q.ch) }

// Cap returns the queue capacity.
func (q *Queue) Cap() int { return cap(q.ch) }
