package memo

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// Status is the lifecycle state of a cached computation.
type Status int

const (
	Pending Status = iota
	Fulfilled
	Failed
)

func (s Status) String() string {
	switch s {
	case Pending:
		return "pending"
	case Fulfilled:
		return "fulfilled"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// outcome is what a settled computation hands to its waiters.
type outcome[R any] struct {
	value R
	err   error
}

// entry is the value stored under a key.
//
// waiters is non-empty only while status is Pending. timer, gen and
// expiresAt are set once the entry has been resolved.
type entry[R any] struct {
	key     string
	status  Status
	value   R
	err     error
	waiters []chan outcome[R]

	timer     clockwork.Timer
	gen       uint64
	expiresAt time.Time
}

// wait registers a waiter. Callers hold the Memo lock.
func (e *entry[R]) wait() <-chan outcome[R] {
	ch := make(chan outcome[R], 1)
	e.waiters = append(e.waiters, ch)
	return ch
}

// resolve records the producer's result and detaches the waiters so they can
// be notified after the lock is released. Callers hold the Memo lock.
func (e *entry[R]) resolve(v R, err error) []chan outcome[R] {
	if err != nil {
		e.status = Failed
		e.err = err
	} else {
		e.status = Fulfilled
		e.value = v
	}
	waiters := e.waiters
	e.waiters = nil
	return waiters
}

func notify[R any](waiters []chan outcome[R], o outcome[R]) {
	for _, ch := range waiters {
		ch <- o
	}
}
