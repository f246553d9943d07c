package memo

import (
	"maps"
	"runtime/debug"
	"slices"
	"sync"
	"time"

	"github.com/apex/log"
	"github.com/jonboulle/clockwork"
)

// DefaultTTL is used when Config.TTL is zero or negative.
const DefaultTTL = 2000 * time.Millisecond

// Mode selects the call path of a Memo.
type Mode int

const (
	// Synchronous runs the producer on the caller's goroutine without
	// recording an in-flight entry. Only successes are cached.
	Synchronous Mode = iota
	// Coalescing records an in-flight entry so concurrent calls for the same
	// key share one producer invocation and its outcome.
	Coalescing
)

// Producer computes the value for an argument.
type Producer[A, R any] func(A) (R, error)

// Infallible adapts a producer that cannot fail.
func Infallible[A, R any](fn func(A) R) Producer[A, R] {
	return func(arg A) (R, error) {
		return fn(arg), nil
	}
}

// Config controls expiry and the call path of a Memo.
//
// Zero values are usable:
//   - TTL <= 0 means DefaultTTL
//   - Mode zero is Synchronous
//   - nil Logger uses the apex/log default logger
//   - nil Metrics discards events
//   - nil Clock uses the wall clock
type Config struct {
	TTL  time.Duration
	Mode Mode

	// Sliding re-arms an entry's expiry on every hit. By default the TTL is
	// measured once, from the moment the entry was resolved.
	Sliding bool

	// ForgetFailures drops failed coalesced computations as soon as their
	// waiters have been notified instead of caching the error until expiry.
	ForgetFailures bool

	Logger  log.Interface
	Metrics Metrics
	Clock   clockwork.Clock
}

// Result is the debug shape of a call: the producer's value and whether it
// was served without this call triggering the producer.
type Result[R any] struct {
	Value  R
	Cached bool
}

// Memo caches producer results per key.
//
// Ownership model:
// a Memo owns its entries and their timers. Independent Memos share nothing.
// Call Close to stop outstanding timers.
type Memo[A, R any] struct {
	mu      sync.Mutex
	entries map[string]*entry[R]
	closed  bool

	producer Producer[A, R]
	resolver Resolver[A]

	ttl            time.Duration
	mode           Mode
	sliding        bool
	forgetFailures bool

	log     log.Interface
	metrics Metrics
	clock   clockwork.Clock
}

// New constructs a Memo. A nil producer or resolver is reported by every
// call rather than here.
//
// New never returns a nil Memo.
func New[A, R any](producer Producer[A, R], resolver Resolver[A], cfg Config) *Memo[A, R] {
	m := &Memo[A, R]{
		entries:        make(map[string]*entry[R]),
		producer:       producer,
		resolver:       resolver,
		ttl:            cfg.TTL,
		mode:           cfg.Mode,
		sliding:        cfg.Sliding,
		forgetFailures: cfg.ForgetFailures,
		log:            cfg.Logger,
		metrics:        cfg.Metrics,
		clock:          cfg.Clock,
	}
	if m.ttl <= 0 {
		m.ttl = DefaultTTL
	}
	if m.log == nil {
		m.log = log.Log
	}
	if m.metrics == nil {
		m.metrics = NoopMetrics{}
	}
	if m.clock == nil {
		m.clock = clockwork.NewRealClock()
	}
	return m
}

// Call returns the value for arg, invoking the producer only when no live
// entry exists for its key.
func (m *Memo[A, R]) Call(arg A) (R, error) {
	res, err := m.CallDebug(arg)
	return res.Value, err
}

// CallDebug is Call with the cached flag. Cached is false only for the call
// that triggered the producer.
func (m *Memo[A, R]) CallDebug(arg A) (Result[R], error) {
	if m.resolver == nil {
		return Result[R]{}, ErrNoResolver
	}
	if m.producer == nil {
		return Result[R]{}, ErrNoProducer
	}
	key := keyString(m.resolver(arg))

	if m.mode == Coalescing {
		return m.callCoalescing(key, arg)
	}
	return m.callSync(key, arg)
}

func (m *Memo[A, R]) callSync(key string, arg A) (Result[R], error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return Result[R]{}, ErrClosed
	}
	if e, ok := m.liveLocked(key); ok && e.status == Fulfilled {
		v := e.value
		m.touchLocked(e)
		m.mu.Unlock()
		m.metrics.RecordHit()
		return Result[R]{Value: v, Cached: true}, nil
	}
	m.mu.Unlock()

	m.metrics.RecordMiss()
	m.log.WithField("key", key).Debug("memo: miss")

	v, err := m.producer(arg)
	if err != nil {
		m.metrics.RecordFailure()
		return Result[R]{}, err
	}

	m.mu.Lock()
	// A concurrent caller may have stored the key first; keep its entry and
	// timer so the key still has exactly one.
	if _, ok := m.entries[key]; !ok && !m.closed {
		e := &entry[R]{key: key, status: Fulfilled, value: v}
		m.entries[key] = e
		m.armLocked(e)
	}
	m.mu.Unlock()

	return Result[R]{Value: v}, nil
}

func (m *Memo[A, R]) callCoalescing(key string, arg A) (Result[R], error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return Result[R]{}, ErrClosed
	}
	if e, ok := m.liveLocked(key); ok {
		switch e.status {
		case Fulfilled:
			v := e.value
			m.touchLocked(e)
			m.mu.Unlock()
			m.metrics.RecordHit()
			return Result[R]{Value: v, Cached: true}, nil
		case Failed:
			err := e.err
			m.mu.Unlock()
			m.metrics.RecordHit()
			return Result[R]{}, err
		default:
			ch := e.wait()
			m.mu.Unlock()
			m.metrics.RecordCoalesced()
			m.log.WithField("key", key).Debug("memo: waiting on in-flight computation")

			o := <-ch
			if o.err != nil {
				return Result[R]{}, o.err
			}
			return Result[R]{Value: o.value, Cached: true}, nil
		}
	}

	e := &entry[R]{key: key, status: Pending}
	m.entries[key] = e
	m.mu.Unlock()

	m.metrics.RecordMiss()
	m.log.WithField("key", key).Debug("memo: miss")

	v, recovered, err := m.invoke(key, arg)
	m.settle(e, v, err)

	if recovered != nil {
		panic(recovered)
	}
	if err != nil {
		return Result[R]{}, err
	}
	return Result[R]{Value: v}, nil
}

// invoke runs the producer, turning a panic into a *PanicError so the entry
// can still be settled. The recovered value is returned for re-panicking.
func (m *Memo[A, R]) invoke(key string, arg A) (v R, recovered any, err error) {
	defer func() {
		if r := recover(); r != nil {
			recovered = r
			err = &PanicError{Key: key, Value: r, Stack: debug.Stack()}
		}
	}()
	v, err = m.producer(arg)
	return v, nil, err
}

// settle resolves a pending entry, arms its expiry and notifies its waiters
// in registration order.
func (m *Memo[A, R]) settle(e *entry[R], v R, err error) {
	m.mu.Lock()
	waiters := e.resolve(v, err)
	stored := !m.closed && m.entries[e.key] == e
	switch {
	case !stored:
		// Close dropped the map while the producer ran.
	case err != nil && m.forgetFailures:
		delete(m.entries, e.key)
	default:
		m.armLocked(e)
	}
	m.mu.Unlock()

	entryLog := m.log.WithFields(log.Fields{"key": e.key, "waiters": len(waiters)})
	if err != nil {
		m.metrics.RecordFailure()
		entryLog.WithError(err).Debug("memo: computation failed")
	} else {
		entryLog.Debug("memo: computation fulfilled")
	}

	notify(waiters, outcome[R]{value: v, err: err})
}

// liveLocked returns the entry for key unless its deadline has passed, in
// which case the entry is removed on the spot. Pending entries are always
// live.
func (m *Memo[A, R]) liveLocked(key string) (*entry[R], bool) {
	e, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	if e.status != Pending && !m.clock.Now().Before(e.expiresAt) {
		m.removeLocked(e)
		return nil, false
	}
	return e, true
}

// touchLocked re-arms the expiry of a hit entry when expiry is sliding.
func (m *Memo[A, R]) touchLocked(e *entry[R]) {
	if m.sliding {
		m.armLocked(e)
	}
}

// Forget removes the resolved entry for arg's key. It reports whether an
// entry was removed. In-flight entries are never removed.
func (m *Memo[A, R]) Forget(arg A) bool {
	if m.resolver == nil {
		return false
	}
	return m.Invalidate(keyString(m.resolver(arg)))
}

// Invalidate removes the resolved entry stored under key. It reports whether
// an entry was removed. In-flight entries are never removed.
func (m *Memo[A, R]) Invalidate(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok || e.status == Pending {
		return false
	}
	m.removeLocked(e)
	return true
}

// Purge removes every resolved entry and returns how many were removed.
func (m *Memo[A, R]) Purge() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for _, e := range m.entries {
		if e.status == Pending {
			continue
		}
		m.removeLocked(e)
		removed++
	}
	return removed
}

// Len returns the number of entries, in-flight ones included.
func (m *Memo[A, R]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Keys returns the stored keys in sorted order.
func (m *Memo[A, R]) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Sorted(maps.Keys(m.entries))
}

// Close stops all expiry timers and drops resolved entries. Computations
// still in flight notify their waiters but are not stored. Calls made after
// Close return ErrClosed.
//
// Close is safe to call multiple times.
func (m *Memo[A, R]) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true
	for _, e := range m.entries {
		if e.status == Pending {
			delete(m.entries, e.key)
			continue
		}
		m.removeLocked(e)
	}
	return nil
}
