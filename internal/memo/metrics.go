package memo

// Metrics receives cache events from a Memo.
// Implementations must be safe for concurrent use by multiple goroutines.
type Metrics interface {
	// RecordHit is called when a call is served from a resolved entry.
	RecordHit()
	// RecordMiss is called when a call invokes the producer.
	RecordMiss()
	// RecordCoalesced is called when a call waits on an in-flight entry.
	RecordCoalesced()
	// RecordFailure is called when the producer returns an error or panics.
	RecordFailure()
	// RecordEviction is called when an entry is removed by expiry,
	// invalidation or Close.
	RecordEviction()
}

// NoopMetrics discards all events.
type NoopMetrics struct{}

var _ Metrics = NoopMetrics{}

func (NoopMetrics) RecordHit()       {}
func (NoopMetrics) RecordMiss()      {}
func (NoopMetrics) RecordCoalesced() {}
func (NoopMetrics) RecordFailure()   {}
func (NoopMetrics) RecordEviction()  {}
