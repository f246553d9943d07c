package memo

import (
	"errors"
	"fmt"
)

var (
	// ErrNoResolver is returned by every call on a Memo built without a resolver.
	ErrNoResolver = errors.New("memo: no key resolver configured")
	// ErrNoProducer is returned by every call on a Memo built without a producer.
	ErrNoProducer = errors.New("memo: no producer configured")
	// ErrClosed is returned by calls made after Close.
	ErrClosed = errors.New("memo: closed")
)

// PanicError is delivered to coalesced waiters when the producer panicked
// while computing the value they were waiting for.
type PanicError struct {
	Key   string
	Value any
	Stack []byte
}

func (p *PanicError) Error() string {
	return fmt.Sprintf("memo: producer panicked for key %q: %v", p.Key, p.Value)
}
