package models

import (
	"errors"
	"fmt"
)

// Business outcomes that map to 4xx responses at the API boundary. These are
// expected results, not faults: handlers translate them, background loops
// skip them.
var (
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrInstrumentMismatch   = errors.New("instrument id and name do not match any master record")
)

// TransientStoreError wraps a persistence-store failure. The current cycle is
// skipped and retried on the next interval; it never crashes a task loop.
type TransientStoreError struct {
	Op  string
	Err error
}

func (e *TransientStoreError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *TransientStoreError) Unwrap() error { return e.Err }

// TransientFeedError wraps a price-feed failure, handled like a store fault.
type TransientFeedError struct {
	Op  string
	Err error
}

func (e *TransientFeedError) Error() string {
	return fmt.Sprintf("feed: %s: %v", e.Op, e.Err)
}

func (e *TransientFeedError) Unwrap() error { return e.Err }

// InvariantViolation reports corrupt state, e.g. execution fields half-set.
// Fatal to the operation that hit it.
type InvariantViolation struct {
	Detail string
}

func (e *InvariantViolation) Error() string {
	return "invariant violation: " + e.Detail
}
