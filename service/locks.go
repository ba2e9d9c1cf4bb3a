package service

import "sync"

// InstrumentLocks serializes order mutations per instrument. Place-order,
// the re-check pass, square-off and the stop-loss monitor all take the
// instrument's lock before touching its orders, so concurrent tasks never
// race on the same order's status.
type InstrumentLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewInstrumentLocks() *InstrumentLocks {
	return &InstrumentLocks{locks: make(map[string]*sync.Mutex)}
}

func (l *InstrumentLocks) get(instrumentID string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[instrumentID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[instrumentID] = m
	}
	return m
}

func (l *InstrumentLocks) Lock(instrumentID string)   { l.get(instrumentID).Lock() }
func (l *InstrumentLocks) Unlock(instrumentID string) { l.get(instrumentID).Unlock() }
