package ledger

import "sync"

// AccountLocks serializes read-modify-write sequences per client. Every fund
// operation and position mutation for a client runs inside Do for that
// client's ID; operations for different clients proceed independently.
type AccountLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewAccountLocks() *AccountLocks {
	return &AccountLocks{locks: make(map[string]*sync.Mutex)}
}

func (l *AccountLocks) forClient(clientID string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[clientID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[clientID] = m
	}
	return m
}

// Do runs fn while holding the client's lock. Not reentrant.
func (l *AccountLocks) Do(clientID string, fn func() error) error {
	m := l.forClient(clientID)
	m.Lock()
	defer m.Unlock()
	return fn()
}
