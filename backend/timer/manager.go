package timer

import (
	"log"
	"sync"
	"time"
)

// FinishFunc records a completed countdown, typically by creating a study
// session. A returned error is logged; the store keeps its finished state so
// the elapsed minutes stay available for a retry.
type FinishFunc func(userID uint, final Snapshot) error

// Manager hands out one Store per user, hydrating from the persisted blob on
// first access. A timer that was left running picks its refresh loop back up,
// the same way a reloaded page resumes ticking.
type Manager struct {
	mu       sync.Mutex
	stores   map[uint]*Store
	persist  StateStore
	onFinish FinishFunc
	logger   *log.Logger
	now      func() time.Time
}

func NewManager(persist StateStore, onFinish FinishFunc, logger *log.Logger) *Manager {
	return &Manager{
		stores:   make(map[uint]*Store),
		persist:  persist,
		onFinish: onFinish,
		logger:   logger,
	}
}

// ForUser returns the user's timer store, creating and hydrating it if
// needed.
func (m *Manager) ForUser(userID uint) *Store {
	m.mu.Lock()
	defer m.mu.Unlock()

	if store, ok := m.stores[userID]; ok {
		return store
	}

	store := NewStore(userID, m.persist, m.now)
	store.Logger = m.logger
	if m.onFinish != nil {
		store.OnFinish = func(final Snapshot) {
			if err := m.onFinish(userID, final); err != nil && m.logger != nil {
				m.logger.Printf("timer: recording finished session for user %d: %v", userID, err)
			}
		}
	}

	state, err := m.persist.Load(userID)
	if err != nil {
		if m.logger != nil {
			m.logger.Printf("timer: loading state for user %d: %v", userID, err)
		}
	} else if state != nil {
		store.mu.Lock()
		store.state = state
		if state.Running {
			store.startTickingLocked()
		}
		store.mu.Unlock()
	}

	m.stores[userID] = store
	return store
}
