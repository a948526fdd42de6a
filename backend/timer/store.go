package timer

import (
	"encoding/json"
	"errors"
	"sync"

	"gorm.io/gorm"

	"github.com/smolci/StudyBuddy/backend/models"
)

// StateStore round-trips the persisted timer blob. Load returns nil when no
// timer record exists. Last write wins; the store provides no locking beyond
// its own consistency.
type StateStore interface {
	Load(userID uint) (*State, error)
	Save(userID uint, state State) error
	Clear(userID uint) error
}

// GormStateStore keeps one JSON blob per user in the timer_states table.
type GormStateStore struct {
	DB *gorm.DB
}

func (g *GormStateStore) Load(userID uint) (*State, error) {
	var row models.TimerState
	err := g.DB.Where("user_id = ?", userID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var state State
	if err := json.Unmarshal([]byte(row.StateJSON), &state); err != nil {
		// A corrupt blob reads as no timer, same as the client treating an
		// unparseable record as absent.
		return nil, nil
	}
	return &state, nil
}

func (g *GormStateStore) Save(userID uint, state State) error {
	blob, err := json.Marshal(state)
	if err != nil {
		return err
	}

	var row models.TimerState
	err = g.DB.Where("user_id = ?", userID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return g.DB.Create(&models.TimerState{UserID: userID, StateJSON: string(blob)}).Error
	}
	if err != nil {
		return err
	}

	row.StateJSON = string(blob)
	return g.DB.Save(&row).Error
}

func (g *GormStateStore) Clear(userID uint) error {
	// Hard delete: a soft-deleted row would still occupy the unique user_id
	// index and block the next Save.
	return g.DB.Unscoped().Where("user_id = ?", userID).Delete(&models.TimerState{}).Error
}

// MemoryStateStore is the in-memory StateStore used in tests and as a
// fallback when no database is wired.
type MemoryStateStore struct {
	mu     sync.RWMutex
	states map[uint]State
}

func NewMemoryStateStore() *MemoryStateStore {
	return &MemoryStateStore{states: make(map[uint]State)}
}

func (m *MemoryStateStore) Load(userID uint) (*State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	state, ok := m.states[userID]
	if !ok {
		return nil, nil
	}
	return &state, nil
}

func (m *MemoryStateStore) Save(userID uint, state State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[userID] = state
	return nil
}

func (m *MemoryStateStore) Clear(userID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, userID)
	return nil
}
