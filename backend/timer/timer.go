// Package timer implements the persistent countdown timer behind the study
// dashboard. Remaining time is always derived from a wall-clock end time, not
// from counting ticks, so suspended clients and missed ticks cannot drift the
// state; every reader re-derives the same display from the shared record.
package timer

import (
	"log"
	"math"
	"sync"
	"time"
)

// TickInterval is how often the refresh loop re-derives the countdown.
// Sub-second so the displayed seconds never look stuck.
const TickInterval = 250 * time.Millisecond

// State is the persisted timer record. Invariants: while Running, EndTime is
// set and RemainingMs is stale; while Paused, RemainingMs is authoritative and
// EndTime is nil. Finished and Running are mutually exclusive.
type State struct {
	Running         bool       `json:"running"`
	Paused          bool       `json:"paused"`
	Finished        bool       `json:"finished"`
	StartedAt       time.Time  `json:"startedAt"`
	EndTime         *time.Time `json:"endTime"`
	RemainingMs     int64      `json:"remainingMs"`
	DurationMinutes float64    `json:"durationMinutes"`
	SubjectName     string     `json:"subjectName"`
}

// Snapshot is a State plus the remaining seconds derived at read time.
// Active reports whether any timer record exists at all.
type Snapshot struct {
	State
	Active      bool  `json:"active"`
	SecondsLeft int64 `json:"secondsLeft"`
}

// Store owns one user's timer state. All transitions go through its API;
// writes are persisted through the StateStore and broadcast to subscribers,
// which re-derive their own display (advisory, last write wins).
type Store struct {
	// OnFinish is called once when a running countdown reaches zero, with the
	// final snapshot. Set it before starting a timer.
	OnFinish func(Snapshot)
	// Logger, when set, receives persistence failures from the refresh loop.
	Logger *log.Logger

	mu       sync.Mutex
	userID   uint
	state    *State
	persist  StateStore
	now      func() time.Time
	subs     map[chan Snapshot]struct{}
	stopTick chan struct{}
}

// NewStore creates a Store for one user. now may be nil for the wall clock.
func NewStore(userID uint, persist StateStore, now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{
		userID:  userID,
		persist: persist,
		now:     now,
		subs:    make(map[chan Snapshot]struct{}),
	}
}

// StartNew begins a fresh countdown of the given duration. The in-memory
// state is updated even if persisting fails; the error is returned so the
// caller can surface it.
func (s *Store) StartNew(durationMinutes float64, subjectName string) error {
	s.mu.Lock()

	durMs := int64(math.Max(1, durationMinutes) * 60000)
	now := s.now()
	end := now.Add(time.Duration(durMs) * time.Millisecond)

	s.state = &State{
		Running:         true,
		StartedAt:       now,
		EndTime:         &end,
		RemainingMs:     durMs,
		DurationMinutes: durationMinutes,
		SubjectName:     subjectName,
	}

	err := s.persist.Save(s.userID, *s.state)
	s.broadcastLocked()
	s.startTickingLocked()
	s.mu.Unlock()
	return err
}

// Pause freezes the countdown. No-op unless running.
func (s *Store) Pause() error {
	s.mu.Lock()
	if s.state == nil || !s.state.Running {
		s.mu.Unlock()
		return nil
	}

	remaining := s.state.EndTime.Sub(s.now()).Milliseconds()
	if remaining < 0 {
		remaining = 0
	}

	s.state.Running = false
	s.state.Paused = true
	s.state.Finished = false
	s.state.RemainingMs = remaining
	s.state.EndTime = nil

	err := s.persist.Save(s.userID, *s.state)
	s.broadcastLocked()
	s.stopTickingLocked()
	s.mu.Unlock()
	return err
}

// Resume restarts a paused countdown from its authoritative RemainingMs.
// No-op unless paused.
func (s *Store) Resume() error {
	s.mu.Lock()
	if s.state == nil || !s.state.Paused {
		s.mu.Unlock()
		return nil
	}

	remaining := s.state.RemainingMs
	if remaining < 0 {
		remaining = 0
	}
	end := s.now().Add(time.Duration(remaining) * time.Millisecond)

	s.state.Running = true
	s.state.Paused = false
	s.state.Finished = false
	s.state.EndTime = &end

	err := s.persist.Save(s.userID, *s.state)
	s.broadcastLocked()
	s.startTickingLocked()
	s.mu.Unlock()
	return err
}

// Reset clears the timer unconditionally. Always legal, from any state.
func (s *Store) Reset() error {
	s.mu.Lock()
	s.state = nil
	err := s.persist.Clear(s.userID)
	s.broadcastLocked()
	s.stopTickingLocked()
	s.mu.Unlock()
	return err
}

// Refresh derives the current snapshot and performs the natural-completion
// transition when a running countdown has reached zero. The tick loop calls
// this every TickInterval; it is also safe to call at any time.
func (s *Store) Refresh() Snapshot {
	s.mu.Lock()

	snap := s.snapshotLocked()
	if !snap.Running || snap.SecondsLeft > 0 {
		s.mu.Unlock()
		return snap
	}

	// Natural completion.
	s.state.Running = false
	s.state.Paused = false
	s.state.Finished = true
	s.state.RemainingMs = 0

	if err := s.persist.Save(s.userID, *s.state); err != nil && s.Logger != nil {
		s.Logger.Printf("timer: persisting finished state for user %d: %v", s.userID, err)
	}

	final := s.snapshotLocked()
	s.broadcastLocked()
	s.stopTickingLocked()
	onFinish := s.OnFinish
	s.mu.Unlock()

	if onFinish != nil {
		onFinish(final)
	}
	return final
}

// Snapshot returns the current state with derived seconds left.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// SecondsLeft derives the remaining whole seconds from wall clock.
func (s *Store) SecondsLeft() int64 {
	return s.Snapshot().SecondsLeft
}

// ElapsedMinutes reports how much of the configured duration has been
// consumed. It stays readable after a failed persist so the caller can retry
// recording the session without losing the value.
func (s *Store) ElapsedMinutes() float64 {
	snap := s.Snapshot()
	if !snap.Active {
		return 0
	}
	elapsed := snap.DurationMinutes - float64(snap.SecondsLeft)/60
	if elapsed < 0 {
		return 0
	}
	return elapsed
}

// Subscribe returns a channel receiving a snapshot after every persisted
// write. Sends are non-blocking; a slow subscriber misses intermediate states
// and re-derives the display from the next one.
func (s *Store) Subscribe() chan Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan Snapshot, 1)
	s.subs[ch] = struct{}{}
	return ch
}

// Unsubscribe removes a subscriber channel.
func (s *Store) Unsubscribe(ch chan Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, ch)
}

func (s *Store) snapshotLocked() Snapshot {
	if s.state == nil {
		return Snapshot{}
	}
	snap := Snapshot{State: *s.state, Active: true}
	switch {
	case s.state.Running && s.state.EndTime != nil:
		ms := s.state.EndTime.Sub(s.now()).Milliseconds()
		if ms < 0 {
			ms = 0
		}
		snap.SecondsLeft = int64(math.Ceil(float64(ms) / 1000))
	case s.state.Paused:
		ms := s.state.RemainingMs
		if ms < 0 {
			ms = 0
		}
		snap.SecondsLeft = int64(math.Ceil(float64(ms) / 1000))
	}
	return snap
}

func (s *Store) broadcastLocked() {
	snap := s.snapshotLocked()
	for ch := range s.subs {
		select {
		case ch <- snap:
		default:
		}
	}
}

func (s *Store) startTickingLocked() {
	if s.stopTick != nil {
		return
	}
	stop := make(chan struct{})
	s.stopTick = stop

	go func() {
		ticker := time.NewTicker(TickInterval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				// Natural completion inside Refresh closes stop as well;
				// the !Running return ends the loop first, without selecting
				// on the already-closed channel.
				if snap := s.Refresh(); !snap.Running {
					return
				}
			}
		}
	}()
}

func (s *Store) stopTickingLocked() {
	if s.stopTick != nil {
		close(s.stopTick)
		s.stopTick = nil
	}
}
