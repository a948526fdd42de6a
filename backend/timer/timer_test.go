package timer

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock lets tests move wall time explicitly. Guarded because the
// store's refresh loop reads it from its own goroutine.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeClock) advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.t = f.t.Add(d)
}

func newTestStore() (*Store, *fakeClock, *MemoryStateStore) {
	clk := &fakeClock{t: time.Date(2026, time.August, 31, 10, 0, 0, 0, time.UTC)}
	persist := NewMemoryStateStore()
	return NewStore(1, persist, clk.Now), clk, persist
}

func TestStartNewDerivesSecondsLeft(t *testing.T) {
	store, _, persist := newTestStore()
	defer store.Reset()

	require.NoError(t, store.StartNew(25, "Math"))

	snap := store.Snapshot()
	assert.True(t, snap.Running)
	assert.False(t, snap.Paused)
	assert.False(t, snap.Finished)
	assert.Equal(t, int64(1500), snap.SecondsLeft)
	assert.Equal(t, "Math", snap.SubjectName)
	require.NotNil(t, snap.EndTime)

	// The write is persisted immediately.
	saved, err := persist.Load(1)
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.True(t, saved.Running)
}

func TestSecondsLeftFollowsWallClock(t *testing.T) {
	store, clk, _ := newTestStore()
	defer store.Reset()

	require.NoError(t, store.StartNew(25, ""))

	clk.advance(10 * time.Second)
	assert.Equal(t, int64(1490), store.SecondsLeft())

	// Missed ticks cause no drift: jumping far ahead still derives correctly.
	clk.advance(10 * time.Minute)
	assert.Equal(t, int64(890), store.SecondsLeft())
}

func TestPauseResumeRoundTrip(t *testing.T) {
	store, clk, _ := newTestStore()
	defer store.Reset()

	require.NoError(t, store.StartNew(10, "Physics"))
	clk.advance(3 * time.Minute)

	require.NoError(t, store.Pause())
	snap := store.Snapshot()
	assert.True(t, snap.Paused)
	assert.False(t, snap.Running)
	assert.Equal(t, int64(420000), snap.RemainingMs)
	assert.Nil(t, snap.EndTime)
	assert.Equal(t, int64(420), snap.SecondsLeft)

	// Time passing while paused changes nothing.
	clk.advance(2 * time.Hour)
	assert.Equal(t, int64(420), store.SecondsLeft())

	require.NoError(t, store.Resume())
	snap = store.Snapshot()
	assert.True(t, snap.Running)
	assert.Equal(t, int64(420000), snap.RemainingMs)
	require.NotNil(t, snap.EndTime)
	assert.Equal(t, clk.Now().Add(420000*time.Millisecond), *snap.EndTime)
	assert.Equal(t, int64(420), snap.SecondsLeft)
}

func TestInvalidTransitionsAreNoOps(t *testing.T) {
	store, _, _ := newTestStore()
	defer store.Reset()

	// No state yet: pause and resume do nothing.
	require.NoError(t, store.Pause())
	require.NoError(t, store.Resume())
	assert.False(t, store.Snapshot().Active)

	require.NoError(t, store.StartNew(5, ""))
	// Resume while running is a no-op.
	before := store.Snapshot()
	require.NoError(t, store.Resume())
	assert.Equal(t, before.EndTime, store.Snapshot().EndTime)

	// Pause twice: the second is a no-op.
	require.NoError(t, store.Pause())
	frozen := store.Snapshot().RemainingMs
	require.NoError(t, store.Pause())
	assert.Equal(t, frozen, store.Snapshot().RemainingMs)
}

func TestRefreshFinishesExpiredTimer(t *testing.T) {
	store, clk, persist := newTestStore()
	defer store.Reset()

	finished := make(chan Snapshot, 1)
	store.OnFinish = func(final Snapshot) { finished <- final }

	require.NoError(t, store.StartNew(1, "Math"))
	clk.advance(70 * time.Second) // endTime is now 10s in the past

	snap := store.Refresh()
	assert.True(t, snap.Finished)
	assert.False(t, snap.Running)
	assert.False(t, snap.Paused)
	assert.Equal(t, int64(0), snap.RemainingMs)
	assert.Equal(t, int64(0), snap.SecondsLeft)

	select {
	case final := <-finished:
		assert.Equal(t, "Math", final.SubjectName)
		assert.Equal(t, float64(1), final.DurationMinutes)
	case <-time.After(time.Second):
		t.Fatal("OnFinish was not called")
	}

	// The transition fires exactly once.
	store.Refresh()
	select {
	case <-finished:
		t.Fatal("OnFinish called twice")
	default:
	}

	saved, err := persist.Load(1)
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.True(t, saved.Finished)
}

func TestResetClearsAnyState(t *testing.T) {
	store, clk, persist := newTestStore()

	// Idle reset is legal.
	require.NoError(t, store.Reset())

	require.NoError(t, store.StartNew(5, ""))
	require.NoError(t, store.Reset())
	assert.False(t, store.Snapshot().Active)

	require.NoError(t, store.StartNew(5, ""))
	require.NoError(t, store.Pause())
	require.NoError(t, store.Reset())
	assert.False(t, store.Snapshot().Active)

	require.NoError(t, store.StartNew(1, ""))
	clk.advance(2 * time.Minute)
	store.Refresh()
	require.NoError(t, store.Reset())
	assert.False(t, store.Snapshot().Active)

	saved, err := persist.Load(1)
	require.NoError(t, err)
	assert.Nil(t, saved)
}

func TestElapsedMinutes(t *testing.T) {
	store, clk, _ := newTestStore()
	defer store.Reset()

	assert.Equal(t, float64(0), store.ElapsedMinutes())

	require.NoError(t, store.StartNew(10, ""))
	clk.advance(3 * time.Minute)
	assert.InDelta(t, 3.0, store.ElapsedMinutes(), 0.01)

	require.NoError(t, store.Pause())
	clk.advance(time.Hour)
	assert.InDelta(t, 3.0, store.ElapsedMinutes(), 0.01)

	// A finished timer consumed its full duration.
	require.NoError(t, store.Resume())
	clk.advance(10 * time.Minute)
	store.Refresh()
	assert.InDelta(t, 10.0, store.ElapsedMinutes(), 0.01)
}

func TestSubscriberSeesEveryTransition(t *testing.T) {
	store, _, _ := newTestStore()
	defer store.Reset()

	ch := store.Subscribe()
	defer store.Unsubscribe(ch)

	require.NoError(t, store.StartNew(25, "Math"))
	snap := <-ch
	assert.True(t, snap.Running)
	assert.Equal(t, "Math", snap.SubjectName)

	require.NoError(t, store.Pause())
	snap = <-ch
	assert.True(t, snap.Paused)

	require.NoError(t, store.Resume())
	snap = <-ch
	assert.True(t, snap.Running)

	require.NoError(t, store.Reset())
	snap = <-ch
	assert.False(t, snap.Active)
}

func TestManagerHydratesPersistedState(t *testing.T) {
	clk := &fakeClock{t: time.Date(2026, time.August, 31, 10, 0, 0, 0, time.UTC)}
	persist := NewMemoryStateStore()

	// A paused timer left behind by a previous process.
	require.NoError(t, persist.Save(7, State{
		Paused:          true,
		RemainingMs:     90000,
		DurationMinutes: 5,
		SubjectName:     "History",
	}))

	m := NewManager(persist, nil, nil)
	m.now = clk.Now

	store := m.ForUser(7)
	snap := store.Snapshot()
	assert.True(t, snap.Active)
	assert.True(t, snap.Paused)
	assert.Equal(t, int64(90), snap.SecondsLeft)
	assert.Equal(t, "History", snap.SubjectName)

	// The same store instance is handed back afterwards.
	assert.Same(t, store, m.ForUser(7))
}

func TestManagerRecordsFinishedSession(t *testing.T) {
	clk := &fakeClock{t: time.Date(2026, time.August, 31, 10, 0, 0, 0, time.UTC)}
	persist := NewMemoryStateStore()

	recorded := make(chan Snapshot, 1)
	m := NewManager(persist, func(userID uint, final Snapshot) error {
		assert.Equal(t, uint(3), userID)
		recorded <- final
		return nil
	}, nil)
	m.now = clk.Now

	store := m.ForUser(3)
	require.NoError(t, store.StartNew(1, "Math"))
	clk.advance(2 * time.Minute)
	store.Refresh()

	select {
	case final := <-recorded:
		assert.Equal(t, float64(1), final.DurationMinutes)
	case <-time.After(time.Second):
		t.Fatal("finish callback was not invoked")
	}
}
