package sos

import (
	"sync"
	"testing"
	"time"

	"github.com/safeher/safeher/server/location"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type snapshotSourceStub struct {
	mu        sync.Mutex
	snapshot  *location.Snapshot
	refreshes int
}

func (stub *snapshotSourceStub) Current() *location.Snapshot {
	stub.mu.Lock()
	defer stub.mu.Unlock()
	return stub.snapshot
}

func (stub *snapshotSourceStub) RefreshAsync() {
	stub.mu.Lock()
	defer stub.mu.Unlock()
	stub.refreshes++
}

func (stub *snapshotSourceStub) Refreshes() int {
	stub.mu.Lock()
	defer stub.mu.Unlock()
	return stub.refreshes
}

type dispatchCounter struct {
	mu    sync.Mutex
	count int
}

func (counter *dispatchCounter) dispatch() {
	counter.mu.Lock()
	defer counter.mu.Unlock()
	counter.count++
}

func (counter *dispatchCounter) Count() int {
	counter.mu.Lock()
	defer counter.mu.Unlock()
	return counter.count
}

func sourceWithSnapshot() *snapshotSourceStub {
	return &snapshotSourceStub{snapshot: &location.Snapshot{Latitude: 28.6139, Longitude: 77.2090}}
}

func TestMachineTransitions(t *testing.T) {
	machine := NewMachine(3)
	assert.Equal(t, IDLE_STATE, machine.State())

	assert.True(t, machine.Arm())
	assert.Equal(t, COUNTDOWN_STATE, machine.State())
	assert.Equal(t, 3, machine.Remaining())

	// Re-arming while counting down is a no-op
	assert.False(t, machine.Arm())
	assert.Equal(t, 3, machine.Remaining())

	assert.False(t, machine.Tick())
	assert.False(t, machine.Tick())
	assert.True(t, machine.Tick(), "the final tick should fire the alert")
	assert.Equal(t, DISPATCHING_STATE, machine.State())

	// Neither cancel nor arm is effective while dispatching
	assert.False(t, machine.Cancel())
	assert.False(t, machine.Arm())

	machine.FinishDispatch()
	assert.Equal(t, IDLE_STATE, machine.State())
}

func TestMachineCancelOnlyDuringCountdown(t *testing.T) {
	machine := NewMachine(5)

	assert.False(t, machine.Cancel(), "cancel in Idle should be a no-op")

	machine.Arm()
	assert.True(t, machine.Cancel())
	assert.Equal(t, IDLE_STATE, machine.State())

	// Ticks after cancellation have no effect
	assert.False(t, machine.Tick())
	assert.Equal(t, IDLE_STATE, machine.State())
}

func TestEngineArmWithoutSnapshotReportsPending(t *testing.T) {
	source := &snapshotSourceStub{}
	counter := &dispatchCounter{}
	engine := NewEngine(5, time.Millisecond, source, counter.dispatch)

	session, err := engine.Arm()
	assert.ErrorIs(t, err, ErrLocationPending)
	assert.Equal(t, IDLE_STATE, session.State)
	assert.Equal(t, 1, source.Refreshes(), "arming without a fix should trigger a resolution attempt")

	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, counter.Count(), "no countdown should have started")
}

func TestEngineCountdownFiresDispatchOnce(t *testing.T) {
	source := sourceWithSnapshot()
	counter := &dispatchCounter{}
	engine := NewEngine(5, 2*time.Millisecond, source, counter.dispatch)

	session, err := engine.Arm()
	require.Nil(t, err)
	assert.Equal(t, COUNTDOWN_STATE, session.State)
	assert.Equal(t, 5, session.Remaining)

	assert.Eventually(t, func() bool {
		return counter.Count() == 1 && engine.Session().State == IDLE_STATE
	}, time.Second, time.Millisecond, "five ticks should dispatch exactly once & return to Idle")

	// No stray ticks fire after the alert went out
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, counter.Count())
}

func TestEngineCancelSuppressesPendingTicks(t *testing.T) {
	source := sourceWithSnapshot()
	counter := &dispatchCounter{}
	engine := NewEngine(5, 5*time.Millisecond, source, counter.dispatch)

	_, err := engine.Arm()
	require.Nil(t, err)

	assert.True(t, engine.Cancel())
	assert.Equal(t, IDLE_STATE, engine.Session().State)

	// Cancelling again is an idempotent no-op
	assert.False(t, engine.Cancel())

	// Any tick already queued must find a stale token & stay inert
	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, counter.Count())
	assert.Equal(t, IDLE_STATE, engine.Session().State)
}

func TestEngineRearmLeavesCountdownUntouched(t *testing.T) {
	source := sourceWithSnapshot()
	counter := &dispatchCounter{}
	engine := NewEngine(5, time.Hour, source, counter.dispatch)

	first, err := engine.Arm()
	require.Nil(t, err)

	second, err := engine.Arm()
	assert.Nil(t, err)
	assert.Equal(t, first, second, "re-arming should not reset the countdown or start a second session")
	assert.Equal(t, 5, second.Remaining)

	engine.Cancel()
}

func TestEngineArmAfterCancelStartsFreshCountdown(t *testing.T) {
	source := sourceWithSnapshot()
	counter := &dispatchCounter{}
	engine := NewEngine(3, time.Hour, source, counter.dispatch)

	_, err := engine.Arm()
	require.Nil(t, err)
	require.True(t, engine.Cancel())

	session, err := engine.Arm()
	assert.Nil(t, err)
	assert.Equal(t, COUNTDOWN_STATE, session.State)
	assert.Equal(t, 3, session.Remaining)

	engine.Cancel()
}
