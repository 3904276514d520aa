package sos

import (
	"errors"
	"sync"
	"time"

	"github.com/safeher/safeher/server/location"
	"github.com/safeher/safeher/server/logger"
)

const (
	IDLE_STATE        = "idle"
	COUNTDOWN_STATE   = "countdown"
	DISPATCHING_STATE = "dispatching"

	DefaultCountdownLength = 5
	DefaultTickInterval    = time.Second
)

// ErrLocationPending is reported when arming is refused because no
// position snapshot exists yet. A resolution attempt is kicked off,
// but arming is not retried automatically.
var ErrLocationPending = errors.New("no location fix yet - resolving, try again shortly")

var logg = logger.NewLogger()

// Session is the transient countdown session visible to callers
type Session struct {
	State     string `json:"state"`
	Remaining int    `json:"remaining"`
}

// SnapshotSource yields the current position snapshot for the alert
type SnapshotSource interface {
	Current() *location.Snapshot
	RefreshAsync()
}

// ---------------------------------------------------------------------------------//
// Machine
// --------------------------------------------------------------------------------//

// Machine is the pure arm/tick/cancel transition logic, driven by explicit
// events so it can be exercised without timers
type Machine struct {
	state     string
	remaining int
	length    int
}

func NewMachine(countdownLength int) *Machine {
	if countdownLength <= 0 {
		countdownLength = DefaultCountdownLength
	}

	return &Machine{state: IDLE_STATE, length: countdownLength}
}

// Arm transitions Idle -> Countdown(length). It is a no-op in any other state.
func (m *Machine) Arm() bool {
	if m.state != IDLE_STATE {
		return false
	}

	m.state = COUNTDOWN_STATE
	m.remaining = m.length

	return true
}

// Tick decrements the countdown. At zero it transitions to Dispatching &
// reports that the alert should fire. Ticks outside Countdown are inert.
func (m *Machine) Tick() (fire bool) {
	if m.state != COUNTDOWN_STATE {
		return false
	}

	m.remaining--
	if m.remaining > 0 {
		return false
	}

	m.remaining = 0
	m.state = DISPATCHING_STATE

	return true
}

// Cancel transitions Countdown -> Idle, discarding the countdown.
// It is only effective while counting down.
func (m *Machine) Cancel() bool {
	if m.state != COUNTDOWN_STATE {
		return false
	}

	m.state = IDLE_STATE
	m.remaining = 0

	return true
}

// FinishDispatch returns the machine to Idle once the alert has been sent
func (m *Machine) FinishDispatch() {
	if m.state == DISPATCHING_STATE {
		m.state = IDLE_STATE
	}
}

func (m *Machine) State() string  { return m.state }
func (m *Machine) Remaining() int { return m.remaining }

func (m *Machine) Session() Session {
	return Session{State: m.state, Remaining: m.remaining}
}

// ---------------------------------------------------------------------------------//
// Engine
// --------------------------------------------------------------------------------//

// Engine drives a Machine with real per-second ticks. Each countdown run
// holds a session token - cancelling bumps the token, so a tick already
// queued to fire finds a stale token & does nothing.
type Engine struct {
	mu           sync.Mutex
	machine      *Machine
	token        uint64
	tickInterval time.Duration
	tickTimer    *time.Timer
	locations    SnapshotSource
	dispatch     func()
}

// NewEngine returns an engine that counts down 'countdownLength' ticks of
// 'tickInterval' & then invokes 'dispatch' synchronously.
func NewEngine(countdownLength int, tickInterval time.Duration, locations SnapshotSource, dispatch func()) *Engine {
	if tickInterval <= 0 {
		tickInterval = DefaultTickInterval
	}

	return &Engine{
		machine:      NewMachine(countdownLength),
		tickInterval: tickInterval,
		locations:    locations,
		dispatch:     dispatch,
	}
}

// Arm starts the countdown. Arming requires a position snapshot - without
// one it stays Idle, kicks off a resolution attempt & reports
// ErrLocationPending. Re-arming while counting down or dispatching is a
// no-op & leaves the running session untouched.
func (engine *Engine) Arm() (Session, error) {
	engine.mu.Lock()
	defer engine.mu.Unlock()

	if engine.machine.State() != IDLE_STATE {
		return engine.machine.Session(), nil
	}

	if engine.locations.Current() == nil {
		engine.locations.RefreshAsync()
		return engine.machine.Session(), ErrLocationPending
	}

	engine.machine.Arm()
	engine.scheduleTick()

	logg.Infof("SOS armed - dispatching alerts in %v ticks unless cancelled", engine.machine.Remaining())

	return engine.machine.Session(), nil
}

// Cancel aborts a running countdown. Cancelling invalidates the session
// token, so it is safe even if a tick is already queued to fire.
func (engine *Engine) Cancel() bool {
	engine.mu.Lock()
	defer engine.mu.Unlock()

	if !engine.machine.Cancel() {
		return false
	}

	engine.token++
	if engine.tickTimer != nil {
		engine.tickTimer.Stop()
	}

	logg.Info("SOS alert cancelled")

	return true
}

// Session returns the current session state
func (engine *Engine) Session() Session {
	engine.mu.Lock()
	defer engine.mu.Unlock()

	return engine.machine.Session()
}

// scheduleTick queues the next tick for the current session token.
// Callers must hold the mutex.
func (engine *Engine) scheduleTick() {
	token := engine.token
	engine.tickTimer = time.AfterFunc(engine.tickInterval, func() {
		engine.tick(token)
	})
}

func (engine *Engine) tick(token uint64) {
	engine.mu.Lock()

	// A stale token means the session was cancelled after this tick
	// was queued - treat the tick as inert
	if token != engine.token {
		engine.mu.Unlock()
		return
	}

	fire := engine.machine.Tick()
	if !fire {
		if engine.machine.State() == COUNTDOWN_STATE {
			engine.scheduleTick()
		}
		engine.mu.Unlock()
		return
	}

	engine.token++
	engine.mu.Unlock()

	// Dispatch runs outside the lock - the machine stays in Dispatching,
	// so re-arming during the alert run remains a no-op
	engine.dispatch()

	engine.mu.Lock()
	engine.machine.FinishDispatch()
	engine.mu.Unlock()
}
