package fakecall

import (
	"errors"
	"sync"
	"time"

	"github.com/safeher/safeher/server/logger"
)

const (
	CallerName   = "Emergency Contact"
	CallerNumber = "123-456-7890"

	DefaultRingtoneURL = "https://www.soundjay.com/phone/sounds/phone-ring-01.mp3"

	// Delay before the "call ended" notification after accepting
	callEndedDelay = 5 * time.Second
)

// ErrDisabled is reported when a fake call is triggered while the
// feature is turned off in settings
var ErrDisabled = errors.New("fake call feature not enabled")

var logg = logger.NewLogger()

// Player loops the ring audio until stopped
type Player interface {
	PlayLoop(url string) error
	Stop()
}

// Call is the simulated caller identity shown while ringing
type Call struct {
	CallerName   string `json:"caller_name"`
	CallerNumber string `json:"caller_number"`
}

// Simulator plays a fake incoming call. The only state is ringing or not.
type Simulator struct {
	mu          sync.Mutex
	ringing     bool
	player      Player
	ringtoneURL string
	enabled     func() bool
	notify      func(message string)
	endedDelay  time.Duration
	endedTimer  *time.Timer
}

// NewSimulator builds a simulator gated by the 'enabled' setting check.
// 'notify' carries user-facing status messages.
func NewSimulator(player Player, ringtoneURL string, enabled func() bool, notify func(message string)) *Simulator {
	if ringtoneURL == "" {
		ringtoneURL = DefaultRingtoneURL
	}

	if notify == nil {
		notify = func(message string) { logg.Info(message) }
	}

	return &Simulator{
		player:      player,
		ringtoneURL: ringtoneURL,
		enabled:     enabled,
		notify:      notify,
		endedDelay:  callEndedDelay,
	}
}

// Start begins ringing with the fixed caller identity. It refuses to
// start while the feature is disabled.
func (sim *Simulator) Start() (*Call, error) {
	if !sim.enabled() {
		return nil, ErrDisabled
	}

	sim.mu.Lock()
	defer sim.mu.Unlock()

	// Restart the ring audio from the top on a re-trigger
	if sim.ringing {
		sim.player.Stop()
	}

	if sim.endedTimer != nil {
		sim.endedTimer.Stop()
	}

	if err := sim.player.PlayLoop(sim.ringtoneURL); err != nil {
		logg.Errorf("audio error: %v", err)
	}

	sim.ringing = true

	return &Call{CallerName: CallerName, CallerNumber: CallerNumber}, nil
}

// Accept stops ringing & schedules the delayed "call ended" notification
func (sim *Simulator) Accept() bool {
	sim.mu.Lock()
	defer sim.mu.Unlock()

	if !sim.ringing {
		return false
	}

	sim.player.Stop()
	sim.ringing = false
	sim.notify("Fake call accepted.")

	sim.endedTimer = time.AfterFunc(sim.endedDelay, func() {
		sim.notify("Fake call ended.")
	})

	return true
}

// Decline stops ringing & closes the simulated call
func (sim *Simulator) Decline() bool {
	sim.mu.Lock()
	defer sim.mu.Unlock()

	if !sim.ringing {
		return false
	}

	sim.player.Stop()
	sim.ringing = false
	sim.notify("Fake call declined.")

	return true
}

func (sim *Simulator) Ringing() bool {
	sim.mu.Lock()
	defer sim.mu.Unlock()

	return sim.ringing
}
