package voice

import (
	"bufio"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/safeher/safeher/server/logger"
)

const (
	DefaultTriggerPhrase  = "help me"
	DefaultRestartBackoff = 500 * time.Millisecond
)

// ErrUnsupported is reported when no speech recognition capability is
// available; the feature is disabled rather than crashing.
var ErrUnsupported = errors.New("speech recognition capability unavailable")

var logg = logger.NewLogger()

// Event is one emission from a recognition session - either a recognized
// transcript or a session error. The event channel closing marks the end
// of the session.
type Event struct {
	Transcript string
	Err        error
}

// Recognizer is a continuous speech-to-text session factory
type Recognizer interface {
	// Start opens a new recognition session & streams its events.
	// The returned channel is closed when the session ends.
	Start() (<-chan Event, error)
	Stop()
}

// Listener watches recognized utterances for the trigger phrase & arms the
// SOS engine on a match. Sessions are restarted automatically with a short
// backoff while the feature remains enabled.
type Listener struct {
	mu         sync.Mutex
	recognizer Recognizer
	phrase     string
	backoff    time.Duration

	arm     func()
	disable func(reason string)

	listening    bool
	generation   uint64
	restartTimer *time.Timer
}

// NewListener wires a recognizer to the 'arm' trigger. 'disable' is invoked
// when the capability is unsupported or fails unrecoverably, so the caller
// can flip the voice-activation setting off.
func NewListener(recognizer Recognizer, phrase string, arm func(), disable func(reason string)) *Listener {
	if strings.TrimSpace(phrase) == "" {
		phrase = DefaultTriggerPhrase
	}

	return &Listener{
		recognizer: recognizer,
		phrase:     strings.ToLower(phrase),
		backoff:    DefaultRestartBackoff,
		arm:        arm,
		disable:    disable,
	}
}

// Start begins a recognition session. With no recognizer available the
// feature is disabled & ErrUnsupported reported.
func (listener *Listener) Start() error {
	listener.mu.Lock()

	if listener.recognizer == nil {
		listener.mu.Unlock()
		listener.disable("voice activation not supported")
		return ErrUnsupported
	}

	if listener.listening {
		listener.mu.Unlock()
		return nil
	}

	events, err := listener.recognizer.Start()
	if err != nil {
		listener.mu.Unlock()
		listener.disable("voice activation failed to start")
		return err
	}

	listener.listening = true
	generation := listener.generation
	listener.mu.Unlock()

	logg.Infof("voice activation enabled - listening for %q", listener.phrase)
	go listener.consume(events, generation)

	return nil
}

// Stop ends listening. Bumping the generation makes any pending restart
// timer inert, so disabling wins the restart race.
func (listener *Listener) Stop() {
	listener.mu.Lock()
	defer listener.mu.Unlock()

	if !listener.listening {
		return
	}

	listener.listening = false
	listener.generation++
	if listener.restartTimer != nil {
		listener.restartTimer.Stop()
	}

	listener.recognizer.Stop()
	logg.Info("voice activation disabled")
}

func (listener *Listener) Listening() bool {
	listener.mu.Lock()
	defer listener.mu.Unlock()

	return listener.listening
}

func (listener *Listener) consume(events <-chan Event, generation uint64) {
	for event := range events {
		if event.Err != nil {
			logg.Errorf("speech error: %v", event.Err)
			listener.Stop()
			listener.disable("voice error: " + event.Err.Error())
			return
		}

		transcript := strings.ToLower(strings.TrimSpace(event.Transcript))
		if strings.Contains(transcript, listener.phrase) {
			logg.Warn("voice command detected! initiating SOS...")
			listener.arm()
		}
	}

	// Session ended - restart after a short backoff while still enabled
	listener.scheduleRestart(generation)
}

func (listener *Listener) scheduleRestart(generation uint64) {
	listener.mu.Lock()
	defer listener.mu.Unlock()

	if !listener.listening || generation != listener.generation {
		return
	}

	listener.restartTimer = time.AfterFunc(listener.backoff, func() {
		listener.restart(generation)
	})
}

func (listener *Listener) restart(generation uint64) {
	listener.mu.Lock()

	if !listener.listening || generation != listener.generation {
		listener.mu.Unlock()
		return
	}

	events, err := listener.recognizer.Start()
	if err != nil {
		listener.listening = false
		listener.generation++
		listener.mu.Unlock()

		logg.Errorf("unable to restart voice recognition: %v", err)
		listener.disable("voice activation failed to restart")
		return
	}
	listener.mu.Unlock()

	go listener.consume(events, generation)
}

// ---------------------------------------------------------------------------------//
// StreamRecognizer
// --------------------------------------------------------------------------------//

// StreamRecognizer adapts a line-oriented transcript stream(e.g. a FIFO fed
// by a speech-to-text pipeline) into recognition sessions - one line per
// recognized utterance.
type StreamRecognizer struct {
	mu      sync.Mutex
	open    func() (io.ReadCloser, error)
	current io.ReadCloser
}

func NewStreamRecognizer(open func() (io.ReadCloser, error)) *StreamRecognizer {
	return &StreamRecognizer{open: open}
}

func (recognizer *StreamRecognizer) Start() (<-chan Event, error) {
	source, err := recognizer.open()
	if err != nil {
		return nil, err
	}

	recognizer.mu.Lock()
	recognizer.current = source
	recognizer.mu.Unlock()

	events := make(chan Event)
	go func() {
		defer close(events)
		defer source.Close()

		scanner := bufio.NewScanner(source)
		for scanner.Scan() {
			events <- Event{Transcript: scanner.Text()}
		}
	}()

	return events, nil
}

func (recognizer *StreamRecognizer) Stop() {
	recognizer.mu.Lock()
	defer recognizer.mu.Unlock()

	if recognizer.current != nil {
		recognizer.current.Close()
		recognizer.current = nil
	}
}
