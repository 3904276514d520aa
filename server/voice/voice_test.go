package voice

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type triggerRecorder struct {
	mu       sync.Mutex
	arms     int
	disables []string
}

func (recorder *triggerRecorder) arm() {
	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	recorder.arms++
}

func (recorder *triggerRecorder) disable(reason string) {
	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	recorder.disables = append(recorder.disables, reason)
}

func (recorder *triggerRecorder) Arms() int {
	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	return recorder.arms
}

func (recorder *triggerRecorder) Disables() []string {
	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	return append([]string{}, recorder.disables...)
}

func TestListenerTriggersOnPhrase(t *testing.T) {
	session := make(chan Event)
	stub := &RecognizerStub{Sessions: []chan Event{session}}
	recorder := &triggerRecorder{}

	listener := NewListener(stub, "help me", recorder.arm, recorder.disable)
	require.Nil(t, listener.Start())

	session <- Event{Transcript: "just chatting about the weather"}
	assert.Zero(t, recorder.Arms(), "unrelated utterances should not trigger")

	// Matching is case-insensitive & containment-based
	session <- Event{Transcript: "  Please HELP me right now "}
	assert.Eventually(t, func() bool { return recorder.Arms() == 1 }, time.Second, time.Millisecond)

	listener.Stop()
}

func TestListenerRestartsAfterSessionEnds(t *testing.T) {
	stub := &RecognizerStub{Sessions: []chan Event{make(chan Event), make(chan Event)}}
	recorder := &triggerRecorder{}

	listener := NewListener(stub, "", recorder.arm, recorder.disable)
	listener.backoff = 5 * time.Millisecond
	require.Nil(t, listener.Start())
	require.Equal(t, 1, stub.Starts())

	// Ending the session should restart listening after the backoff
	close(stub.Sessions[0])

	assert.Eventually(t, func() bool { return stub.Starts() == 2 }, time.Second, time.Millisecond)
	assert.True(t, listener.Listening())

	listener.Stop()
}

func TestListenerStopWinsRestartRace(t *testing.T) {
	stub := &RecognizerStub{Sessions: []chan Event{make(chan Event), make(chan Event)}}
	recorder := &triggerRecorder{}

	listener := NewListener(stub, "", recorder.arm, recorder.disable)
	listener.backoff = 20 * time.Millisecond
	require.Nil(t, listener.Start())

	// Session ends, then the user disables the feature before the
	// backoff elapses - the pending restart must be discarded
	close(stub.Sessions[0])
	listener.Stop()

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, 1, stub.Starts(), "no restart should happen after Stop")
	assert.False(t, listener.Listening())
}

func TestListenerDisablesOnRecognitionError(t *testing.T) {
	session := make(chan Event)
	stub := &RecognizerStub{Sessions: []chan Event{session}}
	recorder := &triggerRecorder{}

	listener := NewListener(stub, "", recorder.arm, recorder.disable)
	require.Nil(t, listener.Start())

	session <- Event{Err: errors.New("audio-capture")}

	assert.Eventually(t, func() bool { return len(recorder.Disables()) == 1 }, time.Second, time.Millisecond)
	assert.False(t, listener.Listening())
	assert.Contains(t, recorder.Disables()[0], "audio-capture")
}

func TestListenerUnsupportedCapability(t *testing.T) {
	recorder := &triggerRecorder{}

	listener := NewListener(nil, "", recorder.arm, recorder.disable)

	err := listener.Start()
	assert.ErrorIs(t, err, ErrUnsupported)
	assert.False(t, listener.Listening())
	require.Len(t, recorder.Disables(), 1)
}

func TestListenerStartIsIdempotent(t *testing.T) {
	session := make(chan Event)
	stub := &RecognizerStub{Sessions: []chan Event{session}}
	recorder := &triggerRecorder{}

	listener := NewListener(stub, "", recorder.arm, recorder.disable)
	require.Nil(t, listener.Start())
	require.Nil(t, listener.Start())

	assert.Equal(t, 1, stub.Starts(), "a second Start while listening should be a no-op")

	listener.Stop()
}
