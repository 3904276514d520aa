package fakecall

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type notifyRecorder struct {
	mu       sync.Mutex
	messages []string
}

func (recorder *notifyRecorder) notify(message string) {
	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	recorder.messages = append(recorder.messages, message)
}

func (recorder *notifyRecorder) Messages() []string {
	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	return append([]string{}, recorder.messages...)
}

func enabled() bool  { return true }
func disabled() bool { return false }

func TestStartRefusesWhenDisabled(t *testing.T) {
	player := &PlayerStub{}
	sim := NewSimulator(player, "", disabled, nil)

	call, err := sim.Start()
	assert.ErrorIs(t, err, ErrDisabled)
	assert.Nil(t, call)
	assert.False(t, sim.Ringing())
	assert.Zero(t, player.Plays())
}

func TestStartRingsWithFixedCallerIdentity(t *testing.T) {
	player := &PlayerStub{}
	sim := NewSimulator(player, "", enabled, nil)

	call, err := sim.Start()
	require.Nil(t, err)

	assert.Equal(t, CallerName, call.CallerName)
	assert.Equal(t, CallerNumber, call.CallerNumber)
	assert.True(t, sim.Ringing())
	assert.True(t, player.Playing())
}

func TestRetriggerRestartsRingAudio(t *testing.T) {
	player := &PlayerStub{}
	sim := NewSimulator(player, "", enabled, nil)

	_, err := sim.Start()
	require.Nil(t, err)
	_, err = sim.Start()
	require.Nil(t, err)

	assert.Equal(t, 2, player.Plays())
	assert.True(t, sim.Ringing())
}

func TestAcceptStopsAudioAndSchedulesEndedNotification(t *testing.T) {
	player := &PlayerStub{}
	recorder := &notifyRecorder{}
	sim := NewSimulator(player, "", enabled, recorder.notify)
	sim.endedDelay = 10 * time.Millisecond

	_, err := sim.Start()
	require.Nil(t, err)

	assert.True(t, sim.Accept())
	assert.False(t, sim.Ringing())
	assert.False(t, player.Playing())
	assert.Equal(t, []string{"Fake call accepted."}, recorder.Messages())

	assert.Eventually(t, func() bool {
		messages := recorder.Messages()
		return len(messages) == 2 && messages[1] == "Fake call ended."
	}, time.Second, time.Millisecond)
}

func TestDeclineStopsAudioWithoutEndedNotification(t *testing.T) {
	player := &PlayerStub{}
	recorder := &notifyRecorder{}
	sim := NewSimulator(player, "", enabled, recorder.notify)
	sim.endedDelay = 10 * time.Millisecond

	_, err := sim.Start()
	require.Nil(t, err)

	assert.True(t, sim.Decline())
	assert.False(t, sim.Ringing())

	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, []string{"Fake call declined."}, recorder.Messages())
}

func TestAcceptAndDeclineRequireRinging(t *testing.T) {
	sim := NewSimulator(&PlayerStub{}, "", enabled, nil)

	assert.False(t, sim.Accept())
	assert.False(t, sim.Decline())
}
