package fakecall

import "sync"

// PlayerStub records play/stop calls for tests
type PlayerStub struct {
	mu      sync.Mutex
	Err     error
	playing bool
	plays   int
	stops   int
}

func (stub *PlayerStub) PlayLoop(url string) error {
	stub.mu.Lock()
	defer stub.mu.Unlock()

	if stub.Err != nil {
		return stub.Err
	}

	stub.playing = true
	stub.plays++
	return nil
}

func (stub *PlayerStub) Stop() {
	stub.mu.Lock()
	defer stub.mu.Unlock()

	stub.playing = false
	stub.stops++
}

func (stub *PlayerStub) Playing() bool {
	stub.mu.Lock()
	defer stub.mu.Unlock()
	return stub.playing
}

func (stub *PlayerStub) Plays() int {
	stub.mu.Lock()
	defer stub.mu.Unlock()
	return stub.plays
}
