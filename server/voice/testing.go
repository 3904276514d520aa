package voice

import "sync"

// RecognizerStub hands out scripted event channels for tests - one
// channel per Start call, in order
type RecognizerStub struct {
	mu       sync.Mutex
	Sessions []chan Event
	StartErr error
	starts   int
	stops    int
}

func (stub *RecognizerStub) Start() (<-chan Event, error) {
	stub.mu.Lock()
	defer stub.mu.Unlock()

	if stub.StartErr != nil {
		return nil, stub.StartErr
	}

	if stub.starts >= len(stub.Sessions) {
		stub.Sessions = append(stub.Sessions, make(chan Event))
	}

	session := stub.Sessions[stub.starts]
	stub.starts++

	return session, nil
}

func (stub *RecognizerStub) Stop() {
	stub.mu.Lock()
	defer stub.mu.Unlock()
	stub.stops++
}

func (stub *RecognizerStub) Starts() int {
	stub.mu.Lock()
	defer stub.mu.Unlock()
	return stub.starts
}

func (stub *RecognizerStub) Stops() int {
	stub.mu.Lock()
	defer stub.mu.Unlock()
	return stub.stops
}
