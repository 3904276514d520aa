package location

import (
	"context"
	"sync"
)

// ProviderStub is a canned provider for tests
type ProviderStub struct {
	mu       sync.Mutex
	Snapshot Snapshot
	Err      error
	calls    int
}

func (stub *ProviderStub) Current(ctx context.Context) (Snapshot, error) {
	stub.mu.Lock()
	stub.calls++
	stub.mu.Unlock()

	if stub.Err != nil {
		return Snapshot{}, stub.Err
	}

	return stub.Snapshot, nil
}

func (stub *ProviderStub) Calls() int {
	stub.mu.Lock()
	defer stub.mu.Unlock()
	return stub.calls
}
