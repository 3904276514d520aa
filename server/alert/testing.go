package alert

import "sync"

// LauncherStub records hand-off URLs instead of opening them
type LauncherStub struct {
	mu   sync.Mutex
	Err  error
	urls []string
}

func (stub *LauncherStub) Open(handOffURL string) error {
	stub.mu.Lock()
	defer stub.mu.Unlock()

	if stub.Err != nil {
		return stub.Err
	}

	stub.urls = append(stub.urls, handOffURL)
	return nil
}

func (stub *LauncherStub) URLs() []string {
	stub.mu.Lock()
	defer stub.mu.Unlock()

	return append([]string{}, stub.urls...)
}
