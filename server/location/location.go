package location

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/safeher/safeher/server/logger"
)

// Fallback coordinate used whenever a live position cannot be resolved
const (
	FallbackLatitude  = 28.6139
	FallbackLongitude = 77.2090

	DefaultResolveTimeout = 7 * time.Second
)

var logg = logger.NewLogger()

// Snapshot is a single resolved position. At most one current snapshot is
// retained at a time & a stale one is used until replaced.
type Snapshot struct {
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	Accuracy   float64   `json:"accuracy,omitempty"`
	Fallback   bool      `json:"fallback,omitempty"`
	ResolvedAt time.Time `json:"resolved_at"`
}

// Provider resolves the device's current position
type Provider interface {
	Current(ctx context.Context) (Snapshot, error)
}

// Tracker owns the current snapshot. Refresh never fails - on an
// unsupported capability, an unavailable position or a timeout it falls
// back to the fixed default coordinate, so callers always get a snapshot.
type Tracker struct {
	mu       sync.RWMutex
	provider Provider
	timeout  time.Duration
	fallback Snapshot
	current  *Snapshot
}

// NewTracker returns a tracker resolving positions via 'provider'.
// A nil provider means the capability is unsupported & every refresh
// yields the fallback coordinate.
func NewTracker(provider Provider, timeout time.Duration, fallbackLat, fallbackLng float64) *Tracker {
	if timeout <= 0 {
		timeout = DefaultResolveTimeout
	}

	if fallbackLat == 0 && fallbackLng == 0 {
		fallbackLat = FallbackLatitude
		fallbackLng = FallbackLongitude
	}

	return &Tracker{
		provider: provider,
		timeout:  timeout,
		fallback: Snapshot{Latitude: fallbackLat, Longitude: fallbackLng, Fallback: true},
	}
}

// Refresh requests a fresh position(no cached tolerance) & replaces the
// current snapshot with the result
func (tracker *Tracker) Refresh(ctx context.Context) Snapshot {
	snapshot := tracker.resolve(ctx)

	tracker.mu.Lock()
	tracker.current = &snapshot
	tracker.mu.Unlock()

	return snapshot
}

// RefreshAsync kicks off a refresh without waiting for the result
func (tracker *Tracker) RefreshAsync() {
	go tracker.Refresh(context.Background())
}

// Current returns the current snapshot, or nil if none has been resolved yet
func (tracker *Tracker) Current() *Snapshot {
	tracker.mu.RLock()
	defer tracker.mu.RUnlock()

	if tracker.current == nil {
		return nil
	}

	snapshot := *tracker.current
	return &snapshot
}

func (tracker *Tracker) resolve(ctx context.Context) Snapshot {
	if tracker.provider == nil {
		logg.Warn("geolocation capability unsupported - using fallback coordinate")
		return tracker.fallbackSnapshot()
	}

	ctx, cancel := context.WithTimeout(ctx, tracker.timeout)
	defer cancel()

	snapshot, err := tracker.provider.Current(ctx)
	if err != nil {
		logg.Warnf("unable to resolve position, using fallback coordinate: %v", err)
		return tracker.fallbackSnapshot()
	}

	snapshot.ResolvedAt = time.Now()
	logg.Infof("location acquired (±%.0fm)", snapshot.Accuracy)

	return snapshot
}

func (tracker *Tracker) fallbackSnapshot() Snapshot {
	snapshot := tracker.fallback
	snapshot.ResolvedAt = time.Now()
	return snapshot
}

// ---------------------------------------------------------------------------------//
// HTTPProvider
// --------------------------------------------------------------------------------//

// HTTPProvider resolves positions from an ip-geolocation endpoint that
// responds with {"latitude": .., "longitude": .., "accuracy": ..}
type HTTPProvider struct {
	endpoint string
	client   *http.Client
}

func NewHTTPProvider(endpoint string) *HTTPProvider {
	return &HTTPProvider{endpoint: endpoint, client: &http.Client{}}
}

func (provider *HTTPProvider) Current(ctx context.Context) (Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, provider.endpoint, nil)
	if err != nil {
		return Snapshot{}, err
	}

	resp, err := provider.client.Do(req)
	if err != nil {
		return Snapshot{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Snapshot{}, fmt.Errorf("position unavailable: %v responded with %v", provider.endpoint, resp.Status)
	}

	snapshot := Snapshot{}
	if err := json.NewDecoder(resp.Body).Decode(&snapshot); err != nil {
		return Snapshot{}, fmt.Errorf("malformed position response: %v", err)
	}

	return snapshot, nil
}
