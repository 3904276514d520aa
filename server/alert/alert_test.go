package alert

import (
	"errors"
	"net/url"
	"testing"

	"github.com/safeher/safeher/server/location"
	"github.com/safeher/safeher/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSnapshot = &location.Snapshot{Latitude: 28.6139, Longitude: 77.209}

func TestDispatchWithNoContacts(t *testing.T) {
	launcher := &LauncherStub{}
	report := NewDispatcher(launcher).Dispatch([]models.Contact{}, testSnapshot, false)

	assert.Empty(t, report.Outcomes)
	assert.Equal(t, []string{NoContactsWarning}, report.Warnings)
	assert.Zero(t, report.Sent)
	assert.Empty(t, launcher.URLs(), "no external hand-off should happen without contacts")
}

func TestDispatchLiveHandOffs(t *testing.T) {
	launcher := &LauncherStub{}
	contacts := []models.Contact{
		{ID: "a", Name: "Asha", Method: models.WHATSAPP_METHOD, Value: "+1234567890"},
		{ID: "b", Name: "Maya", Method: models.EMAIL_METHOD, Value: "maya@example.com"},
	}

	report := NewDispatcher(launcher).Dispatch(contacts, testSnapshot, false)

	require.Len(t, report.Outcomes, 2)
	assert.Equal(t, SENT_OUTCOME, report.Outcomes[0].Status)
	assert.Equal(t, SENT_OUTCOME, report.Outcomes[1].Status)
	assert.Equal(t, 2, report.Sent)

	urls := launcher.URLs()
	require.Len(t, urls, 2)
	assert.Contains(t, urls[0], "https://api.whatsapp.com/send?phone=+1234567890&text=")
	assert.Contains(t, urls[0], url.QueryEscape(report.Message))
	assert.Contains(t, urls[1], "mailto:maya@example.com?subject=")
}

func TestDispatchSmsIsAlwaysSimulated(t *testing.T) {
	launcher := &LauncherStub{}
	contacts := []models.Contact{
		{ID: "a", Name: "Asha", Method: models.SMS_METHOD, Value: "+1234567890"},
	}

	// Not in test mode - sms still must not produce a live hand-off
	report := NewDispatcher(launcher).Dispatch(contacts, testSnapshot, false)

	require.Len(t, report.Outcomes, 1)
	assert.Equal(t, SIMULATED_OUTCOME, report.Outcomes[0].Status)
	assert.Equal(t, 1, report.Simulated)
	assert.Empty(t, launcher.URLs())
}

func TestDispatchTestModeSimulatesEveryChannel(t *testing.T) {
	launcher := &LauncherStub{}
	contacts := []models.Contact{
		{ID: "a", Name: "Asha", Method: models.WHATSAPP_METHOD, Value: "+1234567890"},
		{ID: "b", Name: "Maya", Method: models.EMAIL_METHOD, Value: "maya@example.com"},
		{ID: "c", Name: "Priya", Method: models.SMS_METHOD, Value: "+1987654321"},
	}

	report := NewDispatcher(launcher).Dispatch(contacts, testSnapshot, true)

	assert.Equal(t, 3, report.Simulated)
	assert.Zero(t, report.Sent)
	assert.Empty(t, launcher.URLs())
	assert.Contains(t, report.Message, "[TEST MODE] ")
}

func TestDispatchReportsFailedHandOff(t *testing.T) {
	launcher := &LauncherStub{Err: errors.New("no handler for url scheme")}
	contacts := []models.Contact{
		{ID: "a", Name: "Asha", Method: models.EMAIL_METHOD, Value: "asha@example.com"},
	}

	report := NewDispatcher(launcher).Dispatch(contacts, testSnapshot, false)

	require.Len(t, report.Outcomes, 1)
	assert.Equal(t, FAILED_OUTCOME, report.Outcomes[0].Status)
	assert.Equal(t, 1, report.Failed)
	assert.Contains(t, report.Outcomes[0].Detail, "no handler")
}

func TestBuildMessage(t *testing.T) {
	cases := []struct {
		description string
		snapshot    *location.Snapshot
		testMode    bool
		expected    string
	}{
		{
			description: "live alert with location",
			snapshot:    testSnapshot,
			expected:    "URGENT! SafeHer alert! I need help. My last known location is: https://www.google.com/maps/search/?api=1&query=28.6139,77.209.",
		},
		{
			description: "test mode alert with location",
			snapshot:    testSnapshot,
			testMode:    true,
			expected:    "URGENT! [TEST MODE] SafeHer alert! I need help. My last known location is: https://www.google.com/maps/search/?api=1&query=28.6139,77.209.",
		},
		{
			description: "alert without location",
			expected:    "URGENT! SafeHer alert! I need help. My last known location is: Location unavailable..",
		},
	}

	for _, c := range cases {
		t.Run(c.description, func(t *testing.T) {
			assert.Equal(t, c.expected, BuildMessage(c.snapshot, c.testMode))
		})
	}
}

func TestReportSummary(t *testing.T) {
	launcher := &LauncherStub{}
	contacts := []models.Contact{
		{ID: "a", Name: "Asha", Method: models.SMS_METHOD, Value: "+1234567890"},
	}

	report := NewDispatcher(launcher).Dispatch(contacts, nil, true)
	summary := report.Summary()

	assert.True(t, summary.TestMode)
	assert.Equal(t, 1, summary.Simulated)
	assert.Equal(t, report.Message, summary.Message)
}
