package alert

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/safeher/safeher/server/location"
	"github.com/safeher/safeher/server/logger"
	"github.com/safeher/safeher/server/models"
)

const (
	SENT_OUTCOME      = "sent"
	SIMULATED_OUTCOME = "simulated"
	FAILED_OUTCOME    = "failed"

	NoContactsWarning = "no contacts to alert"
)

var logg = logger.NewLogger()

// Launcher hands a composed URL off to the external messaging/mail client
type Launcher interface {
	Open(url string) error
}

// Outcome is the per-contact result of a dispatch run
type Outcome struct {
	ContactID string `json:"contact_id"`
	Name      string `json:"name"`
	Method    string `json:"method"`
	Status    string `json:"status"`
	Detail    string `json:"detail,omitempty"`
}

// Report aggregates the outcomes of one dispatch run. Expected conditions
// (no contacts, a channel without live delivery) land in the report -
// they are never surfaced as errors.
type Report struct {
	Message   string    `json:"message"`
	TestMode  bool      `json:"test_mode"`
	Outcomes  []Outcome `json:"outcomes"`
	Warnings  []string  `json:"warnings,omitempty"`
	Sent      int       `json:"sent"`
	Simulated int       `json:"simulated"`
	Failed    int       `json:"failed"`
}

type Dispatcher struct {
	launcher Launcher
}

func NewDispatcher(launcher Launcher) *Dispatcher {
	return &Dispatcher{launcher: launcher}
}

// Dispatch sends the alert message to every contact in list order.
// In test mode every channel is simulated. Outside test mode whatsapp &
// email open a composed link, while sms is always reported as simulated -
// live sms delivery needs a backend this system does not have.
func (d *Dispatcher) Dispatch(contacts []models.Contact, snapshot *location.Snapshot, testMode bool) Report {
	report := Report{Message: BuildMessage(snapshot, testMode), TestMode: testMode}

	if len(contacts) == 0 {
		report.Warnings = append(report.Warnings, NoContactsWarning)
		return report
	}

	for _, contact := range contacts {
		report.record(d.dispatchToContact(contact, report.Message, testMode))
	}

	return report
}

func (d *Dispatcher) dispatchToContact(contact models.Contact, message string, testMode bool) Outcome {
	outcome := Outcome{ContactID: contact.ID, Name: contact.Name, Method: contact.Method}

	if testMode {
		logg.Infof("[TEST] would send %q to %v (%v: %v)", message, contact.Name, contact.Method, contact.Value)
		outcome.Status = SIMULATED_OUTCOME
		outcome.Detail = "test mode"
		return outcome
	}

	switch contact.Method {
	case models.WHATSAPP_METHOD:
		return d.handOff(outcome, WhatsAppURL(contact.Value, message))
	case models.EMAIL_METHOD:
		return d.handOff(outcome, MailtoURL(contact.Value, message))
	case models.SMS_METHOD:
		logg.Infof("simulated SMS sent to %v", contact.Name)
		outcome.Status = SIMULATED_OUTCOME
		outcome.Detail = "sms has no live delivery channel"
	default:
		outcome.Status = FAILED_OUTCOME
		outcome.Detail = fmt.Sprintf("unsupported method %q", contact.Method)
	}

	return outcome
}

func (d *Dispatcher) handOff(outcome Outcome, handOffURL string) Outcome {
	if err := d.launcher.Open(handOffURL); err != nil {
		outcome.Status = FAILED_OUTCOME
		outcome.Detail = err.Error()
		return outcome
	}

	outcome.Status = SENT_OUTCOME
	return outcome
}

func (report *Report) record(outcome Outcome) {
	report.Outcomes = append(report.Outcomes, outcome)

	switch outcome.Status {
	case SENT_OUTCOME:
		report.Sent++
	case SIMULATED_OUTCOME:
		report.Simulated++
	case FAILED_OUTCOME:
		report.Failed++
	}
}

// ---------------------------------------------------------------------------------//
// Message & hand-off URL helpers
// --------------------------------------------------------------------------------//

// BuildMessage composes the alert message with the location link embedded
func BuildMessage(snapshot *location.Snapshot, testMode bool) string {
	testModeLabel := ""
	if testMode {
		testModeLabel = "[TEST MODE] "
	}

	return fmt.Sprintf(
		"URGENT! %vSafeHer alert! I need help. My last known location is: %v.",
		testModeLabel, MapsLink(snapshot),
	)
}

// MapsLink returns a maps search link for the snapshot's coordinates
func MapsLink(snapshot *location.Snapshot) string {
	if snapshot == nil {
		return "Location unavailable."
	}

	return fmt.Sprintf(
		"https://www.google.com/maps/search/?api=1&query=%v,%v",
		snapshot.Latitude, snapshot.Longitude,
	)
}

func WhatsAppURL(phone, message string) string {
	return fmt.Sprintf(
		"https://api.whatsapp.com/send?phone=%v&text=%v",
		phone, url.QueryEscape(message),
	)
}

func MailtoURL(address, message string) string {
	return fmt.Sprintf(
		"mailto:%v?subject=%v&body=%v",
		address, url.QueryEscape("SafeHer Alert!"), url.QueryEscape(message),
	)
}

// Summary renders the report as a DispatchEntry record
func (report Report) Summary() *models.DispatchEntry {
	return &models.DispatchEntry{
		TestMode:  report.TestMode,
		Sent:      report.Sent,
		Simulated: report.Simulated,
		Failed:    report.Failed,
		Message:   report.Message,
		Warnings:  strings.Join(report.Warnings, "; "),
	}
}
