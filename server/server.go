package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/go-playground/validator"
	"github.com/gorilla/mux"
	"github.com/safeher/safeher/server/alert"
	"github.com/safeher/safeher/server/cron"
	"github.com/safeher/safeher/server/fakecall"
	"github.com/safeher/safeher/server/location"
	"github.com/safeher/safeher/server/logger"
	"github.com/safeher/safeher/server/models"
	"github.com/safeher/safeher/server/sos"
	"github.com/safeher/safeher/server/voice"
	"github.com/safeher/safeher/shared"
	"github.com/spf13/viper"
)

var (
	logg     = logger.NewLogger()
	validate = validator.New()
)

// app holds the wired collaborators behind the HTTP surface
type app struct {
	config        *shared.ServerConfig
	forceTestMode bool
	store         *models.Store
	contacts      *models.ContactStore
	settings      *models.SettingsStore
	tracker       *location.Tracker
	engine        *sos.Engine
	dispatcher    *alert.Dispatcher
	voiceListener *voice.Listener
	fakeCall      *fakecall.Simulator
	cronScheduler *gocron.Scheduler
}

// Start wires up the safeher service & serves the API until interrupted.
// With testMode set, alert dispatch simulates every channel for the whole
// run, regardless of the persisted testMode setting.
func Start(config *viper.Viper, devMode, testMode bool) {
	serverConfig := validatedConfig(config)
	configDir := configDirectory(devMode)

	db, err := models.Open(serverConfig.Sqlite.PassPhrase, configDir)
	fatalOnError(err)
	fatalOnError(models.AutoMigrate(db))

	safeherApp := newApp(serverConfig, models.NewStore(db))
	safeherApp.forceTestMode = testMode
	if testMode {
		logg.Info("--test passed: alerts will simulate sending for this run")
	}

	// Fetch an initial position & apply the persisted settings,
	// the same way the app behaves on first load
	safeherApp.tracker.RefreshAsync()
	safeherApp.applySettings(safeherApp.settings.Load())

	safeherApp.scheduleLocationRefresh()
	safeherApp.cronScheduler.StartAsync()

	httpServer := &http.Server{
		Handler: safeherApp.router(),
		Addr:    fmt.Sprintf(":%v", serverConfig.SafeHer.Listener.Port),
	}
	go serve(httpServer)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	safeherApp.cleanup(httpServer)
}

func newApp(serverConfig *shared.ServerConfig, store *models.Store) *app {
	safeherApp := &app{
		config:   serverConfig,
		store:    store,
		contacts: models.NewContactStore(store),
		settings: models.NewSettingsStore(store),
	}

	safeherApp.tracker = location.NewTracker(
		locationProvider(serverConfig.Location),
		time.Duration(serverConfig.Location.TimeoutSeconds)*time.Second,
		serverConfig.Location.FallbackLat,
		serverConfig.Location.FallbackLng,
	)

	safeherApp.dispatcher = alert.NewDispatcher(alert.OSLauncher{})

	safeherApp.engine = sos.NewEngine(
		serverConfig.SafeHer.CountdownSeconds,
		sos.DefaultTickInterval,
		safeherApp.tracker,
		safeherApp.dispatchAlerts,
	)

	safeherApp.voiceListener = voice.NewListener(
		voiceRecognizer(serverConfig.Voice),
		serverConfig.Voice.TriggerPhrase,
		func() { safeherApp.armSOS() },
		safeherApp.disableVoiceActivation,
	)

	safeherApp.fakeCall = fakecall.NewSimulator(
		fakecall.NewExecPlayer(serverConfig.FakeCall.PlayerCommand),
		serverConfig.FakeCall.RingtoneURL,
		func() bool { return safeherApp.settings.Load().FakeCall },
		nil,
	)

	safeherApp.cronScheduler = cron.NewCronScheduler(serverConfig.SafeHer.Cron.TimeZone)

	return safeherApp
}

func (safeherApp *app) router() *mux.Router {
	router := mux.NewRouter()
	router.Use(loggingMiddleware, jsonContentTypeMiddleware)

	router.HandleFunc("/health", safeherApp.healthCheck).Methods("GET")

	router.HandleFunc("/contacts", safeherApp.listContacts).Methods("GET")
	router.HandleFunc("/contacts", safeherApp.createContact).Methods("POST")
	router.HandleFunc("/contacts/{id}", safeherApp.updateContact).Methods("PUT")
	router.HandleFunc("/contacts/{id}", safeherApp.deleteContact).Methods("DELETE")

	router.HandleFunc("/settings", safeherApp.getSettings).Methods("GET")
	router.HandleFunc("/settings", safeherApp.saveSettings).Methods("PUT")
	router.HandleFunc("/settings/apply", safeherApp.reapplySettings).Methods("POST")

	router.HandleFunc("/location", safeherApp.currentLocation).Methods("GET")
	router.HandleFunc("/location/refresh", safeherApp.refreshLocation).Methods("POST")

	router.HandleFunc("/sos", safeherApp.sosSession).Methods("GET")
	router.HandleFunc("/sos", safeherApp.triggerSOS).Methods("POST")
	router.HandleFunc("/sos", safeherApp.cancelSOS).Methods("DELETE")

	router.HandleFunc("/fake-call", safeherApp.triggerFakeCall).Methods("POST")
	router.HandleFunc("/fake-call/accept", safeherApp.acceptFakeCall).Methods("POST")
	router.HandleFunc("/fake-call/decline", safeherApp.declineFakeCall).Methods("POST")

	router.HandleFunc("/dispatches", safeherApp.listDispatches).Methods("GET")

	return router
}

// dispatchAlerts is invoked by the SOS engine when the countdown expires.
// It reads the contact list & snapshot as of dispatch time.
func (safeherApp *app) dispatchAlerts() {
	settings := safeherApp.settings.Load()

	report := safeherApp.dispatcher.Dispatch(
		safeherApp.contacts.List(),
		safeherApp.tracker.Current(),
		settings.TestMode || safeherApp.forceTestMode,
	)

	if err := safeherApp.store.CreateDispatchEntry(report.Summary()); err != nil {
		logg.Errorf("unable to record dispatch: %v", err)
	}

	for _, warning := range report.Warnings {
		logg.Warn(warning)
	}
	logg.Infof("alert dispatch finished: %v sent, %v simulated, %v failed",
		report.Sent, report.Simulated, report.Failed)
}

func (safeherApp *app) armSOS() (sos.Session, error) {
	return safeherApp.engine.Arm()
}

// applySettings re-evaluates the features that depend on settings. It is
// callable independently of save.
func (safeherApp *app) applySettings(settings models.Settings) {
	if settings.VoiceActivation && !safeherApp.voiceListener.Listening() {
		if err := safeherApp.voiceListener.Start(); err != nil {
			logg.Warnf("voice activation unavailable: %v", err)
		}
	} else if !settings.VoiceActivation && safeherApp.voiceListener.Listening() {
		safeherApp.voiceListener.Stop()
	}

	if settings.TestMode {
		logg.Info("TEST MODE ACTIVE: alerts will simulate sending")
	}
}

// disableVoiceActivation flips the voice setting off when the capability
// is unsupported or fails unrecoverably
func (safeherApp *app) disableVoiceActivation(reason string) {
	logg.Warnf("disabling voice activation: %v", reason)

	settings := safeherApp.settings.Load()
	if !settings.VoiceActivation {
		return
	}

	settings.VoiceActivation = false
	if err := safeherApp.settings.Save(settings); err != nil {
		logg.Errorf("unable to persist voice activation setting: %v", err)
	}
}

func (safeherApp *app) scheduleLocationRefresh() {
	schedule := safeherApp.config.SafeHer.Cron.LocationRefreshSchedule
	if schedule == "" {
		return
	}

	_, err := safeherApp.cronScheduler.Cron(schedule).Tag("location_refresh").Do(func() {
		safeherApp.tracker.Refresh(context.Background())
	})
	if err != nil {
		logg.Errorf("unable to schedule location refresh: %v", err)
	}
}

// ---------------------------------------------------------------------------------//
// Capability wiring helpers
// --------------------------------------------------------------------------------//

func locationProvider(config shared.LocationConfig) location.Provider {
	if config.Endpoint == "" {
		return nil
	}

	return location.NewHTTPProvider(config.Endpoint)
}

func voiceRecognizer(config shared.VoiceConfig) voice.Recognizer {
	if config.TranscriptPath == "" {
		return nil
	}

	transcriptPath := config.TranscriptPath
	return voice.NewStreamRecognizer(func() (io.ReadCloser, error) {
		return os.Open(transcriptPath)
	})
}
