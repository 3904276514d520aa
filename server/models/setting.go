package models

import (
	"encoding/json"
	"errors"
)

const SettingsRecordKey = "safeher_settings"

// Settings are the three user preferences, persisted atomically as one record
type Settings struct {
	VoiceActivation bool `json:"voiceActivation"`
	FakeCall        bool `json:"fakeCall"`
	TestMode        bool `json:"testMode"`
}

func DefaultSettings() Settings {
	return Settings{}
}

type SettingsStore struct {
	records *Store
}

func NewSettingsStore(records *Store) *SettingsStore {
	return &SettingsStore{records: records}
}

// Load returns the persisted settings. A missing or malformed record
// falls back to the defaults - it is never fatal.
func (ss *SettingsStore) Load() Settings {
	value, err := ss.records.GetRecord(SettingsRecordKey)
	if errors.Is(err, ErrRecordNotFound) {
		return DefaultSettings()
	}

	if err != nil {
		logg.Warnf("unable to load settings, using defaults: %v", err)
		return DefaultSettings()
	}

	settings := Settings{}
	if err := json.Unmarshal([]byte(value), &settings); err != nil {
		logg.Warnf("malformed settings record, using defaults: %v", err)
		return DefaultSettings()
	}

	return settings
}

// Save persists the settings as one record
func (ss *SettingsStore) Save(settings Settings) error {
	value, err := json.Marshal(settings)
	if err != nil {
		return err
	}

	return ss.records.PutRecord(SettingsRecordKey, string(value))
}
