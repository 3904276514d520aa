package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsDefaultsWhenAbsent(t *testing.T) {
	store, err := InitializeTestStore(t.TempDir())
	require.Nil(t, err)

	settings := NewSettingsStore(store)
	assert.Equal(t, Settings{}, settings.Load())
}

func TestSettingsSaveAndReload(t *testing.T) {
	store, err := InitializeTestStore(t.TempDir())
	require.Nil(t, err)

	settings := NewSettingsStore(store)

	saved := Settings{VoiceActivation: true, TestMode: true}
	require.Nil(t, settings.Save(saved))

	assert.Equal(t, saved, settings.Load())
	assert.Equal(t, saved, NewSettingsStore(store).Load(), "a fresh store should see the persisted settings")
}

func TestSettingsMalformedRecordFallsBackToDefaults(t *testing.T) {
	store, err := InitializeTestStore(t.TempDir())
	require.Nil(t, err)

	require.Nil(t, store.PutRecord(SettingsRecordKey, "]["))

	settings := NewSettingsStore(store)
	assert.Equal(t, DefaultSettings(), settings.Load())
}
