package notification

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreferencesUnmarshal(t *testing.T) {
	t.Run("empty document falls back to all channels enabled", func(t *testing.T) {
		var prefs Preferences
		require.NoError(t, json.Unmarshal([]byte(`{}`), &prefs))

		assert.True(t, prefs.AvailabilityRequests.Email)
		assert.True(t, prefs.EventNotifications.Email)
		assert.True(t, prefs.ShowReminders.Email)
	})

	t.Run("missing categories default to enabled", func(t *testing.T) {
		var prefs Preferences
		require.NoError(t, json.Unmarshal([]byte(`{"showReminders":{"email":false}}`), &prefs))

		assert.False(t, prefs.ShowReminders.Email)
		assert.True(t, prefs.AvailabilityRequests.Email)
		assert.True(t, prefs.EventNotifications.Email)
	})

	t.Run("malformed document returns an error", func(t *testing.T) {
		var prefs Preferences
		assert.Error(t, json.Unmarshal([]byte(`{"showReminders":"yes"}`), &prefs))
	})
}

func TestPreferencesRoundTrip(t *testing.T) {
	t.Run("known channels survive marshal and unmarshal", func(t *testing.T) {
		original := DefaultPreferences()
		original.EventNotifications.Email = false

		data, err := json.Marshal(original)
		require.NoError(t, err)

		var restored Preferences
		require.NoError(t, json.Unmarshal(data, &restored))
		assert.False(t, restored.EventNotifications.Email)
		assert.True(t, restored.AvailabilityRequests.Email)
		assert.True(t, restored.ShowReminders.Email)
	})

	t.Run("unknown categories written by a newer version are preserved", func(t *testing.T) {
		doc := []byte(`{"showReminders":{"email":false},"pushDigest":{"email":true,"push":false}}`)

		var prefs Preferences
		require.NoError(t, json.Unmarshal(doc, &prefs))

		data, err := json.Marshal(prefs)
		require.NoError(t, err)

		var raw map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(data, &raw))
		assert.JSONEq(t, `{"email":true,"push":false}`, string(raw["pushDigest"]))
		assert.JSONEq(t, `{"email":false}`, string(raw["showReminders"]))
	})
}
