package timezone

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalToUTC(t *testing.T) {
	t.Run("converts wall-clock time with a standard offset", func(t *testing.T) {
		// Warsaw is UTC+1 in January
		got, err := LocalToUTC("2025-01-15", "18:30", "Europe/Warsaw")

		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, 1, 15, 17, 30, 0, 0, time.UTC), got)
	})

	t.Run("converts wall-clock time during daylight saving", func(t *testing.T) {
		// Warsaw is UTC+2 in July
		got, err := LocalToUTC("2025-07-15", "18:30", "Europe/Warsaw")

		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, 7, 15, 16, 30, 0, 0, time.UTC), got)
	})

	t.Run("empty zone is a naive UTC parse", func(t *testing.T) {
		got, err := LocalToUTC("2025-05-10", "09:15", "")

		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, 5, 10, 9, 15, 0, 0, time.UTC), got)
	})

	t.Run("negative offset zone", func(t *testing.T) {
		// New York is UTC-5 in December
		got, err := LocalToUTC("2025-12-01", "20:00", "America/New_York")

		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, 12, 2, 1, 0, 0, 0, time.UTC), got)
	})

	t.Run("time skipped by spring-forward still terminates", func(t *testing.T) {
		// 2025-03-09 02:30 does not exist in New York: clocks jump from
		// 02:00 EST to 03:00 EDT. The conversion must return some nearby
		// valid instant instead of looping.
		got, err := LocalToUTC("2025-03-09", "02:30", "America/New_York")

		require.NoError(t, err)
		assert.False(t, got.IsZero())
		// The result lands within the transition window around the jump.
		low := time.Date(2025, 3, 9, 6, 0, 0, 0, time.UTC)
		high := time.Date(2025, 3, 9, 8, 0, 0, 0, time.UTC)
		assert.True(t, !got.Before(low) && !got.After(high), "got %v", got)
	})

	t.Run("ambiguous fall-back time resolves to the earlier instant", func(t *testing.T) {
		// 2025-11-02 01:30 occurs twice in New York: 05:30 UTC (EDT) and
		// 06:30 UTC (EST). The earlier occurrence wins, deterministically.
		for i := 0; i < 5; i++ {
			got, err := LocalToUTC("2025-11-02", "01:30", "America/New_York")
			require.NoError(t, err)
			assert.Equal(t, time.Date(2025, 11, 2, 5, 30, 0, 0, time.UTC), got)
		}
	})

	t.Run("hour 24 rolls over to midnight of the next day", func(t *testing.T) {
		got, err := LocalToUTC("2025-01-31", "24:00", "")

		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), got)
	})

	t.Run("malformed zone fails loudly", func(t *testing.T) {
		_, err := LocalToUTC("2025-01-15", "18:30", "Mars/Olympus_Mons")

		assert.Error(t, err)
	})

	t.Run("malformed date fails loudly", func(t *testing.T) {
		_, err := LocalToUTC("15.01.2025", "18:30", "Europe/Warsaw")

		assert.Error(t, err)
	})
}

func TestUTCToLocalParts(t *testing.T) {
	t.Run("renders instant in the given zone", func(t *testing.T) {
		instant := time.Date(2025, 7, 15, 16, 30, 0, 0, time.UTC)

		parts, err := UTCToLocalParts(instant, "Europe/Warsaw")

		require.NoError(t, err)
		assert.Equal(t, "2025-07-15", parts.Date)
		assert.Equal(t, "18:30", parts.Time)
	})

	t.Run("crosses the date line when rendering", func(t *testing.T) {
		instant := time.Date(2025, 12, 2, 1, 0, 0, 0, time.UTC)

		parts, err := UTCToLocalParts(instant, "America/New_York")

		require.NoError(t, err)
		assert.Equal(t, "2025-12-01", parts.Date)
		assert.Equal(t, "20:00", parts.Time)
	})

	t.Run("malformed zone fails loudly", func(t *testing.T) {
		_, err := UTCToLocalParts(time.Now(), "Not/AZone")

		assert.Error(t, err)
	})
}

func TestRoundTrip(t *testing.T) {
	cases := []struct {
		date string
		time string
		zone string
	}{
		{"2025-01-15", "18:30", "Europe/Warsaw"},
		{"2025-07-15", "06:00", "Europe/Warsaw"},
		{"2025-03-08", "02:30", "America/New_York"}, // day before spring forward
		{"2025-11-03", "01:30", "America/New_York"}, // day after fall back
		{"2025-06-21", "23:45", "Asia/Tokyo"},
		{"2025-06-21", "00:15", "Pacific/Auckland"},
		{"2025-02-28", "12:00", "UTC"},
	}

	for _, tc := range cases {
		t.Run(tc.zone+" "+tc.date+" "+tc.time, func(t *testing.T) {
			instant, err := LocalToUTC(tc.date, tc.time, tc.zone)
			require.NoError(t, err)

			parts, err := UTCToLocalParts(instant, tc.zone)
			require.NoError(t, err)

			assert.Equal(t, tc.date, parts.Date)
			assert.Equal(t, tc.time, parts.Time)
		})
	}
}
