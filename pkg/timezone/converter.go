package timezone

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// maxIterations bounds the fixed-point search in LocalToUTC. Real-world zones
// shift by a few hours at most, so the search settles within two rounds; the
// third is headroom. Local times erased by a DST jump never settle and the
// nearest guess is returned instead.
const maxIterations = 3

// LocalParts is a wall-clock date and time rendered in some zone.
type LocalParts struct {
	Date string
	Time string
}

// LocalToUTC interprets dateStr ("2006-01-02") and timeStr ("15:04") as
// wall-clock time in the given IANA zone and returns the UTC instant a clock
// in that zone would read as that wall-clock time.
//
// An empty zone means the pair already is UTC wall-clock and is parsed as-is.
// Records predating per-user timezones have no zone stored, so this path has
// to stay.
//
// The zone's UTC offset depends on the very instant being solved for, so a
// single offset lookup is not enough around DST transitions. The conversion
// iterates instead: seed with the naive UTC reading, render the guess back
// into the zone, and shift the guess by the wall-clock difference until the
// rendered components match the target. An ambiguous fall-back time resolves
// to the first fixed point found, which is the earlier UTC instant.
func LocalToUTC(dateStr string, timeStr string, zone string) (time.Time, error) {
	target, err := parseWallClock(dateStr, timeStr)
	if err != nil {
		return time.Time{}, err
	}
	if zone == "" {
		return target, nil
	}

	loc, err := time.LoadLocation(zone)
	if err != nil {
		return time.Time{}, fmt.Errorf("unknown timezone %q: %w", zone, err)
	}

	guess := target
	for i := 0; i < maxIterations; i++ {
		rendered, err := renderWallClock(guess, loc)
		if err != nil {
			return time.Time{}, err
		}
		if rendered.Equal(target) {
			return guess, nil
		}
		// Both sides are wall-clock tuples read as UTC, so their difference
		// is exactly the correction the guess needs.
		guess = guess.Add(target.Sub(rendered))
	}

	return guess, nil
}

// UTCToLocalParts renders a UTC instant as wall-clock date and time strings in
// the given zone. An empty zone falls back to the platform's local zone. Used
// to prefill edit forms with the values the user originally typed.
func UTCToLocalParts(t time.Time, zone string) (LocalParts, error) {
	loc := time.Local
	if zone != "" {
		var err error
		loc, err = time.LoadLocation(zone)
		if err != nil {
			return LocalParts{}, fmt.Errorf("unknown timezone %q: %w", zone, err)
		}
	}
	local := t.In(loc)
	return LocalParts{
		Date: local.Format(dateLayout),
		Time: local.Format(timeLayout),
	}, nil
}

// parseWallClock reads a date and time pair as a UTC instant, with no zone
// interpretation. An "24:MM" midnight rollover, as emitted by some zone
// formatting implementations, normalizes to 00:MM of the next day.
func parseWallClock(dateStr string, timeStr string) (time.Time, error) {
	hhmm := strings.SplitN(timeStr, ":", 2)
	if len(hhmm) == 2 && hhmm[0] == "24" {
		day, err := time.Parse(dateLayout, dateStr)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid date %q: %w", dateStr, err)
		}
		minute, err := strconv.Atoi(hhmm[1])
		if err != nil || minute < 0 || minute > 59 {
			return time.Time{}, fmt.Errorf("invalid time %q", timeStr)
		}
		next := day.AddDate(0, 0, 1)
		return time.Date(next.Year(), next.Month(), next.Day(), 0, minute, 0, 0, time.UTC), nil
	}

	parsed, err := time.Parse(dateLayout+" "+timeLayout, dateStr+" "+timeStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date/time %q %q: %w", dateStr, timeStr, err)
	}
	return parsed, nil
}

// renderWallClock formats the instant within loc and reparses the components
// as a UTC tuple, so it can be compared against the conversion target.
func renderWallClock(t time.Time, loc *time.Location) (time.Time, error) {
	local := t.In(loc)
	return parseWallClock(local.Format(dateLayout), local.Format(timeLayout))
}
