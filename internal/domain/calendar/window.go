package calendar

import (
	"fmt"
	"time"
	_ "time/tzdata" // containers often ship without a zoneinfo database
)

// DefaultTimezone is the calendar's reference zone; doors open at local midnight.
const DefaultTimezone = "Europe/Berlin"

// Window is the 24-day raffle period starting on day 1 of a configured month.
// All evaluation dates are converted to the window's location first.
type Window struct {
	year     int
	month    time.Month
	location *time.Location
}

// NewWindow builds a window. A zero year means "the year of the evaluation date".
func NewWindow(year int, month time.Month, location *time.Location) (Window, error) {
	if month < time.January || month > time.December {
		return Window{}, fmt.Errorf("invalid calendar month %d", month)
	}
	if year < 0 {
		return Window{}, fmt.Errorf("invalid calendar year %d", year)
	}
	if location == nil {
		location = time.UTC
	}
	return Window{year: year, month: month, location: location}, nil
}

// LoadWindow is NewWindow with the location resolved by IANA name.
func LoadWindow(year int, month time.Month, timezone string) (Window, error) {
	if timezone == "" {
		timezone = DefaultTimezone
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return Window{}, fmt.Errorf("load timezone %q: %w", timezone, err)
	}
	return NewWindow(year, month, loc)
}

// Location returns the window's time zone.
func (w Window) Location() *time.Location { return w.location }

// Start returns midnight of day 1 for the window relevant to now.
func (w Window) Start(now time.Time) time.Time {
	year := w.year
	if year == 0 {
		year = now.In(w.location).Year()
	}
	return time.Date(year, w.month, 1, 0, 0, 0, 0, w.location)
}

// End returns the first instant after the window.
func (w Window) End(now time.Time) time.Time {
	return w.Start(now).AddDate(0, 0, DoorCount)
}

// Contains reports whether now falls inside the window.
func (w Window) Contains(now time.Time) bool {
	return !now.Before(w.Start(now)) && now.Before(w.End(now))
}

// Started reports whether the window has begun (it may already be over).
func (w Window) Started(now time.Time) bool {
	return !now.Before(w.Start(now))
}

// Day returns the current door number, or 0 outside the window.
func (w Window) Day(now time.Time) int {
	if !w.Contains(now) {
		return 0
	}
	return now.In(w.location).Day()
}

// latestStart returns the start of the most recent window that began at or
// before now. For a fixed year it is Start. For a zero year, dates before this
// year's window belong to last year's.
func (w Window) latestStart(now time.Time) time.Time {
	start := w.Start(now)
	if w.year == 0 && now.Before(start) {
		start = start.AddDate(-1, 0, 0)
	}
	return start
}

// DoorOpensAt returns the instant door becomes available in the most recent window.
func (w Window) DoorOpensAt(door int, now time.Time) time.Time {
	return w.latestStart(now).AddDate(0, 0, door-1)
}

// DoorOpen reports whether day door of the most recent window has been reached.
func (w Window) DoorOpen(door int, now time.Time) bool {
	if !ValidDoor(door) {
		return false
	}
	return !now.Before(w.DoorOpensAt(door, now))
}

// DayDate formats now as a calendar date in the window's zone.
func (w Window) DayDate(now time.Time) string {
	return now.In(w.location).Format(time.DateOnly)
}
