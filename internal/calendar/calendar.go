// Package calendar decides which days of a month are workdays for an
// Israeli work week, excluding an allowlist of Hebrew holidays.
//
// The package has no notion of "now": every query is a pure function of
// the date it is given.
package calendar

import (
	"errors"
	"fmt"
	"sort"
	"time"
	_ "time/tzdata"

	"lunchbudget/internal/core"
)

// DefaultTimeZone is the zone all calendar and time-of-day logic runs in.
const DefaultTimeZone = "Asia/Jerusalem"

// DefaultHolidayNames is the allowlist of events that block work. Names
// must match the generated event names exactly.
var DefaultHolidayNames = []string{
	"Pesach: 1",
	"Pesach: 2",
	"Pesach: 7",
	"Pesach: 8",
	"Erev Shavuot",
	"Shavuot 1",
	"Yom HaAtzma'ut",
	"Erev Rosh Hashana",
	"Rosh Hashana 1",
	"Rosh Hashana 2",
	"Erev Yom Kippur",
	"Yom Kippur",
	"Erev Sukkot",
	"Sukkot: 1",
	"Shmini Atzeret",
	"Simchat Torah",
}

// DefaultWorkweek is Sunday through Thursday.
var DefaultWorkweek = []time.Weekday{
	time.Sunday, time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
}

var (
	ErrNilLocation   = errors.New("calendar location is required")
	ErrEmptyWorkweek = errors.New("calendar workweek is empty")
)

type Config struct {
	Location     *time.Location
	HolidayNames []string
	Workweek     []time.Weekday
}

// DefaultConfig returns the Asia/Jerusalem calendar with the default
// allowlist and work week.
func DefaultConfig() (Config, error) {
	loc, err := time.LoadLocation(DefaultTimeZone)
	if err != nil {
		return Config{}, fmt.Errorf("load %s: %w", DefaultTimeZone, err)
	}
	return Config{
		Location:     loc,
		HolidayNames: append([]string(nil), DefaultHolidayNames...),
		Workweek:     append([]time.Weekday(nil), DefaultWorkweek...),
	}, nil
}

// Calendar is immutable after New and safe for concurrent use.
type Calendar struct {
	loc      *time.Location
	allowed  map[string]struct{}
	workweek [7]bool
}

func New(cfg Config) (*Calendar, error) {
	if cfg.Location == nil {
		return nil, ErrNilLocation
	}
	if len(cfg.Workweek) == 0 {
		return nil, ErrEmptyWorkweek
	}
	c := &Calendar{
		loc:     cfg.Location,
		allowed: make(map[string]struct{}, len(cfg.HolidayNames)),
	}
	for _, name := range cfg.HolidayNames {
		c.allowed[name] = struct{}{}
	}
	for _, wd := range cfg.Workweek {
		if wd < time.Sunday || wd > time.Saturday {
			return nil, fmt.Errorf("invalid weekday %d", wd)
		}
		c.workweek[wd] = true
	}
	return c, nil
}

// Location returns the zone the calendar evaluates dates in.
func (c *Calendar) Location() *time.Location {
	return c.loc
}

// HolidaysInMonth returns the allowlisted holidays of the month, sorted by
// date. Dates are midnight in the calendar's location.
func (c *Calendar) HolidaysInMonth(year int, month time.Month) []core.Holiday {
	var out []core.Holiday
	for _, ev := range monthEvents(year, month) {
		if _, ok := c.allowed[ev.Name]; !ok {
			continue
		}
		out = append(out, core.Holiday{
			Name: ev.Name,
			Date: time.Date(ev.Date.Year(), ev.Date.Month(), ev.Date.Day(), 0, 0, 0, 0, c.loc),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// IsWorkday reports whether date, taken in the calendar's location, is in
// the work week and not an allowlisted holiday.
func (c *Calendar) IsWorkday(date time.Time) bool {
	d := date.In(c.loc)
	if !c.workweek[d.Weekday()] {
		return false
	}
	return c.isWorkday(d, c.HolidaysInMonth(d.Year(), d.Month()))
}

// WorkdaysInMonth counts the workdays from the 1st to the last day of the month.
func (c *Calendar) WorkdaysInMonth(year int, month time.Month) int {
	return c.countFrom(time.Date(year, month, 1, 0, 0, 0, 0, c.loc))
}

// WorkdaysFrom counts the workdays from from's date (inclusive) to the end
// of that same month.
func (c *Calendar) WorkdaysFrom(from time.Time) int {
	return c.countFrom(core.StartOfDay(from.In(c.loc)))
}

func (c *Calendar) countFrom(start time.Time) int {
	holidays := c.HolidaysInMonth(start.Year(), start.Month())
	month := start.Month()
	count := 0
	// as long as we haven't moved to the next month
	for d := start; d.Month() == month; d = d.AddDate(0, 0, 1) {
		if c.isWorkday(d, holidays) {
			count++
		}
	}
	return count
}

func (c *Calendar) isWorkday(d time.Time, holidays []core.Holiday) bool {
	if !c.workweek[d.Weekday()] {
		return false
	}
	for _, h := range holidays {
		if core.SameDay(d, h.Date) {
			return false
		}
	}
	return true
}
