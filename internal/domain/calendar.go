package domain

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// ClockTime is a wall-clock time of day in the calendar's location.
type ClockTime struct {
	Hour   int
	Minute int
}

// ParseClockTime parses "HH:MM".
func ParseClockTime(s string) (ClockTime, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return ClockTime{}, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	return ClockTime{Hour: t.Hour(), Minute: t.Minute()}, nil
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

func (c ClockTime) on(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), c.Hour, c.Minute, 0, 0, day.Location())
}

// MarketCalendar describes one daily session per trading day.
type MarketCalendar struct {
	Location    *time.Location
	Open        ClockTime
	Close       ClockTime
	TradingDays map[time.Weekday]bool
	Holidays    map[string]bool // keyed by YYYY-MM-DD in Location
}

// NewMarketCalendar validates and builds a calendar.
func NewMarketCalendar(loc *time.Location, open, closeAt ClockTime, days []time.Weekday, holidays []string) (*MarketCalendar, error) {
	if loc == nil {
		loc = time.UTC
	}
	if open.Hour*60+open.Minute >= closeAt.Hour*60+closeAt.Minute {
		return nil, fmt.Errorf("session open %s must be before close %s", open, closeAt)
	}
	if len(days) == 0 {
		return nil, fmt.Errorf("calendar needs at least one trading day")
	}
	cal := &MarketCalendar{
		Location:    loc,
		Open:        open,
		Close:       closeAt,
		TradingDays: make(map[time.Weekday]bool, len(days)),
		Holidays:    make(map[string]bool, len(holidays)),
	}
	for _, d := range days {
		cal.TradingDays[d] = true
	}
	for _, h := range holidays {
		if _, err := time.ParseInLocation(dateLayout, h, loc); err != nil {
			return nil, fmt.Errorf("invalid holiday %q: %w", h, err)
		}
		cal.Holidays[h] = true
	}
	return cal, nil
}

// IsTradingDay reports whether day (in Location) has a session.
func (c *MarketCalendar) IsTradingDay(day time.Time) bool {
	day = day.In(c.Location)
	return c.TradingDays[day.Weekday()] && !c.Holidays[day.Format(dateLayout)]
}

// IsOpen reports whether now falls inside a session. Open is inclusive, close exclusive.
func (c *MarketCalendar) IsOpen(now time.Time) bool {
	t := now.In(c.Location)
	if !c.IsTradingDay(t) {
		return false
	}
	return !t.Before(c.Open.on(t)) && t.Before(c.Close.on(t))
}

// Check returns *MarketClosedError carrying the next open when outside a session.
func (c *MarketCalendar) Check(now time.Time) error {
	if c.IsOpen(now) {
		return nil
	}
	return &MarketClosedError{NextOpen: c.NextOpen(now)}
}

// NextOpen returns the first session open strictly after now. It returns the
// zero time when no trading day exists within a year.
func (c *MarketCalendar) NextOpen(now time.Time) time.Time {
	t := now.In(c.Location)
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, c.Location)
	for i := 0; i <= 366; i++ {
		d := day.AddDate(0, 0, i)
		if !c.IsTradingDay(d) {
			continue
		}
		open := c.Open.on(d)
		if open.After(t) {
			return open
		}
	}
	return time.Time{}
}

// SessionClose returns the close of the session on now's calendar date.
func (c *MarketCalendar) SessionClose(now time.Time) time.Time {
	return c.Close.on(now.In(c.Location))
}
