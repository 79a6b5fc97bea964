package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/iho/orderledger/internal/domain"
)

// CalendarFile is the YAML layout of a market calendar:
//
//	timezone: America/New_York
//	open: "09:30"
//	close: "16:00"
//	trading_days: [mon, tue, wed, thu, fri]
//	holidays: ["2025-07-04", "2025-12-25"]
type CalendarFile struct {
	Timezone    string   `yaml:"timezone"`
	Open        string   `yaml:"open"`
	Close       string   `yaml:"close"`
	TradingDays []string `yaml:"trading_days"`
	Holidays    []string `yaml:"holidays"`
}

var weekdays = map[string]time.Weekday{
	"sun": time.Sunday, "sunday": time.Sunday,
	"mon": time.Monday, "monday": time.Monday,
	"tue": time.Tuesday, "tuesday": time.Tuesday,
	"wed": time.Wednesday, "wednesday": time.Wednesday,
	"thu": time.Thursday, "thursday": time.Thursday,
	"fri": time.Friday, "friday": time.Friday,
	"sat": time.Saturday, "saturday": time.Saturday,
}

// LoadCalendar reads a market calendar from path. An empty path yields the
// default US equities session.
func LoadCalendar(path string) (*domain.MarketCalendar, error) {
	if path == "" {
		return DefaultCalendar()
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read calendar file: %w", err)
	}
	return ParseCalendar(raw)
}

// ParseCalendar builds a calendar from YAML bytes.
func ParseCalendar(raw []byte) (*domain.MarketCalendar, error) {
	var f CalendarFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse calendar yaml: %w", err)
	}

	loc := time.UTC
	if f.Timezone != "" {
		l, err := time.LoadLocation(f.Timezone)
		if err != nil {
			return nil, fmt.Errorf("incorrect 'timezone' in calendar: %w", err)
		}
		loc = l
	}

	open, err := domain.ParseClockTime(f.Open)
	if err != nil {
		return nil, fmt.Errorf("incorrect 'open' in calendar: %w", err)
	}
	closeAt, err := domain.ParseClockTime(f.Close)
	if err != nil {
		return nil, fmt.Errorf("incorrect 'close' in calendar: %w", err)
	}

	days := make([]time.Weekday, 0, len(f.TradingDays))
	for _, d := range f.TradingDays {
		wd, ok := weekdays[strings.ToLower(strings.TrimSpace(d))]
		if !ok {
			return nil, fmt.Errorf("incorrect trading day %q in calendar", d)
		}
		days = append(days, wd)
	}

	return domain.NewMarketCalendar(loc, open, closeAt, days, f.Holidays)
}

// DefaultCalendar is a Monday to Friday 09:30-16:00 New York session.
func DefaultCalendar() (*domain.MarketCalendar, error) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		return nil, fmt.Errorf("load default calendar timezone: %w", err)
	}
	return domain.NewMarketCalendar(
		loc,
		domain.ClockTime{Hour: 9, Minute: 30},
		domain.ClockTime{Hour: 16},
		[]time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday},
		nil,
	)
}
