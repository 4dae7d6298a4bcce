package model

import (
	"fmt"
	"strings"
	"time"
)

// dateLayout is the ISO-8601 calendar date format used on the wire
const dateLayout = "2006-01-02"

// Date is a civil calendar date without time or zone
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate builds a Date, rejecting days that do not exist in the given month
func NewDate(year, month, day int) (Date, bool) {
	if year < 1 || month < 1 || month > 12 || day < 1 {
		return Date{}, false
	}
	if day > daysIn(year, time.Month(month)) {
		return Date{}, false
	}
	return Date{Year: year, Month: time.Month(month), Day: day}, true
}

// ParseDate parses a YYYY-MM-DD string
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}

// AddMonths shifts the date by n calendar months, clamping the day to the
// last valid day of the target month (Jan 31 + 1 month = Feb 28 or 29).
func (d Date) AddMonths(n int) Date {
	total := d.Year*12 + int(d.Month) - 1 + n
	year := total / 12
	month := time.Month(total%12 + 1)

	day := d.Day
	if last := daysIn(year, month); day > last {
		day = last
	}
	return Date{Year: year, Month: month, Day: day}
}

// Before reports whether d is strictly earlier than other
func (d Date) Before(other Date) bool {
	return d.time().Before(other.time())
}

// String renders the date as YYYY-MM-DD
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	parsed, err := ParseDate(strings.Trim(string(b), `"`))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// daysIn returns the number of days in the month
func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
