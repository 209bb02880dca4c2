package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Date is a calendar day without time-of-day or zone. Due dates, paid dates,
// start dates and trial end dates are all stored as Postgres DATE.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate normalizes overflowing components the way time.Date does.
func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf returns the calendar day of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate accepts "2006-01-02" and full RFC 3339 timestamps; for the latter
// the calendar day in the timestamp's own offset is kept.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(dateLayout, s); err == nil {
		return DateOf(t), nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return DateOf(t), nil
	}
	return Date{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
}

func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) String() string {
	return d.Time().Format(dateLayout)
}

func (d Date) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

func (d Date) Before(o Date) bool { return d.Time().Before(o.Time()) }
func (d Date) After(o Date) bool  { return d.Time().After(o.Time()) }

// AddMonths moves n calendar months, clamping the day to the last day of the
// target month: 2024-01-31 +1 -> 2024-02-29, +3 -> 2024-04-30.
func (d Date) AddMonths(n int) Date {
	total := int(d.Month) - 1 + n
	year := d.Year + floorDiv(total, 12)
	month := time.Month(total - floorDiv(total, 12)*12 + 1)
	day := d.Day
	if last := daysIn(year, month); day > last {
		day = last
	}
	return Date{Year: year, Month: month, Day: day}
}

// AddYears moves n calendar years; Feb 29 lands on Feb 28 in non-leap years.
func (d Date) AddYears(n int) Date {
	return d.AddMonths(12 * n)
}

// InMonth reports whether d falls inside the given year and month.
func (d Date) InMonth(year int, month time.Month) bool {
	return d.Year == year && d.Month == month
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid date %s: expected a YYYY-MM-DD string", string(data))
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Scan implements sql.Scanner. lib/pq and pgx both hand DATE columns back as
// time.Time; text is accepted for drivers that don't.
func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*d = DateOf(v)
		return nil
	case string:
		parsed, err := ParseDate(v)
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	case []byte:
		return d.Scan(string(v))
	case nil:
		return fmt.Errorf("cannot scan NULL into models.Date")
	default:
		return fmt.Errorf("cannot scan %T into models.Date", src)
	}
}

// Value implements driver.Valuer.
func (d Date) Value() (driver.Value, error) {
	return d.String(), nil
}
