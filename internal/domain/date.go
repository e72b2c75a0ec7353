package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// dateLayout is the canonical wire and config format for Date.
const dateLayout = "2006-01-02"

// Date represents a calendar day with no time or zone component.
// Event timestamps are bucketed into dates in UTC.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate creates a Date from its components
func NewDate(year int, month time.Month, day int) Date {
	return Date{Year: year, Month: month, Day: day}
}

// DateOf returns the calendar day containing t, evaluated in UTC
func DateOf(t time.Time) Date {
	y, m, d := t.UTC().Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses a date in YYYY-MM-DD form
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// MustParseDate parses a date in YYYY-MM-DD form and panics on failure
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// String returns the date in YYYY-MM-DD form
func (d Date) String() string {
	return d.Time().Format(dateLayout)
}

// Int returns the date in compact YYYYMMDD integer form
func (d Date) Int() int32 {
	return int32(d.Year*10000 + int(d.Month)*100 + d.Day)
}

// Time returns midnight UTC of the date
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// IsZero reports whether the date is the zero value
func (d Date) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

// AddDays returns the date n days after d (n may be negative)
func (d Date) AddDays(n int) Date {
	return DateOf(d.Time().AddDate(0, 0, n))
}

// Next returns the following calendar day
func (d Date) Next() Date {
	return d.AddDays(1)
}

// Prev returns the preceding calendar day
func (d Date) Prev() Date {
	return d.AddDays(-1)
}

// Before reports whether d is earlier than o
func (d Date) Before(o Date) bool {
	return d.Int() < o.Int()
}

// After reports whether d is later than o
func (d Date) After(o Date) bool {
	return d.Int() > o.Int()
}

// DaysSince returns the number of calendar days from o to d
func (d Date) DaysSince(o Date) int {
	return int(d.Time().Sub(o.Time()) / (24 * time.Hour))
}

// MonthKey returns the YYYY-MM month bucket the date belongs to
func (d Date) MonthKey() string {
	return d.Time().Format("2006-01")
}

// FirstOfMonth returns the first day of the date's month
func (d Date) FirstOfMonth() Date {
	return Date{Year: d.Year, Month: d.Month, Day: 1}
}

// SameMonth reports whether two dates fall in the same calendar month
func (d Date) SameMonth(o Date) bool {
	return d.Year == o.Year && d.Month == o.Month
}

// MarshalJSON encodes the date as a YYYY-MM-DD string
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON decodes a YYYY-MM-DD string
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value implements driver.Valuer so Date maps onto SQL date columns
func (d Date) Value() (driver.Value, error) {
	return d.Time(), nil
}

// Scan implements sql.Scanner for SQL date columns
func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		// Take the driver's calendar day as-is, no zone conversion.
		y, m, day := v.Date()
		*d = Date{Year: y, Month: m, Day: day}
		return nil
	case string:
		parsed, err := ParseDate(v)
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	case []byte:
		parsed, err := ParseDate(string(v))
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Date", src)
	}
}

// MergeDates merges add into existing, returning a new ascending list with
// duplicates removed. The inputs are not mutated; merging the same dates
// again yields an identical list.
func MergeDates(existing []Date, add ...Date) []Date {
	seen := make(map[Date]struct{}, len(existing)+len(add))
	merged := make([]Date, 0, len(existing)+len(add))
	for _, d := range existing {
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		merged = append(merged, d)
	}
	for _, d := range add {
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		merged = append(merged, d)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].Int() < merged[j].Int() })
	return merged
}

// DateInts returns the YYYYMMDD integer encoding of dates, preserving order
func DateInts(dates []Date) []int32 {
	ints := make([]int32, len(dates))
	for i, d := range dates {
		ints[i] = d.Int()
	}
	return ints
}

// DatesStrictlyAscending reports whether dates are in strictly increasing
// order, which also implies there are no duplicates
func DatesStrictlyAscending(dates []Date) bool {
	for i := 1; i < len(dates); i++ {
		if dates[i].Int() <= dates[i-1].Int() {
			return false
		}
	}
	return true
}
