package entry

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const (
	layoutISO     = "2006-01-02"
	layoutCompact = "20060102"
)

// ParseTime accepts RFC3339 and the naive ISO timestamps the backend emits
// (no zone, optional fractional seconds).
func ParseTime(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02T15:04:05.999999999", v)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}

// Timestamp is a server-side instant. Empty or null JSON values decode to the
// zero time.
type Timestamp struct {
	time.Time
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte(`null`), nil
	}
	return []byte(fmt.Sprintf("%q", t.UTC().Format(time.RFC3339Nano))), nil
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	var timestamp *string
	if err := json.Unmarshal(b, &timestamp); err != nil {
		return err
	}
	if timestamp == nil || *timestamp == "" {
		t.Time = time.Time{}
		return nil
	}
	var err error
	t.Time, err = ParseTime(*timestamp)
	return err
}

func (t Timestamp) String() string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// Date is a calendar day without a time zone. The zero value means "unset".
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(v string) (Date, error) {
	t, err := time.Parse(layoutISO, strings.TrimSpace(v))
	if err != nil {
		return Date{}, fmt.Errorf("entry: invalid date %q, use YYYY-MM-DD", v)
	}
	return DateOf(t), nil
}

// MustDate is ParseDate for literals known to be valid.
func MustDate(v string) Date {
	d, err := ParseDate(v)
	if err != nil {
		panic(err)
	}
	return d
}

// DateOf returns the calendar day of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Today returns the local calendar day for now.
func Today(now func() time.Time) Date {
	if now == nil {
		now = time.Now
	}
	return DateOf(now().Local())
}

func (d Date) IsZero() bool {
	return d == Date{}
}

func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// AddDays moves the date by n days, crossing month and year boundaries.
func (d Date) AddDays(n int) Date {
	return DateOf(d.Time().AddDate(0, 0, n))
}

func (d Date) Before(o Date) bool {
	return d.Time().Before(o.Time())
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Time().Format(layoutISO)
}

// Compact formats the date as YYYYMMDD.
func (d Date) Compact() string {
	if d.IsZero() {
		return ""
	}
	return d.Time().Format(layoutCompact)
}

// Long renders the date for humans, e.g. "January 15, 2024".
func (d Date) Long() string {
	if d.IsZero() {
		return ""
	}
	return d.Time().Format("January 2, 2006")
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s *string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == nil || *s == "" {
		*d = Date{}
		return nil
	}
	v := *s
	// Tolerate full timestamps; only the day matters.
	if len(v) > len(layoutISO) {
		v = v[:len(layoutISO)]
	}
	parsed, err := ParseDate(v)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
