package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"
)

// Date is a calendar day without a time-of-day component, serialized as
// YYYY-MM-DD in JSON and stored in a DATE column.
type Date struct {
	time.Time
}

// ParseDate parses a YYYY-MM-DD string into a Date.
func ParseDate(value string) (Date, error) {
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", value)
	}
	return Date{Time: t.UTC()}, nil
}

// NewDate constructs a Date from year, month, and day in UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// At combines the date with a clock time into a UTC instant.
func (d Date) At(c ClockTime) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), c.Hour(), c.Minute(), 0, 0, time.UTC)
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

// MarshalJSON implements the json.Marshaler interface.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format(dateLayout))
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (d *Date) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid date: expected a YYYY-MM-DD string")
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Scan implements the sql.Scanner interface.
func (d *Date) Scan(value any) error {
	switch typed := value.(type) {
	case time.Time:
		*d = Date{Time: time.Date(typed.Year(), typed.Month(), typed.Day(), 0, 0, 0, 0, time.UTC)}
		return nil
	case []byte:
		return d.scanString(string(typed))
	case string:
		return d.scanString(typed)
	case nil:
		*d = Date{}
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Date", value)
	}
}

func (d *Date) scanString(value string) error {
	if len(value) > len(dateLayout) {
		value = value[:len(dateLayout)]
	}
	parsed, err := ParseDate(value)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value implements the driver.Valuer interface.
func (d Date) Value() (driver.Value, error) {
	return d.Time, nil
}

// ClockTime is a time of day with minute precision, serialized as HH:MM in
// JSON and stored in a TIME column. The underlying value counts minutes
// since midnight.
type ClockTime int

// ParseClockTime parses an HH:MM string into a ClockTime.
func ParseClockTime(value string) (ClockTime, error) {
	t, err := time.Parse(clockLayout, value)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: expected HH:MM", value)
	}
	return ClockTime(t.Hour()*60 + t.Minute()), nil
}

// Hour returns the hour component in the range 0-23.
func (c ClockTime) Hour() int {
	return int(c) / 60
}

// Minute returns the minute component in the range 0-59.
func (c ClockTime) Minute() int {
	return int(c) % 60
}

// Minutes returns the total minutes since midnight.
func (c ClockTime) Minutes() int {
	return int(c)
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

// MarshalJSON implements the json.Marshaler interface.
func (c ClockTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (c *ClockTime) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid time: expected an HH:MM string")
	}
	parsed, err := ParseClockTime(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Scan implements the sql.Scanner interface. Postgres returns TIME columns
// as HH:MM:SS strings.
func (c *ClockTime) Scan(value any) error {
	switch typed := value.(type) {
	case time.Time:
		*c = ClockTime(typed.Hour()*60 + typed.Minute())
		return nil
	case []byte:
		return c.scanString(string(typed))
	case string:
		return c.scanString(typed)
	default:
		return fmt.Errorf("cannot scan %T into ClockTime", value)
	}
}

func (c *ClockTime) scanString(value string) error {
	if len(value) > len(clockLayout) {
		value = value[:len(clockLayout)]
	}
	parsed, err := ParseClockTime(value)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Value implements the driver.Valuer interface.
func (c ClockTime) Value() (driver.Value, error) {
	return fmt.Sprintf("%02d:%02d:00", c.Hour(), c.Minute()), nil
}
