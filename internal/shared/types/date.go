package types

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// dateLayout is the canonical ISO form every Date is stored in.
const dateLayout = "2006-01-02"

// lenientLayouts are the formats accepted on input; free-text sources
// (AI output, form fields) are not always strict ISO.
var lenientLayouts = []string{
	dateLayout,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006/01/02",
	"02/01/2006",
}

// Date is a civil calendar date in canonical YYYY-MM-DD form, with no time
// zone or clock component. The zero value means "absent".
type Date string

// ParseDate coerces a date-like string into a canonical Date. It accepts ISO
// dates as well as a few common timestamp forms, normalizing them all to
// YYYY-MM-DD.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	for _, layout := range lenientLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Date(t.Format(dateLayout)), nil
		}
	}
	return "", fmt.Errorf("invalid date %q", s)
}

// DateOf truncates a time to its calendar date.
func DateOf(t time.Time) Date {
	return Date(t.Format(dateLayout))
}

// String returns the canonical YYYY-MM-DD representation
func (d Date) String() string {
	return string(d)
}

// IsZero checks if the date is absent
func (d Date) IsZero() bool {
	return d == ""
}

// Time returns the date at UTC midnight. A zero or malformed Date yields the
// zero time.
func (d Date) Time() time.Time {
	t, err := time.Parse(dateLayout, string(d))
	if err != nil {
		return time.Time{}
	}
	return t
}

// AddDays returns the date shifted by n calendar days.
func (d Date) AddDays(n int) Date {
	if d.IsZero() {
		return d
	}
	return DateOf(d.Time().AddDate(0, 0, n))
}

// Before reports whether d is earlier than other. Canonical ISO form makes
// this a plain string comparison.
func (d Date) Before(other Date) bool {
	return d < other
}

// Value implements driver.Valuer for database serialization
func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.Time(), nil
}

// Scan implements sql.Scanner for database deserialization
func (d *Date) Scan(value interface{}) error {
	if value == nil {
		*d = ""
		return nil
	}
	switch v := value.(type) {
	case time.Time:
		*d = DateOf(v)
	case string:
		parsed, err := ParseDate(v)
		if err != nil {
			return err
		}
		*d = parsed
	case []byte:
		parsed, err := ParseDate(string(v))
		if err != nil {
			return err
		}
		*d = parsed
	default:
		return fmt.Errorf("cannot scan %T into Date", value)
	}
	return nil
}
