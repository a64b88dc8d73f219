package models

import (
	"fmt"
	"time"
)

func setString(dst *string, c Change) error {
	switch c.Op {
	case OpSet:
		v, ok := c.Value.(string)
		if !ok {
			return badValue(c)
		}
		*dst = v
	case OpUnset:
		*dst = ""
	default:
		return unsupported(c)
	}
	return nil
}

func setTime(dst *time.Time, c Change) error {
	switch c.Op {
	case OpSet:
		v, ok := c.Value.(time.Time)
		if !ok {
			return badValue(c)
		}
		*dst = v
	case OpUnset:
		*dst = time.Time{}
	default:
		return unsupported(c)
	}
	return nil
}

func unsupported(c Change) error {
	return fmt.Errorf("models: op %d not supported on field %q", c.Op, c.Field)
}

func badValue(c Change) error {
	return fmt.Errorf("models: unexpected value %T for field %q", c.Value, c.Field)
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseDate accepts a calendar date or a full timestamp.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

var shortWeekdays = [...]string{"вс", "пн", "вт", "ср", "чт", "пт", "сб"}

// ShortWeekday returns the two-letter weekday label stored in the day field.
func ShortWeekday(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return shortWeekdays[t.Weekday()]
}
