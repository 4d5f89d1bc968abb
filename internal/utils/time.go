package utils

import (
	"fmt"
	"time"

	"github.com/julianstephens/habitpet/internal/constants"
)

// FormatDate returns the local calendar date (YYYY-MM-DD) of t.
// The date is taken in t's own location, never converted to UTC.
func FormatDate(t time.Time) string {
	return t.Format(constants.DateFormat)
}

// Today returns the local calendar date for the clock's current time.
func Today(c Clock) string {
	return FormatDate(c.Now())
}

// LoadLocation loads a timezone location from an IANA timezone name.
// If the timezone is "Local" or empty, it returns the system's local timezone.
func LoadLocation(timezone string) (*time.Location, error) {
	if timezone == "" || timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(timezone)
}

// ParseDate parses a date string in the standard format (YYYY-MM-DD).
// The result is midnight UTC and is only meant for calendar arithmetic.
func ParseDate(dateStr string) (time.Time, error) {
	return time.Parse(constants.DateFormat, dateStr)
}

// ParseDateInLocation parses a date string (YYYY-MM-DD) in the specified timezone.
func ParseDateInLocation(dateStr string, loc *time.Location) (time.Time, error) {
	t, err := time.Parse(constants.DateFormat, dateStr)
	if err != nil {
		return time.Time{}, err
	}
	// Return the date at midnight in the specified timezone
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc), nil
}

// AddDays shifts a date string by n calendar days.
func AddDays(dateStr string, n int) (string, error) {
	t, err := ParseDate(dateStr)
	if err != nil {
		return "", fmt.Errorf("invalid date %q: %w", dateStr, err)
	}
	return t.AddDate(0, 0, n).Format(constants.DateFormat), nil
}

// MustAddDays is AddDays for dates already known to be valid.
func MustAddDays(dateStr string, n int) string {
	d, err := AddDays(dateStr, n)
	if err != nil {
		panic(err)
	}
	return d
}

// DaysBetween returns the number of calendar days from start to end.
// The result is negative when end is before start.
func DaysBetween(start, end string) (int, error) {
	s, err := ParseDate(start)
	if err != nil {
		return 0, fmt.Errorf("invalid date %q: %w", start, err)
	}
	e, err := ParseDate(end)
	if err != nil {
		return 0, fmt.Errorf("invalid date %q: %w", end, err)
	}
	return int(e.Sub(s).Hours() / 24), nil
}

// ParseTime parses a time string in the standard format (HH:MM).
func ParseTime(timeStr string) (time.Time, error) {
	return time.Parse(constants.TimeFormat, timeStr)
}

// ParseTimeToMinutes parses a time string (HH:MM) and returns the number of minutes from midnight.
func ParseTimeToMinutes(timeStr string) (int, error) {
	t, err := ParseTime(timeStr)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}

// MinutesOfDay returns the number of minutes since local midnight for t.
func MinutesOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// ValidateTimeFormat checks if the string matches the standard time format.
func ValidateTimeFormat(timeStr string) bool {
	_, err := ParseTime(timeStr)
	return err == nil
}

// ValidateDateFormat checks if the string matches the standard date format.
func ValidateDateFormat(dateStr string) bool {
	_, err := ParseDate(dateStr)
	return err == nil
}
