package utils

import (
	"errors"
	"time"
)

const clockLayout = "15:04"

// ValidateTimeRange checks that start and end are HH:MM clock strings and
// that end falls after start.
func ValidateTimeRange(start, end string) error {
	s, err := time.Parse(clockLayout, start)
	if err != nil {
		return errors.New("start time must be in HH:MM format")
	}
	e, err := time.Parse(clockLayout, end)
	if err != nil {
		return errors.New("end time must be in HH:MM format")
	}
	if !e.After(s) {
		return errors.New("end time must be after start time")
	}
	return nil
}

// SessionEnd combines a booking date with its HH:MM end time.
func SessionEnd(date time.Time, endTime string) time.Time {
	e, err := time.Parse(clockLayout, endTime)
	if err != nil {
		return date
	}
	return time.Date(date.Year(), date.Month(), date.Day(), e.Hour(), e.Minute(), 0, 0, date.Location())
}

// SessionStart combines a booking date with its HH:MM start time.
func SessionStart(date time.Time, startTime string) time.Time {
	s, err := time.Parse(clockLayout, startTime)
	if err != nil {
		return date
	}
	return time.Date(date.Year(), date.Month(), date.Day(), s.Hour(), s.Minute(), 0, 0, date.Location())
}
