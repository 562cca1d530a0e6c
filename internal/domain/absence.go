package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// AbsenceDateLayout is the wire format for declared absence dates.
const AbsenceDateLayout = "02-01-2006" // DD-MM-YYYY

var (
	ErrInvalidDate = errors.New("invalid date, expected DD-MM-YYYY")
	ErrWindowOrder = errors.New("start date must be before end date")
)

// IsValidationError reports whether err is a user-facing absence validation
// failure, as opposed to an internal one.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidDate) || errors.Is(err, ErrWindowOrder)
}

// ParseAbsenceWindow validates a declared absence period. Both dates must
// parse under AbsenceDateLayout and start must be strictly before end.
// Returned times are UTC midnights.
func ParseAbsenceWindow(startText, endText string) (start, end time.Time, err error) {
	start, err = parseAbsenceDate(startText)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("start: %w", err)
	}
	end, err = parseAbsenceDate(endText)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("end: %w", err)
	}
	if !start.Before(end) {
		return time.Time{}, time.Time{}, ErrWindowOrder
	}
	return start, end, nil
}

func parseAbsenceDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(AbsenceDateLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}
