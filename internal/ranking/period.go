package ranking

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

// ErrInvalidPeriod is returned for period keys that are not YYYY-MM or YYYY-MM-DD.
var ErrInvalidPeriod = errors.New("invalid ranking period")

var periodPattern = regexp.MustCompile(`^\d{4}-\d{2}(-\d{2})?$`)

// PeriodStart parses a period key and returns the first instant it covers.
func PeriodStart(period string) (time.Time, error) {
	if !periodPattern.MatchString(period) {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, period)
	}
	layout := "2006-01"
	if len(period) == len("2006-01-02") {
		layout = "2006-01-02"
	}
	t, err := time.Parse(layout, period)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, period)
	}
	return t, nil
}

// CurrentPeriod returns the YYYY-MM key of the month containing t.
func CurrentPeriod(t time.Time) string {
	return t.UTC().Format("2006-01")
}
