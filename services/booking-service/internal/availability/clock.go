package availability

import (
	"fmt"
	"time"
)

// Minutes is a wall-clock time of day expressed as minutes since midnight.
// All resolver arithmetic happens on this type; times are shop-local and the
// resolver never consults UTC offsets.
type Minutes int

// DateLayout is the calendar-date key format used by blocked dates and
// special-day overrides.
const DateLayout = "2006-01-02"

func ParseClock(s string) (Minutes, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid clock time %q: %w", s, err)
	}
	return Minutes(t.Hour()*60 + t.Minute()), nil
}

// Clock renders the value as HH:MM. Values outside a single day are rendered
// modulo 24h; the resolver never produces such values for valid schedules.
func (m Minutes) Clock() string {
	mm := int(m) % (24 * 60)
	if mm < 0 {
		mm += 24 * 60
	}
	return fmt.Sprintf("%02d:%02d", mm/60, mm%60)
}

// At anchors the time of day onto a calendar date in the given location.
func (m Minutes) At(date time.Time, loc *time.Location) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, loc).Add(time.Duration(m) * time.Minute)
}
