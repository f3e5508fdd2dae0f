package availability

import "time"

// Span is a half-open interval [Start, End) within a single day.
type Span struct {
	Start Minutes
	End   Minutes
}

// DaySchedule is the normalized working-hours definition for one day.
// Adapters (storage rows, gRPC schedule config) produce this shape before any
// resolver logic runs; the resolver itself never sees raw table shapes.
type DaySchedule struct {
	Enabled bool
	Start   Minutes
	End     Minutes
	// Break, when set, is a single unavailable sub-interval inside the working
	// window: Start <= Break.Start < Break.End <= End.
	Break *Span
}

// WeeklySchedule maps weekdays to day schedules. A missing weekday means
// closed for that source (the resolver may still defer to a lower-precedence
// source, see Validate).
type WeeklySchedule map[time.Weekday]DaySchedule

// SpecialDay overrides the weekly schedules for one exact calendar date.
// Open=false closes the date even if the weekday would otherwise be open.
type SpecialDay struct {
	Open bool
	Day  DaySchedule
}

// Booking is an already-committed reservation occupying [Start, Start+Duration).
type Booking struct {
	Start    Minutes
	Duration Minutes
}

// Inputs is the immutable snapshot the resolver evaluates. Callers fetch it
// fresh before each resolution; the resolver holds no state and performs no
// mutation. Staff is nil when no staff member was requested; when a staff
// member is requested the adapter selects the right schedule for their unit.
type Inputs struct {
	Blocked map[string]struct{}
	Special map[string]SpecialDay
	Staff   WeeklySchedule
	Shop    WeeklySchedule
}

// IsBlocked reports whether the date key is in the blocked set.
func (in Inputs) IsBlocked(dateKey string) bool {
	_, ok := in.Blocked[dateKey]
	return ok
}
