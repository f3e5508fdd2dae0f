package availability

import "time"

// Reason classifies why a date or time is not bookable. Reasons are surfaced
// as values, never as errors: resolution is a total function over its inputs.
type Reason string

const (
	ReasonNone                Reason = ""
	ReasonDateBlocked         Reason = "date_blocked"
	ReasonClosedSpecialDay    Reason = "closed_special_day"
	ReasonClosedRegularDay    Reason = "closed_regular_day"
	ReasonOutsideWorkingHours Reason = "outside_working_hours"
	ReasonInsideBreak         Reason = "inside_break"
)

// Source names the schedule layer that decided the outcome, so callers can
// phrase "shop is closed" differently from "this barber is off that day".
type Source string

const (
	SourceBlocked Source = "blocked"
	SourceSpecial Source = "special"
	SourceStaff   Source = "staff"
	SourceShop    Source = "shop"
	SourceNone    Source = "none"
)

// Result is the outcome of Validate. When Valid is true, Schedule holds the
// day schedule that applies. When Valid is false, Reason says why; Schedule is
// still populated for the time-level reasons (outside hours, inside break) so
// callers can show the applicable window.
type Result struct {
	Valid    bool
	Reason   Reason
	Source   Source
	Schedule DaySchedule
}

type query struct {
	in      Inputs
	dateKey string
	weekday time.Weekday
}

// A rule either decides the day outcome or defers to the next rule.
type rule func(q query) (Result, bool)

// dayRules is the fixed precedence chain: blocked date, special-day override,
// staff weekly schedule, shop weekly schedule. Anything that falls through is
// closed.
var dayRules = []rule{
	blockedDateRule,
	specialDayRule,
	staffScheduleRule,
	shopHoursRule,
}

// Validate determines whether date (and, when at is non-nil, the specific time
// of day) is bookable under the supplied schedule snapshot. The day decision
// is made by the first rule in the precedence chain that claims the query; the
// time decision then checks the half-open working window [Start, End) and the
// half-open break window.
func Validate(in Inputs, date time.Time, at *Minutes) Result {
	q := query{in: in, dateKey: date.Format(DateLayout), weekday: date.Weekday()}

	res := Result{Valid: false, Reason: ReasonClosedRegularDay, Source: SourceNone}
	for _, r := range dayRules {
		if decided, ok := r(q); ok {
			res = decided
			break
		}
	}
	if !res.Valid || at == nil {
		return res
	}
	return validateTime(res, *at)
}

func blockedDateRule(q query) (Result, bool) {
	if !q.in.IsBlocked(q.dateKey) {
		return Result{}, false
	}
	return Result{Valid: false, Reason: ReasonDateBlocked, Source: SourceBlocked}, true
}

func specialDayRule(q query) (Result, bool) {
	sd, ok := q.in.Special[q.dateKey]
	if !ok {
		return Result{}, false
	}
	if !sd.Open || !sd.Day.Enabled {
		return Result{Valid: false, Reason: ReasonClosedSpecialDay, Source: SourceSpecial}, true
	}
	return Result{Valid: true, Source: SourceSpecial, Schedule: sd.Day}, true
}

// staffScheduleRule is definitive whenever a staff schedule was supplied and
// has an entry for the weekday: a disabled entry is the barber's day off and
// must not fall back to shop hours. A staff schedule with no entry for the
// weekday defers.
func staffScheduleRule(q query) (Result, bool) {
	if q.in.Staff == nil {
		return Result{}, false
	}
	ds, ok := q.in.Staff[q.weekday]
	if !ok {
		return Result{}, false
	}
	if !ds.Enabled {
		return Result{Valid: false, Reason: ReasonClosedRegularDay, Source: SourceStaff}, true
	}
	return Result{Valid: true, Source: SourceStaff, Schedule: ds}, true
}

func shopHoursRule(q query) (Result, bool) {
	ds, ok := q.in.Shop[q.weekday]
	if !ok {
		return Result{}, false
	}
	if !ds.Enabled {
		return Result{Valid: false, Reason: ReasonClosedRegularDay, Source: SourceShop}, true
	}
	return Result{Valid: true, Source: SourceShop, Schedule: ds}, true
}

func validateTime(day Result, at Minutes) Result {
	s := day.Schedule
	// [Start, End): a booking may not start at closing time.
	if at < s.Start || at >= s.End {
		return Result{Valid: false, Reason: ReasonOutsideWorkingHours, Source: day.Source, Schedule: s}
	}
	if s.Break != nil && at >= s.Break.Start && at < s.Break.End {
		return Result{Valid: false, Reason: ReasonInsideBreak, Source: day.Source, Schedule: s}
	}
	return day
}
