package availability

import (
	"testing"
	"time"
)

// 2026-03-02 is a Monday.
var monday = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func mins(t *testing.T, clock string) Minutes {
	t.Helper()
	m, err := ParseClock(clock)
	if err != nil {
		t.Fatalf("ParseClock(%q): %v", clock, err)
	}
	return m
}

func minsPtr(t *testing.T, clock string) *Minutes {
	t.Helper()
	m := mins(t, clock)
	return &m
}

func openDay(t *testing.T, start, end string) DaySchedule {
	t.Helper()
	return DaySchedule{Enabled: true, Start: mins(t, start), End: mins(t, end)}
}

func openDayWithBreak(t *testing.T, start, end, breakStart, breakEnd string) DaySchedule {
	t.Helper()
	ds := openDay(t, start, end)
	ds.Break = &Span{Start: mins(t, breakStart), End: mins(t, breakEnd)}
	return ds
}

func TestValidate_BlockedDateBeatsSpecialOpen(t *testing.T) {
	key := monday.Format(DateLayout)
	in := Inputs{
		Blocked: map[string]struct{}{key: {}},
		Special: map[string]SpecialDay{key: {Open: true, Day: openDay(t, "09:00", "18:00")}},
		Shop:    WeeklySchedule{time.Monday: openDay(t, "09:00", "18:00")},
	}

	res := Validate(in, monday, nil)
	if res.Valid {
		t.Fatal("expected blocked date to be invalid")
	}
	if res.Reason != ReasonDateBlocked {
		t.Fatalf("expected reason %q, got %q", ReasonDateBlocked, res.Reason)
	}
	if res.Source != SourceBlocked {
		t.Fatalf("expected source %q, got %q", SourceBlocked, res.Source)
	}
}

func TestValidate_SpecialClosedOverridesOpenWeekday(t *testing.T) {
	key := monday.Format(DateLayout)
	in := Inputs{
		Special: map[string]SpecialDay{key: {Open: false}},
		Shop:    WeeklySchedule{time.Monday: openDay(t, "09:00", "18:00")},
	}

	res := Validate(in, monday, nil)
	if res.Valid {
		t.Fatal("expected special closed day to be invalid")
	}
	if res.Reason != ReasonClosedSpecialDay {
		t.Fatalf("expected reason %q, got %q", ReasonClosedSpecialDay, res.Reason)
	}
}

func TestValidate_SpecialOpenUsesOverrideWindow(t *testing.T) {
	key := monday.Format(DateLayout)
	in := Inputs{
		Special: map[string]SpecialDay{key: {Open: true, Day: openDay(t, "10:00", "14:00")}},
		Shop:    WeeklySchedule{time.Monday: openDay(t, "09:00", "18:00")},
	}

	res := Validate(in, monday, minsPtr(t, "09:30"))
	if res.Valid {
		t.Fatal("expected 09:30 to be outside the special-day window")
	}
	if res.Reason != ReasonOutsideWorkingHours {
		t.Fatalf("expected reason %q, got %q", ReasonOutsideWorkingHours, res.Reason)
	}
	if res.Source != SourceSpecial {
		t.Fatalf("expected source %q, got %q", SourceSpecial, res.Source)
	}

	res = Validate(in, monday, minsPtr(t, "10:00"))
	if !res.Valid {
		t.Fatalf("expected 10:00 to be valid, got reason %q", res.Reason)
	}
	if res.Schedule.End != mins(t, "14:00") {
		t.Fatalf("expected resolved schedule to carry the override window, got end %s", res.Schedule.End.Clock())
	}
}

func TestValidate_WorkingHoursBoundaryIsHalfOpen(t *testing.T) {
	in := Inputs{Shop: WeeklySchedule{time.Monday: openDay(t, "09:00", "18:00")}}

	res := Validate(in, monday, minsPtr(t, "18:00"))
	if res.Valid || res.Reason != ReasonOutsideWorkingHours {
		t.Fatalf("expected 18:00 to fail with %q, got valid=%v reason=%q", ReasonOutsideWorkingHours, res.Valid, res.Reason)
	}

	res = Validate(in, monday, minsPtr(t, "17:59"))
	if !res.Valid {
		t.Fatalf("expected 17:59 to be valid, got reason %q", res.Reason)
	}

	res = Validate(in, monday, minsPtr(t, "08:59"))
	if res.Valid || res.Reason != ReasonOutsideWorkingHours {
		t.Fatalf("expected 08:59 to fail with %q, got valid=%v reason=%q", ReasonOutsideWorkingHours, res.Valid, res.Reason)
	}
}

func TestValidate_BreakBoundaryIsHalfOpen(t *testing.T) {
	in := Inputs{Shop: WeeklySchedule{
		time.Monday: openDayWithBreak(t, "09:00", "18:00", "12:00", "13:00"),
	}}

	res := Validate(in, monday, minsPtr(t, "12:00"))
	if res.Valid || res.Reason != ReasonInsideBreak {
		t.Fatalf("expected 12:00 to fail with %q, got valid=%v reason=%q", ReasonInsideBreak, res.Valid, res.Reason)
	}

	if res := Validate(in, monday, minsPtr(t, "11:59")); !res.Valid {
		t.Fatalf("expected 11:59 to be valid, got reason %q", res.Reason)
	}
	if res := Validate(in, monday, minsPtr(t, "13:00")); !res.Valid {
		t.Fatalf("expected 13:00 to be valid, got reason %q", res.Reason)
	}
}

func TestValidate_StaffDayOffDoesNotFallBackToShopHours(t *testing.T) {
	in := Inputs{
		Staff: WeeklySchedule{time.Monday: {Enabled: false}},
		Shop:  WeeklySchedule{time.Monday: openDay(t, "09:00", "18:00")},
	}

	res := Validate(in, monday, nil)
	if res.Valid {
		t.Fatal("expected staff day off to be invalid")
	}
	if res.Reason != ReasonClosedRegularDay {
		t.Fatalf("expected reason %q, got %q", ReasonClosedRegularDay, res.Reason)
	}
	if res.Source != SourceStaff {
		t.Fatalf("expected source %q (not a silent fallback to shop hours), got %q", SourceStaff, res.Source)
	}
}

func TestValidate_StaffWithoutWeekdayEntryDefersToShop(t *testing.T) {
	in := Inputs{
		Staff: WeeklySchedule{time.Tuesday: openDay(t, "10:00", "16:00")},
		Shop:  WeeklySchedule{time.Monday: openDay(t, "09:00", "18:00")},
	}

	res := Validate(in, monday, nil)
	if !res.Valid {
		t.Fatalf("expected shop hours to apply, got reason %q", res.Reason)
	}
	if res.Source != SourceShop {
		t.Fatalf("expected source %q, got %q", SourceShop, res.Source)
	}
}

func TestValidate_NoScheduleMeansClosed(t *testing.T) {
	res := Validate(Inputs{}, monday, nil)
	if res.Valid {
		t.Fatal("expected empty inputs to resolve as closed")
	}
	if res.Reason != ReasonClosedRegularDay || res.Source != SourceNone {
		t.Fatalf("expected default-closed result, got reason=%q source=%q", res.Reason, res.Source)
	}
}

func TestParseClock(t *testing.T) {
	m, err := ParseClock("14:30")
	if err != nil {
		t.Fatalf("ParseClock: %v", err)
	}
	if m != 14*60+30 {
		t.Fatalf("expected 870, got %d", m)
	}
	if m.Clock() != "14:30" {
		t.Fatalf("expected round-trip 14:30, got %s", m.Clock())
	}
	if _, err := ParseClock("25:00"); err == nil {
		t.Fatal("expected error for 25:00")
	}
}
