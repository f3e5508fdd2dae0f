package availability

import (
	"testing"
	"time"
)

func clocks(slots []Minutes) []string {
	out := make([]string, 0, len(slots))
	for _, s := range slots {
		out = append(out, s.Clock())
	}
	return out
}

func expectSlots(t *testing.T, got []Minutes, want ...string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d slots %v, got %d: %v", len(want), want, len(got), clocks(got))
	}
	for i, w := range want {
		if got[i].Clock() != w {
			t.Fatalf("slot %d: expected %s, got %s (all: %v)", i, w, got[i].Clock(), clocks(got))
		}
	}
}

func TestSlots_ServiceDurationVsBreakOverlap(t *testing.T) {
	in := Inputs{Shop: WeeklySchedule{
		time.Monday: openDayWithBreak(t, "09:00", "12:00", "10:00", "10:30"),
	}}

	// 45-minute service: 09:45 would occupy 09:45-10:30 and clip the break's
	// start, so only on-grid starts whose full interval clears the break fit.
	slots := Slots(in, monday, 45)
	expectSlots(t, slots, "09:00", "10:30", "11:00")
}

func TestSlots_RespectClosingBoundary(t *testing.T) {
	in := Inputs{Shop: WeeklySchedule{time.Monday: openDay(t, "09:00", "18:00")}}

	slots := Slots(in, monday, 40)
	if len(slots) == 0 {
		t.Fatal("expected slots")
	}
	last := slots[len(slots)-1]
	if last+40 > mins(t, "18:00") {
		t.Fatalf("last slot %s does not finish by close", last.Clock())
	}
	for _, s := range slots {
		if s.Clock() == "17:30" {
			t.Fatal("17:30 must not appear: a 40-minute service would end past close")
		}
	}
}

func TestSlots_FixedThirtyMinuteGrid(t *testing.T) {
	in := Inputs{Shop: WeeklySchedule{time.Monday: openDay(t, "09:00", "11:00")}}

	// Grid stays on the half hour even for a 20-minute service.
	slots := Slots(in, monday, 20)
	expectSlots(t, slots, "09:00", "09:30", "10:00", "10:30")
}

func TestSlots_BlockedDateYieldsNone(t *testing.T) {
	key := monday.Format(DateLayout)
	in := Inputs{
		Blocked: map[string]struct{}{key: {}},
		Shop:    WeeklySchedule{time.Monday: openDay(t, "09:00", "18:00")},
	}
	if slots := Slots(in, monday, 30); len(slots) != 0 {
		t.Fatalf("expected no slots on a blocked date, got %v", clocks(slots))
	}
}

func TestFilterBooked_PureOverlapTest(t *testing.T) {
	booked := []Booking{{Start: mins(t, "10:00"), Duration: 30}}

	candidates := []Minutes{mins(t, "09:45"), mins(t, "10:30")}
	kept := FilterBooked(candidates, 30, booked)

	// 09:45-10:15 overlaps 10:00-10:30; 10:30 merely touches and stays.
	expectSlots(t, kept, "10:30")
}

func TestSlots_EndToEndWithExistingBooking(t *testing.T) {
	in := Inputs{Shop: WeeklySchedule{time.Monday: openDay(t, "09:00", "18:00")}}

	slots := Slots(in, monday, 30)
	booked := []Booking{{Start: mins(t, "14:00"), Duration: 60}}
	free := FilterBooked(slots, 30, booked)

	var want []string
	for m := mins(t, "09:00"); m+30 <= mins(t, "18:00"); m += SlotStep {
		if m.Clock() == "14:00" || m.Clock() == "14:30" {
			continue
		}
		want = append(want, m.Clock())
	}
	expectSlots(t, free, want...)

	if want[len(want)-1] != "17:30" {
		t.Fatalf("sanity: expected final half-hour mark 17:30, got %s", want[len(want)-1])
	}
}
