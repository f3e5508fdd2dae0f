package storage

import "testing"

func TestMergeByWeekdayUnitOverrides(t *testing.T) {
	// Shop-wide rows come first; a unit-scoped row for the same weekday
	// must replace the shop-wide one.
	rows := []DayHours{
		{Weekday: 1, Enabled: true, StartMin: 540, EndMin: 1080},
		{Weekday: 2, Enabled: true, StartMin: 540, EndMin: 1080},
		{Weekday: 1, Enabled: true, StartMin: 600, EndMin: 960},
	}

	got := mergeByWeekday(rows)
	if len(got) != 2 {
		t.Fatalf("expected 2 weekdays, got %d", len(got))
	}
	if got[0].Weekday != 1 || got[0].StartMin != 600 || got[0].EndMin != 960 {
		t.Fatalf("monday not overridden by unit row: %+v", got[0])
	}
	if got[1].Weekday != 2 || got[1].StartMin != 540 {
		t.Fatalf("tuesday unexpectedly changed: %+v", got[1])
	}
}

func TestMergeByWeekdayDisabledRowWins(t *testing.T) {
	rows := []DayHours{
		{Weekday: 3, Enabled: true, StartMin: 540, EndMin: 1080},
		{Weekday: 3, Enabled: false},
	}

	got := mergeByWeekday(rows)
	if len(got) != 1 {
		t.Fatalf("expected 1 weekday, got %d", len(got))
	}
	if got[0].Enabled {
		t.Fatal("unit day-off row must override the shop-wide row")
	}
}
