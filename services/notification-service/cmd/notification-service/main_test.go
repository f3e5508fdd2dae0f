package main

import "testing"

func TestReminderText(t *testing.T) {
	got := reminderText("Ana", "Haircut", "2026-09-01T14:00:00Z")
	want := "Hi Ana, reminder: Haircut at 2026-09-01T14:00:00Z."
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}

	got = reminderText("", "", "")
	want = "Hi there, reminder: your appointment is coming up."
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestConfirmationText(t *testing.T) {
	got := confirmationText("Bruno", "Beard trim", "2026-09-02T10:30:00Z")
	want := "Hi Bruno, Beard trim is booked for 2026-09-02T10:30:00Z."
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
