package model

import (
	"strings"
	"testing"
	"time"
)

func validReminder() Reminder {
	return Reminder{
		ID:          "rem-1",
		NameToCall:  "Alice",
		PhoneNumber: "+15550001",
		Description: "quarterly catch-up",
		DateTime:    time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		Status:      ReminderStatusActive,
		CreatedAt:   time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestReminderValidate(t *testing.T) {
	if err := validReminder().Validate(); err != nil {
		t.Fatalf("expected valid reminder, got %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Reminder)
		want   string
	}{
		{"missing id", func(r *Reminder) { r.ID = " " }, "id is required"},
		{"missing name", func(r *Reminder) { r.NameToCall = "" }, "name_to_call is required"},
		{"missing phone", func(r *Reminder) { r.PhoneNumber = "" }, "phone_number is required"},
		{"missing time", func(r *Reminder) { r.DateTime = time.Time{} }, "date_time is required"},
		{"bad status", func(r *Reminder) { r.Status = "snoozed" }, "invalid reminder status"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := validReminder()
			tc.mutate(&r)
			err := r.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestReminderDueAt(t *testing.T) {
	r := validReminder()
	before := r.DateTime.Add(-time.Minute)
	after := r.DateTime.Add(time.Minute)

	if r.DueAt(before) {
		t.Fatal("reminder should not be due before its trigger time")
	}
	if !r.DueAt(r.DateTime) {
		t.Fatal("reminder should be due exactly at its trigger time")
	}
	if !r.DueAt(after) {
		t.Fatal("reminder should be due after its trigger time")
	}

	r.Status = ReminderStatusCompleted
	if r.DueAt(after) {
		t.Fatal("completed reminder must never be due")
	}
}

func TestDueReminderValidate(t *testing.T) {
	d := DueReminder{ID: "rem-1", NameToCall: "Alice", PhoneNumber: "+15550001"}
	if err := d.Validate(); err != nil {
		t.Fatalf("expected valid due reminder, got %v", err)
	}
	d.ID = ""
	if err := d.Validate(); err == nil {
		t.Fatal("expected error for missing id")
	}
}
