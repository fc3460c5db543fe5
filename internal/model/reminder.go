package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidReminderStatus = errors.New("model: invalid reminder status")

type ReminderStatus string

const (
	ReminderStatusActive    ReminderStatus = "active"
	ReminderStatusTriggered ReminderStatus = "triggered"
	ReminderStatusCompleted ReminderStatus = "completed"
	ReminderStatusDeleted   ReminderStatus = "deleted"
)

func (s ReminderStatus) IsValid() bool {
	switch s {
	case ReminderStatusActive, ReminderStatusTriggered, ReminderStatusCompleted, ReminderStatusDeleted:
		return true
	default:
		return false
	}
}

// Reminder is a scheduled call-back intent. Status is owned by the backend;
// the client requests transitions but never mutates it locally.
type Reminder struct {
	ID          string
	NameToCall  string
	PhoneNumber string
	Description string
	DateTime    time.Time
	Status      ReminderStatus
	CreatedAt   time.Time
}

func (r Reminder) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return errors.New("model: reminder id is required")
	}
	if strings.TrimSpace(r.NameToCall) == "" {
		return errors.New("model: reminder name_to_call is required")
	}
	if strings.TrimSpace(r.PhoneNumber) == "" {
		return errors.New("model: reminder phone_number is required")
	}
	if r.DateTime.IsZero() {
		return errors.New("model: reminder date_time is required")
	}
	if !r.Status.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidReminderStatus, r.Status)
	}
	return nil
}

// DueAt reports whether the reminder should surface at the given instant.
func (r Reminder) DueAt(now time.Time) bool {
	if r.Status != ReminderStatusActive {
		return false
	}
	return !r.DateTime.After(now)
}

// DueReminder is the ephemeral event produced per poll tick for a reminder
// whose trigger time has passed. It lives only between the poll response and
// the hand-off to the notification dispatcher.
type DueReminder struct {
	ID          string
	NameToCall  string
	PhoneNumber string
	Description string
}

func (d DueReminder) Validate() error {
	if strings.TrimSpace(d.ID) == "" {
		return errors.New("model: due reminder id is required")
	}
	if strings.TrimSpace(d.PhoneNumber) == "" {
		return errors.New("model: due reminder phone_number is required")
	}
	return nil
}
