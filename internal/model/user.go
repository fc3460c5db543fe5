package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidPlanType = errors.New("model: invalid plan type")

type PlanType string

const (
	PlanFree    PlanType = "free"
	PlanPremium PlanType = "premium"
)

func (p PlanType) IsValid() bool {
	switch p {
	case PlanFree, PlanPremium:
		return true
	default:
		return false
	}
}

// FreePlanReminderLimit is the number of reminders a free account may hold.
// Enforced server-side; the client only surfaces the rejection.
const FreePlanReminderLimit = 5

type User struct {
	ID            string
	Name          string
	Email         string
	PlanType      PlanType
	PlanExpiry    *time.Time
	ReminderCount int
}

func (u User) Validate() error {
	if strings.TrimSpace(u.ID) == "" {
		return errors.New("model: user id is required")
	}
	if strings.TrimSpace(u.Email) == "" {
		return errors.New("model: user email is required")
	}
	if !u.PlanType.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidPlanType, u.PlanType)
	}
	return nil
}

// PlanActive reports whether the user's plan grants premium features at the
// given instant. An expired premium plan behaves as free.
func (u User) PlanActive(now time.Time) bool {
	if u.PlanType != PlanPremium {
		return false
	}
	if u.PlanExpiry == nil {
		return true
	}
	return u.PlanExpiry.After(now)
}
