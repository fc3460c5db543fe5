package api

import (
	"fmt"
	"time"

	"github.com/callmeback/callbackd/internal/model"
)

// APIError carries the backend's detail message for a non-2xx response.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("api: unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("api: %s (status %d)", e.Detail, e.StatusCode)
}

type RegisterRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	ReferralCode string `json:"referral_code,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token string   `json:"token"`
	User  userJSON `json:"user"`
}

type CreateReminderRequest struct {
	NameToCall  string    `json:"name_to_call"`
	PhoneNumber string    `json:"phone_number"`
	Description string    `json:"description"`
	DateTime    time.Time `json:"date_time"`
}

type PlanStatus struct {
	PlanType      model.PlanType `json:"plan_type"`
	PlanExpiry    *time.Time     `json:"plan_expiry"`
	ReminderCount int            `json:"reminder_count"`
}

type userJSON struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	PlanType      string     `json:"plan_type"`
	PlanExpiry    *time.Time `json:"plan_expiry"`
	ReminderCount int        `json:"reminder_count"`
}

func (u userJSON) toModel() model.User {
	plan := model.PlanType(u.PlanType)
	if u.PlanType == "" {
		plan = model.PlanFree
	}
	return model.User{
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		PlanType:      plan,
		PlanExpiry:    u.PlanExpiry,
		ReminderCount: u.ReminderCount,
	}
}

type reminderJSON struct {
	ID          string    `json:"id"`
	NameToCall  string    `json:"name_to_call"`
	PhoneNumber string    `json:"phone_number"`
	Description string    `json:"description"`
	DateTime    time.Time `json:"date_time"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

func (r reminderJSON) toModel() model.Reminder {
	return model.Reminder{
		ID:          r.ID,
		NameToCall:  r.NameToCall,
		PhoneNumber: r.PhoneNumber,
		Description: r.Description,
		DateTime:    r.DateTime,
		Status:      model.ReminderStatus(r.Status),
		CreatedAt:   r.CreatedAt,
	}
}

type dueReminderJSON struct {
	ID          string `json:"id"`
	NameToCall  string `json:"name_to_call"`
	PhoneNumber string `json:"phone_number"`
	Description string `json:"description"`
}

func (d dueReminderJSON) toModel() model.DueReminder {
	return model.DueReminder{
		ID:          d.ID,
		NameToCall:  d.NameToCall,
		PhoneNumber: d.PhoneNumber,
		Description: d.Description,
	}
}
