package storage

import "time"

// Delivery is one row of the local notification delivery log. The unique
// reminder ID makes redelivery across process restarts impossible.
type Delivery struct {
	ID          string
	ReminderID  string
	NameToCall  string
	PhoneNumber string
	Description string
	DeliveredAt time.Time
}

// CachedReminder mirrors a backend reminder for offline display of the home
// list. The cache is replaced wholesale on every successful list fetch.
type CachedReminder struct {
	ID          string
	NameToCall  string
	PhoneNumber string
	Description string
	DateTime    time.Time
	Status      string
	CachedAt    time.Time
}

type DeliveryListFilter struct {
	Limit  int
	Offset int
}
