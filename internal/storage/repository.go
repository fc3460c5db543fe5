package storage

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("storage: not found")

type Repository interface {
	// RecordDelivery appends to the delivery log. It reports false without
	// error when a delivery for the same reminder already exists.
	RecordDelivery(ctx context.Context, in Delivery) (bool, error)
	GetDelivery(ctx context.Context, reminderID string) (Delivery, error)
	ListDeliveries(ctx context.Context, filter DeliveryListFilter) ([]Delivery, error)
	PruneDeliveries(ctx context.Context, before time.Time) (int64, error)

	ReplaceReminderCache(ctx context.Context, reminders []CachedReminder) error
	ListCachedReminders(ctx context.Context) ([]CachedReminder, error)
}
