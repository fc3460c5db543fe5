package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/callmeback/callbackd/internal/model"
	"github.com/callmeback/callbackd/internal/storage"
)

var (
	ErrAlreadySubscribed = errors.New("notify: dispatcher already has a subscriber")
	ErrClosed            = errors.New("notify: dispatcher closed")
)

// Payload is the data a delivered notification carries; it is everything the
// incoming-call screen needs to reconstruct the call context.
type Payload struct {
	ReminderID  string
	NameToCall  string
	PhoneNumber string
	Description string
}

// Map renders the payload with the canonical notification key casing.
func (p Payload) Map() map[string]string {
	return map[string]string{
		"reminderId":  p.ReminderID,
		"nameToCall":  p.NameToCall,
		"phoneNumber": p.PhoneNumber,
		"description": p.Description,
	}
}

// Delivery is one locally delivered notification.
type Delivery struct {
	ID          string
	Payload     Payload
	Title       string
	Body        string
	DeliveredAt time.Time
}

// DeliveryRecorder is the slice of the storage repository the dispatcher
// uses for restart-safe dedup.
type DeliveryRecorder interface {
	RecordDelivery(ctx context.Context, in storage.Delivery) (bool, error)
}

// Dispatcher converts due-reminder events into delivered local notifications
// and routes them to a single subscriber for the session lifetime.
type Dispatcher struct {
	recorder DeliveryRecorder
	notifier DesktopNotifier
	log      zerolog.Logger
	now      func() time.Time

	mu         sync.Mutex
	out        chan Delivery
	subscribed bool
	closed     bool
}

func NewDispatcher(recorder DeliveryRecorder, notifier DesktopNotifier, log zerolog.Logger) *Dispatcher {
	if notifier == nil {
		notifier = NoopDesktopNotifier{}
	}
	return &Dispatcher{
		recorder: recorder,
		notifier: notifier,
		log:      log.With().Str("component", "dispatcher").Logger(),
		now:      func() time.Time { return time.Now().UTC() },
		out:      make(chan Delivery, 16),
	}
}

// Subscribe hands out the delivery channel. Exactly one subscriber is allowed
// per dispatcher lifetime; remounting UI must go through Close and a fresh
// dispatcher rather than stacking listeners.
func (d *Dispatcher) Subscribe() (<-chan Delivery, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, ErrClosed
	}
	if d.subscribed {
		return nil, ErrAlreadySubscribed
	}
	d.subscribed = true
	return d.out, nil
}

// Dispatch delivers a notification for the due reminder. A reminder already
// present in the delivery log is skipped silently.
func (d *Dispatcher) Dispatch(ctx context.Context, due model.DueReminder) error {
	if err := due.Validate(); err != nil {
		return err
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrClosed
	}
	d.mu.Unlock()

	delivery := Delivery{
		ID: uuid.NewString(),
		Payload: Payload{
			ReminderID:  due.ID,
			NameToCall:  due.NameToCall,
			PhoneNumber: due.PhoneNumber,
			Description: due.Description,
		},
		Title:       "Call " + due.NameToCall,
		Body:        due.Description,
		DeliveredAt: d.now(),
	}
	if delivery.Body == "" {
		delivery.Body = "Reminder to make a call"
	}

	if d.recorder != nil {
		recorded, err := d.recorder.RecordDelivery(ctx, storage.Delivery{
			ID:          delivery.ID,
			ReminderID:  due.ID,
			NameToCall:  due.NameToCall,
			PhoneNumber: due.PhoneNumber,
			Description: due.Description,
			DeliveredAt: delivery.DeliveredAt,
		})
		if err != nil {
			return err
		}
		if !recorded {
			d.log.Debug().Str("reminder_id", due.ID).Msg("delivery already recorded; skipping")
			return nil
		}
	}

	if err := d.notifier.Send(Notification{Title: delivery.Title, Body: delivery.Body}); err != nil {
		// The in-app banner still shows the delivery; a broken desktop
		// notifier must not block the pipeline.
		d.log.Warn().Err(err).Str("reminder_id", due.ID).Msg("desktop notification failed")
	}

	select {
	case d.out <- delivery:
		d.log.Info().Str("reminder_id", due.ID).Msg("notification delivered")
	default:
		d.log.Warn().Str("reminder_id", due.ID).Msg("delivery dropped: subscriber not keeping up")
	}
	return nil
}

// Close deregisters the subscriber and stops further dispatches.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.closed = true
	close(d.out)
}
