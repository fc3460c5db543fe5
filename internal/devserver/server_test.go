package devserver

import (
	"context"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/callmeback/callbackd/internal/api"
	"github.com/callmeback/callbackd/internal/call"
	"github.com/callmeback/callbackd/internal/model"
	"github.com/callmeback/callbackd/internal/notify"
	"github.com/callmeback/callbackd/internal/poller"
)

func newTestClient(t *testing.T) (*api.Client, *Server, *httptest.Server) {
	t.Helper()
	srv := NewServer(zerolog.Nop())
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	client, err := api.NewClient(ts.URL, 5*time.Second)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client, srv, ts
}

func registerAlice(t *testing.T, client *api.Client) string {
	t.Helper()
	token, _, err := client.Register(context.Background(), api.RegisterRequest{
		Name:     "Alice Owner",
		Email:    "alice@example.com",
		Password: "hunter22",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return token
}

func TestRegisterLoginRoundTrip(t *testing.T) {
	client, _, _ := newTestClient(t)
	ctx := context.Background()

	registerAlice(t, client)

	_, _, err := client.Register(ctx, api.RegisterRequest{Name: "X", Email: "alice@example.com", Password: "pw"})
	apiErr, ok := err.(*api.APIError)
	if !ok || apiErr.StatusCode != 400 {
		t.Fatalf("expected 400 for duplicate email, got %v", err)
	}

	if _, _, err := client.Login(ctx, api.LoginRequest{Email: "alice@example.com", Password: "wrong"}); err == nil {
		t.Fatal("expected login failure for bad password")
	}

	token, user, err := client.Login(ctx, api.LoginRequest{Email: "alice@example.com", Password: "hunter22"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if token == "" || user.Email != "alice@example.com" || user.PlanType != model.PlanFree {
		t.Fatalf("unexpected login result: token=%q user=%+v", token, user)
	}
}

func TestAuthRequired(t *testing.T) {
	client, _, _ := newTestClient(t)
	_, err := client.ListReminders(context.Background(), "")
	apiErr, ok := err.(*api.APIError)
	if !ok || apiErr.StatusCode != 401 {
		t.Fatalf("expected 401 without token, got %v", err)
	}
}

func TestFreePlanReminderLimit(t *testing.T) {
	client, _, _ := newTestClient(t)
	ctx := context.Background()
	token := registerAlice(t, client)

	when := time.Now().Add(24 * time.Hour).UTC()
	for i := 0; i < model.FreePlanReminderLimit; i++ {
		_, err := client.CreateReminder(ctx, token, api.CreateReminderRequest{
			NameToCall:  fmt.Sprintf("Contact %d", i),
			PhoneNumber: fmt.Sprintf("+155500%02d", i),
			DateTime:    when,
		})
		if err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}

	_, err := client.CreateReminder(ctx, token, api.CreateReminderRequest{
		NameToCall:  "One Too Many",
		PhoneNumber: "+15559999",
		DateTime:    when,
	})
	apiErr, ok := err.(*api.APIError)
	if !ok || apiErr.StatusCode != 403 {
		t.Fatalf("expected 403 past the free limit, got %v", err)
	}

	status, err := client.PlanStatus(ctx, token)
	if err != nil {
		t.Fatalf("plan status: %v", err)
	}
	if status.ReminderCount != model.FreePlanReminderLimit {
		t.Fatalf("expected count %d, got %d", model.FreePlanReminderLimit, status.ReminderCount)
	}
}

func TestCheckFlipsDueRemindersOnce(t *testing.T) {
	client, srv, _ := newTestClient(t)
	ctx := context.Background()
	token := registerAlice(t, client)

	base := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	srv.SetClock(func() time.Time { return base })

	if _, err := client.CreateReminder(ctx, token, api.CreateReminderRequest{
		NameToCall:  "Alice",
		PhoneNumber: "+15550001",
		DateTime:    base.Add(30 * time.Second),
	}); err != nil {
		t.Fatalf("create due: %v", err)
	}
	if _, err := client.CreateReminder(ctx, token, api.CreateReminderRequest{
		NameToCall:  "Bob",
		PhoneNumber: "+15550002",
		DateTime:    base.Add(time.Hour),
	}); err != nil {
		t.Fatalf("create future: %v", err)
	}

	due, err := client.CheckDueReminders(ctx, token)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if len(due) != 1 || due[0].NameToCall != "Alice" {
		t.Fatalf("expected Alice due, got %+v", due)
	}

	again, err := client.CheckDueReminders(ctx, token)
	if err != nil {
		t.Fatalf("second check: %v", err)
	}
	if len(again) != 0 {
		t.Fatalf("expected no reminders on second check, got %+v", again)
	}
}

func TestCompleteAndDelete(t *testing.T) {
	client, _, _ := newTestClient(t)
	ctx := context.Background()
	token := registerAlice(t, client)

	created, err := client.CreateReminder(ctx, token, api.CreateReminderRequest{
		NameToCall:  "Alice",
		PhoneNumber: "+15550001",
		DateTime:    time.Now().Add(time.Hour).UTC(),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := client.CompleteReminder(ctx, token, created.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}
	list, err := client.ListReminders(ctx, token)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Status != model.ReminderStatusCompleted {
		t.Fatalf("expected completed reminder, got %+v", list)
	}

	if err := client.DeleteReminder(ctx, token, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	list, err = client.ListReminders(ctx, token)
	if err != nil {
		t.Fatalf("list after delete: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected empty list after delete, got %+v", list)
	}

	if err := client.CompleteReminder(ctx, token, "missing"); err == nil {
		t.Fatal("expected not found for unknown reminder")
	}
}

type recordingDialer struct {
	dialed []string
}

func (d *recordingDialer) Dial(phone string) error {
	d.dialed = append(d.dialed, phone)
	return nil
}

// The full pipeline against the stub backend: a due reminder is polled,
// dispatched as a notification, answered on the call screen, and completed.
func TestEndToEndDueReminderToCompletedCall(t *testing.T) {
	client, srv, _ := newTestClient(t)
	ctx := context.Background()
	token := registerAlice(t, client)

	base := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	srv.SetClock(func() time.Time { return base })
	if _, err := client.CreateReminder(ctx, token, api.CreateReminderRequest{
		NameToCall:  "Alice",
		PhoneNumber: "+15550001",
		Description: "quarterly sync",
		DateTime:    base.Add(10 * time.Second),
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	p := poller.New(client, 50*time.Millisecond, 4, zerolog.Nop())
	p.Start(token)
	defer p.Stop()

	dispatcher := notify.NewDispatcher(nil, nil, zerolog.Nop())
	deliveries, err := dispatcher.Subscribe()
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	var due model.DueReminder
	select {
	case due = <-p.C():
	case <-time.After(2 * time.Second):
		t.Fatal("poller never surfaced the due reminder")
	}
	if err := dispatcher.Dispatch(ctx, due); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	delivery := <-deliveries
	if delivery.Title != "Call Alice" {
		t.Fatalf("unexpected notification title %q", delivery.Title)
	}

	params, ok := call.NormalizeParams(delivery.Payload.Map())
	if !ok {
		t.Fatal("payload did not normalize")
	}
	session := call.NewSession(params, call.DefaultOptions(), base)
	if err := session.MakeAnswerable(); err != nil {
		t.Fatalf("make answerable: %v", err)
	}
	session.DragAnswer(session.Answer.MaxOffset())
	action, committed := session.ReleaseAnswer()
	if !committed || action != call.ActionAnswer {
		t.Fatalf("expected answer commit, got (%q, %v)", action, committed)
	}

	dialer := &recordingDialer{}
	if err := dialer.Dial(params.PhoneNumber); err != nil {
		t.Fatalf("dial: %v", err)
	}
	if len(dialer.dialed) != 1 || dialer.dialed[0] != "+15550001" {
		t.Fatalf("expected dial of +15550001, got %v", dialer.dialed)
	}
	if err := client.CompleteReminder(ctx, token, params.ReminderID); err != nil {
		t.Fatalf("complete: %v", err)
	}

	list, err := client.ListReminders(ctx, token)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Status != model.ReminderStatusCompleted {
		t.Fatalf("expected completed reminder after the call, got %+v", list)
	}
}
