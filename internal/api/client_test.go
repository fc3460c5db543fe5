package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := NewClient(srv.URL, time.Second)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestNewClientRejectsEmptyBaseURL(t *testing.T) {
	if _, err := NewClient("  ", time.Second); err == nil {
		t.Fatal("expected error for empty base url")
	}
}

func TestLoginSendsCredentialsAndDecodesUser(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/auth/login" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Email != "alice@example.com" {
			t.Fatalf("unexpected email: %q", req.Email)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"token": "tok-1",
			"user": map[string]any{
				"id": "u1", "name": "Alice", "email": req.Email,
				"plan_type": "free", "reminder_count": 2,
			},
		})
	}))

	token, user, err := client.Login(context.Background(), LoginRequest{Email: "alice@example.com", Password: "pw"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if token != "tok-1" {
		t.Fatalf("unexpected token: %q", token)
	}
	if user.Name != "Alice" || user.ReminderCount != 2 {
		t.Fatalf("unexpected user: %+v", user)
	}
}

func TestCheckDueRemindersPreservesServerOrder(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/reminders/check" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
			t.Fatalf("unexpected auth header: %q", got)
		}
		w.Write([]byte(`[
			{"id":"r2","name_to_call":"Bob","phone_number":"+15550002","description":""},
			{"id":"r1","name_to_call":"Alice","phone_number":"+15550001","description":"hi"}
		]`))
	}))

	due, err := client.CheckDueReminders(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if len(due) != 2 || due[0].ID != "r2" || due[1].ID != "r1" {
		t.Fatalf("unexpected due set: %+v", due)
	}
}

func TestCompleteReminderEscapesID(t *testing.T) {
	var gotPath string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
	}))

	if err := client.CompleteReminder(context.Background(), "tok", "r/1"); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if gotPath != "/api/reminders/r%2F1/complete" {
		t.Fatalf("unexpected path: %q", gotPath)
	}
}

func TestNon2xxBecomesAPIErrorWithDetail(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Free plan limit reached"})
	}))

	_, err := client.CreateReminder(context.Background(), "tok", CreateReminderRequest{
		NameToCall: "Alice", PhoneNumber: "+15550001", DateTime: time.Now().UTC(),
	})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusForbidden || apiErr.Detail != "Free plan limit reached" {
		t.Fatalf("unexpected api error: %+v", apiErr)
	}
}

func TestContextCancellationStopsRequest(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	if _, err := client.ListReminders(ctx, "tok"); err == nil {
		t.Fatal("expected error from cancelled context")
	}
}
