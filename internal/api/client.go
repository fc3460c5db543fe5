package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/callmeback/callbackd/internal/model"
)

// Client is a typed wrapper over the CallMeBack REST API. Authenticated calls
// take the bearer token per call rather than holding it, so a token change
// (login/logout) needs no client rebuild.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, errors.New("api: base url is required")
	}
	if _, err := url.Parse(trimmed); err != nil {
		return nil, fmt.Errorf("api: invalid base url: %w", err)
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: trimmed,
		http:    &http.Client{Timeout: timeout},
	}, nil
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) (string, model.User, error) {
	var out AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", "", req, &out); err != nil {
		return "", model.User{}, err
	}
	return out.Token, out.User.toModel(), nil
}

func (c *Client) Login(ctx context.Context, req LoginRequest) (string, model.User, error) {
	var out AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", "", req, &out); err != nil {
		return "", model.User{}, err
	}
	return out.Token, out.User.toModel(), nil
}

func (c *Client) Profile(ctx context.Context, token string) (model.User, error) {
	var out userJSON
	if err := c.do(ctx, http.MethodGet, "/api/user/profile", token, nil, &out); err != nil {
		return model.User{}, err
	}
	return out.toModel(), nil
}

func (c *Client) PlanStatus(ctx context.Context, token string) (PlanStatus, error) {
	var out PlanStatus
	if err := c.do(ctx, http.MethodGet, "/api/user/plan-status", token, nil, &out); err != nil {
		return PlanStatus{}, err
	}
	return out, nil
}

func (c *Client) CreateReminder(ctx context.Context, token string, req CreateReminderRequest) (model.Reminder, error) {
	var out reminderJSON
	if err := c.do(ctx, http.MethodPost, "/api/reminders/create", token, req, &out); err != nil {
		return model.Reminder{}, err
	}
	return out.toModel(), nil
}

func (c *Client) ListReminders(ctx context.Context, token string) ([]model.Reminder, error) {
	var out []reminderJSON
	if err := c.do(ctx, http.MethodGet, "/api/reminders/list", token, nil, &out); err != nil {
		return nil, err
	}
	reminders := make([]model.Reminder, 0, len(out))
	for _, r := range out {
		reminders = append(reminders, r.toModel())
	}
	return reminders, nil
}

func (c *Client) DeleteReminder(ctx context.Context, token, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/reminders/"+url.PathEscape(id), token, nil, nil)
}

// CheckDueReminders fetches the reminders currently due, preserving server
// order.
func (c *Client) CheckDueReminders(ctx context.Context, token string) ([]model.DueReminder, error) {
	var out []dueReminderJSON
	if err := c.do(ctx, http.MethodGet, "/api/reminders/check", token, nil, &out); err != nil {
		return nil, err
	}
	due := make([]model.DueReminder, 0, len(out))
	for _, d := range out {
		due = append(due, d.toModel())
	}
	return due, nil
}

// CompleteReminder requests the pending->completed transition. Callers treat
// it as fire-and-forget; the error is for logging only.
func (c *Client) CompleteReminder(ctx context.Context, token, id string) error {
	return c.do(ctx, http.MethodPost, "/api/reminders/"+url.PathEscape(id)+"/complete", token, nil, nil)
}

func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/api/health", "", nil, nil)
}

func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("api: encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("api: build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("api: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("api: decode response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&payload); err == nil {
		apiErr.Detail = payload.Detail
	}
	return apiErr
}
