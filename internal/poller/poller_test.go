package poller

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/callmeback/callbackd/internal/model"
)

// scriptedChecker returns one canned response per call, repeating the last
// one once the script is exhausted.
type scriptedChecker struct {
	mu        sync.Mutex
	responses [][]model.DueReminder
	errs      []error
	calls     int
	tokens    []string
}

func (c *scriptedChecker) CheckDueReminders(_ context.Context, token string) ([]model.DueReminder, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	idx := c.calls
	c.calls++
	c.tokens = append(c.tokens, token)
	if idx >= len(c.responses) {
		idx = len(c.responses) - 1
	}
	var err error
	if idx < len(c.errs) {
		err = c.errs[idx]
	}
	return c.responses[idx], err
}

func (c *scriptedChecker) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func waitDue(t *testing.T, ch <-chan model.DueReminder, timeout time.Duration) model.DueReminder {
	t.Helper()
	select {
	case item := <-ch:
		return item
	case <-time.After(timeout):
		t.Fatalf("timed out waiting for due reminder")
		return model.DueReminder{}
	}
}

func expectNoDue(t *testing.T, ch <-chan model.DueReminder, within time.Duration) {
	t.Helper()
	select {
	case item := <-ch:
		t.Fatalf("unexpected due reminder: %+v", item)
	case <-time.After(within):
	}
}

func TestStartEmitsDueRemindersInServerOrder(t *testing.T) {
	checker := &scriptedChecker{responses: [][]model.DueReminder{{
		{ID: "r2", NameToCall: "Bob", PhoneNumber: "+2"},
		{ID: "r1", NameToCall: "Alice", PhoneNumber: "+1"},
	}}}
	p := New(checker, time.Hour, 8, testLogger())
	defer p.Stop()

	p.Start("tok-1")

	first := waitDue(t, p.C(), time.Second)
	second := waitDue(t, p.C(), time.Second)
	if first.ID != "r2" || second.ID != "r1" {
		t.Fatalf("unexpected order: first=%s second=%s", first.ID, second.ID)
	}
}

func TestRepeatedDueReminderSurfacesOnce(t *testing.T) {
	same := []model.DueReminder{{ID: "r1", NameToCall: "Alice", PhoneNumber: "+1"}}
	checker := &scriptedChecker{responses: [][]model.DueReminder{same, same, same}}
	p := New(checker, 20*time.Millisecond, 8, testLogger())
	defer p.Stop()

	p.Start("tok-1")

	waitDue(t, p.C(), time.Second)

	// Wait until at least two more polls have run, then confirm silence.
	deadline := time.Now().Add(time.Second)
	for checker.callCount() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	expectNoDue(t, p.C(), 60*time.Millisecond)
}

func TestCompletedReminderNeverReturns(t *testing.T) {
	due := []model.DueReminder{{ID: "r1", NameToCall: "Alice", PhoneNumber: "+1"}}
	checker := &scriptedChecker{responses: [][]model.DueReminder{due, {}}}
	p := New(checker, 15*time.Millisecond, 8, testLogger())
	defer p.Stop()

	p.Start("tok-1")
	waitDue(t, p.C(), time.Second)

	// The server stops returning the reminder once completed; nothing more
	// may surface even after the seen set is pruned.
	deadline := time.Now().Add(time.Second)
	for checker.callCount() < 4 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	expectNoDue(t, p.C(), 50*time.Millisecond)
}

func TestFailedFetchRetriesNextTick(t *testing.T) {
	due := []model.DueReminder{{ID: "r1", NameToCall: "Alice", PhoneNumber: "+1"}}
	checker := &scriptedChecker{
		responses: [][]model.DueReminder{nil, due},
		errs:      []error{errors.New("connection refused"), nil},
	}
	p := New(checker, 15*time.Millisecond, 8, testLogger())
	defer p.Stop()

	p.Start("tok-1")

	item := waitDue(t, p.C(), time.Second)
	if item.ID != "r1" {
		t.Fatalf("unexpected reminder: %+v", item)
	}
}

func TestStartWithEmptyTokenSuspendsPolling(t *testing.T) {
	checker := &scriptedChecker{responses: [][]model.DueReminder{{}}}
	p := New(checker, 10*time.Millisecond, 8, testLogger())
	defer p.Stop()

	p.Start("   ")
	time.Sleep(40 * time.Millisecond)
	if checker.callCount() != 0 {
		t.Fatalf("expected no polls without a token, got %d", checker.callCount())
	}
}

func TestRestartReplacesRunningLoop(t *testing.T) {
	checker := &scriptedChecker{responses: [][]model.DueReminder{{}}}
	p := New(checker, 10*time.Millisecond, 8, testLogger())
	defer p.Stop()

	p.Start("tok-old")
	p.Start("tok-new")
	time.Sleep(50 * time.Millisecond)
	p.Stop()

	checker.mu.Lock()
	defer checker.mu.Unlock()
	calls := checker.calls
	for _, tok := range checker.tokens[len(checker.tokens)-min(calls, 3):] {
		if tok != "tok-new" {
			t.Fatalf("expected only the new token after restart, saw %q", tok)
		}
	}
}

func TestConcurrentStartsLeaveOneStoppableLoop(t *testing.T) {
	checker := &scriptedChecker{responses: [][]model.DueReminder{{}}}
	p := New(checker, 5*time.Millisecond, 8, testLogger())

	for i := 0; i < 200; i++ {
		var wg sync.WaitGroup
		for j := 0; j < 4; j++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				p.Start("tok-1")
			}()
		}
		wg.Wait()
		p.Stop()

		// Stop must reach whichever loop won the race; an orphaned loop
		// would keep checking past this point.
		settled := checker.callCount()
		time.Sleep(15 * time.Millisecond)
		if got := checker.callCount(); got != settled {
			t.Fatalf("polling continued after Stop: %d checks became %d", settled, got)
		}
	}
}

func TestStopIsIdempotent(t *testing.T) {
	checker := &scriptedChecker{responses: [][]model.DueReminder{{}}}
	p := New(checker, 10*time.Millisecond, 8, testLogger())

	p.Start("tok-1")
	p.Stop()
	p.Stop()
}
