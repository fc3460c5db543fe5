package poller

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/callmeback/callbackd/internal/model"
)

// DueChecker is the slice of the API client the poller needs.
type DueChecker interface {
	CheckDueReminders(ctx context.Context, token string) ([]model.DueReminder, error)
}

// Poller periodically asks the backend for due reminders and forwards each
// unseen one, in server order, to the out channel. It is an owned background
// task: the session lifecycle calls Start on login and Stop on logout, and at
// most one polling loop is alive at a time.
type Poller struct {
	checker  DueChecker
	interval time.Duration
	log      zerolog.Logger

	// lifecycle serializes Start and Stop so a replaced loop is always
	// stopped before its successor installs; stopCh and doneCh are only
	// touched under it.
	lifecycle sync.Mutex
	stopCh    chan struct{}
	doneCh    chan struct{}

	mu      sync.Mutex
	seen    map[string]bool
	out     chan model.DueReminder
	dropped uint64
}

func New(checker DueChecker, interval time.Duration, bufferSize int, log zerolog.Logger) *Poller {
	if interval <= 0 {
		interval = time.Minute
	}
	if bufferSize <= 0 {
		bufferSize = 1
	}
	return &Poller{
		checker:  checker,
		interval: interval,
		log:      log.With().Str("component", "poller").Logger(),
		seen:     make(map[string]bool),
		out:      make(chan model.DueReminder, bufferSize),
	}
}

func (p *Poller) C() <-chan model.DueReminder {
	return p.out
}

// Start begins polling with the given bearer token, replacing any loop that
// is already running. An empty token is treated as logout: polling stops.
func (p *Poller) Start(token string) {
	token = strings.TrimSpace(token)

	p.lifecycle.Lock()
	defer p.lifecycle.Unlock()

	p.stopLoop()
	if token == "" {
		return
	}

	stopCh := make(chan struct{})
	doneCh := make(chan struct{})
	p.stopCh = stopCh
	p.doneCh = doneCh

	p.log.Info().Dur("interval", p.interval).Msg("polling started")
	go p.loop(token, stopCh, doneCh)
}

// Stop halts polling and waits for the loop goroutine to exit. Safe to call
// when the poller is not running.
func (p *Poller) Stop() {
	p.lifecycle.Lock()
	defer p.lifecycle.Unlock()
	p.stopLoop()
}

func (p *Poller) Dropped() uint64 {
	return atomic.LoadUint64(&p.dropped)
}

// stopLoop shuts down the running loop, if any. Caller holds lifecycle.
func (p *Poller) stopLoop() {
	if p.stopCh == nil {
		return
	}
	close(p.stopCh)
	<-p.doneCh
	p.stopCh = nil
	p.doneCh = nil
	p.log.Info().Msg("polling stopped")
}

func (p *Poller) loop(token string, stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	// First check runs immediately so a reminder due at login is not held
	// for a full interval.
	p.tick(token)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			p.tick(token)
		}
	}
}

func (p *Poller) tick(token string) {
	ctx, cancel := context.WithTimeout(context.Background(), p.interval)
	defer cancel()

	due, err := p.checker.CheckDueReminders(ctx, token)
	if err != nil {
		// Failed fetches are swallowed; the next tick retries unconditionally.
		p.log.Warn().Err(err).Msg("due-reminder check failed")
		return
	}

	p.mu.Lock()
	fresh := make([]model.DueReminder, 0, len(due))
	current := make(map[string]bool, len(due))
	for _, item := range due {
		if item.ID == "" {
			continue
		}
		current[item.ID] = true
		if p.seen[item.ID] {
			continue
		}
		p.seen[item.ID] = true
		fresh = append(fresh, item)
	}
	// IDs the server no longer reports are completed or gone; dropping them
	// keeps the seen set bounded to the active due window.
	for id := range p.seen {
		if !current[id] {
			delete(p.seen, id)
		}
	}
	p.mu.Unlock()

	for _, item := range fresh {
		select {
		case p.out <- item:
			p.log.Info().Str("reminder_id", item.ID).Msg("due reminder surfaced")
		default:
			atomic.AddUint64(&p.dropped, 1)
			p.log.Warn().Str("reminder_id", item.ID).Msg("due reminder dropped: consumer not keeping up")
		}
	}
}
