package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/callmeback/callbackd/internal/api"
	"github.com/callmeback/callbackd/internal/call"
	"github.com/callmeback/callbackd/internal/config"
	"github.com/callmeback/callbackd/internal/notify"
	"github.com/callmeback/callbackd/internal/poller"
	"github.com/callmeback/callbackd/internal/session"
	"github.com/callmeback/callbackd/internal/storage"
	"github.com/callmeback/callbackd/internal/update"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "callbackd failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.Data.Dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	// The TUI owns the terminal, so logs go to a file.
	logFile, err := os.OpenFile(cfg.Log.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(logFile).Level(level).With().Timestamp().Logger()

	repo, err := storage.OpenSQLite(filepath.Join(cfg.Data.Dir, "callbackd.db"))
	if err != nil {
		return err
	}
	defer repo.Close()
	if err := storage.MigrateUp(repo.DB()); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	sess := session.NewStore(filepath.Join(cfg.Data.Dir, "session.json"))
	if err := sess.Load(); err != nil {
		log.Warn().Err(err).Msg("could not restore session")
	}

	client, err := api.NewClient(cfg.API.BaseURL, time.Duration(cfg.API.Timeout)*time.Second)
	if err != nil {
		return err
	}

	p := poller.New(client, time.Duration(cfg.Poll.IntervalSeconds)*time.Second, 16, log)
	defer p.Stop()

	var desktop notify.DesktopNotifier = notify.NoopDesktopNotifier{}
	if cfg.Notifications.Desktop {
		desktop = notify.ExecDesktopNotifier{}
	}
	dispatcher := notify.NewDispatcher(repo, desktop, log)
	defer dispatcher.Close()
	deliveries, err := dispatcher.Subscribe()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Due reminders flow poller -> dispatcher; the TUI consumes deliveries.
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case due := <-p.C():
				if err := dispatcher.Dispatch(ctx, due); err != nil {
					log.Warn().Err(err).Str("reminder_id", due.ID).Msg("dispatch failed")
				}
			}
		}
	}()

	// Credential transitions drive the poller lifecycle: login starts it,
	// logout stops it. A restored session arrives as a buffered Change from
	// sess.Load above. The store re-reads its own state on each wake so a
	// coalesced transition still lands on the latest token.
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-sess.Changes():
				p.Start(sess.Token())
			}
		}
	}()

	m := update.NewModel(update.Deps{
		Config:     cfg,
		Log:        log,
		Backend:    client,
		Session:    sess,
		Cache:      repo,
		Dialer:     call.ExecDialer{},
		Deliveries: deliveries,
	})
	program := tea.NewProgram(m)
	if _, err := program.Run(); err != nil {
		return err
	}
	return nil
}
