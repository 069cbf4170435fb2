package app

import (
	"context"
	"crypto/rand"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/oklog/ulid/v2"
)

// Run is the CLI entrypoint used by cmd/bilidm.
// It returns an error instead of calling os.Exit to keep defers effective.
func Run() error {
	// Missing .env is fine; it only ever supplies optional env vars.
	_ = godotenv.Load()

	cfg, err := LoadConfig(os.Args[1:])
	if err != nil {
		return err
	}

	log := NewLogger(cfg.LogLevel, cfg.LogFormat, !cfg.NoColor)

	runID, err := newRunID(time.Now())
	if err != nil {
		return fmt.Errorf("mint run id: %w", err)
	}
	log = log.With("run_id", runID)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return New(cfg, log).Run(ctx)
}

// newRunID returns a fresh ULID string stamped on every log line of a run.
func newRunID(now time.Time) (string, error) {
	if now.IsZero() {
		now = time.Now().UTC()
	}
	id, err := ulid.New(ulid.Timestamp(now), rand.Reader)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
