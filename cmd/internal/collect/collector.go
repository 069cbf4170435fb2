package collect

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// DefaultPageDelay is the politeness pause between successive page fetches.
// It is a scheduling policy of the collector, not of the transport.
const DefaultPageDelay = 500 * time.Millisecond

// Config controls one collection run.
type Config struct {
	TalkerID  uint64
	PageSize  int
	PageDelay time.Duration
}

// PageFunc consumes one page of envelopes. Returning an error aborts the
// run; whatever was emitted before stays emitted.
type PageFunc func(page Page) error

// Stats summarizes a finished (or aborted) run.
type Stats struct {
	Pages       int
	Messages    int
	OldestSeqno uint64
}

// Collector walks a conversation's history strictly backward, one bounded
// page at a time, with no gap and no duplicate sequence number across pages.
type Collector struct {
	log   *slog.Logger
	fetch Fetcher
	cfg   Config
}

// New constructs a collector over the given fetch port.
func New(log *slog.Logger, fetch Fetcher, cfg Config) *Collector {
	if cfg.PageDelay <= 0 {
		cfg.PageDelay = DefaultPageDelay
	}
	return &Collector{log: log, fetch: fetch, cfg: cfg}
}

// Run fetches the full history and hands each page to emit.
//
// The bootstrap fetch supplies only the initial cursor; its envelope is never
// emitted. The first bounded page re-covers that newest message, so it
// reaches the transcript exactly once.
//
// A non-zero remote status ends the run cleanly with that page discarded.
// Fetch failures and pagination inconsistencies abort with an error; emitted
// pages are never rolled back. Cancellation is honored between fetches.
func (c *Collector) Run(ctx context.Context, emit PageFunc) (Stats, error) {
	var stats Stats

	latest, err := c.fetch.FetchLatest(ctx, c.cfg.TalkerID)
	if err != nil {
		return stats, fmt.Errorf("bootstrap fetch: %w", err)
	}
	if latest.Status != 0 {
		c.log.Warn("collect.bootstrap.remote_status", "code", latest.Status)
		return stats, nil
	}
	if latest.MaxSeqno == 0 || len(latest.Messages) == 0 {
		c.log.Info("collect.history.empty", "talker_id", c.cfg.TalkerID)
		return stats, nil
	}

	cursor := latest.MaxSeqno
	c.log.Debug("collect.bootstrap", "max_seqno", cursor)

	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		page, err := c.fetch.FetchPage(ctx, c.cfg.TalkerID, c.cfg.PageSize, cursor)
		if err != nil {
			return stats, fmt.Errorf("page fetch at seqno %d: %w", cursor, err)
		}
		if page.Status != 0 {
			c.log.Warn("collect.page.remote_status", "code", page.Status, "cursor", cursor)
			return stats, nil
		}

		if len(page.Messages) > 0 {
			if err := emit(page); err != nil {
				return stats, fmt.Errorf("emit page at seqno %d: %w", cursor, err)
			}
			stats.Pages++
			stats.Messages += len(page.Messages)
			stats.OldestSeqno = page.MinSeqno
			c.log.Debug("collect.page.fetched",
				"min_seqno", page.MinSeqno,
				"max_seqno", page.MaxSeqno,
				"count", len(page.Messages),
				"has_more", page.HasMore,
			)
		}

		// The service's word is the only clean terminal state.
		if !page.HasMore {
			return stats, nil
		}

		// An empty page with has_more set still advances off its own bounds;
		// a page with neither is unrecoverable.
		if page.MinSeqno == 0 {
			return stats, fmt.Errorf("cursor %d: %w", cursor, ErrInconsistentPage)
		}
		next := page.MinSeqno - 1
		if next >= cursor {
			return stats, fmt.Errorf("cursor %d -> %d: %w", cursor, next, ErrCursorStuck)
		}
		cursor = next

		if err := sleepCtx(ctx, c.cfg.PageDelay); err != nil {
			return stats, err
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
