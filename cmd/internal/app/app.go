// Package app wires the bilidm runtime: config, logging, the fetch client,
// the pagination collector, and the transcript sink.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bilidm/cmd/internal/biliapi"
	"bilidm/cmd/internal/collect"
	"bilidm/cmd/internal/dm"
	"bilidm/cmd/internal/transcript"
)

// App is one export run's wiring. All state is owned by the single linear
// control flow in Run; nothing here is shared across goroutines.
type App struct {
	cfg Config
	log Logger
}

// New constructs an App from config and logger.
func New(cfg Config, log Logger) *App {
	return &App{cfg: cfg, log: log}
}

// Run fetches the conversation's full history and writes the transcript.
//
// Cancellation mid-run is a graceful outcome: the collector stops between
// pages and whatever was assembled stays on disk. Any other failure is
// returned after the sink has been flushed, so partial transcripts survive
// early termination too.
func (a *App) Run(ctx context.Context) error {
	fetcher := biliapi.New(a.cfg.Cookie, biliapi.WithBaseURL(a.cfg.APIBase))

	sink, err := transcript.NewFileSink(a.cfg.OutputDir, time.Now())
	if err != nil {
		return err
	}

	fmtr := dm.Formatter{
		Viewpoint:      dm.Viewpoint(a.cfg.Viewpoint),
		TalkerID:       a.cfg.TalkerID,
		TalkerNickname: a.cfg.TalkerNickname,
	}
	asm := transcript.NewAssembler(a.log, fmtr, sink)

	col := collect.New(a.log, fetcher, collect.Config{
		TalkerID:  a.cfg.TalkerID,
		PageSize:  a.cfg.PageSize,
		PageDelay: a.cfg.PageDelay,
	})

	a.log.Info("run.start",
		"talker_id", a.cfg.TalkerID,
		"size", a.cfg.PageSize,
		"viewpoint", a.cfg.Viewpoint,
		"path", sink.Path(),
	)

	stats, runErr := col.Run(ctx, asm.AppendPage)

	// Flush even after a failed or cancelled run: the segments collected so
	// far still form a chronological partial transcript.
	if flushErr := asm.Flush(); flushErr != nil && runErr == nil {
		runErr = flushErr
	}
	if closeErr := sink.Close(); closeErr != nil && runErr == nil {
		runErr = closeErr
	}

	if errors.Is(runErr, context.Canceled) {
		a.log.Warn("run.cancelled",
			"pages", stats.Pages,
			"lines", asm.Lines(),
			"path", sink.Path(),
		)
		return nil
	}
	if runErr != nil {
		a.log.Error("run.fail", "err", runErr, "pages", stats.Pages, "lines", asm.Lines())
		return fmt.Errorf("export run: %w", runErr)
	}

	a.log.Info("run.done",
		"pages", stats.Pages,
		"messages", stats.Messages,
		"lines", asm.Lines(),
		"unrenderable", asm.Unrenderable(),
		"oldest_seqno", stats.OldestSeqno,
		"path", sink.Path(),
	)
	return nil
}
