package transcript

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"bilidm/cmd/internal/collect"
	"bilidm/cmd/internal/dm"
)

// Assembler formats envelopes and assembles the chronological transcript.
// It satisfies collect.PageFunc via AppendPage; Flush writes the result.
type Assembler struct {
	log  *slog.Logger
	fmtr dm.Formatter
	w    io.Writer

	// Rendered text per page, oldest-first within each segment. Segments are
	// held until Flush because pages arrive newest range first while the
	// file must read oldest-to-newest across the whole run.
	segments []string

	lines        int
	unrenderable int
}

// NewAssembler constructs an assembler writing through w.
func NewAssembler(log *slog.Logger, fmtr dm.Formatter, w io.Writer) *Assembler {
	return &Assembler{log: log, fmtr: fmtr, w: w}
}

// AppendPage renders one page's envelopes oldest-first into a buffered
// segment. Nothing reaches the sink until Flush.
//
// The page is walked in reverse because its wire order is newest-to-oldest.
// An envelope whose payload cannot be decoded is rendered as the fixed
// placeholder and logged with its seqno; the page continues.
func (a *Assembler) AppendPage(page collect.Page) error {
	if len(page.Messages) == 0 {
		return nil
	}

	var b strings.Builder
	for i := len(page.Messages) - 1; i >= 0; i-- {
		env := page.Messages[i]

		line, err := a.fmtr.Line(env)
		if err != nil {
			a.log.Warn("transcript.unrenderable", "seqno", env.Seqno, "msg_type", env.MsgType, "err", err)
			line = a.fmtr.UnrenderableLine(env)
			a.unrenderable++
		}

		b.WriteString(line)
		b.WriteByte('\n')
		a.lines++
	}

	a.segments = append(a.segments, b.String())
	return nil
}

// Flush writes the buffered segments to the sink in reverse arrival order:
// the last page fetched holds the oldest messages, so it goes first. Called
// once when the run ends, including aborted runs — segments collected before
// the abort still come out oldest-first.
func (a *Assembler) Flush() error {
	for i := len(a.segments) - 1; i >= 0; i-- {
		if _, err := io.WriteString(a.w, a.segments[i]); err != nil {
			return fmt.Errorf("write transcript segment: %w", err)
		}
	}
	a.segments = nil
	return nil
}

// Lines reports how many lines have been rendered so far.
func (a *Assembler) Lines() int { return a.lines }

// Unrenderable reports how many envelopes fell back to the placeholder.
func (a *Assembler) Unrenderable() int { return a.unrenderable }
