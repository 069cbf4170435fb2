package transcript

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"bilidm/cmd/internal/collect"
	"bilidm/cmd/internal/dm"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func textEnv(seqno uint64, ts int64, content string) dm.Envelope {
	return dm.Envelope{
		SenderUID: 42,
		MsgType:   dm.KindText,
		Seqno:     seqno,
		Content:   `{"content":"` + content + `"}`,
		Timestamp: ts,
	}
}

// lineTimestamps extracts the bracketed timestamp prefix of every line. The
// fixed layout sorts lexicographically, so string comparison is enough.
func lineTimestamps(t *testing.T, out string) []string {
	t.Helper()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	stamps := make([]string, 0, len(lines))
	for _, l := range lines {
		end := strings.IndexByte(l, ']')
		if !strings.HasPrefix(l, "[") || end < 0 {
			t.Fatalf("malformed line %q", l)
		}
		stamps = append(stamps, l[1:end])
	}
	return stamps
}

func assertChronological(t *testing.T, out string) {
	t.Helper()
	stamps := lineTimestamps(t, out)
	for i := 1; i < len(stamps); i++ {
		if stamps[i] < stamps[i-1] {
			t.Fatalf("line %d timestamp %q earlier than previous %q:\n%s", i, stamps[i], stamps[i-1], out)
		}
	}
}

func TestAppendPage_ReversesToChronological(t *testing.T) {
	t.Parallel()

	var b strings.Builder
	a := NewAssembler(testLogger(), dm.Formatter{TalkerID: 42, TalkerNickname: "alice"}, &b)

	// Wire order is newest first.
	page := collect.Page{Messages: []dm.Envelope{
		textEnv(100, 1700000300, "third"),
		textEnv(99, 1700000200, "second"),
		textEnv(98, 1700000100, "first"),
	}}
	if err := a.AppendPage(page); err != nil {
		t.Fatalf("AppendPage: %v", err)
	}
	if err := a.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	lines := strings.Split(strings.TrimRight(b.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3:\n%s", len(lines), b.String())
	}
	for i, want := range []string{"first", "second", "third"} {
		if !strings.HasSuffix(lines[i], ": "+want) {
			t.Fatalf("line %d = %q, want suffix %q", i, lines[i], want)
		}
	}
	if a.Lines() != 3 {
		t.Fatalf("Lines()=%d want 3", a.Lines())
	}
}

func TestFlush_ChronologicalAcrossPages(t *testing.T) {
	t.Parallel()

	var b strings.Builder
	a := NewAssembler(testLogger(), dm.Formatter{TalkerID: 42, TalkerNickname: "alice"}, &b)

	// The backward walk hands over the newest seqno range first; the flushed
	// file must still read oldest-to-newest over the whole run, with every
	// adjacent pair of lines non-decreasing in timestamp.
	newer := collect.Page{Messages: []dm.Envelope{
		textEnv(100, 1700000400, "d"),
		textEnv(99, 1700000300, "c"),
	}}
	older := collect.Page{Messages: []dm.Envelope{
		textEnv(98, 1700000200, "b"),
		textEnv(97, 1700000100, "a"),
	}}
	for _, p := range []collect.Page{newer, older} {
		if err := a.AppendPage(p); err != nil {
			t.Fatalf("AppendPage: %v", err)
		}
	}
	if err := a.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	out := b.String()
	assertChronological(t, out)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want 4:\n%s", len(lines), out)
	}
	for i, want := range []string{"a", "b", "c", "d"} {
		if !strings.HasSuffix(lines[i], ": "+want) {
			t.Fatalf("line %d = %q, want suffix %q", i, lines[i], want)
		}
	}
}

func TestFlush_PartialRunStaysChronological(t *testing.T) {
	t.Parallel()

	var b strings.Builder
	a := NewAssembler(testLogger(), dm.Formatter{TalkerID: 42, TalkerNickname: "alice"}, &b)

	// An aborted run flushes only the pages it got; they must still come out
	// oldest-first.
	if err := a.AppendPage(collect.Page{Messages: []dm.Envelope{
		textEnv(50, 1700000500, "newest"),
		textEnv(49, 1700000450, "older"),
	}}); err != nil {
		t.Fatalf("AppendPage: %v", err)
	}
	if err := a.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	assertChronological(t, b.String())
	if !strings.HasSuffix(strings.TrimRight(b.String(), "\n"), ": newest") {
		t.Fatalf("newest message not last:\n%s", b.String())
	}
}

func TestAppendPage_UnrenderableFallsBackToPlaceholder(t *testing.T) {
	t.Parallel()

	var b strings.Builder
	a := NewAssembler(testLogger(), dm.Formatter{TalkerID: 42, TalkerNickname: "alice"}, &b)

	page := collect.Page{Messages: []dm.Envelope{
		textEnv(12, 1700000200, "fine"),
		{SenderUID: 42, MsgType: dm.KindText, Seqno: 11, Content: "}}broken", Timestamp: 1700000100},
	}}
	if err := a.AppendPage(page); err != nil {
		t.Fatalf("AppendPage: %v", err)
	}
	if err := a.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	out := b.String()
	if !strings.Contains(out, ": [unrenderable message]\n") {
		t.Fatalf("missing placeholder line:\n%s", out)
	}
	if !strings.Contains(out, ": fine\n") {
		t.Fatalf("good line lost alongside bad one:\n%s", out)
	}
	if a.Unrenderable() != 1 || a.Lines() != 2 {
		t.Fatalf("counters wrong: lines=%d unrenderable=%d", a.Lines(), a.Unrenderable())
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, io.ErrClosedPipe }

func TestFlush_WriteFailureAborts(t *testing.T) {
	t.Parallel()

	a := NewAssembler(testLogger(), dm.Formatter{}, failingWriter{})
	if err := a.AppendPage(collect.Page{Messages: []dm.Envelope{textEnv(1, 1700000000, "x")}}); err != nil {
		t.Fatalf("AppendPage buffers only, got %v", err)
	}
	if err := a.Flush(); err == nil {
		t.Fatalf("expected write failure to surface at flush")
	}
}

// scriptedFetcher serves a fixed bootstrap response and bounded pages in
// order, for exercising collector, assembler, and sink together.
type scriptedFetcher struct {
	latest collect.Page
	pages  []collect.Page
}

func (f *scriptedFetcher) FetchLatest(_ context.Context, _ uint64) (collect.Page, error) {
	return f.latest, nil
}

func (f *scriptedFetcher) FetchPage(_ context.Context, _ uint64, _ int, _ uint64) (collect.Page, error) {
	p := f.pages[0]
	f.pages = f.pages[1:]
	return p, nil
}

func TestEndToEnd_MultiPageFileIsOldestFirst(t *testing.T) {
	t.Parallel()

	f := &scriptedFetcher{
		latest: collect.Page{MaxSeqno: 100, MinSeqno: 100, HasMore: true, Messages: []dm.Envelope{textEnv(100, 1700000600, "f")}},
		pages: []collect.Page{
			{MaxSeqno: 100, MinSeqno: 99, HasMore: true, Messages: []dm.Envelope{
				textEnv(100, 1700000600, "f"),
				textEnv(99, 1700000500, "e"),
			}},
			{MaxSeqno: 98, MinSeqno: 97, HasMore: true, Messages: []dm.Envelope{
				textEnv(98, 1700000400, "d"),
				textEnv(97, 1700000300, "c"),
			}},
			{MaxSeqno: 96, MinSeqno: 95, HasMore: false, Messages: []dm.Envelope{
				textEnv(96, 1700000200, "b"),
				textEnv(95, 1700000100, "a"),
			}},
		},
	}

	sink, err := NewFileSink(t.TempDir(), time.Now())
	if err != nil {
		t.Fatalf("NewFileSink: %v", err)
	}
	asm := NewAssembler(testLogger(), dm.Formatter{TalkerID: 42, TalkerNickname: "alice"}, sink)
	col := collect.New(testLogger(), f, collect.Config{TalkerID: 42, PageSize: 2, PageDelay: time.Millisecond})

	stats, err := col.Run(context.Background(), asm.AppendPage)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if err := asm.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if stats.Pages != 3 || stats.Messages != 6 {
		t.Fatalf("stats=%+v want 3 pages / 6 messages", stats)
	}

	data, err := os.ReadFile(sink.Path())
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	out := string(data)
	assertChronological(t, out)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 6 {
		t.Fatalf("got %d lines, want 6:\n%s", len(lines), out)
	}
	for i, want := range []string{"a", "b", "c", "d", "e", "f"} {
		if !strings.HasSuffix(lines[i], ": "+want) {
			t.Fatalf("line %d = %q, want suffix %q", i, lines[i], want)
		}
	}
}
