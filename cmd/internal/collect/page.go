package collect

import (
	"context"

	"bilidm/cmd/internal/dm"
)

// Page is the decoded result of one bounded fetch. It is consumed
// immediately and never retained after its envelopes are rendered.
//
// Messages arrive newest-to-oldest, a consequence of the backward walk.
// An empty Messages slice is valid and distinct from "no more history";
// only HasMore carries that assertion.
type Page struct {
	// Status is the remote service's own result code; zero means success.
	// Non-zero is an end-of-retrieval signal, not a transport failure.
	Status   int
	MaxSeqno uint64
	MinSeqno uint64
	HasMore  bool
	Messages []dm.Envelope
}

// Fetcher is the remote fetch port. Implementations attach the session
// credential themselves; the collector only reasons about pages.
//
// FetchPage treats maxSeqno as an inclusive upper bound on the returned
// sequence numbers. Translating that bound into the service's own indexing
// is the implementation's job.
type Fetcher interface {
	FetchLatest(ctx context.Context, talkerID uint64) (Page, error)
	FetchPage(ctx context.Context, talkerID uint64, size int, maxSeqno uint64) (Page, error)
}
