package biliapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"bilidm/cmd/internal/collect"
	"bilidm/cmd/internal/dm"
)

// DefaultBaseURL is the production session-sync host.
const DefaultBaseURL = "https://api.vc.bilibili.com"

const fetchSessionMsgsPath = "/svr_sync/v1/svr_sync/fetch_session_msgs"

// Fixed query discriminators the endpoint expects from a web client.
const (
	sessionTypeDirect = "1"
	senderDeviceID    = "1"
	buildTag          = "0"
	mobiApp           = "web"
)

// Client talks to the session-sync endpoint. It implements collect.Fetcher.
// The session cookie is an explicit value held by the client, attached per
// request; it is opaque here and never inspected.
type Client struct {
	httpc  *http.Client
	base   string
	cookie string
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL overrides the endpoint host, mainly for tests.
func WithBaseURL(base string) Option {
	return func(c *Client) { c.base = base }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(httpc *http.Client) Option {
	return func(c *Client) { c.httpc = httpc }
}

// New constructs a client holding the given session cookie.
func New(cookie string, opts ...Option) *Client {
	c := &Client{
		httpc:  &http.Client{Timeout: 30 * time.Second},
		base:   DefaultBaseURL,
		cookie: cookie,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// response is the outer wire envelope common to both calls.
type response struct {
	Code    int          `json:"code"`
	Msg     string       `json:"msg"`
	Message string       `json:"message"`
	TTL     int          `json:"ttl"`
	Data    responseData `json:"data"`
}

type responseData struct {
	Messages []dm.Envelope `json:"messages"`
	MinSeqno uint64        `json:"min_seqno"`
	MaxSeqno uint64        `json:"max_seqno"`
	HasMore  int           `json:"has_more"`
}

// FetchLatest retrieves the single most recent envelope, used by the
// collector to seed its cursor.
func (c *Client) FetchLatest(ctx context.Context, talkerID uint64) (collect.Page, error) {
	q := c.baseQuery(talkerID)
	q.Set("size", "1")
	return c.fetch(ctx, q)
}

// FetchPage retrieves one page bounded above by maxSeqno, inclusive.
//
// The server's end_seqno parameter excludes its value in the server's own
// indexing, so the inclusive bound is translated by passing maxSeqno+1.
// Applying this anywhere else re-includes the boundary message.
func (c *Client) FetchPage(ctx context.Context, talkerID uint64, size int, maxSeqno uint64) (collect.Page, error) {
	q := c.baseQuery(talkerID)
	q.Set("size", strconv.Itoa(size))
	q.Set("end_seqno", strconv.FormatUint(maxSeqno+1, 10))
	return c.fetch(ctx, q)
}

func (c *Client) baseQuery(talkerID uint64) url.Values {
	q := url.Values{}
	q.Set("talker_id", strconv.FormatUint(talkerID, 10))
	q.Set("session_type", sessionTypeDirect)
	q.Set("sender_device_id", senderDeviceID)
	q.Set("build", buildTag)
	q.Set("mobi_app", mobiApp)
	return q
}

func (c *Client) fetch(ctx context.Context, q url.Values) (collect.Page, error) {
	u := c.base + fetchSessionMsgsPath + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return collect.Page{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Cookie", c.cookie)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return collect.Page{}, fmt.Errorf("fetch session msgs: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return collect.Page{}, fmt.Errorf("fetch session msgs: unexpected HTTP status %d", resp.StatusCode)
	}

	var body response
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return collect.Page{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	return collect.Page{
		Status:   body.Code,
		MaxSeqno: body.Data.MaxSeqno,
		MinSeqno: body.Data.MinSeqno,
		HasMore:  body.Data.HasMore != 0,
		Messages: body.Data.Messages,
	}, nil
}
