package dm

import (
	"encoding/json"
	"fmt"
)

// Payload is the closed union of message content variants. Adding a message
// kind means adding one variant and one Render arm, nothing open-ended.
type Payload interface {
	Render() string
}

// TextPayload is a plain text message.
type TextPayload struct {
	Content string `json:"content"`
}

// Render returns the literal text, unmodified.
func (p TextPayload) Render() string { return p.Content }

// ImagePayload is an uploaded picture. Original is 1 when the asset is the
// original upload rather than a transcoded copy.
type ImagePayload struct {
	Original  int    `json:"original"`
	URL       string `json:"url"`
	ImageType string `json:"imageType"`
	Height    int    `json:"height"`
	Width     int    `json:"width"`
}

// Render marks the resolution flavor and appends the source URL.
func (p ImagePayload) Render() string {
	flavor := "transcoded"
	if p.Original == 1 {
		flavor = "original"
	}
	return fmt.Sprintf("[image][%s] %s", flavor, p.URL)
}

// Share source codes. Only the video flavor has a rendering rule so far;
// the rest are rejected in decode rather than guessed at.
const (
	ShareSourceVideo = 5
)

// SharePayload is a forwarded piece of site content.
type SharePayload struct {
	Title    string `json:"title"`
	Headline string `json:"headline"`
	Thumb    string `json:"thumb"`
	Source   int    `json:"source"`
	BVID     string `json:"bvid"`
}

// Render brackets the title and appends the canonical identifier.
func (p SharePayload) Render() string {
	id := p.BVID
	if id == "" {
		id = "[no id]"
	}
	return fmt.Sprintf("[%s] %s", p.Title, id)
}

// UnknownPayload stands in for kinds this tool does not know how to show.
// It always renders the same placeholder and never fails.
type UnknownPayload struct{}

// Render returns the fixed placeholder.
func (UnknownPayload) Render() string { return "[unsupported message]" }

// DecodePayload interprets an envelope's raw content according to its
// msg_type. A body that does not match the declared kind fails with
// ErrPayloadMismatch for that envelope only; unknown kinds always succeed.
func DecodePayload(env Envelope) (Payload, error) {
	switch env.MsgType {
	case KindText:
		var p TextPayload
		if err := json.Unmarshal([]byte(env.Content), &p); err != nil {
			return nil, fmt.Errorf("text payload seqno=%d: %w: %v", env.Seqno, ErrPayloadMismatch, err)
		}
		return p, nil
	case KindImage:
		var p ImagePayload
		if err := json.Unmarshal([]byte(env.Content), &p); err != nil {
			return nil, fmt.Errorf("image payload seqno=%d: %w: %v", env.Seqno, ErrPayloadMismatch, err)
		}
		return p, nil
	case KindShare:
		var p SharePayload
		if err := json.Unmarshal([]byte(env.Content), &p); err != nil {
			return nil, fmt.Errorf("share payload seqno=%d: %w: %v", env.Seqno, ErrPayloadMismatch, err)
		}
		if p.Source != ShareSourceVideo {
			return nil, fmt.Errorf("share payload seqno=%d source=%d: %w", env.Seqno, p.Source, ErrUnsupportedShare)
		}
		return p, nil
	default:
		return UnknownPayload{}, nil
	}
}
