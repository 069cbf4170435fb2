package dm

import "fmt"

// Viewpoint selects whose inbox perspective labels the two participants.
type Viewpoint int

const (
	// FirstPerson reads the conversation as the account that fetched it.
	FirstPerson Viewpoint = 0
	// ThirdPerson reads the conversation from the peer's side.
	ThirdPerson Viewpoint = 1
)

const timestampLayout = "2006-01-02 15:04:05"

// Formatter renders envelopes into transcript lines for one conversation.
// Formatting is pure: the same envelope always yields the same line.
type Formatter struct {
	Viewpoint      Viewpoint
	TalkerID       uint64
	TalkerNickname string
}

// Speaker resolves the display name for an envelope's author.
//
// The asymmetry is deliberate: first-person matches on sender, third-person
// on receiver. It encodes whose inbox the transcript is read from, so it
// must not be "simplified" into a single comparison.
func (f Formatter) Speaker(env Envelope) string {
	switch f.Viewpoint {
	case ThirdPerson:
		if env.ReceiverID == f.TalkerID {
			return f.TalkerNickname
		}
	default:
		if env.SenderUID == f.TalkerID {
			return f.TalkerNickname
		}
	}
	return "me"
}

// Line renders one envelope as "[YYYY-MM-DD HH:MM:SS]<speaker>: <content>"
// without a trailing newline. Decode failures are attributable to the single
// envelope and carry its seqno.
func (f Formatter) Line(env Envelope) (string, error) {
	payload, err := DecodePayload(env)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("[%s]%s: %s", env.SentAt().Format(timestampLayout), f.Speaker(env), payload.Render()), nil
}

// UnrenderableLine keeps timestamp and speaker attribution for an envelope
// whose payload could not be decoded, so one malformed record does not cost
// the page its place in the transcript.
func (f Formatter) UnrenderableLine(env Envelope) string {
	return fmt.Sprintf("[%s]%s: [unrenderable message]", env.SentAt().Format(timestampLayout), f.Speaker(env))
}
