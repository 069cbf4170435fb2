package dm

import "time"

// Payload kind codes as the service sends them in msg_type.
const (
	KindText  = 1
	KindImage = 2
	KindShare = 7
)

// Receiver kind codes in receiver_type.
const (
	ReceiverUser  = 1
	ReceiverGroup = 2
)

// Envelope is one historical message as returned by the sync endpoint.
//
// Envelopes are immutable once decoded. Within a conversation msg_seqno is
// unique and totally ordered, consistent with timestamp order (lower seqno
// means earlier or equal send time).
type Envelope struct {
	SenderUID    uint64 `json:"sender_uid"`
	ReceiverID   uint64 `json:"receiver_id"`
	ReceiverType int    `json:"receiver_type"`
	MsgType      int    `json:"msg_type"`
	Seqno        uint64 `json:"msg_seqno"`
	Content      string `json:"content"`
	Timestamp    int64  `json:"timestamp"`
}

// SentAt returns the send time in the local timezone.
func (e Envelope) SentAt() time.Time {
	return time.Unix(e.Timestamp, 0).Local()
}
