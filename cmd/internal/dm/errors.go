package dm

import "errors"

var (
	// ErrPayloadMismatch is returned when an envelope's raw content does not
	// decode as the payload shape its msg_type declares.
	ErrPayloadMismatch = errors.New("payload does not match declared kind")

	// ErrUnsupportedShare is returned for share payloads whose source code has
	// no rendering rule yet. Failing loudly beats mis-rendering.
	ErrUnsupportedShare = errors.New("unsupported share source")
)
