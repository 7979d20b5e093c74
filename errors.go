package websocket

import "errors"

var (
	// ErrUnsupportedScheme is returned when the URI scheme is not exactly "ws" or "wss".
	ErrUnsupportedScheme = errors.New("websocket: unsupported scheme")

	// ErrHostRequired is returned when the URI has no host component.
	ErrHostRequired = errors.New("websocket: host required")

	// ErrResponseNotWebSocket is returned when the server answer is not a valid
	// switching protocols response for the request that was sent: wrong status,
	// wrong Connection or Upgrade header, or a missing or mismatched
	// Sec-WebSocket-Accept value.
	ErrResponseNotWebSocket = errors.New("websocket: response is not a websocket upgrade")

	// ErrSessionClosed is returned when writing to a session whose connection is closed.
	ErrSessionClosed = errors.New("websocket: session closed")

	// ErrSessionRunning is returned by Session.Run when the read loop already runs.
	ErrSessionRunning = errors.New("websocket: session already running")

	// ErrProtocolError is returned by Session.Run when the peer violates
	// framing rules; the session answers with close code 1002.
	ErrProtocolError = errors.New("websocket: protocol error")

	// ErrFrameTooLarge is returned when a frame or reassembled message exceeds the size limit.
	ErrFrameTooLarge = errors.New("websocket: frame too large")
)
