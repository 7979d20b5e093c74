package websocket

// handshake states of a single connect attempt
type handshakeState uint8

const (
	resolving handshakeState = iota + 1
	transportSelected
	requestSent
	awaitingResponse
	validated
	sessionRunning
	failed
)

func (s handshakeState) String() string {
	switch s {
	case resolving:
		return "Resolving"
	case transportSelected:
		return "TransportSelected"
	case requestSent:
		return "RequestSent"
	case awaitingResponse:
		return "AwaitingResponse"
	case validated:
		return "Validated"
	case sessionRunning:
		return "SessionRunning"
	case failed:
		return "Failed"
	default:
		return "Unknown"
	}
}
