package websocket

var (
	webSocketString              = []byte("websocket")
	upgradeString                = []byte("Upgrade")
	connectionString             = []byte("Connection")
	websocketKeyString           = []byte("Sec-WebSocket-Key")
	websocketVersionString       = []byte("Sec-WebSocket-Version")
	websocketAcceptVersionString = []byte("13")
	websocketAcceptString        = []byte("Sec-WebSocket-Accept")
	getString                    = []byte("GET")
	originString                 = []byte("Origin")
	hostString                   = []byte("Host")
)

const (
	schemeWS  = "ws"
	schemeWSS = "wss"

	defaultPort       = 80
	defaultSecurePort = 443

	// key length in bytes before base64 encoding
	challengeKeySize = 16
)

type frameTypeCode uint8

const (
	codeContinuation frameTypeCode = 0x0

	codeText frameTypeCode = 0x1

	codeBinary frameTypeCode = 0x2

	codeClose frameTypeCode = 0x8

	codePing frameTypeCode = 0x9

	codePong frameTypeCode = 0xA

	codeUnknown frameTypeCode = 0xFF
)

func (f frameTypeCode) String() string {
	switch f {
	case codeContinuation:
		return "Continuation"
	case codeText:
		return "Text"
	case codeBinary:
		return "Binary"
	case codeClose:
		return "Close"
	case codePing:
		return "Ping"
	case codePong:
		return "Pong"
	default:
		return "Unknown"
	}
}

// StatusCode is a close frame status code.
type StatusCode uint16

const (
	StatusNormalClosure StatusCode = 1000

	StatusGoingAway StatusCode = 1001

	StatusProtocolError StatusCode = 1002

	StatusUnsupportedData StatusCode = 1003

	StatusNoStatusReceived StatusCode = 1005

	StatusAbnormalClosure StatusCode = 1006

	StatusInvalidFramePayloadData StatusCode = 1007

	StatusPolicyViolation StatusCode = 1008

	StatusMessageTooBig StatusCode = 1009

	StatusMandatoryExtension StatusCode = 1010

	StatusInternalServerError StatusCode = 1011
)

func (s StatusCode) String() string {
	switch s {
	case StatusNormalClosure:
		return "NormalClosure"
	case StatusGoingAway:
		return "GoingAway"
	case StatusProtocolError:
		return "ProtocolError"
	case StatusUnsupportedData:
		return "UnsupportedData"
	case StatusNoStatusReceived:
		return "NoStatusReceived"
	case StatusAbnormalClosure:
		return "AbnormalClosure"
	case StatusInvalidFramePayloadData:
		return "InvalidFramePayloadData"
	case StatusPolicyViolation:
		return "PolicyViolation"
	case StatusMessageTooBig:
		return "MessageTooBig"
	case StatusMandatoryExtension:
		return "MandatoryExtension"
	case StatusInternalServerError:
		return "InternalServerError"
	default:
		return "Unknown"
	}
}
