package websocket

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/valyala/fasthttp"
)

// buildRequest fills req with the client opening handshake for path on addr.
//
// Header normalizing is disabled so the names go out exactly as written;
// some servers compare them case-sensitively.
func buildRequest(req *fasthttp.Request, addr *Address, path, key string, extra [][2]string) {
	req.Header.DisableNormalizing()

	req.Header.SetMethodBytes(getString)
	req.SetRequestURI(path)
	req.Header.SetHost(addr.HostHeader())

	for _, kv := range extra {
		if isHandshakeHeader(kv[0]) {
			continue
		}
		req.Header.Set(kv[0], kv[1])
	}

	req.Header.SetBytesKV(connectionString, upgradeString)
	req.Header.SetBytesKV(upgradeString, webSocketString)
	req.Header.SetBytesKV(websocketVersionString, websocketAcceptVersionString)
	req.Header.SetBytesKV(websocketKeyString, []byte(key))
}

// isHandshakeHeader reports whether name is one of the headers buildRequest
// owns. Normalizing is off, so the match has to ignore case.
func isHandshakeHeader(name string) bool {
	for _, h := range handshakeHeaders {
		if strings.EqualFold(name, h) {
			return true
		}
	}
	return false
}

var handshakeHeaders = []string{
	string(hostString),
	string(connectionString),
	string(upgradeString),
	string(websocketVersionString),
	string(websocketKeyString),
}

// validateResponse checks that h is a switching protocols answer to the
// handshake carrying key. Every failure wraps ErrResponseNotWebSocket.
func validateResponse(h *fasthttp.ResponseHeader, key string) error {
	if h.StatusCode() != fasthttp.StatusSwitchingProtocols {
		return fmt.Errorf("%w: status %d", ErrResponseNotWebSocket, h.StatusCode())
	}

	if !bytes.EqualFold(h.PeekBytes(connectionString), upgradeString) {
		return fmt.Errorf("%w: Connection header %q", ErrResponseNotWebSocket, h.PeekBytes(connectionString))
	}

	if !bytes.EqualFold(h.PeekBytes(upgradeString), webSocketString) {
		return fmt.Errorf("%w: Upgrade header %q", ErrResponseNotWebSocket, h.PeekBytes(upgradeString))
	}

	accept := h.PeekBytes(websocketAcceptString)
	if len(accept) == 0 {
		return fmt.Errorf("%w: missing Sec-WebSocket-Accept", ErrResponseNotWebSocket)
	}

	// exact match, no trimming or padding tolerance
	if !bytes.Equal(accept, computeAcceptKey([]byte(key))) {
		return fmt.Errorf("%w: Sec-WebSocket-Accept mismatch", ErrResponseNotWebSocket)
	}

	return nil
}
