package websocket

import (
	"bufio"
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
)

const (
	sampleKey    = "dGhlIHNhbXBsZSBub25jZQ=="
	sampleAccept = "s3pPLMBiTxaQ9kYGzzhZRbK+xOo="
)

func TestComputeAcceptKey(t *testing.T) {
	assert.Equal(t, sampleAccept, ComputeAcceptKey(sampleKey))

	// pooled hashes must not leak state between calls
	assert.Equal(t, ComputeAcceptKey(sampleKey), ComputeAcceptKey(sampleKey))
	assert.NotEqual(t, sampleAccept, ComputeAcceptKey("AQIDBAUGBwgJCgsMDQ4PEA=="))
}

func TestNewKey(t *testing.T) {
	key, err := NewKey(strings.NewReader("the sample nonce"))
	require.NoError(t, err)
	assert.Equal(t, sampleKey, key)
	assert.True(t, isValidChallengeKeys([]byte(key)))

	_, err = NewKey(strings.NewReader("short"))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestBuildRequest(t *testing.T) {
	addr, err := Resolve("wss://example.com:8443/rt")
	require.NoError(t, err)

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)

	buildRequest(req, addr, "/chat?room=1", sampleKey, [][2]string{{"Origin", "https://example.com"}})

	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	require.NoError(t, req.Write(w))
	require.NoError(t, w.Flush())

	raw := buf.String()
	assert.True(t, strings.HasPrefix(raw, "GET /chat?room=1 HTTP/1.1\r\n"), raw)
	assert.True(t, strings.HasSuffix(raw, "\r\n\r\n"), raw)

	for _, line := range []string{
		"Host: example.com:8443\r\n",
		"Origin: https://example.com\r\n",
		"Connection: Upgrade\r\n",
		"Upgrade: websocket\r\n",
		"Sec-WebSocket-Version: 13\r\n",
		"Sec-WebSocket-Key: " + sampleKey + "\r\n",
	} {
		assert.Contains(t, raw, line)
	}

	assert.NotContains(t, raw, "Content-Length")
}

func TestBuildRequestIgnoresHandshakeHeaders(t *testing.T) {
	addr, err := Resolve("ws://example.com/chat")
	require.NoError(t, err)

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)

	buildRequest(req, addr, "/chat", sampleKey, [][2]string{
		{"sec-websocket-key", "evil"},
		{"upgrade", "h2c"},
		{"CONNECTION", "close"},
		{"sec-websocket-version", "8"},
		{"host", "other.example.com"},
		{"X-Trace", "abc"},
	})

	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	require.NoError(t, req.Write(w))
	require.NoError(t, w.Flush())

	raw := strings.ToLower(buf.String())

	for _, name := range []string{"host:", "connection:", "upgrade:", "sec-websocket-version:", "sec-websocket-key:"} {
		assert.Equal(t, 1, strings.Count(raw, "\r\n"+name), "%s in %q", name, raw)
	}

	assert.NotContains(t, raw, "evil")
	assert.NotContains(t, raw, "h2c")
	assert.NotContains(t, raw, "other.example.com")
	assert.Contains(t, buf.String(), "X-Trace: abc\r\n")
	assert.Contains(t, buf.String(), "Sec-WebSocket-Key: "+sampleKey+"\r\n")
}

func upgradeHeader(status int, connection, upgrade, accept string) *fasthttp.ResponseHeader {
	h := &fasthttp.ResponseHeader{}
	h.SetStatusCode(status)
	if connection != "" {
		h.Set("Connection", connection)
	}
	if upgrade != "" {
		h.Set("Upgrade", upgrade)
	}
	if accept != "" {
		h.Set("Sec-WebSocket-Accept", accept)
	}
	return h
}

func TestValidateResponse(t *testing.T) {
	tests := []struct {
		name string
		h    *fasthttp.ResponseHeader
		ok   bool
	}{
		{"valid", upgradeHeader(101, "Upgrade", "websocket", sampleAccept), true},
		{"header values are case insensitive", upgradeHeader(101, "upgrade", "WebSocket", sampleAccept), true},
		{"status 200", upgradeHeader(200, "Upgrade", "websocket", sampleAccept), false},
		{"status 400", upgradeHeader(400, "Upgrade", "websocket", sampleAccept), false},
		{"missing connection", upgradeHeader(101, "", "websocket", sampleAccept), false},
		{"connection token list", upgradeHeader(101, "keep-alive, Upgrade", "websocket", sampleAccept), false},
		{"missing upgrade", upgradeHeader(101, "Upgrade", "", sampleAccept), false},
		{"wrong upgrade", upgradeHeader(101, "Upgrade", "h2c", sampleAccept), false},
		{"missing accept", upgradeHeader(101, "Upgrade", "websocket", ""), false},
		{"wrong accept", upgradeHeader(101, "Upgrade", "websocket", ComputeAcceptKey("AQIDBAUGBwgJCgsMDQ4PEA==")), false},
		{"accept differs in case", upgradeHeader(101, "Upgrade", "websocket", strings.ToLower(sampleAccept)), false},
		{"accept without padding", upgradeHeader(101, "Upgrade", "websocket", strings.TrimRight(sampleAccept, "=")), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateResponse(tt.h, sampleKey)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrResponseNotWebSocket)
		})
	}
}
