package websocket

import (
	"crypto/tls"
	"errors"
	"net"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
)

func TestSelectTransport(t *testing.T) {
	plain, err := Resolve("ws://example.com/chat")
	require.NoError(t, err)

	tr, err := selectTransport(plain, defaultOptions(), zerolog.Nop())
	require.NoError(t, err)

	ht, ok := tr.(*hostTransport)
	require.True(t, ok)
	assert.Equal(t, "example.com:80", ht.addr)
	assert.Nil(t, ht.tlsConfig)

	secure, err := Resolve("wss://example.com:8443/rt")
	require.NoError(t, err)

	cfg := &tls.Config{MinVersion: tls.VersionTLS12}
	o := defaultOptions()
	WithTLSConfig(cfg)(o)

	tr, err = selectTransport(secure, o, zerolog.Nop())
	require.NoError(t, err)

	ht, ok = tr.(*hostTransport)
	require.True(t, ok)
	assert.Equal(t, "example.com:8443", ht.addr)
	require.NotNil(t, ht.tlsConfig)
	assert.Equal(t, "example.com", ht.tlsConfig.ServerName)
	assert.Equal(t, uint16(tls.VersionTLS12), ht.tlsConfig.MinVersion)
	assert.NotSame(t, cfg, ht.tlsConfig)
	assert.Empty(t, cfg.ServerName)
}

type stubTransport struct{}

func (stubTransport) Do(*fasthttp.Request, ResponseHandler) error { return nil }

func TestSelectTransportOverride(t *testing.T) {
	addr, err := Resolve("ws://example.com/chat")
	require.NoError(t, err)

	o := defaultOptions()
	WithTransport(stubTransport{})(o)

	tr, err := selectTransport(addr, o, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, stubTransport{}, tr)
}

func TestTransportDialErrorPassesThrough(t *testing.T) {
	errDial := errors.New("connection refused")

	addr, err := Resolve("ws://example.com/chat")
	require.NoError(t, err)

	o := defaultOptions()
	WithDialer(func(string) (net.Conn, error) { return nil, errDial })(o)

	tr, err := selectTransport(addr, o, zerolog.Nop())
	require.NoError(t, err)

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	buildRequest(req, addr, "/chat", sampleKey, nil)

	called := false
	err = tr.Do(req, func(*fasthttp.ResponseHeader, net.Conn) error {
		called = true
		return nil
	})

	assert.True(t, err == errDial, "transport errors must not be wrapped: %v", err)
	assert.False(t, called)
}
