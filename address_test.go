package websocket

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		uri        string
		host       string
		port       int
		secure     bool
		path       string
		httpURI    string
		hostHeader string
	}{
		{"ws://example.com/chat", "example.com", 80, false, "/chat", "http://example.com", "example.com"},
		{"wss://example.com:8443/rt", "example.com", 8443, true, "/rt", "https://example.com:8443", "example.com:8443"},
		{"wss://example.com", "example.com", 443, true, "/", "https://example.com", "example.com"},
		{"ws://Example.COM:80/a?b=c", "example.com", 80, false, "/a?b=c", "http://example.com", "example.com"},
		{"ws://user@example.com:9000/", "example.com", 9000, false, "/", "http://example.com:9000", "example.com:9000"},
		{"ws://[::1]:9000/x", "::1", 9000, false, "/x", "http://[::1]:9000", "[::1]:9000"},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			addr, err := Resolve(tt.uri)
			require.NoError(t, err)

			assert.Equal(t, tt.host, addr.Host)
			assert.Equal(t, tt.port, addr.Port)
			assert.Equal(t, tt.secure, addr.Secure())
			assert.Equal(t, tt.path, addr.Path)
			assert.Equal(t, tt.httpURI, addr.HTTPURI())
			assert.Equal(t, tt.hostHeader, addr.HostHeader())
		})
	}
}

func TestResolveUnsupportedScheme(t *testing.T) {
	for _, uri := range []string{
		"http://example.com/chat",
		"https://example.com/chat",
		"WS://example.com/chat",
		"Wss://example.com/chat",
		"ftp://example.com",
		"example.com/chat",
		"localhost:8080",
		"",
	} {
		_, err := Resolve(uri)
		assert.ErrorIs(t, err, ErrUnsupportedScheme, uri)
	}
}

func TestResolveHostRequired(t *testing.T) {
	for _, uri := range []string{
		"ws://",
		"ws:///chat",
		"wss://:8443/rt",
		"ws:chat",
		"wss://user@/x",
	} {
		_, err := Resolve(uri)
		assert.ErrorIs(t, err, ErrHostRequired, uri)
	}
}

func TestResolveInvalidPort(t *testing.T) {
	_, err := Resolve("ws://example.com:99999/")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrHostRequired)
}

func TestAddressHostPort(t *testing.T) {
	addr, err := Resolve("wss://example.com/rt")
	require.NoError(t, err)
	assert.Equal(t, "example.com:443", addr.HostPort())
	assert.Equal(t, "wss://example.com/rt", addr.String())
}
