package websocket

import (
	"crypto/rand"
	"crypto/tls"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

// ErrorHandler receives failures of a background connect.
type ErrorHandler func(err error)

// Option configures a Client.
type Option func(*options)

type options struct {
	// logger for handshake and session events
	logger zerolog.Logger

	// errorHandler is the default failure handler for ConnectInBackground
	errorHandler ErrorHandler

	// dial opens the underlying TCP connection
	dial fasthttp.DialFunc

	// tlsConfig is used for wss targets
	tlsConfig *tls.Config

	// random is the source for handshake keys and frame masks
	random io.Reader

	// transport replaces the dial based transport entirely
	transport Transport

	// extra request headers, in insertion order
	headers [][2]string
}

func defaultOptions() *options {
	return &options{
		logger: zerolog.New(os.Stderr).With().Timestamp().Logger(),
		random: rand.Reader,
	}
}

// WithLogger sets the logger used by the client and its sessions.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithErrorHandler sets the handler ConnectInBackground uses when it is given
// none. The default logs the error and carries on.
func WithErrorHandler(h ErrorHandler) Option {
	return func(o *options) {
		o.errorHandler = h
	}
}

// WithDialer sets the function used to open connections.
func WithDialer(dial fasthttp.DialFunc) Option {
	return func(o *options) {
		o.dial = dial
	}
}

// WithTLSConfig sets the TLS configuration for wss targets. ServerName
// defaults to the target host.
func WithTLSConfig(cfg *tls.Config) Option {
	return func(o *options) {
		o.tlsConfig = cfg
	}
}

// WithRandom sets the random source for handshake keys and masking keys.
func WithRandom(r io.Reader) Option {
	return func(o *options) {
		o.random = r
	}
}

// WithTransport replaces the built-in transport.
func WithTransport(t Transport) Option {
	return func(o *options) {
		o.transport = t
	}
}

// WithHeader adds a header to the handshake request, e.g. Origin. Host and the
// websocket headers themselves cannot be overridden; such keys are ignored
// whatever their case.
func WithHeader(key, value string) Option {
	return func(o *options) {
		o.headers = append(o.headers, [2]string{key, value})
	}
}
