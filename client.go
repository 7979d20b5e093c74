package websocket

import (
	"fmt"
	"net"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

// OnConnected is called with a freshly upgraded session before its read
// loop starts, so handlers can be registered. Returning an error aborts the
// connect and closes the session.
type OnConnected func(s *Session) error

// Client performs websocket opening handshakes against one target.
//
// The transport is shared by every connect on the same Client; if it is not
// safe for concurrent use, concurrent connects must be serialized by the
// caller.
type Client struct {
	addr        *Address
	transport   Transport
	onConnected OnConnected
	opts        *options
	logger      zerolog.Logger
}

// NewClient resolves uri and selects the plain or TLS transport for it.
// onConnected may be nil when only Dial is used.
func NewClient(uri string, onConnected OnConnected, opts ...Option) (*Client, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	logger := o.logger.With().Str("uri", uri).Logger()
	logger.Debug().Stringer("state", resolving).Send()

	addr, err := Resolve(uri)
	if err != nil {
		logger.Debug().Stringer("state", failed).Err(err).Send()
		return nil, err
	}

	transport, err := selectTransport(addr, o, logger)
	if err != nil {
		logger.Debug().Stringer("state", failed).Err(err).Send()
		return nil, err
	}

	logger.Debug().
		Stringer("state", transportSelected).
		Str("http_uri", addr.HTTPURI()).
		Bool("secure", addr.Secure()).
		Send()

	return &Client{
		addr:        addr,
		transport:   transport,
		onConnected: onConnected,
		opts:        o,
		logger:      logger,
	}, nil
}

// Address returns a copy of the resolved target.
func (c *Client) Address() Address {
	return *c.addr
}

// Dial performs the opening handshake for path and returns the upgraded
// session without running it. An empty path uses the path of the client URI.
func (c *Client) Dial(path string) (*Session, error) {
	if path == "" {
		path = c.addr.Path
	}

	key, err := NewKey(c.opts.random)
	if err != nil {
		return nil, c.fail(err)
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)

	buildRequest(req, c.addr, path, key, c.opts.headers)

	c.logger.Debug().Stringer("state", requestSent).Str("path", path).Send()

	var session *Session

	err = c.transport.Do(req, func(resp *fasthttp.ResponseHeader, stream net.Conn) error {
		if err := validateResponse(resp, key); err != nil {
			return err
		}

		c.logger.Debug().Stringer("state", validated).Send()

		session = newSession(stream, true, c.opts.random, c.logger)
		return nil
	})

	if err != nil {
		return nil, c.fail(err)
	}

	// a transport that returns without calling the handler never produced a
	// response
	if session == nil {
		return nil, c.fail(fmt.Errorf("%w: transport returned no response", ErrResponseNotWebSocket))
	}

	return session, nil
}

// Connect dials path, hands the session to the OnConnected callback and then
// blocks in the session read loop until it ends.
func (c *Client) Connect(path string) error {
	session, err := c.Dial(path)
	if err != nil {
		return err
	}

	if err := c.handoff(session); err != nil {
		return c.fail(err)
	}

	c.logger.Debug().Stringer("state", sessionRunning).Str("session", session.ID()).Send()

	return session.Run()
}

// handoff runs the OnConnected callback; the session is closed if it fails
// or panics.
func (c *Client) handoff(session *Session) (err error) {
	if c.onConnected == nil {
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			session.shutdown()
			panic(r)
		}
	}()

	if err = c.onConnected(session); err != nil {
		session.shutdown()
	}

	return err
}

// ConnectInBackground runs Connect on its own goroutine. Any failure,
// including a panic, goes to onFailure; a nil onFailure uses the client's
// error handler, which logs by default.
func (c *Client) ConnectInBackground(path string, onFailure ErrorHandler) {
	if onFailure == nil {
		onFailure = c.errorHandler()
	}

	go func() {
		if err := c.connectRecover(path); err != nil {
			onFailure(err)
		}
	}()
}

func (c *Client) connectRecover(path string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("websocket: connect panic: %v", r)
		}
	}()

	return c.Connect(path)
}

func (c *Client) errorHandler() ErrorHandler {
	if c.opts.errorHandler != nil {
		return c.opts.errorHandler
	}
	return c.logError
}

func (c *Client) logError(err error) {
	c.logger.Error().Err(err).Msg("websocket connect failed")
}

func (c *Client) fail(err error) error {
	c.logger.Debug().Stringer("state", failed).Err(err).Send()
	return err
}
