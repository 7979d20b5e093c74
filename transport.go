package websocket

import (
	"bufio"
	"crypto/tls"
	"net"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

// ResponseHandler is called by a Transport once the status line and headers
// of the response are read. stream is positioned at the first byte after the
// header block. Returning nil hands ownership of stream to the handler;
// returning an error makes the transport close it.
type ResponseHandler func(resp *fasthttp.ResponseHeader, stream net.Conn) error

// Transport sends a request and exposes the response before its body is
// consumed. Errors are returned as produced by the network layer.
type Transport interface {
	Do(req *fasthttp.Request, handler ResponseHandler) error
}

type hostTransport struct {
	addr      string
	dial      fasthttp.DialFunc
	tlsConfig *tls.Config
	logger    zerolog.Logger
}

// selectTransport picks the plain or TLS transport for addr.
func selectTransport(addr *Address, o *options, logger zerolog.Logger) (Transport, error) {
	if o.transport != nil {
		return o.transport, nil
	}

	t := &hostTransport{
		addr:   addr.HostPort(),
		dial:   o.dial,
		logger: logger,
	}

	if t.dial == nil {
		t.dial = fasthttp.Dial
	}

	if addr.Secure() {
		cfg := &tls.Config{}
		if o.tlsConfig != nil {
			cfg = o.tlsConfig.Clone()
		}
		if cfg.ServerName == "" {
			cfg.ServerName = addr.Host
		}
		t.tlsConfig = cfg
	}

	return t, nil
}

func (t *hostTransport) Do(req *fasthttp.Request, handler ResponseHandler) error {
	c, err := t.dial(t.addr)
	if err != nil {
		return err
	}

	if t.tlsConfig != nil {
		tc := tls.Client(c, t.tlsConfig)
		if err := tc.Handshake(); err != nil {
			c.Close()
			return err
		}
		c = tc
	}

	bw := bufio.NewWriter(c)
	if err := req.Write(bw); err != nil {
		c.Close()
		return err
	}

	if err := bw.Flush(); err != nil {
		c.Close()
		return err
	}

	t.logger.Debug().Stringer("state", awaitingResponse).Send()

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	br := bufio.NewReader(c)
	if err := resp.Header.Read(br); err != nil {
		c.Close()
		return err
	}

	if err := handler(&resp.Header, &bufferedConn{Conn: c, r: br}); err != nil {
		c.Close()
		return err
	}

	return nil
}

// bufferedConn keeps bytes the header reader already pulled off the wire.
type bufferedConn struct {
	net.Conn
	r *bufio.Reader
}

func (c *bufferedConn) Read(p []byte) (int, error) {
	return c.r.Read(p)
}
