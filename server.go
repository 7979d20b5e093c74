package websocket

import (
	"bytes"
	"crypto/rand"
	"net"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

const (
	ErrorWebsocketHeaderConnectionValueShouldBeUpgrade = "websocket header Connection value should be Upgrade"
	ErrorWebsocketMethodMustBeGet                      = "websocket METHOD must be GET"
	ErrorWebsocketHeaderUpgradeValueShouldBeWebsocket  = "websocket header Upgrade value should be websocket"
	ErrorWebsocketHeaderSecWebSocketVersionValue       = "websocket header Sec-WebSocket-Version value should be 13"
	ErrorWebsocketHeaderSecWebSocketKey                = "websocket header Sec-WebSocket-Key should be base64 and size is 16"
	ErrorRequestOriginNotSameAsWebsocketOrigin         = "request origin not same as websocket origin"
)

// Server upgrades fasthttp requests into server side sessions.
type Server struct {
	CheckOrigin func(ctx *fasthttp.RequestCtx) bool

	// Handler is called with every upgraded session before its read loop
	// starts. The session ends when Run returns.
	Handler func(s *Session)

	Logger *zerolog.Logger
}

// Upgrade upgrade http connection to websocket connection
func (s *Server) Upgrade(ctx *fasthttp.RequestCtx) {
	// websocket METHOD must be GET
	if !bytes.Equal(ctx.Request.Header.Method(), getString) {
		s.reject(ctx, fasthttp.StatusMethodNotAllowed, ErrorWebsocketMethodMustBeGet)
		return
	}

	// websocket header Connection value should be Upgrade
	if !ctx.Request.Header.ConnectionUpgrade() {
		s.reject(ctx, fasthttp.StatusBadRequest, ErrorWebsocketHeaderConnectionValueShouldBeUpgrade)
		return
	}

	// websocket header Upgrade value should be websocket
	if !bytes.EqualFold(ctx.Request.Header.PeekBytes(upgradeString), webSocketString) {
		s.reject(ctx, fasthttp.StatusBadRequest, ErrorWebsocketHeaderUpgradeValueShouldBeWebsocket)
		return
	}

	// websocket header Sec-WebSocket-Version value should be 13
	if !bytes.Equal(ctx.Request.Header.PeekBytes(websocketVersionString), websocketAcceptVersionString) {
		ctx.Response.Header.SetBytesKV(websocketVersionString, websocketAcceptVersionString)
		s.reject(ctx, fasthttp.StatusUpgradeRequired, ErrorWebsocketHeaderSecWebSocketVersionValue)
		return
	}

	checkOrigin := s.CheckOrigin
	if checkOrigin == nil {
		checkOrigin = checkSameOrigin
	}

	if !checkOrigin(ctx) {
		s.reject(ctx, fasthttp.StatusForbidden, ErrorRequestOriginNotSameAsWebsocketOrigin)
		return
	}

	websocketKey := ctx.Request.Header.PeekBytes(websocketKeyString)

	// websocket header Sec-WebSocket-Key should be base64 and size is 16
	if !isValidChallengeKeys(websocketKey) {
		s.reject(ctx, fasthttp.StatusBadRequest, ErrorWebsocketHeaderSecWebSocketKey)
		return
	}

	ctx.Response.Header.SetBytesKV(websocketAcceptString, computeAcceptKey(websocketKey))
	ctx.Response.Header.SetBytesKV(upgradeString, webSocketString)
	ctx.Response.Header.SetBytesKV(connectionString, upgradeString)
	ctx.Response.SetStatusCode(fasthttp.StatusSwitchingProtocols)

	logger := s.logger()

	// hijack the connection to let's server handle the connection
	ctx.Hijack(func(c net.Conn) {
		session := newSession(c, false, rand.Reader, logger)

		if s.Handler != nil {
			s.Handler(session)
		}

		if err := session.Run(); err != nil {
			logger.Debug().Err(err).Str("session", session.ID()).Msg("session ended with error")
		}
	})
}

func (s *Server) reject(ctx *fasthttp.RequestCtx, status int, reason string) {
	logger := s.logger()
	logger.Debug().Int("status", status).Str("reason", reason).Msg("upgrade rejected")

	ctx.Response.SetStatusCode(status)
	ctx.Response.SetBodyString(reason)
}

func (s *Server) logger() zerolog.Logger {
	if s.Logger != nil {
		return *s.Logger
	}
	return zerolog.Nop()
}

func checkSameOrigin(ctx *fasthttp.RequestCtx) bool {

	origin := ctx.Request.Header.PeekBytes(originString)

	if len(origin) == 0 {
		return true
	}

	uri := fasthttp.AcquireURI()
	defer fasthttp.ReleaseURI(uri)

	if err := uri.Parse(nil, origin); err != nil {
		return false
	}

	return bytes.EqualFold(uri.Host(), ctx.Host())
}
