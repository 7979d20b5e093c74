package websocket

import (
	"bufio"
	"encoding/binary"
	"io"
	"net"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// MessageHandler receives every complete data message, reassembled from its
// fragments.
type MessageHandler func(s *Session, isBinary bool, data []byte)

// ControlHandler receives the payload of a ping or pong frame.
type ControlHandler func(s *Session, data []byte)

// CloseHandler is called with the peer's close code once it has been echoed.
type CloseHandler func(s *Session, code StatusCode)

// Session exchanges framed messages over an upgraded connection. Handlers
// must be set before Run is called.
type Session struct {
	id string
	c  net.Conn

	// client sessions mask every frame they send
	isClient bool
	random   io.Reader
	logger   zerolog.Logger

	bufferReader *bufio.Reader
	bufferWriter *bufio.Writer
	writeMu      sync.Mutex

	messageHandler MessageHandler
	pingHandler    ControlHandler
	pongHandler    ControlHandler
	closeHandler   CloseHandler

	running   atomic.Bool
	closeSent atomic.Bool
	done      chan struct{}
	doneOnce  sync.Once
}

func newSession(c net.Conn, isClient bool, random io.Reader, logger zerolog.Logger) *Session {
	id := uuid.NewString()

	return &Session{
		id:           id,
		c:            c,
		isClient:     isClient,
		random:       random,
		logger:       logger.With().Str("session", id).Bool("client", isClient).Logger(),
		bufferReader: bufio.NewReader(c),
		bufferWriter: bufio.NewWriter(c),
		done:         make(chan struct{}),
	}
}

func (s *Session) ID() string {
	return s.id
}

// Done is closed once the underlying connection has been closed.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

func (s *Session) LocalAddr() net.Addr {
	return s.c.LocalAddr()
}

func (s *Session) RemoteAddr() net.Addr {
	return s.c.RemoteAddr()
}

func (s *Session) SetMessageHandler(h MessageHandler) {
	s.messageHandler = h
}

// SetPingHandler replaces the default ping handling, which answers with a
// pong carrying the same payload.
func (s *Session) SetPingHandler(h ControlHandler) {
	s.pingHandler = h
}

func (s *Session) SetPongHandler(h ControlHandler) {
	s.pongHandler = h
}

func (s *Session) SetCloseHandler(h CloseHandler) {
	s.closeHandler = h
}

// Run reads and dispatches frames until the session ends. It returns nil
// after a completed closing handshake.
func (s *Session) Run() error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrSessionRunning
	}
	defer s.shutdown()

	var (
		message  []byte
		isBinary bool
		inFlight bool
	)

	for {
		frame := AcquireFrame()

		if _, err := frame.ReadFrom(s.bufferReader); err != nil {
			ReleaseFrame(frame)

			if s.closeSent.Load() {
				return nil
			}

			if err == ErrFrameTooLarge {
				s.writeClose(StatusMessageTooBig)
			}

			s.logger.Debug().Err(err).Msg("read failed")
			return err
		}

		if err := s.checkFrame(frame, inFlight); err != nil {
			s.logger.Debug().Stringer("frame", frame).Msg("protocol violation")
			ReleaseFrame(frame)
			s.writeClose(StatusProtocolError)
			return err
		}

		if frame.IsControl() {
			closed := s.controlHandler(frame)
			ReleaseFrame(frame)

			if closed {
				return nil
			}
			continue
		}

		if frame.IsContinuation() {
			message = append(message, frame.GetPayload()...)
		} else {
			message = append(message[:0], frame.GetPayload()...)
			isBinary = frame.GetFrameType() == codeBinary
		}

		inFlight = !frame.IsFin()
		ReleaseFrame(frame)

		if len(message) > maxFramePayloadSize {
			s.writeClose(StatusMessageTooBig)
			return ErrFrameTooLarge
		}

		if !inFlight && s.messageHandler != nil {
			data := make([]byte, len(message))
			copy(data, message)
			s.messageHandler(s, isBinary, data)
		}
	}
}

func (s *Session) checkFrame(frame *Frame, inFlight bool) error {
	// no extension is ever negotiated
	if frame.HasReservedBits() {
		return ErrProtocolError
	}

	// servers never mask, clients always do
	if frame.IsMasked() == s.isClient {
		return ErrProtocolError
	}

	switch {
	case frame.IsControl():
		if !frame.IsFin() || len(frame.GetPayload()) > maxControlPayloadSize {
			return ErrProtocolError
		}
		if frame.IsClose() && !isValidClosePayload(frame.GetPayload()) {
			return ErrProtocolError
		}
	case frame.IsContinuation():
		if !inFlight {
			return ErrProtocolError
		}
	case frame.IsData():
		if inFlight {
			return ErrProtocolError
		}
	default:
		return ErrProtocolError
	}

	return nil
}

// isValidClosePayload accepts an empty payload or a status code that may be
// sent on the wire, optionally followed by a reason.
func isValidClosePayload(p []byte) bool {
	switch len(p) {
	case 0:
		return true
	case 1:
		return false
	}

	code := binary.BigEndian.Uint16(p)

	switch {
	case code >= 1000 && code <= 1003, code >= 1007 && code <= 1014:
		return true
	case code >= 3000 && code <= 4999:
		return true
	}
	return false
}

// controlHandler reports whether the frame ended the session.
func (s *Session) controlHandler(frame *Frame) bool {
	switch frame.GetFrameType() {
	case codeClose:
		s.closeFrameHandler(frame)
		return true
	case codePing:
		if s.pingHandler != nil {
			s.pingHandler(s, frame.GetPayload())
		} else if err := s.Pong(frame.GetPayload()); err != nil {
			s.logger.Debug().Err(err).Msg("pong failed")
		}
	case codePong:
		if s.pongHandler != nil {
			s.pongHandler(s, frame.GetPayload())
		}
	}

	return false
}

func (s *Session) closeFrameHandler(frame *Frame) {
	code := frame.Status()

	s.logger.Debug().Stringer("code", code).Msg("close received")

	if s.closeSent.CompareAndSwap(false, true) {
		if code == StatusNoStatusReceived {
			s.writeFrame(codeClose, nil)
		} else {
			s.writeClose(code)
		}
	}

	if s.closeHandler != nil {
		s.closeHandler(s, code)
	}
}

func (s *Session) WriteText(p []byte) error {
	return s.writeFrame(codeText, p)
}

func (s *Session) WriteBinary(p []byte) error {
	return s.writeFrame(codeBinary, p)
}

func (s *Session) Ping(p []byte) error {
	return s.writeFrame(codePing, p)
}

func (s *Session) Pong(p []byte) error {
	return s.writeFrame(codePong, p)
}

// Close starts the closing handshake with status 1000. Run returns once the
// peer answers; a session that is not running is shut down right away.
func (s *Session) Close() error {
	if !s.closeSent.CompareAndSwap(false, true) {
		return nil
	}

	err := s.writeClose(StatusNormalClosure)

	if !s.running.Load() {
		s.shutdown()
	}

	return err
}

func (s *Session) writeClose(code StatusCode) error {
	s.closeSent.Store(true)

	frame := AcquireFrame()
	defer ReleaseFrame(frame)

	frame.SetStatus(code)

	return s.writeFrame(codeClose, frame.GetPayload())
}

func (s *Session) writeFrame(code frameTypeCode, payload []byte) error {
	select {
	case <-s.done:
		return ErrSessionClosed
	default:
	}

	frame := AcquireFrame()
	defer ReleaseFrame(frame)

	frame.SetFin()
	frame.SetFrameType(code)
	frame.SetPayload(payload)
	frame.SetPayloadSize(int64(len(payload)))

	if s.isClient {
		key, err := newMaskKey(s.random)
		if err != nil {
			return err
		}
		frame.SetMask(key)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if _, err := frame.WriteTo(s.bufferWriter); err != nil {
		return err
	}

	return s.bufferWriter.Flush()
}

// shutdown closes the connection without a closing handshake.
func (s *Session) shutdown() {
	s.doneOnce.Do(func() {
		close(s.done)
		s.c.Close()
		s.logger.Debug().Msg("session ended")
	})
}
