package main

import (
	"os"
	"time"

	"github.com/fasthttp/router"
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"

	websocket "github.com/Noahnut/websocket-client"
)

var logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC822}).With().Timestamp().Logger()

// simple sample for websocket server and client
func websocketServer() {
	wsServer := websocket.Server{
		Logger: &logger,
		Handler: func(s *websocket.Session) {
			s.SetMessageHandler(func(s *websocket.Session, isBinary bool, data []byte) {
				logger.Info().Str("data", string(data)).Msg("server received")
				s.WriteText([]byte("receive data from client"))
			})
		},
	}

	r := router.New()
	r.GET("/ws", wsServer.Upgrade)

	server := fasthttp.Server{
		Handler: r.Handler,
	}

	if err := server.ListenAndServe(":8009"); err != nil {
		logger.Fatal().Err(err).Msg("listen")
	}
}

func websocketClient() {
	client, err := websocket.NewClient("ws://localhost:8009/ws", func(s *websocket.Session) error {
		s.SetPongHandler(func(s *websocket.Session, data []byte) {
			logger.Info().Msg("receive pong from server")
		})

		s.SetMessageHandler(func(s *websocket.Session, isBinary bool, data []byte) {
			logger.Info().Str("data", string(data)).Msg("client received")
			s.Close()
		})

		s.SetCloseHandler(func(s *websocket.Session, code websocket.StatusCode) {
			logger.Info().Stringer("code", code).Msg("closed")
		})

		if err := s.Ping(nil); err != nil {
			return err
		}

		return s.WriteText([]byte("hello world"))
	}, websocket.WithLogger(logger))

	if err != nil {
		logger.Fatal().Err(err).Msg("client")
	}

	client.ConnectInBackground("", nil)
}

func main() {

	go websocketServer()

	time.Sleep(1 * time.Second)

	websocketClient()

	time.Sleep(5 * time.Second)
}
