package ingest

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"fantoken-intel/internal/observability"
)

// WebSocket connection timeouts and reconnect policy.
const (
	initialReconnectDelay = 1 * time.Second
	maxReconnectDelay     = 30 * time.Second
	handshakeTimeout      = 5 * time.Second
	readTimeout           = 60 * time.Second
	pingInterval          = 30 * time.Second
	writeTimeout          = 10 * time.Second
)

// WSSource consumes observation envelopes from a collector's WebSocket feed.
// The connection is re-established with exponential backoff after any
// failure; the backoff resets once a message arrives.
type WSSource struct {
	url    string
	writer *Writer
	logger *logrus.Logger
}

// NewWSSource creates a WebSocket source for the given feed URL.
func NewWSSource(url string, writer *Writer, logger *logrus.Logger) *WSSource {
	return &WSSource{url: url, writer: writer, logger: logger}
}

// Run connects and consumes until the context is canceled.
func (s *WSSource) Run(ctx context.Context) error {
	s.logger.WithField("url", s.url).Info("websocket source started")

	delay := initialReconnectDelay
	for {
		if ctx.Err() != nil {
			s.logger.Info("websocket source stopped")
			return nil
		}

		if err := s.consume(ctx); err != nil {
			observability.DefaultMetrics.IngestErrors.WithLabelValues("websocket").Inc()
			s.logger.WithError(err).WithField("retry_in", delay).Warn("websocket connection lost")
		}

		select {
		case <-ctx.Done():
			s.logger.Info("websocket source stopped")
			return nil
		case <-time.After(delay):
		}
		delay *= 2
		if delay > maxReconnectDelay {
			delay = maxReconnectDelay
		}
	}
}

// consume runs one connection until it fails or the context is canceled.
func (s *WSSource) consume(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return err
	}
	defer conn.Close()
	s.logger.Info("websocket connected")

	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readTimeout))
	})

	done := make(chan struct{})
	defer close(done)
	go s.keepAlive(ctx, conn, done)

	for {
		if ctx.Err() != nil {
			return nil
		}
		if err := conn.SetReadDeadline(time.Now().Add(readTimeout)); err != nil {
			return err
		}
		_, message, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		if err := dispatch(ctx, s.writer, message); err != nil {
			observability.DefaultMetrics.IngestErrors.WithLabelValues("websocket").Inc()
			s.logger.WithError(err).Warn("websocket message dropped")
		}
	}
}

// keepAlive pings the peer until the connection's read loop exits.
func (s *WSSource) keepAlive(ctx context.Context, conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			deadline := time.Now().Add(writeTimeout)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				return
			}
		}
	}
}
