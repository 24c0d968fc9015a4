package sketchup

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"sync"
	"time"
	"unicode/utf8"

	bridgeerrors "github.com/sketchup-mcp/sketchup-mcp-go/pkg/errors"
	"github.com/sketchup-mcp/sketchup-mcp-go/pkg/logging"
	"github.com/sketchup-mcp/sketchup-mcp-go/pkg/protocol"
)

// Session owns the TCP connection to the SketchUp extension. It frames
// responses by reparse: the extension writes JSON documents with no length
// prefix or delimiter, so the session accumulates chunks until the buffer
// parses as one complete document.
//
// A Session holds at most one connection. Connect probes an existing
// connection before reusing it and replaces it when the probe fails.
type Session struct {
	cfg    SessionConfig
	logger logging.Logger
	stats  Stats

	mu   sync.Mutex
	conn net.Conn
}

// NewSession creates a session for the given endpoint. A nil logger logs to
// stderr; a nil stats discards signals.
func NewSession(cfg SessionConfig, logger logging.Logger, stats Stats) *Session {
	if logger == nil {
		logger = logging.New(nil, nil)
	}
	if stats == nil {
		stats = NopStats{}
	}

	return &Session{
		cfg:    cfg.withDefaults(),
		logger: logger.WithFields(logging.String("component", "Session")),
		stats:  stats,
	}
}

// Endpoint returns the host:port this session dials.
func (s *Session) Endpoint() string {
	return s.cfg.Endpoint()
}

// Connect ensures a live connection. An existing connection is probed with a
// zero-byte write under a short deadline; a dead one is closed and replaced
// by a fresh dial. On failure the session is left disconnected.
func (s *Session) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn != nil {
		if s.probeLocked() {
			return nil
		}
		s.logger.Info("Stale connection detected, reconnecting",
			logging.String("endpoint", s.cfg.Endpoint()))
		s.closeLocked()
	}

	dialer := &net.Dialer{Timeout: s.cfg.ConnectTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", s.cfg.Endpoint())
	if err != nil {
		s.logger.WithError(err).Error("Connect failed",
			logging.String("endpoint", s.cfg.Endpoint()))
		return bridgeerrors.ConnectionFailed(s.cfg.Endpoint(), err)
	}

	// The extension replies with small JSON documents; waiting to batch
	// them only adds latency.
	if tc, ok := conn.(*net.TCPConn); ok {
		_ = tc.SetNoDelay(true)
	}

	s.conn = conn
	s.stats.ConnectionOpened()
	s.logger.Info("Connected to SketchUp",
		logging.String("endpoint", s.cfg.Endpoint()))
	return nil
}

// Connected reports whether the session holds a usable connection. A
// connection that fails the probe is closed and reported as absent.
func (s *Session) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return false
	}
	if !s.probeLocked() {
		s.closeLocked()
		return false
	}
	return true
}

// Disconnect closes the connection if one is open. Safe to call repeatedly
// and from a goroutine other than the one inside an exchange; closing the
// socket unblocks any pending read.
func (s *Session) Disconnect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeLocked()
}

// probeLocked reports liveness of the current connection via a zero-byte
// write. Best effort: it catches locally known-dead sockets, not a silently
// gone peer. Callers hold s.mu.
func (s *Session) probeLocked() bool {
	_ = s.conn.SetWriteDeadline(time.Now().Add(s.cfg.ProbeTimeout))
	_, err := s.conn.Write(nil)
	_ = s.conn.SetWriteDeadline(time.Time{})
	return err == nil
}

// closeLocked drops the connection. Callers hold s.mu.
func (s *Session) closeLocked() {
	if s.conn == nil {
		return
	}
	if err := s.conn.Close(); err != nil {
		s.logger.WithError(err).Warn("Error closing connection")
	}
	s.conn = nil
	s.stats.ConnectionClosed()
	s.logger.Info("Disconnected from SketchUp",
		logging.String("endpoint", s.cfg.Endpoint()))
}

// current returns the connection without holding the lock during I/O, so
// Disconnect can interrupt a blocked read from another goroutine.
func (s *Session) current() net.Conn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn
}

// Send writes one request document followed by a newline under the I/O
// deadline.
func (s *Session) Send(ctx context.Context, payload []byte) error {
	conn := s.current()
	if conn == nil {
		return bridgeerrors.NotConnected(s.cfg.Endpoint(), nil)
	}

	deadline := time.Now().Add(s.cfg.IOTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = conn.SetWriteDeadline(deadline)

	framed := make([]byte, 0, len(payload)+1)
	framed = append(framed, payload...)
	framed = append(framed, '\n')

	if _, err := conn.Write(framed); err != nil {
		s.logger.WithError(err).Error("Send failed",
			logging.Int("bytes", len(framed)))
		return bridgeerrors.SendFailed(s.cfg.Endpoint(), err)
	}

	s.logger.Debug("Request sent", logging.Int("bytes", len(framed)))
	return nil
}

// ReceiveMessage reads one framed message. It accumulates chunks until the
// buffer parses as a single JSON document, retrying quiet periods until wall
// expires (clamped to the configured receive ceiling). Read deadlines with
// buffered data keep the wait alive; a closed peer or hard error ends it.
//
// Failure modes: NoData when the wait ends before any byte arrived,
// IncompleteMessage when buffered bytes never became a document,
// InvalidEncoding when they never became valid UTF-8, ConnectionLost on a
// hard socket error.
func (s *Session) ReceiveMessage(ctx context.Context, wall time.Duration) (*protocol.Message, error) {
	conn := s.current()
	if conn == nil {
		return nil, bridgeerrors.NotConnected(s.cfg.Endpoint(), nil)
	}

	if wall <= 0 || wall > s.cfg.ReceiveWall {
		wall = s.cfg.ReceiveWall
	}

	var buf []byte
	chunk := make([]byte, s.cfg.ReadBufferSize)
	chunks := 0
	start := time.Now()
	deadline := start.Add(wall)

	for time.Now().Before(deadline) {
		if err := ctx.Err(); err != nil {
			return nil, bridgeerrors.ConvertStandardError(err)
		}

		readDeadline := time.Now().Add(s.cfg.IOTimeout)
		if readDeadline.After(deadline) {
			readDeadline = deadline
		}
		if d, ok := ctx.Deadline(); ok && d.Before(readDeadline) {
			readDeadline = d
		}
		_ = conn.SetReadDeadline(readDeadline)

		n, err := conn.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
			chunks++
			s.logger.Debug("Received chunk",
				logging.Int("bytes", n),
				logging.Int("buffered", len(buf)))

			if json.Valid(buf) {
				s.stats.ReceiveChunks(chunks)
				s.logger.Debug("Received complete message",
					logging.Int("bytes", len(buf)),
					logging.Int("chunks", chunks))
				return s.decode(buf)
			}
		}

		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				if len(buf) == 0 {
					s.logger.Warn("Read deadline with no data")
					break
				}
				// Partial document; the peer may still be writing.
				s.logger.Warn("Read deadline with incomplete data, still waiting",
					logging.Int("buffered", len(buf)))
				continue
			}
			if err == io.EOF {
				if len(buf) == 0 {
					return nil, bridgeerrors.NoData(s.cfg.Endpoint(),
						"connection closed before any data")
				}
				break
			}
			s.logger.WithError(err).Error("Connection error during receive",
				logging.Int("buffered", len(buf)))
			return nil, bridgeerrors.ConnectionLost(s.cfg.Endpoint(), err)
		}
	}

	if len(buf) == 0 {
		return nil, bridgeerrors.NoData(s.cfg.Endpoint(), "no data before deadline")
	}
	if json.Valid(buf) {
		s.stats.ReceiveChunks(chunks)
		return s.decode(buf)
	}
	if !utf8.Valid(buf) {
		return nil, bridgeerrors.InvalidEncoding(s.cfg.Endpoint(), len(buf))
	}
	return nil, bridgeerrors.IncompleteMessage(s.cfg.Endpoint(), len(buf), time.Since(start))
}

func (s *Session) decode(buf []byte) (*protocol.Message, error) {
	msg, err := protocol.DecodeMessage(buf)
	if err != nil {
		return nil, bridgeerrors.ProtocolError("invalid response from SketchUp: " + err.Error())
	}
	return msg, nil
}
