package hub

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
)

const writeTimeout = 10 * time.Second

// socket is the subset of the websocket connection a session drives.
// *websocket.Conn satisfies it; tests substitute a scripted fake.
type socket interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Session is one authenticated, live connection. Its lifecycle is
// Connecting (admission, done by the API layer before the upgrade) -> Open
// (registered, reader and writer running) -> Closing (either side failed,
// the other is cancelled) -> Closed (registry and membership scrubbed).
type Session struct {
	userID     string
	conn       socket
	send       chan []byte
	registry   *Registry
	membership *Membership
	processor  *Processor
	logger     *slog.Logger
}

// NewSession creates a session for an already-authenticated user.
func NewSession(userID string, conn socket, registry *Registry, membership *Membership, processor *Processor, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		userID:     userID,
		conn:       conn,
		send:       make(chan []byte, sendBufferSize),
		registry:   registry,
		membership: membership,
		processor:  processor,
		logger:     logger,
	}
}

// Run registers the session and drives it until the connection closes. The
// calling goroutine is the reader task; the writer task runs beside it.
// Whichever exits first cancels the other, and cleanup runs exactly once on
// the way out regardless of which side triggered closing.
func (s *Session) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)

	s.registry.Register(s.userID, s.send)
	s.logger.Info("session opened", "session", s.userID)

	defer func() {
		cancel()
		s.registry.Unregister(s.userID, s.send)
		s.membership.LeaveAll(s.userID)
		_ = s.conn.Close()
		s.logger.Info("session closed", "session", s.userID)
	}()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.writeLoop(ctx)
		// A dead writer must not leave the reader blocked in ReadMessage.
		cancel()
		_ = s.conn.Close()
	}()

	s.readLoop(ctx)
	cancel()
	wg.Wait()
}

// readLoop receives frames, decodes them, and dispatches each command to
// completion before reading the next frame. Malformed frames and unknown
// command tags are logged and skipped; only transport errors end the loop.
func (s *Session) readLoop(ctx context.Context) {
	for {
		_, frame, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.logger.Warn("read failed", "session", s.userID, "error", err)
			}
			return
		}

		cmd, err := decodeCommand(frame)
		if err != nil {
			s.logger.Warn("discarding frame", "session", s.userID, "error", err)
			continue
		}

		s.processor.Execute(ctx, s.userID, cmd, s.send)
	}
}

// writeLoop drains the outbound channel onto the socket, preserving the
// enqueue order for this one recipient.
func (s *Session) writeLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			_ = s.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case frame := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := s.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				s.logger.Warn("write failed", "session", s.userID, "error", err)
				return
			}
		}
	}
}
