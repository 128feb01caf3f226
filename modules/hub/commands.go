package hub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/chat-hub/events"
)

// Wire frame type tags.
const (
	frameJoinRoom    = "join_room"
	frameSendMessage = "send_message"
	frameNewMessage  = "new_message"
	frameError       = "error"
)

const maxRoomIDLength = 100

// ErrUnknownCommand is returned when an inbound frame carries an
// unrecognized type tag.
var ErrUnknownCommand = errors.New("unknown command type")

// command is one decoded inbound protocol instruction. Exactly one of the
// payload fields is populated, according to which tag was decoded.
type command struct {
	join *joinRoomCommand
	send *sendMessageCommand
}

type joinRoomCommand struct {
	RoomID   string `json:"room_id"`
	Username string `json:"username"`
}

type sendMessageCommand struct {
	RoomID  string `json:"room_id"`
	Content string `json:"content"`
}

// outboundMessage is the frame fanned out to room members. It is built once
// per send_message command and serialized exactly once; the same bytes go to
// every recipient.
type outboundMessage struct {
	Type     string `json:"type"`
	RoomID   string `json:"room_id"`
	Username string `json:"username"`
	Content  string `json:"content"`
}

// errorFrame acknowledges a failed send_message to its sender.
type errorFrame struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// decodeCommand parses one inbound frame into a command. Malformed JSON and
// unknown type tags are errors for the caller to log and skip; they never
// terminate the connection.
func decodeCommand(frame []byte) (command, error) {
	var envelope struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(frame, &envelope); err != nil {
		return command{}, fmt.Errorf("malformed frame: %w", err)
	}

	switch envelope.Type {
	case frameJoinRoom:
		var cmd joinRoomCommand
		if err := json.Unmarshal(frame, &cmd); err != nil {
			return command{}, fmt.Errorf("malformed join_room frame: %w", err)
		}
		return command{join: &cmd}, nil
	case frameSendMessage:
		var cmd sendMessageCommand
		if err := json.Unmarshal(frame, &cmd); err != nil {
			return command{}, fmt.Errorf("malformed send_message frame: %w", err)
		}
		return command{send: &cmd}, nil
	default:
		return command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, envelope.Type)
	}
}

// validRoomID reports whether a room identifier is well-formed. Invalid IDs
// drop the command with a warning; they are never fatal.
func validRoomID(roomID string) bool {
	return roomID != "" && len(roomID) <= maxRoomIDLength
}

// StoragePort is the persistence collaborator consumed by the processor.
// SaveMessage must complete before any broadcast of that message.
type StoragePort interface {
	SaveMessage(ctx context.Context, roomID, userID, content string) (string, error)
	UsernameFor(ctx context.Context, userID string) (string, error)
}

// messagePublisher hands a recorded message to the fan-out path.
type messagePublisher interface {
	publishMessage(ctx context.Context, event events.MessageSentEvent) error
}

// Processor executes decoded commands. It is per-command, not
// per-connection: each command runs to completion before the session reads
// the next frame.
type Processor struct {
	membership *Membership
	storage    StoragePort
	publisher  messagePublisher
	logger     *slog.Logger
}

// NewProcessor creates a Processor.
func NewProcessor(membership *Membership, storage StoragePort, publisher messagePublisher, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		membership: membership,
		storage:    storage,
		publisher:  publisher,
		logger:     logger,
	}
}

// Execute runs one command for the given session. Every failure is absorbed
// here: the command is dropped (and, for send_message, acknowledged with an
// error frame on ack) rather than propagated to the connection.
func (p *Processor) Execute(ctx context.Context, sessionID string, cmd command, ack chan<- []byte) {
	switch {
	case cmd.join != nil:
		p.executeJoin(sessionID, *cmd.join)
	case cmd.send != nil:
		p.executeSend(ctx, sessionID, *cmd.send, ack)
	}
}

func (p *Processor) executeJoin(sessionID string, cmd joinRoomCommand) {
	if !validRoomID(cmd.RoomID) {
		p.logger.Warn("dropping join_room with invalid room id", "session", sessionID, "room", cmd.RoomID)
		return
	}
	p.membership.Join(cmd.RoomID, sessionID)
	p.logger.Info("session joined room", "session", sessionID, "room", cmd.RoomID)
}

func (p *Processor) executeSend(ctx context.Context, sessionID string, cmd sendMessageCommand, ack chan<- []byte) {
	if !validRoomID(cmd.RoomID) {
		p.logger.Warn("dropping send_message with invalid room id", "session", sessionID, "room", cmd.RoomID)
		return
	}

	// Durable write first: the message must never be visible to other
	// clients unless it was recorded.
	messageID, err := p.storage.SaveMessage(ctx, cmd.RoomID, sessionID, cmd.Content)
	if err != nil {
		p.logger.Warn("message not persisted, skipping broadcast", "session", sessionID, "room", cmd.RoomID, "error", err)
		p.sendAck(ack, "message could not be saved")
		return
	}

	username, err := p.storage.UsernameFor(ctx, sessionID)
	if err != nil {
		p.logger.Warn("sender lookup failed, skipping broadcast", "session", sessionID, "error", err)
		p.sendAck(ack, "message saved but not delivered")
		return
	}

	frame, err := json.Marshal(outboundMessage{
		Type:     frameNewMessage,
		RoomID:   cmd.RoomID,
		Username: username,
		Content:  cmd.Content,
	})
	if err != nil {
		p.logger.Error("failed to encode outbound frame", "error", err)
		return
	}

	event := events.MessageSentEvent{
		MessageID: messageID,
		RoomID:    cmd.RoomID,
		SenderID:  sessionID,
		Frame:     frame,
		Timestamp: time.Now(),
	}
	if err := p.publisher.publishMessage(ctx, event); err != nil {
		p.logger.Warn("failed to publish message event", "room", cmd.RoomID, "error", err)
		p.sendAck(ack, "message saved but not delivered")
	}
}

// sendAck queues an error frame for the sender, best-effort.
func (p *Processor) sendAck(ack chan<- []byte, message string) {
	if ack == nil {
		return
	}
	frame, err := json.Marshal(errorFrame{Type: frameError, Message: message})
	if err != nil {
		return
	}
	select {
	case ack <- frame:
	default:
	}
}
