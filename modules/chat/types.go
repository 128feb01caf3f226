package chat

import (
	"errors"
	"time"
	"unicode/utf8"
)

// Service names registered in the service container.
const (
	ServiceSaveMessage  = "save-message"
	ServiceGetUsername  = "get-username"
	ServiceGetUsernames = "get-usernames"
	ServiceCreateRoom   = "create-room"
	ServiceListRooms    = "list-rooms"
	ServiceGetHistory   = "get-history"
)

// Validation limits.
const (
	MaxRoomNameLength = 100
	MaxMessageLength  = 5000
)

// Validation errors.
var (
	ErrRoomNameEmpty   = errors.New("room name cannot be empty")
	ErrRoomNameTooLong = errors.New("room name exceeds maximum length")
	ErrRoomNameInvalid = errors.New("room name contains invalid characters")
	ErrMessageEmpty    = errors.New("message content cannot be empty")
	ErrMessageTooLong  = errors.New("message exceeds maximum length")
	ErrMessageInvalid  = errors.New("message contains invalid characters")
)

// SaveMessageRequest asks for a durable write of one message.
type SaveMessageRequest struct {
	RoomID  string `json:"room_id"`
	UserID  string `json:"user_id"`
	Content string `json:"content"`
}

// SaveMessageResponse carries the ID of the recorded message.
type SaveMessageResponse struct {
	MessageID string `json:"message_id"`
}

// GetUsernameRequest resolves one user's display name.
type GetUsernameRequest struct {
	UserID string `json:"user_id"`
}

// GetUsernameResponse carries the resolved display name.
type GetUsernameResponse struct {
	Username string `json:"username"`
}

// GetUsernamesRequest resolves display names in bulk.
type GetUsernamesRequest struct {
	UserIDs []string `json:"user_ids"`
}

// GetUsernamesResponse maps user ID to display name. Unknown IDs are absent.
type GetUsernamesResponse struct {
	Usernames map[string]string `json:"usernames"`
}

// CreateRoomRequest creates a named room.
type CreateRoomRequest struct {
	Name string `json:"name"`
}

// CreateRoomResponse carries the created room.
type CreateRoomResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// ListRoomsRequest lists all rooms.
type ListRoomsRequest struct{}

// ListRoomsResponse carries all known rooms.
type ListRoomsResponse struct {
	Rooms []CreateRoomResponse `json:"rooms"`
}

// GetHistoryRequest fetches the most recent messages of a room.
type GetHistoryRequest struct {
	RoomID string `json:"room_id"`
	Limit  int    `json:"limit"`
}

// HistoryEntry is one stored message with its sender's display name joined
// in.
type HistoryEntry struct {
	ID        string    `json:"id"`
	RoomID    string    `json:"room_id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// GetHistoryResponse carries room history, newest last.
type GetHistoryResponse struct {
	Messages []HistoryEntry `json:"messages"`
}

// ValidateRoomName validates a room name.
func ValidateRoomName(name string) error {
	switch {
	case name == "":
		return ErrRoomNameEmpty
	case len(name) > MaxRoomNameLength:
		return ErrRoomNameTooLong
	case !utf8.ValidString(name):
		return ErrRoomNameInvalid
	}
	return nil
}

// ValidateMessage validates message content.
func ValidateMessage(content string) error {
	switch {
	case content == "":
		return ErrMessageEmpty
	case len(content) > MaxMessageLength:
		return ErrMessageTooLong
	case !utf8.ValidString(content):
		return ErrMessageInvalid
	}
	return nil
}
