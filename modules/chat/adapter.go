package chat

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// Port is the cross-module view of chat storage. The hub consumes the
// message path, the API surface the room path.
type Port interface {
	SaveMessage(ctx context.Context, roomID, userID, content string) (string, error)
	UsernameFor(ctx context.Context, userID string) (string, error)
	UsernamesFor(ctx context.Context, userIDs []string) (map[string]string, error)
	CreateRoom(ctx context.Context, name string) (*CreateRoomResponse, error)
	ListRooms(ctx context.Context) ([]CreateRoomResponse, error)
	GetHistory(ctx context.Context, roomID string, limit int) ([]HistoryEntry, error)
}

// Adapter implements Port over the service container.
type Adapter struct {
	container mono.ServiceContainer
}

// NewAdapter creates an Adapter.
func NewAdapter(container mono.ServiceContainer) *Adapter {
	if container == nil {
		panic("chat: ServiceContainer is nil")
	}
	return &Adapter{container: container}
}

// SaveMessage durably records one message and returns its ID.
func (a *Adapter) SaveMessage(ctx context.Context, roomID, userID, content string) (string, error) {
	req := SaveMessageRequest{RoomID: roomID, UserID: userID, Content: content}
	var resp SaveMessageResponse
	if err := helper.CallRequestReplyService(ctx, a.container, ServiceSaveMessage, json.Marshal, json.Unmarshal, &req, &resp); err != nil {
		return "", fmt.Errorf("failed to save message: %w", err)
	}
	return resp.MessageID, nil
}

// UsernameFor resolves a user's display name.
func (a *Adapter) UsernameFor(ctx context.Context, userID string) (string, error) {
	req := GetUsernameRequest{UserID: userID}
	var resp GetUsernameResponse
	if err := helper.CallRequestReplyService(ctx, a.container, ServiceGetUsername, json.Marshal, json.Unmarshal, &req, &resp); err != nil {
		return "", fmt.Errorf("failed to resolve username: %w", err)
	}
	return resp.Username, nil
}

// UsernamesFor resolves display names in bulk.
func (a *Adapter) UsernamesFor(ctx context.Context, userIDs []string) (map[string]string, error) {
	req := GetUsernamesRequest{UserIDs: userIDs}
	var resp GetUsernamesResponse
	if err := helper.CallRequestReplyService(ctx, a.container, ServiceGetUsernames, json.Marshal, json.Unmarshal, &req, &resp); err != nil {
		return nil, fmt.Errorf("failed to resolve usernames: %w", err)
	}
	return resp.Usernames, nil
}

// CreateRoom creates a named room.
func (a *Adapter) CreateRoom(ctx context.Context, name string) (*CreateRoomResponse, error) {
	req := CreateRoomRequest{Name: name}
	var resp CreateRoomResponse
	if err := helper.CallRequestReplyService(ctx, a.container, ServiceCreateRoom, json.Marshal, json.Unmarshal, &req, &resp); err != nil {
		return nil, fmt.Errorf("failed to create room: %w", err)
	}
	return &resp, nil
}

// ListRooms returns all known rooms.
func (a *Adapter) ListRooms(ctx context.Context) ([]CreateRoomResponse, error) {
	req := ListRoomsRequest{}
	var resp ListRoomsResponse
	if err := helper.CallRequestReplyService(ctx, a.container, ServiceListRooms, json.Marshal, json.Unmarshal, &req, &resp); err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	return resp.Rooms, nil
}

// GetHistory returns the most recent messages of a room, oldest first.
func (a *Adapter) GetHistory(ctx context.Context, roomID string, limit int) ([]HistoryEntry, error) {
	req := GetHistoryRequest{RoomID: roomID, Limit: limit}
	var resp GetHistoryResponse
	if err := helper.CallRequestReplyService(ctx, a.container, ServiceGetHistory, json.Marshal, json.Unmarshal, &req, &resp); err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	return resp.Messages, nil
}
