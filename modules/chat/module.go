package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	domain "github.com/example/chat-hub/domain/chat"
)

// Module provides durable storage for rooms and messages over a SQLite
// database shared with the auth module (users live in the same file so
// history can join display names).
type Module struct {
	db     *gorm.DB
	repo   *Repository
	dbPath string
}

// Compile-time interface checks.
var _ mono.Module = (*Module)(nil)
var _ mono.ServiceProviderModule = (*Module)(nil)
var _ mono.HealthCheckableModule = (*Module)(nil)

// NewModule creates a new chat storage module.
func NewModule() *Module {
	dbPath := os.Getenv("CHAT_DB_PATH")
	if dbPath == "" {
		dbPath = "chat.db"
	}
	return &Module{dbPath: dbPath}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "chat"
}

// Start opens the database and migrates the room and message schemas.
func (m *Module) Start(_ context.Context) error {
	db, err := gorm.Open(sqlite.Open(m.dbPath), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	m.db = db

	if err := db.AutoMigrate(&domain.Room{}, &domain.Message{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	m.repo = NewRepository(db)
	log.Printf("[chat] Module started (database: %s)", m.dbPath)
	return nil
}

// Stop closes the database connection.
func (m *Module) Stop(_ context.Context) error {
	if m.db != nil {
		if sqlDB, err := m.db.DB(); err == nil {
			sqlDB.Close()
		}
	}
	log.Println("[chat] Module stopped")
	return nil
}

// Health reports database reachability.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	if m.db == nil {
		return mono.HealthStatus{Healthy: false, Message: "database not initialized"}
	}
	sqlDB, err := m.db.DB()
	if err == nil {
		err = sqlDB.Ping()
	}
	if err != nil {
		return mono.HealthStatus{Healthy: false, Message: fmt.Sprintf("database unreachable: %v", err)}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{"database": m.dbPath},
	}
}

// RegisterServices registers the storage request-reply services.
func (m *Module) RegisterServices(container mono.ServiceContainer) error {
	services := []struct {
		name     string
		register func() error
	}{
		{ServiceSaveMessage, func() error {
			return helper.RegisterTypedRequestReplyService(container, ServiceSaveMessage, json.Unmarshal, json.Marshal, m.handleSaveMessage)
		}},
		{ServiceGetUsername, func() error {
			return helper.RegisterTypedRequestReplyService(container, ServiceGetUsername, json.Unmarshal, json.Marshal, m.handleGetUsername)
		}},
		{ServiceGetUsernames, func() error {
			return helper.RegisterTypedRequestReplyService(container, ServiceGetUsernames, json.Unmarshal, json.Marshal, m.handleGetUsernames)
		}},
		{ServiceCreateRoom, func() error {
			return helper.RegisterTypedRequestReplyService(container, ServiceCreateRoom, json.Unmarshal, json.Marshal, m.handleCreateRoom)
		}},
		{ServiceListRooms, func() error {
			return helper.RegisterTypedRequestReplyService(container, ServiceListRooms, json.Unmarshal, json.Marshal, m.handleListRooms)
		}},
		{ServiceGetHistory, func() error {
			return helper.RegisterTypedRequestReplyService(container, ServiceGetHistory, json.Unmarshal, json.Marshal, m.handleGetHistory)
		}},
	}

	for _, svc := range services {
		if err := svc.register(); err != nil {
			return fmt.Errorf("failed to register %s service: %w", svc.name, err)
		}
	}

	log.Printf("[chat] Registered services: save-message, get-username, get-usernames, create-room, list-rooms, get-history")
	return nil
}

func (m *Module) handleSaveMessage(_ context.Context, req SaveMessageRequest, _ *mono.Msg) (SaveMessageResponse, error) {
	if err := ValidateMessage(req.Content); err != nil {
		return SaveMessageResponse{}, err
	}
	id, err := m.repo.SaveMessage(req.RoomID, req.UserID, req.Content)
	if err != nil {
		return SaveMessageResponse{}, err
	}
	return SaveMessageResponse{MessageID: id}, nil
}

func (m *Module) handleGetUsername(_ context.Context, req GetUsernameRequest, _ *mono.Msg) (GetUsernameResponse, error) {
	name, err := m.repo.UsernameFor(req.UserID)
	if err != nil {
		return GetUsernameResponse{}, err
	}
	return GetUsernameResponse{Username: name}, nil
}

func (m *Module) handleGetUsernames(_ context.Context, req GetUsernamesRequest, _ *mono.Msg) (GetUsernamesResponse, error) {
	names, err := m.repo.UsernamesFor(req.UserIDs)
	if err != nil {
		return GetUsernamesResponse{}, err
	}
	return GetUsernamesResponse{Usernames: names}, nil
}

func (m *Module) handleCreateRoom(_ context.Context, req CreateRoomRequest, _ *mono.Msg) (CreateRoomResponse, error) {
	if err := ValidateRoomName(req.Name); err != nil {
		return CreateRoomResponse{}, err
	}
	room, err := m.repo.CreateRoom(req.Name)
	if err != nil {
		return CreateRoomResponse{}, err
	}
	return CreateRoomResponse{ID: room.ID, Name: room.Name, CreatedAt: room.CreatedAt}, nil
}

func (m *Module) handleListRooms(_ context.Context, _ ListRoomsRequest, _ *mono.Msg) (ListRoomsResponse, error) {
	rooms, err := m.repo.ListRooms()
	if err != nil {
		return ListRoomsResponse{}, err
	}
	resp := ListRoomsResponse{Rooms: make([]CreateRoomResponse, 0, len(rooms))}
	for _, room := range rooms {
		resp.Rooms = append(resp.Rooms, CreateRoomResponse{ID: room.ID, Name: room.Name, CreatedAt: room.CreatedAt})
	}
	return resp, nil
}

func (m *Module) handleGetHistory(_ context.Context, req GetHistoryRequest, _ *mono.Msg) (GetHistoryResponse, error) {
	limit := req.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	exists, err := m.repo.RoomExists(req.RoomID)
	if err != nil {
		return GetHistoryResponse{}, err
	}
	if !exists {
		return GetHistoryResponse{}, ErrRoomNotFound
	}
	entries, err := m.repo.History(req.RoomID, limit)
	if err != nil {
		return GetHistoryResponse{}, err
	}
	return GetHistoryResponse{Messages: entries}, nil
}
