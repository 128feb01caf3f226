package chat

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	domain "github.com/example/chat-hub/domain/chat"
)

var (
	// ErrRoomNotFound is returned when a room does not exist.
	ErrRoomNotFound = errors.New("room not found")
	// ErrRoomExists is returned when a room name is already taken.
	ErrRoomExists = errors.New("room with this name already exists")
	// ErrUserNotFound is returned when a user does not exist.
	ErrUserNotFound = errors.New("user not found")
)

// Repository persists rooms and messages and resolves display names,
// using GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a Repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateRoom inserts a new room.
func (r *Repository) CreateRoom(name string) (*domain.Room, error) {
	room := &domain.Room{
		ID:        uuid.New().String(),
		Name:      name,
		CreatedAt: time.Now(),
	}
	result := r.db.Create(room)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return nil, ErrRoomExists
		}
		return nil, result.Error
	}
	return room, nil
}

// ListRooms returns all rooms ordered by name.
func (r *Repository) ListRooms() ([]domain.Room, error) {
	var rooms []domain.Room
	if err := r.db.Order("name").Find(&rooms).Error; err != nil {
		return nil, err
	}
	return rooms, nil
}

// RoomExists reports whether a room row exists.
func (r *Repository) RoomExists(roomID string) (bool, error) {
	var count int64
	if err := r.db.Model(&domain.Room{}).Where("id = ?", roomID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// SaveMessage durably records one message and returns its ID.
func (r *Repository) SaveMessage(roomID, userID, content string) (string, error) {
	msg := &domain.Message{
		ID:        uuid.New().String(),
		RoomID:    roomID,
		UserID:    userID,
		Content:   content,
		CreatedAt: time.Now(),
	}
	if err := r.db.Create(msg).Error; err != nil {
		return "", err
	}
	return msg.ID, nil
}

// History returns the most recent limit messages of a room with sender
// names joined in, oldest first.
func (r *Repository) History(roomID string, limit int) ([]HistoryEntry, error) {
	var entries []HistoryEntry
	err := r.db.Model(&domain.Message{}).
		Select("messages.id, messages.room_id, messages.user_id, users.username, messages.content, messages.created_at").
		Joins("JOIN users ON users.id = messages.user_id").
		Where("messages.room_id = ?", roomID).
		Order("messages.created_at DESC").
		Limit(limit).
		Scan(&entries).Error
	if err != nil {
		return nil, err
	}
	// Reverse into chronological order.
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}

// UsernameFor resolves one user's display name.
func (r *Repository) UsernameFor(userID string) (string, error) {
	var user domain.User
	result := r.db.Select("username").First(&user, "id = ?", userID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return "", ErrUserNotFound
		}
		return "", result.Error
	}
	return user.Username, nil
}

// UsernamesFor resolves display names in bulk. Unknown IDs are simply
// absent from the result.
func (r *Repository) UsernamesFor(userIDs []string) (map[string]string, error) {
	names := make(map[string]string, len(userIDs))
	if len(userIDs) == 0 {
		return names, nil
	}
	var users []domain.User
	if err := r.db.Select("id, username").Where("id IN ?", userIDs).Find(&users).Error; err != nil {
		return nil, err
	}
	for _, u := range users {
		names[u.ID] = u.Username
	}
	return names, nil
}
