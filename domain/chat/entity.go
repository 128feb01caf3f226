package chat

import "time"

// User is a registered account. The password hash never leaves the server.
type User struct {
	ID           string    `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	CreatedAt    time.Time `json:"created_at"`
}

// Room is a named broadcast group. Rows exist for history and the REST
// surface; live membership is kept in memory by the hub.
type Room struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"uniqueIndex;not null"`
	CreatedAt time.Time `json:"created_at"`
}

// Message is one durably recorded chat message.
type Message struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	RoomID    string    `json:"room_id" gorm:"index;not null"`
	UserID    string    `json:"user_id" gorm:"not null"`
	Content   string    `json:"content" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
}
