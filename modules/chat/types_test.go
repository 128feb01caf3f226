package chat

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateRoomName(t *testing.T) {
	tests := []struct {
		name     string
		roomName string
		wantErr  error
	}{
		{
			name:     "valid name",
			roomName: "general",
		},
		{
			name:     "name with spaces",
			roomName: "team standup",
		},
		{
			name:     "unicode name",
			roomName: "日本語の部屋",
		},
		{
			name:     "at maximum length",
			roomName: strings.Repeat("a", MaxRoomNameLength),
		},
		{
			name:     "empty name",
			roomName: "",
			wantErr:  ErrRoomNameEmpty,
		},
		{
			name:     "too long",
			roomName: strings.Repeat("a", MaxRoomNameLength+1),
			wantErr:  ErrRoomNameTooLong,
		},
		{
			name:     "invalid UTF-8",
			roomName: string([]byte{0xff, 0xfe}),
			wantErr:  ErrRoomNameInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRoomName(tt.roomName)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateRoomName(%q) error = %v, want %v", tt.roomName, err, tt.wantErr)
			}
		})
	}
}

func TestValidateMessage(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{
			name:    "valid message",
			content: "hello, world",
		},
		{
			name:    "at maximum length",
			content: strings.Repeat("a", MaxMessageLength),
		},
		{
			name:    "empty message",
			content: "",
			wantErr: ErrMessageEmpty,
		},
		{
			name:    "too long",
			content: strings.Repeat("a", MaxMessageLength+1),
			wantErr: ErrMessageTooLong,
		},
		{
			name:    "invalid UTF-8",
			content: string([]byte{0xff, 0xfe}),
			wantErr: ErrMessageInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMessage(tt.content)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateMessage() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
