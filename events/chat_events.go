package events

import (
	"encoding/json"
	"time"

	"github.com/go-monolith/mono/pkg/helper"
)

// MessageSentEvent is emitted by the hub after a message has been durably
// recorded. Frame carries the outbound wire frame, serialized exactly once;
// consumers fan the same bytes out to every recipient.
type MessageSentEvent struct {
	MessageID string          `json:"message_id"`
	RoomID    string          `json:"room_id"`
	SenderID  string          `json:"sender_id"`
	Frame     json.RawMessage `json:"frame"`
	Timestamp time.Time       `json:"timestamp"`
}

// MessageSentV1 is the versioned event definition for MessageSentEvent.
var MessageSentV1 = helper.EventDefinition[MessageSentEvent](
	"chat",
	"MessageSent",
	"v1",
)
