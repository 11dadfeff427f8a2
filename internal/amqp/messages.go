package amqp

import (
	"encoding/json"
	"time"
)

// RefreshRequestMessage asks the worker to re-download the backing file.
// It carries the requesting chat so the worker can report the outcome back
// to it and attribute the refresh in the audit log; the worker fetches
// from its own configured source.
type RefreshRequestMessage struct {
	ChatID      int64     `json:"chat_id"`
	RequestedAt time.Time `json:"requested_at"`
}

// NewRefreshRequestMessage creates a refresh request for the given chat.
func NewRefreshRequestMessage(chatID int64) *RefreshRequestMessage {
	return &RefreshRequestMessage{
		ChatID:      chatID,
		RequestedAt: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *RefreshRequestMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RefreshRequestMessageFromJSON creates a message from JSON bytes.
func RefreshRequestMessageFromJSON(data []byte) (*RefreshRequestMessage, error) {
	var msg RefreshRequestMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
