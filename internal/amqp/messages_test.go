package amqp

import (
	"testing"
	"time"
)

func TestRefreshRequestMessageRoundTrip(t *testing.T) {
	msg := NewRefreshRequestMessage(42)
	if msg.ChatID != 42 {
		t.Fatalf("chat id = %d, want 42", msg.ChatID)
	}
	if time.Since(msg.RequestedAt) > time.Minute {
		t.Fatalf("requested_at not set: %v", msg.RequestedAt)
	}

	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	decoded, err := RefreshRequestMessageFromJSON(body)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.ChatID != msg.ChatID {
		t.Fatalf("chat id after round trip = %d, want %d", decoded.ChatID, msg.ChatID)
	}
}

func TestRefreshRequestMessageFromJSON_Invalid(t *testing.T) {
	if _, err := RefreshRequestMessageFromJSON([]byte("{not json")); err == nil {
		t.Fatalf("expected error for invalid JSON")
	}
}
