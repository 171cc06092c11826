package mailbox

import (
	"testing"

	"github.com/Iron-Ham/clusterexec/internal/address"
)

func TestMessageType_IsControl(t *testing.T) {
	tests := []struct {
		t    MessageType
		want bool
	}{
		{MessageInitialized, true},
		{MessageRun, true},
		{MessagePause, true},
		{MessageTerminate, false},
		{MessageStartNewTask, false},
		{MessageReadyAgain, false},
		{MessageResult, false},
	}

	for _, tt := range tests {
		t.Run(tt.t.String(), func(t *testing.T) {
			if got := tt.t.IsControl(); got != tt.want {
				t.Errorf("IsControl() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidateMessageType(t *testing.T) {
	for mt := range validMessageTypes {
		if !ValidateMessageType(mt) {
			t.Errorf("ValidateMessageType(%q) = false", mt)
		}
	}
	for _, mt := range []MessageType{"", "Initilised", "bogus"} {
		if ValidateMessageType(mt) {
			t.Errorf("ValidateMessageType(%q) = true", mt)
		}
	}
}

func TestNewMessage(t *testing.T) {
	from := address.New(0, 1)
	to := address.New(1, 2)
	msg := NewMessage(MessageReplyTask, from, to, []byte(`{"id":1}`))

	if msg.Type != MessageReplyTask || msg.From != from || msg.To != to {
		t.Errorf("NewMessage() = %+v", msg)
	}
	if msg.Timestamp.IsZero() {
		t.Error("NewMessage() should stamp the time")
	}
}
