package signal

import (
	"testing"

	"github.com/havenapp/haven/internal/domain"
)

func TestParseJoinRoom(t *testing.T) {
	p, err := parseJoinRoom([]byte(`{"type":"join-room","roomId":"sunrise","userId":"alice","displayName":"Alice"}`))
	if err != nil {
		t.Fatalf("valid join rejected: %v", err)
	}
	if p.RoomID != "sunrise" || p.UserID != "alice" || p.DisplayName != "Alice" {
		t.Errorf("fields lost in parsing: %+v", p)
	}
}

func TestParseJoinRoomDefaultsDisplayName(t *testing.T) {
	p, err := parseJoinRoom([]byte(`{"type":"join-room","roomId":"sunrise","userId":"alice"}`))
	if err != nil {
		t.Fatalf("join without displayName should pass: %v", err)
	}
	if p.DisplayName != "alice" {
		t.Errorf("missing displayName should fall back to the user id, got %q", p.DisplayName)
	}
}

func TestParseJoinRoomMissingFields(t *testing.T) {
	cases := map[string]string{
		"no room": `{"type":"join-room","userId":"alice"}`,
		"no user": `{"type":"join-room","roomId":"sunrise"}`,
		"not json": `{"type":"join-room",`,
	}
	for name, raw := range cases {
		if _, err := parseJoinRoom([]byte(raw)); err == nil {
			t.Errorf("%s: malformed join must be rejected", name)
		}
	}
}

func TestParseSpeakingChangeRequiresFlag(t *testing.T) {
	if _, err := parseSpeakingChange([]byte(`{"type":"speaking-change","roomId":"sunrise"}`)); err == nil {
		t.Error("speaking-change without isSpeaking must be rejected")
	}
	p, err := parseSpeakingChange([]byte(`{"type":"speaking-change","roomId":"sunrise","isSpeaking":false}`))
	if err != nil {
		t.Fatalf("explicit false is a valid flag: %v", err)
	}
	if p.Speaking == nil || *p.Speaking {
		t.Error("explicit false lost in parsing")
	}
}

func TestParseLeaveRoomRequiresRoom(t *testing.T) {
	if _, err := parseLeaveRoom([]byte(`{"type":"leave-room"}`)); err == nil {
		t.Error("leave-room without roomId must be rejected")
	}
}

func TestParseSendWhisper(t *testing.T) {
	p, err := parseSendWhisper([]byte(`{"type":"send-whisper","receiverId":"bob","payload":"xq3::hello"}`))
	if err != nil {
		t.Fatalf("valid whisper rejected: %v", err)
	}
	if p.Kind != domain.WhisperText {
		t.Errorf("kind should default to text, got %q", p.Kind)
	}
}

func TestParseSendWhisperValidation(t *testing.T) {
	cases := map[string]string{
		"no receiver":          `{"type":"send-whisper","payload":"hi"}`,
		"unknown kind":         `{"type":"send-whisper","receiverId":"bob","payload":"hi","kind":"carrier-pigeon"}`,
		"text without payload": `{"type":"send-whisper","receiverId":"bob","kind":"text"}`,
		"invite without room":  `{"type":"send-whisper","receiverId":"bob","kind":"room-invite"}`,
	}
	for name, raw := range cases {
		if _, err := parseSendWhisper([]byte(raw)); err == nil {
			t.Errorf("%s: malformed whisper must be rejected", name)
		}
	}

	p, err := parseSendWhisper([]byte(`{"type":"send-whisper","receiverId":"bob","kind":"room-invite","sharedRoomId":"sunrise"}`))
	if err != nil {
		t.Fatalf("room invite with shared room should pass: %v", err)
	}
	if p.SharedRoomID != "sunrise" {
		t.Errorf("shared room lost: %+v", p)
	}
}
