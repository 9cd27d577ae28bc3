package signal

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/havenapp/haven/internal/domain"
)

// Client-to-server event types. The set is closed; anything else is
// logged and ignored.
const (
	EventJoinRoom       = "join-room"
	EventLeaveRoom      = "leave-room"
	EventSpeakingChange = "speaking-change"
	EventSendWhisper    = "send-whisper"
	EventPing           = "ping"
)

var errMissingField = errors.New("missing required field")

type joinRoomEvent struct {
	Type        string        `json:"type"`
	RoomID      domain.RoomID `json:"roomId"`
	UserID      domain.UserID `json:"userId"`
	DisplayName string        `json:"displayName"`
}

func parseJoinRoom(data []byte) (joinRoomEvent, error) {
	var p joinRoomEvent
	if err := json.Unmarshal(data, &p); err != nil {
		return p, err
	}
	if err := domain.ValidateRoomID(p.RoomID); err != nil {
		return p, fmt.Errorf("roomId: %w", err)
	}
	if err := domain.ValidateUserID(p.UserID); err != nil {
		return p, fmt.Errorf("userId: %w", err)
	}
	if err := domain.ValidateDisplayName(p.DisplayName); err != nil {
		return p, fmt.Errorf("displayName: %w", err)
	}
	if p.DisplayName == "" {
		p.DisplayName = string(p.UserID)
	}
	return p, nil
}

type leaveRoomEvent struct {
	Type   string        `json:"type"`
	RoomID domain.RoomID `json:"roomId"`
}

func parseLeaveRoom(data []byte) (leaveRoomEvent, error) {
	var p leaveRoomEvent
	if err := json.Unmarshal(data, &p); err != nil {
		return p, err
	}
	if err := domain.ValidateRoomID(p.RoomID); err != nil {
		return p, fmt.Errorf("roomId: %w", err)
	}
	return p, nil
}

type speakingChangeEvent struct {
	Type     string        `json:"type"`
	RoomID   domain.RoomID `json:"roomId"`
	Speaking *bool         `json:"isSpeaking"`
}

func parseSpeakingChange(data []byte) (speakingChangeEvent, error) {
	var p speakingChangeEvent
	if err := json.Unmarshal(data, &p); err != nil {
		return p, err
	}
	if err := domain.ValidateRoomID(p.RoomID); err != nil {
		return p, fmt.Errorf("roomId: %w", err)
	}
	if p.Speaking == nil {
		return p, fmt.Errorf("isSpeaking: %w", errMissingField)
	}
	return p, nil
}

type sendWhisperEvent struct {
	Type         string             `json:"type"`
	ReceiverID   domain.UserID      `json:"receiverId"`
	Payload      string             `json:"payload"`
	Kind         domain.WhisperKind `json:"kind"`
	SharedRoomID domain.RoomID      `json:"sharedRoomId"`
}

func parseSendWhisper(data []byte) (sendWhisperEvent, error) {
	var p sendWhisperEvent
	if err := json.Unmarshal(data, &p); err != nil {
		return p, err
	}
	if err := domain.ValidateUserID(p.ReceiverID); err != nil {
		return p, fmt.Errorf("receiverId: %w", err)
	}
	if p.Kind == "" {
		p.Kind = domain.WhisperText
	}
	if err := domain.ValidateWhisperKind(p.Kind); err != nil {
		return p, err
	}
	switch p.Kind {
	case domain.WhisperText:
		if p.Payload == "" {
			return p, fmt.Errorf("payload: %w", errMissingField)
		}
	case domain.WhisperRoomInvite:
		if err := domain.ValidateRoomID(p.SharedRoomID); err != nil {
			return p, fmt.Errorf("sharedRoomId: %w", err)
		}
	}
	return p, nil
}
