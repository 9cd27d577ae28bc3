package domain

import (
	"errors"
	"time"
)

// WhisperKind is the closed set of point-to-point message kinds.
type WhisperKind string

const (
	WhisperText       WhisperKind = "text"
	WhisperRoomInvite WhisperKind = "room-invite"
)

var ErrUnknownWhisperKind = errors.New("unknown whisper kind")

func ValidateWhisperKind(k WhisperKind) error {
	switch k {
	case WhisperText, WhisperRoomInvite:
		return nil
	}
	return ErrUnknownWhisperKind
}

// Whisper is one point-to-point message between two identities,
// independent of any room. The relay is a pure forwarding step: it builds
// the record, hands it to best-effort storage, fans it out, and forgets it.
type Whisper struct {
	ID           string      `json:"id"`
	SenderID     UserID      `json:"senderId"`
	ReceiverID   UserID      `json:"receiverId"`
	Payload      string      `json:"payload"`
	Kind         WhisperKind `json:"kind"`
	SharedRoomID RoomID      `json:"sharedRoomId,omitempty"`
	Timestamp    time.Time   `json:"timestamp"`
	Delivered    bool        `json:"delivered"`
}
