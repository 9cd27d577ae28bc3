package core

import (
	"encoding/json"
	"time"

	"github.com/havenapp/haven/internal/domain"
	"github.com/rs/zerolog/log"
)

// Server-to-client event types.
const (
	EventPresenceUpdate   = "presence-update"
	EventSpeakingUpdate   = "speaking-update"
	EventWhisperDelivered = "whisper-delivered"
)

type presenceUpdate struct {
	Type    string        `json:"type"`
	RoomID  domain.RoomID `json:"roomId"`
	Members []Member      `json:"members"`
	Count   int           `json:"count"`
}

type speakingUpdate struct {
	Type     string        `json:"type"`
	RoomID   domain.RoomID `json:"roomId"`
	ConnID   ConnID        `json:"connectionId"`
	Speaking bool          `json:"isSpeaking"`
}

type whisperDelivered struct {
	Type         string             `json:"type"`
	ID           string             `json:"id"`
	SenderID     domain.UserID      `json:"senderId"`
	Payload      string             `json:"payload"`
	Kind         domain.WhisperKind `json:"kind"`
	SharedRoomID domain.RoomID      `json:"sharedRoomId,omitempty"`
	Timestamp    time.Time          `json:"timestamp"`
}

func encodePresenceUpdate(roomID domain.RoomID, members []Member) Frame {
	return encode(presenceUpdate{
		Type:    EventPresenceUpdate,
		RoomID:  roomID,
		Members: members,
		Count:   len(members),
	})
}

func encodeSpeakingUpdate(roomID domain.RoomID, connID ConnID, speaking bool) Frame {
	return encode(speakingUpdate{
		Type:     EventSpeakingUpdate,
		RoomID:   roomID,
		ConnID:   connID,
		Speaking: speaking,
	})
}

// EncodeWhisperDelivered builds the frame pushed to every connection on
// the receiver's personal topic. The delivered flag is a storage concern
// and never travels on the wire.
func EncodeWhisperDelivered(w domain.Whisper) Frame {
	return encode(whisperDelivered{
		Type:         EventWhisperDelivered,
		ID:           w.ID,
		SenderID:     w.SenderID,
		Payload:      w.Payload,
		Kind:         w.Kind,
		SharedRoomID: w.SharedRoomID,
		Timestamp:    w.Timestamp,
	})
}

func encode(v any) Frame {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "core.events").Msg("encode event")
		return nil
	}
	return b
}
