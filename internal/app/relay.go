package app

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/havenapp/haven/internal/core"
	"github.com/havenapp/haven/internal/domain"
	"github.com/rs/zerolog/log"
)

var (
	// ErrNotConnected marks an event referencing a connection the
	// registry no longer knows. Stale by definition; callers drop it.
	ErrNotConnected = errors.New("connection not registered")
	// ErrUnidentified marks a whisper from a connection that never
	// claimed an identity, so it has no sender to attribute.
	ErrUnidentified = errors.New("connection has no identity")
)

// Relay owns the realtime subsystem: the connection registry, the room
// presence table, and the whisper topics. All connection events flow
// through it; nothing else mutates presence state.
type Relay struct {
	Registry *Registry
	Presence *core.PresenceTable
	Topics   *core.Topics

	store *BestEffort
}

func NewRelay(store *BestEffort) *Relay {
	return &Relay{
		Registry: NewRegistry(),
		Presence: core.NewPresenceTable(),
		Topics:   core.NewTopics(),
		store:    store,
	}
}

// Connect admits a freshly accepted connection. No identity, no rooms.
func (r *Relay) Connect(connID core.ConnID, sink core.Sink, cancel context.CancelFunc) {
	r.Registry.Bind(connID, sink, cancel)
}

// Disconnect runs the cleanup cascade: the connection leaves its personal
// topic and every room it occupied, then the record goes away. Idempotent;
// a second signal for a gone connection does nothing.
func (r *Relay) Disconnect(connID core.ConnID) {
	userID, _, ok := r.Registry.Unbind(connID)
	if !ok {
		return
	}
	if userID != "" {
		r.Topics.Unsubscribe(userID, connID)
	}
	affected := r.Presence.LeaveAll(connID)
	log.Info().Str("module", "app.relay").Str("conn", string(connID)).Int("rooms", affected).Msg("disconnected")
}

// Join puts the connection into a room under the claimed identity and
// subscribes it to that identity's whisper topic. The claim is taken at
// face value; re-claiming a different identity moves the subscription.
func (r *Relay) Join(connID core.ConnID, roomID domain.RoomID, userID domain.UserID, displayName string) error {
	sink, ok := r.Registry.Resolve(connID)
	if !ok {
		return ErrNotConnected
	}
	prev, ok := r.Registry.Identify(connID, userID, displayName)
	if !ok {
		return ErrNotConnected
	}
	if prev != "" && prev != userID {
		r.Topics.Unsubscribe(prev, connID)
	}
	r.Topics.Subscribe(userID, connID, sink)
	r.Presence.Join(roomID, connID, userID, displayName, sink)
	return nil
}

// Leave removes the connection from one room. Unknown room or
// non-membership is a silent no-op.
func (r *Relay) Leave(connID core.ConnID, roomID domain.RoomID) {
	r.Presence.Leave(roomID, connID)
}

// SetSpeaking toggles the transient speaking flag; stale events for rooms
// the connection is not in are ignored.
func (r *Relay) SetSpeaking(connID core.ConnID, roomID domain.RoomID, speaking bool) {
	r.Presence.SetSpeaking(roomID, connID, speaking)
}

// Whisper relays a point-to-point message to every connection currently
// subscribed under the receiver identity, rooms notwithstanding. The
// write-through to storage is fire-and-forget; delivery has already
// happened by the time it is dispatched. Self-whispers are legal and
// arrive like any other.
func (r *Relay) Whisper(connID core.ConnID, receiverID domain.UserID, payload string, kind domain.WhisperKind, sharedRoomID domain.RoomID) (domain.Whisper, error) {
	senderID, _, ok := r.Registry.Identity(connID)
	if !ok {
		return domain.Whisper{}, ErrNotConnected
	}
	if senderID == "" {
		return domain.Whisper{}, ErrUnidentified
	}

	w := domain.Whisper{
		ID:           uuid.NewString(),
		SenderID:     senderID,
		ReceiverID:   receiverID,
		Payload:      payload,
		Kind:         kind,
		SharedRoomID: sharedRoomID,
		Timestamp:    time.Now().UTC(),
	}

	delivered := r.Topics.Publish(receiverID, core.EncodeWhisperDelivered(w))
	w.Delivered = delivered > 0
	r.store.AppendMessage(w)

	log.Debug().Str("module", "app.relay").Str("id", w.ID).Str("to", string(receiverID)).Int("delivered", delivered).Msg("whisper relayed")
	return w, nil
}

// Shutdown closes every live sink so write pumps drain and clients see a
// clean close.
func (r *Relay) Shutdown() {
	for _, sink := range r.Registry.Sinks() {
		sink.Close()
	}
}
