package core

import (
	"sort"
	"sync"

	"github.com/havenapp/haven/internal/domain"
	"github.com/rs/zerolog/log"
)

// PresenceTable is the authoritative in-process record of who is in which
// room right now, and the broadcaster that pushes every membership or
// speaking change back out to the affected room.
//
// Mutation, snapshot, and fan-out happen inside a single critical section,
// so events touching the same room are observed by members in the order
// they were applied: a join immediately followed by a leave can never be
// seen as a final state that still contains the connection.
type PresenceTable struct {
	mu     sync.RWMutex
	rooms  map[domain.RoomID]map[ConnID]*memberEntry
	byConn map[ConnID]map[domain.RoomID]struct{}
}

type memberEntry struct {
	member Member
	sink   Sink
}

// RoomInfo is a read-only view for the HTTP surface.
type RoomInfo struct {
	RoomID      domain.RoomID `json:"roomId"`
	MemberCount int           `json:"memberCount"`
}

func NewPresenceTable() *PresenceTable {
	return &PresenceTable{
		rooms:  make(map[domain.RoomID]map[ConnID]*memberEntry),
		byConn: make(map[ConnID]map[domain.RoomID]struct{}),
	}
}

// Join inserts or overwrites the member keyed by connID. The room is
// created on first join. Re-joining is idempotent: identity fields are
// last-write-wins and the speaking flag resets to false.
func (t *PresenceTable) Join(roomID domain.RoomID, connID ConnID, userID domain.UserID, displayName string, sink Sink) {
	t.mu.Lock()
	defer t.mu.Unlock()

	room := t.rooms[roomID]
	if room == nil {
		room = make(map[ConnID]*memberEntry)
		t.rooms[roomID] = room
	}
	room[connID] = &memberEntry{
		member: Member{ConnID: connID, UserID: userID, DisplayName: displayName},
		sink:   sink,
	}
	if t.byConn[connID] == nil {
		t.byConn[connID] = make(map[domain.RoomID]struct{})
	}
	t.byConn[connID][roomID] = struct{}{}

	log.Info().Str("module", "core.presence").Str("room", string(roomID)).Str("conn", string(connID)).Str("user", string(userID)).Msg("member joined")
	t.broadcastPresenceLocked(roomID, room)
}

// Leave removes the connection from a single room. Unknown room or
// non-member connection is a no-op.
func (t *PresenceTable) Leave(roomID domain.RoomID, connID ConnID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.leaveLocked(roomID, connID)
}

// LeaveAll is the disconnect cascade: the connection is removed from every
// room it occupies, each affected room gets one presence broadcast, and
// emptied rooms are dropped from the table. Returns the number of rooms
// affected.
func (t *PresenceTable) LeaveAll(connID ConnID) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	affected := 0
	for roomID := range t.byConn[connID] {
		if t.leaveLocked(roomID, connID) {
			affected++
		}
	}
	return affected
}

func (t *PresenceTable) leaveLocked(roomID domain.RoomID, connID ConnID) bool {
	room := t.rooms[roomID]
	if room == nil {
		return false
	}
	if _, ok := room[connID]; !ok {
		return false
	}
	delete(room, connID)
	if idx := t.byConn[connID]; idx != nil {
		delete(idx, roomID)
		if len(idx) == 0 {
			delete(t.byConn, connID)
		}
	}

	log.Info().Str("module", "core.presence").Str("room", string(roomID)).Str("conn", string(connID)).Msg("member left")

	// A room with zero members must not be retained.
	if len(room) == 0 {
		delete(t.rooms, roomID)
		return true
	}
	t.broadcastPresenceLocked(roomID, room)
	return true
}

// SetSpeaking flips the transient speaking flag. A stale event for a
// connection that is not a member of the room is silently ignored and
// triggers no broadcast.
func (t *PresenceTable) SetSpeaking(roomID domain.RoomID, connID ConnID, speaking bool) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	room := t.rooms[roomID]
	if room == nil {
		return false
	}
	entry, ok := room[connID]
	if !ok {
		return false
	}
	entry.member.Speaking = speaking

	frame := encodeSpeakingUpdate(roomID, connID, speaking)
	t.fanoutLocked(roomID, room, frame)
	return true
}

// Members returns a snapshot of the room's member list, ordered by
// connection ID for stable output. Nil for an unknown room.
func (t *PresenceTable) Members(roomID domain.RoomID) []Member {
	t.mu.RLock()
	defer t.mu.RUnlock()
	room := t.rooms[roomID]
	if room == nil {
		return nil
	}
	return snapshot(room)
}

// Rooms lists currently live rooms for the ops surface.
func (t *PresenceTable) Rooms() []RoomInfo {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]RoomInfo, 0, len(t.rooms))
	for id, room := range t.rooms {
		out = append(out, RoomInfo{RoomID: id, MemberCount: len(room)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RoomID < out[j].RoomID })
	return out
}

func (t *PresenceTable) broadcastPresenceLocked(roomID domain.RoomID, room map[ConnID]*memberEntry) {
	frame := encodePresenceUpdate(roomID, snapshot(room))
	t.fanoutLocked(roomID, room, frame)
}

// fanoutLocked pushes one frame to every member of the room. A sink that
// cannot accept the frame loses that single delivery; everyone else still
// receives theirs. Clients converge again on the next full snapshot.
func (t *PresenceTable) fanoutLocked(roomID domain.RoomID, room map[ConnID]*memberEntry, frame Frame) {
	if frame == nil {
		return
	}
	sent, dropped := 0, 0
	for _, entry := range room {
		if err := entry.sink.TrySend(frame); err != nil {
			dropped++
			continue
		}
		sent++
	}
	log.Debug().Str("module", "core.presence").Str("room", string(roomID)).Int("sent", sent).Int("dropped", dropped).Msg("broadcast")
}

func snapshot(room map[ConnID]*memberEntry) []Member {
	out := make([]Member, 0, len(room))
	for _, entry := range room {
		out = append(out, entry.member)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ConnID < out[j].ConnID })
	return out
}
