package core

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/havenapp/haven/internal/domain"
)

// captureSink records every frame it accepts, decoded for inspection.
type captureSink struct {
	mu     sync.Mutex
	frames []Frame
	fail   bool
}

func (s *captureSink) TrySend(f Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("send buffer full")
	}
	s.frames = append(s.frames, f)
	return nil
}

func (s *captureSink) Close() {}

func (s *captureSink) events(t *testing.T) []map[string]any {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]map[string]any, 0, len(s.frames))
	for _, f := range s.frames {
		var m map[string]any
		if err := json.Unmarshal(f, &m); err != nil {
			t.Fatalf("frame is not valid JSON: %v", err)
		}
		out = append(out, m)
	}
	return out
}

func (s *captureSink) countType(t *testing.T, typ string) int {
	t.Helper()
	n := 0
	for _, ev := range s.events(t) {
		if ev["type"] == typ {
			n++
		}
	}
	return n
}

func memberIDs(ev map[string]any) []string {
	raw, _ := ev["members"].([]any)
	out := make([]string, 0, len(raw))
	for _, m := range raw {
		mm, _ := m.(map[string]any)
		id, _ := mm["connectionId"].(string)
		out = append(out, id)
	}
	return out
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func TestJoinCreatesRoomAndBroadcastsSnapshot(t *testing.T) {
	table := NewPresenceTable()
	sink := &captureSink{}

	table.Join("lounge", "c1", "alice", "Alice", sink)

	members := table.Members("lounge")
	if len(members) != 1 || members[0].ConnID != "c1" {
		t.Fatalf("expected lounge to contain exactly c1, got %+v", members)
	}
	if members[0].Speaking {
		t.Error("a freshly joined member must not be speaking")
	}

	evs := sink.events(t)
	if len(evs) != 1 || evs[0]["type"] != EventPresenceUpdate {
		t.Fatalf("expected one presence-update for the joiner, got %v", evs)
	}
	if ids := memberIDs(evs[0]); !contains(ids, "c1") {
		t.Errorf("presence-update should include the joiner, got %v", ids)
	}
}

func TestMemberSetTracksJoinsAndLeaves(t *testing.T) {
	table := NewPresenceTable()
	a, b := &captureSink{}, &captureSink{}

	table.Join("lounge", "c1", "alice", "Alice", a)
	table.Join("lounge", "c2", "bob", "Bob", b)
	table.Leave("lounge", "c1")

	members := table.Members("lounge")
	if len(members) != 1 || members[0].ConnID != "c2" {
		t.Fatalf("after join/join/leave the room must hold exactly c2, got %+v", members)
	}
}

func TestEmptyRoomIsDropped(t *testing.T) {
	table := NewPresenceTable()
	sink := &captureSink{}

	table.Join("lounge", "c1", "alice", "Alice", sink)
	table.Leave("lounge", "c1")

	if m := table.Members("lounge"); m != nil {
		t.Errorf("emptied room should be absent from lookups, got %+v", m)
	}
	if rooms := table.Rooms(); len(rooms) != 0 {
		t.Errorf("emptied room should be removed from the table, got %+v", rooms)
	}
}

func TestRejoinOverwritesIdentityAndResetsSpeaking(t *testing.T) {
	table := NewPresenceTable()
	sink := &captureSink{}

	table.Join("lounge", "c1", "alice", "Alice", sink)
	if !table.SetSpeaking("lounge", "c1", true) {
		t.Fatal("SetSpeaking for a member should succeed")
	}
	table.Join("lounge", "c1", "alice", "Alice B.", sink)

	members := table.Members("lounge")
	if len(members) != 1 {
		t.Fatalf("re-join must not duplicate the member, got %+v", members)
	}
	if members[0].DisplayName != "Alice B." {
		t.Errorf("re-join is last-write-wins on displayName, got %q", members[0].DisplayName)
	}
	if members[0].Speaking {
		t.Error("re-join must reset the speaking flag")
	}
}

func TestSetSpeakingForNonMemberIsSilentNoop(t *testing.T) {
	table := NewPresenceTable()
	sink := &captureSink{}
	table.Join("lounge", "c1", "alice", "Alice", sink)
	before := len(sink.events(t))

	if table.SetSpeaking("lounge", "ghost", true) {
		t.Error("SetSpeaking for a non-member must report a no-op")
	}
	if table.SetSpeaking("nowhere", "c1", true) {
		t.Error("SetSpeaking for an unknown room must report a no-op")
	}

	if got := len(sink.events(t)); got != before {
		t.Errorf("a no-op speaking change must not broadcast, frames %d -> %d", before, got)
	}
	if m := table.Members("lounge"); len(m) != 1 {
		t.Errorf("a stale speaking event must never create members, got %+v", m)
	}
}

func TestSpeakingChangeBroadcastsSingleFieldUpdate(t *testing.T) {
	table := NewPresenceTable()
	a, b := &captureSink{}, &captureSink{}
	table.Join("lounge", "c1", "alice", "Alice", a)
	table.Join("lounge", "c2", "bob", "Bob", b)

	table.SetSpeaking("lounge", "c1", true)

	for name, sink := range map[string]*captureSink{"alice": a, "bob": b} {
		evs := sink.events(t)
		last := evs[len(evs)-1]
		if last["type"] != EventSpeakingUpdate {
			t.Fatalf("%s: expected trailing speaking-update, got %v", name, last)
		}
		if last["connectionId"] != "c1" || last["isSpeaking"] != true {
			t.Errorf("%s: wrong speaking-update fields: %v", name, last)
		}
	}
	if a.countType(t, EventPresenceUpdate) != 2 {
		t.Error("speaking change must not trigger a full presence-update")
	}
}

func TestEveryMembershipChangeBroadcastsExactlyOnce(t *testing.T) {
	table := NewPresenceTable()
	a, b, c := &captureSink{}, &captureSink{}, &captureSink{}

	table.Join("lounge", "c1", "alice", "Alice", a) // a:1
	table.Join("lounge", "c2", "bob", "Bob", b)     // a:2 b:1
	table.Join("lounge", "c3", "cara", "Cara", c)   // a:3 b:2 c:1
	table.Leave("lounge", "c2")                     // a:4 c:2

	if got := a.countType(t, EventPresenceUpdate); got != 4 {
		t.Errorf("alice should have seen 4 presence-updates, got %d", got)
	}
	if got := b.countType(t, EventPresenceUpdate); got != 2 {
		t.Errorf("bob should have seen 2 presence-updates (none after leaving), got %d", got)
	}
	if got := c.countType(t, EventPresenceUpdate); got != 2 {
		t.Errorf("cara should have seen 2 presence-updates, got %d", got)
	}

	evs := a.events(t)
	if ids := memberIDs(evs[len(evs)-1]); contains(ids, "c2") {
		t.Errorf("the post-leave snapshot must exclude the leaver, got %v", ids)
	}
}

func TestLeaveAllBroadcastsOncePerAffectedRoom(t *testing.T) {
	table := NewPresenceTable()
	x := &captureSink{}
	observers := map[string]*captureSink{"r1": {}, "r2": {}, "r3": {}}

	for room, obs := range observers {
		table.Join(domain.RoomID(room), ConnID("o-"+room), "observer", "Observer", obs)
		table.Join(domain.RoomID(room), "cx", "wanderer", "Wanderer", x)
	}

	if affected := table.LeaveAll("cx"); affected != 3 {
		t.Fatalf("expected disconnect to touch 3 rooms, got %d", affected)
	}

	for room, obs := range observers {
		if got := obs.countType(t, EventPresenceUpdate); got != 3 {
			t.Errorf("%s observer should have seen 3 presence-updates (own join, cx join, cx leave), got %d", room, got)
		}
		evs := obs.events(t)
		if ids := memberIDs(evs[len(evs)-1]); contains(ids, "cx") {
			t.Errorf("%s: final snapshot must exclude the disconnected member, got %v", room, ids)
		}
	}

	if table.LeaveAll("cx") != 0 {
		t.Error("a second LeaveAll for the same connection must touch nothing")
	}
}

func TestBroadcastSurvivesUnwritableSink(t *testing.T) {
	table := NewPresenceTable()
	good := &captureSink{}
	bad := &captureSink{fail: true}

	table.Join("lounge", "c1", "alice", "Alice", good)
	table.Join("lounge", "c2", "bob", "Bob", bad)
	table.Join("lounge", "c3", "cara", "Cara", &captureSink{})

	if got := good.countType(t, EventPresenceUpdate); got != 3 {
		t.Errorf("a dead sink must not block delivery to others, alice saw %d updates", got)
	}
	if m := table.Members("lounge"); len(m) != 3 {
		t.Errorf("an unwritable sink is a delivery problem, not a membership change: %+v", m)
	}
}

func TestJoinThenLeaveObservedInOrder(t *testing.T) {
	table := NewPresenceTable()
	obs := &captureSink{}
	table.Join("lounge", "c1", "alice", "Alice", obs)

	table.Join("lounge", "c2", "bob", "Bob", &captureSink{})
	table.Leave("lounge", "c2")

	evs := obs.events(t)
	if len(evs) != 3 {
		t.Fatalf("expected 3 presence-updates in order, got %d", len(evs))
	}
	if ids := memberIDs(evs[1]); !contains(ids, "c2") {
		t.Errorf("join snapshot must show the joiner, got %v", ids)
	}
	if ids := memberIDs(evs[2]); contains(ids, "c2") {
		t.Errorf("leave snapshot must not show the leaver, got %v", ids)
	}
}
