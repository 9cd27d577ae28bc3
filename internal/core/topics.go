package core

import (
	"sync"

	"github.com/havenapp/haven/internal/domain"
	"github.com/rs/zerolog/log"
)

// Topics is the per-identity subscription registry behind whisper
// delivery. Every connection that has claimed a user identity is
// subscribed to that identity's personal topic; a whisper published to
// the topic reaches all of them, so a user on two devices hears it twice
// by design.
//
// There is no queueing: a publish with no subscribers delivers to nobody
// and is immediately forgotten. Durability is the store's business.
type Topics struct {
	mu   sync.RWMutex
	subs map[domain.UserID]map[ConnID]Sink
}

func NewTopics() *Topics {
	return &Topics{subs: make(map[domain.UserID]map[ConnID]Sink)}
}

func (t *Topics) Subscribe(userID domain.UserID, connID ConnID, sink Sink) {
	t.mu.Lock()
	defer t.mu.Unlock()
	conns := t.subs[userID]
	if conns == nil {
		conns = make(map[ConnID]Sink)
		t.subs[userID] = conns
	}
	conns[connID] = sink
	log.Debug().Str("module", "core.topics").Str("user", string(userID)).Str("conn", string(connID)).Msg("subscribed")
}

func (t *Topics) Unsubscribe(userID domain.UserID, connID ConnID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	conns := t.subs[userID]
	if conns == nil {
		return
	}
	delete(conns, connID)
	if len(conns) == 0 {
		delete(t.subs, userID)
	}
}

// Publish pushes the frame to every connection subscribed under the
// identity and reports how many accepted it.
func (t *Topics) Publish(userID domain.UserID, frame Frame) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	delivered := 0
	for _, sink := range t.subs[userID] {
		if err := sink.TrySend(frame); err != nil {
			continue
		}
		delivered++
	}
	return delivered
}
