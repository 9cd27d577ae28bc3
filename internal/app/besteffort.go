package app

import (
	"context"
	"time"

	"github.com/havenapp/haven/internal/domain"
	"github.com/havenapp/haven/internal/store"
	"github.com/rs/zerolog/log"
)

// BestEffort wraps the store so the hot path cannot wait on it. Append
// returns nothing and runs detached; the result is only logged. Callers
// get no way to observe storage failure, which is the contract: live
// delivery never depends on a write landing.
type BestEffort struct {
	store   store.Store
	timeout time.Duration
}

func NewBestEffort(s store.Store, timeout time.Duration) *BestEffort {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &BestEffort{store: s, timeout: timeout}
}

func (b *BestEffort) AppendMessage(w domain.Whisper) {
	if b == nil || b.store == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
		defer cancel()
		if err := b.store.AppendMessage(ctx, w); err != nil {
			log.Warn().Err(err).Str("module", "app.besteffort").Str("id", w.ID).Msg("message write dropped")
		}
	}()
}
