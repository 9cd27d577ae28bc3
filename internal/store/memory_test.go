package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/havenapp/haven/internal/domain"
)

func TestMemoryStoreMessagesByParticipant(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	msgs := []domain.Whisper{
		{ID: "1", SenderID: "alice", ReceiverID: "bob"},
		{ID: "2", SenderID: "bob", ReceiverID: "alice"},
		{ID: "3", SenderID: "carol", ReceiverID: "dave"},
	}
	for _, m := range msgs {
		if err := s.AppendMessage(ctx, m); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	got, err := s.QueryMessagesForUser(ctx, "alice")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("alice participates in 2 messages, got %d", len(got))
	}
	for _, m := range got {
		if m.SenderID != "alice" && m.ReceiverID != "alice" {
			t.Errorf("message %s does not involve alice", m.ID)
		}
	}

	if got, _ := s.QueryMessagesForUser(ctx, "nobody"); len(got) != 0 {
		t.Errorf("unknown user should have no history, got %d", len(got))
	}
}

func TestMemoryStoreEchoesNewestFirst(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		err := s.AppendEcho(ctx, domain.Echo{
			ID:        fmt.Sprintf("e%d", i),
			AuthorID:  "alice",
			Body:      "echo",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	got, err := s.QueryEchoesRecent(ctx, 3)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("limit not honored, got %d", len(got))
	}
	if got[0].ID != "e4" || got[2].ID != "e2" {
		t.Errorf("expected newest first, got %q..%q", got[0].ID, got[2].ID)
	}

	all, _ := s.QueryEchoesRecent(ctx, 0)
	if len(all) != 5 {
		t.Errorf("non-positive limit should return everything, got %d", len(all))
	}
}
