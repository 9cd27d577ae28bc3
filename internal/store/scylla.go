package store

import (
	"context"
	"fmt"
	"time"

	"github.com/gocql/gocql"
	"github.com/havenapp/haven/internal/domain"
)

// echoes share one partition; the feed is small and read newest-first.
const echoBucket = "feed"

// ScyllaStore persists whispers and echoes in ScyllaDB/Cassandra.
// Whispers are written once per participant partition so both sides can
// read their history with a single-partition query.
type ScyllaStore struct {
	session *gocql.Session
}

func NewScyllaStore(hosts []string, keyspace string, timeout time.Duration) (*ScyllaStore, error) {
	cluster := gocql.NewCluster(hosts...)
	cluster.Keyspace = "system"
	cluster.Timeout = timeout
	session, err := cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("scylla connect: %w", err)
	}
	if err := ensureSchema(session, keyspace); err != nil {
		session.Close()
		return nil, err
	}
	session.Close()

	cluster.Keyspace = keyspace
	session, err = cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("scylla connect keyspace %s: %w", keyspace, err)
	}
	return &ScyllaStore{session: session}, nil
}

func ensureSchema(session *gocql.Session, keyspace string) error {
	stmts := []string{
		fmt.Sprintf(`CREATE KEYSPACE IF NOT EXISTS %s
			WITH replication = {'class': 'SimpleStrategy', 'replication_factor': 1}`, keyspace),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.messages_by_user (
			user_id text,
			ts timestamp,
			id text,
			sender_id text,
			receiver_id text,
			payload text,
			kind text,
			shared_room_id text,
			delivered boolean,
			PRIMARY KEY (user_id, ts, id)
		) WITH CLUSTERING ORDER BY (ts ASC)`, keyspace),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.echoes (
			bucket text,
			ts timestamp,
			id text,
			author_id text,
			author_name text,
			body text,
			PRIMARY KEY (bucket, ts, id)
		) WITH CLUSTERING ORDER BY (ts DESC)`, keyspace),
	}
	for _, stmt := range stmts {
		if err := session.Query(stmt).Exec(); err != nil {
			return fmt.Errorf("scylla schema: %w", err)
		}
	}
	return nil
}

func (s *ScyllaStore) AppendMessage(ctx context.Context, w domain.Whisper) error {
	parties := []domain.UserID{w.ReceiverID}
	if w.SenderID != w.ReceiverID {
		parties = append(parties, w.SenderID)
	}
	for _, p := range parties {
		err := s.session.Query(
			`INSERT INTO messages_by_user (user_id, ts, id, sender_id, receiver_id, payload, kind, shared_room_id, delivered)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			string(p), w.Timestamp, w.ID, string(w.SenderID), string(w.ReceiverID),
			w.Payload, string(w.Kind), string(w.SharedRoomID), w.Delivered,
		).WithContext(ctx).Exec()
		if err != nil {
			return fmt.Errorf("append message: %w", err)
		}
	}
	return nil
}

func (s *ScyllaStore) AppendEcho(ctx context.Context, e domain.Echo) error {
	err := s.session.Query(
		`INSERT INTO echoes (bucket, ts, id, author_id, author_name, body) VALUES (?, ?, ?, ?, ?, ?)`,
		echoBucket, e.CreatedAt, e.ID, string(e.AuthorID), e.AuthorName, e.Body,
	).WithContext(ctx).Exec()
	if err != nil {
		return fmt.Errorf("append echo: %w", err)
	}
	return nil
}

func (s *ScyllaStore) QueryMessagesForUser(ctx context.Context, userID domain.UserID) ([]domain.Whisper, error) {
	iter := s.session.Query(
		`SELECT id, ts, sender_id, receiver_id, payload, kind, shared_room_id, delivered
		 FROM messages_by_user WHERE user_id = ?`,
		string(userID),
	).WithContext(ctx).Iter()

	var out []domain.Whisper
	var (
		id, senderID, receiverID, payload, kind, sharedRoomID string
		ts                                                    time.Time
		delivered                                             bool
	)
	for iter.Scan(&id, &ts, &senderID, &receiverID, &payload, &kind, &sharedRoomID, &delivered) {
		out = append(out, domain.Whisper{
			ID:           id,
			SenderID:     domain.UserID(senderID),
			ReceiverID:   domain.UserID(receiverID),
			Payload:      payload,
			Kind:         domain.WhisperKind(kind),
			SharedRoomID: domain.RoomID(sharedRoomID),
			Timestamp:    ts,
			Delivered:    delivered,
		})
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	return out, nil
}

func (s *ScyllaStore) QueryEchoesRecent(ctx context.Context, limit int) ([]domain.Echo, error) {
	if limit <= 0 {
		limit = 50
	}
	iter := s.session.Query(
		`SELECT id, ts, author_id, author_name, body FROM echoes WHERE bucket = ? LIMIT ?`,
		echoBucket, limit,
	).WithContext(ctx).Iter()

	var out []domain.Echo
	var (
		id, authorID, authorName, body string
		ts                             time.Time
	)
	for iter.Scan(&id, &ts, &authorID, &authorName, &body) {
		out = append(out, domain.Echo{
			ID:         id,
			AuthorID:   domain.UserID(authorID),
			AuthorName: authorName,
			Body:       body,
			CreatedAt:  ts,
		})
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("query echoes: %w", err)
	}
	return out, nil
}

func (s *ScyllaStore) Close() {
	s.session.Close()
}
