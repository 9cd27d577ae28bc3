package core

// Frame is an encoded wire payload.
type Frame []byte

// ConnID identifies one live transport session for its lifetime.
// Assigned by the transport adapter on accept, never reused.
type ConnID string

// Sink abstracts the send side of a transport connection.
// Owned by the adapter; the adapter must Close() it.
type Sink interface {
	TrySend(Frame) error
	Close()
}
