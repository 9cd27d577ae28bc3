package domain

// RoomID is a client-supplied room key. Rooms have no existence of their
// own: one springs into being on first join and vanishes when its last
// member leaves.
type RoomID string

func ValidateRoomID(id RoomID) error {
	if len(id) == 0 {
		return ErrRoomIDEmpty
	}
	if len(id) > MaxRoomIDLen {
		return ErrRoomIDTooLong
	}
	return nil
}
