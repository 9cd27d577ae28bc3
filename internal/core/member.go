package core

import "github.com/havenapp/haven/internal/domain"

// Member is the presence record for one connection inside one room.
// It is mutated only through explicit join, speaking-state, or
// leave/disconnect events for that exact connection.
type Member struct {
	ConnID      ConnID        `json:"connectionId"`
	UserID      domain.UserID `json:"userId"`
	DisplayName string        `json:"displayName"`
	Speaking    bool          `json:"isSpeaking"`
}
