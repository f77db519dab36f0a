package domain

import "time"

type Role string

const (
	RoleHost  Role = "host"
	RoleGuest Role = "guest"
)

// Participant records a user's membership in a room. The (room, user)
// pair is unique and exactly one participant per room holds RoleHost,
// both enforced by the room directory that writes these records.
// IsActive distinguishes "ever joined" from "currently rejoinable".
type Participant struct {
	RoomID   RoomID    `json:"room_id"`
	User     User      `json:"user"`
	Role     Role      `json:"role"`
	IsActive bool      `json:"is_active"`
	JoinedAt time.Time `json:"joined_at"`
}

func (p *Participant) IsHost() bool {
	return p.Role == RoleHost
}
