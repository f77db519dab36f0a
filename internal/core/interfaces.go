package core

import (
	"context"

	"github.com/auxroom/server/internal/domain"
)

// Frame is a marshaled outbound payload.
type Frame []byte

// Event is a frame plus delivery metadata. SyncFromHost marks host
// playback reports; each receiving session decides for itself whether
// to suppress delivery (the host never hears its own sync back).
type Event struct {
	Frame        Frame
	SyncFromHost bool
}

// Identity is what a validated token resolves to.
type Identity struct {
	UserID domain.UserID
	Name   string
}

// TokenValidator checks the opaque bearer credential issued by the
// auth service. Failures are wrapped in ErrAuthRequired.
type TokenValidator interface {
	Validate(ctx context.Context, token string) (Identity, error)
}

// RoomStore reads and writes the per-room authoritative aggregate.
// GetByCode returns ErrRoomNotFound for unknown codes; implementations
// must hand out copies so callers never share mutable state.
type RoomStore interface {
	GetByCode(ctx context.Context, code domain.RoomCode) (*domain.Room, error)
	Save(ctx context.Context, room *domain.Room) error
}

// ParticipantFinder resolves a user's membership record for a room.
// Returns ErrForbidden when the user never joined the room.
type ParticipantFinder interface {
	FindParticipant(ctx context.Context, room *domain.Room, user domain.UserID) (*domain.Participant, error)
}

// EventConn is a session's transport endpoint. Owned by the adapter;
// TrySend must not block (full buffers return ErrBackpressure).
type EventConn interface {
	TrySend(Frame) error
	CloseWith(code int, reason string)
	Close()
}

// Member is what the roster stores and fans out to.
type Member interface {
	ID() string
	User() domain.User
	// Deliver hands an event to the member's transport. Implementations
	// apply the per-recipient SyncFromHost suppression here.
	Deliver(Event) error
	// Kick force-closes a member that can no longer keep up.
	Kick()
}
