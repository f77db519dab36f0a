// Package domain contains the room aggregate and membership entities.
// Transport and persistence live in adapters; nothing here does I/O.
package domain

type UserID string

// User is the identity bound to a live connection after its token has
// been validated. The auth service owns the canonical record.
type User struct {
	ID   UserID `json:"id"`
	Name string `json:"name"`
}
