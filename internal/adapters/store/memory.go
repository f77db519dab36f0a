// Package store provides Room State Store adapters: redis for shared
// deployments and an in-memory implementation for tests and demos.
package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/auxroom/server/internal/core"
	"github.com/auxroom/server/internal/domain"
)

// Memory is a threadsafe in-memory room store. Reads hand out clones
// so no caller shares mutable state with the store.
type Memory struct {
	mu           sync.RWMutex
	rooms        map[domain.RoomCode]*domain.Room
	participants map[domain.RoomID]map[domain.UserID]domain.Participant
}

func NewMemory() *Memory {
	return &Memory{
		rooms:        make(map[domain.RoomCode]*domain.Room),
		participants: make(map[domain.RoomID]map[domain.UserID]domain.Participant),
	}
}

func (m *Memory) GetByCode(_ context.Context, code domain.RoomCode) (*domain.Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	room, ok := m.rooms[code]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrRoomNotFound, code)
	}
	return room.Clone(), nil
}

func (m *Memory) Save(_ context.Context, room *domain.Room) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rooms[room.Code] = room.Clone()
	return nil
}

func (m *Memory) FindParticipant(_ context.Context, room *domain.Room, user domain.UserID) (*domain.Participant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	byUser, ok := m.participants[room.ID]
	if !ok {
		return nil, fmt.Errorf("%w: user %s not in room %s", core.ErrForbidden, user, room.Code)
	}
	p, ok := byUser[user]
	if !ok {
		return nil, fmt.Errorf("%w: user %s not in room %s", core.ErrForbidden, user, room.Code)
	}
	return &p, nil
}

// PutParticipant seeds a membership record; normally the room
// directory service writes these.
func (m *Memory) PutParticipant(p domain.Participant) {
	m.mu.Lock()
	defer m.mu.Unlock()
	byUser, ok := m.participants[p.RoomID]
	if !ok {
		byUser = make(map[domain.UserID]domain.Participant)
		m.participants[p.RoomID] = byUser
	}
	byUser[p.User.ID] = p
}
