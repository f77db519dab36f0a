package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/auxroom/server/internal/core"
	"github.com/auxroom/server/internal/domain"
)

// Redis stores each room aggregate as a JSON blob and its membership
// records in a hash, sharing keys with the room directory service.
type Redis struct {
	rdb *redis.Client
}

func NewRedis(rdb *redis.Client) *Redis {
	return &Redis{rdb: rdb}
}

func roomKey(code domain.RoomCode) string {
	return fmt.Sprintf("rooms:%s", code)
}

func participantsKey(code domain.RoomCode) string {
	return fmt.Sprintf("rooms:%s:participants", code)
}

func (r *Redis) GetByCode(ctx context.Context, code domain.RoomCode) (*domain.Room, error) {
	val, err := r.rdb.Get(ctx, roomKey(code)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", core.ErrRoomNotFound, code)
	}
	if err != nil {
		return nil, fmt.Errorf("get room %s: %w", code, err)
	}
	var room domain.Room
	if err := json.Unmarshal(val, &room); err != nil {
		return nil, fmt.Errorf("decode room %s: %w", code, err)
	}
	return &room, nil
}

func (r *Redis) Save(ctx context.Context, room *domain.Room) error {
	b, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("encode room %s: %w", room.Code, err)
	}
	if err := r.rdb.Set(ctx, roomKey(room.Code), b, 0).Err(); err != nil {
		return fmt.Errorf("save room %s: %w", room.Code, err)
	}
	return nil
}

func (r *Redis) FindParticipant(ctx context.Context, room *domain.Room, user domain.UserID) (*domain.Participant, error) {
	val, err := r.rdb.HGet(ctx, participantsKey(room.Code), string(user)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: user %s not in room %s", core.ErrForbidden, user, room.Code)
	}
	if err != nil {
		return nil, fmt.Errorf("get participant %s/%s: %w", room.Code, user, err)
	}
	var p domain.Participant
	if err := json.Unmarshal(val, &p); err != nil {
		return nil, fmt.Errorf("decode participant %s/%s: %w", room.Code, user, err)
	}
	return &p, nil
}
