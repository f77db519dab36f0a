package core

import (
	"sync"

	"github.com/auxroom/server/internal/domain"
	"github.com/rs/zerolog/log"
)

// group is one room's broadcast set, guarded by its own lock so
// unrelated rooms never serialize each other.
type group struct {
	mu      sync.RWMutex
	members map[string]Member
}

// Roster tracks live connections per room and fans events out to them.
// Join is idempotent, Leave of a non-member is a no-op, and a broadcast
// reaches the membership snapshot taken at enumeration time.
type Roster struct {
	mu     sync.RWMutex
	groups map[domain.RoomCode]*group
}

func NewRoster() *Roster {
	return &Roster{groups: make(map[domain.RoomCode]*group)}
}

// BroadcastResult reports delivery stats for observability.
type BroadcastResult struct {
	SentTo  int
	Dropped int
}

// Join and Leave hold the outer lock across the group update so a
// joiner can never land in a group that cleanup just unlinked. Only
// broadcasts run on the per-group lock alone.
func (r *Roster) Join(code domain.RoomCode, m Member) {
	r.mu.Lock()
	g, ok := r.groups[code]
	if !ok {
		g = &group{members: make(map[string]Member)}
		r.groups[code] = g
	}
	g.mu.Lock()
	g.members[m.ID()] = m
	count := len(g.members)
	g.mu.Unlock()
	r.mu.Unlock()

	log.Info().Str("module", "core.roster").Str("room", string(code)).Str("member", m.ID()).Int("members", count).Msg("member joined")
}

func (r *Roster) Leave(code domain.RoomCode, m Member) {
	r.mu.Lock()
	g, ok := r.groups[code]
	if !ok {
		r.mu.Unlock()
		return
	}
	g.mu.Lock()
	delete(g.members, m.ID())
	count := len(g.members)
	if count == 0 {
		delete(r.groups, code)
	}
	g.mu.Unlock()
	r.mu.Unlock()

	log.Info().Str("module", "core.roster").Str("room", string(code)).Str("member", m.ID()).Int("members", count).Msg("member left")
}

// Broadcast delivers ev to every member currently joined to the room.
// A member whose buffer is full is dropped from the group and kicked;
// one slow connection never stalls delivery to the rest.
func (r *Roster) Broadcast(code domain.RoomCode, ev Event) BroadcastResult {
	r.mu.RLock()
	g, ok := r.groups[code]
	r.mu.RUnlock()
	if !ok {
		return BroadcastResult{}
	}

	var res BroadcastResult
	var dead []Member

	g.mu.RLock()
	for _, m := range g.members {
		if err := m.Deliver(ev); err != nil {
			dead = append(dead, m)
			continue
		}
		res.SentTo++
	}
	g.mu.RUnlock()

	for _, m := range dead {
		res.Dropped++
		r.Leave(code, m)
		go m.Kick()
	}

	if res.Dropped > 0 {
		log.Warn().Str("module", "core.roster").Str("room", string(code)).Int("dropped", res.Dropped).Msg("dropped slow members")
	}
	return res
}

func (r *Roster) Count(code domain.RoomCode) int {
	r.mu.RLock()
	g, ok := r.groups[code]
	r.mu.RUnlock()
	if !ok {
		return 0
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.members)
}

// Members returns a read-only identity snapshot for the API surface.
func (r *Roster) Members(code domain.RoomCode) []domain.User {
	r.mu.RLock()
	g, ok := r.groups[code]
	r.mu.RUnlock()
	if !ok {
		return nil
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]domain.User, 0, len(g.members))
	for _, m := range g.members {
		out = append(out, m.User())
	}
	return out
}
