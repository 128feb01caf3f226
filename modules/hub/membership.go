package hub

import "sync"

// Membership tracks which sessions are subscribed to which rooms. Room
// entries are created lazily on first join and retained when they empty out;
// an empty room is simply an entry with an empty member set.
type Membership struct {
	mu    sync.RWMutex
	rooms map[string]map[string]struct{}
}

// NewMembership creates an empty Membership.
func NewMembership() *Membership {
	return &Membership{
		rooms: make(map[string]map[string]struct{}),
	}
}

// Join adds id to room, creating the room entry if needed. Rejoining is a
// no-op.
func (m *Membership) Join(room, id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	members, ok := m.rooms[room]
	if !ok {
		members = make(map[string]struct{})
		m.rooms[room] = members
	}
	members[id] = struct{}{}
}

// Leave removes id from room. No error if either is absent.
func (m *Membership) Leave(room, id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if members, ok := m.rooms[room]; ok {
		delete(members, id)
	}
}

// LeaveAll removes id from every room it belongs to. Used during session
// cleanup; scans all rooms rather than keeping a per-session room index, so
// disconnect costs O(rooms).
func (m *Membership) LeaveAll(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, members := range m.rooms {
		delete(members, id)
	}
}

// MembersOf returns a point-in-time copy of the member set for room. The
// caller may iterate it freely while the live set keeps mutating.
func (m *Membership) MembersOf(room string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	members, ok := m.rooms[room]
	if !ok {
		return nil
	}
	snapshot := make([]string, 0, len(members))
	for id := range members {
		snapshot = append(snapshot, id)
	}
	return snapshot
}

// RoomCount returns the number of known rooms, empty ones included.
func (m *Membership) RoomCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms)
}
