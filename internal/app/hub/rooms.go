package hub

import (
	"hash/fnv"
	"sync"
	"sync/atomic"
)

// roomShardCount is the number of lock stripes in the room index. Rooms
// hashing to different shards never contend on a lock.
const roomShardCount = 16

type roomShard struct {
	mu sync.RWMutex

	// rooms maps room name to its member set; each member carries the join
	// sequence number that defines "most recently joined".
	rooms map[string]map[string]uint64
}

// RoomIndex tracks which connection handles belong to which named rooms.
// Rooms are created lazily on first join and deleted as soon as their member
// set becomes empty; an empty room never persists.
type RoomIndex struct {
	shards  [roomShardCount]*roomShard
	joinSeq atomic.Uint64
}

// NewRoomIndex creates an empty room membership index.
func NewRoomIndex() *RoomIndex {
	idx := &RoomIndex{}
	for i := range idx.shards {
		idx.shards[i] = &roomShard{rooms: make(map[string]map[string]uint64)}
	}
	return idx
}

func (idx *RoomIndex) shard(room string) *roomShard {
	h := fnv.New32a()
	h.Write([]byte(room))
	return idx.shards[h.Sum32()%roomShardCount]
}

// Join adds the handle to the room, creating the room if absent, and returns
// the resulting member count. Joining a room the handle is already a member
// of is idempotent and keeps the original join sequence.
func (idx *RoomIndex) Join(room, handle string) int {
	s := idx.shard(room)

	s.mu.Lock()
	defer s.mu.Unlock()

	members, ok := s.rooms[room]
	if !ok {
		members = make(map[string]uint64)
		s.rooms[room] = members
	}

	if _, already := members[handle]; !already {
		members[handle] = idx.joinSeq.Add(1)
	}

	return len(members)
}

// Leave removes the handle from the room and reports whether it was a member.
// The room entry is deleted when its member set becomes empty.
func (idx *RoomIndex) Leave(room, handle string) bool {
	s := idx.shard(room)

	s.mu.Lock()
	defer s.mu.Unlock()

	members, ok := s.rooms[room]
	if !ok {
		return false
	}

	if _, member := members[handle]; !member {
		return false
	}

	delete(members, handle)
	if len(members) == 0 {
		delete(s.rooms, room)
	}

	return true
}

// LeaveAll removes the handle from every room it belongs to, applying the
// empty-room deletion rule per room, and returns the names of the rooms left.
// Called exactly once per disconnect.
func (idx *RoomIndex) LeaveAll(handle string) []string {
	var left []string

	for _, s := range idx.shards {
		s.mu.Lock()
		for room, members := range s.rooms {
			if _, member := members[handle]; member {
				delete(members, handle)
				if len(members) == 0 {
					delete(s.rooms, room)
				}
				left = append(left, room)
			}
		}
		s.mu.Unlock()
	}

	return left
}

// CurrentRoom returns the room the handle joined most recently, which defines
// the target of "send to my room".
func (idx *RoomIndex) CurrentRoom(handle string) (string, bool) {
	var bestRoom string
	var bestSeq uint64
	found := false

	for _, s := range idx.shards {
		s.mu.RLock()
		for room, members := range s.rooms {
			if seq, member := members[handle]; member && (!found || seq > bestSeq) {
				bestRoom, bestSeq, found = room, seq, true
			}
		}
		s.mu.RUnlock()
	}

	return bestRoom, found
}

// Members returns a snapshot of the room's member handles. A room that does
// not exist yields an empty slice, not an error.
func (idx *RoomIndex) Members(room string) []string {
	s := idx.shard(room)

	s.mu.RLock()
	defer s.mu.RUnlock()

	members := s.rooms[room]
	handles := make([]string, 0, len(members))
	for handle := range members {
		handles = append(handles, handle)
	}
	return handles
}

// Rooms returns the names of all rooms that currently have members.
func (idx *RoomIndex) Rooms() []string {
	var names []string

	for _, s := range idx.shards {
		s.mu.RLock()
		for room := range s.rooms {
			names = append(names, room)
		}
		s.mu.RUnlock()
	}

	return names
}
