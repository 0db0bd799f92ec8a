package services

import (
	"sort"
	"sync"

	"github.com/google/uuid"
)

// RoomLockService serializes all state-changing operations on a room. The
// manager dashboard and worker dashboards share the same rooms; without
// per-room mutual exclusion a reassignment and an abandonment racing on the
// same room could interleave their read-check-write cycles.
//
// Locks are never released from the map. The room catalog is bounded and
// long-lived, so the map grows to the number of rooms and stays there.
type RoomLockService struct {
	locks sync.Map // uuid.UUID -> *sync.Mutex
}

func NewRoomLockService() *RoomLockService {
	return &RoomLockService{}
}

func (s *RoomLockService) lockFor(roomID uuid.UUID) *sync.Mutex {
	actual, _ := s.locks.LoadOrStore(roomID, &sync.Mutex{})
	return actual.(*sync.Mutex)
}

// WithRoom runs fn while holding the room's lock.
func (s *RoomLockService) WithRoom(roomID uuid.UUID, fn func() error) error {
	mu := s.lockFor(roomID)
	mu.Lock()
	defer mu.Unlock()
	return fn()
}

// WithRooms runs fn while holding every listed room's lock. Locks are
// acquired in sorted id order so two batches touching overlapping rooms
// cannot deadlock.
func (s *RoomLockService) WithRooms(roomIDs []uuid.UUID, fn func() error) error {
	seen := make(map[uuid.UUID]struct{}, len(roomIDs))
	sorted := make([]uuid.UUID, 0, len(roomIDs))
	for _, id := range roomIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		sorted = append(sorted, id)
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].String() < sorted[j].String()
	})

	for _, id := range sorted {
		s.lockFor(id).Lock()
	}
	defer func() {
		for i := len(sorted) - 1; i >= 0; i-- {
			s.lockFor(sorted[i]).Unlock()
		}
	}()

	return fn()
}
