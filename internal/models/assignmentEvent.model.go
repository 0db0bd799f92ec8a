package models

import (
	"time"

	"github.com/google/uuid"
)

type AssignmentInitiator string

const (
	AssignedByManager AssignmentInitiator = "manager"
	AssignedByWorker  AssignmentInitiator = "worker"
)

// AssignmentEvent records a room landing on a worker's plate, tagged by who
// initiated it. The composite unique index keeps one entry per
// (worker, room number) pair: repeat cleanings of the same room by the same
// worker do not add further entries.
type AssignmentEvent struct {
	BaseUUIDModel
	WorkerID   uuid.UUID           `gorm:"type:uuid;not null;index;uniqueIndex:idx_assignment_events_worker_room" json:"workerId"`
	RoomNumber string              `gorm:"type:text;not null;uniqueIndex:idx_assignment_events_worker_room"       json:"roomNumber"`
	AssignedBy AssignmentInitiator `gorm:"type:text;not null"                                                     json:"assignedBy"`
	Timestamp  time.Time           `gorm:"type:timestamptz;not null"                                              json:"timestamp"`
}
