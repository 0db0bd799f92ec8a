package models

import (
	"time"

	"github.com/google/uuid"
)

// Message is the escalation record a worker leaves for the manager when
// abandoning an in-progress room. Append-only audit trail; there is no
// resolved flag, the manager reacts by proposing the room to someone else.
type Message struct {
	BaseUUIDModel
	RoomNumber       string    `gorm:"type:text;not null;index"  json:"roomNumber"`
	WorkerID         uuid.UUID `gorm:"type:uuid;not null;index"  json:"workerId"`
	Worker           Worker    `gorm:"foreignKey:WorkerID"       json:"worker"`
	TimeSpentSeconds int64     `gorm:"type:bigint;not null"      json:"timeSpentSeconds"`
	Note             string    `gorm:"type:text"                 json:"note,omitempty"`
	Timestamp        time.Time `gorm:"type:timestamptz;not null" json:"timestamp"`
}
