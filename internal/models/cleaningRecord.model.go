package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// CleaningRecord is the immutable completion record written when a room is
// finished. Room fields and activities are copied at completion time so the
// record survives later edits to the room catalog. Never updated or deleted.
type CleaningRecord struct {
	BaseUUIDModel
	RoomID          uuid.UUID      `gorm:"type:uuid;not null;index"      json:"roomId"`
	RoomNumber      string         `gorm:"type:text;not null;index"      json:"roomNumber"`
	RoomType        string         `gorm:"type:text;not null"            json:"roomType"`
	Floor           int            `gorm:"type:integer;not null"         json:"floor"`
	WorkerID        uuid.UUID      `gorm:"type:uuid;not null;index"      json:"workerId"`
	Worker          Worker         `gorm:"foreignKey:WorkerID"           json:"worker"`
	CleaningDate    time.Time      `gorm:"type:date;not null;index"      json:"cleaningDate"`
	StartedAt       time.Time      `gorm:"type:timestamptz;not null"     json:"startedAt"`
	EndedAt         time.Time      `gorm:"type:timestamptz;not null"     json:"endedAt"`
	DurationSeconds int64          `gorm:"type:bigint;not null"          json:"durationSeconds"`
	Activities      datatypes.JSON `gorm:"type:jsonb"                    json:"activities"`
}

// ActivitySnapshot is the shape serialized into CleaningRecord.Activities.
type ActivitySnapshot struct {
	Label     string `json:"label"`
	Category  string `json:"category"`
	Position  int    `json:"position"`
	Completed bool   `json:"completed"`
}
