package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RoomStatus string

const (
	RoomStatusCheckout    RoomStatus = "checkout"
	RoomStatusAssigned    RoomStatus = "assigned"
	RoomStatusInCleaning  RoomStatus = "in_cleaning"
	RoomStatusAvailable   RoomStatus = "available"
	RoomStatusMaintenance RoomStatus = "maintenance"
)

func (s RoomStatus) String() string {
	return string(s)
}

// Valid reports whether s is one of the recognized room statuses.
// Maintenance is included because external systems may park a room there,
// even though the turnover workflow never transitions into or out of it.
func (s RoomStatus) Valid() bool {
	switch s {
	case RoomStatusCheckout, RoomStatusAssigned, RoomStatusInCleaning,
		RoomStatusAvailable, RoomStatusMaintenance:
		return true
	}
	return false
}

type Room struct {
	BaseUUIDModel
	Number           string     `gorm:"type:text;not null;uniqueIndex" json:"number"`
	Type             string     `gorm:"type:text;not null"             json:"type"`
	Floor            int        `gorm:"type:integer;not null"          json:"floor"`
	Status           RoomStatus `gorm:"type:text;not null;index"       json:"status"`
	AssignedWorkerID *uuid.UUID `gorm:"type:uuid;index"                json:"assignedWorkerId,omitempty"`
	AssignedWorker   *Worker    `gorm:"foreignKey:AssignedWorkerID"    json:"assignedWorker,omitempty"`
	SessionStartedAt *time.Time `gorm:"type:timestamptz"               json:"sessionStartedAt,omitempty"`
	Activities       []Activity `gorm:"foreignKey:RoomID"              json:"activities,omitempty"`
}

func (r *Room) BeforeCreate(tx *gorm.DB) (err error) {
	if r.Number == "" {
		return gorm.ErrInvalidValue
	}
	if r.Status == "" {
		r.Status = RoomStatusCheckout
	}
	if !r.Status.Valid() {
		return gorm.ErrInvalidValue
	}
	return r.BaseUUIDModel.BeforeCreate(tx)
}
