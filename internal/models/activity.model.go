package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Activity is a single cleaning task within a room. Activities share a
// category and are completed in Position order within that category.
type Activity struct {
	BaseUUIDModel
	RoomID    uuid.UUID `gorm:"type:uuid;not null;index"         json:"roomId"`
	Label     string    `gorm:"type:text;not null"               json:"label"`
	Category  string    `gorm:"type:text;not null;index"         json:"category"`
	Position  int       `gorm:"type:integer;not null;default:0"  json:"position"`
	Completed bool      `gorm:"type:bool;not null;default:false" json:"completed"`
}

func (a *Activity) BeforeCreate(tx *gorm.DB) (err error) {
	if a.Label == "" {
		return gorm.ErrInvalidValue
	}
	if a.Category == "" {
		return gorm.ErrInvalidValue
	}
	return a.BaseUUIDModel.BeforeCreate(tx)
}
