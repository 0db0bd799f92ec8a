package models

import "gorm.io/gorm"

type Worker struct {
	BaseUUIDModel
	FirstName string `gorm:"type:text;not null"             json:"firstName"`
	LastName  string `gorm:"type:text;not null"             json:"lastName"`
	Email     string `gorm:"type:text;not null;uniqueIndex" json:"email"`
	Phone     string `gorm:"type:text"                      json:"phone,omitempty"`
	Active    bool   `gorm:"type:bool;not null;default:true" json:"active"`
}

func (w *Worker) BeforeCreate(tx *gorm.DB) (err error) {
	if w.FirstName == "" || w.LastName == "" {
		return gorm.ErrInvalidValue
	}
	if w.Email == "" {
		return gorm.ErrInvalidValue
	}
	return w.BaseUUIDModel.BeforeCreate(tx)
}

func (w *Worker) FullName() string {
	return w.FirstName + " " + w.LastName
}
