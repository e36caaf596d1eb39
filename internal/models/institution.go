package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Institution is a bank or exchange counterparty, deduplicated by name.
type Institution struct {
	ID           string  `gorm:"primaryKey;size:36"`
	Name         string  `gorm:"size:128;uniqueIndex;not null"`
	IconFileName *string `gorm:"size:64"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (i *Institution) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}
