package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Cycle is a named ledger holding a running USDT balance.
// The balance is never stored; it is folded from the cycle's transactions.
type Cycle struct {
	ID        string `gorm:"primaryKey;size:36"`
	Name      string `gorm:"size:64;uniqueIndex;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (c *Cycle) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
