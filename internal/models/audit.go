package models

import "time"

// AuditLog 记录每一次修改操作，方便回查
type AuditLog struct {
	ID        uint   `gorm:"primaryKey"`
	Method    string `gorm:"size:8"`
	Path      string `gorm:"size:255"`
	Body      string `gorm:"type:text"`
	IP        string `gorm:"size:64"`
	UserAgent string `gorm:"size:255"`
	CreatedAt time.Time
}
