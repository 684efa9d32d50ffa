package model

import "time"

type User struct {
	ID        uint64 `gorm:"primaryKey"`
	Username  string `gorm:"uniqueIndex;size:32;not null"`
	Password  string `gorm:"size:255;not null"`
	Email     string `gorm:"uniqueIndex;size:64;not null"`
	XpTotal   int64  `gorm:"not null;default:0"` // 派生累计值，只由 XpRepository 在授予事务里更新
	CreatedAt time.Time
	UpdatedAt time.Time
}
