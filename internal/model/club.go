package model

import "time"

type Club struct {
	ID          uint64 `gorm:"primaryKey"`
	Name        string `gorm:"uniqueIndex;size:64;not null"`
	Description string `gorm:"type:text"`
	OwnerID     uint64 `gorm:"not null;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

const (
	RoleMember = 0
	RoleAdmin  = 1
	RoleOwner  = 2
)

// ClubMember 每个俱乐部有且只有一行 role=2（owner），由转让事务保证
type ClubMember struct {
	ID        uint64 `gorm:"primaryKey"`
	ClubID    uint64 `gorm:"not null;index;uniqueIndex:uk_club_user"`
	UserID    uint64 `gorm:"not null;index;uniqueIndex:uk_club_user"`
	Role      int    `gorm:"not null;default:0"` // 0=member, 1=admin, 2=owner
	CreatedAt time.Time
	UpdatedAt time.Time
}
