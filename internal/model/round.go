package model

import "time"

const (
	RoundNominating int8 = 0
	RoundVoting     int8 = 1
	RoundPlaying    int8 = 2
	RoundReviewing  int8 = 3
	RoundCompleted  int8 = 4
)

const (
	ReviewScoreMin = 1
	ReviewScoreMax = 10
)

// Round 状态只通过带条件的 UPDATE 前进，completed 之后不再变化。
// 四个截止时间是提示性字段，不触发任何自动流转。
type Round struct {
	ID                 uint64 `gorm:"primaryKey"`
	ClubID             uint64 `gorm:"not null;index;uniqueIndex:uk_club_round_no"`
	RoundNumber        int    `gorm:"not null;uniqueIndex:uk_club_round_no"` // 每个俱乐部从 1 递增
	Status             int8   `gorm:"not null;default:0;index"`              // 0=nominating 1=voting 2=playing 3=reviewing 4=completed
	WinningGameID      *uint64
	NominationDeadline *time.Time
	VotingDeadline     *time.Time
	PlayingDeadline    *time.Time
	ReviewDeadline     *time.Time
	CompletedAt        *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

type Nomination struct {
	ID        uint64 `gorm:"primaryKey"`
	RoundID   uint64 `gorm:"not null;index;uniqueIndex:uk_round_game"`
	GameID    uint64 `gorm:"not null;uniqueIndex:uk_round_game"` // 同一轮同一游戏只能被提名一次
	UserID    uint64 `gorm:"not null;index"`
	CreatedAt time.Time
}

type RoundVote struct {
	ID           uint64 `gorm:"primaryKey"`
	RoundID      uint64 `gorm:"not null;index;uniqueIndex:uk_round_voter"`
	UserID       uint64 `gorm:"not null;uniqueIndex:uk_round_voter"` // 一人一票
	NominationID uint64 `gorm:"not null;index"`
	CreatedAt    time.Time
}

type Review struct {
	ID        uint64 `gorm:"primaryKey"`
	RoundID   uint64 `gorm:"not null;index;uniqueIndex:uk_round_reviewer"`
	UserID    uint64 `gorm:"not null;uniqueIndex:uk_round_reviewer"`
	Score     int    `gorm:"not null"` // 1-10
	Comment   string `gorm:"type:text"`
	CreatedAt time.Time
}

func (Review) TableName() string { return "round_reviews" }
