package model

import "time"

// 奖励事件类别，(user_id, reason, reference_id) 三元组是幂等键
const (
	ReasonDailyLogin      = "daily_login"
	ReasonPollVote        = "poll_vote"
	ReasonQuizAnswer      = "quiz_answer"
	ReasonQuizCorrect     = "quiz_correct"
	ReasonRoundNomination = "round_nomination"
	ReasonRoundComplete   = "round_complete"
)

// XpGrant 只追加的奖励流水，不更新不删除
type XpGrant struct {
	ID          uint64 `gorm:"primaryKey"`
	UserID      uint64 `gorm:"not null;index;uniqueIndex:uk_user_reason_ref"`
	Reason      string `gorm:"size:32;not null;uniqueIndex:uk_user_reason_ref"`
	ReferenceID string `gorm:"size:64;not null;uniqueIndex:uk_user_reason_ref"`
	Amount      int64  `gorm:"not null"`
	CreatedAt   time.Time
}

func (XpGrant) TableName() string { return "xp_grants" }

// NotifyOutbox 轮次事件监控表，由 relayer 异步投递
type NotifyOutbox struct {
	ID        uint64 `gorm:"primaryKey"`
	EventType string `gorm:"size:32;not null"` // round_advanced / round_completed
	ClubID    uint64 `gorm:"not null"`
	RoundID   uint64 `gorm:"not null"`
	Payload   string `gorm:"type:json;not null"`
	Status    int8   `gorm:"not null;default:0;comment:'0=pending,1=sent,2=failed'"`
	Retry     int    `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (NotifyOutbox) TableName() string { return "notify_outbox" }
