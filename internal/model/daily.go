package model

import "time"

// DateLayout 每日实例的日期键格式，也是可见性判断里“今天”的口径
const DateLayout = "2006-01-02"

// DailyPoll 每个日历日最多一场，日期唯一索引兜底并发创建
type DailyPoll struct {
	ID        uint64 `gorm:"primaryKey"`
	PollDate  string `gorm:"uniqueIndex;size:10;not null"`
	CreatedAt time.Time
}

type DailyPollGame struct {
	ID        uint64 `gorm:"primaryKey"`
	PollID    uint64 `gorm:"not null;index;uniqueIndex:uk_poll_game"`
	GameID    uint64 `gorm:"not null;uniqueIndex:uk_poll_game"`
	CreatedAt time.Time
}

type DailyPollVote struct {
	ID         uint64 `gorm:"primaryKey"`
	PollID     uint64 `gorm:"not null;index;uniqueIndex:uk_poll_voter"`
	UserID     uint64 `gorm:"not null;uniqueIndex:uk_poll_voter"`
	PollGameID uint64 `gorm:"not null;index"`
	CreatedAt  time.Time
}

type DailyQuiz struct {
	ID        uint64 `gorm:"primaryKey"`
	QuizDate  string `gorm:"uniqueIndex;size:10;not null"`
	Question  string `gorm:"size:255;not null"`
	CreatedAt time.Time
}

type DailyQuizOption struct {
	ID        uint64 `gorm:"primaryKey"`
	QuizID    uint64 `gorm:"not null;index"`
	Text      string `gorm:"size:255;not null"`
	IsCorrect bool   `gorm:"not null;default:false"`
	CreatedAt time.Time
}

// DailyQuizAnswer Correct 在作答时从选项快照，之后改选项不影响历史作答
type DailyQuizAnswer struct {
	ID        uint64 `gorm:"primaryKey"`
	QuizID    uint64 `gorm:"not null;index;uniqueIndex:uk_quiz_answerer"`
	UserID    uint64 `gorm:"not null;uniqueIndex:uk_quiz_answerer"`
	OptionID  uint64 `gorm:"not null"`
	Correct   bool   `gorm:"not null"`
	CreatedAt time.Time
}
