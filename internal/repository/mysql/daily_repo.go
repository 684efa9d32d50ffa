package mysql

import (
	"context"
	"errors"

	"GameShelf/internal/model"
	"GameShelf/internal/pkg"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DailyRepository struct {
	DB *gorm.DB
}

// ChoiceCount 单个选项的计票结果
type ChoiceCount struct {
	ChoiceID uint64 `json:"choice_id"`
	Count    int64  `json:"count"`
}

// GetOrCreatePoll 按日期幂等创建：唯一键撞上就当作已存在，重新取一次。
// created=true 时今天的投票是本次调用建出来的。
func (r *DailyRepository) GetOrCreatePoll(ctx context.Context, date string, gameIDs []uint64) (*model.DailyPoll, bool, error) {
	var poll model.DailyPoll
	var created bool
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		poll = model.DailyPoll{PollDate: date}
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "poll_date"}},
			DoNothing: true,
		}).Create(&poll)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// 并发创建者抢先了，取现成的
			return tx.Where("poll_date = ?", date).First(&poll).Error
		}
		created = true
		for _, gid := range gameIDs {
			if err := tx.Create(&model.DailyPollGame{PollID: poll.ID, GameID: gid}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return &poll, created, nil
}

func (r *DailyRepository) PollByID(ctx context.Context, id uint64) (*model.DailyPoll, error) {
	var poll model.DailyPoll
	err := r.DB.WithContext(ctx).First(&poll, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkg.ErrNotFound
	}
	return &poll, err
}

func (r *DailyRepository) PollGames(ctx context.Context, pollID uint64) ([]model.DailyPollGame, error) {
	var list []model.DailyPollGame
	err := r.DB.WithContext(ctx).
		Where("poll_id = ?", pollID).Order("id asc").Find(&list).Error
	return list, err
}

// PollChoice 校验选项属于这场投票
func (r *DailyRepository) PollChoice(ctx context.Context, pollID, choiceID uint64) (*model.DailyPollGame, error) {
	var g model.DailyPollGame
	err := r.DB.WithContext(ctx).
		Where("id = ? AND poll_id = ?", choiceID, pollID).First(&g).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkg.ErrNotFound
	}
	return &g, err
}

func (r *DailyRepository) CreatePollVote(ctx context.Context, v *model.DailyPollVote) error {
	err := r.DB.WithContext(ctx).Create(v).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return pkg.ErrAlreadyVoted
	}
	return err
}

func (r *DailyRepository) HasVotedPoll(ctx context.Context, pollID, userID uint64) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&model.DailyPollVote{}).
		Where("poll_id = ? AND user_id = ?", pollID, userID).Count(&n).Error
	return n > 0, err
}

// PollCounts 每个候选游戏的得票数，包含零票选项
func (r *DailyRepository) PollCounts(ctx context.Context, pollID uint64) ([]ChoiceCount, error) {
	var rows []ChoiceCount
	err := r.DB.WithContext(ctx).
		Table("daily_poll_games AS g").
		Select("g.id AS choice_id, COUNT(v.id) AS count").
		Joins("LEFT JOIN daily_poll_votes v ON v.poll_game_id = g.id").
		Where("g.poll_id = ?", pollID).
		Group("g.id").
		Order("g.id asc").
		Scan(&rows).Error
	return rows, err
}

// GetOrCreateQuiz 和 GetOrCreatePoll 同一套并发语义
func (r *DailyRepository) GetOrCreateQuiz(ctx context.Context, date, question string, options []model.DailyQuizOption) (*model.DailyQuiz, bool, error) {
	var quiz model.DailyQuiz
	var created bool
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		quiz = model.DailyQuiz{QuizDate: date, Question: question}
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "quiz_date"}},
			DoNothing: true,
		}).Create(&quiz)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return tx.Where("quiz_date = ?", date).First(&quiz).Error
		}
		created = true
		for i := range options {
			options[i].QuizID = quiz.ID
			if err := tx.Create(&options[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return &quiz, created, nil
}

func (r *DailyRepository) QuizByID(ctx context.Context, id uint64) (*model.DailyQuiz, error) {
	var quiz model.DailyQuiz
	err := r.DB.WithContext(ctx).First(&quiz, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkg.ErrNotFound
	}
	return &quiz, err
}

func (r *DailyRepository) QuizOptions(ctx context.Context, quizID uint64) ([]model.DailyQuizOption, error) {
	var list []model.DailyQuizOption
	err := r.DB.WithContext(ctx).
		Where("quiz_id = ?", quizID).Order("id asc").Find(&list).Error
	return list, err
}

func (r *DailyRepository) QuizOption(ctx context.Context, quizID, optionID uint64) (*model.DailyQuizOption, error) {
	var opt model.DailyQuizOption
	err := r.DB.WithContext(ctx).
		Where("id = ? AND quiz_id = ?", optionID, quizID).First(&opt).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkg.ErrNotFound
	}
	return &opt, err
}

func (r *DailyRepository) CreateQuizAnswer(ctx context.Context, a *model.DailyQuizAnswer) error {
	err := r.DB.WithContext(ctx).Create(a).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return pkg.ErrAlreadyAnswered
	}
	return err
}

func (r *DailyRepository) UserAnswer(ctx context.Context, quizID, userID uint64) (*model.DailyQuizAnswer, error) {
	var a model.DailyQuizAnswer
	err := r.DB.WithContext(ctx).
		Where("quiz_id = ? AND user_id = ?", quizID, userID).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *DailyRepository) QuizCounts(ctx context.Context, quizID uint64) ([]ChoiceCount, error) {
	var rows []ChoiceCount
	err := r.DB.WithContext(ctx).
		Table("daily_quiz_options AS o").
		Select("o.id AS choice_id, COUNT(a.id) AS count").
		Joins("LEFT JOIN daily_quiz_answers a ON a.option_id = o.id").
		Where("o.quiz_id = ?", quizID).
		Group("o.id").
		Order("o.id asc").
		Scan(&rows).Error
	return rows, err
}
