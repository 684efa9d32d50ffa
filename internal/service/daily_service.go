package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"GameShelf/internal/model"
	"GameShelf/internal/pkg"
	"GameShelf/internal/repository/mysql"
	"GameShelf/internal/repository/redis"
)

// DailyService 每日投票和每日问答共用一套机制：按日期幂等创建、
// 一人一票、先参与才能看今天的分布。
type DailyService struct {
	repo    *mysql.DailyRepository
	cache   *redis.DailyResultCache
	rewards *RewardService
	// 可注入，测试里固定“今天”
	Now func() time.Time
}

func NewDailyService(rewards *RewardService) *DailyService {
	return &DailyService{
		repo:    &mysql.DailyRepository{DB: mysql.DB},
		cache:   &redis.DailyResultCache{},
		rewards: rewards,
		Now:     time.Now,
	}
}

func (s *DailyService) today() string {
	return s.Now().Format(model.DateLayout)
}

// TodayPoll 取或建今天的投票，需要至少两个候选游戏
func (s *DailyService) TodayPoll(ctx context.Context, gameIDs []uint64) (*model.DailyPoll, []model.DailyPollGame, error) {
	uniq := make(map[uint64]struct{}, len(gameIDs))
	for _, id := range gameIDs {
		if id == 0 {
			return nil, nil, fmt.Errorf("%w: invalid game id", pkg.ErrValidation)
		}
		uniq[id] = struct{}{}
	}
	if len(uniq) < 2 {
		return nil, nil, fmt.Errorf("%w: poll needs at least 2 distinct games", pkg.ErrValidation)
	}

	poll, _, err := s.repo.GetOrCreatePoll(ctx, s.today(), gameIDs)
	if err != nil {
		return nil, nil, err
	}
	games, err := s.repo.PollGames(ctx, poll.ID)
	if err != nil {
		return nil, nil, err
	}
	return poll, games, nil
}

// CastPollVote 投今天的票。返回本次发放的经验（重复投递为 0）。
func (s *DailyService) CastPollVote(ctx context.Context, pollID, userID, choiceID uint64) (int64, error) {
	poll, err := s.repo.PollByID(ctx, pollID)
	if err != nil {
		return 0, err
	}
	// 历史场次已封盘
	if poll.PollDate != s.today() {
		return 0, pkg.ErrInvalidState
	}
	choice, err := s.repo.PollChoice(ctx, pollID, choiceID)
	if err != nil {
		return 0, fmt.Errorf("%w: choice not in this poll", pkg.ErrValidation)
	}

	if err := s.repo.CreatePollVote(ctx, &model.DailyPollVote{
		PollID:     pollID,
		UserID:     userID,
		PollGameID: choice.ID,
	}); err != nil {
		return 0, err
	}

	amount := s.rewards.Policy.PollVote
	granted, err := s.rewards.Grant(ctx, userID, model.ReasonPollVote, pkg.KeyFromID(pollID), amount)
	if err != nil {
		return 0, err
	}
	if !granted {
		amount = 0
	}
	return amount, nil
}

// TodayQuiz 取或建今天的问答：至少两个选项，且恰好一个正确
func (s *DailyService) TodayQuiz(ctx context.Context, question string, options []model.DailyQuizOption) (*model.DailyQuiz, []model.DailyQuizOption, error) {
	if question == "" {
		return nil, nil, fmt.Errorf("%w: question required", pkg.ErrValidation)
	}
	correct := 0
	for i := range options {
		if options[i].Text == "" {
			return nil, nil, fmt.Errorf("%w: option text required", pkg.ErrValidation)
		}
		if options[i].IsCorrect {
			correct++
		}
	}
	if len(options) < 2 || correct != 1 {
		return nil, nil, fmt.Errorf("%w: quiz needs 2+ options with exactly one correct", pkg.ErrValidation)
	}

	quiz, _, err := s.repo.GetOrCreateQuiz(ctx, s.today(), question, options)
	if err != nil {
		return nil, nil, err
	}
	opts, err := s.repo.QuizOptions(ctx, quiz.ID)
	if err != nil {
		return nil, nil, err
	}
	return quiz, opts, nil
}

// AnswerQuiz 作答并快照对错。之后选项被改也不影响这条作答记录。
// 返回 (correct, 获得经验)。
func (s *DailyService) AnswerQuiz(ctx context.Context, quizID, userID, optionID uint64) (bool, int64, error) {
	quiz, err := s.repo.QuizByID(ctx, quizID)
	if err != nil {
		return false, 0, err
	}
	if quiz.QuizDate != s.today() {
		return false, 0, pkg.ErrInvalidState
	}
	opt, err := s.repo.QuizOption(ctx, quizID, optionID)
	if err != nil {
		return false, 0, fmt.Errorf("%w: option not in this quiz", pkg.ErrValidation)
	}

	if err := s.repo.CreateQuizAnswer(ctx, &model.DailyQuizAnswer{
		QuizID:   quizID,
		UserID:   userID,
		OptionID: opt.ID,
		Correct:  opt.IsCorrect, // 此刻的快照
	}); err != nil {
		return false, 0, err
	}

	ref := pkg.KeyFromID(quizID)
	amount := s.rewards.Policy.QuizAnswer
	granted, err := s.rewards.Grant(ctx, userID, model.ReasonQuizAnswer, ref, amount)
	if err != nil {
		return false, 0, err
	}
	if !granted {
		amount = 0
	}
	if opt.IsCorrect {
		bonusGranted, err := s.rewards.Grant(ctx, userID, model.ReasonQuizCorrect, ref, s.rewards.Policy.QuizCorrectBonus)
		if err != nil {
			return false, 0, err
		}
		if bonusGranted {
			amount += s.rewards.Policy.QuizCorrectBonus
		}
	}
	return opt.IsCorrect, amount, nil
}

type ChoiceResult struct {
	ChoiceID   uint64  `json:"choice_id"`
	Count      int64   `json:"count"`
	Percentage float64 `json:"percentage"` // 一位小数
}

type DailyResults struct {
	InstanceID uint64         `json:"instance_id"`
	Date       string         `json:"date"`
	Total      int64          `json:"total"`
	Choices    []ChoiceResult `json:"choices"`
}

// PollResults 今天的场次要先投过票才能看，历史场次谁都能看（走缓存）
func (s *DailyService) PollResults(ctx context.Context, pollID, viewerID uint64) (*DailyResults, error) {
	poll, err := s.repo.PollByID(ctx, pollID)
	if err != nil {
		return nil, err
	}
	isToday := poll.PollDate == s.today()
	if isToday {
		voted, err := s.repo.HasVotedPoll(ctx, pollID, viewerID)
		if err != nil {
			return nil, err
		}
		if !voted {
			return nil, pkg.ErrResultsHidden
		}
	} else if cached, ok := s.cache.Get(ctx, "poll", pollID); ok {
		var out DailyResults
		if json.Unmarshal([]byte(cached), &out) == nil {
			return &out, nil
		}
	}

	counts, err := s.repo.PollCounts(ctx, pollID)
	if err != nil {
		return nil, err
	}
	out := buildResults(pollID, poll.PollDate, counts)
	if !isToday {
		if payload, err := json.Marshal(out); err == nil {
			s.cache.Set(ctx, "poll", pollID, string(payload))
		}
	}
	return out, nil
}

// QuizResults 同 PollResults 的可见性规则
func (s *DailyService) QuizResults(ctx context.Context, quizID, viewerID uint64) (*DailyResults, error) {
	quiz, err := s.repo.QuizByID(ctx, quizID)
	if err != nil {
		return nil, err
	}
	isToday := quiz.QuizDate == s.today()
	if isToday {
		answer, err := s.repo.UserAnswer(ctx, quizID, viewerID)
		if err != nil {
			return nil, err
		}
		if answer == nil {
			return nil, pkg.ErrResultsHidden
		}
	} else if cached, ok := s.cache.Get(ctx, "quiz", quizID); ok {
		var out DailyResults
		if json.Unmarshal([]byte(cached), &out) == nil {
			return &out, nil
		}
	}

	counts, err := s.repo.QuizCounts(ctx, quizID)
	if err != nil {
		return nil, err
	}
	out := buildResults(quizID, quiz.QuizDate, counts)
	if !isToday {
		if payload, err := json.Marshal(out); err == nil {
			s.cache.Set(ctx, "quiz", quizID, string(payload))
		}
	}
	return out, nil
}

// buildResults 百分比 = 100*count/total，四舍五入到一位小数；total=0 时全 0
func buildResults(id uint64, date string, counts []mysql.ChoiceCount) *DailyResults {
	out := &DailyResults{
		InstanceID: id,
		Date:       date,
		Choices:    make([]ChoiceResult, 0, len(counts)),
	}
	for _, c := range counts {
		out.Total += c.Count
	}
	for _, c := range counts {
		var pct float64
		if out.Total > 0 {
			pct = math.Round(float64(c.Count)*1000/float64(out.Total)) / 10
		}
		out.Choices = append(out.Choices, ChoiceResult{
			ChoiceID:   c.ChoiceID,
			Count:      c.Count,
			Percentage: pct,
		})
	}
	return out
}
