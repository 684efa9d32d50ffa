package service

import (
	"context"

	"GameShelf/internal/model"
	"GameShelf/internal/pkg"
	"GameShelf/internal/repository/mysql"
)

// RewardPolicy 奖励额度表。完结奖励发给谁、发多少留成配置，不写死在逻辑里。
type RewardPolicy struct {
	DailyLogin       int64
	PollVote         int64
	QuizAnswer       int64
	QuizCorrectBonus int64
	RoundNomination  int64
	RoundComplete    int64
	// true 时完结奖励只发给交了评价的成员，默认发给全部参与者
	ReviewersOnlyCompletion bool
}

func DefaultRewardPolicy() RewardPolicy {
	return RewardPolicy{
		DailyLogin:       10,
		PollVote:         5,
		QuizAnswer:       5,
		QuizCorrectBonus: 10,
		RoundNomination:  15,
		RoundComplete:    50,
	}
}

// RewardService 全系统唯一的经验发放口子。
// 任何触发奖励的事件只需要选好稳定的 (reason, referenceID)。
type RewardService struct {
	Policy   RewardPolicy
	xpRepo   *mysql.XpRepository
	userRepo *mysql.UserRepository
}

func NewRewardService(policy RewardPolicy) *RewardService {
	return &RewardService{
		Policy:   policy,
		xpRepo:   &mysql.XpRepository{DB: mysql.DB},
		userRepo: &mysql.UserRepository{DB: mysql.DB},
	}
}

// Grant 至多一次发放。重复的 (user, reason, ref) 静默吞掉并返回 false，
// 调用方可以随意重试，永远不会多加经验。
func (s *RewardService) Grant(ctx context.Context, userID uint64, reason, referenceID string, amount int64) (bool, error) {
	return s.xpRepo.Grant(ctx, userID, reason, referenceID, amount)
}

type Profile struct {
	UserID  uint64          `json:"user_id"`
	XpTotal int64           `json:"xp_total"`
	Level   pkg.LevelInfo   `json:"level"`
	Recent  []model.XpGrant `json:"recent_grants"`
}

func (s *RewardService) Profile(ctx context.Context, userID uint64) (*Profile, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}
	recent, err := s.xpRepo.ListGrants(ctx, userID, 20)
	if err != nil {
		return nil, err
	}
	return &Profile{
		UserID:  user.ID,
		XpTotal: user.XpTotal,
		Level:   pkg.LevelFor(user.XpTotal),
		Recent:  recent,
	}, nil
}
