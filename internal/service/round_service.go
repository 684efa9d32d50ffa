package service

import (
	"context"
	"fmt"
	"time"

	"GameShelf/internal/model"
	"GameShelf/internal/pkg"
	"GameShelf/internal/repository/mysql"
)

// RoundService 俱乐部轮次状态机：提名 → 投票 → 游玩 → 评价 → 完结。
// 状态只前进不后退，所有流转都是带条件的单条 UPDATE。
type RoundService struct {
	rounds  *mysql.RoundRepository
	members *MembershipService
	rewards *RewardService
}

func NewRoundService(members *MembershipService, rewards *RewardService) *RoundService {
	return &RoundService{
		rounds:  &mysql.RoundRepository{DB: mysql.DB},
		members: members,
		rewards: rewards,
	}
}

type RoundDeadlines struct {
	Nomination *time.Time
	Voting     *time.Time
	Playing    *time.Time
	Review     *time.Time
}

// Create 开新轮次。要求 admin 以上，且该俱乐部没有未完结的轮次。
func (s *RoundService) Create(ctx context.Context, clubID, actorID uint64, d RoundDeadlines) (*model.Round, error) {
	role, ok, err := s.members.RoleOf(clubID, actorID)
	if err != nil {
		return nil, err
	}
	if !ok || !CanAdvanceRound(role) {
		return nil, pkg.ErrForbidden
	}

	active, err := s.rounds.ActiveExists(ctx, clubID)
	if err != nil {
		return nil, err
	}
	if active {
		return nil, pkg.ErrActiveRoundExists
	}

	round := &model.Round{
		ClubID:             clubID,
		NominationDeadline: d.Nomination,
		VotingDeadline:     d.Voting,
		PlayingDeadline:    d.Playing,
		ReviewDeadline:     d.Review,
	}
	if err := s.rounds.Create(ctx, round); err != nil {
		return nil, err
	}
	return round, nil
}

// Nominate 提名一个游戏。每个成员每轮只能提名一个游戏（引擎层兜底，
// 数据模型只约束同一游戏不重复），首次提名发 round_nomination 经验。
func (s *RoundService) Nominate(ctx context.Context, roundID, actorID, gameID uint64) (*model.Nomination, int64, error) {
	if gameID == 0 {
		return nil, 0, fmt.Errorf("%w: game id required", pkg.ErrValidation)
	}
	round, err := s.rounds.FindByID(ctx, roundID)
	if err != nil {
		return nil, 0, err
	}
	if round.Status != model.RoundNominating {
		return nil, 0, pkg.ErrInvalidState
	}
	if _, ok, err := s.members.RoleOf(round.ClubID, actorID); err != nil {
		return nil, 0, err
	} else if !ok {
		return nil, 0, pkg.ErrForbidden
	}

	nominated, err := s.rounds.HasNominated(ctx, roundID, actorID)
	if err != nil {
		return nil, 0, err
	}
	if nominated {
		return nil, 0, pkg.ErrAlreadyNominated
	}

	nom := &model.Nomination{RoundID: roundID, GameID: gameID, UserID: actorID}
	if err := s.rounds.CreateNomination(ctx, nom); err != nil {
		return nil, 0, err
	}

	// 幂等键是轮次，同一轮重试不会重复发
	amount := s.rewards.Policy.RoundNomination
	granted, err := s.rewards.Grant(ctx, actorID, model.ReasonRoundNomination, pkg.KeyFromID(roundID), amount)
	if err != nil {
		return nil, 0, err
	}
	if !granted {
		amount = 0
	}
	return nom, amount, nil
}

// Vote 一人一票，提名必须属于同一轮
func (s *RoundService) Vote(ctx context.Context, roundID, actorID, nominationID uint64) error {
	round, err := s.rounds.FindByID(ctx, roundID)
	if err != nil {
		return err
	}
	if round.Status != model.RoundVoting {
		return pkg.ErrInvalidState
	}
	if _, ok, err := s.members.RoleOf(round.ClubID, actorID); err != nil {
		return err
	} else if !ok {
		return pkg.ErrForbidden
	}

	nom, err := s.rounds.FindNomination(ctx, nominationID)
	if err != nil {
		return err
	}
	if nom.RoundID != roundID {
		return fmt.Errorf("%w: nomination belongs to another round", pkg.ErrValidation)
	}

	return s.rounds.CreateVote(ctx, &model.RoundVote{
		RoundID:      roundID,
		UserID:       actorID,
		NominationID: nominationID,
	})
}

// Review 评分 1-10，每人一条
func (s *RoundService) Review(ctx context.Context, roundID, actorID uint64, score int, comment string) error {
	if score < model.ReviewScoreMin || score > model.ReviewScoreMax {
		return fmt.Errorf("%w: score must be within %d-%d", pkg.ErrValidation, model.ReviewScoreMin, model.ReviewScoreMax)
	}
	round, err := s.rounds.FindByID(ctx, roundID)
	if err != nil {
		return err
	}
	if round.Status != model.RoundReviewing {
		return pkg.ErrInvalidState
	}
	if _, ok, err := s.members.RoleOf(round.ClubID, actorID); err != nil {
		return err
	} else if !ok {
		return pkg.ErrForbidden
	}

	return s.rounds.CreateReview(ctx, &model.Review{
		RoundID: roundID,
		UserID:  actorID,
		Score:   score,
		Comment: comment,
	})
}

// AdvanceResult Advance 成功后的落点信息
type AdvanceResult struct {
	Status        int8     `json:"status"`
	WinningGameID *uint64  `json:"winning_game_id,omitempty"`
	RewardedUsers []uint64 `json:"rewarded_users,omitempty"`
}

// Advance 把轮次推进到下一个状态。并发调用下只有一个能赢得 CAS，
// 输家拿到 InvalidState，计票和奖励都不会做第二次。
func (s *RoundService) Advance(ctx context.Context, roundID, actorID uint64) (*AdvanceResult, error) {
	round, err := s.rounds.FindByID(ctx, roundID)
	if err != nil {
		return nil, err
	}
	role, ok, err := s.members.RoleOf(round.ClubID, actorID)
	if err != nil {
		return nil, err
	}
	if !ok || !CanAdvanceRound(role) {
		return nil, pkg.ErrForbidden
	}

	switch round.Status {
	case model.RoundNominating:
		if err := s.rounds.StartVoting(ctx, round); err != nil {
			return nil, err
		}
		return &AdvanceResult{Status: model.RoundVoting}, nil

	case model.RoundVoting:
		winner, err := s.rounds.BeginPlaying(ctx, round)
		if err != nil {
			return nil, err
		}
		return &AdvanceResult{Status: model.RoundPlaying, WinningGameID: &winner}, nil

	case model.RoundPlaying:
		if err := s.rounds.BeginReviewing(ctx, round); err != nil {
			return nil, err
		}
		return &AdvanceResult{Status: model.RoundReviewing}, nil

	case model.RoundReviewing:
		rewarded, err := s.rounds.Complete(ctx, round,
			s.rewards.Policy.RoundComplete, s.rewards.Policy.ReviewersOnlyCompletion)
		if err != nil {
			return nil, err
		}
		return &AdvanceResult{Status: model.RoundCompleted, RewardedUsers: rewarded}, nil

	default: // completed 是终态
		return nil, pkg.ErrInvalidState
	}
}

type NominationView struct {
	NominationID uint64   `json:"nomination_id"`
	GameID       uint64   `json:"game_id"`
	NominatedBy  uint64   `json:"nominated_by"`
	Votes        int64    `json:"votes"`
	Voters       []uint64 `json:"voters,omitempty"` // 只有 admin/owner 能看到
}

type RoundView struct {
	Round        *model.Round     `json:"round"`
	Nominations  []NominationView `json:"nominations"`
	HasNominated bool             `json:"has_nominated"`
	HasVoted     bool             `json:"has_voted"`
	HasReviewed  bool             `json:"has_reviewed"`
	MyVote       *uint64          `json:"my_vote,omitempty"` // 自己投的提名 id
	AverageScore *float64         `json:"average_score,omitempty"`
	ReviewCount  int64            `json:"review_count"`
}

// View 组装轮次视图。普通成员只能看到票数和自己的参与情况，
// 不暴露谁投了谁；平均分要进入 reviewing 且至少有一条评价才给。
func (s *RoundService) View(ctx context.Context, roundID, viewerID uint64) (*RoundView, error) {
	round, err := s.rounds.FindByID(ctx, roundID)
	if err != nil {
		return nil, err
	}
	role, ok, err := s.members.RoleOf(round.ClubID, viewerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, pkg.ErrForbidden
	}

	tally, err := s.rounds.Tally(ctx, roundID)
	if err != nil {
		return nil, err
	}

	var voters map[uint64][]uint64
	if role >= model.RoleAdmin {
		if voters, err = s.rounds.VotersByNomination(ctx, roundID); err != nil {
			return nil, err
		}
	}

	view := &RoundView{Round: round, Nominations: make([]NominationView, 0, len(tally))}
	for _, t := range tally {
		nv := NominationView{
			NominationID: t.NominationID,
			GameID:       t.GameID,
			NominatedBy:  t.UserID,
			Votes:        t.Votes,
		}
		if voters != nil {
			nv.Voters = voters[t.NominationID]
		}
		if t.UserID == viewerID {
			view.HasNominated = true
		}
		view.Nominations = append(view.Nominations, nv)
	}

	if v, err := s.rounds.UserVote(ctx, roundID, viewerID); err != nil {
		return nil, err
	} else if v != nil {
		view.HasVoted = true
		view.MyVote = &v.NominationID
	}

	if rv, err := s.rounds.UserReview(ctx, roundID, viewerID); err != nil {
		return nil, err
	} else if rv != nil {
		view.HasReviewed = true
	}

	if round.Status >= model.RoundReviewing {
		avg, cnt, err := s.rounds.ReviewStats(ctx, roundID)
		if err != nil {
			return nil, err
		}
		view.ReviewCount = cnt
		if cnt > 0 {
			view.AverageScore = &avg
		}
	}
	return view, nil
}
