package mysql

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"GameShelf/internal/model"
	"GameShelf/internal/pkg"

	"gorm.io/gorm"
)

type RoundRepository struct {
	DB *gorm.DB
}

// NominationTally 提名及其得票数，Tally 的排序就是决胜顺序：
// 票数高者胜，平票取 created_at 最早，再平取 id 最小，结果可复现。
type NominationTally struct {
	NominationID uint64    `json:"nomination_id"`
	GameID       uint64    `json:"game_id"`
	UserID       uint64    `json:"user_id"`
	CreatedAt    time.Time `json:"created_at"`
	Votes        int64     `json:"votes"`
}

func (r *RoundRepository) FindByID(ctx context.Context, id uint64) (*model.Round, error) {
	var round model.Round
	err := r.DB.WithContext(ctx).First(&round, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkg.ErrNotFound
	}
	return &round, err
}

func (r *RoundRepository) ActiveExists(ctx context.Context, clubID uint64) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&model.Round{}).
		Where("club_id = ? AND status <> ?", clubID, model.RoundCompleted).
		Count(&n).Error
	return n > 0, err
}

// Create 轮次号 = 历史最大值+1。并发创建会在 (club_id, round_number)
// 唯一键上相撞，输家视同已有活动轮次。不用 SELECT FOR UPDATE。
func (r *RoundRepository) Create(ctx context.Context, round *model.Round) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var maxNo int64
		if err := tx.Model(&model.Round{}).
			Where("club_id = ?", round.ClubID).
			Select("COALESCE(MAX(round_number), 0)").
			Scan(&maxNo).Error; err != nil {
			return err
		}
		round.RoundNumber = int(maxNo) + 1
		round.Status = model.RoundNominating
		if err := tx.Create(round).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return pkg.ErrActiveRoundExists
			}
			return err
		}
		return nil
	})
}

func (r *RoundRepository) CreateNomination(ctx context.Context, n *model.Nomination) error {
	err := r.DB.WithContext(ctx).Create(n).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return pkg.ErrGameAlreadyNominated
	}
	return err
}

func (r *RoundRepository) HasNominated(ctx context.Context, roundID, userID uint64) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&model.Nomination{}).
		Where("round_id = ? AND user_id = ?", roundID, userID).
		Count(&n).Error
	return n > 0, err
}

func (r *RoundRepository) FindNomination(ctx context.Context, id uint64) (*model.Nomination, error) {
	var nom model.Nomination
	err := r.DB.WithContext(ctx).First(&nom, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkg.ErrNotFound
	}
	return &nom, err
}

func (r *RoundRepository) CreateVote(ctx context.Context, v *model.RoundVote) error {
	err := r.DB.WithContext(ctx).Create(v).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return pkg.ErrAlreadyVoted
	}
	return err
}

func (r *RoundRepository) CreateReview(ctx context.Context, rv *model.Review) error {
	err := r.DB.WithContext(ctx).Create(rv).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return pkg.ErrAlreadyReviewed
	}
	return err
}

// Tally 按决胜顺序返回每个提名的得票数
func (r *RoundRepository) Tally(ctx context.Context, roundID uint64) ([]NominationTally, error) {
	var rows []NominationTally
	err := r.DB.WithContext(ctx).
		Table("nominations AS n").
		Select("n.id AS nomination_id, n.game_id, n.user_id, n.created_at, COUNT(v.id) AS votes").
		Joins("LEFT JOIN round_votes v ON v.nomination_id = n.id").
		Where("n.round_id = ?", roundID).
		Group("n.id, n.game_id, n.user_id, n.created_at").
		Order("votes DESC, n.created_at ASC, n.id ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *RoundRepository) UserVote(ctx context.Context, roundID, userID uint64) (*model.RoundVote, error) {
	var v model.RoundVote
	err := r.DB.WithContext(ctx).
		Where("round_id = ? AND user_id = ?", roundID, userID).First(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *RoundRepository) UserReview(ctx context.Context, roundID, userID uint64) (*model.Review, error) {
	var rv model.Review
	err := r.DB.WithContext(ctx).
		Where("round_id = ? AND user_id = ?", roundID, userID).First(&rv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rv, nil
}

// VotersByNomination 只给 admin/owner 视图用
func (r *RoundRepository) VotersByNomination(ctx context.Context, roundID uint64) (map[uint64][]uint64, error) {
	var votes []model.RoundVote
	if err := r.DB.WithContext(ctx).
		Where("round_id = ?", roundID).Order("id asc").Find(&votes).Error; err != nil {
		return nil, err
	}
	out := make(map[uint64][]uint64, len(votes))
	for i := range votes {
		out[votes[i].NominationID] = append(out[votes[i].NominationID], votes[i].UserID)
	}
	return out, nil
}

// ReviewStats 返回 (平均分, 评论数)，没有评论时平均分为 0
func (r *RoundRepository) ReviewStats(ctx context.Context, roundID uint64) (float64, int64, error) {
	var row struct {
		Avg float64
		Cnt int64
	}
	err := r.DB.WithContext(ctx).Model(&model.Review{}).
		Where("round_id = ?", roundID).
		Select("COALESCE(AVG(score), 0) AS avg, COUNT(*) AS cnt").
		Scan(&row).Error
	return row.Avg, row.Cnt, err
}

// advanceTx 状态机的 CAS：status 必须还停在 from 才会更新。
// 两个并发 advance 只有一个能改到行，输家拿到 ErrInvalidState。
func advanceTx(tx *gorm.DB, roundID uint64, from, to int8, extra map[string]any) error {
	updates := map[string]any{"status": to}
	for k, v := range extra {
		updates[k] = v
	}
	res := tx.Model(&model.Round{}).
		Where("id = ? AND status = ?", roundID, from).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkg.ErrInvalidState
	}
	return nil
}

// StartVoting nominating -> voting，至少要有一个提名
func (r *RoundRepository) StartVoting(ctx context.Context, round *model.Round) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&model.Nomination{}).
			Where("round_id = ?", round.ID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return pkg.ErrInvalidState
		}
		if err := advanceTx(tx, round.ID, model.RoundNominating, model.RoundVoting, nil); err != nil {
			return err
		}
		return insertOutbox(tx, "round_advanced", round.ClubID, round.ID, map[string]any{
			"from": "nominating", "to": "voting",
		})
	})
}

// BeginPlaying voting -> playing，事务内计票定出获胜游戏
func (r *RoundRepository) BeginPlaying(ctx context.Context, round *model.Round) (uint64, error) {
	var winner uint64
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var top NominationTally
		res := tx.Table("nominations AS n").
			Select("n.id AS nomination_id, n.game_id, n.user_id, n.created_at, COUNT(v.id) AS votes").
			Joins("LEFT JOIN round_votes v ON v.nomination_id = n.id").
			Where("n.round_id = ?", round.ID).
			Group("n.id, n.game_id, n.user_id, n.created_at").
			Order("votes DESC, n.created_at ASC, n.id ASC").
			Limit(1).
			Scan(&top)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return pkg.ErrInvalidState
		}
		winner = top.GameID
		if err := advanceTx(tx, round.ID, model.RoundVoting, model.RoundPlaying, map[string]any{
			"winning_game_id": top.GameID,
		}); err != nil {
			return err
		}
		return insertOutbox(tx, "round_advanced", round.ClubID, round.ID, map[string]any{
			"from": "voting", "to": "playing", "winning_game_id": top.GameID,
		})
	})
	return winner, err
}

// BeginReviewing playing -> reviewing，纯人工触发，无额外前置条件
func (r *RoundRepository) BeginReviewing(ctx context.Context, round *model.Round) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := advanceTx(tx, round.ID, model.RoundPlaying, model.RoundReviewing, nil); err != nil {
			return err
		}
		return insertOutbox(tx, "round_advanced", round.ClubID, round.ID, map[string]any{
			"from": "playing", "to": "reviewing",
		})
	})
}

// Complete reviewing -> completed。CAS 赢家在同一事务里给参与者发
// round_complete 奖励并写 outbox；输家整体回滚，不会重复发放。
func (r *RoundRepository) Complete(ctx context.Context, round *model.Round, amount int64, reviewersOnly bool) ([]uint64, error) {
	var recipients []uint64
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		if err := advanceTx(tx, round.ID, model.RoundReviewing, model.RoundCompleted, map[string]any{
			"completed_at": now,
		}); err != nil {
			return err
		}

		ids, err := participantIDs(tx, round.ID, reviewersOnly)
		if err != nil {
			return err
		}
		recipients = ids

		ref := pkg.KeyFromID(round.ID)
		for _, uid := range ids {
			if _, err := GrantTx(tx, uid, model.ReasonRoundComplete, ref, amount); err != nil {
				return err
			}
		}

		avg, cnt, err := (&RoundRepository{DB: tx}).ReviewStats(ctx, round.ID)
		if err != nil {
			return err
		}
		return insertOutbox(tx, "round_completed", round.ClubID, round.ID, map[string]any{
			"average_score": avg,
			"review_count":  cnt,
		})
	})
	return recipients, err
}

// participantIDs 完结奖励对象：默认提名者∪投票者∪评论者，也可只奖评论者
func participantIDs(tx *gorm.DB, roundID uint64, reviewersOnly bool) ([]uint64, error) {
	seen := make(map[uint64]struct{})
	var out []uint64
	collect := func(m any) error {
		var ids []uint64
		if err := tx.Model(m).Where("round_id = ?", roundID).
			Order("user_id asc").Pluck("user_id", &ids).Error; err != nil {
			return err
		}
		for _, id := range ids {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				out = append(out, id)
			}
		}
		return nil
	}
	if err := collect(&model.Review{}); err != nil {
		return nil, err
	}
	if reviewersOnly {
		return out, nil
	}
	if err := collect(&model.Nomination{}); err != nil {
		return nil, err
	}
	if err := collect(&model.RoundVote{}); err != nil {
		return nil, err
	}
	return out, nil
}

func insertOutbox(tx *gorm.DB, event string, clubID, roundID uint64, extra map[string]any) error {
	body := map[string]any{
		"event_time": time.Now().UTC().Format(time.RFC3339Nano),
		"club_id":    clubID,
		"round_id":   roundID,
	}
	for k, v := range extra {
		body[k] = v
	}
	payload, _ := json.Marshal(body)
	return tx.Create(&model.NotifyOutbox{
		EventType: event,
		ClubID:    clubID,
		RoundID:   roundID,
		Payload:   string(payload),
		Status:    0,
	}).Error
}
