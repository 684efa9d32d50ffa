package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"GameShelf/internal/model"
	"GameShelf/internal/pkg"
	"GameShelf/internal/repository/mysql"
)

func newRoundFixture(t *testing.T, memberCount int) (*RoundService, *model.Club, *model.User, []*model.User) {
	t.Helper()
	setupDB(t)
	members := NewMembershipService()
	rewards := NewRewardService(DefaultRewardPolicy())
	svc := NewRoundService(members, rewards)
	club, owner, users := newClub(t, members, memberCount)
	return svc, club, owner, users
}

// setNominationTime 把提名时间拨到指定值，方便验证决胜顺序
func setNominationTime(t *testing.T, nominationID uint64, at time.Time) {
	t.Helper()
	if err := mysql.DB.Model(&model.Nomination{}).
		Where("id = ?", nominationID).
		Update("created_at", at).Error; err != nil {
		t.Fatal(err)
	}
}

func TestCreateRoundRequiresCapability(t *testing.T) {
	svc, club, _, users := newRoundFixture(t, 1)
	ctx := context.Background()

	_, err := svc.Create(ctx, club.ID, users[0].ID, RoundDeadlines{})
	if !errors.Is(err, pkg.ErrForbidden) {
		t.Fatalf("member creating round: got %v, want forbidden", err)
	}
	_, err = svc.Create(ctx, club.ID, 9999, RoundDeadlines{})
	if !errors.Is(err, pkg.ErrForbidden) {
		t.Fatalf("non-member creating round: got %v, want forbidden", err)
	}
}

func TestCreateRoundConflictsWithActiveRound(t *testing.T) {
	svc, club, owner, _ := newRoundFixture(t, 0)
	ctx := context.Background()

	round, err := svc.Create(ctx, club.ID, owner.ID, RoundDeadlines{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if round.RoundNumber != 1 || round.Status != model.RoundNominating {
		t.Fatalf("round = #%d status %d, want #1 nominating", round.RoundNumber, round.Status)
	}

	if _, err := svc.Create(ctx, club.ID, owner.ID, RoundDeadlines{}); !errors.Is(err, pkg.ErrActiveRoundExists) {
		t.Fatalf("second create: got %v, want active round conflict", err)
	}
}

func TestRoundNumbersAreSequential(t *testing.T) {
	svc, club, owner, _ := newRoundFixture(t, 0)
	ctx := context.Background()

	r1, err := svc.Create(ctx, club.ID, owner.ID, RoundDeadlines{})
	if err != nil {
		t.Fatal(err)
	}
	// 直接推到完结再开下一轮
	completeRound(t, svc, r1.ID, owner.ID)

	r2, err := svc.Create(ctx, club.ID, owner.ID, RoundDeadlines{})
	if err != nil {
		t.Fatalf("create after completion: %v", err)
	}
	if r2.RoundNumber != 2 {
		t.Fatalf("round number = %d, want 2", r2.RoundNumber)
	}
}

// completeRound 提名一局、投一票、走完全部流转
func completeRound(t *testing.T, svc *RoundService, roundID, actorID uint64) {
	t.Helper()
	ctx := context.Background()
	if _, _, err := svc.Nominate(ctx, roundID, actorID, 101); err != nil {
		t.Fatalf("nominate: %v", err)
	}
	for _, want := range []int8{model.RoundVoting, model.RoundPlaying, model.RoundReviewing, model.RoundCompleted} {
		res, err := svc.Advance(ctx, roundID, actorID)
		if err != nil {
			t.Fatalf("advance to %d: %v", want, err)
		}
		if res.Status != want {
			t.Fatalf("status = %d, want %d", res.Status, want)
		}
	}
}

func TestNominateRules(t *testing.T) {
	svc, club, owner, users := newRoundFixture(t, 2)
	ctx := context.Background()
	round, err := svc.Create(ctx, club.ID, owner.ID, RoundDeadlines{})
	if err != nil {
		t.Fatal(err)
	}

	nom, xp, err := svc.Nominate(ctx, round.ID, users[0].ID, 42)
	if err != nil {
		t.Fatalf("nominate: %v", err)
	}
	if nom.GameID != 42 || xp != DefaultRewardPolicy().RoundNomination {
		t.Fatalf("nomination = %+v xp = %d", nom, xp)
	}

	// 同一游戏不能重复提名
	if _, _, err := svc.Nominate(ctx, round.ID, users[1].ID, 42); !errors.Is(err, pkg.ErrGameAlreadyNominated) {
		t.Fatalf("dup game nominate: got %v, want game already nominated", err)
	}
	// 每人每轮一个提名，引擎层兜底
	if _, _, err := svc.Nominate(ctx, round.ID, users[0].ID, 43); !errors.Is(err, pkg.ErrAlreadyNominated) {
		t.Fatalf("second nominate by same member: got %v, want already nominated", err)
	}
	// 非成员禁止
	outsider := createUser(t, "outsider")
	if _, _, err := svc.Nominate(ctx, round.ID, outsider.ID, 44); !errors.Is(err, pkg.ErrForbidden) {
		t.Fatalf("outsider nominate: got %v, want forbidden", err)
	}
	// 状态不对
	if _, err := svc.Advance(ctx, round.ID, owner.ID); err != nil {
		t.Fatal(err)
	}
	if _, _, err := svc.Nominate(ctx, round.ID, users[1].ID, 45); !errors.Is(err, pkg.ErrInvalidState) {
		t.Fatalf("nominate during voting: got %v, want invalid state", err)
	}
}

func TestVoteRules(t *testing.T) {
	svc, club, owner, users := newRoundFixture(t, 3)
	ctx := context.Background()
	round, _ := svc.Create(ctx, club.ID, owner.ID, RoundDeadlines{})

	nomA, _, err := svc.Nominate(ctx, round.ID, users[0].ID, 1)
	if err != nil {
		t.Fatal(err)
	}

	// 投票没开
	if err := svc.Vote(ctx, round.ID, users[1].ID, nomA.ID); !errors.Is(err, pkg.ErrInvalidState) {
		t.Fatalf("vote before voting: got %v, want invalid state", err)
	}
	if _, err := svc.Advance(ctx, round.ID, owner.ID); err != nil {
		t.Fatal(err)
	}

	if err := svc.Vote(ctx, round.ID, users[1].ID, nomA.ID); err != nil {
		t.Fatalf("vote: %v", err)
	}
	// 一人一票
	if err := svc.Vote(ctx, round.ID, users[1].ID, nomA.ID); !errors.Is(err, pkg.ErrAlreadyVoted) {
		t.Fatalf("second vote: got %v, want already voted", err)
	}

	// 提名必须属于同一轮
	completeRound2 := func() uint64 {
		other := createUser(t, "other-owner")
		otherClub, err := NewMembershipService().CreateClub(other.ID, "other-club", "")
		if err != nil {
			t.Fatal(err)
		}
		r2, err := svc.Create(ctx, otherClub.ID, other.ID, RoundDeadlines{})
		if err != nil {
			t.Fatal(err)
		}
		n2, _, err := svc.Nominate(ctx, r2.ID, other.ID, 7)
		if err != nil {
			t.Fatal(err)
		}
		return n2.ID
	}
	foreignNom := completeRound2()
	if err := svc.Vote(ctx, round.ID, users[2].ID, foreignNom); !errors.Is(err, pkg.ErrValidation) {
		t.Fatalf("cross-round vote: got %v, want validation error", err)
	}
}

func TestTallyDeterministicTieBreak(t *testing.T) {
	svc, club, owner, users := newRoundFixture(t, 12)
	ctx := context.Background()
	round, _ := svc.Create(ctx, club.ID, owner.ID, RoundDeadlines{})

	t1 := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Minute)
	t3 := t1.Add(2 * time.Minute)

	nomA, _, err := svc.Nominate(ctx, round.ID, users[0].ID, 100)
	if err != nil {
		t.Fatal(err)
	}
	nomB, _, err := svc.Nominate(ctx, round.ID, users[1].ID, 200)
	if err != nil {
		t.Fatal(err)
	}
	nomC, _, err := svc.Nominate(ctx, round.ID, users[2].ID, 300)
	if err != nil {
		t.Fatal(err)
	}
	setNominationTime(t, nomA.ID, t1)
	setNominationTime(t, nomB.ID, t2)
	setNominationTime(t, nomC.ID, t3)

	if _, err := svc.Advance(ctx, round.ID, owner.ID); err != nil {
		t.Fatal(err)
	}

	// A=5 票，B=5 票（创建更晚），C=2 票
	voters := [][2]uint64{
		{users[0].ID, nomA.ID}, {users[1].ID, nomA.ID}, {users[2].ID, nomA.ID},
		{users[3].ID, nomA.ID}, {users[4].ID, nomA.ID},
		{users[5].ID, nomB.ID}, {users[6].ID, nomB.ID}, {users[7].ID, nomB.ID},
		{users[8].ID, nomB.ID}, {users[9].ID, nomB.ID},
		{users[10].ID, nomC.ID}, {users[11].ID, nomC.ID},
	}
	for _, v := range voters {
		if err := svc.Vote(ctx, round.ID, v[0], v[1]); err != nil {
			t.Fatalf("vote %d→%d: %v", v[0], v[1], err)
		}
	}

	// 票数守恒
	view, err := svc.View(ctx, round.ID, owner.ID)
	if err != nil {
		t.Fatal(err)
	}
	var sum int64
	for _, n := range view.Nominations {
		sum += n.Votes
	}
	if sum != int64(len(voters)) {
		t.Fatalf("vote sum = %d, want %d", sum, len(voters))
	}

	res, err := svc.Advance(ctx, round.ID, owner.ID)
	if err != nil {
		t.Fatal(err)
	}
	if res.WinningGameID == nil || *res.WinningGameID != 100 {
		t.Fatalf("winner = %v, want game 100 (earliest nomination wins the tie)", res.WinningGameID)
	}
}

func TestAdvanceStatusSequence(t *testing.T) {
	svc, club, owner, _ := newRoundFixture(t, 0)
	ctx := context.Background()
	round, _ := svc.Create(ctx, club.ID, owner.ID, RoundDeadlines{})

	// 没有提名不能开票
	if _, err := svc.Advance(ctx, round.ID, owner.ID); !errors.Is(err, pkg.ErrInvalidState) {
		t.Fatalf("advance without nominations: got %v, want invalid state", err)
	}

	completeRound(t, svc, round.ID, owner.ID)

	// 终态之后全部拒绝
	if _, err := svc.Advance(ctx, round.ID, owner.ID); !errors.Is(err, pkg.ErrInvalidState) {
		t.Fatalf("advance on completed: got %v, want invalid state", err)
	}
	got, err := svc.View(ctx, round.ID, owner.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Round.Status != model.RoundCompleted || got.Round.CompletedAt == nil {
		t.Fatalf("round = status %d completedAt %v", got.Round.Status, got.Round.CompletedAt)
	}
}

func TestReviewRulesAndCompletionRewards(t *testing.T) {
	svc, club, owner, users := newRoundFixture(t, 2)
	ctx := context.Background()
	round, _ := svc.Create(ctx, club.ID, owner.ID, RoundDeadlines{})

	if _, _, err := svc.Nominate(ctx, round.ID, users[0].ID, 55); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Advance(ctx, round.ID, owner.ID); err != nil { // voting
		t.Fatal(err)
	}
	if err := svc.Vote(ctx, round.ID, users[1].ID, mustNomination(t, round.ID)); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Advance(ctx, round.ID, owner.ID); err != nil { // playing
		t.Fatal(err)
	}

	// 还没进入评价阶段
	if err := svc.Review(ctx, round.ID, users[0].ID, 8, "great pick"); !errors.Is(err, pkg.ErrInvalidState) {
		t.Fatalf("review during playing: got %v, want invalid state", err)
	}
	if _, err := svc.Advance(ctx, round.ID, owner.ID); err != nil { // reviewing
		t.Fatal(err)
	}

	// 分数越界
	if err := svc.Review(ctx, round.ID, users[0].ID, 11, ""); !errors.Is(err, pkg.ErrValidation) {
		t.Fatalf("score 11: got %v, want validation error", err)
	}
	if err := svc.Review(ctx, round.ID, users[0].ID, 0, ""); !errors.Is(err, pkg.ErrValidation) {
		t.Fatalf("score 0: got %v, want validation error", err)
	}

	if err := svc.Review(ctx, round.ID, users[0].ID, 7, "solid"); err != nil {
		t.Fatal(err)
	}
	if err := svc.Review(ctx, round.ID, users[0].ID, 9, "changed my mind"); !errors.Is(err, pkg.ErrAlreadyReviewed) {
		t.Fatalf("second review: got %v, want already reviewed", err)
	}
	if err := svc.Review(ctx, round.ID, users[1].ID, 9, ""); err != nil {
		t.Fatal(err)
	}

	before0 := xpTotal(t, users[0].ID)
	res, err := svc.Advance(ctx, round.ID, owner.ID) // completed
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != model.RoundCompleted {
		t.Fatalf("status = %d, want completed", res.Status)
	}
	// 参与者：提名者 users[0]、投票者 users[1]，都有完结奖励
	if len(res.RewardedUsers) != 2 {
		t.Fatalf("rewarded = %v, want 2 participants", res.RewardedUsers)
	}
	if got := xpTotal(t, users[0].ID); got != before0+DefaultRewardPolicy().RoundComplete {
		t.Fatalf("xp delta = %d, want %d", got-before0, DefaultRewardPolicy().RoundComplete)
	}

	view, err := svc.View(ctx, round.ID, users[0].ID)
	if err != nil {
		t.Fatal(err)
	}
	if view.AverageScore == nil || *view.AverageScore != 8 {
		t.Fatalf("average = %v, want 8", view.AverageScore)
	}
	if view.ReviewCount != 2 {
		t.Fatalf("review count = %d, want 2", view.ReviewCount)
	}
}

// mustNomination 取该轮第一条提名 id
func mustNomination(t *testing.T, roundID uint64) uint64 {
	t.Helper()
	var nom model.Nomination
	if err := mysql.DB.Where("round_id = ?", roundID).Order("id asc").First(&nom).Error; err != nil {
		t.Fatal(err)
	}
	return nom.ID
}

func TestViewHidesVotersFromMembers(t *testing.T) {
	svc, club, owner, users := newRoundFixture(t, 2)
	ctx := context.Background()
	round, _ := svc.Create(ctx, club.ID, owner.ID, RoundDeadlines{})

	nom, _, err := svc.Nominate(ctx, round.ID, users[0].ID, 9)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Advance(ctx, round.ID, owner.ID); err != nil {
		t.Fatal(err)
	}
	if err := svc.Vote(ctx, round.ID, users[1].ID, nom.ID); err != nil {
		t.Fatal(err)
	}

	memberView, err := svc.View(ctx, round.ID, users[0].ID)
	if err != nil {
		t.Fatal(err)
	}
	for _, n := range memberView.Nominations {
		if n.Voters != nil {
			t.Fatal("member view must not expose voter identities")
		}
	}
	if memberView.AverageScore != nil {
		t.Fatal("average must stay hidden before reviewing")
	}

	ownerView, err := svc.View(ctx, round.ID, owner.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(ownerView.Nominations) == 0 || len(ownerView.Nominations[0].Voters) != 1 {
		t.Fatalf("owner view voters = %+v, want the one voter", ownerView.Nominations)
	}

	voterView, err := svc.View(ctx, round.ID, users[1].ID)
	if err != nil {
		t.Fatal(err)
	}
	if !voterView.HasVoted || voterView.MyVote == nil || *voterView.MyVote != nom.ID {
		t.Fatalf("voter flags = %+v", voterView)
	}
}

func TestCompletionWritesOutboxEvents(t *testing.T) {
	svc, club, owner, _ := newRoundFixture(t, 0)
	round, _ := svc.Create(context.Background(), club.ID, owner.ID, RoundDeadlines{})
	completeRound(t, svc, round.ID, owner.ID)

	var events []model.NotifyOutbox
	if err := mysql.DB.Order("id asc").Find(&events).Error; err != nil {
		t.Fatal(err)
	}
	// 3 次 round_advanced + 1 次 round_completed
	if len(events) != 4 {
		t.Fatalf("outbox events = %d, want 4", len(events))
	}
	if events[3].EventType != "round_completed" {
		t.Fatalf("last event = %s, want round_completed", events[3].EventType)
	}
	for _, ev := range events {
		if ev.ClubID != club.ID || ev.RoundID != round.ID || ev.Status != 0 {
			t.Fatalf("bad event row: %+v", ev)
		}
	}
}
