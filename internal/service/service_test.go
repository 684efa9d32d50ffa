package service

import (
	"fmt"
	"testing"

	"GameShelf/internal/model"
	"GameShelf/internal/repository/mysql"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// setupDB 每个测试一个内存库。限制单连接，保证事务和主连接看到同一个库。
func setupDB(t *testing.T) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&model.User{},
		&model.Club{},
		&model.ClubMember{},
		&model.Round{},
		&model.Nomination{},
		&model.RoundVote{},
		&model.Review{},
		&model.XpGrant{},
		&model.NotifyOutbox{},
		&model.DailyPoll{},
		&model.DailyPollGame{},
		&model.DailyPollVote{},
		&model.DailyQuiz{},
		&model.DailyQuizOption{},
		&model.DailyQuizAnswer{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	mysql.DB = db
}

func createUser(t *testing.T, name string) *model.User {
	t.Helper()
	user := &model.User{
		Username: name,
		Password: "x",
		Email:    fmt.Sprintf("%s@test.local", name),
	}
	if err := mysql.DB.Create(user).Error; err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return user
}

func xpTotal(t *testing.T, userID uint64) int64 {
	t.Helper()
	var user model.User
	if err := mysql.DB.First(&user, userID).Error; err != nil {
		t.Fatalf("load user %d: %v", userID, err)
	}
	return user.XpTotal
}

// newClub 建俱乐部并拉 n 个普通成员进来，返回 (club, owner, members)
func newClub(t *testing.T, svc *MembershipService, n int) (*model.Club, *model.User, []*model.User) {
	t.Helper()
	owner := createUser(t, fmt.Sprintf("owner-%s", t.Name()))
	club, err := svc.CreateClub(owner.ID, fmt.Sprintf("club-%s", t.Name()), "")
	if err != nil {
		t.Fatalf("create club: %v", err)
	}
	members := make([]*model.User, 0, n)
	for i := 0; i < n; i++ {
		u := createUser(t, fmt.Sprintf("member-%d-%s", i, t.Name()))
		if err := svc.Join(u.ID, club.ID); err != nil {
			t.Fatalf("join: %v", err)
		}
		members = append(members, u)
	}
	return club, owner, members
}
