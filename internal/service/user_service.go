package service

import (
	"context"
	"errors"
	"time"

	"GameShelf/internal/model"
	"GameShelf/internal/pkg"
	"GameShelf/internal/repository/mysql"
	"GameShelf/internal/repository/redis"

	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	repo     *mysql.UserRepository
	rUser    *redis.UserRepository
	emailSvc *EmailService
	rewards  *RewardService
}

func NewUserService(emailSvc *EmailService, rewards *RewardService) *UserService {
	return &UserService{
		repo:     &mysql.UserRepository{DB: mysql.DB},
		rUser:    &redis.UserRepository{},
		emailSvc: emailSvc,
		rewards:  rewards,
	}
}

func (s *UserService) Register(username, password, email, code string) error {
	if err := s.emailSvc.VerifyCode("register", email, code); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.repo.Create(&model.User{
		Username: username,
		Password: string(hash),
		Email:    email,
	})
}

// Login 登录成功后发当日登录经验，幂等键是日历日期：
// 同一天重复登录（或重试）只会加一次。
func (s *UserService) Login(ctx context.Context, username, password string) (*pkg.TokenPair, int64, error) {
	user, err := s.repo.FindByUsername(username)
	if err != nil {
		return nil, 0, errors.New("user not found")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, 0, errors.New("invalid password")
	}

	token, err := pkg.GeneratePair(user.ID)
	if err != nil {
		return nil, 0, err
	}
	if err := s.rUser.SetUserToken(user.ID, token.AccessToken); err != nil {
		return nil, 0, err
	}

	today := time.Now().Format(model.DateLayout)
	amount := s.rewards.Policy.DailyLogin
	granted, err := s.rewards.Grant(ctx, user.ID, model.ReasonDailyLogin, today, amount)
	if err != nil {
		return nil, 0, err
	}
	if !granted {
		amount = 0
	}
	return token, amount, nil
}

func (s *UserService) Logout(userID uint64) error {
	return s.rUser.DeleteUserToken(userID)
}

func (s *UserService) Refresh(refreshToken string) (*pkg.TokenPair, error) {
	return pkg.Refresh(refreshToken)
}
