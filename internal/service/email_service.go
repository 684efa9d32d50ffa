package service

import (
	"errors"

	"GameShelf/internal/pkg"
	"GameShelf/internal/repository/redis"
)

type EmailService struct {
	cfg   pkg.SMTPConfig
	codes *redis.EmailRepository
}

func NewEmailService(cfg pkg.SMTPConfig) *EmailService {
	return &EmailService{cfg: cfg, codes: &redis.EmailRepository{}}
}

// SendCode 生成验证码、入库、发邮件
func (s *EmailService) SendCode(scope, email string) error {
	code, err := pkg.RandDigits(6)
	if err != nil {
		return err
	}
	if err := s.codes.SaveCode(scope, email, code); err != nil {
		return err
	}
	return pkg.SendEmail(s.cfg, email, "GameShelf 验证码",
		pkg.EmailCodeHTML(scope, code, redis.CodeTTL))
}

// VerifyCode 验证码一次性使用，取出即删
func (s *EmailService) VerifyCode(scope, email, code string) error {
	saved, err := s.codes.TakeCode(scope, email)
	if err != nil {
		return err
	}
	if saved != code {
		return errors.New("verification code mismatch")
	}
	return nil
}
