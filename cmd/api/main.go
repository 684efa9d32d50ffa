package main

import (
	"context"
	"log"

	"GameShelf/internal/model"
	"GameShelf/internal/pkg"
	"GameShelf/internal/repository/mysql"
	"GameShelf/internal/repository/redis"
	"GameShelf/internal/router"
	"GameShelf/internal/service"
)

func main() {
	dsn := "user:password@tcp(127.0.0.1:3306)/gameshelf?charset=utf8mb4&parseTime=True"
	if err := mysql.InitDB(dsn); err != nil {
		panic(err)
	}

	if err := redis.Init("127.0.0.1:6379", "", 0); err != nil {
		panic(err)
	}

	// 自动建表（开发阶段 OK）
	if err := mysql.DB.AutoMigrate(
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
		panic(err)
	}

	// 事件投递：Kafka 起不来就退化为日志
	sender := service.LogSender
	producer := pkg.NewKafkaProducer(pkg.KafkaConfig{Brokers: []string{"127.0.0.1:9092"}})
	if producer != nil {
		sender = service.KafkaSender(producer)
		defer producer.Close()
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go service.NewOutboxRelayer(sender).Run(ctx)

	emailCfg := pkg.SMTPConfig{
		Host:     "smtp.example.com",
		Port:     587,
		Username: "no-reply@example.com",
		Password: "smtp-password",
		From:     "GameShelf <no-reply@example.com>",
	}

	r := router.InitRouter(emailCfg)
	if err := r.Run(":8080"); err != nil {
		log.Fatal(err)
	}
}
