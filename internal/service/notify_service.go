package service

import (
	"context"
	"log"
	"time"

	"GameShelf/internal/model"
	"GameShelf/internal/pkg"
	"GameShelf/internal/repository/mysql"
)

// Sender 把一条事件投递出去。投递语义由实现决定，引擎只管写 outbox。
type Sender func(ctx context.Context, ev *model.NotifyOutbox) error

// OutboxRelayer 定时把待投递的轮次事件交给 Sender。
// 至少一次投递，消费侧自己去重。
type OutboxRelayer struct {
	repo      *mysql.OutboxRepository
	batchSize int
	interval  time.Duration
	maxRetry  int
	sender    Sender
}

func NewOutboxRelayer(sender Sender) *OutboxRelayer {
	return &OutboxRelayer{
		repo:      &mysql.OutboxRepository{DB: mysql.DB},
		batchSize: 200,
		interval:  time.Second,
		maxRetry:  5,
		sender:    sender,
	}
}

func (r *OutboxRelayer) Run(ctx context.Context) {
	t := time.NewTicker(r.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			r.DrainOnce(ctx)
		}
	}
}

// DrainOnce 投一批。失败的标记重试，下个周期重新入队。
func (r *OutboxRelayer) DrainOnce(ctx context.Context) {
	rows, err := r.repo.ListPending(ctx, r.batchSize)
	if err != nil {
		log.Printf("outbox query err: %v", err)
		return
	}
	for i := range rows {
		ev := rows[i]
		if err := r.sender(ctx, &ev); err != nil {
			log.Printf("outbox send err id=%d: %v", ev.ID, err)
			_ = r.repo.MarkFailed(ctx, ev.ID)
			continue
		}
		_ = r.repo.MarkSent(ctx, ev.ID)
	}
	_ = r.repo.RequeueFailed(ctx, r.maxRetry)
}

// KafkaSender 按 club id 作 key 投到 Kafka，同俱乐部事件保序
func KafkaSender(producer *pkg.KafkaProducer) Sender {
	return func(ctx context.Context, ev *model.NotifyOutbox) error {
		return producer.Send(ctx, pkg.KeyFromID(ev.ClubID), []byte(ev.Payload))
	}
}

// LogSender Kafka 不可用时的兜底
func LogSender(ctx context.Context, ev *model.NotifyOutbox) error {
	log.Printf("OUTBOX SEND type=%s club=%d round=%d payload=%s", ev.EventType, ev.ClubID, ev.RoundID, ev.Payload)
	return nil
}
