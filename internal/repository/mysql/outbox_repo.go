package mysql

import (
	"context"

	"GameShelf/internal/model"

	"gorm.io/gorm"
)

type OutboxRepository struct {
	DB *gorm.DB
}

// ListPending 按写入顺序取一批待投递事件
func (r *OutboxRepository) ListPending(ctx context.Context, batchSize int) ([]model.NotifyOutbox, error) {
	var list []model.NotifyOutbox
	err := r.DB.WithContext(ctx).
		Where("status = 0").
		Order("id ASC").
		Limit(batchSize).
		Find(&list).Error
	return list, err
}

func (r *OutboxRepository) MarkSent(ctx context.Context, id uint64) error {
	return r.DB.WithContext(ctx).Model(&model.NotifyOutbox{}).
		Where("id = ?", id).
		Update("status", 1).Error
}

// MarkFailed 记一次失败，留给下个周期重试
func (r *OutboxRepository) MarkFailed(ctx context.Context, id uint64) error {
	return r.DB.WithContext(ctx).Model(&model.NotifyOutbox{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": 2, "retry": gorm.Expr("retry + 1")}).Error
}

// RequeueFailed 把失败的事件捞回待投递
func (r *OutboxRepository) RequeueFailed(ctx context.Context, maxRetry int) error {
	return r.DB.WithContext(ctx).Model(&model.NotifyOutbox{}).
		Where("status = 2 AND retry < ?", maxRetry).
		Update("status", 0).Error
}
