package mysql

import (
	"context"

	"GameShelf/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type XpRepository struct {
	DB *gorm.DB
}

// Grant 至多一次发放：流水插入 + 余额自增在同一个事务里。
// (user_id, reason, reference_id) 已存在时整体不生效，granted=false，不报错。
func (r *XpRepository) Grant(ctx context.Context, userID uint64, reason, referenceID string, amount int64) (bool, error) {
	var granted bool
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		granted, err = GrantTx(tx, userID, reason, referenceID, amount)
		return err
	})
	return granted, err
}

// GrantTx 供其他仓储在自己的事务里复用（比如轮次完结时批量发放）
func GrantTx(tx *gorm.DB, userID uint64, reason, referenceID string, amount int64) (bool, error) {
	res := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "user_id"}, {Name: "reason"}, {Name: "reference_id"},
		},
		DoNothing: true,
	}).Create(&model.XpGrant{
		UserID:      userID,
		Reason:      reason,
		ReferenceID: referenceID,
		Amount:      amount,
	})
	if res.Error != nil {
		return false, res.Error
	}
	// 幂等命中：重复投递直接吞掉
	if res.RowsAffected == 0 {
		return false, nil
	}
	if err := tx.Model(&model.User{}).
		Where("id = ?", userID).
		UpdateColumn("xp_total", gorm.Expr("xp_total + ?", amount)).Error; err != nil {
		return false, err
	}
	return true, nil
}

func (r *XpRepository) ListGrants(ctx context.Context, userID uint64, limit int) ([]model.XpGrant, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var list []model.XpGrant
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id desc").Limit(limit).Find(&list).Error
	return list, err
}
