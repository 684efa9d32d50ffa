package mysql

import (
	"errors"

	"GameShelf/internal/model"
	"GameShelf/internal/pkg"

	"gorm.io/gorm"
)

type ClubRepository struct {
	DB *gorm.DB
}

// Create 建俱乐部并让创建者成为 owner 成员，一个事务完成
func (r *ClubRepository) Create(c *model.Club) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(c).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return pkg.ErrConflict
			}
			return err
		}
		return tx.Create(&model.ClubMember{
			ClubID: c.ID,
			UserID: c.OwnerID,
			Role:   model.RoleOwner,
		}).Error
	})
}

func (r *ClubRepository) FindByID(id uint64) (*model.Club, error) {
	var club model.Club
	err := r.DB.First(&club, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkg.ErrNotFound
	}
	return &club, err
}

func (r *ClubRepository) List(offset, limit int) ([]model.Club, error) {
	var list []model.Club
	err := r.DB.Order("id desc").Offset(offset).Limit(limit).Find(&list).Error
	return list, err
}
