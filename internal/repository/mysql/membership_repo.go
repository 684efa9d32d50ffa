package mysql

import (
	"errors"
	"fmt"

	"GameShelf/internal/model"
	"GameShelf/internal/pkg"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MembershipRepository struct {
	DB *gorm.DB
}

// RoleOf 返回 (role, isMember)
func (r *MembershipRepository) RoleOf(clubID, userID uint64) (int, bool, error) {
	var m model.ClubMember
	err := r.DB.Where("club_id = ? AND user_id = ?", clubID, userID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return m.Role, true, nil
}

// Join 幂等加入：(club_id, user_id) 已存在则什么都不做
func (r *MembershipRepository) Join(member *model.ClubMember) error {
	return r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "club_id"}, {Name: "user_id"}},
		DoNothing: true,
	}).Create(member).Error
}

func (r *MembershipRepository) Remove(clubID, userID uint64) error {
	return r.DB.Where("club_id = ? AND user_id = ?", clubID, userID).
		Delete(&model.ClubMember{}).Error
}

func (r *MembershipRepository) Members(clubID uint64) ([]model.ClubMember, error) {
	var list []model.ClubMember
	err := r.DB.Where("club_id = ?", clubID).Order("role desc, id asc").Find(&list).Error
	return list, err
}

// TransferOwnership 单一事务内换主：新主升 owner、旧主降 admin、俱乐部
// owner_id 同步更新。任何一步没命中行就整体回滚，单 owner 不会被破坏。
func (r *MembershipRepository) TransferOwnership(clubID, fromID, toID uint64) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.ClubMember{}).
			Where("club_id = ? AND user_id = ? AND role = ?", clubID, fromID, model.RoleOwner).
			Update("role", model.RoleAdmin)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return pkg.ErrForbidden
		}

		res = tx.Model(&model.ClubMember{}).
			Where("club_id = ? AND user_id = ?", clubID, toID).
			Update("role", model.RoleOwner)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: target is not a member", pkg.ErrValidation)
		}

		return tx.Model(&model.Club{}).
			Where("id = ?", clubID).
			Update("owner_id", toID).Error
	})
}
