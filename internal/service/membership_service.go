package service

import (
	"fmt"

	"GameShelf/internal/model"
	"GameShelf/internal/pkg"
	"GameShelf/internal/repository/mysql"
)

// MembershipService 俱乐部内角色与能力判定的唯一入口。
// 所有写操作的权限检查都走这里，不允许散落在各处。
type MembershipService struct {
	clubRepo   *mysql.ClubRepository
	memberRepo *mysql.MembershipRepository
}

func NewMembershipService() *MembershipService {
	return &MembershipService{
		clubRepo:   &mysql.ClubRepository{DB: mysql.DB},
		memberRepo: &mysql.MembershipRepository{DB: mysql.DB},
	}
}

// RoleOf 返回 (role, isMember)
func (s *MembershipService) RoleOf(clubID, userID uint64) (int, bool, error) {
	return s.memberRepo.RoleOf(clubID, userID)
}

// 能力矩阵：对角色的纯函数

func CanAdvanceRound(role int) bool { return role >= model.RoleAdmin }

func CanInvite(role int) bool { return role >= model.RoleAdmin }

// CanRemoveMember admin 只能移除普通成员，owner 能移除 owner 以下所有人
func CanRemoveMember(actorRole, targetRole int) bool {
	if targetRole >= model.RoleOwner {
		return false
	}
	if actorRole >= model.RoleOwner {
		return true
	}
	return actorRole >= model.RoleAdmin && targetRole == model.RoleMember
}

func CanTransferOwnership(role int) bool { return role >= model.RoleOwner }

func (s *MembershipService) CreateClub(userID uint64, name, desc string) (*model.Club, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: club name required", pkg.ErrValidation)
	}
	club := &model.Club{
		Name:        name,
		Description: desc,
		OwnerID:     userID,
	}
	if err := s.clubRepo.Create(club); err != nil {
		return nil, err
	}
	return club, nil
}

func (s *MembershipService) Join(userID, clubID uint64) error {
	if _, err := s.clubRepo.FindByID(clubID); err != nil {
		return err
	}
	return s.memberRepo.Join(&model.ClubMember{
		ClubID: clubID,
		UserID: userID,
		Role:   model.RoleMember,
	})
}

func (s *MembershipService) Leave(userID, clubID uint64) error {
	role, ok, err := s.RoleOf(clubID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	// owner 必须先转让再退出
	if role >= model.RoleOwner {
		return fmt.Errorf("%w: transfer ownership before leaving", pkg.ErrInvalidState)
	}
	return s.memberRepo.Remove(clubID, userID)
}

func (s *MembershipService) Invite(actorID, clubID, targetID uint64) error {
	role, ok, err := s.RoleOf(clubID, actorID)
	if err != nil {
		return err
	}
	if !ok || !CanInvite(role) {
		return pkg.ErrForbidden
	}
	return s.memberRepo.Join(&model.ClubMember{
		ClubID: clubID,
		UserID: targetID,
		Role:   model.RoleMember,
	})
}

func (s *MembershipService) RemoveMember(actorID, clubID, targetID uint64) error {
	actorRole, ok, err := s.RoleOf(clubID, actorID)
	if err != nil {
		return err
	}
	if !ok {
		return pkg.ErrForbidden
	}
	targetRole, isMember, err := s.RoleOf(clubID, targetID)
	if err != nil {
		return err
	}
	if !isMember {
		return pkg.ErrNotFound
	}
	if !CanRemoveMember(actorRole, targetRole) {
		return pkg.ErrForbidden
	}
	return s.memberRepo.Remove(clubID, targetID)
}

// TransferOwnership 原子转让：新主变 owner、旧主变 admin 在一个事务内完成
func (s *MembershipService) TransferOwnership(actorID, clubID, newOwnerID uint64) error {
	role, ok, err := s.RoleOf(clubID, actorID)
	if err != nil {
		return err
	}
	if !ok || !CanTransferOwnership(role) {
		return pkg.ErrForbidden
	}
	if actorID == newOwnerID {
		return fmt.Errorf("%w: already the owner", pkg.ErrValidation)
	}
	return s.memberRepo.TransferOwnership(clubID, actorID, newOwnerID)
}

func (s *MembershipService) Members(clubID uint64) ([]model.ClubMember, error) {
	return s.memberRepo.Members(clubID)
}
