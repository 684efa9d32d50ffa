package service

import (
	"errors"
	"testing"

	"GameShelf/internal/model"
	"GameShelf/internal/pkg"
)

func TestCapabilityMatrix(t *testing.T) {
	cases := []struct {
		role     int
		advance  bool
		invite   bool
		transfer bool
	}{
		{model.RoleMember, false, false, false},
		{model.RoleAdmin, true, true, false},
		{model.RoleOwner, true, true, true},
	}
	for _, c := range cases {
		if got := CanAdvanceRound(c.role); got != c.advance {
			t.Errorf("CanAdvanceRound(%d) = %v, want %v", c.role, got, c.advance)
		}
		if got := CanInvite(c.role); got != c.invite {
			t.Errorf("CanInvite(%d) = %v, want %v", c.role, got, c.invite)
		}
		if got := CanTransferOwnership(c.role); got != c.transfer {
			t.Errorf("CanTransferOwnership(%d) = %v, want %v", c.role, got, c.transfer)
		}
	}

	// 移除权限：admin 只能动普通成员，owner 动不了自己这级
	if CanRemoveMember(model.RoleAdmin, model.RoleAdmin) {
		t.Error("admin should not remove admin")
	}
	if !CanRemoveMember(model.RoleOwner, model.RoleAdmin) {
		t.Error("owner should remove admin")
	}
	if CanRemoveMember(model.RoleOwner, model.RoleOwner) {
		t.Error("nobody removes the owner")
	}
	if !CanRemoveMember(model.RoleAdmin, model.RoleMember) {
		t.Error("admin should remove member")
	}
	if CanRemoveMember(model.RoleMember, model.RoleMember) {
		t.Error("member has no removal capability")
	}
}

func TestCreateClubMakesCreatorOwner(t *testing.T) {
	setupDB(t)
	svc := NewMembershipService()
	club, owner, _ := newClub(t, svc, 0)

	role, ok, err := svc.RoleOf(club.ID, owner.ID)
	if err != nil || !ok {
		t.Fatalf("RoleOf: ok=%v err=%v", ok, err)
	}
	if role != model.RoleOwner {
		t.Fatalf("creator role = %d, want owner", role)
	}
}

func TestJoinIsIdempotent(t *testing.T) {
	setupDB(t)
	svc := NewMembershipService()
	club, _, members := newClub(t, svc, 1)

	if err := svc.Join(members[0].ID, club.ID); err != nil {
		t.Fatalf("second join should be a no-op, got %v", err)
	}
	list, err := svc.Members(club.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 { // owner + 1
		t.Fatalf("member count = %d, want 2", len(list))
	}
}

func TestTransferOwnershipAtomic(t *testing.T) {
	setupDB(t)
	svc := NewMembershipService()
	club, owner, members := newClub(t, svc, 1)
	target := members[0]

	if err := svc.TransferOwnership(owner.ID, club.ID, target.ID); err != nil {
		t.Fatalf("transfer: %v", err)
	}

	newRole, _, _ := svc.RoleOf(club.ID, target.ID)
	oldRole, _, _ := svc.RoleOf(club.ID, owner.ID)
	if newRole != model.RoleOwner {
		t.Fatalf("new owner role = %d, want owner", newRole)
	}
	if oldRole != model.RoleAdmin {
		t.Fatalf("old owner role = %d, want admin", oldRole)
	}

	// 单 owner 不变式
	list, _ := svc.Members(club.ID)
	owners := 0
	for _, m := range list {
		if m.Role == model.RoleOwner {
			owners++
		}
	}
	if owners != 1 {
		t.Fatalf("owner rows = %d, want exactly 1", owners)
	}

	// 旧主已经不是 owner，再转让要被拒
	err := svc.TransferOwnership(owner.ID, club.ID, target.ID)
	if !errors.Is(err, pkg.ErrForbidden) && !errors.Is(err, pkg.ErrValidation) {
		t.Fatalf("expected forbidden/validation, got %v", err)
	}
}

func TestRemoveMemberPermissions(t *testing.T) {
	setupDB(t)
	svc := NewMembershipService()
	club, owner, members := newClub(t, svc, 2)

	// 普通成员没有移除能力
	if err := svc.RemoveMember(members[0].ID, club.ID, members[1].ID); !errors.Is(err, pkg.ErrForbidden) {
		t.Fatalf("member removing member: got %v, want forbidden", err)
	}
	// owner 不能被移除
	if err := svc.RemoveMember(members[0].ID, club.ID, owner.ID); !errors.Is(err, pkg.ErrForbidden) {
		t.Fatalf("removing owner: got %v, want forbidden", err)
	}
	if err := svc.RemoveMember(owner.ID, club.ID, members[0].ID); err != nil {
		t.Fatalf("owner removing member: %v", err)
	}
	if _, ok, _ := svc.RoleOf(club.ID, members[0].ID); ok {
		t.Fatal("removed member still present")
	}
}

func TestOwnerCannotLeave(t *testing.T) {
	setupDB(t)
	svc := NewMembershipService()
	club, owner, _ := newClub(t, svc, 0)

	if err := svc.Leave(owner.ID, club.ID); !errors.Is(err, pkg.ErrInvalidState) {
		t.Fatalf("owner leave: got %v, want invalid state", err)
	}
}
