package services

import (
	"errors"
	"testing"

	"github.com/codingclub/hackportal/internal/models"
)

func TestUserDelete_LeaderCascadesTeamDelete(t *testing.T) {
	db := newTestDB(t)
	store := newTestStore(t)
	ts := NewTeamService(db, store)
	ms := NewMembershipService(db)
	us := NewUserService(db, store)
	leader := createUser(t, db, "leader@test", models.GenderFemale)
	member := createUser(t, db, "member@test", models.GenderMale)

	team, err := ts.Create(leader.ID, &CreateTeamRequest{Name: "alpha"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := ms.RequestJoin(member.ID, team.ID); err != nil {
		t.Fatalf("RequestJoin failed: %v", err)
	}
	if _, err := ms.ApproveJoinRequest(leader.ID, team.ID, member.ID); err != nil {
		t.Fatalf("ApproveJoinRequest failed: %v", err)
	}

	if err := us.Delete(leader.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	// the leader's team is disbanded with the usual cascade
	if _, err := ts.GetByID(team.ID); !errors.Is(err, ErrTeamNotFound) {
		t.Errorf("expected ErrTeamNotFound, got %v", err)
	}

	var survivor models.User
	if err := db.First(&survivor, member.ID).Error; err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if survivor.TeamID != nil {
		t.Errorf("surviving member still references team %d", *survivor.TeamID)
	}

	if err := db.First(&models.User{}, leader.ID).Error; err == nil {
		t.Error("deleted leader still visible")
	}
}

func TestUserDelete_MemberDetachedBeforeDelete(t *testing.T) {
	db := newTestDB(t)
	store := newTestStore(t)
	ts := NewTeamService(db, store)
	ms := NewMembershipService(db)
	us := NewUserService(db, store)
	leader := createUser(t, db, "leader@test", models.GenderFemale)
	member := createUser(t, db, "member@test", models.GenderMale)

	team, err := ts.Create(leader.ID, &CreateTeamRequest{Name: "alpha"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := ms.RequestJoin(member.ID, team.ID); err != nil {
		t.Fatalf("RequestJoin failed: %v", err)
	}
	if _, err := ms.ApproveJoinRequest(leader.ID, team.ID, member.ID); err != nil {
		t.Fatalf("ApproveJoinRequest failed: %v", err)
	}

	if err := us.Delete(member.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	// the team survives, and even the soft-deleted row holds no affiliation
	remaining, err := ts.GetByID(team.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if len(remaining.Members) != 1 {
		t.Errorf("expected 1 remaining member, got %d", len(remaining.Members))
	}

	var deleted models.User
	if err := db.Unscoped().First(&deleted, member.ID).Error; err != nil {
		t.Fatalf("unscoped reload failed: %v", err)
	}
	if !deleted.DeletedAt.Valid {
		t.Error("member was not soft-deleted")
	}
	if deleted.TeamID != nil {
		t.Errorf("soft-deleted member still references team %d", *deleted.TeamID)
	}
}

func TestUserDelete_PrunesRequestsAndInvitations(t *testing.T) {
	db := newTestDB(t)
	store := newTestStore(t)
	ts := NewTeamService(db, store)
	ms := NewMembershipService(db)
	us := NewUserService(db, store)
	leader := createUser(t, db, "leader@test", models.GenderFemale)
	drifter := createUser(t, db, "drifter@test", models.GenderMale)

	team, err := ts.Create(leader.ID, &CreateTeamRequest{Name: "alpha"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := ms.RequestJoin(drifter.ID, team.ID); err != nil {
		t.Fatalf("RequestJoin failed: %v", err)
	}

	if err := us.Delete(drifter.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	var requests int64
	db.Model(&models.JoinRequest{}).Where("user_id = ?", drifter.ID).Count(&requests)
	if requests != 0 {
		t.Errorf("%d join requests survived the account delete", requests)
	}
}
