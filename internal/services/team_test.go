package services

import (
	"errors"
	"testing"

	"github.com/codingclub/hackportal/internal/config"
	"github.com/codingclub/hackportal/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql db: %v", err)
	}
	// a fresh pool connection would see an empty in-memory database
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&models.User{},
		&models.AllowedRoll{},
		&models.Team{},
		&models.JoinRequest{},
		&models.Invitation{},
		&models.Resource{},
		&models.Idea{},
		&models.IdeaComment{},
		&models.Update{},
		&models.SystemConfig{},
		&models.SystemLog{},
	); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}

	return db
}

func newTestStore(t *testing.T) *LocalStore {
	t.Helper()

	store, err := NewLocalStore(&config.StorageConfig{Dir: t.TempDir(), BaseURL: "/uploads"})
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	return store
}

func createUser(t *testing.T, db *gorm.DB, email, gender string) *models.User {
	t.Helper()

	user := &models.User{
		Email:      email,
		Name:       email,
		Gender:     gender,
		IsVerified: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user %s: %v", email, err)
	}
	return user
}

func TestTeamCreate_LeaderBecomesMember(t *testing.T) {
	db := newTestDB(t)
	svc := NewTeamService(db, newTestStore(t))
	leader := createUser(t, db, "leader@test", models.GenderMale)

	team, err := svc.Create(leader.ID, &CreateTeamRequest{Name: "alpha"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if team.LeaderID != leader.ID {
		t.Errorf("LeaderID = %d, expected %d", team.LeaderID, leader.ID)
	}
	if len(team.Members) != 1 {
		t.Fatalf("expected 1 member, got %d", len(team.Members))
	}
	if team.Members[0].ID != leader.ID {
		t.Errorf("leader is not a member of the team")
	}
}

func TestTeamCreate_RejectsSecondAffiliation(t *testing.T) {
	db := newTestDB(t)
	svc := NewTeamService(db, newTestStore(t))
	leader := createUser(t, db, "leader@test", models.GenderFemale)

	if _, err := svc.Create(leader.ID, &CreateTeamRequest{Name: "alpha"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	_, err := svc.Create(leader.ID, &CreateTeamRequest{Name: "beta"})
	if !errors.Is(err, ErrAlreadyInTeam) {
		t.Errorf("expected ErrAlreadyInTeam, got %v", err)
	}
}

func TestTeamCreate_RejectsDuplicateName(t *testing.T) {
	db := newTestDB(t)
	svc := NewTeamService(db, newTestStore(t))
	a := createUser(t, db, "a@test", models.GenderMale)
	b := createUser(t, db, "b@test", models.GenderMale)

	if _, err := svc.Create(a.ID, &CreateTeamRequest{Name: "alpha"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	_, err := svc.Create(b.ID, &CreateTeamRequest{Name: "alpha"})
	if !errors.Is(err, ErrNameTaken) {
		t.Errorf("expected ErrNameTaken, got %v", err)
	}
}

func TestTeamUpdate_OnlyLeader(t *testing.T) {
	db := newTestDB(t)
	svc := NewTeamService(db, newTestStore(t))
	leader := createUser(t, db, "leader@test", models.GenderMale)
	other := createUser(t, db, "other@test", models.GenderFemale)

	team, err := svc.Create(leader.ID, &CreateTeamRequest{Name: "alpha"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	_, err = svc.Update(other.ID, team.ID, &UpdateTeamRequest{Name: "beta"})
	if !errors.Is(err, ErrNotLeader) {
		t.Errorf("expected ErrNotLeader, got %v", err)
	}

	title := "routing"
	updated, err := svc.Update(leader.ID, team.ID, &UpdateTeamRequest{Name: "beta", ProblemTitle: &title})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Name != "beta" {
		t.Errorf("Name = %q, expected %q", updated.Name, "beta")
	}
	if updated.ProblemTitle != "routing" {
		t.Errorf("ProblemTitle = %q, expected %q", updated.ProblemTitle, "routing")
	}
}

func TestTeamLeave_LeaderMustDelete(t *testing.T) {
	db := newTestDB(t)
	svc := NewTeamService(db, newTestStore(t))
	leader := createUser(t, db, "leader@test", models.GenderMale)

	if _, err := svc.Create(leader.ID, &CreateTeamRequest{Name: "alpha"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	err := svc.Leave(leader.ID)
	if !errors.Is(err, ErrLeaderMustDelete) {
		t.Errorf("expected ErrLeaderMustDelete, got %v", err)
	}
}

func TestTeamLeave_MemberDetached(t *testing.T) {
	db := newTestDB(t)
	svc := NewTeamService(db, newTestStore(t))
	ms := NewMembershipService(db)
	leader := createUser(t, db, "leader@test", models.GenderMale)
	member := createUser(t, db, "member@test", models.GenderFemale)

	team, err := svc.Create(leader.ID, &CreateTeamRequest{Name: "alpha"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := ms.RequestJoin(member.ID, team.ID); err != nil {
		t.Fatalf("RequestJoin failed: %v", err)
	}
	if _, err := ms.ApproveJoinRequest(leader.ID, team.ID, member.ID); err != nil {
		t.Fatalf("ApproveJoinRequest failed: %v", err)
	}

	if err := svc.Leave(member.ID); err != nil {
		t.Fatalf("Leave failed: %v", err)
	}

	var reloaded models.User
	if err := db.First(&reloaded, member.ID).Error; err != nil {
		t.Fatalf("failed to reload user: %v", err)
	}
	if reloaded.TeamID != nil {
		t.Errorf("TeamID should be nil after leaving, got %v", *reloaded.TeamID)
	}
}

func TestTeamRemoveMember_LeaderProtected(t *testing.T) {
	db := newTestDB(t)
	svc := NewTeamService(db, newTestStore(t))
	leader := createUser(t, db, "leader@test", models.GenderMale)

	team, err := svc.Create(leader.ID, &CreateTeamRequest{Name: "alpha"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	_, err = svc.RemoveMember(leader.ID, team.ID, leader.ID)
	if !errors.Is(err, ErrCannotRemoveLeader) {
		t.Errorf("expected ErrCannotRemoveLeader, got %v", err)
	}
}

func TestTeamRemoveMember_NotInTeam(t *testing.T) {
	db := newTestDB(t)
	svc := NewTeamService(db, newTestStore(t))
	leader := createUser(t, db, "leader@test", models.GenderMale)
	stranger := createUser(t, db, "stranger@test", models.GenderFemale)

	team, err := svc.Create(leader.ID, &CreateTeamRequest{Name: "alpha"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	_, err = svc.RemoveMember(leader.ID, team.ID, stranger.ID)
	if !errors.Is(err, ErrMemberNotFound) {
		t.Errorf("expected ErrMemberNotFound, got %v", err)
	}
}

func TestTeamDelete_CascadesEverything(t *testing.T) {
	db := newTestDB(t)
	svc := NewTeamService(db, newTestStore(t))
	ms := NewMembershipService(db)
	leader := createUser(t, db, "leader@test", models.GenderMale)
	member := createUser(t, db, "member@test", models.GenderFemale)
	requester := createUser(t, db, "requester@test", models.GenderMale)
	invitee := createUser(t, db, "invitee@test", models.GenderOther)

	team, err := svc.Create(leader.ID, &CreateTeamRequest{Name: "alpha"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := ms.RequestJoin(member.ID, team.ID); err != nil {
		t.Fatalf("RequestJoin failed: %v", err)
	}
	if _, err := ms.ApproveJoinRequest(leader.ID, team.ID, member.ID); err != nil {
		t.Fatalf("ApproveJoinRequest failed: %v", err)
	}
	if _, err := ms.RequestJoin(requester.ID, team.ID); err != nil {
		t.Fatalf("RequestJoin failed: %v", err)
	}
	if _, err := ms.Invite(leader.ID, team.ID, invitee.ID); err != nil {
		t.Fatalf("Invite failed: %v", err)
	}

	if err := svc.Delete(leader.ID, team.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	var teamless int64
	db.Model(&models.User{}).Where("team_id = ?", team.ID).Count(&teamless)
	if teamless != 0 {
		t.Errorf("%d users still reference the deleted team", teamless)
	}

	var requests int64
	db.Model(&models.JoinRequest{}).Where("team_id = ?", team.ID).Count(&requests)
	if requests != 0 {
		t.Errorf("%d join requests survived team deletion", requests)
	}

	var invitations int64
	db.Model(&models.Invitation{}).Where("team_id = ?", team.ID).Count(&invitations)
	if invitations != 0 {
		t.Errorf("%d invitations survived team deletion", invitations)
	}

	if _, err := svc.GetByID(team.ID); !errors.Is(err, ErrTeamNotFound) {
		t.Errorf("expected ErrTeamNotFound after delete, got %v", err)
	}
}

func TestTeamDelete_OnlyLeader(t *testing.T) {
	db := newTestDB(t)
	svc := NewTeamService(db, newTestStore(t))
	leader := createUser(t, db, "leader@test", models.GenderMale)
	other := createUser(t, db, "other@test", models.GenderFemale)

	team, err := svc.Create(leader.ID, &CreateTeamRequest{Name: "alpha"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := svc.Delete(other.ID, team.ID); !errors.Is(err, ErrNotLeader) {
		t.Errorf("expected ErrNotLeader, got %v", err)
	}
}

func TestTeamList_Pagination(t *testing.T) {
	db := newTestDB(t)
	svc := NewTeamService(db, newTestStore(t))

	for i := 0; i < 5; i++ {
		leader := createUser(t, db, string(rune('a'+i))+"@test", models.GenderMale)
		if _, err := svc.Create(leader.ID, &CreateTeamRequest{Name: "team-" + string(rune('a'+i))}); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	resp, err := svc.List(&TeamListRequest{Page: 1, PageSize: 2})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if resp.Total != 5 {
		t.Errorf("Total = %d, expected 5", resp.Total)
	}
	if len(resp.Items) != 2 {
		t.Errorf("page size = %d, expected 2", len(resp.Items))
	}
}
