package services

import (
	"testing"
	"time"

	"github.com/harukimoto/teamtrack-api/internal/models"
	"github.com/harukimoto/teamtrack-api/internal/repository"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type membershipTestEnv struct {
	db      *gorm.DB
	service *MembershipService
	company *models.Company
}

func setupMembershipTestEnv(t *testing.T) membershipTestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Company{},
		&models.Membership{},
		&models.Team{},
		&models.TeamMembership{},
		&models.Notification{},
	)
	require.NoError(t, err)

	companyRepo := repository.NewCompanyRepository(db)
	userRepo := repository.NewUserRepository(db)
	teamRepo := repository.NewTeamRepository(db)
	notifications := NewNotificationService(repository.NewNotificationRepository(db))

	service := NewMembershipService(companyRepo, userRepo, teamRepo, notifications)

	company := &models.Company{Name: "Acme"}
	require.NoError(t, db.Create(company).Error)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return membershipTestEnv{
		db:      db,
		service: service,
		company: company,
	}
}

func (env membershipTestEnv) createMember(t *testing.T, email string, role models.Role) *models.User {
	t.Helper()

	user := &models.User{
		Name:         email,
		Email:        email,
		PasswordHash: "hashedpassword",
	}
	require.NoError(t, env.db.Create(user).Error)

	membership := &models.Membership{
		CompanyID: env.company.ID,
		UserID:    user.ID,
		Role:      role,
		IsActive:  true,
		JoinedAt:  time.Now(),
	}
	require.NoError(t, env.db.Create(membership).Error)

	return user
}

func TestMembershipService_UpdateRole(t *testing.T) {
	env := setupMembershipTestEnv(t)

	owner := env.createMember(t, "owner@acme.test", models.RoleOwner)
	member := env.createMember(t, "member@acme.test", models.RoleMember)

	updated, err := env.service.UpdateRole(env.company.ID, member.ID, models.RoleAdmin, owner.ID)
	require.NoError(t, err)
	require.Equal(t, models.RoleAdmin, updated.Role)
}

func TestMembershipService_UpdateRole_AdminCannotDemoteAdmin(t *testing.T) {
	env := setupMembershipTestEnv(t)

	admin := env.createMember(t, "admin@acme.test", models.RoleAdmin)
	peer := env.createMember(t, "peer@acme.test", models.RoleAdmin)

	_, err := env.service.UpdateRole(env.company.ID, peer.ID, models.RoleMember, admin.ID)
	require.ErrorIs(t, err, ErrRoleChangeDenied)
}

func TestMembershipService_UpdateRole_AdminCanPromoteToLeader(t *testing.T) {
	env := setupMembershipTestEnv(t)

	admin := env.createMember(t, "admin@acme.test", models.RoleAdmin)
	member := env.createMember(t, "member@acme.test", models.RoleMember)

	updated, err := env.service.UpdateRole(env.company.ID, member.ID, models.RoleLeader, admin.ID)
	require.NoError(t, err)
	require.Equal(t, models.RoleLeader, updated.Role)
}

func TestMembershipService_UpdateRole_MemberDenied(t *testing.T) {
	env := setupMembershipTestEnv(t)

	member := env.createMember(t, "member@acme.test", models.RoleMember)
	other := env.createMember(t, "other@acme.test", models.RoleMember)

	_, err := env.service.UpdateRole(env.company.ID, other.ID, models.RoleLeader, member.ID)
	require.ErrorIs(t, err, ErrRoleChangeDenied)
}

func TestMembershipService_Remove(t *testing.T) {
	env := setupMembershipTestEnv(t)

	owner := env.createMember(t, "owner@acme.test", models.RoleOwner)
	member := env.createMember(t, "member@acme.test", models.RoleMember)

	require.NoError(t, env.service.Remove(env.company.ID, member.ID, owner.ID))

	// The row is deactivated, not deleted
	var membership models.Membership
	err := env.db.Where("company_id = ? AND user_id = ?", env.company.ID, member.ID).
		First(&membership).Error
	require.NoError(t, err)
	require.False(t, membership.IsActive)

	// A deactivated member is no longer listed
	members, err := env.service.ListMembers(env.company.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
}

func TestMembershipService_Remove_Self(t *testing.T) {
	env := setupMembershipTestEnv(t)

	owner := env.createMember(t, "owner@acme.test", models.RoleOwner)

	err := env.service.Remove(env.company.ID, owner.ID, owner.ID)
	require.ErrorIs(t, err, ErrCannotRemoveYourself)
}

func TestMembershipService_Remove_AdminCannotRemoveOwner(t *testing.T) {
	env := setupMembershipTestEnv(t)

	owner := env.createMember(t, "owner@acme.test", models.RoleOwner)
	admin := env.createMember(t, "admin@acme.test", models.RoleAdmin)

	err := env.service.Remove(env.company.ID, owner.ID, admin.ID)
	require.ErrorIs(t, err, ErrRemoveDenied)
}

func TestMembershipService_CreateUserDirectly(t *testing.T) {
	env := setupMembershipTestEnv(t)

	owner := env.createMember(t, "owner@acme.test", models.RoleOwner)

	user, err := env.service.CreateUserDirectly(CreateUserInput{
		Name:      "New Hire",
		Email:     "hire@acme.test",
		Password:  "supersecret",
		Role:      models.RoleMember,
		CompanyID: env.company.ID,
		ActorID:   owner.ID,
	})
	require.NoError(t, err)
	require.NotZero(t, user.ID)
	require.NotEqual(t, "supersecret", user.PasswordHash)

	var membership models.Membership
	err = env.db.Where("company_id = ? AND user_id = ?", env.company.ID, user.ID).
		First(&membership).Error
	require.NoError(t, err)
	require.Equal(t, models.RoleMember, membership.Role)
	require.True(t, membership.IsActive)
}

func TestMembershipService_CreateUserDirectly_WithTeam(t *testing.T) {
	env := setupMembershipTestEnv(t)

	owner := env.createMember(t, "owner@acme.test", models.RoleOwner)
	team := &models.Team{
		CompanyID: env.company.ID,
		Name:      "Platform",
		IsActive:  true,
		CreatorID: owner.ID,
	}
	require.NoError(t, env.db.Create(team).Error)

	user, err := env.service.CreateUserDirectly(CreateUserInput{
		Name:      "New Hire",
		Email:     "hire@acme.test",
		Password:  "supersecret",
		Role:      models.RoleMember,
		CompanyID: env.company.ID,
		TeamID:    &team.ID,
		ActorID:   owner.ID,
	})
	require.NoError(t, err)

	var teamMembership models.TeamMembership
	err = env.db.Where("team_id = ? AND user_id = ?", team.ID, user.ID).
		First(&teamMembership).Error
	require.NoError(t, err)
}

func TestMembershipService_CreateUserDirectly_LeaderDenied(t *testing.T) {
	env := setupMembershipTestEnv(t)

	leader := env.createMember(t, "leader@acme.test", models.RoleLeader)

	_, err := env.service.CreateUserDirectly(CreateUserInput{
		Name:      "New Hire",
		Email:     "hire@acme.test",
		Password:  "supersecret",
		Role:      models.RoleMember,
		CompanyID: env.company.ID,
		ActorID:   leader.ID,
	})
	require.ErrorIs(t, err, ErrCreateUserDenied)
}

func TestMembershipService_UpdateCompany(t *testing.T) {
	env := setupMembershipTestEnv(t)

	newName := "Acme Corp"
	newDomain := "acme.test"
	company, err := env.service.UpdateCompany(env.company.ID, UpdateCompanyInput{
		Name:   &newName,
		Domain: &newDomain,
	})
	require.NoError(t, err)
	require.Equal(t, "Acme Corp", company.Name)
	require.Equal(t, "acme.test", company.Domain)

	// Omitted fields are left untouched
	newDescription := "We make everything"
	company, err = env.service.UpdateCompany(env.company.ID, UpdateCompanyInput{
		Description: &newDescription,
	})
	require.NoError(t, err)
	require.Equal(t, "Acme Corp", company.Name)
	require.Equal(t, "We make everything", company.Description)
}

func TestMembershipService_UpdateCompany_BlankName(t *testing.T) {
	env := setupMembershipTestEnv(t)

	blank := "   "
	_, err := env.service.UpdateCompany(env.company.ID, UpdateCompanyInput{Name: &blank})
	require.ErrorIs(t, err, ErrCompanyNameRequired)
}

func TestMembershipService_UpdateCompany_NotFound(t *testing.T) {
	env := setupMembershipTestEnv(t)

	name := "Ghost"
	_, err := env.service.UpdateCompany(99999, UpdateCompanyInput{Name: &name})
	require.ErrorIs(t, err, ErrCompanyNotFound)
}

func TestMembershipService_SearchUsers(t *testing.T) {
	env := setupMembershipTestEnv(t)

	env.createMember(t, "alice@acme.test", models.RoleMember)
	env.createMember(t, "bob@acme.test", models.RoleMember)

	users, err := env.service.SearchUsers(env.company.ID, "alice")
	require.NoError(t, err)
	require.Len(t, users, 1)
	require.Equal(t, "alice@acme.test", users[0].Email)

	// Blank queries return nothing instead of the whole roster
	users, err = env.service.SearchUsers(env.company.ID, "   ")
	require.NoError(t, err)
	require.Empty(t, users)
}
