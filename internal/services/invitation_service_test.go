package services

import (
	"testing"
	"time"

	"github.com/harukimoto/teamtrack-api/internal/models"
	"github.com/harukimoto/teamtrack-api/internal/repository"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// InvitationServiceTestSuite defines the test suite for InvitationService
type InvitationServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *InvitationService

	company *models.Company
	admin   *models.User
}

// SetupTest runs before each test
func (suite *InvitationServiceTestSuite) SetupTest() {
	var err error

	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(
		&models.User{},
		&models.Company{},
		&models.Membership{},
		&models.Team{},
		&models.TeamMembership{},
		&models.Invitation{},
		&models.Notification{},
	)
	suite.Require().NoError(err)

	invitationRepo := repository.NewInvitationRepository(suite.db)
	companyRepo := repository.NewCompanyRepository(suite.db)
	teamRepo := repository.NewTeamRepository(suite.db)
	notifications := NewNotificationService(repository.NewNotificationRepository(suite.db))

	suite.service = NewInvitationService(invitationRepo, companyRepo, teamRepo, notifications)

	suite.company = &models.Company{Name: "Acme"}
	suite.Require().NoError(suite.db.Create(suite.company).Error)

	suite.admin = suite.createUser("admin@acme.test")
	suite.createMembership(suite.admin.ID, models.RoleAdmin)
}

// TearDownTest runs after each test
func (suite *InvitationServiceTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *InvitationServiceTestSuite) createUser(email string) *models.User {
	user := &models.User{
		Name:         email,
		Email:        email,
		PasswordHash: "hashedpassword",
	}
	suite.Require().NoError(suite.db.Create(user).Error)
	return user
}

func (suite *InvitationServiceTestSuite) createMembership(userID uint64, role models.Role) *models.Membership {
	membership := &models.Membership{
		CompanyID: suite.company.ID,
		UserID:    userID,
		Role:      role,
		IsActive:  true,
		JoinedAt:  time.Now(),
	}
	suite.Require().NoError(suite.db.Create(membership).Error)
	return membership
}

func (suite *InvitationServiceTestSuite) invite(email string) *models.Invitation {
	invitation, err := suite.service.Invite(InviteInput{
		Email:     email,
		CompanyID: suite.company.ID,
		Role:      models.RoleMember,
		InviterID: suite.admin.ID,
	})
	suite.Require().NoError(err)
	return invitation
}

func (suite *InvitationServiceTestSuite) TestInvite() {
	invitation := suite.invite("new@acme.test")

	suite.Equal("new@acme.test", invitation.Email)
	suite.Equal(models.RoleMember, invitation.Role)
	suite.Nil(invitation.AcceptedAt)

	// Validity window is seven days
	expected := time.Now().Add(7 * 24 * time.Hour)
	suite.WithinDuration(expected, invitation.ExpiresAt, time.Minute)
}

func (suite *InvitationServiceTestSuite) TestInvite_DuplicatePending() {
	suite.invite("new@acme.test")

	_, err := suite.service.Invite(InviteInput{
		Email:     "new@acme.test",
		CompanyID: suite.company.ID,
		Role:      models.RoleMember,
		InviterID: suite.admin.ID,
	})
	suite.ErrorIs(err, ErrDuplicateInvitation)
}

func (suite *InvitationServiceTestSuite) TestInvite_AfterExpiryAllowed() {
	invitation := suite.invite("new@acme.test")

	// Age the first invitation past its window
	suite.Require().NoError(suite.db.Model(invitation).
		Update("expires_at", time.Now().Add(-time.Hour)).Error)

	_, err := suite.service.Invite(InviteInput{
		Email:     "new@acme.test",
		CompanyID: suite.company.ID,
		Role:      models.RoleMember,
		InviterID: suite.admin.ID,
	})
	suite.NoError(err)
}

func (suite *InvitationServiceTestSuite) TestInvite_MemberCannotInvite() {
	member := suite.createUser("member@acme.test")
	suite.createMembership(member.ID, models.RoleMember)

	_, err := suite.service.Invite(InviteInput{
		Email:     "new@acme.test",
		CompanyID: suite.company.ID,
		Role:      models.RoleMember,
		InviterID: member.ID,
	})
	suite.ErrorIs(err, ErrInviteNotAuthorized)
}

func (suite *InvitationServiceTestSuite) TestInvite_AdminCannotGrantAdmin() {
	_, err := suite.service.Invite(InviteInput{
		Email:     "new@acme.test",
		CompanyID: suite.company.ID,
		Role:      models.RoleAdmin,
		InviterID: suite.admin.ID,
	})
	suite.ErrorIs(err, ErrInviteNotAuthorized)
}

func (suite *InvitationServiceTestSuite) TestResend_RefreshesWindow() {
	invitation := suite.invite("new@acme.test")

	suite.Require().NoError(suite.db.Model(invitation).
		Update("expires_at", time.Now().Add(time.Hour)).Error)

	resent, err := suite.service.Resend(invitation.ID)
	suite.Require().NoError(err)
	suite.Greater(resent.ExpiresAt.Unix(), time.Now().Add(6*24*time.Hour).Unix())
}

func (suite *InvitationServiceTestSuite) TestResend_AcceptedLooksDeleted() {
	invitation := suite.invite("new@acme.test")
	now := time.Now()
	suite.Require().NoError(suite.db.Model(invitation).
		Update("accepted_at", &now).Error)

	_, err := suite.service.Resend(invitation.ID)
	suite.ErrorIs(err, ErrInvitationNotFound)
}

func (suite *InvitationServiceTestSuite) TestCancel_Idempotent() {
	invitation := suite.invite("new@acme.test")

	suite.NoError(suite.service.Cancel(invitation.ID))
	// Second cancel of the same invitation is a no-op
	suite.NoError(suite.service.Cancel(invitation.ID))

	// Resend after cancel reports not found
	_, err := suite.service.Resend(invitation.ID)
	suite.ErrorIs(err, ErrInvitationNotFound)
}

func (suite *InvitationServiceTestSuite) TestCancel_AcceptedRejected() {
	invitation := suite.invite("new@acme.test")
	now := time.Now()
	suite.Require().NoError(suite.db.Model(invitation).
		Update("accepted_at", &now).Error)

	suite.ErrorIs(suite.service.Cancel(invitation.ID), ErrInvitationAccepted)
}

func (suite *InvitationServiceTestSuite) TestAccept() {
	invitation := suite.invite("new@acme.test")
	joiner := suite.createUser("new@acme.test")

	membership, err := suite.service.Accept(invitation.ID, joiner.ID)
	suite.Require().NoError(err)

	suite.Equal(suite.company.ID, membership.CompanyID)
	suite.Equal(models.RoleMember, membership.Role)
	suite.True(membership.IsActive)

	var stored models.Invitation
	suite.Require().NoError(suite.db.First(&stored, invitation.ID).Error)
	suite.NotNil(stored.AcceptedAt)
}

func (suite *InvitationServiceTestSuite) TestAccept_TeamScoped() {
	team := &models.Team{
		CompanyID: suite.company.ID,
		Name:      "Platform",
		IsActive:  true,
		CreatorID: suite.admin.ID,
	}
	suite.Require().NoError(suite.db.Create(team).Error)

	invitation, err := suite.service.Invite(InviteInput{
		Email:     "new@acme.test",
		CompanyID: suite.company.ID,
		TeamID:    &team.ID,
		Role:      models.RoleMember,
		InviterID: suite.admin.ID,
	})
	suite.Require().NoError(err)

	joiner := suite.createUser("new@acme.test")
	_, err = suite.service.Accept(invitation.ID, joiner.ID)
	suite.Require().NoError(err)

	var teamMembership models.TeamMembership
	err = suite.db.Where("team_id = ? AND user_id = ?", team.ID, joiner.ID).
		First(&teamMembership).Error
	suite.NoError(err)
}

func (suite *InvitationServiceTestSuite) TestAccept_Expired() {
	invitation := suite.invite("new@acme.test")
	suite.Require().NoError(suite.db.Model(invitation).
		Update("expires_at", time.Now().Add(-time.Minute)).Error)

	joiner := suite.createUser("new@acme.test")
	_, err := suite.service.Accept(invitation.ID, joiner.ID)
	suite.ErrorIs(err, ErrInvitationExpired)
}

func (suite *InvitationServiceTestSuite) TestAccept_Twice() {
	invitation := suite.invite("new@acme.test")
	joiner := suite.createUser("new@acme.test")

	_, err := suite.service.Accept(invitation.ID, joiner.ID)
	suite.Require().NoError(err)

	other := suite.createUser("other@acme.test")
	_, err = suite.service.Accept(invitation.ID, other.ID)
	suite.ErrorIs(err, ErrInvitationAccepted)
}

func (suite *InvitationServiceTestSuite) TestAccept_AlreadyMember() {
	invitation := suite.invite("admin@acme.test")

	_, err := suite.service.Accept(invitation.ID, suite.admin.ID)
	suite.ErrorIs(err, ErrAlreadyCompanyMember)
}

func TestInvitationServiceTestSuite(t *testing.T) {
	suite.Run(t, new(InvitationServiceTestSuite))
}
