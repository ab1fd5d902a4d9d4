package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/harukimoto/teamtrack-api/internal/constants"
	"github.com/harukimoto/teamtrack-api/internal/models"
	"github.com/harukimoto/teamtrack-api/internal/policy"
	"github.com/harukimoto/teamtrack-api/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrMembershipNotFound    = errors.New("membership not found")
	ErrRoleChangeDenied      = errors.New("not authorized to change this member's role")
	ErrRemoveDenied          = errors.New("not authorized to remove this member")
	ErrCannotRemoveYourself  = errors.New("cannot remove yourself from the company")
	ErrInvalidMembershipRole = errors.New("invalid role")
	ErrCreateUserDenied      = errors.New("not authorized to create users")
	ErrCompanyNotFound       = errors.New("company not found")
	ErrCompanyNameRequired   = errors.New("company name cannot be empty")
)

// MembershipService manages company-level membership: role changes,
// removal, and the administrative shortcut that creates a user directly
// without the invitation flow.
type MembershipService struct {
	companyRepo   repository.CompanyRepository
	userRepo      repository.UserRepository
	teamRepo      repository.TeamRepository
	notifications *NotificationService
}

// NewMembershipService creates a new MembershipService.
func NewMembershipService(companyRepo repository.CompanyRepository, userRepo repository.UserRepository, teamRepo repository.TeamRepository, notifications *NotificationService) *MembershipService {
	return &MembershipService{
		companyRepo:   companyRepo,
		userRepo:      userRepo,
		teamRepo:      teamRepo,
		notifications: notifications,
	}
}

// UpdateCompanyInput represents updatable company profile fields.
type UpdateCompanyInput struct {
	Name        *string
	Description *string
	Domain      *string
}

// UpdateCompany updates the company profile. The caller is expected to
// be gated on user-management rights before reaching here.
func (s *MembershipService) UpdateCompany(companyID uint64, input UpdateCompanyInput) (*models.Company, error) {
	company, err := s.companyRepo.FindByID(companyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCompanyNotFound
		}
		return nil, fmt.Errorf("failed to find company: %w", err)
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, ErrCompanyNameRequired
		}
		company.Name = *input.Name
	}
	if input.Description != nil {
		company.Description = *input.Description
	}
	if input.Domain != nil {
		company.Domain = *input.Domain
	}

	if err := s.companyRepo.Update(company); err != nil {
		return nil, fmt.Errorf("failed to update company: %w", err)
	}

	return company, nil
}

// ListCompanies returns the companies the user actively belongs to,
// together with the role held in each.
func (s *MembershipService) ListCompanies(userID uint64) ([]models.Membership, error) {
	memberships, err := s.companyRepo.ListMembershipsByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	return memberships, nil
}

// SearchUsers finds active company members by name or email fragment.
func (s *MembershipService) SearchUsers(companyID uint64, query string) ([]models.User, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.User{}, nil
	}

	users, err := s.userRepo.SearchInCompany(companyID, query, constants.DefaultPageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	return users, nil
}

// ListMembers returns the active members of a company.
func (s *MembershipService) ListMembers(companyID uint64) ([]models.Membership, error) {
	memberships, err := s.companyRepo.ListMemberships(companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	return memberships, nil
}

// UpdateRole changes a member's company role. The actor must be allowed
// both to touch the target at its current role and to grant the new one.
func (s *MembershipService) UpdateRole(companyID, targetUserID uint64, newRole models.Role, actorID uint64) (*models.Membership, error) {
	if !policy.ValidRole(newRole) {
		return nil, ErrInvalidMembershipRole
	}

	actor, err := s.companyRepo.FindActiveMembership(companyID, actorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoleChangeDenied
		}
		return nil, fmt.Errorf("failed to verify actor membership: %w", err)
	}

	target, err := s.companyRepo.FindActiveMembership(companyID, targetUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMembershipNotFound
		}
		return nil, fmt.Errorf("failed to find target membership: %w", err)
	}

	if !policy.CanChangeRole(actor.Role, target.Role, newRole) {
		return nil, ErrRoleChangeDenied
	}

	target.Role = newRole
	if err := s.companyRepo.UpdateMembership(target); err != nil {
		return nil, fmt.Errorf("failed to update role: %w", err)
	}

	s.notifications.Dispatch(targetUserID, models.NotificationRoleChanged,
		"Role updated", fmt.Sprintf("Your role is now %s.", newRole),
		map[string]uint64{"company_id": companyID})

	return target, nil
}

// Remove deactivates a member's company membership. The row is kept so
// the user stays visible as a historical creator or assignee.
func (s *MembershipService) Remove(companyID, targetUserID, actorID uint64) error {
	if targetUserID == actorID {
		return ErrCannotRemoveYourself
	}

	actor, err := s.companyRepo.FindActiveMembership(companyID, actorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRemoveDenied
		}
		return fmt.Errorf("failed to verify actor membership: %w", err)
	}

	target, err := s.companyRepo.FindActiveMembership(companyID, targetUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMembershipNotFound
		}
		return fmt.Errorf("failed to find target membership: %w", err)
	}

	if !policy.CanModifyMember(actor.Role, target.Role) {
		return ErrRemoveDenied
	}

	target.IsActive = false
	if err := s.companyRepo.UpdateMembership(target); err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}

	s.notifications.Dispatch(targetUserID, models.NotificationMembershipRevoked,
		"Membership removed", "Your membership in the company has been deactivated.",
		map[string]uint64{"company_id": companyID})

	return nil
}

// CreateUserInput represents input for the direct user creation shortcut.
type CreateUserInput struct {
	Name      string
	Email     string
	Password  string
	Role      models.Role
	CompanyID uint64
	TeamID    *uint64
	ActorID   uint64
}

// CreateUserDirectly creates the auth identity, membership, and optional
// team membership in one operation, bypassing the invitation flow. The
// steps are not wrapped in a single transaction: a membership failure
// after the identity is created leaves the identity in place.
func (s *MembershipService) CreateUserDirectly(input CreateUserInput) (*models.User, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.TrimSpace(strings.ToLower(input.Email))

	if name == "" || email == "" {
		return nil, fmt.Errorf("name and email are required")
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}
	if !policy.ValidRole(input.Role) {
		return nil, ErrInvalidMembershipRole
	}

	actor, err := s.companyRepo.FindActiveMembership(input.CompanyID, input.ActorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCreateUserDenied
		}
		return nil, fmt.Errorf("failed to verify actor membership: %w", err)
	}
	if !policy.CanManageUsers(actor.Role) || !policy.CanAssignRole(actor.Role, input.Role) {
		return nil, ErrCreateUserDenied
	}

	if _, err := s.userRepo.FindByEmail(email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrFailedToHashPassword
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hashedPassword),
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	membership := &models.Membership{
		CompanyID: input.CompanyID,
		UserID:    user.ID,
		Role:      input.Role,
		IsActive:  true,
		JoinedAt:  time.Now(),
	}

	if err := s.companyRepo.AddMembership(membership); err != nil {
		// The identity already exists; it is not rolled back here.
		return nil, fmt.Errorf("failed to create membership: %w", err)
	}

	if input.TeamID != nil {
		teamMembership := &models.TeamMembership{
			TeamID: *input.TeamID,
			UserID: user.ID,
		}
		if err := s.teamRepo.AddMember(teamMembership); err != nil {
			return nil, fmt.Errorf("failed to add team membership: %w", err)
		}
	}

	s.notifications.Dispatch(user.ID, models.NotificationMembershipGranted,
		"Account created", "An administrator created your account.",
		map[string]uint64{"company_id": input.CompanyID})

	return user, nil
}
