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
	"gorm.io/gorm"
)

var (
	ErrInvitationNotFound    = errors.New("invitation not found")
	ErrInvitationEmailEmpty  = errors.New("email is required")
	ErrInvitationInvalidRole = errors.New("invalid role")
	ErrInviteNotAuthorized   = errors.New("not authorized to invite at this role")
	ErrDuplicateInvitation   = errors.New("a pending invitation already exists for this email")
	ErrInvitationExpired     = errors.New("invitation has expired")
	ErrInvitationAccepted    = errors.New("invitation has already been accepted")
	ErrAlreadyCompanyMember  = errors.New("user is already a member of this company")
	ErrInvitationTeamInvalid = errors.New("team does not belong to the company")
)

// InvitationService manages the invitation lifecycle: pending offers that
// either get accepted, cancelled, or silently expire.
type InvitationService struct {
	invitationRepo repository.InvitationRepository
	companyRepo    repository.CompanyRepository
	teamRepo       repository.TeamRepository
	notifications  *NotificationService
}

// NewInvitationService creates a new InvitationService.
func NewInvitationService(invitationRepo repository.InvitationRepository, companyRepo repository.CompanyRepository, teamRepo repository.TeamRepository, notifications *NotificationService) *InvitationService {
	return &InvitationService{
		invitationRepo: invitationRepo,
		companyRepo:    companyRepo,
		teamRepo:       teamRepo,
		notifications:  notifications,
	}
}

// InviteInput represents parameters to create an invitation.
type InviteInput struct {
	Email     string
	CompanyID uint64
	TeamID    *uint64
	Role      models.Role
	InviterID uint64
}

// Invite creates a pending invitation valid for seven days. The duplicate
// check runs before the insert so two outstanding offers for the same
// email and company cannot coexist.
func (s *InvitationService) Invite(input InviteInput) (*models.Invitation, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))
	if email == "" {
		return nil, ErrInvitationEmailEmpty
	}
	if !policy.ValidRole(input.Role) {
		return nil, ErrInvitationInvalidRole
	}

	inviter, err := s.companyRepo.FindActiveMembership(input.CompanyID, input.InviterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInviteNotAuthorized
		}
		return nil, fmt.Errorf("failed to verify inviter membership: %w", err)
	}
	if !policy.CanManageUsers(inviter.Role) || !policy.CanAssignRole(inviter.Role, input.Role) {
		return nil, ErrInviteNotAuthorized
	}

	if input.TeamID != nil {
		team, err := s.teamRepo.FindByID(*input.TeamID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrInvitationTeamInvalid
			}
			return nil, fmt.Errorf("failed to verify team: %w", err)
		}
		if team.CompanyID != input.CompanyID {
			return nil, ErrInvitationTeamInvalid
		}
	}

	now := time.Now()
	if _, err := s.invitationRepo.FindPendingByEmail(input.CompanyID, email, now); err == nil {
		return nil, ErrDuplicateInvitation
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check pending invitations: %w", err)
	}

	invitation := &models.Invitation{
		Email:     email,
		CompanyID: input.CompanyID,
		TeamID:    input.TeamID,
		Role:      input.Role,
		InviterID: input.InviterID,
		ExpiresAt: now.Add(constants.InvitationValidity),
	}

	if err := s.invitationRepo.Create(invitation); err != nil {
		return nil, fmt.Errorf("failed to create invitation: %w", err)
	}

	return invitation, nil
}

// Resend refreshes a pending invitation's validity window. Accepted or
// deleted invitations cannot be resent.
func (s *InvitationService) Resend(invitationID uint64) (*models.Invitation, error) {
	invitation, err := s.invitationRepo.FindByID(invitationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvitationNotFound
		}
		return nil, fmt.Errorf("failed to find invitation: %w", err)
	}

	if invitation.AcceptedAt != nil {
		return nil, ErrInvitationNotFound
	}

	now := time.Now()
	invitation.CreatedAt = now
	invitation.ExpiresAt = now.Add(constants.InvitationValidity)

	if err := s.invitationRepo.Update(invitation); err != nil {
		return nil, fmt.Errorf("failed to resend invitation: %w", err)
	}

	return invitation, nil
}

// Cancel deletes a non-accepted invitation. Cancelling an invitation that
// is already gone is a no-op, not an error.
func (s *InvitationService) Cancel(invitationID uint64) error {
	invitation, err := s.invitationRepo.FindByID(invitationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("failed to find invitation: %w", err)
	}

	if invitation.AcceptedAt != nil {
		return ErrInvitationAccepted
	}

	if err := s.invitationRepo.Delete(invitationID); err != nil {
		return fmt.Errorf("failed to cancel invitation: %w", err)
	}

	return nil
}

// Accept redeems a pending invitation for the accepting user. Setting
// accepted_at and creating the membership (plus team membership for
// team-scoped invitations) happen in one transaction.
func (s *InvitationService) Accept(invitationID, acceptingUserID uint64) (*models.Membership, error) {
	invitation, err := s.invitationRepo.FindByID(invitationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvitationNotFound
		}
		return nil, fmt.Errorf("failed to find invitation: %w", err)
	}

	now := time.Now()
	if invitation.AcceptedAt != nil {
		return nil, ErrInvitationAccepted
	}
	if !invitation.ExpiresAt.After(now) {
		return nil, ErrInvitationExpired
	}

	if _, err := s.companyRepo.FindActiveMembership(invitation.CompanyID, acceptingUserID); err == nil {
		return nil, ErrAlreadyCompanyMember
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to verify membership: %w", err)
	}

	invitation.AcceptedAt = &now

	membership := &models.Membership{
		CompanyID: invitation.CompanyID,
		UserID:    acceptingUserID,
		Role:      invitation.Role,
		IsActive:  true,
		JoinedAt:  now,
	}

	var teamMembership *models.TeamMembership
	if invitation.TeamID != nil {
		teamMembership = &models.TeamMembership{
			TeamID: *invitation.TeamID,
			UserID: acceptingUserID,
		}
	}

	if err := s.invitationRepo.Accept(invitation, membership, teamMembership); err != nil {
		return nil, fmt.Errorf("failed to accept invitation: %w", err)
	}

	s.notifications.Dispatch(acceptingUserID, models.NotificationMembershipGranted,
		"Welcome aboard", "Your invitation has been accepted and your membership is active.",
		map[string]uint64{"company_id": invitation.CompanyID})
	s.notifications.Dispatch(invitation.InviterID, models.NotificationInvitationAccepted,
		"Invitation accepted", fmt.Sprintf("%s joined the company.", invitation.Email),
		map[string]uint64{"company_id": invitation.CompanyID, "user_id": acceptingUserID})

	return membership, nil
}

// ListForCompany returns the company's invitations, newest first.
func (s *InvitationService) ListForCompany(companyID uint64) ([]models.Invitation, error) {
	invitations, err := s.invitationRepo.ListByCompany(companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}
	return invitations, nil
}
