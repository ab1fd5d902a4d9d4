package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/harukimoto/teamtrack-api/internal/models"
	"github.com/harukimoto/teamtrack-api/internal/policy"
	"github.com/harukimoto/teamtrack-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrTeamNotFound       = errors.New("team not found")
	ErrTeamNameRequired   = errors.New("team name cannot be empty")
	ErrTeamManageDenied   = errors.New("not authorized to manage this team")
	ErrAlreadyTeamMember  = errors.New("user is already a member of this team")
	ErrTeamMemberNotFound = errors.New("team member not found")
	ErrTargetNotInCompany = errors.New("user is not an active member of the company")
)

// TeamService manages teams and team-level membership. The team leader
// flag is orthogonal to company-level roles; management rights come from
// company admin/owner status or leadership of the team itself.
type TeamService struct {
	teamRepo      repository.TeamRepository
	companyRepo   repository.CompanyRepository
	notifications *NotificationService
}

// NewTeamService creates a new TeamService.
func NewTeamService(teamRepo repository.TeamRepository, companyRepo repository.CompanyRepository, notifications *NotificationService) *TeamService {
	return &TeamService{
		teamRepo:      teamRepo,
		companyRepo:   companyRepo,
		notifications: notifications,
	}
}

// CreateTeamInput represents parameters to create a team.
type CreateTeamInput struct {
	CompanyID   uint64
	Name        string
	Description string
	CreatorID   uint64
}

// CreateTeam creates a team within a company. Requires user-management
// rights.
func (s *TeamService) CreateTeam(input CreateTeamInput) (*models.Team, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrTeamNameRequired
	}

	actor, err := s.companyRepo.FindActiveMembership(input.CompanyID, input.CreatorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeamManageDenied
		}
		return nil, fmt.Errorf("failed to verify membership: %w", err)
	}
	if !policy.CanManageUsers(actor.Role) {
		return nil, ErrTeamManageDenied
	}

	team := &models.Team{
		CompanyID:   input.CompanyID,
		Name:        input.Name,
		Description: input.Description,
		IsActive:    true,
		CreatorID:   input.CreatorID,
	}

	if err := s.teamRepo.Create(team); err != nil {
		return nil, fmt.Errorf("failed to create team: %w", err)
	}

	return team, nil
}

// UpdateTeamInput represents updatable team fields.
type UpdateTeamInput struct {
	Name        *string
	Description *string
	IsActive    *bool
}

// UpdateTeam updates a team's name, description, or active flag.
func (s *TeamService) UpdateTeam(teamID uint64, input UpdateTeamInput, actorID uint64) (*models.Team, error) {
	team, err := s.findTeam(teamID)
	if err != nil {
		return nil, err
	}

	if err := s.ensureTeamManager(team, actorID); err != nil {
		return nil, err
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, ErrTeamNameRequired
		}
		team.Name = *input.Name
	}
	if input.Description != nil {
		team.Description = *input.Description
	}
	if input.IsActive != nil {
		team.IsActive = *input.IsActive
	}

	if err := s.teamRepo.Update(team); err != nil {
		return nil, fmt.Errorf("failed to update team: %w", err)
	}

	return team, nil
}

// ListTeams returns the active teams of a company.
func (s *TeamService) ListTeams(companyID uint64) ([]models.Team, error) {
	teams, err := s.teamRepo.ListByCompany(companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	return teams, nil
}

// GetTeamWithMembers returns a team and its membership roster.
func (s *TeamService) GetTeamWithMembers(teamID uint64) (*models.Team, []models.TeamMembership, error) {
	team, err := s.teamRepo.FindByID(teamID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrTeamNotFound
		}
		return nil, nil, fmt.Errorf("failed to find team: %w", err)
	}

	members, err := s.teamRepo.ListMembers(teamID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list team members: %w", err)
	}

	return team, members, nil
}

// AddMember adds a company member to a team.
func (s *TeamService) AddMember(teamID, userID, actorID uint64) error {
	team, err := s.findTeam(teamID)
	if err != nil {
		return err
	}

	if err := s.ensureTeamManager(team, actorID); err != nil {
		return err
	}

	if _, err := s.companyRepo.FindActiveMembership(team.CompanyID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTargetNotInCompany
		}
		return fmt.Errorf("failed to verify company membership: %w", err)
	}

	if _, err := s.teamRepo.FindMember(teamID, userID); err == nil {
		return ErrAlreadyTeamMember
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to verify team membership: %w", err)
	}

	membership := &models.TeamMembership{
		TeamID: teamID,
		UserID: userID,
	}

	if err := s.teamRepo.AddMember(membership); err != nil {
		return fmt.Errorf("failed to add team member: %w", err)
	}

	s.notifications.Dispatch(userID, models.NotificationTeamMemberAdded,
		"Added to team", fmt.Sprintf("You have been added to %q.", team.Name),
		map[string]uint64{"team_id": teamID})

	return nil
}

// RemoveMember removes a user from a team. Company membership is untouched.
func (s *TeamService) RemoveMember(teamID, userID, actorID uint64) error {
	team, err := s.findTeam(teamID)
	if err != nil {
		return err
	}

	if err := s.ensureTeamManager(team, actorID); err != nil {
		return err
	}

	if _, err := s.teamRepo.FindMember(teamID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTeamMemberNotFound
		}
		return fmt.Errorf("failed to find team member: %w", err)
	}

	if err := s.teamRepo.RemoveMember(teamID, userID); err != nil {
		return fmt.Errorf("failed to remove team member: %w", err)
	}

	return nil
}

// SetLeader promotes or demotes a team member's leader flag.
func (s *TeamService) SetLeader(teamID, userID uint64, isLeader bool, actorID uint64) error {
	team, err := s.findTeam(teamID)
	if err != nil {
		return err
	}

	if err := s.ensureTeamManager(team, actorID); err != nil {
		return err
	}

	if _, err := s.teamRepo.FindMember(teamID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTeamMemberNotFound
		}
		return fmt.Errorf("failed to find team member: %w", err)
	}

	if err := s.teamRepo.SetLeader(teamID, userID, isLeader); err != nil {
		return fmt.Errorf("failed to update leader flag: %w", err)
	}

	return nil
}

func (s *TeamService) findTeam(teamID uint64) (*models.Team, error) {
	team, err := s.teamRepo.FindByID(teamID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to find team: %w", err)
	}
	return team, nil
}

// ensureTeamManager allows company admins/owners and the team's own
// leaders to manage the roster.
func (s *TeamService) ensureTeamManager(team *models.Team, actorID uint64) error {
	membership, err := s.companyRepo.FindActiveMembership(team.CompanyID, actorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTeamManageDenied
		}
		return fmt.Errorf("failed to verify membership: %w", err)
	}

	if policy.CanManageUsers(membership.Role) {
		return nil
	}

	teamMember, err := s.teamRepo.FindMember(team.ID, actorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTeamManageDenied
		}
		return fmt.Errorf("failed to verify team membership: %w", err)
	}
	if !teamMember.IsLeader {
		return ErrTeamManageDenied
	}

	return nil
}
