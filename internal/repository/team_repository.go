package repository

import (
	"github.com/harukimoto/teamtrack-api/internal/models"
	"gorm.io/gorm"
)

// GormTeamRepository is a GORM implementation of TeamRepository
type GormTeamRepository struct {
	db *gorm.DB
}

// NewTeamRepository creates a new TeamRepository
func NewTeamRepository(db *gorm.DB) TeamRepository {
	return &GormTeamRepository{db: db}
}

// Create creates a new team
func (r *GormTeamRepository) Create(team *models.Team) error {
	return r.db.Create(team).Error
}

// FindByID finds a team by ID
func (r *GormTeamRepository) FindByID(id uint64) (*models.Team, error) {
	var team models.Team
	if err := r.db.First(&team, id).Error; err != nil {
		return nil, err
	}
	return &team, nil
}

// Update updates a team
func (r *GormTeamRepository) Update(team *models.Team) error {
	return r.db.Save(team).Error
}

// ListByCompany lists active teams of a company
func (r *GormTeamRepository) ListByCompany(companyID uint64) ([]models.Team, error) {
	var teams []models.Team
	if err := r.db.Where("company_id = ? AND is_active = ?", companyID, true).
		Find(&teams).Error; err != nil {
		return nil, err
	}
	return teams, nil
}

// AddMember adds a member to a team
func (r *GormTeamRepository) AddMember(membership *models.TeamMembership) error {
	return r.db.Create(membership).Error
}

// RemoveMember removes a member from a team
func (r *GormTeamRepository) RemoveMember(teamID, userID uint64) error {
	return r.db.Where("team_id = ? AND user_id = ?", teamID, userID).
		Delete(&models.TeamMembership{}).Error
}

// FindMember finds a specific team member
func (r *GormTeamRepository) FindMember(teamID, userID uint64) (*models.TeamMembership, error) {
	var membership models.TeamMembership
	if err := r.db.Where("team_id = ? AND user_id = ?", teamID, userID).
		First(&membership).Error; err != nil {
		return nil, err
	}
	return &membership, nil
}

// SetLeader updates the leader flag on a team membership
func (r *GormTeamRepository) SetLeader(teamID, userID uint64, isLeader bool) error {
	return r.db.Model(&models.TeamMembership{}).
		Where("team_id = ? AND user_id = ?", teamID, userID).
		Update("is_leader", isLeader).Error
}

// ListMembers lists all members of a team
func (r *GormTeamRepository) ListMembers(teamID uint64) ([]models.TeamMembership, error) {
	var memberships []models.TeamMembership
	if err := r.db.Preload("User").
		Where("team_id = ?", teamID).
		Find(&memberships).Error; err != nil {
		return nil, err
	}
	return memberships, nil
}
