package repository

import (
	"time"

	"github.com/harukimoto/teamtrack-api/internal/models"
	"gorm.io/gorm"
)

// GormInvitationRepository is a GORM implementation of InvitationRepository
type GormInvitationRepository struct {
	db *gorm.DB
}

// NewInvitationRepository creates a new InvitationRepository
func NewInvitationRepository(db *gorm.DB) InvitationRepository {
	return &GormInvitationRepository{db: db}
}

// Create creates a new invitation
func (r *GormInvitationRepository) Create(invitation *models.Invitation) error {
	return r.db.Create(invitation).Error
}

// FindByID finds an invitation by ID
func (r *GormInvitationRepository) FindByID(id uint64) (*models.Invitation, error) {
	var invitation models.Invitation
	if err := r.db.First(&invitation, id).Error; err != nil {
		return nil, err
	}
	return &invitation, nil
}

// FindPendingByEmail finds an unaccepted, unexpired invitation for (email, company)
func (r *GormInvitationRepository) FindPendingByEmail(companyID uint64, email string, now time.Time) (*models.Invitation, error) {
	var invitation models.Invitation
	if err := r.db.
		Where("company_id = ? AND email = ? AND accepted_at IS NULL AND expires_at > ?", companyID, email, now).
		First(&invitation).Error; err != nil {
		return nil, err
	}
	return &invitation, nil
}

// Update updates an invitation
func (r *GormInvitationRepository) Update(invitation *models.Invitation) error {
	return r.db.Save(invitation).Error
}

// Delete hard-deletes an invitation row
func (r *GormInvitationRepository) Delete(id uint64) error {
	return r.db.Delete(&models.Invitation{}, id).Error
}

// ListByCompany lists invitations of a company, newest first
func (r *GormInvitationRepository) ListByCompany(companyID uint64) ([]models.Invitation, error) {
	var invitations []models.Invitation
	if err := r.db.Preload("Inviter").
		Where("company_id = ?", companyID).
		Order("created_at DESC").
		Find(&invitations).Error; err != nil {
		return nil, err
	}
	return invitations, nil
}

// Accept marks the invitation accepted and creates the membership (and
// team membership when present) in one transaction.
func (r *GormInvitationRepository) Accept(invitation *models.Invitation, membership *models.Membership, teamMembership *models.TeamMembership) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(invitation).Error; err != nil {
			return err
		}

		if err := tx.Create(membership).Error; err != nil {
			return err
		}

		if teamMembership != nil {
			if err := tx.Create(teamMembership).Error; err != nil {
				return err
			}
		}

		return nil
	})
}
