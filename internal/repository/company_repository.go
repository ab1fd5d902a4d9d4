package repository

import (
	"github.com/harukimoto/teamtrack-api/internal/models"
	"gorm.io/gorm"
)

// GormCompanyRepository is a GORM implementation of CompanyRepository
type GormCompanyRepository struct {
	db *gorm.DB
}

// NewCompanyRepository creates a new CompanyRepository
func NewCompanyRepository(db *gorm.DB) CompanyRepository {
	return &GormCompanyRepository{db: db}
}

// Create creates a new company
func (r *GormCompanyRepository) Create(company *models.Company) error {
	return r.db.Create(company).Error
}

// FindByID finds a company by ID
func (r *GormCompanyRepository) FindByID(id uint64) (*models.Company, error) {
	var company models.Company
	if err := r.db.First(&company, id).Error; err != nil {
		return nil, err
	}
	return &company, nil
}

// Update updates a company
func (r *GormCompanyRepository) Update(company *models.Company) error {
	return r.db.Save(company).Error
}

// AddMembership adds a membership row
func (r *GormCompanyRepository) AddMembership(membership *models.Membership) error {
	return r.db.Create(membership).Error
}

// FindActiveMembership finds the active membership for a user in a company
func (r *GormCompanyRepository) FindActiveMembership(companyID, userID uint64) (*models.Membership, error) {
	var membership models.Membership
	if err := r.db.Where("company_id = ? AND user_id = ? AND is_active = ?", companyID, userID, true).
		First(&membership).Error; err != nil {
		return nil, err
	}
	return &membership, nil
}

// UpdateMembership persists membership changes
func (r *GormCompanyRepository) UpdateMembership(membership *models.Membership) error {
	return r.db.Save(membership).Error
}

// ListMemberships lists active memberships of a company
func (r *GormCompanyRepository) ListMemberships(companyID uint64) ([]models.Membership, error) {
	var memberships []models.Membership
	if err := r.db.Preload("User").
		Where("company_id = ? AND is_active = ?", companyID, true).
		Find(&memberships).Error; err != nil {
		return nil, err
	}
	return memberships, nil
}

// ListMembershipsByUserID lists active memberships a user holds across companies
func (r *GormCompanyRepository) ListMembershipsByUserID(userID uint64) ([]models.Membership, error) {
	var memberships []models.Membership
	if err := r.db.Preload("Company").
		Where("user_id = ? AND is_active = ?", userID, true).
		Find(&memberships).Error; err != nil {
		return nil, err
	}
	return memberships, nil
}
