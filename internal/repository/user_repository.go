package repository

import (
	"errors"
	"fmt"

	"github.com/harukimoto/teamtrack-api/internal/models"
	"gorm.io/gorm"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

var (
	// ErrCreateUser is returned when creating a user fails inside the signup transaction.
	ErrCreateUser = errors.New("user repository: create user failed")
	// ErrCreateCompany is returned when creating a company fails inside the signup transaction.
	ErrCreateCompany = errors.New("user repository: create company failed")
	// ErrCreateMembership is returned when creating a membership fails inside the signup transaction.
	ErrCreateMembership = errors.New("user repository: create membership failed")
)

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// Create creates a new user
func (r *GormUserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// CreateWithCompany creates a user, their company, and the owner membership atomically.
func (r *GormUserRepository) CreateWithCompany(user *models.User, company *models.Company, membership *models.Membership) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrCreateUser, err)
		}

		if err := tx.Create(company).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrCreateCompany, err)
		}

		membership.CompanyID = company.ID
		membership.UserID = user.ID

		if err := tx.Create(membership).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrCreateMembership, err)
		}

		return nil
	})
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(id uint64) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail finds a user by email
func (r *GormUserRepository) FindByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// SearchInCompany finds active company members matching the query by name or email
func (r *GormUserRepository) SearchInCompany(companyID uint64, query string, limit int) ([]models.User, error) {
	var users []models.User
	pattern := "%" + query + "%"
	err := r.db.
		Joins("JOIN memberships ON memberships.user_id = users.id").
		Where("memberships.company_id = ? AND memberships.is_active = ?", companyID, true).
		Where("users.name LIKE ? OR users.email LIKE ?", pattern, pattern).
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}
