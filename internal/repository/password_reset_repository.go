package repository

import (
	"time"

	"github.com/harukimoto/teamtrack-api/internal/models"
	"gorm.io/gorm"
)

// GormPasswordResetRepository is a GORM implementation of PasswordResetRepository
type GormPasswordResetRepository struct {
	db *gorm.DB
}

// NewPasswordResetRepository creates a new PasswordResetRepository
func NewPasswordResetRepository(db *gorm.DB) PasswordResetRepository {
	return &GormPasswordResetRepository{db: db}
}

// Create creates a new password reset request
func (r *GormPasswordResetRepository) Create(request *models.PasswordResetRequest) error {
	return r.db.Create(request).Error
}

// FindByToken finds a password reset request by token
func (r *GormPasswordResetRepository) FindByToken(token string) (*models.PasswordResetRequest, error) {
	var request models.PasswordResetRequest
	if err := r.db.Where("token = ?", token).First(&request).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

// Consume marks the request used and sets the user's new password hash
// in one transaction.
func (r *GormPasswordResetRepository) Consume(request *models.PasswordResetRequest, newPasswordHash string, now time.Time) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.PasswordResetRequest{}).
			Where("id = ? AND used_at IS NULL", request.ID).
			Update("used_at", now).Error; err != nil {
			return err
		}

		return tx.Model(&models.User{}).
			Where("id = ?", request.UserID).
			Update("password_hash", newPasswordHash).Error
	})
}
