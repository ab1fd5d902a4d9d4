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
	"github.com/harukimoto/teamtrack-api/internal/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken            = errors.New("email already registered")
	ErrInvalidCredentials    = errors.New("invalid email or password")
	ErrPasswordTooShort      = errors.New("password too short")
	ErrUserNotFound          = errors.New("user not found")
	ErrFailedToHashPassword  = errors.New("failed to hash password")
	ErrFailedToCreateUser    = errors.New("failed to create user")
	ErrFailedToCreateCompany = errors.New("failed to create company")
	ErrFailedToAddMember     = errors.New("failed to add user to company")
	ErrResetNotAuthorized    = errors.New("not authorized to request a password reset")
	ErrResetTargetNotMember  = errors.New("target user is not an active member of the company")
	ErrResetTokenInvalid     = errors.New("password reset token is invalid or already used")
	ErrResetTokenExpired     = errors.New("password reset token has expired")
)

// AuthService handles authentication related business logic.
type AuthService struct {
	userRepo    repository.UserRepository
	companyRepo repository.CompanyRepository
	resetRepo   repository.PasswordResetRepository
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository, companyRepo repository.CompanyRepository, resetRepo repository.PasswordResetRepository) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		companyRepo: companyRepo,
		resetRepo:   resetRepo,
	}
}

// SignupInput represents the required information to register a company
// and its owning user.
type SignupInput struct {
	Name        string
	Email       string
	Password    string
	CompanyName string
}

// Signup registers a new user along with their company. The user becomes
// the company owner; user, company, and membership are created in one
// transaction.
func (s *AuthService) Signup(input SignupInput) (*models.User, *models.Company, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.TrimSpace(strings.ToLower(input.Email))
	companyName := strings.TrimSpace(input.CompanyName)

	if name == "" {
		return nil, nil, fmt.Errorf("name is required")
	}
	if email == "" {
		return nil, nil, fmt.Errorf("email is required")
	}
	if companyName == "" {
		return nil, nil, fmt.Errorf("company name is required")
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, nil, ErrPasswordTooShort
	}

	if _, err := s.userRepo.FindByEmail(email); err == nil {
		return nil, nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, fmt.Errorf("failed to check email: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, ErrFailedToHashPassword
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hashedPassword),
	}

	company := &models.Company{
		Name: companyName,
	}

	membership := &models.Membership{
		Role:     models.RoleOwner,
		IsActive: true,
		JoinedAt: time.Now(),
	}

	if err := s.userRepo.CreateWithCompany(user, company, membership); err != nil {
		switch {
		case errors.Is(err, repository.ErrCreateUser):
			return nil, nil, ErrFailedToCreateUser
		case errors.Is(err, repository.ErrCreateCompany):
			return nil, nil, ErrFailedToCreateCompany
		case errors.Is(err, repository.ErrCreateMembership):
			return nil, nil, ErrFailedToAddMember
		default:
			return nil, nil, fmt.Errorf("failed to complete signup: %w", err)
		}
	}

	return user, company, nil
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Email    string
	Password string
}

// Login verifies credentials and returns the authenticated user.
func (s *AuthService) Login(input LoginInput) (*models.User, error) {
	user, err := s.userRepo.FindByEmail(strings.TrimSpace(strings.ToLower(input.Email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}

// RequestPasswordReset issues a single-use reset token for a company
// member. Only admins and owners of the company may request one.
func (s *AuthService) RequestPasswordReset(targetUserID, requesterID, companyID uint64) (*models.PasswordResetRequest, error) {
	requester, err := s.companyRepo.FindActiveMembership(companyID, requesterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrResetNotAuthorized
		}
		return nil, fmt.Errorf("failed to verify requester membership: %w", err)
	}

	if !policy.CanManageUsers(requester.Role) {
		return nil, ErrResetNotAuthorized
	}

	if _, err := s.companyRepo.FindActiveMembership(companyID, targetUserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrResetTargetNotMember
		}
		return nil, fmt.Errorf("failed to verify target membership: %w", err)
	}

	request := &models.PasswordResetRequest{
		UserID:      targetUserID,
		RequesterID: requesterID,
		CompanyID:   companyID,
		Token:       utils.GenerateResetToken(),
		ExpiresAt:   time.Now().Add(constants.PasswordResetValidity),
	}

	if err := s.resetRepo.Create(request); err != nil {
		return nil, fmt.Errorf("failed to create password reset request: %w", err)
	}

	return request, nil
}

// ConsumePasswordReset redeems a reset token and sets the new password.
// A token is valid only while unused and unexpired; consuming it is
// permanent.
func (s *AuthService) ConsumePasswordReset(token, newPassword string) error {
	if len(newPassword) < constants.MinPasswordLength {
		return ErrPasswordTooShort
	}

	request, err := s.resetRepo.FindByToken(token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrResetTokenInvalid
		}
		return fmt.Errorf("failed to find password reset request: %w", err)
	}

	now := time.Now()
	if request.UsedAt != nil {
		return ErrResetTokenInvalid
	}
	if !request.ExpiresAt.After(now) {
		return ErrResetTokenExpired
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return ErrFailedToHashPassword
	}

	if err := s.resetRepo.Consume(request, string(hashedPassword), now); err != nil {
		return fmt.Errorf("failed to consume password reset request: %w", err)
	}

	return nil
}
